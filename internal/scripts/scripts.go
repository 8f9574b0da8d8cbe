// Package scripts loads the schema and load SQL scripts the pipeline runs,
// from a configured file or from the embedded defaults.
package scripts

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/edgard/consolidator/internal/sqlscript"
	embedded "github.com/edgard/consolidator/scripts"
)

// Script is a named, ordered list of SQL statements.
type Script struct {
	Name       string
	Statements []string
}

// Parse splits text into statements. A script without statements is an
// error; running it would silently leave the tables empty.
func Parse(name, text string) (Script, error) {
	stmts := sqlscript.Split(text)
	if len(stmts) == 0 {
		return Script{}, fmt.Errorf("script %s contains no statements", name)
	}
	return Script{Name: name, Statements: stmts}, nil
}

// Load reads the script at path, or the embedded script named defaultName
// when path is empty.
func Load(path, defaultName string) (Script, error) {
	if path == "" {
		data, err := fs.ReadFile(embedded.FS, defaultName)
		if err != nil {
			return Script{}, fmt.Errorf("failed to read embedded script %s: %w", defaultName, err)
		}
		return Parse(defaultName, string(data))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Script{}, fmt.Errorf("failed to read script %s: %w", path, err)
	}
	return Parse(filepath.Base(path), string(data))
}

// Set is the pair of scripts one pipeline run executes.
type Set struct {
	Schema Script
	Load   Script
}

// LoadSet loads the schema and load scripts, falling back to the embedded
// defaults for empty paths.
func LoadSet(schemaPath, loadPath string) (Set, error) {
	schema, err := Load(schemaPath, embedded.SchemaFile)
	if err != nil {
		return Set{}, err
	}
	load, err := Load(loadPath, embedded.LoadFile)
	if err != nil {
		return Set{}, err
	}
	return Set{Schema: schema, Load: load}, nil
}

// Defaults returns the embedded schema and load scripts.
func Defaults() (Set, error) {
	return LoadSet("", "")
}
