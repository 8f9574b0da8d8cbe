// Package config loads and validates the consolidator configuration from
// defaults, an optional config.yaml and ETL_* environment variables.
package config

import "path/filepath"

// Config is the root configuration shared by every binary.
type Config struct {
	Log      LogConfig      `mapstructure:"log"`
	Database DatabaseConfig `mapstructure:"database"`
	Scripts  ScriptsConfig  `mapstructure:"scripts"`
	Output   OutputConfig   `mapstructure:"output"`
	Tables   TablesConfig   `mapstructure:"tables"`
	Schedule ScheduleConfig `mapstructure:"schedule"`
}

// LogConfig controls the run log.
type LogConfig struct {
	Path   string `mapstructure:"path"   validate:"required"`
	Level  string `mapstructure:"level"  validate:"required,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"required,oneof=json text"`
}

// DatabaseConfig points at the SQLite database file.
type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// ScriptsConfig holds optional paths to the schema and load scripts. An empty
// path selects the embedded default script.
type ScriptsConfig struct {
	SchemaPath string `mapstructure:"schema_path"`
	LoadPath   string `mapstructure:"load_path"`
}

// OutputConfig names the files and directories the pipeline writes.
type OutputConfig struct {
	Dir        string `mapstructure:"dir"         validate:"required"`
	CSVFile    string `mapstructure:"csv_file"    validate:"required"`
	ReportFile string `mapstructure:"report_file" validate:"required"`
	RawDir     string `mapstructure:"raw_dir"     validate:"required"`
}

// TablesConfig names the tables the pipeline reads and rebuilds.
type TablesConfig struct {
	Consolidated string   `mapstructure:"consolidated" validate:"required,sqlident"`
	Managed      []string `mapstructure:"managed"      validate:"required,min=1,dive,sqlident"`
	Raw          []string `mapstructure:"raw"          validate:"required,min=1,dive,sqlident"`
}

// ScheduleConfig enables repeated runs. An empty Cron runs the pipeline once.
type ScheduleConfig struct {
	Cron        string `mapstructure:"cron"`
	WithSeconds bool   `mapstructure:"with_seconds"`
}

// CSVPath returns the consolidated CSV output path.
func (c *Config) CSVPath() string {
	return filepath.Join(c.Output.Dir, c.Output.CSVFile)
}

// ReportPath returns the data-quality report output path.
func (c *Config) ReportPath() string {
	return filepath.Join(c.Output.Dir, c.Output.ReportFile)
}
