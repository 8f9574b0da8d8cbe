// Package sqlscript splits multi-statement SQL script text into individual
// statements so they can be executed one at a time inside a transaction.
//
// The splitter understands SQLite quoting ('...', "...", `...`, [...]),
// line and block comments, and CREATE TRIGGER bodies, whose inner
// semicolons do not terminate the statement until the END that closes the
// body's BEGIN.
package sqlscript

import (
	"regexp"
	"strings"
	"unicode"
)

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidIdentifier reports whether name is a bare SQL identifier that can be
// interpolated into generated statements.
func ValidIdentifier(name string) bool {
	return identRe.MatchString(name)
}

// QuoteIdentifier returns name as a double-quoted SQL identifier.
func QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

type state int

const (
	stNormal state = iota
	stSingle
	stDouble
	stBacktick
	stBracket
	stLineComment
	stBlockComment
)

// Split returns the statements of script in order, without their
// terminating semicolons. Statements that contain only whitespace or
// comments are dropped.
func Split(script string) []string {
	var (
		stmts   []string
		cur     strings.Builder
		code    strings.Builder // statement text with comments removed, upper-cased
		st      = stNormal
		runes   = []rune(script)
		hasCode bool
	)

	flush := func() {
		if hasCode {
			stmts = append(stmts, strings.TrimSpace(cur.String()))
		}
		cur.Reset()
		code.Reset()
		hasCode = false
	}

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		var next rune
		if i+1 < len(runes) {
			next = runes[i+1]
		}

		switch st {
		case stLineComment:
			cur.WriteRune(r)
			if r == '\n' {
				st = stNormal
			}
			continue
		case stBlockComment:
			cur.WriteRune(r)
			if r == '*' && next == '/' {
				cur.WriteRune(next)
				i++
				st = stNormal
			}
			continue
		case stSingle, stDouble, stBacktick, stBracket:
			// Quoted text stays out of code so it is never read as a keyword.
			cur.WriteRune(r)
			if r == closer(st) {
				// Doubled quote characters are escapes, not terminators.
				if st != stBracket && next == r {
					cur.WriteRune(next)
					i++
					continue
				}
				code.WriteRune(' ')
				st = stNormal
			}
			continue
		}

		switch {
		case r == '-' && next == '-':
			st = stLineComment
			cur.WriteRune(r)
		case r == '/' && next == '*':
			st = stBlockComment
			cur.WriteRune(r)
			cur.WriteRune(next)
			i++
		case r == ';':
			if inTriggerBody(code.String()) {
				cur.WriteRune(r)
				code.WriteRune(r)
				continue
			}
			flush()
		default:
			switch r {
			case '\'':
				st = stSingle
			case '"':
				st = stDouble
			case '`':
				st = stBacktick
			case '[':
				st = stBracket
			}
			cur.WriteRune(r)
			code.WriteString(strings.ToUpper(string(r)))
			if !isSpace(r) {
				hasCode = true
			}
		}
	}
	flush()

	return stmts
}

func closer(st state) rune {
	switch st {
	case stSingle:
		return '\''
	case stDouble:
		return '"'
	case stBacktick:
		return '`'
	default:
		return ']'
	}
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\f' || r == '\v'
}

// inTriggerBody reports whether code is a CREATE TRIGGER statement whose
// body is still open. BEGIN and CASE open a block and END closes one, so the
// END of a CASE expression does not end the trigger.
func inTriggerBody(code string) bool {
	words := strings.FieldsFunc(code, func(r rune) bool {
		return !(r == '_' || r == '$' || unicode.IsLetter(r) || unicode.IsDigit(r))
	})
	if len(words) < 2 || words[0] != "CREATE" {
		return false
	}
	idx := 1
	if words[idx] == "TEMP" || words[idx] == "TEMPORARY" {
		idx++
	}
	if idx >= len(words) || words[idx] != "TRIGGER" {
		return false
	}

	depth := 0
	for _, w := range words[idx+1:] {
		switch w {
		case "BEGIN", "CASE":
			depth++
		case "END":
			depth--
		}
	}
	return depth > 0
}
