package core

import (
	"errors"
	"fmt"
)

var (
	ErrMissingColumn     = errors.New("missing required column")
	ErrEmptyFile         = errors.New("empty file")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrEmptyCategoryName = errors.New("empty category name")
	ErrUnknownCategory   = errors.New("unknown category")
)

// ParseError rejects a whole upload. Row is the 1-based data row (0 when the
// failure is structural, e.g. a missing header).
type ParseError struct {
	Row    int
	Column string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	switch {
	case e.Row > 0 && e.Column != "":
		return fmt.Sprintf("row %d, column %s: %q: %v", e.Row, e.Column, e.Value, e.Err)
	case e.Column != "":
		return fmt.Sprintf("column %s: %v", e.Column, e.Err)
	case e.Row > 0:
		return fmt.Sprintf("row %d: %v", e.Row, e.Err)
	default:
		return e.Err.Error()
	}
}

func (e *ParseError) Unwrap() error { return e.Err }

// ConfigError reports a rule file that exists but cannot be used.
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("category rules %s: %v", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }
