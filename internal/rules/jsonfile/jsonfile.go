// Package jsonfile stores category rules in a single JSON document, the
// default backend.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"finpal/internal/core"
	"finpal/internal/rules"
)

// Store reads and writes one rules file. Writes go to a temporary file in the
// same directory that is then renamed over the target, so readers never see a
// partial document.
type Store struct {
	path string
}

func New(path string) *Store {
	return &Store{path: path}
}

// Path returns the rules file location.
func (s *Store) Path() string { return s.path }

// Load returns rules.ErrNoRules when the file does not exist and a
// *core.ConfigError when it exists but cannot be read or parsed.
func (s *Store) Load(ctx context.Context) (*core.RuleSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, rules.ErrNoRules
	}
	if err != nil {
		return nil, &core.ConfigError{Path: s.path, Err: err}
	}

	rs := core.NewRuleSet()
	if err := json.Unmarshal(data, rs); err != nil {
		return nil, &core.ConfigError{Path: s.path, Err: err}
	}
	return rs, nil
}

func (s *Store) Save(ctx context.Context, rs *core.RuleSet) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(rs, "", "  ")
	if err != nil {
		return fmt.Errorf("encode rules: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create rules directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp rules file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp rules file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp rules file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp rules file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace rules file: %w", err)
	}
	return nil
}
