package config

import (
	"errors"
	"fmt"
)

// Common errors for configuration discovery and decoding.
var (
	ErrDirectoryNotFound = errors.New("configuration directory not found")
	ErrNotDirectory      = errors.New("path is not a directory")
	ErrEmptyFile         = errors.New("configuration file is empty")
	ErrInvalidConfig     = errors.New("invalid configuration")
	ErrMissingPlugin     = errors.New("configuration does not declare a plugin")
)

// LoadError represents an error loading a specific file.
type LoadError struct {
	Path    string
	Message string
	Err     error
}

func (e *LoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Path, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
