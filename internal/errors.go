package internal

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCredentials is returned when login is attempted with anything
	// other than the demo account.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrInvalidAddressFormat blocks an address submission.
	ErrInvalidAddressFormat = errors.New("invalid contract address: expected 0x followed by 40 characters")
	// ErrEmptyCodeSubmission blocks a source submission with no code.
	ErrEmptyCodeSubmission = errors.New("no contract source provided")
	// ErrUnsupportedFile rejects contract files with an unknown extension.
	ErrUnsupportedFile = errors.New("unsupported contract file (supported: .sol, .vy, .json)")
	// ErrUnknownNetwork rejects a network outside Networks.
	ErrUnknownNetwork = errors.New("unknown network")
	// ErrNotAuthenticated is returned by gated operations when nobody is logged in.
	ErrNotAuthenticated = errors.New("not logged in")
)

// StorageError represents errors accessing the persisted session snapshot
type StorageError struct {
	Path string
	Op   string // "open", "read", "write", "remove"
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// ParseError represents errors decoding persisted data
type ParseError struct {
	Source string // "file", "sqlite"
	Key    string // snapshot key
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error [%s] %s: %v", e.Source, e.Key, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ExportError represents errors writing an analysis report
type ExportError struct {
	Format string
	Path   string
	Err    error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export error [%s] %s: %v", e.Format, e.Path, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}
