package internal

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStorageError(t *testing.T) {
	originalErr := errors.New("permission denied")
	err := &StorageError{
		Path: "/test/neuralguard_user.json",
		Op:   "write",
		Err:  originalErr,
	}

	assert.Contains(t, err.Error(), "storage error")
	assert.Contains(t, err.Error(), "/test/neuralguard_user.json")
	assert.Contains(t, err.Error(), "write")
	assert.ErrorIs(t, err, originalErr)
}

func TestParseError(t *testing.T) {
	originalErr := errors.New("invalid JSON")
	err := &ParseError{
		Source: "sqlite",
		Key:    SnapshotKey,
		Err:    originalErr,
	}

	assert.Contains(t, err.Error(), "parse error")
	assert.Contains(t, err.Error(), "sqlite")
	assert.Contains(t, err.Error(), SnapshotKey)
	assert.ErrorIs(t, err, originalErr)
}

func TestExportError(t *testing.T) {
	originalErr := errors.New("write failed")
	err := &ExportError{
		Format: "md",
		Path:   "/output/report.md",
		Err:    originalErr,
	}

	assert.Contains(t, err.Error(), "export error")
	assert.Contains(t, err.Error(), "md")
	assert.ErrorIs(t, err, originalErr)
}

func TestSentinelErrorsAreDistinct(t *testing.T) {
	sentinels := []error{
		ErrInvalidCredentials,
		ErrInvalidAddressFormat,
		ErrEmptyCodeSubmission,
		ErrUnsupportedFile,
		ErrUnknownNetwork,
		ErrNotAuthenticated,
	}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j {
				assert.NotErrorIs(t, a, b)
			}
		}
	}
}
