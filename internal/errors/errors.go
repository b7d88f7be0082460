package errors

import (
	"fmt"
	"time"
)

// ErrorType classifies errors surfaced by the outer layers (CLI, MCP, snapshots).
// The query engine itself never returns errors.
type ErrorType string

const (
	ErrorTypeDocument  ErrorType = "document"
	ErrorTypeSnapshot  ErrorType = "snapshot"
	ErrorTypeSelection ErrorType = "selection"
	ErrorTypeConfig    ErrorType = "config"
	ErrorTypeInternal  ErrorType = "internal"
)

// DocumentError reports a problem with the active document or one of its objects.
type DocumentError struct {
	Type       ErrorType
	Object     string
	Operation  string
	Underlying error
	Timestamp  time.Time
}

// NewDocumentError creates a document error for op.
func NewDocumentError(op string, err error) *DocumentError {
	return &DocumentError{
		Type:       ErrorTypeDocument,
		Operation:  op,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// WithObject attaches the object name involved.
func (e *DocumentError) WithObject(name string) *DocumentError {
	e.Object = name
	return e
}

func (e *DocumentError) Error() string {
	if e.Object != "" {
		return fmt.Sprintf("%s %s failed for %s: %v", e.Type, e.Operation, e.Object, e.Underlying)
	}
	return fmt.Sprintf("%s %s failed: %v", e.Type, e.Operation, e.Underlying)
}

func (e *DocumentError) Unwrap() error {
	return e.Underlying
}

// SnapshotError reports a failure reading or writing a document snapshot file.
type SnapshotError struct {
	Type       ErrorType
	Path       string
	Operation  string
	Underlying error
	Timestamp  time.Time
}

// NewSnapshotError creates a snapshot error for op on path.
func NewSnapshotError(op, path string, err error) *SnapshotError {
	return &SnapshotError{
		Type:       ErrorTypeSnapshot,
		Path:       path,
		Operation:  op,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

func (e *SnapshotError) Error() string {
	return fmt.Sprintf("snapshot %s failed for %s: %v", e.Operation, e.Path, e.Underlying)
}

func (e *SnapshotError) Unwrap() error {
	return e.Underlying
}

// SelectionError reports a selection that cannot be acted on.
type SelectionError struct {
	Type       ErrorType
	Items      []string
	Underlying error
	Timestamp  time.Time
}

// NewSelectionError creates a selection error for items.
func NewSelectionError(items []string, err error) *SelectionError {
	return &SelectionError{
		Type:       ErrorTypeSelection,
		Items:      items,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

func (e *SelectionError) Error() string {
	return fmt.Sprintf("selection of %d item(s) rejected: %v", len(e.Items), e.Underlying)
}

func (e *SelectionError) Unwrap() error {
	return e.Underlying
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field      string
	Value      string
	Underlying error
	Timestamp  time.Time
}

// NewConfigError creates a new config error
func NewConfigError(field, value string, err error) *ConfigError {
	return &ConfigError{
		Field:      field,
		Value:      value,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error for field %s (value %s): %v", e.Field, e.Value, e.Underlying)
}

func (e *ConfigError) Unwrap() error {
	return e.Underlying
}

// MultiError represents multiple errors
type MultiError struct {
	Errors []error
}

// NewMultiError creates a multi-error, dropping nil entries.
func NewMultiError(errs []error) *MultiError {
	filtered := make([]error, 0, len(errs))
	for _, err := range errs {
		if err != nil {
			filtered = append(filtered, err)
		}
	}
	return &MultiError{Errors: filtered}
}

// ErrorOrNil returns nil when no errors were collected.
func (e *MultiError) ErrorOrNil() error {
	if e == nil || len(e.Errors) == 0 {
		return nil
	}
	return e
}

func (e *MultiError) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d errors: %v", len(e.Errors), e.Errors)
}

// Unwrap returns all errors
func (e *MultiError) Unwrap() []error {
	return e.Errors
}
