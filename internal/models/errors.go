package models

import (
	"errors"
	"fmt"
)

// Common errors
var (
	ErrProjectNotFound    = errors.New("project not found")
	ErrInvalidState       = errors.New("invalid project state")
	ErrUnknownSection     = errors.New("unknown analysis section")
	ErrConfiguration      = errors.New("OPENAI_API_KEY is not configured")
	ErrMalformedResponse  = errors.New("invalid JSON format in analysis response")
	ErrIncompleteResponse = errors.New("incomplete analysis received")
)

// ValidationError reports bad user input on a single field
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// StorageError wraps a failed read or write against the document store
type StorageError struct {
	Op  string
	Key string
	Err error
}

func (e *StorageError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("storage %s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("storage %s %s failed: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// IsValidationError reports whether err carries a *ValidationError
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
