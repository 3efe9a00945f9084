// Package errors provides structured error types for the Reelforge application.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI and library packages
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - CONFIGURATION_*: Timeline/track construction failures
//   - PLACEMENT_*: Placement-time failures (bad timing, missing targets)
//   - STRUCTURAL_*: Ownership violations detected while building the forest
//   - INVALID_*: Input validation failures (manifests, props, formats)
//
// # Usage
//
//	err := errors.New(errors.ErrCodePlacementInvalidTiming, "duration must be >= 0, got %v", d)
//	if errors.Is(err, errors.ErrCodePlacementInvalidTiming) {
//	    // Handle placement error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidManifest, origErr, "decode %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Construction errors
	ErrCodeConfiguration  Code = "CONFIGURATION"
	ErrCodeDuplicateTrack Code = "CONFIGURATION_DUPLICATE_TRACK"

	// Placement errors
	ErrCodePlacementInvalidTiming  Code = "PLACEMENT_INVALID_TIMING"
	ErrCodePlacementTargetNotFound Code = "PLACEMENT_TARGET_NOT_FOUND"

	// Structural errors (forest resolution)
	ErrCodeMultiOwnedNode Code = "STRUCTURAL_MULTI_OWNED_NODE"
	ErrCodeSlotCycle      Code = "STRUCTURAL_SLOT_CYCLE"

	// Input validation errors
	ErrCodeInvalidProp     Code = "INVALID_PROP"
	ErrCodeInvalidManifest Code = "INVALID_MANIFEST"
	ErrCodeInvalidFormat   Code = "INVALID_FORMAT"
	ErrCodeInvalidTag      Code = "INVALID_TAG"

	// Resource not found errors
	ErrCodeNotFound Code = "NOT_FOUND"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// IsConfiguration reports whether err is any construction-time error.
func IsConfiguration(err error) bool {
	switch GetCode(err) {
	case ErrCodeConfiguration, ErrCodeDuplicateTrack:
		return true
	}
	return false
}

// IsPlacement reports whether err is any placement-time error.
func IsPlacement(err error) bool {
	switch GetCode(err) {
	case ErrCodePlacementInvalidTiming, ErrCodePlacementTargetNotFound:
		return true
	}
	return false
}

// IsStructural reports whether err is an ownership violation detected
// during forest resolution.
func IsStructural(err error) bool {
	switch GetCode(err) {
	case ErrCodeMultiOwnedNode, ErrCodeSlotCycle:
		return true
	}
	return false
}
