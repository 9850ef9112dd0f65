// Package errors provides error types and handling for archive pipeline operations.
package errors

import (
	"errors"
	"fmt"
)

// Error represents an archiver operation error with context about the
// operation that failed. It wraps the underlying AWS SDK error (or stdlib
// error) with additional context for better debugging.
type Error struct {
	// Op is the operation that failed (e.g., "archive", "enumerate", "append")
	Op string

	// Bucket is the S3 bucket name (if applicable)
	Bucket string

	// Key is the S3 object key (if applicable)
	Key string

	// Err is the underlying error
	Err error
}

// Error implements the error interface by providing a formatted error message.
func (e *Error) Error() string {
	if e.Bucket != "" && e.Key != "" {
		return fmt.Sprintf("archiver.%s %s/%s: %v", e.Op, e.Bucket, e.Key, e.Err)
	}
	if e.Bucket != "" {
		return fmt.Sprintf("archiver.%s bucket %s: %v", e.Op, e.Bucket, e.Err)
	}
	if e.Key != "" {
		return fmt.Sprintf("archiver.%s object %s: %v", e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("archiver.%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error chaining support.
func (e *Error) Unwrap() error {
	return e.Err
}

// WithBucket adds bucket context to an existing error.
func (e *Error) WithBucket(bucket string) *Error {
	e.Bucket = bucket
	return e
}

// WithKey adds object key context to an existing error.
func (e *Error) WithKey(key string) *Error {
	e.Key = key
	return e
}

// WithMessage wraps the underlying error with a custom message.
func (e *Error) WithMessage(message string) *Error {
	e.Err = fmt.Errorf("%s: %w", message, e.Err)
	return e
}

// NewError creates a new Error with the given operation and underlying error.
func NewError(op string, err error) *Error {
	return &Error{
		Op:  op,
		Err: err,
	}
}

// NewStageError creates a new Error whose cause is tagged with one of the
// pipeline stage sentinels (ErrEnumeration, ErrRead, ErrEncode, ErrUpload).
// Both the stage and the cause remain reachable through errors.Is/errors.As.
func NewStageError(op string, stage, cause error) *Error {
	return &Error{
		Op:  op,
		Err: fmt.Errorf("%w: %w", stage, cause),
	}
}

// Sentinel errors for the four pipeline stages. Any failure anywhere in the
// pipeline is tagged with exactly one of these; the whole operation aborts
// on the first one encountered.
var (
	// ErrEnumeration indicates that resolving the source entry set failed
	// (a listing call failed at some page)
	ErrEnumeration = errors.New("archiver: enumeration failed")

	// ErrRead indicates that a source entry could not be opened or fully read
	ErrRead = errors.New("archiver: read failed")

	// ErrEncode indicates that the archive encoder rejected an append or
	// the final container trailer could not be written
	ErrEncode = errors.New("archiver: encode failed")

	// ErrUpload indicates that the streaming upload of the archive failed
	ErrUpload = errors.New("archiver: upload failed")
)

// Sentinel errors for common S3-level failures. These can be used with
// errors.Is() alongside the stage sentinels above.
var (
	// ErrObjectNotFound indicates that a source object does not exist
	ErrObjectNotFound = errors.New("archiver: object not found")

	// ErrAccessDenied indicates that access to the resource is denied
	ErrAccessDenied = errors.New("archiver: access denied")

	// ErrInvalidInput indicates that the provided input is invalid
	ErrInvalidInput = errors.New("archiver: invalid input")

	// ErrInvalidBucketName indicates that the bucket name is invalid
	ErrInvalidBucketName = errors.New("archiver: invalid bucket name")

	// ErrInvalidObjectKey indicates that the object key is invalid
	ErrInvalidObjectKey = errors.New("archiver: invalid object key")
)

// IsEnumerationFailure checks if an error originated in the entry
// enumeration stage.
func IsEnumerationFailure(err error) bool {
	return errors.Is(err, ErrEnumeration)
}

// IsReadFailure checks if an error originated while opening or draining a
// source entry stream.
func IsReadFailure(err error) bool {
	return errors.Is(err, ErrRead)
}

// IsEncodeFailure checks if an error originated in the archive encoder.
func IsEncodeFailure(err error) bool {
	return errors.Is(err, ErrEncode)
}

// IsUploadFailure checks if an error originated in the streaming upload sink.
func IsUploadFailure(err error) bool {
	return errors.Is(err, ErrUpload)
}

// IsObjectNotFound checks if an error indicates that an object was not found.
func IsObjectNotFound(err error) bool {
	return errors.Is(err, ErrObjectNotFound)
}

// IsAccessDenied checks if an error indicates access was denied.
func IsAccessDenied(err error) bool {
	return errors.Is(err, ErrAccessDenied)
}

// IsInvalidInput checks if an error indicates invalid input.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}
