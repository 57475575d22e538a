package errors

import (
	"errors"
	"fmt"
)

// ErrorClass represents the classification of errors for handling purposes.
type ErrorClass int

const (
	// ErrorTransient represents temporary errors that may be retried
	ErrorTransient ErrorClass = iota
	// ErrorInvalid represents errors due to invalid input or configuration
	ErrorInvalid
	// ErrorFatal represents unrecoverable errors that should stop processing
	ErrorFatal
)

// String returns the string representation of ErrorClass
func (ec ErrorClass) String() string {
	switch ec {
	case ErrorTransient:
		return "transient"
	case ErrorInvalid:
		return "invalid"
	case ErrorFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Standard error variables for common pipeline conditions
var (
	// ErrUnknownStream indicates a lookup for a source/stream pair that is
	// not in the registry. Always a deployment or configuration error, so
	// it aborts the whole batch rather than a single record.
	ErrUnknownStream = errors.New("unknown stream")

	// ErrDuplicateRecord marks the idempotent skip of an already-seen
	// record. Not a failure; callers treat it as a successful no-op.
	ErrDuplicateRecord = errors.New("duplicate record")

	// ErrPathCollision indicates two blob writes computed the same path.
	// Unique-id generation makes this practically impossible, so hitting
	// it means the uniqueness guarantee is broken.
	ErrPathCollision = errors.New("blob path collision")

	// Storage and connectivity errors
	ErrNoConnection       = errors.New("no connection available")
	ErrConnectionLost     = errors.New("connection lost")
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrWriteTimeout       = errors.New("storage write timeout")

	// Configuration errors
	ErrInvalidConfig = errors.New("invalid configuration")
	ErrMissingConfig = errors.New("missing required configuration")
)

// MissingFieldError reports a required column that is absent or null in a
// normalized record.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("required field %q missing or null", e.Field)
}

// OutOfRangeError reports a numeric column outside its declared
// [Min, Max] range (inclusive).
type OutOfRangeError struct {
	Field    string
	Value    float64
	Min, Max float64
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("field %q value %v outside range [%v, %v]", e.Field, e.Value, e.Min, e.Max)
}

// InvalidEnumError reports a column value that is not a member of its
// declared enumeration.
type InvalidEnumError struct {
	Field string
	Value string
}

func (e *InvalidEnumError) Error() string {
	return fmt.Sprintf("field %q value %q not in enumeration", e.Field, e.Value)
}

// TooLongError reports a string column exceeding its declared maximum
// length in bytes.
type TooLongError struct {
	Field     string
	Length    int
	MaxLength int
}

func (e *TooLongError) Error() string {
	return fmt.Sprintf("field %q length %d exceeds maximum %d", e.Field, e.Length, e.MaxLength)
}

// StorageWriteError wraps a failed relational or blob write. Always
// transient: the caller decides retry count and backoff.
type StorageWriteError struct {
	Store string // "relational" or "blob"
	Op    string
	Err   error
}

func (e *StorageWriteError) Error() string {
	return fmt.Sprintf("%s store: %s failed: %v", e.Store, e.Op, e.Err)
}

func (e *StorageWriteError) Unwrap() error {
	return e.Err
}

// ClassifiedError wraps an error with its classification
type ClassifiedError struct {
	Class     ErrorClass
	Err       error
	Message   string
	Component string
	Operation string
}

// Error implements the error interface
func (ce *ClassifiedError) Error() string {
	if ce.Message != "" {
		return ce.Message
	}
	return ce.Err.Error()
}

// Unwrap returns the underlying error
func (ce *ClassifiedError) Unwrap() error {
	return ce.Err
}

// IsTransient checks if an error is transient and should be retried
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class == ErrorTransient
	}

	var swe *StorageWriteError
	if errors.As(err, &swe) {
		return true
	}

	return errors.Is(err, ErrConnectionLost) ||
		errors.Is(err, ErrNoConnection) ||
		errors.Is(err, ErrStorageUnavailable) ||
		errors.Is(err, ErrWriteTimeout)
}

// IsFatal checks if an error is fatal and should abort the batch
func IsFatal(err error) bool {
	if err == nil {
		return false
	}

	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class == ErrorFatal
	}

	return errors.Is(err, ErrUnknownStream) ||
		errors.Is(err, ErrPathCollision) ||
		errors.Is(err, ErrInvalidConfig) ||
		errors.Is(err, ErrMissingConfig)
}

// IsInvalid checks if an error is due to invalid record data
func IsInvalid(err error) bool {
	if err == nil {
		return false
	}

	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class == ErrorInvalid
	}

	var mfe *MissingFieldError
	var ore *OutOfRangeError
	var iee *InvalidEnumError
	var tle *TooLongError
	return errors.As(err, &mfe) || errors.As(err, &ore) ||
		errors.As(err, &iee) || errors.As(err, &tle)
}

// IsDuplicate reports whether an error marks an idempotent duplicate skip.
func IsDuplicate(err error) bool {
	return errors.Is(err, ErrDuplicateRecord)
}

// Classify returns the error class for an error
func Classify(err error) ErrorClass {
	switch {
	case IsFatal(err):
		return ErrorFatal
	case IsInvalid(err):
		return ErrorInvalid
	default:
		// Unknown errors default to transient so callers may retry
		return ErrorTransient
	}
}

// Wrap creates a standardized error with context following the pattern:
// "component.method: action failed: %w"
func Wrap(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s.%s: %s failed: %w", component, method, action, err)
}

// WrapTransient wraps an error as transient with context
func WrapTransient(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	wrapped := Wrap(err, component, method, action)
	return &ClassifiedError{
		Class: ErrorTransient, Err: wrapped, Message: wrapped.Error(),
		Component: component, Operation: method,
	}
}

// WrapFatal wraps an error as fatal with context
func WrapFatal(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	wrapped := Wrap(err, component, method, action)
	return &ClassifiedError{
		Class: ErrorFatal, Err: wrapped, Message: wrapped.Error(),
		Component: component, Operation: method,
	}
}

// WrapInvalid wraps an error as invalid with context
func WrapInvalid(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	wrapped := Wrap(err, component, method, action)
	return &ClassifiedError{
		Class: ErrorInvalid, Err: wrapped, Message: wrapped.Error(),
		Component: component, Operation: method,
	}
}
