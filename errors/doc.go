// Package errors provides standardized error handling for the Ariata
// ingestion pipeline. Errors are classified into three classes that drive
// batch behavior:
//
//   - Transient: storage or connectivity failures that may be retried
//     (StorageWriteError, connection loss, timeouts).
//   - Invalid: per-record data errors; the record is rejected and the
//     batch continues (MissingFieldError, OutOfRangeError, InvalidEnumError,
//     unique-key contract violations).
//   - Fatal: misconfiguration or broken invariants that abort the whole
//     batch (ErrUnknownStream, ErrPathCollision).
//
// Duplicate records are not errors at all: ErrDuplicateRecord exists so a
// caller can recognize the idempotent skip, but processors report it as a
// normal outcome and log it at debug level.
package errors
