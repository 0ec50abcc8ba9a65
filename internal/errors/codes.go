package errors

import (
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ErrorCode represents internal error codes for memory operations
type ErrorCode int

const (
	// Success
	ErrCodeOK ErrorCode = 0

	// Contract violations (caller errors)
	ErrCodeInvalidArgument   ErrorCode = 1000
	ErrCodeAddressOutOfRange ErrorCode = 1001
	ErrCodeWidthMismatch     ErrorCode = 1002
	ErrCodeMaskMismatch      ErrorCode = 1003
	ErrCodeInvalidGeometry   ErrorCode = 1004
	ErrCodeInvalidReplica    ErrorCode = 1005

	// Store-side errors
	ErrCodeInternal      ErrorCode = 2000
	ErrCodeVotingFailure ErrorCode = 2001
)

// MemError represents a structured error with code and context
type MemError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Cause   error
}

// Error implements the error interface
func (e *MemError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying error
func (e *MemError) Unwrap() error {
	return e.Cause
}

// ToGRPCStatus converts MemError to gRPC status so a host service can
// surface memory faults directly
func (e *MemError) ToGRPCStatus() *status.Status {
	return status.New(e.toGRPCCode(), e.Error())
}

// toGRPCCode maps internal error codes to gRPC codes
func (e *MemError) toGRPCCode() codes.Code {
	switch e.Code {
	case ErrCodeOK:
		return codes.OK
	case ErrCodeInvalidArgument, ErrCodeWidthMismatch, ErrCodeMaskMismatch,
		ErrCodeInvalidGeometry, ErrCodeInvalidReplica:
		return codes.InvalidArgument
	case ErrCodeAddressOutOfRange:
		return codes.OutOfRange
	case ErrCodeVotingFailure:
		return codes.DataLoss
	default:
		return codes.Internal
	}
}

// NewMemError creates a new MemError
func NewMemError(code ErrorCode, message string, cause error) *MemError {
	return &MemError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Cause:   cause,
	}
}

// WithDetail adds a detail to the error
func (e *MemError) WithDetail(key string, value interface{}) *MemError {
	e.Details[key] = value
	return e
}

// Convenience constructors for common errors

func InvalidArgument(message string, cause error) *MemError {
	return NewMemError(ErrCodeInvalidArgument, message, cause)
}

func AddressOutOfRange(addr, depth uint) *MemError {
	return NewMemError(ErrCodeAddressOutOfRange, fmt.Sprintf("address %d out of range [0, %d)", addr, depth), nil).
		WithDetail("address", addr).
		WithDetail("depth", depth)
}

func WidthMismatch(gotBytes, wantBytes int) *MemError {
	return NewMemError(ErrCodeWidthMismatch, fmt.Sprintf("data width %d bytes, store word width is %d bytes", gotBytes, wantBytes), nil).
		WithDetail("got_bytes", gotBytes).
		WithDetail("want_bytes", wantBytes)
}

func MaskMismatch(gotBytes, wantBytes int) *MemError {
	return NewMemError(ErrCodeMaskMismatch, fmt.Sprintf("mask width %d bytes, store mask width is %d bytes", gotBytes, wantBytes), nil).
		WithDetail("got_bytes", gotBytes).
		WithDetail("want_bytes", wantBytes)
}

func InvalidGeometry(reason string, cause error) *MemError {
	return NewMemError(ErrCodeInvalidGeometry, fmt.Sprintf("invalid geometry: %s", reason), cause)
}

func InvalidReplica(name string) *MemError {
	return NewMemError(ErrCodeInvalidReplica, fmt.Sprintf("invalid replica '%s'", name), nil).
		WithDetail("replica", name)
}

func VotingFailure(addr uint, a, b, c string) *MemError {
	return NewMemError(ErrCodeVotingFailure, fmt.Sprintf("voting failure at address %d: all three replicas disagree", addr), nil).
		WithDetail("address", addr).
		WithDetail("replica_a", a).
		WithDetail("replica_b", b).
		WithDetail("replica_c", c)
}

func InternalError(message string, cause error) *MemError {
	return NewMemError(ErrCodeInternal, message, cause)
}

// IsMemError checks if an error is a MemError
func IsMemError(err error) bool {
	_, ok := err.(*MemError)
	return ok
}

// GetCode extracts the error code from an error
func GetCode(err error) ErrorCode {
	if me, ok := err.(*MemError); ok {
		return me.Code
	}
	return ErrCodeInternal
}
