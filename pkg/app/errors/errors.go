// Package errors contains helper functions and types to work with errors
package errors

import (
	"errors"
	"net/http"
)

// Category defines error category
type Category int

const (
	// CategoryNoError means no error occurred.
	CategoryNoError Category = iota
	// CategoryValidation The client sent malformed or invalid input,
	// for example a bad wallet address or an out-of-range handle.
	CategoryValidation
	// CategoryUnauthenticated The request carries no valid identity
	CategoryUnauthenticated
	// CategoryNotFound The client is attempting to access a resource that does not exist
	CategoryNotFound
	// CategoryConflict The client sent data that conflicts with existing data
	CategoryConflict
	// CategoryReplaySuspected A passkey signature counter regression was detected
	CategoryReplaySuspected
	// CategoryUpstreamFailure A dependent provider call failed
	CategoryUpstreamFailure
	// CategoryInternal The service failed in an unexpected way
	CategoryInternal
)

// Code returns the machine-readable error code for the category.
// Every error response carries one of these alongside the human message.
func (c Category) Code() string {
	switch c {
	case CategoryValidation:
		return "VALIDATION_ERROR"
	case CategoryUnauthenticated:
		return "UNAUTHENTICATED"
	case CategoryNotFound:
		return "NOT_FOUND"
	case CategoryConflict:
		return "CONFLICT"
	case CategoryReplaySuspected:
		return "REPLAY_SUSPECTED"
	case CategoryUpstreamFailure:
		return "UPSTREAM_FAILURE"
	default:
		return "INTERNAL_ERROR"
	}
}

func (c Category) String() string {
	return c.Code()
}

// ServiceError represents service specific type that
// is used all over the services.
type ServiceError struct {
	Category Category
	Message  string
	Err      error
}

// Error method to comply with error interface
func (err ServiceError) Error() string {
	if err.Err != nil {
		return err.Err.Error()
	}
	return err.Message
}

// Unwrap returns the underlying error
func (err ServiceError) Unwrap() error {
	return err.Err
}

// Is implements the custom condition to check an error is equal to a service error
func (err ServiceError) Is(target error) bool {
	return err.Message == target.Error()
}

// Is checks that provided error is a ServiceError with desired Category
func Is(err error, cat Category) bool {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) && svcErr.Category == cat {
		return true
	}
	return false
}

// IsInternalError checks that provided error is an internal system error
func IsInternalError(err error) bool {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) && svcErr.Category < CategoryUpstreamFailure {
		return false
	}
	return true
}

// InternalError returns a generic internal error
// this error message sent to the user is "Internal Server Error"
// the error passed is logged in the logger
func InternalError(err error) error {
	if err == nil {
		err = errors.New("internal server error")
	}
	return &ServiceError{
		Category: CategoryInternal,
		Message:  "Internal Server Error",
		Err:      err,
	}
}

// NotFoundError returns an error with category NotFound
// the error message provided is returned to the user
// the err object provided is logged in logger
func NotFoundError(err error, message string) error {
	if err == nil {
		err = errors.New("not found:" + message)
	}
	return &ServiceError{
		Category: CategoryNotFound,
		Message:  message,
		Err:      err,
	}
}

// ValidationError returns an error with category Validation
// the error message provided is returned to the user
// the error object provided is logged in logger
func ValidationError(err error, message string) error {
	if err == nil {
		err = errors.New("invalid input:" + message)
	}
	return &ServiceError{
		Category: CategoryValidation,
		Message:  message,
		Err:      err,
	}
}

// UnauthenticatedError returns an error with category Unauthenticated
// the error message provided is returned to the user
// the error object provided is logged in logger
func UnauthenticatedError(err error, message string) error {
	if err == nil {
		err = errors.New("unauthenticated")
	}
	return &ServiceError{
		Category: CategoryUnauthenticated,
		Message:  message,
		Err:      err,
	}
}

// ConflictError returns an error with category Conflict
// the error message provided is returned to the user
// the error object provided is logged in logger
func ConflictError(err error, message string) error {
	if err == nil {
		err = errors.New("conflict")
	}
	return &ServiceError{
		Category: CategoryConflict,
		Message:  message,
		Err:      err,
	}
}

// ReplaySuspectedError returns an error with category ReplaySuspected.
// Counter regression is a hard rejection, never a warning.
func ReplaySuspectedError(err error, message string) error {
	if err == nil {
		err = errors.New("replay suspected")
	}
	return &ServiceError{
		Category: CategoryReplaySuspected,
		Message:  message,
		Err:      err,
	}
}

// UpstreamFailureError returns an error with category UpstreamFailure
// the error message provided is returned to the user
// the error object provided is logged in logger
func UpstreamFailureError(err error, message string) error {
	if err == nil {
		err = errors.New("upstream failure:" + message)
	}
	return &ServiceError{
		Category: CategoryUpstreamFailure,
		Message:  message,
		Err:      err,
	}
}

// StatusCode returns the HTTP status code for the error category
func (err ServiceError) StatusCode() int {
	switch err.Category {
	case CategoryValidation, CategoryReplaySuspected:
		return http.StatusBadRequest
	case CategoryUnauthenticated:
		return http.StatusUnauthorized
	case CategoryNotFound:
		return http.StatusNotFound
	case CategoryConflict:
		return http.StatusConflict
	case CategoryUpstreamFailure, CategoryInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
