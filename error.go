package sdsget

import (
	"errors"
	"fmt"
)

// Application error codes.
//
// These map the failure taxonomy of the acquisition pipeline. The
// orchestrator downgrades every per-(product, language) code to a logged
// skip; only ESESSION aborts a run.
const (
	ECONTENT   = "unexpected_content"    // response is not an acceptable document
	EINTERNAL  = "internal"              // unexpected internal error
	EINVALID   = "invalid"               // validation failed on caller input
	ELANGUAGE  = "language_unavailable"  // requested language not offered by the page
	ENOTFOUND  = "not_found"             // product, metadata, or document missing
	ESESSION   = "session_unavailable"   // session could not be established
	ESTATUS    = "http_status"           // vendor returned a non-success status
	ETRANSPORT = "transport"             // network failure or timeout
)

// Error represents an application-specific error. Application errors can be
// unwrapped by the caller to extract the code and message.
type Error struct {
	// Machine-readable error code.
	Code string

	// Human-readable message.
	Message string
}

// Error implements the error interface. Not used by the application
// otherwise.
func (e *Error) Error() string {
	return fmt.Sprintf("sdsget error: code=%s message=%s", e.Code, e.Message)
}

// ErrorCode unwraps an application error and returns its code.
// Non-application errors always return EINTERNAL.
func ErrorCode(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Code
	}
	return EINTERNAL
}

// ErrorMessage unwraps an application error and returns its message.
// Non-application errors always return "Internal error".
func ErrorMessage(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Message
	}
	return "Internal error"
}

// Errorf is a helper function to return an Error with a given code and
// formatted message.
func Errorf(code string, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}
