package app

import (
	"github.com/Guilhem-Bonnet/Podkast/internal/ports"
)

var (
	ErrNotFound = ports.ErrNotFound
	ErrConflict = ports.ErrConflict
	ErrExpired  = ports.ErrExpired
)

// CodedError porte un code d'erreur stable pour l'API et les logs.
//
// Codes utilisés : validation_error, remote_unavailable, invalid_code.
type CodedError struct {
	Code    string
	Message string
	Err     error
}

func (e *CodedError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return e.Message
	}
	if e.Message == "" {
		return e.Err.Error()
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *CodedError) Unwrap() error { return e.Err }

func validationError(msg string) *CodedError {
	return &CodedError{Code: "validation_error", Message: msg}
}

func remoteUnavailable(msg string, err error) *CodedError {
	return &CodedError{Code: "remote_unavailable", Message: msg, Err: err}
}
