package ports

import "errors"

var ErrNotFound = errors.New("not found")

var ErrConflict = errors.New("conflict")

// ErrExpired : session ou code de connexion périmé.
var ErrExpired = errors.New("expired")
