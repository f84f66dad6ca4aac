package util

import "errors"

var (
	ErrNotFound           = errors.New("record not found")
	ErrForbidden          = errors.New("permission denied")
	ErrConflict           = errors.New("duplicate record")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("username or email already registered")
	ErrInvalidFileType    = errors.New("unsupported file type")
)
