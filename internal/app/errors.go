package app

import "errors"

// Conditions reported back to operators. None of them is fatal.
var (
	ErrSessionNotFound      = errors.New("broadcast session not found")
	ErrSessionStateMismatch = errors.New("broadcast session is not awaiting this input")
	ErrDialogNotFound       = errors.New("operator dialog not found")
	ErrEmptyInput           = errors.New("input is empty")
	ErrUnsupportedFormat    = errors.New("unsupported document format")
)
