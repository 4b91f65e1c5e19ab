// Copyright 2025 Certen Protocol
//
// Registry Error Sentinels

package registry

import "errors"

var (
	ErrUnsupportedSideEffect = errors.New("selector not recognized by registry")
	ErrArityMismatch         = errors.New("argument arity mismatch")
	ErrTypeMismatch          = errors.New("argument type mismatch")
	ErrDecodeConfirmation    = errors.New("failed to decode confirmation")
	ErrConfirmationMismatch  = errors.New("confirmation output does not match declared schema")
	ErrKindAlreadyRegistered = errors.New("side-effect kind already registered")
)
