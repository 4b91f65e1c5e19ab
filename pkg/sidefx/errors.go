// Copyright 2025 Certen Protocol
//
// Shared Error Sentinels for the Circuit Data Model

package sidefx

import "errors"

var (
	ErrXtxNotFound          = errors.New("xtx not found")
	ErrSfxNotFound          = errors.New("side effect not found")
	ErrInsuranceNotFound    = errors.New("insurance deposit not found")
	ErrWrongStatus          = errors.New("operation not permitted in current xtx status")
	ErrInsuranceNotRequired = errors.New("side effect does not require an insurance bond")
	ErrAlreadyBonded        = errors.New("insurance deposit already bonded")
	ErrAlreadyConfirmed     = errors.New("side effect already confirmed")
	ErrSequentialViolation  = errors.New("earlier step has unconfirmed side effects")
	ErrInsufficientBalance  = errors.New("insufficient balance")
)
