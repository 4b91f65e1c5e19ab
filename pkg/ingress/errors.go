// Copyright 2025 Certen Protocol
//
// Confirmation Ingress Error Sentinels

package ingress

import "errors"

var (
	ErrUnknownSideEffect = errors.New("ingress: unknown side effect for xtx")
	ErrMissingProof      = errors.New("ingress: escrowed side effect requires an inclusion proof")
	ErrHeaderUnavailable = errors.New("ingress: no submitted header covers this side effect's height")
)
