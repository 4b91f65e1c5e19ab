// Copyright 2025 Certen Protocol
//
// XTX Engine Error Sentinels

package xtx

import "errors"

var (
	// ErrNoReward is returned when a submission names a reward the
	// requester cannot cover; the submission is rejected atomically.
	ErrNoReward = errors.New("xtx: requester cannot cover declared reward")
	// ErrEmptySubmission is returned for a composable transaction with no
	// steps at all.
	ErrEmptySubmission = errors.New("xtx: submission has no side effects")
	// ErrUnknownRelayer guards BondInsuranceDeposit against an empty
	// relayer account.
	ErrUnknownRelayer = errors.New("xtx: relayer account required to bond")
)
