// Copyright 2025 Certen Protocol
//
// Target Directory Error Sentinels

package xdns

import "errors"

var (
	ErrUnknownTarget       = errors.New("no xdns record for target")
	ErrRecordExists        = errors.New("xdns record already exists")
	ErrPurgeWhileReference = errors.New("cannot purge target with unfinished referencing xtx")
	ErrNoEscrowAccount     = errors.New("target has no escrow account configured")
)
