package service

import "errors"

var (
	// ErrBadRequest indicates missing or malformed request input.
	ErrBadRequest = errors.New("bad request")

	// ErrAccessDenied indicates the oracle cleanly denied the account:
	// no active subscription and no creator role.
	ErrAccessDenied = errors.New("access denied")

	// ErrCouldNotDecrypt is the caller-facing collapse of all
	// decryption failures. The underlying cause (malformed envelope,
	// tag mismatch, wrong key) is logged server-side only.
	ErrCouldNotDecrypt = errors.New("could not decrypt file")
)
