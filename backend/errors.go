package backend

import "errors"

var (
	// ErrUninitialized is returned by operations that need a current chain
	// member before any member exists.
	ErrUninitialized = errors.New("chain is not initialized")

	ErrAlreadyInitialized = errors.New("chain is already initialized")

	// ErrInvalidFirstIdentity covers every malformed shape of the first
	// account address: wrong domain, missing suffix, index other than 001.
	ErrInvalidFirstIdentity = errors.New("first account does not match the chain naming policy")

	// ErrIdentityMismatch means the confirmed account does not equal the
	// required next member. Never auto-corrected.
	ErrIdentityMismatch = errors.New("account does not match the required next chain member")

	ErrIndexOutOfRange = errors.New("no chain member at that position")

	// ErrQuotaNotExhausted is advisory: extension was requested before the
	// current account crossed the capacity threshold.
	ErrQuotaNotExhausted = errors.New("current account is not full enough to extend the chain")

	ErrStorageIO = errors.New("record storage failure")

	// ErrTransfer is the single terminal error of the upload chunk loop.
	ErrTransfer = errors.New("chunk transfer failed")
)
