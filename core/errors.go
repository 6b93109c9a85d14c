package core

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedAddress is returned when an address is not valid base58 or
	// does not decode to exactly 32 bytes
	ErrMalformedAddress = errors.New("malformed wallet address")

	// ErrUnknownNamespace is returned when a localpart lacks the wallet namespace tag
	ErrUnknownNamespace = errors.New("unknown localpart namespace")

	// ErrMalformedIdentifier is returned when a localpart is not 64 hex characters
	ErrMalformedIdentifier = errors.New("malformed localpart identifier")

	// ErrNonceNotFound is returned when no challenge exists for the nonce
	ErrNonceNotFound = errors.New("nonce not found")

	// ErrNonceExpired is returned when the challenge's TTL has elapsed
	ErrNonceExpired = errors.New("nonce has expired")

	// ErrNonceAlreadyUsed is returned when the challenge was already consumed
	ErrNonceAlreadyUsed = errors.New("nonce already used")

	// ErrUnknownLoginType is returned when the login type tag is not recognized
	ErrUnknownLoginType = errors.New("unknown login type")

	// ErrInvalidSignature is returned when signature verification fails
	ErrInvalidSignature = errors.New("invalid signature")

	// ErrEmptyEndpoint is returned when a delegation endpoint is empty
	ErrEmptyEndpoint = errors.New("endpoint cannot be empty")

	// ErrInvalidEndpoint is returned when a delegation endpoint is not a valid hostname
	ErrInvalidEndpoint = errors.New("endpoint is not a valid hostname")

	// ErrUnauthorized is returned when the signer does not own the targeted record
	ErrUnauthorized = errors.New("signer does not own this record")

	// ErrNotFound is returned when no delegation record exists at the address
	ErrNotFound = errors.New("delegation record not found")

	// ErrFeatureDisabled is returned when wallet authentication is administratively off
	ErrFeatureDisabled = errors.New("wallet authentication is disabled")

	// ErrTruncatedBuffer is returned when a wire buffer is shorter than its declared contents
	ErrTruncatedBuffer = errors.New("buffer truncated")
)

// ErrEndpointTooLong specializes ErrInvalidEndpoint for the length check so
// callers can report it precisely; errors.Is still matches ErrInvalidEndpoint.
var ErrEndpointTooLong = fmt.Errorf("%w: exceeds %d bytes", ErrInvalidEndpoint, MaxEndpointLen)
