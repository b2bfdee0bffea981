package bliss

import "errors"

var (
	// ErrUnknownParameterSet is returned for variant ids or OIDs outside the
	// registry (only BLISS-I, BLISS-III and BLISS-IV are supported).
	ErrUnknownParameterSet = errors.New("bliss: unknown parameter set")

	// ErrParameterMismatch is returned when a parameter set and its FFT
	// parameters disagree on n or q.
	ErrParameterMismatch = errors.New("bliss: FFT parameters do not match BLISS parameters")

	// ErrEncoding is returned for malformed key or signature encodings.
	ErrEncoding = errors.New("bliss: malformed encoding")

	// ErrEntropy is returned when the random generator fails to produce the
	// requested bytes.
	ErrEntropy = errors.New("bliss: entropy source failed")

	// ErrSampler is returned when the MGF1 bit spender cannot be built or its
	// bit stream is exhausted.
	ErrSampler = errors.New("bliss: sampler bit stream failed")

	// ErrKeyGenExhausted is returned when no invertible short secret was found
	// within the trial budget.
	ErrKeyGenExhausted = errors.New("bliss: secret key generation exhausted its trials")

	// ErrUnsupportedScheme is returned by signing and verification for any
	// scheme other than BLISS with SHA-512.
	ErrUnsupportedScheme = errors.New("bliss: unsupported signature scheme")
)
