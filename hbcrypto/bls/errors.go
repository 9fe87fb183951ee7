package bls

import "errors"

var (
	errWrongType         = errors.New("bls: value was not produced by this suite")
	errNoShares          = errors.New("bls: no decryption shares supplied")
	errTruncatedWireData = errors.New("bls: truncated wire data")
	errInvalidCiphertext = errors.New("bls: ciphertext failed self-verification")
	errTooFewValidators  = errors.New("bls: n must be at least 3f+1")
)
