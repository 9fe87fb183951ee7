// Package hbcrypto defines the threshold cryptography capability the
// HoneyBadger core requires (spec.md §6). Key generation, share combination
// and the wire shape of ciphertexts/shares are collaborators external to the
// core; this package only fixes the interface they must satisfy, plus (in
// the bls subpackage) one concrete, pairing-based implementation.
package hbcrypto

// Ciphertext is the output of threshold encryption under a group public
// key. It must support canonical (de)serialization and self-verification:
// Verify reports whether the ciphertext is internally consistent, without
// requiring any secret key material.
type Ciphertext interface {
	MarshalBinary() ([]byte, error)
	Verify() bool
}

// DecryptionShare is one validator's partial decryption of a Ciphertext.
type DecryptionShare interface {
	MarshalBinary() ([]byte, error)
}

// Suite is the cryptographic capability the core consumes as an opaque
// collaborator. All operations are pure functions of their inputs; the
// concrete key material (group public key, our secret key share, peers'
// public key shares) is supplied by the caller at each call site rather
// than being owned by the Suite itself, so one Suite value can serve every
// HoneyBadger instance in a process.
type Suite interface {
	// Encrypt threshold-encrypts plaintext under groupPublicKey. Randomized:
	// calling it twice with the same plaintext yields different ciphertexts.
	Encrypt(groupPublicKey []byte, plaintext []byte) (Ciphertext, error)

	// DecodeCiphertext parses bytes produced by Ciphertext.MarshalBinary.
	// Returns an error if the bytes are not a well-formed ciphertext of this
	// suite; it does not call Verify.
	DecodeCiphertext(data []byte) (Ciphertext, error)

	// DecryptShare applies secretKeyShare to ciphertext, producing this
	// validator's partial decryption. Returns an error if the ciphertext is
	// malformed, including when it fails Ciphertext.Verify.
	DecryptShare(secretKeyShare []byte, ciphertext Ciphertext) (DecryptionShare, error)

	// DecodeShare parses bytes produced by DecryptionShare.MarshalBinary.
	DecodeShare(data []byte) (DecryptionShare, error)

	// VerifyDecryptionShare reports whether share is a valid partial
	// decryption of ciphertext under the holder of publicKeyShare.
	VerifyDecryptionShare(publicKeyShare []byte, share DecryptionShare, ciphertext Ciphertext) bool

	// CombineShares reconstructs the plaintext from at least f+1 valid,
	// index-distinct decryption shares. indexedShares keys by each
	// contributing validator's NetworkInfo node index.
	CombineShares(indexedShares map[uint64]DecryptionShare, ciphertext Ciphertext) ([]byte, error)
}
