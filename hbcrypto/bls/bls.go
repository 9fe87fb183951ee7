// Package bls implements hbcrypto.Suite using BLS12-381 pairings, grounded
// on github.com/consensys/gnark-crypto/ecc/bls12-381 — a direct (not
// indirect) dependency of the teacher repository, and the library used for
// BLS group-key validation and per-share partial signing elsewhere in the
// retrieved example pack.
//
// The scheme is a pairing-based threshold KEM: the ephemeral point U = r*G1
// and the group public key PK = s*G2 combine under the pairing to a shared
// secret e(U,PK) = e(G1,G2)^{rs}, used to derive an AES-GCM key. Decryption
// shares are s_i*U; Lagrange-combining them at x=0 reconstructs s*U without
// ever reconstructing s. A ciphertext additionally carries W = r*H(U||CT)
// for H hashed into G2, letting Verify check e(G1,W) == e(U,H) — a
// consistency proof binding U and the payload to the same randomness r
// without requiring any secret key material.
package bls

import (
	"crypto/aes"
	"crypto/cipher"
	crand "crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"math/big"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/oasysgames/hbbft-core/hbcrypto"
)

const (
	g1CompressedLen = 48
	g2CompressedLen = 96
	nonceLen        = 12
)

var hashToG2DST = []byte("HBBFT-CORE-V1-BLS12381G2_XMD:SHA-256_SSWU_RO_")

// Ciphertext is the bls Suite's concrete hbcrypto.Ciphertext.
type Ciphertext struct {
	U     bls12381.G1Affine
	W     bls12381.G2Affine
	Nonce [nonceLen]byte
	CT    []byte
}

// MarshalBinary encodes U || W || Nonce || len(CT) || CT.
func (c *Ciphertext) MarshalBinary() ([]byte, error) {
	uBytes := c.U.Bytes()
	wBytes := c.W.Bytes()
	out := make([]byte, 0, g1CompressedLen+g2CompressedLen+nonceLen+4+len(c.CT))
	out = append(out, uBytes[:]...)
	out = append(out, wBytes[:]...)
	out = append(out, c.Nonce[:]...)
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(c.CT)))
	out = append(out, lenBuf[:]...)
	return append(out, c.CT...), nil
}

// Verify checks the consistency proof binding U and the ciphertext payload,
// without requiring any secret key material.
func (c *Ciphertext) Verify() bool {
	uBytes := c.U.Bytes()
	h, err := bls12381.HashToG2(append(append([]byte{}, uBytes[:]...), c.CT...), hashToG2DST)
	if err != nil {
		return false
	}
	_, _, g1Gen, _ := bls12381.Generators()
	var negG1 bls12381.G1Affine
	negG1.Neg(&g1Gen)
	ok, err := bls12381.PairingCheck(
		[]bls12381.G1Affine{negG1, c.U},
		[]bls12381.G2Affine{c.W, h},
	)
	return err == nil && ok
}

// DecryptionShare is the bls Suite's concrete hbcrypto.DecryptionShare.
type DecryptionShare struct {
	Point bls12381.G1Affine
}

// MarshalBinary encodes the compressed G1 point.
func (s *DecryptionShare) MarshalBinary() ([]byte, error) {
	b := s.Point.Bytes()
	return b[:], nil
}

// Suite implements hbcrypto.Suite with BLS12-381 pairings.
type Suite struct{}

// NewSuite returns a ready-to-use bls Suite. It holds no state; a single
// value may be shared across every HoneyBadger instance in a process.
func NewSuite() *Suite { return &Suite{} }

// Encrypt implements hbcrypto.Suite.
func (Suite) Encrypt(groupPublicKey []byte, plaintext []byte) (hbcrypto.Ciphertext, error) {
	var pk bls12381.G2Affine
	if err := pk.Unmarshal(groupPublicKey); err != nil {
		return nil, err
	}

	var r fr.Element
	if _, err := r.SetRandom(); err != nil {
		return nil, err
	}
	rBig := elementToBigInt(&r)

	_, _, g1Gen, _ := bls12381.Generators()
	var u bls12381.G1Affine
	u.ScalarMultiplication(&g1Gen, rBig)

	sharedSecret, err := bls12381.Pair([]bls12381.G1Affine{u}, []bls12381.G2Affine{pk})
	if err != nil {
		return nil, err
	}
	key := deriveSymmetricKey(sharedSecret)

	nonce := make([]byte, nonceLen)
	if _, err := crand.Read(nonce); err != nil {
		return nil, err
	}
	ct, err := aesGCMEncrypt(key, nonce, plaintext)
	if err != nil {
		return nil, err
	}

	uBytes := u.Bytes()
	h, err := bls12381.HashToG2(append(append([]byte{}, uBytes[:]...), ct...), hashToG2DST)
	if err != nil {
		return nil, err
	}
	var w bls12381.G2Affine
	w.ScalarMultiplication(&h, rBig)

	var nonceArr [nonceLen]byte
	copy(nonceArr[:], nonce)
	return &Ciphertext{U: u, W: w, Nonce: nonceArr, CT: ct}, nil
}

// DecodeCiphertext implements hbcrypto.Suite.
func (Suite) DecodeCiphertext(data []byte) (hbcrypto.Ciphertext, error) {
	const head = g1CompressedLen + g2CompressedLen + nonceLen + 4
	if len(data) < head {
		return nil, errTruncatedWireData
	}
	var u bls12381.G1Affine
	if err := u.Unmarshal(data[:g1CompressedLen]); err != nil {
		return nil, err
	}
	var w bls12381.G2Affine
	if err := w.Unmarshal(data[g1CompressedLen : g1CompressedLen+g2CompressedLen]); err != nil {
		return nil, err
	}
	var nonce [nonceLen]byte
	copy(nonce[:], data[g1CompressedLen+g2CompressedLen:g1CompressedLen+g2CompressedLen+nonceLen])
	ctLen := binary.BigEndian.Uint32(data[head-4 : head])
	if uint32(len(data)-head) != ctLen {
		return nil, errTruncatedWireData
	}
	ct := append([]byte(nil), data[head:]...)
	return &Ciphertext{U: u, W: w, Nonce: nonce, CT: ct}, nil
}

// DecryptShare implements hbcrypto.Suite.
func (Suite) DecryptShare(secretKeyShare []byte, ciphertext hbcrypto.Ciphertext) (hbcrypto.DecryptionShare, error) {
	c, ok := ciphertext.(*Ciphertext)
	if !ok {
		return nil, errWrongType
	}
	if !c.Verify() {
		return nil, errInvalidCiphertext
	}
	var sk fr.Element
	sk.SetBytes(secretKeyShare)

	var point bls12381.G1Affine
	point.ScalarMultiplication(&c.U, elementToBigInt(&sk))
	return &DecryptionShare{Point: point}, nil
}

// DecodeShare implements hbcrypto.Suite.
func (Suite) DecodeShare(data []byte) (hbcrypto.DecryptionShare, error) {
	if len(data) != g1CompressedLen {
		return nil, errTruncatedWireData
	}
	var p bls12381.G1Affine
	if err := p.Unmarshal(data); err != nil {
		return nil, err
	}
	return &DecryptionShare{Point: p}, nil
}

// VerifyDecryptionShare implements hbcrypto.Suite.
func (Suite) VerifyDecryptionShare(publicKeyShare []byte, shareIface hbcrypto.DecryptionShare, ciphertext hbcrypto.Ciphertext) bool {
	share, ok := shareIface.(*DecryptionShare)
	if !ok {
		return false
	}
	c, ok := ciphertext.(*Ciphertext)
	if !ok {
		return false
	}
	var pk bls12381.G2Affine
	if err := pk.Unmarshal(publicKeyShare); err != nil {
		return false
	}
	_, _, _, g2Gen := bls12381.Generators()
	var negShare bls12381.G1Affine
	negShare.Neg(&share.Point)
	ok2, err := bls12381.PairingCheck(
		[]bls12381.G1Affine{negShare, c.U},
		[]bls12381.G2Affine{g2Gen, pk},
	)
	return err == nil && ok2
}

// CombineShares implements hbcrypto.Suite.
func (Suite) CombineShares(indexedShares map[uint64]hbcrypto.DecryptionShare, ciphertext hbcrypto.Ciphertext) ([]byte, error) {
	if len(indexedShares) == 0 {
		return nil, errNoShares
	}
	c, ok := ciphertext.(*Ciphertext)
	if !ok {
		return nil, errWrongType
	}

	indices := make([]uint64, 0, len(indexedShares))
	for idx := range indexedShares {
		indices = append(indices, idx)
	}
	lambdas := lagrangeCoefficientsAtZero(indices)

	var acc bls12381.G1Jac
	for idx, shareIface := range indexedShares {
		share, ok := shareIface.(*DecryptionShare)
		if !ok {
			return nil, errWrongType
		}
		lambda := lambdas[idx]
		var term bls12381.G1Affine
		term.ScalarMultiplication(&share.Point, elementToBigInt(&lambda))
		acc.AddMixed(&term)
	}
	var combined bls12381.G1Affine
	combined.FromJacobian(&acc)

	_, _, _, g2Gen := bls12381.Generators()
	sharedSecret, err := bls12381.Pair([]bls12381.G1Affine{combined}, []bls12381.G2Affine{g2Gen})
	if err != nil {
		return nil, err
	}
	key := deriveSymmetricKey(sharedSecret)
	return aesGCMDecrypt(key, c.Nonce, c.CT)
}

// lagrangeCoefficientsAtZero computes, for each index i in indices, the
// Lagrange basis coefficient lambda_i such that sum_i lambda_i * f(i) =
// f(0) for any polynomial f of degree < len(indices).
func lagrangeCoefficientsAtZero(indices []uint64) map[uint64]fr.Element {
	coeffs := make(map[uint64]fr.Element, len(indices))
	for _, i := range indices {
		var num, den, xi fr.Element
		num.SetOne()
		den.SetOne()
		xi.SetUint64(i)
		for _, j := range indices {
			if j == i {
				continue
			}
			var xj, negXj, diff fr.Element
			xj.SetUint64(j)
			negXj.Neg(&xj)
			num.Mul(&num, &negXj) // (0 - j)
			diff.Sub(&xi, &xj)    // (i - j)
			den.Mul(&den, &diff)
		}
		var denInv, lambda fr.Element
		denInv.Inverse(&den)
		lambda.Mul(&num, &denInv)
		coeffs[i] = lambda
	}
	return coeffs
}

func deriveSymmetricKey(gt bls12381.GT) []byte {
	b := gt.Bytes()
	sum := sha256.Sum256(b[:])
	return sum[:]
}

func aesGCMEncrypt(key, nonce, plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCMWithNonceSize(block, len(nonce))
	if err != nil {
		return nil, err
	}
	return gcm.Seal(nil, nonce, plaintext, nil), nil
}

func aesGCMDecrypt(key []byte, nonce [nonceLen]byte, ct []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCMWithNonceSize(block, nonceLen)
	if err != nil {
		return nil, err
	}
	return gcm.Open(nil, nonce[:], ct, nil)
}
