package bls

import (
	"math/big"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
)

// KeySet is the output of a centralized Shamir dealing of a BLS12-381
// threshold keypair. It exists purely for tests and local clusters: a real
// deployment derives these values from a distributed key generation
// protocol, which is out of scope here (spec.md §1 keeps key generation
// external to the core).
type KeySet struct {
	GroupPublicKey []byte            // compressed G2, 96 bytes
	SecretShares   map[uint64][]byte // node index (1..n) -> 32-byte scalar
	PublicShares   map[uint64][]byte // node index (1..n) -> compressed G2, 96 bytes
}

// Deal generates a degree-f Shamir sharing of a random group secret for n
// validators, tolerating f Byzantine faults. It returns errTooFewValidators
// unless f >= 0 and n >= 3f+1, i.e. the core's 3f < n precondition.
func Deal(n, f int) (*KeySet, error) {
	if f < 0 || n < 3*f+1 {
		return nil, errTooFewValidators
	}

	coeffs := make([]fr.Element, f+1)
	for i := range coeffs {
		if _, err := coeffs[i].SetRandom(); err != nil {
			return nil, err
		}
	}

	_, _, _, g2Gen := bls12381.Generators()

	var groupPK bls12381.G2Affine
	groupPK.ScalarMultiplication(&g2Gen, elementToBigInt(&coeffs[0]))
	gpkBytes := groupPK.Bytes()

	secretShares := make(map[uint64][]byte, n)
	publicShares := make(map[uint64][]byte, n)
	for i := 1; i <= n; i++ {
		share := evalPoly(coeffs, uint64(i))
		shareBytes := share.Bytes()
		secretShares[uint64(i)] = shareBytes[:]

		var pkShare bls12381.G2Affine
		pkShare.ScalarMultiplication(&g2Gen, elementToBigInt(&share))
		pkBytes := pkShare.Bytes()
		publicShares[uint64(i)] = pkBytes[:]
	}

	return &KeySet{
		GroupPublicKey: gpkBytes[:],
		SecretShares:   secretShares,
		PublicShares:   publicShares,
	}, nil
}

func evalPoly(coeffs []fr.Element, x uint64) fr.Element {
	var result, xPow, xElem fr.Element
	result.SetZero()
	xPow.SetOne()
	xElem.SetUint64(x)
	for _, c := range coeffs {
		var term fr.Element
		term.Mul(&c, &xPow)
		result.Add(&result, &term)
		xPow.Mul(&xPow, &xElem)
	}
	return result
}

func elementToBigInt(e *fr.Element) *big.Int {
	return e.BigInt(new(big.Int))
}
