package honeybadger

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/oasysgames/hbbft-core/hbcrypto/bls"
	"github.com/oasysgames/hbbft-core/wire"
)

// dealtNet builds the NetworkInfo for validator index i of an n-validator,
// f-fault-tolerant cluster sharing one BLS-dealt keyset.
func dealtNet(t *testing.T, ks *bls.KeySet, ids []NodeID, f, i int) *NetworkInfo {
	t.Helper()
	pkShares := make(map[NodeID]PublicKeyShare, len(ids))
	for j, id := range ids {
		pkShares[id] = ks.PublicShares[uint64(j+1)]
	}
	return NewNetworkInfo(ids[i], ids, f, ks.GroupPublicKey, ks.SecretShares[uint64(i+1)], pkShares)
}

func dealtCluster(t *testing.T, n, f int) ([]NodeID, *bls.KeySet) {
	t.Helper()
	ks, err := bls.Deal(n, f)
	require.NoError(t, err)
	ids := make([]NodeID, n)
	for i := 0; i < n; i++ {
		ids[i] = common.BigToAddress(big.NewInt(int64(i + 1)))
	}
	return ids, ks
}

func encodeContribution(t *testing.T, data []byte) []byte {
	t.Helper()
	out, err := wire.EncodeContribution(wire.Contribution{Opaque: data})
	require.NoError(t, err)
	return out
}

func TestDecryptionCoordinatorHappyPath(t *testing.T) {
	ids, ks := dealtCluster(t, 4, 1)
	net := dealtNet(t, ks, ids, 1, 0)
	suite := bls.NewSuite()
	d := newDecryptionCoordinator(net, suite)

	proposer := ids[1]
	contribBytes := []byte("a contribution")
	ct, err := suite.Encrypt(net.GroupPublicKey(), encodeContribution(t, contribBytes))
	require.NoError(t, err)
	ctBytes, err := ct.MarshalBinary()
	require.NoError(t, err)

	var faults FaultLog
	var queue messageQueue
	d.registerCiphertexts(0, map[NodeID][]byte{proposer: ctBytes}, &faults, &queue)
	require.Empty(t, faults)
	// node 0's own share was produced and broadcast as part of registerCiphertexts.
	require.Len(t, queue, 1)

	// Feed in one more share so the threshold (>f=1, i.e. >=2 total) is met.
	otherNet := dealtNet(t, ks, ids, 1, 1)
	share, err := suite.DecryptShare(otherNet.SecretKeyShare(), ct)
	require.NoError(t, err)
	shareBytes, err := share.MarshalBinary()
	require.NoError(t, err)
	d.handleShare(0, ids[1], proposer, shareBytes, &faults)
	require.Empty(t, faults)

	d.attemptDecrypt(0, proposer)
	require.Contains(t, d.decrypted[0], proposer)

	batch, ok := d.attemptEmitBatch(0, &faults)
	require.True(t, ok)
	require.Equal(t, contribBytes, batch.Contributions[proposer])
}

func TestDecryptionCoordinatorFaultsMaliciousShare(t *testing.T) {
	ids, ks := dealtCluster(t, 4, 1)
	net := dealtNet(t, ks, ids, 1, 0)
	suite := bls.NewSuite()
	d := newDecryptionCoordinator(net, suite)

	proposer := ids[1]
	attacker := ids[2]

	ct, err := suite.Encrypt(net.GroupPublicKey(), encodeContribution(t, []byte("payload")))
	require.NoError(t, err)
	ctBytes, err := ct.MarshalBinary()
	require.NoError(t, err)

	var faults FaultLog
	var queue messageQueue
	d.registerCiphertexts(0, map[NodeID][]byte{proposer: ctBytes}, &faults, &queue)
	faults = nil

	// attacker's real secret share, but applied to a decoy ciphertext for a
	// different plaintext: a valid-looking share that does not verify
	// against the registered ciphertext.
	decoyCt, err := suite.Encrypt(net.GroupPublicKey(), encodeContribution(t, []byte("decoy")))
	require.NoError(t, err)
	attackerNet := dealtNet(t, ks, ids, 1, 2)
	forgedShare, err := suite.DecryptShare(attackerNet.SecretKeyShare(), decoyCt)
	require.NoError(t, err)
	forgedBytes, err := forgedShare.MarshalBinary()
	require.NoError(t, err)

	d.handleShare(0, attacker, proposer, forgedBytes, &faults)

	require.Len(t, faults, 1)
	require.Equal(t, attacker, faults[0].NodeID)
	require.Equal(t, UnverifiedDecryptionShareSender, faults[0].Kind)
	// Only our own share, stored by registerCiphertexts, is held; the
	// attacker's forged share was not stored.
	require.NotContains(t, d.receivedShares[0][proposer], attacker)
	require.Len(t, d.receivedShares[0][proposer], 1)
}

func TestDecryptionCoordinatorFaultsInvalidCiphertext(t *testing.T) {
	ids, ks := dealtCluster(t, 4, 1)
	net := dealtNet(t, ks, ids, 1, 0)
	suite := bls.NewSuite()
	d := newDecryptionCoordinator(net, suite)

	proposer := ids[1]

	var faults FaultLog
	var queue messageQueue
	d.registerCiphertexts(0, map[NodeID][]byte{proposer: []byte("not a ciphertext")}, &faults, &queue)

	require.Len(t, faults, 1)
	require.Equal(t, proposer, faults[0].NodeID)
	require.Equal(t, InvalidCiphertext, faults[0].Kind)
	_, ok := d.ciphertextFor(0, proposer)
	require.False(t, ok)
}

func TestDecryptionCoordinatorBatchDeserializationFault(t *testing.T) {
	ids, ks := dealtCluster(t, 4, 1)
	net := dealtNet(t, ks, ids, 1, 0)
	suite := bls.NewSuite()
	d := newDecryptionCoordinator(net, suite)

	proposer := ids[1]
	// Encrypt raw bytes that are NOT a canonical wire.Contribution, so
	// decoding the decrypted plaintext as a Contribution fails in Step D.
	ct, err := suite.Encrypt(net.GroupPublicKey(), []byte{0xff, 0xff, 0xff})
	require.NoError(t, err)
	ctBytes, err := ct.MarshalBinary()
	require.NoError(t, err)

	var faults FaultLog
	var queue messageQueue
	d.registerCiphertexts(0, map[NodeID][]byte{proposer: ctBytes}, &faults, &queue)

	// Our own share alone does not clear the f=1 threshold; add one more.
	otherNet := dealtNet(t, ks, ids, 1, 2)
	share, err := suite.DecryptShare(otherNet.SecretKeyShare(), ct)
	require.NoError(t, err)
	shareBytes, err := share.MarshalBinary()
	require.NoError(t, err)
	d.handleShare(0, ids[2], proposer, shareBytes, &faults)

	d.attemptDecrypt(0, proposer)
	require.Contains(t, d.decrypted[0], proposer)

	batch, ok := d.attemptEmitBatch(0, &faults)
	require.True(t, ok)
	require.Empty(t, batch.Contributions)

	found := false
	for _, f := range faults {
		if f.NodeID == proposer && f.Kind == BatchDeserializationFailed {
			found = true
		}
	}
	require.True(t, found)
}
