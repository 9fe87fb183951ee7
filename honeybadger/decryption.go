package honeybadger

import (
	"bytes"
	"sort"

	"github.com/ethereum/go-ethereum/log"

	"github.com/oasysgames/hbbft-core/hbcrypto"
	"github.com/oasysgames/hbbft-core/wire"
)

// decryptionCoordinator manages ciphertexts, decryption shares, share
// verification and threshold combination (spec.md §4.4). It is the
// algorithmic heart of the core; everything else exists to feed it ACS
// output and peer shares in order.
type decryptionCoordinator struct {
	net   *NetworkInfo
	suite hbcrypto.Suite

	ciphertexts    map[Epoch]map[NodeID]hbcrypto.Ciphertext
	rejected       map[Epoch]map[NodeID]bool
	receivedShares map[Epoch]map[NodeID]map[NodeID]hbcrypto.DecryptionShare
	decrypted      map[Epoch]map[NodeID][]byte
}

func newDecryptionCoordinator(net *NetworkInfo, suite hbcrypto.Suite) *decryptionCoordinator {
	return &decryptionCoordinator{
		net:            net,
		suite:          suite,
		ciphertexts:    make(map[Epoch]map[NodeID]hbcrypto.Ciphertext),
		rejected:       make(map[Epoch]map[NodeID]bool),
		receivedShares: make(map[Epoch]map[NodeID]map[NodeID]hbcrypto.DecryptionShare),
		decrypted:      make(map[Epoch]map[NodeID][]byte),
	}
}

func (d *decryptionCoordinator) ciphertextFor(e Epoch, proposerID NodeID) (hbcrypto.Ciphertext, bool) {
	m, ok := d.ciphertexts[e]
	if !ok {
		return nil, false
	}
	ct, ok := m[proposerID]
	return ct, ok
}

func (d *decryptionCoordinator) storeShare(e Epoch, proposerID, sender NodeID, share hbcrypto.DecryptionShare) {
	byProposer, ok := d.receivedShares[e]
	if !ok {
		byProposer = make(map[NodeID]map[NodeID]hbcrypto.DecryptionShare)
		d.receivedShares[e] = byProposer
	}
	bySender, ok := byProposer[proposerID]
	if !ok {
		bySender = make(map[NodeID]hbcrypto.DecryptionShare)
		byProposer[proposerID] = bySender
	}
	bySender[sender] = share
}

// reverifyShares re-checks every previously buffered share for (e,
// proposerID) now that its ciphertext is known, faulting and discarding
// any that fail.
func (d *decryptionCoordinator) reverifyShares(e Epoch, proposerID NodeID, ct hbcrypto.Ciphertext, faults *FaultLog) {
	senders := d.receivedShares[e][proposerID]
	for sender, share := range senders {
		pk, known := d.net.PublicKeyShare(sender)
		if !known || !d.suite.VerifyDecryptionShare(pk, share, ct) {
			faults.append(sender, UnverifiedDecryptionShareSender)
			delete(senders, sender)
		}
	}
}

// registerCiphertexts is Step A: validates and registers one epoch's ACS
// output, producing and broadcasting our own decryption share for each
// proposer we can service. acsOutput may grow across repeated calls for the
// same epoch as its ACS instance expands its decided set (acs.SimpleACS
// does this instead of freezing at the first N-f proposals); proposers
// already registered, or already rejected on a prior call, are skipped so a
// share is never broadcast twice and a bad proposer is never refaulted.
func (d *decryptionCoordinator) registerCiphertexts(e Epoch, acsOutput map[NodeID][]byte, faults *FaultLog, queue *messageQueue) {
	if d.ciphertexts[e] == nil {
		d.ciphertexts[e] = make(map[NodeID]hbcrypto.Ciphertext)
	}

	proposers := make([]NodeID, 0, len(acsOutput))
	for id := range acsOutput {
		proposers = append(proposers, id)
	}
	sort.Slice(proposers, func(i, j int) bool { return bytes.Compare(proposers[i][:], proposers[j][:]) < 0 })

	for _, proposerID := range proposers {
		if _, already := d.ciphertexts[e][proposerID]; already {
			continue
		}
		if d.rejected[e][proposerID] {
			continue
		}
		raw := acsOutput[proposerID]

		ct, err := d.suite.DecodeCiphertext(raw)
		if err != nil {
			faults.append(proposerID, InvalidCiphertext)
			d.markRejected(e, proposerID)
			continue
		}

		d.reverifyShares(e, proposerID, ct, faults)

		if d.net.IsValidator() {
			share, err := d.suite.DecryptShare(d.net.SecretKeyShare(), ct)
			if err != nil {
				faults.append(proposerID, ShareDecryptionFailed)
				d.markRejected(e, proposerID)
				continue
			}
			shareBytes, err := share.MarshalBinary()
			if err != nil {
				faults.append(proposerID, ShareDecryptionFailed)
				d.markRejected(e, proposerID)
				continue
			}
			queue.pushBroadcast(decryptionShareMessage(e, proposerID, shareBytes))
			d.storeShare(e, proposerID, d.net.OurID(), share)
		} else if !ct.Verify() {
			// Non-validators never call DecryptShare, so the ciphertext's
			// self-verification has to be checked explicitly here instead
			// of implicitly inside DecryptShare.
			faults.append(proposerID, InvalidCiphertext)
			d.markRejected(e, proposerID)
			continue
		}

		d.ciphertexts[e][proposerID] = ct
	}
}

func (d *decryptionCoordinator) markRejected(e Epoch, proposerID NodeID) {
	if d.rejected[e] == nil {
		d.rejected[e] = make(map[NodeID]bool)
	}
	d.rejected[e][proposerID] = true
}

// handleShare is Step B: processes one received decryption share.
func (d *decryptionCoordinator) handleShare(e Epoch, sender, proposerID NodeID, shareBytes []byte, faults *FaultLog) {
	share, err := d.suite.DecodeShare(shareBytes)
	if err != nil {
		faults.append(sender, UnverifiedDecryptionShareSender)
		return
	}

	if ct, ok := d.ciphertextFor(e, proposerID); ok {
		pk, known := d.net.PublicKeyShare(sender)
		if !known || !d.suite.VerifyDecryptionShare(pk, share, ct) {
			faults.append(sender, UnverifiedDecryptionShareSender)
			return
		}
	}

	d.storeShare(e, proposerID, sender, share)
}

// attemptDecrypt is Step C: tries to threshold-decrypt one proposer's
// ciphertext at epoch e, given the shares gathered so far.
func (d *decryptionCoordinator) attemptDecrypt(e Epoch, proposerID NodeID) {
	if _, done := d.decrypted[e][proposerID]; done {
		return
	}
	ct, ok := d.ciphertextFor(e, proposerID)
	if !ok {
		return
	}
	shares := d.receivedShares[e][proposerID]
	if len(shares) <= d.net.NumFaulty() {
		return
	}

	indexed := make(map[uint64]hbcrypto.DecryptionShare, len(shares))
	for sender, share := range shares {
		idx, ok := d.net.NodeIndex(sender)
		if !ok {
			continue
		}
		indexed[idx] = share
	}

	plaintext, err := d.suite.CombineShares(indexed, ct)
	if err != nil {
		log.Warn("honeybadger: threshold decryption attempt failed", "epoch", e, "proposer", proposerID, "err", err)
		return
	}
	if d.decrypted[e] == nil {
		d.decrypted[e] = make(map[NodeID][]byte)
	}
	d.decrypted[e][proposerID] = plaintext
}

// attemptEmitBatch is Step D: emits epoch e's batch once every one of its
// accepted ciphertexts has been decrypted, decoding each plaintext as a
// Contribution. Each epoch's decrypted set is tracked independently, so this
// can succeed for a future epoch whose ACS instance and shares raced ahead
// of the current one (spec.md §4.1(f) pipelining).
func (d *decryptionCoordinator) attemptEmitBatch(e Epoch, faults *FaultLog) (Batch, bool) {
	cts := d.ciphertexts[e]
	decrypted := d.decrypted[e]
	if cts == nil || len(decrypted) != len(cts) {
		return Batch{}, false
	}
	for proposerID := range decrypted {
		if _, ok := cts[proposerID]; !ok {
			return Batch{}, false
		}
	}

	ids := make([]NodeID, 0, len(decrypted))
	for id := range decrypted {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return bytes.Compare(ids[i][:], ids[j][:]) < 0 })

	contributions := make(map[NodeID][]byte, len(ids))
	for _, proposerID := range ids {
		contrib, err := wire.DecodeContribution(decrypted[proposerID])
		if err != nil {
			faults.append(proposerID, BatchDeserializationFailed)
			continue
		}
		contributions[proposerID] = contrib.Opaque
	}

	return Batch{Epoch: e, Contributions: contributions}, true
}

// clearEpoch discards epoch e's ciphertexts, shares, rejections and
// decrypted contributions, per §4.1's epoch advancement rule.
func (d *decryptionCoordinator) clearEpoch(e Epoch) {
	delete(d.ciphertexts, e)
	delete(d.rejected, e)
	delete(d.receivedShares, e)
	delete(d.decrypted, e)
}
