// Package honeybadger implements the Honey Badger BFT consensus core: the
// per-epoch driver that threshold-encrypts and submits local contributions,
// runs an Asynchronous Common Subset sub-protocol to select proposals,
// collects and verifies decryption shares, performs threshold decryption,
// and emits one batch per epoch while pipelining messages for future
// epochs. ACS internals, the threshold cryptography itself, transport and
// persistence are external collaborators; see the acs, hbcrypto and wire
// packages.
package honeybadger

import (
	"github.com/ethereum/go-ethereum/log"

	"github.com/oasysgames/hbbft-core/acs"
	"github.com/oasysgames/hbbft-core/hbcrypto"
	"github.com/oasysgames/hbbft-core/wire"
)

// HoneyBadger is one node's running instance of the core. It is a
// single-threaded, cooperative state machine: every entry point runs to
// completion and returns a Step, and the instance must not be entered
// concurrently (spec.md §5).
type HoneyBadger struct {
	net    *NetworkInfo
	config Config
	suite  hbcrypto.Suite

	epoch    Epoch
	hasInput bool

	acs        *acsMultiplex
	decryption *decryptionCoordinator
	window     *epochWindow

	messages messageQueue
	faults   FaultLog
	output   []Batch
}

// New constructs a HoneyBadger instance. acsFactory builds a fresh ACS
// instance for each epoch as it is first needed.
func New(net *NetworkInfo, config Config, suite hbcrypto.Suite, acsFactory acs.Factory) (*HoneyBadger, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}
	return &HoneyBadger{
		net:        net,
		config:     config,
		suite:      suite,
		acs:        newAcsMultiplex(acsFactory),
		decryption: newDecryptionCoordinator(net, suite),
		window:     newEpochWindow(),
	}, nil
}

// OurID returns this node's identity.
func (h *HoneyBadger) OurID() NodeID { return h.net.OurID() }

// HasInput reports whether a local contribution has been submitted for the
// current epoch.
func (h *HoneyBadger) HasInput() bool { return h.hasInput }

// Epoch returns the earliest epoch for which a batch has not yet been
// emitted.
func (h *HoneyBadger) Epoch() Epoch { return h.epoch }

// Terminated always reports false: the algorithm has no explicit
// termination condition (spec.md §6).
func (h *HoneyBadger) Terminated() bool { return false }

// Input submits a local contribution for the current epoch (spec.md §4.2).
// Non-validators get a no-op step with no error. A second Input in the same
// epoch is rejected with an error rather than silently ignored, so callers
// learn immediately instead of believing a second contribution was queued.
func (h *HoneyBadger) Input(contribution []byte) (Step, error) {
	if !h.net.IsValidator() {
		return h.drainStep(), nil
	}
	if h.hasInput {
		return Step{}, errAlreadyHaveInput
	}

	encoded, err := wire.EncodeContribution(wire.Contribution{Opaque: contribution})
	if err != nil {
		return Step{}, err
	}
	ciphertext, err := h.suite.Encrypt(h.net.GroupPublicKey(), encoded)
	if err != nil {
		return Step{}, err
	}
	ciphertextBytes, err := ciphertext.MarshalBinary()
	if err != nil {
		return Step{}, err
	}

	acsStep, err := h.acs.input(h.epoch, ciphertextBytes)
	if err != nil {
		return Step{}, err
	}
	h.hasInput = true

	h.mergeAcsStep(h.epoch, acsStep)
	h.cascade()
	return h.drainStep(), nil
}

// HandleMessage consumes one peer message (spec.md §4.1).
func (h *HoneyBadger) HandleMessage(sender NodeID, msg Message) (Step, error) {
	if !h.net.IsNodeValidator(sender) {
		return Step{}, errUnknownSender
	}

	h.route(sender, msg)
	return h.drainStep(), nil
}

// route implements the epoch-window admission rule: past-epoch messages
// are dropped, far-future ones are buffered, and everything else is
// dispatched immediately.
func (h *HoneyBadger) route(sender NodeID, msg Message) {
	if msg.Epoch < h.epoch {
		return
	}
	if msg.Epoch > h.epoch+Epoch(h.config.MaxFutureEpochs) {
		for _, evicted := range h.window.bufferFuture(sender, msg) {
			h.faults.append(evicted.sender, FutureMessageDropped)
		}
		return
	}

	h.dispatchContent(sender, msg)
	h.cascade()
}

// dispatchContent routes one admitted message to the ACS multiplex or the
// decryption coordinator depending on its content kind.
func (h *HoneyBadger) dispatchContent(sender NodeID, msg Message) {
	switch msg.Content.Kind {
	case ContentCommonSubset:
		step, err := h.acs.handleMessage(msg.Epoch, sender, msg.Content.ACSMessage)
		if err != nil {
			log.Warn("honeybadger: acs message rejected", "sender", sender, "epoch", msg.Epoch, "err", err)
			return
		}
		h.mergeAcsStep(msg.Epoch, step)

	case ContentDecryptionShare:
		h.decryption.handleShare(msg.Epoch, sender, msg.Content.ProposerID, msg.Content.Share, &h.faults)
		h.decryption.attemptDecrypt(msg.Epoch, msg.Content.ProposerID)
	}
}

// mergeAcsStep folds one ACS Step into our own queues (spec.md §4.3).
// Output is registered for whatever epoch e it belongs to, current or
// future-in-window: an ACS instance ahead of our own epoch counter (driven
// by peers' CommonSubset relays while we're still behind) must still have
// its decision captured now, since the instance may never report that
// Output again. Discarding it here rather than registering it would otherwise
// deadlock that epoch's batch forever once we catch up to it — cascade is what
// actually turns a registered-but-not-yet-current epoch into an emitted
// batch, per §4.1(f)'s pipelining requirement. e is never below the current
// epoch here: route drops past-epoch messages before they reach an ACS
// instance, and Input always submits to the current epoch.
func (h *HoneyBadger) mergeAcsStep(e Epoch, step acs.Step) {
	h.messages.extendWithEpoch(e, step.Messages)
	for _, flt := range step.FaultLog {
		h.faults.appendACS(flt.NodeID, flt.Kind.String())
	}

	if step.Output != nil {
		h.decryption.registerCiphertexts(e, step.Output, &h.faults, &h.messages)
		for proposerID := range step.Output {
			h.decryption.attemptDecrypt(e, proposerID)
		}
	}
	h.acs.reclaim(h.epoch)
}

// cascade repeatedly attempts to emit the current epoch's batch, advancing
// the epoch and replaying any now-admissible deferred messages each time it
// succeeds, until no further batch can be emitted (spec.md §4.1(f)).
func (h *HoneyBadger) cascade() {
	for {
		batch, ok := h.decryption.attemptEmitBatch(h.epoch, &h.faults)
		if !ok {
			return
		}
		h.output = append(h.output, batch)
		h.advanceEpoch()

		newlyEligible := h.epoch + Epoch(h.config.MaxFutureEpochs)
		for _, deferred := range h.window.admit(newlyEligible) {
			h.dispatchContent(deferred.sender, deferred.msg)
		}
	}
}

// advanceEpoch performs the bookkeeping of spec.md §4.1(a)-(d): reclaims
// the completed epoch's ciphertext/share state, clears the per-epoch
// decrypted-contributions scope, and moves to the next epoch.
func (h *HoneyBadger) advanceEpoch() {
	h.decryption.clearEpoch(h.epoch)
	h.acs.reclaim(h.epoch + 1)
	h.epoch++
	h.hasInput = false
}

func (h *HoneyBadger) drainStep() Step {
	step := Step{
		Batches:  h.output,
		FaultLog: h.faults,
		Messages: h.messages.drain(),
	}
	h.output = nil
	h.faults = nil
	return step
}
