package acs

import (
	"bytes"
	"sort"
)

// proposeMessage is SimpleACS's only wire message: a proposer's raw,
// already-encrypted proposal, flooded once by every node that first learns
// of it. Canonical encoding is the 20-byte proposer address, a 4-byte
// big-endian payload length, then the payload, so two honest encoders always
// agree byte-for-byte.
type proposeMessage struct {
	Proposer NodeID
	Data     []byte
}

func (m proposeMessage) MarshalBinary() ([]byte, error) {
	out := make([]byte, 0, len(m.Proposer)+4+len(m.Data))
	out = append(out, m.Proposer[:]...)
	var lenBuf [4]byte
	lenBuf[0] = byte(len(m.Data) >> 24)
	lenBuf[1] = byte(len(m.Data) >> 16)
	lenBuf[2] = byte(len(m.Data) >> 8)
	lenBuf[3] = byte(len(m.Data))
	out = append(out, lenBuf[:]...)
	return append(out, m.Data...), nil
}

type simpleFault string

func (f simpleFault) String() string { return string(f) }

const faultEquivocatedProposal simpleFault = "EquivocatedProposal"

// SimpleACS is a reference Instance for exercising the HoneyBadger core
// end-to-end. Every proposal is flooded once by each node that first learns
// of it. Once at least N-f distinct proposals have arrived, the instance
// starts reporting Output, and keeps expanding it as further proposals are
// relayed in, rather than freezing on whichever N-f happened to arrive
// first; it only stops growing once every validator's proposal has been
// collected. Over a fully-connected, reliable-delivery network this makes
// every honest node converge on the identical final decided set, which is
// enough to drive the core's tests, but it is not a Byzantine-agreement-safe
// ACS: a real deployment must supply an Instance that actually tolerates
// network asynchrony and conflicting views among honest nodes (spec.md §1
// keeps those internals out of scope).
type SimpleACS struct {
	epoch      uint64
	ourID      NodeID
	validators []NodeID
	threshold  int // N - f

	proposals map[NodeID][]byte
	relayed   map[NodeID]bool
	decided   bool
}

// NewSimpleACS constructs a SimpleACS instance for one epoch, scoped to the
// given validator set.
func NewSimpleACS(ourID NodeID, validators []NodeID, numFaulty int, epoch uint64) *SimpleACS {
	ordered := append([]NodeID(nil), validators...)
	sort.Slice(ordered, func(i, j int) bool { return bytes.Compare(ordered[i][:], ordered[j][:]) < 0 })
	return &SimpleACS{
		epoch:      epoch,
		ourID:      ourID,
		validators: ordered,
		threshold:  len(ordered) - numFaulty,
		proposals:  make(map[NodeID][]byte),
		relayed:    make(map[NodeID]bool),
	}
}

// Input submits our own proposal for this epoch.
func (a *SimpleACS) Input(data []byte) (Step, error) {
	return a.receive(a.ourID, data)
}

// HandleMessage processes a peer's proposal flood.
func (a *SimpleACS) HandleMessage(sender NodeID, msg Message) (Step, error) {
	pm, ok := msg.(proposeMessage)
	if !ok {
		return Step{}, nil
	}
	return a.receive(pm.Proposer, pm.Data)
}

func (a *SimpleACS) receive(proposer NodeID, data []byte) (Step, error) {
	var step Step

	if existing, ok := a.proposals[proposer]; ok {
		if !bytes.Equal(existing, data) {
			step.FaultLog = append(step.FaultLog, Fault{NodeID: proposer, Kind: faultEquivocatedProposal})
		}
	} else {
		a.proposals[proposer] = data
	}

	if !a.relayed[proposer] {
		a.relayed[proposer] = true
		step.Messages = append(step.Messages, TargetedMessage{
			Target:  Target{Kind: TargetAll},
			Message: proposeMessage{Proposer: proposer, Data: data},
		})
	}

	if !a.decided {
		if len(a.proposals) >= a.threshold {
			out := make(map[NodeID][]byte, len(a.proposals))
			for id, v := range a.proposals {
				out[id] = v
			}
			step.Output = out
		}
		if len(a.proposals) == len(a.validators) {
			a.decided = true
		}
	}

	return step, nil
}

// Terminated reports whether this instance has decided and has no further
// protocol work to perform.
func (a *SimpleACS) Terminated() bool { return a.decided }
