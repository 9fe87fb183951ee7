// Package acs defines the capability the HoneyBadger core requires from an
// Asynchronous Common Subset sub-protocol (spec.md §6). The core is
// polymorphic over any implementation satisfying the Instance interface; the
// internals of Byzantine agreement itself are out of scope for the core and
// are not specified here.
package acs

import "github.com/ethereum/go-ethereum/common"

// NodeID mirrors honeybadger.NodeID. It is redeclared here (rather than
// imported) to keep this package free of a dependency on the core, which
// depends on acs instead.
type NodeID = common.Address

// TargetKind selects who a TargetedMessage is addressed to.
type TargetKind int

const (
	TargetAll TargetKind = iota
	TargetNode
)

// Target identifies the recipient(s) of an outgoing ACS message.
type Target struct {
	Kind TargetKind
	Node NodeID
}

// Message is an opaque, canonically-serializable message belonging to one
// ACS instance. Concrete implementations define their own wire shape; the
// core never inspects it.
type Message interface {
	// MarshalBinary produces the canonical encoding used both for network
	// transmission and for fault-evidence hashing.
	MarshalBinary() ([]byte, error)
}

// TargetedMessage pairs an outgoing ACS Message with its recipient(s).
type TargetedMessage struct {
	Target  Target
	Message Message
}

// FaultKind identifies a kind of ACS-internal misbehavior. The core bubbles
// these up unmodified, tagged as honeybadger.ACSFault with Reason set to
// String().
type FaultKind interface {
	String() string
}

// Fault is one piece of ACS-internal fault evidence.
type Fault struct {
	NodeID NodeID
	Kind   FaultKind
}

// Step is the bundle an Instance returns from every entry point: output
// reported by this call (if any), accumulated fault evidence, and outgoing
// messages to send.
type Step struct {
	// Output, when non-nil, is the instance's accepted subset of proposals
	// so far, proposer -> proposed bytes. An instance may report Output in
	// more than one step, each a superset of the previous one (SimpleACS
	// does); it is nil in a step that reports no output.
	Output map[NodeID][]byte

	FaultLog []Fault
	Messages []TargetedMessage
}

// Instance is one epoch's running Asynchronous Common Subset protocol. An
// implementation is expected to:
//   - accept exactly one local Input per instance,
//   - accept messages from any validator via HandleMessage,
//   - eventually decide on a subset of at least N-f proposals and report it
//     via Step.Output, possibly over several steps that each report a
//     larger set,
//   - report Terminated() == true once it has decided and has no more
//     useful work to do.
type Instance interface {
	Input(data []byte) (Step, error)
	HandleMessage(sender NodeID, msg Message) (Step, error)
	Terminated() bool
}

// Factory constructs a new Instance for the given epoch, scoped to the
// validator set and keys in use for this HoneyBadger instance.
type Factory func(epoch uint64) Instance
