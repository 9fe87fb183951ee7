package honeybadger

import "github.com/oasysgames/hbbft-core/acs"

// Epoch is a consensus round number. Each epoch yields exactly one batch.
type Epoch uint64

// TargetKind selects who a TargetedMessage is addressed to.
type TargetKind int

const (
	// TargetAll addresses every other validator.
	TargetAll TargetKind = iota
	// TargetNode addresses a single validator, named by Target.Node.
	TargetNode
)

// Target identifies the recipient(s) of an outgoing message.
type Target struct {
	Kind TargetKind
	Node NodeID // valid only when Kind == TargetNode
}

// TargetedMessage pairs an outgoing Message with its intended recipient(s).
// The embedding transport layer drains these from Step.Messages and is
// responsible for delivery.
type TargetedMessage struct {
	Target  Target
	Message Message
}

// MessageContentKind tags the variant carried by a MessageContent.
type MessageContentKind int

const (
	// ContentCommonSubset wraps a message belonging to the ACS instance
	// running for the enclosing Message's epoch.
	ContentCommonSubset MessageContentKind = iota
	// ContentDecryptionShare carries one validator's partial decryption of
	// one proposer's ciphertext for the enclosing Message's epoch.
	ContentDecryptionShare
)

// MessageContent is the tagged union of payloads a HoneyBadger message may
// carry. Exactly one of ACSMessage / (ProposerID, Share) is meaningful,
// selected by Kind. Canonical (de)serialization must preserve the tag and
// reject unknown ones; see the wire package.
type MessageContent struct {
	Kind MessageContentKind

	ACSMessage acs.Message // valid when Kind == ContentCommonSubset

	ProposerID NodeID // valid when Kind == ContentDecryptionShare
	Share      []byte // valid when Kind == ContentDecryptionShare
}

// Message is a HoneyBadger protocol message, tagged with the epoch it
// belongs to.
type Message struct {
	Epoch   Epoch
	Content MessageContent
}

func commonSubsetMessage(epoch Epoch, msg acs.Message) Message {
	return Message{
		Epoch: epoch,
		Content: MessageContent{
			Kind:       ContentCommonSubset,
			ACSMessage: msg,
		},
	}
}

func decryptionShareMessage(epoch Epoch, proposerID NodeID, share []byte) Message {
	return Message{
		Epoch: epoch,
		Content: MessageContent{
			Kind:       ContentDecryptionShare,
			ProposerID: proposerID,
			Share:      share,
		},
	}
}

// messageQueue is the ordered queue of outgoing TargetedMessages, drained on
// every Step return.
type messageQueue []TargetedMessage

func (q *messageQueue) pushBroadcast(msg Message) {
	*q = append(*q, TargetedMessage{Target: Target{Kind: TargetAll}, Message: msg})
}

func (q *messageQueue) pushTo(node NodeID, msg Message) {
	*q = append(*q, TargetedMessage{Target: Target{Kind: TargetNode, Node: node}, Message: msg})
}

// extendWithEpoch re-targets a batch of ACS-level TargetedMessages
// identically, wraps each payload as a CommonSubset MessageContent tagged
// with epoch, and appends them to the queue. Mirrors
// MessageQueue::extend_with_epoch in the original Rust implementation.
func (q *messageQueue) extendWithEpoch(epoch Epoch, msgs []acs.TargetedMessage) {
	for _, m := range msgs {
		wrapped := commonSubsetMessage(epoch, m.Message)
		switch m.Target.Kind {
		case acs.TargetAll:
			q.pushBroadcast(wrapped)
		case acs.TargetNode:
			q.pushTo(m.Target.Node, wrapped)
		}
	}
}

func (q *messageQueue) drain() []TargetedMessage {
	out := []TargetedMessage(*q)
	*q = nil
	return out
}
