// Package wire provides the canonical on-the-wire encoding for messages
// exchanged between HoneyBadger instances (spec.md §6's Serializer
// collaborator). Encoding follows the teacher's convention of RLP via
// github.com/ethereum/go-ethereum/rlp for anything that travels between
// nodes or crosses a process boundary.
package wire

import (
	"bytes"
	"errors"

	"github.com/ethereum/go-ethereum/rlp"
)

var errUnknownMessageKind = errors.New("wire: unknown message content kind")

// Envelope is the canonical, RLP-encodable shape of an honeybadger.Message.
// honeybadger.Message itself stays a plain Go struct with an interface field
// (acs.Message) that RLP cannot encode directly; Envelope flattens it to
// concrete byte slices for transport, with the ACS instance's own Message
// codec responsible for the nested ACSPayload.
type Envelope struct {
	Epoch      uint64
	Kind       uint8 // 0 = common subset, 1 = decryption share
	ACSPayload []byte
	ProposerID [20]byte
	Share      []byte
}

// EncodeEnvelope canonically serializes e.
func EncodeEnvelope(e Envelope) ([]byte, error) {
	var buf bytes.Buffer
	if err := rlp.Encode(&buf, &e); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeEnvelope parses bytes produced by EncodeEnvelope.
func DecodeEnvelope(data []byte) (Envelope, error) {
	var e Envelope
	if err := rlp.DecodeBytes(data, &e); err != nil {
		return Envelope{}, err
	}
	if e.Kind > 1 {
		return Envelope{}, errUnknownMessageKind
	}
	return e, nil
}

// Contribution is the canonical RLP shape for a proposer's raw contribution
// before it is threshold-encrypted (spec.md §2's opaque payload). Callers
// that want structured contributions RLP-encode their own type and pass the
// resulting bytes as Opaque; HoneyBadger never inspects contribution
// contents itself.
type Contribution struct {
	Opaque []byte
}

// EncodeContribution canonically serializes c.
func EncodeContribution(c Contribution) ([]byte, error) {
	var buf bytes.Buffer
	if err := rlp.Encode(&buf, &c); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeContribution parses bytes produced by EncodeContribution.
func DecodeContribution(data []byte) (Contribution, error) {
	var c Contribution
	if err := rlp.DecodeBytes(data, &c); err != nil {
		return Contribution{}, err
	}
	return c, nil
}

// BatchEntry is one proposer's decrypted contribution inside a canonically
// encoded Batch, keyed by the proposer's node address so RLP (which has no
// native map support) can round-trip the batch deterministically.
type BatchEntry struct {
	Proposer [20]byte
	Data     []byte
}

// Batch is the canonical RLP shape of an honeybadger.Batch.
type Batch struct {
	Epoch   uint64
	Entries []BatchEntry
}

// EncodeBatch canonically serializes b. Entries must already be sorted by
// Proposer for the encoding to be canonical across equivalent batches.
func EncodeBatch(b Batch) ([]byte, error) {
	var buf bytes.Buffer
	if err := rlp.Encode(&buf, &b); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeBatch parses bytes produced by EncodeBatch.
func DecodeBatch(data []byte) (Batch, error) {
	var b Batch
	if err := rlp.DecodeBytes(data, &b); err != nil {
		return Batch{}, err
	}
	return b, nil
}
