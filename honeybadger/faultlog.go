package honeybadger

// FaultKind identifies the kind of misbehavior a peer was caught in.
type FaultKind int

const (
	// UnverifiedDecryptionShareSender means a DecryptionShare failed to
	// verify against the sender's public key share and the known
	// ciphertext. Attributed to the share's sender.
	UnverifiedDecryptionShareSender FaultKind = iota

	// InvalidCiphertext means an ACS-selected proposal's bytes did not
	// deserialize into a valid Ciphertext. Attributed to the proposer.
	InvalidCiphertext

	// ShareDecryptionFailed means the suite refused to produce our own
	// decryption share for a ciphertext that decoded successfully (the bls
	// suite refuses one that fails self-verification). Attributed to the
	// proposer, whose ciphertext is malformed.
	ShareDecryptionFailed

	// BatchDeserializationFailed means a proposer's decrypted plaintext
	// did not deserialize into a valid Contribution. Attributed to the
	// proposer.
	BatchDeserializationFailed

	// ACSFault is the wrapper kind for fault kinds bubbled up unmodified
	// from an AcsInstance. The ACS-specific reason is preserved verbatim
	// in Fault.Reason.
	ACSFault

	// FutureMessageDropped means a sender's message for a far-future epoch
	// was discarded to keep the epoch window's memory bounded (spec.md §5,
	// §9 "Bounded future queue"). Not part of the spec's core fault kinds;
	// added per its explicit invitation for implementers to bound and fault
	// this case themselves.
	FutureMessageDropped
)

func (k FaultKind) String() string {
	switch k {
	case UnverifiedDecryptionShareSender:
		return "UnverifiedDecryptionShareSender"
	case InvalidCiphertext:
		return "InvalidCiphertext"
	case ShareDecryptionFailed:
		return "ShareDecryptionFailed"
	case BatchDeserializationFailed:
		return "BatchDeserializationFailed"
	case ACSFault:
		return "ACSFault"
	case FutureMessageDropped:
		return "FutureMessageDropped"
	default:
		return "UnknownFault"
	}
}

// Fault is one entry of evidence that a peer misbehaved.
type Fault struct {
	NodeID NodeID
	Kind   FaultKind
	Reason string // populated for ACSFault; empty otherwise
}

// FaultLog is an ordered, append-only record of detected peer misbehavior.
type FaultLog []Fault

func (f *FaultLog) append(id NodeID, kind FaultKind) {
	*f = append(*f, Fault{NodeID: id, Kind: kind})
}

func (f *FaultLog) appendACS(id NodeID, reason string) {
	*f = append(*f, Fault{NodeID: id, Kind: ACSFault, Reason: reason})
}
