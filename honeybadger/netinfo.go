package honeybadger

import (
	"bytes"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	mapset "github.com/deckarep/golang-set/v2"
)

// NodeID is the opaque, totally ordered, hashable identity of a validator.
// We reuse go-ethereum's 20-byte address type: it is already comparable,
// map-keyable and has a natural byte-wise total order.
type NodeID = common.Address

// PublicKeyShare and SecretKeyShare are opaque handles into the CryptoSuite.
// The core never inspects their contents; it only threads them through to
// the CryptoSuite collaborator.
type PublicKeyShare = []byte
type SecretKeyShare = []byte

// NetworkInfo is the immutable bundle of identities and keys shared by every
// component of a single HoneyBadger instance. It is constructed once and
// never mutated afterwards, so it is safe to share by pointer across
// goroutines the way the Rust original shares it via Arc.
type NetworkInfo struct {
	ourID      NodeID
	validators mapset.Set[NodeID]
	ordered    []NodeID // validators, ascending, index i -> node-index i+1
	indexOf    map[NodeID]uint64

	groupPublicKey  []byte
	secretKeyShare  SecretKeyShare
	publicKeyShares map[NodeID]PublicKeyShare

	numFaulty int // f, the maximum number of tolerated Byzantine validators
}

// NewNetworkInfo builds a NetworkInfo from the validator set and keys. The
// node-index assignment (used by threshold combination) is the ascending
// byte order of validator addresses, mirroring how
// consensus/oasys/snapshot.go numbers validators by sorted address.
func NewNetworkInfo(
	ourID NodeID,
	validators []NodeID,
	numFaulty int,
	groupPublicKey []byte,
	secretKeyShare SecretKeyShare,
	publicKeyShares map[NodeID]PublicKeyShare,
) *NetworkInfo {
	ordered := append([]NodeID(nil), validators...)
	sort.Slice(ordered, func(i, j int) bool {
		return bytes.Compare(ordered[i][:], ordered[j][:]) < 0
	})

	set := mapset.NewThreadUnsafeSet[NodeID]()
	indexOf := make(map[NodeID]uint64, len(ordered))
	for i, id := range ordered {
		set.Add(id)
		indexOf[id] = uint64(i + 1) // index 0 is reserved by threshold schemes for the secret itself
	}

	pkShares := make(map[NodeID]PublicKeyShare, len(publicKeyShares))
	for id, pk := range publicKeyShares {
		pkShares[id] = pk
	}

	return &NetworkInfo{
		ourID:           ourID,
		validators:      set,
		ordered:         ordered,
		indexOf:         indexOf,
		groupPublicKey:  groupPublicKey,
		secretKeyShare:  secretKeyShare,
		publicKeyShares: pkShares,
		numFaulty:       numFaulty,
	}
}

// OurID returns this node's identity.
func (n *NetworkInfo) OurID() NodeID { return n.ourID }

// IsValidator reports whether this node is a member of the validator set.
func (n *NetworkInfo) IsValidator() bool { return n.validators.Contains(n.ourID) }

// IsNodeValidator reports whether id is a member of the validator set.
func (n *NetworkInfo) IsNodeValidator(id NodeID) bool { return n.validators.Contains(id) }

// NumFaulty returns f, the maximum tolerated number of Byzantine validators.
func (n *NetworkInfo) NumFaulty() int { return n.numFaulty }

// Validators returns the validator set in ascending address order. The
// returned slice must not be mutated by callers.
func (n *NetworkInfo) Validators() []NodeID { return n.ordered }

// NodeIndex returns the small integer index assigned to id for threshold
// combination, and whether id is a known validator.
func (n *NetworkInfo) NodeIndex(id NodeID) (uint64, bool) {
	idx, ok := n.indexOf[id]
	return idx, ok
}

// GroupPublicKey returns the group's public key under which proposals are
// threshold-encrypted.
func (n *NetworkInfo) GroupPublicKey() []byte { return n.groupPublicKey }

// SecretKeyShare returns our own secret key share, or nil if we are not a
// validator.
func (n *NetworkInfo) SecretKeyShare() SecretKeyShare { return n.secretKeyShare }

// PublicKeyShare returns the public key share of id, if known.
func (n *NetworkInfo) PublicKeyShare(id NodeID) (PublicKeyShare, bool) {
	pk, ok := n.publicKeyShares[id]
	return pk, ok
}
