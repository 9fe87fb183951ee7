package honeybadger

import (
	"bytes"
	"sort"
)

// Batch is the output of one completed epoch: every contributing
// validator's decoded contribution, keyed by its NodeID.
type Batch struct {
	Epoch         Epoch
	Contributions map[NodeID][]byte
}

// OrderedProposers returns the batch's proposer NodeIDs in the stable total
// order every honest node agrees on (spec.md §4.4's tie-break rule), so
// callers needing deterministic iteration don't have to re-derive it.
func (b Batch) OrderedProposers() []NodeID {
	out := make([]NodeID, 0, len(b.Contributions))
	for id := range b.Contributions {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return bytes.Compare(out[i][:], out[j][:]) < 0 })
	return out
}
