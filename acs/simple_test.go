package acs

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

func fourValidators() []NodeID {
	ids := make([]NodeID, 4)
	for i := 0; i < 4; i++ {
		ids[i] = common.BigToAddress(big.NewInt(int64(i + 1)))
	}
	return ids
}

func TestSimpleACSExpandsOutputUntilAllProposalsReceived(t *testing.T) {
	ids := fourValidators()
	inst := NewSimpleACS(ids[0], ids, 1, 0)

	step, err := inst.Input([]byte("proposal-0"))
	require.NoError(t, err)
	require.Nil(t, step.Output)
	require.False(t, inst.Terminated())

	// Deliver proposals from two more validators: threshold (N-f=3) is met,
	// but the instance must not freeze on this 3-subset. It keeps reporting
	// Output, and must not yet be Terminated, since validator 3 hasn't
	// proposed.
	for i := 1; i < 3; i++ {
		relay := NewSimpleACS(ids[i], ids, 1, 0)
		relayStep, err := relay.Input([]byte("proposal"))
		require.NoError(t, err)
		require.Len(t, relayStep.Messages, 1)

		step, err = inst.HandleMessage(ids[i], relayStep.Messages[0].Message)
		require.NoError(t, err)
	}

	require.NotNil(t, step.Output)
	require.Len(t, step.Output, 3)
	require.False(t, inst.Terminated())

	// The last validator's proposal arrives: Output must now expand to all
	// four, and the instance terminates.
	last := NewSimpleACS(ids[3], ids, 1, 0)
	lastStep, err := last.Input([]byte("proposal-3"))
	require.NoError(t, err)
	require.Len(t, lastStep.Messages, 1)

	step, err = inst.HandleMessage(ids[3], lastStep.Messages[0].Message)
	require.NoError(t, err)
	require.Len(t, step.Output, 4)
	require.True(t, inst.Terminated())
}

func TestSimpleACSRelaysEachProposalOnce(t *testing.T) {
	ids := fourValidators()
	inst := NewSimpleACS(ids[0], ids, 1, 0)

	step, err := inst.Input([]byte("proposal-0"))
	require.NoError(t, err)
	require.Len(t, step.Messages, 1)

	// Replaying the identical message is not relayed again.
	step, err = inst.HandleMessage(ids[0], step.Messages[0].Message)
	require.NoError(t, err)
	require.Empty(t, step.Messages)
	require.Empty(t, step.FaultLog)
}

func TestSimpleACSFaultsEquivocation(t *testing.T) {
	ids := fourValidators()
	inst := NewSimpleACS(ids[0], ids, 1, 0)

	msg := proposeMessage{Proposer: ids[1], Data: []byte("a")}
	_, err := inst.HandleMessage(ids[1], msg)
	require.NoError(t, err)

	conflicting := proposeMessage{Proposer: ids[1], Data: []byte("b")}
	step, err := inst.HandleMessage(ids[1], conflicting)
	require.NoError(t, err)
	require.Len(t, step.FaultLog, 1)
	require.Equal(t, ids[1], step.FaultLog[0].NodeID)
	require.Equal(t, faultEquivocatedProposal, step.FaultLog[0].Kind)
}
