package honeybadger

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

func TestEpochWindowBufferAndAdmit(t *testing.T) {
	w := newEpochWindow()
	sender := common.BigToAddress(big.NewInt(1))
	msg := decryptionShareMessage(Epoch(5), sender, []byte{0x01})

	evicted := w.bufferFuture(sender, msg)
	require.Empty(t, evicted)

	require.Empty(t, w.admit(Epoch(4)))

	msgs := w.admit(Epoch(5))
	require.Len(t, msgs, 1)
	require.Equal(t, sender, msgs[0].sender)
	require.Equal(t, msg, msgs[0].msg)

	// Already drained; a second admit for the same epoch finds nothing.
	require.Empty(t, w.admit(Epoch(5)))
}

func TestEpochWindowEvictsOldestEpochAtCapacity(t *testing.T) {
	w := newEpochWindow()
	sender := common.BigToAddress(big.NewInt(1))

	for e := 0; e < maxBufferedEpochs; e++ {
		evicted := w.bufferFuture(sender, decryptionShareMessage(Epoch(e), sender, []byte{byte(e)}))
		require.Empty(t, evicted)
	}

	// One more distinct epoch forces the LRU to evict the least recently
	// used entry, epoch 0.
	evicted := w.bufferFuture(sender, decryptionShareMessage(Epoch(maxBufferedEpochs), sender, []byte{0xff}))
	require.Len(t, evicted, 1)
	require.Equal(t, sender, evicted[0].sender)

	require.Empty(t, w.admit(Epoch(0)))
}
