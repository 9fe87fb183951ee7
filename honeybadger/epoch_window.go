package honeybadger

import (
	lru "github.com/hashicorp/golang-lru"
)

// maxBufferedEpochs bounds the number of distinct future epochs whose
// messages we are willing to buffer at once. spec.md §5 leaves the bound
// optional and lets implementers cap either total deferred messages or
// per-epoch counts; we cap distinct epochs via an LRU, the same pattern the
// teacher uses for schedulerCache in consensus/oasys/oasys.go, and fault the
// sender of whatever arrives for an epoch evicted to make room.
const maxBufferedEpochs = 64

type deferredMessage struct {
	sender NodeID
	msg    Message
}

// epochWindow buffers messages that arrived for an epoch beyond the
// currently admitted window [epoch, epoch+maxFutureEpochs].
type epochWindow struct {
	cache *lru.Cache

	evictedMsgs []deferredMessage
}

func newEpochWindow() *epochWindow {
	w := &epochWindow{}
	w.cache, _ = lru.NewWithEvict(maxBufferedEpochs, w.onEvict)
	return w
}

func (w *epochWindow) onEvict(_, value interface{}) {
	w.evictedMsgs = value.([]deferredMessage)
}

// bufferFuture queues (sender, msg) for msg.Epoch. If making room for a new
// epoch evicts an older buffered epoch, the evicted messages' senders are
// returned so the caller can fault them; the evicted epoch's own messages
// are otherwise lost, same as if they had never arrived.
func (w *epochWindow) bufferFuture(sender NodeID, msg Message) []deferredMessage {
	existing, _ := w.cache.Get(msg.Epoch)
	queue, _ := existing.([]deferredMessage)
	queue = append(queue, deferredMessage{sender: sender, msg: msg})

	w.evictedMsgs = nil
	w.cache.Add(msg.Epoch, queue)

	evicted := w.evictedMsgs
	w.evictedMsgs = nil
	return evicted
}

// admit pops and returns every message buffered for epoch e, if any.
func (w *epochWindow) admit(e Epoch) []deferredMessage {
	v, ok := w.cache.Get(e)
	if !ok {
		return nil
	}
	w.cache.Remove(e)
	msgs, _ := v.([]deferredMessage)
	return msgs
}
