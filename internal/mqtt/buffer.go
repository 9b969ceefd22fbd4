package mqtt

import "log"

// DefaultBufferSize is how many messages are kept while the broker is unreachable.
const DefaultBufferSize = 64

// pendingMsg is a serialized message held for replay after reconnection.
type pendingMsg struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// backlog is a fixed-capacity FIFO that keeps the newest messages while
// disconnected. Beacon payloads go stale quickly, so the oldest are dropped.
// Not safe for concurrent use; RealPublisher holds its mutex around it.
type backlog struct {
	buf     []pendingMsg
	head    int // next write position
	count   int
	dropped int  // total messages overwritten since creation
	warned  bool // logged the current overflow episode
}

func newBacklog(capacity int) *backlog {
	if capacity < 1 {
		capacity = 1
	}
	return &backlog{buf: make([]pendingMsg, capacity)}
}

func (b *backlog) push(msg pendingMsg) {
	capacity := len(b.buf)
	b.buf[b.head] = msg
	b.head = (b.head + 1) % capacity

	if b.count < capacity {
		b.count++
		return
	}

	// Full: the write above replaced the oldest entry.
	b.dropped++
	if !b.warned {
		log.Printf("mqtt: backlog full (%d messages), dropping oldest", capacity)
		b.warned = true
	}
}

// drain returns pending messages oldest first and empties the backlog.
func (b *backlog) drain() []pendingMsg {
	if b.count == 0 {
		return nil
	}

	capacity := len(b.buf)
	out := make([]pendingMsg, b.count)
	start := (b.head - b.count + capacity) % capacity
	for i := range out {
		out[i] = b.buf[(start+i)%capacity]
	}

	b.count = 0
	b.head = 0
	b.warned = false
	return out
}

func (b *backlog) len() int {
	return b.count
}
