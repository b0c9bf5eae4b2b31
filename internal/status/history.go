package status

import "github.com/sweeney/room-monitor/internal/connectivity"

// history is a fixed-capacity FIFO of layer transitions. When full the
// oldest entry is overwritten.
// Not safe for concurrent use; caller must synchronize.
type history struct {
	buf      []connectivity.Transition
	capacity int
	head     int // next write position
	count    int
	dropped  int // entries overwritten since start
}

func newHistory(capacity int) *history {
	return &history{
		buf:      make([]connectivity.Transition, capacity),
		capacity: capacity,
	}
}

func (h *history) push(tr connectivity.Transition) {
	h.buf[h.head] = tr
	h.head = (h.head + 1) % h.capacity
	if h.count == h.capacity {
		h.dropped++
		return
	}
	h.count++
}

// all returns a copy of the entries, oldest first.
func (h *history) all() []connectivity.Transition {
	if h.count == 0 {
		return nil
	}

	result := make([]connectivity.Transition, h.count)
	// Oldest item is at (head - count) mod capacity
	start := (h.head - h.count + h.capacity) % h.capacity
	for i := 0; i < h.count; i++ {
		result[i] = h.buf[(start+i)%h.capacity]
	}
	return result
}
