package gammascout

import (
	"sync"
	"time"
)

// MessageQueue is a FIFO of received lines shared between the reader loop
// and the command methods. It is safe for concurrent use.
type MessageQueue struct {
	mu    sync.Mutex
	lines []string
	// wake is closed and replaced on every Push, releasing all waiters.
	wake chan struct{}
}

// NewMessageQueue returns an empty queue.
func NewMessageQueue() *MessageQueue {
	return &MessageQueue{wake: make(chan struct{})}
}

// Push appends lines as one batch and wakes every blocked Pop.
func (q *MessageQueue) Push(lines ...string) {
	if len(lines) == 0 {
		return
	}
	q.mu.Lock()
	q.lines = append(q.lines, lines...)
	close(q.wake)
	q.wake = make(chan struct{})
	q.mu.Unlock()
}

// Pop removes and returns the oldest line. It waits up to timeout for one to
// arrive and reports ok == false if none did.
func (q *MessageQueue) Pop(timeout time.Duration) (line string, ok bool) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		q.mu.Lock()
		if line, ok = q.popLocked(); ok {
			q.mu.Unlock()
			return line, true
		}
		wake := q.wake
		q.mu.Unlock()

		select {
		case <-wake:
			// Another waiter may have taken the line; look again.
		case <-timer.C:
			// A push may have landed right at the deadline.
			q.mu.Lock()
			defer q.mu.Unlock()
			return q.popLocked()
		}
	}
}

// popLocked removes the oldest line. q.mu must be held.
func (q *MessageQueue) popLocked() (string, bool) {
	if len(q.lines) == 0 {
		return "", false
	}
	line := q.lines[0]
	q.lines[0] = ""
	q.lines = q.lines[1:]
	if len(q.lines) == 0 {
		q.lines = nil
	}
	return line, true
}

// Len returns the number of queued lines.
func (q *MessageQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.lines)
}
