// SPDX-License-Identifier: MIT

// Package logq implements the pull-based log message channel of a VFS
// instance. Messages are produced by the engine's logger and retrieved one
// at a time by the controlling process, optionally blocking until a message
// arrives.
package logq

import "sync"

// DefaultLimit is the number of messages kept before the oldest ones are
// dropped.
const DefaultLimit = 1024

// Queue is a bounded FIFO message queue. When full, the oldest message is
// dropped so producers never block.
//
// The zero value is not usable, use [New].
type Queue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	msgs   []string
	limit  int
	closed bool
}

// New creates an empty [Queue] keeping at most limit messages. A limit of 0
// or less falls back to [DefaultLimit].
func New(limit int) *Queue {
	if limit <= 0 {
		limit = DefaultLimit
	}

	queue := &Queue{limit: limit}
	queue.cond = sync.NewCond(&queue.mu)

	return queue
}

// Push appends a message. Pushing to a closed queue is a no-op.
func (q *Queue) Push(msg string) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}

	if len(q.msgs) >= q.limit {
		q.msgs = q.msgs[1:]
	}

	q.msgs = append(q.msgs, msg)
	q.cond.Signal()
}

// Pull retrieves the oldest message. In non-blocking mode it returns
// immediately with ok false when the queue is empty. In blocking mode it
// waits until a message is available or the queue is closed.
func (q *Queue) Pull(blocking bool) (string, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.msgs) == 0 {
		if !blocking || q.closed {
			return "", false
		}

		q.cond.Wait()
	}

	msg := q.msgs[0]
	q.msgs = q.msgs[1:]

	return msg, true
}

// Len returns the number of queued messages.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.msgs)
}

// Close wakes all blocked readers. Queued messages can still be pulled
// non-blocking afterwards. Close is idempotent.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.closed = true
	q.cond.Broadcast()
}
