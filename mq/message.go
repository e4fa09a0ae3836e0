// Package mq implements the engine's message queue: a bounded-blocking,
// condition-variable-synchronized FIFO with urgent front-push and typed
// reads, the transport both the control protocol and the sample-batch
// output stream ride on.
//
// One mutex guards a singly-linked list; one broadcast condition variable
// wakes every waiter on every push, since waiters with different type
// filters must all re-evaluate. Spurious wakeups are tolerated by
// re-checking the predicate in a loop.
package mq

import (
	"errors"
	"sync"
)

// Type tags a Message for PollType / ReadType matching. The engine
// uses it to distinguish control responses (Inspector) from sample batches
// (Samples); callers may define further values for their own protocols.
type Type uint32

// ErrClosed is returned by Write/WriteUrgent once Finalize has run.
var ErrClosed = errors.New("mq: queue finalized")

// Message is the queue's payload envelope. Payload ownership transfers to
// the queue on Write and to the caller on Read; neither side copies it.
type Message struct {
	Type    Type
	Payload any
}

type node struct {
	msg  Message
	next *node
}

// Queue is a FIFO of Messages guarded by a mutex and a broadcast condition
// variable. The zero value is not usable; construct with New.
type Queue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	head   *node
	tail   *node
	closed bool
	pool   *Pool
}

// New initializes an empty queue. pool may be nil to disable header pooling,
// in which case nodes are ordinary heap allocations reclaimed by the GC.
func New(pool *Pool) *Queue {
	q := &Queue{pool: pool}
	q.cond = sync.NewCond(&q.mu)
	return q
}

func (q *Queue) newNode(msg Message) *node {
	if q.pool != nil {
		n := q.pool.alloc()
		n.msg = msg
		n.next = nil
		return n
	}
	return &node{msg: msg}
}

func (q *Queue) releaseNode(n *node) {
	n.next = nil
	if q.pool != nil {
		q.pool.release(n)
	}
}

// Write appends (t, payload) to the tail and broadcasts to all waiters.
func (q *Queue) Write(t Type, payload any) error {
	return q.write(t, payload, false)
}

// WriteUrgent prepends (t, payload) ahead of everything already queued.
// Concurrent urgent writes are LIFO among themselves: the latest urgent
// write is popped first.
func (q *Queue) WriteUrgent(t Type, payload any) error {
	return q.write(t, payload, true)
}

func (q *Queue) write(t Type, payload any, urgent bool) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrClosed
	}
	n := q.newNode(Message{Type: t, Payload: payload})
	if urgent {
		n.next = q.head
		q.head = n
		if q.tail == nil {
			q.tail = n
		}
	} else {
		if q.tail == nil {
			q.head, q.tail = n, n
		} else {
			q.tail.next = n
			q.tail = n
		}
	}
	q.cond.Broadcast()
	q.mu.Unlock()
	return nil
}

// Read blocks until a message is available, then pops and returns the head.
// The second return value is false only once the queue has been finalized
// and drained.
func (q *Queue) Read() (Message, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for q.head == nil && !q.closed {
		q.cond.Wait()
	}
	if q.head == nil {
		return Message{}, false
	}
	return q.popLocked(nil, q.head), true
}

// ReadType blocks until a message of exactly t is available, then removes
// the first such message, preserving the relative order of everything else.
// It may overtake earlier messages of other types.
func (q *Queue) ReadType(t Type) (Message, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for {
		if prev, n := q.findLocked(t); n != nil {
			return q.popLocked(prev, n), true
		}
		if q.closed {
			return Message{}, false
		}
		q.cond.Wait()
	}
}

// Poll is the non-blocking form of Read.
func (q *Queue) Poll() (Message, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.head == nil {
		return Message{}, false
	}
	return q.popLocked(nil, q.head), true
}

// PollType is the non-blocking form of ReadType.
func (q *Queue) PollType(t Type) (Message, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if prev, n := q.findLocked(t); n != nil {
		return q.popLocked(prev, n), true
	}
	return Message{}, false
}

// findLocked scans for the first node of type t, returning its predecessor
// (nil if it's the head) alongside it. Caller must hold q.mu.
func (q *Queue) findLocked(t Type) (prev, n *node) {
	for cur, p := q.head, (*node)(nil); cur != nil; cur, p = cur.next, cur {
		if cur.msg.Type == t {
			return p, cur
		}
	}
	return nil, nil
}

// popLocked unlinks n (whose predecessor is prev, or nil if n == q.head)
// and returns its message. Caller must hold q.mu.
func (q *Queue) popLocked(prev, n *node) Message {
	if prev == nil {
		q.head = n.next
	} else {
		prev.next = n.next
	}
	if n == q.tail {
		q.tail = prev
	}
	msg := n.msg
	q.releaseNode(n)
	return msg
}

// Len reports the current number of queued messages. Intended for
// diagnostics/metrics, not for control flow.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := 0
	for cur := q.head; cur != nil; cur = cur.next {
		n++
	}
	return n
}

// Finalize marks the queue closed, wakes every blocked reader (which then
// observes an empty, closed queue and returns ok=false once drained), and
// returns any remaining message headers to the pool.
func (q *Queue) Finalize() {
	q.mu.Lock()
	for cur := q.head; cur != nil; {
		next := cur.next
		q.releaseNode(cur)
		cur = next
	}
	q.head, q.tail = nil, nil
	q.closed = true
	q.cond.Broadcast()
	q.mu.Unlock()
}
