package automation

import "fmt"

// DefaultQueueSize bounds pending requests.
const DefaultQueueSize = 8

// Request carries an action to the run loop.
type Request struct {
	Name   string // action name or "script:<id>"
	Source string // "mqtt", "http", ...
	Action Action
}

// Queue hands requests from transport goroutines to the run loop.
// Submit never blocks; the run loop drains C and plays each action to
// completion before taking the next.
type Queue struct {
	ch chan Request
}

// NewQueue creates a queue holding at most size pending requests.
func NewQueue(size int) *Queue {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &Queue{ch: make(chan Request, size)}
}

// Submit enqueues req or returns ErrQueueFull.
func (q *Queue) Submit(req Request) error {
	select {
	case q.ch <- req:
		return nil
	default:
		return fmt.Errorf("%w: dropping %s from %s", ErrQueueFull, req.Name, req.Source)
	}
}

// C returns the receive side for the run loop.
func (q *Queue) C() <-chan Request {
	return q.ch
}

// Len returns the number of pending requests.
func (q *Queue) Len() int {
	return len(q.ch)
}
