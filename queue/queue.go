// Package queue implements the bounded frame channel between the
// command encoder and the device. Capacity equals the configured
// frame-in-flight depth: submitting blocks the encoder once that many
// frames are in flight, acknowledging a frame releases one slot.
// Frames come out in the exact order they went in.
package queue

import (
	"errors"
	"sync"

	"github.com/devblok/flume/gfx"
)

// ErrClosed is returned by Submit once the queue has been shut down.
var ErrClosed = errors.New("frame queue is closed")

// Submission is one finalised frame handed over to the device.
// The command list belongs to the device from this point on.
type Submission struct {
	ID       uint64
	Commands []gfx.Command
}

// Ack reports that a submitted frame finished executing, successfully
// or with captured errors.
type Ack struct {
	ID     uint64
	Errors []error
}

// New creates a queue with the given frame-in-flight depth.
// A depth below one is clamped to one.
func New(depth int) *Queue {
	if depth < 1 {
		depth = 1
	}
	return &Queue{
		depth:  depth,
		slots:  make(chan struct{}, depth),
		frames: make(chan Submission, depth),
		acks:   make(chan Ack, depth),
		done:   make(chan struct{}),
	}
}

// Queue is the bounded channel between exactly one producer and one
// consumer. The slot channel is the in-flight counter: Submit fills a
// slot, Acknowledge drains one.
type Queue struct {
	depth int

	slots  chan struct{}
	frames chan Submission
	acks   chan Ack

	done      chan struct{}
	closeOnce sync.Once
}

// Depth returns the configured frame-in-flight depth.
func (q *Queue) Depth() int {
	return q.depth
}

// InFlight returns how many frames are submitted but not acknowledged.
func (q *Queue) InFlight() int {
	return len(q.slots)
}

// Submit hands a finalised frame to the device. It blocks while the
// number of unacknowledged frames equals the depth and unblocks when
// the device acknowledges one, or fails with ErrClosed on shutdown.
// A queue that is already closed rejects the frame before trying for a
// slot, free capacity must not race the shutdown signal.
func (q *Queue) Submit(sub Submission) error {
	select {
	case <-q.done:
		return ErrClosed
	default:
	}
	select {
	case q.slots <- struct{}{}:
	case <-q.done:
		return ErrClosed
	}
	// A held slot guarantees buffer space here.
	q.frames <- sub
	return nil
}

// Next returns the oldest submitted frame without blocking.
// The second return is false when nothing is ready.
func (q *Queue) Next() (Submission, bool) {
	select {
	case sub := <-q.frames:
		return sub, true
	default:
		return Submission{}, false
	}
}

// Acknowledge releases the slot of an executed frame and carries its
// captured errors back to the producer side. It never blocks: when the
// producer stops consuming acknowledgements the oldest one is dropped,
// only the newest frames' errors are kept.
func (q *Queue) Acknowledge(ack Ack) {
	for {
		select {
		case q.acks <- ack:
			select {
			case <-q.slots:
			default:
			}
			return
		default:
		}
		select {
		case <-q.acks:
		default:
		}
	}
}

// NextAck returns the oldest unconsumed acknowledgement without
// blocking. The second return is false when none is pending.
func (q *Queue) NextAck() (Ack, bool) {
	select {
	case ack := <-q.acks:
		return ack, true
	default:
		return Ack{}, false
	}
}

// Close shuts the queue down and unblocks a producer stuck in Submit.
// Frames already submitted remain drainable through Next. Repeated
// calls are no-ops.
func (q *Queue) Close() {
	q.closeOnce.Do(func() {
		close(q.done)
	})
}
