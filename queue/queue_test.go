package queue_test

import (
	"testing"
	"time"

	"github.com/devblok/flume/gfx"
	"github.com/devblok/flume/queue"
)

func submission(id uint64) queue.Submission {
	return queue.Submission{
		ID:       id,
		Commands: []gfx.Command{{Op: gfx.OpEndFrame, Frame: gfx.MainFrame}},
	}
}

func TestDepthClamp(t *testing.T) {
	q := queue.New(0)
	if q.Depth() != 1 {
		t.Errorf("expected depth 1, got %d", q.Depth())
	}
}

func TestSubmissionOrder(t *testing.T) {
	q := queue.New(2)

	var got []uint64
	for id := uint64(1); id <= 6; id += 2 {
		if err := q.Submit(submission(id)); err != nil {
			t.Fatal(err)
		}
		if err := q.Submit(submission(id + 1)); err != nil {
			t.Fatal(err)
		}
		for {
			sub, ok := q.Next()
			if !ok {
				break
			}
			got = append(got, sub.ID)
			q.Acknowledge(queue.Ack{ID: sub.ID})
		}
	}

	for idx, id := range got {
		if id != uint64(idx+1) {
			t.Fatalf("frames reordered: %v", got)
		}
	}
	if len(got) != 6 {
		t.Errorf("expected 6 frames, got %d", len(got))
	}
}

func TestNextEmptyNonBlocking(t *testing.T) {
	q := queue.New(1)

	start := time.Now()
	if _, ok := q.Next(); ok {
		t.Error("empty queue produced a frame")
	}
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Errorf("Next took %s on an empty queue", elapsed)
	}
}

func TestSubmitBlocksAtDepth(t *testing.T) {
	q := queue.New(1)

	if err := q.Submit(submission(1)); err != nil {
		t.Fatal(err)
	}
	if q.InFlight() != 1 {
		t.Fatalf("expected 1 frame in flight, got %d", q.InFlight())
	}

	submitted := make(chan error, 1)
	go func() {
		submitted <- q.Submit(submission(2))
	}()

	select {
	case err := <-submitted:
		t.Fatalf("second submit did not block, err: %v", err)
	case <-time.After(50 * time.Millisecond):
	}

	sub, ok := q.Next()
	if !ok || sub.ID != 1 {
		t.Fatalf("expected frame 1, got %v %v", sub.ID, ok)
	}
	q.Acknowledge(queue.Ack{ID: sub.ID})

	select {
	case err := <-submitted:
		if err != nil {
			t.Fatal(err)
		}
	case <-time.After(time.Second):
		t.Fatal("submit still blocked after acknowledge")
	}

	if q.InFlight() != 1 {
		t.Errorf("expected 1 frame in flight, got %d", q.InFlight())
	}
}

func TestInFlightNeverExceedsDepth(t *testing.T) {
	const depth = 3
	q := queue.New(depth)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for id := uint64(1); id <= 20; id++ {
			if err := q.Submit(submission(id)); err != nil {
				return
			}
		}
	}()

	deadline := time.After(2 * time.Second)
	var processed int
	for processed < 20 {
		select {
		case <-deadline:
			t.Fatalf("stalled after %d frames", processed)
		default:
		}

		if inFlight := q.InFlight(); inFlight > depth {
			t.Fatalf("%d frames in flight, depth is %d", inFlight, depth)
		}
		sub, ok := q.Next()
		if !ok {
			continue
		}
		q.Acknowledge(queue.Ack{ID: sub.ID})
		processed++
	}
	<-done
}

func TestAcknowledgeCarriesErrors(t *testing.T) {
	q := queue.New(1)
	if err := q.Submit(submission(1)); err != nil {
		t.Fatal(err)
	}
	if _, ok := q.Next(); !ok {
		t.Fatal("no frame ready")
	}

	q.Acknowledge(queue.Ack{ID: 1, Errors: []error{gfx.ErrSliceOutOfBounds}})

	ack, ok := q.NextAck()
	if !ok {
		t.Fatal("no acknowledgement pending")
	}
	if ack.ID != 1 || len(ack.Errors) != 1 || ack.Errors[0] != gfx.ErrSliceOutOfBounds {
		t.Errorf("unexpected ack: %+v", ack)
	}

	if _, ok := q.NextAck(); ok {
		t.Error("acknowledgement produced twice")
	}
}

func TestSubmitAfterClose(t *testing.T) {
	// A free slot must not beat the shutdown signal, so a single pass
	// proves nothing: run enough rounds to flush out any select race.
	for round := 0; round < 200; round++ {
		q := queue.New(1)
		q.Close()
		q.Close()

		if err := q.Submit(submission(1)); err != queue.ErrClosed {
			t.Fatalf("round %d: expected ErrClosed, got %v", round, err)
		}
	}
}

func TestCloseUnblocksSubmit(t *testing.T) {
	q := queue.New(1)
	if err := q.Submit(submission(1)); err != nil {
		t.Fatal(err)
	}

	submitted := make(chan error, 1)
	go func() {
		submitted <- q.Submit(submission(2))
	}()

	time.Sleep(50 * time.Millisecond)
	q.Close()

	select {
	case err := <-submitted:
		if err != queue.ErrClosed {
			t.Errorf("expected ErrClosed, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("submit still blocked after close")
	}
}
