// Package device implements the executing half of the pipeline. The
// Device is owned by the main thread, drains submitted frames from the
// bounded queue and plays their commands against a backend. It is the
// only party that touches the underlying graphics context.
package device

import (
	"fmt"
	"sync"

	"github.com/devblok/flume/gfx"
	"github.com/devblok/flume/queue"
	"github.com/devblok/flume/trace"
)

// New creates a device that executes frames from q against backend.
func New(backend gfx.Backend, q *queue.Queue) *Device {
	return &Device{
		backend: backend,
		queue:   q,
	}
}

// Device executes submitted frames in submission order.
type Device struct {
	backend gfx.Backend
	queue   *queue.Queue

	recorder *trace.Writer

	closeOnce sync.Once
	closed    bool
}

// Record attaches a capture writer. Every frame executed from then on
// is appended to the capture. Call before the first Update.
func (d *Device) Record(w *trace.Writer) {
	d.recorder = w
}

// Update drains every fully submitted frame currently in the queue and
// executes it. It never waits for new frames: with nothing ready it
// returns immediately. Command failures are captured into the frame's
// error list and travel back to the encoder with the acknowledgement.
func (d *Device) Update() {
	if d.closed {
		return
	}

	for {
		sub, ok := d.queue.Next()
		if !ok {
			return
		}

		var errs []error
		for _, cmd := range sub.Commands {
			if err := d.execute(cmd); err != nil {
				errs = append(errs, err)
			}
		}

		if d.recorder != nil {
			// A failed capture write rides back on the acknowledgement
			// like any command failure. The recorded frame itself never
			// contains its own capture error.
			if err := d.recorder.WriteFrame(sub.ID, sub.Commands, errs); err != nil {
				errs = append(errs, fmt.Errorf("capture: %s", err.Error()))
			}
		}
		d.queue.Acknowledge(queue.Ack{ID: sub.ID, Errors: errs})
	}
}

func (d *Device) execute(cmd gfx.Command) error {
	var err error
	switch cmd.Op {
	case gfx.OpCreateMesh:
		err = d.backend.CreateMesh(cmd.Mesh, cmd.VertexCount, cmd.VertexData)
	case gfx.OpCreateProgram:
		err = d.backend.CreateProgram(cmd.Program, cmd.VertexSource, cmd.FragmentSource)
	case gfx.OpCreateBundle:
		err = d.backend.CreateBundle(cmd.Bundle, cmd.Program, cmd.Bindings)
	case gfx.OpUpdateBundle:
		err = d.backend.UpdateBundle(cmd.Bundle, cmd.Bindings)
	case gfx.OpClear:
		err = d.backend.Clear(cmd.Clear, cmd.Frame)
	case gfx.OpDraw:
		err = d.backend.Draw(cmd.Mesh, cmd.Slice, cmd.Frame, cmd.Bundle, cmd.State)
	case gfx.OpEndFrame:
		err = d.backend.Flush(cmd.Frame)
	default:
		err = fmt.Errorf("unknown command op %d", cmd.Op)
	}
	if err != nil {
		return fmt.Errorf("%s: %s", cmd.Op, err.Error())
	}
	return nil
}

// Close tears the backend down. Repeated calls are no-ops and Update
// becomes a no-op once closed.
func (d *Device) Close() {
	d.closeOnce.Do(func() {
		d.closed = true
		d.backend.Destroy()
	})
}
