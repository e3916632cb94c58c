// Package core implements the command encoding half of the pipeline.
// A Renderer runs on its own goroutine, turns high level clear and draw
// calls into encoded commands and submits whole frames to the bounded
// queue. It never touches the graphics context directly, that side
// belongs to the device.
package core

import (
	"sync"

	"github.com/devblok/flume/gfx"
	"github.com/devblok/flume/queue"
)

// NewRenderer creates a renderer that submits frames to q.
// A Renderer is not safe for concurrent use, exactly one encoding
// goroutine must own it.
func NewRenderer(q *queue.Queue) *Renderer {
	return &Renderer{
		queue:    q,
		meshes:   make(map[gfx.MeshID]uint32),
		programs: make(map[gfx.ProgramID]struct{}),
		bundles:  make(map[gfx.BundleID]bundleInfo),
		finishC:  make(chan struct{}),
	}
}

// Renderer encodes renderer operations into per-frame command lists.
type Renderer struct {
	queue *queue.Queue

	frameID  uint64
	commands []gfx.Command

	nextMesh    uint32
	nextProgram uint32
	nextBundle  uint32

	meshes   map[gfx.MeshID]uint32
	programs map[gfx.ProgramID]struct{}
	bundles  map[gfx.BundleID]bundleInfo

	lastAck []error

	finishC    chan struct{}
	finishOnce sync.Once
}

type bundleInfo struct {
	program        gfx.ProgramID
	missingBinding bool
}

// CreateMesh uploads vertex data for drawing and returns its handle.
// The data travels to the device inside the current frame, ahead of any
// draw call that references it.
func (r *Renderer) CreateMesh(count uint32, data []byte) gfx.MeshID {
	r.nextMesh++
	id := gfx.MeshID(r.nextMesh)
	r.meshes[id] = count
	r.commands = append(r.commands, gfx.Command{
		Op:          gfx.OpCreateMesh,
		Mesh:        id,
		VertexCount: count,
		VertexData:  data,
	})
	return id
}

// CreateProgram registers a shader program from opaque sources and
// returns its handle.
func (r *Renderer) CreateProgram(vertex, fragment []byte) gfx.ProgramID {
	r.nextProgram++
	id := gfx.ProgramID(r.nextProgram)
	r.programs[id] = struct{}{}
	r.commands = append(r.commands, gfx.Command{
		Op:             gfx.OpCreateProgram,
		Program:        id,
		VertexSource:   vertex,
		FragmentSource: fragment,
	})
	return id
}

// CreateBundle associates a program with its resource bindings.
// An unknown program fails immediately, a binding without data is
// remembered and surfaces later as a draw error.
func (r *Renderer) CreateBundle(program gfx.ProgramID, bindings []gfx.Binding) (gfx.BundleID, error) {
	if _, ok := r.programs[program]; !ok {
		return 0, gfx.ErrMissingProgram
	}

	var missing bool
	for _, b := range bindings {
		if len(b.Data) == 0 {
			missing = true
		}
	}

	r.nextBundle++
	id := gfx.BundleID(r.nextBundle)
	r.bundles[id] = bundleInfo{program: program, missingBinding: missing}
	r.commands = append(r.commands, gfx.Command{
		Op:       gfx.OpCreateBundle,
		Bundle:   id,
		Program:  program,
		Bindings: bindings,
	})
	return id, nil
}

// UpdateBundle replaces the resource bindings of an existing bundle,
// typically to feed a fresh transform every frame. The program
// association is untouched. An unknown bundle fails immediately, a
// binding without data surfaces later as a draw error.
func (r *Renderer) UpdateBundle(bundle gfx.BundleID, bindings []gfx.Binding) error {
	info, ok := r.bundles[bundle]
	if !ok {
		return gfx.ErrUnknownBundle
	}

	info.missingBinding = false
	for _, b := range bindings {
		if len(b.Data) == 0 {
			info.missingBinding = true
		}
	}
	r.bundles[bundle] = info

	r.commands = append(r.commands, gfx.Command{
		Op:       gfx.OpUpdateBundle,
		Bundle:   bundle,
		Bindings: bindings,
	})
	return nil
}

// Clear appends a clear of the given frame to the current frame buffer.
func (r *Renderer) Clear(data gfx.ClearData, frame gfx.Frame) {
	r.commands = append(r.commands, gfx.Command{
		Op:    gfx.OpClear,
		Frame: frame,
		Clear: data,
	})
}

// Draw appends a draw call to the current frame buffer. It fails
// locally for slice bounds outside the mesh, unknown handles or bundles
// with incomplete bindings. A failed call leaves the rest of the frame
// untouched.
func (r *Renderer) Draw(mesh gfx.MeshID, slice gfx.Slice, frame gfx.Frame, bundle gfx.BundleID, state *gfx.DrawState) error {
	count, ok := r.meshes[mesh]
	if !ok {
		return gfx.ErrUnknownMesh
	}
	if slice.End < slice.Start || slice.End > count {
		return gfx.ErrSliceOutOfBounds
	}

	info, ok := r.bundles[bundle]
	if !ok {
		return gfx.ErrUnknownBundle
	}
	if info.program == 0 {
		return gfx.ErrMissingProgram
	}
	if info.missingBinding {
		return gfx.ErrMissingBinding
	}

	r.commands = append(r.commands, gfx.Command{
		Op:     gfx.OpDraw,
		Frame:  frame,
		Mesh:   mesh,
		Slice:  slice,
		Bundle: bundle,
		State:  *state,
	})
	return nil
}

// EndFrame finalises the current command buffer and submits it.
// It blocks while the number of unacknowledged frames equals the
// configured depth and returns queue.ErrClosed after shutdown.
func (r *Renderer) EndFrame() error {
	r.drainAcks()

	r.frameID++
	commands := append(r.commands, gfx.Command{
		Op:    gfx.OpEndFrame,
		Frame: gfx.MainFrame,
	})
	r.commands = nil

	return r.queue.Submit(queue.Submission{
		ID:       r.frameID,
		Commands: commands,
	})
}

// Errors returns the execution errors of the most recently acknowledged
// frame as a finite, consume-once iterator. Frames acknowledged since
// the previous call supersede each other, only the newest list remains.
func (r *Renderer) Errors() *ErrorIter {
	r.drainAcks()
	errs := r.lastAck
	r.lastAck = nil
	return &ErrorIter{errs: errs}
}

func (r *Renderer) drainAcks() {
	for {
		ack, ok := r.queue.NextAck()
		if !ok {
			return
		}
		r.lastAck = ack.Errors
	}
}

// ShouldFinish reports whether the owning thread requested shutdown.
// It never blocks.
func (r *Renderer) ShouldFinish() bool {
	select {
	case <-r.finishC:
		return true
	default:
		return false
	}
}

// RequestFinish asks the encoding goroutine to exit its loop. Safe to
// call from the owning thread, repeated calls are no-ops.
func (r *Renderer) RequestFinish() {
	r.finishOnce.Do(func() {
		close(r.finishC)
	})
}

// ErrorIter walks a frame's captured execution errors exactly once.
type ErrorIter struct {
	errs []error
}

// Next returns the next error. The second return is false once the
// sequence is exhausted.
func (it *ErrorIter) Next() (error, bool) {
	if len(it.errs) == 0 {
		return nil, false
	}
	err := it.errs[0]
	it.errs = it.errs[1:]
	return err, true
}
