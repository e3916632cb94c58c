// Package gfx defines the data types shared between the command
// encoding side of the pipeline and the device that executes it.
package gfx

import "errors"

// Encode-time errors. Draw calls fail locally with one of these and the
// rest of the frame stays intact.
var (
	ErrSliceOutOfBounds = errors.New("draw slice exceeds the mesh vertex range")
	ErrUnknownMesh      = errors.New("mesh was never created on this renderer")
	ErrUnknownBundle    = errors.New("bundle was never created on this renderer")
	ErrMissingProgram   = errors.New("bundle has no program attached")
	ErrMissingBinding   = errors.New("bundle has a binding with no data")
)

// Frame identifies a render target. It carries no structure of its own,
// the device resolves it against the surface it owns.
type Frame uint32

// MainFrame is the frame backed by the window surface.
const MainFrame Frame = 0

// MeshID is a handle to vertex data uploaded for drawing.
// Created once, referenced by many draw calls.
type MeshID uint32

// ProgramID is a handle to a shader program owned by the device.
type ProgramID uint32

// BundleID is a handle to a program with its resource bindings attached.
type BundleID uint32

// Winding selects which vertex ordering counts as front-facing.
type Winding int

// Supported front face windings.
const (
	Clockwise Winding = iota
	CounterClockwise
)

// DepthTest selects the comparison used against the depth buffer.
type DepthTest int

// Supported depth comparisons.
const (
	DepthNever DepthTest = iota
	DepthLess
	DepthLessEqual
	DepthAlways
)

// DrawState bundles the fixed function settings of a draw call.
// It is immutable per call and passed by reference.
type DrawState struct {
	FrontFace  Winding
	Depth      DepthTest
	DepthWrite bool
}

// ClearMask selects which channels of a frame a clear resets.
type ClearMask uint8

// Clear channels, each independently optional.
const (
	ClearColor ClearMask = 1 << iota
	ClearDepth
	ClearStencil
)

// ClearData describes how to reset a frame before drawing.
// Only the channels present in Mask are applied.
type ClearData struct {
	Mask    ClearMask
	Color   [4]float32
	Depth   float32
	Stencil int32
}

// Slice selects a half open vertex range [Start, End) of a mesh.
type Slice struct {
	Start uint32
	End   uint32
}

// Count returns the number of vertices the slice covers.
func (s Slice) Count() uint32 {
	if s.End < s.Start {
		return 0
	}
	return s.End - s.Start
}
