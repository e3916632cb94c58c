package model

import (
	"errors"
	"unsafe"

	glm "github.com/go-gl/mathgl/mgl32"
)

// ErrBadMat4 reports binding data that is not a packed 4x4 matrix.
var ErrBadMat4 = errors.New("binding data is not a packed 4x4 matrix")

// Object represents a drawable the encoder loop can animate
type Object interface {

	// SetTransform sets the object's current transform.
	// Has to be thread-safe
	SetTransform(glm.Mat4)

	// Transform gets the object's current transform.
	// Has to be thread-safe
	Transform() glm.Mat4

	// Vertices returns the vertices for mesh upload,
	// so it has to match the packed layout exactly
	Vertices() []Vertex
}

// Vertex is a mesh vertex
type Vertex struct {
	Pos   glm.Vec3
	Color glm.Vec4
}

// VertexSize is the packed byte size of one Vertex
const VertexSize = int(unsafe.Sizeof(Vertex{}))

// Mat4Size is the packed byte size of one 4x4 matrix
const Mat4Size = int(unsafe.Sizeof(glm.Mat4{}))

// Uniform defines a model-view-projection object
type Uniform struct {
	Model      glm.Mat4
	View       glm.Mat4
	Projection glm.Mat4
}

const maxPack = 0x7fffffff

type sliceHeader struct {
	Data uintptr
	Len  int
	Cap  int
}

// Pack copies vertices into the raw byte form used for mesh upload.
// The copy is deliberate, command payloads change ownership when the
// frame is submitted.
func Pack(vertices []Vertex) []byte {
	if len(vertices) == 0 {
		return nil
	}
	src := (*[maxPack]byte)(unsafe.Pointer((*sliceHeader)(unsafe.Pointer(&vertices)).Data))[: len(vertices)*VertexSize : len(vertices)*VertexSize]
	out := make([]byte, len(src))
	copy(out, src)
	return out
}

// Unpack copies raw mesh bytes back into vertices. Trailing bytes that
// do not make up a whole vertex are dropped.
func Unpack(data []byte) []Vertex {
	n := len(data) / VertexSize
	if n == 0 {
		return nil
	}
	src := (*[maxPack / VertexSize]Vertex)(unsafe.Pointer((*sliceHeader)(unsafe.Pointer(&data)).Data))[:n:n]
	out := make([]Vertex, n)
	copy(out, src)
	return out
}

// PackMat4 copies a matrix into the raw byte form used for bundle
// binding data.
func PackMat4(m glm.Mat4) []byte {
	src := (*[maxPack]byte)(unsafe.Pointer(&m))[:Mat4Size:Mat4Size]
	out := make([]byte, Mat4Size)
	copy(out, src)
	return out
}

// UnpackMat4 reads a matrix back out of binding data.
func UnpackMat4(data []byte) (glm.Mat4, error) {
	if len(data) != Mat4Size {
		return glm.Ident4(), ErrBadMat4
	}
	var m glm.Mat4
	dst := (*[maxPack]byte)(unsafe.Pointer(&m))[:Mat4Size:Mat4Size]
	copy(dst, data)
	return m, nil
}
