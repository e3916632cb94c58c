package device

import (
	"errors"
	"fmt"

	glm "github.com/go-gl/mathgl/mgl32"
	"github.com/veandco/go-sdl2/sdl"

	"github.com/devblok/flume/gfx"
	"github.com/devblok/flume/model"
)

// TransformBinding is the bundle binding name the SDL backend reads a
// packed 4x4 transform matrix from. All other bindings stay opaque.
const TransformBinding = "transform"

// NewSDLBackend creates a backend that rasterises meshes as wireframes
// with SDL's 2D renderer. It has no depth buffer: depth write settings
// are ignored and of the depth tests only DepthNever has an effect, it
// discards the draw.
func NewSDLBackend(window *sdl.Window, width, height uint32) (*SDLBackend, error) {
	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED)
	if err != nil {
		return nil, errors.New("sdl.CreateRenderer(): " + err.Error())
	}
	return &SDLBackend{
		renderer: renderer,
		width:    width,
		height:   height,
		meshes:   make(map[gfx.MeshID][]model.Vertex),
		programs: make(map[gfx.ProgramID]struct{}),
		bundles:  make(map[gfx.BundleID]sdlBundle),
	}, nil
}

// SDLBackend executes encoded commands against an SDL 2D renderer.
type SDLBackend struct {
	renderer *sdl.Renderer

	width  uint32
	height uint32

	meshes   map[gfx.MeshID][]model.Vertex
	programs map[gfx.ProgramID]struct{}
	bundles  map[gfx.BundleID]sdlBundle
}

type sdlBundle struct {
	program      gfx.ProgramID
	transform    glm.Mat4
	hasTransform bool
}

// CreateMesh implements gfx.Backend
func (s *SDLBackend) CreateMesh(id gfx.MeshID, count uint32, data []byte) error {
	vertices := model.Unpack(data)
	if uint32(len(vertices)) < count {
		return fmt.Errorf("mesh %d: vertex data holds %d vertices, %d declared", id, len(vertices), count)
	}
	s.meshes[id] = vertices[:count]
	return nil
}

// CreateProgram implements gfx.Backend. Sources are kept opaque, this
// backend has nothing to compile them with.
func (s *SDLBackend) CreateProgram(id gfx.ProgramID, vertex, fragment []byte) error {
	s.programs[id] = struct{}{}
	return nil
}

// CreateBundle implements gfx.Backend
func (s *SDLBackend) CreateBundle(id gfx.BundleID, program gfx.ProgramID, bindings []gfx.Binding) error {
	if _, ok := s.programs[program]; !ok {
		return fmt.Errorf("bundle %d references unknown program %d", id, program)
	}
	bundle := sdlBundle{program: program}
	for _, b := range bindings {
		if b.Name != TransformBinding {
			continue
		}
		m, err := model.UnpackMat4(b.Data)
		if err != nil {
			return fmt.Errorf("bundle %d: %s", id, err.Error())
		}
		bundle.transform = m
		bundle.hasTransform = true
	}
	s.bundles[id] = bundle
	return nil
}

// UpdateBundle implements gfx.Backend
func (s *SDLBackend) UpdateBundle(id gfx.BundleID, bindings []gfx.Binding) error {
	bundle, ok := s.bundles[id]
	if !ok {
		return fmt.Errorf("unknown bundle %d", id)
	}
	bundle.transform = glm.Ident4()
	bundle.hasTransform = false
	for _, b := range bindings {
		if b.Name != TransformBinding {
			continue
		}
		m, err := model.UnpackMat4(b.Data)
		if err != nil {
			return fmt.Errorf("bundle %d: %s", id, err.Error())
		}
		bundle.transform = m
		bundle.hasTransform = true
	}
	s.bundles[id] = bundle
	return nil
}

// Clear implements gfx.Backend. Only the color channel exists here,
// depth and stencil clears are accepted and dropped.
func (s *SDLBackend) Clear(data gfx.ClearData, frame gfx.Frame) error {
	if data.Mask&gfx.ClearColor == 0 {
		return nil
	}
	if err := s.renderer.SetDrawColor(channel(data.Color[0]), channel(data.Color[1]), channel(data.Color[2]), channel(data.Color[3])); err != nil {
		return errors.New("sdl.SetDrawColor(): " + err.Error())
	}
	if err := s.renderer.Clear(); err != nil {
		return errors.New("sdl.Clear(): " + err.Error())
	}
	return nil
}

// Draw implements gfx.Backend. Vertices run through the bundle
// transform, get projected onto the window and come out as triangle
// wireframes. Triangles facing away from the configured winding are
// culled.
func (s *SDLBackend) Draw(mesh gfx.MeshID, slice gfx.Slice, frame gfx.Frame, bundle gfx.BundleID, state gfx.DrawState) error {
	vertices, ok := s.meshes[mesh]
	if !ok {
		return fmt.Errorf("unknown mesh %d", mesh)
	}
	if slice.End > uint32(len(vertices)) || slice.End < slice.Start {
		return fmt.Errorf("slice [%d, %d) outside mesh %d", slice.Start, slice.End, mesh)
	}
	b, ok := s.bundles[bundle]
	if !ok {
		return fmt.Errorf("unknown bundle %d", bundle)
	}
	if state.Depth == gfx.DepthNever {
		return nil
	}

	transform := glm.Ident4()
	if b.hasTransform {
		transform = b.transform
	}

	for i := slice.Start; slice.End-i >= 3; i += 3 {
		a, okA := project(transform, vertices[i].Pos, s.width, s.height)
		p2, okB := project(transform, vertices[i+1].Pos, s.width, s.height)
		p3, okC := project(transform, vertices[i+2].Pos, s.width, s.height)
		if !okA || !okB || !okC {
			continue
		}

		// Signed area in NDC: positive means counter-clockwise.
		cross := (p2.ndcX-a.ndcX)*(p3.ndcY-a.ndcY) - (p2.ndcY-a.ndcY)*(p3.ndcX-a.ndcX)
		front := (cross > 0) == (state.FrontFace == gfx.CounterClockwise)
		if !front {
			continue
		}

		c := vertices[i].Color
		if err := s.renderer.SetDrawColor(channel(c[0]), channel(c[1]), channel(c[2]), channel(c[3])); err != nil {
			return errors.New("sdl.SetDrawColor(): " + err.Error())
		}
		points := []sdl.Point{a.point, p2.point, p3.point, a.point}
		if err := s.renderer.DrawLines(points); err != nil {
			return errors.New("sdl.DrawLines(): " + err.Error())
		}
	}
	return nil
}

// Flush implements gfx.Backend
func (s *SDLBackend) Flush(frame gfx.Frame) error {
	s.renderer.Present()
	return nil
}

// Destroy implements gfx.Backend
func (s *SDLBackend) Destroy() {
	s.meshes = nil
	s.programs = nil
	s.bundles = nil
	s.renderer.Destroy()
}

type projected struct {
	point sdl.Point
	ndcX  float32
	ndcY  float32
}

func project(transform glm.Mat4, pos glm.Vec3, width, height uint32) (projected, bool) {
	clip := transform.Mul4x1(glm.Vec4{pos.X(), pos.Y(), pos.Z(), 1})
	if clip.W() == 0 {
		return projected{}, false
	}
	ndcX := clip.X() / clip.W()
	ndcY := clip.Y() / clip.W()
	return projected{
		point: sdl.Point{
			X: int32((ndcX + 1) * 0.5 * float32(width)),
			Y: int32((1 - ndcY) * 0.5 * float32(height)),
		},
		ndcX: ndcX,
		ndcY: ndcY,
	}, true
}

func channel(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v * 255)
}
