package model_test

import (
	"testing"

	glm "github.com/go-gl/mathgl/mgl32"

	"github.com/devblok/flume/model"
)

func testVertices(n int) []model.Vertex {
	vertices := make([]model.Vertex, n)
	for idx := range vertices {
		f := float32(idx)
		vertices[idx] = model.Vertex{
			Pos:   glm.Vec3{f, f + 1, f + 2},
			Color: glm.Vec4{f, f + 1, f + 2, f + 3},
		}
	}
	return vertices
}

func TestPackUnpackRoundtrip(t *testing.T) {
	vertices := testVertices(7)

	data := model.Pack(vertices)
	if len(data) != 7*model.VertexSize {
		t.Fatalf("expected %d bytes, got %d", 7*model.VertexSize, len(data))
	}

	back := model.Unpack(data)
	if len(back) != len(vertices) {
		t.Fatalf("expected %d vertices, got %d", len(vertices), len(back))
	}
	for idx := range vertices {
		if back[idx] != vertices[idx] {
			t.Fatalf("vertex %d mangled: %+v != %+v", idx, back[idx], vertices[idx])
		}
	}
}

func TestPackEmpty(t *testing.T) {
	if data := model.Pack(nil); data != nil {
		t.Errorf("expected nil, got %d bytes", len(data))
	}
	if vertices := model.Unpack([]byte{1, 2, 3}); vertices != nil {
		t.Errorf("partial vertex produced %d vertices", len(vertices))
	}
}

func TestPackCopies(t *testing.T) {
	vertices := testVertices(1)
	data := model.Pack(vertices)
	vertices[0].Pos = glm.Vec3{9, 9, 9}

	if back := model.Unpack(data); back[0].Pos == vertices[0].Pos {
		t.Error("packed data aliases the vertex slice")
	}
}

func TestMat4Roundtrip(t *testing.T) {
	m := glm.Perspective(glm.DegToRad(45), 4.0/3.0, 0.1, 10)

	data := model.PackMat4(m)
	if len(data) != model.Mat4Size {
		t.Fatalf("expected %d bytes, got %d", model.Mat4Size, len(data))
	}

	back, err := model.UnpackMat4(data)
	if err != nil {
		t.Fatal(err)
	}
	if back != m {
		t.Error("matrix mangled in the roundtrip")
	}

	if _, err := model.UnpackMat4(data[:10]); err != model.ErrBadMat4 {
		t.Errorf("expected ErrBadMat4, got %v", err)
	}
}

func BenchmarkPackSmall(b *testing.B) {
	vertices := testVertices(3)
	for idx := 0; idx < b.N; idx++ {
		model.Pack(vertices)
	}
}

func BenchmarkPackMedium(b *testing.B) {
	vertices := testVertices(1000)
	for idx := 0; idx < b.N; idx++ {
		model.Pack(vertices)
	}
}

func BenchmarkPackBig(b *testing.B) {
	vertices := testVertices(100000)
	for idx := 0; idx < b.N; idx++ {
		model.Pack(vertices)
	}
}
