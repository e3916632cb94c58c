package gfx

// Op identifies the kind of encoded command.
type Op int

// Command kinds. Resource uploads travel on the same stream as draw
// calls so the device sees creations before first use.
const (
	OpCreateMesh Op = iota
	OpCreateProgram
	OpCreateBundle
	OpUpdateBundle
	OpClear
	OpDraw
	OpEndFrame
)

var opNames = [...]string{
	OpCreateMesh:    "CreateMesh",
	OpCreateProgram: "CreateProgram",
	OpCreateBundle:  "CreateBundle",
	OpUpdateBundle:  "UpdateBundle",
	OpClear:         "Clear",
	OpDraw:          "Draw",
	OpEndFrame:      "EndFrame",
}

// String implements fmt.Stringer.
func (op Op) String() string {
	if op < 0 || int(op) >= len(opNames) {
		return "Unknown"
	}
	return opNames[op]
}

// Binding attaches named resource data to a bundle. The data is opaque
// to the pipeline, only the backend interprets it.
type Binding struct {
	Name string
	Data []byte
}

// Command is the serialized form of one renderer operation. Ownership
// transfers from the encoder to the executor on submission, the encoder
// must not retain or mutate it afterwards.
type Command struct {
	Op    Op
	Frame Frame

	// OpClear
	Clear ClearData

	// OpDraw
	Mesh   MeshID
	Slice  Slice
	Bundle BundleID
	State  DrawState

	// OpCreateMesh
	VertexCount uint32
	VertexData  []byte

	// OpCreateProgram
	VertexSource   []byte
	FragmentSource []byte

	// OpCreateBundle
	Program  ProgramID
	Bindings []Binding
}

// Backend executes encoded commands against the underlying graphics
// context. It is driven exclusively from the owning thread, never from
// the encoding goroutine.
type Backend interface {

	// CreateMesh uploads vertex data under the given handle.
	CreateMesh(id MeshID, count uint32, data []byte) error

	// CreateProgram registers shader sources under the given handle.
	// Sources are opaque bytes, compilation is backend business.
	CreateProgram(id ProgramID, vertex, fragment []byte) error

	// CreateBundle associates a program with its resource bindings.
	CreateBundle(id BundleID, program ProgramID, bindings []Binding) error

	// UpdateBundle replaces the bindings of an existing bundle. The
	// program association is untouched.
	UpdateBundle(id BundleID, bindings []Binding) error

	// Clear resets the selected channels of a frame.
	Clear(data ClearData, frame Frame) error

	// Draw executes one draw call.
	Draw(mesh MeshID, slice Slice, frame Frame, bundle BundleID, state DrawState) error

	// Flush marks the end of a frame and presents it.
	Flush(frame Frame) error

	// Destroy releases everything the backend holds.
	Destroy()
}
