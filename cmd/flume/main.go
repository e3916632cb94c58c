package main

import (
	"os"
	"runtime"
	"strconv"
	"sync"

	glm "github.com/go-gl/mathgl/mgl32"
	"github.com/gobuffalo/envy"
	log "github.com/sirupsen/logrus"
	"github.com/veandco/go-sdl2/sdl"

	"github.com/devblok/flume/core"
	"github.com/devblok/flume/device"
	"github.com/devblok/flume/gfx"
	"github.com/devblok/flume/model"
	"github.com/devblok/flume/queue"
	"github.com/devblok/flume/trace"
)

func init() {
	runtime.LockOSThread()
}

var configuration = core.Configuration{
	Time: core.TimeConfiguration{
		FramesPerSecond: 60,
		EventPollDelay:  5,
	},
	Renderer: core.RendererConfiguration{
		ScreenWidth:  800,
		ScreenHeight: 600,
	},
	Queue: core.QueueConfiguration{
		Depth: 1,
	},
}

func loadConfiguration() {
	configuration.Renderer.ScreenWidth = envSize("FLUME_WIDTH", configuration.Renderer.ScreenWidth)
	configuration.Renderer.ScreenHeight = envSize("FLUME_HEIGHT", configuration.Renderer.ScreenHeight)
	configuration.Queue.Depth = envInt("FLUME_FRAME_DEPTH", configuration.Queue.Depth)
	configuration.Time.FramesPerSecond = envInt("FLUME_FPS", configuration.Time.FramesPerSecond)
}

func envInt(key string, fallback int) int {
	value, err := strconv.Atoi(envy.Get(key, strconv.Itoa(fallback)))
	if err != nil {
		log.Warnf("%s ignored: %s", key, err.Error())
		return fallback
	}
	return value
}

// envSize reads a window dimension. Zero and negative values would wrap
// through the unsigned conversion, so they fall back too.
func envSize(key string, fallback uint32) uint32 {
	value := envInt(key, int(fallback))
	if value <= 0 {
		log.Warnf("%s ignored: must be positive, got %d", key, value)
		return fallback
	}
	return uint32(value)
}

// Placeholder sources, this backend treats them as opaque bytes.
const (
	vertexSource = `#version 450
layout(location = 0) in vec3 position;
layout(location = 1) in vec4 color;
layout(binding = 0) uniform Transform { mat4 mvp; };
layout(location = 0) out vec4 fragColor;
void main() {
	gl_Position = mvp * vec4(position, 1.0);
	fragColor = color;
}`
	fragmentSource = `#version 450
layout(location = 0) in vec4 fragColor;
layout(location = 0) out vec4 outColor;
void main() {
	outColor = fragColor;
}`
)

// triangle is the demo object
type triangle struct {
	mutex     sync.RWMutex
	transform glm.Mat4
	vertices  []model.Vertex
}

func newTriangle() *triangle {
	return &triangle{
		transform: glm.Ident4(),
		vertices: []model.Vertex{
			{Pos: glm.Vec3{0, 0.5, 0}, Color: glm.Vec4{1, 0, 0, 1}},
			{Pos: glm.Vec3{-0.5, -0.5, 0}, Color: glm.Vec4{0, 1, 0, 1}},
			{Pos: glm.Vec3{0.5, -0.5, 0}, Color: glm.Vec4{0, 0, 1, 1}},
		},
	}
}

// SetTransform implements interface
func (t *triangle) SetTransform(m glm.Mat4) {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	t.transform = m
}

// Transform implements interface
func (t *triangle) Transform() glm.Mat4 {
	t.mutex.RLock()
	defer t.mutex.RUnlock()
	return t.transform
}

// Vertices implements interface
func (t *triangle) Vertices() []model.Vertex {
	return t.vertices
}

func encodeLoop(renderer *core.Renderer, done chan struct{}) {
	defer close(done)

	var obj model.Object = newTriangle()

	aspect := float32(configuration.Renderer.ScreenWidth) / float32(configuration.Renderer.ScreenHeight)
	uniform := model.Uniform{
		Model:      glm.Ident4(),
		View:       glm.LookAtV(glm.Vec3{0, 0, 2}, glm.Vec3{0, 0, 0}, glm.Vec3{0, 1, 0}),
		Projection: glm.Perspective(glm.DegToRad(45), aspect, 0.1, 10),
	}
	obj.SetTransform(uniform.Projection.Mul4(uniform.View).Mul4(uniform.Model))

	vertices := obj.Vertices()
	mesh := renderer.CreateMesh(uint32(len(vertices)), model.Pack(vertices))
	program := renderer.CreateProgram([]byte(vertexSource), []byte(fragmentSource))
	bundle, err := renderer.CreateBundle(program, []gfx.Binding{{
		Name: device.TransformBinding,
		Data: model.PackMat4(obj.Transform()),
	}})
	if err != nil {
		log.Errorf("core.CreateBundle(): %s", err.Error())
		return
	}

	state := gfx.DrawState{
		FrontFace:  gfx.CounterClockwise,
		Depth:      gfx.DepthLessEqual,
		DepthWrite: true,
	}
	clear := gfx.ClearData{
		Mask:  gfx.ClearColor | gfx.ClearDepth,
		Color: [4]float32{0.05, 0.05, 0.05, 1},
		Depth: 1,
	}
	slice := gfx.Slice{Start: 0, End: uint32(len(vertices))}

	var angle float32
	for !renderer.ShouldFinish() {
		// Spin around Y, roughly one turn every three seconds at the
		// default frame rate. Backpressure in the queue paces the loop.
		angle += glm.DegToRad(2)
		uniform.Model = glm.HomogRotate3DY(angle)
		obj.SetTransform(uniform.Projection.Mul4(uniform.View).Mul4(uniform.Model))
		if err := renderer.UpdateBundle(bundle, []gfx.Binding{{
			Name: device.TransformBinding,
			Data: model.PackMat4(obj.Transform()),
		}}); err != nil {
			log.Errorf("core.UpdateBundle(): %s", err.Error())
		}

		renderer.Clear(clear, gfx.MainFrame)
		if err := renderer.Draw(mesh, slice, gfx.MainFrame, bundle, &state); err != nil {
			log.Errorf("core.Draw(): %s", err.Error())
		}
		if err := renderer.EndFrame(); err != nil {
			log.Infof("encoding stopped: %s", err.Error())
			return
		}
		it := renderer.Errors()
		for {
			err, ok := it.Next()
			if !ok {
				break
			}
			log.Warnf("frame error: %s", err.Error())
		}
	}
}

func main() {
	loadConfiguration()

	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		log.Fatalf("sdl.Init(): %s", err.Error())
	}
	defer sdl.Quit()

	window, err := sdl.CreateWindow("Flume",
		sdl.WINDOWPOS_UNDEFINED,
		sdl.WINDOWPOS_UNDEFINED,
		int32(configuration.Renderer.ScreenWidth),
		int32(configuration.Renderer.ScreenHeight),
		sdl.WINDOW_SHOWN)
	if err != nil {
		log.Fatalf("sdl.CreateWindow(): %s", err.Error())
	}
	defer window.Destroy()

	backend, err := device.NewSDLBackend(window,
		configuration.Renderer.ScreenWidth,
		configuration.Renderer.ScreenHeight)
	if err != nil {
		log.Fatalf("device.NewSDLBackend(): %s", err.Error())
	}

	frameQueue := queue.New(configuration.Queue.Depth)
	renderer := core.NewRenderer(frameQueue)
	dev := device.New(backend, frameQueue)

	if path := envy.Get("FLUME_CAPTURE", ""); path != "" {
		file, err := os.Create(path)
		if err != nil {
			log.Fatalf("os.Create(): %s", err.Error())
		}
		defer file.Close()

		writer, err := trace.NewWriter(file, trace.Header{Engine: "Flume"})
		if err != nil {
			log.Fatalf("trace.NewWriter(): %s", err.Error())
		}
		defer writer.Close()
		dev.Record(writer)
		log.Infof("recording capture to %s", path)
	}

	encoderDone := make(chan struct{})
	go encodeLoop(renderer, encoderDone)

	time := core.NewTime(configuration.Time)
	defer time.Stop()
	exitC := make(chan struct{}, 2)

EventLoop:
	for {
		select {
		case <-exitC:
			log.Info("Event loop exited")
			break EventLoop
		case <-time.FpsTicker().C:
			var event sdl.Event
			for event = sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
				switch et := event.(type) {
				case *sdl.KeyboardEvent:
					if et.Keysym.Sym == sdl.K_ESCAPE {
						exitC <- struct{}{}
						continue EventLoop
					}
				case *sdl.QuitEvent:
					exitC <- struct{}{}
					continue EventLoop
				}
			}
			dev.Update()
		}
	}

	renderer.RequestFinish()
	frameQueue.Close()
	<-encoderDone

	dev.Update()
	dev.Close()
}
