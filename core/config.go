package core

// Configuration defines a global pipeline configuration setting
type Configuration struct {
	Time     TimeConfiguration
	Renderer RendererConfiguration
	Queue    QueueConfiguration
}

// TimeConfiguration is used to configure time services
type TimeConfiguration struct {
	// FramesPerSecond caps frames per second that is put out.
	// To unlimit, set to 0
	FramesPerSecond int

	// EventPollDelay is the interval between event polls
	// of the owning thread, in milliseconds
	EventPollDelay int
}

// RendererConfiguration is used to configure the renderer surface
type RendererConfiguration struct {
	ScreenWidth  uint32
	ScreenHeight uint32
}

// QueueConfiguration is used to configure the frame queue
type QueueConfiguration struct {
	// Depth is the frame-in-flight limit. The encoder blocks in
	// EndFrame once this many frames await acknowledgement.
	// Values below 1 are treated as 1
	Depth int
}
