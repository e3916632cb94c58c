// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package trace is an api for an lz4 backed frame capture format.
// A capture records every frame the device executed: the frame id, its
// full command list and whatever errors execution produced. Captures
// are written as a single compressed stream so recording stays cheap
// while the pipeline runs, and are read back frame by frame for
// inspection after the fact.
package trace

import (
	"errors"

	"github.com/devblok/flume/gfx"
)

// package errors
var (
	ErrFileFormat = errors.New("corrupted or not a flume capture")
	ErrClosed     = errors.New("capture is closed")
)

// Magic identifies a capture stream.
var Magic = [4]byte{'F', 'L', 'C', '\x00'}

// Version is the capture format version written by this package.
const Version = 1

// Header is the capture stream header.
type Header struct {
	Engine      string
	DateCreated int64
	Version     int64
}

// FrameRecord is one executed frame as stored in a capture. Commands
// keep their full payloads so a capture can be replayed against any
// backend. Errors are stored as strings, execution error values do not
// survive serialization.
type FrameRecord struct {
	ID       uint64
	Commands []gfx.Command
	Errors   []string
}
