// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package trace

import (
	"encoding/gob"
	"io"
	"sync"
	"time"

	"github.com/pierrec/lz4"

	"github.com/devblok/flume/gfx"
)

// NewWriter starts a capture on w. The header is written immediately,
// its Version field is overwritten with the format version. Is safe
// to use concurrently in different goroutines.
func NewWriter(w io.Writer, header Header) (*Writer, error) {
	if _, err := w.Write(Magic[:]); err != nil {
		return nil, err
	}

	header.Version = Version
	if header.DateCreated == 0 {
		header.DateCreated = time.Now().Unix()
	}

	zw := lz4.NewWriter(w)
	enc := gob.NewEncoder(zw)
	if err := enc.Encode(header); err != nil {
		return nil, err
	}

	return &Writer{
		compressor: zw,
		encoder:    enc,
	}, nil
}

// Writer appends executed frames to a capture stream.
type Writer struct {
	mutex sync.Mutex

	compressor *lz4.Writer
	encoder    *gob.Encoder
	closed     bool
}

// WriteFrame appends one executed frame with its captured errors.
func (w *Writer) WriteFrame(id uint64, commands []gfx.Command, errs []error) error {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	if w.closed {
		return ErrClosed
	}

	record := FrameRecord{
		ID:       id,
		Commands: commands,
	}
	for _, err := range errs {
		record.Errors = append(record.Errors, err.Error())
	}
	return w.encoder.Encode(record)
}

// Close flushes the compressor and ends the capture.
// Repeated calls are no-ops.
func (w *Writer) Close() error {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true
	return w.compressor.Close()
}
