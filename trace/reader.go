// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package trace

import (
	"bytes"
	"encoding/gob"
	"io"

	"github.com/pierrec/lz4"
)

// Open reads the capture header from r and prepares frame iteration.
func Open(r io.Reader) (*Reader, error) {
	var magic [len(Magic)]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, ErrFileFormat
	}
	if !bytes.Equal(magic[:], Magic[:]) {
		return nil, ErrFileFormat
	}

	decoder := gob.NewDecoder(lz4.NewReader(r))

	var header Header
	if err := decoder.Decode(&header); err != nil {
		return nil, ErrFileFormat
	}

	return &Reader{
		header:  header,
		decoder: decoder,
	}, nil
}

// Reader iterates the frames of a capture in recorded order.
type Reader struct {
	header  Header
	decoder *gob.Decoder
}

// Header returns the capture stream header.
func (r *Reader) Header() Header {
	return r.header
}

// Next returns the next recorded frame. It returns io.EOF once the
// capture is exhausted and ErrFileFormat on a truncated or damaged
// stream.
func (r *Reader) Next() (FrameRecord, error) {
	var record FrameRecord
	if err := r.decoder.Decode(&record); err != nil {
		if err == io.EOF {
			return FrameRecord{}, io.EOF
		}
		return FrameRecord{}, ErrFileFormat
	}
	return record, nil
}
