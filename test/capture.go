// This file is part of threemu.
//
// threemu is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// threemu is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with threemu.  If not, see <https://www.gnu.org/licenses/>.

package test

import (
	"strings"

	"github.com/jetsetilly/threemu/curated"
)

// CappedWriter collects output up to a fixed number of bytes. Output beyond
// the cap is accepted and discarded so that a logger writing to a
// CappedWriter never sees a short write.
type CappedWriter struct {
	buffer    []byte
	size      int
	truncated bool
}

// NewCappedWriter returns a CappedWriter that keeps the first size bytes
// written to it.
func NewCappedWriter(size int) (*CappedWriter, error) {
	if size <= 0 {
		return nil, curated.Errorf("capped writer: invalid size (%d)", size)
	}
	return &CappedWriter{
		buffer: make([]byte, 0, size),
		size:   size,
	}, nil
}

// String returns everything kept so far.
func (w *CappedWriter) String() string {
	return string(w.buffer)
}

// Truncated is true if any output has been discarded since the last Reset.
func (w *CappedWriter) Truncated() bool {
	return w.truncated
}

// Reset empties the writer.
func (w *CappedWriter) Reset() {
	w.buffer = w.buffer[:0]
	w.truncated = false
}

// Write implements io.Writer.
func (w *CappedWriter) Write(p []byte) (int, error) {
	keep := min(len(p), w.size-len(w.buffer))
	w.buffer = append(w.buffer, p[:keep]...)
	if keep < len(p) {
		w.truncated = true
	}
	return len(p), nil
}

// RingWriter keeps the most recent bytes written to it. It is useful for
// capturing the tail of a long trace where only the lines leading up to a
// stop matter.
type RingWriter struct {
	buffer []byte
	size   int

	// start of the oldest byte. only meaningful once the buffer is full
	head int
}

// NewRingWriter returns a RingWriter that keeps the last size bytes written
// to it.
func NewRingWriter(size int) (*RingWriter, error) {
	if size <= 0 {
		return nil, curated.Errorf("ring writer: invalid size (%d)", size)
	}
	return &RingWriter{
		buffer: make([]byte, 0, size),
		size:   size,
	}, nil
}

// String returns the kept bytes, oldest first.
func (w *RingWriter) String() string {
	var s strings.Builder
	s.Write(w.buffer[w.head:])
	s.Write(w.buffer[:w.head])
	return s.String()
}

// Lines returns the kept output split on newlines. The first line may be
// partial if the ring has wrapped.
func (w *RingWriter) Lines() []string {
	s := strings.TrimSuffix(w.String(), "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

// Reset empties the writer.
func (w *RingWriter) Reset() {
	w.buffer = w.buffer[:0]
	w.head = 0
}

// Write implements io.Writer.
func (w *RingWriter) Write(p []byte) (int, error) {
	n := len(p)

	// only the tail of an oversized write can survive
	if n >= w.size {
		w.buffer = append(w.buffer[:0], p[n-w.size:]...)
		w.head = 0
		return n, nil
	}

	// fill any free space before overwriting
	free := min(len(p), w.size-len(w.buffer))
	w.buffer = append(w.buffer, p[:free]...)
	p = p[free:]

	for len(p) > 0 {
		c := copy(w.buffer[w.head:], p)
		p = p[c:]
		w.head = (w.head + c) % w.size
	}

	return n, nil
}
