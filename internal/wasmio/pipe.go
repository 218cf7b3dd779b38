// Package wasmio implements the host side of the sandbox I/O channel: an
// in-memory pipe pair standing in for the guest's standard streams, and
// newline-framed JSON objects on top of them.
package wasmio

import (
	"bytes"
	"errors"
	"io"
	"sync"
)

// ErrNoFrame is returned when no complete newline-terminated frame is
// buffered. The capability bridge treats it as "no notification this turn".
var ErrNoFrame = errors.New("wasmio: no complete frame buffered")

// Pipe is an in-memory byte stream safe for one writer and one reader on
// different goroutines. Writes never block: the guest writes a frame and
// then calls back into the host on the same thread, so a rendezvous pipe
// would deadlock that chain.
type Pipe struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

// NewPipe returns an empty pipe.
func NewPipe() *Pipe { return &Pipe{} }

// Write appends b to the pipe. A frame written in a single call is never
// interleaved with another writer's bytes.
func (p *Pipe) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.buf.Write(b)
}

// Read drains buffered bytes into b. An empty pipe reads as end of stream,
// matching what a guest expects from its stdin once the host has written
// everything it has to say.
func (p *Pipe) Read(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.buf.Len() == 0 {
		return 0, io.EOF
	}
	return p.buf.Read(b)
}

// Len returns the number of buffered bytes.
func (p *Pipe) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.buf.Len()
}

// ReadFrame removes and returns one newline-terminated frame, without the
// terminator. A trailing carriage return is stripped, some guests frame
// with "\r\n". Returns ErrNoFrame when no terminator is buffered yet: the
// partial frame stays in the pipe for a later call.
func (p *Pipe) ReadFrame() ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	b := p.buf.Bytes()
	i := bytes.IndexByte(b, '\n')
	if i < 0 {
		return nil, ErrNoFrame
	}
	frame := make([]byte, i)
	copy(frame, b[:i])
	p.buf.Next(i + 1)
	return bytes.TrimSuffix(frame, []byte{'\r'}), nil
}
