package wasmio

import (
	"encoding/json"
	"fmt"

	derrors "github.com/CyberFlameGO/lapce/domain/errors"
)

// Stdio is the pipe pair owned by one sandbox instance. Stdin carries
// host-to-guest objects, Stdout guest-to-host. The framing is one compact
// JSON object per newline-terminated line; several sequential messages per
// instance are supported.
type Stdio struct {
	Stdin  *Pipe
	Stdout *Pipe
}

// NewStdio returns a fresh pipe pair.
func NewStdio() *Stdio {
	return &Stdio{Stdin: NewPipe(), Stdout: NewPipe()}
}

// WriteObject frames v as one JSON object on the guest's stdin. The
// serialized frame is written in a single call, so it cannot interleave
// with another frame.
func (s *Stdio) WriteObject(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal object for guest: %w", err)
	}
	_, err = s.Stdin.Write(append(data, '\n'))
	return err
}

// ReadFrame consumes one raw frame the guest wrote to its stdout.
func (s *Stdio) ReadFrame() ([]byte, error) {
	return s.Stdout.ReadFrame()
}

// ReadObject decodes one framed object from the guest's stdout into v.
// A missing or malformed frame is a DecodeError; the caller treats it as
// "no notification this turn", never as a reason to abort.
func (s *Stdio) ReadObject(v any) error {
	frame, err := s.Stdout.ReadFrame()
	if err != nil {
		return &derrors.DecodeError{Err: err}
	}
	if err := json.Unmarshal(frame, v); err != nil {
		return &derrors.DecodeError{Err: err}
	}
	return nil
}
