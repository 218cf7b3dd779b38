// Package errors provides the plugin proxy's error taxonomy. All types
// support unwrapping via errors.As() and errors.Is(). None of them is
// process-fatal: one extension's failure stays isolated from the rest of
// the catalog and from the host.
package errors

import "fmt"

// ManifestError reports an unreadable or malformed manifest, or an
// exec_path that does not resolve to an existing file. Discovery logs it
// and continues with the remaining manifests.
type ManifestError struct {
	Err  error
	Path string
}

func (e *ManifestError) Error() string {
	return fmt.Sprintf("manifest %s: %v", e.Path, e.Err)
}

func (e *ManifestError) Unwrap() error {
	return e.Err
}

// SandboxError reports a failure to bring up one sandboxed extension.
// Step names the stage that failed (compile, instantiate, initialize, ...).
type SandboxError struct {
	Err    error
	Plugin string
	Step   string
}

func (e *SandboxError) Error() string {
	return fmt.Sprintf("sandbox %s for plugin %s: %v", e.Step, e.Plugin, e.Err)
}

func (e *SandboxError) Unwrap() error {
	return e.Err
}

// StartError reports a failure to spawn or initialize a legacy process
// plugin.
type StartError struct {
	Err    error
	Plugin string
}

func (e *StartError) Error() string {
	return fmt.Sprintf("start plugin %s: %v", e.Plugin, e.Err)
}

func (e *StartError) Unwrap() error {
	return e.Err
}

// DecodeError reports a malformed guest-to-host payload. The capability
// bridge logs it and carries on; it is never surfaced to the guest and
// never aborts the host.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode notification: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
