package device

import "fmt"

// Environment is the ambient execution context the detector reads.
// Implementations must not cache answers between calls.
type Environment interface {
	// HasWindow reports whether a browser-like global context is available.
	HasWindow() bool

	// AcquireContext requests a minimal graphics rendering context.
	// A nil context with a nil error means the platform doesn't support one.
	AcquireContext() (GraphicsContext, error)

	// UserAgent returns the raw user-agent identifier of the client.
	UserAgent() (string, error)

	// DeviceMemory returns the approximate device memory in GiB.
	// ok is false when the platform doesn't report it.
	DeviceMemory() (gib float64, ok bool, err error)
}

// GraphicsContext is a throwaway rendering context used only for probing
type GraphicsContext interface {
	// RendererDescription returns the unmasked renderer string.
	// ok is false when the debug extension is unavailable.
	RendererDescription() (desc string, ok bool, err error)

	// Release drops the context. Safe to call more than once.
	Release()
}

// ProbeError reports a failure to read the environment
type ProbeError struct {
	Op  string
	Err error
}

func (e *ProbeError) Error() string {
	if e.Err == nil {
		return "probe " + e.Op + " failed"
	}
	return fmt.Sprintf("probe %s: %v", e.Op, e.Err)
}

func (e *ProbeError) Unwrap() error {
	return e.Err
}
