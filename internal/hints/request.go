// Package hints builds a detector environment from an HTTP request.
//
// A page script reports its WebGL probe through X-WebGL-Context and
// X-WebGL-Renderer; device memory arrives as a Client Hint.
package hints

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/shehryarbajwa/scenegate/internal/device"
)

const (
	HeaderWebGLContext  = "X-WebGL-Context"
	HeaderWebGLRenderer = "X-WebGL-Renderer"
	HeaderDeviceMemory  = "Device-Memory"
	HeaderCHMemory      = "Sec-CH-Device-Memory"
)

// AcceptCH lists the Client Hints the service asks browsers to send
var AcceptCH = []string{HeaderCHMemory, HeaderDeviceMemory}

// RequestEnvironment exposes a request's headers as a device.Environment
type RequestEnvironment struct {
	header http.Header
}

// NewRequestEnvironment captures the headers of r
func NewRequestEnvironment(r *http.Request) *RequestEnvironment {
	return &RequestEnvironment{header: r.Header.Clone()}
}

// HasWindow is true for any client that identifies itself with a user agent
func (e *RequestEnvironment) HasWindow() bool {
	return e.header.Get("User-Agent") != ""
}

func (e *RequestEnvironment) AcquireContext() (device.GraphicsContext, error) {
	api := strings.ToLower(strings.TrimSpace(e.header.Get(HeaderWebGLContext)))
	switch api {
	case "", "none":
		return nil, nil
	case "webgl", "experimental-webgl":
	default:
		return nil, &device.ProbeError{
			Op:  "acquire context",
			Err: fmt.Errorf("unknown %s value %q", HeaderWebGLContext, api),
		}
	}

	renderer, ok := e.header[http.CanonicalHeaderKey(HeaderWebGLRenderer)]
	ctx := reportedContext{}
	if ok && len(renderer) > 0 {
		ctx.renderer, ctx.known = renderer[0], true
	}
	return ctx, nil
}

func (e *RequestEnvironment) UserAgent() (string, error) {
	return e.header.Get("User-Agent"), nil
}

// DeviceMemory prefers the Sec-CH- form over the legacy header
func (e *RequestEnvironment) DeviceMemory() (float64, bool, error) {
	for _, name := range []string{HeaderCHMemory, HeaderDeviceMemory} {
		raw := strings.TrimSpace(e.header.Get(name))
		if raw == "" {
			continue
		}
		gib, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return 0, false, &device.ProbeError{Op: "device memory", Err: fmt.Errorf("parse %s: %w", name, err)}
		}
		return gib, true, nil
	}
	return 0, false, nil
}

type reportedContext struct {
	renderer string
	known    bool
}

func (c reportedContext) RendererDescription() (string, bool, error) {
	return c.renderer, c.known, nil
}

func (reportedContext) Release() {}
