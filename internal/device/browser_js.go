//go:build js && wasm

package device

import (
	"errors"
	"fmt"
	"syscall/js"
)

// contextAPIs are tried in order; older Safari and Edge only expose the experimental name
var contextAPIs = []string{"webgl", "experimental-webgl"}

// BrowserEnvironment reads the live DOM, WebGL and navigator objects
type BrowserEnvironment struct {
	global js.Value
}

// NewBrowserEnvironment binds to the page's global object
func NewBrowserEnvironment() *BrowserEnvironment {
	return &BrowserEnvironment{global: js.Global()}
}

func (b *BrowserEnvironment) HasWindow() bool {
	return present(b.global.Get("window")) && present(b.global.Get("document"))
}

func (b *BrowserEnvironment) AcquireContext() (GraphicsContext, error) {
	var ctx GraphicsContext
	err := guard("acquire context", func() {
		canvas := b.global.Get("document").Call("createElement", "canvas")
		for _, api := range contextAPIs {
			gl := canvas.Call("getContext", api)
			if present(gl) {
				ctx = &webglContext{gl: gl}
				return
			}
		}
	})
	if err != nil {
		return nil, err
	}
	return ctx, nil
}

func (b *BrowserEnvironment) UserAgent() (string, error) {
	var ua string
	err := guard("user agent", func() {
		v := b.navigator().Get("userAgent")
		if v.Type() != js.TypeString {
			panic(errors.New("navigator.userAgent is not a string"))
		}
		ua = v.String()
	})
	return ua, err
}

func (b *BrowserEnvironment) DeviceMemory() (float64, bool, error) {
	var (
		gib float64
		ok  bool
	)
	err := guard("device memory", func() {
		v := b.navigator().Get("deviceMemory")
		if v.Type() != js.TypeNumber {
			return
		}
		gib, ok = v.Float(), true
	})
	return gib, ok, err
}

func (b *BrowserEnvironment) navigator() js.Value {
	nav := b.global.Get("navigator")
	if !present(nav) {
		panic(errors.New("navigator is unavailable"))
	}
	return nav
}

type webglContext struct {
	gl       js.Value
	released bool
}

func (c *webglContext) RendererDescription() (string, bool, error) {
	var (
		desc string
		ok   bool
	)
	err := guard("renderer info", func() {
		ext := c.gl.Call("getExtension", "WEBGL_debug_renderer_info")
		if !present(ext) {
			return
		}
		v := c.gl.Call("getParameter", ext.Get("UNMASKED_RENDERER_WEBGL"))
		ok = true
		if v.Type() == js.TypeString {
			desc = v.String()
		}
	})
	return desc, ok, err
}

// Release asks the browser to drop the GPU context now instead of at GC time
func (c *webglContext) Release() {
	if c.released {
		return
	}
	c.released = true
	_ = guard("release context", func() {
		if lose := c.gl.Call("getExtension", "WEBGL_lose_context"); present(lose) {
			lose.Call("loseContext")
		}
	})
	c.gl = js.Undefined()
}

func present(v js.Value) bool {
	return !v.IsUndefined() && !v.IsNull()
}

// guard turns a panic raised by syscall/js into a ProbeError
func guard(op string, fn func()) (err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		switch v := r.(type) {
		case error:
			err = &ProbeError{Op: op, Err: v}
		default:
			err = &ProbeError{Op: op, Err: fmt.Errorf("%v", v)}
		}
	}()
	fn()
	return nil
}
