//go:build !js || !wasm

package device

// BrowserEnvironment stands in for the page environment outside a browser.
// It never reports a window, so the detector returns its defaults without probing.
type BrowserEnvironment struct{}

func NewBrowserEnvironment() *BrowserEnvironment {
	return &BrowserEnvironment{}
}

func (*BrowserEnvironment) HasWindow() bool { return false }

func (*BrowserEnvironment) AcquireContext() (GraphicsContext, error) { return nil, nil }

func (*BrowserEnvironment) UserAgent() (string, error) { return "", nil }

func (*BrowserEnvironment) DeviceMemory() (float64, bool, error) { return 0, false, nil }
