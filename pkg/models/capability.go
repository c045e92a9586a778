package models

// EnvironmentSnapshot is a client-reported view of its execution environment
type EnvironmentSnapshot struct {
	HasWindow    bool              `json:"hasWindow"`
	UserAgent    string            `json:"userAgent"`
	DeviceMemory *float64          `json:"deviceMemory,omitempty"` // GiB, nil when the platform doesn't report it
	Graphics     *GraphicsSnapshot `json:"graphics,omitempty"`     // nil when no context could be acquired
}

// GraphicsSnapshot describes the probe rendering context a client obtained
type GraphicsSnapshot struct {
	API      string  `json:"api"`                // "webgl" or "experimental-webgl"
	Renderer *string `json:"renderer,omitempty"` // nil when WEBGL_debug_renderer_info is unavailable
	Error    string  `json:"error,omitempty"`    // set when acquisition threw
}

// CapabilityReport is the detector's answer for one environment
type CapabilityReport struct {
	CanRender3D   bool    `json:"canRender3D"`
	QualityFactor float64 `json:"qualityFactor"`
	QualityTier   string  `json:"qualityTier"`
	Mobile        bool    `json:"mobile"`
}
