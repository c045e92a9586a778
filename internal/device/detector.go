// Package device decides whether a visitor's browser can render the 3D
// landing scene and how much quality it can afford.
//
// Both checks are one-shot heuristics over an injected Environment. They
// never return an error: any probe failure resolves to a safe default.
package device

import (
	"math"

	"github.com/shehryarbajwa/scenegate/pkg/models"
)

const (
	// DefaultQualityFactor is returned when the environment can't be read
	DefaultQualityFactor = 0.5

	// DefaultDeviceMemory is assumed when the platform doesn't report memory
	DefaultDeviceMemory = 4.0

	MinQualityFactor = 0.3
	MaxQualityFactor = 1.0

	// referenceMemory is the memory in GiB that earns full quality on desktop
	referenceMemory = 8.0
	mobilePenalty   = 0.5
)

// QualityTier is a coarse label for a quality factor
type QualityTier string

const (
	TierLow    QualityTier = "low"
	TierMedium QualityTier = "medium"
	TierHigh   QualityTier = "high"
)

// CanRender3D reports whether the environment can mount the 3D scene.
// Desktop-class devices with any working graphics context qualify; mobile
// devices additionally need a recognised high-end GPU.
func CanRender3D(env Environment) bool {
	if env == nil || !env.HasWindow() {
		return false
	}
	ok, err := probeCapability(env)
	if err != nil {
		return false
	}
	return ok
}

func probeCapability(env Environment) (bool, error) {
	gl, err := env.AcquireContext()
	if err != nil {
		return false, err
	}
	if gl == nil {
		return false, nil
	}
	defer gl.Release()

	renderer, ok, err := gl.RendererDescription()
	if err != nil {
		return false, err
	}
	if !ok {
		renderer = ""
	}

	ua, err := env.UserAgent()
	if err != nil {
		return false, err
	}
	if !IsMobile(ua) {
		return true, nil
	}
	return IsHighEndMobileGPU(renderer), nil
}

// QualityFactor returns a scaling factor in [MinQualityFactor, MaxQualityFactor]
// that renderers use for resolution, particle counts and similar knobs.
func QualityFactor(env Environment) float64 {
	if env == nil || !env.HasWindow() {
		return DefaultQualityFactor
	}
	factor, err := computeQuality(env)
	if err != nil {
		return DefaultQualityFactor
	}
	return factor
}

func computeQuality(env Environment) (float64, error) {
	ua, err := env.UserAgent()
	if err != nil {
		return 0, err
	}

	memory, ok, err := env.DeviceMemory()
	if err != nil {
		return 0, err
	}
	// zero and NaN count as unreported
	if !ok || memory == 0 || math.IsNaN(memory) {
		memory = DefaultDeviceMemory
	}

	scale := 1.0
	if IsMobile(ua) {
		scale = mobilePenalty
	}
	return clamp(memory/referenceMemory*scale, MinQualityFactor, MaxQualityFactor), nil
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

// Tier buckets a quality factor
func Tier(factor float64) QualityTier {
	switch {
	case factor >= 0.75:
		return TierHigh
	case factor >= 0.5:
		return TierMedium
	default:
		return TierLow
	}
}

// Assess runs both checks and bundles the answers
func Assess(env Environment) models.CapabilityReport {
	factor := QualityFactor(env)
	report := models.CapabilityReport{
		CanRender3D:   CanRender3D(env),
		QualityFactor: factor,
		QualityTier:   string(Tier(factor)),
	}
	if env != nil && env.HasWindow() {
		if ua, err := env.UserAgent(); err == nil {
			report.Mobile = IsMobile(ua)
		}
	}
	return report
}
