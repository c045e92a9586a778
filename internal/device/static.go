package device

import (
	"errors"

	"github.com/shehryarbajwa/scenegate/pkg/models"
)

// StaticEnvironment serves a fixed snapshot, usually one reported by a client
type StaticEnvironment struct {
	snapshot models.EnvironmentSnapshot
}

// NewStaticEnvironment wraps a snapshot as an Environment
func NewStaticEnvironment(snapshot models.EnvironmentSnapshot) *StaticEnvironment {
	return &StaticEnvironment{snapshot: snapshot}
}

func (s *StaticEnvironment) HasWindow() bool {
	return s.snapshot.HasWindow
}

func (s *StaticEnvironment) AcquireContext() (GraphicsContext, error) {
	g := s.snapshot.Graphics
	if g == nil {
		return nil, nil
	}
	if g.Error != "" {
		return nil, &ProbeError{Op: "acquire " + g.API, Err: errors.New(g.Error)}
	}
	return staticContext{renderer: g.Renderer}, nil
}

func (s *StaticEnvironment) UserAgent() (string, error) {
	return s.snapshot.UserAgent, nil
}

func (s *StaticEnvironment) DeviceMemory() (float64, bool, error) {
	if s.snapshot.DeviceMemory == nil {
		return 0, false, nil
	}
	return *s.snapshot.DeviceMemory, true, nil
}

type staticContext struct {
	renderer *string
}

func (c staticContext) RendererDescription() (string, bool, error) {
	if c.renderer == nil {
		return "", false, nil
	}
	return *c.renderer, true, nil
}

func (staticContext) Release() {}
