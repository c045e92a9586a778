package api

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/shehryarbajwa/scenegate/internal/device"
	"github.com/shehryarbajwa/scenegate/internal/hints"
	"github.com/shehryarbajwa/scenegate/pkg/models"
)

// maxSnapshotBytes bounds POST bodies; a snapshot is a few hundred bytes
const maxSnapshotBytes = 16 << 10

// Handler holds dependencies for HTTP handlers
type Handler struct {
	assess func(device.Environment) models.CapabilityReport
}

// NewHandler creates a new HTTP handler
func NewHandler() *Handler {
	return &Handler{
		assess: device.Assess,
	}
}

// Health handles GET /healthz
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ClassifyRequest handles GET /v1/capabilities
func (h *Handler) ClassifyRequest(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Accept-CH", strings.Join(hints.AcceptCH, ", "))
	for _, name := range []string{"User-Agent", hints.HeaderCHMemory, hints.HeaderDeviceMemory, hints.HeaderWebGLContext, hints.HeaderWebGLRenderer} {
		w.Header().Add("Vary", name)
	}

	report := h.assess(hints.NewRequestEnvironment(r))
	logReport(r, "headers", report)
	writeJSON(w, http.StatusOK, report)
}

// ClassifySnapshot handles POST /v1/capabilities
func (h *Handler) ClassifySnapshot(w http.ResponseWriter, r *http.Request) {
	var snapshot models.EnvironmentSnapshot

	r.Body = http.MaxBytesReader(w, r.Body, maxSnapshotBytes)
	if err := json.NewDecoder(r.Body).Decode(&snapshot); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	report := h.assess(device.NewStaticEnvironment(snapshot))
	logReport(r, "snapshot", report)
	writeJSON(w, http.StatusOK, report)
}

func logReport(r *http.Request, source string, report models.CapabilityReport) {
	log.Printf("🔍 [%s] %s classification: 3d=%t quality=%.2f tier=%s mobile=%t",
		RequestID(r.Context()), source, report.CanRender3D, report.QualityFactor, report.QualityTier, report.Mobile)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("❌ Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
