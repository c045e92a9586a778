package api

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shehryarbajwa/scenegate/internal/ratelimit"
	"github.com/shehryarbajwa/scenegate/pkg/models"
)

const (
	desktopUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0 Safari/537.36"
	iphoneUA  = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_5 like Mac OS X) AppleWebKit/605.1.15 Mobile/15E148"
)

func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func newRouter(perHour, burst int) http.Handler {
	return NewHandler().SetupRoutes(ratelimit.NewLimiter(perHour, burst), perHour, nil)
}

var proxyNet = []netip.Prefix{netip.MustParsePrefix("10.0.0.0/8")}

func decodeReport(t *testing.T, rec *httptest.ResponseRecorder) models.CapabilityReport {
	t.Helper()
	var report models.CapabilityReport
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&report))
	return report
}

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter(60, 5).ServeHTTP(rec, httptest.NewRequest("GET", "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestClassifySnapshot(t *testing.T) {
	body := `{
		"hasWindow": true,
		"userAgent": "` + iphoneUA + `",
		"deviceMemory": 8,
		"graphics": {"api": "webgl", "renderer": "Apple GPU"}
	}`
	req := httptest.NewRequest("POST", "/v1/capabilities", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	newRouter(60, 5).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	report := decodeReport(t, rec)
	assert.True(t, report.CanRender3D)
	assert.InDelta(t, 0.5, report.QualityFactor, 1e-9)
	assert.Equal(t, "medium", report.QualityTier)
	assert.True(t, report.Mobile)
}

func TestClassifySnapshotWithoutWindow(t *testing.T) {
	req := httptest.NewRequest("POST", "/v1/capabilities", strings.NewReader(`{"userAgent":"`+desktopUA+`"}`))
	rec := httptest.NewRecorder()
	newRouter(60, 5).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	report := decodeReport(t, rec)
	assert.False(t, report.CanRender3D)
	assert.Equal(t, 0.5, report.QualityFactor)
}

func TestClassifySnapshotBadBody(t *testing.T) {
	req := httptest.NewRequest("POST", "/v1/capabilities", strings.NewReader(`{"hasWindow": "yes"`))
	rec := httptest.NewRecorder()
	newRouter(60, 5).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid request body")
}

func TestClassifyRequestHeaders(t *testing.T) {
	req := httptest.NewRequest("GET", "/v1/capabilities", nil)
	req.Header.Set("User-Agent", desktopUA)
	req.Header.Set("X-WebGL-Context", "webgl")
	req.Header.Set("Sec-CH-Device-Memory", "8")
	rec := httptest.NewRecorder()
	newRouter(60, 5).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Sec-CH-Device-Memory, Device-Memory", rec.Header().Get("Accept-CH"))
	assert.Contains(t, rec.Header().Values("Vary"), "User-Agent")

	report := decodeReport(t, rec)
	assert.True(t, report.CanRender3D)
	assert.Equal(t, 1.0, report.QualityFactor)
	assert.Equal(t, "high", report.QualityTier)
	assert.False(t, report.Mobile)
}

func TestClassifyRequestWithoutWebGL(t *testing.T) {
	req := httptest.NewRequest("GET", "/v1/capabilities", nil)
	req.Header.Set("User-Agent", desktopUA)
	rec := httptest.NewRecorder()
	newRouter(60, 5).ServeHTTP(rec, req)

	report := decodeReport(t, rec)
	assert.False(t, report.CanRender3D)
	assert.Equal(t, 0.5, report.QualityFactor)
}

func TestRequestID(t *testing.T) {
	router := newRouter(60, 5)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/healthz", nil))
	assert.Len(t, rec.Header().Get("X-Request-ID"), 36)

	req := httptest.NewRequest("GET", "/healthz", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}

func TestRateLimit(t *testing.T) {
	limiter := ratelimit.NewLimiter(60, 2)
	router := NewHandler().SetupRoutes(limiter, 60, proxyNet)

	send := func(client string) *httptest.ResponseRecorder {
		req := httptest.NewRequest("GET", "/v1/capabilities", nil)
		req.RemoteAddr = "10.0.0.1:4431"
		req.Header.Set("User-Agent", desktopUA)
		req.Header.Set("X-Forwarded-For", client)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	first := send("203.0.113.7")
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "60", first.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Remaining"))

	require.Equal(t, http.StatusOK, send("203.0.113.7").Code)

	limited := send("203.0.113.7")
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.Equal(t, "0", limited.Header().Get("X-RateLimit-Remaining"))
	assert.Contains(t, limited.Body.String(), "Rate limit exceeded")

	assert.Equal(t, http.StatusOK, send("198.51.100.2").Code)
	assert.Equal(t, 2, limiter.Len())
}

func TestRateLimitIgnoresForwardedFromUntrustedPeer(t *testing.T) {
	limiter := ratelimit.NewLimiter(60, 1)
	router := NewHandler().SetupRoutes(limiter, 60, proxyNet)

	allowed := 0
	for i := 0; i < 50; i++ {
		req := httptest.NewRequest("GET", "/v1/capabilities", nil)
		req.RemoteAddr = "198.51.100.20:5000"
		req.Header.Set("User-Agent", desktopUA)
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("1.2.3.%d", i))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code == http.StatusOK {
			allowed++
		}
	}

	assert.Equal(t, 1, allowed)
	assert.Equal(t, 1, limiter.Len())
}

func TestRateLimitWithoutTrustedProxies(t *testing.T) {
	limiter := ratelimit.NewLimiter(60, 1)
	router := NewHandler().SetupRoutes(limiter, 60, nil)

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest("GET", "/v1/capabilities", nil)
		req.Header.Set("User-Agent", desktopUA)
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("1.2.3.%d", i))
		router.ServeHTTP(httptest.NewRecorder(), req)
	}
	assert.Equal(t, 1, limiter.Len())
}

func TestHealthNotRateLimited(t *testing.T) {
	router := newRouter(60, 1)
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest("GET", "/healthz", nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestPreflight(t *testing.T) {
	router := newRouter(60, 1)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest("OPTIONS", "/v1/capabilities", nil)
		req.Header.Set("Origin", "https://example.com")
		req.Header.Set("Access-Control-Request-Method", "POST")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "X-WebGL-Renderer")
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		trusted    []netip.Prefix
		remoteAddr string
		forwarded  []string
		want       string
	}{
		{"no proxies configured", nil, "192.0.2.1:1234", []string{"203.0.113.9"}, "192.0.2.1"},
		{"untrusted peer", proxyNet, "192.0.2.1:1234", []string{"203.0.113.9"}, "192.0.2.1"},
		{"trusted peer without header", proxyNet, "10.1.2.3:80", nil, "10.1.2.3"},
		{"trusted peer", proxyNet, "10.1.2.3:80", []string{"203.0.113.9"}, "203.0.113.9"},
		{"client-supplied hops are skipped", proxyNet, "10.1.2.3:80", []string{" 1.1.1.1 , 203.0.113.9"}, "203.0.113.9"},
		{"chained trusted proxies", proxyNet, "10.1.2.3:80", []string{"203.0.113.9, 10.9.9.9"}, "203.0.113.9"},
		{"repeated headers", proxyNet, "10.1.2.3:80", []string{"1.1.1.1", "203.0.113.9"}, "203.0.113.9"},
		{"garbage hop", proxyNet, "10.1.2.3:80", []string{"203.0.113.9, not-an-ip"}, "10.1.2.3"},
		{"only trusted hops", proxyNet, "10.1.2.3:80", []string{"10.4.4.4"}, "10.4.4.4"},
		{"mapped ipv4 peer", proxyNet, "[::ffff:10.1.2.3]:80", []string{"203.0.113.9"}, "203.0.113.9"},
		{"address without port", proxyNet, "unix-socket", []string{"203.0.113.9"}, "unix-socket"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for _, v := range tt.forwarded {
				req.Header.Add("X-Forwarded-For", v)
			}
			assert.Equal(t, tt.want, NewClientIPResolver(tt.trusted).ClientIP(req))
		})
	}
}
