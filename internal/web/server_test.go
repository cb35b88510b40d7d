package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skywatch/dronerid/internal/core/domain"
)

type fakeSource struct {
	detections []domain.Detection
	stats      *domain.Stats
	sessionID  string
}

func (f *fakeSource) Detections() []domain.Detection { return f.detections }
func (f *fakeSource) Stats() *domain.Stats            { return f.stats }
func (f *fakeSource) SessionID() string               { return f.sessionID }

func newTestServer() (*Server, *fakeSource) {
	stats := &domain.Stats{}
	stats.IncFramesBeacon()
	src := &fakeSource{
		detections: []domain.Detection{
			{ID: 1, Record: domain.RemoteIDRecord{SourceAddress: "AA:BB:CC:DD:EE:FF"}, Threat: domain.ThreatAssessment{Level: domain.ThreatLow}},
		},
		stats:     stats,
		sessionID: "session-abc",
	}
	return NewServer(":0", src, nil), src
}

func TestServer_HandleHealthz(t *testing.T) {
	srv, _ := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	srv.routes().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
}

func TestServer_HandleDetections(t *testing.T) {
	srv, _ := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/api/detections", nil)
	w := httptest.NewRecorder()
	srv.routes().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var got []domain.Detection
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "AA:BB:CC:DD:EE:FF", got[0].Record.SourceAddress)
}

func TestServer_HandleDetections_LimitsToMostRecent(t *testing.T) {
	srv, src := newTestServer()

	src.detections = make([]domain.Detection, detectionsLimit+50)
	for i := range src.detections {
		src.detections[i] = domain.Detection{ID: uint64(i)}
	}

	req := httptest.NewRequest(http.MethodGet, "/api/detections", nil)
	w := httptest.NewRecorder()
	srv.routes().ServeHTTP(w, req)

	var got []domain.Detection
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Len(t, got, detectionsLimit)
	assert.Equal(t, uint64(50), got[0].ID)
}

func TestServer_HandleReport_ReturnsPDF(t *testing.T) {
	srv, _ := newTestServer()

	req := httptest.NewRequest(http.MethodPost, "/api/report", nil)
	w := httptest.NewRecorder()
	srv.routes().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Greater(t, w.Body.Len(), 0)
	assert.Equal(t, "%PDF", w.Body.String()[:4])
}

func TestServer_Routes_MethodNotAllowed(t *testing.T) {
	srv, _ := newTestServer()

	req := httptest.NewRequest(http.MethodPost, "/healthz", nil)
	w := httptest.NewRecorder()
	srv.routes().ServeHTTP(w, req)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}
