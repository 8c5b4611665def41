package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/p-n-ai/pai-records/internal/api"
	"github.com/p-n-ai/pai-records/internal/grading"
	"github.com/p-n-ai/pai-records/internal/navigation"
	"github.com/p-n-ai/pai-records/internal/platform/config"
	"github.com/p-n-ai/pai-records/internal/schedule"
	"github.com/p-n-ai/pai-records/internal/source"
)

func testServer() *api.Server {
	resolver := schedule.NewResolver(nil, time.Now)
	return api.NewServer(
		source.NewMemorySource(nil, nil, nil),
		grading.NewAggregator(grading.DefaultPolicy()),
		navigation.NewNavigator(navigation.NewMemoryStore(), resolver),
	)
}

func TestHealthEndpoints(t *testing.T) {
	mux := newMux(testServer())

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantBody   string
	}{
		{
			name:       "healthz returns 200",
			path:       "/healthz",
			wantStatus: http.StatusOK,
			wantBody:   `{"status":"ok"}`,
		},
		{
			name:       "readyz returns 200",
			path:       "/readyz",
			wantStatus: http.StatusOK,
			wantBody:   `{"status":"ready"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			rec := httptest.NewRecorder()

			mux.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if rec.Body.String() != tt.wantBody {
				t.Errorf("body = %q, want %q", rec.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestEmptyListings(t *testing.T) {
	mux := newMux(testServer())

	req := httptest.NewRequest(http.MethodGet, "/v1/grades", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"groups":[]`) {
		t.Errorf("body = %s, want empty groups", rec.Body)
	}
}

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name      string
		cfg       config.LogConfig
		wantJSON  bool
		wantDebug bool
	}{
		{"json info", config.LogConfig{Level: "info", Format: "json"}, true, false},
		{"text debug", config.LogConfig{Level: "debug", Format: "text"}, false, true},
		{"uppercase text", config.LogConfig{Level: "warn", Format: "TEXT"}, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := newLogger(&buf, tt.cfg)

			logger.Debug("debug line")
			logger.Error("error line", "error", "boom")

			out := buf.String()
			if got := strings.Contains(out, "debug line"); got != tt.wantDebug {
				t.Errorf("debug logged = %v, want %v", got, tt.wantDebug)
			}
			if got := strings.HasPrefix(out, "{") || strings.Contains(out, "\n{"); got != tt.wantJSON {
				t.Errorf("JSON output = %v, want %v (%s)", got, tt.wantJSON, out)
			}
			if !strings.Contains(out, "error line") {
				t.Errorf("error line missing from %q", out)
			}
		})
	}
}
