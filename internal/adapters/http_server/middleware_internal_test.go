package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"hotel_agency/internal/domain"
)

func accessLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	line := map[string]any{}
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line); err != nil {
		t.Fatalf("access log %q: %v", buf.String(), err)
	}
	return line
}

func TestLogger_CarriesLocaleAndVisitor(t *testing.T) {
	var buf bytes.Buffer
	m := chi.NewRouter()
	m.Use(Logger(zerolog.New(&buf)))
	m.Get("/v1/booking/draft/{room}", func(w http.ResponseWriter, r *http.Request) {
		resolveLocale(w, r, domain.LocaleEN)
		visitorID(w, r, true, time.Hour)
		w.WriteHeader(http.StatusCreated)
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/booking/draft/TWIN?lang=ru", nil)
	req.Header.Set("Cookie", visitorCookie+"=6f1c7c4e-7f3a-4b8e-9c1d-2a5b8e0f4d21")
	m.ServeHTTP(httptest.NewRecorder(), req)

	line := accessLine(t, &buf)
	if line["route"] != "/v1/booking/draft/{room}" || line["status"] != float64(http.StatusCreated) {
		t.Fatalf("route/status %v", line)
	}
	if line["lang"] != "ru" || line["visitor"] != "6f1c7c4e-7f3a-4b8e-9c1d-2a5b8e0f4d21" {
		t.Fatalf("lang/visitor %v", line)
	}
	if line["level"] != "info" {
		t.Fatalf("level %v", line["level"])
	}
}

func TestLogger_PlainRequestAndServerError(t *testing.T) {
	var buf bytes.Buffer
	m := chi.NewRouter()
	m.Use(Logger(zerolog.New(&buf)))
	m.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	})

	m.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))

	line := accessLine(t, &buf)
	if line["level"] != "error" || line["status"] != float64(http.StatusServiceUnavailable) {
		t.Fatalf("line %v", line)
	}
	if _, ok := line["lang"]; ok {
		t.Fatalf("no locale was resolved: %v", line)
	}
	if _, ok := line["visitor"]; ok {
		t.Fatalf("no visitor was resolved: %v", line)
	}
}

func TestStatusRecorder_FirstStatusWins(t *testing.T) {
	rec := httptest.NewRecorder()
	sw := &statusRecorder{ResponseWriter: rec}
	if sw.Status() != http.StatusOK {
		t.Fatalf("default %d", sw.Status())
	}
	_, _ = sw.Write([]byte("x"))
	sw.WriteHeader(http.StatusTeapot)
	if sw.Status() != http.StatusOK {
		t.Fatalf("status %d", sw.Status())
	}
}
