package main

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel_agency/internal/adapters/sqlite"
	"hotel_agency/internal/domain"
	"hotel_agency/internal/shared"
)

type backendLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *backendLog) add(r *http.Request) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, r.Method+" "+r.URL.Path)
}

func (l *backendLog) seen(call string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, c := range l.calls {
		if c == call {
			return true
		}
	}
	return false
}

func fakeBackend(t *testing.T, refreshOK bool) (*httptest.Server, *backendLog) {
	t.Helper()
	seen := &backendLog{}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"A","refresh_token":"R","roles":[{"name":"ROLE_ADMIN"}]}`))
	})
	mux.HandleFunc("POST /api/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		if !refreshOK {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"accessToken":"A2"}`))
	})
	mux.HandleFunc("GET /api/v1/carousel/page", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "Bearer expired" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"content":[{"id":"7","title_uz":"Salom","title_en":"Hello"}],"totalPages":1,"totalElements":1}`))
	})
	mux.HandleFunc("GET /api/v1/statistic", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"bookings":{"today":2,"total":40}}`))
	})
	mux.HandleFunc("GET /api/v1/statistic/summary", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"totalNews":7}`))
	})
	mux.HandleFunc("GET /api/v1/statistic/timeline", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	mux.HandleFunc("POST /api/v1/client", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":41}`))
	})
	mux.HandleFunc("POST /api/v1/room-booking", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":900}`))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen.add(r)
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv, seen
}

func newTestAdmin(t *testing.T, base, stdin string) (*admin, *sqlite.Storage, *bytes.Buffer) {
	t.Helper()
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	out := &bytes.Buffer{}
	cfg := shared.Config{BackendBase: base, BackendRPS: 100, BackendTimeout: time.Second, ChatFanout: 2}
	a, err := newAdmin(cfg, store, strings.NewReader(stdin), out)
	require.NoError(t, err)
	return a, store, out
}

func TestLoginThenList(t *testing.T) {
	srv, _ := fakeBackend(t, true)
	a, store, out := newTestAdmin(t, srv.URL, "")
	ctx := context.Background()

	require.NoError(t, a.run(ctx, "login", []string{"-phone", "+998901112233", "-password", "pw"}))
	assert.Contains(t, out.String(), "ROLE_ADMIN (/admin/dashboard)")

	tok, ok, err := store.Get(ctx, domain.KeyAccessToken)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "A", tok)

	out.Reset()
	require.NoError(t, a.run(ctx, "list", []string{"carousel", "-lang", "en"}))
	assert.Contains(t, out.String(), "Hello")
	assert.Contains(t, out.String(), "page 1 of 1 (1 items)")

	lang, _, _ := store.Get(ctx, domain.KeyAppLang)
	assert.Equal(t, "en", lang, "explicit language is remembered")

	out.Reset()
	require.NoError(t, a.run(ctx, "list", []string{"carousel"}))
	assert.Contains(t, out.String(), "Hello")
}

func TestRefusedRefreshReportsLoggedOut(t *testing.T) {
	srv, seen := fakeBackend(t, false)
	a, store, _ := newTestAdmin(t, srv.URL, "")
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, domain.KeyAccessToken, "expired"))
	require.NoError(t, store.Set(ctx, domain.KeyRefreshToken, "R"))

	err := a.run(ctx, "list", []string{"carousel"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrLoggedOut))
	assert.Equal(t, loggedOutMessage, describe(err))
	assert.True(t, seen.seen("POST /api/auth/refresh"))

	_, ok, _ := store.Get(ctx, domain.KeyRefreshToken)
	assert.False(t, ok, "session cleared")
}

func TestAuthCommandWithoutSession(t *testing.T) {
	srv, seen := fakeBackend(t, true)
	a, _, _ := newTestAdmin(t, srv.URL, "")

	err := a.run(context.Background(), "users", nil)
	assert.Equal(t, loggedOutMessage, describe(err))
	assert.False(t, seen.seen("GET /api/v1/admin"))
}

func TestDeleteAsksFirst(t *testing.T) {
	srv, seen := fakeBackend(t, true)
	a, store, out := newTestAdmin(t, srv.URL, "n\n")
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, domain.KeyAccessToken, "A"))
	require.NoError(t, store.Set(ctx, domain.KeyRefreshToken, "R"))

	require.NoError(t, a.run(ctx, "delete", []string{"carousel", "7"}))
	assert.Contains(t, out.String(), "cancelled")
	assert.False(t, seen.seen("DELETE /api/v1/carousel/7"))

	out.Reset()
	require.NoError(t, a.run(ctx, "delete", []string{"carousel", "7", "-yes"}))
	assert.Contains(t, out.String(), "deleted 7")
	assert.True(t, seen.seen("DELETE /api/v1/carousel/7"))
}

func TestUnknownCommand(t *testing.T) {
	a, _, out := newTestAdmin(t, "http://127.0.0.1:1", "")
	err := a.run(context.Background(), "nope", nil)
	require.Error(t, err)
	assert.Contains(t, out.String(), "booking-status")
}

func TestParseAllowsTrailingFlags(t *testing.T) {
	fs := flags("x")
	yes := fs.Bool("yes", false, "")
	page := fs.Int("page", 0, "")
	pos, err := parse(fs, []string{"tours", "-page", "2", "12", "-yes"})
	require.NoError(t, err)
	assert.Equal(t, []string{"tours", "12"}, pos)
	assert.True(t, *yes)
	assert.Equal(t, 2, *page)
}

func loggedIn(t *testing.T, store *sqlite.Storage) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, domain.KeyAccessToken, "A"))
	require.NoError(t, store.Set(ctx, domain.KeyRefreshToken, "R"))
}

func TestStatsPrintsLoadedParts(t *testing.T) {
	srv, seen := fakeBackend(t, true)
	a, store, out := newTestAdmin(t, srv.URL, "")
	loggedIn(t, store)

	require.NoError(t, a.run(context.Background(), "stats", nil))
	assert.Contains(t, out.String(), "bookings")
	assert.Contains(t, out.String(), "40")
	assert.Contains(t, out.String(), "totalNews")
	assert.True(t, seen.seen("GET /api/v1/statistic/timeline"))
	assert.True(t, seen.seen("GET /api/v1/statistic/active-status"))
}

func TestBookingAdd(t *testing.T) {
	srv, seen := fakeBackend(t, true)
	a, store, out := newTestAdmin(t, srv.URL, "")
	loggedIn(t, store)
	ctx := context.Background()

	err := a.run(ctx, "booking-add", []string{"-rooms", "7,8", "-in", "2026-11-01", "-out", "2026-11-03",
		"-name", "Ali Valiyev", "-phone", "+998901234567", "-passport", "AA1234567"})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "booked 2 rooms for client 41")

	err = a.run(ctx, "booking-add", []string{"-rooms", "", "-in", "2026-11-01", "-out", "2026-11-03",
		"-name", "Ali Valiyev", "-phone", "+998901234567", "-passport", "AA1234567"})
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "roomIds", ve.Field)
	assert.True(t, seen.seen("POST /api/v1/room-booking"))
}
