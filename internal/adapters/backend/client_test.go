package backend_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"hotel_agency/internal/adapters/backend"
	"hotel_agency/internal/domain"
)

func newClient(t *testing.T, url string, store domain.Storage) *backend.Client {
	t.Helper()
	cl, err := backend.New(url, store, 100, 2*time.Second) // high RPS for tests
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	return cl
}

func TestClient_ClassifiesResponses(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			_ = json.NewEncoder(w).Encode(map[string]any{"id": 7})
		case "/bare":
			w.WriteHeader(http.StatusNotFound)
		case "/html":
			w.WriteHeader(http.StatusBadGateway)
			_, _ = io.WriteString(w, "<html>bad gateway</html>")
		case "/json":
			w.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(w, `{"message":"title required"}`)
		}
	}))
	defer ts.Close()

	cl := newClient(t, ts.URL, nil)
	ctx := context.Background()

	cases := []struct {
		path   string
		kind   backend.Kind
		status int
	}{
		{"/ok", backend.KindSuccess, 200},
		{"/bare", backend.KindStatus, 404},
		{"/html", backend.KindStatus, 502},
		{"/json", backend.KindBody, 400},
	}
	for _, c := range cases {
		res, err := cl.Call(ctx, backend.Request{Path: c.path})
		if err != nil {
			t.Fatalf("%s: unexpected err: %v", c.path, err)
		}
		if res.Kind != c.kind || res.Status != c.status {
			t.Fatalf("%s: got %s/%d, want %s/%d", c.path, res.Kind, res.Status, c.kind, c.status)
		}
	}

	res, _ := cl.Call(ctx, backend.Request{Path: "/ok"})
	var body struct{ ID int }
	if err := res.Decode(&body); err != nil || body.ID != 7 {
		t.Fatalf("decode: %v %+v", err, body)
	}
}

func TestResult_RefreshEligibleOnlyForBareAuthStatus(t *testing.T) {
	cases := []struct {
		res  backend.Result
		want bool
	}{
		{backend.Result{Kind: backend.KindStatus, Status: 401}, true},
		{backend.Result{Kind: backend.KindStatus, Status: 403}, true},
		{backend.Result{Kind: backend.KindStatus, Status: 500}, false},
		{backend.Result{Kind: backend.KindBody, Status: 401, Body: []byte(`{"message":"expired"}`)}, false},
		{backend.Result{Kind: backend.KindSuccess, Status: 200}, false},
	}
	for i, c := range cases {
		if got := c.res.RefreshEligible(); got != c.want {
			t.Fatalf("case %d: got %v want %v", i, got, c.want)
		}
	}
}

func TestClient_BearerSelection(t *testing.T) {
	var seen []string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer ts.Close()

	store := newMemStore(domain.KeyAccessToken, "acc", domain.KeyRefreshToken, "ref")
	cl := newClient(t, ts.URL, store)
	ctx := context.Background()

	_, _ = cl.Call(ctx, backend.Request{Path: "/a"})
	_, _ = cl.Call(ctx, backend.Request{Path: backend.RefreshPath, Method: http.MethodPost, RefreshCall: true})
	_ = store.Remove(ctx, domain.KeyRefreshToken)
	_, _ = cl.Call(ctx, backend.Request{Path: backend.RefreshPath, Method: http.MethodPost, RefreshCall: true})
	_, _ = newClient(t, ts.URL, nil).Call(ctx, backend.Request{Path: "/public"})

	want := []string{"Bearer acc", "Bearer ref", "", ""}
	if len(seen) != len(want) {
		t.Fatalf("calls: %v", seen)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("call %d: got %q want %q", i, seen[i], want[i])
		}
	}
}

func TestClient_JSONBodyAndQuery(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Query().Get("page") != "2" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			w.WriteHeader(http.StatusUnsupportedMediaType)
			return
		}
		var in map[string]any
		_ = json.NewDecoder(r.Body).Decode(&in)
		_ = json.NewEncoder(w).Encode(in)
	}))
	defer ts.Close()

	cl := newClient(t, ts.URL, nil)
	res, err := cl.Call(context.Background(), backend.Request{
		Path:   "/echo",
		Method: http.MethodPost,
		Query:  map[string][]string{"page": {"2"}},
		Body:   map[string]any{"name": "Alice"},
	})
	if err != nil || !res.OK() {
		t.Fatalf("unexpected: %v %s", err, res)
	}
	var out map[string]string
	_ = res.Decode(&out)
	if out["name"] != "Alice" {
		t.Fatalf("echo: %+v", out)
	}
}

func TestClient_MultipartUpload(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f, hdr, err := r.FormFile("file")
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer f.Close()
		b, _ := io.ReadAll(f)
		if r.FormValue("prefix") != "tours" || hdr.Filename != "a.png" || string(b) != "PNGDATA" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode("file-42")
	}))
	defer ts.Close()

	cl := newClient(t, ts.URL, nil)
	res, err := cl.Call(context.Background(), backend.Request{
		Path:   "/api/v1/file/uploadFile",
		Method: http.MethodPost,
		Multipart: &backend.Multipart{
			Fields:      map[string]string{"prefix": "tours"},
			FileField:   "file",
			FileName:    "a.png",
			ContentType: "image/png",
			Content:     strings.NewReader("PNGDATA"),
		},
	})
	if err != nil || !res.OK() {
		t.Fatalf("unexpected: %v %s", err, res)
	}
	if got := res.Text(); got != "file-42" {
		t.Fatalf("upload id: %q", got)
	}
}

func TestClient_TransportErrorIsReturned(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	cl := newClient(t, url, nil)
	if _, err := cl.Call(context.Background(), backend.Request{Path: "/x"}); err == nil {
		t.Fatalf("expected transport error")
	}
}

func TestNew_RequiresBase(t *testing.T) {
	if _, err := backend.New("  ", nil, 1, time.Second); err == nil {
		t.Fatalf("expected error for empty base")
	}
	cl, err := backend.New("http://api.example.com/", nil, 1, time.Second)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got := cl.MediaURL("abc"); got != "http://api.example.com/api/v1/file/getFile/abc" {
		t.Fatalf("media url: %s", got)
	}
	if cl.MediaURL("") != "" {
		t.Fatalf("empty id should give empty url")
	}
}
