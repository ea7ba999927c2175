package app_test

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"

	"hotel_agency/internal/adapters/backend"
	"hotel_agency/internal/domain"
)

// ---- fakes ----

type route func(req backend.Request) (backend.Result, error)

// fakeAPI answers by "METHOD path" and records every request.
type fakeAPI struct {
	mu     sync.Mutex
	routes map[string]route
	calls  []backend.Request
}

func newFakeAPI() *fakeAPI { return &fakeAPI{routes: map[string]route{}} }

func (f *fakeAPI) on(method, path string, r route) *fakeAPI {
	f.routes[method+" "+path] = r
	return f
}

func (f *fakeAPI) Do(ctx context.Context, req backend.Request) (backend.Result, error) {
	m := req.Method
	if m == "" {
		m = http.MethodGet
	}
	f.mu.Lock()
	f.calls = append(f.calls, req)
	r, ok := f.routes[m+" "+req.Path]
	f.mu.Unlock()
	if !ok {
		return backend.Result{Kind: backend.KindStatus, Status: http.StatusNotFound}, nil
	}
	return r(req)
}

func (f *fakeAPI) count(method, path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		m := c.Method
		if m == "" {
			m = http.MethodGet
		}
		if m == method && c.Path == path {
			n++
		}
	}
	return n
}

func (f *fakeAPI) last(method, path string) (backend.Request, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.calls) - 1; i >= 0; i-- {
		c := f.calls[i]
		m := c.Method
		if m == "" {
			m = http.MethodGet
		}
		if m == method && c.Path == path {
			return c, true
		}
	}
	return backend.Request{}, false
}

func okJSON(v any) route {
	return func(backend.Request) (backend.Result, error) {
		b, err := json.Marshal(v)
		if err != nil {
			return backend.Result{}, err
		}
		return backend.Result{Kind: backend.KindSuccess, Status: http.StatusOK, Body: b}, nil
	}
}

func status(code int) route {
	return func(backend.Request) (backend.Result, error) {
		return backend.Result{Kind: backend.KindStatus, Status: code}, nil
	}
}

func errBody(code int, body string) route {
	return func(backend.Request) (backend.Result, error) {
		return backend.Result{Kind: backend.KindBody, Status: code, Body: []byte(body)}, nil
	}
}

// bodyOf round-trips a request body through JSON so tests see the wire shape.
func bodyOf(req backend.Request) map[string]any {
	b, _ := json.Marshal(req.Body)
	out := map[string]any{}
	_ = json.Unmarshal(b, &out)
	return out
}

type memStore struct {
	mu sync.Mutex
	kv map[string]string
}

func newMemStore(kv ...string) *memStore {
	s := &memStore{kv: map[string]string{}}
	for i := 0; i+1 < len(kv); i += 2 {
		s.kv[kv[i]] = kv[i+1]
	}
	return s
}

func (s *memStore) Get(ctx context.Context, k string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.kv[k]
	return v, ok, nil
}
func (s *memStore) Set(ctx context.Context, k, v string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.kv[k] = v
	return nil
}
func (s *memStore) Remove(ctx context.Context, k string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.kv, k)
	return nil
}
func (s *memStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.kv = map[string]string{}
	return nil
}

// fakeCache stores JSON so any destination type round-trips.
type fakeCache struct {
	mu    sync.Mutex
	store map[string][]byte
	sets  int
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.store[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}
func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.store == nil {
		c.store = map[string][]byte{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.store[key] = b
	c.sets++
	return nil
}
func (c *fakeCache) Del(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.store, key)
	return nil
}
func (c *fakeCache) DelPrefix(ctx context.Context, prefix string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for k := range c.store {
		if strings.HasPrefix(k, prefix) {
			delete(c.store, k)
			n++
		}
	}
	return n, nil
}

type fakeJournal struct {
	mu   sync.Mutex
	subs []domain.Submission
}

func (j *fakeJournal) Record(ctx context.Context, s domain.Submission) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.subs = append(j.subs, s)
	return nil
}
func (j *fakeJournal) Recent(ctx context.Context, limit int) ([]domain.Submission, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]domain.Submission(nil), j.subs...), nil
}

type published struct {
	dest    string
	payload []byte
}

// fakeTransport loops published payloads back to topic subscribers verbatim.
type fakeTransport struct {
	mu   sync.Mutex
	out  []published
	subs map[string]func([]byte)
}

func (t *fakeTransport) Publish(ctx context.Context, dest string, payload []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.out = append(t.out, published{dest, payload})
	return nil
}

func (t *fakeTransport) Subscribe(ctx context.Context, topic string, fn func([]byte)) (func(), error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.subs == nil {
		t.subs = map[string]func([]byte){}
	}
	t.subs[topic] = fn
	return func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		delete(t.subs, topic)
	}, nil
}

func (t *fakeTransport) deliver(topic string, payload []byte) bool {
	t.mu.Lock()
	fn := t.subs[topic]
	t.mu.Unlock()
	if fn == nil {
		return false
	}
	fn(payload)
	return true
}

func (t *fakeTransport) subscribed(topic string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.subs[topic]
	return ok
}
