// internal/adapters/backend/client.go
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"regexp"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"hotel_agency/internal/adapters/observability"
	"hotel_agency/internal/domain"
)

const maxBody = 8 << 20

// Kind tags how a Result should be read.
type Kind int

const (
	// KindSuccess is any 2xx response.
	KindSuccess Kind = iota
	// KindStatus is an error response without a JSON body; the status code is the payload.
	KindStatus
	// KindBody is an error response carrying a JSON body of the backend's own shape.
	KindBody
)

func (k Kind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindStatus:
		return "status"
	case KindBody:
		return "body"
	}
	return "unknown"
}

// Result is the normalized outcome of one backend call.
type Result struct {
	Kind   Kind
	Status int
	Body   json.RawMessage
}

func (r Result) OK() bool { return r.Kind == KindSuccess }

// RefreshEligible holds only for a bare 401 or 403. A JSON error body on
// those statuses is surfaced to the caller as an ordinary failure.
func (r Result) RefreshEligible() bool {
	return r.Kind == KindStatus && (r.Status == http.StatusUnauthorized || r.Status == http.StatusForbidden)
}

func (r Result) Decode(v any) error {
	if len(bytes.TrimSpace(r.Body)) == 0 {
		return errors.New("empty response body")
	}
	return json.Unmarshal(r.Body, v)
}

// Text returns a JSON string payload unquoted, or the raw body otherwise.
// Upload responses come back either way.
func (r Result) Text() string {
	var s string
	if err := json.Unmarshal(r.Body, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(r.Body))
}

func (r Result) String() string {
	if r.Kind == KindBody {
		return fmt.Sprintf("backend %d: %s", r.Status, truncate(string(r.Body), 200))
	}
	return fmt.Sprintf("backend %d", r.Status)
}

// Multipart is a single-file form upload.
type Multipart struct {
	Fields      map[string]string
	FileField   string
	FileName    string
	ContentType string
	Content     io.Reader
}

type Request struct {
	Path        string
	Method      string
	Body        any
	Query       url.Values
	Multipart   *Multipart
	RefreshCall bool
}

type Client struct {
	base  string
	hc    *http.Client
	store domain.Storage
	rl    *rate.Limiter
}

// New builds a client for base. store supplies bearer tokens and may be nil
// for anonymous public calls.
func New(base string, store domain.Storage, rps int, timeout time.Duration) (*Client, error) {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	if base == "" {
		return nil, fmt.Errorf("backend base URL is required")
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("backend base URL: %w", err)
	}
	if rps <= 0 {
		rps = 10
	}
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Client{
		base:  base,
		hc:    &http.Client{Timeout: timeout},
		store: store,
		rl:    rate.NewLimiter(rate.Limit(rps), rps),
	}, nil
}

// WithStorage returns a copy bound to another token store, sharing the
// transport and limiter.
func (c *Client) WithStorage(store domain.Storage) *Client {
	cp := *c
	cp.store = store
	return &cp
}

func (c *Client) Base() string { return c.base }

// MediaURL is where the backend serves an uploaded file.
func (c *Client) MediaURL(id string) string {
	if id == "" {
		return ""
	}
	return c.base + "/api/v1/file/getFile/" + url.PathEscape(id)
}

// Call performs one request. Non-2xx statuses are reported in the Result;
// only transport failures and context cancellation are returned as errors.
func (c *Client) Call(ctx context.Context, req Request) (Result, error) {
	if err := c.rl.Wait(ctx); err != nil {
		return Result{}, err
	}

	hreq, err := c.build(ctx, req)
	if err != nil {
		return Result{}, err
	}

	start := time.Now()
	resp, err := c.hc.Do(hreq)
	if err != nil {
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		return Result{}, fmt.Errorf("%s %s: %w", hreq.Method, req.Path, err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return Result{}, fmt.Errorf("%s %s: read body: %w", hreq.Method, req.Path, err)
	}
	observability.ObserveExternal("backend", endpointLabel(req.Path), resp.StatusCode, time.Since(start))
	return classify(resp.StatusCode, b), nil
}

// Do is Call under the name AuthClient uses, so anonymous and
// authenticated clients are interchangeable.
func (c *Client) Do(ctx context.Context, req Request) (Result, error) { return c.Call(ctx, req) }

func classify(status int, body []byte) Result {
	if status >= 200 && status < 300 {
		return Result{Kind: KindSuccess, Status: status, Body: body}
	}
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && json.Valid(trimmed) {
		return Result{Kind: KindBody, Status: status, Body: trimmed}
	}
	return Result{Kind: KindStatus, Status: status}
}

func (c *Client) build(ctx context.Context, req Request) (*http.Request, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	u := c.base + req.Path
	if len(req.Query) > 0 {
		sep := "?"
		if strings.Contains(u, "?") {
			sep = "&"
		}
		u += sep + req.Query.Encode()
	}

	var body io.Reader
	contentType := ""
	switch {
	case req.Multipart != nil:
		buf, ct, err := encodeMultipart(req.Multipart)
		if err != nil {
			return nil, err
		}
		body, contentType = buf, ct
	case req.Body != nil:
		b, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("encode %s body: %w", req.Path, err)
		}
		body, contentType = bytes.NewReader(b), "application/json"
	}

	hreq, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		hreq.Header.Set("Content-Type", contentType)
	}
	hreq.Header.Set("Accept", "application/json")
	hreq.Header.Set("User-Agent", "hotel-agency/1.0")

	if tok := c.bearer(ctx, req.RefreshCall); tok != "" {
		hreq.Header.Set("Authorization", "Bearer "+tok)
	}
	return hreq, nil
}

// bearer picks the token for the call: the refresh token on refresh calls
// (none if absent), the access token otherwise.
func (c *Client) bearer(ctx context.Context, refresh bool) string {
	if c.store == nil {
		return ""
	}
	key := domain.KeyAccessToken
	if refresh {
		key = domain.KeyRefreshToken
	}
	v, ok, err := c.store.Get(ctx, key)
	if err != nil || !ok {
		return ""
	}
	return v
}

func encodeMultipart(m *Multipart) (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	for k, v := range m.Fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, "", err
		}
	}
	if m.Content != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, m.FileField, m.FileName))
		ct := m.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h.Set("Content-Type", ct)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		if _, err := io.Copy(part, m.Content); err != nil {
			return nil, "", fmt.Errorf("copy upload: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf, w.FormDataContentType(), nil
}

var idSegment = regexp.MustCompile(`^([0-9]+|[0-9a-fA-F-]{32,36})$`)

// endpointLabel collapses ids so the metric label set stays bounded.
func endpointLabel(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	parts := strings.Split(path, "/")
	for i, p := range parts {
		if idSegment.MatchString(p) {
			parts[i] = ":id"
		}
	}
	return strings.Join(parts, "/")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
