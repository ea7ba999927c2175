package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"hotel_agency/internal/adapters/backend"
	"hotel_agency/internal/domain"
)

// API is the backend as the services see it: *backend.AuthClient for
// back-office calls, *backend.Client for the public site.
type API interface {
	Do(ctx context.Context, req backend.Request) (backend.Result, error)
}

// UpstreamError is a non-2xx backend answer. The caller's form state is
// left untouched so the user can correct and resubmit.
type UpstreamError struct {
	Op     string
	Result backend.Result
}

func (e *UpstreamError) Error() string { return e.Op + ": " + e.Result.String() }

func (e *UpstreamError) Is(target error) bool {
	return target == domain.ErrNotFound && e.Result.Status == http.StatusNotFound
}

// Message extracts the backend's own error text when it sent one.
func (e *UpstreamError) Message() string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if e.Result.Kind != backend.KindBody || e.Result.Decode(&body) != nil {
		return ""
	}
	if body.Message != "" {
		return body.Message
	}
	return body.Error
}

// call runs req and decodes a successful body into out (when non-nil).
func call(ctx context.Context, api API, op string, req backend.Request, out any) error {
	res, err := api.Do(ctx, req)
	if err != nil {
		if errors.Is(err, domain.ErrLoggedOut) {
			return err
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	if !res.OK() {
		return &UpstreamError{Op: op, Result: res}
	}
	if out == nil || len(res.Body) == 0 {
		return nil
	}
	if err := res.Decode(out); err != nil {
		return fmt.Errorf("%s: decode: %w", op, err)
	}
	return nil
}
