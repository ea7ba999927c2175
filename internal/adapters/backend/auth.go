package backend

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"hotel_agency/internal/adapters/observability"
	"hotel_agency/internal/domain"
)

const RefreshPath = "/api/auth/refresh"

// State is a step of one authenticated request.
type State int

const (
	StateInitial State = iota
	StateAwaitingPrimary
	StateAwaitingRefresh
	StateAwaitingRetry
	StateSuccess
	StateFailed
	StateLoggedOut
)

func (s State) String() string {
	switch s {
	case StateInitial:
		return "initial"
	case StateAwaitingPrimary:
		return "awaiting_primary"
	case StateAwaitingRefresh:
		return "awaiting_refresh"
	case StateAwaitingRetry:
		return "awaiting_retry"
	case StateSuccess:
		return "success"
	case StateFailed:
		return "failed"
	case StateLoggedOut:
		return "logged_out"
	}
	return "unknown"
}

// Caller is satisfied by *Client.
type Caller interface {
	Call(ctx context.Context, req Request) (Result, error)
}

// sessionKeys are wiped when a refresh is refused.
var sessionKeys = []string{domain.KeyAccessToken, domain.KeyRefreshToken, domain.KeyRoles, domain.KeyPhone}

// AuthClient issues calls with the persisted access token and, on a bare
// 401/403, refreshes the token once and retries the call once.
type AuthClient struct {
	api         Caller
	store       domain.Storage
	onLoggedOut func()
	trace       func(State)
}

type AuthOption func(*AuthClient)

// WithLoggedOut registers the hook run after the session is cleared.
func WithLoggedOut(fn func()) AuthOption { return func(a *AuthClient) { a.onLoggedOut = fn } }

// WithTrace observes every state transition.
func WithTrace(fn func(State)) AuthOption { return func(a *AuthClient) { a.trace = fn } }

func NewAuthClient(api Caller, store domain.Storage, opts ...AuthOption) *AuthClient {
	a := &AuthClient{api: api, store: store}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Do runs req. At most one refresh and one retry happen per call; the
// retry's result is returned as-is even if it is another 401/403.
// A refused refresh clears the session and returns domain.ErrLoggedOut
// alongside the original failed result.
func (a *AuthClient) Do(ctx context.Context, req Request) (Result, error) {
	a.enter(StateInitial)

	a.enter(StateAwaitingPrimary)
	res, err := a.api.Call(ctx, req)
	if err != nil {
		a.enter(StateFailed)
		return res, err
	}
	if res.OK() {
		a.enter(StateSuccess)
		return res, nil
	}
	if !res.RefreshEligible() {
		a.enter(StateFailed)
		return res, nil
	}

	a.enter(StateAwaitingRefresh)
	refreshed, err := a.refresh(ctx)
	if err != nil {
		a.enter(StateFailed)
		return res, err
	}
	if !refreshed {
		a.logout(ctx)
		a.enter(StateLoggedOut)
		return res, fmt.Errorf("%s %s: %w", method(req), req.Path, domain.ErrLoggedOut)
	}

	a.enter(StateAwaitingRetry)
	res, err = a.api.Call(ctx, req)
	if err != nil {
		a.enter(StateFailed)
		return res, err
	}
	if res.OK() {
		a.enter(StateSuccess)
	} else {
		a.enter(StateFailed)
	}
	return res, nil
}

// refresh returns false when the backend refuses to issue a new token.
// Transport errors are returned without touching the session.
func (a *AuthClient) refresh(ctx context.Context) (bool, error) {
	res, err := a.api.Call(ctx, Request{Path: RefreshPath, Method: http.MethodPost, RefreshCall: true})
	if err != nil {
		return false, fmt.Errorf("refresh token: %w", err)
	}
	if !res.OK() {
		observability.ObserveRefresh("failed")
		log.Warn().Int("status", res.Status).Msg("refresh failed, session cleared")
		return false, nil
	}
	var body struct {
		AccessToken string `json:"accessToken"`
	}
	if err := res.Decode(&body); err != nil || body.AccessToken == "" {
		observability.ObserveRefresh("failed")
		log.Warn().Msg("refresh returned no access token, session cleared")
		return false, nil
	}
	if err := a.store.Set(ctx, domain.KeyAccessToken, body.AccessToken); err != nil {
		return false, fmt.Errorf("persist refreshed token: %w", err)
	}
	observability.ObserveRefresh("ok")
	log.Info().Msg("token refreshed")
	return true, nil
}

func (a *AuthClient) logout(ctx context.Context) {
	for _, k := range sessionKeys {
		if err := a.store.Remove(ctx, k); err != nil {
			log.Error().Err(err).Str("key", k).Msg("clear session key failed")
		}
	}
	if a.onLoggedOut != nil {
		a.onLoggedOut()
	}
}

func (a *AuthClient) enter(s State) {
	if a.trace != nil {
		a.trace(s)
	}
}

func method(r Request) string {
	if r.Method == "" {
		return http.MethodGet
	}
	return r.Method
}
