package app

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"hotel_agency/internal/adapters/backend"
	"hotel_agency/internal/domain"
)

const loginPath = "/api/v1/auth/login"

// SessionService owns the persisted session: login, logout and the
// validity check every back-office screen runs first.
type SessionService struct {
	api   API
	store domain.Storage
	now   func() time.Time
}

func NewSessionService(api API, store domain.Storage) *SessionService {
	return &SessionService{api: api, store: store, now: time.Now}
}

type loginResponse struct {
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token"`
	Roles        []domain.Role `json:"roles"`
}

// Login replaces any stored session with a fresh one and returns the
// landing route of the first role.
func (s *SessionService) Login(ctx context.Context, phone, password string) (domain.Session, string, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return domain.Session{}, "", &domain.ValidationError{Field: "phone", Message: "phone is required"}
	}
	if password == "" {
		return domain.Session{}, "", &domain.ValidationError{Field: "password", Message: "password is required"}
	}
	if err := s.store.Clear(ctx); err != nil {
		return domain.Session{}, "", fmt.Errorf("clear storage: %w", err)
	}

	var resp loginResponse
	err := call(ctx, s.api, "login", backend.Request{
		Path:   loginPath,
		Method: http.MethodPost,
		Body:   map[string]string{"phone": phone, "password": password},
	}, &resp)
	if err != nil {
		return domain.Session{}, "", err
	}
	if resp.AccessToken == "" {
		return domain.Session{}, "", fmt.Errorf("login: response carried no access token")
	}

	sess := domain.Session{AccessToken: resp.AccessToken, RefreshToken: resp.RefreshToken, Roles: resp.Roles, Phone: phone}
	if err := s.save(ctx, sess); err != nil {
		return domain.Session{}, "", err
	}

	route, ok := domain.LandingRoute(sess.PrimaryRole())
	if !ok {
		route = "/"
	}
	log.Info().Str("role", sess.PrimaryRole()).Msg("logged in")
	return sess, route, nil
}

func (s *SessionService) save(ctx context.Context, sess domain.Session) error {
	roles, err := json.Marshal(sess.Roles)
	if err != nil {
		return err
	}
	kv := [][2]string{
		{domain.KeyAccessToken, sess.AccessToken},
		{domain.KeyRoles, string(roles)},
		{domain.KeyPhone, sess.Phone},
	}
	if sess.RefreshToken != "" {
		kv = append(kv, [2]string{domain.KeyRefreshToken, sess.RefreshToken})
	}
	for _, p := range kv {
		if err := s.store.Set(ctx, p[0], p[1]); err != nil {
			return fmt.Errorf("persist %s: %w", p[0], err)
		}
	}
	return nil
}

func (s *SessionService) Logout(ctx context.Context) error { return s.store.Clear(ctx) }

// Current loads whatever session is persisted, valid or not.
func (s *SessionService) Current(ctx context.Context) (domain.Session, error) {
	var sess domain.Session
	for k, dst := range map[string]*string{
		domain.KeyAccessToken:  &sess.AccessToken,
		domain.KeyRefreshToken: &sess.RefreshToken,
		domain.KeyPhone:        &sess.Phone,
	} {
		v, _, err := s.store.Get(ctx, k)
		if err != nil {
			return domain.Session{}, err
		}
		*dst = v
	}
	raw, ok, err := s.store.Get(ctx, domain.KeyRoles)
	if err != nil {
		return domain.Session{}, err
	}
	if ok && raw != "" {
		if err := json.Unmarshal([]byte(raw), &sess.Roles); err != nil {
			log.Warn().Err(err).Msg("stored roles unreadable")
		}
	}
	return sess, nil
}

// Require returns the session when it can still be used. An expired access
// token is acceptable while a refresh token remains, since the next call
// will refresh it; otherwise storage is cleared and ErrLoggedOut returned.
func (s *SessionService) Require(ctx context.Context) (domain.Session, error) {
	sess, err := s.Current(ctx)
	if err != nil {
		return domain.Session{}, err
	}
	if sess.AccessToken != "" && (!backend.IsExpired(sess.AccessToken, s.now()) || sess.RefreshToken != "") {
		return sess, nil
	}
	if err := s.store.Clear(ctx); err != nil {
		return domain.Session{}, err
	}
	return domain.Session{}, domain.ErrLoggedOut
}

// AutoLogin reports the landing route for a still-valid session. An expired
// session is cleared.
func (s *SessionService) AutoLogin(ctx context.Context) (string, bool, error) {
	sess, err := s.Current(ctx)
	if err != nil {
		return "", false, err
	}
	if sess.AccessToken == "" {
		return "", false, nil
	}
	if backend.IsExpired(sess.AccessToken, s.now()) {
		return "", false, s.store.Clear(ctx)
	}
	route, ok := domain.LandingRoute(sess.PrimaryRole())
	return route, ok, nil
}
