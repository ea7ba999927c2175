package app

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"hotel_agency/internal/adapters/backend"
	"hotel_agency/internal/domain"
)

// Users manages staff accounts and their roles.
type Users struct{ api API }

func NewUsers(api API) *Users { return &Users{api: api} }

func (u *Users) List(ctx context.Context) ([]domain.User, error) {
	var out []domain.User
	if err := call(ctx, u.api, "list users", backend.Request{Path: "/api/v1/admin/all-users"}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Roles lists assignable roles. The admin role is never offered.
func (u *Users) Roles(ctx context.Context) ([]domain.Role, error) {
	var raw json.RawMessage
	if err := call(ctx, u.api, "list roles", backend.Request{Path: "/api/v1/role-management/roles"}, &raw); err != nil {
		return nil, err
	}
	out := make([]domain.Role, 0)
	for _, r := range decodeRoles(raw) {
		if r.Name != domain.RoleAdmin {
			out = append(out, r)
		}
	}
	return out, nil
}

// decodeRoles accepts a bare array, {"data": [...]}, {"roles": [...]} or a
// single role object.
func decodeRoles(raw json.RawMessage) []domain.Role {
	var list []domain.Role
	if json.Unmarshal(raw, &list) == nil {
		return list
	}
	var wrapped struct {
		Data  []domain.Role `json:"data"`
		Roles []domain.Role `json:"roles"`
		Name  string        `json:"name"`
	}
	if json.Unmarshal(raw, &wrapped) != nil {
		return nil
	}
	switch {
	case wrapped.Data != nil:
		return wrapped.Data
	case wrapped.Roles != nil:
		return wrapped.Roles
	case wrapped.Name != "":
		return []domain.Role{{Name: wrapped.Name}}
	}
	return nil
}

// NewUser is the create-user form.
type NewUser struct {
	Name     string
	Phone    string
	Password string
	Role     string
}

func (n NewUser) Validate() error {
	for _, f := range []struct{ name, v string }{
		{"name", n.Name}, {"phone", n.Phone}, {"password", n.Password}, {"role", n.Role},
	} {
		if strings.TrimSpace(f.v) == "" {
			return &domain.ValidationError{Field: f.name, Message: "all fields are required"}
		}
	}
	return nil
}

// Create adds the account then assigns its role. When the role assignment
// fails the account exists without a role; the error says so.
func (u *Users) Create(ctx context.Context, n NewUser) (domain.User, error) {
	if err := n.Validate(); err != nil {
		return domain.User{}, err
	}
	var created domain.User
	err := call(ctx, u.api, "create user", backend.Request{
		Path:   "/api/v1/admin",
		Method: http.MethodPost,
		Body:   map[string]string{"name": n.Name, "phone": n.Phone, "password": n.Password},
	}, &created)
	if err != nil {
		return domain.User{}, err
	}
	id := strconv.FormatInt(created.ID, 10)
	err = call(ctx, u.api, "assign role to user "+id, backend.Request{
		Path:   "/api/v1/role-management/assign/" + id,
		Method: http.MethodPut,
		Query:  url.Values{"role": {n.Role}},
	}, nil)
	if err != nil {
		return created, err
	}
	created.Roles = []domain.Role{{Name: n.Role}}
	return created, nil
}

// Update changes name and phone; an empty password keeps the current one.
func (u *Users) Update(ctx context.Context, id int64, name, phone, password string) error {
	body := map[string]any{"name": name, "phone": phone, "password": nil}
	if password != "" {
		body["password"] = password
	}
	return call(ctx, u.api, "update user", backend.Request{
		Path: "/api/v1/admin/" + strconv.FormatInt(id, 10), Method: http.MethodPut, Body: body,
	}, nil)
}

func (u *Users) Delete(ctx context.Context, id int64) error {
	return call(ctx, u.api, "delete user", backend.Request{
		Path: "/api/v1/admin/" + strconv.FormatInt(id, 10), Method: http.MethodDelete,
	}, nil)
}

// ChatCandidates is everyone who can be added to a chat: all non-admins.
func (u *Users) ChatCandidates(ctx context.Context) ([]domain.User, error) {
	all, err := u.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.User, 0, len(all))
	for _, x := range all {
		if !x.IsAdmin() {
			out = append(out, x)
		}
	}
	return out, nil
}

// ByPhone finds the account logged in with phone.
func (u *Users) ByPhone(ctx context.Context, phone string) (domain.User, error) {
	all, err := u.List(ctx)
	if err != nil {
		return domain.User{}, err
	}
	want := digitsOnly(phone)
	for _, x := range all {
		if x.Phone == phone || (want != "" && digitsOnly(x.Phone) == want) {
			return x, nil
		}
	}
	return domain.User{}, fmt.Errorf("user %s: %w", phone, domain.ErrNotFound)
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
