package app

import (
	"context"
	"net/http"

	"hotel_agency/internal/adapters/backend"
)

const bookingStatusPath = "/api/v1/settings/booking-status"

// Settings flips site-wide switches.
type Settings struct{ api API }

func NewSettings(api API) *Settings { return &Settings{api: api} }

type bookingStatus struct {
	Enabled bool `json:"enabled"`
}

func (s *Settings) BookingStatus(ctx context.Context) (bool, error) {
	var st bookingStatus
	if err := call(ctx, s.api, "booking status", backend.Request{Path: bookingStatusPath}, &st); err != nil {
		return false, err
	}
	return st.Enabled, nil
}

// SetBookingStatus returns the state the backend reports after the change.
func (s *Settings) SetBookingStatus(ctx context.Context, enabled bool) (bool, error) {
	st := bookingStatus{Enabled: enabled}
	if err := call(ctx, s.api, "set booking status", backend.Request{
		Path: bookingStatusPath, Method: http.MethodPut, Body: st,
	}, &st); err != nil {
		return false, err
	}
	return st.Enabled, nil
}
