package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"hotel_agency/internal/adapters/backend"
	"hotel_agency/internal/adapters/xlsx"
	"hotel_agency/internal/domain"
)

const (
	roomBookingPath = "/api/v1/room-booking"
	roomPath        = "/api/v1/room"
	inquiryPath     = "/api/v1/bron"
	ReceptionPage   = 20
)

// Reception covers room bookings and tour inquiries. The backend returns
// both lists whole; paging happens here.
type Reception struct{ api API }

func NewReception(api API) *Reception { return &Reception{api: api} }

func pageOf[T any](all []T, page, size int) Listing[T] {
	pager := domain.Pager{Total: domain.TotalPagesFor(len(all), size)}
	pager.Current = pager.Clamp(page)
	lo := min(pager.Current*size, len(all))
	hi := min(lo+size, len(all))
	return Listing[T]{Items: all[lo:hi], Pager: pager, TotalElements: len(all)}
}

// AllRoomBookings is newest first.
func (r *Reception) AllRoomBookings(ctx context.Context) ([]domain.RoomBooking, error) {
	var out []domain.RoomBooking
	if err := call(ctx, r.api, "room bookings", backend.Request{Path: roomBookingPath}, &out); err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *Reception) RoomBookings(ctx context.Context, page int) (Listing[domain.RoomBooking], error) {
	all, err := r.AllRoomBookings(ctx)
	if err != nil {
		return Listing[domain.RoomBooking]{}, err
	}
	return pageOf(all, page, ReceptionPage), nil
}

// SetRoomBookingStatus returns the backend's confirmation text.
func (r *Reception) SetRoomBookingStatus(ctx context.Context, id int64, status int) (string, error) {
	if status <= 0 {
		return "", &domain.ValidationError{Field: "status", Message: "status must be positive"}
	}
	path := fmt.Sprintf("%s/status/%d/%d", roomBookingPath, id, status)
	res, err := r.api.Do(ctx, backend.Request{Path: path, Method: http.MethodPut})
	if err != nil {
		return "", err
	}
	if !res.OK() {
		return "", &UpstreamError{Op: "set booking status", Result: res}
	}
	if msg := res.Text(); msg != "" {
		return msg, nil
	}
	return "status updated", nil
}

// Rooms lists the physical rooms ordered by name, the reception grid's rows.
func (r *Reception) Rooms(ctx context.Context) ([]domain.Room, error) {
	var out []domain.Room
	if err := call(ctx, r.api, "rooms", backend.Request{Path: roomPath}, &out); err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].RoomName < out[j].RoomName })
	return out, nil
}

func (r *Reception) Clients(ctx context.Context) ([]domain.Client, error) {
	var out []domain.Client
	if err := call(ctx, r.api, "clients", backend.Request{Path: clientPath}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateManualBooking registers the guest, then books every selected room
// as confirmed. Everything is validated before the first write; the first
// failed room stops the run and the confirmation says how far it got.
func (r *Reception) CreateManualBooking(ctx context.Context, client domain.ClientInfo, m domain.ManualBooking) (domain.Confirmation, error) {
	conf := domain.Confirmation{Client: client}
	if err := client.Validate(); err != nil {
		return conf, err
	}
	if err := m.Validate(); err != nil {
		return conf, err
	}
	for range m.RoomIDs {
		conf.Rooms = append(conf.Rooms, domain.RoomRequest{CheckIn: m.CheckIn, CheckOut: m.CheckOut})
	}

	var created struct {
		ID int64 `json:"id"`
	}
	if err := call(ctx, r.api, "create client", backend.Request{
		Path: clientPath, Method: http.MethodPost, Body: client,
	}, &created); err != nil || created.ID == 0 {
		if err == nil {
			err = errors.New("create client: response carried no id")
		}
		return conf, fmt.Errorf("%w: %v", domain.ErrClientCreate, err)
	}
	conf.ClientID = created.ID

	for _, req := range m.Requests(created.ID, client) {
		var booked struct {
			ID int64 `json:"id"`
		}
		if err := call(ctx, r.api, fmt.Sprintf("book room %d", req.RoomID), backend.Request{
			Path: roomBookingPath, Method: http.MethodPost, Body: req,
		}, &booked); err != nil {
			log.Warn().Int64("client_id", created.ID).Int64("room", req.RoomID).Int("booked", conf.Booked).
				Err(err).Msg("manual booking stopped")
			return conf, fmt.Errorf("%w: %v", domain.ErrNoRoomsAvailable, err)
		}
		conf.Booked++
		if booked.ID != 0 {
			conf.BookingIDs = append(conf.BookingIDs, booked.ID)
		}
	}
	log.Info().Int64("client_id", created.ID).Int("booked", conf.Booked).Msg("manual booking")
	return conf, nil
}

func (r *Reception) AllInquiries(ctx context.Context) ([]domain.TourInquiry, error) {
	var out []domain.TourInquiry
	if err := call(ctx, r.api, "tour requests", backend.Request{Path: inquiryPath}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Reception) Inquiries(ctx context.Context, page int) (Listing[domain.TourInquiry], error) {
	all, err := r.AllInquiries(ctx)
	if err != nil {
		return Listing[domain.TourInquiry]{}, err
	}
	return pageOf(all, page, ReceptionPage), nil
}

// SetInquiryStatus re-sends the whole inquiry with the new status.
func (r *Reception) SetInquiryStatus(ctx context.Context, id string, status int) (domain.TourInquiry, error) {
	if domain.InquiryStatusName(status) == "unknown" {
		return domain.TourInquiry{}, &domain.ValidationError{Field: "status", Message: "status must be 1..5"}
	}
	all, err := r.AllInquiries(ctx)
	if err != nil {
		return domain.TourInquiry{}, err
	}
	for _, q := range all {
		if string(q.ID) != id {
			continue
		}
		q.Status = status
		err := call(ctx, r.api, "update tour request", backend.Request{
			Path: inquiryPath + "/" + id, Method: http.MethodPut, Body: q,
		}, nil)
		return q, err
	}
	return domain.TourInquiry{}, fmt.Errorf("tour request %s: %w", id, domain.ErrNotFound)
}

func (r *Reception) DeleteInquiry(ctx context.Context, id string) error {
	return call(ctx, r.api, "delete tour request", backend.Request{
		Path: inquiryPath + "/" + id, Method: http.MethodDelete,
	}, nil)
}

// SubmitInquiry is the public "book this tour" form.
func (r *Reception) SubmitInquiry(ctx context.Context, q domain.TourInquiry) error {
	q.Name, q.Phone, q.Email = strings.TrimSpace(q.Name), strings.TrimSpace(q.Phone), strings.TrimSpace(q.Email)
	if err := q.Validate(); err != nil {
		return err
	}
	body := map[string]any{
		"name":         q.Name,
		"phone":        q.Phone,
		"email":        q.Email,
		"travelTourId": q.TravelTourID,
	}
	if q.Description != "" {
		body["description"] = q.Description
	}
	return call(ctx, r.api, "submit tour request "+strconv.Itoa(q.TravelTourID), backend.Request{
		Path: inquiryPath, Method: http.MethodPost, Body: body,
	}, nil)
}

// ExportBookings writes every room booking as a spreadsheet.
func (r *Reception) ExportBookings(ctx context.Context, w io.Writer) (int, error) {
	all, err := r.AllRoomBookings(ctx)
	if err != nil {
		return 0, err
	}
	return len(all), xlsx.WriteBookings(w, all)
}

func (r *Reception) ExportInquiries(ctx context.Context, w io.Writer) (int, error) {
	all, err := r.AllInquiries(ctx)
	if err != nil {
		return 0, err
	}
	return len(all), xlsx.WriteInquiries(w, all)
}
