package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"hotel_agency/internal/adapters/backend"
	"hotel_agency/internal/adapters/observability"
	"hotel_agency/internal/domain"
)

const clientPath = "/api/v1/client"

// StorageFor returns the persisted state of one visitor.
type StorageFor func(visitorID string) domain.Storage

// Booking runs the public room-booking flow: a draft room list kept per
// visitor, then client creation followed by one booking per room.
type Booking struct {
	api     API
	storage StorageFor
	journal domain.Journal
	now     func() time.Time
}

// NewBooking wires the flow. journal may be nil.
func NewBooking(api API, storage StorageFor, journal domain.Journal) *Booking {
	return &Booking{api: api, storage: storage, journal: journal, now: time.Now}
}

func (b *Booking) LoadDraft(ctx context.Context, visitor string) (domain.Draft, error) {
	raw, ok, err := b.storage(visitor).Get(ctx, domain.KeySelectedRooms)
	if err != nil {
		return nil, fmt.Errorf("load draft: %w", err)
	}
	if !ok || raw == "" {
		return domain.Draft{}, nil
	}
	var d domain.Draft
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		log.Warn().Err(err).Str("visitor", visitor).Msg("discarding unreadable draft")
		return domain.Draft{}, nil
	}
	return d, nil
}

func (b *Booking) store(ctx context.Context, visitor string, d domain.Draft) error {
	raw, err := json.Marshal(d)
	if err != nil {
		return err
	}
	if err := b.storage(visitor).Set(ctx, domain.KeySelectedRooms, string(raw)); err != nil {
		return fmt.Errorf("save draft: %w", err)
	}
	return nil
}

// SaveDraft replaces the draft. Every room must be complete; an empty
// selection is refused.
func (b *Booking) SaveDraft(ctx context.Context, visitor string, d domain.Draft) error {
	if len(d) == 0 {
		return &domain.ValidationError{Field: "rooms", Message: "select at least one room"}
	}
	if err := d.ValidateRooms(); err != nil {
		return err
	}
	for i := range d {
		if d[i].GuestsCount <= 0 || d[i].GuestsCount > domain.MaxGuests(d[i].RoomType) {
			d[i].GuestsCount = domain.MaxGuests(d[i].RoomType)
		}
	}
	return b.store(ctx, visitor, d)
}

// AddRoom appends an undated room of roomType with the most guests it allows.
func (b *Booking) AddRoom(ctx context.Context, visitor, roomType string) (domain.Draft, error) {
	if roomType == "" {
		return nil, &domain.ValidationError{Field: "roomType", Message: "room type is required"}
	}
	d, err := b.LoadDraft(ctx, visitor)
	if err != nil {
		return nil, err
	}
	d = append(d, domain.NewRoomRequest(roomType))
	return d, b.store(ctx, visitor, d)
}

func (b *Booking) ClearDraft(ctx context.Context, visitor string) error {
	return b.storage(visitor).Remove(ctx, domain.KeySelectedRooms)
}

func (b *Booking) Enabled(ctx context.Context) (bool, error) {
	var st bookingStatus
	if err := call(ctx, b.api, "booking status", backend.Request{Path: bookingStatusPath}, &st); err != nil {
		return false, err
	}
	return st.Enabled, nil
}

// Submit books the visitor's draft for client. Input is validated before
// any backend call, then the booking toggle is checked. The client record is
// created first; rooms are then booked one at a time and the first refusal
// stops the loop with ErrNoRoomsAvailable. Nothing already created is
// rolled back and the draft is kept unless every room was booked. The
// returned Confirmation reflects how far the submission got.
func (b *Booking) Submit(ctx context.Context, visitor string, client domain.ClientInfo) (domain.Confirmation, error) {
	conf := domain.Confirmation{Client: client}

	if err := client.Validate(); err != nil {
		b.finish(ctx, visitor, conf, domain.OutcomeInvalid, err.Error())
		return conf, err
	}
	draft, err := b.LoadDraft(ctx, visitor)
	if err != nil {
		return conf, err
	}
	conf.Rooms = draft
	if len(draft) == 0 {
		err := &domain.ValidationError{Field: "rooms", Message: "select at least one room"}
		b.finish(ctx, visitor, conf, domain.OutcomeInvalid, err.Error())
		return conf, err
	}
	if err := draft.ValidateRooms(); err != nil {
		b.finish(ctx, visitor, conf, domain.OutcomeInvalid, err.Error())
		return conf, err
	}

	enabled, err := b.Enabled(ctx)
	if err != nil {
		return conf, err
	}
	if !enabled {
		b.finish(ctx, visitor, conf, domain.OutcomeClosed, "")
		return conf, domain.ErrBookingClosed
	}

	var created struct {
		ID int64 `json:"id"`
	}
	if err := call(ctx, b.api, "create client", backend.Request{
		Path: clientPath, Method: http.MethodPost, Body: client,
	}, &created); err != nil || created.ID == 0 {
		if err == nil {
			err = errors.New("create client: response carried no id")
		}
		b.finish(ctx, visitor, conf, domain.OutcomeClientFailed, err.Error())
		return conf, fmt.Errorf("%w: %v", domain.ErrClientCreate, err)
	}
	conf.ClientID = created.ID

	for i, room := range draft {
		var booked struct {
			ID int64 `json:"id"`
		}
		err := call(ctx, b.api, fmt.Sprintf("book room %d", i+1), backend.Request{
			Path:   roomBookingPath,
			Method: http.MethodPost,
			Body:   domain.NewBookingRequest(created.ID, client, room),
		}, &booked)
		if err != nil {
			b.finish(ctx, visitor, conf, domain.OutcomeRoomsFailed, err.Error())
			log.Warn().Int64("client_id", created.ID).Int("booked", conf.Booked).Int("rooms", len(draft)).
				Err(err).Msg("booking stopped after partial success")
			return conf, fmt.Errorf("%w: %v", domain.ErrNoRoomsAvailable, err)
		}
		conf.Booked++
		if booked.ID != 0 {
			conf.BookingIDs = append(conf.BookingIDs, booked.ID)
		}
	}

	if err := b.ClearDraft(ctx, visitor); err != nil {
		log.Error().Err(err).Str("visitor", visitor).Msg("draft not cleared after booking")
	}
	b.finish(ctx, visitor, conf, domain.OutcomeConfirmed, "")
	return conf, nil
}

func (b *Booking) finish(ctx context.Context, visitor string, conf domain.Confirmation, outcome, detail string) {
	observability.ObserveBooking(outcome)
	log.Info().Str("visitor", visitor).Int64("client_id", conf.ClientID).
		Int("rooms", len(conf.Rooms)).Int("booked", conf.Booked).Str("outcome", outcome).Msg("booking submission")
	if b.journal == nil {
		return
	}
	err := b.journal.Record(ctx, domain.Submission{
		VisitorID:      visitor,
		ClientID:       conf.ClientID,
		RoomsRequested: len(conf.Rooms),
		RoomsBooked:    conf.Booked,
		Outcome:        outcome,
		Detail:         detail,
		CreatedAt:      b.now(),
	})
	if err != nil {
		log.Error().Err(err).Msg("journal write failed")
	}
}
