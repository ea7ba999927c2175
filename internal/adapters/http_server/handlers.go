// internal/adapters/http_server/handlers.go
package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"hotel_agency/internal/app"
	"hotel_agency/internal/domain"
)

const maxBodyBytes = 1 << 20

type Handlers struct {
	Catalog     *app.Catalog
	Booking     *app.Booking
	Reception   *app.Reception
	DefaultLang domain.Locale
	// VisitorTTL is the lifetime of the visitor cookie; it should match the draft TTL.
	VisitorTTL time.Duration
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
	// Confirmation reports how far a failed booking got.
	Confirmation *domain.Confirmation `json:"confirmation,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })

	s.mux.Route("/v1", func(r chi.Router) {
		r.Get("/carousel", h.carousel)
		r.Get("/tours", h.tours)
		r.Get("/tours/{id}", h.tour)
		r.Get("/news", h.news)
		r.Get("/news/{id}", h.newsItem)
		r.Get("/gallery", h.gallery)
		r.Get("/videos", h.videos)
		r.Get("/partners", h.partners)
		r.Get("/media/{id}", h.media)

		r.Get("/booking/status", h.bookingStatus)
		r.Get("/booking/draft", h.getDraft)
		r.Put("/booking/draft", h.putDraft)
		r.Delete("/booking/draft", h.deleteDraft)
		r.Post("/booking/draft/rooms", h.addRoom)
		r.Post("/booking/submit", h.submit)

		r.Post("/tour-requests", h.tourRequest)
	})
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	writeProblemBody(w, problem{Type: "about:blank", Title: title, Status: status, Detail: detail})
}

func writeProblemBody(w http.ResponseWriter, p problem) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	if err := json.NewEncoder(w).Encode(p); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeError maps service errors onto problem responses.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *domain.ValidationError
	var ue *app.UpstreamError
	switch {
	case errors.As(err, &ve):
		writeProblem(w, http.StatusBadRequest, "Invalid input", ve.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", "resource not found")
	case errors.Is(err, domain.ErrBookingClosed):
		writeProblem(w, http.StatusConflict, "Booking closed", err.Error())
	case errors.As(err, &ue):
		detail := ue.Message()
		if detail == "" {
			detail = ue.Error()
		}
		writeProblem(w, http.StatusBadGateway, "Upstream error", detail)
	case r.Context().Err() != nil:
		writeProblem(w, http.StatusGatewayTimeout, "Timeout", "request cancelled")
	default:
		log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		writeProblem(w, http.StatusBadGateway, "Upstream error", "backend unavailable")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

// writeView sends a localized, cacheable view with a weak ETag.
func writeView(w http.ResponseWriter, r *http.Request, l domain.Locale, v any) {
	etag, body := calcETagAndBody(v)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Language", contentLanguage(l))
	w.Header().Set("Vary", "Accept-Language, Cookie")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("failed to write body")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to write JSON body")
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", "request body must be JSON")
		return false
	}
	return true
}

func pageParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	ps := r.URL.Query().Get("page")
	if ps == "" {
		return 0, true
	}
	p, err := strconv.Atoi(ps)
	if err != nil || p < 0 {
		writeProblem(w, http.StatusBadRequest, "Invalid page", "page must be a non-negative integer")
		return 0, false
	}
	return p, true
}

func idParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a positive number")
		return 0, false
	}
	return id, true
}

func (h *Handlers) locale(w http.ResponseWriter, r *http.Request) domain.Locale {
	return resolveLocale(w, r, h.DefaultLang)
}

func (h *Handlers) carousel(w http.ResponseWriter, r *http.Request) {
	l := h.locale(w, r)
	v, err := h.Catalog.Carousel(r.Context(), l)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeView(w, r, l, v)
}

func (h *Handlers) tours(w http.ResponseWriter, r *http.Request) {
	page, ok := pageParam(w, r)
	if !ok {
		return
	}
	l := h.locale(w, r)
	v, err := h.Catalog.Tours(r.Context(), l, page)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeView(w, r, l, v)
}

func (h *Handlers) tour(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	l := h.locale(w, r)
	v, err := h.Catalog.Tour(r.Context(), l, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeView(w, r, l, v)
}

func (h *Handlers) news(w http.ResponseWriter, r *http.Request) {
	page, ok := pageParam(w, r)
	if !ok {
		return
	}
	l := h.locale(w, r)
	v, err := h.Catalog.News(r.Context(), l, page)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeView(w, r, l, v)
}

func (h *Handlers) newsItem(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	l := h.locale(w, r)
	v, err := h.Catalog.NewsItem(r.Context(), l, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeView(w, r, l, v)
}

func (h *Handlers) gallery(w http.ResponseWriter, r *http.Request) {
	page, ok := pageParam(w, r)
	if !ok {
		return
	}
	l := h.locale(w, r)
	v, err := h.Catalog.Gallery(r.Context(), l, page)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeView(w, r, l, v)
}

func (h *Handlers) videos(w http.ResponseWriter, r *http.Request) {
	l := h.locale(w, r)
	v, err := h.Catalog.Videos(r.Context(), l)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeView(w, r, l, v)
}

func (h *Handlers) partners(w http.ResponseWriter, r *http.Request) {
	l := h.locale(w, r)
	v, err := h.Catalog.Partners(r.Context(), l)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeView(w, r, l, v)
}

func (h *Handlers) media(w http.ResponseWriter, r *http.Request) {
	u := h.Catalog.MediaURL(chi.URLParam(r, "id"))
	if u == "" {
		writeProblem(w, http.StatusNotFound, "Not Found", "unknown media")
		return
	}
	http.Redirect(w, r, u, http.StatusFound)
}

func (h *Handlers) bookingStatus(w http.ResponseWriter, r *http.Request) {
	on, err := h.Catalog.BookingEnabled(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, map[string]bool{"enabled": on})
}

type draftBody struct {
	Rooms domain.Draft `json:"rooms"`
}

func (h *Handlers) getDraft(w http.ResponseWriter, r *http.Request) {
	visitor, _ := visitorID(w, r, true, h.VisitorTTL)
	d, err := h.Booking.LoadDraft(r.Context(), visitor)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, draftBody{Rooms: d})
}

func (h *Handlers) putDraft(w http.ResponseWriter, r *http.Request) {
	var body draftBody
	if !decodeBody(w, r, &body) {
		return
	}
	visitor, _ := visitorID(w, r, true, h.VisitorTTL)
	if err := h.Booking.SaveDraft(r.Context(), visitor, body.Rooms); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, draftBody{Rooms: body.Rooms})
}

func (h *Handlers) addRoom(w http.ResponseWriter, r *http.Request) {
	var body struct {
		RoomType string `json:"roomType"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	visitor, _ := visitorID(w, r, true, h.VisitorTTL)
	d, err := h.Booking.AddRoom(r.Context(), visitor, body.RoomType)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, draftBody{Rooms: d})
}

func (h *Handlers) deleteDraft(w http.ResponseWriter, r *http.Request) {
	visitor, ok := visitorID(w, r, false, h.VisitorTTL)
	if ok {
		if err := h.Booking.ClearDraft(r.Context(), visitor); err != nil {
			writeError(w, r, err)
			return
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) submit(w http.ResponseWriter, r *http.Request) {
	visitor, ok := visitorID(w, r, false, h.VisitorTTL)
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Invalid input", "rooms: select at least one room")
		return
	}
	var client domain.ClientInfo
	if !decodeBody(w, r, &client) {
		return
	}
	conf, err := h.Booking.Submit(r.Context(), visitor, client)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, conf)
	case errors.Is(err, domain.ErrClientCreate), errors.Is(err, domain.ErrNoRoomsAvailable):
		writeProblemBody(w, problem{
			Type:         "about:blank",
			Title:        "Booking incomplete",
			Status:       http.StatusBadGateway,
			Detail:       err.Error(),
			Confirmation: &conf,
		})
	default:
		writeError(w, r, err)
	}
}

func (h *Handlers) tourRequest(w http.ResponseWriter, r *http.Request) {
	var q domain.TourInquiry
	if !decodeBody(w, r, &q) {
		return
	}
	if err := h.Reception.SubmitInquiry(r.Context(), q); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}
