package domain

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	RoomTwin   = "TWIN"
	RoomDouble = "DOUBLE"
	RoomTriple = "TRIPLE"
)

// GuestOptions lists the selectable guest counts for a room type.
func GuestOptions(roomType string) []int {
	switch roomType {
	case RoomTriple:
		return []int{1, 2, 3}
	case RoomDouble, RoomTwin:
		return []int{1, 2}
	}
	return []int{1}
}

func MaxGuests(roomType string) int {
	opts := GuestOptions(roomType)
	return opts[len(opts)-1]
}

// RoomRequest is one line of a draft selection. Dates are YYYY-MM-DD.
type RoomRequest struct {
	RoomType    string `json:"roomType"`
	GuestsCount int    `json:"guestsCount"`
	CheckIn     string `json:"checkIn"`
	CheckOut    string `json:"checkOut"`
}

func NewRoomRequest(roomType string) RoomRequest {
	return RoomRequest{RoomType: roomType, GuestsCount: MaxGuests(roomType)}
}

func (r RoomRequest) Complete() bool {
	return r.RoomType != "" && r.CheckIn != "" && r.CheckOut != ""
}

// Draft is the room selection carried from the listing page to confirmation.
type Draft []RoomRequest

func (d Draft) ValidateRooms() error {
	for i, r := range d {
		if !r.Complete() {
			return invalid(fmt.Sprintf("rooms[%d]", i), "room type, check-in and check-out are required")
		}
	}
	return nil
}

type ClientInfo struct {
	FullName       string `json:"fullName"`
	Email          string `json:"email"`
	PassportNumber string `json:"passportNumber"`
	Phone          string `json:"phone"`
	Breakfast      bool   `json:"breakfast"`
}

var passportRe = regexp.MustCompile(`(?i)^[A-Z]{2}[0-9]{7}$`)

// PhoneDigits counts the decimal digits in a free-form phone number.
func PhoneDigits(phone string) int {
	n := 0
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}

func ValidPhone(phone string) bool {
	n := PhoneDigits(phone)
	return n >= 12 && n <= 15
}

func ValidPassport(p string) bool { return passportRe.MatchString(p) }

// Validate checks name, phone and passport in that order.
func (c ClientInfo) Validate() error {
	if strings.TrimSpace(c.FullName) == "" {
		return invalid("fullName", "full name is required")
	}
	if !ValidPhone(c.Phone) {
		return invalid("phone", "phone must contain 12 to 15 digits, e.g. +998987654321")
	}
	if !ValidPassport(c.PassportNumber) {
		return invalid("passportNumber", "passport must be two letters and seven digits, e.g. AA1234567")
	}
	return nil
}

// BookingRequest is the per-room payload of POST /api/v1/room-booking.
// Visitors book a room type; reception books a concrete room.
type BookingRequest struct {
	ClientID      int64  `json:"clientId"`
	RoomType      string `json:"roomType,omitempty"`
	RoomID        int64  `json:"roomId,omitempty"`
	CheckInTime   string `json:"checkInTime"`
	CheckOutTime  string `json:"checkOutTime"`
	Breakfast     bool   `json:"breakfast"`
	Manual        bool   `json:"manual"`
	BookingStatus int    `json:"bookingStatus"`
	GuestsCount   int    `json:"guestsCount,omitempty"`
	Color         string `json:"color,omitempty"`
	Description   string `json:"description,omitempty"`
	ToCook        bool   `json:"toCook,omitempty"`
}

func NewBookingRequest(clientID int64, c ClientInfo, r RoomRequest) BookingRequest {
	return BookingRequest{
		ClientID:      clientID,
		RoomType:      r.RoomType,
		CheckInTime:   r.CheckIn,
		CheckOutTime:  r.CheckOut,
		Breakfast:     c.Breakfast,
		Manual:        false,
		BookingStatus: BookingPending,
		GuestsCount:   r.GuestsCount,
	}
}

// Booking statuses as the reception grid uses them.
const (
	BookingPending   = 1
	BookingConfirmed = 3
)

// ManualBooking is a reception entry: one stay over one or more rooms.
type ManualBooking struct {
	RoomIDs     []int64 `json:"roomIds"`
	CheckIn     string  `json:"checkInTime"`
	CheckOut    string  `json:"checkOutTime"`
	Color       string  `json:"color,omitempty"`
	Description string  `json:"description,omitempty"`
	ToCook      bool    `json:"toCook,omitempty"`
}

func (m ManualBooking) Validate() error {
	if len(m.RoomIDs) == 0 {
		return invalid("roomIds", "select at least one room")
	}
	if m.CheckIn == "" || m.CheckOut == "" {
		return invalid("checkInTime", "check-in and check-out are required")
	}
	if m.CheckOut < m.CheckIn {
		return invalid("checkOutTime", "check-out is before check-in")
	}
	return nil
}

// Requests expands the entry into one confirmed manual booking per room.
func (m ManualBooking) Requests(clientID int64, c ClientInfo) []BookingRequest {
	out := make([]BookingRequest, 0, len(m.RoomIDs))
	for _, id := range m.RoomIDs {
		req := NewBookingRequest(clientID, c, RoomRequest{CheckIn: m.CheckIn, CheckOut: m.CheckOut})
		req.RoomID = id
		req.Manual = true
		req.BookingStatus = BookingConfirmed
		req.Color, req.Description, req.ToCook = m.Color, m.Description, m.ToCook
		out = append(out, req)
	}
	return out
}

// Confirmation summarises a submission. On partial failure Booked < len(Rooms).
type Confirmation struct {
	Client   ClientInfo    `json:"client"`
	ClientID int64         `json:"clientId"`
	Rooms    []RoomRequest `json:"rooms"`
	Booked   int           `json:"booked"`
	// BookingIDs holds the ids the backend returned, when it returned any.
	BookingIDs []int64 `json:"bookingIds,omitempty"`
}

func (c Confirmation) Complete() bool { return c.ClientID != 0 && c.Booked == len(c.Rooms) }

// Tour inquiry ("bron") statuses.
const (
	InquiryNew         = 1
	InquiryPurchased   = 2
	InquiryConsidering = 3
	InquiryDeclined    = 4
	InquiryUnreachable = 5
)

var inquiryStatusNames = map[int]string{
	InquiryNew:         "new",
	InquiryPurchased:   "purchased",
	InquiryConsidering: "considering",
	InquiryDeclined:    "declined",
	InquiryUnreachable: "unreachable",
}

func InquiryStatusName(s int) string {
	if n, ok := inquiryStatusNames[s]; ok {
		return n
	}
	return "unknown"
}

type TourInquiry struct {
	ID           FlexID `json:"id,omitempty"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	TravelTourID int    `json:"travelTourId"`
	Status       int    `json:"status"`
	Description  string `json:"description"`
}

func (q TourInquiry) Validate() error {
	if strings.TrimSpace(q.Name) == "" {
		return invalid("name", "name is required")
	}
	if strings.TrimSpace(q.Phone) == "" {
		return invalid("phone", "phone is required")
	}
	if q.Status != 0 {
		if _, ok := inquiryStatusNames[q.Status]; !ok {
			return invalid("status", "unknown status")
		}
	}
	return nil
}
