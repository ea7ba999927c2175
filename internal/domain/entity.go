package domain

import "encoding/json"

// MediaRef is an uploaded file as embedded in backend entities.
type MediaRef struct {
	ID     string `json:"id"`
	Name   string `json:"name,omitempty"`
	Prefix string `json:"prefix,omitempty"`
}

// Titled carries the title_* and description_* wire fields shared by most entities.
type Titled struct {
	TitleUZ         string `json:"title_uz,omitempty"`
	TitleRU         string `json:"title_ru,omitempty"`
	TitleEN         string `json:"title_en,omitempty"`
	TitleTurk       string `json:"title_turk,omitempty"`
	DescriptionUZ   string `json:"description_uz,omitempty"`
	DescriptionRU   string `json:"description_ru,omitempty"`
	DescriptionEN   string `json:"description_en,omitempty"`
	DescriptionTurk string `json:"description_turk,omitempty"`
}

func (t Titled) Title() Localized {
	return Localized{UZ: t.TitleUZ, RU: t.TitleRU, EN: t.TitleEN, Turk: t.TitleTurk}
}

func (t Titled) Description() Localized {
	return Localized{UZ: t.DescriptionUZ, RU: t.DescriptionRU, EN: t.DescriptionEN, Turk: t.DescriptionTurk}
}

type Carousel struct {
	ID    int64     `json:"id"`
	Media *MediaRef `json:"media,omitempty"`
	Titled
}

type GalleryItem struct {
	ID    int64     `json:"id"`
	Media *MediaRef `json:"media,omitempty"`
	Titled
}

type News struct {
	ID        int64      `json:"id"`
	MainPhoto *MediaRef  `json:"mainPhoto,omitempty"`
	Photos    []MediaRef `json:"photos,omitempty"`
	CreatedAt string     `json:"createdAt,omitempty"`
	Titled
}

type Tour struct {
	ID               int64      `json:"id"`
	StartDate        string     `json:"startDate,omitempty"`
	EndDate          string     `json:"endDate,omitempty"`
	Price            float64    `json:"price,omitempty"`
	Currency         string     `json:"currency,omitempty"`
	CitiesUZ         []string   `json:"cities_uz,omitempty"`
	CitiesRU         []string   `json:"cities_ru,omitempty"`
	CitiesEN         []string   `json:"cities_en,omitempty"`
	CitiesTurk       []string   `json:"cities_turk,omitempty"`
	ItineraryDetails string     `json:"itineraryDetails,omitempty"`
	Images           []MediaRef `json:"images,omitempty"`
	File             *MediaRef  `json:"file,omitempty"`
	Active           bool       `json:"active"`
	Days             []TourDay  `json:"days,omitempty"`
	Titled
}

func (t Tour) Cities() LocalizedList {
	return LocalizedList{UZ: t.CitiesUZ, RU: t.CitiesRU, EN: t.CitiesEN, Turk: t.CitiesTurk}
}

type TourDay struct {
	ID       int64 `json:"id"`
	Position int   `json:"position"`
	Titled
}

type Partner struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Logo      *MediaRef `json:"logo,omitempty"`
	Website   string    `json:"website,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Email     string    `json:"email,omitempty"`
	Active    bool      `json:"active"`
	SortOrder int       `json:"sortOrder"`
	Titled
}

// Video is a YouTube or Instagram embed as the admin pasted it.
type Video struct {
	ID     int64  `json:"id"`
	Iframe string `json:"iframe"`
	Titled
}

// Room is a physical room on the reception grid.
type Room struct {
	ID       int64  `json:"id"`
	RoomName string `json:"roomName"`
	RoomType struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	} `json:"roomType"`
}

type Client struct {
	ID             int64  `json:"id"`
	FullName       string `json:"fullName"`
	Phone          string `json:"phone"`
	Email          string `json:"email"`
	PassportNumber string `json:"passportNumber"`
}

type RoomBooking struct {
	ID            int64  `json:"id"`
	CheckInTime   string `json:"checkInTime"`
	CheckOutTime  string `json:"checkOutTime"`
	BookingStatus int    `json:"bookingStatus"`
	GuestsCount   int    `json:"guestsCount"`
	Breakfast     bool   `json:"breakfast"`
	Manual        bool   `json:"manual"`
	Color         string `json:"color,omitempty"`
	Description   string `json:"description,omitempty"`
	Client        Client `json:"client"`
	Room          Room   `json:"room"`
}

type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Roles []Role `json:"roles"`
}

func (u User) IsAdmin() bool { return Session{Roles: u.Roles}.HasRole(RoleAdmin) }

type Chat struct {
	ID          int64        `json:"id"`
	Name        string       `json:"name"`
	Members     []User       `json:"members,omitempty"`
	LastMessage *ChatMessage `json:"lastMessage,omitempty"`
}

// ChatMessage accepts both "message" and "content" bodies and either
// userId or sender.id as the author.
type ChatMessage struct {
	ID        int64     `json:"id"`
	ChatID    int64     `json:"chatId,omitempty"`
	Message   string    `json:"message"`
	UserID    int64     `json:"userId,omitempty"`
	CreatedAt string    `json:"createdAt,omitempty"`
	File      *MediaRef `json:"file,omitempty"`
}

func (m *ChatMessage) UnmarshalJSON(b []byte) error {
	var raw struct {
		ID        int64     `json:"id"`
		ChatID    int64     `json:"chatId"`
		Message   string    `json:"message"`
		Content   string    `json:"content"`
		UserID    int64     `json:"userId"`
		Sender    *User     `json:"sender"`
		CreatedAt string    `json:"createdAt,omitempty"`
		File      *MediaRef `json:"file"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*m = ChatMessage{ID: raw.ID, ChatID: raw.ChatID, Message: raw.Message, UserID: raw.UserID, CreatedAt: raw.CreatedAt, File: raw.File}
	if m.Message == "" {
		m.Message = raw.Content
	}
	if m.UserID == 0 && raw.Sender != nil {
		m.UserID = raw.Sender.ID
	}
	return nil
}

// FlexID is an identifier the backend sends either as a number or a string.
type FlexID string

func (id *FlexID) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = FlexID(s)
		return nil
	}
	if string(b) == "null" {
		*id = ""
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = FlexID(n.String())
	return nil
}
