package domain_test

import (
	"encoding/json"
	"errors"
	"testing"

	"hotel_agency/internal/domain"
)

func TestLocalized_Fallback(t *testing.T) {
	v := domain.Localized{UZ: "Salom"}
	for _, l := range domain.Locales {
		if got := v.Resolve(l, "-"); got != "Salom" {
			t.Fatalf("%s: got %q", l, got)
		}
	}
	if got := (domain.Localized{RU: "Привет", EN: "Hi"}).Resolve(domain.LocaleTurk, "-"); got != "Привет" {
		t.Fatalf("fallback order: %q", got)
	}
	if got := (domain.Localized{EN: "  "}).Resolve(domain.LocaleEN, "-"); got != "-" {
		t.Fatalf("blank should yield placeholder, got %q", got)
	}
	if p := (domain.Localized{UZ: "a", Turk: "b"}).Present(); len(p) != 2 || p[1] != domain.LocaleTurk {
		t.Fatalf("present %v", p)
	}
}

func TestParseLocale(t *testing.T) {
	cases := map[string]domain.Locale{"uz": domain.LocaleUZ, "RU": domain.LocaleRU, " en ": domain.LocaleEN, "tr": domain.LocaleTurk, "turk": domain.LocaleTurk}
	for in, want := range cases {
		if got, ok := domain.ParseLocale(in); !ok || got != want {
			t.Fatalf("%q: %v %v", in, got, ok)
		}
	}
	if got, ok := domain.ParseLocale("de"); ok || got != domain.LocaleUZ {
		t.Fatalf("unknown locale: %v %v", got, ok)
	}
}

func TestPager(t *testing.T) {
	total := domain.TotalPagesFor(25, 12)
	if total != 3 {
		t.Fatalf("total pages %d", total)
	}
	first := domain.Pager{Current: 0, Total: total}
	if first.HasPrev() || !first.HasNext() {
		t.Fatalf("first page controls wrong: %+v", first)
	}
	last := domain.Pager{Current: 2, Total: total}
	if !last.HasPrev() || last.HasNext() || last.Next() != last {
		t.Fatalf("last page controls wrong: %+v", last)
	}
	if first.Prev() != first || first.Next().Current != 1 {
		t.Fatalf("prev/next stepping wrong")
	}
	if c := first.Clamp(7); c != 2 {
		t.Fatalf("clamp high: %d", c)
	}
	if c := (domain.Pager{}).Clamp(3); c != 0 {
		t.Fatalf("clamp on empty: %d", c)
	}
	if domain.TotalPagesFor(0, 12) != 0 || domain.TotalPagesFor(24, 12) != 2 {
		t.Fatalf("exact multiples")
	}
}

func TestPhoneAndPassport(t *testing.T) {
	for phone, want := range map[string]bool{
		"+998 90 123 456":      false, // 11 digits
		"+998 90 123 45 67":    true,  // 12
		"+998 90 123 45 67 89": true,  // 14
		"998901234567890":      true,  // 15
		"9989012345678901":     false, // 16
	} {
		if got := domain.ValidPhone(phone); got != want {
			t.Fatalf("%q: got %v", phone, got)
		}
	}
	for p, want := range map[string]bool{"AA1234567": true, "aa1234567": true, "A1234567": false, "AA12345678": false} {
		if got := domain.ValidPassport(p); got != want {
			t.Fatalf("%q: got %v", p, got)
		}
	}
}

func TestClientInfo_ValidateOrder(t *testing.T) {
	c := domain.ClientInfo{Phone: "1", PassportNumber: "x"}
	var ve *domain.ValidationError
	if err := c.Validate(); !errors.As(err, &ve) || ve.Field != "fullName" {
		t.Fatalf("name checked first, got %v", err)
	}
	c.FullName = "A"
	if err := c.Validate(); !errors.As(err, &ve) || ve.Field != "phone" {
		t.Fatalf("phone second, got %v", err)
	}
	c.Phone = "+998901234567"
	if err := c.Validate(); !errors.As(err, &ve) || ve.Field != "passportNumber" {
		t.Fatalf("passport third, got %v", err)
	}
	c.PassportNumber = "AB1234567"
	if err := c.Validate(); err != nil {
		t.Fatal(err)
	}
}

func TestGuestOptions(t *testing.T) {
	if domain.MaxGuests(domain.RoomTriple) != 3 || domain.MaxGuests(domain.RoomTwin) != 2 || domain.MaxGuests("SUITE") != 1 {
		t.Fatalf("max guests")
	}
	r := domain.NewRoomRequest(domain.RoomDouble)
	if r.GuestsCount != 2 || r.Complete() {
		t.Fatalf("new room %+v", r)
	}
}

func TestSchemaRules(t *testing.T) {
	tours, _ := domain.LookupSchema("Tours")
	good := domain.Form{
		"title_uz": "Xiva", "startDate": "2026-05-01", "endDate": "2026-05-01",
		"price": "120", "cities_uz": []any{"Xiva"},
	}
	if err := tours.Check(good, false); err != nil {
		t.Fatalf("valid tour rejected: %v", err)
	}
	for field, broken := range map[string]any{
		"title_uz":  "",
		"startDate": "",
		"endDate":   "01.05.2026",
		"price":     "0",
		"cities_uz": []any{},
	} {
		f := good.Clone()
		f[field] = broken
		if err := tours.Check(f, false); !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("%s=%v accepted", field, broken)
		}
	}

	news, _ := domain.LookupSchema("news")
	if err := news.Check(domain.Form{"title_turk": "Haber"}, false); err != nil {
		t.Fatalf("news with one title rejected: %v", err)
	}
	if err := news.Check(domain.Form{}, false); err == nil {
		t.Fatalf("untitled news accepted")
	}

	gallery, _ := domain.LookupSchema("gallery")
	if err := gallery.Check(domain.Form{}, false); err == nil {
		t.Fatalf("gallery without image accepted")
	}
	if err := gallery.Check(domain.Form{}, true); err != nil {
		t.Fatalf("editing keeps the existing image: %v", err)
	}
	if gallery.PagePath() != "/api/v1/gallery/page" || gallery.ItemPath("3") != "/api/v1/gallery/3" {
		t.Fatalf("paths %s %s", gallery.PagePath(), gallery.ItemPath("3"))
	}

	if err := gallery.Upload.Check("image/webp", 9<<20); err != nil {
		t.Fatalf("9MB webp rejected: %v", err)
	}
	if err := gallery.Upload.Check("image/bmp", 1); err == nil {
		t.Fatalf("bmp accepted")
	}
}

func TestForm_Helpers(t *testing.T) {
	var f domain.Form
	if err := json.Unmarshal([]byte(`{"id":42,"active":true,"price":"12.5","images":[{"id":"a"},{"id":"b"}],"media":{"id":"m"}}`), &f); err != nil {
		t.Fatal(err)
	}
	if f.ID() != "42" || !f.Bool("active") || f.MediaID("media") != "m" || len(f.MediaIDs("images")) != 2 {
		t.Fatalf("helpers on %v", f)
	}
	if p, ok := f.Float("price"); !ok || p != 12.5 {
		t.Fatalf("price %v %v", p, ok)
	}
	c := f.Clone()
	c["id"] = 1
	if f.ID() != "42" {
		t.Fatalf("clone aliases the original")
	}
}

func TestFlexIDAndChatMessage(t *testing.T) {
	var q []domain.TourInquiry
	if err := json.Unmarshal([]byte(`[{"id":7},{"id":"abc"},{"id":null}]`), &q); err != nil {
		t.Fatal(err)
	}
	if q[0].ID != "7" || q[1].ID != "abc" || q[2].ID != "" {
		t.Fatalf("ids %+v", q)
	}

	var m domain.ChatMessage
	if err := json.Unmarshal([]byte(`{"id":1,"content":"hey","sender":{"id":9}}`), &m); err != nil {
		t.Fatal(err)
	}
	if m.Message != "hey" || m.UserID != 9 {
		t.Fatalf("message %+v", m)
	}
}

func TestLandingRoute(t *testing.T) {
	s := domain.Session{Roles: []domain.Role{{Name: domain.RoleCook}, {Name: domain.RoleAdmin}}}
	if r, ok := domain.LandingRoute(s.PrimaryRole()); !ok || r != "/cook/dashboard" {
		t.Fatalf("route %q", r)
	}
	if !s.HasRole(domain.RoleAdmin) {
		t.Fatalf("has role")
	}
	if _, ok := domain.LandingRoute("ROLE_X"); ok {
		t.Fatalf("unknown role routed")
	}
}

func TestEmbedSrc(t *testing.T) {
	cases := []struct {
		in, want string
		ok       bool
	}{
		{`<iframe width="560" src="https://www.youtube.com/embed/abc123" frameborder="0"></iframe>`, "https://www.youtube.com/embed/abc123", true},
		{"https://www.instagram.com/reel/C9xYz/?igsh=1", "https://www.instagram.com/reel/C9xYz/embed", true},
		{"https://instagram.com/p/Bq77/", "https://www.instagram.com/p/Bq77/embed", true},
		{"https://www.youtube.com/watch?v=dQw4w9&t=42s", "https://www.youtube.com/embed/dQw4w9", true},
		{"https://youtu.be/dQw4w9?si=x", "https://www.youtube.com/embed/dQw4w9", true},
		{"https://www.instagram.com/agency/", "", false},
		{"https://vimeo.com/1234", "", false},
		{"   ", "", false},
	}
	for _, c := range cases {
		got, ok := domain.EmbedSrc(c.in)
		if got != c.want || ok != c.ok {
			t.Errorf("EmbedSrc(%q) = %q, %v; want %q, %v", c.in, got, ok, c.want, c.ok)
		}
	}

	videos, _ := domain.LookupSchema("videos")
	if err := videos.Check(domain.Form{"iframe": "https://vimeo.com/1234"}, false); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("unrecognized embed accepted: %v", err)
	}
	if err := videos.Check(domain.Form{"iframe": "https://youtu.be/x1"}, false); err != nil {
		t.Fatalf("short link refused: %v", err)
	}
}
