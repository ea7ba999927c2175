package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// UploadPolicy bounds what an admin may upload for an entity.
type UploadPolicy struct {
	MaxBytes int64
	Types    []string
}

func (p UploadPolicy) Check(contentType string, size int64) error {
	if len(p.Types) > 0 {
		ok := false
		for _, t := range p.Types {
			if strings.EqualFold(t, contentType) {
				ok = true
				break
			}
		}
		if !ok {
			return invalid("file", fmt.Sprintf("%s is not an allowed image format", contentType))
		}
	}
	if p.MaxBytes > 0 && size > p.MaxBytes {
		return invalid("file", fmt.Sprintf("file size must be less than %dMB", p.MaxBytes>>20))
	}
	return nil
}

// Schema describes one admin entity screen: where it lives, which fields it
// edits, how media is attached and what must hold before submit.
type Schema struct {
	Name     string
	Resource string
	// ListPath overrides Resource+"/page".
	ListPath string
	PageSize int

	Fields            []string
	Translatable      []string
	TranslatableLists []string
	// DisplayAttr is the translatable attribute shown as the card heading.
	DisplayAttr string

	UploadPrefix string
	Upload       UploadPolicy
	// MediaField is the form key holding uploaded media ids; MediaRefField
	// the entity key the backend returns them under.
	MediaField    string
	MediaRefField string
	MediaList     bool
	RequiresMedia bool

	// Toggle marks entities with an editable "active" flag.
	Toggle   bool
	ReadOnly bool

	Validate func(Form) error
}

func (s Schema) PagePath() string {
	if s.ListPath != "" {
		return s.ListPath
	}
	return s.Resource + "/page"
}

func (s Schema) ItemPath(id string) string { return s.Resource + "/" + id }

// Check runs the media rule and the entity-specific rule. editing is true
// when an existing entity is being updated.
func (s Schema) Check(f Form, editing bool) error {
	if s.RequiresMedia && !editing && !hasMedia(f, s.MediaField, s.MediaList) {
		return invalid(s.MediaField, "please upload an image first")
	}
	if s.Validate != nil {
		return s.Validate(f)
	}
	return nil
}

func hasMedia(f Form, field string, list bool) bool {
	if list {
		return len(f.Strings(field)) > 0
	}
	return f.String(field) != ""
}

var (
	imageTypes    = []string{"image/jpeg", "image/png", "image/jpg", "image/gif", "image/webp"}
	tourTypes     = []string{"image/jpeg", "image/png", "image/jpg", "image/webp"}
	partnerTypes  = []string{"image/jpeg", "image/png", "image/jpg", "image/svg+xml", "image/webp"}
	titledAttrs   = []string{"title", "description"}
	describedOnly = []string{"description"}
)

var schemas = map[string]Schema{
	"carousel": {
		Name: "carousel", Resource: "/api/v1/carousel", PageSize: 20,
		Translatable: titledAttrs, DisplayAttr: "title",
		UploadPrefix: "carusel", Upload: UploadPolicy{MaxBytes: 5 << 20, Types: imageTypes},
		MediaField: "mediaId", MediaRefField: "media", RequiresMedia: true,
	},
	"gallery": {
		Name: "gallery", Resource: "/api/v1/gallery", PageSize: 12,
		Translatable: describedOnly, DisplayAttr: "description",
		UploadPrefix: "gallery", Upload: UploadPolicy{MaxBytes: 10 << 20, Types: imageTypes},
		MediaField: "mediaId", MediaRefField: "media", RequiresMedia: true,
	},
	"news": {
		Name: "news", Resource: "/api/v1/news", PageSize: 10,
		Translatable: titledAttrs, DisplayAttr: "title",
		UploadPrefix: "news", Upload: UploadPolicy{MaxBytes: 5 << 20, Types: imageTypes},
		MediaField: "mainPhoto", MediaRefField: "mainPhoto",
		Validate: validateNews,
	},
	"tours": {
		Name: "tours", Resource: "/api/v1/travel-tours", PageSize: 12,
		Fields:       []string{"startDate", "endDate", "price", "currency", "itineraryDetails", "active"},
		Translatable: titledAttrs, TranslatableLists: []string{"cities"}, DisplayAttr: "title",
		UploadPrefix: "tours", Upload: UploadPolicy{MaxBytes: 5 << 20, Types: tourTypes},
		MediaField: "imageIds", MediaRefField: "images", MediaList: true,
		Toggle:   true,
		Validate: validateTour,
	},
	"partners": {
		Name: "partners", Resource: "/api/v1/travel-partners", PageSize: 12,
		Fields:       []string{"name", "website", "phone", "email", "active", "sortOrder"},
		Translatable: describedOnly, DisplayAttr: "description",
		UploadPrefix: "partners", Upload: UploadPolicy{MaxBytes: 2 << 20, Types: partnerTypes},
		MediaField: "logoId", MediaRefField: "logo",
		Toggle:   true,
		Validate: validatePartner,
	},
	"videos": {
		Name: "videos", Resource: "/api/v1/youtube", PageSize: 12,
		Fields: []string{"iframe"}, Translatable: describedOnly, DisplayAttr: "description",
		Validate: validateVideo,
	},
	"bookings": {
		Name: "bookings", Resource: "/api/v1/room-booking", PageSize: 20, ReadOnly: true,
	},
	"inquiries": {
		Name: "inquiries", Resource: "/api/v1/bron", PageSize: 20, ReadOnly: true,
	},
}

// LookupSchema finds the schema registered under name.
func LookupSchema(name string) (Schema, bool) {
	s, ok := schemas[strings.ToLower(strings.TrimSpace(name))]
	return s, ok
}

// SchemaNames lists registered entity names in sorted order.
func SchemaNames() []string {
	out := make([]string, 0, len(schemas))
	for k := range schemas {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func validateNews(f Form) error {
	if f.Localized("title").Empty() {
		return invalid("title", "enter a title in at least one language")
	}
	return nil
}

func validateTour(f Form) error {
	if strings.TrimSpace(f.String("title_uz")) == "" {
		return invalid("title_uz", "please enter tour title in Uzbek")
	}
	start, end := f.String("startDate"), f.String("endDate")
	if start == "" {
		return invalid("startDate", "please select start date")
	}
	if end == "" {
		return invalid("endDate", "please select end date")
	}
	s, err := time.Parse(dateLayout, start)
	if err != nil {
		return invalid("startDate", "start date must be YYYY-MM-DD")
	}
	e, err := time.Parse(dateLayout, end)
	if err != nil {
		return invalid("endDate", "end date must be YYYY-MM-DD")
	}
	if e.Before(s) {
		return invalid("endDate", "end date must be after start date")
	}
	if p, ok := f.Float("price"); !ok || p == 0 {
		return invalid("price", "please enter tour price")
	}
	if len(f.Strings(LocaleUZ.Field("cities"))) == 0 {
		return invalid("cities_uz", "please add at least one city")
	}
	return nil
}

func validatePartner(f Form) error {
	if strings.TrimSpace(f.String("name")) == "" {
		return invalid("name", "please enter partner name")
	}
	return nil
}

func validateVideo(f Form) error {
	embed := f.String("iframe")
	if strings.TrimSpace(embed) == "" {
		return invalid("iframe", "iframe embed code is required")
	}
	if _, ok := EmbedSrc(embed); !ok {
		return invalid("iframe", "paste an iframe, a YouTube link or an Instagram reel link")
	}
	return nil
}
