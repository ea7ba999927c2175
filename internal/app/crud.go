package app

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"hotel_agency/internal/adapters/backend"
	"hotel_agency/internal/domain"
)

const uploadPath = "/api/v1/file/upload"

// File is an upload picked by the admin.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Content     io.Reader
}

// Card is one tile of an entity grid.
type Card struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	ImageURL    string          `json:"imageUrl,omitempty"`
	Locales     []domain.Locale `json:"locales"`
	Active      *bool           `json:"active,omitempty"`
}

// CRUD drives one admin entity screen from its schema.
type CRUD struct {
	schema   domain.Schema
	api      API
	mediaURL func(id string) string
}

func NewCRUD(schema domain.Schema, api API, mediaURL func(string) string) *CRUD {
	return &CRUD{schema: schema, api: api, mediaURL: mediaURL}
}

func (c *CRUD) Schema() domain.Schema { return c.schema }

// List fetches one page and the pager state for it.
func (c *CRUD) List(ctx context.Context, page int) (domain.Page[domain.Form], domain.Pager, error) {
	if page < 0 {
		page = 0
	}
	var out domain.Page[domain.Form]
	err := call(ctx, c.api, "list "+c.schema.Name, backend.Request{
		Path:  c.schema.PagePath(),
		Query: domain.PageQuery{Page: page, Size: c.schema.PageSize}.Values(),
	}, &out)
	if err != nil {
		return domain.Page[domain.Form]{}, domain.Pager{}, err
	}
	if out.TotalPages == 0 && out.TotalElements > 0 {
		out.TotalPages = domain.TotalPagesFor(out.TotalElements, c.schema.PageSize)
	}
	return out, domain.Pager{Current: page, Total: out.TotalPages}, nil
}

func (c *CRUD) Get(ctx context.Context, id string) (domain.Form, error) {
	var out domain.Form
	if err := call(ctx, c.api, "get "+c.schema.Name, backend.Request{Path: c.schema.ItemPath(id)}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Cards renders a page for the grid in locale l.
func (c *CRUD) Cards(page domain.Page[domain.Form], l domain.Locale) []Card {
	cards := make([]Card, 0, len(page.Content))
	for _, f := range page.Content {
		card := Card{ID: f.ID()}
		attr := c.schema.DisplayAttr
		if attr != "" {
			card.Title = f.Localized(attr).Resolve(l, "-")
			card.Locales = f.LocalePresence(attr)
		}
		if attr == "title" && hasAttr(c.schema.Translatable, "description") {
			card.Description = f.Localized("description").Resolve(l, "")
		}
		// partners are headed by their plain name
		if name := f.String("name"); name != "" {
			card.Title = name
			card.Description = f.Localized(attr).Resolve(l, "")
		}
		if c.schema.MediaRefField != "" && c.mediaURL != nil {
			card.ImageURL = c.mediaURL(f.MediaID(c.schema.MediaRefField))
		}
		if c.schema.Toggle {
			active := f.Bool("active")
			card.Active = &active
		}
		cards = append(cards, card)
	}
	return cards
}

func hasAttr(attrs []string, a string) bool {
	for _, x := range attrs {
		if x == a {
			return true
		}
	}
	return false
}

// Upload sends a file ahead of the entity and returns its media id. The
// schema's size and type limits are checked before any network call.
func (c *CRUD) Upload(ctx context.Context, f File) (string, error) {
	if c.schema.UploadPrefix == "" {
		return "", &domain.ValidationError{Field: "file", Message: c.schema.Name + " has no attachments"}
	}
	if err := c.schema.Upload.Check(f.ContentType, f.Size); err != nil {
		return "", err
	}
	res, err := c.api.Do(ctx, backend.Request{
		Path:   uploadPath,
		Method: http.MethodPost,
		Multipart: &backend.Multipart{
			Fields:      map[string]string{"prefix": c.schema.UploadPrefix},
			FileField:   "photo",
			FileName:    f.Name,
			ContentType: f.ContentType,
			Content:     f.Content,
		},
	})
	if err != nil {
		return "", fmt.Errorf("upload: %w", err)
	}
	if !res.OK() {
		return "", &UpstreamError{Op: "upload", Result: res}
	}
	var ref domain.MediaRef
	if err := res.Decode(&ref); err == nil && ref.ID != "" {
		return ref.ID, nil
	}
	id := res.Text()
	if id == "" {
		return "", fmt.Errorf("upload: empty media id")
	}
	log.Debug().Str("entity", c.schema.Name).Str("media", id).Msg("uploaded")
	return id, nil
}

func (c *CRUD) Create(ctx context.Context, f domain.Form) (domain.Form, error) {
	if err := c.writable(); err != nil {
		return nil, err
	}
	if err := c.schema.Check(f, false); err != nil {
		return nil, err
	}
	var out domain.Form
	err := call(ctx, c.api, "create "+c.schema.Name, backend.Request{
		Path: c.schema.Resource, Method: http.MethodPost, Body: f,
	}, &out)
	return out, err
}

func (c *CRUD) Update(ctx context.Context, id string, f domain.Form) (domain.Form, error) {
	if err := c.writable(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(id) == "" {
		return nil, &domain.ValidationError{Field: "id", Message: "id is required"}
	}
	if err := c.schema.Check(f, true); err != nil {
		return nil, err
	}
	var out domain.Form
	err := call(ctx, c.api, "update "+c.schema.Name, backend.Request{
		Path: c.schema.ItemPath(id), Method: http.MethodPut, Body: f,
	}, &out)
	return out, err
}

// Delete asks confirm first, deletes, then reloads page. When the deleted
// item was the last one on a trailing page the previous page is returned.
func (c *CRUD) Delete(ctx context.Context, id string, confirm func(prompt string) bool, page int) (domain.Page[domain.Form], domain.Pager, error) {
	if err := c.writable(); err != nil {
		return domain.Page[domain.Form]{}, domain.Pager{}, err
	}
	if confirm == nil || !confirm(fmt.Sprintf("Delete %s %s?", c.schema.Name, id)) {
		return domain.Page[domain.Form]{}, domain.Pager{}, domain.ErrConfirmationRequired
	}
	if err := call(ctx, c.api, "delete "+c.schema.Name, backend.Request{
		Path: c.schema.ItemPath(id), Method: http.MethodDelete,
	}, nil); err != nil {
		return domain.Page[domain.Form]{}, domain.Pager{}, err
	}

	out, pager, err := c.List(ctx, page)
	if err != nil {
		return out, pager, err
	}
	if len(out.Content) == 0 && page > 0 && out.TotalPages > 0 {
		return c.List(ctx, pager.Clamp(page))
	}
	return out, pager, nil
}

// SetActive flips the active flag by re-sending the whole entity.
func (c *CRUD) SetActive(ctx context.Context, id string, active bool) (domain.Form, error) {
	if !c.schema.Toggle {
		return nil, &domain.ValidationError{Field: "active", Message: c.schema.Name + " cannot be activated"}
	}
	cur, err := c.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	f, _ := c.Edit(cur)
	f["active"] = active
	var out domain.Form
	err = call(ctx, c.api, "toggle "+c.schema.Name, backend.Request{
		Path: c.schema.ItemPath(id), Method: http.MethodPut, Body: f,
	}, &out)
	return out, err
}

// Edit turns a fetched entity into a form: media references become the ids
// the write endpoints expect. The second value is the preview image URL.
func (c *CRUD) Edit(entity domain.Form) (domain.Form, string) {
	f := entity.Clone()
	if c.schema.MediaField == "" {
		return f, ""
	}
	var first string
	if c.schema.MediaList {
		ids := entity.MediaIDs(c.schema.MediaRefField)
		f[c.schema.MediaField] = ids
		if len(ids) > 0 {
			first = ids[0]
		}
	} else {
		first = entity.MediaID(c.schema.MediaRefField)
		f[c.schema.MediaField] = first
	}
	if c.schema.MediaRefField != c.schema.MediaField {
		delete(f, c.schema.MediaRefField)
	}
	preview := ""
	if first != "" && c.mediaURL != nil {
		preview = c.mediaURL(first)
	}
	return f, preview
}

func (c *CRUD) writable() error {
	if c.schema.ReadOnly {
		return &domain.ValidationError{Field: "entity", Message: c.schema.Name + " is read-only"}
	}
	return nil
}
