package app

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"hotel_agency/internal/adapters/backend"
	"hotel_agency/internal/domain"
)

// Catalog sections, also the cache key segment and Invalidate argument.
const (
	SectionCarousel = "carousel"
	SectionTours    = "tours"
	SectionNews     = "news"
	SectionGallery  = "gallery"
	SectionVideos   = "videos"
	SectionPartners = "partners"
	SectionBooking  = "booking"
)

var Sections = []string{SectionCarousel, SectionTours, SectionNews, SectionGallery, SectionVideos, SectionPartners}

const (
	TourPageSize    = 6
	NewsPageSize    = 10
	GalleryPageSize = 12
)

type Slide struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl"`
}

type TourDayView struct {
	Position    int    `json:"position"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type TourView struct {
	ID          int64         `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	StartDate   string        `json:"startDate"`
	EndDate     string        `json:"endDate"`
	Price       float64       `json:"price"`
	Currency    string        `json:"currency,omitempty"`
	Cities      []string      `json:"cities"`
	Itinerary   string        `json:"itinerary,omitempty"`
	ImageURLs   []string      `json:"imageUrls"`
	FileURL     string        `json:"fileUrl,omitempty"`
	Days        []TourDayView `json:"days,omitempty"`
}

type NewsView struct {
	ID        int64    `json:"id"`
	Title     string   `json:"title"`
	Body      string   `json:"body"`
	ImageURL  string   `json:"imageUrl,omitempty"`
	Photos    []string `json:"photos,omitempty"`
	CreatedAt string   `json:"createdAt,omitempty"`
}

type GalleryView struct {
	ID          int64  `json:"id"`
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl"`
}

// VideoView carries the stored embed and the iframe src derived from it.
type VideoView struct {
	ID     int64  `json:"id"`
	Title  string `json:"title"`
	Iframe string `json:"iframe"`
	Src    string `json:"src"`
}

type PartnerView struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	LogoURL     string `json:"logoUrl,omitempty"`
	Website     string `json:"website,omitempty"`
}

// Listing is one page of a public section.
type Listing[T any] struct {
	Items         []T          `json:"items"`
	Pager         domain.Pager `json:"pager"`
	TotalElements int          `json:"totalElements"`
}

type prefixDeleter interface {
	DelPrefix(ctx context.Context, prefix string) (int, error)
}

// Catalog serves the public display screens from a cache-aside layer in
// front of the backend. Every view is resolved to a single locale.
type Catalog struct {
	api      API
	cache    domain.Cache
	ttl      time.Duration
	mediaURL func(string) string
}

func NewCatalog(api API, cache domain.Cache, ttl time.Duration, mediaURL func(string) string) *Catalog {
	return &Catalog{api: api, cache: cache, ttl: ttl, mediaURL: mediaURL}
}

func cacheKey(section string, l domain.Locale, extra ...int) string {
	k := "catalog:" + section + ":" + string(l)
	for _, x := range extra {
		k += ":" + strconv.Itoa(x)
	}
	return k
}

// cached loads key from the cache or fills it with load.
func cached[T any](ctx context.Context, c *Catalog, key string, load func() (T, error)) (T, error) {
	var v T
	if c.cache != nil {
		if ok, err := c.cache.Get(ctx, key, &v); ok && err == nil {
			return v, nil
		} else if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("cache read failed")
		}
	}
	v, err := load()
	if err != nil {
		return v, err
	}
	if c.cache != nil {
		if err := c.cache.Set(ctx, key, v, int(c.ttl.Seconds())); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("cache write failed")
		}
	}
	return v, nil
}

func (c *Catalog) media(ref *domain.MediaRef) string {
	if ref == nil || c.mediaURL == nil {
		return ""
	}
	return c.mediaURL(ref.ID)
}

func (c *Catalog) Carousel(ctx context.Context, l domain.Locale) ([]Slide, error) {
	return cached(ctx, c, cacheKey(SectionCarousel, l), func() ([]Slide, error) {
		var items []domain.Carousel
		if err := call(ctx, c.api, "carousel", backend.Request{Path: "/api/v1/carousel"}, &items); err != nil {
			return nil, err
		}
		out := make([]Slide, 0, len(items))
		for _, it := range items {
			out = append(out, Slide{
				ID:          it.ID,
				Title:       it.Title().Resolve(l, ""),
				Description: it.Description().Resolve(l, ""),
				ImageURL:    c.media(it.Media),
			})
		}
		return out, nil
	})
}

func (c *Catalog) tourView(t domain.Tour, l domain.Locale) TourView {
	v := TourView{
		ID:          t.ID,
		Title:       t.Title().Resolve(l, "-"),
		Description: t.Description().Resolve(l, ""),
		StartDate:   t.StartDate,
		EndDate:     t.EndDate,
		Price:       t.Price,
		Currency:    t.Currency,
		Cities:      t.Cities().Resolve(l),
		Itinerary:   t.ItineraryDetails,
		ImageURLs:   make([]string, 0, len(t.Images)),
		FileURL:     c.media(t.File),
	}
	for i := range t.Images {
		v.ImageURLs = append(v.ImageURLs, c.media(&t.Images[i]))
	}
	return v
}

func (c *Catalog) Tours(ctx context.Context, l domain.Locale, page int) (Listing[TourView], error) {
	page = max(page, 0)
	return cached(ctx, c, cacheKey(SectionTours, l, page), func() (Listing[TourView], error) {
		var p domain.Page[domain.Tour]
		err := call(ctx, c.api, "tours", backend.Request{
			Path:  "/api/v1/travel-tours/website",
			Query: domain.PageQuery{Page: page, Size: TourPageSize}.Values(),
		}, &p)
		if err != nil {
			return Listing[TourView]{}, err
		}
		out := Listing[TourView]{
			Items:         make([]TourView, 0, len(p.Content)),
			Pager:         domain.Pager{Current: page, Total: p.TotalPages},
			TotalElements: p.TotalElements,
		}
		for _, t := range p.Content {
			out.Items = append(out.Items, c.tourView(t, l))
		}
		return out, nil
	})
}

// Tour is one tour with its day-by-day programme. A failing programme
// lookup leaves Days empty.
func (c *Catalog) Tour(ctx context.Context, l domain.Locale, id int64) (TourView, error) {
	return cached(ctx, c, cacheKey(SectionTours+":item", l, int(id)), func() (TourView, error) {
		var t domain.Tour
		path := "/api/v1/travel-tours/" + strconv.FormatInt(id, 10)
		if err := call(ctx, c.api, "tour", backend.Request{Path: path}, &t); err != nil {
			return TourView{}, err
		}
		v := c.tourView(t, l)

		days := t.Days
		var fetched []domain.TourDay
		if err := call(ctx, c.api, "tour days", backend.Request{Path: "/api/v1/tour-days/by-tour/" + strconv.FormatInt(id, 10)}, &fetched); err != nil {
			log.Warn().Err(err).Int64("tour", id).Msg("tour days unavailable")
		} else if len(fetched) > 0 {
			days = fetched
		}
		sort.SliceStable(days, func(i, j int) bool { return days[i].Position < days[j].Position })
		for _, d := range days {
			v.Days = append(v.Days, TourDayView{
				Position:    d.Position,
				Title:       d.Title().Resolve(l, ""),
				Description: d.Description().Resolve(l, ""),
			})
		}
		return v, nil
	})
}

func (c *Catalog) newsView(n domain.News, l domain.Locale) NewsView {
	v := NewsView{
		ID:        n.ID,
		Title:     n.Title().Resolve(l, "-"),
		Body:      n.Description().Resolve(l, ""),
		ImageURL:  c.media(n.MainPhoto),
		CreatedAt: n.CreatedAt,
	}
	for i := range n.Photos {
		v.Photos = append(v.Photos, c.media(&n.Photos[i]))
	}
	return v
}

func (c *Catalog) News(ctx context.Context, l domain.Locale, page int) (Listing[NewsView], error) {
	page = max(page, 0)
	return cached(ctx, c, cacheKey(SectionNews, l, page), func() (Listing[NewsView], error) {
		var p domain.Page[domain.News]
		err := call(ctx, c.api, "news", backend.Request{
			Path:  "/api/v1/news/page",
			Query: domain.PageQuery{Page: page, Size: NewsPageSize}.Values(),
		}, &p)
		if err != nil {
			return Listing[NewsView]{}, err
		}
		// newest first; createdAt is ISO so lexical order is chronological
		sort.SliceStable(p.Content, func(i, j int) bool { return p.Content[i].CreatedAt > p.Content[j].CreatedAt })
		out := Listing[NewsView]{
			Items:         make([]NewsView, 0, len(p.Content)),
			Pager:         domain.Pager{Current: page, Total: p.TotalPages},
			TotalElements: p.TotalElements,
		}
		for _, n := range p.Content {
			out.Items = append(out.Items, c.newsView(n, l))
		}
		return out, nil
	})
}

func (c *Catalog) NewsItem(ctx context.Context, l domain.Locale, id int64) (NewsView, error) {
	return cached(ctx, c, cacheKey(SectionNews+":item", l, int(id)), func() (NewsView, error) {
		var n domain.News
		if err := call(ctx, c.api, "news item", backend.Request{Path: "/api/v1/news/" + strconv.FormatInt(id, 10)}, &n); err != nil {
			return NewsView{}, err
		}
		return c.newsView(n, l), nil
	})
}

// Gallery pages the full gallery list locally; the backend serves it whole.
func (c *Catalog) Gallery(ctx context.Context, l domain.Locale, page int) (Listing[GalleryView], error) {
	all, err := cached(ctx, c, cacheKey(SectionGallery, l), func() ([]GalleryView, error) {
		var items []domain.GalleryItem
		if err := call(ctx, c.api, "gallery", backend.Request{Path: "/api/v1/gallery"}, &items); err != nil {
			return nil, err
		}
		out := make([]GalleryView, 0, len(items))
		for _, it := range items {
			out = append(out, GalleryView{ID: it.ID, Description: it.Description().Resolve(l, ""), ImageURL: c.media(it.Media)})
		}
		return out, nil
	})
	if err != nil {
		return Listing[GalleryView]{}, err
	}
	return pageOf(all, page, GalleryPageSize), nil
}

func (c *Catalog) Videos(ctx context.Context, l domain.Locale) ([]VideoView, error) {
	return cached(ctx, c, cacheKey(SectionVideos, l), func() ([]VideoView, error) {
		var items []domain.Video
		if err := call(ctx, c.api, "videos", backend.Request{Path: "/api/v1/youtube"}, &items); err != nil {
			return nil, err
		}
		out := make([]VideoView, 0, len(items))
		for _, v := range items {
			src, ok := domain.EmbedSrc(v.Iframe)
			if !ok {
				log.Warn().Int64("video", v.ID).Msg("skipping video with unrecognized embed")
				continue
			}
			out = append(out, VideoView{ID: v.ID, Title: v.Description().Resolve(l, ""), Iframe: v.Iframe, Src: src})
		}
		return out, nil
	})
}

// Partners lists active partners by sortOrder.
func (c *Catalog) Partners(ctx context.Context, l domain.Locale) ([]PartnerView, error) {
	return cached(ctx, c, cacheKey(SectionPartners, l), func() ([]PartnerView, error) {
		var p domain.Page[domain.Partner]
		err := call(ctx, c.api, "partners", backend.Request{
			Path:  "/api/v1/travel-partners/website",
			Query: domain.PageQuery{Page: 0, Size: 20}.Values(),
		}, &p)
		if err != nil {
			return nil, err
		}
		active := make([]domain.Partner, 0, len(p.Content))
		for _, x := range p.Content {
			if x.Active {
				active = append(active, x)
			}
		}
		sort.SliceStable(active, func(i, j int) bool { return active[i].SortOrder < active[j].SortOrder })
		out := make([]PartnerView, 0, len(active))
		for _, x := range active {
			out = append(out, PartnerView{
				ID: x.ID, Name: x.Name, Description: x.Description().Resolve(l, ""),
				LogoURL: c.media(x.Logo), Website: x.Website,
			})
		}
		return out, nil
	})
}

// BookingEnabled reads the public booking toggle. It is never cached so
// switching it off takes effect at once.
func (c *Catalog) BookingEnabled(ctx context.Context) (bool, error) {
	var st struct {
		Enabled bool `json:"enabled"`
	}
	if err := call(ctx, c.api, "booking status", backend.Request{Path: bookingStatusPath}, &st); err != nil {
		return false, err
	}
	return st.Enabled, nil
}

// Invalidate drops every cached view of section across locales and pages.
func (c *Catalog) Invalidate(ctx context.Context, section string) error {
	pd, ok := c.cache.(prefixDeleter)
	if !ok {
		return fmt.Errorf("cache cannot invalidate by prefix")
	}
	n, err := pd.DelPrefix(ctx, "catalog:"+section+":")
	if err != nil {
		return err
	}
	log.Info().Str("section", section).Int("keys", n).Msg("catalog invalidated")
	return nil
}

// MediaURL exposes where the backend serves file id.
func (c *Catalog) MediaURL(id string) string {
	if c.mediaURL == nil {
		return ""
	}
	return c.mediaURL(id)
}
