package app

import (
	"context"
	crand "crypto/rand"
	"errors"
	"net/http"
	"time"

	"hotel_agency/internal/domain"
)

// WarmJob fills the cache for one section in one locale.
type WarmJob struct {
	Section string
	Locale  domain.Locale
	Run     func(ctx context.Context) error
}

// WarmJobs lists every section in every locale; paged sections warm their
// first page only.
func WarmJobs(c *Catalog) []WarmJob {
	jobs := make([]WarmJob, 0, len(Sections)*len(domain.Locales))
	for _, l := range domain.Locales {
		add := func(section string, run func(ctx context.Context) error) {
			jobs = append(jobs, WarmJob{Section: section, Locale: l, Run: run})
		}
		add(SectionCarousel, func(ctx context.Context) error { _, err := c.Carousel(ctx, l); return err })
		add(SectionTours, func(ctx context.Context) error { _, err := c.Tours(ctx, l, 0); return err })
		add(SectionNews, func(ctx context.Context) error { _, err := c.News(ctx, l, 0); return err })
		add(SectionGallery, func(ctx context.Context) error { _, err := c.Gallery(ctx, l, 0); return err })
		add(SectionVideos, func(ctx context.Context) error { _, err := c.Videos(ctx, l); return err })
		add(SectionPartners, func(ctx context.Context) error { _, err := c.Partners(ctx, l); return err })
	}
	return jobs
}

// Transient reports whether a failed read is worth repeating: a transport
// failure, a 429, or a 5xx gateway-style answer. Cancellation never is.
func Transient(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var ue *UpstreamError
	if !errors.As(err, &ue) {
		return !errors.Is(err, domain.ErrLoggedOut)
	}
	switch ue.Result.Status {
	case http.StatusTooManyRequests, http.StatusInternalServerError,
		http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

// backoffBase is the first retry delay; tests shrink it.
var backoffBase = 200 * time.Millisecond

// RunWithRetry runs the job up to attempts times, sleeping with jittered
// exponential backoff between transient failures. Warm jobs only read, so
// repeating them is safe.
func (j WarmJob) RunWithRetry(ctx context.Context, attempts int) error {
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for i := 0; i < attempts; i++ {
		if err = j.Run(ctx); err == nil || !Transient(err) {
			return err
		}
		if i < attempts-1 && !sleepCtx(ctx, backoff(i)) {
			return ctx.Err()
		}
	}
	return err
}

// sleepCtx waits for d or returns false early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// backoff doubles per attempt (200ms, 400ms, 800ms...) plus up to 50% jitter.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * backoffBase
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	return base + time.Duration(0.5*f*float64(base))
}
