package app

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"hotel_agency/internal/adapters/backend"
	"hotel_agency/internal/domain"
)

const statisticPath = "/api/v1/statistic"

// Dashboard is the admin landing page. Each part is the backend's counts
// object as sent; a part that could not be read is nil.
type Dashboard struct {
	Overview     map[string]map[string]json.Number `json:"overview,omitempty"`
	Summary      map[string]json.Number            `json:"summary,omitempty"`
	ActiveStatus map[string]map[string]json.Number `json:"activeStatus,omitempty"`
	Timeline     map[string]map[string]json.Number `json:"timeline,omitempty"`
}

// Empty reports whether no part loaded.
func (d Dashboard) Empty() bool {
	return d.Overview == nil && d.Summary == nil && d.ActiveStatus == nil && d.Timeline == nil
}

type Statistics struct{ api API }

func NewStatistics(api API) *Statistics { return &Statistics{api: api} }

// Dashboard reads the four statistic endpoints concurrently. A failed part
// is logged and left out; only a lost session fails the whole call.
func (s *Statistics) Dashboard(ctx context.Context) (Dashboard, error) {
	var d Dashboard
	g, gctx := errgroup.WithContext(ctx)
	fetch := func(part, path string, out any) {
		g.Go(func() error {
			err := call(gctx, s.api, "statistic "+part, backend.Request{Path: path}, out)
			if err == nil {
				return nil
			}
			if errors.Is(err, domain.ErrLoggedOut) {
				return err
			}
			log.Warn().Err(err).Str("part", part).Msg("statistic unavailable")
			return nil
		})
	}
	var (
		overview, active, timeline map[string]map[string]json.Number
		summary                    map[string]json.Number
	)
	fetch("overview", statisticPath, &overview)
	fetch("summary", statisticPath+"/summary", &summary)
	fetch("active-status", statisticPath+"/active-status", &active)
	fetch("timeline", statisticPath+"/timeline", &timeline)
	if err := g.Wait(); err != nil {
		return Dashboard{}, err
	}
	d.Overview, d.Summary, d.ActiveStatus, d.Timeline = overview, summary, active, timeline
	return d, nil
}
