package main

import (
	"context"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"hotel_agency/internal/adapters/backend"
	"hotel_agency/internal/adapters/observability"
	redisad "hotel_agency/internal/adapters/redis"
	"hotel_agency/internal/app"
	"hotel_agency/internal/shared"
)

const warmAttempts = 3

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	cfg := shared.Load()

	// 1) initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	log.Info().
		Str("base", cfg.BackendBase).
		Int("workers", cfg.WarmWorkers).
		Msg("warmer starting")

	client, err := backend.New(cfg.BackendBase, nil, cfg.BackendRPS, cfg.BackendTimeout)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize backend client")
	}
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cache.Close()
	if err := cache.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("redis ping failed")
	}
	catalog := app.NewCatalog(client, cache, cfg.CacheTTL, client.MediaURL)

	// drop stale views first so the warm pass refills every key
	for _, s := range app.Sections {
		if err := catalog.Invalidate(ctx, s); err != nil {
			log.Warn().Str("section", s).Err(err).Msg("invalidate failed")
		}
	}

	jobs := app.WarmJobs(catalog)
	sem := semaphore.NewWeighted(int64(cfg.WarmWorkers))
	var wg sync.WaitGroup
	var failed int32

	for _, job := range jobs {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, int64(1)); err != nil {
			log.Warn().Err(err).Msg("warm interrupted")
			break
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer sem.Release(int64(1))

			if err := job.RunWithRetry(ctx, warmAttempts); err != nil {
				atomic.AddInt32(&failed, 1)
				log.Warn().Str("section", job.Section).Str("lang", string(job.Locale)).Err(err).Msg("warm failed")
				return
			}
			log.Info().Str("section", job.Section).Str("lang", string(job.Locale)).Msg("warm ok")
		}()
	}

	wg.Wait()
	log.Info().Int("jobs", len(jobs)).Int32("failed", failed).Msg("warm completed")
	if failed > 0 && int(failed) == len(jobs) {
		log.Fatal().Msg("every warm job failed")
	}
}
