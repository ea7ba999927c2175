package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"hotel_agency/internal/adapters/backend"
	server "hotel_agency/internal/adapters/http_server"
	"hotel_agency/internal/adapters/observability"
	redisad "hotel_agency/internal/adapters/redis"
	"hotel_agency/internal/app"
	"hotel_agency/internal/domain"
	"hotel_agency/internal/shared"
	mysqlrepo "hotel_agency/internal/storage/mysql"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	observability.Serve(cfg.MetricsAddr)

	// public calls carry no session
	client, err := backend.New(cfg.BackendBase, nil, cfg.BackendRPS, cfg.BackendTimeout)
	if err != nil {
		log.Fatal().Err(err).Msg("backend client")
	}

	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cache.Close()
	if err := cache.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("redis ping failed")
	}
	log.Info().Msg("redis connection ok")

	var journal domain.Journal
	if cfg.MySQLDSN != "" {
		db, err := sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("sql.Open failed")
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			log.Fatal().Err(err).Msg("db.Ping failed")
		}
		j := mysqlrepo.New(db)
		if err := j.Migrate(ctx); err != nil {
			log.Fatal().Err(err).Msg("journal migration failed")
		}
		journal = j
		log.Info().Msg("booking journal enabled")
	}

	defLang, ok := domain.ParseLocale(cfg.DefaultLang)
	if !ok {
		log.Warn().Str("lang", cfg.DefaultLang).Msg("unknown DEFAULT_LANG, using uz")
	}

	// deps
	catalog := app.NewCatalog(client, cache, cfg.CacheTTL, client.MediaURL)
	booking := app.NewBooking(client, func(visitor string) domain.Storage {
		return redisad.NewStorage(cache.Client(), redisad.VisitorPrefix(visitor), cfg.DraftTTL)
	}, journal)
	reception := app.NewReception(client)

	// http
	srv := server.New(15 * time.Second)
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{
		Catalog:     catalog,
		Booking:     booking,
		Reception:   reception,
		DefaultLang: defLang,
		VisitorTTL:  cfg.DraftTTL,
	})

	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux(), ReadHeaderTimeout: 10 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown failed")
		}
	}()

	log.Info().Str("addr", cfg.HTTPAddr).Str("backend", cfg.BackendBase).Msg("API listening")
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("http server failed")
	}
	log.Info().Msg("API stopped")
}
