package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"hotel_agency/internal/adapters/backend"
	"hotel_agency/internal/adapters/mqtt"
	"hotel_agency/internal/adapters/observability"
	redisad "hotel_agency/internal/adapters/redis"
	"hotel_agency/internal/adapters/sqlite"
	"hotel_agency/internal/app"
	"hotel_agency/internal/domain"
	"hotel_agency/internal/shared"
	mysqlrepo "hotel_agency/internal/storage/mysql"
)

const loggedOutMessage = "session expired, run: admin login"

// admin holds everything a subcommand may need. Optional collaborators
// (cache, journal, chat transport) are opened lazily.
type admin struct {
	cfg     shared.Config
	store   domain.Storage
	client  *backend.Client
	api     *backend.AuthClient
	session *app.SessionService
	users   *app.Users
	in      io.Reader
	out     io.Writer

	catalog  *app.Catalog
	dialChat func(ctx context.Context) (domain.ChatTransport, func(), error)
	journal  func(ctx context.Context) (domain.Journal, func(), error)

	loggedOut bool
}

func newAdmin(cfg shared.Config, store domain.Storage, in io.Reader, out io.Writer) (*admin, error) {
	client, err := backend.New(cfg.BackendBase, store, cfg.BackendRPS, cfg.BackendTimeout)
	if err != nil {
		return nil, err
	}
	a := &admin{cfg: cfg, store: store, client: client, in: in, out: out}
	a.api = backend.NewAuthClient(client, store, backend.WithLoggedOut(func() { a.loggedOut = true }))
	a.session = app.NewSessionService(client, store)
	a.users = app.NewUsers(a.api)

	a.dialChat = func(ctx context.Context) (domain.ChatTransport, func(), error) {
		if cfg.MQTTBroker == "" {
			return nil, nil, errors.New("MQTT_BROKER is not set")
		}
		t, err := mqtt.Dial(ctx, mqtt.Config{
			Broker: cfg.MQTTBroker, ClientID: cfg.MQTTClientID,
			Username: cfg.MQTTUsername, Password: cfg.MQTTPassword,
		})
		if err != nil {
			return nil, nil, err
		}
		return t, t.Close, nil
	}
	a.journal = func(ctx context.Context) (domain.Journal, func(), error) {
		if cfg.MySQLDSN == "" {
			return nil, nil, errors.New("MYSQL_DSN is not set")
		}
		db, err := sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			return nil, nil, err
		}
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return mysqlrepo.New(db), func() { _ = db.Close() }, nil
	}
	return a, nil
}

// invalidate drops the public site's cached views of section after an edit.
// Failures are logged only: the cache expires on its own.
func (a *admin) invalidate(ctx context.Context, section string) {
	if a.catalog == nil {
		return
	}
	if err := a.catalog.Invalidate(ctx, section); err != nil {
		log.Warn().Err(err).Str("section", section).Msg("public cache not invalidated")
	}
}

// run dispatches one subcommand. Authenticated commands check the stored
// session first, as every back-office screen does on mount.
func (a *admin) run(ctx context.Context, name string, args []string) error {
	cmd, ok := commands[name]
	if !ok {
		a.usage()
		return fmt.Errorf("unknown command %q", name)
	}
	if cmd.auth {
		if _, err := a.session.Require(ctx); err != nil {
			return err
		}
	}
	err := cmd.run(ctx, a, args)
	if err == nil && a.loggedOut {
		err = domain.ErrLoggedOut
	}
	return err
}

func (a *admin) usage() {
	fmt.Fprintln(a.out, "usage: admin <command> [flags] [args]")
	names := make([]string, 0, len(commands))
	for n := range commands {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		fmt.Fprintf(a.out, "  %-20s %s\n", n, commands[n].usage)
	}
}

// describe renders err as the one line shown to the operator.
func describe(err error) string {
	var ue *app.UpstreamError
	switch {
	case errors.Is(err, domain.ErrLoggedOut):
		return loggedOutMessage
	case errors.As(err, &ue) && ue.Message() != "":
		return ue.Op + ": " + ue.Message()
	}
	return err.Error()
}

func main() {
	cfg := shared.Load()

	// stdout carries command output; logs go to stderr
	log.Logger = observability.NewLoggerTo(os.Stderr, cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := sqlite.Open(cfg.StatePath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open state:", err)
		os.Exit(1)
	}
	defer store.Close()

	a, err := newAdmin(cfg, store, os.Stdin, os.Stdout)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cache.Close()
	a.catalog = app.NewCatalog(a.client, cache, cfg.CacheTTL, a.client.MediaURL)

	if len(os.Args) < 2 {
		a.usage()
		os.Exit(2)
	}
	if err := a.run(ctx, os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintln(os.Stderr, describe(err))
		store.Close()
		os.Exit(1)
	}
}
