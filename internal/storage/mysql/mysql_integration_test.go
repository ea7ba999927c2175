//go:build integration || !unit

package mysql_test

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	"hotel_agency/internal/domain"
	mysqlrepo "hotel_agency/internal/storage/mysql"
)

func TestJournal_MySQL_RecordAndRecent(t *testing.T) {
	// Start isolated MySQL; let Docker pick a free host port.
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("dockertest: %v", err)
	}
	if err := pool.Client.Ping(); err != nil {
		t.Skipf("docker not reachable: %v", err)
	}

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env: []string{
			"MYSQL_ROOT_PASSWORD=root",
			"MYSQL_DATABASE=agency",
		},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run mysql: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	dsn := fmt.Sprintf("root:root@tcp(127.0.0.1:%s)/agency?parseTime=true&charset=utf8mb4&loc=UTC",
		resource.GetPort("3306/tcp"))

	var db *sql.DB
	if err := pool.Retry(func() error {
		var e error
		db, e = sql.Open("mysql", dsn)
		if e != nil {
			return e
		}
		return db.Ping()
	}); err != nil {
		t.Fatalf("connect mysql: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	j := mysqlrepo.New(db)
	ctx := context.Background()
	if err := j.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	// idempotent
	if err := j.Migrate(ctx); err != nil {
		t.Fatalf("second migrate: %v", err)
	}

	base := time.Now().UTC().Truncate(time.Millisecond)
	subs := []domain.Submission{
		{VisitorID: "v-1", ClientID: 10, RoomsRequested: 2, RoomsBooked: 1, Outcome: domain.OutcomeRoomsFailed, Detail: "backend 409", CreatedAt: base},
		{VisitorID: "v-2", RoomsRequested: 1, Outcome: domain.OutcomeClientFailed, CreatedAt: base.Add(time.Second)},
	}
	for _, s := range subs {
		if err := j.Record(ctx, s); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	got, err := j.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(got))
	}
	if got[0].VisitorID != "v-2" || got[0].ClientID != 0 {
		t.Fatalf("newest first expected, got %+v", got[0])
	}
	if got[1].RoomsBooked != 1 || got[1].Detail != "backend 409" {
		t.Fatalf("unexpected partial row: %+v", got[1])
	}
}
