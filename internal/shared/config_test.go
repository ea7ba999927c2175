package shared_test

import (
	"testing"
	"time"

	"hotel_agency/internal/shared"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	c := shared.Load()
	if c.HTTPAddr != ":8080" || c.DefaultLang != "uz" || c.BackendRPS != 10 || c.CacheTTL != 15*time.Minute {
		t.Fatalf("defaults %+v", c)
	}
	if c.WarmWorkers != 4 || c.ChatFanout != 6 || c.StatePath == "" {
		t.Fatalf("derived defaults %+v", c)
	}
	if c.MySQLDSN != "" || c.MQTTBroker != "" {
		t.Fatalf("optional stores should default off")
	}
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("BACKEND_BASE_URL", "https://api.example.uz")
	t.Setenv("BACKEND_TIMEOUT", "5s")
	t.Setenv("DRAFT_TTL", "1h")
	t.Setenv("CHAT_FANOUT", "0")
	t.Setenv("STATE_PATH", "/tmp/agency.db")
	c := shared.Load()
	if c.BackendBase != "https://api.example.uz" || c.BackendTimeout != 5*time.Second || c.DraftTTL != time.Hour {
		t.Fatalf("parsed %+v", c)
	}
	if c.ChatFanout != 6 || c.StatePath != "/tmp/agency.db" {
		t.Fatalf("fallbacks %+v", c)
	}
}
