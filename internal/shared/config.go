package shared

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string `env:"APP_ENV" envDefault:"prod"`
	HTTPAddr    string `env:"HTTP_ADDR" envDefault:":8080"`
	MetricsAddr string `env:"METRICS_ADDR"`
	DefaultLang string `env:"DEFAULT_LANG" envDefault:"uz"`

	BackendBase    string        `env:"BACKEND_BASE_URL" envDefault:"http://localhost:8081"`
	BackendRPS     int           `env:"BACKEND_RPS" envDefault:"10"`
	BackendTimeout time.Duration `env:"BACKEND_TIMEOUT" envDefault:"20s"`

	RedisAddr string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass string        `env:"REDIS_PASSWORD"`
	RedisDB   int           `env:"REDIS_DB" envDefault:"0"`
	CacheTTL  time.Duration `env:"CACHE_TTL" envDefault:"15m"`
	DraftTTL  time.Duration `env:"DRAFT_TTL" envDefault:"72h"`

	// empty disables the booking journal
	MySQLDSN string `env:"MYSQL_DSN"`

	StatePath string `env:"STATE_PATH"`

	// empty disables chat-watch
	MQTTBroker   string `env:"MQTT_BROKER"`
	MQTTClientID string `env:"MQTT_CLIENT_ID"`
	MQTTUsername string `env:"MQTT_USERNAME"`
	MQTTPassword string `env:"MQTT_PASSWORD"`

	WarmWorkers int `env:"WARM_WORKERS" envDefault:"4"`
	ChatFanout  int `env:"CHAT_FANOUT" envDefault:"6"`
}

// Load reads an optional .env file and then the process environment.
func Load() Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn().Err(err).Msg(".env could not be read")
	}
	var c Config
	if err := env.Parse(&c); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	if c.StatePath == "" {
		c.StatePath = defaultStatePath()
	}
	if c.WarmWorkers <= 0 {
		c.WarmWorkers = 4
	}
	if c.ChatFanout <= 0 {
		c.ChatFanout = 6
	}
	if c.BackendBase == "" {
		log.Warn().Msg("BACKEND_BASE_URL is empty")
	}
	return c
}

func defaultStatePath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join(".", ".hotel_agency", "state.db")
	}
	return filepath.Join(home, ".hotel_agency", "state.db")
}
