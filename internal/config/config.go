package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "REGIFTING"

// Database dialects understood by the result archive.
const (
	DialectSQLite   = "sqlite"
	DialectPostgres = "postgres"
)

// Config holds application configuration.
type Config struct {
	Port            string
	DatabaseDialect string // sqlite, postgres, or empty to disable the archive
	DatabaseURL     string
	RedisURL        string // empty disables the leaderboard cache
	JWTSecret       string
	DevLogin        bool // expose GET /auth/dev
	MaxRunning      int  // concurrent background tournaments
	Pool            int
	Seed            int64
	Games           int
	MaxPool         int // upper bounds for API requests, 0 = unbounded
	MaxGames        int
	MaxEntrants     int
}

// ArchiveEnabled reports whether a result archive is configured.
func (c *Config) ArchiveEnabled() bool { return c.DatabaseDialect != "" }

// CacheEnabled reports whether a Redis leaderboard is configured.
func (c *Config) CacheEnabled() bool { return c.RedisURL != "" }

// Load reads configuration from defaults, an optional regifting.yaml (in the
// working directory or ~/.config/regifting) and REGIFTING_* environment
// variables, in increasing order of precedence. The plain PORT,
// DATABASE_URL, REDIS_URL and JWT_SECRET variables are honoured as fallbacks.
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile is Load with an explicit config file path. An empty path searches
// the default locations and tolerates a missing file.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, legacy := range map[string]string{
		"port":           "PORT",
		"database.url":   "DATABASE_URL",
		"redis.url":      "REDIS_URL",
		"jwt.secret":     "JWT_SECRET",
		"auth.dev_login": "DEV_MODE",
	} {
		_ = v.BindEnv(key, EnvPrefix+"_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), legacy)
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("regifting")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "regifting"))
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{
		Port:            v.GetString("port"),
		DatabaseDialect: strings.ToLower(v.GetString("database.dialect")),
		DatabaseURL:     v.GetString("database.url"),
		RedisURL:        v.GetString("redis.url"),
		JWTSecret:       v.GetString("jwt.secret"),
		DevLogin:        v.GetBool("auth.dev_login"),
		MaxRunning:      v.GetInt("server.max_running"),
		Pool:            v.GetInt("tournament.pool"),
		Seed:            v.GetInt64("tournament.seed"),
		Games:           v.GetInt("tournament.games"),
		MaxPool:         v.GetInt("tournament.max_pool"),
		MaxGames:        v.GetInt("tournament.max_games"),
		MaxEntrants:     v.GetInt("tournament.max_entrants"),
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8009")
	v.SetDefault("database.dialect", "")
	v.SetDefault("database.url", "")
	v.SetDefault("redis.url", "")
	v.SetDefault("jwt.secret", "dev-secret-change-me")
	v.SetDefault("auth.dev_login", false)
	v.SetDefault("server.max_running", 4)
	v.SetDefault("tournament.pool", 100)
	v.SetDefault("tournament.seed", 0)
	v.SetDefault("tournament.games", 0)
	v.SetDefault("tournament.max_pool", 1_000_000)
	v.SetDefault("tournament.max_games", 10_000)
	v.SetDefault("tournament.max_entrants", 256)
}

func (c *Config) validate() error {
	switch c.DatabaseDialect {
	case "", DialectSQLite, DialectPostgres:
	default:
		return fmt.Errorf("unsupported database dialect %q", c.DatabaseDialect)
	}
	if c.DatabaseDialect != "" && c.DatabaseURL == "" {
		return fmt.Errorf("database.url is required for dialect %s", c.DatabaseDialect)
	}
	if c.Pool < 0 {
		return fmt.Errorf("tournament.pool must be non-negative, got %d", c.Pool)
	}
	if c.MaxRunning < 1 {
		return fmt.Errorf("server.max_running must be positive, got %d", c.MaxRunning)
	}
	if c.Games < 0 {
		return fmt.Errorf("tournament.games must be non-negative, got %d", c.Games)
	}
	for key, n := range map[string]int{
		"tournament.max_pool":     c.MaxPool,
		"tournament.max_games":    c.MaxGames,
		"tournament.max_entrants": c.MaxEntrants,
	} {
		if n < 0 {
			return fmt.Errorf("%s must be non-negative, got %d", key, n)
		}
	}
	return nil
}
