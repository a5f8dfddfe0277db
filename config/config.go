// Package config loads runtime settings and opens the database.
//
// Settings are layered: struct defaults, then an optional YAML file, then
// environment variables. A .env file in the working directory is read into
// the environment first unless DOCKER_ENV=true.
package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/uttkarsh123-shiv/SoundNest-sub000/logging"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Database   DatabaseConfig   `koanf:"database"`
	Auth       AuthConfig       `koanf:"auth"`
	Storage    StorageConfig    `koanf:"storage"`
	Generation GenerationConfig `koanf:"generation"`
	Log        LogConfig        `koanf:"log"`
	Discovery  DiscoveryConfig  `koanf:"discovery"`
}

type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	Mode            string        `koanf:"mode"` // gin mode: debug, release, test
	CORSOrigins     []string      `koanf:"cors_origins"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	RateLimitRPS    float64       `koanf:"rate_limit_rps"`
	RateLimitBurst  int           `koanf:"rate_limit_burst"`
	// MachineID seeds notification ID generation; unique per replica.
	MachineID uint16 `koanf:"machine_id"`
}

func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

type DatabaseConfig struct {
	Driver   string `koanf:"driver"`
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`
	Name     string `koanf:"name"`
	SSLMode  string `koanf:"sslmode"`

	// DSN overrides the fields above. For sqlite it is the file path or
	// ":memory:".
	DSN string `koanf:"dsn"`

	MaxIdleConns    int           `koanf:"max_idle_conns"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
}

// ConnString returns the driver specific connection string.
func (d DatabaseConfig) ConnString() string {
	if d.DSN != "" {
		return d.DSN
	}
	if d.Driver == DriverSQLite {
		return "soundnest.db"
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		Path:     "/" + d.Name,
		RawQuery: "sslmode=" + url.QueryEscape(d.SSLMode),
	}
	return u.String()
}

type AuthConfig struct {
	JWTSecret string        `koanf:"jwt_secret"`
	JWTIssuer string        `koanf:"jwt_issuer"`
	TokenTTL  time.Duration `koanf:"token_ttl"`

	// ClerkSecretKey enables Clerk session tokens when set.
	ClerkSecretKey string `koanf:"clerk_secret_key"`
}

type StorageConfig struct {
	SupabaseURL string        `koanf:"supabase_url"`
	SupabaseKey string        `koanf:"supabase_key"`
	Bucket      string        `koanf:"bucket"`
	Timeout     time.Duration `koanf:"timeout"`
}

type GenerationConfig struct {
	URL     string        `koanf:"url"`
	APIKey  string        `koanf:"api_key"`
	Timeout time.Duration `koanf:"timeout"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Logging converts the section into logging.Config.
func (l LogConfig) Logging() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = l.Level
	cfg.Format = l.Format
	cfg.Caller = l.Caller
	return cfg
}

type DiscoveryConfig struct {
	DefaultLimit int `koanf:"default_limit"`
	MaxLimit     int `koanf:"max_limit"`
	SimilarLimit int `koanf:"similar_limit"`
	FeaturedSize int `koanf:"featured_size"`
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			Mode:            "release",
			CORSOrigins:     []string{"http://localhost:5173"},
			ReadTimeout:     30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			RateLimitRPS:    1,
			RateLimitBurst:  5,
			MachineID:       1,
		},
		Database: DatabaseConfig{
			Driver:          DriverPostgres,
			Host:            "localhost",
			Port:            5432,
			User:            "postgres",
			Name:            "soundnest",
			SSLMode:         "require",
			MaxIdleConns:    10,
			MaxOpenConns:    100,
			ConnMaxLifetime: 30 * time.Minute,
		},
		Auth: AuthConfig{
			JWTIssuer: "soundnest-api",
			TokenTTL:  24 * time.Hour,
		},
		Storage: StorageConfig{
			Bucket:  "podcasts",
			Timeout: 60 * time.Second,
		},
		Generation: GenerationConfig{
			Timeout: 2 * time.Minute,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Discovery: DiscoveryConfig{
			DefaultLimit: 50,
			MaxLimit:     200,
			SimilarLimit: 9,
			FeaturedSize: 5,
		},
	}
}

// Validate checks settings that would otherwise fail late at runtime.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		errs = append(errs, fmt.Errorf("unknown server.mode %q", c.Server.Mode))
	}
	if c.Server.RateLimitRPS <= 0 || c.Server.RateLimitBurst <= 0 {
		errs = append(errs, errors.New("server rate limit must be positive"))
	}
	if c.Database.Driver != DriverPostgres && c.Database.Driver != DriverSQLite {
		errs = append(errs, fmt.Errorf("unsupported database driver %q", c.Database.Driver))
	}
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, errors.New("auth.token_ttl must be positive"))
	}
	if !logging.ValidLevel(c.Log.Level) {
		errs = append(errs, fmt.Errorf("unknown log level %q", c.Log.Level))
	}
	d := c.Discovery
	if d.DefaultLimit <= 0 || d.MaxLimit <= 0 || d.SimilarLimit <= 0 || d.FeaturedSize <= 0 {
		errs = append(errs, errors.New("discovery limits must be positive"))
	}
	if d.DefaultLimit > d.MaxLimit {
		errs = append(errs, fmt.Errorf("discovery.default_limit %d exceeds max_limit %d", d.DefaultLimit, d.MaxLimit))
	}

	return errors.Join(errs...)
}
