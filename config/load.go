package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths are tried in order when CONFIG_PATH is unset.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/soundnest/config.yaml",
}

const ConfigPathEnvVar = "CONFIG_PATH"

// envMappings maps flat environment names onto koanf paths.
var envMappings = map[string]string{
	"host":             "server.host",
	"port":             "server.port",
	"gin_mode":         "server.mode",
	"cors_origins":     "server.cors_origins",
	"read_timeout":     "server.read_timeout",
	"shutdown_timeout": "server.shutdown_timeout",
	"rate_limit_rps":   "server.rate_limit_rps",
	"rate_limit_burst": "server.rate_limit_burst",
	"machine_id":       "server.machine_id",

	"db_driver":            "database.driver",
	"db_host":              "database.host",
	"db_port":              "database.port",
	"db_user":              "database.user",
	"db_password":          "database.password",
	"db_name":              "database.name",
	"db_sslmode":           "database.sslmode",
	"db_dsn":               "database.dsn",
	"db_max_idle_conns":    "database.max_idle_conns",
	"db_max_open_conns":    "database.max_open_conns",
	"db_conn_max_lifetime": "database.conn_max_lifetime",

	"jwt_secret":       "auth.jwt_secret",
	"jwt_issuer":       "auth.jwt_issuer",
	"jwt_ttl":          "auth.token_ttl",
	"clerk_secret_key": "auth.clerk_secret_key",

	"supabase_url":    "storage.supabase_url",
	"supabase_key":    "storage.supabase_key",
	"supabase_bucket": "storage.bucket",
	"storage_timeout": "storage.timeout",

	"generation_url":     "generation.url",
	"generation_api_key": "generation.api_key",
	"generation_timeout": "generation.timeout",

	"log_level":  "log.level",
	"log_format": "log.format",
	"log_caller": "log.caller",

	"discovery_default_limit": "discovery.default_limit",
	"discovery_max_limit":     "discovery.max_limit",
	"similar_limit":           "discovery.similar_limit",
	"featured_size":           "discovery.featured_size",
}

// sliceFields arrive from the environment as comma separated strings.
var sliceFields = []string{"server.cors_origins"}

// LoadEnv reads .env into the process environment. A missing file is not an
// error; containers pass real environment variables instead.
func LoadEnv() {
	if os.Getenv("DOCKER_ENV") == "true" {
		return
	}
	_ = godotenv.Load()
}

// Load builds the configuration from defaults, the config file and the
// environment, and validates the result.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if path := os.Getenv(ConfigPathEnvVar); path != "" {
		if _, err := os.Stat(path); err == nil {
			return path
		}
		return ""
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	// Unmapped variables are ignored.
	return ""
}

func processSliceFields(k *koanf.Koanf) error {
	for _, key := range sliceFields {
		raw, ok := k.Get(key).(string)
		if !ok {
			continue
		}
		var parts []string
		for _, p := range strings.Split(raw, ",") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		if err := k.Set(key, parts); err != nil {
			return err
		}
	}
	return nil
}
