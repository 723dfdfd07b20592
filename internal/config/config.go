// Package config loads the service's environment: backend selection,
// allow-listed schemas, connection parameters, and the HTTP listen
// address. The core pipeline never reads configuration directly — it only
// ever sees the storage.Storage this package's caller builds from it.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the full set of environment-derived settings a storage
// adapter and the HTTP server need to start.
type Config struct {
	Backend       string   `mapstructure:"backend"`
	AllowedSchemas []string `mapstructure:"allowed_schemas"`

	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Database string `mapstructure:"database"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`

	ListenAddr string `mapstructure:"listen_addr"`

	// SyntaxGuard enables the Postgres adapter's optional pg_query_go
	// syntax sanity check on synthesized SQL.
	SyntaxGuard bool `mapstructure:"syntax_guard"`

	// CatalogTTL caches the Postgres adapter's introspected catalog for
	// this long. Zero disables caching.
	CatalogTTL time.Duration `mapstructure:"catalog_ttl"`
}

// DefaultConfig returns the settings used when neither a config file nor
// an environment variable supplies a value.
func DefaultConfig() *Config {
	return &Config{
		Backend:        "postgres",
		AllowedSchemas: []string{"public"},
		Host:           "localhost",
		Port:           5432,
		Database:       "postgres",
		User:           "postgres",
		ListenAddr:     ":8080",
		SyntaxGuard:    true,
		CatalogTTL:     30 * time.Second,
	}
}

// envPrefix namespaces every RELSEARCH_* environment variable this
// service reads (e.g. RELSEARCH_BACKEND, RELSEARCH_HOST).
const envPrefix = "RELSEARCH"

// Load builds a Config from, in ascending priority: built-in defaults, an
// optional YAML file at configPath (ignored if absent), and
// RELSEARCH_*-prefixed environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := DefaultConfig()
	bindDefaults(v, cfg)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("config: read %s: %w", configPath, err)
			}
		}
	}

	out := DefaultConfig()
	if err := v.Unmarshal(out); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	return out, nil
}

func bindDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("backend", cfg.Backend)
	v.SetDefault("allowed_schemas", cfg.AllowedSchemas)
	v.SetDefault("host", cfg.Host)
	v.SetDefault("port", cfg.Port)
	v.SetDefault("database", cfg.Database)
	v.SetDefault("user", cfg.User)
	v.SetDefault("password", cfg.Password)
	v.SetDefault("listen_addr", cfg.ListenAddr)
	v.SetDefault("syntax_guard", cfg.SyntaxGuard)
	v.SetDefault("catalog_ttl", cfg.CatalogTTL)
}

// PostgresConnString builds a libpq-style connection string from the
// config's connection fields.
func (c *Config) PostgresConnString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.User, c.Password, c.Host, c.Port, c.Database)
}

// MySQLDSN builds a go-sql-driver/mysql DSN from the config's connection
// fields.
func (c *Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
		c.User, c.Password, c.Host, c.Port, c.Database)
}
