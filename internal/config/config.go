// Package config loads settings from flags, TIMESTABLES_* environment
// variables and an optional timestables.yaml, in that priority order.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/abhisek/timestables/internal/store"
)

const envPrefix = "TIMESTABLES"

type Config struct {
	DB     DBConfig     `mapstructure:"db"`
	Remote RemoteConfig `mapstructure:"remote"`
	Server ServerConfig `mapstructure:"server"`
	Log    LogConfig    `mapstructure:"log"`
}

// DBConfig selects the local store. Path is used for sqlite, URL for the
// networked dialects.
type DBConfig struct {
	Type string `mapstructure:"type"`
	Path string `mapstructure:"path"`
	URL  string `mapstructure:"url"`
}

// RemoteConfig points the game at a shared backend. An empty URL keeps
// everything local.
type RemoteConfig struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
	Mode string `mapstructure:"mode"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
}

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"config":         "",
	"db":             "db.path",
	"db-type":        "db.type",
	"db-url":         "db.url",
	"remote":         "remote.url",
	"remote-timeout": "remote.timeout",
	"addr":           "server.addr",
	"mode":           "server.mode",
	"log-level":      "log.level",
	"log-file":       "log.file",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("db.type", store.TypeSQLite)
	v.SetDefault("db.path", "")
	v.SetDefault("db.url", "")
	v.SetDefault("remote.url", "")
	v.SetDefault("remote.timeout", 5*time.Second)
	v.SetDefault("server.addr", ":3000")
	v.SetDefault("server.mode", "release")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_backups", 3)
}

// Load reads the configuration. flags may be nil.
func Load(flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if err := bindEnv(v); err != nil {
		return nil, err
	}

	var explicit string
	if flags != nil {
		for name, key := range flagKeys {
			f := flags.Lookup(name)
			if f == nil {
				continue
			}
			if name == "config" {
				explicit = f.Value.String()
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}
	if explicit == "" {
		explicit = os.Getenv(envPrefix + "_CONFIG")
	}

	if err := readFile(v, explicit); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// bindEnv binds every known key to its TIMESTABLES_* variable. Keys are
// bound one by one instead of through AutomaticEnv: with AutomaticEnv a
// variable named after a parent key (TIMESTABLES_DB) shadows the whole
// db section.
func bindEnv(v *viper.Viper) error {
	replacer := strings.NewReplacer(".", "_")
	for _, key := range v.AllKeys() {
		names := []string{envPrefix + "_" + strings.ToUpper(replacer.Replace(key))}
		if key == "db.path" {
			// TIMESTABLES_DB is accepted as a short form.
			names = append(names, envPrefix+"_DB")
		}
		if err := v.BindEnv(append([]string{key}, names...)...); err != nil {
			return fmt.Errorf("bind env %s: %w", key, err)
		}
	}
	return nil
}

func readFile(v *viper.Viper, explicit string) error {
	if explicit != "" {
		v.SetConfigFile(explicit)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", explicit, err)
		}
		return nil
	}

	v.SetConfigName("timestables")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if dir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(dir, "timestables"))
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// Validate checks the values that cannot be defaulted sensibly.
func (c *Config) Validate() error {
	switch c.DB.Type {
	case store.TypeSQLite:
	case store.TypeMySQL, store.TypePostgres:
		if c.DB.URL == "" {
			return fmt.Errorf("db.url is required for db.type %q", c.DB.Type)
		}
	default:
		return fmt.Errorf("unsupported db.type %q", c.DB.Type)
	}

	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("unsupported server.mode %q", c.Server.Mode)
	}

	if c.Remote.Timeout <= 0 {
		return errors.New("remote.timeout must be positive")
	}
	return nil
}

// OpenStore opens the configured local store, resolving the default
// sqlite path when none is set.
func (c *Config) OpenStore() (*store.Store, error) {
	if c.DB.Type != store.TypeSQLite {
		return store.OpenType(c.DB.Type, c.DB.URL)
	}

	path := c.DB.Path
	if path == "" {
		p, err := store.DefaultDBPath()
		if err != nil {
			return nil, fmt.Errorf("resolve DB path: %w", err)
		}
		path = p
	} else if err := store.EnsureDir(path); err != nil {
		return nil, fmt.Errorf("create DB dir: %w", err)
	}
	return store.OpenType(store.TypeSQLite, path)
}
