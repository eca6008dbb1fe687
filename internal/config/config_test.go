package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/timestables/internal/store"
)

// isolate keeps the developer's own config and env out of the test.
func isolate(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)
	for _, k := range []string{"TIMESTABLES_DB", "TIMESTABLES_DB_PATH", "TIMESTABLES_DB_TYPE", "TIMESTABLES_DB_URL", "TIMESTABLES_CONFIG", "TIMESTABLES_REMOTE_URL"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func testFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("config", "", "")
	fs.String("db", "", "")
	fs.String("remote", "", "")
	fs.String("addr", "", "")
	fs.String("log-level", "", "")
	return fs
}

func TestDefaults(t *testing.T) {
	isolate(t)
	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, store.TypeSQLite, cfg.DB.Type)
	assert.Empty(t, cfg.DB.Path)
	assert.Empty(t, cfg.Remote.URL)
	assert.Equal(t, 5*time.Second, cfg.Remote.Timeout)
	assert.Equal(t, ":3000", cfg.Server.Addr)
	assert.Equal(t, "release", cfg.Server.Mode)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestEnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("TIMESTABLES_DB", "/tmp/x.db")
	t.Setenv("TIMESTABLES_REMOTE_URL", "http://localhost:3000")
	t.Setenv("TIMESTABLES_REMOTE_TIMEOUT", "2s")
	t.Setenv("TIMESTABLES_SERVER_ADDR", ":8080")

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/x.db", cfg.DB.Path)
	assert.Equal(t, "http://localhost:3000", cfg.Remote.URL)
	assert.Equal(t, 2*time.Second, cfg.Remote.Timeout)
	assert.Equal(t, ":8080", cfg.Server.Addr)
}

func TestShortDBVariableKeepsOtherDBKeys(t *testing.T) {
	isolate(t)
	t.Setenv("TIMESTABLES_DB", "/tmp/short.db")

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/short.db", cfg.DB.Path)
	assert.Equal(t, store.TypeSQLite, cfg.DB.Type)
	assert.Empty(t, cfg.DB.URL)
}

func TestLongDBVariableWins(t *testing.T) {
	isolate(t)
	t.Setenv("TIMESTABLES_DB", "/tmp/short.db")
	t.Setenv("TIMESTABLES_DB_PATH", "/tmp/long.db")
	t.Setenv("TIMESTABLES_DB_TYPE", "postgres")
	t.Setenv("TIMESTABLES_DB_URL", "postgres://localhost/tt")

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/long.db", cfg.DB.Path)
	assert.Equal(t, store.TypePostgres, cfg.DB.Type)
	assert.Equal(t, "postgres://localhost/tt", cfg.DB.URL)
}

func TestFileThenEnvThenFlag(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
db:
  path: /from/file.db
server:
  addr: ":4000"
log:
  level: debug
`), 0o644))

	t.Setenv("TIMESTABLES_SERVER_ADDR", ":5000")

	fs := testFlags()
	require.NoError(t, fs.Parse([]string{"--config", path, "--log-level", "warn"}))

	cfg, err := Load(fs)
	require.NoError(t, err)
	assert.Equal(t, "/from/file.db", cfg.DB.Path)
	assert.Equal(t, ":5000", cfg.Server.Addr)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestConfigFileDiscoveredInWorkingDir(t *testing.T) {
	isolate(t)
	require.NoError(t, os.WriteFile("timestables.yaml", []byte("remote:\n  url: http://example.test\n"), 0o644))

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, "http://example.test", cfg.Remote.URL)
}

func TestExplicitConfigMissing(t *testing.T) {
	isolate(t)
	fs := testFlags()
	require.NoError(t, fs.Parse([]string{"--config", filepath.Join(t.TempDir(), "nope.yaml")}))

	_, err := Load(fs)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			DB:     DBConfig{Type: store.TypeSQLite},
			Remote: RemoteConfig{Timeout: time.Second},
			Server: ServerConfig{Mode: "release"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"sqlite", func(*Config) {}, false},
		{"mysql with url", func(c *Config) { c.DB.Type = store.TypeMySQL; c.DB.URL = "u:p@/db" }, false},
		{"postgres without url", func(c *Config) { c.DB.Type = store.TypePostgres }, true},
		{"unknown db", func(c *Config) { c.DB.Type = "oracle" }, true},
		{"bad mode", func(c *Config) { c.Server.Mode = "prod" }, true},
		{"zero timeout", func(c *Config) { c.Remote.Timeout = 0 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestOpenStoreCreatesSQLiteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "game.db")
	cfg := &Config{DB: DBConfig{Type: store.TypeSQLite, Path: path}}

	st, err := cfg.OpenStore()
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	_, err = os.Stat(path)
	assert.NoError(t, err)
}
