package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const validYAML = `
server:
  addr: "127.0.0.1:9443"
  disable_mcp: true
  workers: 4
  shutdown_timeout: "3s"
dicts:
  dir: "/srv/dicts"
  default: "portul-en"
tagger:
  kind: "rule"
  lexicon: "/srv/lexicon.txt"
  lexicon_url: "https://example.org/lexicon.txt"
importer:
  check_interval: "6h"
log:
  level: "debug"
  format: "json"
`

func TestLoad_YAML(t *testing.T) {
	cfg, err := Load(writeFile(t, "portul.yaml", validYAML))
	require.NoError(t, err)

	require.Equal(t, "127.0.0.1:9443", cfg.Server.Addr)
	require.True(t, cfg.Server.DisableMCP)
	require.Equal(t, 4, cfg.Server.Workers)
	require.Equal(t, 3*time.Second, cfg.Server.ShutdownTimeout)
	require.Equal(t, "/srv/dicts", cfg.Dicts.Dir)
	require.Equal(t, "portul-en", cfg.Dicts.Default)
	require.Equal(t, "/srv/lexicon.txt", cfg.Tagger.Lexicon)
	require.Equal(t, 30*time.Second, cfg.Tagger.Timeout)
	require.Equal(t, 6*time.Hour, cfg.Importer.CheckInterval)
	require.Equal(t, "/srv/dicts/sources.db", cfg.SourcesDBPath())

	lvl, err := cfg.Log.SlogLevel()
	require.NoError(t, err)
	require.Equal(t, slog.LevelDebug, lvl)
}

func TestLoad_TOML(t *testing.T) {
	path := writeFile(t, "portul.toml", `
[server]
addr = ":7443"

[tagger]
kind = "remote"
endpoint = "http://localhost:5001"

[log]
format = "text"
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, ":7443", cfg.Server.Addr)
	require.Equal(t, TaggerRemote, cfg.Tagger.Kind)
	require.Equal(t, "http://localhost:5001", cfg.Tagger.Endpoint)
	require.Equal(t, "dicts", cfg.Dicts.Dir)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, "portul.yaml", validYAML)
	t.Setenv("PORTUL_ADDR", ":1234")
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, ":1234", cfg.Server.Addr)
	require.Equal(t, "warn", cfg.Log.Level)
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CONFIG_PATH", "")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, ":8443", cfg.Server.Addr)
	require.False(t, cfg.Server.DisableMCP)
	require.Equal(t, "dicts", cfg.Dicts.Dir)
	require.Equal(t, "portul", cfg.Dicts.Default)
	require.Equal(t, TaggerRule, cfg.Tagger.Kind)
	require.Equal(t, "text", cfg.Log.Format)
	require.Equal(t, filepath.Join("dicts", "sources.db"), cfg.SourcesDBPath())
}

func TestLoad_ConfigPathEnv(t *testing.T) {
	t.Setenv("CONFIG_PATH", writeFile(t, "c.yaml", validYAML))
	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "/srv/dicts", cfg.Dicts.Dir)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			Server: ServerConfig{Addr: ":8443"},
			Dicts:  DictsConfig{Dir: "dicts"},
			Tagger: TaggerConfig{Kind: TaggerRule},
			Log:    LogConfig{Level: "info", Format: "text"},
		}
	}
	require.NoError(t, func() error { c := base(); return c.Validate() }())

	cases := map[string]func(*Config){
		"no addr":           func(c *Config) { c.Server.Addr = "" },
		"cert without key":  func(c *Config) { c.Server.CertFile = "cert.pem" },
		"negative workers":  func(c *Config) { c.Server.Workers = -1 },
		"no dicts dir":      func(c *Config) { c.Dicts.Dir = "" },
		"unknown tagger":    func(c *Config) { c.Tagger.Kind = "spacy" },
		"remote without ep": func(c *Config) { c.Tagger.Kind = TaggerRemote },
		"url without path":  func(c *Config) { c.Tagger.LexiconURL = "https://x" },
		"bad level":         func(c *Config) { c.Log.Level = "loud" },
		"bad format":        func(c *Config) { c.Log.Format = "xml" },
		"negative interval": func(c *Config) { c.Importer.CheckInterval = -time.Second },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := base()
			mutate(&c)
			require.Error(t, c.Validate())
		})
	}
}
