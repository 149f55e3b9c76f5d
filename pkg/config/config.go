// Package config loads portul settings from a YAML or TOML file plus
// environment variables. Priority: ENV > file > env-default tags.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// DefaultPath is tried when neither the caller nor CONFIG_PATH names a file.
const DefaultPath = "./portul.yaml"

// Config is the root application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"   toml:"server"`
	Dicts    DictsConfig    `yaml:"dicts"    toml:"dicts"`
	Tagger   TaggerConfig   `yaml:"tagger"   toml:"tagger"`
	Importer ImporterConfig `yaml:"importer" toml:"importer"`
	Log      LogConfig      `yaml:"log"      toml:"log"`
}

// ServerConfig holds chassis settings. TCP and UDP share Addr.
type ServerConfig struct {
	Addr            string        `yaml:"addr"             toml:"addr"             env:"PORTUL_ADDR"             env-default:":8443"`
	CertFile        string        `yaml:"cert_file"        toml:"cert_file"        env:"PORTUL_CERT_FILE"`
	KeyFile         string        `yaml:"key_file"         toml:"key_file"         env:"PORTUL_KEY_FILE"`
	DisableMCP      bool          `yaml:"disable_mcp"      toml:"disable_mcp"      env:"PORTUL_DISABLE_MCP"`
	Workers         int           `yaml:"workers"          toml:"workers"          env:"PORTUL_WORKERS"          env-default:"0"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" toml:"shutdown_timeout" env:"PORTUL_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// DictsConfig locates dictionaries.
type DictsConfig struct {
	Dir     string `yaml:"dir"     toml:"dir"     env:"PORTUL_DICTS_DIR"    env-default:"dicts"`
	Default string `yaml:"default" toml:"default" env:"PORTUL_DEFAULT_DICT" env-default:"portul"`
}

// Tagger kinds.
const (
	TaggerRule   = "rule"
	TaggerRemote = "remote"
)

// TaggerConfig selects and configures the tokenizer/tagger.
type TaggerConfig struct {
	Kind       string        `yaml:"kind"        toml:"kind"        env:"PORTUL_TAGGER"             env-default:"rule"`
	Lexicon    string        `yaml:"lexicon"     toml:"lexicon"     env:"PORTUL_TAGGER_LEXICON"`
	LexiconURL string        `yaml:"lexicon_url" toml:"lexicon_url" env:"PORTUL_TAGGER_LEXICON_URL"`
	Endpoint   string        `yaml:"endpoint"    toml:"endpoint"    env:"PORTUL_TAGGER_ENDPOINT"`
	Timeout    time.Duration `yaml:"timeout"     toml:"timeout"     env:"PORTUL_TAGGER_TIMEOUT"     env-default:"30s"`
	// Serial sends one tokenize call at a time, for taggers that are not
	// safe for concurrent use.
	Serial bool `yaml:"serial" toml:"serial" env:"PORTUL_TAGGER_SERIAL"`
}

// ImporterConfig holds source database and availability checker settings.
type ImporterConfig struct {
	SourcesDB     string        `yaml:"sources_db"     toml:"sources_db"     env:"PORTUL_SOURCES_DB"`
	CheckInterval time.Duration `yaml:"check_interval" toml:"check_interval" env:"PORTUL_CHECK_INTERVAL" env-default:"0s"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  toml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" toml:"format" env:"LOG_FORMAT" env-default:"text"`
}

// Load reads path (YAML or TOML by extension) and the environment.
// An empty path falls back to CONFIG_PATH, then DefaultPath. A missing
// file is only an error when it was named explicitly.
func Load(path string) (*Config, error) {
	var cfg Config

	explicit := path != ""
	if !explicit {
		path = os.Getenv("CONFIG_PATH")
		explicit = path != ""
	}
	if !explicit {
		path = DefaultPath
	}

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else if explicit {
		return nil, fmt.Errorf("config: file %s: %w", path, err)
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config: read env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return &cfg, nil
}

// Validate checks cross-field rules that tags cannot express.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if (c.Server.CertFile == "") != (c.Server.KeyFile == "") {
		return fmt.Errorf("server.cert_file and server.key_file must be set together")
	}
	if c.Server.Workers < 0 {
		return fmt.Errorf("server.workers must be >= 0 (got %d)", c.Server.Workers)
	}
	if c.Dicts.Dir == "" {
		return fmt.Errorf("dicts.dir is required")
	}

	switch c.Tagger.Kind {
	case TaggerRule:
	case TaggerRemote:
		if c.Tagger.Endpoint == "" {
			return fmt.Errorf("tagger.endpoint is required for the remote tagger")
		}
	default:
		return fmt.Errorf("tagger.kind must be %q or %q (got %q)", TaggerRule, TaggerRemote, c.Tagger.Kind)
	}
	if c.Tagger.LexiconURL != "" && c.Tagger.Lexicon == "" {
		return fmt.Errorf("tagger.lexicon_url needs tagger.lexicon as download target")
	}

	if c.Importer.CheckInterval < 0 {
		return fmt.Errorf("importer.check_interval must be >= 0")
	}

	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json (got %q)", c.Log.Format)
	}
	return nil
}

// SourcesDBPath returns the importer source database path, defaulting to
// sources.db inside the dicts directory.
func (c *Config) SourcesDBPath() string {
	if c.Importer.SourcesDB != "" {
		return c.Importer.SourcesDB
	}
	return filepath.Join(c.Dicts.Dir, "sources.db")
}

// SlogLevel parses Level.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(l.Level))); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return lvl, nil
}
