// CLAUDE:SUMMARY portul CLI: serve (HTTPS + HTTP/3 + MCP over QUIC), one-shot convert, msgpack pipe, MCP stdio, import.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hazyhaar/portul/pkg/api"
	"github.com/hazyhaar/portul/pkg/chassis"
	"github.com/hazyhaar/portul/pkg/config"
	"github.com/hazyhaar/portul/pkg/convert"
	"github.com/hazyhaar/portul/pkg/dict"
	"github.com/hazyhaar/portul/pkg/importer"
	"github.com/hazyhaar/portul/pkg/ipc"
	"github.com/hazyhaar/portul/pkg/tagger"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		cmdServe(os.Args[2:])
	case "convert":
		cmdConvert(os.Args[2:])
	case "pipe":
		cmdPipe(os.Args[2:])
	case "mcp":
		cmdMCP(os.Args[2:])
	case "import":
		cmdImport(os.Args[2:])
	case "version":
		fmt.Println("portul", version)
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: portul <command> [flags]

Commands:
  serve     Start the HTTPS, HTTP/3 and MCP-over-QUIC server
  convert   Convert text from arguments or stdin
  pipe      Serve msgpack conversion requests on stdin/stdout
  mcp       Serve MCP tools on stdin/stdout
  import    Download and build dictionaries from their public sources
  version   Print the version
`)
}

// fatal logs msg and exits.
func fatal(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, "error", err)
	os.Exit(1)
}

// setup loads the configuration and builds the process logger. Logs always
// go to stderr so that stdout stays free for pipe and mcp output.
func setup(cfgPath string) (*config.Config, *slog.Logger) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "portul: %v\n", err)
		os.Exit(1)
	}
	logger, err := newLogger(cfg.Log, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "portul: %v\n", err)
		os.Exit(1)
	}
	slog.SetDefault(logger)
	return cfg, logger
}

func newLogger(cfg config.LogConfig, w io.Writer) (*slog.Logger, error) {
	lvl, err := cfg.SlogLevel()
	if err != nil {
		return nil, err
	}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl})), nil
	}
	h := log.NewWithOptions(w, log.Options{
		Prefix:          "portul",
		Level:           log.Level(lvl),
		ReportTimestamp: true,
		Formatter:       log.TextFormatter,
	})
	return slog.New(h), nil
}

// newService loads the dictionaries and the tagger and assembles the
// conversion service. Failures here are fatal for every command.
func newService(ctx context.Context, cfg *config.Config, logger *slog.Logger) *convert.Service {
	reg := dict.NewRegistry(cfg.Dicts.Dir)
	if err := reg.Load(); err != nil {
		fatal(logger, "failed to load dictionaries", err)
	}
	if reg.DictCount() == 0 {
		logger.Warn("no dictionaries found, run `portul import --source altspell-portul`", "dir", cfg.Dicts.Dir)
	}
	logger.Info("dictionaries loaded", "count", reg.DictCount(), "entries", reg.TotalEntries())

	t, err := newTagger(ctx, cfg.Tagger, logger)
	if err != nil {
		fatal(logger, "failed to initialise tagger", err)
	}

	return convert.NewService(reg, t,
		convert.WithDefaultDict(cfg.Dicts.Default),
		convert.WithWorkers(cfg.Server.Workers),
		convert.WithLogger(logger),
	)
}

// newTagger builds the configured tagger. When the rule tagger's lexicon is
// unavailable and a download URL is configured, the lexicon is fetched and
// initialisation is retried once.
func newTagger(ctx context.Context, cfg config.TaggerConfig, logger *slog.Logger) (tagger.Tagger, error) {
	t, err := buildTagger(ctx, cfg)
	if errors.Is(err, tagger.ErrUnavailable) && cfg.Kind == config.TaggerRule && cfg.LexiconURL != "" {
		logger.Warn("tagger unavailable, downloading lexicon", "url", cfg.LexiconURL, "path", cfg.Lexicon, "error", err)
		if ferr := fetchLexicon(ctx, cfg); ferr != nil {
			return nil, fmt.Errorf("%w (lexicon download: %w)", err, ferr)
		}
		t, err = buildTagger(ctx, cfg)
	}
	if err != nil {
		return nil, err
	}
	if cfg.Serial {
		t = tagger.Locked(t)
	}
	logger.Info("tagger ready", "kind", cfg.Kind, "serial", cfg.Serial)
	return t, nil
}

func buildTagger(ctx context.Context, cfg config.TaggerConfig) (tagger.Tagger, error) {
	switch cfg.Kind {
	case config.TaggerRemote:
		r, err := tagger.NewRemote(ctx, cfg.Endpoint, &http.Client{Timeout: cfg.Timeout})
		if err != nil {
			return nil, err
		}
		return r, nil
	default:
		if cfg.Lexicon == "" {
			return tagger.NewRule(), nil
		}
		r, err := tagger.NewRuleFromFile(cfg.Lexicon)
		if err != nil {
			return nil, err
		}
		return r, nil
	}
}

func fetchLexicon(ctx context.Context, cfg config.TaggerConfig) error {
	if err := os.MkdirAll(filepath.Dir(cfg.Lexicon), 0o755); err != nil {
		return err
	}
	return importer.Fetch(ctx, cfg.LexiconURL, cfg.Lexicon)
}

func newMCPServer(svc *convert.Service, logger *slog.Logger) *server.MCPServer {
	srv := server.NewMCPServer("portul", version, server.WithToolCapabilities(false))
	api.RegisterMCPTools(srv, svc, logger)
	return srv
}

func cmdServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	cfgPath := fs.String("config", "", "path to config file (YAML or TOML)")
	fs.Parse(args)

	cfg, logger := setup(*cfgPath)

	// SIGINT/SIGTERM: graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc := newService(ctx, cfg, logger)
	reg := svc.Registry()

	var mcpSrv *server.MCPServer
	if !cfg.Server.DisableMCP {
		mcpSrv = newMCPServer(svc, logger)
	}

	srv, err := chassis.New(chassis.Config{
		Addr:      cfg.Server.Addr,
		CertFile:  cfg.Server.CertFile,
		KeyFile:   cfg.Server.KeyFile,
		Handler:   api.NewRouter(svc, logger),
		MCPServer: mcpSrv,
		Logger:    logger,
	})
	if err != nil {
		fatal(logger, "failed to create server", err)
	}

	// SIGHUP: hot reload dictionaries.
	sighup := make(chan os.Signal, 1)
	signal.Notify(sighup, syscall.SIGHUP)
	go func() {
		for range sighup {
			logger.Info("SIGHUP received, reloading dictionaries")
			if err := reg.Reload(); err != nil {
				logger.Error("reload failed", "error", err)
			} else {
				logger.Info("dictionaries reloaded", "count", reg.DictCount(), "entries", reg.TotalEntries())
			}
		}
	}()

	if cfg.Importer.CheckInterval > 0 {
		sdb, err := importer.OpenSourceDB(cfg.SourcesDBPath())
		if err != nil {
			fatal(logger, "failed to open source database", err)
		}
		defer sdb.Close()
		if err := sdb.Seed(ctx, importer.All()); err != nil {
			fatal(logger, "failed to seed source database", err)
		}
		go importer.NewChecker(sdb, logger, cfg.Importer.CheckInterval).Start(ctx)
	}

	if err := srv.Start(ctx); err != nil {
		logger.Error("server error", "error", err)
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		logger.Warn("shutdown", "error", err)
	}
}

func cmdPipe(args []string) {
	fs := flag.NewFlagSet("pipe", flag.ExitOnError)
	cfgPath := fs.String("config", "", "path to config file (YAML or TOML)")
	fs.Parse(args)

	cfg, logger := setup(*cfgPath)

	// Serve blocks on stdin; the default signal handling ends the process.
	ctx := context.Background()
	svc := newService(ctx, cfg, logger)
	if err := ipc.NewServer(svc, os.Stdin, os.Stdout, logger).Serve(ctx); err != nil {
		fatal(logger, "pipe", err)
	}
}

func cmdMCP(args []string) {
	fs := flag.NewFlagSet("mcp", flag.ExitOnError)
	cfgPath := fs.String("config", "", "path to config file (YAML or TOML)")
	fs.Parse(args)

	cfg, logger := setup(*cfgPath)
	svc := newService(context.Background(), cfg, logger)
	if err := server.ServeStdio(newMCPServer(svc, logger)); err != nil {
		fatal(logger, "mcp stdio", err)
	}
}
