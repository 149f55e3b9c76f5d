// CLAUDE:SUMMARY CLI subcommand that downloads and builds dictionaries from public sources via import adapters.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/hazyhaar/portul/pkg/importer"
)

func cmdImport(args []string) {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	cfgPath := fs.String("config", "", "path to config file (YAML or TOML)")
	source := fs.String("source", "", "adapter ID to import (e.g. altspell-portul)")
	all := fs.Bool("all", false, "import all available sources")
	outputDir := fs.String("output-dir", "", "output directory for dictionaries (default: dicts.dir)")
	url := fs.String("url", "", "with --source, store a new source URL before importing")
	fs.Parse(args)

	cfg, logger := setup(*cfgPath)
	if *outputDir == "" {
		*outputDir = cfg.Dicts.Dir
	}

	// Open source DB and seed defaults.
	sdb, err := importer.OpenSourceDB(cfg.SourcesDBPath())
	if err != nil {
		fatal(logger, "open source database", err)
	}
	defer sdb.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Hour)
	defer cancel()

	if err := sdb.Seed(ctx, importer.All()); err != nil {
		fatal(logger, "seed sources", err)
	}

	if !*all && *source == "" {
		sources, err := sdb.List(ctx)
		if err != nil {
			fatal(logger, "list sources", err)
		}
		fmt.Println("Available sources:")
		fmt.Println()
		for _, src := range sources {
			fmt.Printf("  %-20s  %s  (-> %s)%s\n", src.AdapterID, src.Description, src.DictID, sourceStatus(src))
			fmt.Printf("  %-20s  %s\n", "", src.URL)
		}
		fmt.Println()
		fmt.Println("Usage:")
		fmt.Println("  portul import --source <id> [--url <url>] [--output-dir <dir>]")
		fmt.Println("  portul import --all [--output-dir <dir>]")
		return
	}

	if *all {
		failed := 0
		for _, a := range importer.All() {
			if err := runImport(ctx, sdb, a, *outputDir); err != nil {
				logger.Error("import failed", "adapter", a.ID(), "error", err)
				failed++
			}
		}
		if failed > 0 {
			os.Exit(1)
		}
		return
	}

	a, err := importer.Get(*source)
	if err != nil {
		fmt.Fprintf(os.Stderr, "portul: %v\n\nAvailable sources:\n", err)
		for _, a := range importer.All() {
			fmt.Fprintf(os.Stderr, "  %s\n", a.ID())
		}
		os.Exit(1)
	}

	if *url != "" {
		if err := sdb.SetURL(ctx, a.ID(), *url); err != nil {
			fatal(logger, "set source url", err)
		}
	}

	if err := runImport(ctx, sdb, a, *outputDir); err != nil {
		fatal(logger, "import failed", err)
	}
	fmt.Println("send SIGHUP to a running server to reload its dictionaries")
}

func runImport(ctx context.Context, sdb *importer.SourceDB, a importer.Adapter, outputDir string) error {
	url, err := sdb.GetURL(ctx, a.ID())
	if err != nil {
		return err
	}
	fmt.Printf("[%s] importing %s\n", a.ID(), url)
	rep, err := a.Import(ctx, url, outputDir)
	if err != nil {
		return err
	}
	if err := sdb.RecordImport(ctx, rep); err != nil {
		return err
	}
	fmt.Printf("[%s] OK: %d rows -> %s (%s)\n", a.ID(), rep.Rows, rep.Dir, rep.Elapsed.Round(time.Millisecond))
	return nil
}

func sourceStatus(src importer.Source) string {
	var s string
	if !src.CheckedAt.IsZero() {
		s += fmt.Sprintf("  [HTTP %d]", src.CheckStatus)
	}
	if !src.ImportedAt.IsZero() {
		s += fmt.Sprintf("  [imported %s, %d rows]", src.ImportedAt.Format(time.DateOnly), src.ImportRows)
	}
	return s
}
