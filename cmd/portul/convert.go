// CLAUDE:SUMMARY One-shot conversion of command-line or stdin text, with an optional per-token explain table.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/hazyhaar/portul/pkg/convert"
)

func cmdConvert(args []string) {
	fs := flag.NewFlagSet("convert", flag.ExitOnError)
	cfgPath := fs.String("config", "", "path to config file (YAML or TOML)")
	dictID := fs.String("dict", "", "dictionary ID (default: dicts.default)")
	direction := fs.String("direction", "forward", "forward (traditional to alternate) or reverse")
	reverse := fs.Bool("reverse", false, "shorthand for --direction reverse")
	explain := fs.Bool("explain", false, "print the per-token breakdown instead of the text")
	asJSON := fs.Bool("json", false, "with --explain, print JSON instead of a table")
	fs.Parse(args)

	cfg, logger := setup(*cfgPath)

	text := strings.Join(fs.Args(), " ")
	if fs.NArg() == 0 {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			fatal(logger, "read stdin", err)
		}
		text = string(data)
	}
	if *reverse {
		*direction = "reverse"
	}

	ctx := context.Background()
	svc := newService(ctx, cfg, logger)
	req := convert.Request{Text: text, Dict: *dictID, Direction: *direction}

	if !*explain {
		res, err := svc.Convert(ctx, req)
		if err != nil {
			fatal(logger, "convert", err)
		}
		fmt.Print(res.Text)
		if fs.NArg() > 0 {
			fmt.Println()
		}
		return
	}

	ex, err := svc.Explain(ctx, req)
	if err != nil {
		fatal(logger, "explain", err)
	}
	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(ex); err != nil {
			fatal(logger, "encode", err)
		}
		return
	}
	fmt.Println(explainTable(ex))
}

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

// explainTable renders one row per token. Whitespace is shown quoted so
// that tabs and newlines stay visible.
func explainTable(ex *convert.Explanation) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("TOKEN", "TAG", "POS", "TIER", "OUTPUT", "WS").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	for _, tok := range ex.Tokens {
		ws := ""
		if tok.Whitespace != "" {
			ws = fmt.Sprintf("%q", tok.Whitespace)
		}
		t.Row(tok.Text, tok.Tag, string(tok.POS), tok.Tier, tok.Output, ws)
	}
	return fmt.Sprintf("dict %s, %s\n%s\n%s", ex.Dict, ex.Direction, t.String(), ex.Output)
}
