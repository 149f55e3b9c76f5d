// CLAUDE:SUMMARY CSV dictionary adapter (plain or zipped) plus the built-in altspell Portul source.
package importer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hazyhaar/portul/pkg/dict"
)

// PortulSourceURL is the default location of the Portul dictionary CSV.
const PortulSourceURL = "https://raw.githubusercontent.com/altspell/altspell-portul/main/src/altspell_portul/data/portul-dict.csv"

func init() {
	Register(NewCSVAdapter(CSVSource{
		ID:          "altspell-portul",
		DictID:      "portul",
		Description: "Portul spelling dictionary (altspell project)",
		URL:         PortulSourceURL,
		License:     "GPL-3.0-or-later",
		Language:    "en",
		Spelling:    "Portul",
	}))
}

// CSVSource describes a remote dictionary published as a CSV file with the
// columns traditional, alternate, reserved, part of speech. The file may be
// served as-is or inside a ZIP archive.
type CSVSource struct {
	ID          string
	DictID      string
	Description string
	URL         string
	License     string
	Language    string
	Spelling    string
	Format      dict.FormatSpec
}

// CSVAdapter imports a CSVSource into a gob-backed dictionary directory.
type CSVAdapter struct {
	src CSVSource
}

// NewCSVAdapter returns an adapter for src.
func NewCSVAdapter(src CSVSource) *CSVAdapter {
	return &CSVAdapter{src: src}
}

func (a *CSVAdapter) ID() string          { return a.src.ID }
func (a *CSVAdapter) DictID() string      { return a.src.DictID }
func (a *CSVAdapter) Description() string { return a.src.Description }
func (a *CSVAdapter) DefaultURL() string  { return a.src.URL }
func (a *CSVAdapter) License() string     { return a.src.License }

// Import downloads sourceURL, validates every row and writes data.gob and
// manifest.yaml into outputDir/DictID. Nothing is written when the source
// contains no rows or a malformed one.
func (a *CSVAdapter) Import(ctx context.Context, sourceURL, outputDir string) (*Report, error) {
	start := time.Now()
	dlDir := filepath.Join(outputDir, "_download")
	if err := ensureDir(dlDir); err != nil {
		return nil, err
	}
	defer os.RemoveAll(dlDir)

	name := "source.csv"
	if strings.HasSuffix(strings.ToLower(sourceURL), ".zip") {
		name = "source.zip"
	}
	dlPath := filepath.Join(dlDir, name)
	slog.Info("downloading dictionary source", "adapter", a.src.ID, "url", sourceURL)
	if err := Fetch(ctx, sourceURL, dlPath); err != nil {
		return nil, fmt.Errorf("download: %w", err)
	}

	csvPath, err := a.csvFile(dlPath, dlDir)
	if err != nil {
		return nil, err
	}

	rows, err := dict.LoadRowsFile(csvPath, a.src.Format)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(csvPath), err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s has no rows", dict.ErrDataLoad, sourceURL)
	}
	slog.Info("dictionary rows parsed", "adapter", a.src.ID, "rows", len(rows))

	dictDir := filepath.Join(outputDir, a.src.DictID)
	if err := ensureDir(dictDir); err != nil {
		return nil, err
	}
	if err := dict.SaveGob(rows, filepath.Join(dictDir, "data.gob")); err != nil {
		return nil, fmt.Errorf("save gob: %w", err)
	}

	err = writeManifest(dictDir, &dict.Manifest{
		ID:        a.src.DictID,
		Version:   time.Now().UTC().Format("2006-01-02"),
		Language:  a.src.Language,
		Spelling:  a.src.Spelling,
		Source:    a.src.Description,
		SourceURL: sourceURL,
		License:   a.src.License,
		DataFile:  "data.gob",
		Format:    a.src.Format,
	})
	if err != nil {
		return nil, err
	}
	return &Report{
		AdapterID: a.src.ID,
		DictID:    a.src.DictID,
		Dir:       dictDir,
		Rows:      len(rows),
		Elapsed:   time.Since(start),
	}, nil
}

// csvFile returns the CSV to parse: the download itself, or the first .csv
// entry of a ZIP archive.
func (a *CSVAdapter) csvFile(dlPath, dlDir string) (string, error) {
	if filepath.Ext(dlPath) != ".zip" {
		return dlPath, nil
	}
	files, err := unzipFile(dlPath, dlDir)
	if err != nil {
		return "", fmt.Errorf("unzip: %w", err)
	}
	for _, f := range files {
		if strings.EqualFold(filepath.Ext(f), ".csv") {
			return f, nil
		}
	}
	return "", fmt.Errorf("no .csv file in %s", filepath.Base(dlPath))
}
