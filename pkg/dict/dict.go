package dict

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/tchap/go-patricia/v2/patricia"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

// ErrDataLoad is returned when a dictionary source is missing, unreadable or malformed.
var ErrDataLoad = errors.New("dictionary data load failed")

// minColumns is traditional, alternate, reserved, part of speech.
const minColumns = 4

// Dictionary is one loaded spelling dictionary: its manifest, the source rows
// and both lookup indices. It is never mutated after construction.
type Dictionary struct {
	Manifest *Manifest   `json:"manifest"`
	Rows     []Row        `json:"-"`
	Forward  ForwardIndex `json:"-"`
	Reverse  ReverseIndex `json:"-"`
	fwdWords *patricia.Trie
	revWords *patricia.Trie
}

// LoadDictionary reads the manifest in dir and loads rows from data.gob when
// present, otherwise from the manifest's CSV data file.
func LoadDictionary(dir string) (*Dictionary, error) {
	manifestPath, err := FindManifest(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDataLoad, err)
	}
	manifest, err := LoadManifest(manifestPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDataLoad, err)
	}

	// Gob takes priority over CSV.
	gobPath := filepath.Join(dir, "data.gob")
	if _, err := os.Stat(gobPath); err == nil {
		rows, err := loadGob(gobPath)
		if err != nil {
			return nil, fmt.Errorf("%w: dict %s: %w", ErrDataLoad, manifest.ID, err)
		}
		return FromRows(manifest, rows), nil
	}

	rows, err := LoadRowsFile(filepath.Join(dir, manifest.DataFile), manifest.Format)
	if err != nil {
		return nil, fmt.Errorf("dict %s: %w", manifest.ID, err)
	}
	return FromRows(manifest, rows), nil
}

// LoadRowsFile opens a CSV file and reads it with ReadRows.
func LoadRowsFile(path string, format FormatSpec) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open data file: %w", ErrDataLoad, err)
	}
	defer f.Close()
	return ReadRows(f, format)
}

// ReadRows parses the source table. Every record needs at least four columns;
// values are kept verbatim and an empty part of speech means no constraint.
func ReadRows(r io.Reader, format FormatSpec) ([]Row, error) {
	// Transcode non-UTF-8 encodings declared in the manifest.
	if enc := format.Encoding; enc != "" && !isUTF8(enc) {
		e, err := htmlindex.Get(enc)
		if err != nil {
			return nil, fmt.Errorf("%w: unsupported encoding %q: %w", ErrDataLoad, enc, err)
		}
		r = transform.NewReader(r, e.NewDecoder())
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	// A stray quote inside an unquoted field (six"foot) is literal text.
	cr.LazyQuotes = true
	if delim := format.Delimiter; delim != "" {
		cr.Comma = []rune(delim)[0]
	}
	if c := format.Comment; c != "" {
		cr.Comment = []rune(c)[0]
	}

	if format.HasHeader {
		if _, err := cr.Read(); err != nil {
			if err == io.EOF {
				return nil, nil
			}
			return nil, fmt.Errorf("%w: read header: %w", ErrDataLoad, err)
		}
	}

	var rows []Row
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: read row: %w", ErrDataLoad, err)
		}
		if len(record) < minColumns {
			line, _ := cr.FieldPos(0)
			return nil, fmt.Errorf("%w: line %d has %d columns, want at least %d", ErrDataLoad, line, len(record), minColumns)
		}
		rows = append(rows, Row{
			Trad:     record[0],
			Alt:      record[1],
			Reserved: record[2],
			POS:      POS(record[3]),
		})
	}
	return rows, nil
}

// FromRows builds a Dictionary from rows already in memory. manifest may be
// nil, in which case ID reports "".
func FromRows(manifest *Manifest, rows []Row) *Dictionary {
	d := &Dictionary{
		Manifest: manifest,
		Rows:     rows,
		Forward:  BuildForwardIndex(rows),
		Reverse:  BuildReverseIndex(rows),
		fwdWords: patricia.NewTrie(),
		revWords: patricia.NewTrie(),
	}
	for _, r := range rows {
		addWord(d.fwdWords, r.Trad)
		addWord(d.revWords, r.Alt)
	}

	fwdDup, revDup := len(rows)-len(d.Forward), len(rows)-len(d.Reverse)
	if fwdDup > 0 || revDup > 0 {
		slog.Warn("duplicate dictionary keys, last row wins",
			"dict", d.ID(), "forward", fwdDup, "reverse", revDup)
	}
	return d
}

// Lookup queries one index directly. pos is ignored in the reverse direction.
func (d *Dictionary) Lookup(dir Direction, word string, pos POS) (string, bool) {
	if dir == Reverse {
		return d.Reverse.Get(word)
	}
	return d.Forward.Get(word, pos)
}

// ID returns the manifest ID, or "" for a dictionary built without one.
func (d *Dictionary) ID() string {
	if d.Manifest == nil {
		return ""
	}
	return d.Manifest.ID
}

// addWord files a spelling under its lowercase form. Spellings that differ
// only by case ("Polish", "polish") share one trie key.
func addWord(trie *patricia.Trie, word string) {
	key := patricia.Prefix(strings.ToLower(word))
	if item := trie.Get(key); item != nil {
		words := item.([]string)
		if !slices.Contains(words, word) {
			trie.Set(key, append(words, word))
		}
		return
	}
	trie.Insert(key, []string{word})
}

func isUTF8(enc string) bool {
	e := strings.ToLower(strings.ReplaceAll(enc, "-", ""))
	return e == "utf8" || e == ""
}
