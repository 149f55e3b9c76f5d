package dict

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestSaveGobLoadGob_KeepsOrder(t *testing.T) {
	rows := []Row{
		{Trad: "through", Alt: "thru", POS: POSNone},
		{Trad: "read", Alt: "reed", Reserved: "r", POS: POSVerb},
		{Trad: "through", Alt: "throo"},
	}

	path := filepath.Join(t.TempDir(), "data.gob")
	if err := SaveGob(rows, path); err != nil {
		t.Fatalf("SaveGob: %v", err)
	}

	got, err := loadGob(path)
	if err != nil {
		t.Fatalf("loadGob: %v", err)
	}
	if len(got) != len(rows) {
		t.Fatalf("rows = %d, want %d", len(got), len(rows))
	}
	for i := range rows {
		if got[i] != rows[i] {
			t.Errorf("row %d = %+v, want %+v", i, got[i], rows[i])
		}
	}

	// Duplicate resolution must match the CSV path.
	if alt, _ := BuildForwardIndex(got).Get("through", POSNone); alt != "throo" {
		t.Errorf("through = %q, want throo", alt)
	}
}

func TestLoadDictionary_PrefersGob(t *testing.T) {
	dir := writeTestDict(t, "gob-pref", "cat,kat,,\n")
	dictDir := filepath.Join(dir, "gob-pref")

	if err := SaveGob([]Row{{Trad: "gobonly", Alt: "gobwun"}}, filepath.Join(dictDir, "data.gob")); err != nil {
		t.Fatalf("SaveGob: %v", err)
	}

	d, err := LoadDictionary(dictDir)
	if err != nil {
		t.Fatalf("LoadDictionary: %v", err)
	}
	if _, ok := d.Forward.Get("gobonly", POSNone); !ok {
		t.Error("expected key 'gobonly' from gob file")
	}
	if _, ok := d.Forward.Get("cat", POSNone); ok {
		t.Error("key 'cat' should not exist, gob takes priority over csv")
	}
}

func TestLoadDictionary_CorruptGob(t *testing.T) {
	dir := writeTestDict(t, "bad-gob", "cat,kat,,\n")
	dictDir := filepath.Join(dir, "bad-gob")
	writeFile(t, filepath.Join(dictDir, "data.gob"), "not a gob stream")

	_, err := LoadDictionary(dictDir)
	if !errors.Is(err, ErrDataLoad) {
		t.Fatalf("err = %v, want ErrDataLoad", err)
	}
}

func TestSaveGob_InvalidPath(t *testing.T) {
	if err := SaveGob(nil, "/nonexistent/dir/data.gob"); err == nil {
		t.Error("expected error for invalid path")
	}
}
