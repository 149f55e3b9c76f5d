package dict

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// Registry holds all loaded dictionaries keyed by manifest ID.
// Dictionaries are immutable; Reload swaps the whole set.
type Registry struct {
	mu       sync.RWMutex
	dicts    map[string]*Dictionary
	dictsDir string
}

// NewRegistry creates a new empty registry for the given directory.
func NewRegistry(dictsDir string) *Registry {
	return &Registry{
		dicts:    make(map[string]*Dictionary),
		dictsDir: dictsDir,
	}
}

// Load scans the dicts directory and loads every subdirectory holding a manifest.
func (r *Registry) Load() error {
	entries, err := os.ReadDir(r.dictsDir)
	if err != nil {
		return fmt.Errorf("%w: read dicts dir %s: %w", ErrDataLoad, r.dictsDir, err)
	}

	newDicts := make(map[string]*Dictionary)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(r.dictsDir, entry.Name())
		if _, err := FindManifest(dir); err != nil {
			continue
		}
		d, err := LoadDictionary(dir)
		if err != nil {
			return fmt.Errorf("load dictionary %s: %w", entry.Name(), err)
		}
		newDicts[d.ID()] = d
	}

	r.mu.Lock()
	r.dicts = newDicts
	r.mu.Unlock()
	return nil
}

// Reload reloads all dictionaries from disk (hot reload). On error the
// previously loaded set stays in place.
func (r *Registry) Reload() error {
	return r.Load()
}

// Add registers an in-memory dictionary, replacing any with the same ID.
func (r *Registry) Add(d *Dictionary) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dicts[d.ID()] = d
}

// Get returns the dictionary with the given ID.
func (r *Registry) Get(id string) (*Dictionary, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.dicts[id]
	return d, ok
}

// DictInfo is the public metadata for a loaded dictionary.
type DictInfo struct {
	ID        string `json:"id"`
	Version   string `json:"version"`
	Language  string `json:"language"`
	Spelling  string `json:"spelling"`
	Source    string `json:"source"`
	SourceURL string `json:"source_url,omitempty"`
	License   string `json:"license"`
	Rows      int    `json:"rows"`
}

// ListDicts returns metadata for all loaded dictionaries, sorted by ID.
func (r *Registry) ListDicts() []DictInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]DictInfo, 0, len(r.dicts))
	for _, d := range r.dicts {
		infos = append(infos, DictInfo{
			ID:        d.Manifest.ID,
			Version:   d.Manifest.Version,
			Language:  d.Manifest.Language,
			Spelling:  d.Manifest.Spelling,
			Source:    d.Manifest.Source,
			SourceURL: d.Manifest.SourceURL,
			License:   d.Manifest.License,
			Rows:      len(d.Rows),
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos
}

// DictCount returns the number of loaded dictionaries.
func (r *Registry) DictCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.dicts)
}

// TotalEntries returns the total number of rows across all dictionaries.
func (r *Registry) TotalEntries() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	total := 0
	for _, d := range r.dicts {
		total += len(d.Rows)
	}
	return total
}
