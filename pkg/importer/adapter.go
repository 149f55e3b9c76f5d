// CLAUDE:SUMMARY Adapter contract for dictionary sources and the process-wide adapter catalog.
package importer

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"
)

// ErrUnknownSource is returned for adapter IDs that are neither registered
// nor present in the source database.
var ErrUnknownSource = errors.New("unknown import source")

// Adapter fetches one public dictionary source and turns it into a
// dictionary directory the registry can load.
type Adapter interface {
	// ID names the source, e.g. "altspell-portul".
	ID() string
	// DictID is the manifest ID of the dictionary the source produces.
	DictID() string
	Description() string
	// DefaultURL seeds the source database; operators may override it.
	DefaultURL() string
	License() string
	// Import downloads sourceURL and writes data.gob and manifest.yaml into
	// outputDir/DictID().
	Import(ctx context.Context, sourceURL, outputDir string) (*Report, error)
}

// Report summarises a successful import.
type Report struct {
	AdapterID string
	DictID    string
	Dir       string
	Rows      int
	Elapsed   time.Duration
}

var (
	catalogMu sync.RWMutex
	catalog   = make(map[string]Adapter)
)

// Register adds an adapter to the catalog. Registering an empty or
// duplicate ID panics, as it can only be a programming error.
func Register(a Adapter) {
	catalogMu.Lock()
	defer catalogMu.Unlock()
	id := a.ID()
	if id == "" {
		panic("importer: Register with empty adapter ID")
	}
	if _, dup := catalog[id]; dup {
		panic("importer: Register called twice for " + id)
	}
	catalog[id] = a
}

// Get returns the adapter registered under id.
func Get(id string) (Adapter, error) {
	catalogMu.RLock()
	defer catalogMu.RUnlock()
	a, ok := catalog[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, id)
	}
	return a, nil
}

// All returns every registered adapter sorted by ID.
func All() []Adapter {
	catalogMu.RLock()
	defer catalogMu.RUnlock()
	return slices.SortedFunc(maps.Values(catalog), func(a, b Adapter) int {
		return cmp.Compare(a.ID(), b.ID())
	})
}
