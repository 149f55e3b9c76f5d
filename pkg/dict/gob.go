// CLAUDE:SUMMARY Gob serialization of dictionary rows for fast loading.
package dict

import (
	"encoding/gob"
	"fmt"
	"os"
)

// loadGob deserializes the row slice written by SaveGob. Row order is kept,
// so indices built from it resolve duplicates exactly like the CSV would.
func loadGob(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gob file: %w", err)
	}
	defer f.Close()

	var rows []Row
	if err := gob.NewDecoder(f).Decode(&rows); err != nil {
		return nil, fmt.Errorf("decode gob: %w", err)
	}
	return rows, nil
}

// SaveGob serializes rows to a gob-encoded file at path.
func SaveGob(rows []Row, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create gob file: %w", err)
	}
	defer f.Close()

	if err := gob.NewEncoder(f).Encode(rows); err != nil {
		return fmt.Errorf("encode gob: %w", err)
	}
	return nil
}
