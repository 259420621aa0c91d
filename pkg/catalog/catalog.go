// Package catalog holds the read-only registry of known books and their
// editions, and resolves free-text book/edition references against it.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
)

// VersionInfo describes one edition of a book.
type VersionInfo struct {
	Version     string `json:"version"`
	Filename    string `json:"filename"`
	ISBN        string `json:"isbn,omitempty"`
	Publisher   string `json:"publisher,omitempty"`
	PublishYear string `json:"publish_year,omitempty"`
}

// Book is a catalog entry: one title with its available editions.
type Book struct {
	Id       string        `json:"id"`
	Name     string        `json:"name"`
	Versions []VersionInfo `json:"versions"`
}

// Catalog is the full registry. The core treats it as read-only input; it is
// loaded once at startup and never mutated.
type Catalog struct {
	Books []Book `json:"books"`
}

// Load reads the catalog from a JSON file (the books metadata file produced
// by the ingestion tooling).
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}

	var c Catalog
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	return &c, nil
}
