package ingest

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Article is one feed entry.
type Article struct {
	URL     string `yaml:"url"`
	Title   string `yaml:"title"`
	Content string `yaml:"content"`
}

type feedFile struct {
	Articles []Article `yaml:"articles"`
}

// ReadFeed decodes a feed document. YAML and JSON are both accepted:
//
//	articles:
//	  - url: https://example.com/a
//	    title: A
//	    content: ...
func ReadFeed(r io.Reader) ([]Article, error) {
	var f feedFile
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("decode feed: %w", err)
	}
	return f.Articles, nil
}

// LoadFeed reads a feed file from disk.
func LoadFeed(path string) ([]Article, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open feed: %w", err)
	}
	defer f.Close() //nolint:errcheck // read-only

	return ReadFeed(f)
}
