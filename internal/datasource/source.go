// Package datasource fetches the dataset a viewer session is built from. A
// session reads its source exactly once: an HTTP(S) endpoint, a local JSON
// document, or a layout database written by the exporter.
package datasource

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// ErrNoSource is returned when neither a URL nor a path is configured.
var ErrNoSource = errors.New("no data source configured")

// SourceType identifies how a source is read.
type SourceType string

const (
	// SourceTypeHTTP is a JSON document served over HTTP(S).
	SourceTypeHTTP SourceType = "http"
	// SourceTypeFile is a local JSON document.
	SourceTypeFile SourceType = "file"
	// SourceTypeSQLite is a layout database produced by the exporter.
	SourceTypeSQLite SourceType = "sqlite"
)

// Source describes where the dataset comes from.
type Source struct {
	// URL of a JSON document. Takes precedence over Path.
	URL string `yaml:"url,omitempty"`
	// Path of a local .json document or .sqlite/.db layout database.
	Path string `yaml:"path,omitempty"`
	// Headers sent with the HTTP request (e.g. "secret-key").
	Headers map[string]string `yaml:"headers,omitempty"`
}

// Parse turns a command-line location into a Source: anything with an
// http or https scheme is a URL, everything else a path.
func Parse(location string) Source {
	if u, err := url.Parse(location); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		return Source{URL: location}
	}
	return Source{Path: location}
}

// Type reports how the source will be read.
func (s Source) Type() (SourceType, error) {
	switch {
	case s.URL != "":
		return SourceTypeHTTP, nil
	case s.Path == "":
		return "", ErrNoSource
	}
	switch strings.ToLower(filepath.Ext(s.Path)) {
	case ".sqlite", ".sqlite3", ".db":
		return SourceTypeSQLite, nil
	default:
		return SourceTypeFile, nil
	}
}

// String returns the location for messages. Header values are never shown.
func (s Source) String() string {
	if s.URL != "" {
		if len(s.Headers) > 0 {
			return fmt.Sprintf("%s (%d headers)", s.URL, len(s.Headers))
		}
		return s.URL
	}
	return s.Path
}
