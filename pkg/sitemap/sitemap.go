// Package sitemap resolves a sitemap or sitemap index into a flat list of
// page URLs.
package sitemap

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/net/html/charset"
)

// Namespace is the sitemaps.org 0.9 namespace. Entries outside it are ignored.
const Namespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

// Kind is the kind of a sitemap document, decided by its root element.
type Kind int

const (
	KindUnknown Kind = iota
	KindIndex
	KindURLSet
)

func (k Kind) String() string {
	switch k {
	case KindIndex:
		return "index"
	case KindURLSet:
		return "urlset"
	default:
		return "unknown"
	}
}

// Document is a parsed sitemap: the locations of its child sitemaps (index)
// or of its pages (urlset).
type Document struct {
	Kind Kind
	Locs []string
}

type rawDoc struct {
	XMLName xml.Name
	Entries []rawEntry `xml:",any"`
}

type rawEntry struct {
	XMLName xml.Name
	Fields  []rawField `xml:",any"`
}

type rawField struct {
	XMLName xml.Name
	Text    string `xml:",chardata"`
}

// Parse parses a sitemap document. Documents whose root is neither
// sitemapindex nor urlset parse to KindUnknown with no locations.
func Parse(data []byte) (Document, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.CharsetReader = charset.NewReaderLabel

	var raw rawDoc
	if err := dec.Decode(&raw); err != nil {
		return Document{}, fmt.Errorf("failed to parse sitemap XML: %w", err)
	}

	var entry string
	doc := Document{}
	switch root := raw.XMLName.Local; {
	case strings.HasSuffix(root, "sitemapindex"):
		doc.Kind, entry = KindIndex, "sitemap"
	case strings.HasSuffix(root, "urlset"):
		doc.Kind, entry = KindURLSet, "url"
	default:
		return doc, nil
	}

	for _, e := range raw.Entries {
		if e.XMLName.Space != Namespace || e.XMLName.Local != entry {
			continue
		}
		for _, f := range e.Fields {
			if f.XMLName.Space != Namespace || f.XMLName.Local != "loc" {
				continue
			}
			if loc := strings.TrimSpace(f.Text); loc != "" {
				doc.Locs = append(doc.Locs, loc)
			}
		}
	}
	return doc, nil
}

// Getter fetches a document body.
type Getter interface {
	GetBytes(ctx context.Context, url string) ([]byte, error)
}

// Resolver turns a sitemap URL into page URLs, following an index one level.
type Resolver struct {
	getter Getter
	logger *slog.Logger
}

func NewResolver(getter Getter, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{getter: getter, logger: logger}
}

func (r *Resolver) fetch(ctx context.Context, url string) (Document, error) {
	data, err := r.getter.GetBytes(ctx, url)
	if err != nil {
		return Document{}, fmt.Errorf("failed to fetch sitemap %s: %w", url, err)
	}
	doc, err := Parse(data)
	if err != nil {
		return Document{}, fmt.Errorf("sitemap %s: %w", url, err)
	}
	return doc, nil
}

// Resolve returns the page URLs of sitemapURL in document order. For an index,
// the URLs of each child urlset are concatenated in index order; children that
// are themselves indexes are not followed.
func (r *Resolver) Resolve(ctx context.Context, sitemapURL string) ([]string, error) {
	doc, err := r.fetch(ctx, sitemapURL)
	if err != nil {
		return nil, err
	}

	switch doc.Kind {
	case KindURLSet:
		r.logger.Debug("Parsed urlset", "sitemap", sitemapURL, "url_count", len(doc.Locs))
		return doc.Locs, nil
	case KindIndex:
		r.logger.Debug("Parsed sitemap index", "sitemap", sitemapURL, "child_count", len(doc.Locs))
	default:
		r.logger.Debug("Unrecognized sitemap root, no URLs", "sitemap", sitemapURL)
		return nil, nil
	}

	var urls []string
	for _, loc := range doc.Locs {
		child, err := r.fetch(ctx, loc)
		if err != nil {
			return nil, err
		}
		if child.Kind != KindURLSet {
			r.logger.Warn("Skipping child sitemap that is not a urlset", "sitemap", loc, "kind", child.Kind.String())
			continue
		}
		r.logger.Debug("Parsed child urlset", "sitemap", loc, "url_count", len(child.Locs))
		urls = append(urls, child.Locs...)
	}
	return urls, nil
}
