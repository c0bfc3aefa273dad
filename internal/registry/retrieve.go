package registry

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"slices"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonesrussell/north-cloud/headlines/internal/cache"
	"github.com/jonesrussell/north-cloud/headlines/internal/config"
	"github.com/jonesrussell/north-cloud/headlines/internal/extractor"
	"github.com/jonesrussell/north-cloud/headlines/internal/fetcher"
	"github.com/jonesrussell/north-cloud/headlines/internal/logger"
	"github.com/jonesrussell/north-cloud/headlines/internal/models"
)

// retriever builds the fetch, parse and extract pipeline for one source.
func (r *Registry) retriever(src config.SourceConfig, m *extractor.Matcher) cache.Retriever[[]models.Link] {
	log := r.log.With(logger.String("source", src.Name))

	return func(ctx context.Context) ([]models.Link, error) {
		start := time.Now()

		body, err := r.fetcher.Fetch(ctx, src.Address)
		if err != nil {
			logFetchFailure(log, err)
			return nil, fmt.Errorf("fetch %s: %w", src.Name, err)
		}

		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
		if err != nil {
			log.Warn("Failed to parse page", logger.Error(err))
			return nil, fmt.Errorf("parse %s: %w", src.Name, err)
		}

		links := BuildLinks(doc, src, m)

		log.Info("Refreshed source",
			logger.Int("links", len(links)),
			logger.Duration("duration", time.Since(start)),
		)

		if r.hook != nil {
			r.hook(ctx, src.Name, slices.Clone(links))
		}
		return links, nil
	}
}

// BuildLinks extracts matching anchors from doc and returns them resolved
// against the source base, sorted by URI, without duplicate URIs and tagged
// with the source name. When URIs collide the first title in document order
// is kept.
func BuildLinks(doc *goquery.Document, src config.SourceConfig, m *extractor.Matcher) []models.Link {
	links := []models.Link{}
	for _, root := range doc.Nodes {
		extractor.Extract(root, m, func(match extractor.Match) {
			links = append(links, models.Link{
				URI:    resolve(src.Base, match.URI),
				Title:  match.Title,
				Source: src.Name,
			})
		})
	}

	slices.SortStableFunc(links, models.CompareURI)
	return slices.CompactFunc(links, models.Link.SameAs)
}

// resolve prefixes base onto hrefs that are not already absolute URLs.
func resolve(base, href string) string {
	if base == "" {
		return href
	}
	if u, err := url.Parse(href); err == nil && u.IsAbs() && u.Host != "" {
		return href
	}
	return base + href
}

func logFetchFailure(log logger.Logger, err error) {
	var fetchErr *fetcher.FetchError
	if errors.As(err, &fetchErr) && fetchErr.Level == fetcher.LevelError {
		log.Error("Failed to fetch source", logger.Error(err), logger.String("error_type", string(fetchErr.Type)))
		return
	}
	log.Warn("Failed to fetch source", logger.Error(err))
}
