/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package news aggregates external RSS headlines for the channel's news
// strip. Feeds are best-effort: a dead feed degrades to the remaining
// feeds, and a fully dark fetch falls back to the last good result.
package news

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/rs/zerolog"
)

// MaxHeadlines caps the aggregated result.
const MaxHeadlines = 15

// Headline is a single aggregated news item.
type Headline struct {
	Title       string    `json:"title"`
	Link        string    `json:"link"`
	Source      string    `json:"source"`
	PublishedAt time.Time `json:"published_at"`
}

// Service fetches and caches aggregated headlines.
type Service struct {
	feeds  []string
	parser *gofeed.Parser
	ttl    time.Duration
	logger zerolog.Logger

	mu        sync.Mutex
	cached    []Headline
	fetchedAt time.Time
}

// New constructs the news service.
func New(feeds []string, ttl time.Duration, logger zerolog.Logger) *Service {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Service{
		feeds:  feeds,
		parser: gofeed.NewParser(),
		ttl:    ttl,
		logger: logger.With().Str("component", "news").Logger(),
	}
}

// Headlines returns up to MaxHeadlines items, newest first. Results are
// cached for the configured TTL so feed hosts are not hammered.
func (s *Service) Headlines(ctx context.Context) []Headline {
	s.mu.Lock()
	if time.Since(s.fetchedAt) < s.ttl && s.cached != nil {
		cached := s.cached
		s.mu.Unlock()
		return cached
	}
	s.mu.Unlock()

	fresh := s.fetch(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(fresh) > 0 {
		s.cached = fresh
		s.fetchedAt = time.Now()
	}
	// Every feed failed: serve the stale result rather than nothing.
	return s.cached
}

func (s *Service) fetch(ctx context.Context) []Headline {
	var all []Headline
	for _, url := range s.feeds {
		feed, err := s.parser.ParseURLWithContext(url, ctx)
		if err != nil {
			s.logger.Warn().Err(err).Str("feed", url).Msg("feed fetch failed")
			continue
		}
		source := feed.Title
		for _, item := range feed.Items {
			h := Headline{
				Title:  item.Title,
				Link:   item.Link,
				Source: source,
			}
			if item.PublishedParsed != nil {
				h.PublishedAt = item.PublishedParsed.UTC()
			}
			all = append(all, h)
		}
	}

	sort.Slice(all, func(i, j int) bool {
		return all[i].PublishedAt.After(all[j].PublishedAt)
	})
	if len(all) > MaxHeadlines {
		all = all[:MaxHeadlines]
	}
	return all
}
