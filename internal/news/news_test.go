/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package news

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func rssBody(title string, items ...string) string {
	body := `<?xml version="1.0" encoding="UTF-8"?><rss version="2.0"><channel><title>` + title + `</title>`
	for i, item := range items {
		body += fmt.Sprintf(
			`<item><title>%s</title><link>https://example.com/%d</link><pubDate>Mon, 02 Mar 2026 %02d:00:00 GMT</pubDate></item>`,
			item, i, i,
		)
	}
	return body + `</channel></rss>`
}

func feedServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestHeadlinesAggregatesFeeds(t *testing.T) {
	a := feedServer(t, rssBody("Mining Daily", "Copper up", "Gold steady"))
	b := feedServer(t, rssBody("Weekly Wire", "New smelter opens"))

	svc := New([]string{a.URL, b.URL}, time.Minute, zerolog.Nop())
	headlines := svc.Headlines(context.Background())
	if len(headlines) != 3 {
		t.Fatalf("got %d headlines, want 3", len(headlines))
	}

	sources := map[string]bool{}
	for _, h := range headlines {
		sources[h.Source] = true
	}
	if !sources["Mining Daily"] || !sources["Weekly Wire"] {
		t.Fatalf("missing sources in %v", sources)
	}
}

func TestHeadlinesCapped(t *testing.T) {
	items := make([]string, MaxHeadlines+5)
	for i := range items {
		items[i] = fmt.Sprintf("story %d", i)
	}
	srv := feedServer(t, rssBody("Big Feed", items...))

	svc := New([]string{srv.URL}, time.Minute, zerolog.Nop())
	headlines := svc.Headlines(context.Background())
	if len(headlines) != MaxHeadlines {
		t.Fatalf("got %d headlines, want %d", len(headlines), MaxHeadlines)
	}
}

func TestHeadlinesSurvivesDeadFeed(t *testing.T) {
	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(dead.Close)
	live := feedServer(t, rssBody("Survivor", "Still here"))

	svc := New([]string{dead.URL, live.URL}, time.Minute, zerolog.Nop())
	headlines := svc.Headlines(context.Background())
	if len(headlines) != 1 || headlines[0].Title != "Still here" {
		t.Fatalf("unexpected headlines: %+v", headlines)
	}
}

func TestHeadlinesServesStaleOnTotalFailure(t *testing.T) {
	var fail bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(rssBody("Flaky", "Cached story")))
	}))
	t.Cleanup(srv.Close)

	svc := New([]string{srv.URL}, time.Nanosecond, zerolog.Nop())
	first := svc.Headlines(context.Background())
	if len(first) != 1 {
		t.Fatalf("got %d headlines, want 1", len(first))
	}

	fail = true
	time.Sleep(time.Millisecond)
	second := svc.Headlines(context.Background())
	if len(second) != 1 || second[0].Title != "Cached story" {
		t.Fatalf("expected stale result, got %+v", second)
	}
}
