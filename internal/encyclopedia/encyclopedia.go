// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package encyclopedia aggregates free encyclopedia sources for a topic.
// Sources are queried concurrently, scored, and organized into an
// introduction, a main article, and an optional deep dive.
package encyclopedia

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"slices"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/studycraft/pkg/types"
)

// SourceKind says what role a source plays when organizing results.
type SourceKind string

const (
	KindPrimary    SourceKind = "primary"
	KindSimplified SourceKind = "simplified"
	KindStructured SourceKind = "structured"
	KindDictionary SourceKind = "dictionary"
)

// Source fetches one article per term. A source with no page for the term
// returns (nil, nil).
type Source interface {
	ID() string
	Name() string
	Kind() SourceKind
	Fetch(ctx context.Context, term string) (*types.Article, error)
}

// DefaultSourceTimeout bounds one source query when none is configured.
const DefaultSourceTimeout = 10 * time.Second

// Aggregator fans a topic out to the selected sources.
type Aggregator struct {
	sources map[string]Source
	timeout time.Duration
	logger  *zap.Logger
}

// NewAggregator returns an aggregator over sources keyed by ID.
func NewAggregator(sources []Source, timeout time.Duration, logger *zap.Logger) *Aggregator {
	if timeout <= 0 {
		timeout = DefaultSourceTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	m := make(map[string]Source, len(sources))
	for _, s := range sources {
		m[s.ID()] = s
	}
	return &Aggregator{sources: m, timeout: timeout, logger: logger}
}

// New builds an aggregator over the MediaWiki sources, minus any disabled
// in cfg.
func New(cfg types.EncyclopediaConfig, logger *zap.Logger) *Aggregator {
	client := &http.Client{Timeout: cfg.Timeout}
	if cfg.Timeout <= 0 {
		client.Timeout = 30 * time.Second
	}
	var sources []Source
	for _, id := range SourceIDs() {
		if slices.Contains(cfg.Disabled, id) {
			continue
		}
		s, _ := NewMediaWiki(id, client, cfg.UserAgent)
		sources = append(sources, s)
	}
	return NewAggregator(sources, cfg.SourceTimeout, logger)
}

// Result is one fetched article with the kind of source it came from.
type Result struct {
	Article types.Article
	Kind    SourceKind
}

// Aggregate detects the intent of query, queries the selected sources
// concurrently, and organizes what comes back. It returns nil when no
// source has coverage. Failed sources are dropped and never retried.
func (a *Aggregator) Aggregate(ctx context.Context, query string) *types.OrganizedContent {
	in := DetectIntent(query)

	var selected []Source
	for _, id := range SelectSources(in) {
		if s, ok := a.sources[id]; ok {
			selected = append(selected, s)
		}
	}
	a.logger.Debug("encyclopedia: querying sources",
		zap.String("term", in.Term),
		zap.Bool("deep", in.Deep),
		zap.String("type", string(in.Type)),
		zap.Int("sources", len(selected)))

	results := make([]*Result, len(selected))
	var g errgroup.Group
	for i, s := range selected {
		i, s := i, s
		g.Go(func() error {
			sctx, cancel := context.WithTimeout(ctx, a.timeout)
			defer cancel()
			art, err := s.Fetch(sctx, in.Term)
			switch {
			case err != nil:
				a.logger.Debug("encyclopedia: source dropped", zap.String("source", s.ID()), zap.Error(err))
			case art == nil:
				a.logger.Debug("encyclopedia: source dropped", zap.String("source", s.ID()), zap.String("reason", "not found"))
			default:
				results[i] = &Result{Article: *art, Kind: s.Kind()}
			}
			return nil
		})
	}
	g.Wait()

	var found []Result
	for _, r := range results {
		if r != nil {
			found = append(found, *r)
		}
	}
	return Organize(in.Term, in.Deep, found)
}

// Score rates one article for term.
func Score(r Result, term string) int {
	score := 0
	switch n := len([]rune(r.Article.Content)); {
	case n > 100 && n < 2000:
		score += 3
	case n >= 2000:
		score += 2
	case n > 50:
		score++
	}
	if strings.TrimSpace(r.Article.Description) != "" {
		score += 2
	}
	if term != "" && strings.Contains(strings.ToLower(r.Article.Title), strings.ToLower(term)) {
		score += 3
	}
	if r.Kind == KindStructured {
		score += 2
	}
	return score
}

// Organize scores results and picks the learning sequence. Equal scores
// keep input order. It returns nil for no results.
func Organize(term string, deep bool, results []Result) *types.OrganizedContent {
	if len(results) == 0 {
		return nil
	}
	ranked := make([]Result, len(results))
	copy(ranked, results)
	for i := range ranked {
		ranked[i].Article.Score = Score(ranked[i], term)
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Article.Score > ranked[j].Article.Score })

	org := &types.OrganizedContent{Topic: term, Deep: deep, AllSources: make([]types.Article, len(ranked))}
	for i, r := range ranked {
		org.AllSources[i] = r.Article
	}
	find := func(k SourceKind) *types.Article {
		for i, r := range ranked {
			if r.Kind == k {
				return &org.AllSources[i]
			}
		}
		return nil
	}

	org.Introduction = find(KindSimplified)
	if org.Introduction == nil {
		org.Introduction = &org.AllSources[0]
	}
	org.MainContent = find(KindPrimary)
	if org.MainContent == nil {
		org.MainContent = &org.AllSources[0]
	}
	org.DeepDive = find(KindStructured)
	return org
}

// FormatTable writes the organized sources as a table to w.
func FormatTable(org *types.OrganizedContent, w io.Writer) {
	if org == nil {
		fmt.Fprintln(w, "No encyclopedia coverage found.")
		return
	}
	fmt.Fprintf(w, "Topic: %s", org.Topic)
	if org.Deep {
		fmt.Fprint(w, " (deep)")
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%-4s  %-18s  %-40s  %-5s  %s\n", "Rank", "Source", "Title", "Score", "Role")
	fmt.Fprintln(w, strings.Repeat("-", 86))

	for i := range org.AllSources {
		a := &org.AllSources[i]
		var roles []string
		if a == org.Introduction {
			roles = append(roles, "introduction")
		}
		if a == org.MainContent {
			roles = append(roles, "main")
		}
		if a == org.DeepDive {
			roles = append(roles, "deep dive")
		}
		title := a.Title
		if r := []rune(title); len(r) > 40 {
			title = string(r[:37]) + "..."
		}
		fmt.Fprintf(w, "%-4d  %-18s  %-40s  %-5d  %s\n", i+1, a.SourceName, title, a.Score, strings.Join(roles, ", "))
	}
	fmt.Fprintf(w, "\n%d sources\n", org.SourcesUsed())
}
