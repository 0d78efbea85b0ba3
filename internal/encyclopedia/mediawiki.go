// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package encyclopedia

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/pdiddy/studycraft/internal/httputil"
	"github.com/pdiddy/studycraft/pkg/types"
)

// Source ids.
const (
	SourceWikipedia   = "wikipedia"
	SourceSimpleWiki  = "simplewiki"
	SourceWikibooks   = "wikibooks"
	SourceWikiversity = "wikiversity"
	SourceWiktionary  = "wiktionary"
)

// siteBase maps source ids to wiki roots. Declared as a var so tests can
// substitute an httptest server.
var siteBase = map[string]string{
	SourceWikipedia:   "https://en.wikipedia.org",
	SourceSimpleWiki:  "https://simple.wikipedia.org",
	SourceWikibooks:   "https://en.wikibooks.org",
	SourceWikiversity: "https://en.wikiversity.org",
	SourceWiktionary:  "https://en.wiktionary.org",
}

var siteInfo = map[string]struct {
	name string
	kind SourceKind
}{
	SourceWikipedia:   {"Wikipedia", KindPrimary},
	SourceSimpleWiki:  {"Simple Wikipedia", KindSimplified},
	SourceWikibooks:   {"Wikibooks", KindStructured},
	SourceWikiversity: {"Wikiversity", KindStructured},
	SourceWiktionary:  {"Wiktionary", KindDictionary},
}

// SourceIDs lists every MediaWiki source id.
func SourceIDs() []string {
	return []string{SourceWikipedia, SourceSimpleWiki, SourceWikibooks, SourceWikiversity, SourceWiktionary}
}

const descriptionLen = 200

// MediaWikiSource fetches the plain-text intro extract of one page through
// the MediaWiki Action API.
type MediaWikiSource struct {
	id        string
	Client    *http.Client
	UserAgent string
}

// NewMediaWiki returns the source for id, or an error for an unknown id.
func NewMediaWiki(id string, client *http.Client, userAgent string) (*MediaWikiSource, error) {
	if _, ok := siteInfo[id]; !ok {
		return nil, eris.Errorf("encyclopedia: unknown source %q", id)
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &MediaWikiSource{id: id, Client: client, UserAgent: userAgent}, nil
}

func (s *MediaWikiSource) ID() string       { return s.id }
func (s *MediaWikiSource) Name() string     { return siteInfo[s.id].name }
func (s *MediaWikiSource) Kind() SourceKind { return siteInfo[s.id].kind }

type actionResponse struct {
	Query struct {
		Pages map[string]struct {
			Title   string `json:"title"`
			Extract string `json:"extract"`
		} `json:"pages"`
	} `json:"query"`
}

// Fetch returns the article for term, or nil when the wiki has no page.
func (s *MediaWikiSource) Fetch(ctx context.Context, term string) (*types.Article, error) {
	base := siteBase[s.id]
	params := url.Values{
		"format":      {"json"},
		"action":      {"query"},
		"prop":        {"extracts"},
		"exintro":     {"1"},
		"explaintext": {"1"},
		"redirects":   {"1"},
		"titles":      {term},
	}
	header := http.Header{}
	if s.UserAgent != "" {
		header.Set("User-Agent", s.UserAgent)
	}

	var ar actionResponse
	err := httputil.GetJSON(ctx, s.Client, base+"/w/api.php?"+params.Encode(), header, httputil.Retry{MaxRetries: -1}, &ar)
	if err != nil {
		return nil, eris.Wrapf(err, "encyclopedia: %s", s.id)
	}

	for pageID, page := range ar.Query.Pages {
		extract := strings.TrimSpace(page.Extract)
		if pageID == "-1" || extract == "" {
			continue
		}
		return &types.Article{
			SourceName:  s.Name(),
			Title:       page.Title,
			Content:     extract,
			Description: truncateRunes(extract, descriptionLen) + "...",
			URL:         base + "/wiki/" + url.PathEscape(strings.ReplaceAll(page.Title, " ", "_")),
		}, nil
	}
	return nil, nil
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
