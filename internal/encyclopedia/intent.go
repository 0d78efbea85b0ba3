// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package encyclopedia

import (
	"regexp"
	"strings"
)

// ContentType is the coarse topic classification that selects sources.
type ContentType string

const (
	TypeProgramming ContentType = "programming"
	TypeMathematics ContentType = "mathematics"
	TypeScience     ContentType = "science"
	TypeHistory     ContentType = "history"
	TypeDefinition  ContentType = "definition"
	TypeTutorial    ContentType = "tutorial"
	TypeGeneral     ContentType = "general"
)

// Intent is what a raw query asks for.
type Intent struct {
	// Deep is true when the query carries a deep-search modifier.
	Deep bool
	// Term is the lowercased query with modifiers removed.
	Term string
	Type ContentType
}

var deepKeywords = []string{
	"deep search",
	"detailed",
	"comprehensive",
	"in-depth",
	"thorough",
	"complete guide",
	"everything about",
	"all about",
	"full information",
	"detailed analysis",
}

var (
	modifierRe = regexp.MustCompile(`(?i)deep search|detailed|comprehensive|in-depth|thorough`)
	phraseRe   = regexp.MustCompile(`(?i)complete guide to|everything about|all about|full information on`)
)

// typePatterns are checked in order; the first match wins.
var typePatterns = []struct {
	t  ContentType
	re *regexp.Regexp
}{
	{TypeProgramming, regexp.MustCompile(`(?i)\b(python|javascript|java|code|programming|algorithm|software)\b`)},
	{TypeMathematics, regexp.MustCompile(`(?i)\b(math|calculus|algebra|geometry|equation|theorem)\b`)},
	{TypeScience, regexp.MustCompile(`(?i)\b(physics|chemistry|biology|science|molecule|atom|cell)\b`)},
	{TypeHistory, regexp.MustCompile(`(?i)\b(history|war|civilization|ancient|medieval|century)\b`)},
	{TypeDefinition, regexp.MustCompile(`(?i)\b(meaning|definition|what is|what does|etymology)\b`)},
	{TypeTutorial, regexp.MustCompile(`(?i)\b(how to|tutorial|learn|guide|course|lesson)\b`)},
}

// IsDeep reports whether query asks for deep coverage.
func IsDeep(query string) bool {
	lower := strings.ToLower(query)
	for _, k := range deepKeywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

// CleanTerm lowercases query and strips deep-search modifiers. A query
// that is nothing but modifiers is returned unchanged.
func CleanTerm(query string) string {
	clean := strings.ToLower(query)
	clean = modifierRe.ReplaceAllString(clean, "")
	clean = phraseRe.ReplaceAllString(clean, "")
	clean = strings.Join(strings.Fields(clean), " ")
	if clean == "" {
		return query
	}
	return clean
}

// Classify returns the content type of a clean term.
func Classify(term string) ContentType {
	for _, p := range typePatterns {
		if p.re.MatchString(term) {
			return p.t
		}
	}
	return TypeGeneral
}

// DetectIntent parses a raw query.
func DetectIntent(query string) Intent {
	term := CleanTerm(query)
	return Intent{Deep: IsDeep(query), Term: term, Type: Classify(term)}
}

// SelectSources returns the source ids to query for an intent, primary
// first, without duplicates.
func SelectSources(in Intent) []string {
	ids := []string{SourceWikipedia}
	switch in.Type {
	case TypeProgramming, TypeTutorial:
		ids = append(ids, SourceWikibooks, SourceWikiversity)
	case TypeDefinition:
		ids = append(ids, SourceWiktionary, SourceSimpleWiki)
	case TypeMathematics, TypeScience:
		ids = append(ids, SourceWikibooks, SourceSimpleWiki)
	default:
		ids = append(ids, SourceSimpleWiki)
	}
	if in.Deep {
		ids = append(ids, SourceWikibooks, SourceWikiversity)
	}

	seen := make(map[string]bool, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
