// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package synth

import (
	"fmt"
	"math/rand"
	"regexp"
	"sort"
	"strings"

	"github.com/pdiddy/studycraft/pkg/types"
)

const (
	minSentenceLen = 20
	notesDefault   = 6
	notesDeep      = 8
	maxSourceLines = 4
	shortFactLen   = 150
)

var (
	sentenceEnd  = regexp.MustCompile(`[.!?]\s+`)
	digitRe      = regexp.MustCompile(`\d`)
	definitionRe = regexp.MustCompile(`(?i)is\s+a\s+|are\s+|refers\s+to|defined\s+as`)
	emphasisRe   = regexp.MustCompile(`(?i)important|significant|main|primary|key|essential|fundamental`)
)

// ExtractSentences splits text at sentence-ending punctuation followed by
// whitespace. Fragments of minSentenceLen characters or fewer are dropped,
// as are exact duplicates.
func ExtractSentences(text string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, s := range sentenceEnd.Split(text, -1) {
		s = strings.TrimSpace(s)
		if len([]rune(s)) <= minSentenceLen || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

// ScoreFact rates how useful a sentence is as a standalone fact.
func ScoreFact(s string) int {
	score := 0
	if digitRe.MatchString(s) {
		score += 2
	}
	if definitionRe.MatchString(s) {
		score += 3
	}
	if emphasisRe.MatchString(s) {
		score += 2
	}
	if len([]rune(s)) < shortFactLen {
		score++
	}
	return score
}

// RankFacts orders sentences by ScoreFact, highest first. Equal scores keep
// their input order.
func RankFacts(sentences []string) []string {
	type scored struct {
		text  string
		score int
	}
	ss := make([]scored, len(sentences))
	for i, s := range sentences {
		ss[i] = scored{s, ScoreFact(s)}
	}
	sort.SliceStable(ss, func(i, j int) bool { return ss[i].score > ss[j].score })
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = s.text
	}
	return out
}

// FromArticles synthesizes study content from organized encyclopedia
// results. rng shuffles quiz options; a nil rng leaves them unshuffled with
// the correct answer first. Content with no extractable facts falls back to
// GenericContent so the result always satisfies the StudyContent invariants.
func FromArticles(org *types.OrganizedContent, rng *rand.Rand) types.StudyContent {
	if org == nil || org.Introduction == nil || org.MainContent == nil {
		topic := ""
		if org != nil {
			topic = org.Topic
		}
		return GenericContent(topic)
	}

	used := []*types.Article{org.Introduction}
	if org.MainContent != org.Introduction {
		used = append(used, org.MainContent)
	}
	if org.DeepDive != nil && org.DeepDive != org.MainContent && org.DeepDive != org.Introduction {
		used = append(used, org.DeepDive)
	}
	var sentences []string
	for _, a := range used {
		sentences = append(sentences, ExtractSentences(a.Content)...)
	}
	facts := RankFacts(sentences)
	if len(facts) == 0 {
		return GenericContent(org.Topic)
	}

	noteCount := notesDefault
	if org.Deep {
		noteCount = notesDeep
	}
	notes := make([]string, 0, noteCount)
	for _, f := range facts[:min(noteCount, len(facts))] {
		if !strings.HasSuffix(f, ".") {
			f += "."
		}
		notes = append(notes, f)
	}

	intro := org.Introduction
	introBullets := []string{orDefault(intro.Description, "Overview of the topic")}
	introSentences := ExtractSentences(intro.Content)
	introBullets = append(introBullets, introSentences[:min(2, len(introSentences))]...)

	keyBullets := make([]string, 0, 3)
	for _, f := range facts[:min(3, len(facts))] {
		keyBullets = append(keyBullets, ellipsize(f, 100))
	}

	slides := []types.Slide{
		{Title: intro.Title + " - Introduction", BulletPoints: introBullets},
		{Title: "Key Concepts", BulletPoints: keyBullets},
	}
	if dd := org.DeepDive; dd != nil {
		ds := ExtractSentences(dd.Content)
		if len(ds) > 0 {
			slides = append(slides, types.Slide{
				Title:        "Advanced - " + dd.SourceName,
				BulletPoints: ds[:min(3, len(ds))],
			})
		}
	}
	sourceLines := make([]string, 0, maxSourceLines)
	for _, a := range org.AllSources[:min(maxSourceLines, len(org.AllSources))] {
		sourceLines = append(sourceLines, a.SourceName+": "+a.Title)
	}
	if len(sourceLines) > 0 {
		slides = append(slides, types.Slide{
			Title:        fmt.Sprintf("Sources Used (%d)", org.SourcesUsed()),
			BulletPoints: sourceLines,
		})
	}

	sourceNames := make([]string, len(org.AllSources))
	for i, a := range org.AllSources {
		sourceNames[i] = a.SourceName
	}

	return types.StudyContent{
		Topic:         org.Topic,
		Notes:         notes,
		Slides:        slides,
		Quiz:          articleQuiz(org.MainContent.Title, facts, rng),
		ImageKeywords: []string{org.Topic, org.Topic + " diagram", orDefault(org.MainContent.Description, org.Topic)},
		Source:        fmt.Sprintf("Multi-Source (%d sources)", org.SourcesUsed()),
		SourceURL:     org.MainContent.URL,
		Sources:       sourceNames,
		Deep:          org.Deep,
	}
}

// articleQuiz builds up to three questions whose correct answers come from
// the top-ranked facts. Distractors are fixed filler.
func articleQuiz(title string, facts []string, rng *rand.Rand) []types.QuizItem {
	type questionTmpl struct {
		question    string
		answer      func(fact string) string
		distractors []string
	}
	templates := []questionTmpl{
		{
			question:    "What best describes %s?",
			answer:      func(f string) string { return truncateRunes(f, 100) },
			distractors: []string{"A type of computer algorithm", "A historical event from ancient times", "A mathematical theorem"},
		},
		{
			question:    "Which statement about %s is true?",
			answer:      func(f string) string { return truncateRunes(f, 100) },
			distractors: []string{"It was discovered last year", "It only exists in theory", "It has no practical applications"},
		},
		{
			question:    "Why is %s important?",
			answer:      func(f string) string { return "According to the source: " + truncateRunes(f, 80) + "..." },
			distractors: []string{"It's not actually important", "Only for entertainment purposes", "Unknown significance"},
		},
	}

	quiz := make([]types.QuizItem, 0, len(templates))
	for i, tmpl := range templates[:min(len(templates), len(facts))] {
		correct := tmpl.answer(facts[i])
		options := append([]string{correct}, tmpl.distractors...)
		if rng != nil {
			rng.Shuffle(len(options), func(a, b int) { options[a], options[b] = options[b], options[a] })
		}
		idx := 0
		for j, o := range options {
			if o == correct {
				idx = j
				break
			}
		}
		quiz = append(quiz, types.QuizItem{
			Question:     fmt.Sprintf(tmpl.question, title),
			Options:      options,
			CorrectIndex: idx,
			Explanation:  facts[i],
		})
	}
	return quiz
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func ellipsize(s string, n int) string {
	if len([]rune(s)) <= n {
		return s
	}
	return truncateRunes(s, n) + "..."
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
