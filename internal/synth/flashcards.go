// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package synth

import (
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/pdiddy/studycraft/pkg/types"
)

// cardNamespace scopes flashcard ids so the same card text always maps to
// the same id.
var cardNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://studycraft.local/flashcard"))

var copulaRe = regexp.MustCompile(`(?i)\s(is|are)\s`)

// CardID returns the stable id for a card.
func CardID(topic string, kind types.CardType, front string) string {
	return uuid.NewSHA1(cardNamespace, []byte(topic+"|"+string(kind)+"|"+front)).String()
}

// SplitCopula splits a note at its first whitespace-delimited "is" or
// "are". verb is the matched copula in lower case. Notes without a copula,
// or with nothing on either side of it, return ok=false. The split is
// lossy: qualifiers before the copula become part of the subject.
func SplitCopula(note string) (subject, verb, rest string, ok bool) {
	note = strings.TrimSpace(note)
	loc := copulaRe.FindStringSubmatchIndex(note)
	if loc == nil {
		return "", "", "", false
	}
	subject = strings.TrimSpace(note[:loc[0]])
	verb = strings.ToLower(note[loc[2]:loc[3]])
	rest = strings.TrimSpace(strings.TrimRight(note[loc[1]:], "."))
	if subject == "" || rest == "" {
		return "", "", "", false
	}
	return subject, verb, rest, true
}

// DeriveFlashcards builds one card per quiz item, then one card per note
// that SplitCopula can split. Duplicate ids are emitted once.
func DeriveFlashcards(topic string, c types.StudyContent) []types.Flashcard {
	cards := make([]types.Flashcard, 0, len(c.Quiz)+len(c.Notes))
	seen := make(map[string]bool)
	add := func(card types.Flashcard) {
		card.ID = CardID(topic, card.Type, card.Front)
		if seen[card.ID] {
			return
		}
		seen[card.ID] = true
		cards = append(cards, card)
	}

	for _, q := range c.Quiz {
		answer := q.Answer()
		if answer == "" {
			continue
		}
		add(types.Flashcard{Type: types.CardQuiz, Front: q.Question, Back: answer, Explanation: q.Explanation})
	}
	for _, n := range c.Notes {
		subject, verb, rest, ok := SplitCopula(n)
		if !ok {
			continue
		}
		add(types.Flashcard{
			Type:        types.CardConcept,
			Front:       "What " + verb + " " + subject + "?",
			Back:        rest,
			Explanation: n,
		})
	}
	return cards
}
