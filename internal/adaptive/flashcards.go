// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package adaptive

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	fsrs "github.com/open-spaced-repetition/go-fsrs"
	"github.com/rotisserie/eris"

	"github.com/pdiddy/studycraft/internal/store"
	"github.com/pdiddy/studycraft/pkg/types"
)

// ErrUnknownCard is returned when a flashcard has no review history.
var ErrUnknownCard = eris.New("adaptive: unknown flashcard")

func cardKey(id string) string { return store.Key(flashcardNS, id) }

// ReviewCard records one self-graded review. A remembered card is rated
// Good, a forgotten one Again.
func (t *Tracker) ReviewCard(ctx context.Context, id string, remembered bool) (types.FlashcardProgress, error) {
	rating := fsrs.Again
	if remembered {
		rating = fsrs.Good
	}
	return t.RateCard(ctx, id, rating)
}

// RateCard records a review with an explicit FSRS rating and reschedules
// the card. Any rating other than Again counts as correct.
func (t *Tracker) RateCard(ctx context.Context, id string, rating fsrs.Rating) (types.FlashcardProgress, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return types.FlashcardProgress{}, eris.Wrap(ErrUnknownCard, "adaptive: empty card id")
	}
	key := cardKey(id)
	unlock := t.locks.lock(key)
	defer unlock()

	var p types.FlashcardProgress
	err := t.kv.Update(ctx, key, func(old []byte) ([]byte, error) {
		if old != nil {
			if err := json.Unmarshal(old, &p); err != nil {
				return nil, eris.Wrapf(err, "adaptive: decode %s", key)
			}
		}
		now := t.Now()
		info, ok := t.params.Repeat(toFSRS(p), now)[rating]
		if !ok {
			return nil, eris.Errorf("adaptive: rating %d not supported", rating)
		}
		applyFSRS(&p, info.Card)
		p.Total++
		if rating != fsrs.Again {
			p.Correct++
		}
		return json.Marshal(p)
	})
	if err != nil {
		return types.FlashcardProgress{}, eris.Wrapf(err, "adaptive: review %s", id)
	}
	return p, nil
}

// CardProgress returns the review history of one card.
func (t *Tracker) CardProgress(ctx context.Context, id string) (types.FlashcardProgress, error) {
	raw, err := t.kv.Get(ctx, cardKey(id))
	if errors.Is(err, store.ErrNotFound) {
		return types.FlashcardProgress{}, ErrUnknownCard
	}
	if err != nil {
		return types.FlashcardProgress{}, eris.Wrapf(err, "adaptive: read card %s", id)
	}
	var p types.FlashcardProgress
	if err := json.Unmarshal(raw, &p); err != nil {
		return types.FlashcardProgress{}, eris.Wrapf(err, "adaptive: decode card %s", id)
	}
	return p, nil
}

// CardMastery returns a card's mastery percentage, 0 when never reviewed.
func (t *Tracker) CardMastery(ctx context.Context, id string) (int, error) {
	p, err := t.CardProgress(ctx, id)
	if errors.Is(err, ErrUnknownCard) {
		return 0, nil
	}
	return p.Mastery(), err
}

// DueCards returns the ids from ids that are due at now, keeping their
// order. Cards that were never reviewed are always due.
func (t *Tracker) DueCards(ctx context.Context, ids []string, now time.Time) ([]string, error) {
	due := make([]string, 0, len(ids))
	for _, id := range ids {
		p, err := t.CardProgress(ctx, id)
		if errors.Is(err, ErrUnknownCard) {
			due = append(due, id)
			continue
		}
		if err != nil {
			return nil, err
		}
		if !p.Due.After(now) {
			due = append(due, id)
		}
	}
	return due, nil
}

func toFSRS(p types.FlashcardProgress) fsrs.Card {
	return fsrs.Card{
		Due:           p.Due,
		Stability:     p.Stability,
		Difficulty:    p.Difficulty,
		ElapsedDays:   uint64(max(p.ElapsedDays, 0)),
		ScheduledDays: uint64(max(p.ScheduledDays, 0)),
		Reps:          uint64(max(p.Reps, 0)),
		Lapses:        uint64(max(p.Lapses, 0)),
		State:         fsrs.State(max(p.State, 0)),
		LastReview:    p.LastReview,
	}
}

func applyFSRS(p *types.FlashcardProgress, c fsrs.Card) {
	p.Due = c.Due
	p.Stability = c.Stability
	p.Difficulty = c.Difficulty
	p.ElapsedDays = int(c.ElapsedDays)
	p.ScheduledDays = int(c.ScheduledDays)
	p.Reps = int(c.Reps)
	p.Lapses = int(c.Lapses)
	p.State = int(c.State)
	p.LastReview = c.LastReview
}
