// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package adaptive

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	fsrs "github.com/open-spaced-repetition/go-fsrs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/studycraft/internal/store"
	"github.com/pdiddy/studycraft/pkg/types"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTracker(t *testing.T) *Tracker {
	t.Helper()
	kv, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { kv.Close() })
	tr := NewTracker(kv)
	tr.Now = func() time.Time { return fixedNow }
	return tr
}

func TestIngestCountsAndWeakAreas(t *testing.T) {
	tr := newTracker(t)
	ctx := context.Background()

	rec, err := tr.Ingest(ctx, "Photosynthesis", []types.QuizResult{
		{Question: "What is photosynthesis?", Correct: true},
		{Question: "Which organelle performs photosynthesis?", Correct: false},
		{Question: "Q3", Correct: true},
		{Question: "Q4", Correct: true},
	})
	require.NoError(t, err)

	assert.Equal(t, 4, rec.Attempts)
	assert.Equal(t, 3, rec.Correct)
	assert.Equal(t, []string{"which", "organelle", "performs"}, rec.WeakAreas)
	assert.Equal(t, types.Beginner, rec.Difficulty)
	assert.Equal(t, fixedNow, rec.LastStudied)

	m, err := tr.Mastery(ctx, "Photosynthesis")
	require.NoError(t, err)
	assert.Equal(t, 75, m)

	d, err := tr.RecommendedDifficulty(ctx, "Photosynthesis")
	require.NoError(t, err)
	assert.Equal(t, types.Intermediate, d)

	stored, ok, err := tr.Record(ctx, "Photosynthesis")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, rec, stored)
}

func TestWeakAreasKeepMostRecentFive(t *testing.T) {
	tr := newTracker(t)
	ctx := context.Background()

	_, err := tr.Ingest(ctx, "t", []types.QuizResult{{Question: "alpha bravo charlie"}})
	require.NoError(t, err)
	rec, err := tr.Ingest(ctx, "t", []types.QuizResult{{Question: "delta echoes foxtrot"}})
	require.NoError(t, err)

	assert.Equal(t, []string{"bravo", "charlie", "delta", "echoes", "foxtrot"}, rec.WeakAreas)
	assert.Len(t, rec.WeakAreas, MaxWeakAreas)
}

func TestExtractConcepts(t *testing.T) {
	tests := []struct {
		question string
		want     []string
	}{
		{"What is the capital of France?", []string{"capital", "france"}},
		{"Why do plants need sunlight, water, and carbon?", []string{"plants", "sunlight", "water"}},
		{"Is it so?", []string{}},
		{"", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.question, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractConcepts(tt.question))
		})
	}
}

func TestMergeWeakAreas(t *testing.T) {
	tests := []struct {
		name               string
		existing, concepts []string
		want               []string
	}{
		{"empty", nil, nil, []string{}},
		{"dedup", []string{"cells"}, []string{"cells", "light"}, []string{"cells", "light"}},
		{"cap", []string{"a1", "a2", "a3", "a4"}, []string{"b1", "b2"}, []string{"a2", "a3", "a4", "b1", "b2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MergeWeakAreas(tt.existing, tt.concepts))
		})
	}
}

func TestRecommend(t *testing.T) {
	tests := []struct {
		mastery int
		want    types.Difficulty
	}{
		{0, types.Beginner},
		{49, types.Beginner},
		{50, types.Intermediate},
		{79, types.Intermediate},
		{80, types.Advanced},
		{100, types.Advanced},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Recommend(tt.mastery), "mastery %d", tt.mastery)
	}
}

func TestBuildFollowUp(t *testing.T) {
	weak := []string{"cells"}
	tests := []struct {
		name     string
		rec      types.PerformanceRecord
		tier     types.FollowUpTier
		message  string
		priority types.Priority
	}{
		{"no weak areas", types.PerformanceRecord{Attempts: 2, Correct: 2}, types.TierDone, MessageDone, ""},
		{"never studied", types.PerformanceRecord{}, types.TierDone, MessageDone, ""},
		{"struggling", types.PerformanceRecord{Attempts: 4, Correct: 1, WeakAreas: weak}, types.TierStruggling, MessageStruggling, types.PriorityHigh},
		{"progressing", types.PerformanceRecord{Attempts: 4, Correct: 2, WeakAreas: weak}, types.TierProgressing, MessageProgressing, types.PriorityMedium},
		{"polishing", types.PerformanceRecord{Attempts: 5, Correct: 4, WeakAreas: weak}, types.TierPolishing, MessagePolishing, types.PriorityLow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := BuildFollowUp(tt.rec)
			assert.Equal(t, tt.tier, f.Tier)
			assert.Equal(t, tt.message, f.Message)
			if tt.tier == types.TierDone {
				assert.Empty(t, f.Suggestions)
				assert.NotNil(t, f.Suggestions)
				return
			}
			require.Len(t, f.Suggestions, 1)
			assert.Equal(t, types.Suggestion{Area: "cells", Action: "Review flashcards", Priority: tt.priority}, f.Suggestions[0])
		})
	}
}

func TestFollowUpUnknownTopic(t *testing.T) {
	tr := newTracker(t)
	f, err := tr.FollowUp(context.Background(), "never seen")
	require.NoError(t, err)
	assert.Equal(t, types.TierDone, f.Tier)
	assert.Equal(t, 0, f.Mastery)
}

func TestConcurrentIngest(t *testing.T) {
	tr := newTracker(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := tr.Ingest(ctx, "t", []types.QuizResult{{Question: "q", Correct: true}, {Question: "q"}})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	rec, ok, err := tr.Record(ctx, "t")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 20, rec.Attempts)
	assert.Equal(t, 10, rec.Correct)
	assert.Empty(t, tr.locks.m, "locks are released")
}

func TestSetDifficultyAndAll(t *testing.T) {
	tr := newTracker(t)
	ctx := context.Background()

	require.NoError(t, tr.SetDifficulty(ctx, "algebra", types.Advanced))
	assert.Error(t, tr.SetDifficulty(ctx, "algebra", "expert"))
	_, err := tr.Ingest(ctx, "biology", []types.QuizResult{{Question: "q", Correct: true}})
	require.NoError(t, err)

	rec, ok, err := tr.Record(ctx, "algebra")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, types.Advanced, rec.Difficulty)
	assert.Zero(t, rec.Attempts)

	all, err := tr.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Equal(t, 1, all["biology"].Attempts)
}

func TestReset(t *testing.T) {
	tr := newTracker(t)
	ctx := context.Background()

	_, err := tr.Ingest(ctx, "t", []types.QuizResult{{Question: "photosynthesis"}})
	require.NoError(t, err)
	require.NoError(t, tr.Reset(ctx, "t"))

	_, ok, err := tr.Record(ctx, "t")
	require.NoError(t, err)
	assert.False(t, ok)
	m, err := tr.Mastery(ctx, "t")
	require.NoError(t, err)
	assert.Zero(t, m)
	require.NoError(t, tr.Reset(ctx, "t"), "reset of a missing topic")
}

func TestReviewCard(t *testing.T) {
	tr := newTracker(t)
	ctx := context.Background()

	_, err := tr.CardProgress(ctx, "card-1")
	assert.True(t, errors.Is(err, ErrUnknownCard))
	m, err := tr.CardMastery(ctx, "card-1")
	require.NoError(t, err)
	assert.Zero(t, m)

	p, err := tr.ReviewCard(ctx, "card-1", true)
	require.NoError(t, err)
	assert.Equal(t, 1, p.Total)
	assert.Equal(t, 1, p.Correct)
	assert.Equal(t, 1, p.Reps)
	assert.NotEqual(t, int(fsrs.New), p.State)
	assert.True(t, p.Due.After(fixedNow), "next review is scheduled in the future")
	assert.Equal(t, fixedNow, p.LastReview)

	p, err = tr.ReviewCard(ctx, "card-1", false)
	require.NoError(t, err)
	assert.Equal(t, 2, p.Total)
	assert.Equal(t, 1, p.Correct)
	assert.Equal(t, 2, p.Reps)

	m, err = tr.CardMastery(ctx, "card-1")
	require.NoError(t, err)
	assert.Equal(t, 50, m)

	_, err = tr.ReviewCard(ctx, "  ", true)
	assert.True(t, errors.Is(err, ErrUnknownCard))
}

func TestStoreKeyLayout(t *testing.T) {
	tr := newTracker(t)
	ctx := context.Background()

	_, err := tr.Ingest(ctx, " Cells ", []types.QuizResult{{Question: "What is a cell?", Correct: true}})
	require.NoError(t, err)
	_, err = tr.ReviewCard(ctx, "card-1", true)
	require.NoError(t, err)

	for _, key := range []string{"performance/Cells", "flashcard/card-1"} {
		_, err := tr.kv.Get(ctx, key)
		assert.NoError(t, err, key)
	}
}

func TestDueCards(t *testing.T) {
	tr := newTracker(t)
	ctx := context.Background()

	_, err := tr.ReviewCard(ctx, "seen", true)
	require.NoError(t, err)

	due, err := tr.DueCards(ctx, []string{"new", "seen"}, fixedNow)
	require.NoError(t, err)
	assert.Equal(t, []string{"new"}, due)

	due, err = tr.DueCards(ctx, []string{"new", "seen"}, fixedNow.Add(30*24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, []string{"new", "seen"}, due)
}
