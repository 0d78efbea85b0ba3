// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package adaptive keeps the per-topic performance model. It ingests quiz
// results, tracks weak areas, and derives mastery, a recommended
// difficulty, and follow-up suggestions. It also schedules flashcard
// reviews.
package adaptive

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"strings"
	"sync"
	"time"

	fsrs "github.com/open-spaced-repetition/go-fsrs"
	"github.com/rotisserie/eris"

	"github.com/pdiddy/studycraft/internal/store"
	"github.com/pdiddy/studycraft/pkg/types"
)

// Key namespaces in the store.
const (
	performanceNS = "performance"
	flashcardNS   = "flashcard"
)

var performancePrefix = store.Key(performanceNS, "")

const (
	// MaxWeakAreas caps the weak-area list; the oldest entries go first.
	MaxWeakAreas = 5

	conceptsPerQuestion = 3
	minConceptLen       = 5
	reviewAction        = "Review flashcards"
)

// Follow-up messages per tier.
const (
	MessageDone        = "Great job! You're mastering this topic."
	MessageStruggling  = "You're still learning! Focus on these areas to improve."
	MessageProgressing = "Good progress! Let's strengthen these areas."
	MessagePolishing   = "Almost there! A bit more practice on these topics."
)

// KV is the subset of the store the tracker needs.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	List(ctx context.Context, prefix string) ([]store.Entry, error)
	Update(ctx context.Context, key string, fn func(old []byte) ([]byte, error)) error
}

// Tracker reads and writes performance and flashcard records. Writes to
// the same key are serialized.
type Tracker struct {
	kv     KV
	locks  keyLocks
	params fsrs.Parameters

	// Now returns the current time. Tests replace it.
	Now func() time.Time
}

// NewTracker returns a tracker over kv.
func NewTracker(kv KV) *Tracker {
	return &Tracker{
		kv:     kv,
		locks:  keyLocks{m: make(map[string]*keyLock)},
		params: fsrs.DefaultParam(),
		Now:    func() time.Time { return time.Now().UTC() },
	}
}

func performanceKey(topic string) string { return store.Key(performanceNS, strings.TrimSpace(topic)) }

// Ingest adds a batch of quiz results to topic's record and returns the
// updated record. Every wrong answer contributes up to three weak-area
// keywords.
func (t *Tracker) Ingest(ctx context.Context, topic string, results []types.QuizResult) (types.PerformanceRecord, error) {
	var rec types.PerformanceRecord
	err := t.update(ctx, performanceKey(topic), func(cur *types.PerformanceRecord) {
		cur.Attempts += len(results)
		for _, r := range results {
			if r.Correct {
				cur.Correct++
				continue
			}
			cur.WeakAreas = MergeWeakAreas(cur.WeakAreas, ExtractConcepts(r.Question))
		}
		cur.LastStudied = t.Now()
		rec = *cur
	})
	return rec, err
}

// SetDifficulty stores a difficulty preference for topic, creating the
// record if needed.
func (t *Tracker) SetDifficulty(ctx context.Context, topic string, d types.Difficulty) error {
	if !d.Valid() {
		return eris.Errorf("adaptive: invalid difficulty %q", d)
	}
	return t.update(ctx, performanceKey(topic), func(cur *types.PerformanceRecord) {
		cur.Difficulty = d
	})
}

// Reset deletes topic's record. Later reads behave as if the topic was
// never studied.
func (t *Tracker) Reset(ctx context.Context, topic string) error {
	key := performanceKey(topic)
	unlock := t.locks.lock(key)
	defer unlock()
	return eris.Wrapf(t.kv.Delete(ctx, key), "adaptive: reset %s", topic)
}

// update runs a read-modify-write of one performance record under the
// key lock and a store transaction.
func (t *Tracker) update(ctx context.Context, key string, fn func(*types.PerformanceRecord)) error {
	unlock := t.locks.lock(key)
	defer unlock()

	err := t.kv.Update(ctx, key, func(old []byte) ([]byte, error) {
		rec := newRecord(t.Now())
		if old != nil {
			if err := json.Unmarshal(old, &rec); err != nil {
				return nil, eris.Wrapf(err, "adaptive: decode %s", key)
			}
		}
		fn(&rec)
		return json.Marshal(rec)
	})
	return eris.Wrapf(err, "adaptive: update %s", key)
}

func newRecord(now time.Time) types.PerformanceRecord {
	return types.PerformanceRecord{WeakAreas: []string{}, LastStudied: now, Difficulty: types.Beginner}
}

// Record returns topic's record and whether one exists.
func (t *Tracker) Record(ctx context.Context, topic string) (types.PerformanceRecord, bool, error) {
	raw, err := t.kv.Get(ctx, performanceKey(topic))
	if errors.Is(err, store.ErrNotFound) {
		return types.PerformanceRecord{}, false, nil
	}
	if err != nil {
		return types.PerformanceRecord{}, false, eris.Wrapf(err, "adaptive: read %s", topic)
	}
	var rec types.PerformanceRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return types.PerformanceRecord{}, false, eris.Wrapf(err, "adaptive: decode %s", topic)
	}
	return rec, true, nil
}

// All returns every performance record keyed by topic.
func (t *Tracker) All(ctx context.Context) (map[string]types.PerformanceRecord, error) {
	entries, err := t.kv.List(ctx, performancePrefix)
	if err != nil {
		return nil, eris.Wrap(err, "adaptive: list performance")
	}
	out := make(map[string]types.PerformanceRecord, len(entries))
	for _, e := range entries {
		var rec types.PerformanceRecord
		if err := json.Unmarshal(e.Value, &rec); err != nil {
			return nil, eris.Wrapf(err, "adaptive: decode %s", e.Key)
		}
		out[strings.TrimPrefix(e.Key, performancePrefix)] = rec
	}
	return out, nil
}

// Mastery returns topic's mastery percentage, 0 when never attempted.
func (t *Tracker) Mastery(ctx context.Context, topic string) (int, error) {
	rec, _, err := t.Record(ctx, topic)
	return MasteryOf(rec), err
}

// RecommendedDifficulty returns the advisory level for topic.
func (t *Tracker) RecommendedDifficulty(ctx context.Context, topic string) (types.Difficulty, error) {
	m, err := t.Mastery(ctx, topic)
	return Recommend(m), err
}

// FollowUp returns the feedback for topic.
func (t *Tracker) FollowUp(ctx context.Context, topic string) (types.FollowUp, error) {
	rec, _, err := t.Record(ctx, topic)
	if err != nil {
		return types.FollowUp{}, err
	}
	return BuildFollowUp(rec), nil
}

// MasteryOf returns round(100 * Correct / Attempts), or 0 with no attempts.
func MasteryOf(rec types.PerformanceRecord) int {
	return types.Percent(rec.Correct, rec.Attempts)
}

// Recommend maps a mastery percentage to a difficulty.
func Recommend(mastery int) types.Difficulty {
	switch {
	case mastery >= 80:
		return types.Advanced
	case mastery >= 50:
		return types.Intermediate
	}
	return types.Beginner
}

// BuildFollowUp derives the feedback message and suggestions for rec.
func BuildFollowUp(rec types.PerformanceRecord) types.FollowUp {
	mastery := MasteryOf(rec)
	if len(rec.WeakAreas) == 0 {
		return types.FollowUp{Tier: types.TierDone, Message: MessageDone, Mastery: mastery, Suggestions: []types.Suggestion{}}
	}

	f := types.FollowUp{Mastery: mastery}
	var priority types.Priority
	switch {
	case mastery < 50:
		f.Tier, f.Message, priority = types.TierStruggling, MessageStruggling, types.PriorityHigh
	case mastery < 80:
		f.Tier, f.Message, priority = types.TierProgressing, MessageProgressing, types.PriorityMedium
	default:
		f.Tier, f.Message, priority = types.TierPolishing, MessagePolishing, types.PriorityLow
	}
	f.Suggestions = make([]types.Suggestion, len(rec.WeakAreas))
	for i, area := range rec.WeakAreas {
		f.Suggestions[i] = types.Suggestion{Area: area, Action: reviewAction, Priority: priority}
	}
	return f
}

var conceptPunct = regexp.MustCompile(`[?.,!]`)

// ExtractConcepts returns up to three lowercased words longer than four
// characters from question, in order of appearance.
func ExtractConcepts(question string) []string {
	words := strings.Fields(conceptPunct.ReplaceAllString(strings.ToLower(question), ""))
	out := make([]string, 0, conceptsPerQuestion)
	for _, w := range words {
		if len([]rune(w)) < minConceptLen {
			continue
		}
		out = append(out, w)
		if len(out) == conceptsPerQuestion {
			break
		}
	}
	return out
}

// MergeWeakAreas appends concepts not already present and keeps the most
// recent MaxWeakAreas entries.
func MergeWeakAreas(existing, concepts []string) []string {
	out := append([]string{}, existing...)
	for _, c := range concepts {
		dup := false
		for _, e := range out {
			if e == c {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, c)
		}
	}
	if len(out) > MaxWeakAreas {
		out = out[len(out)-MaxWeakAreas:]
	}
	return out
}

// keyLocks hands out one mutex per key and drops it when unused.
type keyLocks struct {
	mu sync.Mutex
	m  map[string]*keyLock
}

type keyLock struct {
	sync.Mutex
	refs int
}

func (k *keyLocks) lock(key string) (unlock func()) {
	k.mu.Lock()
	l, ok := k.m[key]
	if !ok {
		l = &keyLock{}
		k.m[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.Lock()
	return func() {
		l.Unlock()
		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.m, key)
		}
		k.mu.Unlock()
	}
}
