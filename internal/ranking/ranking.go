// Package ranking orders posts for the home feed.
//
// A post's score blends six signals: time decay, engagement, velocity, personalization,
// diversity and quality. Everything here is pure and safe for concurrent use; the only state
// is the entities.Shown accumulator which callers own and thread between pages.
package ranking

import (
	"math"
	"sort"
	"time"

	"github.com/feedhub/feedrank/internal/entities"
)

// Weights are the shares of each signal in the composite score.
type Weights struct {
	Engagement      float64
	Velocity        float64
	TimeDecay       float64
	Personalization float64
	Diversity       float64
	Quality         float64
}

// nolint:gochecknoglobals
var (
	// DefaultWeights is the hand-tuned production profile.
	DefaultWeights = Weights{
		Engagement:      0.30,
		Velocity:        0.25,
		TimeDecay:       0.20,
		Personalization: 0.15,
		Diversity:       0.05,
		Quality:         0.05,
	}
	// EngagementWeights favours active discussions.
	EngagementWeights = Weights{
		Engagement:      0.40,
		Velocity:        0.30,
		TimeDecay:       0.10,
		Personalization: 0.10,
		Diversity:       0.05,
		Quality:         0.05,
	}
	// RecencyWeights favours fresh posts.
	RecencyWeights = Weights{
		Engagement:      0.20,
		Velocity:        0.15,
		TimeDecay:       0.45,
		Personalization: 0.10,
		Diversity:       0.05,
		Quality:         0.05,
	}
)

// Multipliers bringing near-1 signals to the scale of raw engagement.
const (
	decayScale      = 100
	multiplierScale = 50
)

// Option configures Engine.
type Option func(e *Engine)

// WithClock sets the source of current time.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithWeights overrides DefaultWeights.
func WithWeights(w Weights) Option {
	return func(e *Engine) {
		e.w = w
	}
}

// Engine scores and ranks posts.
type Engine struct {
	w   Weights
	now func() time.Time
}

// New creates new instance of Engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		w:   DefaultWeights,
		now: time.Now,
	}

	for _, o := range opts {
		o(e)
	}

	return e
}

// PostScore returns composite score of the post.
// Diversity is computed against shown which may be nil.
func (e *Engine) PostScore(p *entities.Post, profile *entities.Profile, shown *entities.Shown) (float64, error) {
	if err := validate(p); err != nil {
		return 0, err
	}

	return e.baseScore(p, profile, e.now()) + e.diversityTerm(newHistory(shown).diversity(p)), nil
}

// Rank returns posts ordered by score, best first.
//
// The list is built greedily: every step re-scores the remaining posts against what has been
// emitted so far, so repeated companies and authors are pushed down progressively.
// shown seeds that history (e.g. from previous feed pages) and is extended in place with every
// emitted post. Ties are broken by post id.
func (e *Engine) Rank(posts []*entities.Post, profile *entities.Profile, shown *entities.Shown) ([]*entities.Post, error) {
	scored, err := e.RankScored(posts, profile, shown)
	if err != nil {
		return nil, err
	}

	out := make([]*entities.Post, len(scored))
	for i, v := range scored {
		out[i] = v.Post
	}

	return out, nil
}

// RankScored is Rank which also returns the score every post had when it was emitted.
func (e *Engine) RankScored(posts []*entities.Post, profile *entities.Profile, shown *entities.Shown) ([]entities.ScoredPost, error) {
	if err := validateAll(posts); err != nil {
		return nil, err
	}

	if shown == nil {
		shown = &entities.Shown{}
	}

	now := e.now()

	type candidate struct {
		p    *entities.Post
		base float64
	}

	rest := make([]candidate, len(posts))
	for i, p := range posts {
		rest[i] = candidate{p: p, base: e.baseScore(p, profile, now)}
	}

	h := newHistory(shown)
	out := make([]entities.ScoredPost, 0, len(posts))

	for len(rest) > 0 {
		best, bestScore := 0, rest[0].base+e.diversityTerm(h.diversity(rest[0].p))

		for i := 1; i < len(rest); i++ {
			score := rest[i].base + e.diversityTerm(h.diversity(rest[i].p))
			if before(score, rest[i].p.ID, bestScore, rest[best].p.ID) {
				best, bestScore = i, score
			}
		}

		p := rest[best].p
		out = append(out, entities.ScoredPost{Post: p, Score: bestScore})
		shown.Push(p)
		h.push(p)

		rest[best] = rest[len(rest)-1]
		rest = rest[:len(rest)-1]
	}

	return out, nil
}

// Recommendations ranks posts the user hasn't voted for yet and returns top limit of them.
func (e *Engine) Recommendations(posts []*entities.Post, profile *entities.Profile, limit int) ([]*entities.Post, error) {
	fresh := make([]*entities.Post, 0, len(posts))
	for _, p := range posts {
		if p != nil && profile.HasVoted(p.ID) {
			continue
		}
		fresh = append(fresh, p)
	}

	ranked, err := e.Rank(fresh, profile, nil)
	if err != nil {
		return nil, err
	}

	return truncate(ranked, limit), nil
}

func (e *Engine) baseScore(p *entities.Post, profile *entities.Profile, now time.Time) float64 {
	age := ageInHours(p, now)
	engagement := engagementScore(p)

	return engagement*e.w.Engagement +
		velocityScore(engagement, age)*e.w.Velocity +
		timeDecay(age)*decayScale*e.w.TimeDecay +
		personalization(p, profile)*multiplierScale*e.w.Personalization +
		quality(p, age)*multiplierScale*e.w.Quality
}

func (e *Engine) diversityTerm(d float64) float64 {
	return d * multiplierScale * e.w.Diversity
}

// before reports whether (score, id) goes ahead of (otherScore, otherID).
func before(score float64, id string, otherScore float64, otherID string) bool {
	if score != otherScore {
		return score > otherScore
	}

	return id < otherID
}

func sortScored(v []entities.ScoredPost) {
	sort.Slice(v, func(i, j int) bool {
		return before(v[i].Score, v[i].ID, v[j].Score, v[j].ID)
	})
}

func truncate(posts []*entities.Post, limit int) []*entities.Post {
	if limit > 0 && len(posts) > limit {
		return posts[:limit]
	}

	return posts
}

// history counts companies and authors which were already shown.
type history struct {
	companies map[string]int
	users     map[string]int
}

func newHistory(s *entities.Shown) history {
	h := history{
		companies: map[string]int{},
		users:     map[string]int{},
	}

	if s == nil {
		return h
	}

	for _, v := range s.Companies {
		h.companies[v]++
	}
	for _, v := range s.Users {
		h.users[v]++
	}

	return h
}

func (h history) push(p *entities.Post) {
	h.companies[p.Company]++
	h.users[p.UserID]++
}

func (h history) diversity(p *entities.Post) float64 {
	return diversity(h.companies[p.Company], h.users[p.UserID])
}

func ageInHours(p *entities.Post, now time.Time) float64 {
	return math.Max(now.Sub(p.CreatedAt).Hours(), 0)
}
