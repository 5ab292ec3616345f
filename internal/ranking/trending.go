package ranking

import (
	"math"
	"sort"
	"time"

	"github.com/feedhub/feedrank/internal/entities"
)

const (
	trendingWindowHours = 48
	minTrendingAgeHours = 0.5
)

// TrendingScore returns engagement velocity boosted by recency; posts older than 48 hours score 0.
func (e *Engine) TrendingScore(p *entities.Post) (float64, error) {
	if err := validate(p); err != nil {
		return 0, err
	}

	return trendingScore(p, e.now()), nil
}

// Trending returns top limit posts with positive trending score. Non-positive limit means no limit.
func (e *Engine) Trending(posts []*entities.Post, limit int) ([]*entities.Post, error) {
	if err := validateAll(posts); err != nil {
		return nil, err
	}

	now := e.now()
	scored := make([]entities.ScoredPost, 0, len(posts))
	for _, p := range posts {
		if s := trendingScore(p, now); s > 0 {
			scored = append(scored, entities.ScoredPost{Post: p, Score: s})
		}
	}

	sortScored(scored)

	out := make([]*entities.Post, len(scored))
	for i, v := range scored {
		out[i] = v.Post
	}

	return truncate(out, limit), nil
}

// CompanyTrending sums positive trending scores by company.
func (e *Engine) CompanyTrending(posts []*entities.Post) ([]entities.CompanyTrend, error) {
	if err := validateAll(posts); err != nil {
		return nil, err
	}

	now := e.now()
	idx := make(map[string]int)
	var out []entities.CompanyTrend

	for _, p := range posts {
		s := trendingScore(p, now)
		if s <= 0 {
			continue
		}

		i, ok := idx[p.Company]
		if !ok {
			i = len(out)
			idx[p.Company] = i
			out = append(out, entities.CompanyTrend{Company: p.Company})
		}

		out[i].Score += s
		out[i].PostCount++
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Company < out[j].Company
	})

	return out, nil
}

func trendingScore(p *entities.Post, now time.Time) float64 {
	age := ageInHours(p, now)
	if age > trendingWindowHours {
		return 0
	}

	velocity := engagementScore(p) / math.Max(age, minTrendingAgeHours)
	recency := math.Max(0, trendingWindowHours-age) / trendingWindowHours

	return velocity * (1 + recency)
}
