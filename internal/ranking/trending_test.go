package ranking

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feedhub/feedrank/internal/entities"
)

// trendingPost returns a post with trending score engagement/48 when it's exactly 48 hours old.
func trendingPost(id, company string, votes int, age float64) *entities.Post {
	return &entities.Post{
		ID:        id,
		UserID:    "author-" + id,
		Company:   company,
		Votes:     votes,
		Views:     votes, // engagement = 2 * votes
		CreatedAt: hoursAgo(age),
	}
}

func TestEngine_TrendingScore(t *testing.T) {
	e := newEngine()

	tt := []struct {
		name string
		post *entities.Post
		want float64
	}{
		{name: "window edge", post: trendingPost("1", "a", 120, 48), want: 5},
		{name: "out of window", post: trendingPost("1", "a", 120, 48.0001), want: 0},
		{name: "half window", post: trendingPost("1", "a", 120, 24), want: 240.0 / 24 * 1.5},
		{name: "brand new", post: trendingPost("1", "a", 120, 0), want: 240.0 / 0.5 * 2},
		{name: "young", post: trendingPost("1", "a", 120, 0.25), want: 240.0 / 0.5 * (1 + 47.75/48)},
		{name: "no engagement", post: trendingPost("1", "a", 0, 1), want: 0},
	}

	for _, tc := range tt {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			s, err := e.TrendingScore(tc.post)
			require.NoError(t, err)
			assert.InDelta(t, tc.want, s, 1e-9)
		})
	}

	s, err := e.TrendingScore(trendingPost("1", "a", 120, 47.9999))
	require.NoError(t, err)
	assert.Greater(t, s, 0.0)

	_, err = e.TrendingScore(&entities.Post{ID: "1"})
	require.True(t, errors.Is(err, ErrInvalidPostData))
}

func TestEngine_Trending(t *testing.T) {
	e := newEngine()

	var posts []*entities.Post
	for i := 0; i < 7; i++ {
		posts = append(posts, trendingPost(fmt.Sprintf("fresh-%d", i), "a", 10*(i+1), float64(i+1)))
	}
	for i := 0; i < 3; i++ {
		posts = append(posts, trendingPost(fmt.Sprintf("stale-%d", i), "a", 1000, 49+float64(i)))
	}

	got, err := e.Trending(posts, 20)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(got), 7)
	for _, p := range got {
		assert.NotContains(t, p.ID, "stale")
	}

	scores := make([]float64, len(got))
	for i, p := range got {
		scores[i], _ = e.TrendingScore(p)
	}
	for i := 1; i < len(scores); i++ {
		assert.GreaterOrEqual(t, scores[i-1], scores[i])
	}

	top, err := e.Trending(posts, 3)
	require.NoError(t, err)
	assert.Equal(t, ids(got[:3]), ids(top))
}

func TestEngine_Trending_SkipsNonPositive(t *testing.T) {
	got, err := newEngine().Trending([]*entities.Post{
		trendingPost("zero", "a", 0, 1),
		{ID: "down", Votes: -5, Views: 100, CreatedAt: hoursAgo(1)},
		{ID: "heavy-down", Votes: -5, Views: 1, CreatedAt: hoursAgo(1)},
		trendingPost("up", "a", 5, 1),
	}, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"up"}, ids(got))
}

func TestEngine_CompanyTrending(t *testing.T) {
	e := newEngine()

	got, err := e.CompanyTrending([]*entities.Post{
		trendingPost("a1", "A", 120, 48), // 5
		trendingPost("b1", "B", 240, 48), // 10
		trendingPost("a2", "A", 72, 48),  // 3
		trendingPost("c1", "C", 500, 72), // out of window
	})
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, "B", got[0].Company)
	assert.InDelta(t, 10, got[0].Score, 1e-9)
	assert.Equal(t, 1, got[0].PostCount)
	assert.Equal(t, "A", got[1].Company)
	assert.InDelta(t, 8, got[1].Score, 1e-9)
	assert.Equal(t, 2, got[1].PostCount)
}

func TestEngine_CompanyTrending_Downvoted(t *testing.T) {
	e := newEngine()

	down := &entities.Post{ID: "d1", Company: "D", Votes: -5, Views: 1, CreatedAt: hoursAgo(1)}
	score, err := e.TrendingScore(down)
	require.NoError(t, err)
	assert.Less(t, score, 0.0)

	got, err := e.CompanyTrending([]*entities.Post{down, trendingPost("a1", "A", 10, 1)})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "A", got[0].Company)
	assert.Equal(t, 1, got[0].PostCount)
}

func TestEngine_CompanyTrending_Empty(t *testing.T) {
	got, err := newEngine().CompanyTrending(nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestVariantFor(t *testing.T) {
	tt := []struct {
		userID string
		want   entities.Variant
	}{
		{userID: "", want: entities.DefaultVariant},
		{userID: "a", want: entities.EngagementVariant}, // 97
		{userID: "b", want: entities.RecencyVariant},    // 98
		{userID: "c", want: entities.DefaultVariant},    // 99
		{userID: "ab", want: entities.DefaultVariant},   // 195
		{userID: "😀", want: entities.EngagementVariant}, // 0xD83D + 0xDE00 = 112189
	}

	for _, tc := range tt {
		tc := tc
		t.Run(tc.userID, func(t *testing.T) {
			assert.Equal(t, tc.want, VariantFor(tc.userID))
			assert.Equal(t, tc.want, VariantFor(tc.userID), "assignment must be stable")
		})
	}

	assert.Equal(t, EngagementWeights, WeightsFor(entities.EngagementVariant))
	assert.Equal(t, RecencyWeights, WeightsFor(entities.RecencyVariant))
	assert.Equal(t, DefaultWeights, WeightsFor(entities.DefaultVariant))
	assert.Equal(t, DefaultWeights, WeightsFor("unknown"))
}
