package server

import (
	"time"

	"github.com/feedhub/feedrank/internal/entities"
	"github.com/feedhub/feedrank/internal/service"
)

const (
	maxLimit     = 100
	defaultLimit = 20
)

// Error ...
// swagger:model
type Error struct {
	Error string `json:"error"`
}

// Post ...
// swagger:model
type Post struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	Type          string    `json:"type,omitempty"`
	Company       string    `json:"company,omitempty"`
	Title         string    `json:"title,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	Votes         int       `json:"votes"`
	CommentsCount int       `json:"comments_count"`
	Views         int       `json:"views"`
	Shares        int       `json:"shares"`
}

// ScoredPost ...
// swagger:model
type ScoredPost struct {
	Post
	Score float64 `json:"score"`
}

// FeedResponse ...
// swagger:model
type FeedResponse struct {
	// Session should be passed to the next request to continue the feed.
	Session string           `json:"session"`
	Variant entities.Variant `json:"variant"`
	Posts   []Post           `json:"posts"`
}

// PostsResponse ...
// swagger:model
type PostsResponse struct {
	Posts []Post `json:"posts"`
}

// CompanyTrend ...
// swagger:model
type CompanyTrend struct {
	Company   string  `json:"company"`
	Score     float64 `json:"score"`
	PostCount int     `json:"post_count"`
}

// CompanyTrendingResponse ...
// swagger:model
type CompanyTrendingResponse struct {
	Companies []CompanyTrend `json:"companies"`
}

// VariantResponse ...
// swagger:model
type VariantResponse struct {
	Variant entities.Variant `json:"variant"`
}

// Profile ...
// swagger:model
type Profile struct {
	UserID              string   `json:"user_id"`
	FollowedUsers       []string `json:"followed_users"`
	InteractedCompanies []string `json:"interacted_companies"`
	PreferredTypes      []string `json:"preferred_types"`
	VotedPosts          []string `json:"voted_posts"`
}

// RankRequest ...
// swagger:model
type RankRequest struct {
	Posts   []Post   `json:"posts"`
	Profile *Profile `json:"profile,omitempty"`
}

// RankResponse ...
// swagger:model
type RankResponse struct {
	Posts []ScoredPost `json:"posts"`
}

func toAPIPost(p *entities.Post) Post {
	return Post{
		ID:            p.ID,
		UserID:        p.UserID,
		Type:          p.Type,
		Company:       p.Company,
		Title:         p.Title,
		CreatedAt:     p.CreatedAt,
		Votes:         p.Votes,
		CommentsCount: p.CommentsCount,
		Views:         p.Views,
		Shares:        p.Shares,
	}
}

func toAPIPosts(posts []*entities.Post) []Post {
	out := make([]Post, len(posts))
	for i, p := range posts {
		out[i] = toAPIPost(p)
	}
	return out
}

func toAPIFeed(f *service.Feed) FeedResponse {
	return FeedResponse{
		Session: f.Session,
		Variant: f.Variant,
		Posts:   toAPIPosts(f.Posts),
	}
}

func toAPICompanyTrending(v []entities.CompanyTrend) CompanyTrendingResponse {
	out := CompanyTrendingResponse{Companies: make([]CompanyTrend, len(v))}
	for i, c := range v {
		out.Companies[i] = CompanyTrend{
			Company:   c.Company,
			Score:     c.Score,
			PostCount: c.PostCount,
		}
	}
	return out
}

func toAPIScoredPost(p entities.ScoredPost) ScoredPost {
	return ScoredPost{
		Post:  toAPIPost(p.Post),
		Score: p.Score,
	}
}

func toAPIRankResponse(v []entities.ScoredPost) RankResponse {
	out := RankResponse{Posts: make([]ScoredPost, len(v))}
	for i, p := range v {
		out.Posts[i] = toAPIScoredPost(p)
	}
	return out
}

func (r RankRequest) toEntities() ([]*entities.Post, *entities.Profile) {
	posts := make([]*entities.Post, len(r.Posts))
	for i, p := range r.Posts {
		posts[i] = &entities.Post{
			ID:            p.ID,
			UserID:        p.UserID,
			Type:          p.Type,
			Company:       p.Company,
			Title:         p.Title,
			CreatedAt:     p.CreatedAt,
			Votes:         p.Votes,
			CommentsCount: p.CommentsCount,
			Views:         p.Views,
			Shares:        p.Shares,
		}
	}

	if r.Profile == nil {
		return posts, nil
	}

	return posts, &entities.Profile{
		UserID:              r.Profile.UserID,
		FollowedUsers:       entities.NewSet(r.Profile.FollowedUsers...),
		InteractedCompanies: entities.NewSet(r.Profile.InteractedCompanies...),
		PreferredTypes:      entities.NewSet(r.Profile.PreferredTypes...),
		VotedPosts:          entities.NewSet(r.Profile.VotedPosts...),
	}
}
