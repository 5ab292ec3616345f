// Package service contains interface for service business-logic.
package service

import (
	"context"
	"errors"

	"github.com/feedhub/feedrank/internal/entities"
)

//go:generate mockgen -destination=./mock/service.go -package=mock -source=service.go

// ErrInvalidRequest returned when request's parameters can't be served.
var ErrInvalidRequest = errors.New("invalid request")

// ErrNotFound returned when requested post doesn't exist.
var ErrNotFound = errors.New("not found")

// Service ...
type Service interface {
	// Feed returns next page of user's home feed.
	Feed(ctx context.Context, r FeedRequest) (*Feed, error)
	Recommendations(ctx context.Context, userID string, limit int) ([]*entities.Post, error)
	// Trending returns trending posts, company is optional filter.
	Trending(ctx context.Context, limit int, company string) ([]*entities.Post, error)
	CompanyTrending(ctx context.Context) ([]entities.CompanyTrend, error)
	Variant(userID string) entities.Variant
	// PostScore returns the stored post with its composite score for the user, userID is optional.
	PostScore(ctx context.Context, postID, userID string) (*entities.ScoredPost, error)

	// Rank ranks caller's posts without touching storage.
	Rank(posts []*entities.Post, profile *entities.Profile) ([]entities.ScoredPost, error)
}

// FeedRequest ...
type FeedRequest struct {
	// UserID is optional, anonymous feed isn't personalized.
	UserID string
	// Bucket assigns anonymous reader to a variant, e.g. by IP.
	Bucket string
	// Session continues the feed from the previous page, empty value starts new one.
	Session string
	Limit   int
}

// Feed is a page of home feed.
type Feed struct {
	Session string
	Variant entities.Variant
	Posts   []*entities.Post
}
