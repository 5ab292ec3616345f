// Package storage contains a storage interface.
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/feedhub/feedrank/internal/entities"
)

//go:generate mockgen -destination=./mock/storage.go -package=mock -source=storage.go

// ErrNotFound ...
var ErrNotFound = fmt.Errorf("not found")

// Storage provides methods for interacting with database.
type Storage interface {
	Ping(ctx context.Context) error
	InTx(ctx context.Context, f func(s Storage) error) error

	CreatePost(ctx context.Context, p *entities.Post) error
	GetPost(ctx context.Context, id string) (*entities.Post, error)
	DeletePost(ctx context.Context, id string, timestamp time.Time) error
	ListPosts(ctx context.Context, p *ListPostsParams) ([]*entities.Post, error)

	SetVote(ctx context.Context, postID, userID string, weight VoteWeight, timestamp time.Time) error
	AddEngagement(ctx context.Context, postID string, e entities.Engagement) error

	Follow(ctx context.Context, follower, followee string) error
	Unfollow(ctx context.Context, follower, followee string) error

	GetProfile(ctx context.Context, userID string) (*entities.Profile, error)
}

// ShownStore keeps feed sessions' diversity history.
type ShownStore interface {
	Ping(ctx context.Context) error

	// GetShown returns ErrNotFound if session is unknown or expired.
	GetShown(ctx context.Context, session string) (*entities.Shown, error)
	SetShown(ctx context.Context, session string, s *entities.Shown, ttl time.Duration) error
}

// VoteWeight ...
type VoteWeight int8

const (
	// Downvote ...
	Downvote VoteWeight = -1
	// NoVote removes user's vote.
	NoVote VoteWeight = 0
	// Upvote ...
	Upvote VoteWeight = 1
)

// ListPostsParams ...
type ListPostsParams struct {
	Limit   uint16
	Company *string
	From    *time.Time
}
