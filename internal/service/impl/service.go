// Package impl is implementation of service interface.
package impl

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/feedhub/feedrank/internal/entities"
	"github.com/feedhub/feedrank/internal/metrics"
	"github.com/feedhub/feedrank/internal/ranking"
	"github.com/feedhub/feedrank/internal/service"
	"github.com/feedhub/feedrank/internal/storage"
)

var log = logrus.WithField("layer", "service").WithField("package", "impl")

const trendingWindow = 48 * time.Hour

// Config ...
type Config struct {
	// CandidateWindow limits age of posts considered for feed and recommendations.
	CandidateWindow time.Duration
	// CandidateLimit limits count of posts considered for feed and recommendations.
	CandidateLimit uint16
	// ShownTTL is a lifetime of feed session.
	ShownTTL time.Duration
	// ShownWindow is how many recently shown companies and authors affect diversity.
	ShownWindow int
}

type srv struct {
	s     storage.Storage
	shown storage.ShownStore
	cfg   Config
	now   func() time.Time
}

// New creates new instance of service.
func New(s storage.Storage, shown storage.ShownStore, cfg Config) service.Service {
	return newSrv(s, shown, cfg)
}

func newSrv(s storage.Storage, shown storage.ShownStore, cfg Config) *srv {
	return &srv{
		s:     s,
		shown: shown,
		cfg:   cfg,
		now:   time.Now,
	}
}

func (s *srv) Feed(ctx context.Context, r service.FeedRequest) (*service.Feed, error) {
	if r.Limit <= 0 {
		return nil, fmt.Errorf("%w: limit should be positive", service.ErrInvalidRequest)
	}

	session, shown, err := s.getShown(ctx, r.Session)
	if err != nil {
		return nil, err
	}

	profile, err := s.getProfile(ctx, r.UserID)
	if err != nil {
		return nil, err
	}

	posts, err := s.candidates(ctx)
	if err != nil {
		return nil, err
	}

	seen := entities.NewSet(shown.Posts...)
	unseen := make([]*entities.Post, 0, len(posts))
	for _, p := range posts {
		if !seen.Has(p.ID) {
			unseen = append(unseen, p)
		}
	}

	bucket := r.UserID
	if bucket == "" {
		bucket = r.Bucket
	}
	variant := ranking.VariantFor(bucket)
	metrics.VariantAssignments.WithLabelValues(string(variant)).Inc()

	started := time.Now()
	ranked, err := s.engine(variant).Rank(unseen, profile, shown.Clone())
	if err != nil {
		return nil, s.rankingError("feed", err)
	}
	metrics.ObserveRanking("feed", started, len(unseen))

	if len(ranked) > r.Limit {
		ranked = ranked[:r.Limit]
	}

	for _, p := range ranked {
		shown.Push(p)
		shown.Posts = append(shown.Posts, p.ID)
	}
	shown.Trim(s.cfg.ShownWindow)

	if err := s.shown.SetShown(ctx, session, shown, s.cfg.ShownTTL); err != nil {
		log.WithError(err).WithField("session", session).Error("failed to save shown posts")
	}

	log.WithFields(logrus.Fields{
		"session":    session,
		"variant":    variant,
		"candidates": len(unseen),
		"posts":      len(ranked),
	}).Debug("feed built")

	return &service.Feed{
		Session: session,
		Variant: variant,
		Posts:   ranked,
	}, nil
}

func (s *srv) Recommendations(ctx context.Context, userID string, limit int) ([]*entities.Post, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", service.ErrInvalidRequest)
	}

	profile, err := s.getProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	posts, err := s.candidates(ctx)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	out, err := s.engine(ranking.VariantFor(userID)).Recommendations(posts, profile, limit)
	if err != nil {
		return nil, s.rankingError("recommendations", err)
	}
	metrics.ObserveRanking("recommendations", started, len(posts))

	return out, nil
}

func (s *srv) Trending(ctx context.Context, limit int, company string) ([]*entities.Post, error) {
	posts, err := s.trendingCandidates(ctx, company)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	out, err := s.engine(entities.DefaultVariant).Trending(posts, limit)
	if err != nil {
		return nil, s.rankingError("trending", err)
	}
	metrics.ObserveRanking("trending", started, len(posts))

	return out, nil
}

func (s *srv) CompanyTrending(ctx context.Context) ([]entities.CompanyTrend, error) {
	posts, err := s.trendingCandidates(ctx, "")
	if err != nil {
		return nil, err
	}

	started := time.Now()
	out, err := s.engine(entities.DefaultVariant).CompanyTrending(posts)
	if err != nil {
		return nil, s.rankingError("company_trending", err)
	}
	metrics.ObserveRanking("company_trending", started, len(posts))

	return out, nil
}

func (s *srv) Variant(userID string) entities.Variant {
	return ranking.VariantFor(userID)
}

func (s *srv) PostScore(ctx context.Context, postID, userID string) (*entities.ScoredPost, error) {
	if postID == "" {
		return nil, fmt.Errorf("%w: post id is required", service.ErrInvalidRequest)
	}

	p, err := s.s.GetPost(ctx, postID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: post %s", service.ErrNotFound, postID)
		}
		return nil, fmt.Errorf("failed to get post: %w", err)
	}

	profile, err := s.getProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	score, err := s.engine(ranking.VariantFor(userID)).PostScore(p, profile, nil)
	if err != nil {
		return nil, s.rankingError("post_score", err)
	}

	return &entities.ScoredPost{Post: p, Score: score}, nil
}

func (s *srv) Rank(posts []*entities.Post, profile *entities.Profile) ([]entities.ScoredPost, error) {
	variant := entities.DefaultVariant
	if profile != nil && profile.UserID != "" {
		variant = ranking.VariantFor(profile.UserID)
	}

	started := time.Now()
	out, err := s.engine(variant).RankScored(posts, profile, nil)
	if err != nil {
		return nil, s.rankingError("rank", err)
	}
	metrics.ObserveRanking("rank", started, len(posts))

	return out, nil
}

func (s *srv) engine(v entities.Variant) *ranking.Engine {
	return ranking.New(ranking.WithClock(s.now), ranking.WithWeights(ranking.WeightsFor(v)))
}

func (s *srv) rankingError(operation string, err error) error {
	if errors.Is(err, ranking.ErrInvalidPostData) {
		metrics.InvalidPosts.WithLabelValues(operation).Inc()
	}

	return fmt.Errorf("failed to rank posts: %w", err)
}

func (s *srv) getShown(ctx context.Context, session string) (string, *entities.Shown, error) {
	if session == "" {
		return uuid.New().String(), &entities.Shown{}, nil
	}

	shown, err := s.shown.GetShown(ctx, session)
	switch {
	case err == nil:
		return session, shown, nil
	case errors.Is(err, storage.ErrNotFound):
		log.WithField("session", session).Debug("session expired, starting over")
		return session, &entities.Shown{}, nil
	default:
		return "", nil, fmt.Errorf("failed to get shown posts: %w", err)
	}
}

func (s *srv) getProfile(ctx context.Context, userID string) (*entities.Profile, error) {
	if userID == "" {
		return nil, nil
	}

	p, err := s.s.GetProfile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	return p, nil
}

func (s *srv) candidates(ctx context.Context) ([]*entities.Post, error) {
	from := s.now().Add(-s.cfg.CandidateWindow)

	posts, err := s.s.ListPosts(ctx, &storage.ListPostsParams{
		From:  &from,
		Limit: s.cfg.CandidateLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}

	return posts, nil
}

func (s *srv) trendingCandidates(ctx context.Context, company string) ([]*entities.Post, error) {
	from := s.now().Add(-trendingWindow)

	p := storage.ListPostsParams{From: &from}
	if company != "" {
		p.Company = &company
	}

	posts, err := s.s.ListPosts(ctx, &p)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}

	return posts, nil
}
