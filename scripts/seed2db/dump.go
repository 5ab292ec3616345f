package main

import (
	"context"
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/sirupsen/logrus"

	"github.com/feedhub/feedrank/internal/entities"
	"github.com/feedhub/feedrank/internal/storage"
)

type dump struct {
	Posts      []dumpPost       `json:"posts"`
	Votes      []dumpVote       `json:"votes"`
	Follows    []dumpFollow     `json:"follows"`
	Unfollows  []dumpFollow     `json:"unfollows"`
	Engagement []dumpEngagement `json:"engagement"`
}

type dumpPost struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	Type      string     `json:"type"`
	Company   string     `json:"company"`
	Title     string     `json:"title"`
	CreatedAt time.Time  `json:"created_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

type dumpVote struct {
	PostID    string             `json:"post_id"`
	UserID    string             `json:"user_id"`
	Weight    storage.VoteWeight `json:"weight"`
	CreatedAt time.Time          `json:"created_at"`
}

type dumpFollow struct {
	Follower string `json:"follower"`
	Followee string `json:"followee"`
}

type dumpEngagement struct {
	PostID   string `json:"post_id"`
	Comments int    `json:"comments"`
	Views    int    `json:"views"`
	Shares   int    `json:"shares"`
}

func importDump(ctx context.Context, s storage.Storage, d *dump) error {
	return s.InTx(ctx, func(s storage.Storage) error {
		logrus.Info("import posts")
		for i, v := range d.Posts {
			if err := s.CreatePost(ctx, &entities.Post{
				ID:        v.ID,
				UserID:    v.UserID,
				Type:      v.Type,
				Company:   v.Company,
				Title:     v.Title,
				CreatedAt: v.CreatedAt,
			}); err != nil {
				return fmt.Errorf("failed to put post %s into db: %w", v.ID, err)
			}

			if (i+1)%100 == 0 {
				logrus.Infof("%d of %d posts imported", i+1, len(d.Posts))
			}
		}

		logrus.Info("import votes")
		for _, v := range d.Votes {
			if err := s.SetVote(ctx, v.PostID, v.UserID, v.Weight, v.CreatedAt); err != nil {
				return fmt.Errorf("failed to put vote for %s into db: %w", v.PostID, err)
			}
		}

		logrus.Info("import follows")
		for _, v := range d.Follows {
			if err := s.Follow(ctx, v.Follower, v.Followee); err != nil {
				return fmt.Errorf("failed to put following into db: %w", err)
			}
		}

		logrus.Info("import unfollows")
		for _, v := range d.Unfollows {
			if err := s.Unfollow(ctx, v.Follower, v.Followee); err != nil {
				return fmt.Errorf("failed to remove following from db: %w", err)
			}
		}

		logrus.Info("import engagement")
		for _, v := range d.Engagement {
			if err := s.AddEngagement(ctx, v.PostID, entities.Engagement{
				Comments: v.Comments,
				Views:    v.Views,
				Shares:   v.Shares,
			}); err != nil {
				return fmt.Errorf("failed to put engagement of %s into db: %w", v.PostID, err)
			}
		}

		logrus.Info("import deletions")
		for _, v := range d.Posts {
			if v.DeletedAt == nil {
				continue
			}

			if err := s.DeletePost(ctx, v.ID, *v.DeletedAt); err != nil {
				return fmt.Errorf("failed to delete post %s: %w", v.ID, err)
			}
		}

		return nil
	})
}

// fakeDump generates a dump of n posts from a handful of companies and authors.
func fakeDump(n int, seed int64, now time.Time) *dump {
	f := gofakeit.New(seed)

	companies := make([]string, n/20+1)
	for i := range companies {
		companies[i] = f.Company()
	}

	users := make([]string, n/5+2)
	for i := range users {
		users[i] = fmt.Sprintf("%s%d", f.Username(), i)
	}

	types := []string{"Bug Report", "Feature Request", "Complaint", "Praise"}

	var d dump
	for i := 0; i < n; i++ {
		id := f.UUID()

		p := dumpPost{
			ID:        id,
			UserID:    f.RandomString(users),
			Type:      f.RandomString(types),
			Company:   f.RandomString(companies),
			Title:     f.Sentence(6),
			CreatedAt: now.Add(-time.Duration(f.Number(0, 7*24*60)) * time.Minute),
		}
		if f.Number(0, 19) == 0 {
			deleted := p.CreatedAt.Add(time.Duration(f.Number(1, 60)) * time.Minute)
			p.DeletedAt = &deleted
		}
		d.Posts = append(d.Posts, p)

		voters := append([]string(nil), users...)
		f.ShuffleStrings(voters)
		for _, u := range voters[:f.Number(0, len(voters)/2)] {
			w := storage.Upvote
			if f.Number(0, 4) == 0 {
				w = storage.Downvote
			}

			d.Votes = append(d.Votes, dumpVote{PostID: id, UserID: u, Weight: w, CreatedAt: now})
		}

		d.Engagement = append(d.Engagement, dumpEngagement{PostID: id, Comments: f.Number(0, 30), Views: f.Number(0, 2000), Shares: f.Number(0, 10)})
	}

	for i, follower := range users {
		followee := users[(i+1)%len(users)]
		d.Follows = append(d.Follows, dumpFollow{Follower: follower, Followee: followee})

		if i%10 == 0 {
			d.Unfollows = append(d.Unfollows, dumpFollow{Follower: follower, Followee: followee})
		}
	}

	return &d
}
