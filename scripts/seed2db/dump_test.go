package main

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feedhub/feedrank/internal/entities"
	storageinterface "github.com/feedhub/feedrank/internal/storage"
	storage "github.com/feedhub/feedrank/internal/storage/mock"
)

var now = time.Date(2021, 3, 1, 12, 0, 0, 0, time.UTC)

const testDump = `{
	"posts":[
		{"id":"p1","user_id":"u1","type":"Bug Report","company":"acme","title":"t","created_at":"2021-03-01T10:00:00Z"},
		{"id":"p2","user_id":"u2","type":"Praise","company":"acme","title":"t2","created_at":"2021-03-01T10:30:00Z","deleted_at":"2021-03-01T11:30:00Z"}
	],
	"votes":[{"post_id":"p1","user_id":"u2","weight":-1,"created_at":"2021-03-01T11:00:00Z"}],
	"follows":[{"follower":"u2","followee":"u1"},{"follower":"u1","followee":"u2"}],
	"unfollows":[{"follower":"u1","followee":"u2"}],
	"engagement":[{"post_id":"p1","comments":2,"views":30,"shares":1}]
}`

func Test_importDump(t *testing.T) {
	var d dump
	require.NoError(t, json.Unmarshal([]byte(testDump), &d))

	ctrl := gomock.NewController(t)
	s := storage.NewMockStorage(ctrl)
	tx := storage.NewMockStorage(ctrl)

	s.EXPECT().InTx(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, f func(s storageinterface.Storage) error) error {
			return f(tx)
		},
	)

	gomock.InOrder(
		tx.EXPECT().CreatePost(gomock.Any(), &entities.Post{
			ID:        "p1",
			UserID:    "u1",
			Type:      "Bug Report",
			Company:   "acme",
			Title:     "t",
			CreatedAt: time.Date(2021, 3, 1, 10, 0, 0, 0, time.UTC),
		}).Return(nil),
		tx.EXPECT().CreatePost(gomock.Any(), &entities.Post{
			ID:        "p2",
			UserID:    "u2",
			Type:      "Praise",
			Company:   "acme",
			Title:     "t2",
			CreatedAt: time.Date(2021, 3, 1, 10, 30, 0, 0, time.UTC),
		}).Return(nil),
		tx.EXPECT().SetVote(gomock.Any(), "p1", "u2", storageinterface.Downvote, time.Date(2021, 3, 1, 11, 0, 0, 0, time.UTC)).Return(nil),
		tx.EXPECT().Follow(gomock.Any(), "u2", "u1").Return(nil),
		tx.EXPECT().Follow(gomock.Any(), "u1", "u2").Return(nil),
		tx.EXPECT().Unfollow(gomock.Any(), "u1", "u2").Return(nil),
		tx.EXPECT().AddEngagement(gomock.Any(), "p1", entities.Engagement{Comments: 2, Views: 30, Shares: 1}).Return(nil),
		tx.EXPECT().DeletePost(gomock.Any(), "p2", time.Date(2021, 3, 1, 11, 30, 0, 0, time.UTC)).Return(nil),
	)

	require.NoError(t, importDump(context.Background(), s, &d))
}

func Test_importDump_Error(t *testing.T) {
	var d dump
	require.NoError(t, json.Unmarshal([]byte(testDump), &d))

	ctrl := gomock.NewController(t)
	s := storage.NewMockStorage(ctrl)

	s.EXPECT().InTx(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, f func(s storageinterface.Storage) error) error {
			return f(s)
		},
	)
	s.EXPECT().CreatePost(gomock.Any(), gomock.Any()).Return(nil).Times(2)
	s.EXPECT().SetVote(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(storageinterface.ErrNotFound)

	err := importDump(context.Background(), s, &d)
	require.True(t, errors.Is(err, storageinterface.ErrNotFound))
}

func Test_fakeDump(t *testing.T) {
	d := fakeDump(100, 42, now)

	require.Len(t, d.Posts, 100)
	require.Len(t, d.Engagement, 100)
	require.NotEmpty(t, d.Follows)

	posts := map[string]bool{}
	for _, p := range d.Posts {
		assert.NotEmpty(t, p.ID)
		assert.False(t, p.CreatedAt.After(now))
		assert.True(t, p.CreatedAt.After(now.Add(-8*24*time.Hour)))
		posts[p.ID] = true
	}
	assert.Len(t, posts, 100)

	votes := map[[2]string]bool{}
	for _, v := range d.Votes {
		assert.True(t, posts[v.PostID])
		assert.Contains(t, []storageinterface.VoteWeight{storageinterface.Upvote, storageinterface.Downvote}, v.Weight)

		k := [2]string{v.PostID, v.UserID}
		assert.False(t, votes[k], "duplicated vote")
		votes[k] = true
	}

	for _, f := range d.Follows {
		assert.NotEqual(t, f.Follower, f.Followee)
	}

	follows := map[dumpFollow]bool{}
	for _, f := range d.Follows {
		follows[f] = true
	}
	require.NotEmpty(t, d.Unfollows)
	for _, f := range d.Unfollows {
		assert.True(t, follows[f], "unfollow without follow")
	}

	for _, p := range d.Posts {
		if p.DeletedAt != nil {
			assert.True(t, p.DeletedAt.After(p.CreatedAt))
		}
	}

	assert.Equal(t, d, fakeDump(100, 42, now))
}
