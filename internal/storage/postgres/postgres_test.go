//go:build integration
// +build integration

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	m "github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/feedhub/feedrank/internal/entities"
	"github.com/feedhub/feedrank/internal/storage"
)

var (
	db  *sql.DB
	ctx = context.Background()
	s   storage.Storage
)

func TestMain(m *testing.M) {
	shutdown := setup()

	s = New(db)

	code := m.Run()
	shutdown()
	os.Exit(code)
}

func setup() func() {
	req := testcontainers.ContainerRequest{
		Image:        "postgres:12",
		Env:          map[string]string{"POSTGRES_PASSWORD": "root"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp"),
	}
	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
	})
	if err != nil {
		logrus.WithError(err).Fatalf("failed to create container")
	}

	if err := c.Start(ctx); err != nil {
		logrus.WithError(err).Fatal("failed to start container")
	}

	host, err := c.Host(ctx)
	if err != nil {
		logrus.WithError(err).Fatal("failed to get host")
	}

	port, err := c.MappedPort(ctx, "5432")
	if err != nil {
		logrus.WithError(err).Fatal("failed to map port")
	}

	dsn := fmt.Sprintf("host=%s port=%d user=postgres password=root sslmode=disable", host, port.Int())

	db, err = sql.Open("postgres", dsn)
	if err != nil {
		logrus.WithError(err).Fatal("failed to open connection")
	}

	if err := db.Ping(); err != nil {
		logrus.WithError(err).Fatal("failed to ping postgres")
	}

	shutdownFn := func() {
		if c != nil {
			c.Terminate(ctx)
		}
	}

	migrate("postgres", "root", host, "postgres", port.Int())

	return shutdownFn
}

func migrate(username, password, hostname, dbname string, port int) {
	_, currFile, _, ok := runtime.Caller(0)
	if !ok {
		logrus.Fatal("failed to get current file location")
	}

	migrations := filepath.Join(currFile, "../../../../scripts/migrations/postgres/")

	migrator, err := m.New(
		fmt.Sprintf("file://%s", migrations),
		fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
			username, password, hostname, port, dbname),
	)
	if err != nil {
		logrus.WithError(err).Fatal("failed to create migrator")
	}
	defer migrator.Close()

	if err := migrator.Up(); err != nil {
		logrus.WithError(err).Fatal("failed to migrate")
	}
}

func cleanup(t *testing.T) {
	for _, table := range []string{"vote", "engagement", "follow", "post"} {
		_, err := db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s`, table))
		require.NoError(t, err)
	}
}

func createPost(t *testing.T, id, user, company, typ string, createdAt time.Time) {
	require.NoError(t, s.CreatePost(ctx, &entities.Post{
		ID:        id,
		UserID:    user,
		Company:   company,
		Type:      typ,
		Title:     "title " + id,
		CreatedAt: createdAt,
	}))
}

func TestPg_Ping(t *testing.T) {
	require.NoError(t, s.Ping(ctx))
}

func TestPg_CreatePost_GetPost(t *testing.T) {
	defer cleanup(t)

	ts := time.Now().UTC().Truncate(time.Second)
	createPost(t, "1", "author", "acme", "Bug Report", ts)

	p, err := s.GetPost(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, &entities.Post{
		ID:        "1",
		UserID:    "author",
		Company:   "acme",
		Type:      "Bug Report",
		Title:     "title 1",
		CreatedAt: ts,
	}, p)

	_, err = s.GetPost(ctx, "2")
	require.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestPg_DeletePost(t *testing.T) {
	defer cleanup(t)

	createPost(t, "1", "author", "acme", "Bug Report", time.Now())

	require.NoError(t, s.DeletePost(ctx, "1", time.Now()))
	require.True(t, errors.Is(s.DeletePost(ctx, "1", time.Now()), storage.ErrNotFound))

	_, err := s.GetPost(ctx, "1")
	require.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestPg_SetVote_AddEngagement(t *testing.T) {
	defer cleanup(t)

	createPost(t, "1", "author", "acme", "Bug Report", time.Now())

	require.NoError(t, s.SetVote(ctx, "1", "u1", storage.Upvote, time.Now()))
	require.NoError(t, s.SetVote(ctx, "1", "u2", storage.Upvote, time.Now()))
	require.NoError(t, s.SetVote(ctx, "1", "u3", storage.Downvote, time.Now()))
	require.NoError(t, s.SetVote(ctx, "1", "u2", storage.Downvote, time.Now()))
	require.NoError(t, s.SetVote(ctx, "1", "u4", storage.Upvote, time.Now()))
	require.NoError(t, s.SetVote(ctx, "1", "u4", storage.NoVote, time.Now()))

	require.NoError(t, s.AddEngagement(ctx, "1", entities.Engagement{Comments: 2, Views: 10}))
	require.NoError(t, s.AddEngagement(ctx, "1", entities.Engagement{Comments: 1, Views: 5, Shares: 1}))

	p, err := s.GetPost(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, -1, p.Votes)
	assert.Equal(t, 3, p.CommentsCount)
	assert.Equal(t, 15, p.Views)
	assert.Equal(t, 1, p.Shares)

	require.True(t, errors.Is(s.SetVote(ctx, "404", "u1", storage.Upvote, time.Now()), storage.ErrNotFound))
	require.True(t, errors.Is(s.AddEngagement(ctx, "404", entities.Engagement{Views: 1}), storage.ErrNotFound))
}

func TestPg_ListPosts(t *testing.T) {
	defer cleanup(t)

	ts := time.Now().UTC().Truncate(time.Second)
	createPost(t, "1", "a", "acme", "Bug Report", ts.Add(-72*time.Hour))
	createPost(t, "2", "b", "acme", "Praise", ts.Add(-time.Hour))
	createPost(t, "3", "c", "globex", "Praise", ts)
	createPost(t, "4", "d", "globex", "Praise", ts.Add(-2*time.Hour))
	require.NoError(t, s.DeletePost(ctx, "4", ts))

	list := func(p storage.ListPostsParams) []string {
		posts, err := s.ListPosts(ctx, &p)
		require.NoError(t, err)

		ids := make([]string, len(posts))
		for i, v := range posts {
			ids[i] = v.ID
		}
		return ids
	}

	from := ts.Add(-48 * time.Hour)
	company := "acme"

	assert.Equal(t, []string{"3", "2", "1"}, list(storage.ListPostsParams{}))
	assert.Equal(t, []string{"3", "2"}, list(storage.ListPostsParams{Limit: 2}))
	assert.Equal(t, []string{"3", "2"}, list(storage.ListPostsParams{From: &from}))
	assert.Equal(t, []string{"2", "1"}, list(storage.ListPostsParams{Company: &company}))
	assert.Equal(t, []string{"2"}, list(storage.ListPostsParams{Company: &company, From: &from}))
}

func TestPg_GetProfile(t *testing.T) {
	defer cleanup(t)

	createPost(t, "1", "a", "acme", "Bug Report", time.Now())
	createPost(t, "2", "b", "globex", "Praise", time.Now())
	createPost(t, "3", "c", "", "", time.Now())

	require.NoError(t, s.Follow(ctx, "reader", "a"))
	require.NoError(t, s.Follow(ctx, "reader", "b"))
	require.NoError(t, s.Follow(ctx, "reader", "b"))
	require.NoError(t, s.Unfollow(ctx, "reader", "b"))
	require.NoError(t, s.Follow(ctx, "reader", "c"))

	require.NoError(t, s.SetVote(ctx, "1", "reader", storage.Upvote, time.Now()))
	require.NoError(t, s.SetVote(ctx, "2", "reader", storage.Downvote, time.Now()))
	require.NoError(t, s.SetVote(ctx, "3", "reader", storage.Upvote, time.Now()))

	p, err := s.GetProfile(ctx, "reader")
	require.NoError(t, err)

	assert.Equal(t, &entities.Profile{
		UserID:              "reader",
		FollowedUsers:       entities.NewSet("a", "c"),
		InteractedCompanies: entities.NewSet("acme", "globex"),
		PreferredTypes:      entities.NewSet("Bug Report"),
		VotedPosts:          entities.NewSet("1", "2", "3"),
	}, p)

	p, err = s.GetProfile(ctx, "stranger")
	require.NoError(t, err)
	assert.Empty(t, p.FollowedUsers)
	assert.Empty(t, p.VotedPosts)
}

func TestPg_InTx(t *testing.T) {
	defer cleanup(t)

	errRollback := errors.New("rollback")

	err := s.InTx(ctx, func(tx storage.Storage) error {
		require.NoError(t, tx.CreatePost(ctx, &entities.Post{ID: "1", UserID: "a", CreatedAt: time.Now()}))

		_, err := tx.GetPost(ctx, "1")
		require.NoError(t, err)

		require.True(t, errors.Is(tx.InTx(ctx, func(storage.Storage) error { return nil }), errBeginCalledWithinTx))

		return errRollback
	})
	require.True(t, errors.Is(err, errRollback))

	_, err = s.GetPost(ctx, "1")
	require.True(t, errors.Is(err, storage.ErrNotFound))
}
