// Package postgres is implementation of storage interface.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/feedhub/feedrank/internal/entities"
	"github.com/feedhub/feedrank/internal/storage"
)

var log = logrus.WithField("layer", "storage").WithField("package", "postgres")
var errBeginCalledWithinTx = errors.New("can not run InTx in tx")

const foreignKeyViolation = "23503"

type pg struct {
	ext sqlx.ExtContext
}

type postDTO struct {
	ID            string    `db:"id"`
	UserID        string    `db:"user_id"`
	Type          string    `db:"type"`
	Company       string    `db:"company"`
	Title         string    `db:"title"`
	CreatedAt     time.Time `db:"created_at"`
	Votes         int       `db:"votes"`
	CommentsCount int       `db:"comments"`
	Views         int       `db:"views"`
	Shares        int       `db:"shares"`
}

const selectPosts = `
	SELECT p.id, p.user_id, p.type, p.company, p.title, p.created_at,
		COALESCE(v.votes, 0) AS votes,
		COALESCE(e.comments, 0) AS comments,
		COALESCE(e.views, 0) AS views,
		COALESCE(e.shares, 0) AS shares
	FROM post p
	LEFT JOIN (SELECT post_id, SUM(weight) AS votes FROM vote GROUP BY post_id) v ON v.post_id = p.id
	LEFT JOIN engagement e ON e.post_id = p.id
`

// New creates new instance of pg.
func New(db *sql.DB) storage.Storage {
	return pg{
		ext: sqlx.NewDb(db, "postgres"),
	}
}

func (s pg) Ping(ctx context.Context) error {
	db, ok := s.ext.(*sqlx.DB)
	if !ok {
		return nil
	}

	return db.PingContext(ctx)
}

func (s pg) InTx(ctx context.Context, f func(s storage.Storage) error) error {
	db, ok := s.ext.(*sqlx.DB)
	if !ok {
		return errBeginCalledWithinTx
	}

	tx, err := db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return fmt.Errorf("failed to create tx: %w", err)
	}

	if err := f(pg{ext: tx}); err != nil {
		if err := tx.Rollback(); err != nil {
			log.WithError(err).Error("failed to rollback tx")
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit tx: %w", err)
	}

	return nil
}

func (s pg) CreatePost(ctx context.Context, p *entities.Post) error {
	post := postDTO{
		ID:        p.ID,
		UserID:    p.UserID,
		Type:      p.Type,
		Company:   p.Company,
		Title:     p.Title,
		CreatedAt: p.CreatedAt.UTC(),
	}

	if _, err := sqlx.NamedExecContext(ctx, s.ext,
		`
			INSERT INTO post(id, user_id, type, company, title, created_at)
			VALUES(:id, :user_id, :type, :company, :title, :created_at)
		`, post,
	); err != nil {
		return fmt.Errorf("failed to exec: %w", err)
	}

	return nil
}

func (s pg) GetPost(ctx context.Context, id string) (*entities.Post, error) {
	var p postDTO

	if err := sqlx.GetContext(ctx, s.ext, &p,
		selectPosts+`WHERE p.id = $1 AND p.deleted_at IS NULL`, id,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}

		return nil, fmt.Errorf("failed to query: %w", err)
	}

	return toEntity(&p), nil
}

func (s pg) DeletePost(ctx context.Context, id string, timestamp time.Time) error {
	res, err := s.ext.ExecContext(ctx,
		`UPDATE post SET deleted_at=$2 WHERE id=$1 AND deleted_at IS NULL`,
		id, timestamp.UTC(),
	)

	if err != nil {
		return fmt.Errorf("failed to exec: %w", err)
	}

	if c, _ := res.RowsAffected(); c == 0 {
		return storage.ErrNotFound
	}

	return nil
}

func (s pg) ListPosts(ctx context.Context, p *storage.ListPostsParams) ([]*entities.Post, error) {
	var (
		where = []string{"p.deleted_at IS NULL"}
		args  []interface{}
	)

	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if p.From != nil {
		where = append(where, "p.created_at >= "+arg(p.From.UTC()))
	}

	if p.Company != nil {
		where = append(where, "p.company = "+arg(*p.Company))
	}

	query := fmt.Sprintf("%s WHERE %s ORDER BY p.created_at DESC, p.id", selectPosts, strings.Join(where, " AND "))
	if p.Limit > 0 {
		query += " LIMIT " + arg(p.Limit)
	}

	var posts []*postDTO
	if err := sqlx.SelectContext(ctx, s.ext, &posts, query, args...); err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}

	out := make([]*entities.Post, len(posts))
	for i, v := range posts {
		out[i] = toEntity(v)
	}

	return out, nil
}

func (s pg) SetVote(ctx context.Context, postID, userID string, weight storage.VoteWeight, timestamp time.Time) error {
	if weight == storage.NoVote {
		if _, err := s.ext.ExecContext(ctx,
			`DELETE FROM vote WHERE post_id=$1 AND user_id=$2`, postID, userID,
		); err != nil {
			return fmt.Errorf("failed to exec: %w", err)
		}

		return nil
	}

	if _, err := s.ext.ExecContext(ctx, `
			INSERT INTO vote(post_id, user_id, weight, voted_at)
				VALUES($1, $2, $3, $4)
			ON CONFLICT(post_id, user_id) DO UPDATE SET
				weight=excluded.weight, voted_at=excluded.voted_at`,
		postID, userID, weight, timestamp.UTC(),
	); err != nil {
		if err, ok := err.(*pq.Error); ok && err.Code == foreignKeyViolation {
			return storage.ErrNotFound
		}

		return fmt.Errorf("failed to exec: %w", err)
	}

	return nil
}

func (s pg) AddEngagement(ctx context.Context, postID string, e entities.Engagement) error {
	if _, err := s.ext.ExecContext(ctx, `
			INSERT INTO engagement(post_id, comments, views, shares)
				VALUES($1, $2, $3, $4)
			ON CONFLICT(post_id) DO UPDATE SET
				comments=engagement.comments+excluded.comments,
				views=engagement.views+excluded.views,
				shares=engagement.shares+excluded.shares`,
		postID, e.Comments, e.Views, e.Shares,
	); err != nil {
		if err, ok := err.(*pq.Error); ok && err.Code == foreignKeyViolation {
			return storage.ErrNotFound
		}

		return fmt.Errorf("failed to exec: %w", err)
	}

	return nil
}

func (s pg) Follow(ctx context.Context, follower, followee string) error {
	if _, err := s.ext.ExecContext(ctx,
		`
			INSERT INTO follow(follower, followee) VALUES($1, $2) ON CONFLICT DO NOTHING
		`, follower, followee,
	); err != nil {
		return fmt.Errorf("failed to exec: %w", err)
	}

	return nil
}

func (s pg) Unfollow(ctx context.Context, follower, followee string) error {
	if _, err := s.ext.ExecContext(ctx,
		`
			DELETE FROM follow WHERE follower=$1 AND followee=$2
		`, follower, followee,
	); err != nil {
		return fmt.Errorf("failed to exec: %w", err)
	}

	return nil
}

func (s pg) GetProfile(ctx context.Context, userID string) (*entities.Profile, error) {
	queries := []struct {
		name  string
		query string
	}{
		{"followed users", `SELECT followee FROM follow WHERE follower = $1`},
		{"interacted companies", `
			SELECT DISTINCT p.company FROM vote v JOIN post p ON p.id = v.post_id
			WHERE v.user_id = $1 AND p.company <> ''`},
		{"preferred types", `
			SELECT DISTINCT p.type FROM vote v JOIN post p ON p.id = v.post_id
			WHERE v.user_id = $1 AND v.weight > 0 AND p.type <> ''`},
		{"voted posts", `SELECT post_id FROM vote WHERE user_id = $1`},
	}

	sets := make([]entities.Set, len(queries))
	for i, q := range queries {
		var v []string
		if err := sqlx.SelectContext(ctx, s.ext, &v, q.query, userID); err != nil {
			return nil, fmt.Errorf("failed to query %s: %w", q.name, err)
		}
		sets[i] = entities.NewSet(v...)
	}

	return &entities.Profile{
		UserID:              userID,
		FollowedUsers:       sets[0],
		InteractedCompanies: sets[1],
		PreferredTypes:      sets[2],
		VotedPosts:          sets[3],
	}, nil
}

func toEntity(p *postDTO) *entities.Post {
	return &entities.Post{
		ID:            p.ID,
		UserID:        p.UserID,
		Type:          p.Type,
		Company:       p.Company,
		Title:         p.Title,
		CreatedAt:     p.CreatedAt.UTC(),
		Votes:         p.Votes,
		CommentsCount: p.CommentsCount,
		Views:         p.Views,
		Shares:        p.Shares,
	}
}
