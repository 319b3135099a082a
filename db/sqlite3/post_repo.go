package sqlite3

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	sq "github.com/Masterminds/squirrel"
	"github.com/nasermirzaei89/postdesk/fakeapi"
)

const tablePosts = "posts"

type PostRepository struct {
	db *sql.DB
}

var _ fakeapi.PostRepository = (*PostRepository)(nil)

func NewPostRepository(db *sql.DB) *PostRepository {
	return &PostRepository{db: db}
}

const (
	postFieldID        = "id"
	postFieldUserID    = "user_id"
	postFieldTitle     = "title"
	postFieldBody      = "body"
	postFieldCreatedAt = "created_at"
)

func postColumns() []string {
	return []string{
		postFieldID,
		postFieldUserID,
		postFieldTitle,
		postFieldBody,
		postFieldCreatedAt,
	}
}

func scanPost(row sq.RowScanner) (*fakeapi.Post, error) {
	var post fakeapi.Post

	err := row.Scan(
		&post.ID,
		&post.UserID,
		&post.Title,
		&post.Body,
		&post.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan row: %w", err)
	}

	return &post, nil
}

func (repo *PostRepository) Insert(ctx context.Context, post *fakeapi.Post) error {
	q := sq.Insert(tablePosts).
		Columns(postFieldUserID, postFieldTitle, postFieldBody, postFieldCreatedAt).
		Values(post.UserID, post.Title, post.Body, post.CreatedAt).
		Suffix("RETURNING " + postFieldID)

	q = q.RunWith(repo.db)

	err := q.QueryRowContext(ctx).Scan(&post.ID)
	if err != nil {
		return fmt.Errorf("failed to exec insert: %w", err)
	}

	return nil
}

func (repo *PostRepository) Find(ctx context.Context, postID int) (*fakeapi.Post, error) {
	q := sq.Select(postColumns()...).
		From(tablePosts).
		Where(sq.Eq{postFieldID: postID})

	q = q.RunWith(repo.db)

	post, err := scanPost(q.QueryRowContext(ctx))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fakeapi.PostNotFoundError{ID: postID}
		}

		return nil, fmt.Errorf("failed to scan post: %w", err)
	}

	return post, nil
}

func (repo *PostRepository) List(ctx context.Context) ([]*fakeapi.Post, error) {
	q := sq.Select(postColumns()...).
		From(tablePosts).
		OrderBy(postFieldID)

	q = q.RunWith(repo.db)

	rows, err := q.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			slog.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	posts := make([]*fakeapi.Post, 0)

	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}

		posts = append(posts, post)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}

	return posts, nil
}

func (repo *PostRepository) Update(ctx context.Context, post *fakeapi.Post) error {
	q := sq.Update(tablePosts).
		SetMap(map[string]any{
			postFieldUserID: post.UserID,
			postFieldTitle:  post.Title,
			postFieldBody:   post.Body,
		}).
		Where(sq.Eq{postFieldID: post.ID}).
		RunWith(repo.db)

	res, err := q.ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to exec update: %w", err)
	}

	return requireAffected(res, post.ID)
}

func (repo *PostRepository) Delete(ctx context.Context, postID int) error {
	q := sq.Delete(tablePosts).
		Where(sq.Eq{postFieldID: postID}).
		RunWith(repo.db)

	res, err := q.ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to exec delete: %w", err)
	}

	return requireAffected(res, postID)
}

func (repo *PostRepository) Count(ctx context.Context) (int, error) {
	q := sq.Select("COUNT(*)").
		From(tablePosts).
		RunWith(repo.db)

	var count int

	err := q.QueryRowContext(ctx).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count posts: %w", err)
	}

	return count, nil
}

func requireAffected(res sql.Result, postID int) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}

	if affected == 0 {
		return fakeapi.PostNotFoundError{ID: postID}
	}

	return nil
}
