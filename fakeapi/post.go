// Package fakeapi serves a small posts REST resource for local development
// and end-to-end tests.
package fakeapi

import (
	"context"
	"fmt"
	"time"
)

type Post struct {
	ID        int       `json:"id"`
	UserID    int       `json:"userId"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"-"`
}

type PostRepository interface {
	// Insert stores post and sets its ID.
	Insert(ctx context.Context, post *Post) (err error)
	Find(ctx context.Context, postID int) (post *Post, err error)
	List(ctx context.Context) (posts []*Post, err error)
	Update(ctx context.Context, post *Post) (err error)
	Delete(ctx context.Context, postID int) (err error)
	Count(ctx context.Context) (count int, err error)
}

type PostNotFoundError struct {
	ID int
}

func (err PostNotFoundError) Error() string {
	return fmt.Sprintf("post with id %d not found", err.ID)
}

var samplePosts = []Post{
	{
		UserID: 1,
		Title:  "Welcome to postdesk",
		Body:   "This post comes from the local development backend.",
	},
	{
		UserID: 1,
		Title:  "Editing posts",
		Body:   "Use Edit to change a post and Save to send it back.",
	},
	{
		UserID: 2,
		Title:  "Deleting posts",
		Body:   "Delete asks for confirmation before anything is sent.",
	},
}

// Seed inserts the sample posts into an empty repository.
func Seed(ctx context.Context, postRepo PostRepository) error {
	count, err := postRepo.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count posts: %w", err)
	}

	if count > 0 {
		return nil
	}

	for _, sample := range samplePosts {
		post := sample
		post.CreatedAt = time.Now()

		err := postRepo.Insert(ctx, &post)
		if err != nil {
			return fmt.Errorf("failed to insert sample post: %w", err)
		}
	}

	return nil
}
