package contents

import (
	"context"
	"errors"
	"fmt"
)

// DefaultUserID is the author identifier sent with every create and update.
const DefaultUserID = 1

type Post struct {
	ID     int    `json:"id"`
	UserID int    `json:"userId,omitempty"`
	Title  string `json:"title"`
	Body   string `json:"body"`
}

// PostPatch is a server-returned post where absent fields stay nil.
type PostPatch struct {
	ID     *int    `json:"id,omitempty"`
	UserID *int    `json:"userId,omitempty"`
	Title  *string `json:"title,omitempty"`
	Body   *string `json:"body,omitempty"`
}

// ApplyTo merges the present fields into post.
func (patch *PostPatch) ApplyTo(post *Post) {
	if patch == nil || post == nil {
		return
	}

	if patch.UserID != nil {
		post.UserID = *patch.UserID
	}

	if patch.Title != nil {
		post.Title = *patch.Title
	}

	if patch.Body != nil {
		post.Body = *patch.Body
	}
}

type CreatePostRequest struct {
	UserID int    `json:"userId"`
	Title  string `json:"title"`
	Body   string `json:"body"`
}

type UpdatePostRequest struct {
	ID     int    `json:"id"`
	UserID int    `json:"userId"`
	Title  string `json:"title"`
	Body   string `json:"body"`
}

type PostRepository interface {
	List(ctx context.Context) (posts []*Post, err error)
	Create(ctx context.Context, req CreatePostRequest) (post *Post, err error)
	Update(ctx context.Context, req UpdatePostRequest) (patch *PostPatch, err error)
	Delete(ctx context.Context, postID int) (err error)
}

// NetworkError is reported when a request could not be sent, the response
// status was not a success, or the response body could not be decoded.
type NetworkError struct {
	Method     string
	URL        string
	StatusCode int
	Err        error
}

func (err NetworkError) Error() string {
	if err.StatusCode != 0 {
		return fmt.Sprintf("%s %s: unexpected status %d", err.Method, err.URL, err.StatusCode)
	}

	return fmt.Sprintf("%s %s: %v", err.Method, err.URL, err.Err)
}

func (err NetworkError) Unwrap() error {
	return err.Err
}

type PostNotFoundError struct {
	ID int
}

func (err PostNotFoundError) Error() string {
	return fmt.Sprintf("post with id %d not found", err.ID)
}

type ValidationError struct {
	Errors FormErrors
}

func (err ValidationError) Error() string {
	return fmt.Sprintf("draft is invalid: %d field error(s)", len(err.Errors))
}

var (
	ErrDeletionDeclined     = errors.New("deletion declined")
	ErrSubmissionInProgress = errors.New("submission in progress")
	ErrNotEditing           = errors.New("no edit session is active")
	ErrNoPendingDeletion    = errors.New("no deletion is pending confirmation")

	errEmptyCreateResponse = errors.New("create returned no post")
)
