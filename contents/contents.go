package contents

import (
	"context"
	"fmt"
	"slices"
	"sync"
)

// ListLimit is how many posts Load keeps from the remote list.
const ListLimit = 2

const deleteConfirmationPrompt = "Are you sure?"

// Store is the local, possibly stale, copy of the remote post list.
// Every mutation is applied only after the remote resource confirms it.
type Store struct {
	postRepo PostRepository
	userID   int

	mu      sync.RWMutex
	posts   []*Post
	loading bool
}

func NewStore(postRepo PostRepository) *Store {
	return &Store{
		postRepo: postRepo,
		userID:   DefaultUserID,
		posts:    make([]*Post, 0),
		loading:  true,
	}
}

// Posts returns a copy of the current list.
func (s *Store) Posts() []Post {
	s.mu.RLock()
	defer s.mu.RUnlock()

	posts := make([]Post, 0, len(s.posts))
	for _, post := range s.posts {
		posts = append(posts, *post)
	}

	return posts
}

func (s *Store) Find(postID int) (Post, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(postID)
	if i < 0 {
		return Post{}, false
	}

	return *s.posts[i], true
}

func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.loading
}

func (s *Store) indexOf(postID int) int {
	return slices.IndexFunc(s.posts, func(post *Post) bool {
		return post.ID == postID
	})
}

// Load replaces the list with the first ListLimit remote posts. A new
// store reports Loading until its first Load returns, whether or not the
// request succeeds.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()
	}()

	posts, err := s.postRepo.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list posts: %w", err)
	}

	loaded := make([]*Post, 0, ListLimit)

	for _, post := range posts {
		if len(loaded) == ListLimit {
			break
		}

		if post == nil {
			continue
		}

		duplicate := slices.ContainsFunc(loaded, func(p *Post) bool { return p.ID == post.ID })
		if duplicate {
			continue
		}

		p := *post
		loaded = append(loaded, &p)
	}

	s.mu.Lock()
	s.posts = loaded
	s.mu.Unlock()

	return nil
}

// Create sends draft to the remote resource and prepends the returned post.
// It refuses drafts that do not pass Validate.
func (s *Store) Create(ctx context.Context, draft Draft) (*Post, error) {
	errs := Validate(draft)
	if len(errs) > 0 {
		return nil, ValidationError{Errors: errs}
	}

	trimmed := draft.Trimmed()

	post, err := s.postRepo.Create(ctx, CreatePostRequest{
		UserID: s.userID,
		Title:  trimmed.Title,
		Body:   trimmed.Body,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	if post == nil {
		return nil, errEmptyCreateResponse
	}

	created := *post

	s.mu.Lock()
	defer s.mu.Unlock()

	// Some backends hand out the same id twice; the newest copy wins.
	s.posts = slices.DeleteFunc(s.posts, func(p *Post) bool { return p.ID == created.ID })
	s.posts = slices.Insert(s.posts, 0, &created)

	return &created, nil
}

// Update sends draft for postID and merges the server response into the
// local entry. Drafts are sent as-is apart from trimming.
func (s *Store) Update(ctx context.Context, postID int, draft Draft) error {
	trimmed := draft.Trimmed()

	patch, err := s.postRepo.Update(ctx, UpdatePostRequest{
		ID:     postID,
		UserID: s.userID,
		Title:  trimmed.Title,
		Body:   trimmed.Body,
	})
	if err != nil {
		return fmt.Errorf("failed to update post: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(postID)
	if i < 0 {
		return nil
	}

	updated := *s.posts[i]
	patch.ApplyTo(&updated)
	s.posts[i] = &updated

	return nil
}

// Delete asks confirmer before sending anything. A declined confirmation
// returns ErrDeletionDeclined.
func (s *Store) Delete(ctx context.Context, postID int, confirmer Confirmer) error {
	confirmed, err := confirmer.Confirm(ctx, deleteConfirmationPrompt)
	if err != nil {
		return fmt.Errorf("failed to confirm deletion: %w", err)
	}

	if !confirmed {
		return ErrDeletionDeclined
	}

	err = s.postRepo.Delete(ctx, postID)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.posts = slices.DeleteFunc(s.posts, func(p *Post) bool { return p.ID == postID })

	return nil
}
