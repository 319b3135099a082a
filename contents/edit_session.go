package contents

import (
	"context"
	"fmt"
	"sync"
)

// EditSession tracks the single post being edited. It is either idle or
// editing exactly one post id with a working copy of that post.
type EditSession struct {
	mu     sync.Mutex
	active bool
	draft  Post

	// generation changes on every Start so a finished save can tell
	// whether the session it saved is still the open one.
	generation uint64
}

// Start captures a copy of post. An open session for another post is
// discarded.
func (es *EditSession) Start(post Post) {
	es.mu.Lock()
	defer es.mu.Unlock()

	es.active = true
	es.draft = post
	es.generation++
}

// Editing reports the post id being edited, if any.
func (es *EditSession) Editing() (int, bool) {
	es.mu.Lock()
	defer es.mu.Unlock()

	return es.draft.ID, es.active
}

// Draft returns the working copy while editing.
func (es *EditSession) Draft() (Post, bool) {
	es.mu.Lock()
	defer es.mu.Unlock()

	if !es.active {
		return Post{}, false
	}

	return es.draft, true
}

func (es *EditSession) SetField(field Field, value string) error {
	es.mu.Lock()
	defer es.mu.Unlock()

	if !es.active {
		return ErrNotEditing
	}

	switch field {
	case FieldTitle:
		es.draft.Title = value
	case FieldBody:
		es.draft.Body = value
	}

	return nil
}

// Cancel discards the draft without validation.
func (es *EditSession) Cancel() {
	es.mu.Lock()
	defer es.mu.Unlock()

	es.active = false
	es.draft = Post{}
}

// Save submits the draft through store and closes the session only when the
// update succeeds. No validation runs on this path.
func (es *EditSession) Save(ctx context.Context, store *Store) error {
	es.mu.Lock()

	if !es.active {
		es.mu.Unlock()

		return ErrNotEditing
	}

	draft := es.draft
	generation := es.generation
	es.mu.Unlock()

	err := store.Update(ctx, draft.ID, Draft{Title: draft.Title, Body: draft.Body})
	if err != nil {
		return fmt.Errorf("failed to save post %d: %w", draft.ID, err)
	}

	es.mu.Lock()
	defer es.mu.Unlock()

	// A new session may have been started while the update was in flight,
	// possibly for the same post.
	if es.active && es.generation == generation {
		es.active = false
		es.draft = Post{}
	}

	return nil
}
