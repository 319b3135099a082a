package contents

import (
	"context"
	"errors"
	"log/slog"
)

// Controller sequences the store, the create form, the edit session and the
// delete confirmation for one operator. Remote failures are logged and never
// returned; the only visible error channel is the form's field errors.
type Controller struct {
	store   *Store
	form    *Form
	edit    *EditSession
	pending *DeleteConfirmation
}

func NewController(postRepo PostRepository) *Controller {
	return &Controller{
		store:   NewStore(postRepo),
		form:    NewForm(),
		edit:    &EditSession{},
		pending: &DeleteConfirmation{},
	}
}

func (c *Controller) Store() *Store {
	return c.store
}

func (c *Controller) Form() *Form {
	return c.form
}

func (c *Controller) EditSession() *EditSession {
	return c.edit
}

func (c *Controller) Load(ctx context.Context) {
	err := c.store.Load(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load posts", "error", err)
	}
}

func (c *Controller) SetField(field Field, value string) {
	c.form.SetField(field, value)
}

// Submit reports whether a post was created.
func (c *Controller) Submit(ctx context.Context) bool {
	post, err := c.form.Submit(ctx, c.store)
	if err != nil {
		var validationErr ValidationError

		switch {
		case errors.As(err, &validationErr):
			slog.DebugContext(ctx, "draft rejected by validation", "errors", validationErr.Errors)
		case errors.Is(err, ErrSubmissionInProgress):
			slog.DebugContext(ctx, "ignored submit while another is in progress")
		default:
			slog.ErrorContext(ctx, "failed to create post", "error", err)
		}

		return false
	}

	slog.InfoContext(ctx, "post created", "postId", post.ID)

	return true
}

// StartEdit opens an edit session on a post in the list.
func (c *Controller) StartEdit(postID int) error {
	post, ok := c.store.Find(postID)
	if !ok {
		return PostNotFoundError{ID: postID}
	}

	c.edit.Start(post)

	return nil
}

func (c *Controller) SetEditField(field Field, value string) error {
	return c.edit.SetField(field, value)
}

func (c *Controller) CancelEdit() {
	c.edit.Cancel()
}

// SaveEdit reports whether the update was confirmed and the session closed.
func (c *Controller) SaveEdit(ctx context.Context) bool {
	err := c.edit.Save(ctx, c.store)
	if err != nil {
		if errors.Is(err, ErrNotEditing) {
			slog.DebugContext(ctx, "ignored save without an edit session")
		} else {
			slog.ErrorContext(ctx, "failed to update post", "error", err)
		}

		return false
	}

	return true
}

// RequestDelete puts postID into pending confirmation.
func (c *Controller) RequestDelete(postID int) error {
	_, ok := c.store.Find(postID)
	if !ok {
		return PostNotFoundError{ID: postID}
	}

	c.pending.Request(postID)

	return nil
}

// ResolveDelete settles a pending confirmation and deletes on a yes.
func (c *Controller) ResolveDelete(ctx context.Context, postID int, confirmed bool) bool {
	decision, err := c.pending.Resolve(postID, confirmed)
	if err != nil {
		slog.DebugContext(ctx, "ignored deletion decision", "postId", postID, "error", err)

		return false
	}

	return c.Delete(ctx, postID, decision)
}

// Delete removes postID once confirmer agrees. It reports whether the post
// was deleted.
func (c *Controller) Delete(ctx context.Context, postID int, confirmer Confirmer) bool {
	err := c.store.Delete(ctx, postID, confirmer)
	if err != nil {
		if errors.Is(err, ErrDeletionDeclined) {
			slog.DebugContext(ctx, "deletion declined", "postId", postID)
		} else {
			slog.ErrorContext(ctx, "failed to delete post", "postId", postID, "error", err)
		}

		return false
	}

	if editingID, ok := c.edit.Editing(); ok && editingID == postID {
		c.edit.Cancel()
	}

	return true
}

type PostView struct {
	Post

	Editing bool
}

type View struct {
	Loading         bool
	Posts           []PostView
	Draft           Draft
	Errors          FormErrors
	Submitting      bool
	PendingDeleteID int
	DeletePending   bool
}

// View snapshots the state for rendering. The post being edited shows its
// draft fields.
func (c *Controller) View() View {
	posts := c.store.Posts()
	editDraft, editing := c.edit.Draft()

	views := make([]PostView, 0, len(posts))
	for _, post := range posts {
		if editing && post.ID == editDraft.ID {
			views = append(views, PostView{Post: editDraft, Editing: true})

			continue
		}

		views = append(views, PostView{Post: post})
	}

	pendingID, pending := c.pending.Pending()

	return View{
		Loading:         c.store.Loading(),
		Posts:           views,
		Draft:           c.form.Draft(),
		Errors:          c.form.Errors(),
		Submitting:      c.form.Submitting(),
		PendingDeleteID: pendingID,
		DeletePending:   pending,
	}
}
