package cli_test

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/nasermirzaei89/postdesk/cli"
	"github.com/nasermirzaei89/postdesk/contents"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepository struct {
	mu      sync.Mutex
	posts   []*contents.Post
	creates []contents.CreatePostRequest
	updates []contents.UpdatePostRequest
	deletes []int
}

func (repo *fakeRepository) List(context.Context) ([]*contents.Post, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	return repo.posts, nil
}

func (repo *fakeRepository) Create(_ context.Context, req contents.CreatePostRequest) (*contents.Post, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	repo.creates = append(repo.creates, req)

	return &contents.Post{ID: 101, UserID: req.UserID, Title: req.Title, Body: req.Body}, nil
}

func (repo *fakeRepository) Update(_ context.Context, req contents.UpdatePostRequest) (*contents.PostPatch, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	repo.updates = append(repo.updates, req)

	return &contents.PostPatch{Title: &req.Title, Body: &req.Body}, nil
}

func (repo *fakeRepository) Delete(_ context.Context, postID int) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	repo.deletes = append(repo.deletes, postID)

	return nil
}

func run(t *testing.T, repo *fakeRepository, input string) string {
	t.Helper()

	var out bytes.Buffer

	c := contents.NewController(repo)
	session := cli.NewSession(c, strings.NewReader(input), &out)

	err := session.Run(context.Background())
	require.NoError(t, err)

	return out.String()
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		posts: []*contents.Post{
			{ID: 1, Title: "A", Body: "B"},
			{ID: 2, Title: "C", Body: "D"},
		},
	}
}

func TestSession_List(t *testing.T) {
	t.Parallel()

	out := run(t, newFakeRepository(), "quit\n")

	assert.Contains(t, out, "#1 A")
	assert.Contains(t, out, "#2 C")
}

func TestSession_Add(t *testing.T) {
	t.Parallel()

	t.Run("invalid", func(t *testing.T) {
		t.Parallel()

		repo := newFakeRepository()
		out := run(t, repo, "add\n\n\nquit\n")

		assert.Contains(t, out, "Title: "+contents.MessageTitleRequired)
		assert.Contains(t, out, "Content: "+contents.MessageBodyRequired)
		assert.Empty(t, repo.creates)
	})

	t.Run("valid", func(t *testing.T) {
		t.Parallel()

		repo := newFakeRepository()
		out := run(t, repo, "add\nHello\nWorld\nquit\n")

		require.Len(t, repo.creates, 1)
		assert.Equal(t, "Hello", repo.creates[0].Title)
		assert.Contains(t, out, "#101 Hello")
	})
}

func TestSession_Edit(t *testing.T) {
	t.Parallel()

	t.Run("save", func(t *testing.T) {
		t.Parallel()

		repo := newFakeRepository()
		out := run(t, repo, "edit 1\nA2\n\ny\nquit\n")

		require.Len(t, repo.updates, 1)
		assert.Equal(t, contents.UpdatePostRequest{ID: 1, UserID: contents.DefaultUserID, Title: "A2", Body: "B"}, repo.updates[0])
		assert.Contains(t, out, "#1 A2")
	})

	t.Run("discard", func(t *testing.T) {
		t.Parallel()

		repo := newFakeRepository()
		out := run(t, repo, "edit 1\nA2\n\nn\nquit\n")

		assert.Empty(t, repo.updates)
		assert.NotContains(t, out, "#1 A2")
	})

	t.Run("unknown post", func(t *testing.T) {
		t.Parallel()

		out := run(t, newFakeRepository(), "edit 9\nquit\n")

		assert.Contains(t, out, "post with id 9 not found")
	})
}

func TestSession_Delete(t *testing.T) {
	t.Parallel()

	t.Run("declined", func(t *testing.T) {
		t.Parallel()

		repo := newFakeRepository()
		out := run(t, repo, "delete 1\nn\nquit\n")

		assert.Contains(t, out, "Are you sure? [y/N]")
		assert.Empty(t, repo.deletes)
	})

	t.Run("confirmed", func(t *testing.T) {
		t.Parallel()

		repo := newFakeRepository()
		run(t, repo, "delete 1\nyes\nquit\n")

		assert.Equal(t, []int{1}, repo.deletes)
	})

	t.Run("bad id", func(t *testing.T) {
		t.Parallel()

		repo := newFakeRepository()
		out := run(t, repo, "delete one\nquit\n")

		assert.Contains(t, out, `invalid post id "one"`)
		assert.Empty(t, repo.deletes)
	})
}

func TestSession_EndOfInput(t *testing.T) {
	t.Parallel()

	out := run(t, newFakeRepository(), "help")

	assert.Contains(t, out, "Commands:")
}
