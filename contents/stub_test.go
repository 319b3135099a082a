package contents_test

import (
	"context"
	"errors"
	"sync"

	"github.com/nasermirzaei89/postdesk/contents"
)

var errStubFailure = errors.New("stub failure")

type stubCall struct {
	Method string
	Create *contents.CreatePostRequest
	Update *contents.UpdatePostRequest
	PostID int
}

type stubRepository struct {
	mu sync.Mutex

	posts  []*contents.Post
	nextID int

	listErr   error
	createErr error
	updateErr error
	deleteErr error

	// updatePatch overrides the echoed update response when set.
	updatePatch *contents.PostPatch

	// Gates hold a call open until the test releases it.
	listGate   *gate
	createGate *gate
	updateGate *gate

	calls []stubCall
}

var _ contents.PostRepository = (*stubRepository)(nil)

func newStubRepository(posts ...contents.Post) *stubRepository {
	repo := &stubRepository{nextID: 101}
	for _, post := range posts {
		p := post
		repo.posts = append(repo.posts, &p)
	}

	return repo
}

func (repo *stubRepository) List(ctx context.Context) ([]*contents.Post, error) {
	repo.listGate.pass()

	repo.mu.Lock()
	defer repo.mu.Unlock()

	repo.calls = append(repo.calls, stubCall{Method: "GET"})

	if repo.listErr != nil {
		return nil, repo.listErr
	}

	return repo.posts, nil
}

func (repo *stubRepository) Create(ctx context.Context, req contents.CreatePostRequest) (*contents.Post, error) {
	repo.createGate.pass()

	repo.mu.Lock()
	defer repo.mu.Unlock()

	repo.calls = append(repo.calls, stubCall{Method: "POST", Create: &req})

	if repo.createErr != nil {
		return nil, repo.createErr
	}

	return &contents.Post{ID: repo.nextID, UserID: req.UserID, Title: req.Title, Body: req.Body}, nil
}

func (repo *stubRepository) Update(ctx context.Context, req contents.UpdatePostRequest) (*contents.PostPatch, error) {
	repo.updateGate.pass()

	repo.mu.Lock()
	defer repo.mu.Unlock()

	repo.calls = append(repo.calls, stubCall{Method: "PUT", Update: &req, PostID: req.ID})

	if repo.updateErr != nil {
		return nil, repo.updateErr
	}

	if repo.updatePatch != nil {
		return repo.updatePatch, nil
	}

	return &contents.PostPatch{ID: &req.ID, UserID: &req.UserID, Title: &req.Title, Body: &req.Body}, nil
}

func (repo *stubRepository) Delete(ctx context.Context, postID int) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	repo.calls = append(repo.calls, stubCall{Method: "DELETE", PostID: postID})

	return repo.deleteErr
}

func (repo *stubRepository) callsFor(method string) []stubCall {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	var calls []stubCall

	for _, call := range repo.calls {
		if call.Method == method {
			calls = append(calls, call)
		}
	}

	return calls
}

// gate blocks the first call that passes it until release is closed.
type gate struct {
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func newGate() *gate {
	return &gate{
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
}

func (g *gate) pass() {
	if g == nil {
		return
	}

	first := false
	g.once.Do(func() {
		first = true
		close(g.entered)
	})

	if first {
		<-g.release
	}
}

func ptr[T any](v T) *T {
	return &v
}
