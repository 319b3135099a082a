package web

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nasermirzaei89/postdesk/contents"
)

const (
	DefaultWorkspaceLimit       = 1000
	DefaultWorkspaceIdleTimeout = 30 * time.Minute

	guestMaxAge = time.Minute
)

type workspaceContextKey struct{}

type workspace struct {
	controller *contents.Controller
	lastSeen   time.Time
}

// workspaces holds one controller per browser that has changed something.
// Browsers that only read share the guest controller. Workspaces idle for
// longer than idleTimeout are dropped, and the least recently seen one is
// dropped when limit is reached.
type workspaces struct {
	postRepo    contents.PostRepository
	limit       int
	idleTimeout time.Duration
	now         func() time.Time

	mu      sync.Mutex
	entries map[string]*workspace

	// guestMu is held while the guest list reloads so concurrent readers
	// wait for one request instead of each sending their own.
	guestMu       sync.Mutex
	guestCtrl     *contents.Controller
	guestLoadedAt time.Time
}

func newWorkspaces(postRepo contents.PostRepository, limit int, idleTimeout time.Duration) *workspaces {
	if limit <= 0 {
		limit = DefaultWorkspaceLimit
	}

	if idleTimeout <= 0 {
		idleTimeout = DefaultWorkspaceIdleTimeout
	}

	return &workspaces{
		postRepo:    postRepo,
		limit:       limit,
		idleTimeout: idleTimeout,
		now:         time.Now,
		entries:     make(map[string]*workspace),
	}
}

// lookup returns the controller of id without creating one.
func (ws *workspaces) lookup(id string) (*contents.Controller, bool) {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	entry, ok := ws.entries[id]
	if !ok {
		return nil, false
	}

	entry.lastSeen = ws.now()

	return entry.controller, true
}

// get returns the controller for id, creating and loading a new one on
// first use.
func (ws *workspaces) get(ctx context.Context, id string) *contents.Controller {
	ws.mu.Lock()

	now := ws.now()

	entry, ok := ws.entries[id]
	if ok {
		entry.lastSeen = now
		ws.mu.Unlock()

		return entry.controller
	}

	ws.evictLocked(now)

	c := contents.NewController(ws.postRepo)
	ws.entries[id] = &workspace{controller: c, lastSeen: now}
	ws.mu.Unlock()

	c.Load(ctx)

	return c
}

// guest returns the shared read-only controller. Its list is reloaded when
// older than guestMaxAge.
func (ws *workspaces) guest(ctx context.Context) *contents.Controller {
	ws.guestMu.Lock()
	defer ws.guestMu.Unlock()

	if ws.guestCtrl == nil {
		ws.guestCtrl = contents.NewController(ws.postRepo)
	}

	now := ws.now()
	if ws.guestLoadedAt.IsZero() || now.Sub(ws.guestLoadedAt) > guestMaxAge {
		ws.guestCtrl.Load(ctx)
		ws.guestLoadedAt = now
	}

	return ws.guestCtrl
}

// evictLocked drops idle workspaces and makes room for one more.
func (ws *workspaces) evictLocked(now time.Time) {
	for id, entry := range ws.entries {
		if now.Sub(entry.lastSeen) > ws.idleTimeout {
			delete(ws.entries, id)
		}
	}

	for len(ws.entries) >= ws.limit {
		oldestID := ""

		var oldest time.Time

		for id, entry := range ws.entries {
			if oldestID == "" || entry.lastSeen.Before(oldest) {
				oldestID, oldest = id, entry.lastSeen
			}
		}

		delete(ws.entries, oldestID)
	}
}

func (ws *workspaces) count() int {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	return len(ws.entries)
}

func (h *Handler) workspaceMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		value, err := h.getSessionValue(r, workspaceIDKey)

		workspaceID, _ := value.(string)

		if err != nil || workspaceID == "" {
			workspaceID = uuid.NewString()

			err = h.setSessionValue(w, r, workspaceIDKey, workspaceID)
			if err != nil {
				h.serverError(w, r, "failed to start workspace", err)

				return
			}
		}

		ctx := context.WithValue(r.Context(), workspaceContextKey{}, workspaceID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// controller returns the workspace controller of the request, creating it
// if needed. Remote calls made through it must not be cut short by the
// browser going away, so the returned context drops the request's
// cancellation.
func (h *Handler) controller(r *http.Request) (context.Context, *contents.Controller) {
	ctx := context.WithoutCancel(r.Context())

	workspaceID, _ := r.Context().Value(workspaceContextKey{}).(string)

	return ctx, h.workspaces.get(ctx, workspaceID)
}

// viewController returns the workspace controller of the request when one
// exists and the shared guest controller otherwise.
func (h *Handler) viewController(r *http.Request) *contents.Controller {
	workspaceID, _ := r.Context().Value(workspaceContextKey{}).(string)

	c, ok := h.workspaces.lookup(workspaceID)
	if ok {
		return c
	}

	return h.workspaces.guest(context.WithoutCancel(r.Context()))
}
