package fakeapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strconv"
	"time"
)

type Handler struct {
	mux      *http.ServeMux
	handler  http.Handler
	postRepo PostRepository
}

var _ http.Handler = (*Handler)(nil)

func NewHandler(postRepo PostRepository) *Handler {
	h := &Handler{
		mux:      &http.ServeMux{},
		postRepo: postRepo,
	}

	h.registerRoutes()

	h.handler = recoverMiddleware(h.mux)

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.handler.ServeHTTP(w, r)
}

func (h *Handler) registerRoutes() {
	h.mux.HandleFunc("GET /posts", h.HandleListPosts)
	h.mux.HandleFunc("POST /posts", h.HandleCreatePost)
	h.mux.HandleFunc("GET /posts/{postId}", h.HandleGetPost)
	h.mux.HandleFunc("PUT /posts/{postId}", h.HandleUpdatePost)
	h.mux.HandleFunc("DELETE /posts/{postId}", h.HandleDeletePost)
}

func recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func(ctx context.Context) {
			if err := recover(); err != nil {
				slog.ErrorContext(ctx, "recovered from panic", "error", err, "stack", string(debug.Stack()))

				writeError(w, http.StatusInternalServerError, "internal error occurred")
			}
		}(r.Context())

		next.ServeHTTP(w, r)
	})
}

type postPayload struct {
	ID     *int   `json:"id,omitempty"`
	UserID int    `json:"userId"`
	Title  string `json:"title"`
	Body   string `json:"body"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func pathPostID(r *http.Request) (int, bool) {
	postID, err := strconv.Atoi(r.PathValue("postId"))
	if err != nil || postID <= 0 {
		return 0, false
	}

	return postID, true
}

func decodePayload(r *http.Request) (*postPayload, error) {
	var payload postPayload

	err := json.NewDecoder(r.Body).Decode(&payload)
	if err != nil {
		return nil, err
	}

	return &payload, nil
}

func (h *Handler) HandleListPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.postRepo.List(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to list posts", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal Server Error")

		return
	}

	writeJSON(w, http.StatusOK, posts)
}

func (h *Handler) HandleCreatePost(w http.ResponseWriter, r *http.Request) {
	payload, err := decodePayload(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")

		return
	}

	post := &Post{
		UserID:    payload.UserID,
		Title:     payload.Title,
		Body:      payload.Body,
		CreatedAt: time.Now(),
	}

	err = h.postRepo.Insert(r.Context(), post)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to insert post", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal Server Error")

		return
	}

	writeJSON(w, http.StatusCreated, post)
}

func (h *Handler) HandleGetPost(w http.ResponseWriter, r *http.Request) {
	postID, ok := pathPostID(r)
	if !ok {
		writeError(w, http.StatusNotFound, "post not found")

		return
	}

	post, err := h.postRepo.Find(r.Context(), postID)
	if err != nil {
		h.handleRepoError(w, r, err)

		return
	}

	writeJSON(w, http.StatusOK, post)
}

func (h *Handler) HandleUpdatePost(w http.ResponseWriter, r *http.Request) {
	postID, ok := pathPostID(r)
	if !ok {
		writeError(w, http.StatusNotFound, "post not found")

		return
	}

	payload, err := decodePayload(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")

		return
	}

	if payload.ID != nil && *payload.ID != postID {
		writeError(w, http.StatusBadRequest, "id in body does not match path")

		return
	}

	post, err := h.postRepo.Find(r.Context(), postID)
	if err != nil {
		h.handleRepoError(w, r, err)

		return
	}

	post.UserID = payload.UserID
	post.Title = payload.Title
	post.Body = payload.Body

	err = h.postRepo.Update(r.Context(), post)
	if err != nil {
		h.handleRepoError(w, r, err)

		return
	}

	writeJSON(w, http.StatusOK, post)
}

func (h *Handler) HandleDeletePost(w http.ResponseWriter, r *http.Request) {
	postID, ok := pathPostID(r)
	if !ok {
		writeError(w, http.StatusNotFound, "post not found")

		return
	}

	err := h.postRepo.Delete(r.Context(), postID)
	if err != nil {
		h.handleRepoError(w, r, err)

		return
	}

	writeJSON(w, http.StatusOK, struct{}{})
}

func (h *Handler) handleRepoError(w http.ResponseWriter, r *http.Request, err error) {
	var notFoundErr PostNotFoundError
	if errors.As(err, &notFoundErr) {
		writeError(w, http.StatusNotFound, "post not found")

		return
	}

	slog.ErrorContext(r.Context(), "post repository call failed", "error", err)
	writeError(w, http.StatusInternalServerError, "Internal Server Error")
}
