package web

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"maps"
	"net/http"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/gorilla/csrf"
	"github.com/gorilla/sessions"
	"github.com/nasermirzaei89/postdesk/contents"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var (
	//go:embed templates/*
	templatesFS embed.FS

	//go:embed static/*
	staticFS embed.FS
)

const (
	defaultSiteTitle = "Postdesk"
	hxRequestTrue    = "true"

	decisionYes = "yes"
)

type Handler struct {
	mux         *http.ServeMux
	handler     http.Handler
	tpl         *template.Template
	static      fs.FS
	workspaces  *workspaces
	cookieStore *sessions.CookieStore
	sessionName string
	markdown    goldmark.Markdown
}

var _ http.Handler = (*Handler)(nil)

type CSRFConfig struct {
	AuthKey        []byte
	TrustedOrigins []string
	// Secure marks requests as HTTPS for origin checks and the CSRF cookie.
	Secure bool
}

// WorkspaceConfig bounds the per-browser controllers. Zero values select
// DefaultWorkspaceLimit and DefaultWorkspaceIdleTimeout.
type WorkspaceConfig struct {
	Limit       int
	IdleTimeout time.Duration
}

func NewHandler(
	postRepo contents.PostRepository,
	cookieStore *sessions.CookieStore,
	sessionName string,
	csrfConfig CSRFConfig,
	workspaceConfig WorkspaceConfig,
) (*Handler, error) {
	h, err := newHandler(postRepo, cookieStore, sessionName, workspaceConfig)
	if err != nil {
		return nil, err
	}

	{
		csrfMiddleware := csrf.Protect(
			csrfConfig.AuthKey,
			csrf.TrustedOrigins(csrfConfig.TrustedOrigins),
			csrf.Secure(csrfConfig.Secure),
			csrf.Path("/"),
		)

		h.handler = csrfMiddleware(h.handler)

		if !csrfConfig.Secure {
			h.handler = plaintextMiddleware(h.handler)
		}
	}

	h.handler = recoverMiddleware(h.handler)

	return h, nil
}

// newHandler builds the routes and the workspace layer without CSRF
// protection.
func newHandler(
	postRepo contents.PostRepository,
	cookieStore *sessions.CookieStore,
	sessionName string,
	workspaceConfig WorkspaceConfig,
) (*Handler, error) {
	h := &Handler{
		workspaces:  newWorkspaces(postRepo, workspaceConfig.Limit, workspaceConfig.IdleTimeout),
		cookieStore: cookieStore,
		sessionName: sessionName,
	}

	h.markdown = goldmark.New(
		goldmark.WithExtensions(
			extension.Linkify,
			extension.Strikethrough,
		),
	)

	{
		tpl, err := template.New("").Funcs(h.funcs()).ParseFS(templatesFS, "templates/*.gohtml")
		if err != nil {
			return nil, fmt.Errorf("failed to parse templates: %w", err)
		}

		h.tpl = tpl
	}

	{
		static, err := fs.Sub(staticFS, "static")
		if err != nil {
			return nil, fmt.Errorf("failed to sub static fs: %w", err)
		}

		h.static = static
	}

	h.mux = &http.ServeMux{}
	h.registerRoutes()

	h.handler = h.workspaceMiddleware(h.mux)

	return h, nil
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.handler.ServeHTTP(w, r)
}

func (h *Handler) registerRoutes() {
	h.mux.HandleFunc("/", h.HandleIndex)
	h.mux.HandleFunc("GET /healthz", h.HandleHealthz)

	h.mux.HandleFunc("POST /posts", h.HandleCreatePost)
	h.mux.HandleFunc("POST /form/{field}", h.HandleFormField)
	h.mux.HandleFunc("POST /posts/{postId}/edit", h.HandleStartEdit)
	h.mux.HandleFunc("POST /posts/{postId}/edit/field/{field}", h.HandleEditField)
	h.mux.HandleFunc("POST /posts/{postId}/save", h.HandleSaveEdit)
	h.mux.HandleFunc("POST /posts/{postId}/cancel", h.HandleCancelEdit)
	h.mux.HandleFunc("POST /posts/{postId}/delete", h.HandleRequestDelete)
	h.mux.HandleFunc("POST /posts/{postId}/delete/confirm", h.HandleConfirmDelete)
}

func recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func(ctx context.Context) {
			if err := recover(); err != nil {
				slog.ErrorContext(
					ctx,
					"recovered from panic",
					"error",
					err,
					"stack",
					string(debug.Stack()),
				)

				http.Error(w, "internal error occurred", http.StatusInternalServerError)
			}
		}(r.Context())

		next.ServeHTTP(w, r)
	})
}

func plaintextMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.TLS == nil {
			r = csrf.PlaintextHTTPRequest(r)
		}

		next.ServeHTTP(w, r)
	})
}

func (h *Handler) funcs() template.FuncMap {
	return template.FuncMap{
		"markdown": h.renderMarkdown,
		"fieldSlot": func(field string, errs contents.FormErrors) map[string]any {
			return map[string]any{
				"Field":   field,
				"Message": errs[contents.Field(field)],
			}
		},
		"postItem": func(post contents.PostView, view contents.View, csrfField template.HTML) map[string]any {
			return map[string]any{
				"Post":           post,
				"DeletePending":  view.DeletePending && view.PendingDeleteID == post.ID,
				csrf.TemplateTag: csrfField,
			}
		},
	}
}

func (h *Handler) renderMarkdown(source string) template.HTML {
	var buf bytes.Buffer

	err := h.markdown.Convert([]byte(source), &buf)
	if err != nil {
		slog.Error("failed to render markdown", "error", err)

		return template.HTML(template.HTMLEscapeString(source)) // nolint:gosec
	}

	return template.HTML(buf.String()) // nolint:gosec
}

func (h *Handler) serverError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	slog.ErrorContext(r.Context(), msg, "error", err)
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}

func (h *Handler) renderTemplate(w http.ResponseWriter, r *http.Request, name string, extraData map[string]any) {
	data := map[string]any{
		"CurrentPath":    r.URL.Path,
		"Lang":           "en",
		"Dir":            "ltr",
		"SiteTitle":      defaultSiteTitle,
		csrf.TemplateTag: csrf.TemplateField(r),
	}

	maps.Copy(data, extraData)

	err := h.tpl.ExecuteTemplate(w, name, data)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to render template", "name", name, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)

		return
	}
}

// done finishes a state-changing request by showing the page again.
func (h *Handler) done(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/" {
		h.HandleHomePage(w, r)

		return
	}

	h.HandleStatic(w, r)
}

func (h *Handler) HandleStatic(w http.ResponseWriter, r *http.Request) {
	http.FileServer(http.FS(h.static)).ServeHTTP(w, r)
}

func (h *Handler) HandleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleHomePage(w http.ResponseWriter, r *http.Request) {
	c := h.viewController(r)

	h.renderTemplate(w, r, "home-page.gohtml", map[string]any{
		"View": c.View(),
	})
}

func (h *Handler) HandleCreatePost(w http.ResponseWriter, r *http.Request) {
	err := r.ParseForm()
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to parse form", "error", err)
		http.Error(w, "Bad Request", http.StatusBadRequest)

		return
	}

	ctx, c := h.controller(r)

	c.SetField(contents.FieldTitle, r.FormValue("title"))
	c.SetField(contents.FieldBody, r.FormValue("body"))
	c.Submit(ctx)

	h.done(w, r)
}

// HandleFormField stores one field of the new-post form and clears its
// error. htmx requests get the emptied error slot back.
func (h *Handler) HandleFormField(w http.ResponseWriter, r *http.Request) {
	field := contents.Field(r.PathValue("field"))
	if !field.IsValid() {
		http.Error(w, "Unknown field", http.StatusNotFound)

		return
	}

	err := r.ParseForm()
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to parse form", "error", err)
		http.Error(w, "Bad Request", http.StatusBadRequest)

		return
	}

	_, c := h.controller(r)
	c.SetField(field, r.FormValue(string(field)))

	if r.Header.Get("HX-Request") != hxRequestTrue {
		h.done(w, r)

		return
	}

	err = h.tpl.ExecuteTemplate(w, "field-error", map[string]any{
		"Field":   string(field),
		"Message": c.View().Errors[field],
	})
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to render field error", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

func pathPostID(r *http.Request) (int, bool) {
	postID, err := strconv.Atoi(r.PathValue("postId"))
	if err != nil {
		return 0, false
	}

	return postID, true
}

func (h *Handler) HandleStartEdit(w http.ResponseWriter, r *http.Request) {
	postID, ok := pathPostID(r)
	if !ok {
		http.Error(w, "Post not found", http.StatusNotFound)

		return
	}

	_, c := h.controller(r)

	err := c.StartEdit(postID)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to start edit", "postId", postID, "error", err)
		http.Error(w, "Post not found", http.StatusNotFound)

		return
	}

	h.done(w, r)
}

func (h *Handler) HandleEditField(w http.ResponseWriter, r *http.Request) {
	postID, ok := pathPostID(r)
	if !ok {
		http.Error(w, "Post not found", http.StatusNotFound)

		return
	}

	field := contents.Field(r.PathValue("field"))
	if !field.IsValid() {
		http.Error(w, "Unknown field", http.StatusNotFound)

		return
	}

	err := r.ParseForm()
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to parse form", "error", err)
		http.Error(w, "Bad Request", http.StatusBadRequest)

		return
	}

	_, c := h.controller(r)

	if editingID, editing := c.EditSession().Editing(); !editing || editingID != postID {
		http.Error(w, "Post is not being edited", http.StatusConflict)

		return
	}

	err = c.SetEditField(field, r.FormValue(string(field)))
	if err != nil {
		http.Error(w, "Post is not being edited", http.StatusConflict)

		return
	}

	if r.Header.Get("HX-Request") == hxRequestTrue {
		w.WriteHeader(http.StatusNoContent)

		return
	}

	h.done(w, r)
}

func (h *Handler) HandleSaveEdit(w http.ResponseWriter, r *http.Request) {
	postID, ok := pathPostID(r)
	if !ok {
		http.Error(w, "Post not found", http.StatusNotFound)

		return
	}

	err := r.ParseForm()
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to parse form", "error", err)
		http.Error(w, "Bad Request", http.StatusBadRequest)

		return
	}

	ctx, c := h.controller(r)

	if editingID, editing := c.EditSession().Editing(); !editing || editingID != postID {
		h.done(w, r)

		return
	}

	for _, field := range []contents.Field{contents.FieldTitle, contents.FieldBody} {
		if r.Form.Has(string(field)) {
			_ = c.SetEditField(field, r.FormValue(string(field)))
		}
	}

	c.SaveEdit(ctx)

	h.done(w, r)
}

func (h *Handler) HandleCancelEdit(w http.ResponseWriter, r *http.Request) {
	postID, ok := pathPostID(r)
	if !ok {
		http.Error(w, "Post not found", http.StatusNotFound)

		return
	}

	_, c := h.controller(r)

	if editingID, editing := c.EditSession().Editing(); editing && editingID == postID {
		c.CancelEdit()
	}

	h.done(w, r)
}

func (h *Handler) HandleRequestDelete(w http.ResponseWriter, r *http.Request) {
	postID, ok := pathPostID(r)
	if !ok {
		http.Error(w, "Post not found", http.StatusNotFound)

		return
	}

	_, c := h.controller(r)

	err := c.RequestDelete(postID)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to request deletion", "postId", postID, "error", err)
		http.Error(w, "Post not found", http.StatusNotFound)

		return
	}

	h.done(w, r)
}

func (h *Handler) HandleConfirmDelete(w http.ResponseWriter, r *http.Request) {
	postID, ok := pathPostID(r)
	if !ok {
		http.Error(w, "Post not found", http.StatusNotFound)

		return
	}

	err := r.ParseForm()
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to parse form", "error", err)
		http.Error(w, "Bad Request", http.StatusBadRequest)

		return
	}

	ctx, c := h.controller(r)
	c.ResolveDelete(ctx, postID, r.FormValue("decision") == decisionYes)

	h.done(w, r)
}
