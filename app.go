package postdesk

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/gorilla/sessions"
	"github.com/nasermirzaei89/env"
	"github.com/nasermirzaei89/postdesk/random"
	"github.com/nasermirzaei89/postdesk/restapi"
	"github.com/nasermirzaei89/postdesk/server"
	"github.com/nasermirzaei89/postdesk/web"
)

type App struct {
	server  *server.Server
	handler *web.Handler
}

func NewApp(ctx context.Context) (*App, error) {
	postRepo, err := NewPostRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to create post repository: %w", err)
	}

	srv := newServer()

	sessionName := env.GetString("SESSION_NAME", "postdesk-"+random.String(4))
	sessionKey := env.GetString("SESSION_KEY", random.String(32))
	cookieStore := sessions.NewCookieStore([]byte(sessionKey))
	cookieStore.Options.HttpOnly = true
	cookieStore.Options.Secure = srv.TLS.Enabled
	cookieStore.Options.SameSite = http.SameSiteLaxMode

	csrfConfig := web.CSRFConfig{
		AuthKey:        []byte(env.GetString("CSRF_AUTH_KEY", random.String(16))),
		TrustedOrigins: env.GetStringSlice("CSRF_TRUSTED_ORIGINS", []string{}),
		Secure:         srv.TLS.Enabled,
	}

	workspaceConfig, err := workspaceConfigFromEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to read workspace config: %w", err)
	}

	httpHandler, err := web.NewHandler(postRepo, cookieStore, sessionName, csrfConfig, workspaceConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP handler: %w", err)
	}

	slog.InfoContext(ctx, "app configured", "apiBaseUrl", apiBaseURL())

	return &App{
		server:  srv,
		handler: httpHandler,
	}, nil
}

func (app *App) Run(ctx context.Context) error {
	// Handle SIGINT (CTRL+C) gracefully.
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	err := app.server.Run(ctx, app.handler)
	if err != nil {
		return fmt.Errorf("failed to run server: %w", err)
	}

	return nil
}

func apiBaseURL() string {
	return env.GetString("API_BASE_URL", restapi.DefaultBaseURL)
}

// NewPostRepository returns the remote posts client configured from the
// environment.
func NewPostRepository() (*restapi.Client, error) {
	client, err := restapi.NewClient(apiBaseURL(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create rest api client: %w", err)
	}

	return client, nil
}

// workspaceConfigFromEnv reads WORKSPACE_LIMIT and WORKSPACE_IDLE_TIMEOUT
// (a Go duration such as "30m"). Unset values keep the web defaults.
func workspaceConfigFromEnv() (web.WorkspaceConfig, error) {
	var cfg web.WorkspaceConfig

	if limit := env.GetString("WORKSPACE_LIMIT", ""); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil {
			return web.WorkspaceConfig{}, fmt.Errorf("failed to parse WORKSPACE_LIMIT: %w", err)
		}

		cfg.Limit = n
	}

	if timeout := env.GetString("WORKSPACE_IDLE_TIMEOUT", ""); timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			return web.WorkspaceConfig{}, fmt.Errorf("failed to parse WORKSPACE_IDLE_TIMEOUT: %w", err)
		}

		cfg.IdleTimeout = d
	}

	return cfg, nil
}

func newServer() *server.Server {
	return NewServer("", server.DefaultPort)
}

// NewServer builds a server from the environment. prefix namespaces the
// variables, e.g. "FAKEAPI_" reads FAKEAPI_PORT.
func NewServer(prefix, defaultPort string) *server.Server {
	return &server.Server{
		Port: env.GetString(prefix+"PORT", defaultPort),
		Host: env.GetString(prefix+"HOST", ""),
		TLS: server.ServerTLS{
			Enabled: env.GetBool(prefix+"TLS_ENABLED", false),
			Mode:    env.GetString(prefix+"TLS_MODE", server.DefaultTLSMode),
			AutoCert: &server.ServerTLSAutoCert{
				CacheDir: env.GetString(prefix+"TLS_AUTOCERT_CACHE_DIR", "./cert-cache"),
				Domains:  env.GetStringSlice(prefix+"TLS_AUTOCERT_DOMAINS", []string{}),
				Email:    env.GetString(prefix+"TLS_AUTOCERT_EMAIL", ""),
			},
			CertFile: env.GetString(prefix+"TLS_CERT_FILE", ""),
			KeyFile:  env.GetString(prefix+"TLS_KEY_FILE", ""),
		},
	}
}

func GetLogLevelFromEnv() slog.Level {
	levelStr := env.GetString("LOG_LEVEL", "info")
	switch levelStr {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		slog.Warn("unknown log level, defaulting to info", "level", levelStr)

		return slog.LevelInfo
	}
}

// SetupLogger installs the default slog logger writing text to stderr.
func SetupLogger() {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: GetLogLevelFromEnv()})
	slog.SetDefault(slog.New(handler))
}
