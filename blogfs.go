// Package blogfs serves a filesystem-backed blog store over HTTP.
//
// Each blog is a folder holding a metadata document (overview.json), a
// markdown body (content.md) and an optional cover image. The server
// lists blogs newest first, renders a blog's body to HTML on every
// request, and streams cover images. Markdown rendering is delegated to a
// pluggable markdown.Renderer.
package blogfs

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eringen/blogfs/markdown"
)

// App wires together the store, renderer, handlers and middleware.
type App struct {
	Config   Config
	Echo     *echo.Echo
	Store    *Store
	Renderer markdown.Renderer

	resizeLimiter *RateLimiter
	customRoutes  []func(*App)
}

// New builds an App ready to serve. It fails when the blog-folder root is
// missing or the configured renderer is unknown.
func New(cfg Config, opts ...Option) (*App, error) {
	cfg.setDefaults()

	a := &App{
		Config: cfg,
		Echo:   echo.New(),
	}
	for _, opt := range opts {
		opt(a)
	}

	a.Echo.HideBanner = true
	a.Echo.Logger.SetLevel(cfg.logLevel())

	if a.Renderer == nil {
		r, err := markdown.New(cfg.Renderer, cfg.MarkdownOptions())
		if err != nil {
			return nil, fmt.Errorf("blogfs: %w", err)
		}
		a.Renderer = r
	}

	store, err := NewStore(cfg.BlogsDir, a.Renderer)
	if err != nil {
		return nil, fmt.Errorf("blogfs: init store: %w", err)
	}
	store.Strict = cfg.StrictListing
	store.OnSkip = func(id string, err error) {
		a.Echo.Logger.Warnf("skipping blog %q: %v", id, err)
	}
	a.Store = store
	a.resizeLimiter = NewRateLimiter(cfg.ResizeLimit, time.Minute)

	a.setupMiddleware()
	a.setupRoutes()
	for _, fn := range a.customRoutes {
		fn(a)
	}
	return a, nil
}

func (a *App) setupRoutes() {
	e := a.Echo
	methods := []string{http.MethodGet, http.MethodHead}
	e.Match(methods, "/get", a.handleList)
	e.Match(methods, "/get/:id", a.handleBlog)
	e.Match(methods, "/get/:id/cover", a.handleCover)
	e.Match(methods, "/feed.xml", a.handleFeed)
	e.Match(methods, "/sitemap.xml", a.handleSitemap)
}

// Start listens on Config.Addr and blocks until the server stops.
func (a *App) Start() error {
	a.Echo.Logger.Infof("serving %s on %s", a.Store.Root(), a.Config.Addr)
	if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the server, waiting for in-flight requests until ctx ends.
func (a *App) Shutdown(ctx context.Context) error {
	defer a.Close()
	return a.Echo.Shutdown(ctx)
}

// Close releases background resources. Call this when the app is no longer used.
func (a *App) Close() {
	if a.resizeLimiter != nil {
		a.resizeLimiter.Close()
	}
}

// ServeHTTP lets an App be mounted as a plain http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.Echo.ServeHTTP(w, r)
}
