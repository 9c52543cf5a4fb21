// Package setup builds the app's dependency graph from config: templates,
// the text processor, the data store for the configured driver and the auth
// middleware.
package setup

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/floatdr/forum/internal/backend"
	"github.com/floatdr/forum/internal/config"
	"github.com/floatdr/forum/internal/domain"
	"github.com/floatdr/forum/internal/handler"
	"github.com/floatdr/forum/internal/logger"
	"github.com/floatdr/forum/internal/middleware"
	"github.com/floatdr/forum/internal/storage/pg"
	"github.com/floatdr/forum/internal/text"
)

const (
	baseTemplate           = "base.html"
	tmplPath               = "templates"
	templateReloadInterval = 5 * time.Second
)

type Dependencies struct {
	Handler *handler.Handler
	Auth    *middleware.Auth
	Public  config.Public
	Cleanup func()
}

func SetupDependencies(cfg *config.Config) (*Dependencies, error) {
	templates := mustLoadTemplates(tmplPath)
	textProcessor := text.New()

	var (
		stores  handler.StoreFactory
		auth    handler.Authenticator
		uploads handler.Uploader
		cleanup = func() {}
	)

	// The hosted backend serves auth and storage even when rows come
	// straight from Postgres.
	var client *backend.Client
	if cfg.Public.Backend.URL != "" {
		client = backend.New(cfg.Public.Backend.URL, cfg.Public.Backend.RealtimeURL, cfg.APIKey())
		auth = client
		uploads = client
	} else {
		auth = disabledAuth{}
	}

	switch cfg.Public.Store.Driver {
	case "pg":
		storage, err := pg.New(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize pg storage: %w", err)
		}
		stores = func(string) handler.Store { return storage }
		cleanup = func() {
			if err := storage.Cleanup(); err != nil {
				logger.Log.Error("failed to close postgres", "error", err)
			}
		}
	case "rest":
		if client == nil {
			return nil, fmt.Errorf("store driver rest requires backend.url")
		}
		stores = func(token string) handler.Store { return client.Store(token) }
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Public.Store.Driver)
	}

	// The change feed needs both a client and a realtime endpoint.
	var feed handler.Feed
	if client != nil && cfg.Public.Backend.RealtimeURL != "" {
		feed = client
	}

	h := handler.New(templates, cfg.Public, textProcessor, stores, auth, uploads, feed)
	startTemplateReloader(h, tmplPath)

	// Typed-nil trap: only assign the interface when a client exists.
	var refresher middleware.Refresher
	if client != nil {
		refresher = client
	}
	authMw := middleware.NewAuth(
		func(token string) middleware.ProfileSource { return stores(token) },
		refresher,
		cfg.Public.Session.CookieName,
		cfg.Public.Session.SecureCookies,
	)

	return &Dependencies{
		Handler: h,
		Auth:    authMw,
		Public:  cfg.Public,
		Cleanup: cleanup,
	}, nil
}

// disabledAuth rejects every auth call, used when no hosted backend is
// configured.
type disabledAuth struct{}

var errAuthDisabled = errors.New("auth service is not configured")

func (disabledAuth) SignUp(context.Context, domain.Credentials) (domain.Session, error) {
	return domain.Session{}, errAuthDisabled
}

func (disabledAuth) SignIn(context.Context, domain.Credentials) (domain.Session, error) {
	return domain.Session{}, errAuthDisabled
}

func (disabledAuth) SignOut(context.Context, string) error { return errAuthDisabled }

func mustLoadTemplates(tmplPath string) map[string]*template.Template {
	templates := make(map[string]*template.Template)
	files, err := os.ReadDir(tmplPath)
	if err != nil {
		log.Fatal(err)
	}

	for _, f := range files {
		if filepath.Ext(f.Name()) == ".html" && f.Name() != baseTemplate && f.Name() != "partials.html" {
			templates[f.Name()] = template.Must(template.New(baseTemplate).ParseFiles(
				path.Join(tmplPath, baseTemplate),
				path.Join(tmplPath, f.Name()),
				path.Join(tmplPath, "partials.html"),
			))
		}
	}
	return templates
}

func startTemplateReloader(h *handler.Handler, tmplPath string) {
	if os.Getenv("ENV") == "development" {
		ticker := time.NewTicker(templateReloadInterval)
		go func() {
			for range ticker.C {
				h.Templates = mustLoadTemplates(tmplPath)
			}
		}()
	}
}
