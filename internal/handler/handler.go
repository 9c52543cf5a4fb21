package handler

import (
	"context"
	"html/template"
	"net/http"

	"github.com/floatdr/forum/internal/config"
	"github.com/floatdr/forum/internal/domain"
	"github.com/floatdr/forum/internal/forum"
	"github.com/floatdr/forum/internal/text"
)

// Store is everything the screens need from a data store. Both the hosted
// row API client and the direct Postgres storage satisfy it.
type Store interface {
	forum.SyncAdapter

	GetProfile(ctx context.Context, id domain.UserId) (*domain.Profile, error)
	UpdateProfile(ctx context.Context, id domain.UserId, upd domain.ProfileUpdate) error

	GetCategories(ctx context.Context) ([]domain.Category, error)
	GetCategoryBySlug(ctx context.Context, slug domain.CategorySlug) (*domain.Category, error)

	LatestThreads(ctx context.Context, limit int) ([]domain.Thread, error)
	ThreadsByCategory(ctx context.Context, categoryId domain.CategoryId) ([]domain.Thread, error)
	CreateThread(ctx context.Context, data domain.ThreadCreationData) (*domain.Thread, error)
	UpdateThread(ctx context.Context, id domain.ThreadId, upd domain.ThreadUpdate) error
	DeleteThread(ctx context.Context, id domain.ThreadId) error

	CreateReport(ctx context.Context, data domain.ReportCreationData) error
	OpenReports(ctx context.Context) ([]domain.Report, error)
	ResolveReport(ctx context.Context, id domain.ReportId) error
	DeleteReport(ctx context.Context, id domain.ReportId) error

	GetMembership(ctx context.Context, userId domain.UserId) (*domain.Membership, error)

	SavedThreads(ctx context.Context, userId domain.UserId) ([]domain.SavedThread, error)
	SaveThread(ctx context.Context, userId domain.UserId, threadId domain.ThreadId) error
	UnsaveThread(ctx context.Context, userId domain.UserId, threadId domain.ThreadId) error
}

// StoreFactory binds a store to a session token. The pg driver ignores the
// token; the hosted row API enforces row-level security with it.
type StoreFactory func(token string) Store

// Authenticator is the slice of the backend auth service the screens use.
type Authenticator interface {
	SignUp(ctx context.Context, creds domain.Credentials) (domain.Session, error)
	SignIn(ctx context.Context, creds domain.Credentials) (domain.Session, error)
	SignOut(ctx context.Context, token string) error
}

// Uploader stores an object and returns its public URL. Nil disables image
// uploads (pg driver without a hosted storage service).
type Uploader interface {
	Upload(ctx context.Context, token, bucket, name, contentType string, data []byte) (string, error)
}

// Feed is the realtime change feed behind the thread event stream. Nil
// disables live updates; the screens then rely on reloads alone.
type Feed interface {
	Subscribe(ctx context.Context, token, table, filter string) (<-chan domain.ChangeEvent, error)
}

type Handler struct {
	Templates map[string]*template.Template
	Public    config.Public
	Text      *text.Processor
	Stores    StoreFactory
	Auth      Authenticator
	Uploads   Uploader
	Feed      Feed
}

func New(templates map[string]*template.Template, publicCfg config.Public, textProcessor *text.Processor, stores StoreFactory, auth Authenticator, uploads Uploader, feed Feed) *Handler {
	return &Handler{
		Templates: templates,
		Public:    publicCfg,
		Text:      textProcessor,
		Stores:    stores,
		Auth:      auth,
		Uploads:   uploads,
		Feed:      feed,
	}
}

func FaviconHandler(w http.ResponseWriter, r *http.Request) {
	http.ServeFile(w, r, "static/favicon.ico")
}
