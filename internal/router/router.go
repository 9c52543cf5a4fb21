package router

import (
	"net/http"

	"github.com/floatdr/forum/internal/handler"
	"github.com/floatdr/forum/internal/middleware"
	"github.com/floatdr/forum/internal/middleware/metrics"
	"github.com/floatdr/forum/internal/setup"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func SetupRouter(deps *setup.Dependencies) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(metrics.Middleware)
	r.Use(middleware.SecurityHeadersWithCSP(deps.Public.Session.SecureCookies, ""))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST"},
		AllowCredentials: true,
	}))
	r.Use(deps.Auth.OptionalAuth())

	h := deps.Handler

	r.Get("/favicon.ico", handler.FaviconHandler)
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir("static"))))
	r.Handle("/metrics", promhttp.Handler())

	// Public screens
	r.Get("/", h.HomeHandler)
	r.Get("/categories", h.CategoriesHandler)
	r.Get("/c/{slug}", h.CategoryHandler)
	r.Get("/threads/{id}", h.ThreadGetHandler)
	r.Get("/threads/{id}/events", h.ThreadEventsHandler)
	r.Post("/threads/{id}/expand", h.ExpandToggleHandler)

	r.Get("/login", h.LoginGetHandler)
	r.Post("/login", h.LoginPostHandler)
	r.Get("/register", h.RegisterGetHandler)
	r.Post("/register", h.RegisterPostHandler)
	r.Post("/logout", h.LogoutHandler)

	// Signed-in screens
	r.Group(func(r chi.Router) {
		r.Use(deps.Auth.NeedAuth())

		r.Get("/profile", h.ProfileGetHandler)
		r.Post("/profile", h.ProfileEditPostHandler)
		r.Get("/saved", h.SavedListHandler)
		r.Post("/threads/{id}/save", h.SaveThreadHandler)
		r.Post("/threads/{id}/unsave", h.UnsaveThreadHandler)
		r.Post("/threads/{id}/report", h.ReportPostHandler)
		r.Post("/threads/{id}/reactions", h.ReactionPostHandler)
		r.Post("/threads/{id}/replies/delete", h.DeleteReplyHandler)
		r.Get("/threads/{id}/edit", h.EditThreadGetHandler)
		r.Post("/threads/{id}/edit", h.EditThreadPostHandler)
		r.Post("/threads/{id}/delete", h.DeleteThreadHandler)
	})

	// Posting requires an active membership on top of auth.
	r.Group(func(r chi.Router) {
		r.Use(deps.Auth.NeedAuth())
		r.Use(deps.Auth.NeedMembership())

		r.Get("/threads/new", h.CreateThreadGetHandler)
		r.Post("/threads/new", h.CreateThreadPostHandler)
		r.Post("/threads/{id}/reply", h.ReplyPostHandler)
	})

	// Moderation
	r.Group(func(r chi.Router) {
		r.Use(deps.Auth.AdminOnly())

		r.Get("/admin/reports", h.AdminReportsHandler)
		r.Post("/admin/reports/{id}/resolve", h.ResolveReportHandler)
		r.Post("/admin/reports/{id}/delete", h.DeleteReportHandler)
		r.Post("/admin/threads/{id}/delete", h.AdminDeleteThreadHandler)
	})

	return r
}
