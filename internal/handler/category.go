package handler

import (
	"net/http"

	"github.com/floatdr/forum/internal/domain"
	internal_errors "github.com/floatdr/forum/internal/errors"
	"github.com/floatdr/forum/internal/logger"
	"github.com/go-chi/chi/v5"
)

type categoriesPage struct {
	Categories []domain.Category
}

type categoryPage struct {
	Category domain.Category
	Threads  []domain.Thread
}

func (h *Handler) CategoriesHandler(w http.ResponseWriter, r *http.Request) {
	store := h.storeFor(r)
	categories, err := store.GetCategories(r.Context())
	if err != nil {
		logger.Log.Error("loading categories", "error", err)
		http.Error(w, "could not load categories", http.StatusBadGateway)
		return
	}
	h.renderTemplate(w, r, "categories.html", categoriesPage{Categories: categories})
}

func (h *Handler) CategoryHandler(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	store := h.storeFor(r)

	category, err := store.GetCategoryBySlug(r.Context(), slug)
	if err != nil {
		http.Error(w, "category not found", internal_errors.StatusCode(err))
		return
	}

	threads, err := store.ThreadsByCategory(r.Context(), category.Id)
	if err != nil {
		logger.Log.Error("loading category threads", "slug", slug, "error", err)
		http.Error(w, "could not load threads", http.StatusBadGateway)
		return
	}

	h.renderTemplate(w, r, "category.html", categoryPage{
		Category: *category,
		Threads:  threads,
	})
}
