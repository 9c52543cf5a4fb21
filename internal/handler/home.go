package handler

import (
	"net/http"
	"strings"

	"github.com/floatdr/forum/internal/domain"
	"github.com/floatdr/forum/internal/logger"
)

const homeFeedLimit = 50

type homePage struct {
	Threads []domain.Thread
	Query   string
}

func (h *Handler) HomeHandler(w http.ResponseWriter, r *http.Request) {
	store := h.storeFor(r)
	threads, err := store.LatestThreads(r.Context(), homeFeedLimit)
	if err != nil {
		logger.Log.Error("loading home feed", "error", err)
		http.Error(w, "could not load the feed", http.StatusBadGateway)
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	h.renderTemplate(w, r, "home.html", homePage{
		Threads: FilterThreads(threads, query),
		Query:   query,
	})
}

// FilterThreads keeps threads whose title contains the query as a
// case-insensitive substring. An empty query keeps everything.
func FilterThreads(threads []domain.Thread, query string) []domain.Thread {
	if query == "" {
		return threads
	}
	needle := strings.ToLower(query)
	filtered := make([]domain.Thread, 0, len(threads))
	for _, t := range threads {
		if strings.Contains(strings.ToLower(t.Title), needle) {
			filtered = append(filtered, t)
		}
	}
	return filtered
}
