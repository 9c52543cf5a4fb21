package handler

import (
	"fmt"
	"net/http"

	"github.com/floatdr/forum/internal/domain"
	"github.com/floatdr/forum/internal/logger"
	"github.com/floatdr/forum/internal/middleware"
)

type savedPage struct {
	Saved []domain.SavedThread
}

func (h *Handler) SavedListHandler(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r)
	if user == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	saved, err := h.Stores(user.Token).SavedThreads(r.Context(), user.Profile.Id)
	if err != nil {
		logger.Log.Error("loading saved threads", "error", err)
		http.Error(w, "could not load saved threads", http.StatusBadGateway)
		return
	}
	h.renderTemplate(w, r, "saved.html", savedPage{Saved: saved})
}

func (h *Handler) SaveThreadHandler(w http.ResponseWriter, r *http.Request) {
	h.toggleSaved(w, r, true)
}

func (h *Handler) UnsaveThreadHandler(w http.ResponseWriter, r *http.Request) {
	h.toggleSaved(w, r, false)
}

func (h *Handler) toggleSaved(w http.ResponseWriter, r *http.Request, save bool) {
	user := middleware.GetUserFromContext(r)
	if user == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	threadId, err := urlParamInt64(r, "id")
	if err != nil {
		http.Error(w, "invalid thread id", http.StatusBadRequest)
		return
	}

	store := h.Stores(user.Token)
	if save {
		err = store.SaveThread(r.Context(), user.Profile.Id, threadId)
	} else {
		err = store.UnsaveThread(r.Context(), user.Profile.Id, threadId)
	}
	if err != nil {
		logger.Log.Error("toggling saved thread", "thread", threadId, "save", save, "error", err)
		h.redirectWithFlash(w, r, fmt.Sprintf("/threads/%d", threadId), flashCookieError, "Could not update saved threads.")
		return
	}

	target := r.FormValue("return_to")
	if !safeReturnTo(target) {
		target = fmt.Sprintf("/threads/%d", threadId)
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}
