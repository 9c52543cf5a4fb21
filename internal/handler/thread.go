package handler

import (
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/floatdr/forum/internal/domain"
	internal_errors "github.com/floatdr/forum/internal/errors"
	"github.com/floatdr/forum/internal/forum"
	"github.com/floatdr/forum/internal/logger"
	"github.com/floatdr/forum/internal/middleware"
	"github.com/floatdr/forum/internal/middleware/metrics"
)

type replyView struct {
	Reply domain.Reply
	Body  template.HTML
}

type commentView struct {
	Comment    domain.Reply
	Body       template.HTML
	Likes      int
	Dislikes   int
	MyReaction string
	ReplyCount int
	Expanded   bool
	Replies    []replyView
}

type threadPage struct {
	Thread      domain.Thread
	Body        template.HTML
	Comments    []commentView
	Sort        string
	CanEdit     bool
	LiveUpdates bool
}

// loadSession builds a thread session for the caller and loads the first
// snapshot.
func (h *Handler) loadSession(r *http.Request) (*forum.Session, *middleware.CurrentUser, error) {
	threadId, err := urlParamInt64(r, "id")
	if err != nil {
		return nil, nil, internal_errors.BadRequest("invalid thread id")
	}

	user := middleware.GetUserFromContext(r)
	var userId *domain.UserId
	if user != nil {
		userId = &user.Profile.Id
	}

	session := forum.NewSession(h.storeFor(r), threadId, userId)
	if err := session.Load(r.Context()); err != nil {
		return nil, nil, err
	}
	return session, user, nil
}

func (h *Handler) ThreadGetHandler(w http.ResponseWriter, r *http.Request) {
	session, user, err := h.loadSession(r)
	if err != nil {
		http.Error(w, "could not load thread", internal_errors.StatusCode(err))
		return
	}
	view := session.View()

	switch r.URL.Query().Get("sort") {
	case "newest":
		view.SetPolicy(forum.SortNewest)
	case "relevant":
		view.SetPolicy(forum.SortRelevant)
	}

	for _, id := range h.expandedIds(r, view.Thread.Id) {
		if !view.IsExpanded(id) {
			view.ToggleExpanded(id)
		}
	}

	page := threadPage{
		Thread:      *view.Thread,
		Sort:        string(view.Policy()),
		LiveUpdates: h.Feed != nil,
	}
	body, _ := h.Text.RenderBody(view.Thread.Body)
	page.Body = template.HTML(body)
	if user != nil {
		page.CanEdit = user.Profile.IsAdmin || user.Profile.Id == view.Thread.Author.Id
	}

	var myId domain.UserId
	if user != nil {
		myId = user.Profile.Id
	}
	for _, node := range view.Comments() {
		cv := commentView{
			Comment:    node.Comment,
			Likes:      view.Likes(node.Comment.Id),
			Dislikes:   view.Dislikes(node.Comment.Id),
			ReplyCount: view.ReplyCount(node.Comment.Id),
			Expanded:   view.IsExpanded(node.Comment.Id),
		}
		rendered, _ := h.Text.RenderBody(node.Comment.Body)
		cv.Body = template.HTML(rendered)
		if user != nil {
			cv.MyReaction = string(view.ReactionOf(node.Comment.Id, myId))
		}
		if cv.Expanded {
			for _, reply := range view.Replies(node.Comment.Id) {
				renderedReply, _ := h.Text.RenderBody(reply.Body)
				cv.Replies = append(cv.Replies, replyView{Reply: reply, Body: template.HTML(renderedReply)})
			}
		}
		page.Comments = append(page.Comments, cv)
	}

	h.renderTemplate(w, r, "thread.html", page)
}

func (h *Handler) ReplyPostHandler(w http.ResponseWriter, r *http.Request) {
	session, _, err := h.loadSession(r)
	if err != nil {
		http.Error(w, "could not load thread", internal_errors.StatusCode(err))
		return
	}
	threadURL := fmt.Sprintf("/threads/%d", session.View().Thread.Id)

	var parentId *domain.ReplyId
	if raw := r.FormValue("parent_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			h.redirectWithFlash(w, r, threadURL, flashCookieError, "Invalid parent comment.")
			return
		}
		parentId = &id
	}

	err = session.SubmitReply(r.Context(), parentId, r.FormValue("body"))
	switch {
	case errors.Is(err, forum.ErrUnauthenticated):
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	case err != nil:
		metrics.BackendReloads.WithLabelValues("error").Inc()
		logger.Log.Error("submitting reply", "thread", session.View().Thread.Id, "error", err)
		h.redirectWithFlash(w, r, threadURL, flashCookieError, "Could not post the reply. Try again.")
		return
	}
	metrics.BackendReloads.WithLabelValues("ok").Inc()
	http.Redirect(w, r, threadURL, http.StatusSeeOther)
}

func (h *Handler) ReactionPostHandler(w http.ResponseWriter, r *http.Request) {
	session, _, err := h.loadSession(r)
	if err != nil {
		http.Error(w, "could not load thread", internal_errors.StatusCode(err))
		return
	}
	threadURL := fmt.Sprintf("/threads/%d", session.View().Thread.Id)

	replyId, err := formInt64(r, "reply_id")
	if err != nil {
		h.redirectWithFlash(w, r, threadURL, flashCookieError, "Invalid reply.")
		return
	}
	reaction := domain.ReactionType(r.FormValue("type"))
	if !reaction.Valid() {
		h.redirectWithFlash(w, r, threadURL, flashCookieError, "Unknown reaction.")
		return
	}

	err = session.ToggleReaction(r.Context(), replyId, reaction)
	switch {
	case errors.Is(err, forum.ErrUnauthenticated):
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	case err != nil:
		metrics.BackendReloads.WithLabelValues("error").Inc()
		logger.Log.Error("toggling reaction", "reply", replyId, "error", err)
		h.redirectWithFlash(w, r, threadURL, flashCookieError, "Could not register the reaction.")
		return
	}
	metrics.BackendReloads.WithLabelValues("ok").Inc()
	http.Redirect(w, r, threadURL, http.StatusSeeOther)
}

func (h *Handler) DeleteReplyHandler(w http.ResponseWriter, r *http.Request) {
	session, user, err := h.loadSession(r)
	if err != nil {
		http.Error(w, "could not load thread", internal_errors.StatusCode(err))
		return
	}
	threadURL := fmt.Sprintf("/threads/%d", session.View().Thread.Id)

	replyId, err := formInt64(r, "reply_id")
	if err != nil {
		h.redirectWithFlash(w, r, threadURL, flashCookieError, "Invalid reply.")
		return
	}

	// The data store enforces this too; checking here gives a clean error
	// instead of a row-level security refusal.
	if user == nil || !h.canDeleteReply(session, user, replyId) {
		http.Error(w, "you can only delete your own replies", http.StatusForbidden)
		return
	}

	if err := session.DeleteReply(r.Context(), replyId); err != nil {
		logger.Log.Error("deleting reply", "reply", replyId, "error", err)
		h.redirectWithFlash(w, r, threadURL, flashCookieError, "Could not delete the reply.")
		return
	}
	http.Redirect(w, r, threadURL, http.StatusSeeOther)
}

func (h *Handler) canDeleteReply(session *forum.Session, user *middleware.CurrentUser, replyId domain.ReplyId) bool {
	if user.Profile.IsAdmin {
		return true
	}
	view := session.View()
	for _, node := range view.Comments() {
		if node.Comment.Id == replyId {
			return node.Comment.Author.Id == user.Profile.Id
		}
		for _, reply := range view.Replies(node.Comment.Id) {
			if reply.Id == replyId {
				return reply.Author.Id == user.Profile.Id
			}
		}
	}
	return false
}

// ExpandToggleHandler flips one comment's expand state, kept per thread in a
// cookie so it survives the redirect-reload cycle.
func (h *Handler) ExpandToggleHandler(w http.ResponseWriter, r *http.Request) {
	threadId, err := urlParamInt64(r, "id")
	if err != nil {
		http.Error(w, "invalid thread id", http.StatusBadRequest)
		return
	}
	commentId, err := formInt64(r, "comment_id")
	if err != nil {
		http.Error(w, "invalid comment id", http.StatusBadRequest)
		return
	}

	ids := h.expandedIds(r, threadId)
	var kept []string
	found := false
	for _, id := range ids {
		if id == commentId {
			found = true
			continue
		}
		kept = append(kept, strconv.FormatInt(id, 10))
	}
	if !found {
		kept = append(kept, strconv.FormatInt(commentId, 10))
	}

	http.SetCookie(w, &http.Cookie{
		Name:     expandCookieName(threadId),
		Value:    strings.Join(kept, "-"),
		Path:     fmt.Sprintf("/threads/%d", threadId),
		MaxAge:   3600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, fmt.Sprintf("/threads/%d#reply-%d", threadId, commentId), http.StatusSeeOther)
}

func expandCookieName(threadId domain.ThreadId) string {
	return fmt.Sprintf("expand_%d", threadId)
}

func (h *Handler) expandedIds(r *http.Request, threadId domain.ThreadId) []domain.ReplyId {
	cookie, err := r.Cookie(expandCookieName(threadId))
	if err != nil || cookie.Value == "" {
		return nil
	}
	var ids []domain.ReplyId
	for _, part := range strings.Split(cookie.Value, "-") {
		if id, err := strconv.ParseInt(part, 10, 64); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}
