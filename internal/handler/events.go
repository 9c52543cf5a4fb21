package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	internal_errors "github.com/floatdr/forum/internal/errors"
	"github.com/floatdr/forum/internal/forum"
	"github.com/floatdr/forum/internal/logger"
)

// threadEvent is one server-sent event on the thread stream. Total is the
// reply count after the change was applied, so the browser can show it
// without refetching.
type threadEvent struct {
	Kind    string `json:"kind"`
	ReplyId int64  `json:"reply_id"`
	Total   int    `json:"total"`
}

// ThreadEventsHandler streams reply changes for one thread as server-sent
// events. The stream patches a server-held session from the realtime feed;
// it is a hint between reloads, never the source of truth. The full reload
// after a local mutation stays authoritative.
func (h *Handler) ThreadEventsHandler(w http.ResponseWriter, r *http.Request) {
	if h.Feed == nil {
		http.Error(w, "live updates are disabled", http.StatusNotFound)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	session, user, err := h.loadSession(r)
	if err != nil {
		http.Error(w, "could not load thread", internal_errors.StatusCode(err))
		return
	}

	var token string
	if user != nil {
		token = user.Token
	}
	threadId := session.View().Thread.Id
	events, err := h.Feed.Subscribe(r.Context(), token, "forum_replies", fmt.Sprintf("thread_id=eq.%d", threadId))
	if err != nil {
		logger.Log.Warn("realtime subscribe failed", "thread", threadId, "error", err)
		http.Error(w, "live updates unavailable", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for ev := range events {
		if ev.Table != "forum_replies" {
			continue
		}
		replyEv, ok := forum.DecodeReplyEvent(ev)
		if !ok {
			continue
		}
		session.Apply(replyEv)

		payload, err := json.Marshal(threadEvent{
			Kind:    string(replyEv.Kind),
			ReplyId: int64(replyEv.Reply.Id),
			Total:   session.View().Total(),
		})
		if err != nil {
			continue
		}
		fmt.Fprintf(w, "event: reply\ndata: %s\n\n", payload)
		flusher.Flush()
	}
}
