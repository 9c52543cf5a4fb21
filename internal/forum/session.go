package forum

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/floatdr/forum/internal/domain"
	"github.com/floatdr/forum/internal/logger"
)

// Session owns the view model for one thread screen. All mutation is
// sequential, driven by discrete user actions on the UI's single logical
// thread; every write goes to the adapter first and is followed by a full
// re-fetch so concurrent writers are reconciled. Navigating away discards
// the session; two views of the same thread never share one.
type Session struct {
	adapter  SyncAdapter
	threadId domain.ThreadId
	user     *domain.UserId // nil when browsing signed out

	view      *View
	replies   []domain.Reply
	reactions []domain.Reaction
}

func NewSession(adapter SyncAdapter, threadId domain.ThreadId, user *domain.UserId) *Session {
	return &Session{adapter: adapter, threadId: threadId, user: user}
}

// Load fetches the thread and its working set and builds the view model.
func (s *Session) Load(ctx context.Context) error {
	thread, err := s.adapter.FetchThread(ctx, s.threadId)
	if err != nil {
		return err
	}
	replies, reactions, err := s.fetchWorkingSet(ctx)
	if err != nil {
		return err
	}
	s.replies, s.reactions = replies, reactions
	s.view = NewView(thread, replies, reactions, SortRelevant)
	return nil
}

// Reload re-fetches replies and reactions and rebuilds the view. On failure
// the last-known-good snapshot is kept untouched.
func (s *Session) Reload(ctx context.Context) error {
	replies, reactions, err := s.fetchWorkingSet(ctx)
	if err != nil {
		return err
	}
	s.replies, s.reactions = replies, reactions
	s.view.Rebuild(replies, reactions)
	return nil
}

func (s *Session) fetchWorkingSet(ctx context.Context) ([]domain.Reply, []domain.Reaction, error) {
	replies, err := s.adapter.FetchReplies(ctx, s.threadId)
	if err != nil {
		return nil, nil, err
	}
	reactions, err := s.adapter.FetchReactions(ctx, s.threadId)
	if err != nil {
		return nil, nil, err
	}
	return replies, reactions, nil
}

// View exposes the current view model. Nil until Load succeeds.
func (s *Session) View() *View { return s.view }

// SubmitReply persists a new reply (top-level when parentId is nil) and then
// reloads the working set. Adapter failures propagate unchanged.
func (s *Session) SubmitReply(ctx context.Context, parentId *domain.ReplyId, body string) error {
	if s.user == nil {
		return ErrUnauthenticated
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return nil
	}
	_, err := s.adapter.SubmitReply(ctx, domain.ReplyCreationData{
		ThreadId: s.threadId,
		ParentId: parentId,
		AuthorId: *s.user,
		Body:     body,
	})
	if err != nil {
		return err
	}
	return s.Reload(ctx)
}

// ToggleReaction decides the target state from the ledger, persists it, then
// reloads. Re-selecting the current type removes the reaction; any other
// selection replaces it. The ledger is only touched after the store accepted
// the write, so a failed call leaves the snapshot intact.
func (s *Session) ToggleReaction(ctx context.Context, replyId domain.ReplyId, t domain.ReactionType) error {
	if s.user == nil {
		return ErrUnauthenticated
	}
	current, has := s.view.ledger.ReactionOf(replyId, *s.user)
	var err error
	if has && current == t {
		err = s.adapter.RemoveReaction(ctx, replyId, *s.user)
	} else {
		err = s.adapter.SetReaction(ctx, replyId, *s.user, t)
	}
	if err != nil {
		return err
	}
	s.view.ledger.Toggle(replyId, *s.user, t)
	return s.Reload(ctx)
}

// DeleteReply removes the user's own reply and reloads.
func (s *Session) DeleteReply(ctx context.Context, replyId domain.ReplyId) error {
	if s.user == nil {
		return ErrUnauthenticated
	}
	if err := s.adapter.DeleteReply(ctx, replyId); err != nil {
		return err
	}
	return s.Reload(ctx)
}

// ReplyEvent is a decoded realtime change to the thread's reply set.
type ReplyEvent struct {
	Kind  domain.ChangeKind
	Reply domain.Reply // only Id is guaranteed for deletes
}

// Apply patches the working set from the realtime feed and rebuilds the view.
// The feed is an optimization between reloads, not ground truth; the next
// reload after any local mutation establishes it.
func (s *Session) Apply(ev ReplyEvent) {
	if s.view == nil {
		return
	}
	switch ev.Kind {
	case domain.ChangeInsert:
		if ev.Reply.ThreadId != s.threadId {
			return
		}
		for _, r := range s.replies {
			if r.Id == ev.Reply.Id {
				return // already seen via reload
			}
		}
		s.replies = append(s.replies, ev.Reply)
	case domain.ChangeUpdate:
		for i, r := range s.replies {
			if r.Id == ev.Reply.Id {
				s.replies[i] = ev.Reply
				break
			}
		}
	case domain.ChangeDelete:
		kept := s.replies[:0]
		for _, r := range s.replies {
			if r.Id != ev.Reply.Id {
				kept = append(kept, r)
			}
		}
		s.replies = kept
	}
	s.view.Rebuild(s.replies, s.reactions)
}

// DecodeReplyEvent converts a raw feed notification for the replies table
// into a ReplyEvent. Rows the feed sends carry flat column names.
func DecodeReplyEvent(ev domain.ChangeEvent) (ReplyEvent, bool) {
	payload := ev.New
	if ev.Kind == domain.ChangeDelete {
		payload = ev.Old
	}
	var row struct {
		Id        domain.ReplyId  `json:"id"`
		ThreadId  domain.ThreadId `json:"thread_id"`
		ParentId  *domain.ReplyId `json:"parent_id"`
		AuthorId  domain.UserId   `json:"author_id"`
		Body      string          `json:"body"`
		CreatedAt *time.Time      `json:"created_at"` // delete payloads may omit it
	}
	if err := json.Unmarshal(payload, &row); err != nil {
		logger.Log.Warn("dropping malformed reply event", "err", err)
		return ReplyEvent{}, false
	}
	reply := domain.Reply{
		Id:       row.Id,
		ThreadId: row.ThreadId,
		ParentId: row.ParentId,
		Author:   domain.Profile{Id: row.AuthorId},
		Body:     row.Body,
	}
	if row.CreatedAt != nil {
		reply.CreatedAt = *row.CreatedAt
	}
	return ReplyEvent{Kind: ev.Kind, Reply: reply}, true
}
