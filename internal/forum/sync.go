package forum

import (
	"context"
	"errors"

	"github.com/floatdr/forum/internal/domain"
)

// ErrUnauthenticated is returned when a write is attempted with no signed-in
// user. It is reported to the caller; nothing is dispatched to the adapter.
var ErrUnauthenticated = errors.New("not signed in")

// SyncAdapter is the boundary through which a thread session reads and writes
// persistent reply and reaction state. Implementations talk to the hosted
// data store (or directly to its backing database); the session never trusts
// its local state beyond the current snapshot and re-fetches after every
// mutation.
type SyncAdapter interface {
	FetchThread(ctx context.Context, id domain.ThreadId) (*domain.Thread, error)
	FetchReplies(ctx context.Context, threadId domain.ThreadId) ([]domain.Reply, error)
	FetchReactions(ctx context.Context, threadId domain.ThreadId) ([]domain.Reaction, error)

	SubmitReply(ctx context.Context, data domain.ReplyCreationData) (*domain.Reply, error)
	DeleteReply(ctx context.Context, id domain.ReplyId) error
	SetReaction(ctx context.Context, replyId domain.ReplyId, userId domain.UserId, t domain.ReactionType) error
	RemoveReaction(ctx context.Context, replyId domain.ReplyId, userId domain.UserId) error
}
