package forum

import "github.com/floatdr/forum/internal/domain"

// ToggleOutcome says what a ledger toggle did, so the caller knows which
// data-store call persists it.
type ToggleOutcome int

const (
	ReactionAdded ToggleOutcome = iota
	ReactionSwitched
	ReactionRemoved
)

// Ledger indexes reactions by reply and user. It is authoritative only within
// the current in-memory snapshot; the surrounding session reloads from the
// data store after every persisted toggle.
type Ledger struct {
	byReply map[domain.ReplyId]map[domain.UserId]domain.ReactionType
}

func NewLedger(reactions []domain.Reaction) *Ledger {
	l := &Ledger{byReply: make(map[domain.ReplyId]map[domain.UserId]domain.ReactionType)}
	for _, r := range reactions {
		l.set(r.ReplyId, r.UserId, r.Type)
	}
	return l
}

func (l *Ledger) set(replyId domain.ReplyId, userId domain.UserId, t domain.ReactionType) {
	users, ok := l.byReply[replyId]
	if !ok {
		users = make(map[domain.UserId]domain.ReactionType)
		l.byReply[replyId] = users
	}
	users[userId] = t
}

// Count returns the number of reactions of the given type on a reply.
func (l *Ledger) Count(replyId domain.ReplyId, t domain.ReactionType) int {
	n := 0
	for _, have := range l.byReply[replyId] {
		if have == t {
			n++
		}
	}
	return n
}

// ReactionOf returns the user's current reaction to a reply, if any.
func (l *Ledger) ReactionOf(replyId domain.ReplyId, userId domain.UserId) (domain.ReactionType, bool) {
	t, ok := l.byReply[replyId][userId]
	return t, ok
}

// Toggle applies the reaction rules: re-selecting the current type removes
// the entry, anything else replaces it. A user holds at most one reaction per
// reply, so two same-type toggles in a row net to no reaction.
func (l *Ledger) Toggle(replyId domain.ReplyId, userId domain.UserId, t domain.ReactionType) ToggleOutcome {
	current, ok := l.ReactionOf(replyId, userId)
	if ok && current == t {
		delete(l.byReply[replyId], userId)
		if len(l.byReply[replyId]) == 0 {
			delete(l.byReply, replyId)
		}
		return ReactionRemoved
	}
	l.set(replyId, userId, t)
	if ok {
		return ReactionSwitched
	}
	return ReactionAdded
}
