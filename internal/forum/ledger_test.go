package forum

import (
	"testing"

	"github.com/google/uuid"

	"github.com/floatdr/forum/internal/domain"
)

func TestToggleRoundTrip(t *testing.T) {
	user := uuid.New()
	l := NewLedger(nil)

	if outcome := l.Toggle(5, user, domain.ReactionLike); outcome != ReactionAdded {
		t.Errorf("expected ReactionAdded, got %v", outcome)
	}
	if got := l.Count(5, domain.ReactionLike); got != 1 {
		t.Errorf("expected 1 like, got %d", got)
	}

	// Same type again removes it: two consecutive toggles net to nothing.
	if outcome := l.Toggle(5, user, domain.ReactionLike); outcome != ReactionRemoved {
		t.Errorf("expected ReactionRemoved, got %v", outcome)
	}
	if got := l.Count(5, domain.ReactionLike); got != 0 {
		t.Errorf("expected 0 likes, got %d", got)
	}
	if _, ok := l.ReactionOf(5, user); ok {
		t.Error("expected no reaction after round trip")
	}
}

func TestToggleSwitchesNotAccumulates(t *testing.T) {
	user := uuid.New()
	l := NewLedger(nil)

	l.Toggle(7, user, domain.ReactionLike)
	if outcome := l.Toggle(7, user, domain.ReactionDislike); outcome != ReactionSwitched {
		t.Errorf("expected ReactionSwitched, got %v", outcome)
	}

	if got := l.Count(7, domain.ReactionLike); got != 0 {
		t.Errorf("expected 0 likes after switch, got %d", got)
	}
	if got := l.Count(7, domain.ReactionDislike); got != 1 {
		t.Errorf("expected 1 dislike after switch, got %d", got)
	}
	if reaction, _ := l.ReactionOf(7, user); reaction != domain.ReactionDislike {
		t.Errorf("expected dislike, got %q", reaction)
	}
}

func TestLedgerCountsPerUser(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	l := NewLedger([]domain.Reaction{
		{ReplyId: 1, UserId: a, Type: domain.ReactionLike},
		{ReplyId: 1, UserId: b, Type: domain.ReactionLike},
		{ReplyId: 1, UserId: c, Type: domain.ReactionDislike},
		{ReplyId: 2, UserId: a, Type: domain.ReactionDislike},
	})

	if got := l.Count(1, domain.ReactionLike); got != 2 {
		t.Errorf("expected 2 likes on reply 1, got %d", got)
	}
	if got := l.Count(1, domain.ReactionDislike); got != 1 {
		t.Errorf("expected 1 dislike on reply 1, got %d", got)
	}
	if got := l.Count(2, domain.ReactionLike); got != 0 {
		t.Errorf("expected 0 likes on reply 2, got %d", got)
	}
	if got := l.Count(3, domain.ReactionLike); got != 0 {
		t.Errorf("expected 0 likes on unknown reply, got %d", got)
	}
}

func TestReactionOf(t *testing.T) {
	user := uuid.New()
	other := uuid.New()
	l := NewLedger([]domain.Reaction{{ReplyId: 9, UserId: user, Type: domain.ReactionLike}})

	if reaction, ok := l.ReactionOf(9, user); !ok || reaction != domain.ReactionLike {
		t.Errorf("expected like, got %q (ok=%v)", reaction, ok)
	}
	if _, ok := l.ReactionOf(9, other); ok {
		t.Error("expected no reaction for other user")
	}
}
