package forum

import (
	"testing"
	"time"

	"github.com/floatdr/forum/internal/domain"
)

func ts(minute int) time.Time {
	return time.Date(2025, 6, 1, 10, minute, 0, 0, time.UTC)
}

func reply(id domain.ReplyId, parent *domain.ReplyId, at time.Time) domain.Reply {
	return domain.Reply{Id: id, ThreadId: 1, ParentId: parent, Body: "r", CreatedAt: at}
}

func pid(id domain.ReplyId) *domain.ReplyId { return &id }

func TestBuildTreePartition(t *testing.T) {
	replies := []domain.Reply{
		reply(1, nil, ts(0)),
		reply(2, pid(1), ts(2)),
		reply(3, nil, ts(1)),
		reply(4, pid(1), ts(1)),
		reply(5, pid(3), ts(3)),
	}

	nodes := BuildTree(replies)
	if len(nodes) != 2 {
		t.Fatalf("expected 2 comments, got %d", len(nodes))
	}
	if nodes[0].Comment.Id != 1 || nodes[1].Comment.Id != 3 {
		t.Errorf("comments out of input order: %d, %d", nodes[0].Comment.Id, nodes[1].Comment.Id)
	}

	// Children of comment 1 sorted ascending by CreatedAt (4 before 2).
	got := nodes[0].Replies
	if len(got) != 2 || got[0].Id != 4 || got[1].Id != 2 {
		t.Errorf("unexpected children for comment 1: %+v", got)
	}
	if len(nodes[1].Replies) != 1 || nodes[1].Replies[0].Id != 5 {
		t.Errorf("unexpected children for comment 3: %+v", nodes[1].Replies)
	}

	// No reply appears twice and none is lost.
	seen := map[domain.ReplyId]int{}
	for _, n := range nodes {
		seen[n.Comment.Id]++
		for _, r := range n.Replies {
			seen[r.Id]++
		}
	}
	for id, count := range seen {
		if count != 1 {
			t.Errorf("reply %d placed %d times", id, count)
		}
	}
	if len(seen) != len(replies) {
		t.Errorf("expected %d placed replies, got %d", len(replies), len(seen))
	}
}

func TestBuildTreeDropsOrphans(t *testing.T) {
	replies := []domain.Reply{
		reply(1, nil, ts(0)),
		reply(2, pid(1), ts(1)),
		reply(3, pid(99), ts(2)), // parent 99 was deleted concurrently
	}

	nodes := BuildTree(replies)
	if len(nodes) != 1 {
		t.Fatalf("expected 1 comment, got %d", len(nodes))
	}
	if len(nodes[0].Replies) != 1 || nodes[0].Replies[0].Id != 2 {
		t.Errorf("expected single child 2, got %+v", nodes[0].Replies)
	}
}

func TestBuildTreeStableOnEqualTimestamps(t *testing.T) {
	// created_at collides at second precision; input order must win.
	at := ts(5)
	replies := []domain.Reply{
		reply(1, nil, ts(0)),
		reply(10, pid(1), at),
		reply(11, pid(1), at),
		reply(12, pid(1), at),
	}

	nodes := BuildTree(replies)
	got := nodes[0].Replies
	if got[0].Id != 10 || got[1].Id != 11 || got[2].Id != 12 {
		t.Errorf("tie order not preserved: %d, %d, %d", got[0].Id, got[1].Id, got[2].Id)
	}
}

func TestBuildTreeEmpty(t *testing.T) {
	if nodes := BuildTree(nil); len(nodes) != 0 {
		t.Errorf("expected no comments, got %d", len(nodes))
	}
}
