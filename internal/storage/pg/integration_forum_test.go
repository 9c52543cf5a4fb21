package pg

import (
	"context"
	"fmt"
	"testing"

	"github.com/floatdr/forum/internal/domain"
	"github.com/google/uuid"
)

var seedSeq int

// seedUser inserts a profile row directly; in production the auth service
// owns account creation.
func seedUser(t *testing.T) domain.UserId {
	t.Helper()
	seedSeq++
	id := uuid.New()
	_, err := storage.db.Exec(
		"INSERT INTO profiles (id, username) VALUES ($1, $2)",
		id, fmt.Sprintf("user%d", seedSeq))
	if err != nil {
		t.Fatalf("seed profile: %v", err)
	}
	return id
}

func seedCategory(t *testing.T) domain.CategoryId {
	t.Helper()
	seedSeq++
	var id domain.CategoryId
	err := storage.db.QueryRow(
		"INSERT INTO forum_categories (name, slug) VALUES ($1, $2) RETURNING id",
		fmt.Sprintf("Category %d", seedSeq), fmt.Sprintf("cat-%d", seedSeq)).Scan(&id)
	if err != nil {
		t.Fatalf("seed category: %v", err)
	}
	return id
}

func seedThread(t *testing.T, author domain.UserId) *domain.Thread {
	t.Helper()
	thread, err := storage.CreateThread(context.Background(), domain.ThreadCreationData{
		CategoryId: seedCategory(t),
		AuthorId:   author,
		Title:      "seeded thread",
		Body:       "body",
	})
	if err != nil {
		t.Fatalf("seed thread: %v", err)
	}
	return thread
}

func TestCreateAndFetchThread(t *testing.T) {
	ctx := context.Background()
	author := seedUser(t)
	categoryId := seedCategory(t)

	created, err := storage.CreateThread(ctx, domain.ThreadCreationData{
		CategoryId: categoryId,
		AuthorId:   author,
		Title:      "hello",
		Body:       "first post",
	})
	if err != nil {
		t.Fatalf("CreateThread: %v", err)
	}
	if created.Author.Id != author || created.Title != "hello" {
		t.Errorf("created = %+v", created)
	}

	fetched, err := storage.FetchThread(ctx, created.Id)
	if err != nil {
		t.Fatalf("FetchThread: %v", err)
	}
	if fetched.Author.Username == "" {
		t.Error("author join missing")
	}

	byCategory, err := storage.ThreadsByCategory(ctx, categoryId)
	if err != nil {
		t.Fatalf("ThreadsByCategory: %v", err)
	}
	if len(byCategory) != 1 || byCategory[0].Id != created.Id {
		t.Errorf("byCategory = %+v", byCategory)
	}
}

func TestFetchThreadNotFound(t *testing.T) {
	if _, err := storage.FetchThread(context.Background(), 1<<40); err == nil {
		t.Fatal("expected not found")
	}
}

func TestReplyLifecycle(t *testing.T) {
	ctx := context.Background()
	author := seedUser(t)
	thread := seedThread(t, author)

	top, err := storage.SubmitReply(ctx, domain.ReplyCreationData{
		ThreadId: thread.Id, AuthorId: author, Body: "top level",
	})
	if err != nil {
		t.Fatalf("SubmitReply: %v", err)
	}
	if top.ParentId != nil {
		t.Error("top-level reply has parent")
	}

	child, err := storage.SubmitReply(ctx, domain.ReplyCreationData{
		ThreadId: thread.Id, ParentId: &top.Id, AuthorId: author, Body: "nested",
	})
	if err != nil {
		t.Fatalf("SubmitReply nested: %v", err)
	}
	if child.ParentId == nil || *child.ParentId != top.Id {
		t.Errorf("child parent = %v", child.ParentId)
	}

	replies, err := storage.FetchReplies(ctx, thread.Id)
	if err != nil {
		t.Fatalf("FetchReplies: %v", err)
	}
	if len(replies) != 2 {
		t.Fatalf("got %d replies", len(replies))
	}
	if replies[0].Author.Username == "" {
		t.Error("author join missing on replies")
	}

	// Deleting the parent cascades to the child.
	if err := storage.DeleteReply(ctx, top.Id); err != nil {
		t.Fatalf("DeleteReply: %v", err)
	}
	replies, err = storage.FetchReplies(ctx, thread.Id)
	if err != nil {
		t.Fatalf("FetchReplies after delete: %v", err)
	}
	if len(replies) != 0 {
		t.Errorf("got %d replies after cascade delete", len(replies))
	}
}

func TestReactionUpsertAndRemove(t *testing.T) {
	ctx := context.Background()
	author := seedUser(t)
	voter := seedUser(t)
	thread := seedThread(t, author)
	reply, err := storage.SubmitReply(ctx, domain.ReplyCreationData{
		ThreadId: thread.Id, AuthorId: author, Body: "react to me",
	})
	if err != nil {
		t.Fatalf("SubmitReply: %v", err)
	}

	if err := storage.SetReaction(ctx, reply.Id, voter, domain.ReactionLike); err != nil {
		t.Fatalf("SetReaction: %v", err)
	}
	// Same key again with the other type must switch, not accumulate.
	if err := storage.SetReaction(ctx, reply.Id, voter, domain.ReactionDislike); err != nil {
		t.Fatalf("SetReaction switch: %v", err)
	}

	reactions, err := storage.FetchReactions(ctx, thread.Id)
	if err != nil {
		t.Fatalf("FetchReactions: %v", err)
	}
	if len(reactions) != 1 {
		t.Fatalf("got %d reactions, want 1", len(reactions))
	}
	if reactions[0].Type != domain.ReactionDislike {
		t.Errorf("type = %s, want dislike", reactions[0].Type)
	}

	if err := storage.RemoveReaction(ctx, reply.Id, voter); err != nil {
		t.Fatalf("RemoveReaction: %v", err)
	}
	reactions, err = storage.FetchReactions(ctx, thread.Id)
	if err != nil {
		t.Fatalf("FetchReactions after remove: %v", err)
	}
	if len(reactions) != 0 {
		t.Errorf("got %d reactions after remove", len(reactions))
	}
}

func TestReportQueue(t *testing.T) {
	ctx := context.Background()
	author := seedUser(t)
	reporter := seedUser(t)
	thread := seedThread(t, author)

	err := storage.CreateReport(ctx, domain.ReportCreationData{
		ThreadId: thread.Id, ReporterId: reporter, Reason: "spam", Details: "obvious bot",
	})
	if err != nil {
		t.Fatalf("CreateReport: %v", err)
	}

	reports, err := storage.OpenReports(ctx)
	if err != nil {
		t.Fatalf("OpenReports: %v", err)
	}
	var found *domain.Report
	for i := range reports {
		if reports[i].ThreadId == thread.Id {
			found = &reports[i]
		}
	}
	if found == nil {
		t.Fatal("report not in open queue")
	}
	if found.ThreadTitle != thread.Title || found.ReporterUsername == "" {
		t.Errorf("joins missing: %+v", found)
	}

	if err := storage.ResolveReport(ctx, found.Id); err != nil {
		t.Fatalf("ResolveReport: %v", err)
	}
	reports, err = storage.OpenReports(ctx)
	if err != nil {
		t.Fatalf("OpenReports after resolve: %v", err)
	}
	for _, r := range reports {
		if r.Id == found.Id {
			t.Error("resolved report still in open queue")
		}
	}
}

func TestSavedThreads(t *testing.T) {
	ctx := context.Background()
	author := seedUser(t)
	reader := seedUser(t)
	thread := seedThread(t, author)

	if err := storage.SaveThread(ctx, reader, thread.Id); err != nil {
		t.Fatalf("SaveThread: %v", err)
	}
	// Saving twice is a no-op, not an error.
	if err := storage.SaveThread(ctx, reader, thread.Id); err != nil {
		t.Fatalf("SaveThread twice: %v", err)
	}

	saved, err := storage.SavedThreads(ctx, reader)
	if err != nil {
		t.Fatalf("SavedThreads: %v", err)
	}
	if len(saved) != 1 {
		t.Fatalf("got %d saved threads, want 1", len(saved))
	}
	if saved[0].Thread == nil || saved[0].Thread.Title != thread.Title {
		t.Errorf("thread join missing: %+v", saved[0])
	}

	if err := storage.UnsaveThread(ctx, reader, thread.Id); err != nil {
		t.Fatalf("UnsaveThread: %v", err)
	}
	saved, err = storage.SavedThreads(ctx, reader)
	if err != nil {
		t.Fatalf("SavedThreads after unsave: %v", err)
	}
	if len(saved) != 0 {
		t.Errorf("got %d saved threads after unsave", len(saved))
	}
}

func TestMembershipLookup(t *testing.T) {
	ctx := context.Background()
	user := seedUser(t)

	m, err := storage.GetMembership(ctx, user)
	if err != nil {
		t.Fatalf("GetMembership: %v", err)
	}
	if m != nil {
		t.Errorf("expected nil membership, got %+v", m)
	}

	_, err = storage.db.Exec(
		"INSERT INTO memberships (user_id, status) VALUES ($1, 'active')", user)
	if err != nil {
		t.Fatalf("seed membership: %v", err)
	}

	m, err = storage.GetMembership(ctx, user)
	if err != nil {
		t.Fatalf("GetMembership: %v", err)
	}
	if m == nil || m.Status != "active" {
		t.Errorf("membership = %+v", m)
	}
}

func TestProfileUpdate(t *testing.T) {
	ctx := context.Background()
	user := seedUser(t)

	name := "renamed"
	if err := storage.UpdateProfile(ctx, user, domain.ProfileUpdate{Username: &name}); err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}

	p, err := storage.GetProfile(ctx, user)
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if p.Username != "renamed" {
		t.Errorf("username = %q", p.Username)
	}
	if p.AvatarURL != "" {
		t.Errorf("avatar changed unexpectedly: %q", p.AvatarURL)
	}
}
