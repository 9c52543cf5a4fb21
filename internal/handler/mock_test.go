package handler

import (
	"context"
	"html/template"

	"github.com/floatdr/forum/internal/config"
	"github.com/floatdr/forum/internal/domain"
	internal_errors "github.com/floatdr/forum/internal/errors"
	"github.com/floatdr/forum/internal/text"
	"time"
)

// MockStore implements Store with overridable func fields. Unset funcs
// return zero values.
type MockStore struct {
	Calls []string

	FetchThreadFunc    func(ctx context.Context, id domain.ThreadId) (*domain.Thread, error)
	FetchRepliesFunc   func(ctx context.Context, threadId domain.ThreadId) ([]domain.Reply, error)
	FetchReactionsFunc func(ctx context.Context, threadId domain.ThreadId) ([]domain.Reaction, error)
	SubmitReplyFunc    func(ctx context.Context, data domain.ReplyCreationData) (*domain.Reply, error)
	DeleteReplyFunc    func(ctx context.Context, id domain.ReplyId) error
	SetReactionFunc    func(ctx context.Context, replyId domain.ReplyId, userId domain.UserId, t domain.ReactionType) error
	RemoveReactionFunc func(ctx context.Context, replyId domain.ReplyId, userId domain.UserId) error

	GetProfileFunc        func(ctx context.Context, id domain.UserId) (*domain.Profile, error)
	UpdateProfileFunc     func(ctx context.Context, id domain.UserId, upd domain.ProfileUpdate) error
	GetCategoriesFunc     func(ctx context.Context) ([]domain.Category, error)
	GetCategoryBySlugFunc func(ctx context.Context, slug domain.CategorySlug) (*domain.Category, error)
	LatestThreadsFunc     func(ctx context.Context, limit int) ([]domain.Thread, error)
	ThreadsByCategoryFunc func(ctx context.Context, categoryId domain.CategoryId) ([]domain.Thread, error)
	CreateThreadFunc      func(ctx context.Context, data domain.ThreadCreationData) (*domain.Thread, error)
	UpdateThreadFunc      func(ctx context.Context, id domain.ThreadId, upd domain.ThreadUpdate) error
	DeleteThreadFunc      func(ctx context.Context, id domain.ThreadId) error
	CreateReportFunc      func(ctx context.Context, data domain.ReportCreationData) error
	OpenReportsFunc       func(ctx context.Context) ([]domain.Report, error)
	ResolveReportFunc     func(ctx context.Context, id domain.ReportId) error
	DeleteReportFunc      func(ctx context.Context, id domain.ReportId) error
	GetMembershipFunc     func(ctx context.Context, userId domain.UserId) (*domain.Membership, error)
	SavedThreadsFunc      func(ctx context.Context, userId domain.UserId) ([]domain.SavedThread, error)
	SaveThreadFunc        func(ctx context.Context, userId domain.UserId, threadId domain.ThreadId) error
	UnsaveThreadFunc      func(ctx context.Context, userId domain.UserId, threadId domain.ThreadId) error
}

func (m *MockStore) record(name string) { m.Calls = append(m.Calls, name) }

func (m *MockStore) FetchThread(ctx context.Context, id domain.ThreadId) (*domain.Thread, error) {
	m.record("FetchThread")
	if m.FetchThreadFunc != nil {
		return m.FetchThreadFunc(ctx, id)
	}
	return nil, internal_errors.NotFound("thread not found")
}

func (m *MockStore) FetchReplies(ctx context.Context, threadId domain.ThreadId) ([]domain.Reply, error) {
	m.record("FetchReplies")
	if m.FetchRepliesFunc != nil {
		return m.FetchRepliesFunc(ctx, threadId)
	}
	return nil, nil
}

func (m *MockStore) FetchReactions(ctx context.Context, threadId domain.ThreadId) ([]domain.Reaction, error) {
	m.record("FetchReactions")
	if m.FetchReactionsFunc != nil {
		return m.FetchReactionsFunc(ctx, threadId)
	}
	return nil, nil
}

func (m *MockStore) SubmitReply(ctx context.Context, data domain.ReplyCreationData) (*domain.Reply, error) {
	m.record("SubmitReply")
	if m.SubmitReplyFunc != nil {
		return m.SubmitReplyFunc(ctx, data)
	}
	return &domain.Reply{Id: 1, ThreadId: data.ThreadId, ParentId: data.ParentId, Body: data.Body, CreatedAt: time.Now()}, nil
}

func (m *MockStore) DeleteReply(ctx context.Context, id domain.ReplyId) error {
	m.record("DeleteReply")
	if m.DeleteReplyFunc != nil {
		return m.DeleteReplyFunc(ctx, id)
	}
	return nil
}

func (m *MockStore) SetReaction(ctx context.Context, replyId domain.ReplyId, userId domain.UserId, t domain.ReactionType) error {
	m.record("SetReaction")
	if m.SetReactionFunc != nil {
		return m.SetReactionFunc(ctx, replyId, userId, t)
	}
	return nil
}

func (m *MockStore) RemoveReaction(ctx context.Context, replyId domain.ReplyId, userId domain.UserId) error {
	m.record("RemoveReaction")
	if m.RemoveReactionFunc != nil {
		return m.RemoveReactionFunc(ctx, replyId, userId)
	}
	return nil
}

func (m *MockStore) GetProfile(ctx context.Context, id domain.UserId) (*domain.Profile, error) {
	m.record("GetProfile")
	if m.GetProfileFunc != nil {
		return m.GetProfileFunc(ctx, id)
	}
	return &domain.Profile{Id: id, Username: "mock"}, nil
}

func (m *MockStore) UpdateProfile(ctx context.Context, id domain.UserId, upd domain.ProfileUpdate) error {
	m.record("UpdateProfile")
	if m.UpdateProfileFunc != nil {
		return m.UpdateProfileFunc(ctx, id, upd)
	}
	return nil
}

func (m *MockStore) GetCategories(ctx context.Context) ([]domain.Category, error) {
	m.record("GetCategories")
	if m.GetCategoriesFunc != nil {
		return m.GetCategoriesFunc(ctx)
	}
	return nil, nil
}

func (m *MockStore) GetCategoryBySlug(ctx context.Context, slug domain.CategorySlug) (*domain.Category, error) {
	m.record("GetCategoryBySlug")
	if m.GetCategoryBySlugFunc != nil {
		return m.GetCategoryBySlugFunc(ctx, slug)
	}
	return nil, internal_errors.NotFound("category not found")
}

func (m *MockStore) LatestThreads(ctx context.Context, limit int) ([]domain.Thread, error) {
	m.record("LatestThreads")
	if m.LatestThreadsFunc != nil {
		return m.LatestThreadsFunc(ctx, limit)
	}
	return nil, nil
}

func (m *MockStore) ThreadsByCategory(ctx context.Context, categoryId domain.CategoryId) ([]domain.Thread, error) {
	m.record("ThreadsByCategory")
	if m.ThreadsByCategoryFunc != nil {
		return m.ThreadsByCategoryFunc(ctx, categoryId)
	}
	return nil, nil
}

func (m *MockStore) CreateThread(ctx context.Context, data domain.ThreadCreationData) (*domain.Thread, error) {
	m.record("CreateThread")
	if m.CreateThreadFunc != nil {
		return m.CreateThreadFunc(ctx, data)
	}
	return &domain.Thread{Id: 1, CategoryId: data.CategoryId, Title: data.Title, Body: data.Body}, nil
}

func (m *MockStore) UpdateThread(ctx context.Context, id domain.ThreadId, upd domain.ThreadUpdate) error {
	m.record("UpdateThread")
	if m.UpdateThreadFunc != nil {
		return m.UpdateThreadFunc(ctx, id, upd)
	}
	return nil
}

func (m *MockStore) DeleteThread(ctx context.Context, id domain.ThreadId) error {
	m.record("DeleteThread")
	if m.DeleteThreadFunc != nil {
		return m.DeleteThreadFunc(ctx, id)
	}
	return nil
}

func (m *MockStore) CreateReport(ctx context.Context, data domain.ReportCreationData) error {
	m.record("CreateReport")
	if m.CreateReportFunc != nil {
		return m.CreateReportFunc(ctx, data)
	}
	return nil
}

func (m *MockStore) OpenReports(ctx context.Context) ([]domain.Report, error) {
	m.record("OpenReports")
	if m.OpenReportsFunc != nil {
		return m.OpenReportsFunc(ctx)
	}
	return nil, nil
}

func (m *MockStore) ResolveReport(ctx context.Context, id domain.ReportId) error {
	m.record("ResolveReport")
	if m.ResolveReportFunc != nil {
		return m.ResolveReportFunc(ctx, id)
	}
	return nil
}

func (m *MockStore) DeleteReport(ctx context.Context, id domain.ReportId) error {
	m.record("DeleteReport")
	if m.DeleteReportFunc != nil {
		return m.DeleteReportFunc(ctx, id)
	}
	return nil
}

func (m *MockStore) GetMembership(ctx context.Context, userId domain.UserId) (*domain.Membership, error) {
	m.record("GetMembership")
	if m.GetMembershipFunc != nil {
		return m.GetMembershipFunc(ctx, userId)
	}
	return &domain.Membership{UserId: userId, Status: "active"}, nil
}

func (m *MockStore) SavedThreads(ctx context.Context, userId domain.UserId) ([]domain.SavedThread, error) {
	m.record("SavedThreads")
	if m.SavedThreadsFunc != nil {
		return m.SavedThreadsFunc(ctx, userId)
	}
	return nil, nil
}

func (m *MockStore) SaveThread(ctx context.Context, userId domain.UserId, threadId domain.ThreadId) error {
	m.record("SaveThread")
	if m.SaveThreadFunc != nil {
		return m.SaveThreadFunc(ctx, userId, threadId)
	}
	return nil
}

func (m *MockStore) UnsaveThread(ctx context.Context, userId domain.UserId, threadId domain.ThreadId) error {
	m.record("UnsaveThread")
	if m.UnsaveThreadFunc != nil {
		return m.UnsaveThreadFunc(ctx, userId, threadId)
	}
	return nil
}

// testTemplates renders every page as a bare marker so handlers can be
// exercised without the real template tree.
func testTemplates() map[string]*template.Template {
	names := []string{
		"home.html", "categories.html", "category.html", "thread.html",
		"create_thread.html", "edit_thread.html", "profile.html", "saved.html",
		"admin_reports.html", "login.html", "register.html",
	}
	templates := make(map[string]*template.Template, len(names))
	for _, name := range names {
		templates[name] = template.Must(template.New(name).Parse("rendered:" + name))
	}
	return templates
}

func testHandler(store Store) *Handler {
	cfg := config.Public{}
	cfg.Session.CookieName = "floatdr_session"
	cfg.Session.TTL = time.Hour
	cfg.Upload.MaxBytes = 1 << 20
	cfg.Upload.AllowedMimes = []string{"image/png"}
	return New(testTemplates(), cfg, text.New(), func(string) Store { return store }, nil, nil, nil)
}
