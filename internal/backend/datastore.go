package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/floatdr/forum/internal/domain"
	internal_errors "github.com/floatdr/forum/internal/errors"
)

// selectThread pulls the author row alongside each thread so screens never
// need a second lookup.
const (
	selectThread   = "*,author:profiles(id,username,avatar_url,is_admin,created_at)"
	selectReply    = "*,author:profiles(id,username,avatar_url,is_admin,created_at)"
	selectReaction = "reply_id,user_id,type"
	selectReport   = "*,thread:forum_threads(title),reporter:profiles(username)"
	selectSaved    = "*,thread:forum_threads(" + selectThread + ")"
)

// DataStore is the row-level data API bound to one session's access token.
// Row-level security on the backend decides what each token may touch; the
// client just states what it wants. Implements forum.SyncAdapter.
type DataStore struct {
	c     *Client
	token string
}

// Store binds the data API to a token. An empty token yields an anonymous
// store, good for public reads only.
func (c *Client) Store(token string) *DataStore {
	return &DataStore{c: c, token: token}
}

func eq[T int64 | string](v T) string {
	return fmt.Sprintf("eq.%v", v)
}

func (s *DataStore) getRows(ctx context.Context, table string, query url.Values, out any) error {
	resp, err := s.c.do(ctx, "GET", "/rest/v1/"+table, query, nil, s.token, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := statusError(resp, "query "+table); err != nil {
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("cannot decode %s rows: %w", table, err)
	}
	return nil
}

// writeRows issues a mutating request. When out is non-nil the request asks
// the backend to return the affected rows and decodes them into out.
func (s *DataStore) writeRows(ctx context.Context, method, table string, query url.Values, payload, out any) error {
	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal %s row: %w", table, err)
		}
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	header := http.Header{}
	if out != nil {
		header.Set("Prefer", "return=representation")
	}
	resp, err := s.c.do(ctx, method, "/rest/v1/"+table, query, body, s.token, header)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := statusError(resp, method+" "+table); err != nil {
		return err
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("cannot decode %s response: %w", table, err)
		}
	}
	return nil
}

// one narrows a returned row set to exactly one row.
func one[T any](rows []T, what string) (*T, error) {
	if len(rows) == 0 {
		return nil, internal_errors.NotFound(what + " not found")
	}
	return &rows[0], nil
}

// --- profiles ---

func (s *DataStore) GetProfile(ctx context.Context, id domain.UserId) (*domain.Profile, error) {
	query := url.Values{"id": {eq(id.String())}}
	var rows []domain.Profile
	if err := s.getRows(ctx, "profiles", query, &rows); err != nil {
		return nil, err
	}
	return one(rows, "profile")
}

func (s *DataStore) UpdateProfile(ctx context.Context, id domain.UserId, upd domain.ProfileUpdate) error {
	query := url.Values{"id": {eq(id.String())}}
	return s.writeRows(ctx, "PATCH", "profiles", query, upd, nil)
}

// --- categories ---

func (s *DataStore) GetCategories(ctx context.Context) ([]domain.Category, error) {
	query := url.Values{"order": {"name.asc"}}
	var rows []domain.Category
	if err := s.getRows(ctx, "forum_categories", query, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *DataStore) GetCategoryBySlug(ctx context.Context, slug domain.CategorySlug) (*domain.Category, error) {
	query := url.Values{"slug": {eq(slug)}}
	var rows []domain.Category
	if err := s.getRows(ctx, "forum_categories", query, &rows); err != nil {
		return nil, err
	}
	return one(rows, "category")
}

// --- threads ---

func (s *DataStore) FetchThread(ctx context.Context, id domain.ThreadId) (*domain.Thread, error) {
	query := url.Values{
		"select": {selectThread},
		"id":     {eq(id)},
	}
	var rows []domain.Thread
	if err := s.getRows(ctx, "forum_threads", query, &rows); err != nil {
		return nil, err
	}
	return one(rows, "thread")
}

// LatestThreads returns the newest threads across all categories.
func (s *DataStore) LatestThreads(ctx context.Context, limit int) ([]domain.Thread, error) {
	query := url.Values{
		"select": {selectThread},
		"order":  {"created_at.desc"},
		"limit":  {strconv.Itoa(limit)},
	}
	var rows []domain.Thread
	if err := s.getRows(ctx, "forum_threads", query, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *DataStore) ThreadsByCategory(ctx context.Context, categoryId domain.CategoryId) ([]domain.Thread, error) {
	query := url.Values{
		"select":      {selectThread},
		"category_id": {eq(categoryId)},
		"order":       {"created_at.desc"},
	}
	var rows []domain.Thread
	if err := s.getRows(ctx, "forum_threads", query, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *DataStore) CreateThread(ctx context.Context, data domain.ThreadCreationData) (*domain.Thread, error) {
	payload := map[string]any{
		"category_id": data.CategoryId,
		"author_id":   data.AuthorId,
		"title":       data.Title,
		"body":        data.Body,
	}
	if data.ImageURL != "" {
		payload["image_url"] = data.ImageURL
	}
	query := url.Values{"select": {selectThread}}
	var rows []domain.Thread
	if err := s.writeRows(ctx, "POST", "forum_threads", query, payload, &rows); err != nil {
		return nil, err
	}
	return one(rows, "created thread")
}

func (s *DataStore) UpdateThread(ctx context.Context, id domain.ThreadId, upd domain.ThreadUpdate) error {
	query := url.Values{"id": {eq(id)}}
	return s.writeRows(ctx, "PATCH", "forum_threads", query, upd, nil)
}

func (s *DataStore) DeleteThread(ctx context.Context, id domain.ThreadId) error {
	query := url.Values{"id": {eq(id)}}
	return s.writeRows(ctx, "DELETE", "forum_threads", query, nil, nil)
}

// --- replies ---

func (s *DataStore) FetchReplies(ctx context.Context, threadId domain.ThreadId) ([]domain.Reply, error) {
	query := url.Values{
		"select":    {selectReply},
		"thread_id": {eq(threadId)},
		"order":     {"created_at.asc"},
	}
	var rows []domain.Reply
	if err := s.getRows(ctx, "forum_replies", query, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *DataStore) SubmitReply(ctx context.Context, data domain.ReplyCreationData) (*domain.Reply, error) {
	payload := map[string]any{
		"thread_id": data.ThreadId,
		"author_id": data.AuthorId,
		"body":      data.Body,
	}
	if data.ParentId != nil {
		payload["parent_id"] = *data.ParentId
	}
	query := url.Values{"select": {selectReply}}
	var rows []domain.Reply
	if err := s.writeRows(ctx, "POST", "forum_replies", query, payload, &rows); err != nil {
		return nil, err
	}
	return one(rows, "created reply")
}

func (s *DataStore) DeleteReply(ctx context.Context, id domain.ReplyId) error {
	query := url.Values{"id": {eq(id)}}
	return s.writeRows(ctx, "DELETE", "forum_replies", query, nil, nil)
}

// --- reactions ---

func (s *DataStore) FetchReactions(ctx context.Context, threadId domain.ThreadId) ([]domain.Reaction, error) {
	// Reactions hang off replies; the inner join filter scopes them to one
	// thread without a second query.
	query := url.Values{
		"select":                  {selectReaction + ",forum_replies!inner(thread_id)"},
		"forum_replies.thread_id": {eq(threadId)},
	}
	var rows []domain.Reaction
	if err := s.getRows(ctx, "reply_reactions", query, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// SetReaction upserts on (reply_id, user_id), so switching like to dislike
// is one call.
func (s *DataStore) SetReaction(ctx context.Context, replyId domain.ReplyId, userId domain.UserId, t domain.ReactionType) error {
	payload := map[string]any{
		"reply_id": replyId,
		"user_id":  userId,
		"type":     t,
	}
	query := url.Values{"on_conflict": {"reply_id,user_id"}}
	header := http.Header{"Prefer": {"resolution=merge-duplicates"}}

	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal reaction row: %w", err)
	}
	resp, err := s.c.do(ctx, "POST", "/rest/v1/reply_reactions", query, bytes.NewReader(raw), s.token, header)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return statusError(resp, "set reaction")
}

func (s *DataStore) RemoveReaction(ctx context.Context, replyId domain.ReplyId, userId domain.UserId) error {
	query := url.Values{
		"reply_id": {eq(replyId)},
		"user_id":  {eq(userId.String())},
	}
	return s.writeRows(ctx, "DELETE", "reply_reactions", query, nil, nil)
}

// --- reports ---

type reportRow struct {
	domain.Report
	Thread *struct {
		Title string `json:"title"`
	} `json:"thread"`
	Reporter *struct {
		Username string `json:"username"`
	} `json:"reporter"`
}

func (r reportRow) flatten() domain.Report {
	report := r.Report
	if r.Thread != nil {
		report.ThreadTitle = r.Thread.Title
	}
	if r.Reporter != nil {
		report.ReporterUsername = r.Reporter.Username
	}
	return report
}

func (s *DataStore) CreateReport(ctx context.Context, data domain.ReportCreationData) error {
	payload := map[string]any{
		"thread_id":   data.ThreadId,
		"reporter_id": data.ReporterId,
		"reason":      data.Reason,
		"details":     data.Details,
		"status":      domain.ReportOpen,
	}
	return s.writeRows(ctx, "POST", "forum_reports", nil, payload, nil)
}

func (s *DataStore) OpenReports(ctx context.Context) ([]domain.Report, error) {
	query := url.Values{
		"select": {selectReport},
		"status": {eq(string(domain.ReportOpen))},
		"order":  {"created_at.desc"},
	}
	var rows []reportRow
	if err := s.getRows(ctx, "forum_reports", query, &rows); err != nil {
		return nil, err
	}
	reports := make([]domain.Report, len(rows))
	for i, row := range rows {
		reports[i] = row.flatten()
	}
	return reports, nil
}

func (s *DataStore) ResolveReport(ctx context.Context, id domain.ReportId) error {
	query := url.Values{"id": {eq(id)}}
	payload := map[string]any{"status": domain.ReportResolved}
	return s.writeRows(ctx, "PATCH", "forum_reports", query, payload, nil)
}

func (s *DataStore) DeleteReport(ctx context.Context, id domain.ReportId) error {
	query := url.Values{"id": {eq(id)}}
	return s.writeRows(ctx, "DELETE", "forum_reports", query, nil, nil)
}

// --- memberships ---

// GetMembership returns nil with no error when the user has no membership
// row; callers treat that the same as an expired one.
func (s *DataStore) GetMembership(ctx context.Context, userId domain.UserId) (*domain.Membership, error) {
	query := url.Values{"user_id": {eq(userId.String())}}
	var rows []domain.Membership
	if err := s.getRows(ctx, "memberships", query, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// --- saved threads ---

type savedRow struct {
	domain.SavedThread
	Thread *domain.Thread `json:"thread"`
}

func (s *DataStore) SavedThreads(ctx context.Context, userId domain.UserId) ([]domain.SavedThread, error) {
	query := url.Values{
		"select":  {selectSaved},
		"user_id": {eq(userId.String())},
		"order":   {"created_at.desc"},
	}
	var rows []savedRow
	if err := s.getRows(ctx, "saved_threads", query, &rows); err != nil {
		return nil, err
	}
	saved := make([]domain.SavedThread, len(rows))
	for i, row := range rows {
		saved[i] = row.SavedThread
		saved[i].Thread = row.Thread
	}
	return saved, nil
}

func (s *DataStore) SaveThread(ctx context.Context, userId domain.UserId, threadId domain.ThreadId) error {
	payload := map[string]any{
		"user_id":   userId,
		"thread_id": threadId,
	}
	query := url.Values{"on_conflict": {"user_id,thread_id"}}
	header := http.Header{"Prefer": {"resolution=ignore-duplicates"}}

	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal saved thread row: %w", err)
	}
	resp, err := s.c.do(ctx, "POST", "/rest/v1/saved_threads", query, bytes.NewReader(raw), s.token, header)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return statusError(resp, "save thread")
}

func (s *DataStore) UnsaveThread(ctx context.Context, userId domain.UserId, threadId domain.ThreadId) error {
	query := url.Values{
		"user_id":   {eq(userId.String())},
		"thread_id": {eq(threadId)},
	}
	return s.writeRows(ctx, "DELETE", "saved_threads", query, nil, nil)
}
