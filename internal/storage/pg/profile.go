package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/floatdr/forum/internal/domain"
	internal_errors "github.com/floatdr/forum/internal/errors"
)

func (s *Storage) GetProfile(ctx context.Context, id domain.UserId) (*domain.Profile, error) {
	var p domain.Profile
	err := s.db.QueryRowContext(ctx, `
        SELECT id, username, avatar_url, is_admin, created_at
        FROM profiles WHERE id = $1
    `, id).Scan(&p.Id, &p.Username, &p.AvatarURL, &p.IsAdmin, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, internal_errors.NotFound("profile not found")
		}
		return nil, fmt.Errorf("failed to fetch profile: %w", err)
	}
	return &p, nil
}

func (s *Storage) UpdateProfile(ctx context.Context, id domain.UserId, upd domain.ProfileUpdate) error {
	res, err := s.db.ExecContext(ctx, `
        UPDATE profiles
        SET username = COALESCE($2, username), avatar_url = COALESCE($3, avatar_url)
        WHERE id = $1
    `, id, upd.Username, upd.AvatarURL)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return internal_errors.NotFound("profile not found")
	}
	return nil
}

func (s *Storage) GetMembership(ctx context.Context, userId domain.UserId) (*domain.Membership, error) {
	var m domain.Membership
	err := s.db.QueryRowContext(ctx,
		"SELECT user_id, status, expires_at FROM memberships WHERE user_id = $1", userId,
	).Scan(&m.UserId, &m.Status, &m.ExpiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch membership: %w", err)
	}
	return &m, nil
}

func (s *Storage) SavedThreads(ctx context.Context, userId domain.UserId) ([]domain.SavedThread, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT
            st.id, st.user_id, st.thread_id, st.created_at,`+threadColumns+`
        FROM saved_threads st
        JOIN forum_threads t ON t.id = st.thread_id
        JOIN profiles p ON p.id = t.author_id
        WHERE st.user_id = $1
        ORDER BY st.created_at DESC
    `, userId)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch saved threads: %w", err)
	}
	defer rows.Close()

	var saved []domain.SavedThread
	for rows.Next() {
		var st domain.SavedThread
		var t domain.Thread
		err := rows.Scan(
			&st.Id, &st.UserId, &st.ThreadId, &st.CreatedAt,
			&t.Id, &t.CategoryId, &t.Title, &t.Body, &t.ImageURL, &t.CreatedAt,
			&t.Author.Id, &t.Author.Username, &t.Author.AvatarURL, &t.Author.IsAdmin, &t.Author.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan saved thread: %w", err)
		}
		st.Thread = &t
		saved = append(saved, st)
	}
	return saved, rows.Err()
}

func (s *Storage) SaveThread(ctx context.Context, userId domain.UserId, threadId domain.ThreadId) error {
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO saved_threads (user_id, thread_id)
        VALUES ($1, $2)
        ON CONFLICT (user_id, thread_id) DO NOTHING
    `, userId, threadId)
	if err != nil {
		return fmt.Errorf("failed to save thread: %w", err)
	}
	return nil
}

func (s *Storage) UnsaveThread(ctx context.Context, userId domain.UserId, threadId domain.ThreadId) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM saved_threads WHERE user_id = $1 AND thread_id = $2", userId, threadId)
	if err != nil {
		return fmt.Errorf("failed to unsave thread: %w", err)
	}
	return nil
}
