package pg

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/floatdr/forum/internal/domain"
	internal_errors "github.com/floatdr/forum/internal/errors"
)

func (s *Storage) FetchReplies(ctx context.Context, threadId domain.ThreadId) ([]domain.Reply, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT
            r.id, r.thread_id, r.parent_id, r.body, r.created_at,
            p.id, p.username, p.avatar_url, p.is_admin, p.created_at
        FROM forum_replies r
        JOIN profiles p ON p.id = r.author_id
        WHERE r.thread_id = $1
        ORDER BY r.created_at
    `, threadId)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch replies: %w", err)
	}
	defer rows.Close()

	var replies []domain.Reply
	for rows.Next() {
		var r domain.Reply
		var parent sql.NullInt64
		err := rows.Scan(
			&r.Id, &r.ThreadId, &parent, &r.Body, &r.CreatedAt,
			&r.Author.Id, &r.Author.Username, &r.Author.AvatarURL, &r.Author.IsAdmin, &r.Author.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reply: %w", err)
		}
		if parent.Valid {
			r.ParentId = &parent.Int64
		}
		replies = append(replies, r)
	}
	return replies, rows.Err()
}

func (s *Storage) SubmitReply(ctx context.Context, data domain.ReplyCreationData) (*domain.Reply, error) {
	var r domain.Reply
	var parent sql.NullInt64
	err := s.db.QueryRowContext(ctx, `
        INSERT INTO forum_replies (thread_id, parent_id, author_id, body)
        VALUES ($1, $2, $3, $4)
        RETURNING id, thread_id, parent_id, body, created_at
    `, data.ThreadId, data.ParentId, data.AuthorId, data.Body,
	).Scan(&r.Id, &r.ThreadId, &parent, &r.Body, &r.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert reply: %w", err)
	}
	if parent.Valid {
		r.ParentId = &parent.Int64
	}
	r.Author.Id = data.AuthorId
	return &r, nil
}

func (s *Storage) DeleteReply(ctx context.Context, id domain.ReplyId) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM forum_replies WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete reply: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return internal_errors.NotFound("reply not found")
	}
	return nil
}

func (s *Storage) FetchReactions(ctx context.Context, threadId domain.ThreadId) ([]domain.Reaction, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT rr.reply_id, rr.user_id, rr.type
        FROM reply_reactions rr
        JOIN forum_replies r ON r.id = rr.reply_id
        WHERE r.thread_id = $1
    `, threadId)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch reactions: %w", err)
	}
	defer rows.Close()

	var reactions []domain.Reaction
	for rows.Next() {
		var r domain.Reaction
		if err := rows.Scan(&r.ReplyId, &r.UserId, &r.Type); err != nil {
			return nil, fmt.Errorf("failed to scan reaction: %w", err)
		}
		reactions = append(reactions, r)
	}
	return reactions, rows.Err()
}

func (s *Storage) SetReaction(ctx context.Context, replyId domain.ReplyId, userId domain.UserId, t domain.ReactionType) error {
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO reply_reactions (reply_id, user_id, type)
        VALUES ($1, $2, $3)
        ON CONFLICT (reply_id, user_id) DO UPDATE SET type = EXCLUDED.type
    `, replyId, userId, t)
	if err != nil {
		return fmt.Errorf("failed to set reaction: %w", err)
	}
	return nil
}

func (s *Storage) RemoveReaction(ctx context.Context, replyId domain.ReplyId, userId domain.UserId) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM reply_reactions WHERE reply_id = $1 AND user_id = $2", replyId, userId)
	if err != nil {
		return fmt.Errorf("failed to remove reaction: %w", err)
	}
	return nil
}
