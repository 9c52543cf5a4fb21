package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/floatdr/forum/internal/domain"
	internal_errors "github.com/floatdr/forum/internal/errors"
)

const threadColumns = `
    t.id, t.category_id, t.title, t.body, t.image_url, t.created_at,
    p.id, p.username, p.avatar_url, p.is_admin, p.created_at`

func scanThread(row interface{ Scan(...any) error }) (domain.Thread, error) {
	var t domain.Thread
	err := row.Scan(
		&t.Id, &t.CategoryId, &t.Title, &t.Body, &t.ImageURL, &t.CreatedAt,
		&t.Author.Id, &t.Author.Username, &t.Author.AvatarURL, &t.Author.IsAdmin, &t.Author.CreatedAt,
	)
	return t, err
}

func (s *Storage) GetCategories(ctx context.Context) ([]domain.Category, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, slug, description FROM forum_categories ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch categories: %w", err)
	}
	defer rows.Close()

	var categories []domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.Id, &c.Name, &c.Slug, &c.Description); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (s *Storage) GetCategoryBySlug(ctx context.Context, slug domain.CategorySlug) (*domain.Category, error) {
	var c domain.Category
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, slug, description FROM forum_categories WHERE slug = $1", slug,
	).Scan(&c.Id, &c.Name, &c.Slug, &c.Description)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, internal_errors.NotFound("category not found")
		}
		return nil, fmt.Errorf("failed to fetch category: %w", err)
	}
	return &c, nil
}

func (s *Storage) FetchThread(ctx context.Context, id domain.ThreadId) (*domain.Thread, error) {
	t, err := scanThread(s.db.QueryRowContext(ctx, `
        SELECT`+threadColumns+`
        FROM forum_threads t
        JOIN profiles p ON p.id = t.author_id
        WHERE t.id = $1
    `, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, internal_errors.NotFound("thread not found")
		}
		return nil, fmt.Errorf("failed to fetch thread: %w", err)
	}
	return &t, nil
}

func (s *Storage) queryThreads(ctx context.Context, query string, args ...any) ([]domain.Thread, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch threads: %w", err)
	}
	defer rows.Close()

	var threads []domain.Thread
	for rows.Next() {
		t, err := scanThread(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan thread: %w", err)
		}
		threads = append(threads, t)
	}
	return threads, rows.Err()
}

func (s *Storage) LatestThreads(ctx context.Context, limit int) ([]domain.Thread, error) {
	return s.queryThreads(ctx, `
        SELECT`+threadColumns+`
        FROM forum_threads t
        JOIN profiles p ON p.id = t.author_id
        ORDER BY t.created_at DESC
        LIMIT $1
    `, limit)
}

func (s *Storage) ThreadsByCategory(ctx context.Context, categoryId domain.CategoryId) ([]domain.Thread, error) {
	return s.queryThreads(ctx, `
        SELECT`+threadColumns+`
        FROM forum_threads t
        JOIN profiles p ON p.id = t.author_id
        WHERE t.category_id = $1
        ORDER BY t.created_at DESC
    `, categoryId)
}

func (s *Storage) CreateThread(ctx context.Context, data domain.ThreadCreationData) (*domain.Thread, error) {
	var id domain.ThreadId
	err := s.db.QueryRowContext(ctx, `
        INSERT INTO forum_threads (category_id, author_id, title, body, image_url)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id
    `, data.CategoryId, data.AuthorId, data.Title, data.Body, data.ImageURL).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("failed to insert thread: %w", err)
	}
	return s.FetchThread(ctx, id)
}

func (s *Storage) UpdateThread(ctx context.Context, id domain.ThreadId, upd domain.ThreadUpdate) error {
	res, err := s.db.ExecContext(ctx, `
        UPDATE forum_threads
        SET title = COALESCE($2, title), body = COALESCE($3, body)
        WHERE id = $1
    `, id, upd.Title, upd.Body)
	if err != nil {
		return fmt.Errorf("failed to update thread: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return internal_errors.NotFound("thread not found")
	}
	return nil
}

func (s *Storage) DeleteThread(ctx context.Context, id domain.ThreadId) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM forum_threads WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete thread: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return internal_errors.NotFound("thread not found")
	}
	return nil
}
