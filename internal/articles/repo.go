package articles

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quadra-imoveis/quadra/internal/shared"
)

// Repository persists articles.
type Repository interface {
	Create(ctx context.Context, article *Article) error
	Update(ctx context.Context, article *Article) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*Article, error)
	FindBySlug(ctx context.Context, slug string) (*Article, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	ListPublished(ctx context.Context, page, limit int) ([]Article, int, error)
	ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]Article, error)
}

// PGRepository is the pgx-backed Repository.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewPGRepository builds a PGRepository.
func NewPGRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const articleColumns = `id, author_id, title, slug, content, published, created_at, updated_at`

func scanArticle(row pgx.Row) (*Article, error) {
	var a Article
	err := row.Scan(&a.ID, &a.AuthorID, &a.Title, &a.Slug, &a.Content,
		&a.Published, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("articles: scan: %w", err)
	}
	return &a, nil
}

func (r *PGRepository) Create(ctx context.Context, article *Article) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO articles (id, author_id, title, slug, content, published, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())`,
		article.ID, article.AuthorID, article.Title, article.Slug,
		article.Content, article.Published)
	if err != nil {
		return fmt.Errorf("articles: insert: %w", err)
	}
	return nil
}

func (r *PGRepository) Update(ctx context.Context, article *Article) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE articles SET title = $2, content = $3, published = $4, updated_at = NOW()
		WHERE id = $1`,
		article.ID, article.Title, article.Content, article.Published)
	if err != nil {
		return fmt.Errorf("articles: update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *PGRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM articles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("articles: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *PGRepository) FindByID(ctx context.Context, id uuid.UUID) (*Article, error) {
	return scanArticle(r.pool.QueryRow(ctx,
		`SELECT `+articleColumns+` FROM articles WHERE id = $1`, id))
}

func (r *PGRepository) FindBySlug(ctx context.Context, slug string) (*Article, error) {
	return scanArticle(r.pool.QueryRow(ctx,
		`SELECT `+articleColumns+` FROM articles WHERE slug = $1`, slug))
}

func (r *PGRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM articles WHERE slug = $1)`, slug).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("articles: slug exists: %w", err)
	}
	return exists, nil
}

func (r *PGRepository) ListPublished(ctx context.Context, page, limit int) ([]Article, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM articles WHERE published = TRUE`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("articles: count: %w", err)
	}

	pagination := shared.NewPagination(page, limit, total)
	rows, err := r.pool.Query(ctx, `
		SELECT `+articleColumns+` FROM articles
		WHERE published = TRUE
		ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		pagination.PerPage, pagination.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("articles: list: %w", err)
	}
	defer rows.Close()

	articles, err := collect(rows)
	if err != nil {
		return nil, 0, err
	}
	return articles, total, nil
}

func (r *PGRepository) ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]Article, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+articleColumns+` FROM articles
		WHERE author_id = $1 ORDER BY created_at DESC`, authorID)
	if err != nil {
		return nil, fmt.Errorf("articles: list by author: %w", err)
	}
	defer rows.Close()
	return collect(rows)
}

func collect(rows pgx.Rows) ([]Article, error) {
	var articles []Article
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		articles = append(articles, *article)
	}
	return articles, rows.Err()
}
