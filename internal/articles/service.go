package articles

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/quadra-imoveis/quadra/internal/listings"
	"github.com/quadra-imoveis/quadra/internal/shared"
)

// Service carries article business rules. Articles are strictly author
// owned; not even corretores may touch someone else's draft.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService builds a Service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) Create(ctx context.Context, author *shared.Identity, title, content string, published bool) (*Article, error) {
	slug := listings.Slugify(title)
	if slug == "" {
		return nil, shared.ErrValidation
	}
	exists, err := s.repo.SlugExists(ctx, slug)
	if err != nil {
		return nil, err
	}
	if exists {
		slug = fmt.Sprintf("%s-%s", slug, uuid.NewString()[:8])
	}

	article := &Article{
		ID:        uuid.New(),
		AuthorID:  author.ID,
		Title:     title,
		Slug:      slug,
		Content:   content,
		Published: published,
	}
	if err := s.repo.Create(ctx, article); err != nil {
		return nil, err
	}

	s.logger.Info("article created",
		slog.String("article", article.ID.String()),
		slog.String("author", author.ID.String()))
	return article, nil
}

func (s *Service) Update(ctx context.Context, current *Article, title, content string, published bool) (*Article, error) {
	updated := *current
	updated.Title = title
	updated.Content = content
	updated.Published = published
	if err := s.repo.Update(ctx, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// GetBySlug returns a published article to anyone. Drafts resolve only for
// their author.
func (s *Service) GetBySlug(ctx context.Context, slug string, reader *shared.Identity) (*Article, error) {
	article, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !article.Published && (reader == nil || reader.ID != article.AuthorID) {
		return nil, shared.ErrNotFound
	}
	return article, nil
}

// ListResult pairs a page of articles with its pagination metadata.
type ListResult struct {
	Articles   []Article         `json:"articles"`
	Pagination shared.Pagination `json:"pagination"`
}

func (s *Service) ListPublished(ctx context.Context, page, limit int) (*ListResult, error) {
	items, total, err := s.repo.ListPublished(ctx, page, limit)
	if err != nil {
		return nil, err
	}
	return &ListResult{
		Articles:   items,
		Pagination: shared.NewPagination(page, limit, total),
	}, nil
}

func (s *Service) ListMine(ctx context.Context, authorID uuid.UUID) ([]Article, error) {
	return s.repo.ListByAuthor(ctx, authorID)
}
