package listings

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quadra-imoveis/quadra/internal/platform/db"
	"github.com/quadra-imoveis/quadra/internal/shared"
)

// Repository persists listings.
type Repository interface {
	Create(ctx context.Context, listing *Listing) error
	Update(ctx context.Context, listing *Listing) error
	SetStatus(ctx context.Context, id uuid.UUID, status string) error
	SetFeatured(ctx context.Context, id uuid.UUID, featured bool) error
	FindByID(ctx context.Context, id uuid.UUID) (*Listing, error)
	FindBySlug(ctx context.Context, slug string) (*Listing, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	List(ctx context.Context, filter ListFilter) ([]Listing, int, error)
	Featured(ctx context.Context, limit int) ([]Listing, error)
	PriceHistory(ctx context.Context, listingID uuid.UUID) ([]PriceChange, error)
}

// ListFilter narrows and pages listing searches.
type ListFilter struct {
	City     string
	Type     string
	Status   string
	MinPrice int64
	MaxPrice int64
	Bedrooms int
	OwnerID  uuid.UUID
	Page     int
	Limit    int
}

// PGRepository is the pgx-backed Repository.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewPGRepository builds a PGRepository.
func NewPGRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const listingColumns = `id, owner_id, title, slug, description, type, status, price,
	bedrooms, bathrooms, area, featured, views,
	street, number, district, city, state, zip_code, created_at, updated_at`

func scanListing(row pgx.Row) (*Listing, error) {
	var l Listing
	err := row.Scan(
		&l.ID, &l.OwnerID, &l.Title, &l.Slug, &l.Description, &l.Type, &l.Status,
		&l.Price, &l.Bedrooms, &l.Bathrooms, &l.Area, &l.Featured, &l.Views,
		&l.Address.Street, &l.Address.Number, &l.Address.District,
		&l.Address.City, &l.Address.State, &l.Address.ZipCode,
		&l.CreatedAt, &l.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("listings: scan: %w", err)
	}
	return &l, nil
}

func (r *PGRepository) Create(ctx context.Context, listing *Listing) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO listings (
				id, owner_id, title, slug, description, type, status, price,
				bedrooms, bathrooms, area, featured,
				street, number, district, city, state, zip_code,
				created_at, updated_at
			) VALUES (
				$1, $2, $3, $4, $5, $6, $7, $8,
				$9, $10, $11, $12,
				$13, $14, $15, $16, $17, $18,
				NOW(), NOW()
			)`,
			listing.ID, listing.OwnerID, listing.Title, listing.Slug,
			listing.Description, listing.Type, listing.Status, listing.Price,
			listing.Bedrooms, listing.Bathrooms, listing.Area, listing.Featured,
			listing.Address.Street, listing.Address.Number, listing.Address.District,
			listing.Address.City, listing.Address.State, listing.Address.ZipCode,
		)
		if err != nil {
			return fmt.Errorf("listings: insert: %w", err)
		}
		return insertFeatures(ctx, tx, listing.ID, listing.Features)
	})
}

// Update rewrites the listing row and its features. When the price changed, a
// history row is appended in the same transaction.
func (r *PGRepository) Update(ctx context.Context, listing *Listing) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var oldPrice int64
		err := tx.QueryRow(ctx,
			`SELECT price FROM listings WHERE id = $1 FOR UPDATE`, listing.ID,
		).Scan(&oldPrice)
		if errors.Is(err, pgx.ErrNoRows) {
			return shared.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("listings: lock row: %w", err)
		}

		_, err = tx.Exec(ctx, `
			UPDATE listings SET
				title = $2, description = $3, type = $4, status = $5, price = $6,
				bedrooms = $7, bathrooms = $8, area = $9, featured = $10,
				street = $11, number = $12, district = $13, city = $14,
				state = $15, zip_code = $16, updated_at = NOW()
			WHERE id = $1`,
			listing.ID, listing.Title, listing.Description, listing.Type,
			listing.Status, listing.Price, listing.Bedrooms, listing.Bathrooms,
			listing.Area, listing.Featured,
			listing.Address.Street, listing.Address.Number, listing.Address.District,
			listing.Address.City, listing.Address.State, listing.Address.ZipCode,
		)
		if err != nil {
			return fmt.Errorf("listings: update: %w", err)
		}

		if oldPrice != listing.Price {
			_, err = tx.Exec(ctx, `
				INSERT INTO listing_price_history (id, listing_id, old_price, new_price, changed_at)
				VALUES ($1, $2, $3, $4, NOW())`,
				uuid.New(), listing.ID, oldPrice, listing.Price)
			if err != nil {
				return fmt.Errorf("listings: append price history: %w", err)
			}
		}

		if _, err := tx.Exec(ctx,
			`DELETE FROM listing_features WHERE listing_id = $1`, listing.ID); err != nil {
			return fmt.Errorf("listings: clear features: %w", err)
		}
		return insertFeatures(ctx, tx, listing.ID, listing.Features)
	})
}

func insertFeatures(ctx context.Context, tx pgx.Tx, listingID uuid.UUID, features []string) error {
	for _, feature := range features {
		if _, err := tx.Exec(ctx, `
			INSERT INTO listing_features (id, listing_id, feature)
			VALUES ($1, $2, $3)`,
			uuid.New(), listingID, feature); err != nil {
			return fmt.Errorf("listings: insert feature: %w", err)
		}
	}
	return nil
}

func (r *PGRepository) SetStatus(ctx context.Context, id uuid.UUID, status string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE listings SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("listings: set status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *PGRepository) SetFeatured(ctx context.Context, id uuid.UUID, featured bool) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE listings SET featured = $2, updated_at = NOW() WHERE id = $1`, id, featured)
	if err != nil {
		return fmt.Errorf("listings: set featured: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *PGRepository) FindByID(ctx context.Context, id uuid.UUID) (*Listing, error) {
	listing, err := scanListing(r.pool.QueryRow(ctx,
		`SELECT `+listingColumns+` FROM listings WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	return r.withFeatures(ctx, listing)
}

// FindBySlug resolves a public listing and bumps its view counter in the same
// statement, so concurrent reads never lose counts.
func (r *PGRepository) FindBySlug(ctx context.Context, slug string) (*Listing, error) {
	listing, err := scanListing(r.pool.QueryRow(ctx, `
		UPDATE listings SET views = views + 1
		WHERE slug = $1 AND status <> $2
		RETURNING `+listingColumns, slug, StatusInactive))
	if err != nil {
		return nil, err
	}
	return r.withFeatures(ctx, listing)
}

func (r *PGRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM listings WHERE slug = $1)`, slug).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("listings: slug exists: %w", err)
	}
	return exists, nil
}

func (r *PGRepository) List(ctx context.Context, filter ListFilter) ([]Listing, int, error) {
	where := ` WHERE status <> '` + StatusInactive + `'`
	args := []any{}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.City != "" {
		args = append(args, filter.City)
		where += fmt.Sprintf(" AND city ILIKE $%d", len(args))
	}
	if filter.Type != "" {
		args = append(args, filter.Type)
		where += fmt.Sprintf(" AND type = $%d", len(args))
	}
	if filter.MinPrice > 0 {
		args = append(args, filter.MinPrice)
		where += fmt.Sprintf(" AND price >= $%d", len(args))
	}
	if filter.MaxPrice > 0 {
		args = append(args, filter.MaxPrice)
		where += fmt.Sprintf(" AND price <= $%d", len(args))
	}
	if filter.Bedrooms > 0 {
		args = append(args, filter.Bedrooms)
		where += fmt.Sprintf(" AND bedrooms >= $%d", len(args))
	}
	if filter.OwnerID != uuid.Nil {
		args = append(args, filter.OwnerID)
		where += fmt.Sprintf(" AND owner_id = $%d", len(args))
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM listings`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("listings: count: %w", err)
	}

	pagination := shared.NewPagination(filter.Page, filter.Limit, total)
	args = append(args, pagination.PerPage, pagination.Offset())
	query := `SELECT ` + listingColumns + ` FROM listings` + where +
		fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	listings, err := r.queryMany(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return listings, total, nil
}

func (r *PGRepository) Featured(ctx context.Context, limit int) ([]Listing, error) {
	if limit <= 0 {
		limit = 6
	}
	return r.queryMany(ctx, `
		SELECT `+listingColumns+` FROM listings
		WHERE featured = TRUE AND status = $1
		ORDER BY updated_at DESC LIMIT $2`, StatusAvailable, limit)
}

func (r *PGRepository) PriceHistory(ctx context.Context, listingID uuid.UUID) ([]PriceChange, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, listing_id, old_price, new_price, changed_at
		FROM listing_price_history
		WHERE listing_id = $1
		ORDER BY changed_at DESC`, listingID)
	if err != nil {
		return nil, fmt.Errorf("listings: price history: %w", err)
	}
	defer rows.Close()

	var changes []PriceChange
	for rows.Next() {
		var change PriceChange
		if err := rows.Scan(&change.ID, &change.ListingID, &change.OldPrice,
			&change.NewPrice, &change.ChangedAt); err != nil {
			return nil, fmt.Errorf("listings: scan price change: %w", err)
		}
		changes = append(changes, change)
	}
	return changes, rows.Err()
}

func (r *PGRepository) queryMany(ctx context.Context, query string, args ...any) ([]Listing, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listings: query: %w", err)
	}
	defer rows.Close()

	var listings []Listing
	for rows.Next() {
		listing, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		listings = append(listings, *listing)
	}
	return listings, rows.Err()
}

func (r *PGRepository) withFeatures(ctx context.Context, listing *Listing) (*Listing, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT feature FROM listing_features WHERE listing_id = $1 ORDER BY feature`,
		listing.ID)
	if err != nil {
		return nil, fmt.Errorf("listings: load features: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var feature string
		if err := rows.Scan(&feature); err != nil {
			return nil, fmt.Errorf("listings: scan feature: %w", err)
		}
		listing.Features = append(listing.Features, feature)
	}
	return listing, rows.Err()
}
