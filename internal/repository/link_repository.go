// ===========================================
// Package repository - Data Access Layer
// ===========================================
// The repository owns every SmartLink database operation and is the
// single source of truth for slug uniqueness: the unique index on
// slug turns concurrent duplicate inserts into ErrDuplicateSlug
// instead of silent double rows.
// ===========================================

package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/user/smartlink/internal/models"
)

// Common errors returned by repository methods.
// Callers check these with errors.Is().
var (
	ErrNotFound      = errors.New("smart link not found")
	ErrDuplicateSlug = errors.New("slug already in use")
)

const linkColumns = `id, artist, title, slug, cover_url, streaming_links,
	gtm_id, ga4_id, google_ads_id, total_views, clicks, created_at, updated_at`

// LinkRepository handles all SmartLink database operations.
type LinkRepository struct {
	db *pgxpool.Pool
}

// NewLinkRepository creates a new SmartLink repository.
func NewLinkRepository(db *pgxpool.Pool) *LinkRepository {
	return &LinkRepository{db: db}
}

// Create inserts a new SmartLink. The caller receives the persisted
// record with server-assigned ID, timestamps and zeroed click stats.
// Returns ErrDuplicateSlug when the slug is already taken.
func (r *LinkRepository) Create(ctx context.Context, link *models.SmartLink) error {
	query := `
		INSERT INTO smart_links
			(id, artist, title, slug, cover_url, streaming_links,
			 gtm_id, ga4_id, google_ads_id, total_views, clicks, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 0, '{}'::jsonb, $10, $10)
	`

	if link.ID == uuid.Nil {
		link.ID = uuid.New()
	}
	now := time.Now().UTC()
	link.CreatedAt = now
	link.UpdatedAt = now
	link.ClickStats = models.ClickStats{TotalViews: 0, Clicks: map[string]int64{}}

	gtm, ga4, ads := analyticsColumns(link.Analytics)

	_, err := r.db.Exec(ctx, query,
		link.ID,
		link.Artist,
		link.Title,
		link.Slug,
		link.CoverURL,
		link.StreamingLinks,
		gtm,
		ga4,
		ads,
		now,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateSlug
		}
		return fmt.Errorf("failed to create smart link: %w", err)
	}

	return nil
}

// GetBySlug retrieves a SmartLink by its slug.
// Returns ErrNotFound if no record matches.
func (r *LinkRepository) GetBySlug(ctx context.Context, slug string) (*models.SmartLink, error) {
	query := `SELECT ` + linkColumns + ` FROM smart_links WHERE slug = $1`

	link, err := scanLink(r.db.QueryRow(ctx, query, slug))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get smart link: %w", err)
	}

	return link, nil
}

// ListAll returns every SmartLink, most recently created first.
func (r *LinkRepository) ListAll(ctx context.Context) ([]models.SmartLink, error) {
	query := `SELECT ` + linkColumns + ` FROM smart_links ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list smart links: %w", err)
	}
	defer rows.Close()

	links := []models.SmartLink{}
	for rows.Next() {
		link, err := scanLink(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan smart link: %w", err)
		}
		links = append(links, *link)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list smart links: %w", err)
	}

	return links, nil
}

// Exists checks whether a slug is already taken.
// Index-only lookup, cheaper than GetBySlug.
func (r *LinkRepository) Exists(ctx context.Context, slug string) (bool, error) {
	query := `SELECT 1 FROM smart_links WHERE slug = $1 LIMIT 1`

	var one int
	err := r.db.QueryRow(ctx, query, slug).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check slug: %w", err)
	}

	return true, nil
}

// Update replaces all user-editable fields of the record matching
// slug and refreshes updated_at. Click stats are never touched here.
// Returns the updated record, ErrNotFound if no record matches, or
// ErrDuplicateSlug when renaming onto a taken slug.
func (r *LinkRepository) Update(ctx context.Context, slug string, link *models.SmartLink) (*models.SmartLink, error) {
	query := `
		UPDATE smart_links
		SET artist = $2, title = $3, slug = $4, cover_url = $5,
		    streaming_links = $6, gtm_id = $7, ga4_id = $8, google_ads_id = $9,
		    updated_at = now()
		WHERE slug = $1
		RETURNING ` + linkColumns

	gtm, ga4, ads := analyticsColumns(link.Analytics)

	updated, err := scanLink(r.db.QueryRow(ctx, query,
		slug,
		link.Artist,
		link.Title,
		link.Slug,
		link.CoverURL,
		link.StreamingLinks,
		gtm,
		ga4,
		ads,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateSlug
		}
		return nil, fmt.Errorf("failed to update smart link: %w", err)
	}

	return updated, nil
}

// Delete permanently removes the record matching slug.
// Returns ErrNotFound if no record matches.
func (r *LinkRepository) Delete(ctx context.Context, slug string) error {
	query := `DELETE FROM smart_links WHERE slug = $1`

	result, err := r.db.Exec(ctx, query, slug)
	if err != nil {
		return fmt.Errorf("failed to delete smart link: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// IncrementClick bumps total_views and the per-platform counter in a
// single UPDATE. The increment happens inside the database, so
// concurrent redirects for the same slug never lose updates.
// updated_at is deliberately left alone: click tracking is not an
// edit.
func (r *LinkRepository) IncrementClick(ctx context.Context, slug, platform string) error {
	query := `
		UPDATE smart_links
		SET total_views = total_views + 1,
		    clicks = jsonb_set(
		        clicks,
		        ARRAY[$2],
		        (COALESCE(clicks->>$2, '0')::bigint + 1)::text::jsonb,
		        true
		    )
		WHERE slug = $1
	`

	result, err := r.db.Exec(ctx, query, slug, platform)
	if err != nil {
		return fmt.Errorf("failed to increment clicks: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// scanLink reads one row into a SmartLink. The JSONB columns decode
// straight into Go maps via pgx's JSON codec.
func scanLink(row pgx.Row) (*models.SmartLink, error) {
	link := &models.SmartLink{}
	var gtm, ga4, ads *string

	err := row.Scan(
		&link.ID,
		&link.Artist,
		&link.Title,
		&link.Slug,
		&link.CoverURL,
		&link.StreamingLinks,
		&gtm,
		&ga4,
		&ads,
		&link.ClickStats.TotalViews,
		&link.ClickStats.Clicks,
		&link.CreatedAt,
		&link.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if gtm != nil || ga4 != nil || ads != nil {
		link.Analytics = &models.AnalyticsTags{
			GtmID:       deref(gtm),
			Ga4ID:       deref(ga4),
			GoogleAdsID: deref(ads),
		}
	}
	if link.StreamingLinks == nil {
		link.StreamingLinks = map[string]string{}
	}
	if link.ClickStats.Clicks == nil {
		link.ClickStats.Clicks = map[string]int64{}
	}

	return link, nil
}

// analyticsColumns flattens the optional analytics sub-record into
// the three nullable columns. Blank IDs persist as NULL, not "".
func analyticsColumns(a *models.AnalyticsTags) (gtm, ga4, ads *string) {
	if a == nil {
		return nil, nil, nil
	}
	return nullable(a.GtmID), nullable(a.Ga4ID), nullable(a.GoogleAdsID)
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// isUniqueViolation checks for PostgreSQL SQLSTATE 23505.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
