package pgsql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dkruglov/family_budget_app/internal/apperrors"
	"github.com/dkruglov/family_budget_app/internal/core/domain"
	portsrepo "github.com/dkruglov/family_budget_app/internal/core/ports/repositories"
)

// PgxCategoryRepository implements the category repository ports using pgxpool.
type PgxCategoryRepository struct {
	BaseRepository
}

// NewPgxCategoryRepository creates a new PgxCategoryRepository.
func NewPgxCategoryRepository(db *pgxpool.Pool) *PgxCategoryRepository {
	return &PgxCategoryRepository{
		BaseRepository: BaseRepository{Pool: db},
	}
}

var _ portsrepo.CategoryRepositoryFacade = (*PgxCategoryRepository)(nil)
var _ portsrepo.TransactionManager = (*PgxCategoryRepository)(nil)

const categoryColumns = `category_id, owner_id, name, limit_type, value, source_id, is_multi_source,
	created_at, created_by, last_updated_at, last_updated_by`

// SaveCategoryWithLinks inserts a new category and its funding links in one
// transaction, so a failed link write never leaves a linkless category behind.
func (r *PgxCategoryRepository) SaveCategoryWithLinks(ctx context.Context, category domain.Category, links []domain.FundingLink) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO categories (` + categoryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err = tx.Exec(ctx, query,
		category.CategoryID,
		category.OwnerID,
		category.Name,
		category.LimitType,
		category.Value,
		category.SourceID,
		category.IsMultiSource,
		category.CreatedAt,
		category.CreatedBy,
		category.LastUpdatedAt,
		category.LastUpdatedBy,
	)
	if err != nil {
		_ = r.Rollback(ctx, tx)
		return fmt.Errorf("failed to save category %s: %w", category.CategoryID, mapError(err))
	}
	if err := insertFundingLinks(ctx, tx, links); err != nil {
		_ = r.Rollback(ctx, tx)
		return err
	}

	return r.Commit(ctx, tx)
}

// UpdateCategoryWithLinks updates a category's mutable fields and replaces
// its funding links in one transaction.
func (r *PgxCategoryRepository) UpdateCategoryWithLinks(ctx context.Context, category domain.Category, links []domain.FundingLink) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}

	query := `
		UPDATE categories
		SET name = $1, limit_type = $2, value = $3, source_id = $4, is_multi_source = $5,
			last_updated_at = $6, last_updated_by = $7
		WHERE category_id = $8 AND owner_id = $9`
	tag, err := tx.Exec(ctx, query,
		category.Name,
		category.LimitType,
		category.Value,
		category.SourceID,
		category.IsMultiSource,
		category.LastUpdatedAt,
		category.LastUpdatedBy,
		category.CategoryID,
		category.OwnerID,
	)
	if err != nil {
		_ = r.Rollback(ctx, tx)
		return fmt.Errorf("failed to update category %s: %w", category.CategoryID, mapError(err))
	}
	if tag.RowsAffected() == 0 {
		_ = r.Rollback(ctx, tx)
		return fmt.Errorf("category %s: %w", category.CategoryID, apperrors.ErrNotFound)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM funding_links WHERE category_id = $1`, category.CategoryID); err != nil {
		_ = r.Rollback(ctx, tx)
		return fmt.Errorf("failed to clear funding links for category %s: %w", category.CategoryID, mapError(err))
	}
	if err := insertFundingLinks(ctx, tx, links); err != nil {
		_ = r.Rollback(ctx, tx)
		return err
	}

	return r.Commit(ctx, tx)
}

// FindCategoryByID retrieves an owner's category by its ID.
func (r *PgxCategoryRepository) FindCategoryByID(ctx context.Context, ownerID, categoryID string) (*domain.Category, error) {
	query := `
		SELECT ` + categoryColumns + `
		FROM categories
		WHERE category_id = $1 AND owner_id = $2`
	category, err := scanCategory(r.Pool.QueryRow(ctx, query, categoryID, ownerID))
	if err != nil {
		return nil, fmt.Errorf("failed to find category %s: %w", categoryID, mapError(err))
	}
	return category, nil
}

// ListCategories retrieves all categories of an owner, name ascending.
func (r *PgxCategoryRepository) ListCategories(ctx context.Context, ownerID string) ([]domain.Category, error) {
	query := `
		SELECT ` + categoryColumns + `
		FROM categories
		WHERE owner_id = $1
		ORDER BY name ASC`
	rows, err := r.Pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", mapError(err))
	}
	defer rows.Close()

	var categories []domain.Category
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category row: %w", err)
		}
		categories = append(categories, *category)
	}
	return categories, rows.Err()
}

// ListFundingLinks retrieves the funding links of one category.
func (r *PgxCategoryRepository) ListFundingLinks(ctx context.Context, categoryID string) ([]domain.FundingLink, error) {
	query := `
		SELECT category_id, source_id, kind, value, created_at, created_by, last_updated_at, last_updated_by
		FROM funding_links
		WHERE category_id = $1
		ORDER BY source_id ASC`
	rows, err := r.Pool.Query(ctx, query, categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to list funding links for category %s: %w", categoryID, mapError(err))
	}
	defer rows.Close()
	return collectFundingLinks(rows)
}

// ListFundingLinksByOwner retrieves all funding links of an owner's
// categories, grouped by category ID.
func (r *PgxCategoryRepository) ListFundingLinksByOwner(ctx context.Context, ownerID string) (map[string][]domain.FundingLink, error) {
	query := `
		SELECT fl.category_id, fl.source_id, fl.kind, fl.value,
			fl.created_at, fl.created_by, fl.last_updated_at, fl.last_updated_by
		FROM funding_links fl
		JOIN categories c ON c.category_id = fl.category_id
		WHERE c.owner_id = $1
		ORDER BY fl.category_id, fl.source_id`
	rows, err := r.Pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list funding links: %w", mapError(err))
	}
	defer rows.Close()

	links, err := collectFundingLinks(rows)
	if err != nil {
		return nil, err
	}
	grouped := make(map[string][]domain.FundingLink)
	for _, link := range links {
		grouped[link.CategoryID] = append(grouped[link.CategoryID], link)
	}
	return grouped, nil
}

func insertFundingLinks(ctx context.Context, tx pgx.Tx, links []domain.FundingLink) error {
	for _, link := range links {
		_, err := tx.Exec(ctx, `
			INSERT INTO funding_links (category_id, source_id, kind, value, created_at, created_by, last_updated_at, last_updated_by)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			link.CategoryID,
			link.SourceID,
			link.Contribution.Kind,
			link.Contribution.Value,
			link.CreatedAt,
			link.CreatedBy,
			link.LastUpdatedAt,
			link.LastUpdatedBy,
		)
		if err != nil {
			return fmt.Errorf("failed to insert funding link %s/%s: %w", link.CategoryID, link.SourceID, mapError(err))
		}
	}
	return nil
}

// rowScanner abstracts pgx.Row and pgx.Rows for shared scan helpers.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanCategory(row rowScanner) (*domain.Category, error) {
	var category domain.Category
	err := row.Scan(
		&category.CategoryID,
		&category.OwnerID,
		&category.Name,
		&category.LimitType,
		&category.Value,
		&category.SourceID,
		&category.IsMultiSource,
		&category.CreatedAt,
		&category.CreatedBy,
		&category.LastUpdatedAt,
		&category.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func collectFundingLinks(rows interface {
	rowScanner
	Next() bool
	Err() error
}) ([]domain.FundingLink, error) {
	var links []domain.FundingLink
	for rows.Next() {
		var link domain.FundingLink
		err := rows.Scan(
			&link.CategoryID,
			&link.SourceID,
			&link.Contribution.Kind,
			&link.Contribution.Value,
			&link.CreatedAt,
			&link.CreatedBy,
			&link.LastUpdatedAt,
			&link.LastUpdatedBy,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan funding link row: %w", err)
		}
		links = append(links, link)
	}
	return links, rows.Err()
}
