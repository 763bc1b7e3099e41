package repositories

import (
	"context"

	"github.com/dkruglov/family_budget_app/internal/core/domain"
)

// CategoryReader defines read operations for category data
type CategoryReader interface {
	// FindCategoryByID retrieves a specific category by its unique identifier.
	FindCategoryByID(ctx context.Context, ownerID, categoryID string) (*domain.Category, error)

	// ListCategories retrieves all categories belonging to an owner.
	ListCategories(ctx context.Context, ownerID string) ([]domain.Category, error)

	// ListFundingLinks retrieves the weighted source links of one category.
	ListFundingLinks(ctx context.Context, categoryID string) ([]domain.FundingLink, error)

	// ListFundingLinksByOwner retrieves all funding links of an owner's
	// categories, grouped by category ID.
	ListFundingLinksByOwner(ctx context.Context, ownerID string) (map[string][]domain.FundingLink, error)
}

// CategoryWriter defines write operations for category data. A category and
// its funding links are always written in one transaction so a failed link
// write can never leave a multi-source category resolving to a zero limit.
type CategoryWriter interface {
	// SaveCategoryWithLinks persists a new category together with its
	// funding links.
	SaveCategoryWithLinks(ctx context.Context, category domain.Category, links []domain.FundingLink) error

	// UpdateCategoryWithLinks updates an existing category and replaces its
	// funding links.
	UpdateCategoryWithLinks(ctx context.Context, category domain.Category, links []domain.FundingLink) error
}

// CategoryRepositoryFacade combines all category-related repository interfaces
// This is a facade for clients that need access to all operations
type CategoryRepositoryFacade interface {
	CategoryReader
	CategoryWriter
}
