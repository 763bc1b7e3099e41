package dto

import (
	"github.com/dkruglov/family_budget_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// FundingLinkRequest defines one weighted source link of a multi-source category.
type FundingLinkRequest struct {
	SourceID string          `json:"sourceID" binding:"required,uuid"`
	Kind     string          `json:"kind" binding:"required,oneof=FIXED PERCENT"`
	Value    decimal.Decimal `json:"value" binding:"required"`
}

// CreateCategoryRequest defines the structure for creating a new category.
// Value means a currency amount for FIXED limits and a percentage for PERCENT
// limits. Providing links makes the category multi-source; Value and SourceID
// are then ignored.
type CreateCategoryRequest struct {
	Name      string               `json:"name" binding:"required,max=100"`
	LimitType string               `json:"limitType" binding:"required,oneof=FIXED PERCENT"`
	Value     decimal.Decimal      `json:"value"`
	SourceID  *string              `json:"sourceID" binding:"omitempty,uuid"`
	Links     []FundingLinkRequest `json:"links" binding:"omitempty,dive"`
}

// UpdateCategoryRequest fully replaces a category's definition, including
// its funding links. Same semantics as CreateCategoryRequest.
type UpdateCategoryRequest struct {
	Name      string               `json:"name" binding:"required,max=100"`
	LimitType string               `json:"limitType" binding:"required,oneof=FIXED PERCENT"`
	Value     decimal.Decimal      `json:"value"`
	SourceID  *string              `json:"sourceID" binding:"omitempty,uuid"`
	Links     []FundingLinkRequest `json:"links" binding:"omitempty,dive"`
}

// FundingLinkResponse defines the API shape of one funding link.
type FundingLinkResponse struct {
	SourceID string          `json:"sourceID"`
	Kind     string          `json:"kind"`
	Value    decimal.Decimal `json:"value"`
}

// CategoryResponse defines the API shape of a category with its links.
type CategoryResponse struct {
	CategoryID    string                `json:"categoryID"`
	Name          string                `json:"name"`
	LimitType     string                `json:"limitType"`
	Value         decimal.Decimal       `json:"value"`
	SourceID      *string               `json:"sourceID,omitempty"`
	IsMultiSource bool                  `json:"isMultiSource"`
	Links         []FundingLinkResponse `json:"links,omitempty"`
}

// ToCategoryResponse converts a domain.Category and its links to the API shape.
func ToCategoryResponse(category domain.Category, links []domain.FundingLink) CategoryResponse {
	resp := CategoryResponse{
		CategoryID:    category.CategoryID,
		Name:          category.Name,
		LimitType:     string(category.LimitType),
		Value:         category.Value,
		SourceID:      category.SourceID,
		IsMultiSource: category.IsMultiSource,
	}
	for _, link := range links {
		resp.Links = append(resp.Links, FundingLinkResponse{
			SourceID: link.SourceID,
			Kind:     string(link.Contribution.Kind),
			Value:    link.Contribution.Value,
		})
	}
	return resp
}

// CreateIncomeSourceRequest defines the structure for creating an income source.
type CreateIncomeSourceRequest struct {
	Name      string `json:"name" binding:"required,max=100"`
	IsDefault bool   `json:"isDefault"`
}
