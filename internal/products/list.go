package product

import (
	"github.com/google/uuid"

	"github.com/horologiq/horologiq-backend/pkg/pagination"
)

// ListFilters describe the supported filter knobs for product listing.
type ListFilters struct {
	CategoryID *uuid.UUID `json:"category_id,omitempty"`
	Brand      string     `json:"brand,omitempty"`
	IsActive   *bool      `json:"is_active,omitempty"`
	Query      string     `json:"q,omitempty"`
}

// ListProductsInput captures the inputs needed to paginate/filter products.
type ListProductsInput struct {
	Filters    ListFilters
	Pagination pagination.Params
}

// ProductListResult is one page of products plus the cursor for the next.
type ProductListResult struct {
	Products   []ProductDTO `json:"products"`
	NextCursor string       `json:"next_cursor,omitempty"`
}
