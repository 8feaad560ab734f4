package ports

import (
	"context"

	"github.com/shopfront/catalog-api/internal/core/domain"
)

// ProductFilter carries the conjunctive filters and the page window for listing
// products. Nil pointers and an empty Search mean "no filter".
type ProductFilter struct {
	CategoryID *int64
	Search     string   // case-insensitive substring of name
	MinPrice   *float64 // inclusive
	MaxPrice   *float64 // inclusive
	InStock    *bool    // true: stock > 0, false: stock == 0
	Skip       int
	Limit      int
}

// CategoryRepository defines persistence for categories.
type CategoryRepository interface {
	Create(ctx context.Context, c *domain.Category) (*domain.Category, error)
	FindByID(ctx context.Context, id int64) (*domain.Category, error)
	FindByName(ctx context.Context, name string) (*domain.Category, error)
	// List returns categories ordered by id.
	List(ctx context.Context, skip, limit int) ([]*domain.Category, error)
	Delete(ctx context.Context, id int64) error
}

// ProductRepository defines persistence for products.
type ProductRepository interface {
	Create(ctx context.Context, p *domain.Product) (*domain.Product, error)
	FindByID(ctx context.Context, id int64) (*domain.Product, error)
	FindBySKU(ctx context.Context, sku string) (*domain.Product, error)
	// List returns one page of products ordered by id and the count of all
	// products matching the filter.
	List(ctx context.Context, filter ProductFilter) ([]*domain.Product, int64, error)
	// Update overwrites every column of an existing product.
	Update(ctx context.Context, p *domain.Product) (*domain.Product, error)
	Delete(ctx context.Context, id int64) error
	CountByCategory(ctx context.Context, categoryID int64) (int64, error)
}

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}
