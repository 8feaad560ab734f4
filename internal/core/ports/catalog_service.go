package ports

import (
	"context"

	"github.com/shopfront/catalog-api/internal/core/domain"
)

// CreateCategoryInput carries the fields of a new category.
type CreateCategoryInput struct {
	Name        string  `json:"name" validate:"required,min=1,max=100"`
	Description *string `json:"description" validate:"omitempty"`
}

// CreateProductInput carries the fields of a new product. IsActive defaults to true.
type CreateProductInput struct {
	Name        string  `json:"name" validate:"required,min=1,max=100"`
	Description *string `json:"description" validate:"omitempty"`
	Price       float64 `json:"price" validate:"gt=0"`
	Stock       int     `json:"stock" validate:"gte=0"`
	SKU         string  `json:"stockKeepingUnit" validate:"required,min=3,max=50"`
	CategoryID  *int64  `json:"category_id" validate:"omitempty"`
	ImageURL    *string `json:"image_url" validate:"omitempty,url"`
	IsActive    *bool   `json:"is_active" validate:"omitempty"`
}

// ProductPage is one page of a filtered product listing.
type ProductPage struct {
	Total int64
	Items []*domain.Product
}

// CatalogService defines the category and product use cases. Mutations take the
// authenticated actor explicitly and require it to be an administrator.
type CatalogService interface {
	CreateCategory(ctx context.Context, actor *domain.User, in CreateCategoryInput) (*domain.Category, error)
	ListCategories(ctx context.Context, skip, limit int) ([]*domain.Category, error)
	DeleteCategory(ctx context.Context, actor *domain.User, id int64) error

	CreateProduct(ctx context.Context, actor *domain.User, in CreateProductInput) (*domain.Product, error)
	ListProducts(ctx context.Context, filter ProductFilter) (*ProductPage, error)
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	UpdateProduct(ctx context.Context, actor *domain.User, id int64, patch domain.ProductPatch) (*domain.Product, error)
	DeleteProduct(ctx context.Context, actor *domain.User, id int64) error
}

// ProductCache is a best-effort read cache for single products. Every entry
// belongs to a generation that Invalidate advances, so a product read from the
// store before an invalidation is never cached after it.
type ProductCache interface {
	// Get returns the cached product, or a nil product on a miss. The returned
	// generation is passed back to Set.
	Get(ctx context.Context, id int64) (*domain.Product, int64, error)
	// Set stores p unless the product was invalidated after generation was read.
	Set(ctx context.Context, p *domain.Product, generation int64) error
	Invalidate(ctx context.Context, id int64) error
}

// EventEmitter hands committed catalog events to an asynchronous publisher.
type EventEmitter interface {
	Emit(event domain.CatalogEvent)
}

// EventPublisher delivers a catalog event to an external broker.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.CatalogEvent) error
}
