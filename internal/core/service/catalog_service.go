package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/shopfront/catalog-api/internal/core/domain"
	"github.com/shopfront/catalog-api/internal/core/ports"
	"github.com/shopfront/catalog-api/internal/pkg/metrics"
	"github.com/shopfront/catalog-api/internal/pkg/validation"
	"github.com/shopfront/catalog-api/pkg/logger"
)

const (
	DefaultProductLimit  = 10
	MaxProductLimit      = 100
	DefaultCategoryLimit = 100
	MaxCategoryLimit     = 100
)

// CatalogService implements category and product use cases.
type CatalogService struct {
	categories ports.CategoryRepository
	products   ports.ProductRepository
	cache      ports.ProductCache
	events     ports.EventEmitter
	log        zerolog.Logger
	now        func() time.Time
}

// CatalogOption configures optional collaborators of CatalogService.
type CatalogOption func(*CatalogService)

// WithProductCache enables read-through caching of single products.
func WithProductCache(cache ports.ProductCache) CatalogOption {
	return func(s *CatalogService) { s.cache = cache }
}

// WithEventEmitter publishes a catalog event after every committed mutation.
func WithEventEmitter(events ports.EventEmitter) CatalogOption {
	return func(s *CatalogService) { s.events = events }
}

func NewCatalogService(
	categories ports.CategoryRepository,
	products ports.ProductRepository,
	log zerolog.Logger,
	opts ...CatalogOption,
) *CatalogService {
	s := &CatalogService{
		categories: categories,
		products:   products,
		log:        log,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ── Categories ────────────────────────────────────────────────────────────────

func (s *CatalogService) CreateCategory(ctx context.Context, actor *domain.User, in ports.CreateCategoryInput) (*domain.Category, error) {
	if err := authorizeAdmin(actor); err != nil {
		return nil, err
	}
	if err := validation.Struct(in); err != nil {
		return nil, domain.NewValidationError(err.Error())
	}

	if _, err := s.categories.FindByName(ctx, in.Name); err == nil {
		return nil, domain.ErrCategoryExists
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	created, err := s.categories.Create(ctx, &domain.Category{
		Name:        in.Name,
		Description: in.Description,
	})
	if err != nil {
		return nil, err
	}

	logger.Actor(s.log.Info(), actor.ID).Int64("category_id", created.ID).Str("name", created.Name).Msg("category created")
	s.emit(domain.CatalogEvent{Type: domain.EventCategoryCreated, AggregateID: created.ID, ActorID: actor.ID, Category: created})
	return created, nil
}

func (s *CatalogService) ListCategories(ctx context.Context, skip, limit int) ([]*domain.Category, error) {
	skip, limit, err := window(skip, limit, DefaultCategoryLimit, MaxCategoryLimit)
	if err != nil {
		return nil, err
	}
	return s.categories.List(ctx, skip, limit)
}

// DeleteCategory removes a category that no product references.
func (s *CatalogService) DeleteCategory(ctx context.Context, actor *domain.User, id int64) error {
	if err := authorizeAdmin(actor); err != nil {
		return err
	}
	category, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return err
	}

	n, err := s.products.CountByCategory(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return domain.ErrCategoryInUse
	}

	if err := s.categories.Delete(ctx, id); err != nil {
		return err
	}

	logger.Actor(s.log.Info(), actor.ID).Int64("category_id", id).Msg("category deleted")
	s.emit(domain.CatalogEvent{Type: domain.EventCategoryDeleted, AggregateID: id, ActorID: actor.ID, Category: category})
	return nil
}

// ── Products ──────────────────────────────────────────────────────────────────

// CreateProduct checks, in order: admin, fields, category existence, SKU
// uniqueness. The datastore unique index stays the final SKU guard.
func (s *CatalogService) CreateProduct(ctx context.Context, actor *domain.User, in ports.CreateProductInput) (*domain.Product, error) {
	if err := authorizeAdmin(actor); err != nil {
		return nil, err
	}
	if err := validation.Struct(in); err != nil {
		return nil, domain.NewValidationError(err.Error())
	}

	if in.CategoryID != nil {
		if _, err := s.categories.FindByID(ctx, *in.CategoryID); err != nil {
			return nil, err
		}
	}
	if err := s.ensureSKUAvailable(ctx, in.SKU, 0); err != nil {
		return nil, err
	}

	isActive := true
	if in.IsActive != nil {
		isActive = *in.IsActive
	}
	now := s.now().UTC()
	created, err := s.products.Create(ctx, &domain.Product{
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Stock:       in.Stock,
		SKU:         in.SKU,
		CategoryID:  in.CategoryID,
		ImageURL:    in.ImageURL,
		IsActive:    isActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return nil, err
	}

	if err := s.attachCategories(ctx, created); err != nil {
		return nil, err
	}

	logger.Actor(logger.Product(s.log.Info(), created.ID, created.SKU), actor.ID).Msg("product created")
	s.emit(domain.CatalogEvent{Type: domain.EventProductCreated, AggregateID: created.ID, ActorID: actor.ID, Product: created})
	return created, nil
}

// ListProducts returns the filtered page and the filtered total before paging.
func (s *CatalogService) ListProducts(ctx context.Context, filter ports.ProductFilter) (*ports.ProductPage, error) {
	skip, limit, err := window(filter.Skip, filter.Limit, DefaultProductLimit, MaxProductLimit)
	if err != nil {
		return nil, err
	}
	filter.Skip, filter.Limit = skip, limit

	items, total, err := s.products.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*domain.Product{}
	}
	if err := s.attachCategories(ctx, items...); err != nil {
		return nil, err
	}
	return &ports.ProductPage{Total: total, Items: items}, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	var generation int64
	if s.cache != nil {
		cached, gen, err := s.cache.Get(ctx, id)
		generation = gen
		switch {
		case err != nil:
			metrics.ProductCacheTotal.WithLabelValues("error").Inc()
			s.log.Warn().Err(err).Int64("product_id", id).Msg("product cache read failed")
		case cached != nil:
			metrics.ProductCacheTotal.WithLabelValues("hit").Inc()
			return cached, nil
		default:
			metrics.ProductCacheTotal.WithLabelValues("miss").Inc()
		}
	}

	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.attachCategories(ctx, p); err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, p, generation); err != nil {
			s.log.Warn().Err(err).Int64("product_id", id).Msg("product cache write failed")
		}
	}
	return p, nil
}

// UpdateProduct applies only the fields present in patch. A present, non-nil
// category is re-validated; a present SKU must not belong to another product.
func (s *CatalogService) UpdateProduct(ctx context.Context, actor *domain.User, id int64, patch domain.ProductPatch) (*domain.Product, error) {
	if err := authorizeAdmin(actor); err != nil {
		return nil, err
	}
	if err := validatePatch(patch); err != nil {
		return nil, err
	}

	current, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		if err := s.attachCategories(ctx, current); err != nil {
			return nil, err
		}
		return current, nil
	}

	if categoryID, ok := patch.CategoryID.Get(); ok && categoryID != nil {
		if _, err := s.categories.FindByID(ctx, *categoryID); err != nil {
			return nil, err
		}
	}
	if sku, ok := patch.SKU.Get(); ok {
		if err := s.ensureSKUAvailable(ctx, sku, id); err != nil {
			return nil, err
		}
	}

	patch.ApplyTo(current)
	current.UpdatedAt = s.now().UTC()

	updated, err := s.products.Update(ctx, current)
	if err != nil {
		return nil, err
	}
	if err := s.attachCategories(ctx, updated); err != nil {
		return nil, err
	}

	s.invalidate(ctx, id)
	logger.Actor(logger.Product(s.log.Info(), id, updated.SKU), actor.ID).Msg("product updated")
	s.emit(domain.CatalogEvent{Type: domain.EventProductUpdated, AggregateID: id, ActorID: actor.ID, Product: updated})
	return updated, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, actor *domain.User, id int64) error {
	if err := authorizeAdmin(actor); err != nil {
		return err
	}
	if _, err := s.products.FindByID(ctx, id); err != nil {
		return err
	}
	if err := s.products.Delete(ctx, id); err != nil {
		return err
	}

	s.invalidate(ctx, id)
	logger.Actor(logger.Product(s.log.Info(), id, ""), actor.ID).Msg("product deleted")
	s.emit(domain.CatalogEvent{Type: domain.EventProductDeleted, AggregateID: id, ActorID: actor.ID})
	return nil
}

// ── helpers ───────────────────────────────────────────────────────────────────

// ensureSKUAvailable fails with a Conflict when sku belongs to a product other
// than ownID. Pass ownID 0 for new products.
func (s *CatalogService) ensureSKUAvailable(ctx context.Context, sku string, ownID int64) error {
	existing, err := s.products.FindBySKU(ctx, sku)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return err
	}
	if existing.ID != ownID {
		return domain.ErrSKUExists
	}
	return nil
}

// attachCategories loads the category of every product that references one,
// fetching each distinct category once.
func (s *CatalogService) attachCategories(ctx context.Context, products ...*domain.Product) error {
	loaded := make(map[int64]*domain.Category)
	for _, p := range products {
		p.Category = nil
		if p.CategoryID == nil {
			continue
		}
		c, ok := loaded[*p.CategoryID]
		if !ok {
			var err error
			c, err = s.categories.FindByID(ctx, *p.CategoryID)
			if err != nil && !errors.Is(err, domain.ErrNotFound) {
				return err
			}
			loaded[*p.CategoryID] = c
		}
		p.Category = c
	}
	return nil
}

func (s *CatalogService) invalidate(ctx context.Context, id int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, id); err != nil {
		s.log.Warn().Err(err).Int64("product_id", id).Msg("product cache invalidation failed")
	}
}

func (s *CatalogService) emit(event domain.CatalogEvent) {
	metrics.CatalogMutationsTotal.WithLabelValues(string(event.Type)).Inc()
	if s.events == nil {
		return
	}
	event.OccurredAt = s.now().UTC()
	s.events.Emit(event)
}

// authorizeAdmin applies the access checks of every catalog mutation in order:
// identity, active, admin.
func authorizeAdmin(actor *domain.User) error {
	if _, err := RequireActive(actor); err != nil {
		return err
	}
	return RequireAdmin(actor)
}

// window applies defaults and bounds to an offset/limit pair.
func window(skip, limit, def, max int) (int, int, error) {
	if skip < 0 {
		return 0, 0, domain.NewValidationError("skip must be greater than or equal to 0")
	}
	if limit == 0 {
		limit = def
	}
	if limit < 1 || limit > max {
		return 0, 0, domain.NewValidationError("limit must be between 1 and " + strconv.Itoa(max))
	}
	return skip, limit, nil
}

func validatePatch(p domain.ProductPatch) error {
	checks := []error{}
	if v, ok := p.Name.Get(); ok {
		checks = append(checks, validation.Var("name", v, "required,min=1,max=100"))
	}
	if v, ok := p.Price.Get(); ok {
		checks = append(checks, validation.Var("price", v, "gt=0"))
	}
	if v, ok := p.Stock.Get(); ok {
		checks = append(checks, validation.Var("stock", v, "gte=0"))
	}
	if v, ok := p.SKU.Get(); ok {
		checks = append(checks, validation.Var("stockKeepingUnit", v, "required,min=3,max=50"))
	}
	if v, ok := p.ImageURL.Get(); ok && v != nil {
		checks = append(checks, validation.Var("image_url", *v, "url"))
	}
	for _, err := range checks {
		if err != nil {
			return domain.NewValidationError(err.Error())
		}
	}
	return nil
}
