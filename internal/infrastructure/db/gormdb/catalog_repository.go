package gormdb

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shopfront/catalog-api/internal/core/domain"
	"github.com/shopfront/catalog-api/internal/core/ports"
)

// ── Categories ────────────────────────────────────────────────────────────────

type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) Create(ctx context.Context, c *domain.Category) (*domain.Category, error) {
	rec := categoryRecord{Name: c.Name, Description: c.Description}
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, domain.ErrCategoryExists
		}
		return nil, fmt.Errorf("insert category: %w", err)
	}
	return rec.toDomain(), nil
}

func (r *CategoryRepository) FindByID(ctx context.Context, id int64) (*domain.Category, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *CategoryRepository) FindByName(ctx context.Context, name string) (*domain.Category, error) {
	return r.findOne(ctx, "name = ?", name)
}

func (r *CategoryRepository) List(ctx context.Context, skip, limit int) ([]*domain.Category, error) {
	var recs []categoryRecord
	err := r.db.WithContext(ctx).
		Order("id ASC").
		Offset(skip).
		Limit(limit).
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	out := make([]*domain.Category, 0, len(recs))
	for i := range recs {
		out = append(out, recs[i].toDomain())
	}
	return out, nil
}

func (r *CategoryRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&categoryRecord{}, "id = ?", id)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrForeignKeyViolated) {
			return domain.ErrCategoryInUse
		}
		return fmt.Errorf("delete category: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrCategoryNotFound
	}
	return nil
}

func (r *CategoryRepository) findOne(ctx context.Context, query string, arg any) (*domain.Category, error) {
	var rec categoryRecord
	if err := r.db.WithContext(ctx).Where(query, arg).First(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCategoryNotFound
		}
		return nil, fmt.Errorf("find category: %w", err)
	}
	return rec.toDomain(), nil
}

// ── Products ──────────────────────────────────────────────────────────────────

type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) (*domain.Product, error) {
	rec := newProductRecord(p)
	rec.ID = 0
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(&rec).Error; err != nil {
		return nil, translateProductError("insert product", err)
	}
	return rec.toDomain(), nil
}

func (r *ProductRepository) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *ProductRepository) FindBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	return r.findOne(ctx, "stock_keeping_unit = ?", sku)
}

// List runs the count and the page query over the same filter.
func (r *ProductRepository) List(ctx context.Context, f ports.ProductFilter) ([]*domain.Product, int64, error) {
	var total int64
	if err := applyFilter(r.db.WithContext(ctx).Model(&productRecord{}), f).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	var recs []productRecord
	err := applyFilter(r.db.WithContext(ctx).Model(&productRecord{}), f).
		Order("id ASC").
		Offset(f.Skip).
		Limit(f.Limit).
		Find(&recs).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}

	out := make([]*domain.Product, 0, len(recs))
	for i := range recs {
		out = append(out, recs[i].toDomain())
	}
	return out, total, nil
}

func (r *ProductRepository) Update(ctx context.Context, p *domain.Product) (*domain.Product, error) {
	rec := newProductRecord(p)
	res := r.db.WithContext(ctx).
		Model(&productRecord{}).
		Where("id = ?", p.ID).
		Select("*").
		Omit("id", "created_at", clause.Associations).
		Updates(&rec)
	if res.Error != nil {
		return nil, translateProductError("update product", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, domain.ErrProductNotFound
	}
	return r.FindByID(ctx, p.ID)
}

func (r *ProductRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&productRecord{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("delete product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

func (r *ProductRepository) CountByCategory(ctx context.Context, categoryID int64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&productRecord{}).
		Where("category_id = ?", categoryID).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("count products by category: %w", err)
	}
	return n, nil
}

func (r *ProductRepository) findOne(ctx context.Context, query string, arg any) (*domain.Product, error) {
	var rec productRecord
	if err := r.db.WithContext(ctx).Where(query, arg).First(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("find product: %w", err)
	}
	return rec.toDomain(), nil
}

func applyFilter(tx *gorm.DB, f ports.ProductFilter) *gorm.DB {
	if f.CategoryID != nil {
		tx = tx.Where("category_id = ?", *f.CategoryID)
	}
	if f.Search != "" {
		tx = tx.Where(`LOWER(name) LIKE ? ESCAPE '\'`, "%"+escapeLike(strings.ToLower(f.Search))+"%")
	}
	if f.MinPrice != nil {
		tx = tx.Where("price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		tx = tx.Where("price <= ?", *f.MaxPrice)
	}
	if f.InStock != nil {
		if *f.InStock {
			tx = tx.Where("stock > 0")
		} else {
			tx = tx.Where("stock = 0")
		}
	}
	return tx
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func translateProductError(op string, err error) error {
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return domain.ErrSKUExists
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return domain.ErrCategoryNotFound
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
