package domain

import "time"

// Category groups products. Names are unique.
type Category struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

// Product is a sellable catalog entry. SKU is globally unique.
type Product struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	Price       float64   `json:"price"`
	Stock       int       `json:"stock"`
	SKU         string    `json:"stockKeepingUnit"`
	CategoryID  *int64    `json:"category_id,omitempty"`
	ImageURL    *string   `json:"image_url,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Category is the referenced category, loaded by the catalog service.
	// Repositories neither read nor write it.
	Category *Category `json:"category,omitempty"`
}

// ProductPatch carries a partial product update. Only fields marked present are
// applied; Description, CategoryID and ImageURL accept an explicit nil to clear.
type ProductPatch struct {
	Name        Optional[string]
	Description Optional[*string]
	Price       Optional[float64]
	Stock       Optional[int]
	SKU         Optional[string]
	CategoryID  Optional[*int64]
	ImageURL    Optional[*string]
	IsActive    Optional[bool]
}

// IsEmpty reports whether no field is present.
func (p ProductPatch) IsEmpty() bool {
	return !p.Name.Present() &&
		!p.Description.Present() &&
		!p.Price.Present() &&
		!p.Stock.Present() &&
		!p.SKU.Present() &&
		!p.CategoryID.Present() &&
		!p.ImageURL.Present() &&
		!p.IsActive.Present()
}

// ApplyTo merges the present fields into prod. It does not touch UpdatedAt.
func (p ProductPatch) ApplyTo(prod *Product) {
	if v, ok := p.Name.Get(); ok {
		prod.Name = v
	}
	if v, ok := p.Description.Get(); ok {
		prod.Description = v
	}
	if v, ok := p.Price.Get(); ok {
		prod.Price = v
	}
	if v, ok := p.Stock.Get(); ok {
		prod.Stock = v
	}
	if v, ok := p.SKU.Get(); ok {
		prod.SKU = v
	}
	if v, ok := p.CategoryID.Get(); ok {
		prod.CategoryID = v
	}
	if v, ok := p.ImageURL.Get(); ok {
		prod.ImageURL = v
	}
	if v, ok := p.IsActive.Get(); ok {
		prod.IsActive = v
	}
}
