package handler

import (
	"github.com/shopfront/catalog-api/internal/core/domain"
	"github.com/shopfront/catalog-api/internal/core/ports"
)

// --- Request → Service input ---

func toCreateCategoryInput(req createCategoryRequest) ports.CreateCategoryInput {
	return ports.CreateCategoryInput{Name: req.Name, Description: req.Description}
}

func toCreateProductInput(req createProductRequest) ports.CreateProductInput {
	return ports.CreateProductInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		SKU:         req.SKU,
		CategoryID:  req.CategoryID,
		ImageURL:    req.ImageURL,
		IsActive:    req.IsActive,
	}
}

func toProductPatch(req updateProductRequest) (domain.ProductPatch, error) {
	var (
		patch domain.ProductPatch
		err   error
	)
	if patch.Name, err = required("name", req.Name); err != nil {
		return patch, err
	}
	if patch.Price, err = required("price", req.Price); err != nil {
		return patch, err
	}
	if patch.Stock, err = required("stock", req.Stock); err != nil {
		return patch, err
	}
	if patch.SKU, err = required("stockKeepingUnit", req.SKU); err != nil {
		return patch, err
	}
	if patch.IsActive, err = required("is_active", req.IsActive); err != nil {
		return patch, err
	}
	patch.Description = nullable(req.Description)
	patch.CategoryID = nullable(req.CategoryID)
	patch.ImageURL = nullable(req.ImageURL)
	return patch, nil
}

func required[T any](name string, f field[T]) (domain.Optional[T], error) {
	if !f.Set {
		return domain.None[T](), nil
	}
	if f.Null {
		return domain.None[T](), domain.NewValidationError(name + " may not be null")
	}
	return domain.Some(f.Value), nil
}

func nullable[T any](f field[T]) domain.Optional[*T] {
	if !f.Set {
		return domain.None[*T]()
	}
	if f.Null {
		return domain.Some[*T](nil)
	}
	v := f.Value
	return domain.Some(&v)
}

// --- Service result → HTTP response ---

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Email:     u.Email,
		Username:  u.Username,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt.UTC(),
	}
}

func toTokenResponse(t *domain.AccessToken) tokenResponse {
	return tokenResponse{
		AccessToken: t.Token,
		TokenType:   t.TokenType,
		ExpiresIn:   int64(t.ExpiresIn.Seconds()),
	}
}

func toCategoryResponse(c *domain.Category) categoryResponse {
	return categoryResponse{ID: c.ID, Name: c.Name, Description: c.Description}
}

func toCategoryResponses(cs []*domain.Category) []categoryResponse {
	out := make([]categoryResponse, 0, len(cs))
	for _, c := range cs {
		out = append(out, toCategoryResponse(c))
	}
	return out
}

func toProductResponse(p *domain.Product) productResponse {
	resp := productResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Stock:       p.Stock,
		SKU:         p.SKU,
		CategoryID:  p.CategoryID,
		ImageURL:    p.ImageURL,
		IsActive:    p.IsActive,
		CreatedAt:   p.CreatedAt.UTC(),
		UpdatedAt:   p.UpdatedAt.UTC(),
	}
	if p.Category != nil {
		c := toCategoryResponse(p.Category)
		resp.Category = &c
	}
	return resp
}

func toProductPageResponse(page *ports.ProductPage) productPageResponse {
	items := make([]productResponse, 0, len(page.Items))
	for _, p := range page.Items {
		items = append(items, toProductResponse(p))
	}
	return productPageResponse{Total: page.Total, Items: items}
}
