package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/shopfront/catalog-api/internal/api/middleware"
	"github.com/shopfront/catalog-api/internal/core/domain"
	"github.com/shopfront/catalog-api/internal/core/ports"
)

type stubCatalogService struct {
	createCategoryFn func(ctx context.Context, actor *domain.User, in ports.CreateCategoryInput) (*domain.Category, error)
	listCategoriesFn func(ctx context.Context, skip, limit int) ([]*domain.Category, error)
	deleteCategoryFn func(ctx context.Context, actor *domain.User, id int64) error
	createProductFn  func(ctx context.Context, actor *domain.User, in ports.CreateProductInput) (*domain.Product, error)
	listProductsFn   func(ctx context.Context, filter ports.ProductFilter) (*ports.ProductPage, error)
	getProductFn     func(ctx context.Context, id int64) (*domain.Product, error)
	updateProductFn  func(ctx context.Context, actor *domain.User, id int64, patch domain.ProductPatch) (*domain.Product, error)
	deleteProductFn  func(ctx context.Context, actor *domain.User, id int64) error
}

func (s *stubCatalogService) CreateCategory(ctx context.Context, actor *domain.User, in ports.CreateCategoryInput) (*domain.Category, error) {
	return s.createCategoryFn(ctx, actor, in)
}

func (s *stubCatalogService) ListCategories(ctx context.Context, skip, limit int) ([]*domain.Category, error) {
	return s.listCategoriesFn(ctx, skip, limit)
}

func (s *stubCatalogService) DeleteCategory(ctx context.Context, actor *domain.User, id int64) error {
	return s.deleteCategoryFn(ctx, actor, id)
}

func (s *stubCatalogService) CreateProduct(ctx context.Context, actor *domain.User, in ports.CreateProductInput) (*domain.Product, error) {
	return s.createProductFn(ctx, actor, in)
}

func (s *stubCatalogService) ListProducts(ctx context.Context, filter ports.ProductFilter) (*ports.ProductPage, error) {
	return s.listProductsFn(ctx, filter)
}

func (s *stubCatalogService) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	return s.getProductFn(ctx, id)
}

func (s *stubCatalogService) UpdateProduct(ctx context.Context, actor *domain.User, id int64, patch domain.ProductPatch) (*domain.Product, error) {
	return s.updateProductFn(ctx, actor, id, patch)
}

func (s *stubCatalogService) DeleteProduct(ctx context.Context, actor *domain.User, id int64) error {
	return s.deleteProductFn(ctx, actor, id)
}

var admin = &domain.User{ID: 1, Email: "admin@example.com", Username: "admin", IsActive: true, IsAdmin: true}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func asAdmin(c echo.Context) echo.Context {
	c.Set(middleware.UserKey, admin)
	return c
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("invalid json: %v (%s)", err, rec.Body.String())
	}
}

// --- Categories ---

func TestCategoryHandler_Create(t *testing.T) {
	e := newEcho()
	stub := &stubCatalogService{
		createCategoryFn: func(ctx context.Context, actor *domain.User, in ports.CreateCategoryInput) (*domain.Category, error) {
			if actor != admin || in.Name != "Books" || in.Description != nil {
				t.Fatalf("unexpected args: %+v %+v", actor, in)
			}
			return &domain.Category{ID: 4, Name: in.Name}, nil
		},
	}
	handler := NewCategoryHandler(stub)

	rec := httptest.NewRecorder()
	c := asAdmin(e.NewContext(jsonRequest(http.MethodPost, "/products/categories", `{"name":"Books"}`), rec))

	if err := handler.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	var resp map[string]any
	decode(t, rec, &resp)
	if resp["id"] != float64(4) || resp["name"] != "Books" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
	if v, ok := resp["description"]; !ok || v != nil {
		t.Fatalf("expected explicit null description, got %+v", resp)
	}
}

func TestCategoryHandler_Create_Unauthenticated(t *testing.T) {
	e := newEcho()
	handler := NewCategoryHandler(&stubCatalogService{})
	c := e.NewContext(jsonRequest(http.MethodPost, "/products/categories", `{"name":"Books"}`), httptest.NewRecorder())

	if err := handler.Create(c); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestCategoryHandler_List(t *testing.T) {
	cases := []struct {
		query     string
		wantSkip  int
		wantLimit int
		wantErr   bool
	}{
		{"", 0, 0, false},
		{"?skip=5&limit=20", 5, 20, false},
		{"?limit=0", 0, 0, true},
		{"?limit=abc", 0, 0, true},
	}
	for _, tc := range cases {
		t.Run(tc.query, func(t *testing.T) {
			e := newEcho()
			called := false
			stub := &stubCatalogService{
				listCategoriesFn: func(ctx context.Context, skip, limit int) ([]*domain.Category, error) {
					called = true
					if skip != tc.wantSkip || limit != tc.wantLimit {
						t.Fatalf("got skip=%d limit=%d", skip, limit)
					}
					return nil, nil
				},
			}
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/products/categories"+tc.query, nil), rec)

			err := NewCategoryHandler(stub).List(c)
			if tc.wantErr {
				if !errors.Is(err, domain.ErrValidation) || called {
					t.Fatalf("expected validation error before service call, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("handler error: %v", err)
			}
			if strings.TrimSpace(rec.Body.String()) != "[]" {
				t.Fatalf("expected empty array, got %s", rec.Body.String())
			}
		})
	}
}

func TestCategoryHandler_Delete(t *testing.T) {
	e := newEcho()
	stub := &stubCatalogService{
		deleteCategoryFn: func(ctx context.Context, actor *domain.User, id int64) error {
			if id != 9 {
				t.Fatalf("unexpected id %d", id)
			}
			return nil
		},
	}
	rec := httptest.NewRecorder()
	c := asAdmin(e.NewContext(httptest.NewRequest(http.MethodDelete, "/", nil), rec))
	c.SetParamNames("id")
	c.SetParamValues("9")

	if err := NewCategoryHandler(stub).Delete(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
}

func TestCategoryHandler_Delete_InUse(t *testing.T) {
	e := newEcho()
	stub := &stubCatalogService{
		deleteCategoryFn: func(ctx context.Context, actor *domain.User, id int64) error {
			return domain.ErrCategoryInUse
		},
	}
	c := asAdmin(e.NewContext(httptest.NewRequest(http.MethodDelete, "/", nil), httptest.NewRecorder()))
	c.SetParamNames("id")
	c.SetParamValues("9")

	if err := NewCategoryHandler(stub).Delete(c); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

// --- Products ---

func TestProductHandler_Create(t *testing.T) {
	e := newEcho()
	stub := &stubCatalogService{
		createProductFn: func(ctx context.Context, actor *domain.User, in ports.CreateProductInput) (*domain.Product, error) {
			if in.SKU != "BK-1" || in.Price != 9.99 || in.Stock != 5 || in.CategoryID == nil || *in.CategoryID != 2 {
				t.Fatalf("unexpected input: %+v", in)
			}
			if in.IsActive != nil {
				t.Fatalf("is_active should be unset")
			}
			return &domain.Product{ID: 11, Name: in.Name, Price: in.Price, Stock: in.Stock, SKU: in.SKU, CategoryID: in.CategoryID, IsActive: true}, nil
		},
	}
	rec := httptest.NewRecorder()
	body := `{"name":"Go Book","price":9.99,"stock":5,"stockKeepingUnit":"BK-1","category_id":2}`
	c := asAdmin(e.NewContext(jsonRequest(http.MethodPost, "/products", body), rec))

	if err := NewProductHandler(stub).Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	var resp map[string]any
	decode(t, rec, &resp)
	if resp["stockKeepingUnit"] != "BK-1" || resp["category_id"] != float64(2) || resp["is_active"] != true {
		t.Fatalf("unexpected payload: %+v", resp)
	}
	for _, k := range []string{"description", "image_url"} {
		if v, ok := resp[k]; !ok || v != nil {
			t.Fatalf("expected explicit null %s, got %+v", k, resp)
		}
	}
}

func TestProductHandler_Create_MalformedBody(t *testing.T) {
	e := newEcho()
	c := asAdmin(e.NewContext(jsonRequest(http.MethodPost, "/products", `{"price":"cheap"}`), httptest.NewRecorder()))

	if code := httpStatus(NewProductHandler(&stubCatalogService{}).Create(c)); code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", code)
	}
}

func TestProductHandler_List_Filters(t *testing.T) {
	e := newEcho()
	var got ports.ProductFilter
	stub := &stubCatalogService{
		listProductsFn: func(ctx context.Context, filter ports.ProductFilter) (*ports.ProductPage, error) {
			got = filter
			return &ports.ProductPage{Total: 3, Items: []*domain.Product{{ID: 1, SKU: "A-1"}}}, nil
		},
	}
	rec := httptest.NewRecorder()
	target := "/products?skip=2&limit=1&category_id=5&search=book&min_price=10&max_price=20.5&in_stock=no"
	c := e.NewContext(httptest.NewRequest(http.MethodGet, target, nil), rec)

	if err := NewProductHandler(stub).List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if got.Skip != 2 || got.Limit != 1 || got.Search != "book" {
		t.Fatalf("unexpected window/search: %+v", got)
	}
	if got.CategoryID == nil || *got.CategoryID != 5 {
		t.Fatalf("unexpected category filter: %v", got.CategoryID)
	}
	if got.MinPrice == nil || *got.MinPrice != 10 || got.MaxPrice == nil || *got.MaxPrice != 20.5 {
		t.Fatalf("unexpected price filter: %v %v", got.MinPrice, got.MaxPrice)
	}
	if got.InStock == nil || *got.InStock {
		t.Fatalf("expected in_stock=false filter, got %v", got.InStock)
	}

	var resp struct {
		Total int64            `json:"total"`
		Items []map[string]any `json:"items"`
	}
	decode(t, rec, &resp)
	if resp.Total != 3 || len(resp.Items) != 1 {
		t.Fatalf("unexpected page: %+v", resp)
	}
}

func TestProductHandler_List_NoFilters(t *testing.T) {
	e := newEcho()
	var got ports.ProductFilter
	stub := &stubCatalogService{
		listProductsFn: func(ctx context.Context, filter ports.ProductFilter) (*ports.ProductPage, error) {
			got = filter
			return &ports.ProductPage{}, nil
		},
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/products", nil), rec)

	if err := NewProductHandler(stub).List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if got.CategoryID != nil || got.MinPrice != nil || got.MaxPrice != nil || got.InStock != nil || got.Limit != 0 {
		t.Fatalf("expected empty filter, got %+v", got)
	}
	if !strings.Contains(rec.Body.String(), `"items":[]`) {
		t.Fatalf("expected empty items array, got %s", rec.Body.String())
	}
}

func TestProductHandler_List_InvalidQuery(t *testing.T) {
	for _, q := range []string{"?in_stock=maybe", "?min_price=ten", "?category_id=x", "?limit=-1"} {
		t.Run(q, func(t *testing.T) {
			e := newEcho()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/products"+q, nil), httptest.NewRecorder())
			if err := NewProductHandler(&stubCatalogService{}).List(c); !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestProductHandler_Get(t *testing.T) {
	e := newEcho()
	stub := &stubCatalogService{
		getProductFn: func(ctx context.Context, id int64) (*domain.Product, error) {
			if id == 404 {
				return nil, domain.ErrProductNotFound
			}
			return &domain.Product{ID: id, Name: "Pen"}, nil
		},
	}
	handler := NewProductHandler(stub)

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	c.SetParamNames("id")
	c.SetParamValues("12")
	if err := handler.Get(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues("404")
	if err := handler.Get(c); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues("abc")
	if err := handler.Get(c); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestProductHandler_Update_BuildsPatch(t *testing.T) {
	e := newEcho()
	var got domain.ProductPatch
	stub := &stubCatalogService{
		updateProductFn: func(ctx context.Context, actor *domain.User, id int64, patch domain.ProductPatch) (*domain.Product, error) {
			got = patch
			return &domain.Product{ID: id, Name: "Renamed"}, nil
		},
	}
	rec := httptest.NewRecorder()
	c := asAdmin(e.NewContext(jsonRequest(http.MethodPatch, "/", `{"name":"Renamed","category_id":null,"stock":0}`), rec))
	c.SetParamNames("id")
	c.SetParamValues("3")

	if err := NewProductHandler(stub).Update(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if name, ok := got.Name.Get(); !ok || name != "Renamed" {
		t.Fatalf("expected name present, got %q %v", name, ok)
	}
	if stock, ok := got.Stock.Get(); !ok || stock != 0 {
		t.Fatalf("expected explicit zero stock, got %d %v", stock, ok)
	}
	if cat, ok := got.CategoryID.Get(); !ok || cat != nil {
		t.Fatalf("expected category cleared, got %v %v", cat, ok)
	}
	if got.Price.Present() || got.SKU.Present() || got.Description.Present() || got.ImageURL.Present() || got.IsActive.Present() {
		t.Fatalf("absent fields must stay absent: %+v", got)
	}
}

func TestProductHandler_Update_NullOnRequiredField(t *testing.T) {
	e := newEcho()
	c := asAdmin(e.NewContext(jsonRequest(http.MethodPut, "/", `{"price":null}`), httptest.NewRecorder()))
	c.SetParamNames("id")
	c.SetParamValues("3")

	err := NewProductHandler(&stubCatalogService{}).Update(c)
	if !errors.Is(err, domain.ErrValidation) || !strings.Contains(err.Error(), "price") {
		t.Fatalf("expected price validation error, got %v", err)
	}
}

func TestProductHandler_Delete(t *testing.T) {
	e := newEcho()
	stub := &stubCatalogService{
		deleteProductFn: func(ctx context.Context, actor *domain.User, id int64) error {
			if actor.IsAdmin {
				return nil
			}
			return domain.ErrNotEnoughPrivilege
		},
	}
	handler := NewProductHandler(stub)

	rec := httptest.NewRecorder()
	c := asAdmin(e.NewContext(httptest.NewRequest(http.MethodDelete, "/", nil), rec))
	c.SetParamNames("id")
	c.SetParamValues("3")
	if err := handler.Delete(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}

	c = e.NewContext(httptest.NewRequest(http.MethodDelete, "/", nil), httptest.NewRecorder())
	c.Set(middleware.UserKey, &domain.User{ID: 2, IsActive: true})
	c.SetParamNames("id")
	c.SetParamValues("3")
	if err := handler.Delete(c); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

// --- Health ---

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthHandler_Readiness(t *testing.T) {
	e := newEcho()
	healthy := NewHealthHandler(map[string]ports.Pinger{
		"database": pingerFunc(func(context.Context) error { return nil }),
	}, zerolog.Nop())
	rec := httptest.NewRecorder()
	if err := healthy.Readiness(e.NewContext(httptest.NewRequest(http.MethodGet, "/health/ready", nil), rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	degraded := NewHealthHandler(map[string]ports.Pinger{
		"database": pingerFunc(func(context.Context) error { return nil }),
		"redis":    pingerFunc(func(context.Context) error { return errors.New("dial tcp 10.0.0.7:6379: connection refused") }),
	}, zerolog.Nop())
	rec = httptest.NewRecorder()
	if err := degraded.Readiness(e.NewContext(httptest.NewRequest(http.MethodGet, "/health/ready", nil), rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	var resp readinessResponse
	decode(t, rec, &resp)
	if resp.Status != "degraded" || resp.Dependencies["redis"].Status != "unhealthy" || resp.Dependencies["database"].Status != "ok" {
		t.Fatalf("unexpected readiness payload: %+v", resp)
	}
	if strings.Contains(rec.Body.String(), "connection refused") {
		t.Fatalf("dependency errors must not reach the client: %s", rec.Body.String())
	}
}
