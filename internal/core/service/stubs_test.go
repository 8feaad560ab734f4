package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopfront/catalog-api/internal/core/domain"
	"github.com/shopfront/catalog-api/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Users
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	users  map[int64]*domain.User
	nextID int64
	err    error // returned by every lookup when set
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[int64]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == user.Email || u.Username == user.Username {
			return nil, domain.ErrUserExists
		}
	}
	r.nextID++
	stored := cloneUser(user)
	stored.ID = r.nextID
	r.users[stored.ID] = stored
	return cloneUser(stored), nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id int64) (*domain.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	if u, ok := r.users[id]; ok {
		return cloneUser(u), nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	for _, u := range r.users {
		if u.Username == username {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) UpdateFlags(_ context.Context, id int64, isActive, isAdmin bool) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	u.IsActive, u.IsAdmin = isActive, isAdmin
	return cloneUser(u), nil
}

// plainHasher is a reversible hasher that keeps tests fast.
type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }

func (plainHasher) Verify(password, hashed string) bool { return hashed == "hashed:"+password }

// stubTokens issues the subject itself as the token.
type stubTokens struct {
	issued  []string
	lastTTL time.Duration
}

func (s *stubTokens) Issue(subject string, ttl time.Duration) (string, error) {
	s.issued = append(s.issued, subject)
	s.lastTTL = ttl
	return "tok:" + subject, nil
}

func (s *stubTokens) Verify(token string) (string, error) {
	subject, ok := strings.CutPrefix(token, "tok:")
	if !ok || subject == "" {
		return "", domain.ErrInvalidToken
	}
	return subject, nil
}

// ---------------------------------------------------------------------------
// Catalog
// ---------------------------------------------------------------------------

type stubCategoryRepo struct {
	byID   map[int64]*domain.Category
	nextID int64
}

func newStubCategoryRepo() *stubCategoryRepo {
	return &stubCategoryRepo{byID: make(map[int64]*domain.Category)}
}

func (r *stubCategoryRepo) Create(_ context.Context, c *domain.Category) (*domain.Category, error) {
	for _, existing := range r.byID {
		if existing.Name == c.Name {
			return nil, domain.ErrCategoryExists
		}
	}
	r.nextID++
	stored := *c
	stored.ID = r.nextID
	r.byID[stored.ID] = &stored
	out := stored
	return &out, nil
}

func (r *stubCategoryRepo) FindByID(_ context.Context, id int64) (*domain.Category, error) {
	if c, ok := r.byID[id]; ok {
		out := *c
		return &out, nil
	}
	return nil, domain.ErrCategoryNotFound
}

func (r *stubCategoryRepo) FindByName(_ context.Context, name string) (*domain.Category, error) {
	for _, c := range r.byID {
		if c.Name == name {
			out := *c
			return &out, nil
		}
	}
	return nil, domain.ErrCategoryNotFound
}

func (r *stubCategoryRepo) List(_ context.Context, skip, limit int) ([]*domain.Category, error) {
	ids := make([]int64, 0, len(r.byID))
	for id := range r.byID {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := []*domain.Category{}
	for i, id := range ids {
		if i < skip || len(out) >= limit {
			continue
		}
		c := *r.byID[id]
		out = append(out, &c)
	}
	return out, nil
}

func (r *stubCategoryRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.byID[id]; !ok {
		return domain.ErrCategoryNotFound
	}
	delete(r.byID, id)
	return nil
}

type stubProductRepo struct {
	byID       map[int64]*domain.Product
	nextID     int64
	lastFilter ports.ProductFilter
	findCalls  int
	// afterFind runs once a FindByID has read its row.
	afterFind func(id int64)
}

func newStubProductRepo() *stubProductRepo {
	return &stubProductRepo{byID: make(map[int64]*domain.Product)}
}

func cloneProduct(p *domain.Product) *domain.Product {
	if p == nil {
		return nil
	}
	clone := *p
	return &clone
}

func (r *stubProductRepo) Create(_ context.Context, p *domain.Product) (*domain.Product, error) {
	for _, existing := range r.byID {
		if existing.SKU == p.SKU {
			return nil, domain.ErrSKUExists
		}
	}
	r.nextID++
	stored := cloneProduct(p)
	stored.ID = r.nextID
	r.byID[stored.ID] = stored
	return cloneProduct(stored), nil
}

func (r *stubProductRepo) FindByID(_ context.Context, id int64) (*domain.Product, error) {
	r.findCalls++
	if p, ok := r.byID[id]; ok {
		found := cloneProduct(p)
		if hook := r.afterFind; hook != nil {
			r.afterFind = nil
			hook(id)
		}
		return found, nil
	}
	return nil, domain.ErrProductNotFound
}

func (r *stubProductRepo) FindBySKU(_ context.Context, sku string) (*domain.Product, error) {
	for _, p := range r.byID {
		if p.SKU == sku {
			return cloneProduct(p), nil
		}
	}
	return nil, domain.ErrProductNotFound
}

func (r *stubProductRepo) List(_ context.Context, f ports.ProductFilter) ([]*domain.Product, int64, error) {
	r.lastFilter = f
	ids := make([]int64, 0, len(r.byID))
	for id := range r.byID {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var matched []*domain.Product
	for _, id := range ids {
		p := r.byID[id]
		if f.CategoryID != nil && (p.CategoryID == nil || *p.CategoryID != *f.CategoryID) {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(f.Search)) {
			continue
		}
		if f.MinPrice != nil && p.Price < *f.MinPrice {
			continue
		}
		if f.MaxPrice != nil && p.Price > *f.MaxPrice {
			continue
		}
		if f.InStock != nil && (p.Stock > 0) != *f.InStock {
			continue
		}
		matched = append(matched, cloneProduct(p))
	}

	total := int64(len(matched))
	if f.Skip >= len(matched) {
		return nil, total, nil
	}
	end := f.Skip + f.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[f.Skip:end], total, nil
}

func (r *stubProductRepo) Update(_ context.Context, p *domain.Product) (*domain.Product, error) {
	if _, ok := r.byID[p.ID]; !ok {
		return nil, domain.ErrProductNotFound
	}
	r.byID[p.ID] = cloneProduct(p)
	return cloneProduct(p), nil
}

func (r *stubProductRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.byID[id]; !ok {
		return domain.ErrProductNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *stubProductRepo) CountByCategory(_ context.Context, categoryID int64) (int64, error) {
	var n int64
	for _, p := range r.byID {
		if p.CategoryID != nil && *p.CategoryID == categoryID {
			n++
		}
	}
	return n, nil
}

type stubCache struct {
	items       map[int64]*domain.Product
	generations map[int64]int64
	getErr      error
	invalidated []int64
}

func newStubCache() *stubCache {
	return &stubCache{items: make(map[int64]*domain.Product), generations: make(map[int64]int64)}
}

func (c *stubCache) Get(_ context.Context, id int64) (*domain.Product, int64, error) {
	if c.getErr != nil {
		return nil, 0, c.getErr
	}
	return cloneProduct(c.items[id]), c.generations[id], nil
}

func (c *stubCache) Set(_ context.Context, p *domain.Product, generation int64) error {
	if c.generations[p.ID] != generation {
		return nil
	}
	c.items[p.ID] = cloneProduct(p)
	return nil
}

func (c *stubCache) Invalidate(_ context.Context, id int64) error {
	c.generations[id]++
	delete(c.items, id)
	c.invalidated = append(c.invalidated, id)
	return nil
}

type recordingEmitter struct {
	mu     sync.Mutex
	events []domain.CatalogEvent
}

func (e *recordingEmitter) Emit(event domain.CatalogEvent) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, event)
}

func (e *recordingEmitter) types() []domain.CatalogEventType {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]domain.CatalogEventType, 0, len(e.events))
	for _, ev := range e.events {
		out = append(out, ev.Type)
	}
	return out
}

var errStoreDown = errors.New("store unavailable")

func ptr[T any](v T) *T { return &v }

var (
	adminUser    = &domain.User{ID: 1, Email: "admin@example.com", Username: "admin", IsActive: true, IsAdmin: true}
	customerUser = &domain.User{ID: 2, Email: "bob@example.com", Username: "bob", IsActive: true}
	inactiveUser = &domain.User{ID: 3, Email: "gone@example.com", Username: "gone", IsActive: false, IsAdmin: true}
)
