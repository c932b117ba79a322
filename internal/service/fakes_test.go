package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"deposito-pos/internal/model"
	"deposito-pos/internal/repository"
	"deposito-pos/internal/session"
	"deposito-pos/internal/ws"

	"github.com/google/uuid"
)

// memStore backs every fake repository of this package's tests.
type memStore struct {
	mu         sync.Mutex
	accounts   map[uuid.UUID]model.Account
	products   map[uuid.UUID]model.Product
	sales      map[uuid.UUID]model.Sale
	categories map[uuid.UUID]model.Category

	// failSetStock makes SetStock fail for the listed products.
	failSetStock map[uuid.UUID]error
	setStockLog  []uuid.UUID
}

func newMemStore() *memStore {
	return &memStore{
		accounts:     map[uuid.UUID]model.Account{},
		products:     map[uuid.UUID]model.Product{},
		sales:        map[uuid.UUID]model.Sale{},
		categories:   map[uuid.UUID]model.Category{},
		failSetStock: map[uuid.UUID]error{},
	}
}

func assignID(b *model.BaseModel) {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	now := time.Now()
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	b.UpdatedAt = now
}

type memAccounts struct{ s *memStore }

func (r memAccounts) FindByEmail(_ context.Context, email string) (*model.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range r.s.accounts {
		if a.Email == email {
			return &a, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r memAccounts) FindByID(_ context.Context, id uuid.UUID) (*model.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.accounts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &a, nil
}

func (r memAccounts) Create(_ context.Context, a *model.Account) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, other := range r.s.accounts {
		if other.Email == a.Email {
			return repository.ErrDuplicate
		}
	}
	assignID(&a.BaseModel)
	r.s.accounts[a.ID] = *a
	return nil
}

func (r memAccounts) Update(_ context.Context, a *model.Account) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.accounts[a.ID] = *a
	return nil
}

func (r memAccounts) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.accounts[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.accounts, id)
	return nil
}

func (r memAccounts) FindAll(_ context.Context) ([]model.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]model.Account, 0, len(r.s.accounts))
	for _, a := range r.s.accounts {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r memAccounts) Count(_ context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.s.accounts)), nil
}

func (r memAccounts) patch(id uuid.UUID, fn func(*model.Account)) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.accounts[id]
	if !ok {
		return repository.ErrNotFound
	}
	fn(&a)
	r.s.accounts[id] = a
	return nil
}

func (r memAccounts) UpdatePassword(_ context.Context, id uuid.UUID, hash string) error {
	return r.patch(id, func(a *model.Account) { a.PasswordHash = hash })
}

func (r memAccounts) UpdateTokenVersion(_ context.Context, id uuid.UUID, version string) error {
	return r.patch(id, func(a *model.Account) { a.TokenVersion = version })
}

func (r memAccounts) UpdateLastSeen(_ context.Context, id uuid.UUID, at time.Time) error {
	return r.patch(id, func(a *model.Account) { a.LastSeenAt = &at })
}

type memProducts struct{ s *memStore }

func (r memProducts) Create(_ context.Context, p *model.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, other := range r.s.products {
		if other.Code == p.Code {
			return repository.ErrDuplicate
		}
	}
	assignID(&p.BaseModel)
	r.s.products[p.ID] = *p
	return nil
}

func (r memProducts) FindAll(_ context.Context, f repository.ProductFilter) ([]model.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.Product
	for _, p := range r.s.products {
		if f.Search != "" {
			q := strings.ToLower(f.Search)
			if !strings.Contains(strings.ToLower(p.Name), q) && !strings.Contains(strings.ToLower(p.Code), q) {
				continue
			}
		}
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		if f.ActiveOnly && !p.Active {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r memProducts) FindByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (r memProducts) FindByIDs(_ context.Context, ids []uuid.UUID) ([]model.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.Product
	for _, id := range ids {
		if p, ok := r.s.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r memProducts) FindByCode(_ context.Context, code string) (*model.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.products {
		if p.Code == code {
			return &p, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r memProducts) Update(_ context.Context, p *model.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.products[p.ID] = *p
	return nil
}

func (r memProducts) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.products[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.products, id)
	return nil
}

func (r memProducts) Count(_ context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.s.products)), nil
}

func (r memProducts) SetStock(_ context.Context, id uuid.UUID, stock int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failSetStock[id]; err != nil {
		return err
	}
	p, ok := r.s.products[id]
	if !ok {
		return repository.ErrNotFound
	}
	p.StockQuantity = stock
	r.s.products[id] = p
	r.s.setStockLog = append(r.s.setStockLog, id)
	return nil
}

func (r memProducts) DecrementStock(_ context.Context, id uuid.UUID, qty int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok || p.StockQuantity < qty {
		return repository.ErrInsufficientStock
	}
	p.StockQuantity -= qty
	r.s.products[id] = p
	return nil
}

type memSales struct{ s *memStore }

func (r memSales) Create(_ context.Context, sale *model.Sale) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	assignID(&sale.BaseModel)
	cp := *sale
	cp.Items = append([]model.SaleLineItem(nil), sale.Items...)
	r.s.sales[sale.ID] = cp
	return nil
}

func (r memSales) FindAll(_ context.Context, f repository.SaleFilter) ([]model.Sale, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.Sale
	for _, s := range r.s.sales {
		if f.Status != "" && s.Status != f.Status {
			continue
		}
		if !f.From.IsZero() && s.SoldAt.Before(f.From) {
			continue
		}
		if !f.To.IsZero() && s.SoldAt.After(f.To) {
			continue
		}
		if f.SellerID != uuid.Nil && s.SellerID != f.SellerID {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SoldAt.After(out[j].SoldAt) })
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (r memSales) FindByID(_ context.Context, id uuid.UUID) (*model.Sale, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	s, ok := r.s.sales[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &s, nil
}

func (r memSales) UpdateStatus(_ context.Context, id uuid.UUID, status model.SaleStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	s, ok := r.s.sales[id]
	if !ok {
		return repository.ErrNotFound
	}
	s.Status = status
	r.s.sales[id] = s
	return nil
}

func (r memSales) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.sales[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.sales, id)
	return nil
}

func (r memSales) Count(_ context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.s.sales)), nil
}

type memCategories struct{ s *memStore }

func (r memCategories) FindAll(_ context.Context) ([]model.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.Category
	for _, c := range r.s.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r memCategories) Create(_ context.Context, c *model.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, other := range r.s.categories {
		if other.Name == c.Name {
			return repository.ErrDuplicate
		}
	}
	assignID(&c.BaseModel)
	r.s.categories[c.ID] = *c
	return nil
}

func (r memCategories) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.categories[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.categories, id)
	return nil
}

func (r memCategories) SeedDefaults(ctx context.Context) (int, error) {
	n := 0
	for _, c := range model.DefaultCategories {
		c := c
		if err := r.Create(ctx, &c); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				continue
			}
			return n, err
		}
		n++
	}
	return n, nil
}

// memTx restores products and sales when fn fails.
type memTx struct{ s *memStore }

func (t memTx) Run(_ context.Context, fn func(repository.Stores) error) error {
	t.s.mu.Lock()
	products := make(map[uuid.UUID]model.Product, len(t.s.products))
	for k, v := range t.s.products {
		products[k] = v
	}
	sales := make(map[uuid.UUID]model.Sale, len(t.s.sales))
	for k, v := range t.s.sales {
		sales[k] = v
	}
	t.s.mu.Unlock()

	err := fn(repository.Stores{Sales: memSales{t.s}, Products: memProducts{t.s}})
	if err != nil {
		t.s.mu.Lock()
		t.s.products = products
		t.s.sales = sales
		t.s.mu.Unlock()
	}
	return err
}

// captureHub records every broadcast event.
type captureHub struct {
	mu     sync.Mutex
	events []ws.Event
}

func (h *captureHub) BroadcastJSON(v any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ev, ok := v.(ws.Event); ok {
		h.events = append(h.events, ev)
	}
}

func (h *captureHub) types() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, len(h.events))
	for i, ev := range h.events {
		out[i] = ev.Type
	}
	return out
}

// memLimiter allows max attempts per key until Reset.
type memLimiter struct {
	mu    sync.Mutex
	max   int
	count map[string]int
}

func newMemLimiter(max int) *memLimiter {
	return &memLimiter{max: max, count: map[string]int{}}
}

func (l *memLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.count[key]++
	return l.count[key] <= l.max, nil
}

func (l *memLimiter) Reset(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.count, key)
	return nil
}

func asSession(ctx context.Context, a *model.Account) context.Context {
	return session.WithSession(ctx, session.FromAccount(a))
}
