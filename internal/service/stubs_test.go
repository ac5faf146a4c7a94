package service

import (
	"context"
	"sort"
	"time"

	"stockroom/internal/dto"
	"stockroom/internal/model"
	"stockroom/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// In-memory repository stubs. Services run with a nil *gorm.DB, so runTx
// invokes the transactional closures directly and every *Tx method receives
// tx == nil. None of the stubs roll back — tests relying on atomicity assert
// that failures happen before any write.

// ─── products ────────────────────────────────────────────────────────────────

type stubProductRepo struct {
	products map[uuid.UUID]*model.Product
	// onLock runs when FindByIDForUpdateTx is called, standing in for a
	// concurrent writer that commits while this transaction waits for the
	// product row lock.
	onLock func()
}

var _ repository.ProductRepository = (*stubProductRepo)(nil)

func newStubProductRepo(products ...*model.Product) *stubProductRepo {
	r := &stubProductRepo{products: make(map[uuid.UUID]*model.Product)}
	for _, p := range products {
		if p.ID == uuid.Nil {
			p.ID = uuid.New()
		}
		r.products[p.ID] = p
	}
	return r
}

func (r *stubProductRepo) Create(_ context.Context, p *model.Product) error {
	for _, existing := range r.products {
		if existing.Code == p.Code {
			return gorm.ErrDuplicatedKey
		}
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.products[p.ID] = p
	return nil
}

func (r *stubProductRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (r *stubProductRepo) FindByCode(_ context.Context, code string) (*model.Product, error) {
	for _, p := range r.products {
		if p.Code == code {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubProductRepo) List(_ context.Context, _ dto.ProductFilter) ([]model.Product, int64, error) {
	out := make([]model.Product, 0, len(r.products))
	for _, p := range r.products {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, int64(len(out)), nil
}

func (r *stubProductRepo) Update(_ context.Context, p *model.Product) error {
	r.products[p.ID] = p
	return nil
}

func (r *stubProductRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.products, id)
	return nil
}

func (r *stubProductRepo) FindByIDForUpdateTx(_ *gorm.DB, id uuid.UUID) (*model.Product, error) {
	if r.onLock != nil {
		r.onLock()
	}
	return r.FindByID(context.Background(), id)
}

func (r *stubProductRepo) SetStockTx(_ *gorm.DB, id uuid.UUID, stock int) error {
	p, ok := r.products[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Stock = stock
	return nil
}

func (r *stubProductRepo) DB() *gorm.DB { return nil }

// ─── stock mutations ─────────────────────────────────────────────────────────

type stubMutationRepo struct {
	mutations []model.StockMutation
}

var _ repository.StockMutationRepository = (*stubMutationRepo)(nil)

func (r *stubMutationRepo) CreateTx(_ *gorm.DB, m *model.StockMutation) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	m.CreatedAt = time.Now()
	r.mutations = append(r.mutations, *m)
	return nil
}

func (r *stubMutationRepo) FindByID(_ context.Context, id uuid.UUID) (*model.StockMutation, error) {
	for i := range r.mutations {
		if r.mutations[i].ID == id {
			return &r.mutations[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubMutationRepo) List(_ context.Context, _ dto.StockMutationFilter) ([]model.StockMutation, int64, error) {
	return r.mutations, int64(len(r.mutations)), nil
}

func (r *stubMutationRepo) ListByProduct(_ context.Context, productID uuid.UUID) ([]model.StockMutation, error) {
	var out []model.StockMutation
	for _, m := range r.mutations {
		if m.ProductID == productID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *stubMutationRepo) LatestByProductTx(_ *gorm.DB, productID uuid.UUID) (*model.StockMutation, error) {
	for i := len(r.mutations) - 1; i >= 0; i-- {
		if r.mutations[i].ProductID == productID {
			return &r.mutations[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubMutationRepo) byProduct(productID uuid.UUID) []model.StockMutation {
	out, _ := r.ListByProduct(context.Background(), productID)
	return out
}

// ─── stock cards ─────────────────────────────────────────────────────────────

type stubCardRepo struct {
	cards map[uuid.UUID]*model.StockCard
}

var _ repository.StockCardRepository = (*stubCardRepo)(nil)

func newStubCardRepo(cards ...*model.StockCard) *stubCardRepo {
	r := &stubCardRepo{cards: make(map[uuid.UUID]*model.StockCard)}
	for _, c := range cards {
		if c.ID == uuid.Nil {
			c.ID = uuid.New()
		}
		r.cards[c.ID] = c
	}
	return r
}

func (r *stubCardRepo) Create(_ context.Context, c *model.StockCard) error {
	return r.CreateTx(nil, c)
}

func (r *stubCardRepo) CreateTx(_ *gorm.DB, c *model.StockCard) error {
	for _, existing := range r.cards {
		if existing.ProductID == c.ProductID && existing.Date.Equal(c.Date) {
			return gorm.ErrDuplicatedKey
		}
	}
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.cards[c.ID] = c
	return nil
}

func (r *stubCardRepo) FindByID(_ context.Context, id uuid.UUID) (*model.StockCard, error) {
	c, ok := r.cards[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

// FindByIDTx returns a copy, like a real scan: the caller edits its own
// struct and persists it with UpdateTx.
func (r *stubCardRepo) FindByIDTx(_ *gorm.DB, id uuid.UUID) (*model.StockCard, error) {
	c, ok := r.cards[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *stubCardRepo) FindByProductAndDate(_ context.Context, productID uuid.UUID, date time.Time) (*model.StockCard, error) {
	return r.FindByProductAndDateTx(nil, productID, date)
}

func (r *stubCardRepo) FindByProductAndDateTx(_ *gorm.DB, productID uuid.UUID, date time.Time) (*model.StockCard, error) {
	for _, c := range r.cards {
		if c.ProductID == productID && c.Date.Equal(date) {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubCardRepo) LatestByProduct(_ context.Context, productID uuid.UUID) (*model.StockCard, error) {
	return r.LatestByProductTx(nil, productID)
}

func (r *stubCardRepo) LatestByProductTx(_ *gorm.DB, productID uuid.UUID) (*model.StockCard, error) {
	var latest *model.StockCard
	for _, c := range r.cards {
		if c.ProductID != productID {
			continue
		}
		if latest == nil || c.Date.After(latest.Date) {
			latest = c
		}
	}
	if latest == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return latest, nil
}

func (r *stubCardRepo) List(_ context.Context, _ dto.StockCardFilter) ([]model.StockCard, int64, error) {
	out := make([]model.StockCard, 0, len(r.cards))
	for _, c := range r.cards {
		out = append(out, *c)
	}
	return out, int64(len(out)), nil
}

func (r *stubCardRepo) ListByProduct(_ context.Context, productID uuid.UUID) ([]model.StockCard, error) {
	var out []model.StockCard
	for _, c := range r.cards {
		if c.ProductID == productID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *stubCardRepo) Update(_ context.Context, c *model.StockCard) error {
	return r.UpdateTx(nil, c)
}

func (r *stubCardRepo) UpdateTx(_ *gorm.DB, c *model.StockCard) error {
	r.cards[c.ID] = c
	return nil
}

func (r *stubCardRepo) DeleteTx(_ *gorm.DB, id uuid.UUID) error {
	delete(r.cards, id)
	return nil
}

func (r *stubCardRepo) byProduct(productID uuid.UUID) []model.StockCard {
	out, _ := r.ListByProduct(context.Background(), productID)
	return out
}

// ─── orders ──────────────────────────────────────────────────────────────────

type stubOrderRepo struct {
	orders map[uuid.UUID]*model.Order
	// failCreates makes the next N CreateTx calls fail with ErrDuplicatedKey,
	// for exercising the order-number retry.
	failCreates int
}

var _ repository.OrderRepository = (*stubOrderRepo)(nil)

func newStubOrderRepo() *stubOrderRepo {
	return &stubOrderRepo{orders: make(map[uuid.UUID]*model.Order)}
}

func (r *stubOrderRepo) CreateTx(_ *gorm.DB, o *model.Order) error {
	if r.failCreates > 0 {
		r.failCreates--
		return gorm.ErrDuplicatedKey
	}
	for _, existing := range r.orders {
		if existing.OrderNumber == o.OrderNumber {
			return gorm.ErrDuplicatedKey
		}
	}
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	for i := range o.Details {
		if o.Details[i].ID == uuid.Nil {
			o.Details[i].ID = uuid.New()
		}
		o.Details[i].OrderID = o.ID
	}
	o.CreatedAt = time.Now()
	r.orders[o.ID] = o
	return nil
}

func (r *stubOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return o, nil
}

func (r *stubOrderRepo) FindByIDForUpdateTx(_ *gorm.DB, id uuid.UUID) (*model.Order, error) {
	return r.FindByID(context.Background(), id)
}

func (r *stubOrderRepo) List(_ context.Context, filter dto.OrderFilter) ([]model.Order, int64, error) {
	var out []model.Order
	for _, o := range r.orders {
		if filter.UserID != "" && o.UserID.String() != filter.UserID {
			continue
		}
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		out = append(out, *o)
	}
	return out, int64(len(out)), nil
}

func (r *stubOrderRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]model.Order, error) {
	var out []model.Order
	for _, o := range r.orders {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (r *stubOrderRepo) UpdateStatusTx(_ *gorm.DB, id uuid.UUID, status string) error {
	o, ok := r.orders[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	o.Status = status
	return nil
}

func (r *stubOrderRepo) DB() *gorm.DB { return nil }

// ─── users ───────────────────────────────────────────────────────────────────

type stubUserRepo struct {
	users map[uuid.UUID]*model.User
}

var _ repository.UserRepository = (*stubUserRepo)(nil)

func newStubUserRepo(users ...*model.User) *stubUserRepo {
	r := &stubUserRepo{users: make(map[uuid.UUID]*model.User)}
	for _, u := range users {
		if u.ID == uuid.Nil {
			u.ID = uuid.New()
		}
		r.users[u.ID] = u
	}
	return r
}

func (r *stubUserRepo) Create(_ context.Context, u *model.User) error {
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	r.users[u.ID] = u
	return nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range r.users {
		if u.Email == email && u.Active {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (r *stubUserRepo) List(_ context.Context) ([]model.User, error) {
	var out []model.User
	for _, u := range r.users {
		if u.Active {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *stubUserRepo) ListAll(_ context.Context) ([]model.User, error) {
	var out []model.User
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out, nil
}

func (r *stubUserRepo) Update(_ context.Context, u *model.User) error {
	r.users[u.ID] = u
	return nil
}

func (r *stubUserRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	u, ok := r.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.Active = false
	return nil
}

func (r *stubUserRepo) Reactivate(_ context.Context, id uuid.UUID) error {
	u, ok := r.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.Active = true
	return nil
}
