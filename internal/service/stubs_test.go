package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/T0MGL/0rdefy-sub002/internal/dto"
	"github.com/T0MGL/0rdefy-sub002/internal/model"
	"github.com/T0MGL/0rdefy-sub002/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// In-memory repository stubs. DB() returns nil so services run their
// transaction bodies directly without a live gorm connection.

var errNotFound = errors.New("record not found")

// ── ProductRepository ─────────────────────────────────────────────────────────

type stubProductRepo struct {
	mu       sync.Mutex
	products map[uuid.UUID]*model.Product
	variants map[uuid.UUID]*model.ProductVariant
	// openOrderRefs marks products referenced by a non-terminal order.
	openOrderRefs map[uuid.UUID]bool
}

func newStubProductRepo() *stubProductRepo {
	return &stubProductRepo{
		products:      make(map[uuid.UUID]*model.Product),
		variants:      make(map[uuid.UUID]*model.ProductVariant),
		openOrderRefs: make(map[uuid.UUID]bool),
	}
}

func (r *stubProductRepo) DB() *gorm.DB { return nil }

func (r *stubProductRepo) Create(_ context.Context, p *model.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *stubProductRepo) FindByID(_ context.Context, storeID, id uuid.UUID) (*model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok || p.StoreID != storeID {
		return nil, errNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *stubProductRepo) FindBySKU(_ context.Context, storeID uuid.UUID, sku string) (*model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.products {
		if p.StoreID == storeID && p.Active && p.SKU != nil && *p.SKU == sku {
			cp := *p
			return &cp, nil
		}
	}
	return nil, errNotFound
}

func (r *stubProductRepo) FindByExternalRef(_ context.Context, storeID uuid.UUID, ref string) (*model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.products {
		if p.StoreID == storeID && p.Active && p.ExternalRef != nil && *p.ExternalRef == ref {
			cp := *p
			return &cp, nil
		}
	}
	return nil, errNotFound
}

func (r *stubProductRepo) List(_ context.Context, filter dto.ProductFilter) ([]model.Product, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Product
	for _, p := range r.products {
		if p.StoreID != filter.StoreID {
			continue
		}
		if filter.LowStockBelow > 0 && p.Stock >= filter.LowStockBelow {
			continue
		}
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (r *stubProductRepo) ListAll(_ context.Context, storeID uuid.UUID) ([]model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Product
	for _, p := range r.products {
		if p.StoreID != storeID {
			continue
		}
		cp := *p
		cp.Variants = nil
		for _, v := range r.variants {
			if v.ProductID == p.ID {
				cp.Variants = append(cp.Variants, *v)
			}
		}
		out = append(out, cp)
	}
	return out, nil
}

func (r *stubProductRepo) Update(_ context.Context, p *model.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *stubProductRepo) Deactivate(_ context.Context, storeID, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok || p.StoreID != storeID {
		return errNotFound
	}
	p.Active = false
	return nil
}

func (r *stubProductRepo) CreateVariant(_ context.Context, v *model.ProductVariant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	cp := *v
	r.variants[v.ID] = &cp
	return nil
}

func (r *stubProductRepo) FindVariantByID(_ context.Context, id uuid.UUID) (*model.ProductVariant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.variants[id]
	if !ok {
		return nil, errNotFound
	}
	cp := *v
	return &cp, nil
}

func (r *stubProductRepo) FindVariantByExternalRef(_ context.Context, storeID uuid.UUID, ref string) (*model.ProductVariant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, v := range r.variants {
		if v.ExternalRef == nil || *v.ExternalRef != ref {
			continue
		}
		p, ok := r.products[v.ProductID]
		if ok && p.StoreID == storeID {
			cp := *v
			return &cp, nil
		}
	}
	return nil, errNotFound
}

func (r *stubProductRepo) ListVariants(_ context.Context, productID uuid.UUID) ([]model.ProductVariant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.ProductVariant
	for _, v := range r.variants {
		if v.ProductID == productID {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (r *stubProductRepo) ReferencedByOpenOrder(_ context.Context, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.openOrderRefs[id], nil
}

func (r *stubProductRepo) FindByIDForUpdateTx(_ *gorm.DB, id uuid.UUID) (*model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, errNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *stubProductRepo) FindVariantByIDForUpdateTx(_ *gorm.DB, id uuid.UUID) (*model.ProductVariant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.variants[id]
	if !ok {
		return nil, errNotFound
	}
	cp := *v
	return &cp, nil
}

func (r *stubProductRepo) UpdateStockTx(_ *gorm.DB, id uuid.UUID, delta int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return errNotFound
	}
	p.Stock += delta
	return nil
}

func (r *stubProductRepo) UpdateVariantStockTx(_ *gorm.DB, id uuid.UUID, delta int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.variants[id]
	if !ok {
		return errNotFound
	}
	v.Stock += delta
	return nil
}

func (r *stubProductRepo) SetStockTx(_ *gorm.DB, id uuid.UUID, stock int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return errNotFound
	}
	p.Stock = stock
	return nil
}

func (r *stubProductRepo) SetVariantStockTx(_ *gorm.DB, id uuid.UUID, stock int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.variants[id]
	if !ok {
		return errNotFound
	}
	v.Stock = stock
	return nil
}

var _ repository.ProductRepository = (*stubProductRepo)(nil)

// ── OrderRepository ───────────────────────────────────────────────────────────

type stubOrderRepo struct {
	mu     sync.Mutex
	orders map[uuid.UUID]*model.Order
}

func newStubOrderRepo() *stubOrderRepo {
	return &stubOrderRepo{orders: make(map[uuid.UUID]*model.Order)}
}

func (r *stubOrderRepo) DB() *gorm.DB { return nil }

func (r *stubOrderRepo) Create(_ context.Context, _ *gorm.DB, o *model.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	for i := range o.Items {
		if o.Items[i].ID == uuid.Nil {
			o.Items[i].ID = uuid.New()
		}
		o.Items[i].OrderID = o.ID
	}
	cp := *o
	cp.Items = append([]model.OrderLineItem(nil), o.Items...)
	r.orders[o.ID] = &cp
	return nil
}

func (r *stubOrderRepo) snapshot(o *model.Order) *model.Order {
	cp := *o
	cp.Items = append([]model.OrderLineItem(nil), o.Items...)
	return &cp
}

func (r *stubOrderRepo) FindByID(_ context.Context, storeID, id uuid.UUID) (*model.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok || o.StoreID != storeID {
		return nil, errNotFound
	}
	return r.snapshot(o), nil
}

func (r *stubOrderRepo) List(_ context.Context, filter dto.OrderFilter) ([]model.Order, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Order
	for _, o := range r.orders {
		if filter.StoreID != "" && o.StoreID.String() != filter.StoreID {
			continue
		}
		if filter.Status != "" && filter.Status != "all" && string(o.SleevesStatus) != filter.Status {
			continue
		}
		out = append(out, *r.snapshot(o))
	}
	return out, int64(len(out)), nil
}

func (r *stubOrderRepo) FindByIDForUpdateTx(_ *gorm.DB, storeID, id uuid.UUID) (*model.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok || o.StoreID != storeID {
		return nil, errNotFound
	}
	return r.snapshot(o), nil
}

func (r *stubOrderRepo) UpdateStatusTx(_ *gorm.DB, id uuid.UUID, status model.OrderStatus, expectedVersion int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return errNotFound
	}
	if o.Version != expectedVersion {
		return repository.ErrVersionConflict
	}
	o.SleevesStatus = status
	o.Version++
	return nil
}

func (r *stubOrderRepo) UpdateLineItemTx(_ *gorm.DB, item *model.OrderLineItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[item.OrderID]
	if !ok {
		return errNotFound
	}
	for i := range o.Items {
		if o.Items[i].ID == item.ID {
			o.Items[i].StockDeducted = item.StockDeducted
			o.Items[i].StockDeductedAt = item.StockDeductedAt
			o.Items[i].UnitsPerPack = item.UnitsPerPack
			return nil
		}
	}
	return errNotFound
}

func (r *stubOrderRepo) ReplaceLineItemsTx(_ *gorm.DB, orderID uuid.UUID, items []model.OrderLineItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[orderID]
	if !ok {
		return errNotFound
	}
	for i := range items {
		if items[i].ID == uuid.Nil {
			items[i].ID = uuid.New()
		}
		items[i].OrderID = orderID
	}
	o.Items = append([]model.OrderLineItem(nil), items...)
	return nil
}

func (r *stubOrderRepo) HardDeleteTx(_ *gorm.DB, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.orders, id)
	return nil
}

func (r *stubOrderRepo) ListUnmappedLineItems(_ context.Context, storeID uuid.UUID) ([]model.OrderLineItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.OrderLineItem
	for _, o := range r.orders {
		if o.StoreID != storeID {
			continue
		}
		for _, item := range o.Items {
			if item.ProductID == nil {
				out = append(out, item)
			}
		}
	}
	return out, nil
}

var _ repository.OrderRepository = (*stubOrderRepo)(nil)

// ── MovementRepository ────────────────────────────────────────────────────────

// stubMovementRepo keeps every ledger row and replays pools the way the
// SQL implementation does. It needs the product stub to classify variant
// movements into shared vs. independent pools.
type stubMovementRepo struct {
	mu        sync.Mutex
	movements []model.InventoryMovement
	products  *stubProductRepo
}

func newStubMovementRepo(products *stubProductRepo) *stubMovementRepo {
	return &stubMovementRepo{products: products}
}

func (r *stubMovementRepo) Create(_ context.Context, m *model.InventoryMovement) error {
	return r.CreateTx(nil, m)
}

func (r *stubMovementRepo) CreateTx(_ *gorm.DB, m *model.InventoryMovement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	r.movements = append(r.movements, *m)
	return nil
}

func (r *stubMovementRepo) List(_ context.Context, filter repository.MovementFilter) ([]model.InventoryMovement, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.InventoryMovement
	for _, m := range r.movements {
		if m.StoreID != filter.StoreID {
			continue
		}
		if filter.ProductID != nil && m.ProductID != *filter.ProductID {
			continue
		}
		if filter.OrderID != nil && (m.OrderID == nil || *m.OrderID != *filter.OrderID) {
			continue
		}
		if filter.MovementType != "" && m.MovementType != filter.MovementType {
			continue
		}
		out = append(out, m)
	}
	return out, int64(len(out)), nil
}

func (r *stubMovementRepo) SumProductPools(_ context.Context, storeID uuid.UUID) (map[uuid.UUID]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sums := make(map[uuid.UUID]int)
	for _, m := range r.movements {
		if m.StoreID != storeID {
			continue
		}
		if m.VariantID != nil {
			v, ok := r.products.variants[*m.VariantID]
			if !ok || !v.UsesSharedStock {
				continue
			}
		}
		sums[m.ProductID] += m.QuantityChange
	}
	return sums, nil
}

func (r *stubMovementRepo) SumVariationPools(_ context.Context, storeID uuid.UUID) (map[uuid.UUID]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sums := make(map[uuid.UUID]int)
	for _, m := range r.movements {
		if m.StoreID != storeID || m.VariantID == nil {
			continue
		}
		v, ok := r.products.variants[*m.VariantID]
		if !ok || v.UsesSharedStock {
			continue
		}
		sums[*m.VariantID] += m.QuantityChange
	}
	return sums, nil
}

// byType counts ledger rows of one movement type, for assertions.
func (r *stubMovementRepo) byType(movementType string) []model.InventoryMovement {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.InventoryMovement
	for _, m := range r.movements {
		if m.MovementType == movementType {
			out = append(out, m)
		}
	}
	return out
}

var _ repository.MovementRepository = (*stubMovementRepo)(nil)

// ── CustomerRepository ────────────────────────────────────────────────────────

type stubCustomerRepo struct {
	mu        sync.Mutex
	customers map[uuid.UUID]*model.Customer
	orders    *stubOrderRepo
}

func newStubCustomerRepo(orders *stubOrderRepo) *stubCustomerRepo {
	return &stubCustomerRepo{customers: make(map[uuid.UUID]*model.Customer), orders: orders}
}

func (r *stubCustomerRepo) Create(_ context.Context, c *model.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	cp := *c
	r.customers[c.ID] = &cp
	return nil
}

func (r *stubCustomerRepo) FindByID(_ context.Context, storeID, id uuid.UUID) (*model.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.customers[id]
	if !ok || c.StoreID != storeID {
		return nil, errNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *stubCustomerRepo) List(_ context.Context, storeID uuid.UUID) ([]model.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Customer
	for _, c := range r.customers {
		if c.StoreID == storeID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *stubCustomerRepo) BumpAggregatesTx(_ *gorm.DB, id uuid.UUID, orderDelta int, spentDelta decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.customers[id]
	if !ok {
		return errNotFound
	}
	c.TotalOrders += orderDelta
	c.TotalSpent = c.TotalSpent.Add(spentDelta)
	return nil
}

func (r *stubCustomerRepo) ComputeAggregates(_ context.Context, storeID uuid.UUID) ([]repository.CustomerAggregate, error) {
	r.orders.mu.Lock()
	defer r.orders.mu.Unlock()
	byCustomer := make(map[uuid.UUID]*repository.CustomerAggregate)
	for _, o := range r.orders.orders {
		if o.StoreID != storeID || o.CustomerID == nil {
			continue
		}
		if o.SleevesStatus == model.StatusCancelled || o.SleevesStatus == model.StatusRejected {
			continue
		}
		agg, ok := byCustomer[*o.CustomerID]
		if !ok {
			agg = &repository.CustomerAggregate{CustomerID: *o.CustomerID, TotalSpent: decimal.Zero}
			byCustomer[*o.CustomerID] = agg
		}
		agg.TotalOrders++
		agg.TotalSpent = agg.TotalSpent.Add(o.TotalAmount)
	}
	out := make([]repository.CustomerAggregate, 0, len(byCustomer))
	for _, agg := range byCustomer {
		out = append(out, *agg)
	}
	return out, nil
}

func (r *stubCustomerRepo) SetAggregates(_ context.Context, id uuid.UUID, totalOrders int, totalSpent decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.customers[id]
	if !ok {
		return errNotFound
	}
	c.TotalOrders = totalOrders
	c.TotalSpent = totalSpent
	return nil
}

var _ repository.CustomerRepository = (*stubCustomerRepo)(nil)

// ── SequenceRepository ────────────────────────────────────────────────────────

type stubSequenceRepo struct {
	mu   sync.Mutex
	rows map[string]int
}

func newStubSequenceRepo() *stubSequenceRepo {
	return &stubSequenceRepo{rows: make(map[string]int)}
}

func (r *stubSequenceRepo) NextTx(_ *gorm.DB, scope, day string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := scope + "|" + day
	r.rows[key]++
	return r.rows[key], nil
}

var _ repository.SequenceRepository = (*stubSequenceRepo)(nil)

// ── SettlementRepository ──────────────────────────────────────────────────────

type stubSettlementRepo struct {
	mu          sync.Mutex
	settlements map[uuid.UUID]*model.Settlement
}

func newStubSettlementRepo() *stubSettlementRepo {
	return &stubSettlementRepo{settlements: make(map[uuid.UUID]*model.Settlement)}
}

func (r *stubSettlementRepo) CreateTx(_ *gorm.DB, s *model.Settlement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	cp := *s
	r.settlements[s.ID] = &cp
	return nil
}

func (r *stubSettlementRepo) FindByID(_ context.Context, storeID, id uuid.UUID) (*model.Settlement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.settlements[id]
	if !ok || s.StoreID != storeID {
		return nil, errNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *stubSettlementRepo) List(_ context.Context, storeID uuid.UUID) ([]model.Settlement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Settlement
	for _, s := range r.settlements {
		if s.StoreID == storeID {
			out = append(out, *s)
		}
	}
	return out, nil
}

var _ repository.SettlementRepository = (*stubSettlementRepo)(nil)

// ── SessionRepository ─────────────────────────────────────────────────────────

type stubSessionRepo struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*model.PickingSession
}

func newStubSessionRepo() *stubSessionRepo {
	return &stubSessionRepo{sessions: make(map[uuid.UUID]*model.PickingSession)}
}

func (r *stubSessionRepo) CreateTx(_ *gorm.DB, s *model.PickingSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	cp := *s
	r.sessions[s.ID] = &cp
	return nil
}

func (r *stubSessionRepo) FindByID(_ context.Context, storeID, id uuid.UUID) (*model.PickingSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok || s.StoreID != storeID {
		return nil, errNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *stubSessionRepo) List(_ context.Context, storeID uuid.UUID) ([]model.PickingSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.PickingSession
	for _, s := range r.sessions {
		if s.StoreID == storeID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *stubSessionRepo) Close(_ context.Context, storeID, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok || s.StoreID != storeID {
		return errNotFound
	}
	s.Status = "closed"
	return nil
}

var _ repository.SessionRepository = (*stubSessionRepo)(nil)

// ── Fixture ───────────────────────────────────────────────────────────────────

// fixture bundles the stub repos and wired services for one test store.
type fixture struct {
	storeID   uuid.UUID
	products  *stubProductRepo
	orders    *stubOrderRepo
	movements *stubMovementRepo
	customers *stubCustomerRepo
}

func newFixture() *fixture {
	products := newStubProductRepo()
	orders := newStubOrderRepo()
	return &fixture{
		storeID:   uuid.New(),
		products:  products,
		orders:    orders,
		movements: newStubMovementRepo(products),
		customers: newStubCustomerRepo(orders),
	}
}

// seedProduct inserts a product with the given stock via an inbound
// movement so that the ledger replays to the same figure.
func (f *fixture) seedProduct(name string, stock int) *model.Product {
	sku := name + "-SKU"
	p := &model.Product{
		ID:      uuid.New(),
		StoreID: f.storeID,
		Name:    name,
		SKU:     &sku,
		Stock:   stock,
		Active:  true,
	}
	_ = f.products.Create(context.Background(), p)
	if stock != 0 {
		_ = f.movements.Create(context.Background(), &model.InventoryMovement{
			StoreID:        f.storeID,
			ProductID:      p.ID,
			MovementType:   model.MovementInboundReceipt,
			QuantityChange: stock,
			StockBefore:    0,
			StockAfter:     stock,
		})
	}
	return p
}

func (f *fixture) seedBundle(productID uuid.UUID, name string, unitsPerPack int) *model.ProductVariant {
	v := &model.ProductVariant{
		ID:              uuid.New(),
		ProductID:       productID,
		Name:            name,
		VariantType:     model.VariantTypeBundle,
		UsesSharedStock: true,
		UnitsPerPack:    unitsPerPack,
	}
	_ = f.products.CreateVariant(context.Background(), v)
	return v
}

func (f *fixture) seedVariation(productID uuid.UUID, name string, stock int) *model.ProductVariant {
	v := &model.ProductVariant{
		ID:              uuid.New(),
		ProductID:       productID,
		Name:            name,
		VariantType:     model.VariantTypeVariation,
		UsesSharedStock: false,
		UnitsPerPack:    1,
		Stock:           stock,
	}
	_ = f.products.CreateVariant(context.Background(), v)
	if stock != 0 {
		_ = f.movements.Create(context.Background(), &model.InventoryMovement{
			StoreID:        f.storeID,
			ProductID:      productID,
			VariantID:      &v.ID,
			MovementType:   model.MovementInboundReceipt,
			QuantityChange: stock,
			StockBefore:    0,
			StockAfter:     stock,
		})
	}
	return v
}

// seedOrder inserts an order with one line item per (product, variant, qty).
type seedLine struct {
	productID *uuid.UUID
	variantID *uuid.UUID
	qty       int
}

func (f *fixture) seedOrder(status model.OrderStatus, total decimal.Decimal, lines ...seedLine) *model.Order {
	o := &model.Order{
		StoreID:       f.storeID,
		SleevesStatus: status,
		TotalAmount:   total,
		CODAmount:     total,
		Version:       1,
	}
	for _, l := range lines {
		o.Items = append(o.Items, model.OrderLineItem{
			ProductID:    l.productID,
			VariantID:    l.variantID,
			Quantity:     l.qty,
			UnitsPerPack: 1,
		})
	}
	_ = f.orders.Create(context.Background(), nil, o)
	return o
}

func mustParseUUID(t *testing.T, s string) uuid.UUID {
	t.Helper()
	id, err := uuid.Parse(s)
	if err != nil {
		t.Fatalf("parse uuid %q: %v", s, err)
	}
	return id
}
