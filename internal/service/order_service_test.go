package service_test

import (
	"context"
	"testing"

	"github.com/T0MGL/0rdefy-sub002/internal/dto"
	"github.com/T0MGL/0rdefy-sub002/internal/model"
	"github.com/T0MGL/0rdefy-sub002/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOrderService(f *fixture) service.OrderService {
	engine := service.NewStockEngine(f.products, f.orders, f.movements)
	return service.NewOrderService(f.orders, f.customers, engine)
}

func TestCreateOrderPending(t *testing.T) {
	f := newFixture()
	svc := newTestOrderService(f)
	ctx := context.Background()

	p := f.seedProduct("Widget", 10)
	pid := p.ID.String()

	resp, err := svc.Create(ctx, f.storeID, dto.CreateOrderRequest{
		TotalAmount: decimal.NewFromInt(100),
		Items:       []dto.LineItemRequest{{ProductID: &pid, Quantity: 3}},
	})
	require.NoError(t, err)
	assert.Equal(t, "pending", resp.SleevesStatus)
	assert.Equal(t, 1, resp.Version)

	// Pending orders never touch stock.
	got, _ := f.products.FindByID(ctx, f.storeID, p.ID)
	assert.Equal(t, 10, got.Stock)
}

func TestCreateOrderDirectlyDelivered(t *testing.T) {
	f := newFixture()
	svc := newTestOrderService(f)
	ctx := context.Background()

	p := f.seedProduct("Widget", 10)
	pid := p.ID.String()

	// Imported orders can arrive already mid-lifecycle; birth in a
	// stock-affecting state deducts on insert.
	resp, err := svc.Create(ctx, f.storeID, dto.CreateOrderRequest{
		Status:      "delivered",
		TotalAmount: decimal.NewFromInt(100),
		Items:       []dto.LineItemRequest{{ProductID: &pid, Quantity: 4}},
	})
	require.NoError(t, err)
	assert.Equal(t, "delivered", resp.SleevesStatus)

	got, _ := f.products.FindByID(ctx, f.storeID, p.ID)
	assert.Equal(t, 6, got.Stock)
	require.Len(t, f.movements.byType(model.MovementOrderDelivered), 1)
}

func TestCreateOrderBumpsCustomerAggregates(t *testing.T) {
	f := newFixture()
	svc := newTestOrderService(f)
	ctx := context.Background()

	p := f.seedProduct("Widget", 10)
	pid := p.ID.String()
	customer := &model.Customer{StoreID: f.storeID, Name: "Ada", TotalSpent: decimal.Zero}
	require.NoError(t, f.customers.Create(ctx, customer))
	cid := customer.ID.String()

	_, err := svc.Create(ctx, f.storeID, dto.CreateOrderRequest{
		CustomerID:  &cid,
		TotalAmount: decimal.NewFromInt(250),
		Items:       []dto.LineItemRequest{{ProductID: &pid, Quantity: 1}},
	})
	require.NoError(t, err)

	c, _ := f.customers.FindByID(ctx, f.storeID, customer.ID)
	assert.Equal(t, 1, c.TotalOrders)
	assert.True(t, c.TotalSpent.Equal(decimal.NewFromInt(250)))
}

func TestCancellationDecrementsCustomerAggregates(t *testing.T) {
	f := newFixture()
	svc := newTestOrderService(f)
	ctx := context.Background()

	p := f.seedProduct("Widget", 10)
	pid := p.ID.String()
	customer := &model.Customer{StoreID: f.storeID, Name: "Ada", TotalSpent: decimal.Zero}
	require.NoError(t, f.customers.Create(ctx, customer))
	cid := customer.ID.String()

	resp, err := svc.Create(ctx, f.storeID, dto.CreateOrderRequest{
		CustomerID:  &cid,
		TotalAmount: decimal.NewFromInt(250),
		Items:       []dto.LineItemRequest{{ProductID: &pid, Quantity: 1}},
	})
	require.NoError(t, err)
	orderID := uuid.MustParse(resp.ID)

	_, err = svc.Transition(ctx, f.storeID, orderID, model.StatusCancelled)
	require.NoError(t, err)

	c, _ := f.customers.FindByID(ctx, f.storeID, customer.ID)
	assert.Equal(t, 0, c.TotalOrders)
	assert.True(t, c.TotalSpent.IsZero())
}

func TestRejectionDecrementsCustomerAggregates(t *testing.T) {
	f := newFixture()
	svc := newTestOrderService(f)
	ctx := context.Background()

	p := f.seedProduct("Widget", 10)
	pid := p.ID.String()
	customer := &model.Customer{StoreID: f.storeID, Name: "Ada", TotalSpent: decimal.Zero}
	require.NoError(t, f.customers.Create(ctx, customer))
	cid := customer.ID.String()

	resp, err := svc.Create(ctx, f.storeID, dto.CreateOrderRequest{
		CustomerID:  &cid,
		TotalAmount: decimal.NewFromInt(99),
		Items:       []dto.LineItemRequest{{ProductID: &pid, Quantity: 1}},
	})
	require.NoError(t, err)
	orderID := uuid.MustParse(resp.ID)

	_, err = svc.Transition(ctx, f.storeID, orderID, model.StatusRejected)
	require.NoError(t, err)

	c, _ := f.customers.FindByID(ctx, f.storeID, customer.ID)
	assert.Equal(t, 0, c.TotalOrders)
	assert.True(t, c.TotalSpent.IsZero())

	// Re-triggering the same status must not decrement again.
	_, err = svc.Transition(ctx, f.storeID, orderID, model.StatusRejected)
	require.NoError(t, err)
	c, _ = f.customers.FindByID(ctx, f.storeID, customer.ID)
	assert.Equal(t, 0, c.TotalOrders)
}

func TestCreateOrderCancelledDoesNotCountAggregates(t *testing.T) {
	f := newFixture()
	svc := newTestOrderService(f)
	ctx := context.Background()

	p := f.seedProduct("Widget", 10)
	pid := p.ID.String()
	customer := &model.Customer{StoreID: f.storeID, Name: "Ada", TotalSpent: decimal.Zero}
	require.NoError(t, f.customers.Create(ctx, customer))
	cid := customer.ID.String()

	resp, err := svc.Create(ctx, f.storeID, dto.CreateOrderRequest{
		CustomerID:  &cid,
		Status:      "cancelled",
		TotalAmount: decimal.NewFromInt(250),
		Items:       []dto.LineItemRequest{{ProductID: &pid, Quantity: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, "cancelled", resp.SleevesStatus)

	c, _ := f.customers.FindByID(ctx, f.storeID, customer.ID)
	assert.Equal(t, 0, c.TotalOrders)
	assert.True(t, c.TotalSpent.IsZero())
}

func TestUpdateLineItemsBeforeDeduction(t *testing.T) {
	f := newFixture()
	svc := newTestOrderService(f)
	ctx := context.Background()

	p := f.seedProduct("Widget", 10)
	pid := p.ID.String()
	order := f.seedOrder(model.StatusConfirmed, decimal.NewFromInt(100), seedLine{productID: &p.ID, qty: 1})

	resp, err := svc.UpdateLineItems(ctx, f.storeID, order.ID, dto.UpdateLineItemsRequest{
		Items: []dto.LineItemRequest{{ProductID: &pid, Quantity: 5}},
	})
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, 5, resp.Items[0].Quantity)
}

func TestUpdateLineItemsImmutableAfterDeduction(t *testing.T) {
	f := newFixture()
	svc := newTestOrderService(f)
	engine := service.NewStockEngine(f.products, f.orders, f.movements)
	ctx := context.Background()

	p := f.seedProduct("Widget", 10)
	pid := p.ID.String()
	order := f.seedOrder(model.StatusConfirmed, decimal.NewFromInt(100), seedLine{productID: &p.ID, qty: 2})

	_, err := engine.TransitionOrderStatus(ctx, f.storeID, order.ID, model.StatusReadyToShip)
	require.NoError(t, err)

	_, err = svc.UpdateLineItems(ctx, f.storeID, order.ID, dto.UpdateLineItemsRequest{
		Items: []dto.LineItemRequest{{ProductID: &pid, Quantity: 99}},
	})
	assert.ErrorIs(t, err, service.ErrLineItemsImmutable)
}

func TestDeleteBlockedWhileStockDeducted(t *testing.T) {
	f := newFixture()
	svc := newTestOrderService(f)
	engine := service.NewStockEngine(f.products, f.orders, f.movements)
	ctx := context.Background()

	p := f.seedProduct("Widget", 10)
	order := f.seedOrder(model.StatusConfirmed, decimal.NewFromInt(100), seedLine{productID: &p.ID, qty: 3})

	_, err := engine.TransitionOrderStatus(ctx, f.storeID, order.ID, model.StatusReadyToShip)
	require.NoError(t, err)

	err = svc.Delete(ctx, f.storeID, order.ID, false)
	assert.ErrorIs(t, err, service.ErrOrderHasDeductedStock)

	// Order still there, stock still out.
	_, err = f.orders.FindByID(ctx, f.storeID, order.ID)
	assert.NoError(t, err)
	got, _ := f.products.FindByID(ctx, f.storeID, p.ID)
	assert.Equal(t, 7, got.Stock)
}

func TestForceDeleteRestoresThenDeletes(t *testing.T) {
	f := newFixture()
	svc := newTestOrderService(f)
	engine := service.NewStockEngine(f.products, f.orders, f.movements)
	ctx := context.Background()

	p := f.seedProduct("Widget", 10)
	order := f.seedOrder(model.StatusConfirmed, decimal.NewFromInt(100), seedLine{productID: &p.ID, qty: 3})

	_, err := engine.TransitionOrderStatus(ctx, f.storeID, order.ID, model.StatusReadyToShip)
	require.NoError(t, err)

	err = svc.Delete(ctx, f.storeID, order.ID, true)
	require.NoError(t, err)

	_, err = f.orders.FindByID(ctx, f.storeID, order.ID)
	assert.Error(t, err)
	got, _ := f.products.FindByID(ctx, f.storeID, p.ID)
	assert.Equal(t, 10, got.Stock)
	// The restore is ledgered before deletion.
	require.Len(t, f.movements.byType(model.MovementOrderCancelled), 1)
}

func TestDeleteWithoutDeductionSucceeds(t *testing.T) {
	f := newFixture()
	svc := newTestOrderService(f)
	ctx := context.Background()

	p := f.seedProduct("Widget", 10)
	order := f.seedOrder(model.StatusPending, decimal.NewFromInt(100), seedLine{productID: &p.ID, qty: 3})

	require.NoError(t, svc.Delete(ctx, f.storeID, order.ID, false))
	_, err := f.orders.FindByID(ctx, f.storeID, order.ID)
	assert.Error(t, err)
}

func TestCreateRejectsUnknownStatus(t *testing.T) {
	f := newFixture()
	svc := newTestOrderService(f)
	ctx := context.Background()

	p := f.seedProduct("Widget", 10)
	pid := p.ID.String()

	_, err := svc.Create(ctx, f.storeID, dto.CreateOrderRequest{
		Status:      "warp_speed",
		TotalAmount: decimal.NewFromInt(100),
		Items:       []dto.LineItemRequest{{ProductID: &pid, Quantity: 1}},
	})
	assert.ErrorIs(t, err, service.ErrInvalidTransition)
}

func TestOrderScopedToStore(t *testing.T) {
	f := newFixture()
	svc := newTestOrderService(f)
	ctx := context.Background()

	p := f.seedProduct("Widget", 10)
	order := f.seedOrder(model.StatusPending, decimal.NewFromInt(100), seedLine{productID: &p.ID, qty: 1})

	_, err := svc.Get(ctx, uuid.New(), order.ID)
	assert.Error(t, err)
}
