package service

import (
	"context"
	"fmt"

	"github.com/T0MGL/0rdefy-sub002/internal/dto"
	"github.com/T0MGL/0rdefy-sub002/internal/model"
	"github.com/T0MGL/0rdefy-sub002/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OrderService interface {
	Create(ctx context.Context, storeID uuid.UUID, req dto.CreateOrderRequest) (*dto.OrderResponse, error)
	Get(ctx context.Context, storeID, id uuid.UUID) (*dto.OrderResponse, error)
	List(ctx context.Context, filter dto.OrderFilter) (*dto.OrderListResponse, error)
	Transition(ctx context.Context, storeID, id uuid.UUID, newStatus model.OrderStatus) (*dto.OrderResponse, error)
	UpdateLineItems(ctx context.Context, storeID, id uuid.UUID, req dto.UpdateLineItemsRequest) (*dto.OrderResponse, error)
	// Delete blocks while any line item has stock_deducted=true. With
	// force=true it first restores all deducted stock (ledgered), then
	// hard-deletes — the explicit administrative path.
	Delete(ctx context.Context, storeID, id uuid.UUID, force bool) error
}

type orderService struct {
	orders    repository.OrderRepository
	customers repository.CustomerRepository
	engine    StockEngine
}

func NewOrderService(
	orders repository.OrderRepository,
	customers repository.CustomerRepository,
	engine StockEngine,
) OrderService {
	return &orderService{orders: orders, customers: customers, engine: engine}
}

// ── Create ───────────────────────────────────────────────────────────────────
// Orders imported from external channels may arrive already mid-lifecycle
// (e.g. already shipped). Creation therefore runs the same transition
// logic as a status change: an order born in a stock-affecting state
// deducts on insert, exactly as if it had passed through ready_to_ship.

func (s *orderService) Create(ctx context.Context, storeID uuid.UUID, req dto.CreateOrderRequest) (*dto.OrderResponse, error) {
	target := model.StatusPending
	if req.Status != "" {
		target = model.OrderStatus(req.Status)
		if !target.Valid() {
			return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, req.Status)
		}
	}

	order := &model.Order{
		StoreID:       storeID,
		SleevesStatus: model.StatusPending,
		TotalAmount:   req.TotalAmount,
		CODAmount:     req.CODAmount,
		Version:       1,
	}
	if req.CustomerID != nil {
		cid, err := uuid.Parse(*req.CustomerID)
		if err != nil {
			return nil, fmt.Errorf("invalid customer_id: %w", err)
		}
		order.CustomerID = &cid
	}
	if req.CarrierID != nil {
		carid, err := uuid.Parse(*req.CarrierID)
		if err != nil {
			return nil, fmt.Errorf("invalid carrier_id: %w", err)
		}
		order.CarrierID = &carid
	}

	items, err := buildLineItems(req.Items)
	if err != nil {
		return nil, err
	}
	order.Items = items

	txErr := runTx(ctx, s.orders.DB(), func(tx *gorm.DB) error {
		if err := s.orders.Create(ctx, tx, order); err != nil {
			return err
		}
		if target != model.StatusPending {
			if err := s.engine.ApplyTransitionTx(ctx, tx, order, target); err != nil {
				return err
			}
			if err := s.orders.UpdateStatusTx(tx, order.ID, target, order.Version); err != nil {
				return err
			}
			order.SleevesStatus = target
			order.Version++
		}
		// An order born cancelled/rejected never counts toward lifetime
		// aggregates.
		counted := order.SleevesStatus != model.StatusCancelled && order.SleevesStatus != model.StatusRejected
		if order.CustomerID != nil && counted {
			return s.customers.BumpAggregatesTx(tx, *order.CustomerID, 1, order.TotalAmount)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return orderToResponse(order), nil
}

func buildLineItems(reqs []dto.LineItemRequest) ([]model.OrderLineItem, error) {
	items := make([]model.OrderLineItem, 0, len(reqs))
	for _, ir := range reqs {
		item := model.OrderLineItem{
			Quantity:           ir.Quantity,
			UnitsPerPack:       1,
			ExternalProductRef: ir.ExternalProductRef,
			ExternalVariantRef: ir.ExternalVariantRef,
		}
		if ir.ProductID != nil {
			pid, err := uuid.Parse(*ir.ProductID)
			if err != nil {
				return nil, fmt.Errorf("invalid product_id: %w", err)
			}
			item.ProductID = &pid
		}
		if ir.VariantID != nil {
			vid, err := uuid.Parse(*ir.VariantID)
			if err != nil {
				return nil, fmt.Errorf("invalid variant_id: %w", err)
			}
			item.VariantID = &vid
		}
		items = append(items, item)
	}
	return items, nil
}

// ── Reads ────────────────────────────────────────────────────────────────────

func (s *orderService) Get(ctx context.Context, storeID, id uuid.UUID) (*dto.OrderResponse, error) {
	order, err := s.orders.FindByID(ctx, storeID, id)
	if err != nil {
		return nil, fmt.Errorf("order %s not found", id)
	}
	return orderToResponse(order), nil
}

func (s *orderService) List(ctx context.Context, filter dto.OrderFilter) (*dto.OrderListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	orders, total, err := s.orders.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.OrderResponse, 0, len(orders))
	for i := range orders {
		data = append(data, *orderToResponse(&orders[i]))
	}
	return &dto.OrderListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

// ── Transition ───────────────────────────────────────────────────────────────

func (s *orderService) Transition(ctx context.Context, storeID, id uuid.UUID, newStatus model.OrderStatus) (*dto.OrderResponse, error) {
	order, err := s.orders.FindByID(ctx, storeID, id)
	if err != nil {
		return nil, fmt.Errorf("order %s not found", id)
	}
	if order.SleevesStatus == newStatus {
		// Re-triggering the current status is a no-op, not an error:
		// webhook deliveries repeat.
		return orderToResponse(order), nil
	}

	txErr := runTx(ctx, s.orders.DB(), func(tx *gorm.DB) error {
		if tx != nil {
			// Re-read under lock: the first read was unlocked and another
			// transition may have won in between.
			order, err = s.orders.FindByIDForUpdateTx(tx, storeID, id)
			if err != nil {
				return err
			}
			if order.SleevesStatus == newStatus {
				return nil
			}
		}
		// Aggregates count every order except cancelled/rejected ones.
		wasCounted := order.SleevesStatus != model.StatusCancelled && order.SleevesStatus != model.StatusRejected

		if err := s.engine.ApplyTransitionTx(ctx, tx, order, newStatus); err != nil {
			return err
		}
		if err := s.orders.UpdateStatusTx(tx, order.ID, newStatus, order.Version); err != nil {
			return err
		}
		order.SleevesStatus = newStatus
		order.Version++

		// Lifetime aggregates exclude cancelled/rejected orders. The
		// decrement commits or rolls back with the transition itself.
		if order.CustomerID != nil && wasCounted &&
			(newStatus == model.StatusCancelled || newStatus == model.StatusRejected) {
			return s.customers.BumpAggregatesTx(tx, *order.CustomerID, -1, order.TotalAmount.Neg())
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return orderToResponse(order), nil
}

// ── Line-item immutability ───────────────────────────────────────────────────

func (s *orderService) UpdateLineItems(ctx context.Context, storeID, id uuid.UUID, req dto.UpdateLineItemsRequest) (*dto.OrderResponse, error) {
	order, err := s.orders.FindByID(ctx, storeID, id)
	if err != nil {
		return nil, fmt.Errorf("order %s not found", id)
	}
	if order.SleevesStatus.AffectsStock() {
		return nil, ErrLineItemsImmutable
	}
	for _, item := range order.Items {
		if item.StockDeducted {
			return nil, ErrLineItemsImmutable
		}
	}

	items, err := buildLineItems(req.Items)
	if err != nil {
		return nil, err
	}

	txErr := runTx(ctx, s.orders.DB(), func(tx *gorm.DB) error {
		if err := s.orders.ReplaceLineItemsTx(tx, order.ID, items); err != nil {
			return err
		}
		// Status unchanged; the write bumps the version so concurrent
		// editors conflict instead of clobbering each other.
		return s.orders.UpdateStatusTx(tx, order.ID, order.SleevesStatus, order.Version)
	})
	if txErr != nil {
		return nil, txErr
	}

	order, err = s.orders.FindByID(ctx, storeID, id)
	if err != nil {
		return nil, err
	}
	return orderToResponse(order), nil
}

// ── Delete ───────────────────────────────────────────────────────────────────

func (s *orderService) Delete(ctx context.Context, storeID, id uuid.UUID, force bool) error {
	order, err := s.orders.FindByID(ctx, storeID, id)
	if err != nil {
		return fmt.Errorf("order %s not found", id)
	}

	deducted := false
	for _, item := range order.Items {
		if item.StockDeducted {
			deducted = true
			break
		}
	}
	if deducted && !force {
		return ErrOrderHasDeductedStock
	}

	return runTx(ctx, s.orders.DB(), func(tx *gorm.DB) error {
		if deducted {
			if err := s.engine.RestoreForOrderTx(ctx, tx, order, model.MovementOrderCancelled,
				"stock restored before forced delete"); err != nil {
				return err
			}
		}
		counted := order.SleevesStatus != model.StatusCancelled && order.SleevesStatus != model.StatusRejected
		if order.CustomerID != nil && counted {
			if err := s.customers.BumpAggregatesTx(tx, *order.CustomerID, -1, order.TotalAmount.Neg()); err != nil {
				return err
			}
		}
		return s.orders.HardDeleteTx(tx, order.ID)
	})
}

// ── Mapping ──────────────────────────────────────────────────────────────────

func orderToResponse(o *model.Order) *dto.OrderResponse {
	items := make([]dto.LineItemResponse, 0, len(o.Items))
	for _, item := range o.Items {
		var pid, vid *string
		if item.ProductID != nil {
			s := item.ProductID.String()
			pid = &s
		}
		if item.VariantID != nil {
			s := item.VariantID.String()
			vid = &s
		}
		items = append(items, dto.LineItemResponse{
			ID:            item.ID.String(),
			ProductID:     pid,
			VariantID:     vid,
			Quantity:      item.Quantity,
			UnitsPerPack:  item.UnitsPerPack,
			StockDeducted: item.StockDeducted,
		})
	}
	return &dto.OrderResponse{
		ID:            o.ID.String(),
		SleevesStatus: string(o.SleevesStatus),
		ReferenceCode: o.ReferenceCode,
		TotalAmount:   o.TotalAmount,
		CODAmount:     o.CODAmount,
		Version:       o.Version,
		Items:         items,
		CreatedAt:     o.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
