package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/T0MGL/0rdefy-sub002/internal/dto"
	"github.com/T0MGL/0rdefy-sub002/internal/model"
	"github.com/T0MGL/0rdefy-sub002/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// StockEngine is the state machine that translates order status changes
// into stock movements. Every mutation runs inside one transaction:
// either the status change and all its stock effects commit together, or
// nothing does.
type StockEngine interface {
	TransitionOrderStatus(ctx context.Context, storeID, orderID uuid.UUID, newStatus model.OrderStatus) (*model.Order, error)
	CheckStockAvailability(ctx context.Context, storeID, orderID uuid.UUID) ([]dto.AvailabilityLine, error)
	RecordManualAdjustment(ctx context.Context, storeID, productID uuid.UUID, delta int, reason string) (int, error)
	RecordInboundReceipt(ctx context.Context, storeID, productID uuid.UUID, quantity int, notes string) (int, error)

	// ApplyTransitionTx applies the stock effects of moving order to
	// newStatus inside the caller's transaction. It does NOT write the
	// status itself — the caller owns the status row update so that both
	// land in the same transaction.
	ApplyTransitionTx(ctx context.Context, tx *gorm.DB, order *model.Order, newStatus model.OrderStatus) error

	// RestoreForOrderTx restores every line item with stock_deducted=true.
	// Used by the transition paths and by the force-delete admin path.
	RestoreForOrderTx(ctx context.Context, tx *gorm.DB, order *model.Order, movementType, notes string) error
}

type stockEngine struct {
	products  repository.ProductRepository
	orders    repository.OrderRepository
	movements repository.MovementRepository
}

func NewStockEngine(
	products repository.ProductRepository,
	orders repository.OrderRepository,
	movements repository.MovementRepository,
) StockEngine {
	return &stockEngine{products: products, orders: orders, movements: movements}
}

// movementTypeForEntry maps the status an order is entering to the ledger
// movement type recorded for the deduction.
func movementTypeForEntry(s model.OrderStatus) string {
	switch s {
	case model.StatusReadyToShip:
		return model.MovementOrderReady
	case model.StatusShipped:
		return model.MovementOrderShipped
	case model.StatusInTransit:
		return model.MovementOrderInTransit
	case model.StatusDelivered:
		return model.MovementOrderDelivered
	}
	return model.MovementOrderReady
}

// ── TransitionOrderStatus ────────────────────────────────────────────────────

func (e *stockEngine) TransitionOrderStatus(ctx context.Context, storeID, orderID uuid.UUID, newStatus model.OrderStatus) (*model.Order, error) {
	order, err := e.orders.FindByID(ctx, storeID, orderID)
	if err != nil {
		return nil, fmt.Errorf("order %s not found", orderID)
	}
	if order.SleevesStatus == newStatus {
		// Re-triggering the current status is a no-op, not an error:
		// webhook deliveries repeat.
		return order, nil
	}

	txErr := runTx(ctx, e.orders.DB(), func(tx *gorm.DB) error {
		if tx != nil {
			// Re-read under lock: the first read was unlocked and another
			// transition may have won in between.
			order, err = e.orders.FindByIDForUpdateTx(tx, storeID, orderID)
			if err != nil {
				return err
			}
			if order.SleevesStatus == newStatus {
				return nil
			}
		}
		if err := e.ApplyTransitionTx(ctx, tx, order, newStatus); err != nil {
			return err
		}
		if err := e.orders.UpdateStatusTx(tx, order.ID, newStatus, order.Version); err != nil {
			return err
		}
		order.SleevesStatus = newStatus
		order.Version++
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return order, nil
}

// ApplyTransitionTx decides, once, what the status change means for stock:
//
//	outside set → inside set   deduct every undeducted line item
//	any → cancelled/rejected   restore every deducted line item
//	delivered → returned       restore with return_accepted movements
//	inside set → earlier state restore with order_reverted movements
//	anything else              no stock effect
func (e *stockEngine) ApplyTransitionTx(ctx context.Context, tx *gorm.DB, order *model.Order, newStatus model.OrderStatus) error {
	cur := order.SleevesStatus
	if !newStatus.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, newStatus)
	}
	if cur.Terminal() {
		return fmt.Errorf("%w: order is already %s", ErrInvalidTransition, cur)
	}

	switch {
	case newStatus.AffectsStock() && !cur.AffectsStock():
		return e.deductForOrderTx(ctx, tx, order, movementTypeForEntry(newStatus))

	case newStatus == model.StatusCancelled || newStatus == model.StatusRejected:
		return e.RestoreForOrderTx(ctx, tx, order, model.MovementOrderCancelled,
			fmt.Sprintf("order %s", newStatus))

	case newStatus == model.StatusReturned:
		if cur != model.StatusDelivered {
			return fmt.Errorf("%w: only delivered orders can be returned (current %s)", ErrInvalidTransition, cur)
		}
		return e.RestoreForOrderTx(ctx, tx, order, model.MovementReturnAccepted, "return accepted")

	case cur.AffectsStock() && !newStatus.AffectsStock():
		// Operator error correction: revert to an earlier pre-shipment state.
		return e.RestoreForOrderTx(ctx, tx, order, model.MovementOrderReverted,
			fmt.Sprintf("reverted to %s", newStatus))
	}

	// pending→confirmed and movement within the stock-affecting set: no
	// stock effect.
	return nil
}

// ── Deduction ────────────────────────────────────────────────────────────────

// sortedItemIndexes returns item indexes ordered by product id so that
// concurrent transitions touching the same products always lock rows in
// the same order (deadlock avoidance). Unmapped items sort last.
func sortedItemIndexes(items []model.OrderLineItem) []int {
	idx := make([]int, len(items))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool {
		pa, pb := items[idx[a]].ProductID, items[idx[b]].ProductID
		if pa == nil {
			return false
		}
		if pb == nil {
			return true
		}
		return pa.String() < pb.String()
	})
	return idx
}

func (e *stockEngine) deductForOrderTx(ctx context.Context, tx *gorm.DB, order *model.Order, movementType string) error {
	now := time.Now()

	for _, i := range sortedItemIndexes(order.Items) {
		item := &order.Items[i]
		if item.StockDeducted {
			continue // at-most-once guard
		}
		if item.ProductID == nil {
			log.Warn().
				Str("order_id", order.ID.String()).
				Str("line_item_id", item.ID.String()).
				Msg("line item has no product mapping, skipping stock deduction")
			continue
		}
		if item.Quantity <= 0 {
			log.Warn().
				Str("order_id", order.ID.String()).
				Str("line_item_id", item.ID.String()).
				Int("quantity", item.Quantity).
				Msg("line item has non-positive quantity, skipping stock deduction")
			continue
		}

		product, err := e.products.FindByIDForUpdateTx(tx, *item.ProductID)
		if err != nil {
			log.Warn().
				Str("order_id", order.ID.String()).
				Str("product_id", item.ProductID.String()).
				Err(err).
				Msg("product not found during deduction, skipping line item")
			continue
		}

		var variant *model.ProductVariant
		if item.VariantID != nil {
			variant, err = e.products.FindVariantByIDForUpdateTx(tx, *item.VariantID)
			if err != nil {
				log.Warn().
					Str("order_id", order.ID.String()).
					Str("variant_id", item.VariantID.String()).
					Err(err).
					Msg("variant not found during deduction, skipping line item")
				continue
			}
		}

		unitsPerPack := 1
		switch {
		case variant != nil && variant.IsBundle():
			// Bundles consume physical units from the parent's shared pool.
			unitsPerPack = variant.UnitsPerPack
			physical := item.Quantity * unitsPerPack
			if product.Stock < physical {
				return &InsufficientStockError{
					ProductName: product.Name,
					SKU:         skuOf(product),
					Required:    physical,
					Available:   product.Stock,
				}
			}
			if err := e.products.UpdateStockTx(tx, product.ID, -physical); err != nil {
				return err
			}
			if err := e.movements.CreateTx(tx, &model.InventoryMovement{
				StoreID:        order.StoreID,
				ProductID:      product.ID,
				VariantID:      item.VariantID,
				OrderID:        &order.ID,
				MovementType:   movementType,
				QuantityChange: -physical,
				StockBefore:    product.Stock,
				StockAfter:     product.Stock - physical,
				Notes:          fmt.Sprintf("%d pack(s) x %d units", item.Quantity, unitsPerPack),
			}); err != nil {
				return err
			}

		case variant != nil:
			// Variation: independent pool, never touches the parent.
			if variant.Stock < item.Quantity {
				return &InsufficientStockError{
					ProductName: product.Name + " / " + variant.Name,
					SKU:         skuOfVariant(variant),
					Required:    item.Quantity,
					Available:   variant.Stock,
				}
			}
			if err := e.products.UpdateVariantStockTx(tx, variant.ID, -item.Quantity); err != nil {
				return err
			}
			if err := e.movements.CreateTx(tx, &model.InventoryMovement{
				StoreID:        order.StoreID,
				ProductID:      product.ID,
				VariantID:      item.VariantID,
				OrderID:        &order.ID,
				MovementType:   movementType,
				QuantityChange: -item.Quantity,
				StockBefore:    variant.Stock,
				StockAfter:     variant.Stock - item.Quantity,
			}); err != nil {
				return err
			}

		default:
			if product.Stock < item.Quantity {
				return &InsufficientStockError{
					ProductName: product.Name,
					SKU:         skuOf(product),
					Required:    item.Quantity,
					Available:   product.Stock,
				}
			}
			if err := e.products.UpdateStockTx(tx, product.ID, -item.Quantity); err != nil {
				return err
			}
			if err := e.movements.CreateTx(tx, &model.InventoryMovement{
				StoreID:        order.StoreID,
				ProductID:      product.ID,
				OrderID:        &order.ID,
				MovementType:   movementType,
				QuantityChange: -item.Quantity,
				StockBefore:    product.Stock,
				StockAfter:     product.Stock - item.Quantity,
			}); err != nil {
				return err
			}
		}

		item.UnitsPerPack = unitsPerPack
		item.StockDeducted = true
		item.StockDeductedAt = &now
		if err := e.orders.UpdateLineItemTx(tx, item); err != nil {
			return err
		}
	}
	return nil
}

// ── Restoration ──────────────────────────────────────────────────────────────

// RestoreForOrderTx credits back exactly what the deduction took, using
// the units_per_pack snapshot stamped on each line item. Items that were
// never deducted are never restored.
func (e *stockEngine) RestoreForOrderTx(ctx context.Context, tx *gorm.DB, order *model.Order, movementType, notes string) error {
	for _, i := range sortedItemIndexes(order.Items) {
		item := &order.Items[i]
		if !item.StockDeducted {
			continue
		}
		if item.ProductID == nil {
			// deducted flag without a product mapping should be impossible;
			// surface loudly and leave it for reconciliation
			log.Error().
				Str("order_id", order.ID.String()).
				Str("line_item_id", item.ID.String()).
				Msg("deducted line item has no product mapping, skipping restore")
			continue
		}

		product, err := e.products.FindByIDForUpdateTx(tx, *item.ProductID)
		if err != nil {
			log.Warn().
				Str("order_id", order.ID.String()).
				Str("product_id", item.ProductID.String()).
				Err(err).
				Msg("product not found during restore, skipping line item")
			continue
		}

		restoresParentPool := true
		quantity := item.Quantity
		if item.VariantID != nil {
			variant, err := e.products.FindVariantByIDForUpdateTx(tx, *item.VariantID)
			if err != nil {
				log.Warn().
					Str("order_id", order.ID.String()).
					Str("variant_id", item.VariantID.String()).
					Err(err).
					Msg("variant not found during restore, skipping line item")
				continue
			}
			if variant.IsBundle() {
				// Restore via the snapshot, not the variant's current
				// units_per_pack: the pack size may have changed since.
				upp := item.UnitsPerPack
				if upp < 1 {
					upp = variant.UnitsPerPack
				}
				quantity = item.Quantity * upp
			} else {
				restoresParentPool = false
				if err := e.products.UpdateVariantStockTx(tx, variant.ID, quantity); err != nil {
					return err
				}
				if err := e.movements.CreateTx(tx, &model.InventoryMovement{
					StoreID:        order.StoreID,
					ProductID:      product.ID,
					VariantID:      item.VariantID,
					OrderID:        &order.ID,
					MovementType:   movementType,
					QuantityChange: quantity,
					StockBefore:    variant.Stock,
					StockAfter:     variant.Stock + quantity,
					Notes:          notes,
				}); err != nil {
					return err
				}
			}
		}

		if restoresParentPool {
			if err := e.products.UpdateStockTx(tx, product.ID, quantity); err != nil {
				return err
			}
			if err := e.movements.CreateTx(tx, &model.InventoryMovement{
				StoreID:        order.StoreID,
				ProductID:      product.ID,
				VariantID:      item.VariantID,
				OrderID:        &order.ID,
				MovementType:   movementType,
				QuantityChange: quantity,
				StockBefore:    product.Stock,
				StockAfter:     product.Stock + quantity,
				Notes:          notes,
			}); err != nil {
				return err
			}
		}

		item.StockDeducted = false
		item.StockDeductedAt = nil
		if err := e.orders.UpdateLineItemTx(tx, item); err != nil {
			return err
		}
	}
	return nil
}

// ── Availability ─────────────────────────────────────────────────────────────

// CheckStockAvailability is the read-only pre-flight check callers run
// before pushing an order into the stock-affecting set. Already-deducted
// and unmapped items are excluded: neither will deduct on transition.
func (e *stockEngine) CheckStockAvailability(ctx context.Context, storeID, orderID uuid.UUID) ([]dto.AvailabilityLine, error) {
	order, err := e.orders.FindByID(ctx, storeID, orderID)
	if err != nil {
		return nil, fmt.Errorf("order %s not found", orderID)
	}

	lines := make([]dto.AvailabilityLine, 0, len(order.Items))
	for _, item := range order.Items {
		if item.StockDeducted || item.ProductID == nil || item.Quantity <= 0 {
			continue
		}
		product, err := e.products.FindByID(ctx, storeID, *item.ProductID)
		if err != nil {
			continue
		}

		available := product.Stock
		required := item.Quantity
		var variantID *string
		if item.VariantID != nil {
			variant, err := e.products.FindVariantByID(ctx, *item.VariantID)
			if err != nil {
				continue
			}
			vid := variant.ID.String()
			variantID = &vid
			if variant.IsBundle() {
				// Availability in packs, derived fresh from the parent pool.
				available = variant.AvailablePacks(product.Stock)
			} else {
				available = variant.Stock
			}
		}

		shortage := required - available
		if shortage < 0 {
			shortage = 0
		}
		lines = append(lines, dto.AvailabilityLine{
			ProductID:    product.ID.String(),
			VariantID:    variantID,
			RequiredQty:  required,
			AvailableQty: available,
			Sufficient:   shortage == 0,
			Shortage:     shortage,
		})
	}
	return lines, nil
}

// ── Administrative stock paths ───────────────────────────────────────────────

func (e *stockEngine) RecordManualAdjustment(ctx context.Context, storeID, productID uuid.UUID, delta int, reason string) (int, error) {
	var newStock int
	txErr := runTx(ctx, e.products.DB(), func(tx *gorm.DB) error {
		product, err := e.products.FindByIDForUpdateTx(tx, productID)
		if err != nil {
			return fmt.Errorf("product %s not found", productID)
		}
		if product.StoreID != storeID {
			return fmt.Errorf("product %s not found", productID)
		}
		if product.Stock+delta < 0 {
			return &InsufficientStockError{
				ProductName: product.Name,
				SKU:         skuOf(product),
				Required:    -delta,
				Available:   product.Stock,
			}
		}
		if err := e.products.UpdateStockTx(tx, product.ID, delta); err != nil {
			return err
		}
		newStock = product.Stock + delta
		return e.movements.CreateTx(tx, &model.InventoryMovement{
			StoreID:        storeID,
			ProductID:      product.ID,
			MovementType:   model.MovementManualAdjustment,
			QuantityChange: delta,
			StockBefore:    product.Stock,
			StockAfter:     newStock,
			Notes:          reason,
		})
	})
	if txErr != nil {
		return 0, txErr
	}
	return newStock, nil
}

func (e *stockEngine) RecordInboundReceipt(ctx context.Context, storeID, productID uuid.UUID, quantity int, notes string) (int, error) {
	if quantity <= 0 {
		return 0, fmt.Errorf("inbound quantity must be positive, got %d", quantity)
	}
	var newStock int
	txErr := runTx(ctx, e.products.DB(), func(tx *gorm.DB) error {
		product, err := e.products.FindByIDForUpdateTx(tx, productID)
		if err != nil {
			return fmt.Errorf("product %s not found", productID)
		}
		if product.StoreID != storeID {
			return fmt.Errorf("product %s not found", productID)
		}
		if err := e.products.UpdateStockTx(tx, product.ID, quantity); err != nil {
			return err
		}
		newStock = product.Stock + quantity
		return e.movements.CreateTx(tx, &model.InventoryMovement{
			StoreID:        storeID,
			ProductID:      product.ID,
			MovementType:   model.MovementInboundReceipt,
			QuantityChange: quantity,
			StockBefore:    product.Stock,
			StockAfter:     newStock,
			Notes:          notes,
		})
	})
	if txErr != nil {
		return 0, txErr
	}
	return newStock, nil
}

func skuOf(p *model.Product) string {
	if p.SKU != nil {
		return *p.SKU
	}
	return ""
}

func skuOfVariant(v *model.ProductVariant) string {
	if v.SKU != nil {
		return *v.SKU
	}
	return ""
}
