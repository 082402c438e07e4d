package service

import (
	"context"
	"fmt"

	"github.com/T0MGL/0rdefy-sub002/internal/dto"
	"github.com/T0MGL/0rdefy-sub002/internal/model"
	"github.com/T0MGL/0rdefy-sub002/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// ReconciliationService detects and repairs drift between recorded state
// and the state derivable from source-of-truth data: catalog stock vs.
// the replayed ledger, and customer lifetime totals vs. their orders.
// Detection never auto-corrects; repair is a separate, explicit call.
type ReconciliationService interface {
	GetStockDiscrepancies(ctx context.Context, storeID uuid.UUID) ([]dto.StockDiscrepancy, error)
	GetUnmappedLineItems(ctx context.Context, storeID uuid.UUID) ([]dto.UnmappedLineItemResponse, error)
	// RecalculateStock replays the ledger and overwrites recorded stock,
	// but only for pools where a discrepancy exists. Pass uuid.Nil to
	// cover every product of the store.
	RecalculateStock(ctx context.Context, storeID, productID uuid.UUID) ([]dto.RecalculationResult, error)
	RepairCustomerAggregates(ctx context.Context, storeID uuid.UUID) ([]dto.CustomerRepairResult, error)
}

type reconciliationService struct {
	products  repository.ProductRepository
	orders    repository.OrderRepository
	movements repository.MovementRepository
	customers repository.CustomerRepository
}

func NewReconciliationService(
	products repository.ProductRepository,
	orders repository.OrderRepository,
	movements repository.MovementRepository,
	customers repository.CustomerRepository,
) ReconciliationService {
	return &reconciliationService{
		products:  products,
		orders:    orders,
		movements: movements,
		customers: customers,
	}
}

// ── Detection ────────────────────────────────────────────────────────────────

// Products enter the catalog with stock 0 and are stocked exclusively
// through ledgered paths, so the calculated stock of a pool is exactly
// the sum of its ledger entries.
func (s *reconciliationService) GetStockDiscrepancies(ctx context.Context, storeID uuid.UUID) ([]dto.StockDiscrepancy, error) {
	productSums, err := s.movements.SumProductPools(ctx, storeID)
	if err != nil {
		return nil, err
	}
	variantSums, err := s.movements.SumVariationPools(ctx, storeID)
	if err != nil {
		return nil, err
	}
	products, err := s.products.ListAll(ctx, storeID)
	if err != nil {
		return nil, err
	}

	var out []dto.StockDiscrepancy
	for i := range products {
		p := &products[i]
		calculated := productSums[p.ID]
		if diff := p.Stock - calculated; diff != 0 {
			out = append(out, dto.StockDiscrepancy{
				ProductID:       p.ID.String(),
				Name:            p.Name,
				RecordedStock:   p.Stock,
				CalculatedStock: calculated,
				Diff:            diff,
			})
		}
		for j := range p.Variants {
			v := &p.Variants[j]
			if v.IsBundle() {
				continue // bundles have no pool of their own
			}
			calculated := variantSums[v.ID]
			if diff := v.Stock - calculated; diff != 0 {
				vid := v.ID.String()
				out = append(out, dto.StockDiscrepancy{
					ProductID:       p.ID.String(),
					VariantID:       &vid,
					Name:            p.Name + " / " + v.Name,
					RecordedStock:   v.Stock,
					CalculatedStock: calculated,
					Diff:            diff,
				})
			}
		}
	}
	return out, nil
}

func (s *reconciliationService) GetUnmappedLineItems(ctx context.Context, storeID uuid.UUID) ([]dto.UnmappedLineItemResponse, error) {
	items, err := s.orders.ListUnmappedLineItems(ctx, storeID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.UnmappedLineItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, dto.UnmappedLineItemResponse{
			LineItemID:         item.ID.String(),
			OrderID:            item.OrderID.String(),
			Quantity:           item.Quantity,
			ExternalProductRef: item.ExternalProductRef,
			ExternalVariantRef: item.ExternalVariantRef,
		})
	}
	return out, nil
}

// ── Repair ───────────────────────────────────────────────────────────────────

func (s *reconciliationService) RecalculateStock(ctx context.Context, storeID, productID uuid.UUID) ([]dto.RecalculationResult, error) {
	productSums, err := s.movements.SumProductPools(ctx, storeID)
	if err != nil {
		return nil, err
	}
	variantSums, err := s.movements.SumVariationPools(ctx, storeID)
	if err != nil {
		return nil, err
	}

	var products []model.Product
	if productID != uuid.Nil {
		p, err := s.products.FindByID(ctx, storeID, productID)
		if err != nil {
			return nil, fmt.Errorf("product %s not found", productID)
		}
		products = []model.Product{*p}
	} else {
		products, err = s.products.ListAll(ctx, storeID)
		if err != nil {
			return nil, err
		}
	}

	results := make([]dto.RecalculationResult, 0, len(products))
	for i := range products {
		p := &products[i]
		calculated := productSums[p.ID]

		result := dto.RecalculationResult{
			ProductID: p.ID.String(),
			OldStock:  p.Stock,
			NewStock:  p.Stock,
		}
		if calculated != p.Stock {
			txErr := runTx(ctx, s.products.DB(), func(tx *gorm.DB) error {
				// Re-read under lock: the stock may have moved since the
				// unlocked scan above.
				locked, err := s.products.FindByIDForUpdateTx(tx, p.ID)
				if err != nil {
					return err
				}
				if locked.Stock == calculated {
					return nil // already converged
				}
				log.Info().
					Str("product_id", p.ID.String()).
					Int("recorded", locked.Stock).
					Int("calculated", calculated).
					Msg("overwriting drifted stock from ledger replay")
				return s.products.SetStockTx(tx, p.ID, calculated)
			})
			if txErr != nil {
				return nil, txErr
			}
			result.NewStock = calculated
			result.Corrected = true
		}
		results = append(results, result)

		// Independent variation pools get the same replay-and-overwrite
		// treatment. Bundles are skipped: they have no pool of their own.
		variants, err := s.products.ListVariants(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		for j := range variants {
			v := &variants[j]
			if v.IsBundle() {
				continue
			}
			calculated := variantSums[v.ID]

			vid := v.ID.String()
			result := dto.RecalculationResult{
				ProductID: p.ID.String(),
				VariantID: &vid,
				OldStock:  v.Stock,
				NewStock:  v.Stock,
			}
			if calculated != v.Stock {
				txErr := runTx(ctx, s.products.DB(), func(tx *gorm.DB) error {
					locked, err := s.products.FindVariantByIDForUpdateTx(tx, v.ID)
					if err != nil {
						return err
					}
					if locked.Stock == calculated {
						return nil
					}
					log.Info().
						Str("product_id", p.ID.String()).
						Str("variant_id", vid).
						Int("recorded", locked.Stock).
						Int("calculated", calculated).
						Msg("overwriting drifted variation stock from ledger replay")
					return s.products.SetVariantStockTx(tx, v.ID, calculated)
				})
				if txErr != nil {
					return nil, txErr
				}
				result.NewStock = calculated
				result.Corrected = true
			}
			results = append(results, result)
		}
	}
	return results, nil
}

func (s *reconciliationService) RepairCustomerAggregates(ctx context.Context, storeID uuid.UUID) ([]dto.CustomerRepairResult, error) {
	aggregates, err := s.customers.ComputeAggregates(ctx, storeID)
	if err != nil {
		return nil, err
	}
	truth := make(map[uuid.UUID]repository.CustomerAggregate, len(aggregates))
	for _, agg := range aggregates {
		truth[agg.CustomerID] = agg
	}

	customers, err := s.customers.List(ctx, storeID)
	if err != nil {
		return nil, err
	}

	var results []dto.CustomerRepairResult
	for i := range customers {
		c := &customers[i]
		agg := truth[c.ID] // zero value = no counted orders

		drifted := c.TotalOrders != agg.TotalOrders || !c.TotalSpent.Equal(agg.TotalSpent)
		result := dto.CustomerRepairResult{
			CustomerID:   c.ID.String(),
			OrdersBefore: c.TotalOrders,
			OrdersAfter:  agg.TotalOrders,
			SpentBefore:  c.TotalSpent.String(),
			SpentAfter:   agg.TotalSpent.String(),
			Corrected:    drifted,
		}
		if drifted {
			log.Info().
				Str("customer_id", c.ID.String()).
				Int("orders_before", c.TotalOrders).
				Int("orders_after", agg.TotalOrders).
				Msg("repairing drifted customer aggregates")
			if err := s.customers.SetAggregates(ctx, c.ID, agg.TotalOrders, agg.TotalSpent); err != nil {
				return nil, err
			}
		}
		results = append(results, result)
	}
	return results, nil
}
