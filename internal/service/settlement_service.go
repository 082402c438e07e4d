package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/T0MGL/0rdefy-sub002/internal/config"
	"github.com/T0MGL/0rdefy-sub002/internal/dto"
	"github.com/T0MGL/0rdefy-sub002/internal/model"
	"github.com/T0MGL/0rdefy-sub002/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type SettlementService interface {
	// ReconcileBatch applies every per-order delivered/failed outcome and
	// persists the settlement record as one atomic unit. Any failure rolls
	// back the entire batch.
	ReconcileBatch(ctx context.Context, storeID uuid.UUID, req dto.SettlementBatchRequest) (*dto.SettlementResponse, error)
	Get(ctx context.Context, storeID, id uuid.UUID) (*dto.SettlementResponse, error)
	List(ctx context.Context, storeID uuid.UUID) ([]dto.SettlementResponse, error)
}

type settlementService struct {
	orders      repository.OrderRepository
	settlements repository.SettlementRepository
	customers   repository.CustomerRepository
	engine      StockEngine
	refgen      *ReferenceGenerator
	defaultFee  decimal.Decimal
}

func NewSettlementService(
	orders repository.OrderRepository,
	settlements repository.SettlementRepository,
	customers repository.CustomerRepository,
	engine StockEngine,
	refgen *ReferenceGenerator,
	cfg *config.Config,
) SettlementService {
	fee, err := decimal.NewFromString(cfg.CarrierFeePerDelivery)
	if err != nil {
		fee = decimal.Zero
	}
	return &settlementService{
		orders:      orders,
		settlements: settlements,
		customers:   customers,
		engine:      engine,
		refgen:      refgen,
		defaultFee:  fee,
	}
}

func (s *settlementService) ReconcileBatch(ctx context.Context, storeID uuid.UUID, req dto.SettlementBatchRequest) (*dto.SettlementResponse, error) {
	type parsedOutcome struct {
		orderID   uuid.UUID
		outcome   string
		collected decimal.Decimal
	}
	outcomes := make([]parsedOutcome, 0, len(req.Orders))
	for _, oreq := range req.Orders {
		oid, err := uuid.Parse(oreq.OrderID)
		if err != nil {
			return nil, fmt.Errorf("invalid order_id %q: %w", oreq.OrderID, err)
		}
		outcomes = append(outcomes, parsedOutcome{orderID: oid, outcome: oreq.Outcome, collected: oreq.Collected})
	}
	// Deterministic lock order across concurrent batches touching the
	// same orders.
	sort.Slice(outcomes, func(a, b int) bool {
		return outcomes[a].orderID.String() < outcomes[b].orderID.String()
	})

	fee := s.defaultFee
	if req.FeePerDelivery != nil {
		fee = *req.FeePerDelivery
	}

	var settlement *model.Settlement
	txErr := runTx(ctx, s.orders.DB(), func(tx *gorm.DB) error {
		code, err := s.refgen.NextCodeTx(tx, "SETTLE", time.Now())
		if err != nil {
			return err
		}

		settlement = &model.Settlement{
			StoreID:       storeID,
			ReferenceCode: code,
			ExpectedCash:  decimal.Zero,
			CollectedCash: decimal.Zero,
			CarrierFees:   decimal.Zero,
		}
		if req.CarrierID != nil {
			carid, err := uuid.Parse(*req.CarrierID)
			if err != nil {
				return fmt.Errorf("invalid carrier_id: %w", err)
			}
			settlement.CarrierID = &carid
		}

		// Phase 1: validate pre-state and apply every per-order update.
		updated := make([]*model.Order, 0, len(outcomes))
		for _, oc := range outcomes {
			order, err := s.orders.FindByIDForUpdateTx(tx, storeID, oc.orderID)
			if err != nil {
				return fmt.Errorf("order %s not found in store", oc.orderID)
			}
			if order.SleevesStatus != model.StatusShipped && order.SleevesStatus != model.StatusInTransit {
				return fmt.Errorf("%w: order %s is %s, expected shipped or in_transit",
					ErrInvalidTransition, order.ID, order.SleevesStatus)
			}

			target := model.StatusDelivered
			if oc.outcome == "failed" {
				target = model.StatusRejected
			}
			if err := s.engine.ApplyTransitionTx(ctx, tx, order, target); err != nil {
				return err
			}
			if err := s.orders.UpdateStatusTx(tx, order.ID, target, order.Version); err != nil {
				return err
			}
			order.SleevesStatus = target
			order.Version++

			if target == model.StatusRejected && order.CustomerID != nil {
				if err := s.customers.BumpAggregatesTx(tx, *order.CustomerID, -1, order.TotalAmount.Neg()); err != nil {
					return err
				}
			}

			settlement.Orders = append(settlement.Orders, model.SettlementOrder{
				OrderID:   order.ID,
				Outcome:   oc.outcome,
				Collected: oc.collected,
			})
			updated = append(updated, order)
		}

		// Phase 2: aggregates from the post-update rows only.
		for i, order := range updated {
			switch order.SleevesStatus {
			case model.StatusDelivered:
				settlement.DeliveredCount++
				settlement.ExpectedCash = settlement.ExpectedCash.Add(order.CODAmount)
				settlement.CollectedCash = settlement.CollectedCash.Add(outcomes[i].collected)
				settlement.CarrierFees = settlement.CarrierFees.Add(fee)
			default:
				settlement.FailedCount++
			}
		}

		return s.settlements.CreateTx(tx, settlement)
	})
	if txErr != nil {
		return nil, txErr
	}
	return settlementToResponse(settlement), nil
}

func (s *settlementService) Get(ctx context.Context, storeID, id uuid.UUID) (*dto.SettlementResponse, error) {
	settlement, err := s.settlements.FindByID(ctx, storeID, id)
	if err != nil {
		return nil, fmt.Errorf("settlement %s not found", id)
	}
	return settlementToResponse(settlement), nil
}

func (s *settlementService) List(ctx context.Context, storeID uuid.UUID) ([]dto.SettlementResponse, error) {
	settlements, err := s.settlements.List(ctx, storeID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SettlementResponse, 0, len(settlements))
	for i := range settlements {
		out = append(out, *settlementToResponse(&settlements[i]))
	}
	return out, nil
}

func settlementToResponse(s *model.Settlement) *dto.SettlementResponse {
	return &dto.SettlementResponse{
		ID:             s.ID.String(),
		ReferenceCode:  s.ReferenceCode,
		DeliveredCount: s.DeliveredCount,
		FailedCount:    s.FailedCount,
		ExpectedCash:   s.ExpectedCash,
		CollectedCash:  s.CollectedCash,
		CarrierFees:    s.CarrierFees,
		CreatedAt:      s.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
