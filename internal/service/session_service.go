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
	"gorm.io/gorm"
)

// SessionService groups orders into warehouse picking sessions. Sessions
// never touch stock — they only consume order status.
type SessionService interface {
	Create(ctx context.Context, storeID uuid.UUID, req dto.CreateSessionRequest) (*dto.SessionResponse, error)
	Get(ctx context.Context, storeID, id uuid.UUID) (*dto.SessionResponse, error)
	List(ctx context.Context, storeID uuid.UUID) ([]dto.SessionResponse, error)
	Close(ctx context.Context, storeID, id uuid.UUID) error
}

type sessionService struct {
	sessions repository.SessionRepository
	orders   repository.OrderRepository
	refgen   *ReferenceGenerator
}

func NewSessionService(
	sessions repository.SessionRepository,
	orders repository.OrderRepository,
	refgen *ReferenceGenerator,
) SessionService {
	return &sessionService{sessions: sessions, orders: orders, refgen: refgen}
}

// pickable statuses: the order is confirmed but not yet handed to a carrier.
func pickable(s model.OrderStatus) bool {
	switch s {
	case model.StatusConfirmed, model.StatusInPreparation, model.StatusReadyToShip:
		return true
	}
	return false
}

func (s *sessionService) Create(ctx context.Context, storeID uuid.UUID, req dto.CreateSessionRequest) (*dto.SessionResponse, error) {
	orderIDs := make([]uuid.UUID, 0, len(req.OrderIDs))
	for _, raw := range req.OrderIDs {
		oid, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid order_id %q: %w", raw, err)
		}
		orderIDs = append(orderIDs, oid)
	}
	sort.Slice(orderIDs, func(a, b int) bool { return orderIDs[a].String() < orderIDs[b].String() })

	var session *model.PickingSession
	txErr := runTx(ctx, s.orders.DB(), func(tx *gorm.DB) error {
		code, err := s.refgen.NextCodeTx(tx, "PICK", time.Now())
		if err != nil {
			return err
		}
		session = &model.PickingSession{
			StoreID:       storeID,
			ReferenceCode: code,
			Status:        "open",
		}
		for _, oid := range orderIDs {
			order, err := s.orders.FindByIDForUpdateTx(tx, storeID, oid)
			if err != nil {
				return fmt.Errorf("order %s not found in store", oid)
			}
			if !pickable(order.SleevesStatus) {
				return fmt.Errorf("%w: order %s is %s and cannot join a picking session",
					ErrInvalidTransition, oid, order.SleevesStatus)
			}
			session.Orders = append(session.Orders, model.PickingSessionOrder{OrderID: oid})
		}
		return s.sessions.CreateTx(tx, session)
	})
	if txErr != nil {
		return nil, txErr
	}
	return sessionToResponse(session), nil
}

func (s *sessionService) Get(ctx context.Context, storeID, id uuid.UUID) (*dto.SessionResponse, error) {
	session, err := s.sessions.FindByID(ctx, storeID, id)
	if err != nil {
		return nil, fmt.Errorf("picking session %s not found", id)
	}
	return sessionToResponse(session), nil
}

func (s *sessionService) List(ctx context.Context, storeID uuid.UUID) ([]dto.SessionResponse, error) {
	sessions, err := s.sessions.List(ctx, storeID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SessionResponse, 0, len(sessions))
	for i := range sessions {
		out = append(out, *sessionToResponse(&sessions[i]))
	}
	return out, nil
}

func (s *sessionService) Close(ctx context.Context, storeID, id uuid.UUID) error {
	if _, err := s.sessions.FindByID(ctx, storeID, id); err != nil {
		return fmt.Errorf("picking session %s not found", id)
	}
	return s.sessions.Close(ctx, storeID, id)
}

func sessionToResponse(s *model.PickingSession) *dto.SessionResponse {
	orderIDs := make([]string, 0, len(s.Orders))
	for _, o := range s.Orders {
		orderIDs = append(orderIDs, o.OrderID.String())
	}
	return &dto.SessionResponse{
		ID:            s.ID.String(),
		ReferenceCode: s.ReferenceCode,
		Status:        s.Status,
		OrderIDs:      orderIDs,
		CreatedAt:     s.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
