package handler

import (
	"net/http"
	"strconv"

	"github.com/T0MGL/0rdefy-sub002/internal/dto"
	"github.com/T0MGL/0rdefy-sub002/internal/repository"
	"github.com/T0MGL/0rdefy-sub002/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type InventoryHandler struct {
	engine    service.StockEngine
	movements repository.MovementRepository
}

func NewInventoryHandler(engine service.StockEngine, movements repository.MovementRepository) *InventoryHandler {
	return &InventoryHandler{engine: engine, movements: movements}
}

// ListMovements exposes the append-only ledger, filterable by product,
// order, and movement type.
func (h *InventoryHandler) ListMovements(c *gin.Context) {
	storeID, ok := storeIDFromClaims(c)
	if !ok {
		return
	}

	filter := repository.MovementFilter{
		StoreID:      storeID,
		MovementType: c.Query("movement_type"),
	}
	if v := c.Query("product_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			writeServiceError(c, err)
			return
		}
		filter.ProductID = &id
	}
	if v := c.Query("order_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			writeServiceError(c, err)
			return
		}
		filter.OrderID = &id
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "50"))

	movements, total, err := h.movements.List(c.Request.Context(), filter)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	data := make([]dto.MovementResponse, 0, len(movements))
	for _, m := range movements {
		resp := dto.MovementResponse{
			ID:             m.ID.String(),
			ProductID:      m.ProductID.String(),
			MovementType:   m.MovementType,
			QuantityChange: m.QuantityChange,
			StockBefore:    m.StockBefore,
			StockAfter:     m.StockAfter,
			Notes:          m.Notes,
			CreatedAt:      m.CreatedAt.Format("2006-01-02T15:04:05Z"),
		}
		if m.VariantID != nil {
			s := m.VariantID.String()
			resp.VariantID = &s
		}
		if m.OrderID != nil {
			s := m.OrderID.String()
			resp.OrderID = &s
		}
		data = append(data, resp)
	}
	c.JSON(http.StatusOK, dto.MovementListResponse{
		Data: data, Total: total, Page: filter.Page, Limit: filter.Limit,
	})
}

// AdjustStock records a signed manual correction against a product pool.
func (h *InventoryHandler) AdjustStock(c *gin.Context) {
	storeID, ok := storeIDFromClaims(c)
	if !ok {
		return
	}
	productID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req dto.AdjustStockRequest
	if !bindAndValidate(c, &req) {
		return
	}
	newStock, err := h.engine.RecordManualAdjustment(c.Request.Context(), storeID, productID, req.Delta, req.Reason)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.StockResponse{ProductID: productID.String(), NewStock: newStock})
}

// ReceiveStock records an inbound receipt from a supplier.
func (h *InventoryHandler) ReceiveStock(c *gin.Context) {
	storeID, ok := storeIDFromClaims(c)
	if !ok {
		return
	}
	productID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req dto.InboundReceiptRequest
	if !bindAndValidate(c, &req) {
		return
	}
	newStock, err := h.engine.RecordInboundReceipt(c.Request.Context(), storeID, productID, req.Quantity, req.Notes)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.StockResponse{ProductID: productID.String(), NewStock: newStock})
}
