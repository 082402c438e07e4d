package handler

import (
	"net/http"

	"github.com/T0MGL/0rdefy-sub002/internal/dto"
	"github.com/T0MGL/0rdefy-sub002/internal/model"
	"github.com/T0MGL/0rdefy-sub002/internal/service"

	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	svc    service.OrderService
	engine service.StockEngine
}

func NewOrderHandler(svc service.OrderService, engine service.StockEngine) *OrderHandler {
	return &OrderHandler{svc: svc, engine: engine}
}

func (h *OrderHandler) Create(c *gin.Context) {
	storeID, ok := storeIDFromClaims(c)
	if !ok {
		return
	}
	var req dto.CreateOrderRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), storeID, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *OrderHandler) Get(c *gin.Context) {
	storeID, ok := storeIDFromClaims(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), storeID, id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *OrderHandler) List(c *gin.Context) {
	storeID, ok := storeIDFromClaims(c)
	if !ok {
		return
	}
	var filter dto.OrderFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		writeServiceError(c, err)
		return
	}
	filter.StoreID = storeID.String()
	resp, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Transition drives the order state machine. Stock effects commit in the
// same transaction as the status write, or not at all.
func (h *OrderHandler) Transition(c *gin.Context) {
	storeID, ok := storeIDFromClaims(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req dto.TransitionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Transition(c.Request.Context(), storeID, id, model.OrderStatus(req.NewStatus))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Availability is the read-only pre-flight check before shipping.
func (h *OrderHandler) Availability(c *gin.Context) {
	storeID, ok := storeIDFromClaims(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	lines, err := h.engine.CheckStockAvailability(c.Request.Context(), storeID, id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": lines})
}

func (h *OrderHandler) UpdateLineItems(c *gin.Context) {
	storeID, ok := storeIDFromClaims(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateLineItemsRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.UpdateLineItems(c.Request.Context(), storeID, id, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Delete hard-deletes an order. Blocked while stock is deducted unless
// force=true, which restores the stock first (ledgered) and then deletes.
func (h *OrderHandler) Delete(c *gin.Context) {
	storeID, ok := storeIDFromClaims(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	force := c.Query("force") == "true"
	if err := h.svc.Delete(c.Request.Context(), storeID, id, force); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
