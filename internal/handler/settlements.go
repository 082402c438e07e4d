package handler

import (
	"net/http"

	"github.com/T0MGL/0rdefy-sub002/internal/dto"
	"github.com/T0MGL/0rdefy-sub002/internal/service"

	"github.com/gin-gonic/gin"
)

type SettlementHandler struct {
	svc service.SettlementService
}

func NewSettlementHandler(svc service.SettlementService) *SettlementHandler {
	return &SettlementHandler{svc: svc}
}

// Reconcile settles a carrier batch: every order outcome applies, or the
// whole batch rolls back.
func (h *SettlementHandler) Reconcile(c *gin.Context) {
	storeID, ok := storeIDFromClaims(c)
	if !ok {
		return
	}
	var req dto.SettlementBatchRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.ReconcileBatch(c.Request.Context(), storeID, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *SettlementHandler) Get(c *gin.Context) {
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

func (h *SettlementHandler) List(c *gin.Context) {
	storeID, ok := storeIDFromClaims(c)
	if !ok {
		return
	}
	resp, err := h.svc.List(c.Request.Context(), storeID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}
