package handler

import (
	"net/http"

	"github.com/T0MGL/0rdefy-sub002/internal/apierror"
	"github.com/T0MGL/0rdefy-sub002/internal/service"
	"github.com/T0MGL/0rdefy-sub002/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ReconciliationHandler struct {
	svc        service.ReconciliationService
	dispatcher *worker.Dispatcher
}

func NewReconciliationHandler(svc service.ReconciliationService, dispatcher *worker.Dispatcher) *ReconciliationHandler {
	return &ReconciliationHandler{svc: svc, dispatcher: dispatcher}
}

// Discrepancies reports pools whose recorded stock diverges from the
// replayed ledger. Read-only: nothing is corrected here.
func (h *ReconciliationHandler) Discrepancies(c *gin.Context) {
	storeID, ok := storeIDFromClaims(c)
	if !ok {
		return
	}
	data, err := h.svc.GetStockDiscrepancies(c.Request.Context(), storeID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": data, "count": len(data)})
}

// UnmappedLineItems lists line items of open orders that never resolved
// to a catalog product. These silently skip stock deduction, so they are
// the first place to look when counts drift.
func (h *ReconciliationHandler) UnmappedLineItems(c *gin.Context) {
	storeID, ok := storeIDFromClaims(c)
	if !ok {
		return
	}
	data, err := h.svc.GetUnmappedLineItems(c.Request.Context(), storeID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": data, "count": len(data)})
}

// RecalculateStock replays the ledger and overwrites drifted pools.
// With ?async=true the work is queued to the worker pool and the call
// returns 202 immediately; store-wide replays can be slow.
func (h *ReconciliationHandler) RecalculateStock(c *gin.Context) {
	storeID, ok := storeIDFromClaims(c)
	if !ok {
		return
	}

	productID := uuid.Nil
	if v := c.Query("product_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("invalid product_id"))
			return
		}
		productID = id
	}

	if c.Query("async") == "true" {
		payload := worker.StockRecalcPayload{StoreID: storeID.String()}
		if productID != uuid.Nil {
			payload.ProductID = productID.String()
		}
		if err := h.dispatcher.EnqueueStockRecalc(c.Request.Context(), payload); err != nil {
			writeServiceError(c, err)
			return
		}
		c.JSON(http.StatusAccepted, gin.H{"queued": true})
		return
	}

	results, err := h.svc.RecalculateStock(c.Request.Context(), storeID, productID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": results})
}

// RepairCustomers recomputes lifetime aggregates from order history.
func (h *ReconciliationHandler) RepairCustomers(c *gin.Context) {
	storeID, ok := storeIDFromClaims(c)
	if !ok {
		return
	}

	if c.Query("async") == "true" {
		payload := worker.CustomerRepairPayload{StoreID: storeID.String()}
		if err := h.dispatcher.EnqueueCustomerRepair(c.Request.Context(), payload); err != nil {
			writeServiceError(c, err)
			return
		}
		c.JSON(http.StatusAccepted, gin.H{"queued": true})
		return
	}

	results, err := h.svc.RepairCustomerAggregates(c.Request.Context(), storeID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": results})
}
