package handler

import (
	"net/http"

	"github.com/T0MGL/0rdefy-sub002/internal/dto"
	"github.com/T0MGL/0rdefy-sub002/internal/service"

	"github.com/gin-gonic/gin"
)

type SessionHandler struct {
	svc service.SessionService
}

func NewSessionHandler(svc service.SessionService) *SessionHandler {
	return &SessionHandler{svc: svc}
}

func (h *SessionHandler) Create(c *gin.Context) {
	storeID, ok := storeIDFromClaims(c)
	if !ok {
		return
	}
	var req dto.CreateSessionRequest
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

func (h *SessionHandler) Get(c *gin.Context) {
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

func (h *SessionHandler) List(c *gin.Context) {
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

func (h *SessionHandler) Close(c *gin.Context) {
	storeID, ok := storeIDFromClaims(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Close(c.Request.Context(), storeID, id); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
