package handler

import (
	"net/http"

	"github.com/T0MGL/0rdefy-sub002/internal/dto"
	"github.com/T0MGL/0rdefy-sub002/internal/service"

	"github.com/gin-gonic/gin"
)

type ProductHandler struct {
	svc      service.ProductService
	resolver service.CatalogResolver
}

func NewProductHandler(svc service.ProductService, resolver service.CatalogResolver) *ProductHandler {
	return &ProductHandler{svc: svc, resolver: resolver}
}

func (h *ProductHandler) Create(c *gin.Context) {
	storeID, ok := storeIDFromClaims(c)
	if !ok {
		return
	}
	var req dto.CreateProductRequest
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

func (h *ProductHandler) Get(c *gin.Context) {
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

func (h *ProductHandler) List(c *gin.Context) {
	storeID, ok := storeIDFromClaims(c)
	if !ok {
		return
	}
	var filter dto.ProductFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		writeServiceError(c, err)
		return
	}
	filter.StoreID = storeID
	resp, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Deactivate soft-deletes a product. Refused while any non-terminal order
// still references it.
func (h *ProductHandler) Deactivate(c *gin.Context) {
	storeID, ok := storeIDFromClaims(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Deactivate(c.Request.Context(), storeID, id); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ProductHandler) CreateVariant(c *gin.Context) {
	storeID, ok := storeIDFromClaims(c)
	if !ok {
		return
	}
	productID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req dto.CreateVariantRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CreateVariant(c.Request.Context(), storeID, productID, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Resolve maps an external channel reference to a catalog product.
// Resolution order: external variant ref, external product ref, SKU.
func (h *ProductHandler) Resolve(c *gin.Context) {
	storeID, ok := storeIDFromClaims(c)
	if !ok {
		return
	}
	var req dto.ResolveProductRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.resolver.FindProductForExternalReference(c.Request.Context(), storeID, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
