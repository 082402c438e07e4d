package service

import (
	"context"
	"errors"

	"github.com/T0MGL/0rdefy-sub002/internal/dto"
	"github.com/T0MGL/0rdefy-sub002/internal/repository"

	"github.com/google/uuid"
)

// ErrNoProductMatch means no local product could be resolved for the
// external reference. Callers persist the line item unmapped; it is
// surfaced later by the reconciliation dashboards.
var ErrNoProductMatch = errors.New("no local product matches the external reference")

// CatalogResolver maps incoming external catalog references onto local
// products before line items are persisted. Resolution order: external
// variant ref, external product ref, then SKU.
type CatalogResolver interface {
	FindProductForExternalReference(ctx context.Context, storeID uuid.UUID, req dto.ResolveProductRequest) (*dto.ResolveProductResponse, error)
}

type catalogResolver struct {
	products repository.ProductRepository
}

func NewCatalogResolver(products repository.ProductRepository) CatalogResolver {
	return &catalogResolver{products: products}
}

func (r *catalogResolver) FindProductForExternalReference(ctx context.Context, storeID uuid.UUID, req dto.ResolveProductRequest) (*dto.ResolveProductResponse, error) {
	if req.ExternalVariantRef != "" {
		if variant, err := r.products.FindVariantByExternalRef(ctx, storeID, req.ExternalVariantRef); err == nil {
			vid := variant.ID.String()
			return &dto.ResolveProductResponse{
				ProductID:   variant.ProductID.String(),
				VariantID:   &vid,
				MatchMethod: "external_variant",
			}, nil
		}
	}
	if req.ExternalProductRef != "" {
		if product, err := r.products.FindByExternalRef(ctx, storeID, req.ExternalProductRef); err == nil {
			return &dto.ResolveProductResponse{
				ProductID:   product.ID.String(),
				MatchMethod: "external_product",
			}, nil
		}
	}
	if req.SKU != "" {
		if product, err := r.products.FindBySKU(ctx, storeID, req.SKU); err == nil {
			return &dto.ResolveProductResponse{
				ProductID:   product.ID.String(),
				MatchMethod: "sku",
			}, nil
		}
	}
	return nil, ErrNoProductMatch
}
