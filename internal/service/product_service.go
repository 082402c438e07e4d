package service

import (
	"context"
	"fmt"

	"github.com/T0MGL/0rdefy-sub002/internal/dto"
	"github.com/T0MGL/0rdefy-sub002/internal/model"
	"github.com/T0MGL/0rdefy-sub002/internal/repository"

	"github.com/google/uuid"
)

type ProductService interface {
	Create(ctx context.Context, storeID uuid.UUID, req dto.CreateProductRequest) (*dto.ProductResponse, error)
	CreateVariant(ctx context.Context, storeID, productID uuid.UUID, req dto.CreateVariantRequest) (*dto.VariantResponse, error)
	Get(ctx context.Context, storeID, id uuid.UUID) (*dto.ProductResponse, error)
	List(ctx context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error)
	// Deactivate refuses while the product is referenced by line items of
	// non-terminal orders.
	Deactivate(ctx context.Context, storeID, id uuid.UUID) error
}

type productService struct {
	products repository.ProductRepository
}

func NewProductService(products repository.ProductRepository) ProductService {
	return &productService{products: products}
}

func (s *productService) Create(ctx context.Context, storeID uuid.UUID, req dto.CreateProductRequest) (*dto.ProductResponse, error) {
	p := &model.Product{
		StoreID:     storeID,
		Name:        req.Name,
		SKU:         req.SKU,
		ExternalRef: req.ExternalRef,
		Active:      true,
	}
	if err := s.products.Create(ctx, p); err != nil {
		return nil, err
	}
	return productToResponse(p, nil), nil
}

func (s *productService) CreateVariant(ctx context.Context, storeID, productID uuid.UUID, req dto.CreateVariantRequest) (*dto.VariantResponse, error) {
	parent, err := s.products.FindByID(ctx, storeID, productID)
	if err != nil {
		return nil, fmt.Errorf("product %s not found", productID)
	}

	v := &model.ProductVariant{
		ProductID:   parent.ID,
		Name:        req.Name,
		VariantType: req.VariantType,
		SKU:         req.SKU,
		ExternalRef: req.ExternalRef,
	}
	switch req.VariantType {
	case model.VariantTypeBundle:
		if req.UnitsPerPack < 1 {
			return nil, fmt.Errorf("bundle variant requires units_per_pack >= 1, got %d", req.UnitsPerPack)
		}
		v.UsesSharedStock = true
		v.UnitsPerPack = req.UnitsPerPack
	default:
		v.UsesSharedStock = false
		v.UnitsPerPack = 1
	}

	if err := s.products.CreateVariant(ctx, v); err != nil {
		return nil, err
	}
	resp := variantToResponse(v, parent.Stock)
	return &resp, nil
}

func (s *productService) Get(ctx context.Context, storeID, id uuid.UUID) (*dto.ProductResponse, error) {
	p, err := s.products.FindByID(ctx, storeID, id)
	if err != nil {
		return nil, fmt.Errorf("product %s not found", id)
	}
	variants, err := s.products.ListVariants(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	return productToResponse(p, variants), nil
}

func (s *productService) List(ctx context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	products, total, err := s.products.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		data = append(data, *productToResponse(&products[i], nil))
	}
	return &dto.ProductListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *productService) Deactivate(ctx context.Context, storeID, id uuid.UUID) error {
	if _, err := s.products.FindByID(ctx, storeID, id); err != nil {
		return fmt.Errorf("product %s not found", id)
	}
	referenced, err := s.products.ReferencedByOpenOrder(ctx, id)
	if err != nil {
		return err
	}
	if referenced {
		return ErrProductReferenced
	}
	return s.products.Deactivate(ctx, storeID, id)
}

func productToResponse(p *model.Product, variants []model.ProductVariant) *dto.ProductResponse {
	resp := &dto.ProductResponse{
		ID:          p.ID.String(),
		Name:        p.Name,
		SKU:         p.SKU,
		Stock:       p.Stock,
		Active:      p.Active,
		ExternalRef: p.ExternalRef,
	}
	for i := range variants {
		resp.Variants = append(resp.Variants, variantToResponse(&variants[i], p.Stock))
	}
	return resp
}

func variantToResponse(v *model.ProductVariant, parentStock int) dto.VariantResponse {
	stock := v.Stock
	if v.IsBundle() {
		// Derived availability, never the stored counter.
		stock = v.AvailablePacks(parentStock)
	}
	return dto.VariantResponse{
		ID:           v.ID.String(),
		Name:         v.Name,
		VariantType:  v.VariantType,
		UnitsPerPack: v.UnitsPerPack,
		Stock:        stock,
		SKU:          v.SKU,
	}
}
