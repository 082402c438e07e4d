package service_test

import (
	"context"
	"testing"

	"github.com/T0MGL/0rdefy-sub002/internal/dto"
	"github.com/T0MGL/0rdefy-sub002/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveVariantRefWinsOverProductRef(t *testing.T) {
	f := newFixture()
	resolver := service.NewCatalogResolver(f.products)
	ctx := context.Background()

	p := f.seedProduct("Shirt", 10)
	productRef := "shop-prod-1"
	f.products.products[p.ID].ExternalRef = &productRef
	v := f.seedVariation(p.ID, "Large", 5)
	variantRef := "shop-var-9"
	f.products.variants[v.ID].ExternalRef = &variantRef

	out, err := resolver.FindProductForExternalReference(ctx, f.storeID, dto.ResolveProductRequest{
		ExternalProductRef: "shop-prod-1",
		ExternalVariantRef: "shop-var-9",
	})
	require.NoError(t, err)
	assert.Equal(t, p.ID.String(), out.ProductID)
	require.NotNil(t, out.VariantID)
	assert.Equal(t, v.ID.String(), *out.VariantID)
	assert.Equal(t, "external_variant", out.MatchMethod)
}

func TestResolveFallsThroughToProductRef(t *testing.T) {
	f := newFixture()
	resolver := service.NewCatalogResolver(f.products)
	ctx := context.Background()

	p := f.seedProduct("Shirt", 10)
	productRef := "shop-prod-1"
	f.products.products[p.ID].ExternalRef = &productRef

	// The variant ref matches nothing, so resolution falls through.
	out, err := resolver.FindProductForExternalReference(ctx, f.storeID, dto.ResolveProductRequest{
		ExternalProductRef: "shop-prod-1",
		ExternalVariantRef: "shop-var-unknown",
	})
	require.NoError(t, err)
	assert.Equal(t, p.ID.String(), out.ProductID)
	assert.Nil(t, out.VariantID)
	assert.Equal(t, "external_product", out.MatchMethod)
}

func TestResolveBySKULast(t *testing.T) {
	f := newFixture()
	resolver := service.NewCatalogResolver(f.products)
	ctx := context.Background()

	p := f.seedProduct("Shirt", 10) // seeded SKU is "Shirt-SKU"

	out, err := resolver.FindProductForExternalReference(ctx, f.storeID, dto.ResolveProductRequest{
		SKU: "Shirt-SKU",
	})
	require.NoError(t, err)
	assert.Equal(t, p.ID.String(), out.ProductID)
	assert.Equal(t, "sku", out.MatchMethod)
}

func TestResolveNoMatch(t *testing.T) {
	f := newFixture()
	resolver := service.NewCatalogResolver(f.products)
	ctx := context.Background()

	f.seedProduct("Shirt", 10)

	_, err := resolver.FindProductForExternalReference(ctx, f.storeID, dto.ResolveProductRequest{
		ExternalProductRef: "nope",
		SKU:                "nope",
	})
	assert.ErrorIs(t, err, service.ErrNoProductMatch)
}

func TestResolveScopedToStore(t *testing.T) {
	f := newFixture()
	resolver := service.NewCatalogResolver(f.products)
	ctx := context.Background()

	other := newFixture() // different store, same backing repo not shared
	other.seedProduct("Shirt", 10)

	p := f.seedProduct("Shirt", 10)
	ref := "shop-prod-1"
	f.products.products[p.ID].ExternalRef = &ref

	// A token scoped to another store must not see this catalog.
	_, err := resolver.FindProductForExternalReference(ctx, other.storeID, dto.ResolveProductRequest{
		ExternalProductRef: "shop-prod-1",
	})
	assert.ErrorIs(t, err, service.ErrNoProductMatch)
}

func TestResolveIgnoresInactiveProducts(t *testing.T) {
	f := newFixture()
	resolver := service.NewCatalogResolver(f.products)
	ctx := context.Background()

	p := f.seedProduct("Shirt", 10)
	ref := "shop-prod-1"
	f.products.products[p.ID].ExternalRef = &ref
	require.NoError(t, f.products.Deactivate(ctx, f.storeID, p.ID))

	_, err := resolver.FindProductForExternalReference(ctx, f.storeID, dto.ResolveProductRequest{
		ExternalProductRef: "shop-prod-1",
	})
	assert.ErrorIs(t, err, service.ErrNoProductMatch)
}
