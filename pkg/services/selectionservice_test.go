package services

import (
	"context"
	"testing"

	"khoomi-api-io/storefront/pkg/catalog"
	"khoomi-api-io/storefront/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectionService_Resolve(t *testing.T) {
	svc := NewSelectionService(newFakeCatalog(shirt()))
	ctx := context.Background()

	res, err := svc.Resolve(ctx, "Linen Shirt", catalog.Selection{Color: "Red", Size: "M"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Red", "Black"}, res.Resolution.AvailableColors)
	assert.Equal(t, []string{"M"}, res.Resolution.AvailableSizes)
	require.NotNil(t, res.Resolution.Matched)
	assert.Equal(t, 2, res.Resolution.MaxQuantity)
	assert.Equal(t, models.Money(90000), res.Resolution.Price.Discounted)
	assert.Equal(t, models.Money(100000), res.Resolution.Price.Original)
}

func TestSelectionService_DropsSizeMissingFromColor(t *testing.T) {
	svc := NewSelectionService(newFakeCatalog(shirt()))

	res, err := svc.Resolve(context.Background(), "linen-shirt", catalog.Selection{Color: "Black", Size: "L"})
	require.NoError(t, err)
	assert.Equal(t, "Black", res.Resolution.Selection.Color)
	assert.Empty(t, res.Resolution.Selection.Size)
	assert.Nil(t, res.Resolution.Matched)

	_, err = res.Resolution.Require()
	assert.Equal(t, models.KindIncompleteSelection, models.KindOf(err))
}

func TestSelectionService_UnknownSlug(t *testing.T) {
	svc := NewSelectionService(newFakeCatalog(shirt()))

	_, err := svc.Resolve(context.Background(), "wool-coat", catalog.Selection{})
	assert.Equal(t, models.KindNotFound, models.KindOf(err))
}
