package services

import (
	"context"

	"khoomi-api-io/storefront/pkg/catalog"
)

type SelectionServiceImpl struct {
	catalog CatalogStore
}

func NewSelectionService(catalog CatalogStore) SelectionService {
	return &SelectionServiceImpl{catalog: catalog}
}

// Resolve loads the product by slug and resolves sel. A size the chosen color
// does not stock is dropped, the same as picking the color on the page.
func (s *SelectionServiceImpl) Resolve(ctx context.Context, slug string, sel catalog.Selection) (*SelectionResult, error) {
	product, err := s.catalog.GetProductBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	idx := catalog.NewIndex(product.Variants)
	if sel.Color != "" {
		sel = catalog.Selection{Size: sel.Size}.PickColor(idx, sel.Color)
	}
	return &SelectionResult{
		Product:    product,
		Resolution: catalog.Resolve(idx, sel),
	}, nil
}
