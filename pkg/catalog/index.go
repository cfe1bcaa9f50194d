// Package catalog turns a product's variant matrix into legal selections and
// unit prices. Everything here is pure and safe for concurrent reads.
package catalog

import "khoomi-api-io/storefront/pkg/models"

type pair struct {
	color string
	size  string
}

// Index is a lookup structure over one product's variants. Colors and sizes
// keep the order in which they first appear in the variant list.
type Index struct {
	variants []models.Variant
	colors   []string
	sizes    []string
	byColor  map[string][]int
	bySize   map[string][]int
	byPair   map[pair]int
}

// NewIndex builds an index. Duplicate (color, size) pairs keep the first
// occurrence; Product.Validate rejects them before they get here.
func NewIndex(variants []models.Variant) *Index {
	idx := &Index{
		variants: variants,
		byColor:  make(map[string][]int),
		bySize:   make(map[string][]int),
		byPair:   make(map[pair]int, len(variants)),
	}

	for i, v := range variants {
		if _, ok := idx.byColor[v.Color]; !ok {
			idx.colors = append(idx.colors, v.Color)
		}
		idx.byColor[v.Color] = append(idx.byColor[v.Color], i)

		if _, ok := idx.bySize[v.Size]; !ok {
			idx.sizes = append(idx.sizes, v.Size)
		}
		idx.bySize[v.Size] = append(idx.bySize[v.Size], i)

		p := pair{v.Color, v.Size}
		if _, ok := idx.byPair[p]; !ok {
			idx.byPair[p] = i
		}
	}
	return idx
}

// Colors returns every distinct color, in stock or not.
func (idx *Index) Colors() []string {
	return append([]string(nil), idx.colors...)
}

// Sizes returns every distinct size, in stock or not.
func (idx *Index) Sizes() []string {
	return append([]string(nil), idx.sizes...)
}

// Lookup finds the variant for a (color, size) pair.
func (idx *Index) Lookup(color, size string) (models.Variant, bool) {
	i, ok := idx.byPair[pair{color, size}]
	if !ok {
		return models.Variant{}, false
	}
	return idx.variants[i], true
}

// SizesForColor lists the sizes with stock for color. An empty color means any
// color: a size is listed when some variant of it has stock.
func (idx *Index) SizesForColor(color string) []string {
	if color == "" {
		return idx.sizesWithStock(func(models.Variant) bool { return true })
	}
	if _, ok := idx.byColor[color]; !ok {
		return []string{}
	}
	return idx.sizesWithStock(func(v models.Variant) bool { return v.Color == color })
}

// ColorsForSize lists the colors that have stock in size.
func (idx *Index) ColorsForSize(size string) []string {
	out := []string{}
	for _, i := range idx.bySize[size] {
		v := idx.variants[i]
		if v.InStock() && !contains(out, v.Color) {
			out = append(out, v.Color)
		}
	}
	return out
}

func (idx *Index) sizesWithStock(match func(models.Variant) bool) []string {
	out := []string{}
	for _, size := range idx.sizes {
		for _, i := range idx.bySize[size] {
			v := idx.variants[i]
			if match(v) && v.InStock() {
				out = append(out, size)
				break
			}
		}
	}
	return out
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
