// Package cart owns the persisted shopping cart and its reconciliation
// against the live catalog. Cart state is a flat list of product-quantity
// lines, unique by product and ordered by insertion; everything richer
// (resolved products, totals) is recomputed on every read.
package cart

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/averku/storefront/internal/domain/catalog"
)

// Line is one product-quantity pairing within a cart. A stored line always
// has Quantity >= 1; a mutation driving the quantity to zero or below
// removes the line instead.
type Line struct {
	ProductID int64
	Quantity  int
}

// ItemView is a cart line joined with its resolved product. Product is nil
// when the per-line catalog fetch failed; the quantity still counts.
type ItemView struct {
	Line
	Product *catalog.Product
}

// Summary is the live view of a cart: every line resolved against the
// catalog plus the derived totals. It is recomputed on demand and never
// cached or persisted.
type Summary struct {
	// TotalItems sums quantities over all lines, resolved or not.
	TotalItems int
	// TotalAmount sums price x quantity over lines with a resolved product.
	// Unresolved lines contribute nothing here.
	TotalAmount decimal.Decimal
	Items       []ItemView
}

// ProductGetter fetches a single product by id. The consumer defines the
// interface; internal/catalog/fakestore provides the production
// implementation.
type ProductGetter interface {
	GetByID(ctx context.Context, id int64) (*catalog.Product, error)
}
