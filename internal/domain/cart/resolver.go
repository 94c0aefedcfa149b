package cart

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Resolver joins persisted cart lines with live catalog data. It is the
// only place where the cart and the catalog touch; the two share no state.
type Resolver struct {
	products ProductGetter
	lg       *zap.Logger
}

// NewResolver creates a Resolver fetching products from the given getter.
func NewResolver(products ProductGetter, lg *zap.Logger) *Resolver {
	return &Resolver{products: products, lg: lg}
}

// Resolve fetches the product for every line and returns one ItemView per
// line, in input order. The per-line fetches run concurrently; a failed
// fetch is logged and yields a view with a nil Product instead of failing
// the whole resolution.
func (r *Resolver) Resolve(ctx context.Context, lines []Line) []ItemView {
	views := make([]ItemView, len(lines))

	var g errgroup.Group
	for i, line := range lines {
		views[i].Line = line
		g.Go(func() error {
			p, err := r.products.GetByID(ctx, line.ProductID)
			if err != nil {
				r.lg.Warn("cart line left unresolved",
					zap.Int64("product_id", line.ProductID), zap.Error(err))
				return nil
			}
			views[i].Product = p
			return nil
		})
	}
	// Workers never return errors; Wait is only the join point.
	_ = g.Wait()

	return views
}

// Summarize resolves lines and reduces them to totals. Every line counts
// toward TotalItems; only lines with a resolved product contribute to
// TotalAmount.
func (r *Resolver) Summarize(ctx context.Context, lines []Line) Summary {
	items := r.Resolve(ctx, lines)

	totalItems := 0
	totalAmount := decimal.Zero
	for _, it := range items {
		totalItems += it.Quantity
		if it.Product != nil {
			qty := decimal.NewFromInt(int64(it.Quantity))
			totalAmount = totalAmount.Add(it.Product.Price.Mul(qty))
		}
	}

	return Summary{
		TotalItems:  totalItems,
		TotalAmount: totalAmount,
		Items:       items,
	}
}
