package catalog

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when the catalog reports that a requested
// product does not exist.
var ErrNotFound = errors.New("product not found")

// ErrUnavailable is returned when the catalog cannot be reached or
// responds with a server-side failure. Callers must not assume partial
// results when they receive it.
var ErrUnavailable = errors.New("catalog unavailable")

// Product represents a catalog item. Products are sourced from the remote
// catalog and are never mutated or persisted locally.
type Product struct {
	ID          int64
	Title       string
	Price       decimal.Decimal
	Description string
	Category    string
	Image       string
	Rating      *Rating
}

// Rating holds aggregate review data for a product. Products without any
// reviews carry a nil Rating.
type Rating struct {
	Rate  float64
	Count int
}

// rate returns the rating value, defaulting to 0 when the product has
// no rating at all.
func (p Product) rate() float64 {
	if p.Rating == nil {
		return 0
	}
	return p.Rating.Rate
}

// Client defines read operations against the remote catalog. Every call is
// a fresh round trip: implementations do not retry or cache.
type Client interface {
	List(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id int64) (*Product, error)
	Categories(ctx context.Context) ([]string, error)
}
