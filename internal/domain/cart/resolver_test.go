package cart

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/averku/storefront/internal/domain/catalog"
)

type mockGetter struct {
	byID map[int64]*catalog.Product
	// delay, when set, postpones the response for the given product id.
	delay map[int64]time.Duration
}

func (m *mockGetter) GetByID(ctx context.Context, id int64) (*catalog.Product, error) {
	if d, ok := m.delay[id]; ok {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	p, ok := m.byID[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	return p, nil
}

func newGetter(products ...catalog.Product) *mockGetter {
	byID := make(map[int64]*catalog.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}
	return &mockGetter{byID: byID, delay: make(map[int64]time.Duration)}
}

func newCatalogProduct(id int64, title, price string) catalog.Product {
	return catalog.Product{
		ID:       id,
		Title:    title,
		Price:    decimal.RequireFromString(price),
		Category: "test",
	}
}

func TestResolve_FailedLineYieldsNilProduct(t *testing.T) {
	r := NewResolver(newGetter(), zap.NewNop())

	views := r.Resolve(context.Background(), []Line{{ProductID: 1, Quantity: 2}})

	require.Len(t, views, 1)
	assert.Equal(t, int64(1), views[0].ProductID)
	assert.Equal(t, 2, views[0].Quantity)
	assert.Nil(t, views[0].Product)
}

func TestResolve_OneFailureDoesNotAbortOthers(t *testing.T) {
	p2 := newCatalogProduct(2, "Gadget", "5.00")
	r := NewResolver(newGetter(p2), zap.NewNop())

	views := r.Resolve(context.Background(), []Line{
		{ProductID: 1, Quantity: 1},
		{ProductID: 2, Quantity: 1},
	})

	require.Len(t, views, 2)
	assert.Nil(t, views[0].Product)
	require.NotNil(t, views[1].Product)
	assert.Equal(t, "Gadget", views[1].Product.Title)
}

func TestResolve_OrderMatchesInputDespiteCompletionOrder(t *testing.T) {
	p1 := newCatalogProduct(1, "Widget", "10.00")
	p2 := newCatalogProduct(2, "Gadget", "5.00")
	getter := newGetter(p1, p2)
	// Product 1 resolves well after product 2.
	getter.delay[1] = 50 * time.Millisecond

	r := NewResolver(getter, zap.NewNop())
	views := r.Resolve(context.Background(), []Line{
		{ProductID: 1, Quantity: 2},
		{ProductID: 2, Quantity: 1},
	})

	require.Len(t, views, 2)
	assert.Equal(t, int64(1), views[0].ProductID)
	assert.Equal(t, int64(2), views[1].ProductID)
}

func TestResolve_FetchesRunConcurrently(t *testing.T) {
	getter := newGetter(
		newCatalogProduct(1, "a", "1.00"),
		newCatalogProduct(2, "b", "1.00"),
		newCatalogProduct(3, "c", "1.00"),
		newCatalogProduct(4, "d", "1.00"),
	)
	for id := int64(1); id <= 4; id++ {
		getter.delay[id] = 40 * time.Millisecond
	}

	r := NewResolver(getter, zap.NewNop())
	start := time.Now()
	r.Resolve(context.Background(), []Line{
		{ProductID: 1, Quantity: 1},
		{ProductID: 2, Quantity: 1},
		{ProductID: 3, Quantity: 1},
		{ProductID: 4, Quantity: 1},
	})

	// Sequential fetches would take at least 160ms.
	assert.Less(t, time.Since(start), 120*time.Millisecond,
		"line fetches must be issued concurrently, not awaited one by one")
}

func TestResolve_EmptyLines(t *testing.T) {
	r := NewResolver(newGetter(), zap.NewNop())
	assert.Empty(t, r.Resolve(context.Background(), nil))
}

func TestSummarize_UnresolvedLineCountsItemsNotAmount(t *testing.T) {
	r := NewResolver(newGetter(), zap.NewNop())

	summary := r.Summarize(context.Background(), []Line{{ProductID: 1, Quantity: 2}})

	assert.Equal(t, 2, summary.TotalItems)
	assert.True(t, decimal.Zero.Equal(summary.TotalAmount))
	require.Len(t, summary.Items, 1)
	assert.Nil(t, summary.Items[0].Product)
}

func TestSummarize_Totals(t *testing.T) {
	p1 := newCatalogProduct(1, "Widget", "10.00")
	p2 := newCatalogProduct(2, "Gadget", "5.00")
	getter := newGetter(p1, p2)
	getter.delay[1] = 30 * time.Millisecond

	r := NewResolver(getter, zap.NewNop())
	summary := r.Summarize(context.Background(), []Line{
		{ProductID: 1, Quantity: 2},
		{ProductID: 2, Quantity: 1},
	})

	assert.Equal(t, 3, summary.TotalItems)
	assert.True(t, decimal.RequireFromString("25.00").Equal(summary.TotalAmount),
		"got %s", summary.TotalAmount)
	require.Len(t, summary.Items, 2)
	assert.Equal(t, int64(1), summary.Items[0].ProductID)
	assert.Equal(t, int64(2), summary.Items[1].ProductID)
}

func TestSummarize_Empty(t *testing.T) {
	r := NewResolver(newGetter(), zap.NewNop())

	summary := r.Summarize(context.Background(), nil)

	assert.Zero(t, summary.TotalItems)
	assert.True(t, decimal.Zero.Equal(summary.TotalAmount))
	assert.Empty(t, summary.Items)
}
