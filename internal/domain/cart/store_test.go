package cart

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/averku/storefront/internal/kv"
)

// failingStore fails every operation, simulating a broken medium.
type failingStore struct{}

func (failingStore) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("medium unavailable")
}
func (failingStore) Set(context.Context, string, string) error {
	return errors.New("medium unavailable")
}
func (failingStore) Delete(context.Context, string) error {
	return errors.New("medium unavailable")
}
func (failingStore) Ping(context.Context) error {
	return errors.New("medium unavailable")
}

func newTestStore(t *testing.T) (*Store, *kv.Memory) {
	t.Helper()
	medium := kv.NewMemory()
	return NewStore(medium, "cart:test", zap.NewNop()), medium
}

func TestStore_AddMergesQuantities(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	store.Add(ctx, 1, 2)
	lines := store.Add(ctx, 1, 3)

	require.Len(t, lines, 1, "adding the same product twice must not create a second line")
	assert.Equal(t, Line{ProductID: 1, Quantity: 5}, lines[0])
	assert.Equal(t, lines, store.Lines(ctx))
}

func TestStore_AddAppendsInInsertionOrder(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	store.Add(ctx, 3, 1)
	store.Add(ctx, 1, 1)
	lines := store.Add(ctx, 2, 1)

	require.Len(t, lines, 3)
	assert.Equal(t, int64(3), lines[0].ProductID)
	assert.Equal(t, int64(1), lines[1].ProductID)
	assert.Equal(t, int64(2), lines[2].ProductID)
}

func TestStore_AddNonPositiveQuantityCountsAsOne(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	lines := store.Add(ctx, 1, 0)

	require.Len(t, lines, 1)
	assert.Equal(t, 1, lines[0].Quantity)
}

func TestStore_RemoveAbsentIsNoop(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	store.Add(ctx, 1, 1)
	lines := store.Remove(ctx, 42)

	require.Len(t, lines, 1)
}

func TestStore_Remove(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	store.Add(ctx, 1, 1)
	store.Add(ctx, 2, 1)
	lines := store.Remove(ctx, 1)

	require.Len(t, lines, 1)
	assert.Equal(t, int64(2), lines[0].ProductID)
}

func TestStore_SetQuantityOverwrites(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	store.Add(ctx, 1, 2)
	lines := store.SetQuantity(ctx, 1, 7)

	require.Len(t, lines, 1)
	assert.Equal(t, 7, lines[0].Quantity)
}

func TestStore_SetQuantityZeroRemoves(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	store.Add(ctx, 1, 2)
	store.SetQuantity(ctx, 1, 0)

	assert.Empty(t, store.Lines(ctx))
}

func TestStore_SetQuantityAbsentDoesNotCreate(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	lines := store.SetQuantity(ctx, 99, 3)

	assert.Empty(t, lines)
	assert.Empty(t, store.Lines(ctx))
}

func TestStore_Clear(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	store.Add(ctx, 1, 1)
	store.Add(ctx, 2, 2)
	store.Clear(ctx)

	assert.Empty(t, store.Lines(ctx))
}

func TestStore_RoundTripPreservesOrderAndQuantities(t *testing.T) {
	ctx := context.Background()
	medium := kv.NewMemory()

	first := NewStore(medium, "cart:rt", zap.NewNop())
	first.Add(ctx, 5, 2)
	first.Add(ctx, 3, 1)
	first.Add(ctx, 8, 4)

	// A second Store over the same medium and key sees the identical set.
	second := NewStore(medium, "cart:rt", zap.NewNop())
	assert.Equal(t, []Line{
		{ProductID: 5, Quantity: 2},
		{ProductID: 3, Quantity: 1},
		{ProductID: 8, Quantity: 4},
	}, second.Lines(ctx))
}

func TestStore_ReadFailureDegradesToEmpty(t *testing.T) {
	store := NewStore(failingStore{}, "cart:test", zap.NewNop())

	assert.Empty(t, store.Lines(context.Background()))
}

func TestStore_CorruptPayloadDegradesToEmpty(t *testing.T) {
	ctx := context.Background()
	medium := kv.NewMemory()
	require.NoError(t, medium.Set(ctx, "cart:test", "{not json"))

	store := NewStore(medium, "cart:test", zap.NewNop())
	assert.Empty(t, store.Lines(ctx))
}

func TestStore_WriteFailureStillReturnsMutation(t *testing.T) {
	// A failed write is logged, not surfaced: the caller still sees the
	// in-memory effect of the mutation for this request.
	store := NewStore(failingStore{}, "cart:test", zap.NewNop())

	lines := store.Add(context.Background(), 1, 2)

	require.Len(t, lines, 1)
	assert.Equal(t, Line{ProductID: 1, Quantity: 2}, lines[0])
}

func TestEncodeDecodeLines(t *testing.T) {
	lines := []Line{{ProductID: 12, Quantity: 3}, {ProductID: 7, Quantity: 1}}

	got, err := decodeLines(encodeLines(lines))
	require.NoError(t, err)
	assert.Equal(t, lines, got)

	assert.JSONEq(t,
		`[{"productId":12,"quantity":3},{"productId":7,"quantity":1}]`,
		string(encodeLines(lines)),
	)
}

func TestDecodeLines_Empty(t *testing.T) {
	got, err := decodeLines([]byte(`[]`))
	require.NoError(t, err)
	assert.Empty(t, got)
}
