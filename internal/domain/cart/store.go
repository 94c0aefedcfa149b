package cart

import (
	"context"

	"github.com/go-faster/jx"
	"go.uber.org/zap"

	"github.com/averku/storefront/internal/kv"
)

// Store owns the persisted cart line set for one session. All operations
// are a full read-modify-write of the line collection under a single key;
// there is one writer per session, so no further coordination is needed.
//
// Persistence failures never reach the caller: an unreadable or
// undecodable stored value degrades to an empty cart, and a failed write
// is logged while the in-memory result of the mutation is still returned.
// After a failed write the persisted state may lag the returned lines
// until the next successful mutation; that divergence is accepted.
type Store struct {
	store kv.Store
	key   string
	lg    *zap.Logger
}

// NewStore creates a cart Store persisting under the given key.
func NewStore(store kv.Store, key string, lg *zap.Logger) *Store {
	return &Store{store: store, key: key, lg: lg}
}

// Lines returns the current persisted line set. It never fails: a read or
// decode error is logged and reported as an empty cart.
func (s *Store) Lines(ctx context.Context) []Line {
	raw, ok, err := s.store.Get(ctx, s.key)
	if err != nil {
		s.lg.Warn("cart read failed, treating as empty",
			zap.String("key", s.key), zap.Error(err))
		return nil
	}
	if !ok {
		return nil
	}
	lines, err := decodeLines([]byte(raw))
	if err != nil {
		s.lg.Warn("stored cart is not decodable, treating as empty",
			zap.String("key", s.key), zap.Error(err))
		return nil
	}
	return lines
}

// Add merges quantity into an existing line for productID or appends a new
// line at the end. A quantity below one counts as one. No upper bound is
// enforced. Returns the post-mutation line set.
func (s *Store) Add(ctx context.Context, productID int64, quantity int) []Line {
	if quantity < 1 {
		quantity = 1
	}
	lines := s.Lines(ctx)
	for i := range lines {
		if lines[i].ProductID == productID {
			lines[i].Quantity += quantity
			s.persist(ctx, lines)
			return lines
		}
	}
	lines = append(lines, Line{ProductID: productID, Quantity: quantity})
	s.persist(ctx, lines)
	return lines
}

// Remove deletes the line for productID. Removing an absent product is a
// no-op, not an error. Returns the post-mutation line set.
func (s *Store) Remove(ctx context.Context, productID int64) []Line {
	lines := s.Lines(ctx)
	for i := range lines {
		if lines[i].ProductID == productID {
			lines = append(lines[:i], lines[i+1:]...)
			s.persist(ctx, lines)
			return lines
		}
	}
	return lines
}

// SetQuantity overwrites the quantity of an existing line. A quantity of
// zero or below removes the line. Setting a quantity for a product not in
// the cart is a no-op: quantity changes never create lines.
func (s *Store) SetQuantity(ctx context.Context, productID int64, quantity int) []Line {
	if quantity <= 0 {
		return s.Remove(ctx, productID)
	}
	lines := s.Lines(ctx)
	for i := range lines {
		if lines[i].ProductID == productID {
			lines[i].Quantity = quantity
			s.persist(ctx, lines)
			break
		}
	}
	return lines
}

// Clear replaces the persisted line set with an empty one.
func (s *Store) Clear(ctx context.Context) {
	s.persist(ctx, nil)
}

func (s *Store) persist(ctx context.Context, lines []Line) {
	if err := s.store.Set(ctx, s.key, string(encodeLines(lines))); err != nil {
		s.lg.Error("cart write failed, persisted state may lag",
			zap.String("key", s.key), zap.Error(err))
	}
}

// encodeLines serializes lines as the JSON array [{"productId":N,"quantity":N}].
func encodeLines(lines []Line) []byte {
	var e jx.Encoder
	e.ArrStart()
	for _, l := range lines {
		e.ObjStart()
		e.FieldStart("productId")
		e.Int64(l.ProductID)
		e.FieldStart("quantity")
		e.Int(l.Quantity)
		e.ObjEnd()
	}
	e.ArrEnd()
	return e.Bytes()
}

func decodeLines(data []byte) ([]Line, error) {
	d := jx.DecodeBytes(data)
	var lines []Line
	if err := d.Arr(func(d *jx.Decoder) error {
		var l Line
		if err := d.Obj(func(d *jx.Decoder, key string) error {
			var err error
			switch key {
			case "productId":
				l.ProductID, err = d.Int64()
			case "quantity":
				l.Quantity, err = d.Int()
			default:
				err = d.Skip()
			}
			return err
		}); err != nil {
			return err
		}
		lines = append(lines, l)
		return nil
	}); err != nil {
		return nil, err
	}
	return lines, nil
}
