package handler

import (
	"net/http"
	"strconv"

	"github.com/go-faster/jx"
	"github.com/gorilla/mux"

	"github.com/averku/storefront/internal/domain/cart"
)

// lineResponse is the wire shape of one persisted cart line.
type lineResponse struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

// cartItemResponse is a line joined with its resolved product. Product is
// null when the catalog fetch for that line failed; UIs render an
// "unavailable" placeholder instead of dropping the line.
type cartItemResponse struct {
	ProductID int64            `json:"productId"`
	Quantity  int              `json:"quantity"`
	Product   *productResponse `json:"product,omitempty"`
}

// cartSummaryResponse is the live cart view.
type cartSummaryResponse struct {
	TotalItems  int                `json:"totalItems"`
	TotalAmount float64            `json:"totalAmount"`
	Items       []cartItemResponse `json:"items"`
}

func (l lineResponse) encode(e *jx.Encoder) {
	e.ObjStart()
	e.FieldStart("productId")
	e.Int64(l.ProductID)
	e.FieldStart("quantity")
	e.Int(l.Quantity)
	e.ObjEnd()
}

func (it cartItemResponse) encode(e *jx.Encoder) {
	e.ObjStart()
	e.FieldStart("productId")
	e.Int64(it.ProductID)
	e.FieldStart("quantity")
	e.Int(it.Quantity)
	if it.Product != nil {
		e.FieldStart("product")
		it.Product.encode(e)
	}
	e.ObjEnd()
}

func (s cartSummaryResponse) encode(e *jx.Encoder) {
	e.ObjStart()
	e.FieldStart("totalItems")
	e.Int(s.TotalItems)
	e.FieldStart("totalAmount")
	e.Float64(s.TotalAmount)
	e.FieldStart("items")
	e.ArrStart()
	for _, it := range s.Items {
		it.encode(e)
	}
	e.ArrEnd()
	e.ObjEnd()
}

// respondLines writes the post-mutation line set every mutating cart
// route returns.
func respondLines(w http.ResponseWriter, lines []cart.Line) {
	respondJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.ArrStart()
		for _, l := range lines {
			lineResponse{ProductID: l.ProductID, Quantity: l.Quantity}.encode(e)
		}
		e.ArrEnd()
	})
}

// getCart serves the resolved cart summary. Lines whose product fetch
// failed still appear, with a null product and a zero contribution to the
// total amount.
func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	store := h.cartStore(w, r)
	summary := h.resolver.Summarize(r.Context(), store.Lines(r.Context()))

	items := make([]cartItemResponse, len(summary.Items))
	for i, it := range summary.Items {
		items[i] = cartItemResponse{ProductID: it.ProductID, Quantity: it.Quantity}
		if it.Product != nil {
			p := toProductResponse(*it.Product)
			items[i].Product = &p
		}
	}

	respondJSON(w, http.StatusOK, cartSummaryResponse{
		TotalItems:  summary.TotalItems,
		TotalAmount: summary.TotalAmount.Round(2).InexactFloat64(),
		Items:       items,
	}.encode)
}

// addItemRequest is the POST /cart/items body.
type addItemRequest struct {
	ProductID int64
	Quantity  int
}

func (req *addItemRequest) decode(d *jx.Decoder) error {
	return d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "productId":
			req.ProductID, err = d.Int64()
		case "quantity":
			req.Quantity, err = d.Int()
		default:
			err = d.Skip()
		}
		return err
	})
}

func (h *Handler) addCartItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if !decodeBody(w, r, req.decode) {
		return
	}
	if req.ProductID <= 0 {
		respondError(w, http.StatusBadRequest, "productId is required")
		return
	}
	if req.Quantity < 0 {
		respondError(w, http.StatusBadRequest, "quantity must not be negative")
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	lines := h.cartStore(w, r).Add(r.Context(), req.ProductID, req.Quantity)
	respondLines(w, lines)
}

// setQuantityRequest is the PUT /cart/items/{id} body.
type setQuantityRequest struct {
	Quantity int
}

func (req *setQuantityRequest) decode(d *jx.Decoder) error {
	return d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "quantity":
			req.Quantity, err = d.Int()
		default:
			err = d.Skip()
		}
		return err
	})
}

func (h *Handler) setCartItemQuantity(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	var req setQuantityRequest
	if !decodeBody(w, r, req.decode) {
		return
	}

	lines := h.cartStore(w, r).SetQuantity(r.Context(), productID, req.Quantity)
	respondLines(w, lines)
}

func (h *Handler) removeCartItem(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	lines := h.cartStore(w, r).Remove(r.Context(), productID)
	respondLines(w, lines)
}

func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	h.cartStore(w, r).Clear(r.Context())
	w.WriteHeader(http.StatusNoContent)
}
