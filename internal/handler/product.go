package handler

import (
	"net/http"
	"strconv"

	"github.com/go-faster/jx"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/averku/storefront/internal/domain/catalog"
)

// productResponse is the wire shape of a product.
type productResponse struct {
	ID          int64           `json:"id"`
	Title       string          `json:"title"`
	Price       float64         `json:"price"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Image       string          `json:"image"`
	Rating      *ratingResponse `json:"rating,omitempty"`
}

type ratingResponse struct {
	Rate  float64 `json:"rate"`
	Count int     `json:"count"`
}

func toProductResponse(p catalog.Product) productResponse {
	out := productResponse{
		ID:          p.ID,
		Title:       p.Title,
		Price:       p.Price.InexactFloat64(),
		Description: p.Description,
		Category:    p.Category,
		Image:       p.Image,
	}
	if p.Rating != nil {
		out.Rating = &ratingResponse{Rate: p.Rating.Rate, Count: p.Rating.Count}
	}
	return out
}

func (p productResponse) encode(e *jx.Encoder) {
	e.ObjStart()
	e.FieldStart("id")
	e.Int64(p.ID)
	e.FieldStart("title")
	e.Str(p.Title)
	e.FieldStart("price")
	e.Float64(p.Price)
	e.FieldStart("description")
	e.Str(p.Description)
	e.FieldStart("category")
	e.Str(p.Category)
	e.FieldStart("image")
	e.Str(p.Image)
	if p.Rating != nil {
		e.FieldStart("rating")
		e.ObjStart()
		e.FieldStart("rate")
		e.Float64(p.Rating.Rate)
		e.FieldStart("count")
		e.Int(p.Rating.Count)
		e.ObjEnd()
	}
	e.ObjEnd()
}

// listProducts serves the browse view: the full catalog narrowed by the
// filter query parameters and ordered by the sort key.
//
// Query parameters: category, min_price, max_price, search, sort.
func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	filter, ok := parseFilter(w, r)
	if !ok {
		return
	}

	products, err := h.catalog.List(r.Context())
	if err != nil {
		respondCatalogError(w, err)
		return
	}

	products = filter.Apply(products)
	if key := r.URL.Query().Get("sort"); key != "" {
		products = catalog.SortBy(products, key)
	}

	respondJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.ArrStart()
		for _, p := range products {
			toProductResponse(p).encode(e)
		}
		e.ArrEnd()
	})
}

func parseFilter(w http.ResponseWriter, r *http.Request) (catalog.Filter, bool) {
	q := r.URL.Query()
	filter := catalog.Filter{
		Category:   q.Get("category"),
		SearchTerm: q.Get("search"),
	}

	if raw := q.Get("min_price"); raw != "" {
		min, err := decimal.NewFromString(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid min_price")
			return catalog.Filter{}, false
		}
		filter.MinPrice = &min
	}
	if raw := q.Get("max_price"); raw != "" {
		max, err := decimal.NewFromString(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid max_price")
			return catalog.Filter{}, false
		}
		filter.MaxPrice = &max
	}
	return filter, true
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	p, err := h.catalog.GetByID(r.Context(), id)
	if err != nil {
		respondCatalogError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toProductResponse(*p).encode)
}

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalog.Categories(r.Context())
	if err != nil {
		respondCatalogError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.ArrStart()
		for _, c := range categories {
			e.Str(c)
		}
		e.ArrEnd()
	})
}
