// Package handler exposes the storefront core over HTTP. It owns only the
// translation between the wire and the domain: parsing, session handling,
// response shaping, and error mapping. Business rules live in the domain
// packages.
package handler

import (
	"io"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/averku/storefront/internal/domain/auth"
	"github.com/averku/storefront/internal/domain/cart"
	"github.com/averku/storefront/internal/domain/catalog"
	"github.com/averku/storefront/internal/kv"
)

// SessionHeader carries the browse session identifier. The server mints a
// UUID when the client does not send one and always echoes it back, so a
// UI can adopt it on first contact.
const SessionHeader = "X-Session-ID"

// Handler serves the storefront API.
type Handler struct {
	catalog  catalog.Client
	resolver *cart.Resolver
	issuer   auth.TokenIssuer
	store    kv.Store
	lg       *zap.Logger
}

// New constructs a Handler with the required dependencies.
func New(
	catalogClient catalog.Client,
	resolver *cart.Resolver,
	issuer auth.TokenIssuer,
	store kv.Store,
	lg *zap.Logger,
) *Handler {
	return &Handler{
		catalog:  catalogClient,
		resolver: resolver,
		issuer:   issuer,
		store:    store,
		lg:       lg,
	}
}

// Register attaches all API routes to the router.
func (h *Handler) Register(r *mux.Router) {
	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/products", h.listProducts).Methods(http.MethodGet)
	api.HandleFunc("/products/{id}", h.getProduct).Methods(http.MethodGet)
	api.HandleFunc("/categories", h.listCategories).Methods(http.MethodGet)

	api.HandleFunc("/cart", h.getCart).Methods(http.MethodGet)
	api.HandleFunc("/cart", h.clearCart).Methods(http.MethodDelete)
	api.HandleFunc("/cart/items", h.addCartItem).Methods(http.MethodPost)
	api.HandleFunc("/cart/items/{id}", h.setCartItemQuantity).Methods(http.MethodPut)
	api.HandleFunc("/cart/items/{id}", h.removeCartItem).Methods(http.MethodDelete)

	api.HandleFunc("/auth/login", h.login).Methods(http.MethodPost)
	api.HandleFunc("/auth/logout", h.logout).Methods(http.MethodPost)
	api.HandleFunc("/auth/me", h.currentUser).Methods(http.MethodGet)
}

// session returns the request's session id, minting a fresh one when the
// header is absent or not a UUID, and echoes it on the response.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) string {
	id := r.Header.Get(SessionHeader)
	if _, err := uuid.Parse(id); err != nil {
		id = uuid.New().String()
	}
	w.Header().Set(SessionHeader, id)
	return id
}

// cartStore returns the cart Store scoped to the request's session.
func (h *Handler) cartStore(w http.ResponseWriter, r *http.Request) *cart.Store {
	return cart.NewStore(h.store, "cart:"+h.session(w, r), h.lg)
}

// authService returns the auth Service scoped to the request's session.
func (h *Handler) authService(w http.ResponseWriter, r *http.Request) *auth.Service {
	return auth.NewService(h.issuer, h.store, "auth:"+h.session(w, r), h.lg)
}

// errorResponse is the JSON body for every error status.
type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (r errorResponse) encode(e *jx.Encoder) {
	e.ObjStart()
	e.FieldStart("code")
	e.Int(r.Code)
	e.FieldStart("message")
	e.Str(r.Message)
	e.ObjEnd()
}

// respondJSON writes the body produced by encode with the given status.
func respondJSON(w http.ResponseWriter, status int, encode func(e *jx.Encoder)) {
	var e jx.Encoder
	encode(&e)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorResponse{Code: status, Message: message}.encode)
}

// respondCatalogError maps catalog errors to HTTP statuses: a missing
// product is the client's problem, an unreachable catalog is a bad
// gateway.
func respondCatalogError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		respondError(w, http.StatusNotFound, "product not found")
	case errors.Is(err, catalog.ErrUnavailable):
		respondError(w, http.StatusBadGateway, "catalog unavailable")
	default:
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}

// decodeBody runs decode over the request body, answering 400 on any read
// or decode failure.
func decodeBody(w http.ResponseWriter, r *http.Request, decode func(d *jx.Decoder) error) bool {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	if err := decode(jx.DecodeBytes(body)); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
