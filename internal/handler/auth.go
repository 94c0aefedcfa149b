package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/averku/storefront/internal/domain/auth"
	"github.com/averku/storefront/internal/domain/catalog"
)

type userResponse struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"firstname"`
	LastName  string `json:"lastname"`
}

func toUserResponse(u auth.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}

func (u userResponse) encode(e *jx.Encoder) {
	e.ObjStart()
	e.FieldStart("id")
	e.Int64(u.ID)
	e.FieldStart("username")
	e.Str(u.Username)
	e.FieldStart("email")
	e.Str(u.Email)
	e.FieldStart("firstname")
	e.Str(u.FirstName)
	e.FieldStart("lastname")
	e.Str(u.LastName)
	e.ObjEnd()
}

// loginRequest is the POST /auth/login body.
type loginRequest struct {
	Username string
	Password string
}

func (req *loginRequest) decode(d *jx.Decoder) error {
	return d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "username":
			req.Username, err = d.Str()
		case "password":
			req.Password, err = d.Str()
		default:
			err = d.Skip()
		}
		return err
	})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeBody(w, r, req.decode) {
		return
	}
	if req.Username == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	session, err := h.authService(w, r).Login(r.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			respondError(w, http.StatusUnauthorized, "invalid credentials")
		case errors.Is(err, catalog.ErrUnavailable):
			respondError(w, http.StatusBadGateway, "authentication service unavailable")
		default:
			respondError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	user := toUserResponse(session.User)
	respondJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("token")
		e.Str(session.Token)
		e.FieldStart("user")
		user.encode(e)
		e.ObjEnd()
	})
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	h.authService(w, r).Logout(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) currentUser(w http.ResponseWriter, r *http.Request) {
	user := h.authService(w, r).CurrentUser(r.Context())
	if user == nil {
		respondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	respondJSON(w, http.StatusOK, toUserResponse(*user).encode)
}
