package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-ticket-reservation/internal/apperr"
	"github.com/iliyamo/event-ticket-reservation/internal/model"
	"github.com/iliyamo/event-ticket-reservation/internal/service"
)

// AuthService is what AuthHandler needs from the service layer.
type AuthService interface {
	Register(ctx context.Context, in service.RegisterInput) (model.User, error)
	Login(ctx context.Context, email, password string) (string, error)
	Logout(ctx context.Context, sess service.Session) error
	Me(ctx context.Context, userID uint64) (model.User, error)
}

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Auth AuthService
}

func NewAuthHandler(a AuthService) *AuthHandler { return &AuthHandler{Auth: a} }

// ----- DTOs -----

type registerReq struct {
	Name                 string `json:"name"`
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates a user.  It is only reachable with a bearer token.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	u, err := h.Auth.Register(c.Request().Context(), service.RegisterInput(req))
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusCreated, "User register successfully.", u)
}

// Login verifies credentials and returns a bearer token under "token".
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	if req.Email == "" || req.Password == "" {
		return respondError(c, apperr.InvalidInputf("email and password are required"))
	}
	token, err := h.Auth.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return respondError(c, err)
	}
	return respondToken(c, http.StatusOK, "User login successfully.", token)
}

// Logout revokes the bearer token used for this request.
func (h *AuthHandler) Logout(c echo.Context) error {
	sess, ok := currentSession(c)
	if !ok {
		return respondError(c, apperr.Unauthorizedf("unauthenticated"))
	}
	if err := h.Auth.Logout(c.Request().Context(), sess); err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, "User logout successfully.", nil)
}

// Me returns the authenticated user.
func (h *AuthHandler) Me(c echo.Context) error {
	u, err := h.Auth.Me(c.Request().Context(), currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, "User retrieved successfully.", u)
}
