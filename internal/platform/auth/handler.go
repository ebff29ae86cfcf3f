package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// SessionRegistry opens and closes sessions. session.Manager satisfies this
// interface.
type SessionRegistry interface {
	Open(ctx context.Context, id, username string) error
	Close(ctx context.Context, id string) error
}

type Handler struct {
	manager  *Manager
	sessions SessionRegistry
	logger   zerolog.Logger
}

func NewHandler(manager *Manager, sessions SessionRegistry, logger zerolog.Logger) *Handler {
	return &Handler{manager: manager, sessions: sessions, logger: logger}
}

// Register wires the login route onto the public group and the logout route
// onto the authenticated group.
func (h *Handler) Register(public *echo.Group, authed *echo.Group) {
	public.POST("/auth/login", h.Login)
	authed.POST("/auth/logout", h.Logout)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	token, err := h.manager.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			h.logger.Warn().
				Str("username", req.Username).
				Str("remote_ip", c.RealIP()).
				Msg("failed login attempt")
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "login failed")
	}

	if err := h.sessions.Open(c.Request().Context(), token.SessionID, token.Username); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "login failed")
	}

	return c.JSON(http.StatusOK, token)
}

func (h *Handler) Logout(c echo.Context) error {
	sessionID, _ := c.Get("session_id").(string)
	if sessionID != "" {
		if err := h.sessions.Close(c.Request().Context(), sessionID); err != nil {
			h.logger.Error().Err(err).Msg("failed to close session")
		}
	}
	return c.NoContent(http.StatusNoContent)
}
