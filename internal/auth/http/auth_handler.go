package http

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	authDomain "github.com/svit-erp/portalgate/internal/auth/domain"
	"github.com/svit-erp/portalgate/internal/auth/http/dto"
	authService "github.com/svit-erp/portalgate/internal/auth/service"
	authUseCase "github.com/svit-erp/portalgate/internal/auth/usecase"
	"github.com/svit-erp/portalgate/internal/httputil"
)

// DefaultLoginTimeout bounds a login request when none is configured.
const DefaultLoginTimeout = 5 * time.Second

// AuthHandler handles the login, logout and session endpoints.
type AuthHandler struct {
	authenticator authUseCase.Authenticator
	codec         authService.SessionCodec
	cookie        SessionCookie
	loginTimeout  time.Duration
	logger        *slog.Logger
}

// NewAuthHandler creates a new auth handler with required dependencies.
func NewAuthHandler(
	authenticator authUseCase.Authenticator,
	codec authService.SessionCodec,
	cookie SessionCookie,
	loginTimeout time.Duration,
	logger *slog.Logger,
) *AuthHandler {
	if loginTimeout <= 0 {
		loginTimeout = DefaultLoginTimeout
	}
	return &AuthHandler{
		authenticator: authenticator,
		codec:         codec,
		cookie:        cookie,
		loginTimeout:  loginTimeout,
		logger:        logger,
	}
}

// LoginHandler authenticates the posted credentials and sets the session cookie.
// POST /api/auth/login - No authentication required.
//
// Every credential failure, including a store outage, yields the same 401 body so the response
// never tells an unknown login name from a wrong password.
func (h *AuthHandler) LoginHandler(c *gin.Context) {
	var req dto.LoginRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		h.logger.Debug("login rejected by validation", slog.Any("error", err))
		h.rejectLogin(c)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.loginTimeout)
	defer cancel()

	identity, err := h.authenticator.Login(ctx, req.Username, req.Password)
	if err != nil {
		h.handleLoginError(c, err)
		return
	}

	token, err := h.codec.Issue(identity)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	h.cookie.Set(c, token)

	h.logger.Debug("login succeeded",
		slog.String("role", identity.Role.String()),
		slog.String("principal_id", identity.ID))

	c.JSON(http.StatusOK, dto.NewLoginSuccess(identity))
}

// LogoutHandler clears the session cookie. It is idempotent and needs no session.
// POST /api/auth/logout
func (h *AuthHandler) LogoutHandler(c *gin.Context) {
	h.cookie.Clear(c)
	c.JSON(http.StatusOK, dto.LogoutResponse{Success: true})
}

// SessionHandler reports who the caller is, if anyone.
// GET /api/auth/session
func (h *AuthHandler) SessionHandler(c *gin.Context) {
	token := h.cookie.Token(c)
	if token == "" {
		c.JSON(http.StatusOK, dto.SessionResponse{Authenticated: false})
		return
	}

	identity, err := h.codec.Parse(token)
	if err != nil {
		h.logger.Debug("session cookie rejected", slog.Any("error", err))
		c.JSON(http.StatusOK, dto.SessionResponse{Authenticated: false})
		return
	}

	c.JSON(http.StatusOK, dto.SessionResponse{
		Authenticated: true,
		User:          dto.MapIdentityToResponse(identity),
	})
}

func (h *AuthHandler) handleLoginError(c *gin.Context, err error) {
	if errors.Is(err, authDomain.ErrLocked) {
		var lockout *authDomain.LockoutError
		if errors.As(err, &lockout) {
			c.Header("Retry-After", retryAfterSeconds(lockout.RetryAfter))
		}
		h.logger.Info("login refused, login name locked")
		c.JSON(http.StatusTooManyRequests, dto.NewLoginFailure(dto.LockedMessage))
		return
	}

	switch {
	case errors.Is(err, authDomain.ErrInvalidCredentials):
		h.logger.Debug("login failed", slog.Any("error", err))
	case errors.Is(err, authDomain.ErrStoreUnavailable):
		h.logger.Error("login failed, credential store unavailable", slog.Any("error", err))
	default:
		h.logger.Error("login failed", slog.Any("error", err))
	}

	h.rejectLogin(c)
}

func (h *AuthHandler) rejectLogin(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, dto.NewLoginFailure(dto.LoginFailedMessage))
}

// retryAfterSeconds rounds d up to whole seconds, never below one.
func retryAfterSeconds(d time.Duration) string {
	seconds := int(math.Ceil(d.Seconds()))
	if seconds < 1 {
		seconds = 1
	}
	return strconv.Itoa(seconds)
}
