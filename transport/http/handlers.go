package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fedwallet/walletgate/core"
	"github.com/fedwallet/walletgate/metrics"
	"github.com/fedwallet/walletgate/service"
)

// AuthHandlers contains HTTP handlers for the wallet auth endpoints
type AuthHandlers struct {
	authService *service.AuthService
	metrics     *metrics.Metrics
	limiter     *addressLimiter
}

// NewAuthHandlers creates new auth handlers
func NewAuthHandlers(authService *service.AuthService, m *metrics.Metrics, limiter *addressLimiter) *AuthHandlers {
	return &AuthHandlers{
		authService: authService,
		metrics:     m,
		limiter:     limiter,
	}
}

// Challenge handles the nonce challenge request
func (h *AuthHandlers) Challenge(c *gin.Context) {
	if !h.authService.Enabled() {
		// Administratively off: the endpoint does not exist.
		c.JSON(http.StatusNotFound, errorBody("FEATURE_DISABLED", "Wallet authentication is disabled"))
		return
	}

	var req struct {
		Address string `json:"address" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("BAD_REQUEST", "Invalid request"))
		return
	}

	if !h.limiter.allow(req.Address, time.Now()) {
		c.JSON(http.StatusTooManyRequests, errorBody("RATE_LIMITED", "Too many challenge requests"))
		return
	}

	challenge, err := h.authService.RequestChallenge(c.Request.Context(), req.Address)
	if err != nil {
		writeAuthError(c, err)
		return
	}

	h.metrics.ChallengesIssued.Inc()
	c.JSON(http.StatusOK, gin.H{
		"nonce":              challenge.Nonce,
		"message":            challenge.Message,
		"expires_in_seconds": int(time.Until(challenge.ExpiresAt).Round(time.Second).Seconds()),
	})
}

// Login handles the signed-challenge login request
func (h *AuthHandlers) Login(c *gin.Context) {
	var req struct {
		Type      string `json:"type" binding:"required"`
		Address   string `json:"address" binding:"required"`
		Signature string `json:"signature" binding:"required"`
		Nonce     string `json:"nonce" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("BAD_REQUEST", "Invalid request"))
		return
	}

	session, err := h.authService.Login(c.Request.Context(), req.Type, req.Address, req.Signature, req.Nonce)
	if err != nil {
		h.metrics.LoginFailures.Inc()
		writeAuthError(c, err)
		return
	}

	h.metrics.LoginSuccesses.Inc()
	c.JSON(http.StatusOK, gin.H{
		"access_token": session.AccessToken,
		"user_id":      session.UserID,
		"device_id":    session.DeviceID,
	})
}

// Whoami returns the session behind the bearer token
func (h *AuthHandlers) Whoami(c *gin.Context) {
	auth := c.GetHeader("Authorization")
	if len(auth) < 8 || auth[:7] != "Bearer " {
		c.JSON(http.StatusUnauthorized, errorBody("UNAUTHORIZED", "Invalid authorization header"))
		return
	}

	session, err := h.authService.Whoami(c.Request.Context(), auth[7:])
	if err != nil {
		c.JSON(http.StatusUnauthorized, errorBody("UNAUTHORIZED", "Invalid access token"))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id":   session.UserID,
		"device_id": session.DeviceID,
	})
}

func errorBody(code, msg string) gin.H {
	return gin.H{"errcode": code, "error": msg}
}

// writeAuthError maps auth service errors to responses. The three nonce
// lifecycle failures collapse into one generic body so callers cannot
// probe which replay condition they hit.
func writeAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, core.ErrFeatureDisabled):
		c.JSON(http.StatusNotFound, errorBody("FEATURE_DISABLED", "Wallet authentication is disabled"))
	case errors.Is(err, core.ErrMalformedAddress):
		c.JSON(http.StatusBadRequest, errorBody("MALFORMED_ADDRESS", "Invalid wallet address"))
	case errors.Is(err, core.ErrNonceNotFound),
		errors.Is(err, core.ErrNonceExpired),
		errors.Is(err, core.ErrNonceAlreadyUsed):
		c.JSON(http.StatusForbidden, errorBody("AUTHENTICATION_FAILED", "Authentication failed"))
	case errors.Is(err, core.ErrInvalidSignature):
		c.JSON(http.StatusForbidden, errorBody("INVALID_SIGNATURE", "Signature verification failed"))
	case errors.Is(err, core.ErrUnknownLoginType):
		c.JSON(http.StatusBadRequest, errorBody("UNKNOWN_LOGIN_TYPE", "Unrecognized login type"))
	default:
		c.JSON(http.StatusInternalServerError, errorBody("INTERNAL", "Internal error"))
	}
}
