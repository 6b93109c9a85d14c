package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mr-tron/base58"

	"github.com/fedwallet/walletgate/core"
	"github.com/fedwallet/walletgate/metrics"
	"github.com/fedwallet/walletgate/service"
)

// DirectoryHandlers contains HTTP handlers for the delegation directory
type DirectoryHandlers struct {
	directory *service.DirectoryService
	metrics   *metrics.Metrics
}

// NewDirectoryHandlers creates new directory handlers
func NewDirectoryHandlers(directory *service.DirectoryService, m *metrics.Metrics) *DirectoryHandlers {
	return &DirectoryHandlers{
		directory: directory,
		metrics:   m,
	}
}

// Register handles the signed register instruction
func (h *DirectoryHandlers) Register(c *gin.Context) {
	var req struct {
		Owner     string `json:"owner" binding:"required"`
		Endpoint  string `json:"endpoint"`
		Signature string `json:"signature" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("BAD_REQUEST", "Invalid request"))
		return
	}

	signature, err := base58.Decode(req.Signature)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorBody("BAD_REQUEST", "Signature is not valid base58"))
		return
	}

	if err := h.directory.Register(c.Request.Context(), req.Owner, req.Endpoint, signature); err != nil {
		writeDirectoryError(c, err)
		return
	}

	h.metrics.DirectoryWrites.WithLabelValues("register").Inc()
	c.JSON(http.StatusOK, gin.H{"owner": req.Owner, "endpoint": req.Endpoint})
}

// Unregister handles the signed unregister instruction
func (h *DirectoryHandlers) Unregister(c *gin.Context) {
	var req struct {
		Owner     string `json:"owner" binding:"required"`
		Signature string `json:"signature" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("BAD_REQUEST", "Invalid request"))
		return
	}

	signature, err := base58.Decode(req.Signature)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorBody("BAD_REQUEST", "Signature is not valid base58"))
		return
	}

	reclaimed, err := h.directory.Unregister(c.Request.Context(), req.Owner, signature)
	if err != nil {
		writeDirectoryError(c, err)
		return
	}

	h.metrics.DirectoryWrites.WithLabelValues("unregister").Inc()
	c.JSON(http.StatusOK, gin.H{"owner": req.Owner, "reclaimed_bytes": reclaimed})
}

// Lookup handles the public delegation lookup
func (h *DirectoryHandlers) Lookup(c *gin.Context) {
	record, err := h.directory.Lookup(c.Request.Context(), c.Param("address"))
	if err != nil {
		writeDirectoryError(c, err)
		return
	}

	h.metrics.DirectoryLookups.Inc()
	c.JSON(http.StatusOK, gin.H{
		"endpoint":   record.Endpoint,
		"updated_at": record.UpdatedAt.UTC().Format(time.RFC3339),
	})
}

// writeDirectoryError maps directory service errors to responses
func writeDirectoryError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, core.ErrMalformedAddress):
		c.JSON(http.StatusBadRequest, errorBody("MALFORMED_ADDRESS", "Invalid wallet address"))
	case errors.Is(err, core.ErrEmptyEndpoint):
		c.JSON(http.StatusBadRequest, errorBody("EMPTY_ENDPOINT", "Endpoint cannot be empty"))
	case errors.Is(err, core.ErrEndpointTooLong):
		c.JSON(http.StatusBadRequest, errorBody("ENDPOINT_TOO_LONG", "Endpoint exceeds maximum DNS name length"))
	case errors.Is(err, core.ErrInvalidEndpoint):
		c.JSON(http.StatusBadRequest, errorBody("INVALID_ENDPOINT", "Endpoint is not a valid hostname"))
	case errors.Is(err, core.ErrUnauthorized):
		c.JSON(http.StatusForbidden, errorBody("UNAUTHORIZED", "Signer does not own this record"))
	case errors.Is(err, core.ErrNotFound):
		c.JSON(http.StatusNotFound, errorBody("NOT_FOUND", "No delegation record for this address"))
	default:
		c.JSON(http.StatusInternalServerError, errorBody("INTERNAL", "Internal error"))
	}
}
