package handler

import (
	"context"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/strokedoutsasquatch-creator/kreaite-sub005/internal/store"
)

// ExportLedger reads the export history.
type ExportLedger interface {
	List(ctx context.Context, limit int) ([]store.ExportRecord, error)
	Get(ctx context.Context, id uuid.UUID) (*store.ExportRecord, error)
}

// TokenInvalidator drops a cached access token.
type TokenInvalidator interface {
	InvalidateToken(ctx context.Context) error
}

// AdminHandler serves the admin endpoints.
type AdminHandler struct {
	ledger ExportLedger
	tokens TokenInvalidator
}

// NewAdminHandler creates an AdminHandler. Either dependency may be nil.
func NewAdminHandler(ledger ExportLedger, tokens TokenInvalidator) *AdminHandler {
	return &AdminHandler{ledger: ledger, tokens: tokens}
}

const maxExportListLimit = 500

// ListExports returns recent exports. Query: limit (default 50, at most 500).
func (h *AdminHandler) ListExports(c *gin.Context) {
	if h.ledger == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "export ledger not configured"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit > maxExportListLimit {
		limit = maxExportListLimit
	}
	records, err := h.ledger.List(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"exports": records, "count": len(records)})
}

// GetExport returns one export record.
func (h *AdminHandler) GetExport(c *gin.Context) {
	if h.ledger == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "export ledger not configured"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "invalid export id")
		return
	}
	rec, err := h.ledger.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// InvalidateToken forces the next Workspace call to fetch a new token.
func (h *AdminHandler) InvalidateToken(c *gin.Context) {
	if h.tokens == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "google workspace is not configured"})
		return
	}
	if err := h.tokens.InvalidateToken(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	log.Printf("Workspace access token invalidated by admin")
	c.JSON(http.StatusOK, gin.H{"status": "OK"})
}
