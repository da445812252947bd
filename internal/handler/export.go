package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/strokedoutsasquatch-creator/kreaite-sub005/internal/export"
	"github.com/strokedoutsasquatch-creator/kreaite-sub005/internal/model"
	"github.com/strokedoutsasquatch-creator/kreaite-sub005/internal/service"
)

// BlurbAPI drafts a back-cover description.
type BlurbAPI interface {
	WriteBlurb(ctx context.Context, book *export.Book) (string, error)
}

// ExportHandler serves the book export endpoints.
type ExportHandler struct {
	exports *service.ExportService
	blurbs  BlurbAPI
}

// NewExportHandler creates an ExportHandler. blurbs may be nil.
func NewExportHandler(exports *service.ExportService, blurbs BlurbAPI) *ExportHandler {
	return &ExportHandler{exports: exports, blurbs: blurbs}
}

func bindBook(c *gin.Context) (*export.Book, bool) {
	var book export.Book
	if err := c.ShouldBindJSON(&book); err != nil {
		badRequest(c, "invalid book payload: "+err.Error())
		return nil, false
	}
	return &book, true
}

func queryBool(c *gin.Context, key string) bool {
	v, _ := strconv.ParseBool(c.Query(key))
	return v
}

// Validate reports every problem that blocks an export.
func (h *ExportHandler) Validate(c *gin.Context) {
	book, ok := bindBook(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, export.ValidateBookForExport(book))
}

// Stats returns word and page estimates.
func (h *ExportHandler) Stats(c *gin.Context) {
	book, ok := bindBook(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, model.NewStatsResponse(book))
}

// HTML renders the book as a standalone HTML page.
// Query: print, pretty, store.
func (h *ExportHandler) HTML(c *gin.Context) {
	format := service.FormatHTML
	if queryBool(c, "print") {
		format = service.FormatPrintHTML
	}
	h.export(c, format)
}

// EPUB renders the EPUB file tree as JSON (format=json, default) or a packaged
// .epub (format=zip).
func (h *ExportHandler) EPUB(c *gin.Context) {
	switch strings.ToLower(c.DefaultQuery("format", "json")) {
	case "json":
		h.export(c, service.FormatEPUBJSON)
	case "zip", "epub":
		h.export(c, service.FormatEPUB)
	default:
		badRequest(c, "format must be json or zip")
	}
}

func (h *ExportHandler) export(c *gin.Context, format string) {
	book, ok := bindBook(c)
	if !ok {
		return
	}

	out, err := h.exports.Export(c.Request.Context(), book, service.ExportRequest{
		Format: format,
		Pretty: queryBool(c, "pretty"),
		Store:  queryBool(c, "store"),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	if out.Record != nil && out.Record.ID != uuid.Nil {
		c.Header("X-Export-Id", out.Record.ID.String())
	}
	if out.StorageURL != "" {
		c.Header("X-Artifact-Url", out.StorageURL)
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, out.Result.Filename))
	c.Data(http.StatusOK, out.Result.ContentType, out.Result.Content)
}

// Blurb drafts a back-cover description with Gemini.
func (h *ExportHandler) Blurb(c *gin.Context) {
	if h.blurbs == nil {
		respondError(c, service.ErrBlurbNotConfigured)
		return
	}
	book, ok := bindBook(c)
	if !ok {
		return
	}
	if strings.TrimSpace(book.Title) == "" {
		badRequest(c, "title is required")
		return
	}

	blurb, err := h.blurbs.WriteBlurb(c.Request.Context(), book)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.BlurbResponse{Blurb: blurb})
}
