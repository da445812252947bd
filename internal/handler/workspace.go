package handler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/strokedoutsasquatch-creator/kreaite-sub005/internal/model"
	"github.com/strokedoutsasquatch-creator/kreaite-sub005/internal/service"
	"google.golang.org/api/googleapi"
)

// WorkspaceAPI is the Google Workspace surface used by the HTTP layer.
type WorkspaceAPI interface {
	CreateDocument(ctx context.Context, title, content string) (*service.DocumentInfo, error)
	GetDocument(ctx context.Context, documentID string) (*service.DocumentInfo, error)
	UpdateDocument(ctx context.Context, documentID, content string) (*service.DocUpdateResult, error)
	CreatePresentation(ctx context.Context, title string, slides []service.SlideSpec) (*service.PresentationInfo, error)
	CreateSpreadsheet(ctx context.Context, title string, sheet service.SheetSpec) (*service.SpreadsheetInfo, error)
	CreateForm(ctx context.Context, spec service.FormSpec) (*service.FormInfo, error)
	ExportDocument(ctx context.Context, fileID, format string) (*service.ExportedFile, error)
	InvalidateToken(ctx context.Context) error
}

// WorkspaceHandler serves the Google Workspace endpoints.
type WorkspaceHandler struct {
	ws     WorkspaceAPI
	getenv func(string) string
}

// NewWorkspaceHandler creates a WorkspaceHandler. ws is nil when the service
// account is not configured.
func NewWorkspaceHandler(ws WorkspaceAPI, getenv func(string) string) *WorkspaceHandler {
	return &WorkspaceHandler{ws: ws, getenv: getenv}
}

// RequireConfigured rejects workspace calls with 503 when no client exists.
func (h *WorkspaceHandler) RequireConfigured() gin.HandlerFunc {
	return func(c *gin.Context) {
		if h.ws == nil {
			respondError(c, service.ErrNotConfigured)
			return
		}
		c.Next()
	}
}

// Status reports which Workspace credentials are present.
func (h *WorkspaceHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, service.GetWorkspaceStatus(h.getenv))
}

// fail invalidates the cached token on 401 before responding.
func (h *WorkspaceHandler) fail(c *gin.Context, err error) {
	h.invalidateOnUnauthorized(c, err)
	respondError(c, err)
}

func (h *WorkspaceHandler) invalidateOnUnauthorized(c *gin.Context, err error) {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Code == http.StatusUnauthorized {
		if ierr := h.ws.InvalidateToken(c.Request.Context()); ierr != nil {
			log.Printf("Warning: failed to invalidate workspace token: %v", ierr)
		}
	}
}

// CreateDocument creates a Google Doc.
func (h *WorkspaceHandler) CreateDocument(c *gin.Context) {
	var req model.CreateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "title is required")
		return
	}

	info, err := h.ws.CreateDocument(c.Request.Context(), req.Title, req.Content)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, info)
}

// GetDocument returns a Google Doc with its plain text.
func (h *WorkspaceHandler) GetDocument(c *gin.Context) {
	info, err := h.ws.GetDocument(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

// UpdateDocument replaces the body of a Google Doc.
func (h *WorkspaceHandler) UpdateDocument(c *gin.Context) {
	var req model.UpdateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid payload")
		return
	}

	res, err := h.ws.UpdateDocument(c.Request.Context(), c.Param("id"), req.Content)
	if err != nil {
		if res != nil && res.Outcome == service.DeletedButInsertFailed {
			h.invalidateOnUnauthorized(c, err)
			// the body is gone; hand the caller its backup
			c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{
				"error":        err.Error(),
				"outcome":      res.Outcome,
				"previousText": res.PreviousText,
			})
			return
		}
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// CreatePresentation creates a Google Slides deck.
func (h *WorkspaceHandler) CreatePresentation(c *gin.Context) {
	var req model.CreatePresentationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "title is required")
		return
	}

	info, err := h.ws.CreatePresentation(c.Request.Context(), req.Title, req.Slides)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, info)
}

// CreateSpreadsheet creates a Google Sheet.
func (h *WorkspaceHandler) CreateSpreadsheet(c *gin.Context) {
	var req model.CreateSpreadsheetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "title is required")
		return
	}

	info, err := h.ws.CreateSpreadsheet(c.Request.Context(), req.Title, req.Sheet)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, info)
}

// CreateForm creates a Google Form.
func (h *WorkspaceHandler) CreateForm(c *gin.Context) {
	var spec service.FormSpec
	if err := c.ShouldBindJSON(&spec); err != nil || spec.Title == "" {
		badRequest(c, "title is required")
		return
	}

	info, err := h.ws.CreateForm(c.Request.Context(), spec)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, info)
}

// ExportFile converts a Drive file with the export API.
func (h *WorkspaceHandler) ExportFile(c *gin.Context) {
	format := c.DefaultQuery("format", "pdf")

	file, err := h.ws.ExportDocument(c.Request.Context(), c.Param("id"), format)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, file.Filename))
	c.Data(http.StatusOK, file.MimeType, file.Data)
}
