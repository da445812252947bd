package handler

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/strokedoutsasquatch-creator/kreaite-sub005/internal/config"
	"github.com/strokedoutsasquatch-creator/kreaite-sub005/internal/observability"
	"github.com/strokedoutsasquatch-creator/kreaite-sub005/internal/service"
)

// NewRouter wires every route onto a new gin engine.
func NewRouter(settings *config.Settings, services *service.Services) *gin.Engine {
	router := gin.New()
	router.Use(
		gin.Recovery(),
		observability.RequestContextMiddleware(settings.GCPProjectID),
		observability.AccessLogMiddleware(),
		observability.MetricsMiddleware(),
	)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})
	router.GET("/metrics", observability.MetricsHandler())

	// typed nils must not reach the interfaces below
	var blurbs BlurbAPI
	if services.BlurbWriter != nil {
		blurbs = services.BlurbWriter
	}
	var ws WorkspaceAPI
	var tokens TokenInvalidator
	if services.Workspace != nil {
		ws = services.Workspace
		tokens = services.Workspace
	}
	var ledger ExportLedger
	if services.ExportRepo != nil {
		ledger = services.ExportRepo
	}
	getenv := services.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}

	exportService := services.Exports
	if exportService == nil {
		exportService = service.NewExportService(nil, nil, services.DiscordNotifier)
	}

	exports := NewExportHandler(exportService, blurbs)
	exportGroup := router.Group("/api/export")
	{
		exportGroup.POST("/validate", exports.Validate)
		exportGroup.POST("/stats", exports.Stats)
		exportGroup.POST("/html", exports.HTML)
		exportGroup.POST("/epub", exports.EPUB)
		exportGroup.POST("/blurb", exports.Blurb)
	}

	workspace := NewWorkspaceHandler(ws, getenv)
	router.GET("/api/workspace/status", workspace.Status)
	wsGroup := router.Group("/api/workspace", workspace.RequireConfigured())
	{
		wsGroup.POST("/docs", workspace.CreateDocument)
		wsGroup.GET("/docs/:id", workspace.GetDocument)
		wsGroup.PUT("/docs/:id", workspace.UpdateDocument)
		wsGroup.POST("/slides", workspace.CreatePresentation)
		wsGroup.POST("/sheets", workspace.CreateSpreadsheet)
		wsGroup.POST("/forms", workspace.CreateForm)
		wsGroup.GET("/files/:id/export", workspace.ExportFile)
	}

	admin := NewAdminHandler(ledger, tokens)
	adminGroup := router.Group("/admin", AdminAuthMiddleware(settings))
	{
		adminGroup.GET("/exports", admin.ListExports)
		adminGroup.GET("/exports/:id", admin.GetExport)
		adminGroup.POST("/token/invalidate", admin.InvalidateToken)
	}

	return router
}
