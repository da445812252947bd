package handler

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/strokedoutsasquatch-creator/kreaite-sub005/internal/config"
	"github.com/strokedoutsasquatch-creator/kreaite-sub005/internal/export"
	"github.com/strokedoutsasquatch-creator/kreaite-sub005/internal/service"
	"github.com/strokedoutsasquatch-creator/kreaite-sub005/internal/store"
	"google.golang.org/api/googleapi"
)

const bookJSON = `{
  "title": "Walking Again",
  "author": "Sam Rivera",
  "dedication": "For everyone still relearning.",
  "chapters": [
    {"title": "The Fall", "content": "It started on a Tuesday.\n\nNothing felt right."},
    {"title": "First Steps", "content": "## Morning\n\nOne step, then another."}
  ]
}`

func testSettings() *config.Settings {
	return &config.Settings{AdminAuthMode: "required", AdminToken: "secret"}
}

func newTestRouter(services *service.Services) *gin.Engine {
	gin.SetMode(gin.TestMode)
	if services.Getenv == nil {
		services.Getenv = func(string) string { return "" }
	}
	return NewRouter(testSettings(), services)
}

func do(r *gin.Engine, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealthAndMetrics(t *testing.T) {
	r := newTestRouter(&service.Services{})

	if w := do(r, http.MethodGet, "/health", ""); w.Code != http.StatusOK {
		t.Fatalf("health: %d", w.Code)
	}
	do(r, http.MethodPost, "/api/export/stats", bookJSON)
	w := do(r, http.MethodGet, "/metrics", "")
	if w.Code != http.StatusOK {
		t.Fatalf("metrics: %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "kreaite_http_request_duration_seconds") {
		t.Fatalf("metrics output missing request histogram")
	}
}

func TestExportValidateAndStats(t *testing.T) {
	r := newTestRouter(&service.Services{})

	t.Run("validate invalid book", func(t *testing.T) {
		w := do(r, http.MethodPost, "/api/export/validate", `{"chapters":[{"title":"","content":""}]}`)
		if w.Code != http.StatusOK {
			t.Fatalf("status %d", w.Code)
		}
		var res export.ValidationResult
		json.Unmarshal(w.Body.Bytes(), &res)
		// title, author, chapter title, chapter content
		if res.Valid || len(res.Errors) != 4 {
			t.Fatalf("unexpected result %+v", res)
		}
	})

	t.Run("stats", func(t *testing.T) {
		w := do(r, http.MethodPost, "/api/export/stats", bookJSON)
		var res struct {
			WordCount    int `json:"wordCount"`
			PageCount    int `json:"pageCount"`
			ChapterCount int `json:"chapterCount"`
		}
		json.Unmarshal(w.Body.Bytes(), &res)
		if res.WordCount != 14 || res.PageCount != 6 || res.ChapterCount != 2 {
			t.Fatalf("unexpected stats %+v", res)
		}
	})

	t.Run("malformed json", func(t *testing.T) {
		if w := do(r, http.MethodPost, "/api/export/stats", `{"title":`); w.Code != http.StatusBadRequest {
			t.Fatalf("status %d", w.Code)
		}
	})
}

func TestExportHTML(t *testing.T) {
	r := newTestRouter(&service.Services{})

	t.Run("screen", func(t *testing.T) {
		w := do(r, http.MethodPost, "/api/export/html", bookJSON)
		if w.Code != http.StatusOK {
			t.Fatalf("status %d: %s", w.Code, w.Body.String())
		}
		if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
			t.Fatalf("Content-Type = %q", ct)
		}
		if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "walking-again.html") {
			t.Fatalf("Content-Disposition = %q", cd)
		}
		if !strings.Contains(w.Body.String(), "<h2>Morning</h2>") {
			t.Fatalf("chapter markup missing")
		}
	})

	t.Run("print", func(t *testing.T) {
		w := do(r, http.MethodPost, "/api/export/html?print=true", bookJSON)
		if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "walking-again-print.html") {
			t.Fatalf("Content-Disposition = %q", cd)
		}
	})

	t.Run("invalid book", func(t *testing.T) {
		w := do(r, http.MethodPost, "/api/export/html", `{"title":"Only a title"}`)
		if w.Code != http.StatusUnprocessableEntity {
			t.Fatalf("status %d", w.Code)
		}
		var res struct {
			Errors []string `json:"errors"`
		}
		json.Unmarshal(w.Body.Bytes(), &res)
		if len(res.Errors) != 2 {
			t.Fatalf("errors = %v", res.Errors)
		}
	})

	t.Run("store without storage", func(t *testing.T) {
		if w := do(r, http.MethodPost, "/api/export/html?store=true", bookJSON); w.Code != http.StatusServiceUnavailable {
			t.Fatalf("status %d", w.Code)
		}
	})
}

func TestExportEPUB(t *testing.T) {
	r := newTestRouter(&service.Services{})

	t.Run("json", func(t *testing.T) {
		w := do(r, http.MethodPost, "/api/export/epub", bookJSON)
		if w.Code != http.StatusOK {
			t.Fatalf("status %d", w.Code)
		}
		var files map[string]string
		if err := json.Unmarshal(w.Body.Bytes(), &files); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(files) != 8 {
			t.Fatalf("expected 6 fixed files + 2 chapters, got %d", len(files))
		}
		if files["mimetype"] != "application/epub+zip" {
			t.Fatalf("mimetype = %q", files["mimetype"])
		}
	})

	t.Run("zip", func(t *testing.T) {
		w := do(r, http.MethodPost, "/api/export/epub?format=zip", bookJSON)
		if w.Code != http.StatusOK {
			t.Fatalf("status %d", w.Code)
		}
		zr, err := zip.NewReader(bytes.NewReader(w.Body.Bytes()), int64(w.Body.Len()))
		if err != nil {
			t.Fatalf("zip: %v", err)
		}
		if zr.File[0].Name != "mimetype" {
			t.Fatalf("first entry = %s", zr.File[0].Name)
		}
	})

	t.Run("bad format", func(t *testing.T) {
		if w := do(r, http.MethodPost, "/api/export/epub?format=mobi", bookJSON); w.Code != http.StatusBadRequest {
			t.Fatalf("status %d", w.Code)
		}
	})
}

type fakeBlurbs struct {
	err error
}

func (f *fakeBlurbs) WriteBlurb(_ context.Context, book *export.Book) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "A story about " + book.Title, nil
}

func TestExportBlurb(t *testing.T) {
	t.Run("not configured", func(t *testing.T) {
		r := newTestRouter(&service.Services{})
		if w := do(r, http.MethodPost, "/api/export/blurb", bookJSON); w.Code != http.StatusServiceUnavailable {
			t.Fatalf("status %d", w.Code)
		}
	})

	t.Run("writes blurb", func(t *testing.T) {
		gin.SetMode(gin.TestMode)
		r := gin.New()
		h := NewExportHandler(service.NewExportService(nil, nil, nil), &fakeBlurbs{})
		r.POST("/blurb", h.Blurb)

		w := do(r, http.MethodPost, "/blurb", bookJSON)
		if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "A story about Walking Again") {
			t.Fatalf("status %d body %s", w.Code, w.Body.String())
		}
		if w := do(r, http.MethodPost, "/blurb", `{"author":"x"}`); w.Code != http.StatusBadRequest {
			t.Fatalf("missing title: status %d", w.Code)
		}
	})
}

type fakeWorkspace struct {
	updateResult *service.DocUpdateResult
	err          error
	invalidated  int
}

func (f *fakeWorkspace) CreateDocument(_ context.Context, title, _ string) (*service.DocumentInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &service.DocumentInfo{ID: "doc-1", Title: title}, nil
}

func (f *fakeWorkspace) GetDocument(_ context.Context, id string) (*service.DocumentInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &service.DocumentInfo{ID: id, Text: "body"}, nil
}

func (f *fakeWorkspace) UpdateDocument(_ context.Context, _, _ string) (*service.DocUpdateResult, error) {
	return f.updateResult, f.err
}

func (f *fakeWorkspace) CreatePresentation(_ context.Context, title string, slides []service.SlideSpec) (*service.PresentationInfo, error) {
	return &service.PresentationInfo{ID: "pres-1", Title: title, SlideCount: len(slides)}, f.err
}

func (f *fakeWorkspace) CreateSpreadsheet(_ context.Context, title string, sheet service.SheetSpec) (*service.SpreadsheetInfo, error) {
	return &service.SpreadsheetInfo{ID: "sheet-1", Title: title, RowCount: len(sheet.Rows)}, f.err
}

func (f *fakeWorkspace) CreateForm(_ context.Context, spec service.FormSpec) (*service.FormInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &service.FormInfo{ID: "form-1", Title: spec.Title}, nil
}

func (f *fakeWorkspace) ExportDocument(_ context.Context, id, format string) (*service.ExportedFile, error) {
	if _, err := service.ExportMimeType(format); err != nil {
		return nil, err
	}
	return &service.ExportedFile{Data: []byte("%PDF-1.4"), Filename: id + ".pdf", MimeType: "application/pdf"}, nil
}

func (f *fakeWorkspace) InvalidateToken(context.Context) error {
	f.invalidated++
	return nil
}

func workspaceRouter(ws WorkspaceAPI) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewWorkspaceHandler(ws, func(string) string { return "" })
	g := r.Group("/api/workspace", h.RequireConfigured())
	g.POST("/docs", h.CreateDocument)
	g.GET("/docs/:id", h.GetDocument)
	g.PUT("/docs/:id", h.UpdateDocument)
	g.POST("/slides", h.CreatePresentation)
	g.POST("/sheets", h.CreateSpreadsheet)
	g.POST("/forms", h.CreateForm)
	g.GET("/files/:id/export", h.ExportFile)
	return r
}

func TestWorkspaceNotConfigured(t *testing.T) {
	r := newTestRouter(&service.Services{})

	for _, route := range []struct{ method, path, body string }{
		{http.MethodPost, "/api/workspace/docs", `{"title":"x"}`},
		{http.MethodGet, "/api/workspace/docs/doc-1", ""},
		{http.MethodPost, "/api/workspace/forms", `{"title":"x"}`},
		{http.MethodGet, "/api/workspace/files/doc-1/export?format=pdf", ""},
	} {
		if w := do(r, route.method, route.path, route.body); w.Code != http.StatusServiceUnavailable {
			t.Fatalf("%s %s: status %d", route.method, route.path, w.Code)
		}
	}

	w := do(r, http.MethodGet, "/api/workspace/status", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"configured":false`) {
		t.Fatalf("status: %d %s", w.Code, w.Body.String())
	}
}

func TestWorkspaceRoutes(t *testing.T) {
	r := workspaceRouter(&fakeWorkspace{})

	tests := []struct {
		method, path, body string
		want               int
		contains           string
	}{
		{http.MethodPost, "/api/workspace/docs", `{"title":"Draft","content":"hi"}`, http.StatusCreated, `"id":"doc-1"`},
		{http.MethodPost, "/api/workspace/docs", `{"content":"no title"}`, http.StatusBadRequest, "title is required"},
		{http.MethodGet, "/api/workspace/docs/doc-7", "", http.StatusOK, `"text":"body"`},
		{http.MethodPost, "/api/workspace/slides", `{"title":"Deck","slides":[{"title":"a"},{"title":"b"}]}`, http.StatusCreated, `"slideCount":2`},
		{http.MethodPost, "/api/workspace/sheets", `{"title":"Sales","sheet":{"rows":[["a"]]}}`, http.StatusCreated, `"rowCount":1`},
		{http.MethodPost, "/api/workspace/forms", `{"title":"Survey","questions":[]}`, http.StatusCreated, `"id":"form-1"`},
		{http.MethodGet, "/api/workspace/files/doc-1/export?format=pdf", "", http.StatusOK, "%PDF"},
		{http.MethodGet, "/api/workspace/files/doc-1/export?format=mobi", "", http.StatusBadRequest, "unknown export format"},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := do(r, tt.method, tt.path, tt.body)
			if w.Code != tt.want {
				t.Fatalf("status %d, want %d: %s", w.Code, tt.want, w.Body.String())
			}
			if !strings.Contains(w.Body.String(), tt.contains) {
				t.Fatalf("body %s does not contain %q", w.Body.String(), tt.contains)
			}
		})
	}
}

func TestWorkspaceUpdateDocumentOutcomes(t *testing.T) {
	t.Run("updated", func(t *testing.T) {
		r := workspaceRouter(&fakeWorkspace{updateResult: &service.DocUpdateResult{Outcome: service.Updated, PreviousText: "old"}})
		w := do(r, http.MethodPut, "/api/workspace/docs/doc-1", `{"content":"new"}`)
		if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"outcome":"updated"`) {
			t.Fatalf("status %d body %s", w.Code, w.Body.String())
		}
	})

	t.Run("deleted but insert failed returns backup", func(t *testing.T) {
		r := workspaceRouter(&fakeWorkspace{
			updateResult: &service.DocUpdateResult{Outcome: service.DeletedButInsertFailed, PreviousText: "precious words"},
			err:          errors.New("failed to insert document text"),
		})
		w := do(r, http.MethodPut, "/api/workspace/docs/doc-1", `{"content":"new"}`)
		if w.Code != http.StatusBadGateway {
			t.Fatalf("status %d", w.Code)
		}
		if !strings.Contains(w.Body.String(), "precious words") {
			t.Fatalf("backup text missing: %s", w.Body.String())
		}
	})
}

func TestWorkspaceUnauthorizedInvalidatesToken(t *testing.T) {
	ws := &fakeWorkspace{err: fmt.Errorf("failed to get document: %w", &googleapi.Error{Code: http.StatusUnauthorized, Message: "Invalid Credentials"})}
	r := workspaceRouter(ws)

	w := do(r, http.MethodGet, "/api/workspace/docs/doc-1", "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status %d", w.Code)
	}
	if ws.invalidated != 1 {
		t.Fatalf("token invalidated %d times, want 1", ws.invalidated)
	}
}

func TestWorkspacePartialUpdateUnauthorizedInvalidatesToken(t *testing.T) {
	ws := &fakeWorkspace{
		updateResult: &service.DocUpdateResult{Outcome: service.DeletedButInsertFailed, PreviousText: "precious words"},
		err:          fmt.Errorf("failed to insert content: %w", &googleapi.Error{Code: http.StatusUnauthorized, Message: "Invalid Credentials"}),
	}
	r := workspaceRouter(ws)

	w := do(r, http.MethodPut, "/api/workspace/docs/doc-1", `{"content":"new"}`)
	if w.Code != http.StatusBadGateway || !strings.Contains(w.Body.String(), "precious words") {
		t.Fatalf("status %d body %s", w.Code, w.Body.String())
	}
	if ws.invalidated != 1 {
		t.Fatalf("token invalidated %d times, want 1", ws.invalidated)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", &service.ValidationError{Errors: []string{"x"}}, http.StatusUnprocessableEntity},
		{"not configured", fmt.Errorf("wrap: %w", service.ErrNotConfigured), http.StatusServiceUnavailable},
		{"unknown format", service.ErrUnknownFormat, http.StatusBadRequest},
		{"invalid question", fmt.Errorf("question 1: %w", service.ErrInvalidQuestion), http.StatusBadRequest},
		{"not found", store.ErrNotFound, http.StatusNotFound},
		{"google 403", &googleapi.Error{Code: http.StatusForbidden}, http.StatusForbidden},
		{"google 500", &googleapi.Error{Code: http.StatusInternalServerError}, http.StatusBadGateway},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := statusFor(tt.err); got != tt.want {
				t.Fatalf("statusFor = %d, want %d", got, tt.want)
			}
		})
	}
}

type fakeLedger struct {
	records   []store.ExportRecord
	lastLimit int
}

func (f *fakeLedger) List(_ context.Context, limit int) ([]store.ExportRecord, error) {
	f.lastLimit = limit
	if limit < len(f.records) {
		return f.records[:limit], nil
	}
	return f.records, nil
}

func (f *fakeLedger) Get(_ context.Context, id uuid.UUID) (*store.ExportRecord, error) {
	for i := range f.records {
		if f.records[i].ID == id {
			return &f.records[i], nil
		}
	}
	return nil, store.ErrNotFound
}

func TestAdminRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	id := uuid.New()
	ledger := &fakeLedger{records: []store.ExportRecord{{ID: id, Title: "Walking Again"}, {ID: uuid.New(), Title: "Other"}}}
	tokens := &fakeWorkspace{}

	r := gin.New()
	h := NewAdminHandler(ledger, tokens)
	g := r.Group("/admin", AdminAuthMiddlewareWith("required", "secret"))
	g.GET("/exports", h.ListExports)
	g.GET("/exports/:id", h.GetExport)
	g.POST("/token/invalidate", h.InvalidateToken)

	auth := []string{"Authorization", "Bearer secret"}

	if w := do(r, http.MethodGet, "/admin/exports", ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated list: %d", w.Code)
	}
	if w := do(r, http.MethodGet, "/admin/exports?limit=1", "", auth...); w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"count":1`) {
		t.Fatalf("list: %d %s", w.Code, w.Body.String())
	}
	if w := do(r, http.MethodGet, "/admin/exports?limit=100000", "", auth...); w.Code != http.StatusOK || ledger.lastLimit != maxExportListLimit {
		t.Fatalf("list with huge limit: %d (limit %d)", w.Code, ledger.lastLimit)
	}
	if w := do(r, http.MethodGet, "/admin/exports/"+id.String(), "", auth...); w.Code != http.StatusOK {
		t.Fatalf("get: %d", w.Code)
	}
	if w := do(r, http.MethodGet, "/admin/exports/"+uuid.NewString(), "", auth...); w.Code != http.StatusNotFound {
		t.Fatalf("get missing: %d", w.Code)
	}
	if w := do(r, http.MethodGet, "/admin/exports/not-a-uuid", "", auth...); w.Code != http.StatusBadRequest {
		t.Fatalf("get invalid id: %d", w.Code)
	}
	if w := do(r, http.MethodPost, "/admin/token/invalidate", "", auth...); w.Code != http.StatusOK || tokens.invalidated != 1 {
		t.Fatalf("invalidate: %d (calls %d)", w.Code, tokens.invalidated)
	}
}

func TestAdminRoutesWithoutDependencies(t *testing.T) {
	r := newTestRouter(&service.Services{})
	auth := []string{"Authorization", "Bearer secret"}

	if w := do(r, http.MethodGet, "/admin/exports", "", auth...); w.Code != http.StatusServiceUnavailable {
		t.Fatalf("list: %d", w.Code)
	}
	if w := do(r, http.MethodPost, "/admin/token/invalidate", "", auth...); w.Code != http.StatusServiceUnavailable {
		t.Fatalf("invalidate: %d", w.Code)
	}
}
