package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/strokedoutsasquatch-creator/kreaite-sub005/internal/export"
	"github.com/strokedoutsasquatch-creator/kreaite-sub005/internal/observability"
	"github.com/strokedoutsasquatch-creator/kreaite-sub005/internal/store"
)

// エクスポート形式
const (
	FormatHTML      = "html"
	FormatPrintHTML = "print"
	FormatEPUBJSON  = "epub-json"
	FormatEPUB      = "epub"
)

// ValidationError はエクスポート前検証のエラー一覧
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return "book is not ready for export: " + strings.Join(e.Errors, "; ")
}

// ExportRecorder はエクスポート履歴の保存先
type ExportRecorder interface {
	Insert(ctx context.Context, rec *store.ExportRecord) error
}

// ExportRequest はエクスポート要求
type ExportRequest struct {
	Format string
	Pretty bool
	// Store が true の場合、成果物を ArtifactStore に保存
	Store bool
}

// ExportOutcome はエクスポート結果
type ExportOutcome struct {
	Result     *export.Result
	Record     *store.ExportRecord
	StorageURL string
}

// ExportService は書籍の検証・変換・保存・履歴記録を行う
type ExportService struct {
	recorder  ExportRecorder
	artifacts ArtifactStore
	notifier  *DiscordNotifier
}

// NewExportService は新しいExportServiceを作成（各依存はnil可）
func NewExportService(recorder ExportRecorder, artifacts ArtifactStore, notifier *DiscordNotifier) *ExportService {
	return &ExportService{recorder: recorder, artifacts: artifacts, notifier: notifier}
}

// Export は書籍を指定形式に変換する
func (s *ExportService) Export(ctx context.Context, book *export.Book, req ExportRequest) (out *ExportOutcome, err error) {
	format := strings.ToLower(strings.TrimSpace(req.Format))
	defer func() {
		label := format
		if !isBookFormat(label) {
			label = "unknown"
		}
		observability.ExportsTotal.WithLabelValues(label, observability.Outcome(err)).Inc()
	}()

	if !isBookFormat(format) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, req.Format)
	}
	if v := export.ValidateBookForExport(book); !v.Valid {
		return nil, &ValidationError{Errors: v.Errors}
	}
	if req.Store && s.artifacts == nil {
		return nil, ErrStorageNotConfigured
	}

	result, err := render(book, format, req.Pretty)
	if err != nil {
		s.notifier.NotifyExportFailure(book.Title, format, err.Error())
		return nil, err
	}

	out = &ExportOutcome{Result: result}
	if req.Store {
		key := fmt.Sprintf("exports/%s/%s", uuid.NewString(), result.Filename)
		url, err := s.artifacts.Put(ctx, key, result.Content, result.ContentType)
		if err != nil {
			s.notifier.NotifyExportFailure(book.Title, format, err.Error())
			return nil, err
		}
		out.StorageURL = url
	}

	out.Record = &store.ExportRecord{
		Title:       book.Title,
		Author:      book.Author,
		Format:      format,
		Filename:    result.Filename,
		ContentType: result.ContentType,
		SizeBytes:   int64(len(result.Content)),
		WordCount:   export.CalculateWordCount(book),
		PageCount:   export.EstimatePageCount(book),
		StorageURL:  out.StorageURL,
	}
	if s.recorder != nil {
		// 履歴の保存失敗ではエクスポート自体を失敗にしない
		if err := s.recorder.Insert(ctx, out.Record); err != nil {
			log.Printf("Warning: failed to record export of %q: %v", book.Title, err)
		}
	}

	log.Printf("エクスポート完了: %s (%s, %d bytes)", result.Filename, format, len(result.Content))
	return out, nil
}

func isBookFormat(format string) bool {
	switch format {
	case FormatHTML, FormatPrintHTML, FormatEPUBJSON, FormatEPUB:
		return true
	}
	return false
}

func render(book *export.Book, format string, pretty bool) (*export.Result, error) {
	switch format {
	case FormatHTML:
		return export.GenerateBookHTML(book, export.HTMLOptions{Pretty: pretty}), nil
	case FormatPrintHTML:
		return export.GenerateBookHTML(book, export.HTMLOptions{ForPrint: true, Pretty: pretty}), nil
	case FormatEPUBJSON:
		return export.GenerateBookEPUB(book)
	case FormatEPUB:
		return export.PackageEPUB(book)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}
