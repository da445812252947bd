package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sort"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// ErrUnknownFormat はエクスポート形式が未対応の場合のエラー
var ErrUnknownFormat = errors.New("unknown export format")

// exportMimeTypes はエクスポート形式 → Drive export のMIMEタイプ
var exportMimeTypes = map[string]string{
	"pdf":  "application/pdf",
	"docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"odt":  "application/vnd.oasis.opendocument.text",
	"rtf":  "application/rtf",
	"txt":  "text/plain",
	"html": "text/html",
	"epub": "application/epub+zip",
	"pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
	"xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	"csv":  "text/csv",
}

// ExportedFile はDriveからエクスポートしたファイル
type ExportedFile struct {
	Data     []byte
	Filename string
	// MimeType は要求したMIMEタイプ
	MimeType string
	// DetectedType は内容から判定したMIMEタイプ
	DetectedType string
}

// ExportMimeType は形式名からMIMEタイプを返す
func ExportMimeType(format string) (string, error) {
	mt, ok := exportMimeTypes[strings.ToLower(strings.TrimSpace(format))]
	if !ok {
		return "", fmt.Errorf("%w: %q (supported: %s)", ErrUnknownFormat, format, strings.Join(ExportFormats(), ", "))
	}
	return mt, nil
}

// ExportFormats は対応形式の一覧（ソート済み）
func ExportFormats() []string {
	formats := make([]string, 0, len(exportMimeTypes))
	for f := range exportMimeTypes {
		formats = append(formats, f)
	}
	sort.Strings(formats)
	return formats
}

// ExportDocument はDriveのエクスポートAPIでファイルを変換してダウンロード
func (c *WorkspaceClient) ExportDocument(ctx context.Context, fileID, format string) (*ExportedFile, error) {
	mimeType, err := ExportMimeType(format)
	if err != nil {
		return nil, err
	}

	resp, err := c.drive.Files.Export(fileID, mimeType).Context(ctx).Download()
	observe("drive.export", err)
	if err != nil {
		return nil, fmt.Errorf("failed to export file: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read exported file: %w", err)
	}

	detected := mimetype.Detect(data)
	if !detected.Is(mimeType) {
		log.Printf("Warning: export of %s as %s returned content detected as %s", fileID, format, detected.String())
	}

	return &ExportedFile{
		Data:         data,
		Filename:     fileID + "." + strings.ToLower(strings.TrimSpace(format)),
		MimeType:     mimeType,
		DetectedType: detected.String(),
	}, nil
}
