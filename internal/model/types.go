package model

import (
	"github.com/strokedoutsasquatch-creator/kreaite-sub005/internal/export"
	"github.com/strokedoutsasquatch-creator/kreaite-sub005/internal/service"
)

// CreateDocumentRequest はドキュメント作成リクエスト
type CreateDocumentRequest struct {
	Title   string `json:"title" binding:"required"`
	Content string `json:"content"`
}

// UpdateDocumentRequest はドキュメント更新リクエスト
type UpdateDocumentRequest struct {
	Content string `json:"content"`
}

// CreatePresentationRequest はプレゼンテーション作成リクエスト
type CreatePresentationRequest struct {
	Title  string              `json:"title" binding:"required"`
	Slides []service.SlideSpec `json:"slides"`
}

// CreateSpreadsheetRequest はスプレッドシート作成リクエスト
type CreateSpreadsheetRequest struct {
	Title string            `json:"title" binding:"required"`
	Sheet service.SheetSpec `json:"sheet"`
}

// StatsResponse は書籍の統計
type StatsResponse struct {
	WordCount    int `json:"wordCount"`
	PageCount    int `json:"pageCount"`
	ChapterCount int `json:"chapterCount"`
}

// NewStatsResponse は書籍から統計を計算
func NewStatsResponse(book *export.Book) StatsResponse {
	return StatsResponse{
		WordCount:    export.CalculateWordCount(book),
		PageCount:    export.EstimatePageCount(book),
		ChapterCount: len(book.Chapters),
	}
}

// BlurbResponse は紹介文作成の結果
type BlurbResponse struct {
	Blurb string `json:"blurb"`
}

// ErrorResponse はエラーレスポンス
type ErrorResponse struct {
	Error  string   `json:"error"`
	Errors []string `json:"errors,omitempty"`
}
