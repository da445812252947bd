package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/strokedoutsasquatch-creator/kreaite-sub005/internal/export"
	"google.golang.org/api/option"
)

// ErrBlurbNotConfigured はGemini APIキーが未設定の場合のエラー
var ErrBlurbNotConfigured = errors.New("blurb writer is not configured")

const (
	defaultBlurbModel = "gemini-2.5-flash"
	secretGeminiKey   = "GEMINI_API_KEY"
	// 1章あたりプロンプトに含める最大文字数
	blurbExcerptChars = 600
)

// BlurbWriter はGeminiで書籍の紹介文を作成する
type BlurbWriter struct {
	client    *genai.Client
	modelName string
}

// NewBlurbWriter は新しいBlurbWriterを作成（Secret Manager → 環境変数の順にキーを取得）
func NewBlurbWriter(ctx context.Context, projectID, apiKey, modelName string) (*BlurbWriter, error) {
	key, err := loadSecret(ctx, projectID, secretGeminiKey, apiKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBlurbNotConfigured, err)
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(key))
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	if modelName == "" {
		modelName = defaultBlurbModel
	}
	return &BlurbWriter{client: client, modelName: modelName}, nil
}

// Close はクライアントを閉じる
func (w *BlurbWriter) Close() error {
	if w == nil || w.client == nil {
		return nil
	}
	return w.client.Close()
}

// WriteBlurb は書籍の紹介文（裏表紙用）を作成
func (w *BlurbWriter) WriteBlurb(ctx context.Context, book *export.Book) (string, error) {
	if w == nil {
		return "", ErrBlurbNotConfigured
	}

	model := w.client.GenerativeModel(w.modelName)
	model.SetTemperature(0.7)

	log.Printf("紹介文作成開始: %s (%s)", book.Title, w.modelName)
	resp, err := model.GenerateContent(ctx, genai.Text(buildBlurbPrompt(book)))
	if err != nil {
		return "", fmt.Errorf("gemini API call failed (%s): %w", w.modelName, err)
	}

	blurb := strings.TrimSpace(responseText(resp))
	if blurb == "" {
		return "", fmt.Errorf("no response from gemini API")
	}
	return blurb, nil
}

// buildBlurbPrompt は書籍情報から紹介文作成用のプロンプトを組み立てる
func buildBlurbPrompt(book *export.Book) string {
	var b strings.Builder
	b.WriteString("You write back-cover copy for independently published books.\n")
	b.WriteString("Write a compelling description of 120 to 180 words in the book's language. ")
	b.WriteString("Return plain text only, no headings or markdown.\n\n")

	fmt.Fprintf(&b, "Title: %s\n", book.Title)
	if book.Subtitle != "" {
		fmt.Fprintf(&b, "Subtitle: %s\n", book.Subtitle)
	}
	fmt.Fprintf(&b, "Author: %s\n", book.Author)
	fmt.Fprintf(&b, "Language: %s\n", book.Language())
	if book.Metadata != nil && book.Metadata.Genre != "" {
		fmt.Fprintf(&b, "Genre: %s\n", book.Metadata.Genre)
	}
	if book.Description != "" {
		fmt.Fprintf(&b, "Author's notes: %s\n", book.Description)
	}

	b.WriteString("\nChapters:\n")
	for i, ch := range book.Chapters {
		fmt.Fprintf(&b, "%d. %s\n", i+1, ch.Title)
		if excerpt := excerpt(ch.Content, blurbExcerptChars); excerpt != "" {
			fmt.Fprintf(&b, "   %s\n", excerpt)
		}
	}
	return b.String()
}

// excerpt は空白を詰めて先頭 max 文字を返す（rune単位）
func excerpt(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "…"
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var b strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				b.WriteString(string(text))
			}
		}
		// 最初の候補のみ使用
		break
	}
	return b.String()
}
