package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"google.golang.org/api/docs/v1"
)

// DocumentInfo はGoogleドキュメントの情報
type DocumentInfo struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url"`
	Text  string `json:"text,omitempty"`
}

// UpdateOutcome はドキュメント更新の結果
type UpdateOutcome string

const (
	// UpdateNotApplied は読み込みまたは削除で失敗し、ドキュメントは変更されていない
	UpdateNotApplied UpdateOutcome = "not_applied"
	// Updated は削除と挿入の両方が成功
	Updated UpdateOutcome = "updated"
	// DeletedButInsertFailed は本文削除後の挿入に失敗し、ドキュメントが空のまま
	DeletedButInsertFailed UpdateOutcome = "deleted_but_insert_failed"
)

// DocUpdateResult は UpdateDocument の結果
//
// PreviousText は更新前の本文。DeletedButInsertFailed の場合、呼び出し側は
// これを使って復元・再試行する。
type DocUpdateResult struct {
	Outcome      UpdateOutcome `json:"outcome"`
	PreviousText string        `json:"previousText,omitempty"`
}

func documentURL(id string) string {
	return fmt.Sprintf("https://docs.google.com/document/d/%s/edit", id)
}

// CreateDocument はドキュメントを作成し本文を挿入
func (c *WorkspaceClient) CreateDocument(ctx context.Context, title, content string) (*DocumentInfo, error) {
	doc, err := c.docs.Documents.Create(&docs.Document{Title: title}).Context(ctx).Do()
	observe("docs.create", err)
	if err != nil {
		return nil, fmt.Errorf("failed to create document: %w", err)
	}

	if content != "" {
		if err := c.insertText(ctx, doc.DocumentId, content); err != nil {
			return nil, err
		}
	}

	log.Printf("ドキュメント作成成功: %s (%s)", title, doc.DocumentId)
	return &DocumentInfo{
		ID:    doc.DocumentId,
		Title: doc.Title,
		URL:   documentURL(doc.DocumentId),
	}, nil
}

// GetDocument はドキュメントを取得
func (c *WorkspaceClient) GetDocument(ctx context.Context, documentID string) (*DocumentInfo, error) {
	doc, err := c.getDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	return &DocumentInfo{
		ID:    doc.DocumentId,
		Title: doc.Title,
		URL:   documentURL(doc.DocumentId),
		Text:  documentText(doc),
	}, nil
}

func (c *WorkspaceClient) getDocument(ctx context.Context, documentID string) (*docs.Document, error) {
	doc, err := c.docs.Documents.Get(documentID).Context(ctx).Do()
	observe("docs.get", err)
	if err != nil {
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	return doc, nil
}

// UpdateDocument は本文を削除してから新しい本文を挿入する
//
// 2回のAPI呼び出しはトランザクションではない。挿入に失敗した場合は
// DeletedButInsertFailed と更新前の本文を返す。
func (c *WorkspaceClient) UpdateDocument(ctx context.Context, documentID, content string) (*DocUpdateResult, error) {
	result := &DocUpdateResult{Outcome: UpdateNotApplied}

	doc, err := c.getDocument(ctx, documentID)
	if err != nil {
		return result, err
	}
	result.PreviousText = documentText(doc)

	// 新規ドキュメントの本文は末尾の改行のみ（endIndex=2）
	if end := bodyEndIndex(doc); end > 2 {
		_, err := c.docs.Documents.BatchUpdate(documentID, &docs.BatchUpdateDocumentRequest{
			Requests: []*docs.Request{{
				DeleteContentRange: &docs.DeleteContentRangeRequest{
					Range: &docs.Range{StartIndex: 1, EndIndex: end - 1},
				},
			}},
		}).Context(ctx).Do()
		observe("docs.delete", err)
		if err != nil {
			return result, fmt.Errorf("failed to clear document body: %w", err)
		}
	}

	if content != "" {
		if err := c.insertText(ctx, documentID, content); err != nil {
			result.Outcome = DeletedButInsertFailed
			log.Printf("Warning: document %s was cleared but the insert failed: %v", documentID, err)
			c.notifier.NotifyPartialUpdate(documentID, err.Error())
			return result, err
		}
	}

	result.Outcome = Updated
	log.Printf("ドキュメント更新成功: %s", documentID)
	return result, nil
}

func (c *WorkspaceClient) insertText(ctx context.Context, documentID, text string) error {
	_, err := c.docs.Documents.BatchUpdate(documentID, &docs.BatchUpdateDocumentRequest{
		Requests: []*docs.Request{{
			InsertText: &docs.InsertTextRequest{
				Location: &docs.Location{Index: 1},
				Text:     text,
			},
		}},
	}).Context(ctx).Do()
	observe("docs.insert", err)
	if err != nil {
		return fmt.Errorf("failed to insert document text: %w", err)
	}
	return nil
}

// documentText は本文の段落テキストを連結
func documentText(doc *docs.Document) string {
	if doc == nil || doc.Body == nil {
		return ""
	}
	var b strings.Builder
	for _, el := range doc.Body.Content {
		if el.Paragraph == nil {
			continue
		}
		for _, pe := range el.Paragraph.Elements {
			if pe.TextRun != nil {
				b.WriteString(pe.TextRun.Content)
			}
		}
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func bodyEndIndex(doc *docs.Document) int64 {
	if doc == nil || doc.Body == nil || len(doc.Body.Content) == 0 {
		return 0
	}
	return doc.Body.Content[len(doc.Body.Content)-1].EndIndex
}
