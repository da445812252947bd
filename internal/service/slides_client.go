package service

import (
	"context"
	"fmt"
	"log"

	"google.golang.org/api/slides/v1"
)

// SlideSpec は1枚のスライドのタイトルと本文
type SlideSpec struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// PresentationInfo は作成したプレゼンテーションの情報
type PresentationInfo struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	URL        string `json:"url"`
	SlideCount int    `json:"slideCount"`
}

const titleAndBodyLayout = "TITLE_AND_BODY"

// CreatePresentation はプレゼンテーションを作成し、スライドを追加
func (c *WorkspaceClient) CreatePresentation(ctx context.Context, title string, specs []SlideSpec) (*PresentationInfo, error) {
	pres, err := c.slides.Presentations.Create(&slides.Presentation{Title: title}).Context(ctx).Do()
	observe("slides.create", err)
	if err != nil {
		return nil, fmt.Errorf("failed to create presentation: %w", err)
	}

	if requests := slideRequests(specs); len(requests) > 0 {
		_, err := c.slides.Presentations.BatchUpdate(pres.PresentationId, &slides.BatchUpdatePresentationRequest{
			Requests: requests,
		}).Context(ctx).Do()
		observe("slides.batch_update", err)
		if err != nil {
			return nil, fmt.Errorf("failed to add slides: %w", err)
		}
	}

	log.Printf("プレゼンテーション作成成功: %s (%d枚)", title, len(specs))
	return &PresentationInfo{
		ID:         pres.PresentationId,
		Title:      pres.Title,
		URL:        fmt.Sprintf("https://docs.google.com/presentation/d/%s/edit", pres.PresentationId),
		SlideCount: len(specs),
	}, nil
}

// slideRequests はスライドごとに createSlide と insertText のリクエストを作成
func slideRequests(specs []SlideSpec) []*slides.Request {
	var requests []*slides.Request
	for i, spec := range specs {
		slideID := fmt.Sprintf("slide_%d", i)
		titleID := slideID + "_title"
		bodyID := slideID + "_body"

		requests = append(requests, &slides.Request{
			CreateSlide: &slides.CreateSlideRequest{
				ObjectId:       slideID,
				InsertionIndex: int64(i),
				SlideLayoutReference: &slides.LayoutReference{
					PredefinedLayout: titleAndBodyLayout,
				},
				PlaceholderIdMappings: []*slides.LayoutPlaceholderIdMapping{
					{LayoutPlaceholder: &slides.Placeholder{Type: "TITLE"}, ObjectId: titleID},
					{LayoutPlaceholder: &slides.Placeholder{Type: "BODY"}, ObjectId: bodyID},
				},
				ForceSendFields: []string{"InsertionIndex"},
			},
		})

		// 空文字の挿入はAPIがエラーを返す
		if spec.Title != "" {
			requests = append(requests, &slides.Request{
				InsertText: &slides.InsertTextRequest{ObjectId: titleID, Text: spec.Title},
			})
		}
		if spec.Body != "" {
			requests = append(requests, &slides.Request{
				InsertText: &slides.InsertTextRequest{ObjectId: bodyID, Text: spec.Body},
			})
		}
	}
	return requests
}
