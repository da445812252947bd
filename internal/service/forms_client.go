package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"google.golang.org/api/forms/v1"
)

// ErrInvalidQuestion は選択式の設問に選択肢がない場合のエラー
var ErrInvalidQuestion = errors.New("invalid form question")

// 設問タイプ
const (
	QuestionText      = "text"
	QuestionParagraph = "paragraph"
	QuestionChoice    = "choice"
	QuestionCheckbox  = "checkbox"
	QuestionDropdown  = "dropdown"
)

// QuestionSpec はフォームの設問
type QuestionSpec struct {
	Title    string   `json:"title"`
	Type     string   `json:"type"`
	Required bool     `json:"required"`
	Options  []string `json:"options,omitempty"`
}

// FormSpec はフォームの定義
type FormSpec struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Questions   []QuestionSpec `json:"questions"`
}

// FormInfo は作成したフォームの情報
type FormInfo struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	EditURL      string `json:"editUrl"`
	ResponderURL string `json:"responderUrl"`
}

// choiceTypes は設問タイプ → ChoiceQuestion.Type
var choiceTypes = map[string]string{
	QuestionChoice:   "RADIO",
	QuestionCheckbox: "CHECKBOX",
	QuestionDropdown: "DROP_DOWN",
}

// CreateForm はフォームを作成し、説明と設問を追加
func (c *WorkspaceClient) CreateForm(ctx context.Context, spec FormSpec) (*FormInfo, error) {
	// 不正な設問はAPI呼び出し前に弾く
	requests, err := formRequests(spec)
	if err != nil {
		return nil, err
	}

	form, err := c.forms.Forms.Create(&forms.Form{
		Info: &forms.Info{Title: spec.Title, DocumentTitle: spec.Title},
	}).Context(ctx).Do()
	observe("forms.create", err)
	if err != nil {
		return nil, fmt.Errorf("failed to create form: %w", err)
	}

	if len(requests) > 0 {
		_, err := c.forms.Forms.BatchUpdate(form.FormId, &forms.BatchUpdateFormRequest{
			Requests: requests,
		}).Context(ctx).Do()
		observe("forms.batch_update", err)
		if err != nil {
			return nil, fmt.Errorf("failed to add form questions: %w", err)
		}
	}

	log.Printf("フォーム作成成功: %s (%d問)", spec.Title, len(spec.Questions))
	return &FormInfo{
		ID:           form.FormId,
		Title:        spec.Title,
		EditURL:      fmt.Sprintf("https://docs.google.com/forms/d/%s/edit", form.FormId),
		ResponderURL: form.ResponderUri,
	}, nil
}

func formRequests(spec FormSpec) ([]*forms.Request, error) {
	var requests []*forms.Request
	if spec.Description != "" {
		requests = append(requests, &forms.Request{
			UpdateFormInfo: &forms.UpdateFormInfoRequest{
				Info:       &forms.Info{Description: spec.Description},
				UpdateMask: "description",
			},
		})
	}

	for i, q := range spec.Questions {
		question, err := buildQuestion(q)
		if err != nil {
			return nil, fmt.Errorf("question %d: %w", i+1, err)
		}
		requests = append(requests, &forms.Request{
			CreateItem: &forms.CreateItemRequest{
				Item: &forms.Item{
					Title:        q.Title,
					QuestionItem: &forms.QuestionItem{Question: question},
				},
				Location: &forms.Location{
					Index:           int64(i),
					ForceSendFields: []string{"Index"},
				},
			},
		})
	}
	return requests, nil
}

// buildQuestion は設問タイプに応じたQuestionを作成（不明なタイプは記述式）
func buildQuestion(q QuestionSpec) (*forms.Question, error) {
	kind := strings.ToLower(strings.TrimSpace(q.Type))
	question := &forms.Question{Required: q.Required}

	if choiceType, ok := choiceTypes[kind]; ok {
		var options []*forms.Option
		for _, opt := range q.Options {
			if opt = strings.TrimSpace(opt); opt != "" {
				options = append(options, &forms.Option{Value: opt})
			}
		}
		if len(options) == 0 {
			return nil, fmt.Errorf("%w: %s question %q needs at least one option", ErrInvalidQuestion, kind, q.Title)
		}
		question.ChoiceQuestion = &forms.ChoiceQuestion{Type: choiceType, Options: options}
		return question, nil
	}

	question.TextQuestion = &forms.TextQuestion{Paragraph: kind == QuestionParagraph}
	return question, nil
}
