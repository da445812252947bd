package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/google/generative-ai-go/genai"
	"github.com/strokedoutsasquatch-creator/kreaite-sub005/internal/export"
)

func TestBuildBlurbPrompt(t *testing.T) {
	book := testBook()
	book.Subtitle = "A Recovery Story"
	book.Metadata = &export.BookMetadata{Genre: "Memoir", Language: "es"}

	prompt := buildBlurbPrompt(book)

	for _, want := range []string{
		"Title: Walking Again",
		"Subtitle: A Recovery Story",
		"Author: Sam Rivera",
		"Language: es",
		"Genre: Memoir",
		"1. The Fall",
		"2. First Steps",
		"It started on a Tuesday. Nothing felt right.",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
	if strings.Contains(prompt, "Author's notes") {
		t.Errorf("empty description should be omitted")
	}
}

func TestExcerpt(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short  text\n\nhere", 100, "short text here"},
		{"abcdef", 3, "abc…"},
		{"日本語のテキスト", 3, "日本語…"},
		{"", 10, ""},
	}
	for _, tt := range tests {
		got := excerpt(tt.in, tt.max)
		if got != tt.want {
			t.Errorf("excerpt(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
		if !utf8.ValidString(got) {
			t.Errorf("excerpt produced invalid UTF-8: %q", got)
		}
	}
}

func TestResponseText(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []genai.Part{genai.Text("A brave "), genai.Text("memoir.")}}},
			{Content: &genai.Content{Parts: []genai.Part{genai.Text("ignored")}}},
		},
	}
	if got := responseText(resp); got != "A brave memoir." {
		t.Fatalf("responseText = %q", got)
	}
	if got := responseText(nil); got != "" {
		t.Fatalf("responseText(nil) = %q", got)
	}
}

func TestNilBlurbWriter(t *testing.T) {
	var w *BlurbWriter
	if _, err := w.WriteBlurb(context.Background(), testBook()); !errors.Is(err, ErrBlurbNotConfigured) {
		t.Fatalf("err = %v, want ErrBlurbNotConfigured", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}
