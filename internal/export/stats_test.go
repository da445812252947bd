package export

import (
	"reflect"
	"strings"
	"testing"
)

func sampleBook() *Book {
	return &Book{
		Title:  "Walking Again",
		Author: "Sam Rivera",
		Chapters: []Chapter{
			{Title: "The First Day", Content: "# Morning\n\nI woke up slowly."},
			{Title: "Therapy", Content: "- stretch\n- walk\n\nRepeat daily."},
		},
	}
}

func TestCalculateWordCount(t *testing.T) {
	book := sampleBook()

	want := 0
	for _, ch := range book.Chapters {
		want += len(strings.Fields(ch.Content))
	}

	got := CalculateWordCount(book)
	if got != want {
		t.Fatalf("CalculateWordCount = %d, want %d", got, want)
	}
	if again := CalculateWordCount(book); again != got {
		t.Fatalf("CalculateWordCount not stable: %d then %d", got, again)
	}

	if got := CalculateWordCount(&Book{Chapters: []Chapter{}}); got != 0 {
		t.Fatalf("empty book word count = %d, want 0", got)
	}
	if got := CalculateWordCount(nil); got != 0 {
		t.Fatalf("nil book word count = %d, want 0", got)
	}
}

func TestEstimatePageCount(t *testing.T) {
	if got := EstimatePageCount(&Book{}); got != 4 {
		t.Fatalf("empty book pages = %d, want 4", got)
	}
	if got := EstimatePageCount(&Book{Dedication: "For Mum"}); got != 5 {
		t.Fatalf("empty book with dedication pages = %d, want 5", got)
	}

	words := strings.Repeat("word ", 251)
	book := &Book{Chapters: []Chapter{{Title: "One", Content: words}}}
	if got := EstimatePageCount(book); got != 6 {
		t.Fatalf("251 words pages = %d, want 6", got)
	}

	book.Chapters[0].Content = strings.Repeat("word ", 250)
	if got := EstimatePageCount(book); got != 5 {
		t.Fatalf("250 words pages = %d, want 5", got)
	}
}

func TestValidateBookForExport(t *testing.T) {
	t.Run("complete book", func(t *testing.T) {
		res := ValidateBookForExport(sampleBook())
		if !res.Valid || len(res.Errors) != 0 {
			t.Fatalf("expected valid book, got %+v", res)
		}
	})

	t.Run("empty book", func(t *testing.T) {
		res := ValidateBookForExport(&Book{})
		want := []string{
			"Book title is required",
			"Author name is required",
			"Book must have at least one chapter",
		}
		if res.Valid {
			t.Fatalf("expected invalid")
		}
		if !reflect.DeepEqual(res.Errors, want) {
			t.Fatalf("errors = %v, want %v", res.Errors, want)
		}
	})

	t.Run("chapter problems", func(t *testing.T) {
		book := sampleBook()
		book.Chapters = append(book.Chapters,
			Chapter{Title: "", Content: "text"},
			Chapter{Title: "No body", Content: "   "},
			Chapter{},
		)
		res := ValidateBookForExport(book)
		want := []string{
			"Chapter 3 is missing a title",
			"Chapter 4 is missing content",
			"Chapter 5 is missing a title",
			"Chapter 5 is missing content",
		}
		if res.Valid {
			t.Fatalf("expected invalid")
		}
		if !reflect.DeepEqual(res.Errors, want) {
			t.Fatalf("errors = %v, want %v", res.Errors, want)
		}
	})
}
