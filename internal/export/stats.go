package export

import (
	"fmt"
	"strings"
)

const (
	wordsPerPage = 250
	// Title page, copyright page, table of contents and a blank verso.
	frontMatterPages = 4
)

// CalculateWordCount counts whitespace-delimited tokens across all chapters.
func CalculateWordCount(book *Book) int {
	if book == nil {
		return 0
	}
	total := 0
	for _, ch := range book.Chapters {
		total += len(strings.Fields(ch.Content))
	}
	return total
}

// EstimatePageCount approximates the printed length of the book.
func EstimatePageCount(book *Book) int {
	words := CalculateWordCount(book)
	pages := (words + wordsPerPage - 1) / wordsPerPage
	pages += frontMatterPages
	if book != nil && strings.TrimSpace(book.Dedication) != "" {
		pages++
	}
	return pages
}

// ValidationResult lists every problem that blocks an export.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// ValidateBookForExport checks the fields every export format depends on.
func ValidateBookForExport(book *Book) ValidationResult {
	errs := []string{}
	if book == nil {
		book = &Book{}
	}

	if strings.TrimSpace(book.Title) == "" {
		errs = append(errs, "Book title is required")
	}
	if strings.TrimSpace(book.Author) == "" {
		errs = append(errs, "Author name is required")
	}
	if len(book.Chapters) == 0 {
		errs = append(errs, "Book must have at least one chapter")
	}
	for i, ch := range book.Chapters {
		if strings.TrimSpace(ch.Title) == "" {
			errs = append(errs, fmt.Sprintf("Chapter %d is missing a title", i+1))
		}
		if strings.TrimSpace(ch.Content) == "" {
			errs = append(errs, fmt.Sprintf("Chapter %d is missing content", i+1))
		}
	}

	return ValidationResult{Valid: len(errs) == 0, Errors: errs}
}
