// Package export renders creator books into distributable formats: screen and
// print-ready HTML, an EPUB file tree described as JSON, and a packaged .epub.
//
// Nothing in this package fails on malformed text. Missing or empty values
// render as empty fragments; ValidateBookForExport is the only place problems
// are reported, and it reports all of them at once.
package export

import (
	"regexp"
	"strings"
)

// Book is the structured book handed over by the studio.
type Book struct {
	Title       string        `json:"title"`
	Subtitle    string        `json:"subtitle,omitempty"`
	Author      string        `json:"author"`
	Description string        `json:"description,omitempty"`
	Dedication  string        `json:"dedication,omitempty"`
	Chapters    []Chapter     `json:"chapters"`
	Metadata    *BookMetadata `json:"metadata,omitempty"`
}

// Chapter is one unit of reading order. Content uses the lightweight block
// markup understood by ContentToHTML.
type Chapter struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// BookMetadata is optional publishing information.
type BookMetadata struct {
	ISBN          string `json:"isbn,omitempty"`
	Publisher     string `json:"publisher,omitempty"`
	Language      string `json:"language,omitempty"`
	PublishedDate string `json:"publishedDate,omitempty"`
	Genre         string `json:"genre,omitempty"`
	Copyright     string `json:"copyright,omitempty"`
}

// Result is a rendered artifact together with the name and content type a
// caller should use when persisting or serving it.
type Result struct {
	Content     []byte `json:"-"`
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
}

const defaultLanguage = "en"

// Language returns the book language, falling back to English.
func (b *Book) Language() string {
	if b == nil || b.Metadata == nil || strings.TrimSpace(b.Metadata.Language) == "" {
		return defaultLanguage
	}
	return strings.TrimSpace(b.Metadata.Language)
}

func (b *Book) meta() BookMetadata {
	if b == nil || b.Metadata == nil {
		return BookMetadata{}
	}
	return *b.Metadata
}

var slugInvalid = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify turns a title into a lowercase ASCII file stem.
func Slugify(title string) string {
	slug := slugInvalid.ReplaceAllString(strings.ToLower(title), "-")
	slug = strings.Trim(slug, "-")
	if len(slug) > 80 {
		slug = strings.Trim(slug[:80], "-")
	}
	if slug == "" {
		return "book"
	}
	return slug
}
