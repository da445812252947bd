package export

import (
	"fmt"
	"strings"

	"github.com/yosssi/gohtml"
)

// HTMLOptions selects the HTML profile.
type HTMLOptions struct {
	ForPrint bool
	// Pretty re-indents the document. Output is larger but easier to hand edit.
	Pretty bool
}

// GenerateBookHTML renders the book as a single standalone HTML document.
func GenerateBookHTML(book *Book, opts HTMLOptions) *Result {
	if book == nil {
		book = &Book{}
	}

	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n")
	fmt.Fprintf(&b, "<html lang=\"%s\">\n<head>\n", EscapeHTML(book.Language()))
	b.WriteString("<meta charset=\"utf-8\">\n")
	b.WriteString("<meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">\n")
	fmt.Fprintf(&b, "<title>%s</title>\n", EscapeHTML(book.Title))
	if book.Author != "" {
		fmt.Fprintf(&b, "<meta name=\"author\" content=\"%s\">\n", EscapeHTML(book.Author))
	}
	if book.Description != "" {
		fmt.Fprintf(&b, "<meta name=\"description\" content=\"%s\">\n", EscapeHTML(book.Description))
	}
	fmt.Fprintf(&b, "<style>\n%s</style>\n", Stylesheet(opts.ForPrint))
	b.WriteString("</head>\n<body>\n")

	writeTitlePage(&b, book)
	writeCopyright(&b, book)

	if book.Dedication != "" {
		fmt.Fprintf(&b, "<section class=\"dedication\">%s</section>\n", inline(book.Dedication))
	}

	// Page numbers are unknown before layout, so the print profile has no TOC.
	if !opts.ForPrint && len(book.Chapters) > 0 {
		b.WriteString("<nav class=\"toc\">\n<h2>Contents</h2>\n<ol>\n")
		for i, ch := range book.Chapters {
			fmt.Fprintf(&b, "<li><a href=\"#chapter-%d\">%s</a></li>\n", i+1, EscapeHTML(chapterTitle(ch, i)))
		}
		b.WriteString("</ol>\n</nav>\n")
	}

	for i, ch := range book.Chapters {
		fmt.Fprintf(&b, "<section class=\"chapter\" id=\"chapter-%d\">\n", i+1)
		fmt.Fprintf(&b, "<h1 class=\"chapter-title\">%s</h1>\n", EscapeHTML(chapterTitle(ch, i)))
		if body := ContentToHTML(ch.Content); body != "" {
			b.WriteString(body)
			b.WriteString("\n")
		}
		b.WriteString("</section>\n")
	}

	b.WriteString("</body>\n</html>\n")

	content := []byte(b.String())
	if opts.Pretty {
		content = gohtml.FormatBytes(content)
	}

	filename := Slugify(book.Title) + ".html"
	if opts.ForPrint {
		filename = Slugify(book.Title) + "-print.html"
	}

	return &Result{
		Content:     content,
		Filename:    filename,
		ContentType: "text/html; charset=utf-8",
	}
}

func writeTitlePage(b *strings.Builder, book *Book) {
	b.WriteString("<section class=\"title-page\">\n")
	fmt.Fprintf(b, "<h1 class=\"title\">%s</h1>\n", EscapeHTML(book.Title))
	if book.Subtitle != "" {
		fmt.Fprintf(b, "<p class=\"subtitle\">%s</p>\n", EscapeHTML(book.Subtitle))
	}
	fmt.Fprintf(b, "<p class=\"author\">%s</p>\n", EscapeHTML(book.Author))
	b.WriteString("</section>\n")
}

func writeCopyright(b *strings.Builder, book *Book) {
	meta := book.meta()
	var lines []string
	if meta.Copyright != "" {
		lines = append(lines, meta.Copyright)
	}
	if meta.Publisher != "" {
		lines = append(lines, "Published by "+meta.Publisher)
	}
	if meta.PublishedDate != "" {
		lines = append(lines, meta.PublishedDate)
	}
	if meta.ISBN != "" {
		lines = append(lines, "ISBN "+meta.ISBN)
	}
	if len(lines) == 0 {
		return
	}
	b.WriteString("<section class=\"copyright\">\n")
	for _, line := range lines {
		fmt.Fprintf(b, "<p>%s</p>\n", EscapeHTML(line))
	}
	b.WriteString("</section>\n")
}

func chapterTitle(ch Chapter, index int) string {
	if strings.TrimSpace(ch.Title) == "" {
		return fmt.Sprintf("Chapter %d", index+1)
	}
	return ch.Title
}
