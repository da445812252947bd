package export

import (
	"regexp"
	"strings"
)

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
)

// EscapeHTML escapes the five characters that are significant in HTML text and
// attribute values.
func EscapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}

var blankLine = regexp.MustCompile(`\n[ \t]*\n`)

// ContentToHTML converts chapter text into HTML blocks.
//
// Blocks are separated by blank lines. A block starting with "# ", "## " or
// "### " becomes a heading, "> " a blockquote and "- " an unordered list with
// one item per line. Anything else is an escaped paragraph. Inline markup is
// not interpreted.
func ContentToHTML(content string) string {
	content = strings.ReplaceAll(content, "\r\n", "\n")

	var blocks []string
	for _, raw := range blankLine.Split(content, -1) {
		block := strings.TrimSpace(raw)
		if block == "" {
			continue
		}
		blocks = append(blocks, blockToHTML(block))
	}
	return strings.Join(blocks, "\n")
}

func blockToHTML(block string) string {
	switch {
	case strings.HasPrefix(block, "### "):
		return "<h3>" + inline(block[4:]) + "</h3>"
	case strings.HasPrefix(block, "## "):
		return "<h2>" + inline(block[3:]) + "</h2>"
	case strings.HasPrefix(block, "# "):
		return "<h1>" + inline(block[2:]) + "</h1>"
	case strings.HasPrefix(block, "> "):
		lines := strings.Split(block, "\n")
		for i, line := range lines {
			lines[i] = strings.TrimPrefix(strings.TrimSpace(line), "> ")
		}
		return "<blockquote>" + inline(strings.Join(lines, "\n")) + "</blockquote>"
	case strings.HasPrefix(block, "- "):
		var b strings.Builder
		b.WriteString("<ul>")
		for _, line := range strings.Split(block, "\n") {
			item := strings.TrimPrefix(strings.TrimSpace(line), "- ")
			if item == "" {
				continue
			}
			b.WriteString("<li>")
			b.WriteString(EscapeHTML(item))
			b.WriteString("</li>")
		}
		b.WriteString("</ul>")
		return b.String()
	default:
		return "<p>" + inline(block) + "</p>"
	}
}

// inline escapes text and keeps single line breaks.
func inline(text string) string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	for i, line := range lines {
		lines[i] = EscapeHTML(strings.TrimSpace(line))
	}
	return strings.Join(lines, "<br />")
}
