package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleBook = `{
  "title": "Walking Again",
  "author": "Sam Rivera",
  "chapters": [
    {"title": "The Fall", "content": "It started on a Tuesday."},
    {"title": "First Steps", "content": "One step, then another."}
  ]
}`

func writeBook(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "book.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write book: %v", err)
	}
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestExportWritesFile(t *testing.T) {
	dir := t.TempDir()
	book := writeBook(t, dir, sampleBook)

	out, err := run(t, "export", "html", book, "--out", dir)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !strings.Contains(out, "walking-again.html") {
		t.Fatalf("unexpected output %q", out)
	}
	data, err := os.ReadFile(filepath.Join(dir, "walking-again.html"))
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if !strings.Contains(string(data), "<title>Walking Again</title>") {
		t.Fatalf("export does not look like the book")
	}
}

func TestExportRejectsInvalidBook(t *testing.T) {
	dir := t.TempDir()
	book := writeBook(t, dir, `{"title": "Untitled"}`)

	_, err := run(t, "export", "epub", book, "--out", dir)
	if err == nil || !strings.Contains(err.Error(), "Author name is required") {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestExportUnknownFormat(t *testing.T) {
	dir := t.TempDir()
	book := writeBook(t, dir, sampleBook)

	if _, err := run(t, "export", "mobi", book); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}

func TestValidateAndStats(t *testing.T) {
	dir := t.TempDir()
	book := writeBook(t, dir, sampleBook)

	out, err := run(t, "validate", book)
	if err != nil || !strings.Contains(out, "ready for export") {
		t.Fatalf("validate: %q %v", out, err)
	}

	out, err = run(t, "stats", book)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	var stats struct {
		WordCount    int `json:"wordCount"`
		ChapterCount int `json:"chapterCount"`
	}
	if err := json.Unmarshal([]byte(out), &stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if stats.WordCount != 9 || stats.ChapterCount != 2 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestExportRecordsHistory(t *testing.T) {
	dir := t.TempDir()
	book := writeBook(t, dir, sampleBook)
	db := filepath.Join(dir, "exports.db")

	if _, err := run(t, "--db", db, "export", "epub", book, "--out", dir); err != nil {
		t.Fatalf("export: %v", err)
	}
	out, err := run(t, "--db", db, "history")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if !strings.Contains(out, "walking-again.epub") {
		t.Fatalf("history missing export: %q", out)
	}
}

func TestWorkspaceStatus(t *testing.T) {
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_KEY", "")
	t.Setenv("GOOGLE_DOCS_API_KEY", "docs-key")

	out, err := run(t, "workspace", "status")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !strings.Contains(out, `"configured": false`) || !strings.Contains(out, `"docs": true`) {
		t.Fatalf("unexpected status %s", out)
	}
}
