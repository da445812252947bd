package service

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestNewDiscordNotifierEmptyURL(t *testing.T) {
	if n := NewDiscordNotifier(""); n != nil {
		t.Fatalf("expected nil notifier for empty URL")
	}

	// nil receivers are no-ops
	var n *DiscordNotifier
	n.NotifyPartialUpdate("doc-1", "boom")
	n.NotifyExportFailure("Book", "epub", "boom")
}

func TestDiscordNotifier_PartialUpdate(t *testing.T) {
	var got discordPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	NewDiscordNotifier(srv.URL).NotifyPartialUpdate("doc-9", strings.Repeat("x", 2000))

	if len(got.Embeds) != 1 {
		t.Fatalf("expected one embed, got %d", len(got.Embeds))
	}
	embed := got.Embeds[0]
	if embed.Color != colorRed {
		t.Fatalf("Color = %x", embed.Color)
	}
	if !strings.Contains(embed.Fields[0].Value, "doc-9") {
		t.Fatalf("document field = %q", embed.Fields[0].Value)
	}
	if len(embed.Fields[1].Value) != 1024 {
		t.Fatalf("error field not truncated: %d", len(embed.Fields[1].Value))
	}
}

func TestDiscordNotifier_ExportFailure(t *testing.T) {
	var got discordPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
	}))
	defer srv.Close()

	NewDiscordNotifier(srv.URL).NotifyExportFailure("Walking Again", "epub", "upload failed")

	if len(got.Embeds) != 1 || len(got.Embeds[0].Fields) != 3 {
		t.Fatalf("unexpected payload %+v", got)
	}
	if got.Embeds[0].Fields[1].Value != "epub" {
		t.Fatalf("format field = %q", got.Embeds[0].Fields[1].Value)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"short", "abc", 10, "abc"},
		{"exact", "abcde", 5, "abcde"},
		{"ascii", "abcdefghij", 8, "abcde..."},
		{"japanese", "文字化けしない原稿エラー", 8, "文字化けし..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncate(tt.in, tt.max)
			if got != tt.want {
				t.Fatalf("truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
			}
			if !utf8.ValidString(got) {
				t.Fatalf("truncate produced invalid UTF-8: %q", got)
			}
		})
	}
}

func TestDiscordNotifier_TruncatesMultibyteError(t *testing.T) {
	var got discordPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
	}))
	defer srv.Close()

	NewDiscordNotifier(srv.URL).NotifyPartialUpdate("doc-jp", strings.Repeat("原稿", 1000))

	value := got.Embeds[0].Fields[1].Value
	if !utf8.ValidString(value) {
		t.Fatalf("error field is not valid UTF-8")
	}
	if n := utf8.RuneCountInString(value); n != 1024 {
		t.Fatalf("error field has %d characters, want 1024", n)
	}
}
