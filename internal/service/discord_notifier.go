package service

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"time"
	"unicode/utf8"
)

// DiscordNotifier はDiscord Webhookで通知を送信するクライアント
type DiscordNotifier struct {
	webhookURL string
	httpClient *http.Client
}

// NewDiscordNotifier は新しいDiscordNotifierを作成する。URLが空の場合はnilを返す。
func NewDiscordNotifier(webhookURL string) *DiscordNotifier {
	if webhookURL == "" {
		return nil
	}
	return &DiscordNotifier{
		webhookURL: webhookURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// discordEmbed はDiscord Embed構造体
type discordEmbed struct {
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Color       int            `json:"color"`
	Fields      []discordField `json:"fields,omitempty"`
	Timestamp   string         `json:"timestamp"`
}

type discordField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type discordPayload struct {
	Embeds []discordEmbed `json:"embeds"`
}

const (
	colorRed    = 0xFF0000
	colorYellow = 0xFFFF00
)

// NotifyPartialUpdate はドキュメント本文の削除後に挿入が失敗したことを通知する
func (d *DiscordNotifier) NotifyPartialUpdate(documentID, errorMsg string) {
	if d == nil {
		return
	}

	d.send(discordPayload{Embeds: []discordEmbed{{
		Title:       "ドキュメント更新が途中で失敗",
		Description: "本文は削除済みですが、新しい本文の挿入に失敗しました。",
		Color:       colorRed,
		Fields: []discordField{
			{Name: "ドキュメント", Value: documentURL(documentID), Inline: false},
			{Name: "エラー", Value: truncate(errorMsg, 1024), Inline: false},
		},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}}})
}

// NotifyExportFailure は書籍エクスポートの失敗を通知する
func (d *DiscordNotifier) NotifyExportFailure(title, format, errorMsg string) {
	if d == nil {
		return
	}

	d.send(discordPayload{Embeds: []discordEmbed{{
		Title: "エクスポート失敗",
		Color: colorYellow,
		Fields: []discordField{
			{Name: "書籍", Value: truncate(title, 256), Inline: true},
			{Name: "形式", Value: format, Inline: true},
			{Name: "エラー", Value: truncate(errorMsg, 1024), Inline: false},
		},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}}})
}

// send はDiscord Webhookにペイロードを送信する
func (d *DiscordNotifier) send(payload discordPayload) {
	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Discord通知: JSONエンコード失敗: %v", err)
		return
	}

	resp, err := d.httpClient.Post(d.webhookURL, "application/json", bytes.NewReader(body))
	if err != nil {
		log.Printf("Discord通知: 送信失敗: %v", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		log.Printf("Discord通知: HTTPエラー: %d", resp.StatusCode)
	}
}

// truncate は Discord の文字数上限に合わせて max 文字 (rune) 以内に切り詰める
func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max-3]) + "..."
}
