package service

import "github.com/strokedoutsasquatch-creator/kreaite-sub005/internal/store"

// Services は全サービスをまとめた構造体
//
// Workspace と BlurbWriter は未設定の場合nil。
type Services struct {
	Exports         *ExportService
	ExportRepo      *store.ExportRepo
	Workspace       *WorkspaceClient
	BlurbWriter     *BlurbWriter
	DiscordNotifier *DiscordNotifier
	// Getenv はWorkspaceの設定状況の判定に使う
	Getenv func(string) string
}
