package service

import "strings"

// Workspace関連の環境変数
const (
	EnvServiceAccountKey    = "GOOGLE_SERVICE_ACCOUNT_KEY"
	EnvServiceAccountSecret = "GOOGLE_SERVICE_ACCOUNT_SECRET"
	EnvDocsAPIKey           = "GOOGLE_DOCS_API_KEY"
	EnvSheetsAPIKey         = "GOOGLE_SHEETS_API_KEY"
	EnvSlidesAPIKey         = "GOOGLE_SLIDES_API_KEY"
	EnvFormsAPIKey          = "GOOGLE_FORMS_API_KEY"
	EnvTextToSpeechAPIKey   = "CLOUD_TEXT_TO_SPEECH_API_KEY"
)

// WorkspaceStatus は各サービスの設定有無
type WorkspaceStatus struct {
	Configured     bool `json:"configured"`
	ServiceAccount bool `json:"serviceAccount"`
	Docs           bool `json:"docs"`
	Sheets         bool `json:"sheets"`
	Slides         bool `json:"slides"`
	Forms          bool `json:"forms"`
	TextToSpeech   bool `json:"textToSpeech"`
}

// IsWorkspaceConfigured はサービスアカウントキーが設定され、パース可能かを判定
//
// APIへの疎通確認はしない。
func IsWorkspaceConfigured(getenv func(string) string) bool {
	_, err := ParseServiceAccountKey(getenv(EnvServiceAccountKey))
	return err == nil
}

// GetWorkspaceStatus は環境変数の有無から状態を返す
func GetWorkspaceStatus(getenv func(string) string) WorkspaceStatus {
	present := func(key string) bool {
		return strings.TrimSpace(getenv(key)) != ""
	}
	return WorkspaceStatus{
		Configured:     IsWorkspaceConfigured(getenv),
		ServiceAccount: present(EnvServiceAccountKey),
		Docs:           present(EnvDocsAPIKey),
		Sheets:         present(EnvSheetsAPIKey),
		Slides:         present(EnvSlidesAPIKey),
		Forms:          present(EnvFormsAPIKey),
		TextToSpeech:   present(EnvTextToSpeechAPIKey),
	}
}
