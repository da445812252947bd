package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Settings はサーバー・CLI共通の設定
type Settings struct {
	Port      string `mapstructure:"port"`
	GinMode   string `mapstructure:"gin_mode"`
	LogFormat string `mapstructure:"log_format"`
	LogLevel  string `mapstructure:"log_level"`

	// GCP設定
	GCPProjectID string `mapstructure:"gcp_project_id"`

	// 管理系エンドポイントの認証設定
	// required | optional | disabled
	AdminAuthMode string `mapstructure:"admin_auth_mode"`
	AdminToken    string `mapstructure:"admin_token"`

	// Google Workspace（サービスアカウント）
	ServiceAccountKey    string `mapstructure:"google_service_account_key"`
	ServiceAccountSecret string `mapstructure:"google_service_account_secret"`
	WorkspaceEndpoint    string `mapstructure:"workspace_endpoint"`

	// エクスポート履歴DB
	DatabasePath string `mapstructure:"database_path"`

	// トークンキャッシュ（空の場合はプロセス内キャッシュ）
	RedisURL      string `mapstructure:"redis_url"`
	RedisTokenKey string `mapstructure:"redis_token_key"`

	// 成果物の保存先（S3互換）
	ArtifactBucket   string `mapstructure:"artifact_bucket"`
	ArtifactRegion   string `mapstructure:"artifact_region"`
	ArtifactEndpoint string `mapstructure:"artifact_endpoint"`

	// Discord通知設定
	DiscordWebhookURL string `mapstructure:"discord_webhook_url"`

	// Gemini設定（紹介文作成）
	GeminiAPIKey string `mapstructure:"gemini_api_key"`
	GeminiModel  string `mapstructure:"gemini_model"`

	// カンマ区切り
	CORSAllowedOrigins string `mapstructure:"cors_allowed_origins"`

	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

var defaults = map[string]interface{}{
	"port":                          "8080",
	"gin_mode":                      "release",
	"log_format":                    "json",
	"log_level":                     "info",
	"gcp_project_id":                "",
	"admin_auth_mode":               "required",
	"admin_token":                   "",
	"google_service_account_key":    "",
	"google_service_account_secret": "",
	"workspace_endpoint":            "",
	"database_path":                 "data/exports.db",
	"redis_url":                     "",
	"redis_token_key":               "kreaite:workspace:token",
	"artifact_bucket":               "",
	"artifact_region":               "us-east-1",
	"artifact_endpoint":             "",
	"discord_webhook_url":           "",
	"gemini_api_key":                "",
	"gemini_model":                  "gemini-2.5-flash",
	"cors_allowed_origins":          "*",
	"shutdown_timeout":              "10s",
}

// Load は環境変数と（CONFIG_FILE が指定されていれば）YAMLファイルから設定を読み込む
//
// 環境変数が設定ファイルより優先される。
func Load() (*Settings, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if path := GetEnv("CONFIG_FILE", ""); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
			}
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("failed to decode settings: %w", err)
	}
	s.AdminAuthMode = strings.ToLower(strings.TrimSpace(s.AdminAuthMode))
	return &s, nil
}

// AllowedOrigins はCORS許可オリジンの一覧
func (s *Settings) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(s.CORSAllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// GetEnv は環境変数を取得し、存在しない場合はデフォルト値を返す
func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
