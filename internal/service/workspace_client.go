package service

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/strokedoutsasquatch-creator/kreaite-sub005/internal/observability"
	"golang.org/x/oauth2"
	"google.golang.org/api/docs/v1"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/forms/v1"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
	"google.golang.org/api/slides/v1"
)

// WorkspaceClient はGoogle Docs/Slides/Sheets/Forms/Driveのクライアント
type WorkspaceClient struct {
	auth     *ServiceAccountAuth
	docs     *docs.Service
	slides   *slides.Service
	sheets   *sheets.Service
	forms    *forms.Service
	drive    *drive.Service
	notifier *DiscordNotifier
}

// WorkspaceOptions はクライアント生成時のオプション
type WorkspaceOptions struct {
	// Endpoint は全APIのベースURLを差し替える（テスト・エミュレータ用）
	Endpoint string
	// HTTPClient は下位のトランスポート。auth が nil の場合、認証はこのクライアントに任せる
	HTTPClient *http.Client
	Notifier   *DiscordNotifier
}

// NewWorkspaceClient は新しいWorkspaceClientを作成
func NewWorkspaceClient(ctx context.Context, auth *ServiceAccountAuth, opts WorkspaceOptions) (*WorkspaceClient, error) {
	var clientOpts []option.ClientOption
	switch {
	case auth != nil:
		// Token() はリクエストごとに呼ばれる。Invalidate 後の呼び出しは再取得する
		var base http.RoundTripper
		if opts.HTTPClient != nil {
			base = opts.HTTPClient.Transport
		}
		clientOpts = append(clientOpts, option.WithHTTPClient(&http.Client{
			Transport: &oauth2.Transport{Source: auth.TokenSource(ctx), Base: base},
		}))
	case opts.HTTPClient != nil:
		clientOpts = append(clientOpts, option.WithHTTPClient(opts.HTTPClient))
	default:
		return nil, ErrNotConfigured
	}
	if opts.Endpoint != "" {
		endpoint := opts.Endpoint
		if !strings.HasSuffix(endpoint, "/") {
			endpoint += "/"
		}
		clientOpts = append(clientOpts, option.WithEndpoint(endpoint))
	}

	docsService, err := docs.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create docs service: %w", err)
	}
	slidesService, err := slides.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create slides service: %w", err)
	}
	sheetsService, err := sheets.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}
	formsService, err := forms.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create forms service: %w", err)
	}
	driveService, err := drive.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}

	return &WorkspaceClient{
		auth:     auth,
		docs:     docsService,
		slides:   slidesService,
		sheets:   sheetsService,
		forms:    formsService,
		drive:    driveService,
		notifier: opts.Notifier,
	}, nil
}

// Auth はトークン管理オブジェクトを返す（未設定時はnil）
func (c *WorkspaceClient) Auth() *ServiceAccountAuth {
	return c.auth
}

// observe はAPI呼び出し結果をメトリクスに記録
func observe(operation string, err error) {
	observability.WorkspaceCallsTotal.WithLabelValues(operation, observability.Outcome(err)).Inc()
}

// InvalidateToken はキャッシュ済みアクセストークンを破棄（401受信後など）
func (c *WorkspaceClient) InvalidateToken(ctx context.Context) error {
	if c.auth == nil {
		return nil
	}
	return c.auth.Invalidate(ctx)
}
