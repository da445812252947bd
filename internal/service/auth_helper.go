package service

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"
	"github.com/strokedoutsasquatch-creator/kreaite-sub005/internal/observability"
	"golang.org/x/oauth2"
)

const (
	defaultTokenURI  = "https://oauth2.googleapis.com/token"
	jwtBearerGrant   = "urn:ietf:params:oauth:grant-type:jwt-bearer"
	assertionTTL     = time.Hour
	tokenRefreshSkew = time.Minute
)

// WorkspaceScopes はDocs/Slides/Sheets/Forms/Driveに必要なスコープ
var WorkspaceScopes = []string{
	"https://www.googleapis.com/auth/documents",
	"https://www.googleapis.com/auth/presentations",
	"https://www.googleapis.com/auth/spreadsheets",
	"https://www.googleapis.com/auth/forms.body",
	"https://www.googleapis.com/auth/drive",
}

// ErrNotConfigured はサービスアカウントが未設定の場合のエラー
var ErrNotConfigured = errors.New("google workspace is not configured")

// ServiceAccountKey はサービスアカウントのJSONキー
type ServiceAccountKey struct {
	Type         string `json:"type"`
	ProjectID    string `json:"project_id"`
	PrivateKeyID string `json:"private_key_id"`
	PrivateKey   string `json:"private_key"`
	ClientEmail  string `json:"client_email"`
	TokenURI     string `json:"token_uri"`
}

// ParseServiceAccountKey はJSONキーをパース
func ParseServiceAccountKey(raw string) (*ServiceAccountKey, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrNotConfigured
	}

	var key ServiceAccountKey
	if err := json.Unmarshal([]byte(raw), &key); err != nil {
		return nil, fmt.Errorf("failed to parse service account key: %w", err)
	}
	if key.ClientEmail == "" || key.PrivateKey == "" {
		return nil, fmt.Errorf("service account key is missing client_email or private_key")
	}
	if key.TokenURI == "" {
		key.TokenURI = defaultTokenURI
	}
	return &key, nil
}

// LoadServiceAccountKey はSecret Manager、環境変数の順にキーを読み込み
func LoadServiceAccountKey(ctx context.Context, projectID, secretName, envValue string) (*ServiceAccountKey, error) {
	if secretName == "" && strings.TrimSpace(envValue) == "" {
		return nil, ErrNotConfigured
	}
	raw, err := loadSecret(ctx, projectID, secretName, envValue)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotConfigured, err)
	}
	return ParseServiceAccountKey(raw)
}

// ServiceAccountAuth はJWT bearer grantでアクセストークンを取得・キャッシュする
type ServiceAccountAuth struct {
	key        *ServiceAccountKey
	signingKey *rsa.PrivateKey
	scopes     []string
	cache      TokenCache
	httpClient *http.Client
	now        func() time.Time

	// 同時に走るトークン取得を1件に抑える
	mu sync.Mutex
}

// NewServiceAccountAuth は新しいServiceAccountAuthを作成
func NewServiceAccountAuth(key *ServiceAccountKey, cache TokenCache, scopes ...string) (*ServiceAccountAuth, error) {
	if key == nil {
		return nil, ErrNotConfigured
	}
	signingKey, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(key.PrivateKey))
	if err != nil {
		return nil, fmt.Errorf("failed to parse service account private key: %w", err)
	}
	if cache == nil {
		cache = NewMemoryTokenCache()
	}
	if len(scopes) == 0 {
		scopes = WorkspaceScopes
	}

	return &ServiceAccountAuth{
		key:        key,
		signingKey: signingKey,
		scopes:     scopes,
		cache:      cache,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		now:        time.Now,
	}, nil
}

// ClientEmail はサービスアカウントのメールアドレス
func (a *ServiceAccountAuth) ClientEmail() string {
	return a.key.ClientEmail
}

// GetAccessToken は有効なアクセストークンを取得（必要に応じて再取得）
func (a *ServiceAccountAuth) GetAccessToken(ctx context.Context) (string, error) {
	tok, err := a.token(ctx)
	if err != nil {
		return "", err
	}
	return tok.AccessToken, nil
}

func (a *ServiceAccountAuth) token(ctx context.Context) (*CachedToken, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	cached, err := a.cache.Load(ctx)
	if err != nil {
		// キャッシュ障害時はトークンを取り直す
		log.Printf("Warning: token cache read failed: %v", err)
	}
	if cached != nil && cached.AccessToken != "" && !tokenExpiredSoon(a.now(), cached.ExpiresAt) {
		return cached, nil
	}

	fresh, err := a.fetchToken(ctx)
	if err != nil {
		observability.TokenFetchesTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	observability.TokenFetchesTotal.WithLabelValues("ok").Inc()

	if err := a.cache.Store(ctx, fresh); err != nil {
		log.Printf("Warning: token cache write failed: %v", err)
	}
	return fresh, nil
}

// Invalidate はキャッシュ済みトークンを破棄（401受信後など）
func (a *ServiceAccountAuth) Invalidate(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cache.Clear(ctx)
}

// signAssertion はRS256署名付きJWTアサーションを作成
func (a *ServiceAccountAuth) signAssertion(issuedAt time.Time) (string, error) {
	claims := jwt.MapClaims{
		"iss":   a.key.ClientEmail,
		"scope": strings.Join(a.scopes, " "),
		"aud":   a.key.TokenURI,
		"iat":   issuedAt.Unix(),
		"exp":   issuedAt.Add(assertionTTL).Unix(),
		"jti":   uuid.NewString(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	if a.key.PrivateKeyID != "" {
		token.Header["kid"] = a.key.PrivateKeyID
	}
	return token.SignedString(a.signingKey)
}

// fetchToken はトークンエンドポイントからアクセストークンを取得
func (a *ServiceAccountAuth) fetchToken(ctx context.Context) (*CachedToken, error) {
	issuedAt := a.now()
	assertion, err := a.signAssertion(issuedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to sign jwt assertion: %w", err)
	}

	data := url.Values{}
	data.Set("grant_type", jwtBearerGrant)
	data.Set("assertion", assertion)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.key.TokenURI, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to request token: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read token response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("token request failed: %s - %s", resp.Status, string(body))
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
		TokenType   string `json:"token_type"`
	}
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return nil, fmt.Errorf("failed to parse token response: %w", err)
	}
	if tokenResp.AccessToken == "" {
		return nil, fmt.Errorf("token response did not contain an access token")
	}

	expiresIn := time.Duration(tokenResp.ExpiresIn) * time.Second
	if expiresIn <= 0 {
		expiresIn = assertionTTL
	}
	log.Printf("Service account access token acquired for %s", a.key.ClientEmail)

	return &CachedToken{
		AccessToken: tokenResp.AccessToken,
		ExpiresAt:   issuedAt.Add(expiresIn),
	}, nil
}

// TokenSource は oauth2.TokenSource を返す
func (a *ServiceAccountAuth) TokenSource(ctx context.Context) oauth2.TokenSource {
	return &tokenSource{auth: a, ctx: ctx}
}

// tokenSource は oauth2.TokenSource インターフェースを実装
type tokenSource struct {
	auth *ServiceAccountAuth
	ctx  context.Context
}

func (ts *tokenSource) Token() (*oauth2.Token, error) {
	tok, err := ts.auth.token(ts.ctx)
	if err != nil {
		return nil, err
	}
	return &oauth2.Token{
		AccessToken: tok.AccessToken,
		TokenType:   "Bearer",
		Expiry:      tok.ExpiresAt.Add(-tokenRefreshSkew),
	}, nil
}

// tokenExpiredSoon は期限切れ、または1分以内に期限切れになるかを判定
func tokenExpiredSoon(now, expiresAt time.Time) bool {
	if expiresAt.IsZero() {
		return true
	}
	return now.After(expiresAt.Add(-tokenRefreshSkew))
}
