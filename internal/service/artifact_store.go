package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

// ErrStorageNotConfigured は保存先が未設定の場合のエラー
var ErrStorageNotConfigured = errors.New("artifact storage is not configured")

// ArtifactStore はエクスポート成果物の保存先
type ArtifactStore interface {
	// Put は成果物を保存し、アクセス用URLを返す
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// S3Config はS3互換ストレージの設定
type S3Config struct {
	Bucket string
	Region string
	// Endpoint はS3互換サービス（MinIO等）の場合に指定
	Endpoint string
}

// S3ArtifactStore はS3互換ストレージに成果物を保存する
type S3ArtifactStore struct {
	client   *s3.S3
	bucket   string
	region   string
	endpoint string
}

// NewS3ArtifactStore は新しいS3ArtifactStoreを作成（認証情報はAWS標準の解決順）
func NewS3ArtifactStore(cfg S3Config) (*S3ArtifactStore, error) {
	if cfg.Bucket == "" {
		return nil, ErrStorageNotConfigured
	}
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}

	awsCfg := &aws.Config{Region: aws.String(cfg.Region)}
	if cfg.Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.Endpoint)
		awsCfg.S3ForcePathStyle = aws.Bool(true)
	}

	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create aws session: %w", err)
	}

	return &S3ArtifactStore{
		client:   s3.New(sess),
		bucket:   cfg.Bucket,
		region:   cfg.Region,
		endpoint: strings.TrimSuffix(cfg.Endpoint, "/"),
	}, nil
}

// Put は成果物をアップロードする
func (s *S3ArtifactStore) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	_, err := s.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s to s3: %w", key, err)
	}
	return s.objectURL(key), nil
}

func (s *S3ArtifactStore) objectURL(key string) string {
	if s.endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", s.endpoint, s.bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}
