package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
)

// loadSecret はSecret Managerからシークレットを取得し、失敗時は fallback を返す
func loadSecret(ctx context.Context, projectID, secretName, fallback string) (string, error) {
	if secretName != "" && projectID != "" {
		value, err := accessSecret(ctx, projectID, secretName)
		if err == nil {
			log.Printf("Secret %s loaded from Secret Manager", secretName)
			return value, nil
		}
		log.Printf("Secret Manager読み込み失敗 (%s): %v, falling back to env var", secretName, err)
	}

	fallback = strings.TrimSpace(fallback)
	if fallback == "" {
		return "", fmt.Errorf("secret %q not found in Secret Manager or environment", secretName)
	}
	return fallback, nil
}

func accessSecret(ctx context.Context, projectID, secretName string) (string, error) {
	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to create secret manager client: %w", err)
	}
	defer client.Close()

	name := fmt.Sprintf("projects/%s/secrets/%s/versions/latest", projectID, secretName)
	result, err := client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: name,
	})
	if err != nil {
		return "", fmt.Errorf("failed to access secret version: %w", err)
	}

	return strings.TrimSpace(string(result.Payload.Data)), nil
}
