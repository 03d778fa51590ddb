package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// WebhookForwarder 自動化ワークフロー（n8n など）の Webhook へテキストを転送する
type WebhookForwarder struct {
	url        string
	httpClient *http.Client
}

type webhookRequest struct {
	Message string `json:"message"`
}

// NewWebhookForwarder Webhook 転送クライアントを作成
func NewWebhookForwarder(url string) *WebhookForwarder {
	return &WebhookForwarder{
		url: url,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Forward テキストを送信し、レスポンス本文をそのまま返す
func (f *WebhookForwarder) Forward(ctx context.Context, text string) (string, error) {
	if f.url == "" {
		return "", fmt.Errorf("WebhookのURLが設定されていません")
	}

	body, err := json.Marshal(webhookRequest{Message: text})
	if err != nil {
		return "", fmt.Errorf("リクエストボディのJSON変換に失敗しました: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("HTTPリクエストの作成に失敗しました: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("Webhookへの送信に失敗しました: %v", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("Webhookのレスポンス読み込みに失敗しました: %v", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("Webhook呼び出しが失敗しました (Status: %d): %s", resp.StatusCode, string(data))
	}

	return string(data), nil
}
