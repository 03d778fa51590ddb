package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/k-negishi/calendar-task-dashboard/internal/domain"
)

const geminiEndpoint = "https://generativelanguage.googleapis.com/v1beta"

// GeminiClient Gemini API（generateContent）のクライアント
type GeminiClient struct {
	apiKey     string
	model      string
	httpClient *http.Client
	endpoint   string
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	MaxOutputTokens int `json:"maxOutputTokens,omitempty"`
}

type geminiRequest struct {
	Contents          []geminiContent         `json:"contents"`
	SystemInstruction *geminiContent          `json:"systemInstruction,omitempty"`
	GenerationConfig  *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

type geminiErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// NewGeminiClient Gemini クライアントを作成
func NewGeminiClient(apiKey, model string) *GeminiClient {
	return &GeminiClient{
		apiKey: apiKey,
		model:  model,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		endpoint: geminiEndpoint,
	}
}

// Generate 会話履歴と最新メッセージから返信を生成
// history の先頭は user で始まっている必要がある
func (c *GeminiClient) Generate(ctx context.Context, systemInstruction string, history []domain.ChatTurn, message string, maxOutputTokens int) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("Gemini APIキーが設定されていません")
	}

	contents := make([]geminiContent, 0, len(history)+1)
	for _, turn := range history {
		contents = append(contents, geminiContent{Role: string(turn.Role), Parts: []geminiPart{{Text: turn.Text}}})
	}
	contents = append(contents, geminiContent{Role: string(domain.ChatRoleUser), Parts: []geminiPart{{Text: message}}})

	reqBody := geminiRequest{Contents: contents}
	if systemInstruction != "" {
		reqBody.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: systemInstruction}}}
	}
	if maxOutputTokens > 0 {
		reqBody.GenerationConfig = &geminiGenerationConfig{MaxOutputTokens: maxOutputTokens}
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("リクエストボディのJSON変換に失敗しました: %v", err)
	}

	u := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.endpoint, url.PathEscape(c.model), url.QueryEscape(c.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("HTTPリクエストの作成に失敗しました: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("Gemini APIリクエストの送信に失敗しました: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", fmt.Errorf("Gemini API: %w", ErrRateLimited)
	}
	if resp.StatusCode != http.StatusOK {
		var errorResponse geminiErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&errorResponse); err != nil {
			return "", fmt.Errorf("Gemini API呼び出しが失敗しました (Status: %d, レスポンス解析不可: %v)", resp.StatusCode, err)
		}
		return "", fmt.Errorf("Gemini API呼び出しが失敗しました (Status: %d): %s", resp.StatusCode, errorResponse.Error.Message)
	}

	var result geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("Gemini APIレスポンスの解析に失敗しました: %v", err)
	}
	if len(result.Candidates) == 0 {
		return "", fmt.Errorf("Gemini APIから返信がありませんでした")
	}

	var b strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		b.WriteString(part.Text)
	}
	return b.String(), nil
}
