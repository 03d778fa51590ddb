package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/k-negishi/calendar-task-dashboard/internal/domain"
)

const linePushEndpoint = "https://api.line.me/v2/bot/message/push"

// LINENotifier LINE Messaging APIを使用したリマインダー通知
type LINENotifier struct {
	channelAccessToken string
	userID             string
	httpClient         *http.Client
	endpoint           string
	timezone           *time.Location
}

// lineMessage LINE APIに送信するメッセージ構造体
type lineMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// linePushRequest LINE Push APIのリクエスト構造体
type linePushRequest struct {
	To       string        `json:"to"`
	Messages []lineMessage `json:"messages"`
}

// lineErrorResponse LINE APIのエラーレスポンス構造体
type lineErrorResponse struct {
	Message string `json:"message"`
	Details []struct {
		Message  string `json:"message"`
		Property string `json:"property"`
	} `json:"details"`
}

// NewLINENotifier LINE通知クライアントを作成
func NewLINENotifier(channelAccessToken, userID string, loc *time.Location) *LINENotifier {
	if loc == nil {
		loc = time.Local
	}
	return &LINENotifier{
		channelAccessToken: channelAccessToken,
		userID:             userID,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		endpoint: linePushEndpoint,
		timezone: loc,
	}
}

// SendReminder 開始間近の予定・リマインダーをLINEで通知
func (n *LINENotifier) SendReminder(ctx context.Context, item domain.Item) error {
	return n.sendPushMessage(ctx, n.buildReminderMessage(item))
}

// buildReminderMessage リマインダー通知用のメッセージを構築
func (n *LINENotifier) buildReminderMessage(item domain.Item) string {
	var b strings.Builder

	title := item.Title
	if title == "" {
		title = domain.UntitledEventTitle
	}
	b.WriteString(fmt.Sprintf("🔔 %s\n", title))

	if item.StartTime != nil {
		b.WriteString(fmt.Sprintf("%s 開始", item.StartTime.In(n.timezone).Format("15:04")))
	}

	// 場所情報があれば追加
	if item.Location != "" {
		b.WriteString(fmt.Sprintf("\n📍 %s", item.Location))
	}

	return b.String()
}

// sendPushMessage LINE Push APIでメッセージを送信
func (n *LINENotifier) sendPushMessage(ctx context.Context, message string) error {
	pushRequest := linePushRequest{
		To: n.userID,
		Messages: []lineMessage{
			{
				Type: "text",
				Text: message,
			},
		},
	}

	requestBody, err := json.Marshal(pushRequest)
	if err != nil {
		return fmt.Errorf("リクエストボディのJSON変換に失敗しました: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, bytes.NewReader(requestBody))
	if err != nil {
		return fmt.Errorf("HTTPリクエストの作成に失敗しました: %v", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", n.channelAccessToken))

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("LINE APIリクエストの送信に失敗しました: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errorResponse lineErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&errorResponse); err != nil {
			return fmt.Errorf("LINE API呼び出しが失敗しました (Status: %d, レスポンス解析不可: %v)", resp.StatusCode, err)
		}

		errorDetails := errorResponse.Message
		if len(errorResponse.Details) > 0 {
			errorDetails += fmt.Sprintf(" (詳細: %s)", errorResponse.Details[0].Message)
		}

		return fmt.Errorf("LINE API呼び出しが失敗しました (Status: %d): %s", resp.StatusCode, errorDetails)
	}

	return nil
}
