package main

import (
	"context"
	_ "time/tzdata"

	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"github.com/k-negishi/calendar-task-dashboard/internal/config"
	"github.com/k-negishi/calendar-task-dashboard/internal/gateway"
	"github.com/k-negishi/calendar-task-dashboard/internal/logger"
	"github.com/k-negishi/calendar-task-dashboard/internal/storage"
	"github.com/k-negishi/calendar-task-dashboard/internal/usecase"
)

// LambdaEvent Lambda実行時のイベント構造体
type LambdaEvent struct {
	// EventBridge Schedulerからの実行なので特に使用しない
}

// LambdaResponse Lambda実行結果のレスポンス
type LambdaResponse struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Sent       int    `json:"sent"`
}

// handler 開始間近のリマインダーを1回だけチェックして通知する
func handler(ctx context.Context, event LambdaEvent) (LambdaResponse, error) {
	// 設定を読み込み
	cfg, err := config.Load()
	if err != nil {
		return LambdaResponse{
			StatusCode: 500,
			Message:    "設定読み込みエラー",
		}, err
	}

	zl, err := logger.New(cfg.LogLevel)
	if err != nil {
		return LambdaResponse{
			StatusCode: 500,
			Message:    "ロガー初期化エラー",
		}, err
	}
	defer func() { _ = zl.Sync() }()

	loc, err := cfg.Location()
	if err != nil {
		return LambdaResponse{
			StatusCode: 500,
			Message:    "タイムゾーン読み込みエラー",
		}, err
	}

	store, err := storage.New(cfg.DatabasePath)
	if err != nil {
		return LambdaResponse{
			StatusCode: 500,
			Message:    "DB初期化エラー",
		}, err
	}
	defer store.Close()

	var notifiers []usecase.ReminderNotifier
	if cfg.LineEnabled() {
		notifiers = append(notifiers, gateway.NewLINENotifier(cfg.LineChannelAccessToken, cfg.LineUserID, loc))
	}

	sent, err := usecase.NewCheckRemindersUseCase(store, store, zl, notifiers...).Execute(ctx)
	if err != nil {
		zl.Error("リマインダー通知に失敗しました", zap.Int("sent", sent), zap.Error(err))
		return LambdaResponse{
			StatusCode: 500,
			Message:    "リマインダー通知エラー",
			Sent:       sent,
		}, err
	}

	if sent == 0 {
		return LambdaResponse{
			StatusCode: 200,
			Message:    "通知対象なしのためスキップ",
		}, nil
	}

	return LambdaResponse{
		StatusCode: 200,
		Message:    "通知送信完了",
		Sent:       sent,
	}, nil
}

func main() {
	lambda.Start(handler)
}
