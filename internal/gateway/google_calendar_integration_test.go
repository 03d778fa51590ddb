//go:build integration

package gateway

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/k-negishi/calendar-task-dashboard/internal/config"
)

func TestGoogleCalendarRepository_Integration(t *testing.T) {
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("インテグレーションテストの実行には.envファイルに設定された有効な認証情報が必要です: %v", err)
	}
	require.NotEmpty(t, cfg.GoogleCredentials, "GOOGLE_CREDENTIALSが設定されていません")

	loc, err := cfg.Location()
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	repo, err := NewGoogleCalendarRepository(ctx, []byte(cfg.GoogleCredentials), cfg.CalendarID, loc)
	require.NoError(t, err, "カレンダーのクライアント作成に失敗しました")

	t.Run("今日の予定を取得する", func(t *testing.T) {
		// 結果の件数は実行日のカレンダー次第なので、エラーなく完了することだけを確認する
		_, err := repo.GetEvents(ctx, time.Now())
		assert.NoError(t, err)
	})

	t.Run("現在以降の予定を取得する", func(t *testing.T) {
		events, err := repo.FetchEvents(ctx)
		require.NoError(t, err)
		for _, ev := range events {
			assert.NotNil(t, ev.Start, "開始時刻のない予定は除外される")
		}
	})
}
