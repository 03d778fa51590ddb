package usecase

import (
	"context"
	"time"

	"github.com/k-negishi/calendar-task-dashboard/internal/domain"
)

// UserStore 利用者を保存するポート
type UserStore interface {
	FindOrCreateUser(ctx context.Context, email, name string) (*domain.User, error)
}

// ItemStore TODO・リマインダーを保存するポート
type ItemStore interface {
	UserStore
	CreateItem(ctx context.Context, item *domain.Item) error
	ListTodos(ctx context.Context, userID int64) ([]*domain.Item, error)
	SetItemCompleted(ctx context.Context, id int64, completed bool) error
}

// ReminderStore リマインダー通知の対象を扱うポート
type ReminderStore interface {
	ListDueReminders(ctx context.Context, from, to time.Time) ([]*domain.Item, error)
	MarkReminderSent(ctx context.Context, id int64) error
}

// Forwarder 外部の自動化ワークフローへテキストを転送するポート
type Forwarder interface {
	Forward(ctx context.Context, text string) (string, error)
}

// ReminderNotifier リマインダーを通知するポート
type ReminderNotifier interface {
	SendReminder(ctx context.Context, item domain.Item) error
}

// ChatModel 生成AIのポート
type ChatModel interface {
	Generate(ctx context.Context, systemInstruction string, history []domain.ChatTurn, message string, maxOutputTokens int) (string, error)
}

// WeatherProvider 天気情報のポート
type WeatherProvider interface {
	Configured() bool
	CurrentWeather(ctx context.Context, city string) (domain.Weather, error)
}
