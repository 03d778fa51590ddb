package usecase

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/k-negishi/calendar-task-dashboard/internal/domain"
)

// MockItemStore は ItemStore のテスト用モック
type MockItemStore struct {
	mock.Mock
}

func (m *MockItemStore) FindOrCreateUser(ctx context.Context, email, name string) (*domain.User, error) {
	args := m.Called(ctx, email, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockItemStore) CreateItem(ctx context.Context, item *domain.Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockItemStore) ListTodos(ctx context.Context, userID int64) ([]*domain.Item, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Item), args.Error(1)
}

func (m *MockItemStore) SetItemCompleted(ctx context.Context, id int64, completed bool) error {
	args := m.Called(ctx, id, completed)
	return args.Error(0)
}

// MockReminderStore は ReminderStore のテスト用モック
type MockReminderStore struct {
	mock.Mock
}

func (m *MockReminderStore) ListDueReminders(ctx context.Context, from, to time.Time) ([]*domain.Item, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Item), args.Error(1)
}

func (m *MockReminderStore) MarkReminderSent(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockForwarder は Forwarder のテスト用モック
type MockForwarder struct {
	mock.Mock
}

func (m *MockForwarder) Forward(ctx context.Context, text string) (string, error) {
	args := m.Called(ctx, text)
	return args.String(0), args.Error(1)
}

// MockReminderNotifier は ReminderNotifier のテスト用モック
type MockReminderNotifier struct {
	mock.Mock
}

func (m *MockReminderNotifier) SendReminder(ctx context.Context, item domain.Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

// MockChatModel は ChatModel のテスト用モック
type MockChatModel struct {
	mock.Mock
}

func (m *MockChatModel) Generate(ctx context.Context, systemInstruction string, history []domain.ChatTurn, message string, maxOutputTokens int) (string, error) {
	args := m.Called(ctx, systemInstruction, history, message, maxOutputTokens)
	return args.String(0), args.Error(1)
}

// MockWeatherProvider は WeatherProvider のテスト用モック
type MockWeatherProvider struct {
	mock.Mock
}

func (m *MockWeatherProvider) Configured() bool {
	return m.Called().Bool(0)
}

func (m *MockWeatherProvider) CurrentWeather(ctx context.Context, city string) (domain.Weather, error) {
	args := m.Called(ctx, city)
	return args.Get(0).(domain.Weather), args.Error(1)
}
