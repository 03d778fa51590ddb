package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/k-negishi/calendar-task-dashboard/internal/domain"
	"github.com/k-negishi/calendar-task-dashboard/internal/gateway"
)

func userMsg(text string) domain.ChatMessage {
	return domain.ChatMessage{Role: domain.ChatRoleUser, Content: text}
}

func assistantMsg(text string) domain.ChatMessage {
	return domain.ChatMessage{Role: domain.ChatRoleAssistant, Content: text}
}

func TestChatReply_NoMessages(t *testing.T) {
	uc := NewChatUseCase(nil, nil, nil)

	reply, err := uc.Reply(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, GreetingReply, reply)
}

func TestWeatherCity(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"what's the weather in tokyo", "tokyo"},
		{"weather in new york today?", "new york today"},
		{"how is the weather", DefaultWeatherCity},
		{"weather in 123", DefaultWeatherCity},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, WeatherCity(tt.input))
		})
	}
}

func TestChatReply_Weather(t *testing.T) {
	t.Run("正常系: APIキーなしはシミュレーション", func(t *testing.T) {
		weather := new(MockWeatherProvider)
		weather.On("Configured").Return(false)
		uc := NewChatUseCase(nil, weather, nil)

		reply, err := uc.Reply(context.Background(), []domain.ChatMessage{userMsg("Weather in Paris")})
		require.NoError(t, err)
		assert.Equal(t, SimulatedWeatherReply("paris"), reply)
		assert.Contains(t, reply, "24°C")
		assert.Contains(t, reply, "Clear Sky")
		assert.Contains(t, reply, "45%")
	})

	t.Run("正常系: 天気を返す", func(t *testing.T) {
		weather := new(MockWeatherProvider)
		weather.On("Configured").Return(true)
		weather.On("CurrentWeather", mock.Anything, "london").
			Return(domain.Weather{City: "London", Temperature: 12.3, Condition: "overcast clouds", Humidity: 81}, nil)
		uc := NewChatUseCase(nil, weather, nil)

		reply, err := uc.Reply(context.Background(), []domain.ChatMessage{userMsg("weather in London")})
		require.NoError(t, err)
		assert.Equal(t, "🌤 Weather in London\n🌡 Temperature: 12.3°C\n☁ Condition: overcast clouds\n💧 Humidity: 81%", reply)
	})

	t.Run("異常系: 都市が見つからない", func(t *testing.T) {
		weather := new(MockWeatherProvider)
		weather.On("Configured").Return(true)
		weather.On("CurrentWeather", mock.Anything, "atlantis").
			Return(domain.Weather{}, fmt.Errorf("%w: atlantis", gateway.ErrCityNotFound))
		uc := NewChatUseCase(nil, weather, nil)

		reply, err := uc.Reply(context.Background(), []domain.ChatMessage{userMsg("weather in atlantis")})
		require.NoError(t, err)
		assert.Equal(t, "I couldn't get the exact data for atlantis, but let's assume it's a nice 24°C today!", reply)
	})

	t.Run("異常系: 通信エラー", func(t *testing.T) {
		weather := new(MockWeatherProvider)
		weather.On("Configured").Return(true)
		weather.On("CurrentWeather", mock.Anything, DefaultWeatherCity).Return(domain.Weather{}, errors.New("timeout"))
		uc := NewChatUseCase(nil, weather, nil)

		reply, err := uc.Reply(context.Background(), []domain.ChatMessage{userMsg("WEATHER?")})
		require.NoError(t, err)
		assert.Equal(t, WeatherFallbackReply, reply)
	})
}

func TestChatReply_Gemini(t *testing.T) {
	model := new(MockChatModel)
	uc := NewChatUseCase(model, nil, nil)

	messages := []domain.ChatMessage{
		assistantMsg("Welcome!"),
		{Role: "system", Content: "ignored"},
		userMsg("hi"),
		assistantMsg("hello"),
		userMsg("What's on my calendar?"),
	}
	expectedHistory := []domain.ChatTurn{
		{Role: domain.ChatRoleUser, Text: "hi"},
		{Role: domain.ChatRoleModel, Text: "hello"},
	}
	model.On("Generate", mock.Anything, ChatSystemInstruction, expectedHistory, "What's on my calendar?", ChatMaxOutputTokens).
		Return("You have a standup at 9.", nil)

	reply, err := uc.Reply(context.Background(), messages)
	require.NoError(t, err)
	assert.Equal(t, "You have a standup at 9.", reply)
	model.AssertExpectations(t)
}

func TestChatReply_GeminiErrors(t *testing.T) {
	t.Run("異常系: レート制限", func(t *testing.T) {
		model := new(MockChatModel)
		model.On("Generate", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return("", fmt.Errorf("Gemini API: %w", gateway.ErrRateLimited))
		uc := NewChatUseCase(model, nil, nil)

		reply, err := uc.Reply(context.Background(), []domain.ChatMessage{userMsg("hello")})
		require.NoError(t, err)
		assert.Equal(t, RateLimitedReply, reply)
	})

	t.Run("異常系: 接続エラー", func(t *testing.T) {
		model := new(MockChatModel)
		model.On("Generate", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return("", errors.New("connection refused"))
		uc := NewChatUseCase(model, nil, nil)

		reply, err := uc.Reply(context.Background(), []domain.ChatMessage{userMsg("hello")})
		assert.Error(t, err)
		assert.Equal(t, ConnectionErrorReply, reply)
	})

	t.Run("異常系: 送信できるメッセージがない", func(t *testing.T) {
		model := new(MockChatModel)
		uc := NewChatUseCase(model, nil, nil)

		reply, err := uc.Reply(context.Background(), []domain.ChatMessage{{Role: "system", Content: "hello"}})
		assert.ErrorIs(t, err, ErrNoChatMessage)
		assert.Equal(t, ConnectionErrorReply, reply)
		model.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("異常系: 生成AI未設定", func(t *testing.T) {
		uc := NewChatUseCase(nil, nil, nil)

		reply, err := uc.Reply(context.Background(), []domain.ChatMessage{userMsg("hello")})
		assert.Error(t, err)
		assert.Equal(t, ConnectionErrorReply, reply)
	})
}

func TestBuildChatHistory(t *testing.T) {
	turns := BuildChatHistory([]domain.ChatMessage{userMsg("a"), assistantMsg("b"), {Role: "tool", Content: "c"}})

	assert.Equal(t, []domain.ChatTurn{
		{Role: domain.ChatRoleUser, Text: "a"},
		{Role: domain.ChatRoleModel, Text: "b"},
	}, turns)
}
