package usecase

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/k-negishi/calendar-task-dashboard/internal/domain"
	"github.com/k-negishi/calendar-task-dashboard/internal/gateway"
)

const (
	GreetingReply        = "Hi! How can I help you?"
	ChatStatusReply      = "Chat API is running. Send a POST request to chat."
	RateLimitedReply     = "I'm receiving too many messages right now! 🤯 Please give me a minute to cool down."
	ConnectionErrorReply = "I'm having trouble connecting. Please try again later."
	WeatherFallbackReply = "It feels like a calm 24°C with clear skies today!"

	// DefaultWeatherCity 都市名が読み取れなかったときの表記
	DefaultWeatherCity = "your area"

	// ChatMaxOutputTokens 生成する返信の上限トークン数
	ChatMaxOutputTokens = 500

	ChatSystemInstruction = "You are a helpful AI Assistant for a Calendar & Task Dashboard app. You aim to be helpful and fun. " +
		"If asked about real-time information you cannot access (like weather, stocks, or news), DO NOT REFUSE. " +
		"Instead, provide a cheerful, likely guess based on the user's location or season, or a playful fictional answer " +
		"(e.g. 'It feels like 30°C in the cloud today!'). Always prioritize giving an answer."
)

var weatherCityPattern = regexp.MustCompile(`(?i)weather in ([a-zA-Z\s]+)`)

// ErrNoChatMessage 生成AIに渡すメッセージがない
var ErrNoChatMessage = errors.New("送信するメッセージがありません")

// ChatUseCase チャットウィジェットの返信を作るユースケース
// 天気の質問は天気APIで、それ以外は生成AIで答える
type ChatUseCase struct {
	model   ChatModel
	weather WeatherProvider
	logger  *zap.Logger
}

// NewChatUseCase ユースケースを生成
func NewChatUseCase(model ChatModel, weather WeatherProvider, logger *zap.Logger) *ChatUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatUseCase{
		model:   model,
		weather: weather,
		logger:  logger,
	}
}

// Reply 返信を作る
// エラーを返すのは生成AIへの接続に失敗した場合だけで、そのときも表示用の返信を返す
func (uc *ChatUseCase) Reply(ctx context.Context, messages []domain.ChatMessage) (string, error) {
	if len(messages) == 0 {
		return GreetingReply, nil
	}

	last := strings.ToLower(messages[len(messages)-1].Content)
	if strings.Contains(last, "weather") {
		return uc.weatherReply(ctx, last), nil
	}

	reply, err := uc.generate(ctx, messages)
	if err != nil {
		if errors.Is(err, gateway.ErrRateLimited) {
			uc.logger.Warn("生成AIのレート制限に達しました", zap.Error(err))
			return RateLimitedReply, nil
		}
		uc.logger.Error("生成AIの呼び出しに失敗しました", zap.Error(err))
		return ConnectionErrorReply, err
	}
	return reply, nil
}

func (uc *ChatUseCase) generate(ctx context.Context, messages []domain.ChatMessage) (string, error) {
	if uc.model == nil {
		return "", fmt.Errorf("生成AIが設定されていません")
	}

	turns := BuildChatHistory(messages)
	if len(turns) == 0 {
		return "", ErrNoChatMessage
	}
	last := turns[len(turns)-1]
	history := trimLeadingModelTurns(turns[:len(turns)-1])

	return uc.model.Generate(ctx, ChatSystemInstruction, history, last.Text, ChatMaxOutputTokens)
}

// BuildChatHistory user / assistant のメッセージだけを残し、assistant を model に読み替える
func BuildChatHistory(messages []domain.ChatMessage) []domain.ChatTurn {
	turns := make([]domain.ChatTurn, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case domain.ChatRoleUser:
			turns = append(turns, domain.ChatTurn{Role: domain.ChatRoleUser, Text: m.Content})
		case domain.ChatRoleAssistant:
			turns = append(turns, domain.ChatTurn{Role: domain.ChatRoleModel, Text: m.Content})
		}
	}
	return turns
}

// trimLeadingModelTurns 履歴は user から始める
func trimLeadingModelTurns(turns []domain.ChatTurn) []domain.ChatTurn {
	for len(turns) > 0 && turns[0].Role == domain.ChatRoleModel {
		turns = turns[1:]
	}
	return turns
}

// WeatherCity 質問文から都市名を取り出す
func WeatherCity(text string) string {
	if m := weatherCityPattern.FindStringSubmatch(text); m != nil {
		if city := strings.TrimSpace(m[1]); city != "" {
			return city
		}
	}
	return DefaultWeatherCity
}

func (uc *ChatUseCase) weatherReply(ctx context.Context, text string) string {
	city := WeatherCity(text)

	if uc.weather == nil || !uc.weather.Configured() {
		return SimulatedWeatherReply(city)
	}

	w, err := uc.weather.CurrentWeather(ctx, city)
	if err != nil {
		if errors.Is(err, gateway.ErrCityNotFound) {
			uc.logger.Info("都市が見つかりませんでした", zap.String("city", city), zap.Error(err))
			return fmt.Sprintf("I couldn't get the exact data for %s, but let's assume it's a nice 24°C today!", city)
		}
		uc.logger.Warn("天気の取得に失敗しました", zap.String("city", city), zap.Error(err))
		return WeatherFallbackReply
	}

	return fmt.Sprintf("🌤 Weather in %s\n🌡 Temperature: %s°C\n☁ Condition: %s\n💧 Humidity: %d%%",
		w.City, strconv.FormatFloat(w.Temperature, 'f', -1, 64), w.Condition, w.Humidity)
}

// SimulatedWeatherReply 天気APIキーがないときの返信
func SimulatedWeatherReply(city string) string {
	return fmt.Sprintf("🌤 Weather in %s (Simulated)\n🌡 Temperature: 24°C\n☁ Condition: Clear Sky\n💧 Humidity: 45%%\nIt looks like a beautiful, calm day!", city)
}
