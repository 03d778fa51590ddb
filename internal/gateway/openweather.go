package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/k-negishi/calendar-task-dashboard/internal/domain"
)

const openWeatherEndpoint = "https://api.openweathermap.org"

// OpenWeatherClient OpenWeatherMap 現在の天気APIのクライアント
type OpenWeatherClient struct {
	apiKey     string
	httpClient *http.Client
	endpoint   string
}

// openWeatherResponse cod は成功時は数値、失敗時は文字列で返る
type openWeatherResponse struct {
	Cod     json.RawMessage `json:"cod"`
	Message string          `json:"message"`
	Name    string          `json:"name"`
	Main    struct {
		Temp     float64 `json:"temp"`
		Humidity int     `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
}

// NewOpenWeatherClient 天気APIクライアントを作成
func NewOpenWeatherClient(apiKey string) *OpenWeatherClient {
	return &OpenWeatherClient{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		endpoint: openWeatherEndpoint,
	}
}

// Configured APIキーが設定されているか
func (c *OpenWeatherClient) Configured() bool {
	return c != nil && c.apiKey != ""
}

// CurrentWeather 都市名から現在の天気を取得（摂氏）
func (c *OpenWeatherClient) CurrentWeather(ctx context.Context, city string) (domain.Weather, error) {
	q := url.Values{}
	q.Set("q", city)
	q.Set("units", "metric")
	q.Set("appid", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"/data/2.5/weather?"+q.Encode(), nil)
	if err != nil {
		return domain.Weather{}, fmt.Errorf("HTTPリクエストの作成に失敗しました: %v", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Weather{}, fmt.Errorf("天気APIリクエストの送信に失敗しました: %v", err)
	}
	defer resp.Body.Close()

	var data openWeatherResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return domain.Weather{}, fmt.Errorf("天気APIレスポンスの解析に失敗しました (Status: %d): %v", resp.StatusCode, err)
	}

	if code := strings.Trim(string(data.Cod), `"`); code != "200" {
		return domain.Weather{}, fmt.Errorf("%w: %s (cod: %s, %s)", ErrCityNotFound, city, code, data.Message)
	}

	w := domain.Weather{
		City:        data.Name,
		Temperature: data.Main.Temp,
		Humidity:    data.Main.Humidity,
	}
	if len(data.Weather) > 0 {
		w.Condition = data.Weather[0].Description
	}
	return w, nil
}
