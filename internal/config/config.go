package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const ssmParamPrefix = "/calendar-task-dashboard"

// SSMParameterGetter Parameter Store からの読み出し（テストで差し替える）
type SSMParameterGetter interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// Config アプリケーション設定構造体
type Config struct {
	// Google Calendar設定
	GoogleCredentials string
	CalendarID        string

	// LINE API設定（両方そろっているときだけリマインダーを LINE に送る）
	LineChannelAccessToken string
	LineUserID             string

	// 外部API設定
	GeminiAPIKey      string
	GeminiModel       string
	OpenWeatherAPIKey string
	WebhookURL        string

	// ダッシュボード設定
	ListenAddr       string
	DatabasePath     string
	WeekStart        string
	Palette          []string
	ReminderInterval time.Duration
	DashboardFile    string

	// その他設定
	LogLevel string
	Timezone string

	// AWS関連（本番環境でのみ使用）
	ssmClient SSMParameterGetter
}

// Dashboard YAML で上書きできる表示設定
type Dashboard struct {
	Timezone  string   `yaml:"timezone"`
	WeekStart string   `yaml:"week_start"`
	Listen    string   `yaml:"listen"`
	Palette   []string `yaml:"palette"`
}

// Load 環境に応じて設定を読み込み
func Load() (*Config, error) {
	// AWS Lambda環境かどうか判定
	if os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != "" {
		return loadAWSConfig()
	}
	return loadLocalConfig()
}

// loadLocalConfig ローカル開発環境用の設定読み込み
func loadLocalConfig() (*Config, error) {
	// .envファイルを読み込み（存在する場合のみ）
	if err := godotenv.Load(); err != nil {
		// .envファイルが存在しない場合はエラーにしない
		fmt.Printf("Warning: .envファイルが見つかりません: %v\n", err)
	}

	cfg := fromEnv()
	cfg.GoogleCredentials = getEnvOrDefault("GOOGLE_CREDENTIALS", "")
	cfg.LineChannelAccessToken = getEnvOrDefault("LINE_CHANNEL_ACCESS_TOKEN", "")
	cfg.LineUserID = getEnvOrDefault("LINE_USER_ID", "")
	cfg.GeminiAPIKey = getEnvOrDefault("GEMINI_API_KEY", "")
	cfg.OpenWeatherAPIKey = getEnvOrDefault("OPENWEATHER_API_KEY", "")
	cfg.WebhookURL = getEnvOrDefault("WEBHOOK_URL", "")

	// 必須設定項目の確認
	if cfg.GoogleCredentials == "" {
		return nil, fmt.Errorf("GOOGLE_CREDENTIALS環境変数が設定されていません")
	}

	if err := cfg.finish(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadAWSConfig AWS Lambda環境用の設定読み込み
func loadAWSConfig() (*Config, error) {
	// AWS設定を初期化
	awsConfig, err := config.LoadDefaultConfig(context.TODO())
	if err != nil {
		return nil, fmt.Errorf("AWS設定の読み込みに失敗しました: %v", err)
	}

	cfg := fromEnv()
	cfg.ssmClient = ssm.NewFromConfig(awsConfig)

	// Parameter Storeから機密情報を取得
	if err := cfg.loadFromParameterStore(); err != nil {
		return nil, fmt.Errorf("Parameter Storeからの設定読み込みに失敗しました: %v", err)
	}

	if err := cfg.finish(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// fromEnv 機密情報以外の設定を環境変数から読み込み
func fromEnv() *Config {
	return &Config{
		CalendarID:    getEnvOrDefault("CALENDAR_ID", "primary"),
		GeminiModel:   getEnvOrDefault("GEMINI_MODEL", "gemini-2.5-flash"),
		ListenAddr:    getEnvOrDefault("LISTEN_ADDR", ":3000"),
		DatabasePath:  getEnvOrDefault("DATABASE_PATH", "./data/dashboard.db"),
		WeekStart:     getEnvOrDefault("WEEK_START", "sunday"),
		DashboardFile: getEnvOrDefault("DASHBOARD_FILE", ""),
		LogLevel:      getEnvOrDefault("LOG_LEVEL", "INFO"),
		Timezone:      getEnvOrDefault("TIMEZONE", "Asia/Tokyo"),
	}
}

// finish 間隔のパースと YAML の上書きを行い、値を正規化する
func (c *Config) finish() error {
	// Google認証情報はJSONとして読めることだけを起動時に確認する
	if _, err := c.GetGoogleCredentialsJSON(); err != nil {
		return err
	}

	interval, err := time.ParseDuration(getEnvOrDefault("REMINDER_INTERVAL", "10s"))
	if err != nil || interval <= 0 {
		return fmt.Errorf("REMINDER_INTERVALの形式が不正です: %s", os.Getenv("REMINDER_INTERVAL"))
	}
	c.ReminderInterval = interval

	if c.DashboardFile != "" {
		d, err := LoadDashboard(c.DashboardFile)
		if err != nil {
			return err
		}
		c.Apply(d)
	}

	c.Normalize()

	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// loadFromParameterStore Parameter Storeから機密情報を読み込み
func (c *Config) loadFromParameterStore() error {
	ctx := context.TODO()

	// Google認証情報を取得
	googleCreds, err := c.getParameter(ctx, getEnvOrDefault("SSM_GOOGLE_CREDS_PARAM", ssmParamPrefix+"/google-creds"), true)
	if err != nil {
		return fmt.Errorf("Google認証情報の取得に失敗しました: %v", err)
	}
	c.GoogleCredentials = googleCreds

	// LINE Channel Access Tokenを取得
	lineToken, err := c.getParameter(ctx, getEnvOrDefault("SSM_LINE_TOKEN_PARAM", ssmParamPrefix+"/line-channel-access-token"), true)
	if err != nil {
		return fmt.Errorf("LINE Channel Access Tokenの取得に失敗しました: %v", err)
	}
	c.LineChannelAccessToken = lineToken

	// LINE User IDを取得
	lineUser, err := c.getParameter(ctx, getEnvOrDefault("SSM_LINE_USER_ID_PARAM", ssmParamPrefix+"/line-user-id"), true)
	if err != nil {
		return fmt.Errorf("LINE User IDの取得に失敗しました: %v", err)
	}
	c.LineUserID = lineUser

	// カレンダーIDを取得
	calendarID, err := c.getParameter(ctx, getEnvOrDefault("SSM_CALENDAR_ID_PARAM", ssmParamPrefix+"/calendar-id"), false)
	if err != nil {
		return fmt.Errorf("カレンダーIDの取得に失敗しました: %v", err)
	}
	c.CalendarID = calendarID

	return nil
}

// getParameter Parameter Storeから指定されたパラメータを取得
func (c *Config) getParameter(ctx context.Context, paramName string, withDecryption bool) (string, error) {
	if c.ssmClient == nil {
		return "", errors.New("SSMクライアントが初期化されていません")
	}

	input := &ssm.GetParameterInput{
		Name:           aws.String(paramName),
		WithDecryption: aws.Bool(withDecryption),
	}

	result, err := c.ssmClient.GetParameter(ctx, input)
	if err != nil {
		return "", fmt.Errorf("パラメータ %s の取得に失敗しました: %v", paramName, err)
	}

	if result.Parameter == nil || result.Parameter.Value == nil || *result.Parameter.Value == "" {
		return "", fmt.Errorf("パラメータ %s が空の値です", paramName)
	}

	return *result.Parameter.Value, nil
}

// LoadDashboard YAML の表示設定を読み込み
func LoadDashboard(path string) (*Dashboard, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ダッシュボード設定ファイルの読み込みに失敗しました: %v", err)
	}

	var d Dashboard
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("ダッシュボード設定ファイルの解析に失敗しました: %v", err)
	}
	return &d, nil
}

// Apply YAML で指定された項目だけを上書き
func (c *Config) Apply(d *Dashboard) {
	if d == nil {
		return
	}
	if d.Timezone != "" {
		c.Timezone = d.Timezone
	}
	if d.WeekStart != "" {
		c.WeekStart = d.WeekStart
	}
	if d.Listen != "" {
		c.ListenAddr = d.Listen
	}
	if len(d.Palette) > 0 {
		c.Palette = append([]string(nil), d.Palette...)
	}
}

// Normalize 未設定・不正な値を既定値で埋める
func (c *Config) Normalize() {
	if c.CalendarID == "" {
		c.CalendarID = "primary"
	}
	if c.ListenAddr == "" {
		c.ListenAddr = ":3000"
	}
	if c.Timezone == "" {
		c.Timezone = "Asia/Tokyo"
	}
	switch c.WeekStart = strings.ToLower(strings.TrimSpace(c.WeekStart)); c.WeekStart {
	case "monday", "sunday":
	default:
		c.WeekStart = "sunday"
	}
	if c.ReminderInterval <= 0 {
		c.ReminderInterval = 10 * time.Second
	}
	if c.GeminiModel == "" {
		c.GeminiModel = "gemini-2.5-flash"
	}
}

// Location 表示タイムゾーン
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("タイムゾーンの読み込みに失敗しました: %v", err)
	}
	return loc, nil
}

// WeekStartDay 週の初日
func (c *Config) WeekStartDay() time.Weekday {
	if c.WeekStart == "monday" {
		return time.Monday
	}
	return time.Sunday
}

// LineEnabled LINE 通知の設定がそろっているか
func (c *Config) LineEnabled() bool {
	return c.LineChannelAccessToken != "" && c.LineUserID != ""
}

// GetGoogleCredentialsJSON Google認証情報をJSONとして解析
func (c *Config) GetGoogleCredentialsJSON() (map[string]interface{}, error) {
	var credentials map[string]interface{}
	if err := json.Unmarshal([]byte(c.GoogleCredentials), &credentials); err != nil {
		return nil, fmt.Errorf("Google認証情報のJSON解析に失敗しました: %v", err)
	}
	return credentials, nil
}

// getEnvOrDefault 環境変数を取得し、存在しない場合はデフォルト値を返す
func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}
