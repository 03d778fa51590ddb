// Package handler はダッシュボードの HTTP エンドポイントを echo 上に実装する
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/k-negishi/calendar-task-dashboard/internal/calendarview/page"
	"github.com/k-negishi/calendar-task-dashboard/internal/domain"
	"github.com/k-negishi/calendar-task-dashboard/internal/usecase"
)

// EventsGetter カレンダーイベントの取得元
type EventsGetter interface {
	FetchEvents(ctx context.Context) ([]domain.Event, error)
	GetEvents(ctx context.Context, targetDate time.Time) ([]domain.Event, error)
}

// Dashboard カレンダーのビュー状態機械
type Dashboard interface {
	Read(fn func())
	Select(token string) bool
	DismissModal()
}

// Snapshotter 描画済みのページ状態を取り出す
type Snapshotter interface {
	Snapshot() page.Snapshot
}

// TaskAnalyzer タスク解析のユースケース
type TaskAnalyzer interface {
	Execute(ctx context.Context, in usecase.AnalyzeTaskInput) (*usecase.AnalyzeTaskResult, error)
}

// TodoService TODO 一覧と完了切り替え
type TodoService interface {
	List(ctx context.Context, email string) ([]usecase.TodoView, error)
	SetCompleted(ctx context.Context, id int64, completed bool) error
}

// ReminderCreator リマインダー登録
type ReminderCreator interface {
	CreateReminder(ctx context.Context, in usecase.CreateReminderInput) (*domain.Item, error)
}

// ChatResponder チャットの返信
type ChatResponder interface {
	Reply(ctx context.Context, messages []domain.ChatMessage) (string, error)
}

// Deps ハンドラが使う依存一式
// nil のものに対応するエンドポイントは 503 を返す
type Deps struct {
	Events    EventsGetter
	Dashboard Dashboard
	Page      Snapshotter
	Tasks     TaskAnalyzer
	Todos     TodoService
	Reminders ReminderCreator
	Chat      ChatResponder
	Location  *time.Location
	Logger    *zap.Logger
}

// Handler HTTP ハンドラ
type Handler struct {
	events    EventsGetter
	dashboard Dashboard
	page      Snapshotter
	tasks     TaskAnalyzer
	todos     TodoService
	reminders ReminderCreator
	chat      ChatResponder
	location  *time.Location
	logger    *zap.Logger
}

// New ハンドラを生成
func New(d Deps) *Handler {
	h := &Handler{
		events:    d.Events,
		dashboard: d.Dashboard,
		page:      d.Page,
		tasks:     d.Tasks,
		todos:     d.Todos,
		reminders: d.Reminders,
		chat:      d.Chat,
		location:  d.Location,
		logger:    d.Logger,
	}
	if h.location == nil {
		h.location = time.Local
	}
	if h.logger == nil {
		h.logger = zap.NewNop()
	}
	return h
}

// NewServer ミドルウェアとルートを登録した echo を生成
func NewServer(h *Handler) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = &pageRenderer{}

	Use(e, h.logger)
	h.Register(e)
	return e
}

// Register ルートを登録
func (h *Handler) Register(e *echo.Echo) {
	e.GET("/health", h.Health)

	e.GET("/calendar", h.CalendarPage)
	e.GET("/calendar/events", h.CalendarEvents)

	api := e.Group("/api")
	api.GET("/calendar", h.CalendarSnapshot)
	api.POST("/calendar/view", h.SelectView)
	api.POST("/calendar/dismiss", h.DismissModal)

	api.GET("/chat", h.ChatStatus)
	api.POST("/chat", h.Chat)

	api.POST("/analyze-task", h.AnalyzeTask)
	api.GET("/todos", h.ListTodos)
	api.POST("/todos/:id/toggle", h.ToggleTodo)
	api.POST("/reminders", h.CreateReminder)
}

// Health 死活監視
func (h *Handler) Health(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(c echo.Context, status int, msg string) error {
	return c.JSON(status, errorResponse{Error: msg})
}

func unavailable(c echo.Context) error {
	return writeError(c, http.StatusServiceUnavailable, "Service unavailable")
}
