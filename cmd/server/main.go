package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"go.uber.org/zap"

	"github.com/k-negishi/calendar-task-dashboard/internal/calendarview"
	"github.com/k-negishi/calendar-task-dashboard/internal/calendarview/page"
	"github.com/k-negishi/calendar-task-dashboard/internal/config"
	"github.com/k-negishi/calendar-task-dashboard/internal/gateway"
	"github.com/k-negishi/calendar-task-dashboard/internal/handler"
	"github.com/k-negishi/calendar-task-dashboard/internal/logger"
	"github.com/k-negishi/calendar-task-dashboard/internal/scheduler"
	"github.com/k-negishi/calendar-task-dashboard/internal/storage"
	"github.com/k-negishi/calendar-task-dashboard/internal/usecase"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "起動に失敗しました: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// 設定を読み込み
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := storage.New(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer store.Close()

	// Google Calendarクライアントを初期化
	repo, err := gateway.NewGoogleCalendarRepository(ctx, []byte(cfg.GoogleCredentials), cfg.CalendarID, loc)
	if err != nil {
		return err
	}
	repo.SetLogger(log.Named("calendar"))

	sched := scheduler.New(loc, log.Named("scheduler"))

	// カレンダー画面を組み立てて予定を一度だけ読み込む
	p := page.New()
	ctrl := calendarview.NewController(
		p.Mounts(),
		calendarview.WithLocation(loc),
		calendarview.WithWeekStart(cfg.WeekStartDay()),
		calendarview.WithPalette(calendarview.Palette(cfg.Palette)),
		calendarview.WithTicker(sched, calendarview.DefaultTickInterval),
		calendarview.WithLogger(log.Named("calendarview")),
	)
	defer ctrl.Close()
	if err := ctrl.Load(ctx, repo); err != nil {
		log.Warn("予定を取得できなかったため取得不可として表示します", zap.Error(err))
	}

	var forwarder usecase.Forwarder
	if cfg.WebhookURL != "" {
		forwarder = gateway.NewWebhookForwarder(cfg.WebhookURL)
	}
	var model usecase.ChatModel
	if cfg.GeminiAPIKey != "" {
		model = gateway.NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiModel)
	}
	var notifiers []usecase.ReminderNotifier
	if cfg.LineEnabled() {
		notifiers = append(notifiers, gateway.NewLINENotifier(cfg.LineChannelAccessToken, cfg.LineUserID, loc))
	}

	reminders := usecase.NewCheckRemindersUseCase(store, store, log.Named("reminder"), notifiers...)
	cancelPoll, err := sched.Every(cfg.ReminderInterval, func() {
		if _, err := reminders.Execute(ctx); err != nil {
			log.Warn("リマインダーのチェックでエラーがありました", zap.Error(err))
		}
	})
	if err != nil {
		return err
	}
	defer cancelPoll()

	h := handler.New(handler.Deps{
		Events:    repo,
		Dashboard: ctrl,
		Page:      p,
		Tasks:     usecase.NewAnalyzeTaskUseCase(forwarder, store, log.Named("task")),
		Todos:     usecase.NewTodoUseCase(store),
		Reminders: reminders,
		Chat:      usecase.NewChatUseCase(model, gateway.NewOpenWeatherClient(cfg.OpenWeatherAPIKey), log.Named("chat")),
		Location:  loc,
		Logger:    log.Named("http"),
	})
	e := handler.NewServer(h)

	sched.Start()
	defer sched.Stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTPサーバーを起動します", zap.String("listen", cfg.ListenAddr))
		if err := e.Start(cfg.ListenAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		log.Info("シャットダウンします")
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("HTTPサーバーが停止しました: %v", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
