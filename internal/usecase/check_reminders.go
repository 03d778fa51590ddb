package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/k-negishi/calendar-task-dashboard/internal/domain"
)

// ReminderWindow 現在時刻からどれだけ先までを通知対象にするか
const ReminderWindow = 5 * time.Minute

// ErrReminderTitleRequired リマインダーのタイトルが空
var ErrReminderTitleRequired = errors.New("Reminder title is required")

// CreateReminderInput リマインダー登録の入力
type CreateReminderInput struct {
	Title     string
	StartTime time.Time
	UserEmail string
	UserName  string
}

// CheckRemindersUseCase 開始間近の予定・リマインダーを通知するユースケース
type CheckRemindersUseCase struct {
	reminders ReminderStore
	items     ItemStore
	notifiers []ReminderNotifier
	clock     func() time.Time
	logger    *zap.Logger
}

// NewCheckRemindersUseCase ユースケースを生成
// notifiers が空の場合はログ出力だけを行う
func NewCheckRemindersUseCase(reminders ReminderStore, items ItemStore, logger *zap.Logger, notifiers ...ReminderNotifier) *CheckRemindersUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CheckRemindersUseCase{
		reminders: reminders,
		items:     items,
		notifiers: notifiers,
		clock:     time.Now,
		logger:    logger,
	}
}

// Execute 通知対象を探して通知し、成功したものだけを通知済みにする
// 1件の失敗で残りの通知は止めない
func (uc *CheckRemindersUseCase) Execute(ctx context.Context) (sent int, err error) {
	now := uc.clock()

	due, err := uc.reminders.ListDueReminders(ctx, now, now.Add(ReminderWindow))
	if err != nil {
		uc.logger.Error("リマインダーの取得に失敗しました", zap.Error(err))
		return 0, err
	}

	var errs []error
	for _, item := range due {
		if !item.IsRemindable() {
			continue
		}
		if err := uc.alert(ctx, *item); err != nil {
			uc.logger.Warn("リマインダーの通知に失敗しました", zap.Int64("id", item.ID), zap.Error(err))
			errs = append(errs, err)
			continue
		}
		if err := uc.reminders.MarkReminderSent(ctx, item.ID); err != nil {
			uc.logger.Error("通知済みへの更新に失敗しました", zap.Int64("id", item.ID), zap.Error(err))
			errs = append(errs, err)
			continue
		}
		sent++
	}

	return sent, errors.Join(errs...)
}

func (uc *CheckRemindersUseCase) alert(ctx context.Context, item domain.Item) error {
	fields := []zap.Field{zap.Int64("id", item.ID), zap.String("title", item.Title)}
	if item.StartTime != nil {
		fields = append(fields, zap.Time("startTime", *item.StartTime))
	}
	uc.logger.Info("🔔 ALERT", fields...)

	for _, n := range uc.notifiers {
		if err := n.SendReminder(ctx, item); err != nil {
			return err
		}
	}
	return nil
}

// CreateReminder リマインダーを登録
func (uc *CheckRemindersUseCase) CreateReminder(ctx context.Context, in CreateReminderInput) (*domain.Item, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, ErrReminderTitleRequired
	}
	if uc.items == nil {
		return nil, fmt.Errorf("アイテムの保存先が設定されていません")
	}

	user, err := ResolveUser(ctx, uc.items, in.UserEmail, in.UserName)
	if err != nil {
		return nil, err
	}

	start := in.StartTime
	item := &domain.Item{
		UserID:        user.ID,
		Type:          domain.ItemTypeReminder,
		Title:         title,
		StartTime:     &start,
		OriginalInput: in.Title,
	}
	if err := uc.items.CreateItem(ctx, item); err != nil {
		return nil, fmt.Errorf("リマインダーの保存に失敗しました: %w", err)
	}
	return item, nil
}
