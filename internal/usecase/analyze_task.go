package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/k-negishi/calendar-task-dashboard/internal/domain"
)

// ErrTaskDescriptionRequired タスク内容が空
var ErrTaskDescriptionRequired = errors.New("Task description is required")

// ForwardedDescription Webhook に転送した TODO の説明文
const ForwardedDescription = "Forwarded to Webhook"

// AnalyzeTaskInput タスク解析の入力
type AnalyzeTaskInput struct {
	TaskDescription string
	UserEmail       string
	UserName        string
}

// AnalyzeTaskResult 保存した TODO
type AnalyzeTaskResult struct {
	Type  domain.ItemType
	Title string
	DBID  int64
}

// AnalyzeTaskUseCase 入力されたタスクを Webhook に転送し、TODO として保存するユースケース
type AnalyzeTaskUseCase struct {
	forwarder Forwarder
	store     ItemStore
	logger    *zap.Logger
}

// NewAnalyzeTaskUseCase ユースケースを生成（forwarder は nil 可）
func NewAnalyzeTaskUseCase(forwarder Forwarder, store ItemStore, logger *zap.Logger) *AnalyzeTaskUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalyzeTaskUseCase{
		forwarder: forwarder,
		store:     store,
		logger:    logger,
	}
}

// Execute Webhook への転送は失敗してもログに残すだけで、保存は続ける
func (uc *AnalyzeTaskUseCase) Execute(ctx context.Context, in AnalyzeTaskInput) (*AnalyzeTaskResult, error) {
	text := strings.TrimSpace(in.TaskDescription)
	if text == "" {
		return nil, ErrTaskDescriptionRequired
	}

	if uc.forwarder != nil {
		uc.logger.Info("Webhookへタスクを転送します", zap.String("task", text))
		resp, err := uc.forwarder.Forward(ctx, text)
		if err != nil {
			uc.logger.Warn("Webhookへの転送に失敗しました", zap.Error(err))
		} else {
			uc.logger.Debug("Webhookの応答", zap.String("response", resp))
		}
	}

	user, err := ResolveUser(ctx, uc.store, in.UserEmail, in.UserName)
	if err != nil {
		return nil, err
	}

	item := &domain.Item{
		UserID:        user.ID,
		Type:          domain.ItemTypeTodo,
		Title:         text,
		Description:   ForwardedDescription,
		Priority:      domain.PriorityMedium,
		OriginalInput: in.TaskDescription,
	}
	if err := uc.store.CreateItem(ctx, item); err != nil {
		return nil, fmt.Errorf("TODOの保存に失敗しました: %w", err)
	}
	uc.logger.Info("TODOを保存しました", zap.Int64("id", item.ID), zap.Int64("userID", user.ID))

	return &AnalyzeTaskResult{Type: item.Type, Title: item.Title, DBID: item.ID}, nil
}
