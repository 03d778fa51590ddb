package usecase

import (
	"context"
	"fmt"

	"github.com/k-negishi/calendar-task-dashboard/internal/domain"
)

// TodoColorClasses TODO カードの色（並び順で循環させる）
var TodoColorClasses = []string{"purple", "blue", "green", "pink", "orange"}

// TodoView 一覧表示用の TODO
type TodoView struct {
	ID         int64
	Title      string
	Priority   domain.Priority
	Completed  bool
	ColorClass string
}

// TodoUseCase TODO 一覧と完了切り替え
type TodoUseCase struct {
	store ItemStore
}

// NewTodoUseCase ユースケースを生成
func NewTodoUseCase(store ItemStore) *TodoUseCase {
	return &TodoUseCase{store: store}
}

// List 利用者の TODO を古い順に返す
func (uc *TodoUseCase) List(ctx context.Context, email string) ([]TodoView, error) {
	user, err := ResolveUser(ctx, uc.store, email, "")
	if err != nil {
		return nil, err
	}

	items, err := uc.store.ListTodos(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("TODOの取得に失敗しました: %w", err)
	}

	views := make([]TodoView, 0, len(items))
	for i, item := range items {
		views = append(views, TodoView{
			ID:         item.ID,
			Title:      item.Title,
			Priority:   item.Priority,
			Completed:  item.Completed,
			ColorClass: TodoColorClasses[i%len(TodoColorClasses)],
		})
	}
	return views, nil
}

// SetCompleted 完了状態を更新
func (uc *TodoUseCase) SetCompleted(ctx context.Context, id int64, completed bool) error {
	if err := uc.store.SetItemCompleted(ctx, id, completed); err != nil {
		return fmt.Errorf("TODOの更新に失敗しました: %w", err)
	}
	return nil
}
