package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/k-negishi/calendar-task-dashboard/internal/domain"
)

const (
	// DemoUserEmail 利用者が特定できないときに使うデモ利用者
	DemoUserEmail = "demo@example.com"
	// DemoUserName デモ利用者の名前
	DemoUserName = "DemoUser"
)

// ResolveUser リクエストで指定された利用者を取得（いなければ作成）
// メールアドレスがなければデモ利用者を使う。名前の既定値はメールアドレスの @ より前
func ResolveUser(ctx context.Context, store UserStore, email, name string) (*domain.User, error) {
	email = strings.TrimSpace(email)
	name = strings.TrimSpace(name)

	if email == "" {
		email, name = DemoUserEmail, DemoUserName
	} else if name == "" {
		name, _, _ = strings.Cut(email, "@")
	}

	user, err := store.FindOrCreateUser(ctx, email, name)
	if err != nil {
		return nil, fmt.Errorf("利用者の解決に失敗しました: %w", err)
	}
	return user, nil
}
