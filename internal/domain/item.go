package domain

import "time"

// ItemType 保存されるアイテムの種別
type ItemType string

const (
	ItemTypeCalendarEvent ItemType = "CALENDAR_EVENT"
	ItemTypeReminder      ItemType = "REMINDER"
	ItemTypeTodo          ItemType = "TODO"
	ItemTypeUnknown       ItemType = "UNKNOWN"
)

// Priority アイテムの優先度
type Priority string

const (
	PriorityHigh   Priority = "HIGH"
	PriorityMedium Priority = "MEDIUM"
	PriorityLow    Priority = "LOW"
)

// User ダッシュボードの利用者
type User struct {
	ID        int64
	Email     string
	Name      string
	CreatedAt time.Time
}

// Item ユーザーが登録したTODO・リマインダー・予定
type Item struct {
	ID            int64
	UserID        int64
	Type          ItemType
	Title         string
	Description   string
	Priority      Priority
	StartTime     *time.Time
	EndTime       *time.Time
	Location      string
	ReminderSent  bool
	Completed     bool
	OriginalInput string
	CreatedAt     time.Time
}

// IsRemindable リマインダー通知の対象となる種別か判定
func (i *Item) IsRemindable() bool {
	return i.Type == ItemTypeCalendarEvent || i.Type == ItemTypeReminder
}
