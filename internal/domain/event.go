package domain

import "time"

// UntitledEventTitle タイトル未設定のイベントに使う表示名
const UntitledEventTitle = "Untitled"

// Instant イベントの開始・終了時点
// AllDay が true の場合は日付のみ（終日）で、Time はその日の 00:00 を表す
type Instant struct {
	Time   time.Time
	AllDay bool
}

// In 指定タイムゾーンに変換した時刻を返す
// 終日の場合は日付をそのまま保ち、指定タイムゾーンの 00:00 に置き直す
func (i Instant) In(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	if i.AllDay {
		y, m, d := i.Time.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, loc)
	}
	return i.Time.In(loc)
}

// SameDay 指定タイムゾーンでの暦日が day と一致するか判定
func (i Instant) SameDay(day time.Time) bool {
	t := i.In(day.Location())
	y1, m1, d1 := t.Date()
	y2, m2, d2 := day.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// Event カレンダーイベントのドメインエンティティ
// Start / End は欠落し得る（リモートの不完全なデータをそのまま保持する）
type Event struct {
	ID          string
	Title       string
	Location    string
	Description string
	Start       *Instant
	End         *Instant
}

// DisplayTitle 表示用のタイトルを返す
func (e Event) DisplayTitle() string {
	if e.Title == "" {
		return UntitledEventTitle
	}
	return e.Title
}

// IsTimed 開始・終了の両方が時刻精度で揃っているか判定
func (e Event) IsTimed() bool {
	return e.Start != nil && e.End != nil && !e.Start.AllDay && !e.End.AllDay
}

// IsAllDay 開始が日付のみのイベントか判定
func (e Event) IsAllDay() bool {
	return e.Start != nil && e.Start.AllDay
}
