package calendarview

import "time"

const (
	// DefaultTickInterval 現在時刻ラインの更新間隔
	DefaultTickInterval = time.Minute
	// ScrollLead 現在時刻ラインを表示領域の上端からどれだけ下に置くか（px）
	ScrollLead = 200
)

// TimeCursor 現在時刻ラインの状態
type TimeCursor struct {
	MarkerPresent bool
	OffsetMinutes int
}

// OffsetMinutes 0時からの経過分数
func OffsetMinutes(now time.Time) int {
	return clockMinutes(now)
}

// ScrollTopFor 現在時刻ラインを見せるためのスクロール位置（負にはしない）
func ScrollTopFor(offsetMinutes int) int {
	if offsetMinutes < ScrollLead {
		return 0
	}
	return offsetMinutes - ScrollLead
}
