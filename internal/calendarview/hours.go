package calendarview

import "fmt"

// BuildHourLabels 日ビュー左端の24時間ラベルを生成
// 0時と12時はどちらも "12" と表記する
func BuildHourLabels() []string {
	labels := make([]string, 0, HoursPerDay)
	for h := 0; h < HoursPerDay; h++ {
		labels = append(labels, fmt.Sprintf("%d %s", twelveHour(h), meridiem(h)))
	}
	return labels
}

func twelveHour(h int) int {
	if h%12 == 0 {
		return 12
	}
	return h % 12
}

func meridiem(h int) string {
	if h < 12 {
		return "AM"
	}
	return "PM"
}

// formatClock 0時からの分数を "9:05" 形式に整形
func formatClock(minutes int) string {
	h := (minutes / 60) % HoursPerDay
	return fmt.Sprintf("%d:%02d", twelveHour(h), minutes%60)
}
