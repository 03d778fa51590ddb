package calendarview

import (
	"time"
	"unicode/utf8"

	"github.com/k-negishi/calendar-task-dashboard/internal/domain"
)

// Palette イベントの色候補
type Palette []string

// DefaultPalette 既定の色（紫・青・緑・ピンク・橙）
var DefaultPalette = Palette{"#A78BFA", "#60A5FA", "#34D399", "#F472B6", "#FBBF24"}

// Color タイトルから色を決める
// 文字数で決まるため、同じ長さのタイトルは同じ色になる
func (p Palette) Color(title string) string {
	if len(p) == 0 {
		p = DefaultPalette
	}
	return p[utf8.RuneCountInString(title)%len(p)]
}

// ColorKey 既定パレットでの色
func ColorKey(title string) string {
	return DefaultPalette.Color(title)
}

// DayBlock 日ビュー上のイベント配置
type DayBlock struct {
	Title      string
	TopOffset  int // 0時からの分数（px）
	Height     int // 分数（px）、負にはならない
	ColorKey   string
	StartLabel string
	EndLabel   string
}

// LayoutDay ref と同じ日に始まる時刻指定イベントを縦方向の位置に変換
// 終日イベントと開始・終了が欠けたイベントは含めない
// 翌日にまたがる場合は日の終わりで切り、終了が開始より前の場合は高さ0とする
func LayoutDay(events []domain.Event, ref time.Time, palette Palette) []DayBlock {
	loc := ref.Location()
	blocks := make([]DayBlock, 0, len(events))

	for _, ev := range events {
		if !ev.IsTimed() || !ev.Start.SameDay(ref) {
			continue
		}

		start := ev.Start.In(loc)
		end := ev.End.In(loc)

		top := clockMinutes(start)
		height := 0
		if end.After(start) {
			bottom := clockMinutes(end)
			if !ev.End.SameDay(ref) {
				bottom = MinutesPerDay
			}
			height = max(bottom-top, 0)
		}

		title := ev.DisplayTitle()
		blocks = append(blocks, DayBlock{
			Title:      title,
			TopOffset:  top,
			Height:     height,
			ColorKey:   palette.Color(title),
			StartLabel: formatClock(top),
			EndLabel:   formatClock(top + height),
		})
	}

	return blocks
}

// WeekDay 週ビューの1日分の列
type WeekDay struct {
	Date   time.Time
	Header string
	Titles []string
}

// WeekStartOf ref を含む週の初日（00:00）を返す
func WeekStartOf(ref time.Time, weekStart time.Weekday) time.Time {
	day := startOfDay(ref)
	offset := (int(day.Weekday()) - int(weekStart) + DaysPerWeek) % DaysPerWeek
	return day.AddDate(0, 0, -offset)
}

// LayoutWeek ref を含む週の7日分にイベントを振り分ける
// 開始日の日付一致で判定し、各列の並びは入力順のまま
func LayoutWeek(events []domain.Event, ref time.Time, weekStart time.Weekday) []WeekDay {
	first := WeekStartOf(ref, weekStart)

	days := make([]WeekDay, DaysPerWeek)
	for i := range days {
		date := first.AddDate(0, 0, i)
		days[i] = WeekDay{
			Date:   date,
			Header: date.Format("Mon, Jan 2"),
			Titles: []string{},
		}
	}

	for _, ev := range events {
		if ev.Start == nil {
			continue
		}
		for i := range days {
			if ev.Start.SameDay(days[i].Date) {
				days[i].Titles = append(days[i].Titles, ev.DisplayTitle())
				break
			}
		}
	}

	return days
}

// MonthDay 月ビューの1日分のセル
type MonthDay struct {
	Day   int
	Count int
}

// ShowCount 件数バッジを表示するか
func (d MonthDay) ShowCount() bool {
	return d.Count > 0
}

// MonthGrid 月ビュー全体
type MonthGrid struct {
	Year          int
	Month         time.Month
	LeadingBlanks int
	Days          []MonthDay
}

// LayoutMonth ref の月の日ごとのイベント件数を数える
// 先頭の空白セル数は1日の曜日（週の初日からの位置）
func LayoutMonth(events []domain.Event, ref time.Time, weekStart time.Weekday) MonthGrid {
	loc := ref.Location()
	year, month, _ := ref.Date()
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	daysInMonth := time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()

	counts := make([]int, daysInMonth+1)
	for _, ev := range events {
		if ev.Start == nil {
			continue
		}
		y, m, d := ev.Start.In(loc).Date()
		if y == year && m == month {
			counts[d]++
		}
	}

	grid := MonthGrid{
		Year:          year,
		Month:         month,
		LeadingBlanks: (int(first.Weekday()) - int(weekStart) + DaysPerWeek) % DaysPerWeek,
		Days:          make([]MonthDay, 0, daysInMonth),
	}
	for day := 1; day <= daysInMonth; day++ {
		grid.Days = append(grid.Days, MonthDay{Day: day, Count: counts[day]})
	}
	return grid
}

func clockMinutes(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
