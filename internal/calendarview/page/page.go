// Package page はカレンダーのマウントポイントをメモリ上に実装し、HTML/JSON として書き出す
package page

import (
	"github.com/k-negishi/calendar-task-dashboard/internal/calendarview"
)

// Page ダッシュボード1画面分のマウントポイント
// 排他はコントローラ側（Controller.Read）で行う
type Page struct {
	Labels   *LabelColumn
	Region   *EventRegion
	Surface  *Surface
	Selector *ViewSelector
}

// New 初期状態（インライン・日ビュー選択中）のページを生成
func New() *Page {
	return &Page{
		Labels:   &LabelColumn{visible: true},
		Region:   &EventRegion{},
		Surface:  &Surface{location: calendarview.LocationInline, size: calendarview.InlineSize},
		Selector: &ViewSelector{active: calendarview.ViewHour},
	}
}

// Mounts コントローラに渡すマウントポイント一式
func (p *Page) Mounts() calendarview.Mounts {
	return calendarview.Mounts{
		Labels:   p.Labels,
		Region:   p.Region,
		Surface:  p.Surface,
		Selector: p.Selector,
	}
}

// LabelColumn 時刻ラベル列
type LabelColumn struct {
	visible bool
	labels  []string
}

func (l *LabelColumn) ClearLabels()                 { l.labels = nil }
func (l *LabelColumn) SetLabelsVisible(visible bool) { l.visible = visible }
func (l *LabelColumn) AppendLabel(label string)     { l.labels = append(l.labels, label) }

// Visible 表示中か
func (l *LabelColumn) Visible() bool { return l.visible }

// Labels 現在のラベル
func (l *LabelColumn) Labels() []string { return append([]string(nil), l.labels...) }

type childKind int

const (
	childBlock childKind = iota
	childWeekDay
	childBlank
	childMonthDay
)

type child struct {
	kind     childKind
	block    calendarview.DayBlock
	weekDay  calendarview.WeekDay
	monthDay calendarview.MonthDay
}

// Grid 領域のグリッド指定
type Grid struct {
	Columns int `json:"columns"`
	Gap     int `json:"gap"`
}

// EventRegion イベント表示領域
type EventRegion struct {
	children  []child
	grid      *Grid
	notice    string
	marker    *int
	scrollTop int
}

func (r *EventRegion) ClearRegion() {
	r.children = nil
	r.grid = nil
	r.notice = ""
	r.marker = nil
}

func (r *EventRegion) SetGrid(columns, gap int) {
	r.grid = &Grid{Columns: columns, Gap: gap}
}

func (r *EventRegion) AddBlock(block calendarview.DayBlock) {
	r.children = append(r.children, child{kind: childBlock, block: block})
}

func (r *EventRegion) AddWeekDay(day calendarview.WeekDay) {
	r.children = append(r.children, child{kind: childWeekDay, weekDay: day})
}

func (r *EventRegion) AddBlank() {
	r.children = append(r.children, child{kind: childBlank})
}

func (r *EventRegion) AddMonthDay(day calendarview.MonthDay) {
	r.children = append(r.children, child{kind: childMonthDay, monthDay: day})
}

func (r *EventRegion) SetNotice(text string) { r.notice = text }

func (r *EventRegion) PlaceMarker(offsetMinutes int) {
	offset := offsetMinutes
	r.marker = &offset
}

func (r *EventRegion) RemoveMarker() { r.marker = nil }

func (r *EventRegion) ScrollTo(top int) { r.scrollTop = top }

// ChildCount 子要素の数（時刻ラインを除く）
func (r *EventRegion) ChildCount() int { return len(r.children) }

// Surface インライン枠とモーダルの間を移動するカレンダー面
type Surface struct {
	location calendarview.Location
	size     calendarview.Size
}

func (s *Surface) MoveTo(loc calendarview.Location) { s.location = loc }
func (s *Surface) Resize(size calendarview.Size)     { s.size = size }

// Location 現在の親
func (s *Surface) Location() calendarview.Location { return s.location }

// Size 現在の寸法
func (s *Surface) Size() calendarview.Size { return s.size }

// ViewSelector ビューセレクタ
type ViewSelector struct {
	active calendarview.ViewKind
}

func (v *ViewSelector) Highlight(kind calendarview.ViewKind) { v.active = kind }

// Active ハイライト中のビュー
func (v *ViewSelector) Active() calendarview.ViewKind { return v.active }
