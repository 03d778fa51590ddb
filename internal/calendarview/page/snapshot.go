package page

import (
	"html/template"
	"io"
	"strconv"

	"github.com/k-negishi/calendar-task-dashboard/internal/calendarview"
)

// Snapshot ページの現在の状態（JSON / テンプレート用）
type Snapshot struct {
	Selected      string         `json:"selected"`
	Container     string         `json:"container"`
	ModalOpen     bool           `json:"modalOpen"`
	Width         string         `json:"width"`
	Height        string         `json:"height"`
	LabelsVisible bool           `json:"hourLabelsVisible"`
	HourLabels    []string       `json:"hourLabels"`
	Grid          *Grid          `json:"grid,omitempty"`
	Notice        string         `json:"notice,omitempty"`
	Blocks        []BlockView    `json:"blocks,omitempty"`
	WeekDays      []WeekDayView  `json:"weekDays,omitempty"`
	LeadingBlanks int            `json:"leadingBlanks,omitempty"`
	MonthDays     []MonthDayView `json:"monthDays,omitempty"`
	Marker        *MarkerView    `json:"marker,omitempty"`
	ScrollTop     int            `json:"scrollTop"`
}

// BlockView 日ビューのイベント
type BlockView struct {
	Title  string `json:"title"`
	Top    int    `json:"top"`
	Height int    `json:"height"`
	Color  string `json:"color"`
	Start  string `json:"start"`
	End    string `json:"end"`
}

// WeekDayView 週ビューの列
type WeekDayView struct {
	Date   string   `json:"date"`
	Header string   `json:"header"`
	Events []string `json:"events"`
}

// MonthDayView 月ビューのセル
type MonthDayView struct {
	Day   int `json:"day"`
	Count int `json:"count,omitempty"`
}

// MarkerView 現在時刻ライン
type MarkerView struct {
	Top int `json:"top"`
}

// Snapshot 現在の状態を取り出す
func (p *Page) Snapshot() Snapshot {
	snap := Snapshot{
		Selected:      string(p.Selector.active),
		Container:     p.Surface.location.String(),
		ModalOpen:     p.Surface.location == calendarview.LocationModal,
		Width:         p.Surface.size.Width.String(),
		Height:        p.Surface.size.Height.String(),
		LabelsVisible: p.Labels.visible,
		HourLabels:    p.Labels.Labels(),
		Notice:        p.Region.notice,
		ScrollTop:     p.Region.scrollTop,
	}
	if p.Region.grid != nil {
		g := *p.Region.grid
		snap.Grid = &g
	}
	if p.Region.marker != nil {
		snap.Marker = &MarkerView{Top: *p.Region.marker}
	}

	for _, c := range p.Region.children {
		switch c.kind {
		case childBlock:
			snap.Blocks = append(snap.Blocks, BlockView{
				Title:  c.block.Title,
				Top:    c.block.TopOffset,
				Height: c.block.Height,
				Color:  c.block.ColorKey,
				Start:  c.block.StartLabel,
				End:    c.block.EndLabel,
			})
		case childWeekDay:
			snap.WeekDays = append(snap.WeekDays, WeekDayView{
				Date:   c.weekDay.Date.Format("2006-01-02"),
				Header: c.weekDay.Header,
				Events: append([]string{}, c.weekDay.Titles...),
			})
		case childBlank:
			snap.LeadingBlanks++
		case childMonthDay:
			view := MonthDayView{Day: c.monthDay.Day}
			if c.monthDay.ShowCount() {
				view.Count = c.monthDay.Count
			}
			snap.MonthDays = append(snap.MonthDays, view)
		}
	}

	return snap
}

// calendarTemplate カレンダー部分の HTML テンプレート
var calendarTemplate = template.Must(template.New("calendar").Funcs(template.FuncMap{
	"px":     func(n int) string { return strconv.Itoa(n) + "px" },
	"blanks": func(n int) []struct{} { return make([]struct{}, n) },
	"list":   func(v ...string) []string { return v },
}).Parse(calendarHTML))

// Render スナップショットを HTML として書き出す
func Render(w io.Writer, snap Snapshot) error {
	return calendarTemplate.ExecuteTemplate(w, "calendar", snap)
}

const calendarHTML = `<div id="calendarModal" class="calendar-modal{{if .ModalOpen}} active{{end}}">
<div id="calendarModalContent">{{if .ModalOpen}}{{template "surface" .}}{{end}}</div>
</div>
<div id="inlineCalendarWrapper">{{if not .ModalOpen}}{{template "surface" .}}{{end}}</div>
<ul class="view-list">
{{- range $v := (list "hour" "week" "month")}}
<li data-view="{{$v}}"{{if eq $v $.Selected}} class="active"{{end}}>{{$v}}</li>
{{- end}}
</ul>
{{define "surface"}}<div id="calendarContainer" style="width: {{.Width}}; height: {{.Height}};" data-ready="true">
<div class="time-column" style="display: {{if .LabelsVisible}}block{{else}}none{{end}};">
{{- range .HourLabels}}<div class="hour">{{.}}</div>{{end -}}
</div>
<div class="events-scroll" data-scroll-top="{{.ScrollTop}}">
<div id="eventsColumn"{{with .Grid}} style="display: grid; grid-template-columns: repeat({{.Columns}}, 1fr); gap: {{px .Gap}};"{{end}}>
{{- with .Notice}}<div class="events-notice">{{.}}</div>{{end}}
{{- range .Blocks}}<div class="event" style="top: {{px .Top}}; height: {{px .Height}}; background: {{.Color}};"><strong>{{.Title}}</strong><span>{{.Start}} – {{.End}}</span></div>{{end}}
{{- range .WeekDays}}<div class="week-day"><div class="week-day-header">{{.Header}}</div><div class="week-events">{{range .Events}}<div class="week-event">{{.}}</div>{{end}}</div></div>{{end}}
{{- range blanks .LeadingBlanks}}<div></div>{{end}}
{{- range .MonthDays}}<div class="month-day"><div class="month-day-header"><div class="day-number">{{.Day}}</div>{{if .Count}}<div class="event-count">{{.Count}}</div>{{end}}</div></div>{{end}}
{{- with .Marker}}<div class="current-time-line" style="top: {{px .Top}};"><div class="current-time-dot"></div></div>{{end}}
</div>
</div>
</div>{{end}}`
