package calendarview

// LabelColumn 時刻ラベル列のマウントポイント
type LabelColumn interface {
	ClearLabels()
	SetLabelsVisible(visible bool)
	AppendLabel(label string)
}

// EventRegion イベント表示領域のマウントポイント
type EventRegion interface {
	// ClearRegion 子要素・グリッド指定・時刻ライン・お知らせをすべて消す
	ClearRegion()
	SetGrid(columns, gap int)
	AddBlock(block DayBlock)
	AddWeekDay(day WeekDay)
	AddBlank()
	AddMonthDay(day MonthDay)
	SetNotice(text string)
	PlaceMarker(offsetMinutes int)
	RemoveMarker()
	ScrollTo(top int)
}

// Surface インラインとモーダルの間で付け替えるカレンダー面
type Surface interface {
	MoveTo(loc Location)
	Resize(size Size)
}

// Selector ビューセレクタのハイライト
type Selector interface {
	Highlight(kind ViewKind)
}

// Mounts コントローラが描画する外部のマウントポイント一式
// nil のものは描画をスキップする
type Mounts struct {
	Labels   LabelColumn
	Region   EventRegion
	Surface  Surface
	Selector Selector
}
