package calendarview

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/k-negishi/calendar-task-dashboard/internal/domain"
)

const (
	// EventsUnavailableNotice イベント取得に失敗したときの表示
	EventsUnavailableNotice = "Events unavailable"

	weekGridGap  = 14
	monthGridGap = 12
)

// Controller カレンダーのビュー状態機械
// 表示モード・イベント・現在時刻ラインを保持し、切り替えのたびにマウントポイントを描き直す
// HTTPハンドラとティッカーの両方から呼ばれるため、すべての操作を mu で直列化する
type Controller struct {
	mu sync.Mutex

	mounts      Mounts
	view        ViewKind
	events      []domain.Event
	unavailable bool
	cursor      TimeCursor
	renderedDay time.Time

	clock        func() time.Time
	location     *time.Location
	weekStart    time.Weekday
	palette      Palette
	ticker       Ticker
	tickInterval time.Duration
	stopTick     func()

	logger *zap.Logger
}

// Option Controller の設定
type Option func(*Controller)

// WithClock 現在時刻の取得元を差し替える
func WithClock(clock func() time.Time) Option {
	return func(c *Controller) { c.clock = clock }
}

// WithLocation 表示タイムゾーンを指定
func WithLocation(loc *time.Location) Option {
	return func(c *Controller) {
		if loc != nil {
			c.location = loc
		}
	}
}

// WithWeekStart 週の初日を指定
func WithWeekStart(day time.Weekday) Option {
	return func(c *Controller) { c.weekStart = day }
}

// WithPalette イベントの色候補を指定
func WithPalette(p Palette) Option {
	return func(c *Controller) {
		if len(p) > 0 {
			c.palette = p
		}
	}
}

// WithTicker 現在時刻ラインの定期更新に使うティッカーを指定
func WithTicker(t Ticker, interval time.Duration) Option {
	return func(c *Controller) {
		c.ticker = t
		if interval > 0 {
			c.tickInterval = interval
		}
	}
}

// WithLogger ロガーを指定
func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewController コントローラを生成
// 初期状態は日ビュー。描画は Load / SwitchView まで行わない
func NewController(mounts Mounts, opts ...Option) *Controller {
	c := &Controller{
		mounts:       mounts,
		view:         ViewHour,
		clock:        time.Now,
		location:     time.Local,
		weekStart:    time.Sunday,
		palette:      DefaultPalette,
		tickInterval: DefaultTickInterval,
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load イベントを一度だけ取得して日ビューを描画
// 取得に失敗した場合は「取得不可」状態で描画し、エラーを返す
func (c *Controller) Load(ctx context.Context, src EventSource) error {
	var (
		events []domain.Event
		err    error
	)
	if src == nil {
		err = fmt.Errorf("イベント取得元が設定されていません")
	} else {
		events, err = src.FetchEvents(ctx)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		c.logger.Warn("イベントの取得に失敗しました", zap.Error(err))
		c.events = nil
		c.unavailable = true
	} else {
		c.events = append([]domain.Event(nil), events...)
		c.unavailable = false
		c.logger.Info("イベントを取得しました", zap.Int("count", len(events)))
	}

	c.highlightLocked(ViewHour)
	c.switchViewLocked(ViewHour)
	return err
}

// SetEvents イベントをまるごと置き換えて現在のビューを描き直す
func (c *Controller) SetEvents(events []domain.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.events = append([]domain.Event(nil), events...)
	c.unavailable = false
	c.switchViewLocked(c.view)
}

// SwitchView 指定ビューへ切り替える。未知のビューは無視する
func (c *Controller) SwitchView(kind ViewKind) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.switchViewLocked(kind)
}

// Select ビューセレクタからの選択
// ハイライトを更新してから切り替える。未知のトークンは false を返して何もしない
func (c *Controller) Select(token string) bool {
	kind, ok := ParseViewKind(token)
	if !ok {
		c.logger.Debug("未知のビュー指定を無視しました", zap.String("token", token))
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.highlightLocked(kind)
	c.switchViewLocked(kind)
	return true
}

// DismissModal モーダルの外側クリック
// 週・月ビューからセレクタごと日ビューに戻す
func (c *Controller) DismissModal() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.view == ViewHour {
		return
	}
	c.highlightLocked(ViewHour)
	c.switchViewLocked(ViewHour)
}

// Tick 現在時刻ラインを置き直す。日ビュー以外では何もしない
// 描画した日から日付が変わっていれば、その日の予定で描き直す
func (c *Controller) Tick() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.view != ViewHour {
		return
	}
	if !startOfDay(c.now()).Equal(c.renderedDay) {
		c.switchViewLocked(ViewHour)
		return
	}
	c.placeMarkerLocked()
}

// View 現在のビュー
func (c *Controller) View() ViewKind {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

// Placement 現在のカレンダー面の配置先
func (c *Controller) Placement() Location {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view.Placement()
}

// Cursor 現在時刻ラインの状態
func (c *Controller) Cursor() TimeCursor {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cursor
}

// Unavailable イベント取得に失敗した状態か
func (c *Controller) Unavailable() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.unavailable
}

// Events 保持しているイベントのコピー
func (c *Controller) Events() []domain.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]domain.Event(nil), c.events...)
}

// Ticking 現在時刻ラインのティッカーが動いているか
func (c *Controller) Ticking() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stopTick != nil
}

// Read 描画と競合しないように fn を実行する（マウントポイントの読み出し用）
func (c *Controller) Read(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn()
}

// Close ティッカーを止める
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopTickerLocked()
}

func (c *Controller) switchViewLocked(kind ViewKind) {
	if !kind.Valid() {
		c.logger.Debug("未知のビューへの切り替えを無視しました", zap.String("view", string(kind)))
		return
	}

	c.clearLocked()
	c.view = kind

	switch kind {
	case ViewHour:
		c.renderHourLocked()
	case ViewWeek:
		c.renderWeekLocked()
	case ViewMonth:
		c.renderMonthLocked()
	}

	c.syncTickerLocked()
}

func (c *Controller) clearLocked() {
	if l := c.mounts.Labels; l != nil {
		l.ClearLabels()
	}
	if r := c.mounts.Region; r != nil {
		r.ClearRegion()
	}
	c.cursor = TimeCursor{}
}

func (c *Controller) placeSurfaceLocked(kind ViewKind) {
	s := c.mounts.Surface
	if s == nil {
		return
	}
	s.MoveTo(kind.Placement())
	if kind.Placement() == LocationInline {
		s.Resize(InlineSize)
	} else {
		s.Resize(ModalSize)
	}
}

func (c *Controller) renderHourLocked() {
	c.placeSurfaceLocked(ViewHour)
	c.renderedDay = startOfDay(c.now())

	if l := c.mounts.Labels; l != nil {
		l.SetLabelsVisible(true)
		for _, label := range BuildHourLabels() {
			l.AppendLabel(label)
		}
	}

	r := c.mounts.Region
	if r == nil {
		return
	}
	if c.unavailable {
		r.SetNotice(EventsUnavailableNotice)
	}
	for _, block := range LayoutDay(c.events, c.now(), c.palette) {
		r.AddBlock(block)
	}

	c.placeMarkerLocked()
	r.ScrollTo(ScrollTopFor(c.cursor.OffsetMinutes))
}

func (c *Controller) renderWeekLocked() {
	c.placeSurfaceLocked(ViewWeek)

	if l := c.mounts.Labels; l != nil {
		l.SetLabelsVisible(false)
	}

	r := c.mounts.Region
	if r == nil {
		return
	}
	r.SetGrid(DaysPerWeek, weekGridGap)
	if c.unavailable {
		r.SetNotice(EventsUnavailableNotice)
	}
	for _, day := range LayoutWeek(c.events, c.now(), c.weekStart) {
		r.AddWeekDay(day)
	}
}

func (c *Controller) renderMonthLocked() {
	c.placeSurfaceLocked(ViewMonth)

	if l := c.mounts.Labels; l != nil {
		l.SetLabelsVisible(false)
	}

	r := c.mounts.Region
	if r == nil {
		return
	}
	r.SetGrid(DaysPerWeek, monthGridGap)
	if c.unavailable {
		r.SetNotice(EventsUnavailableNotice)
	}

	grid := LayoutMonth(c.events, c.now(), c.weekStart)
	for i := 0; i < grid.LeadingBlanks; i++ {
		r.AddBlank()
	}
	for _, day := range grid.Days {
		r.AddMonthDay(day)
	}
}

func (c *Controller) placeMarkerLocked() {
	r := c.mounts.Region
	if r == nil {
		return
	}

	offset := OffsetMinutes(c.now())
	r.RemoveMarker()
	r.PlaceMarker(offset)
	c.cursor = TimeCursor{MarkerPresent: true, OffsetMinutes: offset}
}

func (c *Controller) highlightLocked(kind ViewKind) {
	if s := c.mounts.Selector; s != nil {
		s.Highlight(kind)
	}
}

// syncTickerLocked 日ビューのときだけティッカーを動かす
func (c *Controller) syncTickerLocked() {
	if c.view != ViewHour {
		c.stopTickerLocked()
		return
	}
	if c.stopTick != nil || c.ticker == nil {
		return
	}

	cancel, err := c.ticker.Every(c.tickInterval, c.Tick)
	if err != nil {
		c.logger.Error("現在時刻ラインのティッカー登録に失敗しました", zap.Error(err))
		return
	}
	c.stopTick = cancel
}

func (c *Controller) stopTickerLocked() {
	if c.stopTick == nil {
		return
	}
	c.stopTick()
	c.stopTick = nil
}

func (c *Controller) now() time.Time {
	return c.clock().In(c.location)
}
