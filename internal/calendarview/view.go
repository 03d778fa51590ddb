package calendarview

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/k-negishi/calendar-task-dashboard/internal/domain"
)

const (
	// HoursPerDay 時刻グリッドの行数
	HoursPerDay = 24
	// MinutesPerDay 1日の分数（1分 = 1px）
	MinutesPerDay = 1440
	// DaysPerWeek 週ビューの列数
	DaysPerWeek = 7
)

// ViewKind カレンダーの表示モード
type ViewKind string

const (
	ViewHour  ViewKind = "hour"
	ViewWeek  ViewKind = "week"
	ViewMonth ViewKind = "month"
)

// ParseViewKind ビューセレクタのトークンを ViewKind に変換
// 未知のトークンは ok=false を返す
func ParseViewKind(token string) (ViewKind, bool) {
	kind := ViewKind(strings.ToLower(strings.TrimSpace(token)))
	if !kind.Valid() {
		return "", false
	}
	return kind, true
}

// Valid 定義済みのビューか判定
func (k ViewKind) Valid() bool {
	switch k {
	case ViewHour, ViewWeek, ViewMonth:
		return true
	}
	return false
}

// Placement ビューに対応するカレンダー面の配置先
func (k ViewKind) Placement() Location {
	if k == ViewHour {
		return LocationInline
	}
	return LocationModal
}

// Location カレンダー面の親要素
type Location int

const (
	LocationInline Location = iota
	LocationModal
)

func (l Location) String() string {
	if l == LocationModal {
		return "modal"
	}
	return "inline"
}

// Unit 長さの単位
type Unit string

const (
	UnitPixel          Unit = "px"
	UnitViewportWidth  Unit = "vw"
	UnitViewportHeight Unit = "vh"
)

// Length 単位付きの長さ
type Length struct {
	Value int
	Unit  Unit
}

func (l Length) String() string {
	return strconv.Itoa(l.Value) + string(l.Unit)
}

// Size カレンダー面の寸法
type Size struct {
	Width  Length
	Height Length
}

var (
	// InlineSize 日ビュー（インライン）時の寸法
	InlineSize = Size{Width: Length{240, UnitPixel}, Height: Length{600, UnitPixel}}
	// ModalSize 週・月ビュー（モーダル）時の寸法
	ModalSize = Size{Width: Length{80, UnitViewportWidth}, Height: Length{80, UnitViewportHeight}}
)

// EventSource イベントを取得するポート
type EventSource interface {
	FetchEvents(ctx context.Context) ([]domain.Event, error)
}

// Ticker 定期実行のポート
// 返される cancel を呼ぶと以降 fn は呼ばれない
type Ticker interface {
	Every(interval time.Duration, fn func()) (cancel func(), err error)
}
