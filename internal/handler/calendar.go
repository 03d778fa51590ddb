package handler

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/k-negishi/calendar-task-dashboard/internal/calendarview/page"
	"github.com/k-negishi/calendar-task-dashboard/internal/domain"
)

const dateLayout = "2006-01-02"

// eventTime Google Calendar と同じ形の開始・終了
type eventTime struct {
	DateTime string `json:"dateTime,omitempty"`
	Date     string `json:"date,omitempty"`
}

// eventResponse GET /calendar/events の1件
type eventResponse struct {
	ID          string     `json:"id,omitempty"`
	Summary     string     `json:"summary"`
	Location    string     `json:"location,omitempty"`
	Description string     `json:"description,omitempty"`
	Start       *eventTime `json:"start,omitempty"`
	End         *eventTime `json:"end,omitempty"`
}

type selectViewRequest struct {
	View string `json:"view"`
}

// pageRenderer カレンダーの HTML テンプレートを echo から使う
type pageRenderer struct{}

func (r *pageRenderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	snap, ok := data.(page.Snapshot)
	if !ok {
		return fmt.Errorf("描画できないデータです: %s (%T)", name, data)
	}
	return page.Render(w, snap)
}

// CalendarEvents 予定一覧を Google Calendar と同じ形で返す
// date (YYYY-MM-DD) 指定時はその日、なければ現在以降。取得失敗時は空配列
func (h *Handler) CalendarEvents(c echo.Context) error {
	if h.events == nil {
		return c.JSON(http.StatusOK, []eventResponse{})
	}
	ctx := c.Request().Context()

	var (
		events []domain.Event
		err    error
	)
	if q := c.QueryParam("date"); q != "" {
		day, perr := time.ParseInLocation(dateLayout, q, h.location)
		if perr != nil {
			return writeError(c, http.StatusBadRequest, "date must be YYYY-MM-DD")
		}
		events, err = h.events.GetEvents(ctx, day)
	} else {
		events, err = h.events.FetchEvents(ctx)
	}
	if err != nil {
		h.logger.Warn("予定の取得に失敗しました", zap.Error(err))
		return c.JSON(http.StatusOK, []eventResponse{})
	}

	resp := make([]eventResponse, 0, len(events))
	for _, ev := range events {
		resp = append(resp, eventResponse{
			ID:          ev.ID,
			Summary:     ev.Title,
			Location:    ev.Location,
			Description: ev.Description,
			Start:       h.toEventTime(ev.Start),
			End:         h.toEventTime(ev.End),
		})
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) toEventTime(in *domain.Instant) *eventTime {
	if in == nil {
		return nil
	}
	if in.AllDay {
		return &eventTime{Date: in.Time.Format(dateLayout)}
	}
	return &eventTime{DateTime: in.In(h.location).Format(time.RFC3339)}
}

// CalendarPage カレンダー部分を HTML で返す
func (h *Handler) CalendarPage(c echo.Context) error {
	if h.dashboard == nil || h.page == nil {
		return unavailable(c)
	}
	return c.Render(http.StatusOK, "calendar", h.snapshot())
}

// CalendarSnapshot カレンダーの状態を JSON で返す
func (h *Handler) CalendarSnapshot(c echo.Context) error {
	if h.dashboard == nil || h.page == nil {
		return unavailable(c)
	}
	return c.JSON(http.StatusOK, h.snapshot())
}

// SelectView ビューセレクタの選択。未知のビューは状態を変えずに 200 を返す
func (h *Handler) SelectView(c echo.Context) error {
	if h.dashboard == nil || h.page == nil {
		return unavailable(c)
	}
	var req selectViewRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, http.StatusBadRequest, "invalid request body")
	}

	if !h.dashboard.Select(req.View) {
		h.logger.Debug("未知のビュー指定です", zap.String("view", req.View))
	}
	return c.JSON(http.StatusOK, h.snapshot())
}

// DismissModal モーダルの外側クリック
func (h *Handler) DismissModal(c echo.Context) error {
	if h.dashboard == nil || h.page == nil {
		return unavailable(c)
	}
	h.dashboard.DismissModal()
	return c.JSON(http.StatusOK, h.snapshot())
}

// snapshot 描画と競合しないようにページ状態を読み出す
func (h *Handler) snapshot() page.Snapshot {
	var snap page.Snapshot
	h.dashboard.Read(func() { snap = h.page.Snapshot() })
	return snap
}
