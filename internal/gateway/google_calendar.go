package gateway

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/k-negishi/calendar-task-dashboard/internal/domain"
)

// maxEventResults 1回の取得で受け取るイベントの上限
const maxEventResults = 250

// EventsProvider Google Calendar のイベント一覧取得（テストで差し替える）
// timeMin / timeMax は RFC3339。空文字は指定なし
type EventsProvider interface {
	ListEvents(calendarID, timeMin, timeMax string) ([]*calendar.Event, error)
}

// serviceEventsProvider calendar.Service を使った EventsProvider
type serviceEventsProvider struct {
	service *calendar.Service
}

func (p *serviceEventsProvider) ListEvents(calendarID, timeMin, timeMax string) ([]*calendar.Event, error) {
	call := p.service.Events.List(calendarID).
		SingleEvents(true).
		OrderBy("startTime").
		MaxResults(maxEventResults)
	if timeMin != "" {
		call = call.TimeMin(timeMin)
	}
	if timeMax != "" {
		call = call.TimeMax(timeMax)
	}

	events, err := call.Do()
	if err != nil {
		return nil, err
	}
	return events.Items, nil
}

// GoogleCalendarRepository Google Calendar APIを使用したイベント取得元
type GoogleCalendarRepository struct {
	provider   EventsProvider
	calendarID string
	timezone   *time.Location
	clock      func() time.Time
	logger     *zap.Logger
}

// NewGoogleCalendarRepository サービスアカウント認証でリポジトリを作成
func NewGoogleCalendarRepository(ctx context.Context, credentialsJSON []byte, calendarID string, loc *time.Location) (*GoogleCalendarRepository, error) {
	creds, err := google.CredentialsFromJSON(ctx, credentialsJSON, calendar.CalendarReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("google認証情報の読み込みに失敗しました: %v", err)
	}

	service, err := calendar.NewService(ctx, option.WithCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("google Calendar APIサービスの作成に失敗しました: %v", err)
	}

	return NewGoogleCalendarRepositoryWithService(service, calendarID, loc), nil
}

// NewGoogleCalendarRepositoryWithService 作成済みの calendar.Service からリポジトリを作成
func NewGoogleCalendarRepositoryWithService(service *calendar.Service, calendarID string, loc *time.Location) *GoogleCalendarRepository {
	return NewGoogleCalendarRepositoryWithProvider(&serviceEventsProvider{service: service}, calendarID, loc)
}

// NewGoogleCalendarRepositoryWithProvider 任意の EventsProvider からリポジトリを作成
func NewGoogleCalendarRepositoryWithProvider(provider EventsProvider, calendarID string, loc *time.Location) *GoogleCalendarRepository {
	if loc == nil {
		loc = time.Local
	}
	return &GoogleCalendarRepository{
		provider:   provider,
		calendarID: calendarID,
		timezone:   loc,
		clock:      time.Now,
		logger:     zap.NewNop(),
	}
}

// SetLogger ロガーを設定
func (r *GoogleCalendarRepository) SetLogger(l *zap.Logger) {
	if l != nil {
		r.logger = l
	}
}

// FetchEvents 現在時刻以降の予定を開始時刻順に取得
func (r *GoogleCalendarRepository) FetchEvents(ctx context.Context) ([]domain.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.list(r.clock().Format(time.RFC3339), "")
}

// GetEvents 指定された日の予定を取得
func (r *GoogleCalendarRepository) GetEvents(ctx context.Context, targetDate time.Time) ([]domain.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// 開始時刻: 指定日の00:00:00 - inclusive
	d := targetDate.In(r.timezone)
	start := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, r.timezone)
	// 終了時刻: 翌日の00:00:00 - exclusive
	end := start.AddDate(0, 0, 1)

	return r.list(start.Format(time.RFC3339), end.Format(time.RFC3339))
}

func (r *GoogleCalendarRepository) list(timeMin, timeMax string) ([]domain.Event, error) {
	if r.provider == nil {
		return nil, fmt.Errorf("カレンダーイベントの取得に失敗しました: 取得元が設定されていません")
	}

	items, err := r.provider.ListEvents(r.calendarID, timeMin, timeMax)
	if err != nil {
		return nil, fmt.Errorf("カレンダーイベントの取得に失敗しました: %v", err)
	}

	// 不完全なイベントは読み飛ばす
	events := make([]domain.Event, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		event, err := r.convertToEvent(item)
		if err != nil {
			r.logger.Debug("イベントの変換をスキップしました", zap.String("eventID", item.Id), zap.Error(err))
			continue
		}
		events = append(events, event)
	}

	return events, nil
}

// convertToEvent Google Calendar APIのイベントをドメインエンティティに変換
// 開始がないイベントはエラー、終了がないイベントは End を nil のまま残す
func (r *GoogleCalendarRepository) convertToEvent(event *calendar.Event) (domain.Event, error) {
	domainEvent := domain.Event{
		ID:          event.Id,
		Title:       event.Summary,
		Location:    event.Location,
		Description: event.Description,
	}

	start, err := r.parseEventDateTime(event.Start)
	if err != nil {
		return domain.Event{}, fmt.Errorf("開始時刻の解析に失敗しました: %v", err)
	}
	if start == nil {
		return domain.Event{}, fmt.Errorf("開始時刻が設定されていません")
	}
	domainEvent.Start = start

	end, err := r.parseEventDateTime(event.End)
	if err != nil {
		return domain.Event{}, fmt.Errorf("終了時刻の解析に失敗しました: %v", err)
	}
	domainEvent.End = end

	return domainEvent, nil
}

// dateTimeLayouts dateTime として受け付ける書式（オフセットなしは表示タイムゾーンとみなす）
var dateTimeLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// parseEventDateTime dateTime / date のどちらかを Instant に変換
// どちらも空なら nil を返す
func (r *GoogleCalendarRepository) parseEventDateTime(dt *calendar.EventDateTime) (*domain.Instant, error) {
	if dt == nil {
		return nil, nil
	}

	if dt.DateTime != "" {
		if t, err := time.Parse(time.RFC3339, dt.DateTime); err == nil {
			return &domain.Instant{Time: t.In(r.timezone)}, nil
		}
		for _, layout := range dateTimeLayouts {
			if t, err := time.ParseInLocation(layout, dt.DateTime, r.timezone); err == nil {
				return &domain.Instant{Time: t}, nil
			}
		}
		return nil, fmt.Errorf("不正な日時です: %s", dt.DateTime)
	}

	if dt.Date != "" {
		t, err := time.ParseInLocation("2006-01-02", dt.Date, r.timezone)
		if err != nil {
			return nil, fmt.Errorf("不正な日付です: %s", dt.Date)
		}
		return &domain.Instant{Time: t, AllDay: true}, nil
	}

	return nil, nil
}
