package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/k-negishi/calendar-task-dashboard/internal/domain"
)

var testJST = time.FixedZone("JST", 9*60*60)

// MockEventsProvider は EventsProvider のテスト用モック
type MockEventsProvider struct {
	mock.Mock
}

func (m *MockEventsProvider) ListEvents(calendarID, timeMin, timeMax string) ([]*calendar.Event, error) {
	args := m.Called(calendarID, timeMin, timeMax)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*calendar.Event), args.Error(1)
}

// --- convertToEvent テスト（純粋ロジック） ---

func TestConvertToEvent_TimedEvent(t *testing.T) {
	repo := NewGoogleCalendarRepositoryWithProvider(nil, "test", testJST)

	event := &calendar.Event{
		Id:       "1",
		Summary:  "テストイベント",
		Location: "東京",
		Start:    &calendar.EventDateTime{DateTime: "2024-01-15T10:00:00+09:00"},
		End:      &calendar.EventDateTime{DateTime: "2024-01-15T11:00:00+09:00"},
	}

	result, err := repo.convertToEvent(event)
	require.NoError(t, err)
	assert.Equal(t, "1", result.ID)
	assert.Equal(t, "テストイベント", result.Title)
	assert.Equal(t, "東京", result.Location)
	assert.True(t, result.IsTimed())
	assert.Equal(t, 10, result.Start.Time.Hour())
	assert.Equal(t, 11, result.End.Time.Hour())
}

func TestConvertToEvent_AllDayEvent(t *testing.T) {
	repo := NewGoogleCalendarRepositoryWithProvider(nil, "test", testJST)

	event := &calendar.Event{
		Id:      "2",
		Summary: "終日イベント",
		Start:   &calendar.EventDateTime{Date: "2024-01-15"},
		End:     &calendar.EventDateTime{Date: "2024-01-16"},
	}

	result, err := repo.convertToEvent(event)
	require.NoError(t, err)
	assert.True(t, result.IsAllDay())
	assert.False(t, result.IsTimed())
	assert.Equal(t, "終日イベント", result.Title)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, testJST), result.Start.Time)
}

func TestConvertToEvent_EmptyTitle(t *testing.T) {
	repo := NewGoogleCalendarRepositoryWithProvider(nil, "test", testJST)

	event := &calendar.Event{
		Id:      "3",
		Summary: "",
		Start:   &calendar.EventDateTime{DateTime: "2024-01-15T10:00:00+09:00"},
		End:     &calendar.EventDateTime{DateTime: "2024-01-15T11:00:00+09:00"},
	}

	result, err := repo.convertToEvent(event)
	require.NoError(t, err)
	assert.Empty(t, result.Title)
	assert.Equal(t, domain.UntitledEventTitle, result.DisplayTitle())
}

func TestConvertToEvent_NoStartTime(t *testing.T) {
	repo := NewGoogleCalendarRepositoryWithProvider(nil, "test", testJST)

	tests := []struct {
		name  string
		start *calendar.EventDateTime
	}{
		{"異常系: 空の開始", &calendar.EventDateTime{}},
		{"異常系: 開始なし", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event := &calendar.Event{
				Id:    "4",
				Start: tt.start,
				End:   &calendar.EventDateTime{DateTime: "2024-01-15T11:00:00+09:00"},
			}

			_, err := repo.convertToEvent(event)
			assert.Error(t, err)
			assert.Contains(t, err.Error(), "開始時刻が設定されていません")
		})
	}
}

func TestConvertToEvent_NoEndTime(t *testing.T) {
	repo := NewGoogleCalendarRepositoryWithProvider(nil, "test", testJST)

	event := &calendar.Event{
		Id:    "5",
		Start: &calendar.EventDateTime{DateTime: "2024-01-15T10:00:00+09:00"},
	}

	result, err := repo.convertToEvent(event)
	require.NoError(t, err)
	assert.NotNil(t, result.Start)
	assert.Nil(t, result.End)
	assert.False(t, result.IsTimed())
}

func TestConvertToEvent_DateTimeFormats(t *testing.T) {
	repo := NewGoogleCalendarRepositoryWithProvider(nil, "test", testJST)

	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}{
		{"正常系: RFC3339（UTC）", "2024-01-15T01:00:00Z", time.Date(2024, 1, 15, 10, 0, 0, 0, testJST), false},
		{"正常系: オフセットなし", "2024-01-15T10:00:00", time.Date(2024, 1, 15, 10, 0, 0, 0, testJST), false},
		{"正常系: 秒なし", "2024-01-15T10:00", time.Date(2024, 1, 15, 10, 0, 0, 0, testJST), false},
		{"異常系: 不正な書式", "tomorrow morning", time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event := &calendar.Event{Start: &calendar.EventDateTime{DateTime: tt.input}}
			result, err := repo.convertToEvent(event)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), "開始時刻の解析に失敗しました")
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(result.Start.Time))
		})
	}
}

// --- GetEvents / FetchEvents テスト（モック使用） ---

func TestGetEvents_Success(t *testing.T) {
	mockProvider := new(MockEventsProvider)
	repo := NewGoogleCalendarRepositoryWithProvider(mockProvider, "test-calendar", testJST)

	targetDate := time.Date(2024, 1, 15, 0, 0, 0, 0, testJST)

	events := []*calendar.Event{
		{
			Id:      "1",
			Summary: "朝会",
			Start:   &calendar.EventDateTime{DateTime: "2024-01-15T09:00:00+09:00"},
			End:     &calendar.EventDateTime{DateTime: "2024-01-15T09:30:00+09:00"},
		},
	}

	mockProvider.On("ListEvents", "test-calendar", "2024-01-15T00:00:00+09:00", "2024-01-16T00:00:00+09:00").
		Return(events, nil)

	result, err := repo.GetEvents(context.Background(), targetDate)
	require.NoError(t, err)
	assert.Len(t, result, 1)
	assert.Equal(t, "朝会", result[0].Title)
	assert.IsType(t, domain.Event{}, result[0])
	mockProvider.AssertExpectations(t)
}

func TestGetEvents_APIError(t *testing.T) {
	mockProvider := new(MockEventsProvider)
	repo := NewGoogleCalendarRepositoryWithProvider(mockProvider, "test-calendar", testJST)

	targetDate := time.Date(2024, 1, 15, 0, 0, 0, 0, testJST)

	mockProvider.On("ListEvents", "test-calendar", mock.AnythingOfType("string"), mock.AnythingOfType("string")).
		Return(nil, errors.New("API error"))

	_, err := repo.GetEvents(context.Background(), targetDate)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "カレンダーイベントの取得に失敗しました")
	mockProvider.AssertExpectations(t)
}

func TestGetEvents_EmptyResult(t *testing.T) {
	mockProvider := new(MockEventsProvider)
	repo := NewGoogleCalendarRepositoryWithProvider(mockProvider, "test-calendar", testJST)

	targetDate := time.Date(2024, 1, 15, 0, 0, 0, 0, testJST)

	mockProvider.On("ListEvents", "test-calendar", mock.AnythingOfType("string"), mock.AnythingOfType("string")).
		Return([]*calendar.Event{}, nil)

	result, err := repo.GetEvents(context.Background(), targetDate)
	require.NoError(t, err)
	assert.Empty(t, result)
	mockProvider.AssertExpectations(t)
}

func TestFetchEvents_FromNow(t *testing.T) {
	mockProvider := new(MockEventsProvider)
	repo := NewGoogleCalendarRepositoryWithProvider(mockProvider, "primary", testJST)
	repo.clock = func() time.Time { return time.Date(2025, 1, 10, 8, 0, 0, 0, testJST) }

	events := []*calendar.Event{
		{Id: "1", Summary: "Standup", Start: &calendar.EventDateTime{DateTime: "2025-01-10T09:00:00+09:00"}, End: &calendar.EventDateTime{DateTime: "2025-01-10T09:30:00+09:00"}},
		{Id: "2", Summary: "壊れたイベント", Start: &calendar.EventDateTime{}},
		nil,
		{Id: "3", Summary: "終了なし", Start: &calendar.EventDateTime{Date: "2025-01-11"}},
	}
	mockProvider.On("ListEvents", "primary", "2025-01-10T08:00:00+09:00", "").Return(events, nil)

	result, err := repo.FetchEvents(context.Background())
	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.Equal(t, "Standup", result[0].Title)
	assert.Equal(t, "終了なし", result[1].Title)
	assert.Nil(t, result[1].End)
	mockProvider.AssertExpectations(t)
}

func TestFetchEvents_CanceledContext(t *testing.T) {
	mockProvider := new(MockEventsProvider)
	repo := NewGoogleCalendarRepositoryWithProvider(mockProvider, "primary", testJST)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.FetchEvents(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	mockProvider.AssertNotCalled(t, "ListEvents", mock.Anything, mock.Anything, mock.Anything)
}

func TestFetchEvents_NoProvider(t *testing.T) {
	repo := NewGoogleCalendarRepositoryWithProvider(nil, "primary", testJST)

	_, err := repo.FetchEvents(context.Background())
	assert.Error(t, err)
}

// --- calendar.Service 経由のテスト（httptest 使用） ---

func TestFetchEvents_WithService(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "test-calendar-id/events")
		assert.Equal(t, "true", r.URL.Query().Get("singleEvents"))
		assert.Equal(t, "startTime", r.URL.Query().Get("orderBy"))
		assert.Equal(t, "2025-01-10T08:00:00+09:00", r.URL.Query().Get("timeMin"))
		assert.Empty(t, r.URL.Query().Get("timeMax"))

		events := &calendar.Events{
			Items: []*calendar.Event{
				{
					Id:      "event1",
					Summary: "Standup",
					Start:   &calendar.EventDateTime{DateTime: "2025-01-10T09:00:00+09:00"},
					End:     &calendar.EventDateTime{DateTime: "2025-01-10T09:30:00+09:00"},
				},
				{
					Id:      "event2",
					Summary: "All Day Event",
					Start:   &calendar.EventDateTime{Date: "2025-01-11"},
					End:     &calendar.EventDateTime{Date: "2025-01-12"},
				},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		assert.NoError(t, json.NewEncoder(w).Encode(events))
	}))
	t.Cleanup(server.Close)

	svc, err := calendar.NewService(context.Background(),
		option.WithEndpoint(server.URL),
		option.WithHTTPClient(server.Client()),
		option.WithoutAuthentication(),
	)
	require.NoError(t, err)

	repo := NewGoogleCalendarRepositoryWithService(svc, "test-calendar-id", testJST)
	repo.clock = func() time.Time { return time.Date(2025, 1, 10, 8, 0, 0, 0, testJST) }

	events, err := repo.FetchEvents(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "event1", events[0].ID)
	assert.True(t, events[0].IsTimed())
	assert.Equal(t, "event2", events[1].ID)
	assert.True(t, events[1].IsAllDay())
}

func TestFetchEvents_WithServiceError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(server.Close)

	svc, err := calendar.NewService(context.Background(),
		option.WithEndpoint(server.URL),
		option.WithHTTPClient(server.Client()),
		option.WithoutAuthentication(),
	)
	require.NoError(t, err)

	repo := NewGoogleCalendarRepositoryWithService(svc, "test-calendar-id", testJST)

	_, err = repo.FetchEvents(context.Background())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "カレンダーイベントの取得に失敗しました")
}
