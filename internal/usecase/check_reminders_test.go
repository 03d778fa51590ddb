package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/k-negishi/calendar-task-dashboard/internal/domain"
)

func newCheckReminders(reminders *MockReminderStore, items *MockItemStore, now time.Time, notifiers ...ReminderNotifier) *CheckRemindersUseCase {
	uc := NewCheckRemindersUseCase(reminders, items, nil, notifiers...)
	uc.clock = func() time.Time { return now }
	return uc
}

func TestCheckReminders_Success(t *testing.T) {
	jst := time.FixedZone("JST", 9*60*60)
	now := time.Date(2024, 1, 15, 9, 0, 0, 0, jst)
	start := now.Add(3 * time.Minute)

	reminders := new(MockReminderStore)
	notifier := new(MockReminderNotifier)
	uc := newCheckReminders(reminders, nil, now, notifier)

	due := []*domain.Item{
		{ID: 1, Type: domain.ItemTypeCalendarEvent, Title: "朝会", StartTime: &start},
		{ID: 2, Type: domain.ItemTypeReminder, Title: "薬を飲む", StartTime: &start},
	}
	reminders.On("ListDueReminders", mock.Anything, now, now.Add(5*time.Minute)).Return(due, nil)
	notifier.On("SendReminder", mock.Anything, *due[0]).Return(nil)
	notifier.On("SendReminder", mock.Anything, *due[1]).Return(nil)
	reminders.On("MarkReminderSent", mock.Anything, int64(1)).Return(nil)
	reminders.On("MarkReminderSent", mock.Anything, int64(2)).Return(nil)

	sent, err := uc.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, sent)
	reminders.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestCheckReminders_NoneDue(t *testing.T) {
	now := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	reminders := new(MockReminderStore)
	uc := newCheckReminders(reminders, nil, now)

	reminders.On("ListDueReminders", mock.Anything, now, now.Add(ReminderWindow)).Return([]*domain.Item{}, nil)

	sent, err := uc.Execute(context.Background())
	require.NoError(t, err)
	assert.Zero(t, sent)
	reminders.AssertNotCalled(t, "MarkReminderSent", mock.Anything, mock.Anything)
}

func TestCheckReminders_NotifierFailureContinues(t *testing.T) {
	now := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	start := now.Add(time.Minute)

	reminders := new(MockReminderStore)
	notifier := new(MockReminderNotifier)
	uc := newCheckReminders(reminders, nil, now, notifier)

	failing := &domain.Item{ID: 1, Type: domain.ItemTypeReminder, Title: "fails", StartTime: &start}
	ok := &domain.Item{ID: 2, Type: domain.ItemTypeReminder, Title: "ok", StartTime: &start}
	reminders.On("ListDueReminders", mock.Anything, now, now.Add(ReminderWindow)).Return([]*domain.Item{failing, ok}, nil)
	notifier.On("SendReminder", mock.Anything, *failing).Return(errors.New("LINE down"))
	notifier.On("SendReminder", mock.Anything, *ok).Return(nil)
	reminders.On("MarkReminderSent", mock.Anything, int64(2)).Return(nil)

	sent, err := uc.Execute(context.Background())
	assert.Error(t, err)
	assert.Equal(t, 1, sent)
	// 通知に失敗したものは通知済みにしない
	reminders.AssertNotCalled(t, "MarkReminderSent", mock.Anything, int64(1))
	reminders.AssertExpectations(t)
}

func TestCheckReminders_SkipsTodo(t *testing.T) {
	now := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	reminders := new(MockReminderStore)
	uc := newCheckReminders(reminders, nil, now)

	reminders.On("ListDueReminders", mock.Anything, now, now.Add(ReminderWindow)).
		Return([]*domain.Item{{ID: 9, Type: domain.ItemTypeTodo}}, nil)

	sent, err := uc.Execute(context.Background())
	require.NoError(t, err)
	assert.Zero(t, sent)
	reminders.AssertNotCalled(t, "MarkReminderSent", mock.Anything, mock.Anything)
}

func TestCheckReminders_ListError(t *testing.T) {
	now := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	reminders := new(MockReminderStore)
	uc := newCheckReminders(reminders, nil, now)

	reminders.On("ListDueReminders", mock.Anything, now, now.Add(ReminderWindow)).Return(nil, errors.New("db down"))

	_, err := uc.Execute(context.Background())
	assert.Error(t, err)
}

func TestCreateReminder(t *testing.T) {
	items := new(MockItemStore)
	uc := newCheckReminders(new(MockReminderStore), items, time.Now())
	start := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

	items.On("FindOrCreateUser", mock.Anything, "alice@example.com", "alice").Return(&domain.User{ID: 4}, nil)
	items.On("CreateItem", mock.Anything, mock.MatchedBy(func(item *domain.Item) bool {
		return item.UserID == 4 && item.Type == domain.ItemTypeReminder && item.Title == "Dentist" &&
			item.StartTime != nil && item.StartTime.Equal(start) && !item.ReminderSent
	})).Return(nil)

	item, err := uc.CreateReminder(context.Background(), CreateReminderInput{Title: "Dentist", StartTime: start, UserEmail: "alice@example.com"})
	require.NoError(t, err)
	assert.Equal(t, domain.ItemTypeReminder, item.Type)
	items.AssertExpectations(t)
}

func TestCreateReminder_EmptyTitle(t *testing.T) {
	uc := newCheckReminders(new(MockReminderStore), new(MockItemStore), time.Now())

	_, err := uc.CreateReminder(context.Background(), CreateReminderInput{Title: " "})
	assert.ErrorIs(t, err, ErrReminderTitleRequired)
}
