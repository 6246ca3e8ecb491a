package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kerem/learnly/internal/app/models"
	"github.com/kerem/learnly/internal/app/models/dto"
	"github.com/kerem/learnly/internal/app/repositories"
	"github.com/kerem/learnly/internal/pkg/apperrors"
)

type fakeScheduleStore struct {
	nextID    int64
	schedules map[int64]*models.ScheduledCourse
	due       []*repositories.DueReminder
	sent      []int64
}

func newFakeScheduleStore() *fakeScheduleStore {
	return &fakeScheduleStore{schedules: make(map[int64]*models.ScheduledCourse)}
}

func (f *fakeScheduleStore) GetByUserAndCourse(_ context.Context, userID, courseID int64) (*models.ScheduledCourse, error) {
	for _, s := range f.schedules {
		if s.UserID == userID && s.CourseID == courseID {
			return s, nil
		}
	}
	return nil, apperrors.ErrNotScheduled
}

func (f *fakeScheduleStore) CreateSchedule(_ context.Context, schedule *models.ScheduledCourse) (int64, error) {
	f.nextID++
	s := *schedule
	s.ID = f.nextID
	f.schedules[s.ID] = &s
	return s.ID, nil
}

func (f *fakeScheduleStore) UpdateSchedule(_ context.Context, schedule *models.ScheduledCourse) error {
	if _, ok := f.schedules[schedule.ID]; !ok {
		return apperrors.ErrNotScheduled
	}
	s := *schedule
	f.schedules[s.ID] = &s
	return nil
}

func (f *fakeScheduleStore) DeleteSchedule(_ context.Context, id int64) error {
	if _, ok := f.schedules[id]; !ok {
		return apperrors.ErrNotScheduled
	}
	delete(f.schedules, id)
	return nil
}

func (f *fakeScheduleStore) GetDueReminders(context.Context, time.Time) ([]*repositories.DueReminder, error) {
	return f.due, nil
}

func (f *fakeScheduleStore) MarkNotificationSent(_ context.Context, scheduleID int64) error {
	f.sent = append(f.sent, scheduleID)
	return nil
}

type fakeCourseReader struct {
	courses map[int64]*models.Course
}

func (f *fakeCourseReader) GetCourseByID(_ context.Context, id int64) (*models.Course, error) {
	c, ok := f.courses[id]
	if !ok {
		return nil, apperrors.ErrCourseNotFound
	}
	return c, nil
}

type fakeEmailService struct {
	reminders []string // recipient emails
	failFor   string   // sending to this address fails
}

func (f *fakeEmailService) SendWelcomeEmail(string, string) error { return nil }

func (f *fakeEmailService) SendCourseReminderEmail(toEmail, _, _ string, _ time.Time) error {
	if toEmail == f.failFor {
		return errors.New("smtp unavailable")
	}
	f.reminders = append(f.reminders, toEmail)
	return nil
}

func newScheduleFixture(now time.Time) (*fakeScheduleStore, *fakeEmailService, *scheduleService) {
	store := newFakeScheduleStore()
	emails := &fakeEmailService{}
	courses := &fakeCourseReader{courses: map[int64]*models.Course{
		1: {ID: 1, Title: "Intro to Go", Status: models.CourseStatusPublished},
	}}

	svc := NewScheduleService(store, courses, emails).(*scheduleService)
	svc.now = func() time.Time { return now }
	return store, emails, svc
}

func timePtr(t time.Time) *time.Time { return &t }

func TestApplyScheduleActionLeadTime(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		at      time.Time
		wantErr bool
	}{
		{name: "too soon", at: now.Add(29 * time.Minute), wantErr: true},
		{name: "one second short", at: now.Add(MinScheduleLead - time.Second), wantErr: true},
		{name: "exactly at the lead", at: now.Add(MinScheduleLead), wantErr: false},
		{name: "comfortably ahead", at: now.Add(2 * time.Hour), wantErr: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, svc := newScheduleFixture(now)
			_, err := svc.ApplyScheduleAction(context.Background(), 5, 1, &dto.ScheduleRequest{
				Action:        ScheduleActionSchedule,
				ScheduledTime: timePtr(tt.at),
			})
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, apperrors.ErrScheduleLeadTime)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestApplyScheduleActionStateMachine(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	store, _, svc := newScheduleFixture(now)

	first := now.Add(2 * time.Hour)
	moved := now.Add(4 * time.Hour)

	// Rescheduling before anything exists fails; unscheduling is a no-op
	// that only carries a warning.
	_, err := svc.ApplyScheduleAction(context.Background(), 5, 1, &dto.ScheduleRequest{
		Action: ScheduleActionReschedule, ScheduledTime: timePtr(first),
	})
	assert.ErrorIs(t, err, apperrors.ErrNotScheduled)

	resp, err := svc.ApplyScheduleAction(context.Background(), 5, 1, &dto.ScheduleRequest{
		Action: ScheduleActionUnschedule,
	})
	require.NoError(t, err)
	assert.False(t, resp.Scheduled)
	assert.NotEmpty(t, resp.Warning)

	// Schedule.
	resp, err = svc.ApplyScheduleAction(context.Background(), 5, 1, &dto.ScheduleRequest{
		Action: ScheduleActionSchedule, ScheduledTime: timePtr(first),
	})
	require.NoError(t, err)
	assert.True(t, resp.Scheduled)
	assert.Equal(t, DefaultNotifyBeforeMinutes, resp.NotifyBeforeMinutes)

	// Scheduling twice conflicts.
	_, err = svc.ApplyScheduleAction(context.Background(), 5, 1, &dto.ScheduleRequest{
		Action: ScheduleActionSchedule, ScheduledTime: timePtr(moved),
	})
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	// Reschedule moves the session and resets the notification flag.
	existing, _ := store.GetByUserAndCourse(context.Background(), 5, 1)
	existing.NotificationSent = true

	resp, err = svc.ApplyScheduleAction(context.Background(), 5, 1, &dto.ScheduleRequest{
		Action: ScheduleActionReschedule, ScheduledTime: timePtr(moved), NotifyBeforeMinutes: 15,
	})
	require.NoError(t, err)
	require.NotNil(t, resp.ScheduledTime)
	assert.True(t, resp.ScheduledTime.Equal(moved))
	assert.Equal(t, 15, resp.NotifyBeforeMinutes)

	updated, _ := store.GetByUserAndCourse(context.Background(), 5, 1)
	assert.False(t, updated.NotificationSent)

	// Unschedule removes it; an actual removal carries no warning.
	resp, err = svc.ApplyScheduleAction(context.Background(), 5, 1, &dto.ScheduleRequest{
		Action: ScheduleActionUnschedule,
	})
	require.NoError(t, err)
	assert.False(t, resp.Scheduled)
	assert.Empty(t, resp.Warning)

	_, err = store.GetByUserAndCourse(context.Background(), 5, 1)
	assert.ErrorIs(t, err, apperrors.ErrNotScheduled)
}

func TestApplyScheduleActionCourseMustExist(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	_, _, svc := newScheduleFixture(now)

	_, err := svc.ApplyScheduleAction(context.Background(), 5, 999, &dto.ScheduleRequest{
		Action: ScheduleActionSchedule, ScheduledTime: timePtr(now.Add(time.Hour)),
	})
	assert.ErrorIs(t, err, apperrors.ErrCourseNotFound)
}

func TestApplyScheduleActionRequiresTime(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	_, _, svc := newScheduleFixture(now)

	_, err := svc.ApplyScheduleAction(context.Background(), 5, 1, &dto.ScheduleRequest{
		Action: ScheduleActionSchedule,
	})
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
}

func TestSendDueRemindersMarksSentAndRetriesFailures(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	store, emails, svc := newScheduleFixture(now)

	store.due = []*repositories.DueReminder{
		{ScheduleID: 1, UserEmail: "a@example.com", UserFirstName: "A", CourseTitle: "Intro to Go", ScheduledTime: now.Add(25 * time.Minute)},
		{ScheduleID: 2, UserEmail: "b@example.com", UserFirstName: "B", CourseTitle: "Intro to Go", ScheduledTime: now.Add(28 * time.Minute)},
	}
	emails.failFor = "b@example.com"

	err := svc.SendDueReminders(context.Background())
	require.NoError(t, err)

	// The delivered reminder is flagged; the failed one stays unflagged so
	// the next sweep retries it.
	assert.Equal(t, []string{"a@example.com"}, emails.reminders)
	assert.Equal(t, []int64{1}, store.sent)
}
