package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kerem/learnly/internal/app/models"
	"github.com/kerem/learnly/internal/app/models/dto"
	"github.com/kerem/learnly/internal/app/repositories"
	"github.com/kerem/learnly/internal/pkg/apperrors"
	"github.com/kerem/learnly/internal/pkg/email"
	"github.com/kerem/learnly/internal/pkg/logger"
)

// Schedule action tokens.
const (
	ScheduleActionSchedule   = "schedule"
	ScheduleActionReschedule = "reschedule"
	ScheduleActionUnschedule = "unschedule"
)

// MinScheduleLead is how far ahead of now a study session must be planned.
const MinScheduleLead = 30 * time.Minute

// DefaultNotifyBeforeMinutes is used when the request does not say how early
// to remind.
const DefaultNotifyBeforeMinutes = 30

// ScheduleStore is what the schedule state machine needs from the
// persistence layer. repositories.ScheduleRepository satisfies it.
type ScheduleStore interface {
	GetByUserAndCourse(ctx context.Context, userID, courseID int64) (*models.ScheduledCourse, error)
	CreateSchedule(ctx context.Context, schedule *models.ScheduledCourse) (int64, error)
	UpdateSchedule(ctx context.Context, schedule *models.ScheduledCourse) error
	DeleteSchedule(ctx context.Context, id int64) error
	GetDueReminders(ctx context.Context, now time.Time) ([]*repositories.DueReminder, error)
	MarkNotificationSent(ctx context.Context, scheduleID int64) error
}

// CourseReader resolves courses by id.
type CourseReader interface {
	GetCourseByID(ctx context.Context, id int64) (*models.Course, error)
}

// IScheduleService defines study scheduling and the reminder sweep.
type IScheduleService interface {
	// ApplyScheduleAction runs one schedule/reschedule/unschedule request
	// for the user's schedule on a course.
	ApplyScheduleAction(ctx context.Context, userID, courseID int64, req *dto.ScheduleRequest) (*dto.ScheduleResponse, error)

	// SendDueReminders emails every schedule whose notification time has
	// arrived and flags it as sent. Called periodically by the cron entry.
	SendDueReminders(ctx context.Context) error
}

type scheduleService struct {
	store   ScheduleStore
	courses CourseReader
	emails  email.EmailService
	now     func() time.Time
}

// NewScheduleService creates a new schedule service.
func NewScheduleService(store ScheduleStore, courses CourseReader, emails email.EmailService) IScheduleService {
	return &scheduleService{
		store:   store,
		courses: courses,
		emails:  emails,
		now:     time.Now,
	}
}

func (s *scheduleService) ApplyScheduleAction(ctx context.Context, userID, courseID int64, req *dto.ScheduleRequest) (*dto.ScheduleResponse, error) {
	if _, err := s.courses.GetCourseByID(ctx, courseID); err != nil {
		return nil, err
	}

	existing, err := s.store.GetByUserAndCourse(ctx, userID, courseID)
	if err != nil && !errors.Is(err, apperrors.ErrNotScheduled) {
		return nil, err
	}

	switch req.Action {
	case ScheduleActionSchedule:
		if existing != nil {
			return nil, apperrors.NewConflictError("this course is already scheduled, use reschedule to move it")
		}
		schedule, err := s.buildSchedule(userID, courseID, req)
		if err != nil {
			return nil, err
		}
		id, err := s.store.CreateSchedule(ctx, schedule)
		if err != nil {
			return nil, err
		}
		schedule.ID = id
		return scheduleResponse(schedule), nil

	case ScheduleActionReschedule:
		if existing == nil {
			return nil, apperrors.NewCustomError(apperrors.ErrNotScheduled, "this course has no schedule to move")
		}
		updated, err := s.buildSchedule(userID, courseID, req)
		if err != nil {
			return nil, err
		}
		updated.ID = existing.ID
		if err := s.store.UpdateSchedule(ctx, updated); err != nil {
			return nil, err
		}
		return scheduleResponse(updated), nil

	case ScheduleActionUnschedule:
		if existing == nil {
			// Nothing to remove; the desired state already holds.
			logger.Warn().Int64("userId", userID).Int64("courseId", courseID).
				Msg("Unschedule requested with no schedule present")
			return &dto.ScheduleResponse{
				Scheduled: false,
				Warning:   "this course had no schedule to remove",
			}, nil
		}
		if err := s.store.DeleteSchedule(ctx, existing.ID); err != nil {
			return nil, err
		}
		return &dto.ScheduleResponse{Scheduled: false}, nil

	default:
		return nil, apperrors.NewBadRequestError(fmt.Sprintf("unknown schedule action %q", req.Action))
	}
}

// buildSchedule validates the requested time and assembles the schedule row.
// Sessions must be planned at least MinScheduleLead ahead of now.
func (s *scheduleService) buildSchedule(userID, courseID int64, req *dto.ScheduleRequest) (*models.ScheduledCourse, error) {
	if req.ScheduledTime == nil {
		return nil, apperrors.NewBadRequestError("scheduledTime is required")
	}
	if req.ScheduledTime.Before(s.now().Add(MinScheduleLead)) {
		return nil, apperrors.NewCustomError(apperrors.ErrScheduleLeadTime,
			fmt.Sprintf("study sessions must be scheduled at least %d minutes ahead", int(MinScheduleLead.Minutes())))
	}

	notifyBefore := req.NotifyBeforeMinutes
	if notifyBefore <= 0 {
		notifyBefore = DefaultNotifyBeforeMinutes
	}

	return &models.ScheduledCourse{
		UserID:              userID,
		CourseID:            courseID,
		ScheduledTime:       *req.ScheduledTime,
		NotifyBeforeMinutes: notifyBefore,
	}, nil
}

func scheduleResponse(schedule *models.ScheduledCourse) *dto.ScheduleResponse {
	return &dto.ScheduleResponse{
		Scheduled:           true,
		ScheduledTime:       &schedule.ScheduledTime,
		NotifyBeforeMinutes: schedule.NotifyBeforeMinutes,
	}
}

func (s *scheduleService) SendDueReminders(ctx context.Context) error {
	due, err := s.store.GetDueReminders(ctx, s.now())
	if err != nil {
		return err
	}

	for _, reminder := range due {
		err := s.emails.SendCourseReminderEmail(
			reminder.UserEmail, reminder.UserFirstName, reminder.CourseTitle, reminder.ScheduledTime)
		if err != nil {
			// An unsent reminder stays unflagged and is retried on the
			// next sweep.
			logger.Error().Err(err).
				Int64("scheduleId", reminder.ScheduleID).
				Str("email", reminder.UserEmail).
				Msg("Failed to send course reminder")
			continue
		}
		if err := s.store.MarkNotificationSent(ctx, reminder.ScheduleID); err != nil {
			logger.Error().Err(err).
				Int64("scheduleId", reminder.ScheduleID).
				Msg("Failed to mark reminder as sent")
		}
	}

	return nil
}
