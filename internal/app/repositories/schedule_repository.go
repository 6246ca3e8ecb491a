package repositories

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/kerem/learnly/internal/app/models"
	"github.com/kerem/learnly/internal/pkg/apperrors"
	"github.com/kerem/learnly/internal/pkg/dberrors"
	"github.com/kerem/learnly/internal/pkg/logger"
)

// DueReminder pairs a due schedule with the recipient and course title so the
// sweep can send the email without extra lookups.
type DueReminder struct {
	ScheduleID    int64
	UserEmail     string
	UserFirstName string
	CourseTitle   string
	ScheduledTime time.Time
}

// ScheduleRepository handles database operations for ScheduledCourse.
type ScheduleRepository struct {
	DB DBTX
}

// NewScheduleRepository creates a new instance of ScheduleRepository.
func NewScheduleRepository(db DBTX) *ScheduleRepository {
	return &ScheduleRepository{DB: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *ScheduleRepository) WithTx(tx DBTX) *ScheduleRepository {
	return &ScheduleRepository{DB: tx}
}

const scheduleColumns = "id, user_id, course_id, scheduled_time, notify_before_minutes, notification_sent, created_at"

func scanSchedule(row pgx.Row) (*models.ScheduledCourse, error) {
	var s models.ScheduledCourse
	err := row.Scan(
		&s.ID, &s.UserID, &s.CourseID, &s.ScheduledTime,
		&s.NotifyBeforeMinutes, &s.NotificationSent, &s.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrNotScheduled
		}
		logger.Error().Err(err).Msg("Error scanning scheduled course")
		return nil, err
	}
	return &s, nil
}

// CreateSchedule inserts a new schedule and returns its id.
func (r *ScheduleRepository) CreateSchedule(ctx context.Context, schedule *models.ScheduledCourse) (int64, error) {
	sqlStr, args, err := squirrel.Insert("scheduled_courses").
		Columns("user_id", "course_id", "scheduled_time", "notify_before_minutes").
		Values(schedule.UserID, schedule.CourseID, schedule.ScheduledTime, schedule.NotifyBeforeMinutes).
		Suffix("RETURNING id").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create schedule SQL")
		return 0, err
	}

	var id int64
	if err := r.DB.QueryRow(ctx, sqlStr, args...).Scan(&id); err != nil {
		// The course can be deleted between the service's existence check
		// and this insert.
		if dberrors.IsForeignKeyViolation(err) {
			return 0, apperrors.ErrCourseNotFound
		}
		logger.Error().Err(err).Msg("Error executing create schedule query")
		return 0, err
	}
	return id, nil
}

// UpdateSchedule moves an existing schedule to a new time and resets the
// notification flag so the reminder fires again.
func (r *ScheduleRepository) UpdateSchedule(ctx context.Context, schedule *models.ScheduledCourse) error {
	sqlStr, args, err := squirrel.Update("scheduled_courses").
		Set("scheduled_time", schedule.ScheduledTime).
		Set("notify_before_minutes", schedule.NotifyBeforeMinutes).
		Set("notification_sent", false).
		Where(squirrel.Eq{"id": schedule.ID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	tag, err := r.DB.Exec(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotScheduled
	}
	return nil
}

// DeleteSchedule removes a schedule.
func (r *ScheduleRepository) DeleteSchedule(ctx context.Context, id int64) error {
	sqlStr, args, err := squirrel.Delete("scheduled_courses").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	tag, err := r.DB.Exec(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotScheduled
	}
	return nil
}

// GetByUserAndCourse retrieves the user's schedule for a course, if any.
func (r *ScheduleRepository) GetByUserAndCourse(ctx context.Context, userID, courseID int64) (*models.ScheduledCourse, error) {
	sqlStr, args, err := squirrel.Select(scheduleColumns).
		From("scheduled_courses").
		Where(squirrel.Eq{"user_id": userID, "course_id": courseID}).
		OrderBy("scheduled_time ASC").
		Limit(1).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}
	return scanSchedule(r.DB.QueryRow(ctx, sqlStr, args...))
}

// GetFutureByUserAndCourse retrieves the user's nearest upcoming schedule for
// a course. Past sessions are ignored; the read path must never surface a
// stale schedule.
func (r *ScheduleRepository) GetFutureByUserAndCourse(ctx context.Context, userID, courseID int64, now time.Time) (*models.ScheduledCourse, error) {
	sqlStr, args, err := squirrel.Select(scheduleColumns).
		From("scheduled_courses").
		Where(squirrel.Eq{"user_id": userID, "course_id": courseID}).
		Where(squirrel.Gt{"scheduled_time": now}).
		OrderBy("scheduled_time ASC").
		Limit(1).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}
	return scanSchedule(r.DB.QueryRow(ctx, sqlStr, args...))
}

// DeleteFutureByUserAndCourse removes the user's upcoming schedules for a
// course. Used on completion so finished courses stop producing reminders.
func (r *ScheduleRepository) DeleteFutureByUserAndCourse(ctx context.Context, userID, courseID int64, now time.Time) error {
	sqlStr, args, err := squirrel.Delete("scheduled_courses").
		Where(squirrel.Eq{"user_id": userID, "course_id": courseID}).
		Where(squirrel.Gt{"scheduled_time": now}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}
	_, err = r.DB.Exec(ctx, sqlStr, args...)
	return err
}

// GetDueReminders returns the schedules whose notification time has arrived
// but whose reminder has not been sent yet.
func (r *ScheduleRepository) GetDueReminders(ctx context.Context, now time.Time) ([]*DueReminder, error) {
	sqlStr, args, err := squirrel.Select(
		"sc.id", "u.email", "u.first_name", "c.title", "sc.scheduled_time",
	).From("scheduled_courses sc").
		Join("users u ON sc.user_id = u.id").
		Join("courses c ON sc.course_id = c.id").
		Where(squirrel.Eq{"sc.notification_sent": false}).
		Where(squirrel.Gt{"sc.scheduled_time": now}).
		Where(squirrel.Expr("sc.scheduled_time - (sc.notify_before_minutes * interval '1 minute') <= ?", now)).
		OrderBy("sc.scheduled_time ASC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.DB.Query(ctx, sqlStr, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing due reminders")
		return nil, err
	}
	defer rows.Close()

	var reminders []*DueReminder
	for rows.Next() {
		var d DueReminder
		if err := rows.Scan(&d.ScheduleID, &d.UserEmail, &d.UserFirstName, &d.CourseTitle, &d.ScheduledTime); err != nil {
			return nil, err
		}
		reminders = append(reminders, &d)
	}
	return reminders, rows.Err()
}

// MarkNotificationSent flags a schedule's reminder as delivered.
func (r *ScheduleRepository) MarkNotificationSent(ctx context.Context, scheduleID int64) error {
	sqlStr, args, err := squirrel.Update("scheduled_courses").
		Set("notification_sent", true).
		Where(squirrel.Eq{"id": scheduleID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}
	_, err = r.DB.Exec(ctx, sqlStr, args...)
	return err
}
