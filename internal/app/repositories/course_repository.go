package repositories

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/kerem/learnly/internal/app/models"
	"github.com/kerem/learnly/internal/app/models/dto"
	"github.com/kerem/learnly/internal/pkg/apperrors"
	"github.com/kerem/learnly/internal/pkg/dberrors"
	"github.com/kerem/learnly/internal/pkg/helpers"
	"github.com/kerem/learnly/internal/pkg/logger"
)

// ListCoursesParams holds parameters for filtering and pagination.
type ListCoursesParams struct {
	Status     *models.CourseStatus
	Difficulty *models.Difficulty
	CreatedBy  *int64
	SavedBy    *int64
	Page       int
	Size       int
}

// CourseRepository handles database operations for Course.
type CourseRepository struct {
	DB DBTX
}

// NewCourseRepository creates a new instance of CourseRepository.
func NewCourseRepository(db DBTX) *CourseRepository {
	return &CourseRepository{DB: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *CourseRepository) WithTx(tx DBTX) *CourseRepository {
	return &CourseRepository{DB: tx}
}

const courseColumns = "id, title, slug, description, difficulty, estimated_completion_time, status, created_by, created_at, updated_at"

func scanCourse(row pgx.Row) (*models.Course, error) {
	var c models.Course
	err := row.Scan(
		&c.ID, &c.Title, &c.Slug, &c.Description, &c.Difficulty,
		&c.EstimatedCompletionTime, &c.Status, &c.CreatedBy, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrCourseNotFound
		}
		logger.Error().Err(err).Msg("Error scanning course")
		return nil, err
	}
	return &c, nil
}

// CreateCourse inserts a new course and returns its id.
func (r *CourseRepository) CreateCourse(ctx context.Context, course *models.Course) (int64, error) {
	sqlStr, args, err := squirrel.Insert("courses").
		Columns("title", "slug", "description", "difficulty", "estimated_completion_time", "status", "created_by").
		Values(course.Title, course.Slug, course.Description, course.Difficulty,
			course.EstimatedCompletionTime, course.Status, course.CreatedBy).
		Suffix("RETURNING id").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create course SQL")
		return 0, err
	}

	var id int64
	if err := r.DB.QueryRow(ctx, sqlStr, args...).Scan(&id); err != nil {
		if dberrors.IsUniqueViolation(err) {
			return 0, apperrors.ErrCourseTitleExists
		}
		logger.Error().Err(err).Msg("Error executing create course query")
		return 0, err
	}
	return id, nil
}

// UpdateCourse updates the editable fields of a course.
func (r *CourseRepository) UpdateCourse(ctx context.Context, course *models.Course) error {
	sqlStr, args, err := squirrel.Update("courses").
		Set("title", course.Title).
		Set("slug", course.Slug).
		Set("description", course.Description).
		Set("difficulty", course.Difficulty).
		Set("estimated_completion_time", course.EstimatedCompletionTime).
		Set("status", course.Status).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": course.ID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	tag, err := r.DB.Exec(ctx, sqlStr, args...)
	if err != nil {
		if dberrors.IsUniqueViolation(err) {
			return apperrors.ErrCourseTitleExists
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrCourseNotFound
	}
	return nil
}

// DeleteCourse removes a course. Child rows go with it via ON DELETE CASCADE.
func (r *CourseRepository) DeleteCourse(ctx context.Context, id int64) error {
	sqlStr, args, err := squirrel.Delete("courses").
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
		return apperrors.ErrCourseNotFound
	}
	return nil
}

// GetCourseByID retrieves a course by ID.
func (r *CourseRepository) GetCourseByID(ctx context.Context, id int64) (*models.Course, error) {
	sqlStr, args, err := squirrel.Select(courseColumns).
		From("courses").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}
	return scanCourse(r.DB.QueryRow(ctx, sqlStr, args...))
}

// GetCourseBySlug retrieves a course by slug.
func (r *CourseRepository) GetCourseBySlug(ctx context.Context, slug string) (*models.Course, error) {
	sqlStr, args, err := squirrel.Select(courseColumns).
		From("courses").
		Where(squirrel.Eq{"slug": slug}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}
	return scanCourse(r.DB.QueryRow(ctx, sqlStr, args...))
}

// TitleExists checks if a course title is already taken, optionally excluding
// one course id (the course being edited).
func (r *CourseRepository) TitleExists(ctx context.Context, title string, excludeID *int64) (bool, error) {
	builder := squirrel.Select("1").
		From("courses").
		Where(squirrel.Eq{"title": title}).
		Limit(1).
		PlaceholderFormat(squirrel.Dollar)
	if excludeID != nil {
		builder = builder.Where(squirrel.NotEq{"id": *excludeID})
	}

	sqlStr, args, err := builder.ToSql()
	if err != nil {
		return false, err
	}

	var one int
	err = r.DB.QueryRow(ctx, sqlStr, args...).Scan(&one)
	if err == pgx.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ListCourses retrieves a paginated and filtered list of courses.
func (r *CourseRepository) ListCourses(ctx context.Context, params ListCoursesParams) ([]*models.Course, dto.PaginationInfo, error) {
	builder := squirrel.Select(
		"c.id", "c.title", "c.slug", "c.description", "c.difficulty",
		"c.estimated_completion_time", "c.status", "c.created_by", "c.created_at", "c.updated_at",
	).From("courses c").PlaceholderFormat(squirrel.Dollar)
	countBuilder := squirrel.Select("count(*)").From("courses c").PlaceholderFormat(squirrel.Dollar)

	if params.Status != nil {
		builder = builder.Where(squirrel.Eq{"c.status": *params.Status})
		countBuilder = countBuilder.Where(squirrel.Eq{"c.status": *params.Status})
	}
	if params.Difficulty != nil {
		builder = builder.Where(squirrel.Eq{"c.difficulty": *params.Difficulty})
		countBuilder = countBuilder.Where(squirrel.Eq{"c.difficulty": *params.Difficulty})
	}
	if params.CreatedBy != nil {
		builder = builder.Where(squirrel.Eq{"c.created_by": *params.CreatedBy})
		countBuilder = countBuilder.Where(squirrel.Eq{"c.created_by": *params.CreatedBy})
	}
	if params.SavedBy != nil {
		builder = builder.Join("saved_courses sc ON sc.course_id = c.id").
			Where(squirrel.Eq{"sc.user_id": *params.SavedBy})
		countBuilder = countBuilder.Join("saved_courses sc ON sc.course_id = c.id").
			Where(squirrel.Eq{"sc.user_id": *params.SavedBy})
	}

	countSQL, countArgs, err := countBuilder.ToSql()
	if err != nil {
		return nil, dto.PaginationInfo{}, err
	}
	var total int64
	if err := r.DB.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		logger.Error().Err(err).Msg("Error counting courses")
		return nil, dto.PaginationInfo{}, err
	}

	offset, limit := helpers.CalculateOffsetLimit(params.Page, params.Size)
	sqlStr, args, err := builder.
		OrderBy("c.created_at DESC").
		Offset(offset).
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, dto.PaginationInfo{}, err
	}

	rows, err := r.DB.Query(ctx, sqlStr, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing courses")
		return nil, dto.PaginationInfo{}, err
	}
	defer rows.Close()

	var courses []*models.Course
	for rows.Next() {
		course, err := scanCourse(rows)
		if err != nil {
			return nil, dto.PaginationInfo{}, err
		}
		courses = append(courses, course)
	}
	if err := rows.Err(); err != nil {
		return nil, dto.PaginationInfo{}, err
	}

	return courses, helpers.NewPaginationInfo(total, params.Page, limit), nil
}

// IsSaved reports whether the user has saved the course.
func (r *CourseRepository) IsSaved(ctx context.Context, userID, courseID int64) (bool, error) {
	return r.existsIn(ctx, "saved_courses", userID, courseID)
}

// SaveCourse adds a course to the user's saved list. Saving twice is a no-op.
func (r *CourseRepository) SaveCourse(ctx context.Context, userID, courseID int64) error {
	sqlStr, args, err := squirrel.Insert("saved_courses").
		Columns("user_id", "course_id").
		Values(userID, courseID).
		Suffix("ON CONFLICT (user_id, course_id) DO NOTHING").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}
	_, err = r.DB.Exec(ctx, sqlStr, args...)
	return err
}

// UnsaveCourse removes a course from the user's saved list.
func (r *CourseRepository) UnsaveCourse(ctx context.Context, userID, courseID int64) error {
	sqlStr, args, err := squirrel.Delete("saved_courses").
		Where(squirrel.Eq{"user_id": userID, "course_id": courseID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}
	_, err = r.DB.Exec(ctx, sqlStr, args...)
	return err
}

// IsCompleted reports whether the user has completed the course.
func (r *CourseRepository) IsCompleted(ctx context.Context, userID, courseID int64) (bool, error) {
	return r.existsIn(ctx, "completed_courses", userID, courseID)
}

// MarkCompleted records a course completion. Already-completed is a no-op.
func (r *CourseRepository) MarkCompleted(ctx context.Context, userID, courseID int64) error {
	sqlStr, args, err := squirrel.Insert("completed_courses").
		Columns("user_id", "course_id").
		Values(userID, courseID).
		Suffix("ON CONFLICT (user_id, course_id) DO NOTHING").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}
	_, err = r.DB.Exec(ctx, sqlStr, args...)
	return err
}

func (r *CourseRepository) existsIn(ctx context.Context, table string, userID, courseID int64) (bool, error) {
	sqlStr, args, err := squirrel.Select("1").
		From(table).
		Where(squirrel.Eq{"user_id": userID, "course_id": courseID}).
		Limit(1).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return false, err
	}

	var one int
	err = r.DB.QueryRow(ctx, sqlStr, args...).Scan(&one)
	if err == pgx.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
