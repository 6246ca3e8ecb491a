package repositories

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/kerem/learnly/internal/app/models"
	"github.com/kerem/learnly/internal/pkg/apperrors"
	"github.com/kerem/learnly/internal/pkg/logger"
)

// QuizRepository handles database operations for Quiz.
type QuizRepository struct {
	DB DBTX
}

// NewQuizRepository creates a new instance of QuizRepository.
func NewQuizRepository(db DBTX) *QuizRepository {
	return &QuizRepository{DB: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *QuizRepository) WithTx(tx DBTX) *QuizRepository {
	return &QuizRepository{DB: tx}
}

const quizColumns = "id, section_id, question, correct_answer, order_index, created_at, updated_at"

func scanQuiz(row pgx.Row) (*models.Quiz, error) {
	var q models.Quiz
	err := row.Scan(&q.ID, &q.SectionID, &q.Question, &q.CorrectAnswer, &q.OrderIndex, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrQuizNotFound
		}
		logger.Error().Err(err).Msg("Error scanning quiz")
		return nil, err
	}
	return &q, nil
}

// CreateQuiz inserts a new quiz and returns its id.
func (r *QuizRepository) CreateQuiz(ctx context.Context, quiz *models.Quiz) (int64, error) {
	sqlStr, args, err := squirrel.Insert("quizzes").
		Columns("section_id", "question", "correct_answer", "order_index").
		Values(quiz.SectionID, quiz.Question, quiz.CorrectAnswer, quiz.OrderIndex).
		Suffix("RETURNING id").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create quiz SQL")
		return 0, err
	}

	var id int64
	if err := r.DB.QueryRow(ctx, sqlStr, args...).Scan(&id); err != nil {
		logger.Error().Err(err).Msg("Error executing create quiz query")
		return 0, err
	}
	return id, nil
}

// UpdateQuiz updates a quiz's question, answer and order.
func (r *QuizRepository) UpdateQuiz(ctx context.Context, quiz *models.Quiz) error {
	sqlStr, args, err := squirrel.Update("quizzes").
		Set("section_id", quiz.SectionID).
		Set("question", quiz.Question).
		Set("correct_answer", quiz.CorrectAnswer).
		Set("order_index", quiz.OrderIndex).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": quiz.ID}).
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
		return apperrors.ErrQuizNotFound
	}
	return nil
}

// DeleteQuiz removes a quiz. Answers go with it via ON DELETE CASCADE.
func (r *QuizRepository) DeleteQuiz(ctx context.Context, id int64) error {
	sqlStr, args, err := squirrel.Delete("quizzes").
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
		return apperrors.ErrQuizNotFound
	}
	return nil
}

// GetQuizByID retrieves a quiz by ID.
func (r *QuizRepository) GetQuizByID(ctx context.Context, id int64) (*models.Quiz, error) {
	sqlStr, args, err := squirrel.Select(quizColumns).
		From("quizzes").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}
	return scanQuiz(r.DB.QueryRow(ctx, sqlStr, args...))
}

// GetQuizzesByCourseID retrieves every quiz of a course ordered by section
// and order index.
func (r *QuizRepository) GetQuizzesByCourseID(ctx context.Context, courseID int64) ([]*models.Quiz, error) {
	sqlStr, args, err := squirrel.Select(
		"q.id", "q.section_id", "q.question", "q.correct_answer", "q.order_index", "q.created_at", "q.updated_at",
	).From("quizzes q").
		Join("sections s ON q.section_id = s.id").
		Where(squirrel.Eq{"s.course_id": courseID}).
		OrderBy("s.order_index ASC", "q.order_index ASC", "q.id ASC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.DB.Query(ctx, sqlStr, args...)
	if err != nil {
		logger.Error().Err(err).Int64("courseId", courseID).Msg("Error listing quizzes")
		return nil, err
	}
	defer rows.Close()

	var quizzes []*models.Quiz
	for rows.Next() {
		quiz, err := scanQuiz(rows)
		if err != nil {
			return nil, err
		}
		quizzes = append(quizzes, quiz)
	}
	return quizzes, rows.Err()
}

// CountQuizzesByCourseID counts the quizzes of a course.
func (r *QuizRepository) CountQuizzesByCourseID(ctx context.Context, courseID int64) (int64, error) {
	sqlStr, args, err := squirrel.Select("count(*)").
		From("quizzes q").
		Join("sections s ON q.section_id = s.id").
		Where(squirrel.Eq{"s.course_id": courseID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return 0, err
	}

	var count int64
	if err := r.DB.QueryRow(ctx, sqlStr, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// GetCourseIDByQuizID resolves the course a quiz belongs to.
func (r *QuizRepository) GetCourseIDByQuizID(ctx context.Context, quizID int64) (int64, error) {
	sqlStr, args, err := squirrel.Select("s.course_id").
		From("quizzes q").
		Join("sections s ON q.section_id = s.id").
		Where(squirrel.Eq{"q.id": quizID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return 0, err
	}

	var courseID int64
	err = r.DB.QueryRow(ctx, sqlStr, args...).Scan(&courseID)
	if err == pgx.ErrNoRows {
		return 0, apperrors.ErrQuizNotFound
	}
	if err != nil {
		return 0, err
	}
	return courseID, nil
}
