package repositories

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/kerem/learnly/internal/pkg/logger"
)

// AnswerRepository handles database operations for Answer.
type AnswerRepository struct {
	DB DBTX
}

// NewAnswerRepository creates a new instance of AnswerRepository.
func NewAnswerRepository(db DBTX) *AnswerRepository {
	return &AnswerRepository{DB: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *AnswerRepository) WithTx(tx DBTX) *AnswerRepository {
	return &AnswerRepository{DB: tx}
}

// RecordAnswer records a correct answer for the user. The UNIQUE(user_id,
// quiz_id) constraint makes repeated correct submissions a no-op.
func (r *AnswerRepository) RecordAnswer(ctx context.Context, userID, quizID int64) error {
	sqlStr, args, err := squirrel.Insert("answers").
		Columns("user_id", "quiz_id").
		Values(userID, quizID).
		Suffix("ON CONFLICT (user_id, quiz_id) DO NOTHING").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building record answer SQL")
		return err
	}
	_, err = r.DB.Exec(ctx, sqlStr, args...)
	return err
}

// HasAnswered reports whether the user has already answered the quiz.
func (r *AnswerRepository) HasAnswered(ctx context.Context, userID, quizID int64) (bool, error) {
	sqlStr, args, err := squirrel.Select("1").
		From("answers").
		Where(squirrel.Eq{"user_id": userID, "quiz_id": quizID}).
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

// GetAnsweredQuizIDs returns the ids of the course's quizzes the user has
// answered.
func (r *AnswerRepository) GetAnsweredQuizIDs(ctx context.Context, userID, courseID int64) (map[int64]bool, error) {
	sqlStr, args, err := squirrel.Select("a.quiz_id").
		From("answers a").
		Join("quizzes q ON a.quiz_id = q.id").
		Join("sections s ON q.section_id = s.id").
		Where(squirrel.Eq{"a.user_id": userID, "s.course_id": courseID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.DB.Query(ctx, sqlStr, args...)
	if err != nil {
		logger.Error().Err(err).Int64("courseId", courseID).Msg("Error listing answered quizzes")
		return nil, err
	}
	defer rows.Close()

	answered := make(map[int64]bool)
	for rows.Next() {
		var quizID int64
		if err := rows.Scan(&quizID); err != nil {
			return nil, err
		}
		answered[quizID] = true
	}
	return answered, rows.Err()
}

// CountAnswersByCourse counts how many of the course's quizzes the user has
// answered.
func (r *AnswerRepository) CountAnswersByCourse(ctx context.Context, userID, courseID int64) (int64, error) {
	sqlStr, args, err := squirrel.Select("count(*)").
		From("answers a").
		Join("quizzes q ON a.quiz_id = q.id").
		Join("sections s ON q.section_id = s.id").
		Where(squirrel.Eq{"a.user_id": userID, "s.course_id": courseID}).
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
