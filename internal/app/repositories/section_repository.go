package repositories

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/kerem/learnly/internal/app/models"
	"github.com/kerem/learnly/internal/pkg/apperrors"
	"github.com/kerem/learnly/internal/pkg/logger"
)

// SectionRepository handles database operations for Section.
type SectionRepository struct {
	DB DBTX
}

// NewSectionRepository creates a new instance of SectionRepository.
func NewSectionRepository(db DBTX) *SectionRepository {
	return &SectionRepository{DB: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *SectionRepository) WithTx(tx DBTX) *SectionRepository {
	return &SectionRepository{DB: tx}
}

const sectionColumns = "id, course_id, title, order_index, created_at, updated_at"

func scanSection(row pgx.Row) (*models.Section, error) {
	var s models.Section
	err := row.Scan(&s.ID, &s.CourseID, &s.Title, &s.OrderIndex, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrSectionNotFound
		}
		logger.Error().Err(err).Msg("Error scanning section")
		return nil, err
	}
	return &s, nil
}

// CreateSection inserts a new section and returns its id.
func (r *SectionRepository) CreateSection(ctx context.Context, section *models.Section) (int64, error) {
	sqlStr, args, err := squirrel.Insert("sections").
		Columns("course_id", "title", "order_index").
		Values(section.CourseID, section.Title, section.OrderIndex).
		Suffix("RETURNING id").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create section SQL")
		return 0, err
	}

	var id int64
	if err := r.DB.QueryRow(ctx, sqlStr, args...).Scan(&id); err != nil {
		logger.Error().Err(err).Msg("Error executing create section query")
		return 0, err
	}
	return id, nil
}

// UpdateSection updates a section's title and order.
func (r *SectionRepository) UpdateSection(ctx context.Context, section *models.Section) error {
	sqlStr, args, err := squirrel.Update("sections").
		Set("title", section.Title).
		Set("order_index", section.OrderIndex).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": section.ID}).
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
		return apperrors.ErrSectionNotFound
	}
	return nil
}

// DeleteSection removes a section. Contents and quizzes go with it via
// ON DELETE CASCADE.
func (r *SectionRepository) DeleteSection(ctx context.Context, id int64) error {
	sqlStr, args, err := squirrel.Delete("sections").
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
		return apperrors.ErrSectionNotFound
	}
	return nil
}

// GetSectionsByCourseID retrieves the sections of a course ordered by their
// order index.
func (r *SectionRepository) GetSectionsByCourseID(ctx context.Context, courseID int64) ([]*models.Section, error) {
	sqlStr, args, err := squirrel.Select(sectionColumns).
		From("sections").
		Where(squirrel.Eq{"course_id": courseID}).
		OrderBy("order_index ASC", "id ASC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.DB.Query(ctx, sqlStr, args...)
	if err != nil {
		logger.Error().Err(err).Int64("courseId", courseID).Msg("Error listing sections")
		return nil, err
	}
	defer rows.Close()

	var sections []*models.Section
	for rows.Next() {
		section, err := scanSection(rows)
		if err != nil {
			return nil, err
		}
		sections = append(sections, section)
	}
	return sections, rows.Err()
}
