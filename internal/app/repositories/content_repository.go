package repositories

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/kerem/learnly/internal/app/models"
	"github.com/kerem/learnly/internal/pkg/apperrors"
	"github.com/kerem/learnly/internal/pkg/logger"
)

// ContentRepository handles database operations for Content.
type ContentRepository struct {
	DB DBTX
}

// NewContentRepository creates a new instance of ContentRepository.
func NewContentRepository(db DBTX) *ContentRepository {
	return &ContentRepository{DB: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *ContentRepository) WithTx(tx DBTX) *ContentRepository {
	return &ContentRepository{DB: tx}
}

const contentColumns = "id, section_id, content_type, text_content, image, alt_text, video_url, video_transcription, order_index, created_at, updated_at"

func scanContent(row pgx.Row) (*models.Content, error) {
	var c models.Content
	err := row.Scan(
		&c.ID, &c.SectionID, &c.ContentType, &c.TextContent, &c.Image, &c.AltText,
		&c.VideoURL, &c.VideoTranscription, &c.OrderIndex, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrContentNotFound
		}
		logger.Error().Err(err).Msg("Error scanning content")
		return nil, err
	}
	return &c, nil
}

// CreateContent inserts a new content block and returns its id.
func (r *ContentRepository) CreateContent(ctx context.Context, content *models.Content) (int64, error) {
	sqlStr, args, err := squirrel.Insert("contents").
		Columns("section_id", "content_type", "text_content", "image", "alt_text",
			"video_url", "video_transcription", "order_index").
		Values(content.SectionID, content.ContentType, content.TextContent, content.Image,
			content.AltText, content.VideoURL, content.VideoTranscription, content.OrderIndex).
		Suffix("RETURNING id").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create content SQL")
		return 0, err
	}

	var id int64
	if err := r.DB.QueryRow(ctx, sqlStr, args...).Scan(&id); err != nil {
		logger.Error().Err(err).Msg("Error executing create content query")
		return 0, err
	}
	return id, nil
}

// UpdateContent updates a content block's payload and order. The content type
// is fixed at creation and never changes.
func (r *ContentRepository) UpdateContent(ctx context.Context, content *models.Content) error {
	sqlStr, args, err := squirrel.Update("contents").
		Set("section_id", content.SectionID).
		Set("text_content", content.TextContent).
		Set("image", content.Image).
		Set("alt_text", content.AltText).
		Set("video_url", content.VideoURL).
		Set("video_transcription", content.VideoTranscription).
		Set("order_index", content.OrderIndex).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": content.ID}).
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
		return apperrors.ErrContentNotFound
	}
	return nil
}

// DeleteContent removes a content block.
func (r *ContentRepository) DeleteContent(ctx context.Context, id int64) error {
	sqlStr, args, err := squirrel.Delete("contents").
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
		return apperrors.ErrContentNotFound
	}
	return nil
}

// GetContentByID retrieves a content block by ID.
func (r *ContentRepository) GetContentByID(ctx context.Context, id int64) (*models.Content, error) {
	sqlStr, args, err := squirrel.Select(contentColumns).
		From("contents").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}
	return scanContent(r.DB.QueryRow(ctx, sqlStr, args...))
}

// GetContentsByCourseID retrieves every content block of a course ordered by
// section and order index.
func (r *ContentRepository) GetContentsByCourseID(ctx context.Context, courseID int64) ([]*models.Content, error) {
	sqlStr, args, err := squirrel.Select(
		"c.id", "c.section_id", "c.content_type", "c.text_content", "c.image", "c.alt_text",
		"c.video_url", "c.video_transcription", "c.order_index", "c.created_at", "c.updated_at",
	).From("contents c").
		Join("sections s ON c.section_id = s.id").
		Where(squirrel.Eq{"s.course_id": courseID}).
		OrderBy("s.order_index ASC", "c.order_index ASC", "c.id ASC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.DB.Query(ctx, sqlStr, args...)
	if err != nil {
		logger.Error().Err(err).Int64("courseId", courseID).Msg("Error listing contents")
		return nil, err
	}
	defer rows.Close()

	var contents []*models.Content
	for rows.Next() {
		content, err := scanContent(rows)
		if err != nil {
			return nil, err
		}
		contents = append(contents, content)
	}
	return contents, rows.Err()
}
