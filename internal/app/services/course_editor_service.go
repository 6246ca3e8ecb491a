package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/kerem/learnly/internal/app/models"
	"github.com/kerem/learnly/internal/app/models/dto"
	"github.com/kerem/learnly/internal/db"
	"github.com/kerem/learnly/internal/pkg/apperrors"
	"github.com/kerem/learnly/internal/pkg/filestorage"
	"github.com/kerem/learnly/internal/pkg/helpers"
	"github.com/kerem/learnly/internal/pkg/logger"
	"github.com/kerem/learnly/internal/pkg/validation"
)

// TxRunner runs a function inside a database transaction.
type TxRunner interface {
	WithTransaction(ctx context.Context, fn db.TransactionFn) error
}

// EditorStore is what the authoring flow needs from the persistence layer.
// repositories.CourseEditorStore satisfies it.
type EditorStore interface {
	CreateCourse(ctx context.Context, course *models.Course) (int64, error)
	UpdateCourse(ctx context.Context, course *models.Course) error
	DeleteCourse(ctx context.Context, id int64) error
	GetCourseByID(ctx context.Context, id int64) (*models.Course, error)
	TitleExists(ctx context.Context, title string, excludeID *int64) (bool, error)

	CreateSection(ctx context.Context, section *models.Section) (int64, error)
	UpdateSection(ctx context.Context, section *models.Section) error
	DeleteSection(ctx context.Context, id int64) error
	GetSectionsByCourseID(ctx context.Context, courseID int64) ([]*models.Section, error)

	CreateContent(ctx context.Context, content *models.Content) (int64, error)
	UpdateContent(ctx context.Context, content *models.Content) error
	DeleteContent(ctx context.Context, id int64) error
	GetContentsByCourseID(ctx context.Context, courseID int64) ([]*models.Content, error)

	CreateQuiz(ctx context.Context, quiz *models.Quiz) (int64, error)
	UpdateQuiz(ctx context.Context, quiz *models.Quiz) error
	DeleteQuiz(ctx context.Context, id int64) error
	GetQuizzesByCourseID(ctx context.Context, courseID int64) ([]*models.Quiz, error)
}

// EditorStoreFactory resolves a store bound to the given transaction. A nil
// tx yields the pool-bound store.
type EditorStoreFactory func(tx pgx.Tx) EditorStore

// EditResult is the outcome of a course submission. Exactly one of the three
// shapes applies: Deleted, ValidationErrors (with the echoed Snapshot), or
// Course on success.
type EditResult struct {
	Course           *models.Course
	Deleted          bool
	ValidationErrors *dto.ValidationErrors
	Snapshot         *dto.CourseSnapshot
}

// ICourseEditorService defines the course authoring operations.
type ICourseEditorService interface {
	// SubmitCourse applies one authoring submission: course fields, the
	// action token and every row collection, atomically.
	SubmitCourse(ctx context.Context, userID int64, courseID *int64, submission *dto.CourseSubmission) (*EditResult, error)

	// LoadCourseForEdit returns the persisted course as a snapshot the
	// authoring form can be prefilled from.
	LoadCourseForEdit(ctx context.Context, courseID int64) (*dto.CourseSnapshot, error)
}

type courseEditorService struct {
	txRunner TxRunner
	store    EditorStore
	stores   EditorStoreFactory
	files    filestorage.FileStorage
}

// NewCourseEditorService creates a new course editor service.
func NewCourseEditorService(txRunner TxRunner, store EditorStore, stores EditorStoreFactory, files filestorage.FileStorage) ICourseEditorService {
	return &courseEditorService{
		txRunner: txRunner,
		store:    store,
		stores:   stores,
		files:    files,
	}
}

func (s *courseEditorService) SubmitCourse(ctx context.Context, userID int64, courseID *int64, submission *dto.CourseSubmission) (*EditResult, error) {
	if !dto.ValidEditAction(submission.Action) {
		return nil, apperrors.NewCustomError(apperrors.ErrUnknownAction,
			fmt.Sprintf("unknown action %q", submission.Action))
	}

	if submission.Action == dto.ActionDeleteCourse {
		if courseID == nil {
			return nil, apperrors.NewBadRequestError("cannot delete a course that has not been created")
		}
		return s.deleteCourse(ctx, *courseID)
	}

	sub := filterBlankRows(submission)

	verrs, err := s.validate(ctx, courseID, sub)
	if err != nil {
		return nil, err
	}
	if verrs.HasErrors() {
		return &EditResult{
			ValidationErrors: verrs,
			Snapshot:         snapshotFromSubmission(courseID, sub),
		}, nil
	}

	var course *models.Course
	var cleanupFiles []string

	err = s.txRunner.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		store := s.stores(tx)

		var err error
		course, err = s.persistCourse(ctx, store, userID, courseID, sub)
		if err != nil {
			return err
		}

		router, err := s.reconcileSections(ctx, store, course.ID, sub.Sections)
		if err != nil {
			return err
		}

		files, err := s.reconcileContents(ctx, store, course.ID, router, sub)
		if err != nil {
			return err
		}
		cleanupFiles = files

		return s.reconcileQuizzes(ctx, store, course.ID, router, sub.Quizzes)
	})
	if err != nil {
		return nil, err
	}

	// Backing files are removed only after the transaction committed, so a
	// rollback never leaves a row pointing at a deleted file.
	s.removeFiles(cleanupFiles)

	return &EditResult{Course: course}, nil
}

func (s *courseEditorService) deleteCourse(ctx context.Context, courseID int64) (*EditResult, error) {
	var cleanupFiles []string

	err := s.txRunner.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		store := s.stores(tx)

		contents, err := store.GetContentsByCourseID(ctx, courseID)
		if err != nil {
			return err
		}
		for _, c := range contents {
			if c.ContentType == models.ContentTypeImage && c.Image != "" {
				cleanupFiles = append(cleanupFiles, c.Image)
			}
		}

		return store.DeleteCourse(ctx, courseID)
	})
	if err != nil {
		return nil, err
	}

	s.removeFiles(cleanupFiles)

	return &EditResult{Deleted: true}, nil
}

// validate checks the course fields and every surviving row before anything
// touches the database. A failed validation returns the errors without
// opening a transaction.
func (s *courseEditorService) validate(ctx context.Context, courseID *int64, sub *dto.CourseSubmission) (*dto.ValidationErrors, error) {
	verrs := dto.NewValidationErrors()

	title := strings.TrimSpace(sub.Title)
	if title == "" {
		verrs.AddError("title", "Title is required")
	} else {
		exists, err := s.store.TitleExists(ctx, title, courseID)
		if err != nil {
			return nil, err
		}
		if exists {
			verrs.AddError("title", "A course with this title already exists")
		}
	}

	if !models.ValidDifficulty(sub.Difficulty) {
		verrs.AddError("difficulty", "Difficulty must be junior, intermediate or advanced")
	}
	if sub.EstimatedCompletionTime < 0 {
		verrs.AddError("estimatedCompletionTime", "Estimated completion time cannot be negative")
	}

	// Publishing demands a presentable course; drafts may stay partial.
	if sub.Action == dto.ActionPublish {
		if strings.TrimSpace(sub.Description) == "" {
			verrs.AddError("description", "Description is required to publish")
		}
		if sub.EstimatedCompletionTime == 0 {
			verrs.AddError("estimatedCompletionTime", "Estimated completion time is required to publish")
		}
		surviving := 0
		for _, r := range sub.Sections {
			if r.Op() != dto.RowDelete {
				surviving++
			}
		}
		if surviving == 0 {
			verrs.AddError("sections", "A published course needs at least one section")
		}
	}

	for i, r := range sub.Sections {
		if r.Op() == dto.RowDelete {
			continue
		}
		if strings.TrimSpace(r.Title) == "" {
			verrs.AddError(fmt.Sprintf("sections[%d].title", i), "Section title is required")
		}
	}
	for i, r := range sub.TextContents {
		if r.Op() == dto.RowDelete {
			continue
		}
		if strings.TrimSpace(r.TextContent) == "" {
			verrs.AddError(fmt.Sprintf("textContents[%d].textContent", i), "Text content is required")
		}
	}
	for i, r := range sub.ImageContents {
		if r.Op() == dto.RowDelete {
			continue
		}
		if strings.TrimSpace(r.Image) == "" {
			verrs.AddError(fmt.Sprintf("imageContents[%d].image", i), "Image is required")
		}
	}
	for i, r := range sub.VideoContents {
		if r.Op() == dto.RowDelete {
			continue
		}
		if !validation.IsValidVideoURL(strings.TrimSpace(r.VideoURL)) {
			verrs.AddError(fmt.Sprintf("videoContents[%d].videoUrl", i), "Video URL must point to YouTube or Vimeo")
		}
	}
	for i, r := range sub.Quizzes {
		if r.Op() == dto.RowDelete {
			continue
		}
		if strings.TrimSpace(r.Question) == "" {
			verrs.AddError(fmt.Sprintf("quizzes[%d].question", i), "Quiz question is required")
		}
		if strings.TrimSpace(r.CorrectAnswer) == "" {
			verrs.AddError(fmt.Sprintf("quizzes[%d].correctAnswer", i), "Quiz answer is required")
		}
	}

	return verrs, nil
}

// persistCourse creates or updates the course row. The slug is derived from
// the title on create and regenerated only when the title changes.
func (s *courseEditorService) persistCourse(ctx context.Context, store EditorStore, userID int64, courseID *int64, sub *dto.CourseSubmission) (*models.Course, error) {
	status := models.CourseStatusDraft
	if sub.Action == dto.ActionPublish {
		status = models.CourseStatusPublished
	}

	title := strings.TrimSpace(sub.Title)

	if courseID == nil {
		course := &models.Course{
			Title:                   title,
			Slug:                    helpers.Slugify(title),
			Description:             sub.Description,
			Difficulty:              sub.Difficulty,
			EstimatedCompletionTime: sub.EstimatedCompletionTime,
			Status:                  status,
			CreatedBy:               &userID,
		}
		id, err := store.CreateCourse(ctx, course)
		if err != nil {
			return nil, err
		}
		course.ID = id
		return course, nil
	}

	course, err := store.GetCourseByID(ctx, *courseID)
	if err != nil {
		return nil, err
	}
	if course.Title != title {
		course.Slug = helpers.Slugify(title)
	}
	course.Title = title
	course.Description = sub.Description
	course.Difficulty = sub.Difficulty
	course.EstimatedCompletionTime = sub.EstimatedCompletionTime
	course.Status = status

	if err := store.UpdateCourse(ctx, course); err != nil {
		return nil, err
	}
	return course, nil
}

// reconcileSections applies the section rows and returns the router: a map
// from each surviving row's client-supplied order marker to the persisted
// section id. Child rows resolve their parent through it.
func (s *courseEditorService) reconcileSections(ctx context.Context, store EditorStore, courseID int64, rows []dto.SectionRow) (map[int]int64, error) {
	existing, err := store.GetSectionsByCourseID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]*models.Section, len(existing))
	for _, sec := range existing {
		byID[sec.ID] = sec
	}

	router := make(map[int]int64)

	for _, r := range rows {
		switch r.Op() {
		case dto.RowDelete:
			if r.ID == nil {
				continue
			}
			if _, ok := byID[*r.ID]; !ok {
				return nil, apperrors.NewStaleRowError(fmt.Sprintf("section %d does not belong to this course", *r.ID))
			}
			if err := store.DeleteSection(ctx, *r.ID); err != nil {
				return nil, err
			}
			delete(byID, *r.ID)

		case dto.RowUpdate:
			if _, ok := byID[*r.ID]; !ok {
				return nil, apperrors.NewStaleRowError(fmt.Sprintf("section %d does not belong to this course", *r.ID))
			}
			sec := &models.Section{ID: *r.ID, CourseID: courseID, Title: r.Title, OrderIndex: r.Order}
			if err := store.UpdateSection(ctx, sec); err != nil {
				return nil, err
			}
			router[r.Order] = *r.ID

		case dto.RowNew:
			sec := &models.Section{CourseID: courseID, Title: r.Title, OrderIndex: r.Order}
			id, err := store.CreateSection(ctx, sec)
			if err != nil {
				return nil, err
			}
			router[r.Order] = id
		}
	}

	return router, nil
}

// reconcileContents applies the three content row collections. It returns
// the backing files that became unreferenced and must be removed after
// commit.
func (s *courseEditorService) reconcileContents(ctx context.Context, store EditorStore, courseID int64, router map[int]int64, sub *dto.CourseSubmission) ([]string, error) {
	existing, err := store.GetContentsByCourseID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]*models.Content, len(existing))
	for _, c := range existing {
		byID[c.ID] = c
	}

	var cleanupFiles []string

	apply := func(id *int64, del bool, contentType models.ContentType, sectionOrder int, build func(sectionID int64) *models.Content) error {
		op := dto.RowNew
		if del {
			op = dto.RowDelete
		} else if id != nil {
			op = dto.RowUpdate
		}

		switch op {
		case dto.RowDelete:
			if id == nil {
				return nil
			}
			old, ok := byID[*id]
			if !ok {
				// Already gone: its section was deleted earlier in this
				// submission and the cascade took the row with it.
				return nil
			}
			if old.ContentType == models.ContentTypeImage && old.Image != "" {
				cleanupFiles = append(cleanupFiles, old.Image)
			}
			if err := store.DeleteContent(ctx, *id); err != nil {
				return err
			}
			delete(byID, *id)
			return nil

		case dto.RowUpdate:
			old, ok := byID[*id]
			if !ok || old.ContentType != contentType {
				return apperrors.NewStaleRowError(fmt.Sprintf("content %d does not belong to this course", *id))
			}
			sectionID, ok := router[sectionOrder]
			if !ok {
				// The row points at a section absent from this
				// submission: an orphaned leftover, skipped.
				return nil
			}
			content := build(sectionID)
			content.ID = *id
			if contentType == models.ContentTypeImage && old.Image != "" && old.Image != content.Image {
				cleanupFiles = append(cleanupFiles, old.Image)
			}
			return store.UpdateContent(ctx, content)

		default:
			sectionID, ok := router[sectionOrder]
			if !ok {
				return nil
			}
			_, err := store.CreateContent(ctx, build(sectionID))
			return err
		}
	}

	for _, r := range sub.TextContents {
		r := r
		err := apply(r.ID, r.Delete, models.ContentTypeText, r.SectionOrder, func(sectionID int64) *models.Content {
			return &models.Content{
				SectionID:   sectionID,
				ContentType: models.ContentTypeText,
				TextContent: r.TextContent,
				OrderIndex:  r.Order,
			}
		})
		if err != nil {
			return nil, err
		}
	}
	for _, r := range sub.ImageContents {
		r := r
		err := apply(r.ID, r.Delete, models.ContentTypeImage, r.SectionOrder, func(sectionID int64) *models.Content {
			return &models.Content{
				SectionID:   sectionID,
				ContentType: models.ContentTypeImage,
				Image:       r.Image,
				AltText:     r.AltText,
				OrderIndex:  r.Order,
			}
		})
		if err != nil {
			return nil, err
		}
	}
	for _, r := range sub.VideoContents {
		r := r
		err := apply(r.ID, r.Delete, models.ContentTypeVideo, r.SectionOrder, func(sectionID int64) *models.Content {
			return &models.Content{
				SectionID:          sectionID,
				ContentType:        models.ContentTypeVideo,
				VideoURL:           r.VideoURL,
				VideoTranscription: r.VideoTranscription,
				OrderIndex:         r.Order,
			}
		})
		if err != nil {
			return nil, err
		}
	}

	return cleanupFiles, nil
}

func (s *courseEditorService) reconcileQuizzes(ctx context.Context, store EditorStore, courseID int64, router map[int]int64, rows []dto.QuizRow) error {
	existing, err := store.GetQuizzesByCourseID(ctx, courseID)
	if err != nil {
		return err
	}
	byID := make(map[int64]*models.Quiz, len(existing))
	for _, q := range existing {
		byID[q.ID] = q
	}

	for _, r := range rows {
		switch r.Op() {
		case dto.RowDelete:
			if r.ID == nil {
				continue
			}
			if _, ok := byID[*r.ID]; !ok {
				// Cascade-removed with its section earlier in this
				// submission.
				continue
			}
			if err := store.DeleteQuiz(ctx, *r.ID); err != nil {
				return err
			}
			delete(byID, *r.ID)

		case dto.RowUpdate:
			if _, ok := byID[*r.ID]; !ok {
				return apperrors.NewStaleRowError(fmt.Sprintf("quiz %d does not belong to this course", *r.ID))
			}
			sectionID, ok := router[r.SectionOrder]
			if !ok {
				continue
			}
			quiz := &models.Quiz{
				ID:            *r.ID,
				SectionID:     sectionID,
				Question:      r.Question,
				CorrectAnswer: r.CorrectAnswer,
				OrderIndex:    r.Order,
			}
			if err := store.UpdateQuiz(ctx, quiz); err != nil {
				return err
			}

		case dto.RowNew:
			sectionID, ok := router[r.SectionOrder]
			if !ok {
				continue
			}
			quiz := &models.Quiz{
				SectionID:     sectionID,
				Question:      r.Question,
				CorrectAnswer: r.CorrectAnswer,
				OrderIndex:    r.Order,
			}
			if _, err := store.CreateQuiz(ctx, quiz); err != nil {
				return err
			}
		}
	}

	return nil
}

func (s *courseEditorService) removeFiles(paths []string) {
	for _, p := range paths {
		if err := s.files.DeleteFile(p); err != nil {
			logger.Warn().Err(err).Str("path", p).Msg("Failed to remove unreferenced file")
		}
	}
}

func (s *courseEditorService) LoadCourseForEdit(ctx context.Context, courseID int64) (*dto.CourseSnapshot, error) {
	course, err := s.store.GetCourseByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	sections, err := s.store.GetSectionsByCourseID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	contents, err := s.store.GetContentsByCourseID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	quizzes, err := s.store.GetQuizzesByCourseID(ctx, courseID)
	if err != nil {
		return nil, err
	}

	return snapshotFromModels(course, sections, contents, quizzes), nil
}
