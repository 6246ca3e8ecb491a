package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/kerem/learnly/internal/app/models"
	"github.com/kerem/learnly/internal/app/models/dto"
	"github.com/kerem/learnly/internal/app/repositories"
	"github.com/kerem/learnly/internal/pkg/apperrors"
)

// maskPassthrough are the runes a masked answer keeps. Everything else
// becomes an underscore, so the placeholder reveals the answer's shape but
// not its letters.
const maskPassthrough = " -',.!?:;"

// maskAnswer renders a quiz answer as its placeholder form.
func maskAnswer(answer string) string {
	var b strings.Builder
	b.Grow(len(answer))
	for _, r := range answer {
		if strings.ContainsRune(maskPassthrough, r) {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}

// CourseViewStore is what the learner-facing reads need from the persistence
// layer. repositories.CourseEditorStore satisfies it.
type CourseViewStore interface {
	GetCourseByID(ctx context.Context, id int64) (*models.Course, error)
	GetCourseBySlug(ctx context.Context, slug string) (*models.Course, error)
	GetSectionsByCourseID(ctx context.Context, courseID int64) ([]*models.Section, error)
	GetContentsByCourseID(ctx context.Context, courseID int64) ([]*models.Content, error)
	GetQuizzesByCourseID(ctx context.Context, courseID int64) ([]*models.Quiz, error)
	ListCourses(ctx context.Context, params repositories.ListCoursesParams) ([]*models.Course, dto.PaginationInfo, error)
	IsSaved(ctx context.Context, userID, courseID int64) (bool, error)
	SaveCourse(ctx context.Context, userID, courseID int64) error
	UnsaveCourse(ctx context.Context, userID, courseID int64) error
	IsCompleted(ctx context.Context, userID, courseID int64) (bool, error)
}

// AnswerReader is the answered-quiz lookup the assembler needs.
type AnswerReader interface {
	GetAnsweredQuizIDs(ctx context.Context, userID, courseID int64) (map[int64]bool, error)
}

// ScheduleReader resolves a learner's nearest upcoming schedule for a course.
type ScheduleReader interface {
	GetFutureByUserAndCourse(ctx context.Context, userID, courseID int64, now time.Time) (*models.ScheduledCourse, error)
}

// ICourseViewService defines the learner-facing course reads.
type ICourseViewService interface {
	// GetCourseBySlug assembles the full course tree for a learner.
	// Unanswered quizzes carry a masked placeholder; answered ones the
	// revealed answer.
	GetCourseBySlug(ctx context.Context, slug string, userID int64) (*dto.CourseView, error)

	// ListCourses returns a filtered, paginated course listing.
	ListCourses(ctx context.Context, params repositories.ListCoursesParams) (*dto.CourseListResponse, error)

	// ToggleSave flips the course on or off the user's saved list and
	// reports the resulting state.
	ToggleSave(ctx context.Context, userID, courseID int64) (bool, error)
}

type courseViewService struct {
	store     CourseViewStore
	answers   AnswerReader
	schedules ScheduleReader
}

// NewCourseViewService creates a new course view service.
func NewCourseViewService(store CourseViewStore, answers AnswerReader, schedules ScheduleReader) ICourseViewService {
	return &courseViewService{
		store:     store,
		answers:   answers,
		schedules: schedules,
	}
}

func (s *courseViewService) GetCourseBySlug(ctx context.Context, slug string, userID int64) (*dto.CourseView, error) {
	course, err := s.store.GetCourseBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	sections, err := s.store.GetSectionsByCourseID(ctx, course.ID)
	if err != nil {
		return nil, err
	}
	contents, err := s.store.GetContentsByCourseID(ctx, course.ID)
	if err != nil {
		return nil, err
	}
	quizzes, err := s.store.GetQuizzesByCourseID(ctx, course.ID)
	if err != nil {
		return nil, err
	}
	answered, err := s.answers.GetAnsweredQuizIDs(ctx, userID, course.ID)
	if err != nil {
		return nil, err
	}

	saved, err := s.store.IsSaved(ctx, userID, course.ID)
	if err != nil {
		return nil, err
	}
	completed, err := s.store.IsCompleted(ctx, userID, course.ID)
	if err != nil {
		return nil, err
	}

	view := &dto.CourseView{
		ID:                      course.ID,
		Title:                   course.Title,
		Slug:                    course.Slug,
		Description:             course.Description,
		Difficulty:              course.Difficulty,
		EstimatedCompletionTime: course.EstimatedCompletionTime,
		Status:                  course.Status,
		Sections:                assembleSections(sections, contents, quizzes, answered),
		Saved:                   saved,
		Completed:               completed,
	}

	schedule, err := s.schedules.GetFutureByUserAndCourse(ctx, userID, course.ID, time.Now())
	if err != nil && !errors.Is(err, apperrors.ErrNotScheduled) {
		return nil, err
	}
	if schedule != nil {
		view.ScheduledTime = &schedule.ScheduledTime
	}

	return view, nil
}

// assembleSections nests contents and quizzes under their sections. Inputs
// arrive ordered by section and order index, so appending preserves order.
func assembleSections(sections []*models.Section, contents []*models.Content, quizzes []*models.Quiz, answered map[int64]bool) []dto.SectionView {
	views := make([]dto.SectionView, 0, len(sections))
	index := make(map[int64]int, len(sections))

	for i, sec := range sections {
		index[sec.ID] = i
		views = append(views, dto.SectionView{
			ID:       sec.ID,
			Title:    sec.Title,
			Order:    sec.OrderIndex,
			Contents: []dto.ContentView{},
			Quizzes:  []dto.QuizView{},
		})
	}

	for _, c := range contents {
		i, ok := index[c.SectionID]
		if !ok {
			continue
		}
		views[i].Contents = append(views[i].Contents, dto.ContentView{
			ID:                 c.ID,
			ContentType:        c.ContentType,
			Order:              c.OrderIndex,
			TextContent:        c.TextContent,
			Image:              c.Image,
			AltText:            c.AltText,
			VideoURL:           c.VideoURL,
			VideoTranscription: c.VideoTranscription,
		})
	}

	for _, q := range quizzes {
		i, ok := index[q.SectionID]
		if !ok {
			continue
		}
		qv := dto.QuizView{
			ID:       q.ID,
			Question: q.Question,
			Order:    q.OrderIndex,
			Answered: answered[q.ID],
		}
		if qv.Answered {
			qv.Answer = q.CorrectAnswer
		} else {
			qv.Placeholder = maskAnswer(q.CorrectAnswer)
		}
		views[i].Quizzes = append(views[i].Quizzes, qv)
	}

	return views
}

func (s *courseViewService) ListCourses(ctx context.Context, params repositories.ListCoursesParams) (*dto.CourseListResponse, error) {
	courses, pagination, err := s.store.ListCourses(ctx, params)
	if err != nil {
		return nil, err
	}

	items := make([]dto.CourseListItem, 0, len(courses))
	for _, c := range courses {
		items = append(items, dto.CourseListItem{
			ID:                      c.ID,
			Title:                   c.Title,
			Slug:                    c.Slug,
			Description:             c.Description,
			Difficulty:              c.Difficulty,
			EstimatedCompletionTime: c.EstimatedCompletionTime,
			Status:                  c.Status,
		})
	}

	return &dto.CourseListResponse{Courses: items, Pagination: pagination}, nil
}

func (s *courseViewService) ToggleSave(ctx context.Context, userID, courseID int64) (bool, error) {
	if _, err := s.store.GetCourseByID(ctx, courseID); err != nil {
		return false, err
	}

	saved, err := s.store.IsSaved(ctx, userID, courseID)
	if err != nil {
		return false, err
	}

	if saved {
		if err := s.store.UnsaveCourse(ctx, userID, courseID); err != nil {
			return false, err
		}
		return false, nil
	}
	if err := s.store.SaveCourse(ctx, userID, courseID); err != nil {
		return false, err
	}
	return true, nil
}
