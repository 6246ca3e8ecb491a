package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kerem/learnly/internal/app/models"
	"github.com/kerem/learnly/internal/app/models/dto"
	"github.com/kerem/learnly/internal/app/repositories"
	"github.com/kerem/learnly/internal/pkg/apperrors"
)

func TestMaskAnswer(t *testing.T) {
	tests := []struct {
		name   string
		answer string
		want   string
	}{
		{name: "single word", answer: "Octagon", want: "_______"},
		{name: "spaces kept", answer: "New York", want: "___ ____"},
		{name: "hyphen and apostrophe kept", answer: "it's well-known", want: "__'_ ____-_____"},
		{name: "punctuation kept", answer: "Yes, sir!", want: "___, ___!"},
		{name: "digits masked", answer: "42", want: "__"},
		{name: "empty", answer: "", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, maskAnswer(tt.answer))
		})
	}
}

type fakeViewStore struct {
	course   *models.Course
	sections []*models.Section
	contents []*models.Content
	quizzes  []*models.Quiz
	saved    map[int64]bool
	complete map[int64]bool
}

func (f *fakeViewStore) GetCourseByID(_ context.Context, id int64) (*models.Course, error) {
	if f.course == nil || f.course.ID != id {
		return nil, apperrors.ErrCourseNotFound
	}
	return f.course, nil
}

func (f *fakeViewStore) GetCourseBySlug(_ context.Context, slug string) (*models.Course, error) {
	if f.course == nil || f.course.Slug != slug {
		return nil, apperrors.ErrCourseNotFound
	}
	return f.course, nil
}

func (f *fakeViewStore) GetSectionsByCourseID(context.Context, int64) ([]*models.Section, error) {
	return f.sections, nil
}

func (f *fakeViewStore) GetContentsByCourseID(context.Context, int64) ([]*models.Content, error) {
	return f.contents, nil
}

func (f *fakeViewStore) GetQuizzesByCourseID(context.Context, int64) ([]*models.Quiz, error) {
	return f.quizzes, nil
}

func (f *fakeViewStore) ListCourses(context.Context, repositories.ListCoursesParams) ([]*models.Course, dto.PaginationInfo, error) {
	return []*models.Course{f.course}, dto.PaginationInfo{TotalItems: 1, CurrentPage: 1, PageSize: 10, TotalPages: 1}, nil
}

func (f *fakeViewStore) IsSaved(_ context.Context, userID, _ int64) (bool, error) {
	return f.saved[userID], nil
}

func (f *fakeViewStore) SaveCourse(_ context.Context, userID, _ int64) error {
	f.saved[userID] = true
	return nil
}

func (f *fakeViewStore) UnsaveCourse(_ context.Context, userID, _ int64) error {
	delete(f.saved, userID)
	return nil
}

func (f *fakeViewStore) IsCompleted(_ context.Context, userID, _ int64) (bool, error) {
	return f.complete[userID], nil
}

type fakeAnswerReader struct {
	answered map[int64]bool
}

func (f *fakeAnswerReader) GetAnsweredQuizIDs(context.Context, int64, int64) (map[int64]bool, error) {
	return f.answered, nil
}

type fakeScheduleReader struct {
	schedule *models.ScheduledCourse
}

func (f *fakeScheduleReader) GetFutureByUserAndCourse(_ context.Context, _, _ int64, now time.Time) (*models.ScheduledCourse, error) {
	if f.schedule == nil || !f.schedule.ScheduledTime.After(now) {
		return nil, apperrors.ErrNotScheduled
	}
	return f.schedule, nil
}

func newViewFixture() *fakeViewStore {
	return &fakeViewStore{
		course: &models.Course{
			ID:     1,
			Title:  "Intro to Go",
			Slug:   "intro-to-go",
			Status: models.CourseStatusPublished,
		},
		sections: []*models.Section{
			{ID: 10, CourseID: 1, Title: "Basics", OrderIndex: 1},
			{ID: 11, CourseID: 1, Title: "Practice", OrderIndex: 2},
		},
		contents: []*models.Content{
			{ID: 20, SectionID: 10, ContentType: models.ContentTypeText, TextContent: "Hello", OrderIndex: 1},
		},
		quizzes: []*models.Quiz{
			{ID: 30, SectionID: 11, Question: "What keyword declares a function?", CorrectAnswer: "func", OrderIndex: 1},
			{ID: 31, SectionID: 11, Question: "2+2?", CorrectAnswer: "4", OrderIndex: 2},
		},
		saved:    make(map[int64]bool),
		complete: make(map[int64]bool),
	}
}

func TestGetCourseBySlugMasksUnansweredQuizzes(t *testing.T) {
	store := newViewFixture()
	svc := NewCourseViewService(store, &fakeAnswerReader{answered: map[int64]bool{30: true}}, &fakeScheduleReader{})

	view, err := svc.GetCourseBySlug(context.Background(), "intro-to-go", 5)
	require.NoError(t, err)

	require.Len(t, view.Sections, 2)
	practice := view.Sections[1]
	require.Len(t, practice.Quizzes, 2)

	answeredQuiz := practice.Quizzes[0]
	assert.True(t, answeredQuiz.Answered)
	assert.Empty(t, answeredQuiz.Placeholder)
	assert.Equal(t, "func", answeredQuiz.Answer)

	openQuiz := practice.Quizzes[1]
	assert.False(t, openQuiz.Answered)
	assert.Equal(t, "_", openQuiz.Placeholder)
	assert.Empty(t, openQuiz.Answer)

	assert.Nil(t, view.ScheduledTime)
}

func TestGetCourseBySlugIncludesSchedule(t *testing.T) {
	store := newViewFixture()
	when := time.Now().Add(2 * time.Hour)
	svc := NewCourseViewService(store, &fakeAnswerReader{answered: map[int64]bool{}}, &fakeScheduleReader{
		schedule: &models.ScheduledCourse{UserID: 5, CourseID: 1, ScheduledTime: when},
	})

	view, err := svc.GetCourseBySlug(context.Background(), "intro-to-go", 5)
	require.NoError(t, err)
	require.NotNil(t, view.ScheduledTime)
	assert.True(t, view.ScheduledTime.Equal(when))
}

func TestGetCourseBySlugIgnoresPastSchedule(t *testing.T) {
	store := newViewFixture()
	svc := NewCourseViewService(store, &fakeAnswerReader{answered: map[int64]bool{}}, &fakeScheduleReader{
		schedule: &models.ScheduledCourse{UserID: 5, CourseID: 1, ScheduledTime: time.Now().Add(-2 * time.Hour)},
	})

	view, err := svc.GetCourseBySlug(context.Background(), "intro-to-go", 5)
	require.NoError(t, err)
	assert.Nil(t, view.ScheduledTime)
}

func TestGetCourseBySlugNotFound(t *testing.T) {
	store := newViewFixture()
	svc := NewCourseViewService(store, &fakeAnswerReader{}, &fakeScheduleReader{})

	_, err := svc.GetCourseBySlug(context.Background(), "no-such-course", 5)
	assert.ErrorIs(t, err, apperrors.ErrCourseNotFound)
}

func TestToggleSave(t *testing.T) {
	store := newViewFixture()
	svc := NewCourseViewService(store, &fakeAnswerReader{}, &fakeScheduleReader{})

	saved, err := svc.ToggleSave(context.Background(), 5, 1)
	require.NoError(t, err)
	assert.True(t, saved)

	saved, err = svc.ToggleSave(context.Background(), 5, 1)
	require.NoError(t, err)
	assert.False(t, saved)

	_, err = svc.ToggleSave(context.Background(), 5, 999)
	assert.ErrorIs(t, err, apperrors.ErrCourseNotFound)
}
