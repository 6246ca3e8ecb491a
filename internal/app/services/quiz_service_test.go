package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kerem/learnly/internal/app/models"
	"github.com/kerem/learnly/internal/pkg/apperrors"
)

func TestAnswersMatch(t *testing.T) {
	tests := []struct {
		name      string
		submitted string
		correct   string
		want      bool
	}{
		{name: "exact", submitted: "func", correct: "func", want: true},
		{name: "case insensitive", submitted: "FUNC", correct: "func", want: true},
		{name: "surrounding whitespace ignored", submitted: "  func \n", correct: "func", want: true},
		{name: "wrong answer", submitted: "var", correct: "func", want: false},
		{name: "inner whitespace matters", submitted: "fu nc", correct: "func", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, answersMatch(tt.submitted, tt.correct))
		})
	}
}

// fakeQuizStore backs QuizReader, AnswerStore, CompletionStore and
// ScheduleCanceller with in-memory state for one course.
type fakeQuizStore struct {
	courseID  int64
	quizzes   map[int64]*models.Quiz
	answers   map[int64]map[int64]bool // userID -> quizID
	completed map[int64]bool           // userID
	cancelled []int64                  // userIDs whose schedules were dropped
}

func newFakeQuizStore(courseID int64, quizzes ...*models.Quiz) *fakeQuizStore {
	f := &fakeQuizStore{
		courseID:  courseID,
		quizzes:   make(map[int64]*models.Quiz),
		answers:   make(map[int64]map[int64]bool),
		completed: make(map[int64]bool),
	}
	for _, q := range quizzes {
		f.quizzes[q.ID] = q
	}
	return f
}

func (f *fakeQuizStore) GetQuizByID(_ context.Context, id int64) (*models.Quiz, error) {
	q, ok := f.quizzes[id]
	if !ok {
		return nil, apperrors.ErrQuizNotFound
	}
	return q, nil
}

func (f *fakeQuizStore) GetCourseIDByQuizID(_ context.Context, quizID int64) (int64, error) {
	if _, ok := f.quizzes[quizID]; !ok {
		return 0, apperrors.ErrQuizNotFound
	}
	return f.courseID, nil
}

func (f *fakeQuizStore) CountQuizzesByCourseID(context.Context, int64) (int64, error) {
	return int64(len(f.quizzes)), nil
}

func (f *fakeQuizStore) RecordAnswer(_ context.Context, userID, quizID int64) error {
	if f.answers[userID] == nil {
		f.answers[userID] = make(map[int64]bool)
	}
	f.answers[userID][quizID] = true
	return nil
}

func (f *fakeQuizStore) CountAnswersByCourse(_ context.Context, userID, _ int64) (int64, error) {
	return int64(len(f.answers[userID])), nil
}

func (f *fakeQuizStore) IsCompleted(_ context.Context, userID, _ int64) (bool, error) {
	return f.completed[userID], nil
}

func (f *fakeQuizStore) MarkCompleted(_ context.Context, userID, _ int64) error {
	f.completed[userID] = true
	return nil
}

func (f *fakeQuizStore) DeleteFutureByUserAndCourse(_ context.Context, userID, _ int64, _ time.Time) error {
	f.cancelled = append(f.cancelled, userID)
	return nil
}

func newQuizFixture() (*fakeQuizStore, IQuizService) {
	store := newFakeQuizStore(1,
		&models.Quiz{ID: 10, SectionID: 2, Question: "Q1", CorrectAnswer: "func"},
		&models.Quiz{ID: 11, SectionID: 2, Question: "Q2", CorrectAnswer: "go build"},
	)
	return store, NewQuizService(store, store, store, store)
}

func TestSubmitAnswerIncorrect(t *testing.T) {
	store, svc := newQuizFixture()

	resp, err := svc.SubmitAnswer(context.Background(), 5, 10, "wrong")
	require.NoError(t, err)
	assert.False(t, resp.Correct)
	assert.Empty(t, resp.CorrectAnswer)
	assert.False(t, resp.CourseCompleted)

	// Incorrect answers are never recorded.
	assert.Empty(t, store.answers[5])
}

func TestSubmitAnswerCorrectButCourseOpen(t *testing.T) {
	store, svc := newQuizFixture()

	resp, err := svc.SubmitAnswer(context.Background(), 5, 10, " FUNC ")
	require.NoError(t, err)
	assert.True(t, resp.Correct)
	assert.Equal(t, "func", resp.CorrectAnswer)
	assert.False(t, resp.CourseCompleted)
	assert.True(t, store.answers[5][10])
	assert.False(t, store.completed[5])
}

func TestSubmitAnswerLastQuizCompletesCourse(t *testing.T) {
	store, svc := newQuizFixture()

	_, err := svc.SubmitAnswer(context.Background(), 5, 10, "func")
	require.NoError(t, err)

	resp, err := svc.SubmitAnswer(context.Background(), 5, 11, "Go Build")
	require.NoError(t, err)
	assert.True(t, resp.Correct)
	assert.True(t, resp.CourseCompleted)
	assert.True(t, store.completed[5])

	// Completing the course cancels its upcoming schedules.
	assert.Equal(t, []int64{5}, store.cancelled)
}

func TestSubmitAnswerCompletionFiresOnce(t *testing.T) {
	store, svc := newQuizFixture()

	_, err := svc.SubmitAnswer(context.Background(), 5, 10, "func")
	require.NoError(t, err)
	_, err = svc.SubmitAnswer(context.Background(), 5, 11, "go build")
	require.NoError(t, err)

	// Re-answering a quiz of a finished course stays correct but never
	// reports completion again.
	resp, err := svc.SubmitAnswer(context.Background(), 5, 11, "go build")
	require.NoError(t, err)
	assert.True(t, resp.Correct)
	assert.False(t, resp.CourseCompleted)
	assert.Len(t, store.cancelled, 1)
}

func TestSubmitAnswerQuizNotFound(t *testing.T) {
	_, svc := newQuizFixture()

	_, err := svc.SubmitAnswer(context.Background(), 5, 999, "func")
	assert.ErrorIs(t, err, apperrors.ErrQuizNotFound)
}
