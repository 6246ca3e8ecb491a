package services

import (
	"context"
	"strings"
	"time"

	"github.com/kerem/learnly/internal/app/models"
	"github.com/kerem/learnly/internal/app/models/dto"
)

// QuizReader is what answer checking needs from the quiz store.
type QuizReader interface {
	GetQuizByID(ctx context.Context, id int64) (*models.Quiz, error)
	GetCourseIDByQuizID(ctx context.Context, quizID int64) (int64, error)
	CountQuizzesByCourseID(ctx context.Context, courseID int64) (int64, error)
}

// AnswerStore records and counts a learner's correct answers.
type AnswerStore interface {
	RecordAnswer(ctx context.Context, userID, quizID int64) error
	CountAnswersByCourse(ctx context.Context, userID, courseID int64) (int64, error)
}

// CompletionStore tracks finished courses.
type CompletionStore interface {
	IsCompleted(ctx context.Context, userID, courseID int64) (bool, error)
	MarkCompleted(ctx context.Context, userID, courseID int64) error
}

// ScheduleCanceller drops upcoming schedules once a course is done.
type ScheduleCanceller interface {
	DeleteFutureByUserAndCourse(ctx context.Context, userID, courseID int64, now time.Time) error
}

// IQuizService defines the quiz answering operation.
type IQuizService interface {
	// SubmitAnswer checks a learner's answer. Correct answers are recorded
	// idempotently; the answer that clears the course's last open quiz
	// marks the course completed and cancels its upcoming schedules.
	SubmitAnswer(ctx context.Context, userID, quizID int64, answer string) (*dto.SubmitAnswerResponse, error)
}

type quizService struct {
	quizzes     QuizReader
	answers     AnswerStore
	completions CompletionStore
	schedules   ScheduleCanceller
}

// NewQuizService creates a new quiz service.
func NewQuizService(quizzes QuizReader, answers AnswerStore, completions CompletionStore, schedules ScheduleCanceller) IQuizService {
	return &quizService{
		quizzes:     quizzes,
		answers:     answers,
		completions: completions,
		schedules:   schedules,
	}
}

// answersMatch compares a submission against the stored answer: surrounding
// whitespace is ignored and case does not matter.
func answersMatch(submitted, correct string) bool {
	return strings.EqualFold(strings.TrimSpace(submitted), strings.TrimSpace(correct))
}

func (s *quizService) SubmitAnswer(ctx context.Context, userID, quizID int64, answer string) (*dto.SubmitAnswerResponse, error) {
	quiz, err := s.quizzes.GetQuizByID(ctx, quizID)
	if err != nil {
		return nil, err
	}

	resp := &dto.SubmitAnswerResponse{QuizID: quizID}

	if !answersMatch(answer, quiz.CorrectAnswer) {
		return resp, nil
	}
	resp.Correct = true
	// Reveal the stored answer so the client can drop its placeholder.
	resp.CorrectAnswer = quiz.CorrectAnswer

	if err := s.answers.RecordAnswer(ctx, userID, quizID); err != nil {
		return nil, err
	}

	courseID, err := s.quizzes.GetCourseIDByQuizID(ctx, quizID)
	if err != nil {
		return nil, err
	}

	total, err := s.quizzes.CountQuizzesByCourseID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	answered, err := s.answers.CountAnswersByCourse(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}
	if answered < total {
		return resp, nil
	}

	// Completion fires once: re-answering quizzes of a finished course
	// never reports it completed again.
	alreadyCompleted, err := s.completions.IsCompleted(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}
	if alreadyCompleted {
		return resp, nil
	}

	if err := s.completions.MarkCompleted(ctx, userID, courseID); err != nil {
		return nil, err
	}
	if err := s.schedules.DeleteFutureByUserAndCourse(ctx, userID, courseID, time.Now()); err != nil {
		return nil, err
	}
	resp.CourseCompleted = true

	return resp, nil
}
