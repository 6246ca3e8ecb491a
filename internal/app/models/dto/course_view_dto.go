package dto

import (
	"time"

	"github.com/kerem/learnly/internal/app/models"
)

// CourseView is the learner-facing course tree. Unanswered quizzes carry a
// masked placeholder; the real answer appears only once the viewer has
// answered correctly.
type CourseView struct {
	ID                      int64               `json:"id"`
	Title                   string              `json:"title"`
	Slug                    string              `json:"slug"`
	Description             string              `json:"description"`
	Difficulty              models.Difficulty   `json:"difficulty"`
	EstimatedCompletionTime int                 `json:"estimatedCompletionTime"`
	Status                  models.CourseStatus `json:"status"`
	Sections                []SectionView       `json:"sections"`
	Saved                   bool                `json:"saved"`
	Completed               bool                `json:"completed"`
	ScheduledTime           *time.Time          `json:"scheduledTime,omitempty"`
}

// SectionView is one section of a learner-facing course tree, children
// ordered by their order index.
type SectionView struct {
	ID       int64         `json:"id"`
	Title    string        `json:"title"`
	Order    int           `json:"order"`
	Contents []ContentView `json:"contents"`
	Quizzes  []QuizView    `json:"quizzes"`
}

// ContentView is one content block. Only the fields of its content type are
// populated.
type ContentView struct {
	ID                 int64              `json:"id"`
	ContentType        models.ContentType `json:"contentType"`
	Order              int                `json:"order"`
	TextContent        string             `json:"textContent,omitempty"`
	Image              string             `json:"image,omitempty"`
	AltText            string             `json:"altText,omitempty"`
	VideoURL           string             `json:"videoUrl,omitempty"`
	VideoTranscription string             `json:"videoTranscription,omitempty"`
}

// QuizView is one quiz as shown to a learner. Placeholder is the masked form
// of the correct answer and is present only while the quiz is unanswered;
// Answer holds the revealed answer once the viewer has answered correctly.
type QuizView struct {
	ID          int64  `json:"id"`
	Question    string `json:"question"`
	Order       int    `json:"order"`
	Answered    bool   `json:"answered"`
	Placeholder string `json:"placeholder,omitempty"`
	Answer      string `json:"answer,omitempty"`
}

// SubmitAnswerRequest is a learner's answer to a quiz.
type SubmitAnswerRequest struct {
	Answer string `json:"answer" binding:"required"`
}

// SubmitAnswerResponse reports the outcome of an answer submission. A correct
// match reveals the stored answer so the client can replace its placeholder.
// CourseCompleted is true only on the submission that answers the last
// remaining quiz of the course.
type SubmitAnswerResponse struct {
	QuizID          int64  `json:"quizId"`
	Correct         bool   `json:"correct"`
	CorrectAnswer   string `json:"correctAnswer,omitempty"`
	CourseCompleted bool   `json:"courseCompleted"`
}

// ScheduleRequest drives the schedule state machine for one course.
// ScheduledTime is required for schedule and reschedule, ignored for
// unschedule.
type ScheduleRequest struct {
	Action              string     `json:"action" binding:"required,oneof=schedule reschedule unschedule"`
	ScheduledTime       *time.Time `json:"scheduledTime,omitempty"`
	NotifyBeforeMinutes int        `json:"notifyBeforeMinutes,omitempty"`
}

// ScheduleResponse echoes the resulting schedule state. Warning is set when
// the request was a no-op, such as unscheduling a course with no schedule.
type ScheduleResponse struct {
	Scheduled           bool       `json:"scheduled"`
	ScheduledTime       *time.Time `json:"scheduledTime,omitempty"`
	NotifyBeforeMinutes int        `json:"notifyBeforeMinutes,omitempty"`
	Warning             string     `json:"warning,omitempty"`
}

// ToggleSaveResponse reports the save state after a toggle.
type ToggleSaveResponse struct {
	Saved bool `json:"saved"`
}

// UploadResponse carries the stored URL of an uploaded file.
type UploadResponse struct {
	URL string `json:"url"`
}

// TranscribeRequest asks for a transcription of a hosted video.
type TranscribeRequest struct {
	VideoURL string `json:"videoUrl" binding:"required,url"`
}

// TranscriptionSegmentView is one timed segment of a transcription.
type TranscriptionSegmentView struct {
	StartSeconds float64 `json:"startSeconds"`
	EndSeconds   float64 `json:"endSeconds"`
	Text         string  `json:"text"`
}

// TranscribeResponse carries the full transcription text plus its segments.
type TranscribeResponse struct {
	Text     string                     `json:"text"`
	Segments []TranscriptionSegmentView `json:"segments"`
}
