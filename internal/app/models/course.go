package models

import (
	"time"
)

// Course defines the course model based on the 'courses' table.
// Slug is derived from the title on create and regenerated only when the
// title changes afterwards.
type Course struct {
	ID                      int64        `json:"id" db:"id" example:"1"`
	Title                   string       `json:"title" db:"title" example:"Intro to Go"`
	Slug                    string       `json:"slug" db:"slug" example:"intro-to-go"`
	Description             string       `json:"description" db:"description"`
	Difficulty              Difficulty   `json:"difficulty" db:"difficulty" example:"junior"`
	EstimatedCompletionTime int          `json:"estimatedCompletionTime" db:"estimated_completion_time" example:"45"` // minutes
	Status                  CourseStatus `json:"status" db:"status" example:"draft"`
	CreatedBy               *int64       `json:"createdBy,omitempty" db:"created_by"` // nullable on creator deletion
	CreatedAt               time.Time    `json:"createdAt" db:"created_at"`
	UpdatedAt               time.Time    `json:"updatedAt" db:"updated_at"`
}

// Section belongs to exactly one course. OrderIndex is the client-supplied
// ordering key; it is unique within one submission's section set but the
// store does not enforce uniqueness.
type Section struct {
	ID         int64     `json:"id" db:"id"`
	CourseID   int64     `json:"courseId" db:"course_id"`
	Title      string    `json:"title" db:"title"`
	OrderIndex int       `json:"order" db:"order_index"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time `json:"updatedAt" db:"updated_at"`
}

// Content is a single block inside a section. ContentType fixes which of the
// payload fields are meaningful; the others stay empty.
type Content struct {
	ID                 int64       `json:"id" db:"id"`
	SectionID          int64       `json:"sectionId" db:"section_id"`
	ContentType        ContentType `json:"contentType" db:"content_type"`
	TextContent        string      `json:"textContent,omitempty" db:"text_content"`
	Image              string      `json:"image,omitempty" db:"image"` // stored file URL
	AltText            string      `json:"altText,omitempty" db:"alt_text"`
	VideoURL           string      `json:"videoUrl,omitempty" db:"video_url"`
	VideoTranscription string      `json:"videoTranscription,omitempty" db:"video_transcription"`
	OrderIndex         int         `json:"order" db:"order_index"`
	CreatedAt          time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt          time.Time   `json:"updatedAt" db:"updated_at"`
}

// Quiz belongs to exactly one section. CorrectAnswer is compared
// case-insensitively against learner submissions.
type Quiz struct {
	ID            int64     `json:"id" db:"id"`
	SectionID     int64     `json:"sectionId" db:"section_id"`
	Question      string    `json:"question" db:"question"`
	CorrectAnswer string    `json:"correctAnswer" db:"correct_answer"`
	OrderIndex    int       `json:"order" db:"order_index"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time `json:"updatedAt" db:"updated_at"`
}

// Answer records that a user answered a quiz correctly. The store enforces
// UNIQUE(user_id, quiz_id); a second correct submission is a no-op.
type Answer struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"userId" db:"user_id"`
	QuizID    int64     `json:"quizId" db:"quiz_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// ScheduledCourse is a learner's planned study time for a course. The store
// does not enforce one row per (user, course); the schedule service does.
type ScheduledCourse struct {
	ID                  int64     `json:"id" db:"id"`
	UserID              int64     `json:"userId" db:"user_id"`
	CourseID            int64     `json:"courseId" db:"course_id"`
	ScheduledTime       time.Time `json:"scheduledTime" db:"scheduled_time"`
	NotifyBeforeMinutes int       `json:"notifyBeforeMinutes" db:"notify_before_minutes"`
	NotificationSent    bool      `json:"notificationSent" db:"notification_sent"`
	CreatedAt           time.Time `json:"createdAt" db:"created_at"`
}

// NotificationTime is the moment the reminder for this schedule becomes due.
func (s *ScheduledCourse) NotificationTime() time.Time {
	return s.ScheduledTime.Add(-time.Duration(s.NotifyBeforeMinutes) * time.Minute)
}
