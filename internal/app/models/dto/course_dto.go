package dto

import (
	"github.com/kerem/learnly/internal/app/models"
)

// EditAction is the action token of a course authoring submission
type EditAction string

const (
	ActionPublish      EditAction = "publish"
	ActionSaveDraft    EditAction = "save_draft"
	ActionDeleteCourse EditAction = "delete_course"
)

// ValidEditAction reports whether a is a known action token.
func ValidEditAction(a EditAction) bool {
	switch a {
	case ActionPublish, ActionSaveDraft, ActionDeleteCourse:
		return true
	}
	return false
}

// RowOp classifies a submitted row. The reconciler pattern-matches on this
// instead of inspecting id/delete flags at every call site.
type RowOp int

const (
	RowNew RowOp = iota
	RowUpdate
	RowDelete
)

func rowOp(id *int64, del bool) RowOp {
	switch {
	case del:
		return RowDelete
	case id != nil:
		return RowUpdate
	default:
		return RowNew
	}
}

// SectionRow is one submitted section of a course authoring submission.
// Order is the client-supplied marker child rows use to reference their
// parent section within the same submission.
type SectionRow struct {
	ID     *int64 `json:"id"`
	Delete bool   `json:"delete,omitempty"`
	Title  string `json:"title"`
	Order  int    `json:"order"`
}

// Op returns the tagged operation this row requests.
func (r SectionRow) Op() RowOp { return rowOp(r.ID, r.Delete) }

// TextContentRow is one submitted text content block.
type TextContentRow struct {
	ID           *int64 `json:"id"`
	Delete       bool   `json:"delete,omitempty"`
	SectionOrder int    `json:"sectionOrder"`
	Order        int    `json:"order"`
	TextContent  string `json:"textContent"`
}

func (r TextContentRow) Op() RowOp { return rowOp(r.ID, r.Delete) }

// ImageContentRow is one submitted image content block. Image carries the
// stored file URL (uploads happen through the upload endpoint first).
type ImageContentRow struct {
	ID           *int64 `json:"id"`
	Delete       bool   `json:"delete,omitempty"`
	SectionOrder int    `json:"sectionOrder"`
	Order        int    `json:"order"`
	Image        string `json:"image"`
	AltText      string `json:"altText"`
}

func (r ImageContentRow) Op() RowOp { return rowOp(r.ID, r.Delete) }

// VideoContentRow is one submitted video content block.
type VideoContentRow struct {
	ID                 *int64 `json:"id"`
	Delete             bool   `json:"delete,omitempty"`
	SectionOrder       int    `json:"sectionOrder"`
	Order              int    `json:"order"`
	VideoURL           string `json:"videoUrl"`
	VideoTranscription string `json:"videoTranscription"`
}

func (r VideoContentRow) Op() RowOp { return rowOp(r.ID, r.Delete) }

// QuizRow is one submitted quiz of a course authoring submission.
type QuizRow struct {
	ID            *int64 `json:"id"`
	Delete        bool   `json:"delete,omitempty"`
	SectionOrder  int    `json:"sectionOrder"`
	Order         int    `json:"order"`
	Question      string `json:"question"`
	CorrectAnswer string `json:"correctAnswer"`
}

func (r QuizRow) Op() RowOp { return rowOp(r.ID, r.Delete) }

// CourseSubmission is the full create-or-edit payload: course fields, the
// action token and every row collection of the authoring form.
type CourseSubmission struct {
	Title                   string            `json:"title"`
	Description             string            `json:"description"`
	Difficulty              models.Difficulty `json:"difficulty"`
	EstimatedCompletionTime int               `json:"estimatedCompletionTime"`
	Action                  EditAction        `json:"action"`

	Sections      []SectionRow      `json:"sections"`
	TextContents  []TextContentRow  `json:"textContents"`
	ImageContents []ImageContentRow `json:"imageContents"`
	VideoContents []VideoContentRow `json:"videoContents"`
	Quizzes       []QuizRow         `json:"quizzes"`
}

// CourseSnapshot is the JSON-safe echo of a submission: either the submitted
// rows after a validation failure (so the UI can redisplay exactly what the
// user typed) or the persisted rows on edit-load. It deliberately shares the
// row shapes with CourseSubmission so an unchanged snapshot can be fed back
// through the reconciler.
type CourseSnapshot struct {
	ID                      *int64            `json:"id"`
	Title                   string            `json:"title"`
	Slug                    string            `json:"slug,omitempty"`
	Description             string            `json:"description"`
	Difficulty              models.Difficulty `json:"difficulty"`
	EstimatedCompletionTime int               `json:"estimatedCompletionTime"`
	Status                  string            `json:"status,omitempty"`

	Sections      []SectionRow      `json:"sections"`
	TextContents  []TextContentRow  `json:"textContents"`
	ImageContents []ImageContentRow `json:"imageContents"`
	VideoContents []VideoContentRow `json:"videoContents"`
	Quizzes       []QuizRow         `json:"quizzes"`
}

// Submission converts an edit-load snapshot back into a submission carrying
// the given action.
func (s *CourseSnapshot) Submission(action EditAction) *CourseSubmission {
	return &CourseSubmission{
		Title:                   s.Title,
		Description:             s.Description,
		Difficulty:              s.Difficulty,
		EstimatedCompletionTime: s.EstimatedCompletionTime,
		Action:                  action,
		Sections:                s.Sections,
		TextContents:            s.TextContents,
		ImageContents:           s.ImageContents,
		VideoContents:           s.VideoContents,
		Quizzes:                 s.Quizzes,
	}
}

// CourseListItem is one entry of a course listing.
type CourseListItem struct {
	ID                      int64               `json:"id"`
	Title                   string              `json:"title"`
	Slug                    string              `json:"slug"`
	Description             string              `json:"description"`
	Difficulty              models.Difficulty   `json:"difficulty"`
	EstimatedCompletionTime int                 `json:"estimatedCompletionTime"`
	Status                  models.CourseStatus `json:"status"`
}

// CourseListResponse is a paginated course listing.
type CourseListResponse struct {
	Courses    []CourseListItem `json:"courses"`
	Pagination PaginationInfo   `json:"pagination"`
}
