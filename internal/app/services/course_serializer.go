package services

import (
	"strings"

	"github.com/kerem/learnly/internal/app/models"
	"github.com/kerem/learnly/internal/app/models/dto"
)

// The serializer produces JSON-safe echoes of the course authoring form: on
// validation failure the submitted rows go back to the client exactly as
// typed, and on edit-load the persisted rows come out in the same shape so
// the client can resubmit them unchanged.
//
// Each row type has a fixed allow-list of user-editable fields. A new row
// whose allow-listed fields are all blank is treated as an untouched extra
// form and dropped.

func sectionRowBlank(r dto.SectionRow) bool {
	return strings.TrimSpace(r.Title) == ""
}

func textRowBlank(r dto.TextContentRow) bool {
	return strings.TrimSpace(r.TextContent) == ""
}

func imageRowBlank(r dto.ImageContentRow) bool {
	return strings.TrimSpace(r.Image) == "" && strings.TrimSpace(r.AltText) == ""
}

func videoRowBlank(r dto.VideoContentRow) bool {
	return strings.TrimSpace(r.VideoURL) == "" && strings.TrimSpace(r.VideoTranscription) == ""
}

func quizRowBlank(r dto.QuizRow) bool {
	return strings.TrimSpace(r.Question) == "" && strings.TrimSpace(r.CorrectAnswer) == ""
}

// filterBlankRows drops untouched extra rows from a submission. Only new rows
// are candidates: rows carrying an id always survive so cleared fields on an
// existing entity surface as validation errors instead of vanishing.
func filterBlankRows(sub *dto.CourseSubmission) *dto.CourseSubmission {
	out := *sub

	out.Sections = nil
	for _, r := range sub.Sections {
		if r.Op() == dto.RowNew && sectionRowBlank(r) {
			continue
		}
		out.Sections = append(out.Sections, r)
	}

	out.TextContents = nil
	for _, r := range sub.TextContents {
		if r.Op() == dto.RowNew && textRowBlank(r) {
			continue
		}
		out.TextContents = append(out.TextContents, r)
	}

	out.ImageContents = nil
	for _, r := range sub.ImageContents {
		if r.Op() == dto.RowNew && imageRowBlank(r) {
			continue
		}
		out.ImageContents = append(out.ImageContents, r)
	}

	out.VideoContents = nil
	for _, r := range sub.VideoContents {
		if r.Op() == dto.RowNew && videoRowBlank(r) {
			continue
		}
		out.VideoContents = append(out.VideoContents, r)
	}

	out.Quizzes = nil
	for _, r := range sub.Quizzes {
		if r.Op() == dto.RowNew && quizRowBlank(r) {
			continue
		}
		out.Quizzes = append(out.Quizzes, r)
	}

	return &out
}

// snapshotFromSubmission echoes a (filtered) submission as a snapshot. Used
// after a validation failure so the client can redisplay what was typed.
func snapshotFromSubmission(courseID *int64, sub *dto.CourseSubmission) *dto.CourseSnapshot {
	return &dto.CourseSnapshot{
		ID:                      courseID,
		Title:                   sub.Title,
		Description:             sub.Description,
		Difficulty:              sub.Difficulty,
		EstimatedCompletionTime: sub.EstimatedCompletionTime,
		Sections:                sub.Sections,
		TextContents:            sub.TextContents,
		ImageContents:           sub.ImageContents,
		VideoContents:           sub.VideoContents,
		Quizzes:                 sub.Quizzes,
	}
}

// snapshotFromModels builds an edit-load snapshot from persisted entities.
// Section rows carry their order index as the marker child rows point at.
func snapshotFromModels(course *models.Course, sections []*models.Section, contents []*models.Content, quizzes []*models.Quiz) *dto.CourseSnapshot {
	snap := &dto.CourseSnapshot{
		ID:                      &course.ID,
		Title:                   course.Title,
		Slug:                    course.Slug,
		Description:             course.Description,
		Difficulty:              course.Difficulty,
		EstimatedCompletionTime: course.EstimatedCompletionTime,
		Status:                  string(course.Status),
		Sections:                []dto.SectionRow{},
		TextContents:            []dto.TextContentRow{},
		ImageContents:           []dto.ImageContentRow{},
		VideoContents:           []dto.VideoContentRow{},
		Quizzes:                 []dto.QuizRow{},
	}

	orderBySection := make(map[int64]int, len(sections))
	for _, s := range sections {
		s := s
		orderBySection[s.ID] = s.OrderIndex
		snap.Sections = append(snap.Sections, dto.SectionRow{
			ID:    &s.ID,
			Title: s.Title,
			Order: s.OrderIndex,
		})
	}

	for _, c := range contents {
		c := c
		sectionOrder := orderBySection[c.SectionID]
		switch c.ContentType {
		case models.ContentTypeText:
			snap.TextContents = append(snap.TextContents, dto.TextContentRow{
				ID:           &c.ID,
				SectionOrder: sectionOrder,
				Order:        c.OrderIndex,
				TextContent:  c.TextContent,
			})
		case models.ContentTypeImage:
			snap.ImageContents = append(snap.ImageContents, dto.ImageContentRow{
				ID:           &c.ID,
				SectionOrder: sectionOrder,
				Order:        c.OrderIndex,
				Image:        c.Image,
				AltText:      c.AltText,
			})
		case models.ContentTypeVideo:
			snap.VideoContents = append(snap.VideoContents, dto.VideoContentRow{
				ID:           &c.ID,
				SectionOrder: sectionOrder,
				Order:        c.OrderIndex,
				VideoURL:     c.VideoURL,
				VideoTranscription: c.VideoTranscription,
			})
		}
	}

	for _, q := range quizzes {
		q := q
		snap.Quizzes = append(snap.Quizzes, dto.QuizRow{
			ID:            &q.ID,
			SectionOrder:  orderBySection[q.SectionID],
			Order:         q.OrderIndex,
			Question:      q.Question,
			CorrectAnswer: q.CorrectAnswer,
		})
	}

	return snap
}
