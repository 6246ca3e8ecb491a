package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kerem/learnly/internal/app/models"
	"github.com/kerem/learnly/internal/app/models/dto"
)

func TestFilterBlankRows(t *testing.T) {
	sub := &dto.CourseSubmission{
		Sections: []dto.SectionRow{
			{Title: "Kept", Order: 1},
			{Title: "   ", Order: 2},                     // blank new row, dropped
			{ID: ptr(5), Title: "", Order: 3},            // existing row, kept even when cleared
			{ID: ptr(6), Title: "", Order: 4, Delete: true},
		},
		ImageContents: []dto.ImageContentRow{
			{SectionOrder: 1, Image: "", AltText: ""},       // dropped
			{SectionOrder: 1, Image: "", AltText: "a chart"}, // any filled field keeps the row
		},
		VideoContents: []dto.VideoContentRow{
			{SectionOrder: 1, VideoURL: "", VideoTranscription: ""}, // dropped
		},
		Quizzes: []dto.QuizRow{
			{SectionOrder: 1, Question: "", CorrectAnswer: "4"}, // kept
			{SectionOrder: 1, Question: "", CorrectAnswer: ""},  // dropped
		},
	}

	out := filterBlankRows(sub)

	require.Len(t, out.Sections, 3)
	assert.Equal(t, "Kept", out.Sections[0].Title)
	assert.Equal(t, ptr(5), out.Sections[1].ID)
	assert.True(t, out.Sections[2].Delete)

	require.Len(t, out.ImageContents, 1)
	assert.Equal(t, "a chart", out.ImageContents[0].AltText)

	assert.Empty(t, out.VideoContents)

	require.Len(t, out.Quizzes, 1)
	assert.Equal(t, "4", out.Quizzes[0].CorrectAnswer)

	// The input is left untouched.
	assert.Len(t, sub.Sections, 4)
}

func TestSnapshotFromModels(t *testing.T) {
	course := &models.Course{
		ID:         12,
		Title:      "Intro to Go",
		Slug:       "intro-to-go",
		Difficulty: models.DifficultyJunior,
		Status:     models.CourseStatusPublished,
	}
	sections := []*models.Section{
		{ID: 1, CourseID: 12, Title: "Basics", OrderIndex: 1},
		{ID: 2, CourseID: 12, Title: "Practice", OrderIndex: 2},
	}
	contents := []*models.Content{
		{ID: 3, SectionID: 1, ContentType: models.ContentTypeText, TextContent: "Hello", OrderIndex: 1},
		{ID: 4, SectionID: 2, ContentType: models.ContentTypeVideo, VideoURL: "https://youtu.be/abc", OrderIndex: 1},
	}
	quizzes := []*models.Quiz{
		{ID: 5, SectionID: 2, Question: "2+2?", CorrectAnswer: "4", OrderIndex: 2},
	}

	snap := snapshotFromModels(course, sections, contents, quizzes)

	require.NotNil(t, snap.ID)
	assert.Equal(t, int64(12), *snap.ID)
	assert.Equal(t, "intro-to-go", snap.Slug)
	assert.Equal(t, "published", snap.Status)

	require.Len(t, snap.Sections, 2)
	assert.Equal(t, 1, snap.Sections[0].Order)

	// Child rows reference their parent by its order marker, not its id.
	require.Len(t, snap.TextContents, 1)
	assert.Equal(t, 1, snap.TextContents[0].SectionOrder)
	require.Len(t, snap.VideoContents, 1)
	assert.Equal(t, 2, snap.VideoContents[0].SectionOrder)
	require.Len(t, snap.Quizzes, 1)
	assert.Equal(t, 2, snap.Quizzes[0].SectionOrder)

	assert.Empty(t, snap.ImageContents)
}

func TestSnapshotSubmissionRoundTrip(t *testing.T) {
	course := &models.Course{ID: 1, Title: "T", Slug: "t"}
	sections := []*models.Section{{ID: 2, CourseID: 1, Title: "S", OrderIndex: 1}}

	snap := snapshotFromModels(course, sections, nil, nil)
	sub := snap.Submission(dto.ActionPublish)

	assert.Equal(t, dto.ActionPublish, sub.Action)
	assert.Equal(t, snap.Title, sub.Title)
	require.Len(t, sub.Sections, 1)
	assert.Equal(t, dto.RowUpdate, sub.Sections[0].Op())
}
