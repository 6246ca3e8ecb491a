package services

import (
	"context"
	"mime/multipart"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kerem/learnly/internal/app/models"
	"github.com/kerem/learnly/internal/app/models/dto"
	"github.com/kerem/learnly/internal/db"
	"github.com/kerem/learnly/internal/pkg/apperrors"
)

// fakeEditorStore is an in-memory EditorStore so the reconciliation logic can
// be exercised without a database.
type fakeEditorStore struct {
	nextID   int64
	courses  map[int64]*models.Course
	sections map[int64]*models.Section
	contents map[int64]*models.Content
	quizzes  map[int64]*models.Quiz
}

func newFakeEditorStore() *fakeEditorStore {
	return &fakeEditorStore{
		courses:  make(map[int64]*models.Course),
		sections: make(map[int64]*models.Section),
		contents: make(map[int64]*models.Content),
		quizzes:  make(map[int64]*models.Quiz),
	}
}

func (f *fakeEditorStore) id() int64 {
	f.nextID++
	return f.nextID
}

func (f *fakeEditorStore) CreateCourse(_ context.Context, course *models.Course) (int64, error) {
	c := *course
	c.ID = f.id()
	f.courses[c.ID] = &c
	return c.ID, nil
}

func (f *fakeEditorStore) UpdateCourse(_ context.Context, course *models.Course) error {
	if _, ok := f.courses[course.ID]; !ok {
		return apperrors.ErrCourseNotFound
	}
	c := *course
	f.courses[course.ID] = &c
	return nil
}

func (f *fakeEditorStore) DeleteCourse(_ context.Context, id int64) error {
	if _, ok := f.courses[id]; !ok {
		return apperrors.ErrCourseNotFound
	}
	delete(f.courses, id)
	for sid, sec := range f.sections {
		if sec.CourseID == id {
			f.deleteSectionCascade(sid)
		}
	}
	return nil
}

func (f *fakeEditorStore) GetCourseByID(_ context.Context, id int64) (*models.Course, error) {
	c, ok := f.courses[id]
	if !ok {
		return nil, apperrors.ErrCourseNotFound
	}
	copied := *c
	return &copied, nil
}

func (f *fakeEditorStore) TitleExists(_ context.Context, title string, excludeID *int64) (bool, error) {
	for _, c := range f.courses {
		if excludeID != nil && c.ID == *excludeID {
			continue
		}
		if c.Title == title {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeEditorStore) CreateSection(_ context.Context, section *models.Section) (int64, error) {
	s := *section
	s.ID = f.id()
	f.sections[s.ID] = &s
	return s.ID, nil
}

func (f *fakeEditorStore) UpdateSection(_ context.Context, section *models.Section) error {
	if _, ok := f.sections[section.ID]; !ok {
		return apperrors.ErrSectionNotFound
	}
	s := *section
	f.sections[section.ID] = &s
	return nil
}

func (f *fakeEditorStore) deleteSectionCascade(id int64) {
	delete(f.sections, id)
	for cid, c := range f.contents {
		if c.SectionID == id {
			delete(f.contents, cid)
		}
	}
	for qid, q := range f.quizzes {
		if q.SectionID == id {
			delete(f.quizzes, qid)
		}
	}
}

func (f *fakeEditorStore) DeleteSection(_ context.Context, id int64) error {
	if _, ok := f.sections[id]; !ok {
		return apperrors.ErrSectionNotFound
	}
	f.deleteSectionCascade(id)
	return nil
}

func (f *fakeEditorStore) GetSectionsByCourseID(_ context.Context, courseID int64) ([]*models.Section, error) {
	var out []*models.Section
	for _, s := range f.sections {
		if s.CourseID == courseID {
			copied := *s
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeEditorStore) CreateContent(_ context.Context, content *models.Content) (int64, error) {
	c := *content
	c.ID = f.id()
	f.contents[c.ID] = &c
	return c.ID, nil
}

func (f *fakeEditorStore) UpdateContent(_ context.Context, content *models.Content) error {
	if _, ok := f.contents[content.ID]; !ok {
		return apperrors.ErrContentNotFound
	}
	old := f.contents[content.ID]
	c := *content
	c.ContentType = old.ContentType
	f.contents[content.ID] = &c
	return nil
}

func (f *fakeEditorStore) DeleteContent(_ context.Context, id int64) error {
	if _, ok := f.contents[id]; !ok {
		return apperrors.ErrContentNotFound
	}
	delete(f.contents, id)
	return nil
}

func (f *fakeEditorStore) GetContentsByCourseID(_ context.Context, courseID int64) ([]*models.Content, error) {
	var out []*models.Content
	for _, c := range f.contents {
		sec, ok := f.sections[c.SectionID]
		if ok && sec.CourseID == courseID {
			copied := *c
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeEditorStore) CreateQuiz(_ context.Context, quiz *models.Quiz) (int64, error) {
	q := *quiz
	q.ID = f.id()
	f.quizzes[q.ID] = &q
	return q.ID, nil
}

func (f *fakeEditorStore) UpdateQuiz(_ context.Context, quiz *models.Quiz) error {
	if _, ok := f.quizzes[quiz.ID]; !ok {
		return apperrors.ErrQuizNotFound
	}
	q := *quiz
	f.quizzes[quiz.ID] = &q
	return nil
}

func (f *fakeEditorStore) DeleteQuiz(_ context.Context, id int64) error {
	if _, ok := f.quizzes[id]; !ok {
		return apperrors.ErrQuizNotFound
	}
	delete(f.quizzes, id)
	return nil
}

func (f *fakeEditorStore) GetQuizzesByCourseID(_ context.Context, courseID int64) ([]*models.Quiz, error) {
	var out []*models.Quiz
	for _, q := range f.quizzes {
		sec, ok := f.sections[q.SectionID]
		if ok && sec.CourseID == courseID {
			copied := *q
			out = append(out, &copied)
		}
	}
	return out, nil
}

// fakeTxRunner runs the function directly, with no real transaction.
type fakeTxRunner struct{}

func (fakeTxRunner) WithTransaction(ctx context.Context, fn db.TransactionFn) error {
	return fn(ctx, nil)
}

// fakeFileStorage records deletions so tests can assert on file cleanup.
type fakeFileStorage struct {
	deleted []string
}

func (f *fakeFileStorage) SaveFile(*multipart.FileHeader) (string, error) { return "", nil }
func (f *fakeFileStorage) SaveFileWithPath(*multipart.FileHeader, string) (string, error) {
	return "", nil
}
func (f *fakeFileStorage) DeleteFile(path string) error {
	f.deleted = append(f.deleted, path)
	return nil
}
func (f *fakeFileStorage) GetFullPath(fileURL string) string { return fileURL }

func newEditorService(store *fakeEditorStore) (*courseEditorService, *fakeFileStorage) {
	files := &fakeFileStorage{}
	svc := NewCourseEditorService(
		fakeTxRunner{},
		store,
		func(pgx.Tx) EditorStore { return store },
		files,
	)
	return svc.(*courseEditorService), files
}

func ptr(v int64) *int64 { return &v }

func validSubmission() *dto.CourseSubmission {
	return &dto.CourseSubmission{
		Title:                   "Intro to Go",
		Description:             "A first course.",
		Difficulty:              models.DifficultyJunior,
		EstimatedCompletionTime: 45,
		Action:                  dto.ActionSaveDraft,
		Sections: []dto.SectionRow{
			{Title: "Basics", Order: 1},
			{Title: "Practice", Order: 2},
		},
		TextContents: []dto.TextContentRow{
			{SectionOrder: 1, Order: 1, TextContent: "Hello, Go."},
		},
		Quizzes: []dto.QuizRow{
			{SectionOrder: 2, Order: 1, Question: "2+2?", CorrectAnswer: "4"},
		},
	}
}

func TestSubmitCourseCreatesNestedRows(t *testing.T) {
	store := newFakeEditorStore()
	svc, _ := newEditorService(store)

	res, err := svc.SubmitCourse(context.Background(), 7, nil, validSubmission())
	require.NoError(t, err)
	require.NotNil(t, res.Course)
	assert.Nil(t, res.ValidationErrors)

	assert.Equal(t, "intro-to-go", res.Course.Slug)
	assert.Equal(t, models.CourseStatusDraft, res.Course.Status)
	require.NotNil(t, res.Course.CreatedBy)
	assert.Equal(t, int64(7), *res.Course.CreatedBy)

	sections, _ := store.GetSectionsByCourseID(context.Background(), res.Course.ID)
	assert.Len(t, sections, 2)
	contents, _ := store.GetContentsByCourseID(context.Background(), res.Course.ID)
	require.Len(t, contents, 1)
	assert.Equal(t, "Hello, Go.", contents[0].TextContent)
	quizzes, _ := store.GetQuizzesByCourseID(context.Background(), res.Course.ID)
	require.Len(t, quizzes, 1)
	assert.Equal(t, "4", quizzes[0].CorrectAnswer)

	// The text content resolved its parent through the order marker.
	var basics *models.Section
	for _, s := range sections {
		if s.Title == "Basics" {
			basics = s
		}
	}
	require.NotNil(t, basics)
	assert.Equal(t, basics.ID, contents[0].SectionID)
}

func TestSubmitCoursePublishValidation(t *testing.T) {
	store := newFakeEditorStore()
	svc, _ := newEditorService(store)

	sub := &dto.CourseSubmission{
		Title:      "Empty Course",
		Difficulty: models.DifficultyJunior,
		Action:     dto.ActionPublish,
	}

	res, err := svc.SubmitCourse(context.Background(), 1, nil, sub)
	require.NoError(t, err)
	require.NotNil(t, res.ValidationErrors)
	assert.Nil(t, res.Course)

	fields := make(map[string]bool)
	for _, e := range res.ValidationErrors.Errors {
		fields[e.Field] = true
	}
	assert.True(t, fields["description"])
	assert.True(t, fields["estimatedCompletionTime"])
	assert.True(t, fields["sections"])

	// The snapshot echoes the submission so the form can redisplay it.
	require.NotNil(t, res.Snapshot)
	assert.Equal(t, "Empty Course", res.Snapshot.Title)

	// Nothing was persisted.
	assert.Empty(t, store.courses)
}

func TestSubmitCourseDuplicateTitle(t *testing.T) {
	store := newFakeEditorStore()
	svc, _ := newEditorService(store)

	_, err := svc.SubmitCourse(context.Background(), 1, nil, validSubmission())
	require.NoError(t, err)

	res, err := svc.SubmitCourse(context.Background(), 1, nil, validSubmission())
	require.NoError(t, err)
	require.NotNil(t, res.ValidationErrors)
	assert.Equal(t, "title", res.ValidationErrors.Errors[0].Field)
}

func TestSubmitCourseUnknownAction(t *testing.T) {
	store := newFakeEditorStore()
	svc, _ := newEditorService(store)

	sub := validSubmission()
	sub.Action = "explode"

	_, err := svc.SubmitCourse(context.Background(), 1, nil, sub)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUnknownAction)
}

func TestSubmitCourseBlankNewRowsDropped(t *testing.T) {
	store := newFakeEditorStore()
	svc, _ := newEditorService(store)

	sub := validSubmission()
	// Untouched extra forms: new rows with every editable field blank.
	sub.Sections = append(sub.Sections, dto.SectionRow{Order: 9})
	sub.Quizzes = append(sub.Quizzes, dto.QuizRow{SectionOrder: 1, Order: 5})

	res, err := svc.SubmitCourse(context.Background(), 1, nil, sub)
	require.NoError(t, err)
	require.NotNil(t, res.Course)

	sections, _ := store.GetSectionsByCourseID(context.Background(), res.Course.ID)
	assert.Len(t, sections, 2)
	quizzes, _ := store.GetQuizzesByCourseID(context.Background(), res.Course.ID)
	assert.Len(t, quizzes, 1)
}

func TestSubmitCourseOrphanRowSkipped(t *testing.T) {
	store := newFakeEditorStore()
	svc, _ := newEditorService(store)

	sub := validSubmission()
	// Points at section order 99 which no submitted section carries.
	sub.TextContents = append(sub.TextContents, dto.TextContentRow{
		SectionOrder: 99, Order: 1, TextContent: "orphan",
	})

	res, err := svc.SubmitCourse(context.Background(), 1, nil, sub)
	require.NoError(t, err)

	contents, _ := store.GetContentsByCourseID(context.Background(), res.Course.ID)
	require.Len(t, contents, 1)
	assert.Equal(t, "Hello, Go.", contents[0].TextContent)
}

func TestSubmitCourseStaleRowAborts(t *testing.T) {
	store := newFakeEditorStore()
	svc, _ := newEditorService(store)

	res, err := svc.SubmitCourse(context.Background(), 1, nil, validSubmission())
	require.NoError(t, err)
	courseID := res.Course.ID

	snap, err := svc.LoadCourseForEdit(context.Background(), courseID)
	require.NoError(t, err)

	sub := snap.Submission(dto.ActionSaveDraft)
	sub.Sections = append(sub.Sections, dto.SectionRow{ID: ptr(9999), Title: "Ghost", Order: 3})

	_, err = svc.SubmitCourse(context.Background(), 1, &courseID, sub)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrStaleRow)
}

func TestSubmitCourseRoundTripIsStable(t *testing.T) {
	store := newFakeEditorStore()
	svc, _ := newEditorService(store)

	res, err := svc.SubmitCourse(context.Background(), 1, nil, validSubmission())
	require.NoError(t, err)
	courseID := res.Course.ID

	snap, err := svc.LoadCourseForEdit(context.Background(), courseID)
	require.NoError(t, err)

	// Resubmitting an unchanged snapshot must not duplicate or lose rows.
	res2, err := svc.SubmitCourse(context.Background(), 1, &courseID, snap.Submission(dto.ActionSaveDraft))
	require.NoError(t, err)
	require.NotNil(t, res2.Course)

	snap2, err := svc.LoadCourseForEdit(context.Background(), courseID)
	require.NoError(t, err)

	assert.Equal(t, len(snap.Sections), len(snap2.Sections))
	assert.Equal(t, len(snap.TextContents), len(snap2.TextContents))
	assert.Equal(t, len(snap.Quizzes), len(snap2.Quizzes))
	assert.Equal(t, snap.Slug, snap2.Slug)
}

func TestSubmitCourseSlugRegeneratedOnlyOnTitleChange(t *testing.T) {
	store := newFakeEditorStore()
	svc, _ := newEditorService(store)

	res, err := svc.SubmitCourse(context.Background(), 1, nil, validSubmission())
	require.NoError(t, err)
	courseID := res.Course.ID

	// Same title: slug untouched.
	snap, _ := svc.LoadCourseForEdit(context.Background(), courseID)
	res2, err := svc.SubmitCourse(context.Background(), 1, &courseID, snap.Submission(dto.ActionSaveDraft))
	require.NoError(t, err)
	assert.Equal(t, "intro-to-go", res2.Course.Slug)

	// New title: slug follows.
	sub := snap.Submission(dto.ActionSaveDraft)
	sub.Title = "Advanced Go"
	res3, err := svc.SubmitCourse(context.Background(), 1, &courseID, sub)
	require.NoError(t, err)
	assert.Equal(t, "advanced-go", res3.Course.Slug)
}

func TestSubmitCourseSectionDeleteCascades(t *testing.T) {
	store := newFakeEditorStore()
	svc, _ := newEditorService(store)

	res, err := svc.SubmitCourse(context.Background(), 1, nil, validSubmission())
	require.NoError(t, err)
	courseID := res.Course.ID

	snap, _ := svc.LoadCourseForEdit(context.Background(), courseID)
	sub := snap.Submission(dto.ActionSaveDraft)
	for i := range sub.Sections {
		if sub.Sections[i].Title == "Practice" {
			sub.Sections[i].Delete = true
		}
	}
	// Drop the quiz row too; its parent is being deleted.
	for i := range sub.Quizzes {
		sub.Quizzes[i].Delete = true
	}

	_, err = svc.SubmitCourse(context.Background(), 1, &courseID, sub)
	require.NoError(t, err)

	sections, _ := store.GetSectionsByCourseID(context.Background(), courseID)
	assert.Len(t, sections, 1)
	quizzes, _ := store.GetQuizzesByCourseID(context.Background(), courseID)
	assert.Empty(t, quizzes)
}

func TestSubmitCourseSectionDeleteTakesMarkedChildren(t *testing.T) {
	store := newFakeEditorStore()
	svc, _ := newEditorService(store)

	res, err := svc.SubmitCourse(context.Background(), 1, nil, validSubmission())
	require.NoError(t, err)
	courseID := res.Course.ID

	// The editing UI marks a deleted section's rows deleted alongside it,
	// so the content arrives delete-flagged after the cascade already
	// removed it.
	snap, _ := svc.LoadCourseForEdit(context.Background(), courseID)
	sub := snap.Submission(dto.ActionSaveDraft)
	for i := range sub.Sections {
		if sub.Sections[i].Title == "Basics" {
			sub.Sections[i].Delete = true
		}
	}
	for i := range sub.TextContents {
		sub.TextContents[i].Delete = true
	}

	_, err = svc.SubmitCourse(context.Background(), 1, &courseID, sub)
	require.NoError(t, err)

	sections, _ := store.GetSectionsByCourseID(context.Background(), courseID)
	assert.Len(t, sections, 1)
	contents, _ := store.GetContentsByCourseID(context.Background(), courseID)
	assert.Empty(t, contents)
}

func TestSubmitCourseImageReplacementQueuesOldFile(t *testing.T) {
	store := newFakeEditorStore()
	svc, files := newEditorService(store)

	sub := validSubmission()
	sub.ImageContents = []dto.ImageContentRow{
		{SectionOrder: 1, Order: 2, Image: "/uploads/courses/old.png", AltText: "diagram"},
	}

	res, err := svc.SubmitCourse(context.Background(), 1, nil, sub)
	require.NoError(t, err)
	courseID := res.Course.ID
	assert.Empty(t, files.deleted)

	snap, _ := svc.LoadCourseForEdit(context.Background(), courseID)
	sub2 := snap.Submission(dto.ActionSaveDraft)
	for i := range sub2.ImageContents {
		sub2.ImageContents[i].Image = "/uploads/courses/new.png"
	}

	_, err = svc.SubmitCourse(context.Background(), 1, &courseID, sub2)
	require.NoError(t, err)
	assert.Equal(t, []string{"/uploads/courses/old.png"}, files.deleted)
}

func TestSubmitCourseDeleteActionRemovesFiles(t *testing.T) {
	store := newFakeEditorStore()
	svc, files := newEditorService(store)

	sub := validSubmission()
	sub.ImageContents = []dto.ImageContentRow{
		{SectionOrder: 1, Order: 2, Image: "/uploads/courses/pic.png", AltText: "pic"},
	}
	res, err := svc.SubmitCourse(context.Background(), 1, nil, sub)
	require.NoError(t, err)
	courseID := res.Course.ID

	del, err := svc.SubmitCourse(context.Background(), 1, &courseID, &dto.CourseSubmission{Action: dto.ActionDeleteCourse})
	require.NoError(t, err)
	assert.True(t, del.Deleted)
	assert.Equal(t, []string{"/uploads/courses/pic.png"}, files.deleted)

	_, err = store.GetCourseByID(context.Background(), courseID)
	assert.ErrorIs(t, err, apperrors.ErrCourseNotFound)
}

func TestSubmitCoursePublishSetsStatus(t *testing.T) {
	store := newFakeEditorStore()
	svc, _ := newEditorService(store)

	sub := validSubmission()
	sub.Action = dto.ActionPublish

	res, err := svc.SubmitCourse(context.Background(), 1, nil, sub)
	require.NoError(t, err)
	require.NotNil(t, res.Course)
	assert.Equal(t, models.CourseStatusPublished, res.Course.Status)
}
