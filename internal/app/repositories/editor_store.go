package repositories

// CourseEditorStore bundles the repositories the course authoring flow
// touches so the whole row reconciliation can run on one transaction.
type CourseEditorStore struct {
	*CourseRepository
	*SectionRepository
	*ContentRepository
	*QuizRepository
}

// NewCourseEditorStore creates a store bound to the given connection.
func NewCourseEditorStore(db DBTX) *CourseEditorStore {
	return &CourseEditorStore{
		CourseRepository:  NewCourseRepository(db),
		SectionRepository: NewSectionRepository(db),
		ContentRepository: NewContentRepository(db),
		QuizRepository:    NewQuizRepository(db),
	}
}

// WithTx returns a copy of the store bound to the given transaction.
func (s *CourseEditorStore) WithTx(tx DBTX) *CourseEditorStore {
	return NewCourseEditorStore(tx)
}
