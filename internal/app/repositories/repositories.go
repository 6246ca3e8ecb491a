package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBTX is the subset of pgx operations the repositories need. Both
// *pgxpool.Pool and pgx.Tx satisfy it, so a repository can run against the
// pool or, via WithTx, inside a transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository     *UserRepository
	CourseRepository   *CourseRepository
	SectionRepository  *SectionRepository
	ContentRepository  *ContentRepository
	QuizRepository     *QuizRepository
	AnswerRepository   *AnswerRepository
	ScheduleRepository *ScheduleRepository
}

// NewRepositories initializes all repositories
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		UserRepository:     NewUserRepository(db),
		CourseRepository:   NewCourseRepository(db),
		SectionRepository:  NewSectionRepository(db),
		ContentRepository:  NewContentRepository(db),
		QuizRepository:     NewQuizRepository(db),
		AnswerRepository:   NewAnswerRepository(db),
		ScheduleRepository: NewScheduleRepository(db),
	}
}
