package seed

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	appModels "github.com/kerem/learnly/internal/app/models"
	appRepos "github.com/kerem/learnly/internal/app/repositories"
	"github.com/kerem/learnly/internal/pkg/helpers"
)

// CreateDefaultData creates the default users and a demo course if they
// don't exist yet. Errors are collected so a single failure does not stop
// the rest of the seeding.
func CreateDefaultData(ctx context.Context, dbPool *pgxpool.Pool, lgr zerolog.Logger) error {
	userRepo := appRepos.NewUserRepository(dbPool)
	courseRepo := appRepos.NewCourseRepository(dbPool)
	sectionRepo := appRepos.NewSectionRepository(dbPool)
	contentRepo := appRepos.NewContentRepository(dbPool)
	quizRepo := appRepos.NewQuizRepository(dbPool)

	lgr.Info().Msg("Checking/Creating default data (users/demo course)...")
	var finalErr error

	defaultUsers := []struct {
		email     string
		password  string
		firstName string
		lastName  string
		role      appModels.RoleType
	}{
		{"admin@learnly.app", "Admin123!", "System", "Administrator", appModels.RoleSuperuser},
		{"editor@learnly.app", "Editor123!", "Demo", "Editor", appModels.RoleContentManager},
		{"learner@learnly.app", "Learner123!", "Demo", "Learner", appModels.RoleNormal},
	}

	var editorID int64
	for _, u := range defaultUsers {
		exists, err := userRepo.EmailExists(ctx, u.email)
		if err != nil {
			lgr.Error().Err(err).Str("email", u.email).Msg("Error checking if default user exists")
			finalErr = errors.Join(finalErr, err)
			continue
		}
		if exists {
			if u.role == appModels.RoleContentManager {
				if existing, err := userRepo.GetUserByEmail(ctx, u.email); err == nil {
					editorID = existing.ID
				}
			}
			continue
		}

		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		if err != nil {
			lgr.Error().Err(err).Str("email", u.email).Msg("Error hashing default user password")
			finalErr = errors.Join(finalErr, err)
			continue
		}

		userID, err := userRepo.CreateUser(ctx, &appModels.User{
			Email:     u.email,
			Password:  string(hashedPassword),
			FirstName: u.firstName,
			LastName:  u.lastName,
			RoleType:  u.role,
			IsActive:  true,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		})
		if err != nil {
			lgr.Error().Err(err).Str("email", u.email).Msg("Error creating default user")
			finalErr = errors.Join(finalErr, err)
			continue
		}
		if u.role == appModels.RoleContentManager {
			editorID = userID
		}
		lgr.Info().Int64("userID", userID).Str("email", u.email).Msg("Default user created")
	}

	if editorID == 0 {
		lgr.Warn().Msg("No content manager available, skipping demo course seeding")
		return finalErr
	}

	if err := createDemoCourse(ctx, lgr, courseRepo, sectionRepo, contentRepo, quizRepo, editorID); err != nil {
		finalErr = errors.Join(finalErr, err)
	}

	lgr.Info().Msg("Default data check/creation finished.")
	return finalErr
}

func createDemoCourse(
	ctx context.Context,
	lgr zerolog.Logger,
	courseRepo *appRepos.CourseRepository,
	sectionRepo *appRepos.SectionRepository,
	contentRepo *appRepos.ContentRepository,
	quizRepo *appRepos.QuizRepository,
	editorID int64,
) error {
	title := "Getting Started with Go"

	exists, err := courseRepo.TitleExists(ctx, title, nil)
	if err != nil {
		lgr.Error().Err(err).Msg("Error checking if demo course exists")
		return err
	}
	if exists {
		lgr.Info().Msg("Demo course already exists, skipping creation")
		return nil
	}

	courseID, err := courseRepo.CreateCourse(ctx, &appModels.Course{
		Title:                   title,
		Slug:                    helpers.Slugify(title),
		Description:             "A short tour of the Go programming language for newcomers.",
		Difficulty:              appModels.DifficultyJunior,
		EstimatedCompletionTime: 30,
		Status:                  appModels.CourseStatusPublished,
		CreatedBy:               &editorID,
	})
	if err != nil {
		lgr.Error().Err(err).Msg("Error creating demo course")
		return err
	}

	basicsID, err := sectionRepo.CreateSection(ctx, &appModels.Section{
		CourseID:   courseID,
		Title:      "The Basics",
		OrderIndex: 1,
	})
	if err != nil {
		lgr.Error().Err(err).Msg("Error creating demo section")
		return err
	}

	practiceID, err := sectionRepo.CreateSection(ctx, &appModels.Section{
		CourseID:   courseID,
		Title:      "Check Your Knowledge",
		OrderIndex: 2,
	})
	if err != nil {
		lgr.Error().Err(err).Msg("Error creating demo section")
		return err
	}

	if _, err := contentRepo.CreateContent(ctx, &appModels.Content{
		SectionID:   basicsID,
		ContentType: appModels.ContentTypeText,
		TextContent: "Go is a statically typed, compiled language designed for simplicity. Every program starts in package main.",
		OrderIndex:  1,
	}); err != nil {
		lgr.Error().Err(err).Msg("Error creating demo text content")
		return err
	}

	if _, err := contentRepo.CreateContent(ctx, &appModels.Content{
		SectionID:          basicsID,
		ContentType:        appModels.ContentTypeVideo,
		VideoURL:           "https://www.youtube.com/watch?v=446E-r0rXHI",
		VideoTranscription: "Welcome to Go. In this lesson we install the toolchain and write our first program.",
		OrderIndex:         2,
	}); err != nil {
		lgr.Error().Err(err).Msg("Error creating demo video content")
		return err
	}

	if _, err := quizRepo.CreateQuiz(ctx, &appModels.Quiz{
		SectionID:     practiceID,
		Question:      "Which keyword declares a new function in Go?",
		CorrectAnswer: "func",
		OrderIndex:    1,
	}); err != nil {
		lgr.Error().Err(err).Msg("Error creating demo quiz")
		return err
	}

	lgr.Info().Int64("courseID", courseID).Msg("Demo course created")
	return nil
}
