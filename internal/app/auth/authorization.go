package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/kerem/learnly/internal/app/models"
	"github.com/kerem/learnly/internal/app/repositories"
	"github.com/kerem/learnly/internal/pkg/apperrors"
	"github.com/kerem/learnly/internal/pkg/logger"
)

// Common errors specific to authorization that aren't in the central apperrors
var (
	ErrNotContentManager = errors.New("only content managers can perform this action")
	ErrPermissionDenied  = errors.New("you don't have permission for this action")
)

// AuthorizationService handles authorization operations
type AuthorizationService struct {
	userRepo   *repositories.UserRepository
	courseRepo *repositories.CourseRepository
}

// NewAuthorizationService creates a new AuthorizationService
func NewAuthorizationService(userRepo *repositories.UserRepository, courseRepo *repositories.CourseRepository) *AuthorizationService {
	return &AuthorizationService{
		userRepo:   userRepo,
		courseRepo: courseRepo,
	}
}

// IsContentManager checks if the user may author courses. Superusers
// implicitly hold content-manager rights.
func (s *AuthorizationService) IsContentManager(ctx context.Context, userID int64) (bool, error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return false, apperrors.ErrUserNotFound
		}
		logger.Error().Err(err).Int64("userID", userID).Msg("Error getting user by ID in IsContentManager")
		return false, err
	}
	return user.IsContentManager(), nil
}

// ValidateContentManager validates if the user is a content manager or returns an error
func (s *AuthorizationService) ValidateContentManager(ctx context.Context, userID int64) error {
	isManager, err := s.IsContentManager(ctx, userID)
	if err != nil {
		return err
	}

	if !isManager {
		return ErrNotContentManager
	}

	return nil
}

// CanModifyCourse checks if the user can modify (edit/delete) a course.
// Course authors may modify their own courses; superusers may modify any.
func (s *AuthorizationService) CanModifyCourse(ctx context.Context, courseID, userID int64) (bool, error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return false, apperrors.ErrUserNotFound
		}
		logger.Error().Err(err).Int64("userID", userID).Msg("Error getting user by ID in CanModifyCourse")
		return false, err
	}

	if !user.IsContentManager() {
		return false, nil
	}
	if user.RoleType == models.RoleSuperuser {
		return true, nil
	}

	course, err := s.courseRepo.GetCourseByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, apperrors.ErrCourseNotFound) {
			return false, apperrors.ErrCourseNotFound
		}
		logger.Error().Err(err).Int64("courseID", courseID).Msg("Error getting course by ID")
		return false, err
	}

	return course.CreatedBy != nil && *course.CreatedBy == userID, nil
}

// ValidateCourseOwnership validates if the user may modify the course or
// returns an error.
func (s *AuthorizationService) ValidateCourseOwnership(ctx context.Context, courseID, userID int64) error {
	canModify, err := s.CanModifyCourse(ctx, courseID, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrCourseNotFound) || errors.Is(err, apperrors.ErrUserNotFound) {
			return err
		}
		logger.Error().Err(err).Int64("courseID", courseID).Int64("userID", userID).Msg("Unexpected error during course ownership validation")
		return fmt.Errorf("failed to check course ownership: %w", err)
	}

	if !canModify {
		return ErrPermissionDenied
	}

	return nil
}

// GetUserInfo returns user information
func (s *AuthorizationService) GetUserInfo(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		logger.Error().Err(err).Int64("userID", userID).Msg("Error getting user by ID in GetUserInfo")
		return nil, fmt.Errorf("failed to get user information: %w", err)
	}

	return user, nil
}
