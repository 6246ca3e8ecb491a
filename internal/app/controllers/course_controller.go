package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	appauth "github.com/kerem/learnly/internal/app/auth"
	"github.com/kerem/learnly/internal/app/models"
	"github.com/kerem/learnly/internal/app/models/dto"
	"github.com/kerem/learnly/internal/app/repositories"
	"github.com/kerem/learnly/internal/app/services"
	"github.com/kerem/learnly/internal/middleware"
	"github.com/kerem/learnly/internal/pkg/apperrors"
	"github.com/kerem/learnly/internal/pkg/filestorage"
	"github.com/kerem/learnly/internal/pkg/helpers"
)

// CourseController handles learner-facing course reads and the authoring
// endpoints.
type CourseController struct {
	editorService services.ICourseEditorService
	viewService   services.ICourseViewService
	authzService  *appauth.AuthorizationService
	fileStorage   filestorage.FileStorage
}

// NewCourseController creates a new CourseController
func NewCourseController(editorService services.ICourseEditorService, viewService services.ICourseViewService, authzService *appauth.AuthorizationService, fileStorage filestorage.FileStorage) *CourseController {
	return &CourseController{
		editorService: editorService,
		viewService:   viewService,
		authzService:  authzService,
		fileStorage:   fileStorage,
	}
}

// ownershipError translates authorization failures on a specific course into
// the central taxonomy. A caller who does not own the course learns nothing
// beyond "not found".
func ownershipError(err error) error {
	if errors.Is(err, appauth.ErrPermissionDenied) || errors.Is(err, appauth.ErrNotContentManager) {
		return apperrors.ErrCourseNotFound
	}
	return err
}

// ListCourses retrieves the course catalog
// @Summary List courses
// @Description Retrieves a paginated course listing. Non-managers only see published courses.
// @Tags courses
// @Produce json
// @Security BearerAuth
// @Param difficulty query string false "Filter by difficulty (junior, intermediate, advanced)"
// @Param saved query bool false "Only the caller's saved courses"
// @Param page query int false "Page number (1-based)"
// @Param size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.CourseListResponse} "Courses retrieved successfully"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /courses [get]
func (c *CourseController) ListCourses(ctx *gin.Context) {
	userID, _ := middleware.GetUserID(ctx)
	page, size := helpers.ParsePaginationParams(ctx)

	params := repositories.ListCoursesParams{Page: page, Size: size}

	if d := ctx.Query("difficulty"); d != "" {
		diff := models.Difficulty(d)
		if !models.ValidDifficulty(diff) {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid difficulty filter")
			ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
			return
		}
		params.Difficulty = &diff
	}
	if ctx.Query("saved") == "true" {
		params.SavedBy = &userID
	}

	// Draft courses stay invisible outside the authoring surface.
	published := models.CourseStatusPublished
	params.Status = &published

	resp, err := c.viewService.ListCourses(ctx, params)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      resp,
		Timestamp: time.Now(),
	})
}

// ListManagedCourses retrieves the caller's own courses
// @Summary List managed courses
// @Description Retrieves the caller's courses in any status, drafts included.
// @Tags manage
// @Produce json
// @Security BearerAuth
// @Param status query string false "Filter by status (draft, published)"
// @Param page query int false "Page number (1-based)"
// @Param size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.CourseListResponse} "Courses retrieved successfully"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /manage/courses [get]
func (c *CourseController) ListManagedCourses(ctx *gin.Context) {
	userID, _ := middleware.GetUserID(ctx)
	page, size := helpers.ParsePaginationParams(ctx)

	params := repositories.ListCoursesParams{Page: page, Size: size, CreatedBy: &userID}

	if s := ctx.Query("status"); s != "" {
		status := models.CourseStatus(s)
		if !models.ValidCourseStatus(status) {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid status filter")
			ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
			return
		}
		params.Status = &status
	}

	resp, err := c.viewService.ListCourses(ctx, params)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      resp,
		Timestamp: time.Now(),
	})
}

// GetCourse retrieves one course as a learner sees it
// @Summary Get course by slug
// @Description Assembles the full course tree. Quiz answers are replaced by masked placeholders until answered.
// @Tags courses
// @Produce json
// @Security BearerAuth
// @Param slug path string true "Course slug"
// @Success 200 {object} dto.APIResponse{data=dto.CourseView} "Course retrieved successfully"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 404 {object} dto.ErrorResponse "Course not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /courses/{slug} [get]
func (c *CourseController) GetCourse(ctx *gin.Context) {
	userID, _ := middleware.GetUserID(ctx)
	slug := ctx.Param("slug")

	view, err := c.viewService.GetCourseBySlug(ctx, slug, userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	// Drafts are only visible to users who could edit them.
	if view.Status == models.CourseStatusDraft {
		isManager, err := c.authzService.IsContentManager(ctx, userID)
		if err != nil || !isManager {
			middleware.HandleAPIError(ctx, apperrors.ErrCourseNotFound)
			return
		}
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      view,
		Timestamp: time.Now(),
	})
}

// ToggleSave flips a course on or off the caller's saved list
// @Summary Toggle saved course
// @Tags courses
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Success 200 {object} dto.APIResponse{data=dto.ToggleSaveResponse} "Save state toggled"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 404 {object} dto.ErrorResponse "Course not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /courses/{id}/save [post]
func (c *CourseController) ToggleSave(ctx *gin.Context) {
	userID, _ := middleware.GetUserID(ctx)
	courseID, err := parseIDParam(ctx, "id")
	if err != nil {
		return
	}

	saved, err := c.viewService.ToggleSave(ctx, userID, courseID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      dto.ToggleSaveResponse{Saved: saved},
		Timestamp: time.Now(),
	})
}

// CreateCourse handles a create submission of the authoring form
// @Summary Create a course
// @Description Applies a full authoring submission: course fields, action token and every row collection, atomically.
// @Tags manage
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CourseSubmission true "Course submission"
// @Success 201 {object} dto.APIResponse{data=models.Course} "Course created"
// @Failure 400 {object} dto.ErrorResponse "Invalid submission"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 409 {object} dto.ErrorResponse "Title already in use or stale row reference"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /manage/courses [post]
func (c *CourseController) CreateCourse(ctx *gin.Context) {
	c.submitCourse(ctx, nil)
}

// UpdateCourse handles an edit submission of the authoring form
// @Summary Edit a course
// @Description Applies a full authoring submission against an existing course.
// @Tags manage
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Param request body dto.CourseSubmission true "Course submission"
// @Success 200 {object} dto.APIResponse{data=models.Course} "Course updated"
// @Failure 400 {object} dto.ErrorResponse "Invalid submission"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 404 {object} dto.ErrorResponse "Course not found"
// @Failure 409 {object} dto.ErrorResponse "Title already in use or stale row reference"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /manage/courses/{id} [put]
func (c *CourseController) UpdateCourse(ctx *gin.Context) {
	courseID, err := parseIDParam(ctx, "id")
	if err != nil {
		return
	}
	c.submitCourse(ctx, &courseID)
}

func (c *CourseController) submitCourse(ctx *gin.Context, courseID *int64) {
	userID, _ := middleware.GetUserID(ctx)

	if courseID != nil {
		if err := c.authzService.ValidateCourseOwnership(ctx, *courseID, userID); err != nil {
			middleware.HandleAPIError(ctx, ownershipError(err))
			return
		}
	}

	var submission dto.CourseSubmission
	if err := ctx.ShouldBindJSON(&submission); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid course submission")
		errorDetail = errorDetail.WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	result, err := c.editorService.SubmitCourse(ctx, userID, courseID, &submission)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	switch {
	case result.Deleted:
		ctx.JSON(http.StatusOK, dto.APIResponse{
			Success:   true,
			Message:   "Course deleted",
			Timestamp: time.Now(),
		})

	case result.ValidationErrors != nil:
		// The snapshot echoes the submitted rows so the client can
		// redisplay exactly what was typed.
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Course submission failed validation")
		errorDetail = errorDetail.WithDetails(gin.H{
			"errors":   result.ValidationErrors.Errors,
			"snapshot": result.Snapshot,
		})
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))

	default:
		status := http.StatusOK
		if courseID == nil {
			status = http.StatusCreated
		}
		ctx.JSON(status, dto.APIResponse{
			Success:   true,
			Data:      result.Course,
			Timestamp: time.Now(),
		})
	}
}

// LoadCourseForEdit returns the authoring snapshot of a course
// @Summary Load course for editing
// @Description Returns the persisted course in the authoring form's shape so the form can be prefilled.
// @Tags manage
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Success 200 {object} dto.APIResponse{data=dto.CourseSnapshot} "Snapshot retrieved"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 404 {object} dto.ErrorResponse "Course not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /manage/courses/{id} [get]
func (c *CourseController) LoadCourseForEdit(ctx *gin.Context) {
	userID, _ := middleware.GetUserID(ctx)
	courseID, err := parseIDParam(ctx, "id")
	if err != nil {
		return
	}

	if err := c.authzService.ValidateCourseOwnership(ctx, courseID, userID); err != nil {
		middleware.HandleAPIError(ctx, ownershipError(err))
		return
	}

	snapshot, err := c.editorService.LoadCourseForEdit(ctx, courseID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      snapshot,
		Timestamp: time.Now(),
	})
}

// UploadFile stores a content image and returns its URL
// @Summary Upload a file
// @Description Stores an uploaded image and returns the URL to reference from image content rows.
// @Tags manage
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "File to upload"
// @Success 201 {object} dto.APIResponse{data=dto.UploadResponse} "File stored"
// @Failure 400 {object} dto.ErrorResponse "No file provided"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /manage/uploads [post]
func (c *CourseController) UploadFile(ctx *gin.Context) {
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "No file provided")
		errorDetail = errorDetail.WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	url, err := c.fileStorage.SaveFileWithPath(fileHeader, "courses")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.APIResponse{
		Data:      dto.UploadResponse{URL: url},
		Timestamp: time.Now(),
	})
}

// parseIDParam reads a positive int64 path parameter, writing the error
// response itself on failure.
func parseIDParam(ctx *gin.Context, name string) (int64, error) {
	idStr := ctx.Param(name)
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid "+name+" parameter")
		errorDetail = errorDetail.WithDetails(name + " must be a valid number")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		if err == nil {
			err = errors.New("non-positive id")
		}
		return 0, err
	}
	return id, nil
}
