package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kerem/learnly/internal/app/models/dto"
	"github.com/kerem/learnly/internal/app/services"
	"github.com/kerem/learnly/internal/middleware"
)

// ScheduleController handles study scheduling
type ScheduleController struct {
	scheduleService services.IScheduleService
}

// NewScheduleController creates a new ScheduleController
func NewScheduleController(scheduleService services.IScheduleService) *ScheduleController {
	return &ScheduleController{
		scheduleService: scheduleService,
	}
}

// ApplySchedule runs a schedule action for a course
// @Summary Schedule, reschedule or unschedule a course
// @Description Drives the schedule state machine. Sessions must be planned at least 30 minutes ahead.
// @Tags schedules
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Param request body dto.ScheduleRequest true "Schedule action"
// @Success 200 {object} dto.APIResponse{data=dto.ScheduleResponse} "Schedule state updated"
// @Failure 400 {object} dto.ErrorResponse "Invalid request or scheduled time too soon"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 404 {object} dto.ErrorResponse "Course not found or nothing scheduled"
// @Failure 409 {object} dto.ErrorResponse "Course already scheduled"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /courses/{id}/schedule [post]
func (c *ScheduleController) ApplySchedule(ctx *gin.Context) {
	userID, _ := middleware.GetUserID(ctx)
	courseID, err := parseIDParam(ctx, "id")
	if err != nil {
		return
	}

	var req dto.ScheduleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid schedule request")
		errorDetail = errorDetail.WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	resp, err := c.scheduleService.ApplyScheduleAction(ctx, userID, courseID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      resp,
		Timestamp: time.Now(),
	})
}
