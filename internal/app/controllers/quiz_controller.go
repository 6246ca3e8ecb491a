package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kerem/learnly/internal/app/models/dto"
	"github.com/kerem/learnly/internal/app/services"
	"github.com/kerem/learnly/internal/middleware"
)

// QuizController handles quiz answering
type QuizController struct {
	quizService services.IQuizService
}

// NewQuizController creates a new QuizController
func NewQuizController(quizService services.IQuizService) *QuizController {
	return &QuizController{
		quizService: quizService,
	}
}

// SubmitAnswer checks a learner's answer to a quiz
// @Summary Submit a quiz answer
// @Description Compares the answer case-insensitively, ignoring surrounding whitespace. The answer clearing the course's last open quiz marks the course completed.
// @Tags quizzes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Quiz ID"
// @Param request body dto.SubmitAnswerRequest true "The answer"
// @Success 200 {object} dto.APIResponse{data=dto.SubmitAnswerResponse} "Answer checked"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 404 {object} dto.ErrorResponse "Quiz not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /quizzes/{id}/answer [post]
func (c *QuizController) SubmitAnswer(ctx *gin.Context) {
	userID, _ := middleware.GetUserID(ctx)
	quizID, err := parseIDParam(ctx, "id")
	if err != nil {
		return
	}

	var req dto.SubmitAnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Answer is required")
		errorDetail = errorDetail.WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	resp, err := c.quizService.SubmitAnswer(ctx, userID, quizID, req.Answer)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      resp,
		Timestamp: time.Now(),
	})
}
