package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kerem/learnly/internal/app/models/dto"
	"github.com/kerem/learnly/internal/middleware"
	"github.com/kerem/learnly/internal/pkg/transcription"
	"github.com/kerem/learnly/internal/pkg/validation"
)

// TranscriptionController turns hosted videos into transcription text the
// authoring form can prefill.
type TranscriptionController struct {
	provider transcription.Provider
}

// NewTranscriptionController creates a new TranscriptionController
func NewTranscriptionController(provider transcription.Provider) *TranscriptionController {
	return &TranscriptionController{
		provider: provider,
	}
}

// Transcribe fetches a transcription for a hosted video
// @Summary Transcribe a video
// @Description Sends the video URL to the transcription provider and returns the timed segments plus the joined text.
// @Tags manage
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.TranscribeRequest true "Video URL"
// @Success 200 {object} dto.APIResponse{data=dto.TranscribeResponse} "Transcription retrieved"
// @Failure 400 {object} dto.ErrorResponse "Invalid or unsupported video URL"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - User does not have permission"
// @Failure 502 {object} dto.ErrorResponse "Transcription provider failed"
// @Router /manage/transcribe [post]
func (c *TranscriptionController) Transcribe(ctx *gin.Context) {
	var req dto.TranscribeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Video URL is required")
		errorDetail = errorDetail.WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	if !validation.IsValidVideoURL(req.VideoURL) {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Video URL must point to YouTube or Vimeo")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	result, err := c.provider.Transcribe(ctx, req.VideoURL)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	segments := make([]dto.TranscriptionSegmentView, 0, len(result.Segments))
	for _, s := range result.Segments {
		segments = append(segments, dto.TranscriptionSegmentView{
			StartSeconds: s.StartSeconds,
			EndSeconds:   s.EndSeconds,
			Text:         s.Text,
		})
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data: dto.TranscribeResponse{
			Text:     result.Text,
			Segments: segments,
		},
		Timestamp: time.Now(),
	})
}
