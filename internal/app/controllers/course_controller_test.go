package controllers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	appauth "github.com/kerem/learnly/internal/app/auth"
	"github.com/kerem/learnly/internal/middleware"
	"github.com/kerem/learnly/internal/pkg/apperrors"
)

func TestOwnershipErrorHidesCourseExistence(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "not the owner", err: appauth.ErrPermissionDenied, want: apperrors.ErrCourseNotFound},
		{name: "not a content manager", err: appauth.ErrNotContentManager, want: apperrors.ErrCourseNotFound},
		{name: "missing course passes through", err: apperrors.ErrCourseNotFound, want: apperrors.ErrCourseNotFound},
		{name: "unrelated error passes through", err: errors.New("connection reset"), want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ownershipError(tt.err)
			if tt.want != nil {
				assert.ErrorIs(t, got, tt.want)
			} else {
				assert.Equal(t, tt.err, got)
			}
		})
	}
}

func TestOwnershipErrorRendersNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(rec)

	// An authoring request against somebody else's course must answer
	// exactly like a request against a course that does not exist.
	middleware.HandleAPIError(ctx, ownershipError(appauth.ErrPermissionDenied))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
