package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/kerem/learnly/internal/app/controllers"
	"github.com/kerem/learnly/internal/middleware"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	authController *controllers.AuthController,
	courseController *controllers.CourseController,
	quizController *controllers.QuizController,
	scheduleController *controllers.ScheduleController,
	transcriptionController *controllers.TranscriptionController,
	authMiddleware *middleware.AuthMiddleware,
) {
	// API version group
	v1 := router.Group("/api/v1")

	// --- Public Auth routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/register", authController.Register)
		auth.POST("/login", authController.Login)
	}

	// --- Authenticated Routes Group ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())
	{
		profile := authenticated.Group("/auth/profile")
		{
			profile.GET("", authController.GetProfile)
			profile.PUT("", authController.UpdateProfile)
		}

		// Learner-facing course routes
		courses := authenticated.Group("/courses")
		{
			courses.GET("", courseController.ListCourses)
			courses.GET("/:slug", courseController.GetCourse)
			courses.POST("/:id/save", courseController.ToggleSave)
			courses.POST("/:id/schedule", scheduleController.ApplySchedule)
		}

		quizzes := authenticated.Group("/quizzes")
		{
			quizzes.POST("/:id/answer", quizController.SubmitAnswer)
		}

		// Authoring surface - content managers and superusers only
		manage := authenticated.Group("/manage")
		manage.Use(authMiddleware.ContentManagerRequired())
		{
			manage.GET("/courses", courseController.ListManagedCourses)
			manage.POST("/courses", courseController.CreateCourse)
			manage.GET("/courses/:id", courseController.LoadCourseForEdit)
			manage.PUT("/courses/:id", courseController.UpdateCourse)
			manage.POST("/uploads", courseController.UploadFile)
			manage.POST("/transcribe", transcriptionController.Transcribe)
		}
	}
}
