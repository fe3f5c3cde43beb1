package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mesoforge/mesocycle-app/internal/domain"
	"mesoforge/mesocycle-app/internal/service"
)

// SetupRoutes wires all handlers into the gin engine.
func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	authService service.AuthService,
	catalogService service.CatalogService,
	planService service.PlanService,
) {
	authHandler := NewAuthHandler(authService)
	exerciseHandler := NewExerciseHandler(catalogService)
	planHandler := NewPlanHandler(planService)

	authMiddleware := AuthMiddleware(jwtSecret)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		// --- Exercise Catalog ---
		exerciseGroup := protected.Group("/exercises")
		{
			exerciseGroup.GET("", exerciseHandler.ListExercises)
			exerciseGroup.GET("/:id", exerciseHandler.GetExercise)
			exerciseGroup.GET("/:id/video", exerciseHandler.GetVideoURL)

			// Catalog writes are trainer-only.
			exerciseGroup.POST("", RoleMiddleware(domain.RoleTrainer), exerciseHandler.CreateExercise)
			exerciseGroup.PUT("/:id", RoleMiddleware(domain.RoleTrainer), exerciseHandler.UpdateExercise)
			exerciseGroup.DELETE("/:id", RoleMiddleware(domain.RoleTrainer), exerciseHandler.DeleteExercise)
			exerciseGroup.POST("/:id/video", RoleMiddleware(domain.RoleTrainer), exerciseHandler.RequestVideoUpload)
		}

		// --- Mesocycle Plans ---
		planGroup := protected.Group("/plans")
		{
			planGroup.POST("", planHandler.GeneratePlan)
			planGroup.GET("/active", planHandler.GetActivePlan)
			planGroup.GET("/:planId", planHandler.GetPlan)
			planGroup.DELETE("/:planId", planHandler.DeletePlan)
			planGroup.POST("/:planId/regenerate", planHandler.RegeneratePlan)
			planGroup.GET("/:planId/validate", planHandler.ValidatePlan)
			planGroup.GET("/:planId/calendar", planHandler.GetCalendar)

			// Mutation operations; each request carries the plan generation
			// the caller last read.
			planGroup.POST("/:planId/days", planHandler.EnsureDay)
			planGroup.POST("/:planId/exercises", planHandler.AddExercise)
			planGroup.DELETE("/:planId/exercises", planHandler.RemoveExercise)
			planGroup.POST("/:planId/exercises/reorder", planHandler.ReorderExercises)
			planGroup.POST("/:planId/workouts/move", planHandler.MoveWorkout)
		}
	}
}
