package devapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware creates middleware that validates access tokens
func AuthMiddleware(auth *AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")

		// Check if the Authorization header is present and in correct format
		if len(header) < 8 || header[:7] != "Bearer " {
			writeError(c, &FieldError{Status: http.StatusUnauthorized, Field: "token", Code: "REQUIRED"})
			return
		}

		session, err := auth.ValidateAccessToken(c.Request.Context(), header[7:])
		if err != nil {
			writeError(c, err)
			return
		}

		c.Set(subjectKey, session.Subject)

		c.Next()
	}
}

// SetupRouter sets up the development API router
func SetupRouter(handlers *Handlers, auth *AuthService) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", handlers.Health)
	router.GET("/study/programs", handlers.StudyPrograms)

	authGroup := router.Group("/auth")
	{
		authGroup.POST("", handlers.Login)
		authGroup.POST("/register", handlers.Register)
		authGroup.POST("/refresh", handlers.Refresh)
		authGroup.POST("/reset/request", handlers.RequestReset)
		authGroup.POST("/reset", handlers.Reset)
	}

	user := router.Group("/user")
	user.Use(AuthMiddleware(auth))
	{
		user.GET("/schedules", handlers.Schedules)
		user.POST("/schedules/sync", handlers.SyncSchedules)
	}

	return router
}
