package http

import (
	"github.com/gin-gonic/gin"
	"github.com/layer-3/portal/adapters/store"
	"github.com/layer-3/portal/service"
	"github.com/rs/zerolog"
)

// RouterDeps are the collaborators of the portal router
type RouterDeps struct {
	Portal  *service.PortalService
	Guard   *service.Guard
	Cookies store.CookieOptions
	Logger  zerolog.Logger
}

// SetupRouter sets up the Gin router
func SetupRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestID(), AccessLog(deps.Logger), SessionStore(deps.Cookies))

	handlers := NewPortalHandlers(deps.Portal)
	guest := Guard(deps.Guard, service.RequireGuest)
	session := Guard(deps.Guard, service.RequireSession)

	router.GET("/", handlers.Home)
	router.GET("/health", handlers.Health)

	// Auth pages, only for visitors without a usable session
	auth := router.Group("/auth")
	{
		auth.GET("/login", guest, handlers.Page("login"))
		auth.POST("/login", handlers.Login)
		auth.GET("/register", guest, handlers.Page("register"))
		auth.POST("/register", handlers.Register)
		auth.GET("/forgot", guest, handlers.Page("forgot"))
		auth.POST("/forgot", handlers.Forgot)
		auth.GET("/reset", guest, handlers.ResetPage)
		auth.POST("/reset", handlers.Reset)
		auth.POST("/logout", handlers.Logout)
	}

	// User pages, protected
	user := router.Group("/user")
	user.Use(session)
	{
		user.GET("/dashboard", handlers.Dashboard)
		user.POST("/dashboard/refresh", handlers.DashboardRefresh)
		user.POST("/dashboard/sync", handlers.DashboardSync)
	}

	return router
}
