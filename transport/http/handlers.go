package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/layer-3/portal/core"
	"github.com/layer-3/portal/service"
)

// PortalHandlers contains HTTP handlers for the portal pages
type PortalHandlers struct {
	portal *service.PortalService
}

// NewPortalHandlers creates new portal handlers
func NewPortalHandlers(portal *service.PortalService) *PortalHandlers {
	return &PortalHandlers{portal: portal}
}

type loginForm struct {
	Email    string `form:"email" json:"email" binding:"required,email"`
	Password string `form:"password" json:"password" binding:"required,min=6"`
}

type registerForm struct {
	Email           string `form:"email" json:"email" binding:"required,email"`
	Password        string `form:"password" json:"password" binding:"required,min=6"`
	ConfirmPassword string `form:"confirmPassword" json:"confirmPassword" binding:"required,eqfield=Password"`
}

type forgotForm struct {
	Email string `form:"email" json:"email" binding:"required,email"`
}

type resetForm struct {
	Token           string `form:"token" json:"token" binding:"required,uuid"`
	Password        string `form:"password" json:"password" binding:"required,min=6"`
	ConfirmPassword string `form:"confirmPassword" json:"confirmPassword" binding:"required,eqfield=Password"`
}

// Home lists the study programs
func (h *PortalHandlers) Home(c *gin.Context) {
	c.JSON(http.StatusOK, h.portal.Home(c.Request.Context(), sessionFrom(c)))
}

// Page answers guarded form pages that have no data of their own
func (h *PortalHandlers) Page(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"page": name})
	}
}

// Login handles the login form
func (h *PortalHandlers) Login(c *gin.Context) {
	var form loginForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": core.MsgInvalidInput})
		return
	}

	location, err := h.portal.Login(c.Request.Context(), sessionFrom(c), form.Email, form.Password)
	if err != nil {
		writeFormError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"location": location})
}

// Register handles the registration form
func (h *PortalHandlers) Register(c *gin.Context) {
	var form registerForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": core.MsgInvalidInput})
		return
	}

	message, err := h.portal.Register(c.Request.Context(), form.Email, form.Password, form.ConfirmPassword)
	if err != nil {
		writeFormError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": message})
}

// Forgot handles the password reset request form
func (h *PortalHandlers) Forgot(c *gin.Context) {
	var form forgotForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": core.MsgInvalidInput})
		return
	}

	message, err := h.portal.ForgotPassword(c.Request.Context(), form.Email)
	if err != nil {
		writeFormError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": message})
}

// ResetPage requires the reset token in the id query parameter
func (h *PortalHandlers) ResetPage(c *gin.Context) {
	token := c.Query("id")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": core.MsgResetTokenInvalid})
		return
	}

	c.JSON(http.StatusOK, gin.H{"page": "reset", "token": token})
}

// Reset handles the new password form
func (h *PortalHandlers) Reset(c *gin.Context) {
	var form resetForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": core.MsgInvalidInput})
		return
	}

	message, err := h.portal.ResetPassword(c.Request.Context(), form.Token, form.Password, form.ConfirmPassword)
	if err != nil {
		writeFormError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": message})
}

// Logout clears the session cookies
func (h *PortalHandlers) Logout(c *gin.Context) {
	if err := h.portal.Logout(c.Request.Context(), sessionFrom(c)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Dashboard shows the user's schedules
func (h *PortalHandlers) Dashboard(c *gin.Context) {
	view := h.portal.Dashboard(c.Request.Context(), sessionFrom(c))
	if view.Redirect != "" {
		c.Redirect(http.StatusSeeOther, view.Redirect)
		return
	}

	c.JSON(http.StatusOK, view)
}

// DashboardRefresh reloads the user's schedules
func (h *PortalHandlers) DashboardRefresh(c *gin.Context) {
	view := h.portal.Dashboard(c.Request.Context(), sessionFrom(c))
	if view.Redirect != "" {
		c.Redirect(http.StatusSeeOther, view.Redirect)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       view.Notice == "",
		"schedules":     view.Schedules,
		"total_credits": view.TotalCredits,
		"notice":        view.Notice,
	})
}

// DashboardSync starts a schedule synchronization
func (h *PortalHandlers) DashboardSync(c *gin.Context) {
	result := h.portal.SyncSchedules(c.Request.Context(), sessionFrom(c))
	if result.Redirect != "" {
		c.Redirect(http.StatusSeeOther, result.Redirect)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Health reports portal and API availability
func (h *PortalHandlers) Health(c *gin.Context) {
	view := h.portal.Health(c.Request.Context())

	status := http.StatusOK
	if view.API != "ok" {
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, view)
}

func writeFormError(c *gin.Context, err error) {
	var formErr *service.FormError
	if errors.As(err, &formErr) {
		c.JSON(formErr.Status, gin.H{"error": formErr.Message})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{"error": core.MsgTryAgainLater})
}
