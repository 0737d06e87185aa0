package devapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/layer-3/portal/core"
	"github.com/rs/zerolog"
)

const subjectKey = "subject"

// Handlers contains HTTP handlers for the development API
type Handlers struct {
	auth      *AuthService
	directory *Directory
	log       zerolog.Logger
}

// NewHandlers creates new development API handlers
func NewHandlers(auth *AuthService, directory *Directory, log zerolog.Logger) *Handlers {
	return &Handlers{auth: auth, directory: directory, log: log}
}

// Login handles the login request
func (h *Handlers) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, &FieldError{Status: http.StatusBadRequest, Field: "email", Code: "INVALID_EMAIL"})
		return
	}

	pair, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}

	writeData(c, core.Tokens{AccessToken: pair.Access, RefreshToken: pair.Refresh})
}

// Register handles account registration
func (h *Handlers) Register(c *gin.Context) {
	var req struct {
		Email           string `json:"email" binding:"required,email"`
		Password        string `json:"password" binding:"required"`
		ConfirmPassword string `json:"confirmPassword" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, &FieldError{Status: http.StatusBadRequest, Field: "email", Code: "INVALID_EMAIL"})
		return
	}

	if err := h.directory.Register(req.Email, req.Password, req.ConfirmPassword); err != nil {
		writeError(c, err)
		return
	}

	writeData(c, core.Registration{Email: req.Email})
}

// Refresh handles token refresh
func (h *Handlers) Refresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, &FieldError{Status: http.StatusBadRequest, Field: "refresh_token", Code: "REQUIRED"})
		return
	}

	pair, err := h.auth.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		h.log.Debug().Err(err).Msg("refresh rejected")
		writeError(c, err)
		return
	}

	writeData(c, core.Tokens{AccessToken: pair.Access, RefreshToken: pair.Refresh})
}

// RequestReset issues a password reset token. The token is logged instead of mailed.
func (h *Handlers) RequestReset(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, &FieldError{Status: http.StatusBadRequest, Field: "email", Code: "INVALID_EMAIL"})
		return
	}

	token, err := h.directory.RequestReset(req.Email)
	if err != nil {
		writeError(c, err)
		return
	}

	h.log.Info().Str("email", req.Email).Str("reset_token", token).Msg("password reset requested")

	writeData(c, true)
}

// Reset sets a new password
func (h *Handlers) Reset(c *gin.Context) {
	var req struct {
		Token           string `json:"token"`
		Password        string `json:"password" binding:"required"`
		ConfirmPassword string `json:"confirmPassword" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, &FieldError{Status: http.StatusBadRequest, Field: "password", Code: "REQUIRED"})
		return
	}

	if err := h.directory.Reset(req.Token, req.Password, req.ConfirmPassword); err != nil {
		writeError(c, err)
		return
	}

	writeData(c, true)
}

// StudyPrograms lists the study programs
func (h *Handlers) StudyPrograms(c *gin.Context) {
	writeData(c, h.directory.StudyPrograms())
}

// Schedules returns the timetable of the authenticated user
func (h *Handlers) Schedules(c *gin.Context) {
	schedules, err := h.directory.Schedules(c.GetString(subjectKey))
	if err != nil {
		writeError(c, err)
		return
	}

	writeData(c, schedules)
}

// SyncSchedules acknowledges a synchronization request
func (h *Handlers) SyncSchedules(c *gin.Context) {
	if _, err := h.directory.Schedules(c.GetString(subjectKey)); err != nil {
		writeError(c, err)
		return
	}

	writeData(c, core.MsgSyncStarted)
}

// Health answers liveness probes
func (h *Handlers) Health(c *gin.Context) {
	writeData(c, "ok")
}

func writeData(c *gin.Context, data any) {
	c.JSON(http.StatusOK, core.Response[any]{Data: data})
}

func writeError(c *gin.Context, err error) {
	statusCode := http.StatusInternalServerError
	field, code := "server", "INTERNAL"

	var fieldErr *FieldError
	switch {
	case errors.As(err, &fieldErr):
		statusCode, field, code = fieldErr.Status, fieldErr.Field, fieldErr.Code
	case errors.Is(err, core.ErrTokenExpired):
		statusCode, field, code = http.StatusUnauthorized, "token", "EXPIRED"
	case errors.Is(err, core.ErrTokenInvalidated):
		statusCode, field, code = http.StatusUnauthorized, "token", "REVOKED"
	case errors.Is(err, core.ErrInvalidToken):
		statusCode, field, code = http.StatusUnauthorized, "token", "INVALID"
	}

	c.AbortWithStatusJSON(statusCode, core.ErrorResponse{
		RequestID: c.GetHeader("X-Request-Id"),
		Errors:    map[string][]string{field: {code}},
	})
}
