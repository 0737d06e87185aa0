package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/layer-3/portal/core"
	"github.com/layer-3/portal/ports"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// FormError is a form action failure carrying user-facing copy
type FormError struct {
	Status  int
	Message string
	Err     error
}

func (e *FormError) Error() string {
	return e.Message
}

func (e *FormError) Unwrap() error {
	return e.Err
}

// DashboardView is the data of the dashboard page
type DashboardView struct {
	Schedules    []core.Schedule `json:"schedules"`
	TotalCredits decimal.Decimal `json:"total_credits"`
	Notice       string          `json:"notice,omitempty"`

	// Redirect is set when the session was rejected and has been cleared
	Redirect string `json:"redirect,omitempty"`
}

// SyncResult is the outcome of a schedule synchronization request
type SyncResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`

	Redirect string `json:"redirect,omitempty"`
}

// HomeView is the data of the landing page
type HomeView struct {
	IsAuthenticated bool          `json:"is_authenticated"`
	StudyPrograms   []core.Option `json:"study_programs"`
}

// HealthView reports the portal and upstream API status
type HealthView struct {
	Portal string `json:"portal"`
	API    string `json:"api"`
}

// PortalService implements the portal pages on top of the remote API
type PortalService struct {
	api         ports.API
	codec       ports.CredentialCodec
	events      ports.EventPublisher
	log         zerolog.Logger
	loginPath   string
	landingPath string
}

// NewPortalService creates a new portal service
func NewPortalService(
	api ports.API,
	codec ports.CredentialCodec,
	events ports.EventPublisher,
	log zerolog.Logger,
	loginPath, landingPath string,
) *PortalService {
	return &PortalService{
		api:         api,
		codec:       codec,
		events:      events,
		log:         log,
		loginPath:   loginPath,
		landingPath: landingPath,
	}
}

// Login exchanges credentials for a session and stores it.
// It returns the location the browser should go to next.
func (s *PortalService) Login(ctx context.Context, store ports.SessionStore, email, password string) (string, error) {
	pair, err := s.api.Login(ctx, email, password)
	if err != nil {
		s.log.Info().Err(err).Msg("login rejected")
		return "", formFailure(err, core.LoginMessages, core.MsgLoginFailed)
	}

	if err := store.Set(ctx, pair); err != nil {
		s.log.Error().Err(err).Msg("failed to store session")
		return "", &FormError{Status: http.StatusInternalServerError, Message: core.MsgTryAgainLater, Err: err}
	}

	s.publish(ctx, core.EventLogin, subjectOf(s.codec, pair.Access), "")

	return s.landingPath, nil
}

// Register creates an account
func (s *PortalService) Register(ctx context.Context, email, password, confirmPassword string) (string, error) {
	if _, err := s.api.Register(ctx, email, password, confirmPassword); err != nil {
		s.log.Info().Err(err).Msg("registration rejected")
		return "", formFailure(err, core.RegisterMessages, core.MsgRegisterFailed)
	}
	return core.MsgRegistered, nil
}

// ForgotPassword requests a password reset email
func (s *PortalService) ForgotPassword(ctx context.Context, email string) (string, error) {
	if err := s.api.RequestPasswordReset(ctx, email); err != nil {
		s.log.Info().Err(err).Msg("password reset request rejected")
		return "", formFailure(err, core.ForgotMessages, core.MsgResetMailFailed)
	}
	return core.MsgResetMailSent, nil
}

// ResetPassword sets a new password with a mailed token
func (s *PortalService) ResetPassword(ctx context.Context, token, password, confirmPassword string) (string, error) {
	if err := s.api.ResetPassword(ctx, token, password, confirmPassword); err != nil {
		s.log.Info().Err(err).Msg("password reset rejected")
		return "", formFailure(err, core.ResetMessages, core.MsgResetFailed)
	}
	return core.MsgResetDone, nil
}

// Logout removes the session from the store
func (s *PortalService) Logout(ctx context.Context, store ports.SessionStore) error {
	pair, _ := store.Get(ctx)

	if err := store.Clear(ctx); err != nil {
		return err
	}

	if !pair.Empty() {
		s.publish(ctx, core.EventLogout, subjectOf(s.codec, pair.Access), "")
	}

	return nil
}

// Dashboard loads the schedules of the signed-in user. Load failures are
// reported through the notice and an empty list. A 401 that survived the
// refresh attempt ends the session.
func (s *PortalService) Dashboard(ctx context.Context, store ports.SessionStore) DashboardView {
	pair, _ := store.Get(ctx)

	var body core.Response[[]core.Schedule]
	err := s.api.Execute(ctx, store, ports.Request{Path: core.PathSchedules}, pair.Access, &body)
	if err != nil {
		s.log.Warn().Err(err).Msg("failed to load schedules")
		if s.endRejectedSession(ctx, store, pair, err) {
			return DashboardView{
				Schedules:    []core.Schedule{},
				TotalCredits: decimal.Zero,
				Redirect:     s.loginPath,
			}
		}
		return DashboardView{
			Schedules:    []core.Schedule{},
			TotalCredits: decimal.Zero,
			Notice:       failureNotice(err),
		}
	}

	schedules := body.Data
	if schedules == nil {
		schedules = []core.Schedule{}
	}

	return DashboardView{
		Schedules:    schedules,
		TotalCredits: core.TotalCredits(schedules),
	}
}

// SyncSchedules asks the API to resynchronize the user's schedules
func (s *PortalService) SyncSchedules(ctx context.Context, store ports.SessionStore) SyncResult {
	pair, _ := store.Get(ctx)

	var body core.Response[json.RawMessage]
	err := s.api.Execute(ctx, store, ports.Request{
		Method: http.MethodPost,
		Path:   core.PathScheduleSync,
		Body:   map[string]bool{"message": true},
	}, pair.Access, &body)
	if err != nil {
		s.log.Warn().Err(err).Msg("schedule sync failed")
		if s.endRejectedSession(ctx, store, pair, err) {
			return SyncResult{Message: core.MsgSessionExpired, Redirect: s.loginPath}
		}
		var reqErr *core.RequestError
		if errors.As(err, &reqErr) && reqErr.Response != nil && len(reqErr.Response.Errors) > 0 {
			return SyncResult{Message: reqErr.Response.Describe(core.SyncMessages)}
		}
		return SyncResult{Message: core.MsgSyncFailed}
	}

	message := core.MsgSyncStarted
	var text string
	if err := json.Unmarshal(body.Data, &text); err == nil && text != "" {
		message = text
	}

	return SyncResult{Success: true, Message: message}
}

// Home lists study programs for the search widget. A failing API yields an
// empty list.
func (s *PortalService) Home(ctx context.Context, store ports.SessionStore) HomeView {
	_, authenticated := store.Get(ctx)
	view := HomeView{
		IsAuthenticated: authenticated,
		StudyPrograms:   []core.Option{},
	}

	programs, err := s.api.StudyPrograms(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("failed to load study programs")
		return view
	}

	for _, p := range programs {
		view.StudyPrograms = append(view.StudyPrograms, core.Option{Label: p.Name, Value: p.Name})
	}

	return view
}

// Health reports whether the upstream API answers
func (s *PortalService) Health(ctx context.Context) HealthView {
	view := HealthView{Portal: "ok", API: "ok"}
	if err := s.api.Health(ctx); err != nil {
		s.log.Warn().Err(err).Msg("api health check failed")
		view.API = "unavailable"
	}
	return view
}

func (s *PortalService) publish(ctx context.Context, eventType core.SessionEventType, subject, reason string) {
	if s.events == nil {
		return
	}
	event := core.SessionEvent{
		Type:      eventType,
		Subject:   subject,
		Reason:    reason,
		RequestID: core.RequestID(ctx),
		At:        time.Now().UTC(),
	}
	if err := s.events.PublishSessionEvent(ctx, event); err != nil {
		s.log.Warn().Err(err).Str("event", string(eventType)).Msg("failed to publish session event")
	}
}

// endRejectedSession clears the store when err is a 401 left over after the
// executor's refresh attempt. The stored pair cannot recover from that.
func (s *PortalService) endRejectedSession(ctx context.Context, store ports.SessionStore, pair core.CredentialPair, err error) bool {
	if core.StatusOf(err) != http.StatusUnauthorized {
		return false
	}

	if clearErr := store.Clear(ctx); clearErr != nil {
		s.log.Warn().Err(clearErr).Msg("failed to clear rejected session")
		return false
	}

	s.publish(ctx, core.EventSessionCleared, subjectOf(s.codec, pair.Access), "refresh failed during load")

	return true
}

// failureNotice picks the copy for a failed authenticated load
func failureNotice(err error) string {
	if core.IsNotFound(err) {
		return core.MsgDataNotFound
	}
	return core.MsgLoadFailed
}

// formFailure maps an API failure to a FormError with per-form copy
func formFailure(err error, messages map[string]string, fallback string) *FormError {
	if errors.Is(err, core.ErrUnexpectedBody) {
		return &FormError{Status: http.StatusInternalServerError, Message: core.MsgUnexpectedFormat, Err: err}
	}

	var reqErr *core.RequestError
	if !errors.As(err, &reqErr) || !errors.Is(err, core.ErrHTTPStatus) {
		// Transport and decode failures
		return &FormError{Status: http.StatusInternalServerError, Message: core.MsgTryAgainLater, Err: err}
	}

	message := fallback
	if reqErr.Response != nil {
		if len(reqErr.Response.Errors) > 0 {
			if described := reqErr.Response.Describe(messages); described != "" {
				message = described
			}
		} else if reqErr.Response.Message != "" {
			message = reqErr.Response.Message
		}
	}

	return &FormError{Status: reqErr.Status, Message: message, Err: err}
}
