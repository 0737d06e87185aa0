package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/layer-3/portal/adapters/store"
	"github.com/layer-3/portal/core"
	"github.com/layer-3/portal/ports"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI answers Execute with canned bodies keyed by path
type fakeAPI struct {
	bodies   map[string]string
	errs     map[string]error
	requests []ports.Request
	tokens   []string

	loginPair  core.CredentialPair
	loginErr   error
	programs   []core.StudyProgram
	healthErr  error
	formErr    error
	registered string
}

func (f *fakeAPI) Execute(ctx context.Context, s ports.SessionStore, req ports.Request, accessToken string, out any) error {
	f.requests = append(f.requests, req)
	f.tokens = append(f.tokens, accessToken)
	if err := f.errs[req.Path]; err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal([]byte(f.bodies[req.Path]), out)
}

func (f *fakeAPI) Refresh(ctx context.Context, refreshToken string) (core.CredentialPair, bool) {
	return core.CredentialPair{}, false
}

func (f *fakeAPI) Login(ctx context.Context, email, password string) (core.CredentialPair, error) {
	return f.loginPair, f.loginErr
}

func (f *fakeAPI) Register(ctx context.Context, email, password, confirmPassword string) (string, error) {
	return f.registered, f.formErr
}

func (f *fakeAPI) RequestPasswordReset(ctx context.Context, email string) error {
	return f.formErr
}

func (f *fakeAPI) ResetPassword(ctx context.Context, token, password, confirmPassword string) error {
	return f.formErr
}

func (f *fakeAPI) StudyPrograms(ctx context.Context) ([]core.StudyProgram, error) {
	if f.programs == nil {
		return nil, core.NewStatusError(http.StatusInternalServerError)
	}
	return f.programs, nil
}

func (f *fakeAPI) Health(ctx context.Context) error {
	return f.healthErr
}

func envelopeError(status int, errs map[string][]string) error {
	reqErr := core.NewStatusError(status)
	reqErr.Response = &core.ErrorResponse{Errors: errs}
	return reqErr
}

func newTestService(api *fakeAPI) (*PortalService, *recordingPublisher) {
	events := &recordingPublisher{}
	return NewPortalService(api, stubCodec{}, events, zerolog.Nop(), "/auth/login", "/user/dashboard"), events
}

func TestPortalService_Login(t *testing.T) {
	api := &fakeAPI{loginPair: core.CredentialPair{Access: "a", Refresh: "r"}}
	svc, events := newTestService(api)
	sessions := store.NewMemorySessionStore()

	location, err := svc.Login(context.Background(), sessions, "student@webmail.uad.ac.id", "secret")
	require.NoError(t, err)
	assert.Equal(t, "/user/dashboard", location)

	pair, ok := sessions.Get(context.Background())
	assert.True(t, ok)
	assert.Equal(t, core.CredentialPair{Access: "a", Refresh: "r"}, pair)

	published := events.all()
	require.Len(t, published, 1)
	assert.Equal(t, core.EventLogin, published[0].Type)
	assert.Equal(t, "subject-of-a", published[0].Subject)
}

func TestPortalService_LoginErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "mapped codes",
			err:        envelopeError(http.StatusUnauthorized, map[string][]string{"password": {"INVALID"}}),
			wantStatus: http.StatusUnauthorized,
			wantMsg:    "Wrong email or password",
		},
		{
			name:       "unknown code passes through",
			err:        envelopeError(http.StatusBadRequest, map[string][]string{"email": {"WEIRD"}}),
			wantStatus: http.StatusBadRequest,
			wantMsg:    "WEIRD",
		},
		{
			name:       "no envelope",
			err:        core.NewStatusError(http.StatusBadGateway),
			wantStatus: http.StatusBadGateway,
			wantMsg:    core.MsgLoginFailed,
		},
		{
			name:       "transport",
			err:        core.NewTransportError(errors.New("connection refused")),
			wantStatus: http.StatusInternalServerError,
			wantMsg:    core.MsgTryAgainLater,
		},
		{
			name:       "unexpected body",
			err:        core.ErrUnexpectedBody,
			wantStatus: http.StatusInternalServerError,
			wantMsg:    core.MsgUnexpectedFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestService(&fakeAPI{loginErr: tt.err})
			sessions := store.NewMemorySessionStore()

			_, err := svc.Login(context.Background(), sessions, "a@uad.ac.id", "x")

			var formErr *FormError
			require.ErrorAs(t, err, &formErr)
			assert.Equal(t, tt.wantStatus, formErr.Status)
			assert.Equal(t, tt.wantMsg, formErr.Message)
			assert.Empty(t, sessions.Writes())
		})
	}
}

func TestPortalService_RegisterJoinsMessages(t *testing.T) {
	svc, _ := newTestService(&fakeAPI{formErr: envelopeError(http.StatusBadRequest, map[string][]string{
		"email":    {"INVALID_DOMAIN", "EMAIL_EXISTS"},
		"password": {"PASSWORD_MISMATCH"},
	})})

	_, err := svc.Register(context.Background(), "x@gmail.com", "a", "b")

	var formErr *FormError
	require.ErrorAs(t, err, &formErr)
	assert.Equal(t, "Email domain must be uad.ac.id, Email is already registered, Passwords do not match", formErr.Message)
}

func TestPortalService_FormSuccessCopy(t *testing.T) {
	svc, _ := newTestService(&fakeAPI{registered: "a@uad.ac.id"})
	ctx := context.Background()

	msg, err := svc.Register(ctx, "a@uad.ac.id", "p", "p")
	require.NoError(t, err)
	assert.Equal(t, core.MsgRegistered, msg)

	msg, err = svc.ForgotPassword(ctx, "a@uad.ac.id")
	require.NoError(t, err)
	assert.Equal(t, core.MsgResetMailSent, msg)

	msg, err = svc.ResetPassword(ctx, "token", "p", "p")
	require.NoError(t, err)
	assert.Equal(t, core.MsgResetDone, msg)
}

func TestPortalService_Logout(t *testing.T) {
	svc, events := newTestService(&fakeAPI{})
	sessions := store.NewMemorySessionStoreWith(core.CredentialPair{Access: "a", Refresh: "r"})

	require.NoError(t, svc.Logout(context.Background(), sessions))

	pair, _ := sessions.Get(context.Background())
	assert.True(t, pair.Empty())
	require.Len(t, events.all(), 1)
	assert.Equal(t, core.EventLogout, events.all()[0].Type)

	require.NoError(t, svc.Logout(context.Background(), sessions))
	assert.Len(t, events.all(), 1, "logging out twice publishes once")
}

func TestPortalService_Dashboard(t *testing.T) {
	api := &fakeAPI{bodies: map[string]string{
		core.PathSchedules: `{"data":[
			{"class_code":"A","course_code":"IF101","credits":3},
			{"class_code":"A","course_code":"IF101","credits":3,"day":"Tuesday"},
			{"class_code":"B","course_code":"IF202","credits":2.5}
		]}`,
	}}
	svc, _ := newTestService(api)
	sessions := store.NewMemorySessionStoreWith(core.CredentialPair{Access: "a", Refresh: "r"})

	view := svc.Dashboard(context.Background(), sessions)

	assert.Len(t, view.Schedules, 3)
	assert.True(t, decimal.RequireFromString("5.5").Equal(view.TotalCredits))
	assert.Empty(t, view.Notice)
	assert.Equal(t, []string{"a"}, api.tokens)
}

func TestPortalService_DashboardFailures(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantNotice string
	}{
		{"not found", core.NewStatusError(http.StatusNotFound), core.MsgDataNotFound},
		{"forbidden", core.NewStatusError(http.StatusForbidden), core.MsgLoadFailed},
		{"transport", core.NewTransportError(errors.New("boom")), core.MsgLoadFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestService(&fakeAPI{errs: map[string]error{core.PathSchedules: tt.err}})
			sessions := store.NewMemorySessionStoreWith(core.CredentialPair{Access: "a", Refresh: "r"})

			view := svc.Dashboard(context.Background(), sessions)

			assert.NotNil(t, view.Schedules)
			assert.Empty(t, view.Schedules)
			assert.True(t, view.TotalCredits.IsZero())
			assert.Equal(t, tt.wantNotice, view.Notice)
			assert.Empty(t, view.Redirect)

			_, ok := sessions.Get(context.Background())
			assert.True(t, ok, "session must survive a non-401 failure")
		})
	}
}

func TestPortalService_DashboardRejectedSessionIsCleared(t *testing.T) {
	svc, events := newTestService(&fakeAPI{errs: map[string]error{
		core.PathSchedules: core.NewStatusError(http.StatusUnauthorized),
	}})
	sessions := store.NewMemorySessionStoreWith(core.CredentialPair{Access: "a", Refresh: "r"})

	view := svc.Dashboard(context.Background(), sessions)

	assert.Equal(t, "/auth/login", view.Redirect)
	assert.Empty(t, view.Schedules)

	pair, _ := sessions.Get(context.Background())
	assert.True(t, pair.Empty())

	published := events.all()
	require.Len(t, published, 1)
	assert.Equal(t, core.EventSessionCleared, published[0].Type)
	assert.Equal(t, "subject-of-a", published[0].Subject)
}

func TestPortalService_SyncRejectedSessionIsCleared(t *testing.T) {
	svc, _ := newTestService(&fakeAPI{errs: map[string]error{
		core.PathScheduleSync: core.NewStatusError(http.StatusUnauthorized),
	}})
	sessions := store.NewMemorySessionStoreWith(core.CredentialPair{Access: "a", Refresh: "r"})

	result := svc.SyncSchedules(context.Background(), sessions)

	assert.False(t, result.Success)
	assert.Equal(t, "/auth/login", result.Redirect)
	assert.Equal(t, core.MsgSessionExpired, result.Message)

	pair, _ := sessions.Get(context.Background())
	assert.True(t, pair.Empty())
}

func TestPortalService_SyncSchedules(t *testing.T) {
	api := &fakeAPI{bodies: map[string]string{core.PathScheduleSync: `{"data":"Queued"}`}}
	svc, _ := newTestService(api)
	sessions := store.NewMemorySessionStoreWith(core.CredentialPair{Access: "a", Refresh: "r"})

	result := svc.SyncSchedules(context.Background(), sessions)

	assert.Equal(t, SyncResult{Success: true, Message: "Queued"}, result)
	require.Len(t, api.requests, 1)
	assert.Equal(t, http.MethodPost, api.requests[0].Method)
	assert.Equal(t, map[string]bool{"message": true}, api.requests[0].Body)
}

func TestPortalService_SyncSchedulesFailures(t *testing.T) {
	sessions := store.NewMemorySessionStoreWith(core.CredentialPair{Access: "a", Refresh: "r"})

	svc, _ := newTestService(&fakeAPI{errs: map[string]error{
		core.PathScheduleSync: envelopeError(http.StatusForbidden, map[string][]string{"user": {"NOT_VERIFIED"}}),
	}})
	result := svc.SyncSchedules(context.Background(), sessions)
	assert.False(t, result.Success)
	assert.Equal(t, "Please reset your password to match your portal account", result.Message)

	svc, _ = newTestService(&fakeAPI{errs: map[string]error{
		core.PathScheduleSync: core.NewStatusError(http.StatusInternalServerError),
	}})
	result = svc.SyncSchedules(context.Background(), sessions)
	assert.Equal(t, SyncResult{Message: core.MsgSyncFailed}, result)
}

func TestPortalService_Home(t *testing.T) {
	svc, _ := newTestService(&fakeAPI{programs: []core.StudyProgram{{ID: 1, Name: "Informatics"}}})

	view := svc.Home(context.Background(), store.NewMemorySessionStoreWith(core.CredentialPair{Access: "a", Refresh: "r"}))
	assert.True(t, view.IsAuthenticated)
	assert.Equal(t, []core.Option{{Label: "Informatics", Value: "Informatics"}}, view.StudyPrograms)

	svc, _ = newTestService(&fakeAPI{})
	view = svc.Home(context.Background(), store.NewMemorySessionStore())
	assert.False(t, view.IsAuthenticated)
	assert.NotNil(t, view.StudyPrograms)
	assert.Empty(t, view.StudyPrograms)
}

func TestPortalService_Health(t *testing.T) {
	svc, _ := newTestService(&fakeAPI{})
	assert.Equal(t, HealthView{Portal: "ok", API: "ok"}, svc.Health(context.Background()))

	svc, _ = newTestService(&fakeAPI{healthErr: core.NewTransportError(errors.New("down"))})
	assert.Equal(t, "unavailable", svc.Health(context.Background()).API)
}
