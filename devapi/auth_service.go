package devapi

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/layer-3/portal/core"
	"github.com/layer-3/portal/ports"
	"github.com/rs/zerolog"
)

// AuthService issues and rotates credential pairs
type AuthService struct {
	issuer    ports.Issuer
	store     ports.RevocationStore
	directory *Directory
	log       zerolog.Logger

	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewAuthService creates a new authentication service
func NewAuthService(
	issuer ports.Issuer,
	store ports.RevocationStore,
	directory *Directory,
	log zerolog.Logger,
	accessTTL, refreshTTL time.Duration,
) *AuthService {
	return &AuthService{
		issuer:     issuer,
		store:      store,
		directory:  directory,
		log:        log,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// Login authenticates a user by email and password
func (s *AuthService) Login(ctx context.Context, email, password string) (core.CredentialPair, error) {
	if err := s.directory.Authenticate(email, password); err != nil {
		return core.CredentialPair{}, err
	}

	return s.issue(email)
}

// Refresh rotates the refresh token and issues new access and refresh tokens
func (s *AuthService) Refresh(ctx context.Context, refreshTokenStr string) (core.CredentialPair, error) {
	// Parse and validate the refresh token
	session, err := s.issuer.ParseRefresh(refreshTokenStr)
	if err != nil {
		return core.CredentialPair{}, fmt.Errorf("invalid refresh token: %w", err)
	}

	if s.now().After(session.RefreshExpiry) {
		return core.CredentialPair{}, core.ErrTokenExpired
	}

	invalidated, err := s.store.IsTokenInvalidated(ctx, session.RefreshID)
	if err != nil {
		return core.CredentialPair{}, fmt.Errorf("failed to check token invalidation: %w", err)
	}

	if invalidated {
		return core.CredentialPair{}, core.ErrTokenInvalidated
	}

	// Revoke the presented token for the rest of its lifetime
	if err := s.store.InvalidateToken(ctx, session.RefreshID, session.RefreshExpiry.Sub(s.now())); err != nil {
		return core.CredentialPair{}, fmt.Errorf("failed to invalidate old token: %w", err)
	}

	s.log.Debug().Str("subject", session.Subject).Msg("refresh token rotated")

	return s.issue(session.Subject)
}

// ValidateAccessToken verifies an access token and that its refresh token is still live
func (s *AuthService) ValidateAccessToken(ctx context.Context, accessToken string) (*core.IssuedSession, error) {
	session, err := s.issuer.ParseAccess(accessToken)
	if err != nil {
		return nil, err
	}

	if s.now().After(session.AccessExpiry) {
		return nil, core.ErrTokenExpired
	}

	// A revoked refresh token takes its access tokens down with it
	if session.RefreshID != "" {
		invalidated, err := s.store.IsTokenInvalidated(ctx, session.RefreshID)
		if err != nil {
			return nil, fmt.Errorf("failed to check token invalidation: %w", err)
		}

		if invalidated {
			return nil, core.ErrTokenInvalidated
		}
	}

	return session, nil
}

func (s *AuthService) issue(subject string) (core.CredentialPair, error) {
	now := s.now()
	session := &core.IssuedSession{
		ID:            uuid.New().String(),
		Subject:       subject,
		IssuedAt:      now,
		AccessExpiry:  now.Add(s.accessTTL),
		RefreshExpiry: now.Add(s.refreshTTL),
		RefreshID:     uuid.New().String(),
	}

	accessToken, err := s.issuer.IssueAccess(session)
	if err != nil {
		return core.CredentialPair{}, fmt.Errorf("failed to create access token: %w", err)
	}

	refreshToken, err := s.issuer.IssueRefresh(session)
	if err != nil {
		return core.CredentialPair{}, fmt.Errorf("failed to create refresh token: %w", err)
	}

	return core.CredentialPair{Access: accessToken, Refresh: refreshToken}, nil
}
