package tokenizer

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/layer-3/portal/core"
	"github.com/layer-3/portal/ports"
)

// Audiences keep access and refresh tokens from standing in for each other
const (
	AudienceAccess  = "portal:access"
	AudienceRefresh = "portal:refresh"
)

// AccessClaims carries the id of the refresh token issued alongside, so that
// rotating the refresh token also retires its access tokens
type AccessClaims struct {
	jwt.RegisteredClaims
	RefreshID string `json:"rid,omitempty"`
}

// RefreshClaims address the refresh token by its jti
type RefreshClaims struct {
	jwt.RegisteredClaims
}

// HMACIssuer implements the Issuer interface using HS256 signed JWTs
type HMACIssuer struct {
	signKey []byte
}

// NewHMACIssuer creates a new HS256 issuer
func NewHMACIssuer(signKey []byte) ports.Issuer {
	return &HMACIssuer{signKey: signKey}
}

// IssueAccess converts a session to an access JWT token
func (i *HMACIssuer) IssueAccess(session *core.IssuedSession) (string, error) {
	claims := AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   session.Subject,
			ID:        session.ID,
			ExpiresAt: jwt.NewNumericDate(session.AccessExpiry),
			IssuedAt:  jwt.NewNumericDate(session.IssuedAt),
			Audience:  jwt.ClaimStrings{AudienceAccess},
		},
		RefreshID: session.RefreshID,
	}

	signedToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.signKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}

	return signedToken, nil
}

// IssueRefresh converts a session to a refresh JWT token
func (i *HMACIssuer) IssueRefresh(session *core.IssuedSession) (string, error) {
	claims := RefreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   session.Subject,
			ID:        session.RefreshID, // The refresh token is addressed by RefreshID
			ExpiresAt: jwt.NewNumericDate(session.RefreshExpiry),
			IssuedAt:  jwt.NewNumericDate(session.IssuedAt),
			Audience:  jwt.ClaimStrings{AudienceRefresh},
		},
	}

	signedToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.signKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign refresh token: %w", err)
	}

	return signedToken, nil
}

// ParseAccess verifies an access token and returns the associated session
func (i *HMACIssuer) ParseAccess(tokenStr string) (*core.IssuedSession, error) {
	claims := &AccessClaims{}
	if err := i.parse(tokenStr, claims, AudienceAccess); err != nil {
		return nil, err
	}

	return &core.IssuedSession{
		ID:           claims.ID,
		Subject:      claims.Subject,
		IssuedAt:     numericTime(claims.IssuedAt),
		AccessExpiry: numericTime(claims.ExpiresAt),
		RefreshID:    claims.RefreshID,
	}, nil
}

// ParseRefresh verifies a refresh token and returns the associated session.
// Only the refresh half of the session is populated.
func (i *HMACIssuer) ParseRefresh(tokenStr string) (*core.IssuedSession, error) {
	claims := &RefreshClaims{}
	if err := i.parse(tokenStr, claims, AudienceRefresh); err != nil {
		return nil, err
	}

	return &core.IssuedSession{
		Subject:       claims.Subject,
		IssuedAt:      numericTime(claims.IssuedAt),
		RefreshExpiry: numericTime(claims.ExpiresAt),
		RefreshID:     claims.ID,
	}, nil
}

func (i *HMACIssuer) parse(tokenStr string, claims jwt.Claims, audience string) error {
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return i.signKey, nil
	}, jwt.WithAudience(audience), jwt.WithIssuedAt(), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return core.ErrTokenExpired
		}
		return fmt.Errorf("%w: %w", core.ErrInvalidToken, err)
	}

	if !token.Valid {
		return core.ErrInvalidToken
	}

	return nil
}

func numericTime(d *jwt.NumericDate) time.Time {
	if d == nil {
		return time.Time{}
	}
	return d.Time
}
