package tokenizer

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/layer-3/portal/core"
	"github.com/layer-3/portal/ports"
)

// Codec decodes access credentials without verifying their signature.
// The portal cannot verify signatures and only needs the expiry to decide
// whether a stored session is still worth presenting upstream.
type Codec struct {
	parser *jwt.Parser
	now    func() time.Time
}

// NewCodec creates a codec using the wall clock
func NewCodec() *Codec {
	return NewCodecWithClock(time.Now)
}

// NewCodecWithClock creates a codec with an explicit clock
func NewCodecWithClock(now func() time.Time) *Codec {
	return &Codec{
		parser: jwt.NewParser(jwt.WithPaddingAllowed()),
		now:    now,
	}
}

var _ ports.CredentialCodec = (*Codec)(nil)

// Decode extracts subject, issued-at and expiry from the middle segment.
// Header and signature are not inspected.
func (c *Codec) Decode(token string) (*core.Claims, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 || parts[1] == "" {
		return nil, core.ErrMalformedToken
	}

	payload, err := c.decodeSegment(parts[1])
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrMalformedToken, err)
	}

	claims := &jwt.RegisteredClaims{}
	if err := json.Unmarshal(payload, claims); err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrMalformedToken, err)
	}

	if claims.ExpiresAt == nil {
		return nil, core.ErrMissingExpiry
	}

	decoded := &core.Claims{
		Subject:   claims.Subject,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		decoded.IssuedAt = claims.IssuedAt.Time
	}

	return decoded, nil
}

// decodeSegment accepts base64url as issued by JWT libraries and falls back
// to the standard alphabet
func (c *Codec) decodeSegment(seg string) ([]byte, error) {
	payload, err := c.parser.DecodeSegment(seg)
	if err == nil {
		return payload, nil
	}
	if std, stdErr := base64.StdEncoding.DecodeString(seg); stdErr == nil {
		return std, nil
	}
	if std, stdErr := base64.RawStdEncoding.DecodeString(seg); stdErr == nil {
		return std, nil
	}
	return nil, err
}

// IsExpired fails closed: anything that cannot be decoded counts as expired
func (c *Codec) IsExpired(token string) bool {
	claims, err := c.Decode(token)
	if err != nil {
		return true
	}
	return claims.ExpiredAt(c.now())
}
