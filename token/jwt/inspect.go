package jwt

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	apperrors "github.com/jrsteele09/go-bnb-gateway/internal/errors"
	"github.com/jrsteele09/go-bnb-gateway/internal/utils"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Claims is the subset of an access token the gateway cares about.
// The token is never verified here: the API that issued it is the only authority,
// the gateway only reads it to size cookies and to label logs.
type Claims struct {
	Exp    *time.Time // Expiry, nil when the token carries no exp claim
	UserID *string    // SimpleJWT "user_id" claim, falling back to "sub"
	JTI    *string    // Token id, useful for correlating logs
}

// Inspect parses a JWT without verifying its signature.
func Inspect(rawToken string) (*Claims, error) {
	if strings.TrimSpace(rawToken) == "" {
		return nil, fmt.Errorf("[jwt Inspect] empty token: %w", apperrors.ErrInvalidToken)
	}

	token, _, err := jwtlib.NewParser().ParseUnverified(rawToken, jwtlib.MapClaims{})
	if err != nil {
		return nil, fmt.Errorf("[jwt Inspect] parse: %w: %w", apperrors.ErrInvalidToken, err)
	}

	mapClaims, ok := token.Claims.(jwtlib.MapClaims)
	if !ok {
		return nil, fmt.Errorf("[jwt Inspect] error extracting claims: %w", apperrors.ErrInvalidToken)
	}

	claims := &Claims{}
	if exp, err := mapClaims.GetExpirationTime(); err == nil && exp != nil {
		claims.Exp = utils.Ptr(exp.Time)
	}
	claims.UserID = claimString(mapClaims["user_id"])
	if claims.UserID == nil {
		if sub, err := mapClaims.GetSubject(); err == nil {
			claims.UserID = utils.NonEmpty(sub)
		}
	}
	claims.JTI = claimString(mapClaims["jti"])
	return claims, nil
}

// AccessTokenLifetime returns how long an access token cookie may live.
// The budget is an upper bound; a JWT expiring sooner shortens it.
// Opaque tokens, or tokens without exp, get the full budget.
func AccessTokenLifetime(rawToken string, budget time.Duration) time.Duration {
	claims, err := Inspect(rawToken)
	if err != nil || claims.Exp == nil {
		return budget
	}
	remaining := claims.Exp.Sub(NowTimeFunc())
	if remaining < budget {
		return remaining
	}
	return budget
}

// claimString handles ids encoded either as JSON strings or numbers (SimpleJWT
// emits whatever type the user model's pk has).
func claimString(v any) *string {
	switch t := v.(type) {
	case string:
		return utils.NonEmpty(t)
	case float64:
		return utils.Ptr(strconv.FormatFloat(t, 'f', -1, 64))
	}
	return nil
}
