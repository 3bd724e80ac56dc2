package sessions

import (
	"context"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/jrsteele09/go-bnb-gateway/authapi"
	"github.com/jrsteele09/go-bnb-gateway/internal/config"
	apperrors "github.com/jrsteele09/go-bnb-gateway/internal/errors"
	"github.com/jrsteele09/go-bnb-gateway/internal/logging"
	"github.com/jrsteele09/go-bnb-gateway/internal/utils"
	"github.com/jrsteele09/go-bnb-gateway/token/jwt"
)

// Refresher exchanges a refresh token for a new access token.
type Refresher interface {
	Refresh(ctx context.Context, refreshToken *string) (*authapi.RefreshResponse, error)
}

// ClearReason labels why a session was cleared.
type ClearReason string

const (
	ClearReasonLogout        ClearReason = "logout"
	ClearReasonRefreshFailed ClearReason = "refresh_failed"
)

// RefreshOutcome labels the result of a refresh attempt.
type RefreshOutcome string

const (
	RefreshOutcomeSuccess   RefreshOutcome = "success"
	RefreshOutcomeDenied    RefreshOutcome = "denied"
	RefreshOutcomeTransport RefreshOutcome = "transport_error"
)

// Observer is notified of session transitions. metrics.Metrics implements it.
type Observer interface {
	SessionEstablished()
	SessionCleared(reason ClearReason)
	RefreshAttempted(outcome RefreshOutcome)
}

type noopObserver struct{}

func (noopObserver) SessionEstablished()             {}
func (noopObserver) SessionCleared(ClearReason)      {}
func (noopObserver) RefreshAttempted(RefreshOutcome) {}

// Manager owns the three session cookies and the access token refresh.
// It holds no per-session state: every call works on the Store it is given.
type Manager struct {
	refresher Refresher
	config    config.SessionConfig
	observer  Observer
}

// NewManager creates a session manager. observer may be nil.
func NewManager(refresher Refresher, cfg config.SessionConfig, observer Observer) *Manager {
	if observer == nil {
		observer = noopObserver{}
	}
	return &Manager{
		refresher: refresher,
		config:    cfg,
		observer:  observer,
	}
}

// Establish stores a freshly issued session. The tokens are not validated.
func (m *Manager) Establish(store Store, userID, accessToken, refreshToken string) {
	store.Set(UserIDCookie, userID, m.config.GetUserIDLifetime())
	store.Set(AccessTokenCookie, accessToken, m.accessTokenLifetime(accessToken))
	store.Set(RefreshTokenCookie, refreshToken, m.config.GetRefreshTokenLifetime())
	m.observer.SessionEstablished()
}

// Clear blanks all three session values. Clearing an empty session is a no-op in effect.
func (m *Manager) Clear(store Store) {
	m.clear(store, ClearReasonLogout)
}

func (m *Manager) clear(store Store, reason ClearReason) {
	store.Set(UserIDCookie, "", 0)
	store.Set(AccessTokenCookie, "", 0)
	store.Set(RefreshTokenCookie, "", 0)
	m.observer.SessionCleared(reason)
}

// UserID returns the logged in user's id, or nil.
func (m *Manager) UserID(store Store) *string {
	return get(store, UserIDCookie)
}

// RefreshToken returns the stored refresh token, or nil.
func (m *Manager) RefreshToken(store Store) *string {
	return get(store, RefreshTokenCookie)
}

// PeekAccessToken returns the stored access token, or nil. It never refreshes.
func (m *Manager) PeekAccessToken(store Store) *string {
	return get(store, AccessTokenCookie)
}

// AccessToken returns the stored access token, refreshing it when absent.
// A nil result means the session is gone and the user should log in again.
func (m *Manager) AccessToken(ctx context.Context, store Store) *string {
	if accessToken := m.PeekAccessToken(store); accessToken != nil {
		return accessToken
	}
	return m.Refresh(ctx, store)
}

// Refresh makes exactly one attempt to mint a new access token.
// On any failure the whole session is cleared and nil is returned.
func (m *Manager) Refresh(ctx context.Context, store Store) *string {
	logger := logging.FromContext(ctx)

	resp, err := m.refresher.Refresh(ctx, m.RefreshToken(store))
	if err == nil && (resp == nil || resp.Access == nil || *resp.Access == "") {
		err = apperrors.ErrRefreshDenied
	}
	if err != nil {
		outcome := RefreshOutcomeDenied
		if !apperrors.Is(err, apperrors.ErrRefreshDenied) {
			outcome = RefreshOutcomeTransport
			captureException(ctx, err)
		}
		logger.Warn().Err(err).Str("outcome", string(outcome)).Msg("Access token refresh failed, clearing session")
		m.observer.RefreshAttempted(outcome)
		m.clear(store, ClearReasonRefreshFailed)
		return nil
	}

	accessToken := *resp.Access
	store.Set(AccessTokenCookie, accessToken, m.accessTokenLifetime(accessToken))
	if rotated := utils.Value(resp.Refresh); rotated != "" {
		store.Set(RefreshTokenCookie, rotated, m.config.GetRefreshTokenLifetime())
	}
	m.observer.RefreshAttempted(RefreshOutcomeSuccess)
	logger.Debug().Bool("rotated", resp.Refresh != nil).Msg("Access token refreshed")

	return &accessToken
}

func (m *Manager) accessTokenLifetime(accessToken string) time.Duration {
	return jwt.AccessTokenLifetime(accessToken, m.config.GetAccessTokenLifetime())
}

func get(store Store, name string) *string {
	v, ok := store.Get(name)
	if !ok {
		return nil
	}
	return utils.NonEmpty(v)
}

func captureException(ctx context.Context, err error) {
	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	hub.CaptureException(err)
}
