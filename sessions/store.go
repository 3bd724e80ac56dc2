package sessions

import "time"

// Cookie names holding the session. The front end and the API both depend on these.
const (
	UserIDCookie       = "session_userid"
	AccessTokenCookie  = "session_access_token"
	RefreshTokenCookie = "session_refresh_token"
)

// Store is the cookie jar of a single request. A Store is never shared between requests.
//
// Get reports a value as absent when it is missing or empty.
// Set with a maxAge <= 0 removes the value.
type Store interface {
	Get(name string) (string, bool)
	Set(name, value string, maxAge time.Duration)
}
