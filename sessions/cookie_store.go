package sessions

import (
	"net/http"
	"time"
)

// CookieStore reads session values from a request's cookies and writes them as Set-Cookie headers.
// Writes are visible to later reads through the same CookieStore, so a refresh followed by a read
// behaves the same within one request as it does across requests.
type CookieStore struct {
	r       *http.Request
	w       http.ResponseWriter
	secure  bool
	pending map[string]string
}

var _ Store = (*CookieStore)(nil)

// NewCookieStore creates the store for one request/response pair.
func NewCookieStore(w http.ResponseWriter, r *http.Request, secure bool) *CookieStore {
	return &CookieStore{
		r:       r,
		w:       w,
		secure:  secure,
		pending: make(map[string]string),
	}
}

func (c *CookieStore) Get(name string) (string, bool) {
	if v, ok := c.pending[name]; ok {
		return v, v != ""
	}
	cookie, err := c.r.Cookie(name)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}

func (c *CookieStore) Set(name, value string, maxAge time.Duration) {
	seconds := int(maxAge / time.Second)
	if seconds <= 0 || value == "" {
		value = ""
		seconds = -1 // Max-Age=0 on the wire: delete now
	}
	c.pending[name] = value

	http.SetCookie(c.w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   seconds,
	})
}
