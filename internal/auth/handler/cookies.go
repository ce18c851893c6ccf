package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/crystalafinch/authentication/internal/auth/domain"
)

const (
	AccessCookieName  = "id"
	RefreshCookieName = "rid"
)

// CookieManager writes the token pair as session cookies and clears them
// again. Clearing must use byte-identical attributes to the ones used when
// setting, or browsers silently ignore the deletion.
type CookieManager struct {
	secure     bool
	domain     string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewCookieManager builds a manager. secure and domain are set in production
// (domain scoped to the apex so subdomains share the session) and left off in
// development.
func NewCookieManager(secure bool, domain string, accessTTL, refreshTTL time.Duration) *CookieManager {
	return &CookieManager{
		secure:     secure,
		domain:     domain,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

func (m *CookieManager) Attach(c *fiber.Ctx, pair domain.TokenPair) {
	c.Cookie(m.cookie(AccessCookieName, pair.AccessToken, time.Now().Add(m.accessTTL)))
	c.Cookie(m.cookie(RefreshCookieName, pair.RefreshToken, time.Now().Add(m.refreshTTL)))
}

func (m *CookieManager) Clear(c *fiber.Ctx) {
	expired := time.Unix(0, 0)
	c.Cookie(m.cookie(AccessCookieName, "", expired))
	c.Cookie(m.cookie(RefreshCookieName, "", expired))
}

func (m *CookieManager) cookie(name, value string, expires time.Time) *fiber.Cookie {
	return &fiber.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   m.domain,
		Expires:  expires,
		HTTPOnly: true,
		Secure:   m.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	}
}
