package middleware

import "github.com/labstack/echo/v4"

// Context keys written by JWTAuth.
const (
	ContextSubject = "user_id"
	ContextRole    = "role"
)

// Subject returns the authenticated subject, or "anon" for guests.  Guests
// are the common case here: only admins log in.
func Subject(c echo.Context) string {
	if s, ok := c.Get(ContextSubject).(string); ok && s != "" {
		return s
	}
	return "anon"
}
