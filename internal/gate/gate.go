// Package gate decides whether the protected screens may be shown.
package gate

import (
	"context"
	"net/http"
	"strings"
	"sync/atomic"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/boldserve/adminconsole/internal/apperr"
	"github.com/boldserve/adminconsole/internal/resource"
	"github.com/boldserve/adminconsole/internal/session"
)

const LoginPath = "/login"

// Authenticator is the part of the resource layer the gate drives.
type Authenticator interface {
	Login(ctx context.Context, cred resource.Credentials) (string, error)
	Logout(ctx context.Context) error
}

// Gate holds the process-wide authenticated flag.
type Gate struct {
	auth   Authenticator
	authed atomic.Bool
}

// New starts authenticated when the session store already holds a token.
func New(sess *session.Manager, auth Authenticator) (*Gate, error) {
	g := &Gate{auth: auth}
	g.authed.Store(sess.HasToken())
	if err := sess.OnUnauthorized(g.reset); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *Gate) Authenticated() bool {
	return g.authed.Load()
}

func (g *Gate) Login(ctx context.Context, cred resource.Credentials) error {
	if _, err := g.auth.Login(ctx, cred); err != nil {
		return err
	}
	g.authed.Store(true)
	zap.L().Info("admin logged in", zap.String("user_id", cred.UserID))
	return nil
}

func (g *Gate) Logout(ctx context.Context) error {
	g.authed.Store(false)
	return g.auth.Logout(ctx)
}

func (g *Gate) reset() {
	if g.authed.Swap(false) {
		zap.L().Info("session reset, protected screens closed")
	}
}

// Protect sends unauthenticated requests to the login screen; API style
// requests get a 401 instead.
func (g *Gate) Protect() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if g.Authenticated() {
				return next(c)
			}
			if WantsJSON(c) {
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"code":    "UNAUTHORIZED",
					"message": apperr.UnauthorizedMessage,
				})
			}
			return c.Redirect(http.StatusFound, LoginPath)
		}
	}
}

// Guest sends already authenticated operators away from the login screen.
func (g *Gate) Guest(home string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if g.Authenticated() && c.Request().Method == http.MethodGet && !WantsJSON(c) {
				return c.Redirect(http.StatusFound, home)
			}
			return next(c)
		}
	}
}

// WantsJSON reports whether the caller asked for the JSON rendition.
func WantsJSON(c echo.Context) bool {
	if c.QueryParam("format") == "json" {
		return true
	}
	accept := c.Request().Header.Get(echo.HeaderAccept)
	return strings.Contains(accept, echo.MIMEApplicationJSON) && !strings.Contains(accept, echo.MIMETextHTML)
}
