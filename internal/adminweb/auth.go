package adminweb

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/boldserve/adminconsole/config"
	"github.com/boldserve/adminconsole/internal/apperr"
	"github.com/boldserve/adminconsole/internal/gate"
	"github.com/boldserve/adminconsole/internal/oprlog"
	"github.com/boldserve/adminconsole/internal/resource"
)

const (
	loginFailed   = "Login failed. Please try again."
	loginRequired = "Please enter both user ID and password"
)

func (con *Console) loginPage(c echo.Context) error {
	return con.render(c, "login", "Admin Login", nil)
}

func (con *Console) login(c echo.Context) error {
	var cred resource.Credentials
	if err := c.Bind(&cred); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse credentials", err.Error())
	}
	cred.UserID = strings.TrimSpace(cred.UserID)
	if err := c.Validate(&cred); err != nil {
		if gate.WantsJSON(c) {
			return fail(c, http.StatusBadRequest, "INVALID_REQUEST", loginRequired, nil)
		}
		return redirectOrJSON(c, gate.LoginPath, Flashes{Error: []string{loginRequired}}, nil)
	}

	if err := con.gate.Login(c.Request().Context(), cred); err != nil {
		con.record(c, oprlog.ActionLoginFailed, cred.UserID)
		msg := apperr.Message(err, loginFailed)
		if gate.WantsJSON(c) {
			return fail(c, http.StatusUnauthorized, "LOGIN_FAILED", msg, nil)
		}
		return redirectOrJSON(c, gate.LoginPath, Flashes{Error: []string{msg}}, nil)
	}

	con.record(c, oprlog.ActionLogin, cred.UserID)
	return redirectOrJSON(c, "/", Flashes{}, echo.Map{"authenticated": true})
}

func (con *Console) logout(c echo.Context) error {
	con.record(c, oprlog.ActionLogout, "")
	if err := con.gate.Logout(c.Request().Context()); err != nil {
		return fail(c, http.StatusInternalServerError, "LOGOUT_FAILED", "Failed to clear session", err.Error())
	}
	return redirectOrJSON(c, gate.LoginPath, Flashes{Success: []string{"You have been logged out"}}, echo.Map{"authenticated": false})
}

type profileView struct {
	Identity resource.Identity `json:"identity"`
	Mode     string            `json:"mode"`
	Backend  string            `json:"backend"`
	Verified *bool             `json:"verified,omitempty"`
	Check    string            `json:"-"`
}

// profile checks the token against the backend only when asked with ?verify=1.
func (con *Console) profile(c echo.Context) error {
	view := profileView{
		Identity: resource.ParseIdentity(con.sess.Token()),
		Mode:     config.BuildMode,
		Backend:  con.res.BaseURL(),
	}
	var extra []Flashes
	if c.QueryParam("verify") == "1" {
		ctx, cancel := con.awaitCtx(c)
		err := con.res.VerifyToken(ctx)
		cancel()
		if apperr.Is(err, apperr.KindUnauthorized) {
			return sessionExpired(c)
		}
		ok := err == nil
		view.Verified = &ok
		view.Check = "Token accepted"
		if !ok {
			view.Check = "Not verified"
			extra = append(extra, Flashes{Error: []string{apperr.Message(err, "Unable to verify session")}})
		}
	}
	return con.render(c, "profile", "Profile", view, extra...)
}
