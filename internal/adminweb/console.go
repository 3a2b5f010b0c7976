// Package adminweb serves the console screens. Every screen renders as HTML
// or, with ?format=json, as a JSON document.
package adminweb

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/sessions"
	echosession "github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"

	"github.com/boldserve/adminconsole/config"
	"github.com/boldserve/adminconsole/internal/gate"
	"github.com/boldserve/adminconsole/internal/oprlog"
	"github.com/boldserve/adminconsole/internal/resource"
	"github.com/boldserve/adminconsole/internal/session"
	"github.com/boldserve/adminconsole/internal/viewmodel"
)

type Options struct {
	// Secret signs the flash cookie
	Secret string
	// AwaitTimeout bounds how long a page waits for its screen to load
	// before rendering the loading state
	AwaitTimeout time.Duration
	Runner       viewmodel.Runner
	Recorder     oprlog.Recorder
}

// Console wires the screens to the resource layer and the gate.
type Console struct {
	root     context.Context
	res      *resource.Client
	sess     *session.Manager
	gate     *gate.Gate
	nav      *Navigator
	rec      oprlog.Recorder
	runner   viewmodel.Runner
	await    time.Duration
	secret   string
	renderer *Renderer
}

// New builds the console. root bounds every screen load; cancelling it
// stops loads still in flight at shutdown.
func New(root context.Context, res *resource.Client, sess *session.Manager, g *gate.Gate, opts Options) (*Console, error) {
	renderer, err := NewRenderer()
	if err != nil {
		return nil, err
	}
	if opts.AwaitTimeout <= 0 {
		opts.AwaitTimeout = 16 * time.Second
	}
	if opts.Runner == nil {
		opts.Runner = viewmodel.GoRunner{}
	}
	con := &Console{
		root:     root,
		res:      res,
		sess:     sess,
		gate:     g,
		nav:      NewNavigator(root),
		rec:      opts.Recorder,
		runner:   opts.Runner,
		await:    opts.AwaitTimeout,
		secret:   opts.Secret,
		renderer: renderer,
	}
	// a rejected or dropped session takes every screen down with it
	if err := sess.OnUnauthorized(con.nav.CloseAll); err != nil {
		return nil, err
	}
	if err := sess.OnLogout(con.nav.CloseAll); err != nil {
		return nil, err
	}
	return con, nil
}

// Register mounts the console routes on e.
func (con *Console) Register(e *echo.Echo) {
	e.Renderer = con.renderer
	e.Validator = structValidator{}
	e.Use(echosession.Middleware(sessions.NewCookieStore([]byte(con.secret))))

	e.GET("/health", con.health)

	guest := con.gate.Guest("/")
	e.GET(gate.LoginPath, con.loginPage, guest)
	e.POST(gate.LoginPath, con.login)

	protect := con.gate.Protect()
	e.POST("/logout", con.logout, protect)
	e.GET("/", con.dashboard, protect)
	e.GET("/profile", con.profile, protect)
	e.GET("/oprlog", con.listOprLog, protect)
	con.registerServiceRoutes(e, protect)
	con.registerProductRoutes(e, protect)
	con.registerUserRoutes(e, protect)
	con.registerOrderRoutes(e, protect)
}

func (con *Console) awaitCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), con.await)
}

func (con *Console) health(c echo.Context) error {
	return c.JSON(http.StatusOK, Response{Code: "OK", Data: echo.Map{
		"status":        "ok",
		"authenticated": con.gate.Authenticated(),
		"mode":          config.BuildMode,
		"backend":       con.res.BaseURL(),
	}})
}

// record writes an operator log entry attributed to the current session.
func (con *Console) record(c echo.Context, action, desc string) {
	if con.rec == nil {
		return
	}
	operator := resource.ParseIdentity(con.sess.Token()).Name
	oprlog.Safe(c.Request().Context(), con.rec, oprlog.NewEntry(operator, c.RealIP(), action, desc))
}
