package adminweb

import (
	"embed"
	"html/template"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/sessions"
	echosession "github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/boldserve/adminconsole/internal/apperr"
	"github.com/boldserve/adminconsole/internal/domain"
	"github.com/boldserve/adminconsole/internal/gate"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	flashSession = "adminconsole_flash"
	flashSuccess = "success"
	flashError   = "error"
)

var printer = message.NewPrinter(language.English)

// formatAmount renders a rupee amount with thousands grouping.
func formatAmount(v float64) string {
	return printer.Sprintf("₹%.2f", v)
}

func formatOrderDate(o domain.Order) string {
	if t, ok := o.Created(); ok {
		return t.Local().Format("02 Jan 2006, 15:04")
	}
	return o.CreatedAt
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("02 Jan 2006, 15:04")
}

// Renderer executes the embedded page templates.
type Renderer struct {
	templates *template.Template
}

func NewRenderer() (*Renderer, error) {
	funcs := template.FuncMap{
		"amount":    formatAmount,
		"orderDate": formatOrderDate,
		"time":      formatTime,
		"join":      strings.Join,
		"add":       func(a, b int) int { return a + b },
	}
	t, err := template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Renderer{templates: t}, nil
}

func (r *Renderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	return r.templates.ExecuteTemplate(w, name, data)
}

// Flashes are one-shot messages carried across a redirect.
type Flashes struct {
	Success []string `json:"success,omitempty"`
	Error   []string `json:"error,omitempty"`
}

// PageData is handed to every template.
type PageData struct {
	Title         string
	Active        string
	Authenticated bool
	Flash         Flashes
	Data          interface{}
}

func flashStore(c echo.Context) *sessions.Session {
	sess, err := echosession.Get(flashSession, c)
	if err != nil {
		zap.L().Debug("flash session reset", zap.Error(err))
	}
	return sess
}

// addFlash stores f for the next page; the cookie is written once and only
// when there is something to show.
func addFlash(c echo.Context, f Flashes) {
	n := 0
	for _, m := range f.Success {
		if m != "" {
			n++
		}
	}
	for _, m := range f.Error {
		if m != "" {
			n++
		}
	}
	if n == 0 {
		return
	}
	sess := flashStore(c)
	if sess == nil {
		return
	}
	for _, m := range f.Success {
		if m != "" {
			sess.AddFlash(m, flashSuccess)
		}
	}
	for _, m := range f.Error {
		if m != "" {
			sess.AddFlash(m, flashError)
		}
	}
	if err := sess.Save(c.Request(), c.Response()); err != nil {
		zap.L().Error("flash save failed", zap.Error(err))
	}
}

func takeFlashes(c echo.Context) Flashes {
	sess := flashStore(c)
	if sess == nil {
		return Flashes{}
	}
	var f Flashes
	for _, v := range sess.Flashes(flashSuccess) {
		if s, ok := v.(string); ok {
			f.Success = append(f.Success, s)
		}
	}
	for _, v := range sess.Flashes(flashError) {
		if s, ok := v.(string); ok {
			f.Error = append(f.Error, s)
		}
	}
	if len(f.Success)+len(f.Error) > 0 {
		if err := sess.Save(c.Request(), c.Response()); err != nil {
			zap.L().Error("flash save failed", zap.Error(err))
		}
	}
	return f
}

// render answers with the JSON rendition when asked for one, the named
// template otherwise. extra flashes are shown without a redirect.
func (con *Console) render(c echo.Context, name, title string, data interface{}, extra ...Flashes) error {
	if name != "login" && !con.gate.Authenticated() {
		// the session was dropped while this screen was loading
		return sessionExpired(c)
	}
	if gate.WantsJSON(c) {
		return ok(c, data)
	}
	flash := takeFlashes(c)
	for _, f := range extra {
		flash.Success = append(flash.Success, f.Success...)
		flash.Error = append(flash.Error, f.Error...)
	}
	return c.Render(http.StatusOK, name, PageData{
		Title:         title,
		Active:        name,
		Authenticated: con.gate.Authenticated(),
		Flash:         flash,
		Data:          data,
	})
}

func sessionExpired(c echo.Context) error {
	if gate.WantsJSON(c) {
		return fail(c, http.StatusUnauthorized, "UNAUTHORIZED", apperr.UnauthorizedMessage, nil)
	}
	addFlash(c, Flashes{Error: []string{apperr.UnauthorizedMessage}})
	return c.Redirect(http.StatusFound, gate.LoginPath)
}

// redirectOrJSON finishes a form post: flashes and redirects for browsers,
// a JSON reply for API callers.
func redirectOrJSON(c echo.Context, to string, flash Flashes, data interface{}) error {
	if gate.WantsJSON(c) {
		if len(flash.Error) > 0 {
			return fail(c, http.StatusBadRequest, "REQUEST_FAILED", flash.Error[0], flash.Error)
		}
		msg := ""
		if len(flash.Success) > 0 {
			msg = flash.Success[0]
		}
		return c.JSON(http.StatusOK, Response{Code: "OK", Message: msg, Data: data})
	}
	addFlash(c, flash)
	return c.Redirect(http.StatusSeeOther, to)
}
