package adminweb

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/boldserve/adminconsole/internal/domain"
	"github.com/boldserve/adminconsole/internal/viewmodel"
)

func (con *Console) registerUserRoutes(e *echo.Echo, mw ...echo.MiddlewareFunc) {
	e.GET("/users", con.listUsers, mw...)
	e.POST("/users/retry", con.retryUsers, mw...)
	e.GET("/users/export.csv", con.exportUsers, mw...)
}

type usersView struct {
	State   string `json:"state"`
	Message string `json:"message,omitempty"`
	PageInfo
}

func (con *Console) listUsers(c echo.Context) error {
	build := func() Screen {
		return viewmodel.NewUsers(con.res.ListUsers, con.runner)
	}
	open := con.nav.Open
	if c.QueryParam("refresh") != "" {
		open = con.nav.Reload
	}
	list := open("users", "/users", build).(*viewmodel.List[domain.User])

	ctx, cancel := con.awaitCtx(c)
	defer cancel()
	snap := list.Await(ctx)

	info, _ := paginate(c, snap.Items)
	return con.render(c, "users", "Users", usersView{
		State:    snap.State.String(),
		Message:  snap.Message,
		PageInfo: info,
	})
}

func (con *Console) retryUsers(c echo.Context) error {
	if scr, _, found := con.nav.Current("users"); found {
		err := scr.(*viewmodel.List[domain.User]).Retry(con.root)
		if err != nil && !errors.Is(err, viewmodel.ErrNotRetryable) {
			return redirectOrJSON(c, "/users", Flashes{Error: []string{err.Error()}}, nil)
		}
	}
	return redirectOrJSON(c, "/users", Flashes{}, echo.Map{"retrying": true})
}

func (con *Console) exportUsers(c echo.Context) error {
	users, err := con.res.ListUsers(c.Request().Context())
	if err != nil {
		return failFrom(c, err, viewmodel.UsersError)
	}
	rows := make([]domain.UserRow, 0, len(users))
	for _, u := range users {
		rows = append(rows, u.Row())
	}
	return writeCSV(c, "users.csv", &rows)
}
