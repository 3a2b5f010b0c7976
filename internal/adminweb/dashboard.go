package adminweb

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/boldserve/adminconsole/internal/resource"
	"github.com/boldserve/adminconsole/internal/viewmodel"
)

func (con *Console) newDashboard() Screen {
	return viewmodel.NewDashboard(con.runner,
		viewmodel.Counter{Label: "Products", Link: "/products", Count: func(ctx context.Context) (int, error) {
			items, err := con.res.ListProducts(ctx, resource.ProductFilter{})
			return len(items), err
		}},
		viewmodel.Counter{Label: "Users", Link: "/users", Count: func(ctx context.Context) (int, error) {
			items, err := con.res.ListUsers(ctx)
			return len(items), err
		}},
		viewmodel.Counter{Label: "Orders", Link: "/orders", Count: func(ctx context.Context) (int, error) {
			items, err := con.res.ListOrders(ctx, "")
			return len(items), err
		}},
	)
}

func (con *Console) dashboard(c echo.Context) error {
	open := con.nav.Open
	if c.QueryParam("refresh") != "" {
		open = con.nav.Reload
	}
	d := open("dashboard", "/", con.newDashboard).(*viewmodel.Dashboard)

	ctx, cancel := con.awaitCtx(c)
	defer cancel()
	return con.render(c, "dashboard", "Dashboard", d.Await(ctx))
}
