package adminweb

import (
	"context"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/boldserve/adminconsole/internal/domain"
	"github.com/boldserve/adminconsole/internal/viewmodel"
)

const (
	tabAccepted  = "accepted"
	tabCancelled = "cancelled"
)

func (con *Console) registerOrderRoutes(e *echo.Echo, mw ...echo.MiddlewareFunc) {
	e.GET("/orders", con.listOrders, mw...)
	e.POST("/orders/retry", con.retryOrders, mw...)
	e.GET("/orders/export.csv", con.exportOrders, mw...)
	e.GET("/payments", con.listPayments, mw...)
	e.POST("/payments/retry", con.retryPayments, mw...)
}

type ordersView struct {
	Kind           string         `json:"kind"`
	State          string         `json:"state"`
	Message        string         `json:"message,omitempty"`
	Tab            string         `json:"tab"`
	Accepted       []domain.Order `json:"accepted"`
	Cancelled      []domain.Order `json:"cancelled"`
	AcceptedLabel  string         `json:"acceptedLabel"`
	CancelledLabel string         `json:"cancelledLabel"`
	// Shown is the selected tab's rows
	Shown []domain.Order `json:"-"`
}

func (con *Console) listOrders(c echo.Context) error {
	return con.showOrders(c, viewmodel.OrdersWording, "Orders")
}

func (con *Console) listPayments(c echo.Context) error {
	return con.showOrders(c, viewmodel.PaymentsWording, "Payments")
}

func (con *Console) showOrders(c echo.Context, wording viewmodel.OrderWording, title string) error {
	build := func() Screen {
		return viewmodel.NewOrders(func(ctx context.Context) ([]domain.Order, error) {
			return con.res.ListOrders(ctx, "")
		}, wording, con.runner)
	}
	open := con.nav.Open
	if c.QueryParam("refresh") != "" {
		open = con.nav.Reload
	}
	orders := open(wording.Name, "/"+wording.Name, build).(*viewmodel.Orders)

	ctx, cancel := con.awaitCtx(c)
	defer cancel()
	tabs := orders.AwaitTabs(ctx)

	view := ordersView{
		Kind:           wording.Name,
		State:          tabs.State.String(),
		Message:        tabs.Message,
		Tab:            tabAccepted,
		Accepted:       tabs.Accepted,
		Cancelled:      tabs.Cancelled,
		AcceptedLabel:  tabs.AcceptedLabel,
		CancelledLabel: tabs.CancelledLabel,
		Shown:          tabs.Accepted,
	}
	if c.QueryParam("tab") == tabCancelled {
		view.Tab, view.Shown = tabCancelled, tabs.Cancelled
	}
	return con.render(c, "orders", title, view)
}

func (con *Console) retryOrders(c echo.Context) error {
	return con.retryOrderScreen(c, viewmodel.OrdersWording.Name)
}

func (con *Console) retryPayments(c echo.Context) error {
	return con.retryOrderScreen(c, viewmodel.PaymentsWording.Name)
}

func (con *Console) retryOrderScreen(c echo.Context, kind string) error {
	back := "/" + kind
	if scr, _, found := con.nav.Current(kind); found {
		err := scr.(*viewmodel.Orders).Retry(con.root)
		if err != nil && !errors.Is(err, viewmodel.ErrNotRetryable) {
			return redirectOrJSON(c, back, Flashes{Error: []string{err.Error()}}, nil)
		}
	}
	return redirectOrJSON(c, back, Flashes{}, echo.Map{"retrying": true})
}

func (con *Console) exportOrders(c echo.Context) error {
	orders, err := con.res.ListOrders(c.Request().Context(), c.QueryParam("status"))
	if err != nil {
		return failFrom(c, err, viewmodel.OrdersError)
	}
	rows := make([]domain.OrderRow, 0, len(orders))
	for _, o := range orders {
		rows = append(rows, o.Row())
	}
	return writeCSV(c, "orders.csv", &rows)
}
