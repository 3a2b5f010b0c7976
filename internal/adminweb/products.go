package adminweb

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/boldserve/adminconsole/internal/domain"
	"github.com/boldserve/adminconsole/internal/gate"
	"github.com/boldserve/adminconsole/internal/oprlog"
	"github.com/boldserve/adminconsole/internal/resource"
	"github.com/boldserve/adminconsole/internal/viewmodel"
)

const (
	productListClosed = "The product list is no longer open. Please try again."
	deleteInProgress  = "A delete is already in progress. Please wait."
)

func (con *Console) registerProductRoutes(e *echo.Echo, mw ...echo.MiddlewareFunc) {
	e.GET("/products", con.listProducts, mw...)
	e.POST("/products/retry", con.retryProducts, mw...)
	e.POST("/products/:id/delete", con.deleteProduct, mw...)
}

type productsView struct {
	State    string                 `json:"state"`
	Message  string                 `json:"message,omitempty"`
	Filter   resource.ProductFilter `json:"filter"`
	PageInfo
	Deleting bool   `json:"deleting"`
	NextURL  string `json:"-"`
	// Categories feeds the filter dropdown
	Categories map[string][]string `json:"-"`
}

type productRow struct {
	domain.Product
	Cover string `json:"cover,omitempty"`
}

// productsKey is the page URL, which doubles as the screen key so that a
// different filter mounts a fresh list.
func productsKey(f resource.ProductFilter) string {
	q := url.Values{}
	if f.Category != "" {
		q.Set("category", f.Category)
	}
	if f.SubCategory != "" {
		q.Set("subCategory", f.SubCategory)
	}
	if len(q) == 0 {
		return "/products"
	}
	return "/products?" + q.Encode()
}

func (con *Console) listProducts(c echo.Context) error {
	filter := resource.ProductFilter{
		Category:    strings.TrimSpace(c.QueryParam("category")),
		SubCategory: strings.TrimSpace(c.QueryParam("subCategory")),
	}
	build := func() Screen {
		return viewmodel.NewProducts(
			func(ctx context.Context) ([]domain.Product, error) { return con.res.ListProducts(ctx, filter) },
			con.res.DeleteProduct,
			con.runner,
		)
	}
	open := con.nav.Open
	if c.QueryParam("refresh") != "" {
		open = con.nav.Reload
	}
	list := open("products", productsKey(filter), build).(*viewmodel.List[domain.Product])

	ctx, cancel := con.awaitCtx(c)
	defer cancel()
	snap := list.Await(ctx)
	notice := list.TakeNotice()

	info, items := paginate(c, snap.Items)
	rows := make([]productRow, 0, len(items))
	for _, p := range items {
		rows = append(rows, productRow{Product: p, Cover: p.CoverImage(con.res.BaseURL())})
	}
	info.Items = rows
	view := productsView{
		State:      snap.State.String(),
		Message:    snap.Message,
		Filter:     filter,
		PageInfo:   info,
		Deleting:   snap.Deleting,
		Categories: domain.Categories,
	}
	if info.HasNext() {
		next := url.Values{}
		next.Set("page", strconv.Itoa(info.Page+1))
		next.Set("perPage", strconv.Itoa(info.PageSize))
		if filter.Category != "" {
			next.Set("category", filter.Category)
		}
		if filter.SubCategory != "" {
			next.Set("subCategory", filter.SubCategory)
		}
		view.NextURL = "/products?" + next.Encode()
	}
	var extra Flashes
	if notice != "" {
		extra.Success = append(extra.Success, notice)
	}
	return con.render(c, "products", "Products", view, extra)
}

func (con *Console) retryProducts(c echo.Context) error {
	scr, key, found := con.nav.Current("products")
	if !found {
		return redirectOrJSON(c, "/products", Flashes{}, nil)
	}
	if err := scr.(*viewmodel.List[domain.Product]).Retry(con.root); err != nil && !errors.Is(err, viewmodel.ErrNotRetryable) {
		return redirectOrJSON(c, "/products", Flashes{Error: []string{productListClosed}}, nil)
	}
	return redirectOrJSON(c, key, Flashes{}, echo.Map{"retrying": true})
}

func (con *Console) deleteProduct(c echo.Context) error {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	scr, key, found := con.nav.Current("products")
	if !found {
		return redirectOrJSON(c, "/products", Flashes{Error: []string{productListClosed}}, nil)
	}
	list := scr.(*viewmodel.List[domain.Product])

	err := list.Delete(c.Request().Context(), id)
	switch {
	case err == nil:
		con.record(c, oprlog.ActionDeleteProduct, id)
		return redirectOrJSON(c, key, Flashes{Success: []string{list.TakeNotice()}}, echo.Map{"id": id})
	case errors.Is(err, viewmodel.ErrDeleteInProgress):
		if gate.WantsJSON(c) {
			return fail(c, http.StatusConflict, "DELETE_IN_PROGRESS", deleteInProgress, nil)
		}
		return redirectOrJSON(c, key, Flashes{Error: []string{deleteInProgress}}, nil)
	default:
		var derr *viewmodel.DeleteError
		msg := viewmodel.ProductDeleteFailed
		if errors.As(err, &derr) {
			msg = derr.Message
		}
		if gate.WantsJSON(c) {
			return failFrom(c, err, msg)
		}
		return redirectOrJSON(c, key, Flashes{Error: []string{msg}}, nil)
	}
}
