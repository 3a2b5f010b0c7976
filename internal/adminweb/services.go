package adminweb

import (
	"net/http"
	"sort"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/boldserve/adminconsole/internal/apperr"
	"github.com/boldserve/adminconsole/internal/domain"
	"github.com/boldserve/adminconsole/internal/gate"
	"github.com/boldserve/adminconsole/internal/oprlog"
	"github.com/boldserve/adminconsole/internal/resource"
)

const (
	serviceCreated      = "Service created successfully!"
	serviceCreateFailed = "Failed to create service. Please try again."
)

func (con *Console) registerServiceRoutes(e *echo.Echo, mw ...echo.MiddlewareFunc) {
	e.GET("/services/new", con.newServiceForm, mw...)
	e.POST("/services", con.createService, mw...)
}

type serviceFormView struct {
	Categories []resource.Category `json:"categories"`
}

func (con *Console) newServiceForm(c echo.Context) error {
	// the form is not a list screen; leaving a list unmounts it
	con.nav.CloseAll()

	cats, err := con.res.ListCategories(c.Request().Context())
	if err != nil {
		zap.L().Warn("category catalogue unavailable", zap.Error(err))
		cats = nil
		for name, subs := range domain.Categories {
			cats = append(cats, resource.Category{Name: name, SubCategories: subs})
		}
	}
	sort.Slice(cats, func(i, j int) bool { return cats[i].Name < cats[j].Name })
	return con.render(c, "service_form", "Add Service", serviceFormView{Categories: cats})
}

func (con *Console) createService(c echo.Context) error {
	var form serviceForm
	if err := c.Bind(&form); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse service", err.Error())
	}
	payload := form.payload()
	if err := c.Validate(&payload); err != nil {
		return con.serviceInvalid(c, domain.ServiceMessages(err))
	}

	p, err := con.res.CreateService(c.Request().Context(), payload)
	if err != nil {
		var verr *resource.ValidationError
		if errors.As(err, &verr) {
			return con.serviceInvalid(c, verr.Fields)
		}
		if gate.WantsJSON(c) {
			return failFrom(c, err, serviceCreateFailed)
		}
		return redirectOrJSON(c, "/services/new", Flashes{Error: []string{apperr.Message(err, serviceCreateFailed)}}, nil)
	}

	con.record(c, oprlog.ActionCreateService, payload.String())
	return redirectOrJSON(c, "/services/new", Flashes{Success: []string{serviceCreated}}, p)
}

func (con *Console) serviceInvalid(c echo.Context, fields []string) error {
	if gate.WantsJSON(c) {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", fields[0], fields)
	}
	return redirectOrJSON(c, "/services/new", Flashes{Error: fields}, nil)
}
