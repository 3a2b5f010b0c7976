package adminweb

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/boldserve/adminconsole/internal/domain"
	"github.com/boldserve/adminconsole/internal/oprlog"
)

const (
	oprlogLimit        = 100
	oprlogNotPersisted = "Operator actions are written to the application log only."
	oprlogLoadFailed   = "Failed to load the operator log. Please try again later."
)

type oprlogView struct {
	Persisted bool               `json:"persisted"`
	Message   string             `json:"message,omitempty"`
	Entries   []domain.SysOprLog `json:"entries"`
}

// listOprLog shows the newest operator actions when the recorder keeps them.
func (con *Console) listOprLog(c echo.Context) error {
	view := oprlogView{Entries: []domain.SysOprLog{}}
	lister, persisted := con.rec.(oprlog.Lister)
	if !persisted {
		view.Message = oprlogNotPersisted
		return con.render(c, "oprlog", "Operator Log", view)
	}
	view.Persisted = true

	limit := oprlogLimit
	if n, err := strconv.Atoi(c.QueryParam("limit")); err == nil && n > 0 && n <= 500 {
		limit = n
	}
	ctx, cancel := con.awaitCtx(c)
	defer cancel()
	entries, err := lister.List(ctx, limit)
	if err != nil {
		view.Message = oprlogLoadFailed
		return con.render(c, "oprlog", "Operator Log", view)
	}
	view.Entries = entries
	return con.render(c, "oprlog", "Operator Log", view)
}
