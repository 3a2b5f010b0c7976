package adminweb

import (
	"fmt"
	"net/http"

	"github.com/gocarina/gocsv"
	"github.com/labstack/echo/v4"
)

// writeCSV streams rows (a pointer to a slice of csv-tagged structs) as a download.
func writeCSV(c echo.Context, filename string, rows interface{}) error {
	c.Response().Header().Set(echo.HeaderContentType, "text/csv; charset=utf-8")
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	c.Response().WriteHeader(http.StatusOK)
	return gocsv.Marshal(rows, c.Response())
}
