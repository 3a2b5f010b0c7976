package adminweb

import (
	"net/http"
	"strconv"

	jsoniter "github.com/json-iterator/go"
	"github.com/labstack/echo/v4"

	"github.com/boldserve/adminconsole/internal/apperr"
)

// Response envelope of every JSON rendition
type Response struct {
	Code    string      `json:"code"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

// PageInfo is the paginated part of a list rendition
type PageInfo struct {
	Items    interface{} `json:"items"`
	Total    int         `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"pageSize"`
}

func (p PageInfo) HasNext() bool {
	return p.Page*p.PageSize < p.Total
}

// paginate cuts the requested page out of items.
func paginate[T any](c echo.Context, items []T) (PageInfo, []T) {
	page, pageSize := parsePagination(c)
	rows := pageOf(items, page, pageSize)
	return PageInfo{Items: rows, Total: len(items), Page: page, PageSize: pageSize}, rows
}

func ok(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, Response{Code: "OK", Data: data})
}

func fail(c echo.Context, status int, code, message string, details interface{}) error {
	return c.JSON(status, Response{Code: code, Message: message, Details: details})
}

// parsePagination reads page and perPage (or the older pageSize).
func parsePagination(c echo.Context) (int, int) {
	page := 1
	if p, err := strconv.Atoi(c.QueryParam("page")); err == nil && p > 0 {
		page = p
	}
	pageSize := 20
	sizeStr := c.QueryParam("perPage")
	if sizeStr == "" {
		sizeStr = c.QueryParam("pageSize")
	}
	if ps, err := strconv.Atoi(sizeStr); err == nil && ps > 0 && ps <= 500 {
		pageSize = ps
	}
	return page, pageSize
}

// pageOf cuts one page out of items.
func pageOf[T any](items []T, page, pageSize int) []T {
	start := (page - 1) * pageSize
	if start >= len(items) {
		return []T{}
	}
	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// failFrom maps a backend failure to a JSON error reply.
func failFrom(c echo.Context, err error, fallback string) error {
	status := http.StatusBadGateway
	code := "BACKEND_ERROR"
	if ae, found := apperr.From(err); found {
		switch ae.Kind {
		case apperr.KindTimeout:
			status, code = http.StatusGatewayTimeout, "TIMEOUT"
		case apperr.KindNetworkUnavailable:
			code = "NETWORK_UNAVAILABLE"
		case apperr.KindUnauthorized:
			status, code = http.StatusUnauthorized, "UNAUTHORIZED"
		case apperr.KindMalformedResponse:
			code = "MALFORMED_RESPONSE"
		case apperr.KindInvalidRequest:
			status, code = http.StatusBadRequest, "INVALID_REQUEST"
		case apperr.KindHTTP:
			if ae.Status >= 400 {
				status = ae.Status
			}
		}
	}
	return fail(c, status, code, apperr.Message(err, fallback), nil)
}

var json = jsoniter.ConfigCompatibleWithStandardLibrary
