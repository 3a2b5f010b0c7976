// Package resource exposes one typed method per backend operation. Every
// error it returns is an *apperr.Error or a *ValidationError.
package resource

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/boldserve/adminconsole/internal/apiclient"
	"github.com/boldserve/adminconsole/internal/apperr"
	"github.com/boldserve/adminconsole/internal/domain"
	"github.com/boldserve/adminconsole/internal/envelope"
	"github.com/boldserve/adminconsole/internal/session"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const maxLoggedPayload = 2048

// ProductFilter narrows the product list; empty fields match everything.
type ProductFilter struct {
	Category    string `query:"category"`
	SubCategory string `query:"subCategory"`
}

func (f ProductFilter) Match(p domain.Product) bool {
	if f.Category != "" && !strings.EqualFold(f.Category, p.Category) {
		return false
	}
	if f.SubCategory != "" && !strings.EqualFold(f.SubCategory, p.SubCategory) {
		return false
	}
	return true
}

// Category groups sub-categories for the create form.
type Category struct {
	Name          string   `mapstructure:"name" json:"name"`
	AltName       string   `mapstructure:"category" json:"-"`
	SubCategories []string `mapstructure:"subCategories" json:"subCategories"`
}

func (c *Category) Normalize() {
	if c.Name == "" {
		c.Name = c.AltName
	}
}

// ValidationError lists every invalid create-form field.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "invalid service: " + strings.Join(e.Fields, "; ")
}

// Client is the resource access layer.
type Client struct {
	api        *apiclient.Client
	session    *session.Manager
	auth       Authenticator
	ordersPath string
	// flight shares one category fetch between concurrent form loads
	flight singleflight.Group
}

func New(api *apiclient.Client, sess *session.Manager, auth Authenticator, ordersPath string) *Client {
	if ordersPath == "" {
		ordersPath = "/api/orders"
	}
	return &Client{api: api, session: sess, auth: auth, ordersPath: ordersPath}
}

func (c *Client) BaseURL() string {
	return c.api.BaseURL()
}

// Login authenticates and persists the issued token.
func (c *Client) Login(ctx context.Context, cred Credentials) (string, error) {
	token, err := c.auth.Authenticate(ctx, cred)
	if err != nil {
		zap.L().Info("admin login rejected",
			zap.String("authenticator", c.auth.Name()),
			zap.String("user_id", cred.UserID),
			zap.Error(err))
		return "", err
	}
	if err := c.session.Login(token); err != nil {
		return "", err
	}
	return token, nil
}

func (c *Client) Logout(_ context.Context) error {
	return c.session.Logout()
}

// VerifyToken asks the backend whether the stored token is still accepted.
func (c *Client) VerifyToken(ctx context.Context) error {
	raw, err := c.api.Get(ctx, "/api/admin/verify")
	if err != nil {
		return err
	}
	return checkAck(raw)
}

func (c *Client) ListProducts(ctx context.Context, filter ProductFilter) ([]domain.Product, error) {
	q := url.Values{}
	if filter.Category != "" {
		q.Set("category", filter.Category)
	}
	if filter.SubCategory != "" {
		q.Set("subCategory", filter.SubCategory)
	}
	raw, err := c.api.Get(ctx, "/api/services", apiclient.WithQuery(q))
	if err != nil {
		return nil, err
	}
	items, err := envelope.ParseList[domain.Product](raw)
	logMalformed("list_products", err)
	if err != nil {
		return nil, err
	}
	// the backend may ignore the query, so filter again locally
	out := items[:0]
	for _, p := range items {
		if filter.Match(p) {
			out = append(out, p)
		}
	}
	return out, nil
}

// ListCategories returns the backend catalogue, or the built-in one when the
// backend has none to offer.
func (c *Client) ListCategories(ctx context.Context) ([]Category, error) {
	ch := c.flight.DoChan("categories", func() (interface{}, error) {
		return c.fetchCategories(ctx)
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		// callers may sort their copy
		return append([]Category(nil), res.Val.([]Category)...), nil
	case <-ctx.Done():
		return nil, apperr.Timeout(errors.Wrap(ctx.Err(), "list categories"))
	}
}

func (c *Client) fetchCategories(ctx context.Context) ([]Category, error) {
	raw, err := c.api.Get(ctx, "/api/services/categories")
	if err != nil {
		if apperr.StatusOf(err) == http.StatusNotFound {
			return builtinCategories(), nil
		}
		return nil, err
	}
	cats, err := envelope.ParseList[Category](raw)
	if err != nil {
		if apperr.Is(err, apperr.KindMalformedResponse) {
			zap.L().Debug("backend category catalogue unreadable, using built-in", zap.Error(err))
			return builtinCategories(), nil
		}
		return nil, err
	}
	if len(cats) == 0 {
		return builtinCategories(), nil
	}
	return cats, nil
}

func builtinCategories() []Category {
	cats := make([]Category, 0, len(domain.Categories))
	for name, subs := range domain.Categories {
		cats = append(cats, Category{Name: name, SubCategories: append([]string(nil), subs...)})
	}
	return cats
}

func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	if id == "" {
		return apperr.HTTP(http.StatusBadRequest, nil, "Product id is required")
	}
	raw, err := c.api.Delete(ctx, "/api/services/"+url.PathEscape(id))
	if err != nil {
		return err
	}
	return checkAck(raw)
}

// CreateService validates and submits the create form, returning the
// product as the backend recorded it when its reply says so.
func (c *Client) CreateService(ctx context.Context, payload domain.ServicePayload) (domain.Product, error) {
	payload.Prepare()
	if errs := payload.Validate(); len(errs) > 0 {
		return domain.Product{}, &ValidationError{Fields: errs}
	}
	raw, err := c.api.Post(ctx, "/api/services", payload)
	if err != nil {
		return domain.Product{}, err
	}
	p, err := envelope.ParseOne[domain.Product](raw)
	if err != nil {
		if apperr.Is(err, apperr.KindMalformedResponse) {
			// accepted, but the reply does not echo the record
			zap.L().Debug("create service reply carries no product", zap.ByteString("payload", clip(raw)))
			return payload.AsProduct(), nil
		}
		return domain.Product{}, err
	}
	return p, nil
}

func (c *Client) ListUsers(ctx context.Context) ([]domain.User, error) {
	raw, err := c.api.Get(ctx, "/api/users")
	if err != nil {
		return nil, err
	}
	items, err := envelope.ParseList[domain.User](raw)
	logMalformed("list_users", err)
	return items, err
}

// ListOrders lists orders, optionally restricted to one status.
func (c *Client) ListOrders(ctx context.Context, status string) ([]domain.Order, error) {
	var opts []apiclient.Option
	if status != "" {
		opts = append(opts, apiclient.WithQuery(url.Values{"status": {status}}))
	}
	raw, err := c.api.Get(ctx, c.ordersPath, opts...)
	if err != nil {
		return nil, err
	}
	items, err := envelope.ParseList[domain.Order](raw)
	logMalformed("list_orders", err)
	return items, err
}

// checkAck accepts any 2xx reply unless it explicitly says success=false.
func checkAck(raw []byte) error {
	var reply struct {
		Success *bool  `json:"success"`
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &reply); err != nil {
		return nil
	}
	if reply.Success != nil && !*reply.Success {
		msg := reply.Message
		if msg == "" {
			msg = reply.Error
		}
		return apperr.HTTP(http.StatusOK, raw, msg)
	}
	return nil
}

func logMalformed(op string, err error) {
	ae, ok := apperr.From(err)
	if !ok || ae.Kind != apperr.KindMalformedResponse {
		return
	}
	zap.L().Error("malformed backend response",
		zap.String("operation", op),
		zap.ByteString("payload", clip(ae.Body)),
		zap.Error(ae.Err))
}

func clip(b []byte) []byte {
	if len(b) > maxLoggedPayload {
		return b[:maxLoggedPayload]
	}
	return b
}
