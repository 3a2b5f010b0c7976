package viewmodel

import (
	"context"
	"fmt"
	"net/http"

	"github.com/boldserve/adminconsole/internal/apperr"
	"github.com/boldserve/adminconsole/internal/domain"
)

const (
	ProductsEmpty       = "No products found"
	ProductsError       = "Error loading products. Please try again later."
	ProductDeleted      = "Product deleted successfully"
	ProductDeleteFailed = "Failed to delete product. Please try again."

	UsersEmpty = "No users found"
	UsersError = "Failed to load users. Please try again later."

	OrdersEmpty    = "No Orders Available"
	OrdersNotFound = "No orders found. The system is ready to receive new orders."
	OrdersError    = "Failed to load orders. Please try again later."

	PaymentsEmpty = "No Payments Made Yet"
	PaymentsError = "Failed to load payments. Please try again later."
)

func NewProducts(fetch func(context.Context) ([]domain.Product, error), remove func(context.Context, string) error, runner Runner) *List[domain.Product] {
	return NewList(Config[domain.Product]{
		Name:           "products",
		Fetch:          fetch,
		Key:            domain.Product.Key,
		Remove:         remove,
		EmptyMessage:   ProductsEmpty,
		ErrorFallback:  ProductsError,
		DeleteNotice:   ProductDeleted,
		DeleteFallback: ProductDeleteFailed,
		Runner:         runner,
	})
}

func NewUsers(fetch func(context.Context) ([]domain.User, error), runner Runner) *List[domain.User] {
	return NewList(Config[domain.User]{
		Name:          "users",
		Fetch:         fetch,
		Key:           domain.User.Key,
		EmptyMessage:  UsersEmpty,
		ErrorFallback: UsersError,
		Runner:        runner,
	})
}

// OrderWording distinguishes the orders screen from the payments screen,
// which show the same records.
type OrderWording struct {
	Name          string
	EmptyMessage  string
	ErrorFallback string
}

var (
	OrdersWording   = OrderWording{Name: "orders", EmptyMessage: OrdersEmpty, ErrorFallback: OrdersError}
	PaymentsWording = OrderWording{Name: "payments", EmptyMessage: PaymentsEmpty, ErrorFallback: PaymentsError}
)

// Orders is a list of orders split into accepted and cancelled tabs.
type Orders struct {
	*List[domain.Order]
}

func NewOrders(fetch func(context.Context) ([]domain.Order, error), wording OrderWording, runner Runner) *Orders {
	return &Orders{List: NewList(Config[domain.Order]{
		Name:          wording.Name,
		Fetch:         fetch,
		Key:           domain.Order.Key,
		EmptyMessage:  wording.EmptyMessage,
		ErrorFallback: wording.ErrorFallback,
		EmptyOn: func(err error) (string, bool) {
			if apperr.StatusOf(err) == http.StatusNotFound {
				return OrdersNotFound, true
			}
			return "", false
		},
		Runner: runner,
	})}
}

// OrderTabs is the partitioned rendition of an orders snapshot.
type OrderTabs struct {
	Snapshot[domain.Order]
	Accepted       []domain.Order
	Cancelled      []domain.Order
	AcceptedLabel  string
	CancelledLabel string
}

// Partition splits items into the two tabs; orders in neither bucket are
// left out of both.
func Partition(items []domain.Order) (accepted, cancelled []domain.Order) {
	for _, o := range items {
		switch {
		case o.IsAccepted():
			accepted = append(accepted, o)
		case o.IsCancelled():
			cancelled = append(cancelled, o)
		}
	}
	return accepted, cancelled
}

func Tabs(s Snapshot[domain.Order]) OrderTabs {
	accepted, cancelled := Partition(s.Items)
	return OrderTabs{
		Snapshot:       s,
		Accepted:       accepted,
		Cancelled:      cancelled,
		AcceptedLabel:  fmt.Sprintf("Successful Payments (%d)", len(accepted)),
		CancelledLabel: fmt.Sprintf("Failed Payments (%d)", len(cancelled)),
	}
}

func (o *Orders) Tabs() OrderTabs {
	return Tabs(o.Snapshot())
}

func (o *Orders) AwaitTabs(ctx context.Context) OrderTabs {
	return Tabs(o.Await(ctx))
}
