package domain

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// Order status vocabulary as observed across backend versions
const (
	OrderAccepted   = "accepted"
	OrderSuccessful = "successful"
	OrderCompleted  = "completed"
	OrderCancelled  = "cancelled"
	OrderFailed     = "failed"
)

// Order is a customer order; the payments screens show the same records.
type Order struct {
	ID            string  `mapstructure:"_id" json:"id"`
	AltID         string  `mapstructure:"id" json:"-"`
	PaymentID     string  `mapstructure:"paymentId" json:"paymentId,omitempty"`
	Customer      string  `mapstructure:"customerName" json:"customer"`
	AltCustomer   string  `mapstructure:"customer" json:"-"`
	Service       string  `mapstructure:"serviceName" json:"service"`
	AltService    string  `mapstructure:"service" json:"-"`
	Amount        float64 `mapstructure:"amount" json:"amount"`
	Status        string  `mapstructure:"status" json:"status"`
	PaymentStatus string  `mapstructure:"paymentStatus" json:"paymentStatus,omitempty"`
	CreatedAt     string  `mapstructure:"createdAt" json:"createdAt,omitempty"`
}

func (o *Order) Normalize() {
	if o.ID == "" {
		o.ID = o.AltID
	}
	if o.ID == "" {
		o.ID = o.PaymentID
	}
	if o.Customer == "" {
		o.Customer = o.AltCustomer
	}
	if o.Service == "" {
		o.Service = o.AltService
	}
	o.Status = strings.ToLower(strings.TrimSpace(o.Status))
	o.PaymentStatus = strings.ToLower(strings.TrimSpace(o.PaymentStatus))
}

func (o Order) Key() string {
	return o.ID
}

// Reference is the identifier shown to operators: payment id when present.
func (o Order) Reference() string {
	if o.PaymentID != "" {
		return o.PaymentID
	}
	return o.ID
}

// IsAccepted reports membership of the accepted/successful bucket.
func (o Order) IsAccepted() bool {
	switch o.Status {
	case OrderAccepted, OrderSuccessful, OrderCompleted:
		return true
	}
	return o.PaymentStatus == OrderSuccessful
}

// IsCancelled reports membership of the cancelled/failed bucket.
func (o Order) IsCancelled() bool {
	switch o.Status {
	case OrderCancelled, OrderFailed:
		return true
	}
	return o.PaymentStatus == OrderFailed
}

// Created parses CreatedAt in whatever format the backend used.
func (o Order) Created() (time.Time, bool) {
	if o.CreatedAt == "" {
		return time.Time{}, false
	}
	t, err := dateparse.ParseAny(o.CreatedAt)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// OrderRow flat CSV export row
type OrderRow struct {
	Reference string  `csv:"reference"`
	Customer  string  `csv:"customer"`
	Service   string  `csv:"service"`
	Amount    float64 `csv:"amount"`
	Status    string  `csv:"status"`
	CreatedAt string  `csv:"created_at"`
}

func (o Order) Row() OrderRow {
	created := ""
	if t, ok := o.Created(); ok {
		created = t.Format("2006-01-02")
	}
	return OrderRow{
		Reference: o.Reference(),
		Customer:  o.Customer,
		Service:   o.Service,
		Amount:    o.Amount,
		Status:    o.Status,
		CreatedAt: created,
	}
}
