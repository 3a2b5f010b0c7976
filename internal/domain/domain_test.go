package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderPartition(t *testing.T) {
	tests := []struct {
		order     Order
		accepted  bool
		cancelled bool
	}{
		{Order{Status: "accepted"}, true, false},
		{Order{Status: "successful"}, true, false},
		{Order{Status: "completed"}, true, false},
		{Order{PaymentStatus: "successful"}, true, false},
		{Order{Status: "cancelled"}, false, true},
		{Order{Status: "failed"}, false, true},
		{Order{PaymentStatus: "failed"}, false, true},
		{Order{Status: "pending"}, false, false},
	}
	for _, tt := range tests {
		o := tt.order
		o.Normalize()
		assert.Equal(t, tt.accepted, o.IsAccepted(), "%+v", tt.order)
		assert.Equal(t, tt.cancelled, o.IsCancelled(), "%+v", tt.order)
	}
}

func TestOrderNormalize(t *testing.T) {
	o := Order{PaymentID: "pay_1", AltCustomer: "Asha", AltService: "Cleaning", Status: " Accepted "}
	o.Normalize()

	assert.Equal(t, "pay_1", o.Key())
	assert.Equal(t, "pay_1", o.Reference())
	assert.Equal(t, "Asha", o.Customer)
	assert.Equal(t, "Cleaning", o.Service)
	assert.Equal(t, OrderAccepted, o.Status)
}

func TestOrderCreated(t *testing.T) {
	o := Order{CreatedAt: "2024-03-05T10:20:30.000Z"}
	ts, ok := o.Created()
	assert.True(t, ok)
	assert.Equal(t, 2024, ts.Year())
	assert.Equal(t, "2024-03-05", o.Row().CreatedAt)

	_, ok = Order{CreatedAt: "not a date"}.Created()
	assert.False(t, ok)
}

func TestServicePayloadPrepareAndValidate(t *testing.T) {
	p := ServicePayload{
		Name:        " Gel Pen ",
		Category:    "Office Stationaries",
		SubCategory: "Pen & Pencil Kits",
		Price:       45,
		Description: "Blue ink",
		Images:      []string{" ", "https://cdn.example.com/pen.png"},
	}
	p.Prepare()

	assert.Equal(t, "Gel Pen", p.ProductName)
	assert.Equal(t, "Gel Pen", p.Name)
	assert.Equal(t, "0", p.Offers)
	assert.Equal(t, []string{"https://cdn.example.com/pen.png"}, p.Images)
	assert.Empty(t, p.Validate())

	bad := ServicePayload{Price: -1, Rating: 6}
	bad.Prepare()
	assert.Equal(t, []string{
		"Product name is required",
		"Category is required",
		"Sub-category is required",
		"Price must be a valid non-negative number",
		"Description is required",
		"Rating must be between 0 and 5",
	}, bad.Validate())
}

func TestServicePayloadRejectsNonFiniteNumbers(t *testing.T) {
	valid := func() ServicePayload {
		p := ServicePayload{
			ProductName: "Gel Pen",
			Category:    "Office Stationaries",
			SubCategory: "Pen & Pencil Kits",
			Price:       45,
			Description: "Blue ink",
		}
		p.Prepare()
		return p
	}

	tests := []struct {
		name string
		set  func(*ServicePayload)
		want string
	}{
		{"price nan", func(p *ServicePayload) { p.Price = math.NaN() }, "Price must be a valid non-negative number"},
		{"price inf", func(p *ServicePayload) { p.Price = math.Inf(1) }, "Price must be a valid non-negative number"},
		{"rating nan", func(p *ServicePayload) { p.Rating = math.NaN() }, "Rating must be between 0 and 5"},
		{"rating inf", func(p *ServicePayload) { p.Rating = math.Inf(1) }, "Rating must be between 0 and 5"},
		{"duration nan", func(p *ServicePayload) { p.Duration = math.NaN() }, "Duration must be a valid non-negative number"},
		{"duration negative inf", func(p *ServicePayload) { p.Duration = math.Inf(-1) }, "Duration must be a valid non-negative number"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid()
			tt.set(&p)
			assert.Equal(t, []string{tt.want}, p.Validate())
		})
	}
}

func TestFieldMessagesFallsBackToValidatorText(t *testing.T) {
	type sample struct {
		Code string `json:"code" validate:"required"`
	}
	msgs := FieldMessages(ValidateStruct(sample{}), nil)
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0], "code")
	assert.Nil(t, FieldMessages(nil, nil))
}

func TestProductCoverImage(t *testing.T) {
	p := Product{Images: []string{"/uploads/a.png"}}
	assert.Equal(t, "http://localhost:8003/uploads/a.png", p.CoverImage("http://localhost:8003/"))
	p.Images = []string{"https://cdn.example.com/b.png"}
	assert.Equal(t, "https://cdn.example.com/b.png", p.CoverImage("http://localhost:8003"))
	assert.Empty(t, Product{}.CoverImage("http://x"))
}
