package domain

import (
	"fmt"
	"strings"
)

// Product is a catalogue entry; the backend calls it a service.
// Alt* fields catch the alternate key spellings seen in backend replies and
// are folded in by Normalize.
type Product struct {
	ID          string   `mapstructure:"_id" json:"id"`
	AltID       string   `mapstructure:"id" json:"-"`
	Name        string   `mapstructure:"productName" json:"name"`
	AltName     string   `mapstructure:"name" json:"-"`
	Category    string   `mapstructure:"category" json:"category"`
	SubCategory string   `mapstructure:"subCategory" json:"subCategory,omitempty"`
	Price       float64  `mapstructure:"price" json:"price"`
	Description string   `mapstructure:"description" json:"description"`
	Images      []string `mapstructure:"images" json:"images"`
	IsAvailable bool     `mapstructure:"isAvailable" json:"isAvailable"`
	Rating      float64  `mapstructure:"rating" json:"rating"`
	Review      string   `mapstructure:"review" json:"review,omitempty"`
	Offers      string   `mapstructure:"offers" json:"offers,omitempty"`
	Duration    float64  `mapstructure:"duration" json:"duration"`
}

func (p *Product) Normalize() {
	if p.ID == "" {
		p.ID = p.AltID
	}
	if p.Name == "" {
		p.Name = p.AltName
	}
}

func (p Product) Key() string {
	return p.ID
}

// CoverImage first image reference, resolved against base when relative.
func (p Product) CoverImage(base string) string {
	if len(p.Images) == 0 || p.Images[0] == "" {
		return ""
	}
	img := p.Images[0]
	if strings.HasPrefix(img, "http://") || strings.HasPrefix(img, "https://") {
		return img
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(img, "/")
}

// ServicePayload is the create-service form as POSTed to /api/services.
// Field order is form order; validation messages follow it.
type ServicePayload struct {
	ProductName string   `json:"productName" validate:"required"`
	Name        string   `json:"name"`
	Category    string   `json:"category" validate:"required"`
	SubCategory string   `json:"subCategory" validate:"required"`
	Price       float64  `json:"price" validate:"finite,gte=0"`
	Description string   `json:"description" validate:"required"`
	Images      []string `json:"images"`
	IsAvailable bool     `json:"isAvailable"`
	Rating      float64  `json:"rating" validate:"finite,min=0,max=5"`
	Duration    float64  `json:"duration" validate:"finite,gte=0"`
	Offers      string   `json:"offers"`
	Review      string   `json:"review"`
}

var serviceMessages = map[string]string{
	"productName": "Product name is required",
	"category":    "Category is required",
	"subCategory": "Sub-category is required",
	"price":       "Price must be a valid non-negative number",
	"description": "Description is required",
	"rating":      "Rating must be between 0 and 5",
	"duration":    "Duration must be a valid non-negative number",
}

// Prepare fills the fields the backend requires but the form may omit.
func (s *ServicePayload) Prepare() {
	s.ProductName = strings.TrimSpace(s.ProductName)
	if s.ProductName == "" {
		s.ProductName = strings.TrimSpace(s.Name)
	}
	s.Name = s.ProductName
	s.Category = strings.TrimSpace(s.Category)
	s.SubCategory = strings.TrimSpace(s.SubCategory)
	s.Description = strings.TrimSpace(s.Description)
	if s.Offers == "" {
		s.Offers = "0"
	}
	if s.Review == "" {
		s.Review = "0"
	}
	images := s.Images[:0]
	for _, img := range s.Images {
		if img = strings.TrimSpace(img); img != "" {
			images = append(images, img)
		}
	}
	s.Images = images
}

// Validate returns one message per invalid field, in form order.
func (s ServicePayload) Validate() []string {
	return ServiceMessages(ValidateStruct(s))
}

// ServiceMessages renders a ServicePayload validation failure.
func ServiceMessages(err error) []string {
	return FieldMessages(err, serviceMessages)
}

// AsProduct is the product the payload describes, without a backend id.
func (s ServicePayload) AsProduct() Product {
	return Product{
		Name:        s.ProductName,
		Category:    s.Category,
		SubCategory: s.SubCategory,
		Price:       s.Price,
		Description: s.Description,
		Images:      s.Images,
		IsAvailable: s.IsAvailable,
		Rating:      s.Rating,
		Review:      s.Review,
		Offers:      s.Offers,
		Duration:    s.Duration,
	}
}

func (s ServicePayload) String() string {
	return fmt.Sprintf("%s (%s/%s) %.2f", s.ProductName, s.Category, s.SubCategory, s.Price)
}

// Categories is the built-in category catalogue offered by the create form
// when the backend does not publish one.
var Categories = map[string][]string{
	"Office Stationaries": {
		"Notebooks & Papers",
		"Adhesive & Glue",
		"Pen & Pencil Kits",
		"Whitener & Markers",
		"Stapler & Scissors",
		"Calculator",
	},
}
