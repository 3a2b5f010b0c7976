package adminweb

import (
	"math"
	"strings"

	"github.com/spf13/cast"

	"github.com/boldserve/adminconsole/internal/domain"
)

// structValidator backs echo's c.Validate with the domain validate tags.
type structValidator struct{}

func (structValidator) Validate(i interface{}) error {
	return domain.ValidateStruct(i)
}

// serviceForm is the create form as posted, urlencoded or JSON.
type serviceForm struct {
	ProductName string     `json:"productName" form:"productName"`
	Name        string     `json:"name" form:"name"`
	Category    string     `json:"category" form:"category"`
	SubCategory string     `json:"subCategory" form:"subCategory"`
	Price       formNumber `json:"price" form:"price"`
	Description string     `json:"description" form:"description"`
	Images      imageList  `json:"images" form:"images"`
	IsAvailable formFlag   `json:"isAvailable" form:"isAvailable"`
	Rating      formNumber `json:"rating" form:"rating"`
	Duration    formNumber `json:"duration" form:"duration"`
	Offers      string     `json:"offers" form:"offers"`
	Review      string     `json:"review" form:"review"`
}

// payload converts the form; a missing price is invalid, missing rating and
// duration are zero.
func (f serviceForm) payload() domain.ServicePayload {
	p := domain.ServicePayload{
		ProductName: f.ProductName,
		Name:        f.Name,
		Category:    f.Category,
		SubCategory: f.SubCategory,
		Price:       f.Price.float(math.NaN()),
		Description: f.Description,
		Images:      f.Images.split(),
		IsAvailable: bool(f.IsAvailable),
		Rating:      f.Rating.float(0),
		Duration:    f.Duration.float(0),
		Offers:      f.Offers,
		Review:      f.Review,
	}
	p.Prepare()
	return p
}

// formNumber keeps a numeric field as typed so that unparseable input
// reaches validation instead of failing the bind.
type formNumber string

func (n *formNumber) UnmarshalParam(s string) error {
	*n = formNumber(strings.TrimSpace(s))
	return nil
}

func (n *formNumber) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		return n.UnmarshalParam(s)
	}
	if string(b) == "null" {
		*n = ""
		return nil
	}
	return n.UnmarshalParam(string(b))
}

// float is def when empty, NaN when not a number.
func (n formNumber) float(def float64) float64 {
	if n == "" {
		return def
	}
	f, err := cast.ToFloat64E(string(n))
	if err != nil {
		return math.NaN()
	}
	return f
}

// formFlag accepts a checkbox's "on" as well as booleans.
type formFlag bool

func (f *formFlag) UnmarshalParam(s string) error {
	*f = formFlag(strings.EqualFold(s, "on") || cast.ToBool(s))
	return nil
}

func (f *formFlag) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	if s, isStr := v.(string); isStr {
		return f.UnmarshalParam(s)
	}
	*f = formFlag(cast.ToBool(v))
	return nil
}

// imageList takes repeated fields, a JSON array or a single string; each
// entry may hold several URLs separated by newlines or commas.
type imageList []string

func (l *imageList) UnmarshalJSON(b []byte) error {
	var one string
	if err := json.Unmarshal(b, &one); err == nil {
		*l = imageList{one}
		return nil
	}
	var many []string
	if err := json.Unmarshal(b, &many); err != nil {
		return err
	}
	*l = many
	return nil
}

func (l imageList) split() []string {
	var out []string
	for _, s := range l {
		out = append(out, strings.FieldsFunc(s, func(r rune) bool {
			return r == '\n' || r == '\r' || r == ','
		})...)
	}
	return out
}
