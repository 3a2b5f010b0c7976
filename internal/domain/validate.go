package domain

import (
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// finite rejects NaN and ±Inf, which the numeric comparisons let through
	_ = v.RegisterValidation("finite", func(fl validator.FieldLevel) bool {
		switch fl.Field().Kind() {
		case reflect.Float32, reflect.Float64:
			f := fl.Field().Float()
			return !math.IsNaN(f) && !math.IsInf(f, 0)
		}
		return true
	})
	return v
}

// ValidateStruct checks the validate tags of s.
func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

// FieldMessages turns a validation failure into one message per failing
// field, using messages keyed by the field's json name. Fields without a
// message fall back to the validator's own text.
func FieldMessages(err error, messages map[string]string) []string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		if err == nil {
			return nil
		}
		return []string{err.Error()}
	}
	out := make([]string, 0, len(verrs))
	seen := map[string]bool{}
	for _, fe := range verrs {
		if seen[fe.Field()] {
			continue
		}
		seen[fe.Field()] = true
		if msg, found := messages[fe.Field()]; found {
			out = append(out, msg)
			continue
		}
		out = append(out, fe.Error())
	}
	return out
}
