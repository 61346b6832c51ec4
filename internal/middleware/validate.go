package middleware

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// NewValidate builds a validator.Validate whose errors name fields by their
// json tag. Services use it directly; handlers go through Validator.
func NewValidate() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}
