package services

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// newValidator returns a validator with the "notblank" tag registered.
func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return v
}
