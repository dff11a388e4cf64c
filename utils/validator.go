package utils

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

var Validate = NewValidator()

func NewValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("notblank", NotBlank)
	return v
}

// NotBlank rejects strings that are empty after trimming whitespace.
func NotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}
