package utils

import (
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// ValidateStruct runs the `validate` struct tags of s.
func ValidateStruct(s interface{}) error {
	return validatorInstance().Struct(s)
}

func IsValidEmail(email string) bool {
	return validatorInstance().Var(email, "required,email") == nil
}
