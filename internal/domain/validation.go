package domain

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// validatorInstance is a package-level validator instance.
// Using a single instance is more efficient as it caches struct information.
var validatorInstance = validator.New()

func init() {
	// notblank rejects strings made only of whitespace, which "required" lets through.
	_ = validatorInstance.RegisterValidation("notblank", validators.NotBlank)
}

// Validator returns the shared validator so the HTTP layer applies the same
// rules (including the custom tags registered here) to its request DTOs.
func Validator() *validator.Validate {
	return validatorInstance
}

// Validate runs struct validation and reports failures as ErrUnprocessable.
func Validate(v any) error {
	if err := validatorInstance.Struct(v); err != nil {
		return fmt.Errorf("%w: %v", ErrUnprocessable, err)
	}
	return nil
}
