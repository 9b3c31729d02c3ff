package validation

import (
	"github.com/go-playground/validator/v10"

	apperrors "github.com/spec-kit/repair-service/pkg/util"
)

// Validator wraps go-playground/validator for request DTOs.
type Validator struct {
	validate *validator.Validate
}

// New creates a configured validator.
func New() *Validator {
	return &Validator{validate: validator.New()}
}

// Validate checks struct tags and converts failures into a validation
// DomainError listing the offending fields.
func (v *Validator) Validate(i interface{}) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}

	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	fields := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		fields = append(fields, fe.Field())
	}
	return apperrors.NewValidationError("invalid payload", map[string]any{"fields": fields})
}
