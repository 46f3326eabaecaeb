package ledger

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/corebank/backend/internal/domain/shared"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CommandValidator checks command structs before any repository is touched
type CommandValidator struct {
	validate *validator.Validate
}

// NewCommandValidator creates a validator that understands decimal and uuid fields
func NewCommandValidator() *CommandValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if id, ok := field.Interface().(uuid.UUID); ok && id != uuid.Nil {
			return id.String()
		}
		return nil
	}, uuid.UUID{})
	return &CommandValidator{validate: v}
}

// Validate returns a VALIDATION domain error describing the first failing field
func (v *CommandValidator) Validate(cmd any) error {
	err := v.validate.Struct(cmd)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return shared.NewValidationError("INVALID_INPUT", err.Error())
	}
	fe := fieldErrs[0]
	return shared.NewValidationError(validationCode(fe), fmt.Sprintf("%s: %s", fe.Field(), validationMessage(fe)))
}

func validationCode(fe validator.FieldError) string {
	name := strings.ToLower(fe.Field())
	switch {
	case strings.HasSuffix(name, "amount") || name == "principal":
		return "INVALID_AMOUNT"
	case strings.HasSuffix(name, "rate"):
		return "INVALID_RATE"
	case strings.HasSuffix(name, "months") || name == "days":
		return "INVALID_TENURE"
	}
	return "INVALID_INPUT"
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Invalid email format"
	case "oneof":
		return "Must be one of: " + fe.Param()
	case "gt":
		return "Must be greater than " + fe.Param()
	case "gte":
		return "Must be greater than or equal to " + fe.Param()
	case "max":
		return "Must be at most " + fe.Param()
	default:
		return "Invalid value"
	}
}
