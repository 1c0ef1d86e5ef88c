package handler

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/supportdesk/support-system/internal/core/domain"
)

// echoValidator wraps go-playground/validator so Echo can call c.Validate(req).
type echoValidator struct {
	v *validator.Validate
}

// NewValidator returns an echoValidator ready to be assigned to echo.Echo.Validator.
// Field names in messages follow the json tags.
func NewValidator() *echoValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return &echoValidator{v: v}
}

// Validate satisfies the echo.Validator interface. Every failure matches
// domain.ErrValidation.
func (ev *echoValidator) Validate(i any) error {
	if err := ev.v.Struct(i); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			if len(ve) == 1 {
				return fieldError(ve[0])
			}
			msgs := make([]string, 0, len(ve))
			for _, fe := range ve {
				msgs = append(msgs, fieldError(fe).Error())
			}
			return fmt.Errorf("%w: %s", domain.ErrValidation, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	return nil
}

// fieldError converts a single FieldError into a domain validation error.
func fieldError(fe validator.FieldError) error {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return domain.Required(field)
	case "email":
		return domain.Invalid(field, "must be a valid email")
	case "gte":
		return domain.Invalid(field, "must be at least %s", fe.Param())
	case "min":
		return domain.Invalid(field, "must be at least %s characters", fe.Param())
	case "max":
		return domain.Invalid(field, "must be at most %s", fe.Param())
	case "oneof":
		return domain.Invalid(field, "must be one of: %s", fe.Param())
	case "url":
		return domain.Invalid(field, "must be a valid URL")
	default:
		return domain.Invalid(field, "failed validation (%s)", fe.Tag())
	}
}
