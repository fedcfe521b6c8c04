package services

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// Letters (any script), spaces, hyphens, apostrophes. Blank input is
	// handled by omitempty/required tags, not by the pattern itself.
	personNamePattern = regexp.MustCompile(`^[\p{L}' -]+$`)
	phonePattern      = regexp.MustCompile(`^[0-9+\-() ]+$`)
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})

	// Pattern validators pass on empty input so optional fields stay
	// optional; presence is enforced separately via required.
	_ = v.RegisterValidation("person_name", func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		return value == "" || personNamePattern.MatchString(value)
	})
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		return value == "" || phonePattern.MatchString(value)
	})

	return v
}

// validateStruct runs tag-based validation and folds violations into a
// single ValidationError with one message per field.
func validateStruct(input interface{}) error {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}

	violations, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	fieldErrors := make(map[string]string, len(violations))
	for _, violation := range violations {
		fieldErrors[violation.Field()] = violationMessage(violation)
	}
	return &ValidationError{FieldErrors: fieldErrors}
}

func violationMessage(violation validator.FieldError) string {
	switch violation.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", violation.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", violation.Param())
	case "person_name":
		return "may only contain letters, spaces, hyphens, and apostrophes"
	case "phone":
		return "may only contain digits, spaces, and + - ( ) characters"
	default:
		return "is invalid"
	}
}
