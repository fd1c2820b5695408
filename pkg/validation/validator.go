package validation

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
)

var (
	validate *validator.Validate

	// MaxNameLength bounds element identifiers.
	MaxNameLength = 128

	namePattern = regexp.MustCompile(`^[A-Za-z0-9_.:\-]+$`)
)

// ElementTypes lists the accepted values of an element's type column.
var ElementTypes = []string{"customer", "line", "terminal", "transformer"}

func init() {
	validate = validator.New()
	if err := validate.RegisterValidation("elementname", func(fl validator.FieldLevel) bool {
		return namePattern.MatchString(fl.Field().String())
	}); err != nil {
		panic(err)
	}
}

// ElementRecord is one row of an element table before geometry parsing.
type ElementRecord struct {
	Name     string `validate:"required,max=128,elementname"`
	Type     string `validate:"required,oneof=customer line terminal transformer"`
	WKT      string `validate:"required"`
	Terminal string `validate:"required_if=Type customer,omitempty,elementname"`
	Capacity int    `validate:"gte=0"`
}

// ValidateElementRecord checks a single element row.
func ValidateElementRecord(rec *ElementRecord) error {
	if rec == nil {
		return errors.New("element record cannot be nil")
	}
	if err := validate.Struct(rec); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// formatValidationError reports the first failing field in plain words.
func formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	for _, e := range validationErrs {
		field := e.Field()
		switch e.Tag() {
		case "required":
			return fmt.Errorf("%s: field is required", field)
		case "required_if":
			return fmt.Errorf("%s: field is required when %s", field, e.Param())
		case "max":
			return fmt.Errorf("%s: must not exceed %s characters", field, e.Param())
		case "oneof":
			return fmt.Errorf("%s: %q must be one of [%s]", field, e.Value(), e.Param())
		case "elementname":
			return fmt.Errorf("%s: %q contains invalid characters", field, e.Value())
		case "gte":
			return fmt.Errorf("%s: must be at least %s", field, e.Param())
		default:
			return fmt.Errorf("%s: validation failed (%s)", field, e.Tag())
		}
	}
	return err
}
