// Package validation wraps go-playground/validator and reports failures as
// domain validation errors keyed by JSON or form field name.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	domainerrors "github.com/memecataloger/memecataloger-web/internal/errors"
)

// MaxTagNameLength bounds tag names in runes.
const MaxTagNameLength = 64

// Validator wraps go-playground/validator with domain error conversion.
type Validator struct {
	v *validator.Validate
}

// New creates a validator with the "tagname" rule registered.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, key := range []string{"json", "form"} {
			name, _, _ := strings.Cut(fld.Tag.Get(key), ",")
			if name != "" && name != "-" {
				return name
			}
		}
		return fld.Name
	})

	// Registration only fails for an empty tag or nil func.
	_ = v.RegisterValidation("tagname", validTagName)

	return &Validator{v: v}
}

// Validate validates a struct and returns a domain error.
func (v *Validator) Validate(s any) error {
	if err := v.v.Struct(s); err != nil {
		return v.formatError(err)
	}
	return nil
}

// validTagName accepts 1 to MaxTagNameLength runes after trimming, without
// control characters.
func validTagName(fl validator.FieldLevel) bool {
	name := strings.TrimSpace(fl.Field().String())
	if name == "" || utf8.RuneCountInString(name) > MaxTagNameLength {
		return false
	}
	return strings.IndexFunc(name, unicode.IsControl) < 0
}

func (v *Validator) formatError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	fieldErrors := make(map[string]string, len(validationErrs))
	for _, e := range validationErrs {
		fieldErrors[e.Field()] = friendlyMessage(e)
	}
	return domainerrors.ValidationWithDetails("validation failed", fieldErrors)
}

func friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "uuid", "uuid4":
		return "must be a valid UUID"
	case "tagname":
		return fmt.Sprintf("must be 1-%d characters without control characters", MaxTagNameLength)
	case "max":
		return fmt.Sprintf("must not exceed %s items", e.Param())
	case "dive":
		return "contains an invalid entry"
	default:
		return "is invalid"
	}
}
