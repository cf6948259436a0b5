// Package forms validates dashboard form submissions before anything is sent
// upstream and turns failures into messages a user can act on.
package forms

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldError is one failed rule on one field
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// ValidationErrors is returned when a form fails validation. No upstream call
// is made for a form that produced it.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return "validation failed"
	}
	msgs := make([]string, len(v))
	for i, fe := range v {
		msgs[i] = fe.Message
	}
	return strings.Join(msgs, "; ")
}

// Summary returns the first message, which is what a toast shows
func (v ValidationErrors) Summary() string {
	if len(v) == 0 {
		return ""
	}
	return v[0].Message
}

// Fields maps field name to its first message
func (v ValidationErrors) Fields() map[string]string {
	out := make(map[string]string, len(v))
	for _, fe := range v {
		if _, ok := out[fe.Field]; !ok {
			out[fe.Field] = fe.Message
		}
	}
	return out
}

// IsValidationError reports whether err is or wraps ValidationErrors
func IsValidationError(err error) bool {
	var v ValidationErrors
	return errors.As(err, &v)
}

// Validator wraps a validator.Validate that reports fields by their json name
type Validator struct {
	validate *validator.Validate
}

// customRules are the tags the dashboard adds to validator's built-ins
var customRules = map[string]validator.Func{
	"phone": validatePhone,
}

// NewValidator creates a validator with the dashboard's custom rules. It
// panics when a rule cannot be registered.
func NewValidator() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(jsonFieldName)
	if err := registerRules(v, customRules); err != nil {
		panic(err)
	}
	return &Validator{validate: v}
}

func registerRules(v *validator.Validate, rules map[string]validator.Func) error {
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("register %q validation: %w", tag, err)
		}
	}
	return nil
}

var defaultValidator = NewValidator()

// Validate checks a struct with the shared validator
func Validate(s interface{}) error {
	return defaultValidator.Struct(s)
}

// Struct validates s and converts failures into ValidationErrors
func (v *Validator) Struct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	return fromValidator(verrs)
}

// Engine exposes the underlying validator for callers that register rules
func (v *Validator) Engine() *validator.Validate {
	return v.validate
}

func fromValidator(verrs validator.ValidationErrors) ValidationErrors {
	out := make(ValidationErrors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{
			Field:   fe.Field(),
			Rule:    fe.Tag(),
			Message: messageFor(fe),
		})
	}
	return out
}

func messageFor(fe validator.FieldError) string {
	label := humanize(fe.Field())
	switch fe.Tag() {
	case "required":
		return label + " is required"
	case "email":
		return "Please enter a valid email address"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters long", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", label, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters long", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", label, fe.Param())
	case "len":
		return fmt.Sprintf("%s must be %s characters", label, fe.Param())
	case "eqfield":
		return "Passwords do not match"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", label, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "numeric", "number":
		return label + " must be a number"
	case "phone":
		return "Please enter a valid phone number"
	case "url":
		return label + " must be a valid URL"
	case "datetime":
		return fmt.Sprintf("%s must be a date like %s", label, fe.Param())
	default:
		return label + " is invalid"
	}
}

// jsonFieldName reports struct fields by their json or form key
func jsonFieldName(f reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return f.Name
}

// humanize turns "confirmPassword" or "phone_number" into "Confirm password"
func humanize(field string) string {
	if field == "" {
		return "Value"
	}
	var b strings.Builder
	for i, r := range field {
		switch {
		case r == '_' || r == '-':
			b.WriteByte(' ')
		case i > 0 && r >= 'A' && r <= 'Z':
			b.WriteByte(' ')
			b.WriteRune(r + ('a' - 'A'))
		default:
			b.WriteRune(r)
		}
	}
	out := b.String()
	return strings.ToUpper(out[:1]) + out[1:]
}

// validatePhone accepts digits with an optional leading + and common separators
func validatePhone(fl validator.FieldLevel) bool {
	s := strings.TrimSpace(fl.Field().String())
	if s == "" {
		return true
	}
	digits := 0
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '+' && i == 0:
		case r == ' ' || r == '-' || r == '(' || r == ')':
		default:
			return false
		}
	}
	return digits >= 7 && digits <= 15
}
