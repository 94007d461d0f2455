// Package validation checks records against their struct tags and reports
// the first failing field as a ValidationFailed fault.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/dukerupert/homedash/internal/fault"
	"github.com/dukerupert/homedash/internal/model"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]{2,49}$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("urgency", func(fl validator.FieldLevel) bool {
		return model.Urgency(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
	return v
}

// Struct validates rec's tagged fields.
func Struct(rec any) error {
	return convert(validate.Struct(rec), "")
}

// Username reports whether s is an acceptable new username: a letter
// followed by 2 to 49 letters, digits or underscores.
func Username(s string) error {
	return convert(validate.Var(s, "required,username"), "username")
}

func Email(s string) error {
	return convert(validate.Var(s, "required,email,max=254"), "email")
}

// Length checks that the trimmed s has between lo and hi characters.
func Length(field, s string, lo, hi int) error {
	n := len([]rune(strings.TrimSpace(s)))
	switch {
	case lo > 0 && n == 0:
		return fault.Validation(field, "is required")
	case n < lo:
		return fault.Validation(field, fmt.Sprintf("must be at least %d characters", lo))
	case n > hi:
		return fault.Validation(field, fmt.Sprintf("must be at most %d characters", hi))
	}
	return nil
}

// Range checks lo <= v <= hi.
func Range(field string, v, lo, hi int) error {
	if v < lo || v > hi {
		return fault.Validation(field, fmt.Sprintf("must be between %d and %d", lo, hi))
	}
	return nil
}

func convert(err error, field string) error {
	if err == nil {
		return nil
	}
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) || len(errs) == 0 {
		return fmt.Errorf("validate: %w", err)
	}
	fe := errs[0]
	name := fe.Field()
	if field != "" {
		name = field
	}
	de := fault.Validation(name, reason(fe))
	de.Err = err
	return de
}

func reason(fe validator.FieldError) string {
	isString := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "urgency":
		levels := make([]string, 0, 5)
		for _, u := range model.Urgencies() {
			levels = append(levels, string(u))
		}
		return "must be one of " + strings.Join(levels, ", ")
	case "username":
		return "must start with a letter and contain 3-50 letters, digits or underscores"
	case "min", "gte":
		if isString {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max", "lte":
		if isString {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	}
	return fmt.Sprintf("failed %q check", fe.Tag())
}
