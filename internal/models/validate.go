package models

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var personNameRegex = regexp.MustCompile(`^[a-zA-Zа-яА-Я]+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Latin or Cyrillic letters only
	err := v.RegisterValidation("personname", func(fl validator.FieldLevel) bool {
		return personNameRegex.MatchString(fl.Field().String())
	})
	if err != nil {
		panic(fmt.Sprintf("register personname validation: %v", err))
	}

	return v
}

// Validate checks a request struct against its `validate` tags.
func Validate(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return describe(verrs)
	}
	return err
}

// Validate checks only the fields that are set.
func (r *UpdateInfoRequest) Validate() error {
	if name, ok := r.Name.Get(); ok {
		if err := validate.Var(name, "required,personname"); err != nil {
			return fmt.Errorf("the name contains invalid characters")
		}
	}
	if gender, ok := r.Gender.Get(); ok && !gender.Valid() {
		return fmt.Errorf("the gender can only be 0, 1 or 2")
	}
	return nil
}

func describe(verrs validator.ValidationErrors) error {
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("the %s is required", field))
		case "min", "max":
			msgs = append(msgs, fmt.Sprintf("the %s can only be 0, 1 or 2", field))
		default:
			msgs = append(msgs, fmt.Sprintf("the %s contains invalid characters", field))
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}
