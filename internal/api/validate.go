package api

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/erazemk/lostfound/internal/model"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON name.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		return model.IsCategory(fl.Field().String())
	})

	// Item text limits live in the model.
	v.RegisterAlias("title_len", fmt.Sprintf("max=%d", model.MaxTitleLength))
	v.RegisterAlias("description_len", fmt.Sprintf("max=%d", model.MaxDescriptionLength))
	v.RegisterAlias("location_len", fmt.Sprintf("max=%d", model.MaxLocationLength))

	return v
}

// validationMessage renders validator errors as one human readable message.
func validationMessage(err error) string {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return "Invalid request"
	}

	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		switch e.ActualTag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", e.Field()))
		case "email":
			msgs = append(msgs, fmt.Sprintf("%s must be a valid email address", e.Field()))
		case "min":
			msgs = append(msgs, fmt.Sprintf("%s must be at least %s characters", e.Field(), e.Param()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s cannot exceed %s characters", e.Field(), e.Param()))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of: %s", e.Field(), strings.ReplaceAll(e.Param(), " ", ", ")))
		case "category":
			msgs = append(msgs, fmt.Sprintf("%s must be one of: %s", e.Field(), strings.Join(model.Categories, ", ")))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", e.Field()))
		}
	}
	return strings.Join(msgs, "; ")
}
