package util

import (
	"reflect"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
	"gopkg.in/guregu/null.v3"

	"runclub.dev/backend/internal/model"
	"runclub.dev/backend/internal/pkg/localday"
)

func NewValidator() *validator.Validate {
	validate := validator.New()
	validate.RegisterValidation("calendardate", calendarDate)
	validate.RegisterValidation("competitioncategory", competitionCategory)
	validate.RegisterCustomTypeFunc(nullIntValuer, null.Int{})
	validate.RegisterCustomTypeFunc(nullStringValuer, null.String{})
	validate.RegisterCustomTypeFunc(nullFloatValuer, null.Float{})

	return validate
}

// calendarDate accepts YYYY-MM-DD days that exist on the calendar.
func calendarDate(fl validator.FieldLevel) bool {
	return localday.Valid(fl.Field().String())
}

func competitionCategory(fl validator.FieldLevel) bool {
	return lo.Contains(model.Categories, fl.Field().String())
}

func nullIntValuer(field reflect.Value) any {
	if valuer, ok := field.Interface().(null.Int); ok {
		return valuer.Int64
	}

	return nil
}

func nullStringValuer(field reflect.Value) any {
	if valuer, ok := field.Interface().(null.String); ok {
		return valuer.String
	}

	return nil
}

func nullFloatValuer(field reflect.Value) any {
	if valuer, ok := field.Interface().(null.Float); ok {
		return valuer.Float64
	}

	return nil
}
