package utils

import (
	"hospital-service/internal/pkg/constvars"
	"reflect"
	"regexp"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate *validator.Validate

var timeOfDayPattern = regexp.MustCompile(constvars.RegexTimeOfDay)

func init() {
	validate = validator.New()
	validate.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})
	validate.RegisterValidation("money", validateMoney)
	validate.RegisterValidation("time_of_day", validateTimeOfDay)
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

// decimalValue lets tags on decimal.Decimal fields validate its string form.
func decimalValue(field reflect.Value) interface{} {
	if amount, ok := field.Interface().(decimal.Decimal); ok {
		return amount.String()
	}
	return nil
}

// validateMoney accepts positive amounts with at most two fraction digits.
func validateMoney(fl validator.FieldLevel) bool {
	amount, err := decimal.NewFromString(fl.Field().String())
	if err != nil {
		return false
	}
	return amount.GreaterThan(decimal.Zero) && amount.Equal(amount.Round(2))
}

func validateTimeOfDay(fl validator.FieldLevel) bool {
	return timeOfDayPattern.MatchString(fl.Field().String())
}
