package validator

import (
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// ErrorResponse describe un campo que falló la validación y la regla incumplida.
type ErrorResponse struct {
	FailedField string
	Tag         string
	Value       string
}

var validate = validator.New()

func init() {
	// shopspring/decimal no expone campos; se valida por valor con reglas propias.
	validate.RegisterValidation("decimal_positive", func(fl validator.FieldLevel) bool {
		if d, ok := fl.Field().Interface().(decimal.Decimal); ok {
			return d.GreaterThan(decimal.Zero)
		}
		return false
	})
	validate.RegisterValidation("decimal_nonneg", func(fl validator.FieldLevel) bool {
		if d, ok := fl.Field().Interface().(decimal.Decimal); ok {
			return !d.LessThan(decimal.Zero)
		}
		return false
	})
}

// ValidateStruct valida un struct con sus tags `validate:` y devuelve los errores de campo.
func ValidateStruct(data interface{}) []*ErrorResponse {
	var errs []*ErrorResponse
	err := validate.Struct(data)
	if err != nil {
		for _, err := range err.(validator.ValidationErrors) {
			var element ErrorResponse
			element.FailedField = err.StructNamespace()
			element.Tag = err.Tag()
			element.Value = err.Param()
			errs = append(errs, &element)
		}
	}
	return errs
}
