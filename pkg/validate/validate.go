// Package validate holds the shared validator instance and maps its errors to API field errors.
package validate

import (
	"context"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	once     sync.Once
	instance *validator.Validate
)

// FieldError describes a single failed rule.
type FieldError struct {
	Code    string                 `json:"code,omitempty" example:"ERR_REQUIRED"`
	Field   string                 `json:"field,omitempty" example:"symbol"`
	Message string                 `json:"message,omitempty" example:"symbol is required"`
	Params  map[string]interface{} `json:"params,omitempty"`
}

// Instance returns the process-wide validator. Field names are taken from json tags.
func Instance() *validator.Validate {
	once.Do(func() {
		v := validator.New()
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("finite", isFinite)
		instance = v
	})
	return instance
}

// Struct validates s and returns validator.ValidationErrors on failure.
func Struct(ctx context.Context, s interface{}) error {
	return Instance().StructCtx(ctx, s)
}

// FieldErrors converts a validation error into field errors. Other errors become one ERR_UNKNOWN entry.
func FieldErrors(err error) []FieldError {
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		errs := make([]FieldError, 0, len(validationErrors))
		for _, e := range validationErrors {
			errs = append(errs, FieldError{
				Code:    "ERR_" + strings.ToUpper(e.Tag()),
				Field:   e.Field(),
				Message: message(e),
				Params:  params(e),
			})
		}
		return errs
	}
	return []FieldError{{
		Code:    "ERR_UNKNOWN",
		Message: err.Error(),
	}}
}

// isFinite accepts strings and floats that parse to a finite number.
func isFinite(fl validator.FieldLevel) bool {
	field := fl.Field()
	switch field.Kind() {
	case reflect.String:
		f, err := strconv.ParseFloat(strings.TrimSpace(field.String()), 64)
		if err != nil {
			return false
		}
		return !math.IsInf(f, 0) && !math.IsNaN(f)
	case reflect.Float32, reflect.Float64:
		f := field.Float()
		return !math.IsInf(f, 0) && !math.IsNaN(f)
	default:
		return false
	}
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "datetime":
		return fmt.Sprintf("%s must be a date in YYYY-MM-DD format", field)
	case "finite":
		return fmt.Sprintf("%s must be a finite number", field)
	case "date_order":
		return fmt.Sprintf("%s must not be after %s", field, fe.Param())
	case "min":
		if fe.Type().Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		if fe.Type().Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed validation: %s", field, fe.Tag())
	}
}

func params(fe validator.FieldError) map[string]interface{} {
	p := make(map[string]interface{})

	switch fe.Tag() {
	case "min", "gte":
		p["min"] = fe.Param()
	case "max", "lte":
		p["max"] = fe.Param()
	case "oneof":
		p["options"] = strings.Split(fe.Param(), " ")
	case "datetime":
		p["layout"] = fe.Param()
	case "date_order":
		p["other"] = fe.Param()
	}

	if len(p) == 0 {
		return nil
	}
	return p
}
