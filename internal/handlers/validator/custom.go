package validator

import (
	"reflect"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

func questionIDValidator(fl validator.FieldLevel) bool {
	val, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	id, err := strconv.ParseInt(val, 10, 64)
	return err == nil && id > 0
}

func ratingValidator(min, max int) func(fl validator.FieldLevel) bool {
	return func(fl validator.FieldLevel) bool {
		switch fl.Field().Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			r := fl.Field().Int()
			return r >= int64(min) && r <= int64(max)
		default:
			return false
		}
	}
}

func uuidValidator(fl validator.FieldLevel) bool {
	val, ok := fl.Field().Interface().(uuid.UUID)
	if !ok {
		return false
	}
	return val != uuid.UUID{}
}
