package validator

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var phones = NewPhoneValidator()

// RegisterBindingValidators adds the custom struct tags used by request DTOs:
//
//	thaiphone  - empty or a valid Thai phone number
//	roomstatus - empty or one of available, occupied, maintenance, inactive
func RegisterBindingValidators(v *validator.Validate) error {
	if err := v.RegisterValidation("thaiphone", thaiPhone); err != nil {
		return fmt.Errorf("register thaiphone: %w", err)
	}
	if err := v.RegisterValidation("roomstatus", roomStatus); err != nil {
		return fmt.Errorf("register roomstatus: %w", err)
	}
	return nil
}

var thaiPhone validator.Func = func(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	return phones.IsValid(value)
}

var roomStatus validator.Func = func(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "", "available", "occupied", "maintenance", "inactive":
		return true
	}
	return false
}
