package validator

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type ErrorResponse struct {
	FailedField string `json:"failedField"`
	Tag         string `json:"tag"`
	Value       string `json:"value"`
}

// Accepted user statuses. They contain spaces, so `oneof` cannot express them.
var userStatuses = map[string]bool{
	"Active":             true,
	"Inactive":           true,
	"To Be Approved":     true,
	"To Be OTP-Verified": true,
	"Deleted":            true,
}

var categoryNames = map[string]bool{
	"Biological": true,
	"Chemical":   true,
	"Reagent":    true,
	"General":    true,
}

var validate = validator.New()

func init() {
	validate.RegisterValidation("uuid_required", func(fl validator.FieldLevel) bool {
		if id, ok := fl.Field().Interface().(uuid.UUID); ok {
			return id != uuid.Nil
		}
		return false
	})
	validate.RegisterValidation("user_status", func(fl validator.FieldLevel) bool {
		return userStatuses[fl.Field().String()]
	})
	validate.RegisterValidation("category_name", func(fl validator.FieldLevel) bool {
		return categoryNames[fl.Field().String()]
	})
}

func ValidateStruct(data interface{}) []*ErrorResponse {
	var errors []*ErrorResponse
	err := validate.Struct(data)
	if err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return []*ErrorResponse{{FailedField: "", Tag: "invalid", Value: err.Error()}}
		}
		for _, err := range verrs {
			var element ErrorResponse
			element.FailedField = err.StructNamespace()
			element.Tag = err.Tag()
			element.Value = err.Param()
			errors = append(errors, &element)
		}
	}
	return errors
}

// Error is returned by Check and carries every failed field.
type Error struct {
	Fields []*ErrorResponse
}

func (e *Error) Error() string {
	first := e.Fields[0]
	return fmt.Sprintf("Validation failed: Field '%s' failed on tag '%s'", first.FailedField, first.Tag)
}

// Check validates data and returns a *Error when any field fails.
func Check(data interface{}) error {
	if errs := ValidateStruct(data); len(errs) > 0 {
		return &Error{Fields: errs}
	}
	return nil
}
