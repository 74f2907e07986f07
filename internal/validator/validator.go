// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("travel_status", validateTravelStatus)
		_ = v.RegisterValidation("user_type", validateUserType)
		_ = v.RegisterValidation("log_action", validateLogAction)
	}
}

// validateTravelStatus accepts only the two states the status endpoint
// supports. "rejected" and "requested" are not settable through the API.
func validateTravelStatus(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "approved", "cancelled":
		return true
	}
	return false
}

func validateUserType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "admin", "basic":
		return true
	}
	return false
}

func validateLogAction(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "create", "update", "delete", "status_change":
		return true
	}
	return false
}
