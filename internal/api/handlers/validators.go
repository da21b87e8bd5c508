package handlers

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/divesh330/timevault/internal/models"
)

// RegisterValidators installs the custom validation tags used by request
// bindings on Gin's validator engine. Must run before the first request.
func RegisterValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("condition", func(fl validator.FieldLevel) bool {
			return models.Condition(fl.Field().String()).Valid()
		})
	}
}
