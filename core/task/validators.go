package task

import (
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/kazi/core"
)

var (
	taskModeTag  = "taskmode"
	taskModeText = "invalid task mode"
)

func init() {
	_ = core.Validate.RegisterValidation(taskModeTag, taskModeValidation)
	core.RegisterCustomTranslation(taskModeTag, taskModeText)
}

// taskModeValidation checks that the provided mode is in the closed Mode set.
func taskModeValidation(fl validator.FieldLevel) bool {
	return Mode(fl.Field().Int()).Valid()
}
