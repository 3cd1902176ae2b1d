package shared

import (
	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateStruct runs tag-based validation and folds failures into the
// InvalidInput class.
func ValidateStruct(v any) error {
	if err := validate.Struct(v); err != nil {
		return Invalidf("%s", err.Error())
	}
	return nil
}
