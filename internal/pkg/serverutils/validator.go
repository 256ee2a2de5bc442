// FILE: internal/pkg/serverutils/validator.go
package serverutils

import (
	"errors"
	"fmt"
	"strings"

	"school-concierge-be/internal/entity"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateRequest runs struct-tag validation and converts failures into a
// ValidationError so the error handler maps them to 400.
func ValidateRequest(req interface{}) error {
	if err := validate.Struct(req); err != nil {
		var errs validator.ValidationErrors
		if errors.As(err, &errs) {
			fields := make([]string, len(errs))
			for i, fe := range errs {
				fields[i] = fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag())
			}
			return entity.NewValidationError("validation failed: " + strings.Join(fields, ", "))
		}
		return entity.NewValidationError(err.Error())
	}
	return nil
}
