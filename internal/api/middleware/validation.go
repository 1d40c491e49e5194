package middleware

import (
	stderrors "errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"app-transcript/internal/api/errors"
)

// Validator interface for domain validation
type Validator interface {
	Validate() error
}

// ValidateForm binds multipart or urlencoded form fields into req and
// validates both struct tags and domain rules
func ValidateForm(c *gin.Context, req interface{}) error {
	if err := c.ShouldBind(req); err != nil {
		return errors.NewValidationError("Validation failed", fieldErrors(err, "form", "invalid form data"))
	}

	if v, ok := req.(Validator); ok {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ValidateURI binds path parameters into req
func ValidateURI(c *gin.Context, req interface{}) error {
	if err := c.ShouldBindUri(req); err != nil {
		return errors.NewValidationError("Invalid path parameters", fieldErrors(err, "path", "invalid path parameters"))
	}
	return nil
}

func fieldErrors(err error, fallbackField, fallbackMsg string) map[string]string {
	details := make(map[string]string)

	var validationErrs validator.ValidationErrors
	if !stderrors.As(err, &validationErrs) {
		details[fallbackField] = fallbackMsg
		return details
	}

	for _, fieldError := range validationErrs {
		field := strings.ToLower(fieldError.Field())
		switch fieldError.Tag() {
		case "required":
			details[field] = "is required"
		case "max":
			details[field] = "is too long"
		case "oneof":
			details[field] = "must be one of " + strings.ReplaceAll(fieldError.Param(), " ", ", ")
		default:
			details[field] = "is invalid"
		}
	}
	return details
}
