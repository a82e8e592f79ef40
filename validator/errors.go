package validator

import "errors"

// FieldError describes one failed rule
type FieldError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Value   any    `json:"value"`
	Message string `json:"message"`
}

// ValidationErrors is returned when at least one rule fails
type ValidationErrors struct {
	Fields  []FieldError
	message string
}

func (ve *ValidationErrors) Error() string {
	return ve.message
}

// HasFieldError reports whether err contains a failure for field
func HasFieldError(err error, field string) bool {
	var ve *ValidationErrors
	if !errors.As(err, &ve) {
		return false
	}
	for _, fe := range ve.Fields {
		if fe.Field == field {
			return true
		}
	}
	return false
}
