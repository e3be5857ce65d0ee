package validation

import (
	"errors"
	"fmt"
	"strings"

	"portfolio-admin-backend/pkg/apperror"

	"github.com/go-playground/validator/v10"
)

// FieldLabels maps form names to the labels shown in the admin panel.
var FieldLabels = map[string]string{
	"skill":            "Skill",
	"image":            "Image",
	"type":             "Type",
	"title":            "Title",
	"description":      "Description",
	"video_url":        "Video URL",
	"github_url":       "GitHub URL",
	"tech_stack":       "Tech Stack",
	"responsibilities": "Responsibilities",
	"role":             "Role",
	"company_duration": "Company & Duration",
	"skills":           "Skills",
	"about_company":    "About Company",
	"email":            "Email",
	"password":         "Password",
	"otp":              "OTP",
}

// InvalidFields lists every failing field by form name, in declaration order.
// It returns nil when err is not a validation failure.
func InvalidFields(err error) []string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil
	}

	fields := make([]string, 0, len(validationErrors))
	seen := make(map[string]bool, len(validationErrors))
	for _, e := range validationErrors {
		name := e.Field()
		if seen[name] {
			continue
		}
		seen[name] = true
		fields = append(fields, name)
	}
	return fields
}

// ValidationError turns a failed Struct call into the 422 banner, one
// "Label: reason" entry per field. It returns nil for any other error.
func ValidationError(err error) *apperror.AppError {
	fields := InvalidFields(err)
	if len(fields) == 0 {
		return nil
	}
	return apperror.Validation(fields, FormatValidationErrors(err)...)
}

// Required reports fields left empty that are checked outside a struct.
func Required(fields ...string) *apperror.AppError {
	reasons := make([]string, 0, len(fields))
	for _, f := range fields {
		reasons = append(reasons, Label(f)+": Required")
	}
	return apperror.Validation(fields, reasons...)
}

// FormatValidationErrors converts validator.ValidationErrors to user-friendly messages
func FormatValidationErrors(err error) []string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return []string{err.Error()}
	}

	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		messages = append(messages, formatSingleError(e))
	}
	return messages
}

func formatSingleError(e validator.FieldError) string {
	label := Label(e.Field())

	switch e.Tag() {
	case "required", "not_blank":
		return fmt.Sprintf("%s: Required", label)
	case "oneof":
		return fmt.Sprintf("%s: Must be one of: %s", label, strings.Join(strings.Fields(e.Param()), ", "))
	case "url":
		return fmt.Sprintf("%s: Invalid URL", label)
	case "email":
		return fmt.Sprintf("%s: Invalid email format", label)
	default:
		return fmt.Sprintf("%s: Invalid value", label)
	}
}

func Label(field string) string {
	if label, ok := FieldLabels[field]; ok {
		return label
	}
	return field
}
