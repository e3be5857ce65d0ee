package apperror

import (
	"errors"
	"net/http"
	"strings"
)

// Kind classifies an error for the client. The banner text comes from Message,
// the HTTP status from Code.
type Kind string

const (
	KindConfigMissing      Kind = "config_missing"
	KindConnectionFailed   Kind = "connection_failed"
	KindInvalidCredentials Kind = "invalid_credentials"
	KindValidation         Kind = "validation_error"
	KindUploadFailed       Kind = "upload_failed"
	KindOtpMissing         Kind = "otp_missing"
	KindOtpExpired         Kind = "otp_expired"
	KindOtpMismatch        Kind = "otp_mismatch"
	KindChallengeNotFound  Kind = "challenge_not_found"
	KindTooManyAttempts    Kind = "too_many_attempts"
	KindUnauthorized       Kind = "unauthorized"
	KindBadRequest         Kind = "bad_request"
	KindNotFound           Kind = "not_found"
	KindInternal           Kind = "internal"
)

type AppError struct {
	Code    int      `json:"code"`
	Kind    Kind     `json:"kind"`
	Message string   `json:"message"`
	Fields  []string `json:"fields,omitempty"`
	Err     error    `json:"-"`
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(code int, kind Kind, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// Is reports whether err (or anything it wraps) is an AppError of the given kind.
func Is(err error, kind Kind) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind == kind
	}
	return false
}

// ConfigMissing lists the configuration keys that are absent.
func ConfigMissing(keys []string) *AppError {
	e := New(http.StatusServiceUnavailable, KindConfigMissing,
		"Supabase configuration missing. Check your .env file ("+strings.Join(keys, ", ")+").", nil)
	e.Fields = keys
	return e
}

func ConnectionFailed(err error) *AppError {
	msg := "Database connection failed"
	if err != nil {
		msg += ": " + err.Error()
	}
	return New(http.StatusBadGateway, KindConnectionFailed, msg, err)
}

func InvalidCredentials() *AppError {
	return New(http.StatusUnauthorized, KindInvalidCredentials, "Invalid email or password", nil)
}

// Validation reports every missing or invalid field at once. When reasons
// are given the message lists them instead of the bare field names.
func Validation(fields []string, reasons ...string) *AppError {
	detail := fields
	if len(reasons) > 0 {
		detail = reasons
	}
	e := New(http.StatusUnprocessableEntity, KindValidation,
		"Please correct the following fields: "+strings.Join(detail, "; "), nil)
	e.Fields = fields
	return e
}

func UploadFailed(err error) *AppError {
	msg := "Image upload failed"
	if err != nil {
		msg += ": " + err.Error()
	}
	return New(http.StatusBadGateway, KindUploadFailed, msg, err)
}

func OtpMissing() *AppError {
	return New(http.StatusBadRequest, KindOtpMissing, "Please enter the OTP code", nil)
}

func OtpExpired() *AppError {
	return New(http.StatusGone, KindOtpExpired, "OTP has expired. Please request a new one.", nil)
}

func OtpMismatch() *AppError {
	return New(http.StatusUnauthorized, KindOtpMismatch, "Invalid OTP code. Please try again.", nil)
}

func ChallengeNotFound() *AppError {
	return New(http.StatusNotFound, KindChallengeNotFound, "Login session not found. Please log in again.", nil)
}

func TooManyAttempts(message string) *AppError {
	return New(http.StatusTooManyRequests, KindTooManyAttempts, message, nil)
}

func BadRequest(message string) *AppError {
	return New(http.StatusBadRequest, KindBadRequest, message, nil)
}

func Unauthorized(message string) *AppError {
	return New(http.StatusUnauthorized, KindUnauthorized, message, nil)
}

func NotFound(message string) *AppError {
	return New(http.StatusNotFound, KindNotFound, message, nil)
}

// Internal keeps the underlying message so the banner can show it.
func Internal(err error) *AppError {
	msg := "Internal Server Error"
	if err != nil {
		msg = err.Error()
	}
	return New(http.StatusInternalServerError, KindInternal, msg, err)
}
