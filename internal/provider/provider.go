// Package provider abstracts the language-model backends behind a common
// generate/stream contract with a closed error taxonomy.
package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// #region interface
// Provider is the model backend contract. Both calls must return a
// classifiable error on failure; silent empty success is not allowed.
type Provider interface {
	Generate(ctx context.Context, prompt, model string) (string, error)
	GenerateStream(ctx context.Context, prompt, model string, onDelta func(string)) (string, error)
}

// #endregion interface

// #region error-codes
// ErrorCode is the closed classification of provider failures.
type ErrorCode string

const (
	CodeMissingAPIKey ErrorCode = "missing_api_key"
	CodeRequestFailed ErrorCode = "request_failed"
	CodeEmptyResponse ErrorCode = "empty_response"
	CodeUnknown       ErrorCode = "unknown_provider_error"
)

// Error is a classified provider failure.
type Error struct {
	Code    ErrorCode
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("provider error [%s]: %s", e.Code, e.Message)
}

// NewError builds a classified provider error.
func NewError(code ErrorCode, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// #endregion error-codes

// #region classify
// Classify resolves an error to one of the four codes: the structured code
// field when present, else message pattern matching.
func Classify(err error) ErrorCode {
	if err == nil {
		return CodeUnknown
	}
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Code
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "api key") || strings.Contains(msg, "api_key") ||
		strings.Contains(msg, "unauthorized") || strings.Contains(msg, "401"):
		return CodeMissingAPIKey
	case strings.Contains(msg, "empty response") || strings.Contains(msg, "no choices"):
		return CodeEmptyResponse
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline") ||
		strings.Contains(msg, "connection") || strings.Contains(msg, "request") ||
		strings.Contains(msg, "status") || strings.Contains(msg, "refused"):
		return CodeRequestFailed
	}
	return CodeUnknown
}

// #endregion classify
