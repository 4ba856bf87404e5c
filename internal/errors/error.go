package errors

import (
	stderrors "errors"
	"fmt"
	"log/slog"
)

// Category represents the type of error.
type Category string

const (
	CategoryConfig  Category = "config"
	CategoryCatalog Category = "catalog"
	CategoryEvent   Category = "event"
	CategoryCLI     Category = "cli"
)

// PaintError is a structured error with a code, detail and suggestion.
type PaintError struct {
	// Code is a unique error identifier (e.g., "P100").
	Code string

	// Category is the error type.
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *PaintError) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *PaintError) Unwrap() error {
	return e.Wrapped
}

// WithSuggestion adds a fix suggestion to the error.
func (e *PaintError) WithSuggestion(s string) *PaintError {
	e.Suggestion = s
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *PaintError) WithDetail(d string) *PaintError {
	e.Detail = d
	return e
}

// Wrap wraps another error.
func (e *PaintError) Wrap(err error) *PaintError {
	e.Wrapped = err
	return e
}

// Is reports whether target is a PaintError with the same code.
func (e *PaintError) Is(target error) bool {
	t, ok := target.(*PaintError)
	return ok && t.Code != "" && t.Code == e.Code
}

// New creates a new PaintError from a registered error code.
func New(code string) *PaintError {
	template, ok := registry[code]
	if !ok {
		return &PaintError{
			Code:    code,
			Message: "Unknown error",
		}
	}

	return &PaintError{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
		Detail:   template.Detail,
	}
}

// Newf creates a new PaintError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *PaintError {
	return &PaintError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError returns the first PaintError in err's chain, or wraps err in a
// new PaintError with code.
func FromError(err error, code string) *PaintError {
	if err == nil {
		return nil
	}
	var pe *PaintError
	if stderrors.As(err, &pe) {
		return pe
	}
	return New(code).Wrap(err)
}

// LogValue implements slog.LogValuer so logged errors keep their code and
// cause as separate fields.
func (e *PaintError) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, 4)
	if e.Code != "" {
		attrs = append(attrs, slog.String("code", e.Code))
	}
	attrs = append(attrs, slog.String("msg", e.FormatCompact()))
	if e.Detail != "" {
		attrs = append(attrs, slog.String("detail", e.Detail))
	}
	if e.Wrapped != nil {
		attrs = append(attrs, slog.String("cause", e.Wrapped.Error()))
	}
	return slog.GroupValue(attrs...)
}

// HasCode reports whether err is or wraps a PaintError with the given code.
func HasCode(err error, code string) bool {
	for err != nil {
		if pe, ok := err.(*PaintError); ok && pe.Code == code {
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
