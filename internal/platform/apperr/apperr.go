// Package apperr define las categorías de error que cruzan capas.
// Los dominios envuelven estas categorías; httpx las traduce a status HTTP.
package apperr

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrUnauthorized    = errors.New("unauthorized")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrRateLimited     = errors.New("rate limited")
	ErrUpstream        = errors.New("upstream failure")
	ErrUpstreamTimeout = errors.New("upstream timeout")
)

// ValidationError lleva el set de campos inválidos.
type ValidationError struct {
	Msg    string
	Fields []string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Msg
	}
	return fmt.Sprintf("%s (%s)", e.Msg, strings.Join(e.Fields, ", "))
}

// Invalid construye un ValidationError.
func Invalid(msg string, fields ...string) error {
	return &ValidationError{Msg: msg, Fields: fields}
}

// IsValidation reporta si err (o algo que envuelve) es de validación.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// RateLimitError indica cuota agotada; RetryAfter es el tiempo hasta el reset de la ventana.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited, retry after %s", e.RetryAfter.Round(time.Second))
}

func (e *RateLimitError) Is(target error) bool { return target == ErrRateLimited }
