package errors

import (
	"fmt"
	"net/http"
)

// AppError define la estructura estándar para errores de la aplicación.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Detail     string `json:"detail,omitempty"`
	HTTPStatus int    `json:"-"` // No se serializa, usado para el header
	Err        error  `json:"-"` // Causa original, útil para logs, no se expone al cliente
}

// Error implementa la interfaz error.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap permite acceder al error original.
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail agrega detalle al error. Devuelve una COPIA para no mutar las
// variables globales base.
func (e *AppError) WithDetail(detail string) *AppError {
	newErr := *e
	newErr.Detail = detail
	return &newErr
}

// WithCause agrega el error original (causa). Devuelve una COPIA.
func (e *AppError) WithCause(err error) *AppError {
	newErr := *e
	newErr.Err = err
	return &newErr
}

// FromError convierte un error genérico en AppError; si no lo es, devuelve
// un error interno genérico conservando la causa.
func FromError(err error) *AppError {
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}
	return ErrInternal.WithCause(err)
}

// =================================================================================
// LISTA DE ERRORES PREDEFINIDOS
// =================================================================================

var (
	ErrBadRequest = &AppError{
		Code: "bad_request", Message: "Bad request", HTTPStatus: http.StatusBadRequest,
	}
	ErrInvalidJSON = &AppError{
		Code: "invalid_json", Message: "Invalid JSON body", HTTPStatus: http.StatusBadRequest,
	}

	// ErrUnauthorized es la respuesta uniforme del pipeline de autenticación.
	// No distingue qué paso de validación rechazó el token: ese detalle solo
	// se loguea, para no filtrar información al cliente.
	ErrUnauthorized = &AppError{
		Code: "unauthorized", Message: "Invalid or missing credentials", HTTPStatus: http.StatusUnauthorized,
	}

	ErrForbidden = &AppError{
		Code: "forbidden", Message: "Forbidden", HTTPStatus: http.StatusForbidden,
	}
	ErrNotFound = &AppError{
		Code: "not_found", Message: "Not found", HTTPStatus: http.StatusNotFound,
	}
	ErrMethodNotAllowed = &AppError{
		Code: "method_not_allowed", Message: "Method not allowed", HTTPStatus: http.StatusMethodNotAllowed,
	}
	ErrRateLimited = &AppError{
		Code: "rate_limited", Message: "Too many requests", HTTPStatus: http.StatusTooManyRequests,
	}
	ErrInternal = &AppError{
		Code: "internal_error", Message: "Internal server error", HTTPStatus: http.StatusInternalServerError,
	}
	ErrServiceUnavailable = &AppError{
		Code: "service_unavailable", Message: "Service unavailable", HTTPStatus: http.StatusServiceUnavailable,
	}
)
