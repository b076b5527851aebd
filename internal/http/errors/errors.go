// Package errors traduce errores de las capas internas a respuestas HTTP.
package errors

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/dropDatabas3/taskhub/internal/domain/repository"
	"github.com/dropDatabas3/taskhub/internal/provisioning"
)

type errorResponse struct {
	Code    string `json:"errorCode"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// FromError convierte err en *AppError. Los errores de negocio conservan su
// mensaje; cualquier otro termina en 500 genérico con la causa adjunta.
func FromError(err error) *AppError {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}

	var pe *provisioning.Error
	if stderrors.As(err, &pe) {
		switch pe.Kind {
		case provisioning.KindNotFound:
			return ErrNotFound.WithMessage(pe.Message).WithCause(err)
		case provisioning.KindBadRequest:
			return ErrBadRequest.WithMessage(pe.Message).WithCause(err)
		case provisioning.KindUnauthorized:
			return ErrInvalidCredentials.WithMessage(pe.Message).WithCause(err)
		}
	}

	switch {
	case repository.IsConflict(err):
		return ErrAlreadyExists.WithCause(err)
	case repository.IsNotFound(err):
		return ErrNotFound.WithCause(err)
	case stderrors.Is(err, repository.ErrInvalidInput):
		return ErrBadRequest.WithCause(err)
	case repository.IsNoDatabase(err):
		return ErrServiceUnavailable.WithCause(err)
	}
	return ErrInternalServerError.WithCause(err)
}

// WriteError escribe {errorCode, message, detail} con el status del error.
func WriteError(w http.ResponseWriter, err error) {
	appErr := FromError(err)
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(appErr.HTTPStatus)
	_ = json.NewEncoder(w).Encode(errorResponse{
		Code:    appErr.Code,
		Message: appErr.Message,
		Detail:  appErr.Detail,
	})
}
