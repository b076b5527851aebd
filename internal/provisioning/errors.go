package provisioning

import (
	"errors"

	"github.com/dropDatabas3/taskhub/internal/domain/repository"
)

// Kind clasifica los errores de los flujos. La traducción a HTTP la hace
// el caller (ver internal/http/errors).
type Kind int

const (
	KindNotFound Kind = iota + 1
	KindBadRequest
	KindUnauthorized
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindBadRequest:
		return "bad_request"
	case KindUnauthorized:
		return "unauthorized"
	}
	return "unknown"
}

// Error es un error de negocio de los flujos de aprovisionamiento.
// Message es apto para mostrar al cliente.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

var (
	ErrOwnerRoleNotFound  = &Error{Kind: KindNotFound, Message: "Owner role not found"}
	ErrEmailExists        = &Error{Kind: KindBadRequest, Message: "Email already exists"}
	ErrEmailRequired      = &Error{Kind: KindBadRequest, Message: "Email is required"}
	ErrMissingFields      = &Error{Kind: KindBadRequest, Message: "Name, email and password are required"}
	ErrInvalidCredentials = &Error{Kind: KindNotFound, Message: "Invalid email or password"}
	ErrAccountUserMissing = &Error{Kind: KindNotFound, Message: "User not found for the given account"}
	ErrPasswordMismatch   = &Error{Kind: KindUnauthorized, Message: "Invalid email or password"}
)

// KindOf retorna el Kind de err, o 0 si no es un *Error.
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return 0
}

func IsNotFound(err error) bool     { return KindOf(err) == KindNotFound }
func IsBadRequest(err error) bool   { return KindOf(err) == KindBadRequest }
func IsUnauthorized(err error) bool { return KindOf(err) == KindUnauthorized }

// IsConflict reconoce violaciones de unicidad del store, que los flujos
// devuelven sin envolver (carrera de aprovisionamiento concurrente).
func IsConflict(err error) bool { return repository.IsConflict(err) }
