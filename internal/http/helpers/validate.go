package helpers

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/dropDatabas3/taskhub/internal/http/errors"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// Validator retorna la instancia compartida. Los nombres de campo en los
// mensajes salen del tag json.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// Validate aplica los tags `validate` de v. Devuelve false si ya respondió 400.
func Validate(w http.ResponseWriter, v any) bool {
	err := Validator().Struct(v)
	if err == nil {
		return true
	}
	errors.WriteError(w, errors.ErrValidation.WithDetail(describe(err)).WithCause(err))
	return false
}

func describe(err error) string {
	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return strings.Join(msgs, "; ")
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s: this field is required", fe.Field())
	case "email":
		return fmt.Sprintf("%s: must be a valid email", fe.Field())
	case "min":
		return fmt.Sprintf("%s: must be at least %s characters", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s: cannot be longer than %s characters", fe.Field(), fe.Param())
	}
	return fmt.Sprintf("%s: is not valid", fe.Field())
}
