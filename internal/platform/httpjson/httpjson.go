// Package httpjson escribe el sobre {result, message, data} de todas las
// respuestas y decodifica y valida los cuerpos JSON de entrada.
package httpjson

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"petrack/internal/platform/logger"
)

type Envelope struct {
	Result  bool   `json:"result"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// ErrBadBody se devuelve cuando el body no es JSON válido o no pasa validación.
var ErrBadBody = errors.New("invalid request body")

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Los mensajes usan el nombre json del campo, no el del struct.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func OK(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, Envelope{Result: true, Message: message, Data: data})
}

func Fail(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, Envelope{Result: false, Message: message})
}

// ServerError loguea el error real y responde un 500 genérico.
func ServerError(w http.ResponseWriter, r *http.Request, err error) {
	logger.FromContext(r.Context(), nil).Error("request failed", logger.Fields{
		"method": r.Method,
		"path":   r.URL.Path,
		"err":    err,
	})
	Fail(w, http.StatusInternalServerError, "internal server error")
}

// Decode lee el body en dst y corre las reglas validate:"...".
// El error devuelto ya es apto para mostrar al cliente.
func Decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: malformed json", ErrBadBody)
	}
	return Validate(dst)
}

func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrBadBody, err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return fmt.Errorf("%w: %s", ErrBadBody, strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return fe.Field() + " must be a valid email"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param())
	default:
		return fe.Field() + " is invalid"
	}
}

// Message devuelve el texto del error sin el prefijo del sentinel de body.
func Message(err error) string {
	return strings.TrimPrefix(err.Error(), ErrBadBody.Error()+": ")
}
