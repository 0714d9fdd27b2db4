package authclient

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/jonathan/cv-builder/internal/types"
)

// ErrorType classifies an auth API failure.
type ErrorType string

// Error types.
const (
	TypeCSRF       ErrorType = "csrf"
	TypeValidation ErrorType = "validation"
	TypeAuth       ErrorType = "auth"
	TypePermission ErrorType = "permission"
	TypeNotFound   ErrorType = "not_found"
	TypeServer     ErrorType = "server"
	TypeConnection ErrorType = "connection"
	TypeUnknown    ErrorType = "unknown"
)

// StatusCSRFExpired is the status the auth API uses for a stale CSRF token.
const StatusCSRFExpired = 419

// User-facing messages.
const (
	MsgCSRF          = "Error de autenticación CSRF. Por favor, intenta de nuevo."
	MsgValidation    = "Error de validación en los datos."
	MsgValidationFmt = "Errores de validación: "
	MsgAuth          = "Credenciales incorrectas."
	MsgPermission    = "No tienes permisos para realizar esta acción."
	MsgNotFound      = "Recurso no encontrado."
	MsgServer        = "Error del servidor. Por favor, intenta más tarde."
	MsgConnection    = "Error de conexión. Verifica que el servidor esté funcionando."
	MsgUnknown       = "Error desconocido."
)

// FieldMessages are the validation messages of one field.
type FieldMessages struct {
	Field    string
	Messages []string
}

// APIError is a failed auth API call. Message is safe to show to the user.
type APIError struct {
	Status  int // 0 when no response was received
	Type    ErrorType
	Message string
	Fields  []FieldMessages // 422 only, in response order
	Cause   error
}

func (e *APIError) Error() string {
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Cause
}

// CSRFExpired reports whether the error is a stale CSRF token.
func (e *APIError) CSRFExpired() bool {
	return e.Status == StatusCSRFExpired
}

// Retryable reports whether asking the user to try again makes sense.
func (e *APIError) Retryable() bool {
	switch e.Type {
	case TypeConnection, TypeCSRF, TypeServer:
		return true
	}
	return false
}

func connectionError(cause error) *APIError {
	return &APIError{
		Type:    TypeConnection,
		Message: MsgConnection,
		Cause:   &types.CollaboratorUnavailableError{Service: "auth API", Cause: cause},
	}
}

// errorFromResponse maps a non-2xx response to an APIError.
func errorFromResponse(status int, body []byte) *APIError {
	e := &APIError{Status: status}
	switch status {
	case StatusCSRFExpired:
		e.Type, e.Message = TypeCSRF, MsgCSRF
	case http.StatusUnprocessableEntity:
		e.Type, e.Message = TypeValidation, MsgValidation
		e.Fields = validationFields(body)
		var all []string
		for _, f := range e.Fields {
			all = append(all, f.Messages...)
		}
		if len(all) > 0 {
			e.Message = MsgValidationFmt + strings.Join(all, ", ")
		}
	case http.StatusUnauthorized:
		e.Type, e.Message = TypeAuth, MsgAuth
	case http.StatusForbidden:
		e.Type, e.Message = TypePermission, MsgPermission
	case http.StatusNotFound:
		e.Type, e.Message = TypeNotFound, MsgNotFound
	case http.StatusInternalServerError:
		e.Type, e.Message = TypeServer, MsgServer
	default:
		e.Type, e.Message = TypeUnknown, MsgUnknown
		var payload struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(body, &payload) == nil && strings.TrimSpace(payload.Message) != "" {
			e.Message = payload.Message
		}
	}
	return e
}

// validationFields reads {"errors": {"field": ["msg", ...]}} keeping the field order of the body.
func validationFields(body []byte) []FieldMessages {
	var payload struct {
		Errors json.RawMessage `json:"errors"`
	}
	if json.Unmarshal(body, &payload) != nil || len(payload.Errors) == 0 {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(payload.Errors))
	if tok, err := dec.Token(); err != nil || tok != json.Delim('{') {
		return nil
	}

	var out []FieldMessages
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return out
		}
		field, _ := tok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return out
		}
		var msgs []string
		if json.Unmarshal(raw, &msgs) != nil {
			var single string
			if json.Unmarshal(raw, &single) != nil {
				continue
			}
			msgs = []string{single}
		}
		out = append(out, FieldMessages{Field: field, Messages: msgs})
	}
	return out
}
