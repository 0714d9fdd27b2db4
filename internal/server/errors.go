package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/jonathan/cv-builder/internal/export"
	"github.com/jonathan/cv-builder/internal/schemas"
	"github.com/jonathan/cv-builder/internal/server/middleware"
	"github.com/jonathan/cv-builder/internal/suggestions"
	"github.com/jonathan/cv-builder/internal/types"
)

// Error codes returned in ErrorBody.Error.
const (
	CodeInvalidJSON     = "invalid_json"
	CodeInvalidDocument = "invalid_document"
	CodeValidation      = "validation"
	CodeTooLarge        = "content_too_large"
	CodeExportFailed    = "export_failed"
	CodeRateLimited     = "rate_limit_exceeded"
	CodeInternal        = "internal_error"
)

// Messages shown to API callers.
const (
	MsgInvalidJSON   = "El cuerpo de la petición no es JSON válido."
	MsgInvalidDoc    = "Los datos del CV no tienen el formato esperado."
	MsgValidation    = "Hay campos con errores. Revisa el formulario."
	MsgBodyTooLarge  = "La petición es demasiado grande."
	MsgRateLimited   = "Demasiadas solicitudes. Intenta de nuevo en unos segundos."
	MsgInternalError = "Error interno del servidor."
)

// FieldError is one failing field of a request.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ErrorBody is the JSON body of every error response.
type ErrorBody struct {
	Error     string       `json:"error"`
	Message   string       `json:"message"`
	Fields    []FieldError `json:"fields,omitempty"`
	RequestID string       `json:"request_id,omitempty"`
}

// errorBody maps err onto a status code and response body.
func errorBody(err error) (int, ErrorBody) {
	var (
		schemaErr *schemas.ValidationError
		typeErr   *types.ValidationError
		maxErr    *http.MaxBytesError
		exportErr *export.ExportError
	)
	switch {
	case errors.As(err, &maxErr):
		return http.StatusRequestEntityTooLarge, ErrorBody{Error: CodeTooLarge, Message: MsgBodyTooLarge}
	case errors.As(err, &schemaErr):
		body := ErrorBody{Error: CodeInvalidDocument, Message: MsgInvalidDoc}
		for _, f := range schemaErr.Errors {
			body.Fields = append(body.Fields, FieldError{Field: f.Field, Message: f.Message})
		}
		return http.StatusUnprocessableEntity, body
	case errors.As(err, &typeErr):
		body := ErrorBody{Error: CodeValidation, Message: MsgValidation}
		for _, f := range typeErr.Fields {
			body.Fields = append(body.Fields, FieldError{Field: f.Field, Message: f.Message})
		}
		return http.StatusUnprocessableEntity, body
	case errors.Is(err, suggestions.ErrTitleTooShort):
		return http.StatusUnprocessableEntity, ErrorBody{
			Error:   CodeValidation,
			Message: err.Error(),
			Fields:  []FieldError{{Field: "titulo", Message: err.Error()}},
		}
	case errors.As(err, &exportErr):
		status := http.StatusInternalServerError
		code := CodeExportFailed
		switch exportErr.Kind {
		case export.KindResource:
			status, code = http.StatusRequestEntityTooLarge, CodeTooLarge
		case export.KindLayout:
			status = http.StatusUnprocessableEntity
		}
		return status, ErrorBody{Error: code, Message: exportErr.UserMessage()}
	}
	return http.StatusInternalServerError, ErrorBody{Error: CodeInternal, Message: MsgInternalError}
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("Error encoding JSON response", zap.Error(err))
	}
}

// errorResponse writes err as an ErrorBody. Server errors are logged with their cause.
func (s *Server) errorResponse(w http.ResponseWriter, r *http.Request, err error) {
	status, body := errorBody(err)
	body.RequestID = middleware.GetRequestID(r.Context())
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			zap.String("request_id", body.RequestID),
			zap.String("path", r.URL.Path),
			zap.Error(err))
	}
	s.jsonResponse(w, status, body)
}

// invalidJSON writes a 400 for a body that could not be parsed.
func (s *Server) invalidJSON(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, http.StatusBadRequest, ErrorBody{
		Error:     CodeInvalidJSON,
		Message:   MsgInvalidJSON,
		RequestID: middleware.GetRequestID(r.Context()),
	})
}
