// Package schemas provides JSON Schema validation for CV documents before they are decoded.
package schemas

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// Names of the embedded schemas.
const (
	CVSchemaName         = "cv.schema.json"
	LegacyFormSchemaName = "legacy_form.schema.json"
)

var (
	//go:embed cv.schema.json
	cvSchema string

	//go:embed legacy_form.schema.json
	legacyFormSchema string
)

var (
	compileOnce sync.Once
	compiled    map[string]*gojsonschema.Schema
	compileErr  error
)

// ValidationError represents a schema validation error with field paths
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation error at a specific field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// SchemaLoadError represents errors loading or parsing the schema itself
type SchemaLoadError struct {
	Path    string
	Message string
	Cause   error
}

func (e *SchemaLoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load schema %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load schema %s: %s", e.Path, e.Message)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("validation failed:\n")
	for i, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.Field, err.Message))
	}
	return sb.String()
}

// Schema returns the raw text of an embedded schema, or "" if name is unknown.
func Schema(name string) string {
	switch name {
	case CVSchemaName:
		return cvSchema
	case LegacyFormSchemaName:
		return legacyFormSchema
	}
	return ""
}

func loadSchemas() (map[string]*gojsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiled = make(map[string]*gojsonschema.Schema, 2)
		for _, name := range []string{CVSchemaName, LegacyFormSchemaName} {
			s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(Schema(name)))
			if err != nil {
				compileErr = &SchemaLoadError{Path: name, Message: "invalid embedded schema", Cause: err}
				return
			}
			compiled[name] = s
		}
	})
	return compiled, compileErr
}

// ValidateCVDocument validates a CV document against the embedded schema matching its shape:
// documents carrying "personal" use the canonical schema, flat forms with "nombre" or
// "cargo_deseado" use the legacy form schema.
func ValidateCVDocument(data []byte) error {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return &ValidationError{Errors: []FieldError{{Field: "(root)", Message: "invalid JSON: " + err.Error()}}}
	}

	name := CVSchemaName
	if _, ok := probe["personal"]; !ok {
		_, nombre := probe["nombre"]
		_, cargo := probe["cargo_deseado"]
		if nombre || cargo {
			name = LegacyFormSchemaName
		}
	}

	all, err := loadSchemas()
	if err != nil {
		return err
	}
	result, err := all[name].Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return &SchemaLoadError{Path: name, Message: "document could not be loaded", Cause: err}
	}
	return toValidationError(result)
}

// ValidateCVFile reads a CV document from disk and validates it.
func ValidateCVFile(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve JSON path: %w", err)
	}
	data, err := os.ReadFile(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("JSON file not found: %s", absPath)
		}
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	return ValidateCVDocument(data)
}

// ValidateJSONString validates JSON string content against schema string content
func ValidateJSONString(schemaContent, jsonContent string) error {
	schemaLoader := gojsonschema.NewStringLoader(schemaContent)
	documentLoader := gojsonschema.NewStringLoader(jsonContent)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return &SchemaLoadError{
			Path:    "(string schema)",
			Message: "schema validation failed during load",
			Cause:   err,
		}
	}
	return toValidationError(result)
}

func toValidationError(result *gojsonschema.Result) error {
	if result.Valid() {
		return nil
	}

	validationErr := &ValidationError{
		Errors: make([]FieldError, 0, len(result.Errors())),
	}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		validationErr.Errors = append(validationErr.Errors, FieldError{
			Field:   field,
			Message: desc.Description(),
		})
	}
	return validationErr
}
