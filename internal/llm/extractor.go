// Package llm - extractor.go builds structured-output prompts.
package llm

import (
	"fmt"
	"strings"
)

// ExtractionSchema describes the JSON object the model must return.
type ExtractionSchema struct {
	Name        string
	Description string // preamble describing the task
	Fields      []SchemaField
	Rules       []string
}

// SchemaField defines a single field in the extraction output.
type SchemaField struct {
	Name        string // JSON field name
	Type        string // Type hint: "string", "[]string", "map[string]string"
	Description string // Description for the LLM
	Required    bool   // Whether this field is required
}

// BuildExtractionPrompt constructs the LLM prompt from schema and input text.
func BuildExtractionPrompt(schema ExtractionSchema, inputText string) string {
	var sb strings.Builder

	sb.WriteString(schema.Description)
	sb.WriteString("\n\n")

	sb.WriteString("Devuelve SOLO JSON válido con esta estructura exacta:\n{\n")
	for i, field := range schema.Fields {
		typeHint := field.Type
		if typeHint == "" {
			typeHint = "\"string\""
		}
		requiredHint := ""
		if field.Required {
			requiredHint = " (obligatorio)"
		}
		sb.WriteString(fmt.Sprintf("  \"%s\": %s%s", field.Name, typeHint, requiredHint))
		if field.Description != "" {
			sb.WriteString(fmt.Sprintf(" // %s", field.Description))
		}
		if i < len(schema.Fields)-1 {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("}\n\n")

	if len(schema.Rules) > 0 {
		sb.WriteString("IMPORTANTE:\n")
		for _, rule := range schema.Rules {
			sb.WriteString("- ")
			sb.WriteString(rule)
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	sb.WriteString("Entrada:\n\"\"\"\n")
	sb.WriteString(inputText)
	sb.WriteString("\n\"\"\"\n")

	return sb.String()
}

// JobSuggestionSchema asks for skills and an experience paragraph for a job title.
func JobSuggestionSchema() ExtractionSchema {
	return ExtractionSchema{
		Name: "JobSuggestion",
		Description: `Eres un asesor de carrera que ayuda a redactar currículums en español.
A partir del título del puesto, sugiere las habilidades más pedidas y un párrafo breve de experiencia.`,
		Fields: []SchemaField{
			{
				Name:        "habilidades",
				Type:        "[\"string\"]",
				Description: "Exactamente 8 habilidades cortas, técnicas o blandas",
				Required:    true,
			},
			{
				Name:        "experiencia",
				Type:        "\"string\"",
				Description: "Dos o tres frases en tercera persona, sin nombres de empresas",
				Required:    true,
			},
		},
		Rules: []string{
			"Responde en español.",
			"No inventes certificaciones ni cifras.",
			"Devuelve SOLO el objeto JSON, sin markdown ni explicaciones.",
		},
	}
}
