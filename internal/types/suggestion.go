package types

// SuggestionSource tags where a suggestion came from.
type SuggestionSource string

// Suggestion sources, in fallback order.
const (
	SourceAI      SuggestionSource = "ia"
	SourceLocal   SuggestionSource = "local"
	SourceGeneric SuggestionSource = "generico"
)

// Suggestion is canned skill and experience text for a job title.
type Suggestion struct {
	Habilidades []string         `json:"habilidades"`
	Experiencia string           `json:"experiencia"`
	Fuente      SuggestionSource `json:"fuente,omitempty"`
}

// SuggestionRequest is the body of POST /api/sugerencias-trabajo.
type SuggestionRequest struct {
	Titulo string `json:"titulo" validate:"required,min=3,max=120"`
}

// SuggestionResponse is the reply of POST /api/sugerencias-trabajo.
type SuggestionResponse struct {
	Sugerencias *Suggestion `json:"sugerencias"`
}

// Validate validates the SuggestionRequest using the validator.
func (r *SuggestionRequest) Validate() error {
	return validateStruct(r)
}
