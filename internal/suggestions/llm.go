package suggestions

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jonathan/cv-builder/internal/llm"
	"github.com/jonathan/cv-builder/internal/types"
)

// maxLLMSkills caps the skills kept from a model draft.
const maxLLMSkills = 8

// LLMProvider drafts suggestions with a generative model. It backs the
// suggestion endpoint of the bundled server.
type LLMProvider struct {
	Client llm.Client
	Tier   llm.ModelTier
}

// NewLLMProvider creates a provider using the lite model tier.
func NewLLMProvider(client llm.Client) *LLMProvider {
	return &LLMProvider{Client: client, Tier: llm.TierLite}
}

// Suggest asks the model for skills and an experience paragraph.
func (p *LLMProvider) Suggest(ctx context.Context, title string) (*types.Suggestion, error) {
	prompt := llm.BuildExtractionPrompt(llm.JobSuggestionSchema(), title)
	raw, err := p.Client.GenerateJSON(ctx, prompt, p.Tier)
	if err != nil {
		return nil, &types.CollaboratorUnavailableError{Service: "llm", Cause: err}
	}

	var out types.Suggestion
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, &types.CollaboratorUnavailableError{Service: "llm", Cause: fmt.Errorf("failed to decode model output: %w", err)}
	}

	skills := out.Habilidades[:0]
	for _, s := range out.Habilidades {
		if s = strings.TrimSpace(s); s != "" {
			skills = append(skills, s)
		}
	}
	if len(skills) > maxLLMSkills {
		skills = skills[:maxLLMSkills]
	}
	out.Habilidades = skills
	out.Experiencia = strings.TrimSpace(out.Experiencia)
	out.Fuente = ""
	return &out, nil
}
