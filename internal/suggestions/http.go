package suggestions

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"resty.dev/v3"

	"github.com/jonathan/cv-builder/internal/types"
)

// SuggestionsPath is the suggestion endpoint on the CV API.
const SuggestionsPath = "/api/sugerencias-trabajo"

const serviceName = "suggestion service"

// HTTPProvider calls a remote CV API for suggestions.
type HTTPProvider struct {
	client *resty.Client
}

// NewHTTPProvider creates a provider for the API at baseURL. Retries are disabled;
// the Service falls back instead.
func NewHTTPProvider(baseURL string) *HTTPProvider {
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json").
		SetRetryCount(0)
	return &HTTPProvider{client: client}
}

// Close releases idle connections.
func (p *HTTPProvider) Close() error {
	return p.client.Close()
}

// Suggest posts {titulo} and reads {sugerencias:{habilidades, experiencia}}.
func (p *HTTPProvider) Suggest(ctx context.Context, title string) (*types.Suggestion, error) {
	resp, err := p.client.R().
		SetContext(ctx).
		SetBody(types.SuggestionRequest{Titulo: title}).
		Post(SuggestionsPath)
	if err != nil {
		return nil, &types.CollaboratorUnavailableError{Service: serviceName, Cause: err}
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, &types.CollaboratorUnavailableError{Service: serviceName, Status: resp.StatusCode()}
	}

	var body types.SuggestionResponse
	if err := json.Unmarshal(resp.Bytes(), &body); err != nil {
		return nil, &types.CollaboratorUnavailableError{
			Service: serviceName,
			Status:  resp.StatusCode(),
			Cause:   fmt.Errorf("failed to decode response: %w", err),
		}
	}
	if body.Sugerencias == nil {
		return nil, &types.CollaboratorUnavailableError{
			Service: serviceName,
			Status:  resp.StatusCode(),
			Cause:   fmt.Errorf("response has no sugerencias"),
		}
	}
	return body.Sugerencias, nil
}
