package suggestions

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/cv-builder/internal/llm"
	"github.com/jonathan/cv-builder/internal/types"
)

type stubProvider struct {
	out   *types.Suggestion
	err   error
	block bool
	calls int
}

func (s *stubProvider) Suggest(ctx context.Context, _ string) (*types.Suggestion, error) {
	s.calls++
	if s.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return s.out, s.err
}

type stubLLM struct {
	raw    string
	err    error
	prompt string
}

func (s *stubLLM) GenerateContent(context.Context, string, llm.ModelTier) (string, error) {
	return s.raw, s.err
}

func (s *stubLLM) GenerateJSON(_ context.Context, prompt string, _ llm.ModelTier) (string, error) {
	s.prompt = prompt
	return s.raw, s.err
}

func (s *stubLLM) Close() error { return nil }

func TestNormalize(t *testing.T) {
	assert.Equal(t, "disenador grafico", Normalize("  Diseñador Gráfico! "))
	assert.Equal(t, "c developer", Normalize("C++ Developer"))
	assert.Equal(t, "", Normalize("¡¿?!"))
}

func TestLookupLocal(t *testing.T) {
	tests := []struct {
		title     string
		wantSkill string
		ok        bool
	}{
		{"Desarrollador Frontend", "TypeScript", true},
		{"Desarrolladora web", "HTML/CSS", true},
		{"Diseñadora UX", "User Research", true},
		{"Diseñador gráfico", "Illustrator", true},
		{"Community Manager", "Hootsuite", true},
		{"Enfermero de guardia", "Farmacología", true},
		{"Dev", "Kubernetes", true},
		{"Auxiliar contable", "", false},
		{"Jefe de cocina", "", false},
		{"Front", "React", true},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			got, ok := LookupLocal(tt.title)
			require.Equal(t, tt.ok, ok)
			if ok {
				assert.Contains(t, got.Habilidades, tt.wantSkill)
				assert.Equal(t, types.SourceLocal, got.Fuente)
			}
		})
	}
}

func TestLookupLocal_ReturnsCopies(t *testing.T) {
	got, ok := LookupLocal("backend")
	require.True(t, ok)
	got.Habilidades[0] = "changed"

	again, _ := LookupLocal("backend")
	assert.Equal(t, "Node.js", again.Habilidades[0])
}

func TestGeneric(t *testing.T) {
	got := Generic(" Astronauta ")
	assert.Equal(t, types.SourceGeneric, got.Fuente)
	assert.Len(t, got.Habilidades, 8)
	assert.Contains(t, got.Experiencia, "en el área de Astronauta.")
}

func TestService_TitleTooShort(t *testing.T) {
	remote := &stubProvider{}
	_, err := NewService(remote, nil).Suggest(context.Background(), " ab ")
	assert.ErrorIs(t, err, ErrTitleTooShort)
	assert.Equal(t, "El título del trabajo debe tener al menos 3 caracteres", err.Error())
	assert.Zero(t, remote.calls)
}

func TestService_RemoteSuccess(t *testing.T) {
	remote := &stubProvider{out: &types.Suggestion{Habilidades: []string{"Go"}, Experiencia: "APIs", Fuente: "otro"}}
	got, err := NewService(remote, nil).Suggest(context.Background(), "Backend")
	require.NoError(t, err)
	assert.Equal(t, types.Suggestion{Habilidades: []string{"Go"}, Experiencia: "APIs", Fuente: types.SourceAI}, got)
}

func TestService_FallbackLadder(t *testing.T) {
	tests := []struct {
		name   string
		remote Provider
		title  string
		want   types.SuggestionSource
	}{
		{"remote error", &stubProvider{err: errors.New("boom")}, "Desarrollador Frontend", types.SourceLocal},
		{"remote empty", &stubProvider{out: &types.Suggestion{}}, "Desarrollador Frontend", types.SourceLocal},
		{"remote nil", &stubProvider{}, "Gerente", types.SourceLocal},
		{"no remote", nil, "Astronauta", types.SourceGeneric},
		{"remote error no match", &stubProvider{err: errors.New("boom")}, "Astronauta", types.SourceGeneric},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewService(tt.remote, nil).Suggest(context.Background(), tt.title)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Fuente)
			assert.NotEmpty(t, got.Habilidades)
		})
	}
}

func TestService_RemoteTimeout(t *testing.T) {
	svc := NewService(&stubProvider{block: true}, nil)
	svc.Timeout = 20 * time.Millisecond

	got, err := svc.Suggest(context.Background(), "Desarrollador Frontend")
	require.NoError(t, err)
	assert.Equal(t, types.SourceLocal, got.Fuente)
	assert.Contains(t, got.Habilidades, "React")
	assert.Contains(t, got.Habilidades, "TypeScript")
}

func TestHTTPProvider(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, SuggestionsPath, r.URL.Path)

		var req types.SuggestionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		w.Header().Set("Content-Type", "application/json")
		switch req.Titulo {
		case "Backend":
			_, _ = w.Write([]byte(`{"sugerencias":{"habilidades":["Go","SQL"],"experiencia":"APIs"}}`))
		case "Vacío":
			_, _ = w.Write([]byte(`{}`))
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	p := NewHTTPProvider(srv.URL + "/")
	defer p.Close()

	got, err := p.Suggest(context.Background(), "Backend")
	require.NoError(t, err)
	assert.Equal(t, []string{"Go", "SQL"}, got.Habilidades)
	assert.Equal(t, "APIs", got.Experiencia)

	var cu *types.CollaboratorUnavailableError
	_, err = p.Suggest(context.Background(), "Vacío")
	require.ErrorAs(t, err, &cu)

	_, err = p.Suggest(context.Background(), "Otro")
	require.ErrorAs(t, err, &cu)
	assert.Equal(t, http.StatusInternalServerError, cu.Status)
}

func TestHTTPProvider_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	got, err := NewService(NewHTTPProvider(url), nil).Suggest(context.Background(), "Desarrollador Frontend")
	require.NoError(t, err)
	assert.Equal(t, types.SourceLocal, got.Fuente)
}

func TestLLMProvider(t *testing.T) {
	client := &stubLLM{raw: `{"habilidades":[" Go ","","SQL","a","b","c","d","e","f","g"],"experiencia":" APIs ","fuente":"x"}`}
	got, err := NewLLMProvider(client).Suggest(context.Background(), "Backend")
	require.NoError(t, err)

	assert.Len(t, got.Habilidades, maxLLMSkills)
	assert.Equal(t, "Go", got.Habilidades[0])
	assert.Equal(t, "APIs", got.Experiencia)
	assert.Empty(t, got.Fuente)
	assert.Contains(t, client.prompt, "Backend")

	_, err = NewLLMProvider(&stubLLM{raw: "no json"}).Suggest(context.Background(), "Backend")
	var cu *types.CollaboratorUnavailableError
	assert.ErrorAs(t, err, &cu)

	_, err = NewLLMProvider(&stubLLM{err: errors.New("quota")}).Suggest(context.Background(), "Backend")
	assert.ErrorAs(t, err, &cu)
}

func TestFormatAndCombineSkills(t *testing.T) {
	assert.Equal(t, "Go, SQL", FormatSkills([]string{"Go", "SQL"}))
	assert.Equal(t, "", FormatSkills(nil))

	assert.Equal(t, "go, Docker, SQL", CombineSkills(" go , ,Docker", []string{"Go", "SQL", "docker", "sql"}))
	assert.Equal(t, "React", CombineSkills("", []string{"React"}))
}

func TestKeysOrder(t *testing.T) {
	keys := Keys()
	assert.Len(t, keys, 15)
	assert.Equal(t, "frontend", keys[0])
	assert.Less(t, indexOf(keys, "frontend"), indexOf(keys, "desarrollador"))
	assert.Less(t, indexOf(keys, "ux"), indexOf(keys, "disenador"))
}

func indexOf(items []string, s string) int {
	for i, it := range items {
		if it == s {
			return i
		}
	}
	return -1
}
