package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const canonicalCV = `{
	"personal": {"fullName": "Ana García", "desiredTitle": "Desarrolladora Backend", "email": "ana@example.com"},
	"experience": [{"role": "Backend", "organization": "Acme", "startDate": "2020-01", "current": true,
		"description": "APIs en Go", "achievements": ["Latencia -40%"]}],
	"skills": {"technical": [{"name": "Go", "level": 5}]}
}`

const legacyCV = `{
	"nombre": "Ana García",
	"cargo_deseado": "Desarrolladora",
	"experiencia": "Cinco años construyendo APIs.",
	"habilidades": "Go, SQL"
}`

// resetFlags restores every flag to its default so commands can run repeatedly in one process.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// execute runs the root command with args and returns its combined output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("CV_OUTPUT_DIR", "")
	t.Setenv("CV_DEFAULT_TEMPLATE", "")
	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func writeCV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cv.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func pdfsIn(t *testing.T, dir string) []string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(dir, "*.pdf"))
	require.NoError(t, err)
	return matches
}

func TestRenderCommand_SingleTemplate(t *testing.T) {
	outDir := t.TempDir()
	out, err := execute(t, "render", "--input", writeCV(t, canonicalCV), "--template", "classic", "--out-dir", outDir)
	require.NoError(t, err, out)

	files := pdfsIn(t, outDir)
	require.Len(t, files, 1)
	assert.Contains(t, filepath.Base(files[0]), "_classic_")

	data, err := os.ReadFile(files[0])
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
	assert.Contains(t, out, "✓")
	assert.Contains(t, out, "classic")
}

func TestRenderCommand_All(t *testing.T) {
	outDir := t.TempDir()
	out, err := execute(t, "render", "-i", writeCV(t, legacyCV), "--all", "-o", outDir)
	require.NoError(t, err, out)

	files := pdfsIn(t, outDir)
	require.Len(t, files, 3)
	joined := strings.Join(files, " ")
	for _, id := range []string{"modern", "classic", "creative"} {
		assert.Contains(t, joined, "_"+id+"_")
	}
}

func TestRenderCommand_UnknownTemplateFallsBack(t *testing.T) {
	outDir := t.TempDir()
	out, err := execute(t, "render", "-i", writeCV(t, canonicalCV), "-t", "fancy", "-o", outDir, "--preview")
	require.NoError(t, err, out)

	files := pdfsIn(t, outDir)
	require.Len(t, files, 1)
	assert.Contains(t, filepath.Base(files[0]), "_modern_")
	assert.Contains(t, out, "Plantilla desconocida")
	assert.Contains(t, out, "VISTA PREVIA DEL DISEÑO")
}

func TestRenderCommand_InvalidDocument(t *testing.T) {
	outDir := t.TempDir()
	out, err := execute(t, "render", "-i", writeCV(t, `{"personal": {"fullName": "A"}}`), "-o", outDir)

	assert.ErrorIs(t, err, errInvalidCV)
	assert.Contains(t, out, "✗")
	assert.Empty(t, pdfsIn(t, outDir))
}

func TestRenderCommand_CorruptEmbeddedPhoto(t *testing.T) {
	outDir := t.TempDir()
	doc := `{"personal": {"fullName": "Ana García"}, "profilePhoto": {"data": "bm90IGEgcG5n", "mimeType": "image/png"}}`
	out, err := execute(t, "render", "-i", writeCV(t, doc), "-o", outDir)

	assert.ErrorIs(t, err, errInvalidCV)
	assert.Contains(t, out, "Hay campos con errores")
	assert.Contains(t, out, "profilePhoto")
	assert.Empty(t, pdfsIn(t, outDir))
}

func TestRenderCommand_MissingInputFlag(t *testing.T) {
	_, err := execute(t, "render")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `required flag(s) "input" not set`)
}

func TestRenderCommand_TemplateAndAllConflict(t *testing.T) {
	_, err := execute(t, "render", "-i", writeCV(t, canonicalCV), "-t", "modern", "--all")
	require.Error(t, err)
}

func TestRenderCommand_MissingFile(t *testing.T) {
	_, err := execute(t, "render", "-i", filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read input file")
}

func TestPreviewCommand(t *testing.T) {
	out, err := execute(t, "preview", "-i", writeCV(t, canonicalCV), "-t", "creative")
	require.NoError(t, err, out)
	assert.Contains(t, out, "VISTA PREVIA DEL DISEÑO")
	assert.Contains(t, out, "creative")
	assert.Contains(t, out, "Página 1")
}

func TestValidateCommand(t *testing.T) {
	out, err := execute(t, "validate", "-i", writeCV(t, canonicalCV))
	require.NoError(t, err, out)
	assert.Contains(t, out, "Documento válido: Ana García")

	out, err = execute(t, "validate", "-i", writeCV(t, `{"personal": 3}`))
	assert.ErrorIs(t, err, errInvalidCV)
	assert.Contains(t, out, "El documento no tiene el formato esperado")
}

func TestTemplatesCommand(t *testing.T) {
	out, err := execute(t, "templates")
	require.NoError(t, err)
	assert.Contains(t, out, "* modern")
	assert.Contains(t, out, "classic")
	assert.Contains(t, out, "creative")
	assert.Less(t, strings.Index(out, "modern"), strings.Index(out, "classic"))
}

func TestSuggestCommand_Offline(t *testing.T) {
	out, err := execute(t, "suggest", "--offline", "Desarrollador", "Web")
	require.NoError(t, err, out)
	assert.Contains(t, out, "SUGERENCIAS")
	assert.Contains(t, out, "Desarrollador Web")
	assert.Contains(t, out, "Fuente: local")
}

func TestSuggestCommand_Merge(t *testing.T) {
	out, err := execute(t, "suggest", "--offline", "--merge", "Liderazgo", "Astronauta lunar")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Fuente: generico")
	assert.Contains(t, out, "Habilidades: Liderazgo, ")
}

func TestSuggestCommand_TitleTooShort(t *testing.T) {
	out, err := execute(t, "suggest", "--offline", "Go")
	require.Error(t, err)
	assert.Contains(t, out, "al menos 3 caracteres")
}

func TestSuggestCommand_RemoteDownFallsBack(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer api.Close()
	t.Setenv("CV_SUGGESTIONS_URL", api.URL)

	out, err := execute(t, "suggest", "Desarrollador Web")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Fuente: local")
}

// authAPI answers the CSRF handshake and a fixed login/register response.
func authAPI(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/sanctum/csrf-cookie", func(w http.ResponseWriter, _ *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "XSRF-TOKEN", Value: "abc", Path: "/"})
		w.WriteHeader(http.StatusNoContent)
	})
	respond := func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "abc", r.Header.Get("X-XSRF-TOKEN"))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
	mux.HandleFunc("/login", respond)
	mux.HandleFunc("/register", respond)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestLoginCommand(t *testing.T) {
	api := authAPI(t, http.StatusOK, `{"user": {"id": 1, "name": "Ana", "email": "ana@example.com"}, "token": "opaque"}`)
	t.Setenv("CV_API_BASE_URL", api.URL)

	out, err := execute(t, "login", "--email", "ana@example.com", "--password", "secreto123")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Sesión iniciada como Ana")
}

func TestLoginCommand_BadCredentials(t *testing.T) {
	api := authAPI(t, http.StatusUnauthorized, `{"message": "Unauthenticated."}`)
	t.Setenv("CV_API_BASE_URL", api.URL)

	out, err := execute(t, "login", "--email", "ana@example.com", "--password", "mala")
	require.Error(t, err)
	assert.Contains(t, out, "Credenciales incorrectas.")
}

func TestLoginCommand_PasswordFromEnv(t *testing.T) {
	api := authAPI(t, http.StatusOK, `{"user": {"name": "Ana"}}`)
	t.Setenv("CV_API_BASE_URL", api.URL)
	t.Setenv(passwordEnv, "secreto123")

	out, err := execute(t, "login", "--email", "ana@example.com")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Ana")
}

func TestRegisterCommand(t *testing.T) {
	api := authAPI(t, http.StatusCreated, `{}`)
	t.Setenv("CV_API_BASE_URL", api.URL)

	out, err := execute(t, "register", "--name", "Ana García", "--email", "ana@example.com",
		"--password", "secreto123", "--cargo-deseado", "Backend")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Registro exitoso")
}

func TestRegisterCommand_ServerValidation(t *testing.T) {
	api := authAPI(t, http.StatusUnprocessableEntity,
		`{"message": "invalid", "errors": {"email": ["El email ya está registrado."]}}`)
	t.Setenv("CV_API_BASE_URL", api.URL)

	out, err := execute(t, "register", "--name", "Ana García", "--email", "ana@example.com", "--password", "secreto123")
	require.Error(t, err)
	assert.Contains(t, out, "email: El email ya está registrado.")
}

func TestRegisterCommand_LocalValidation(t *testing.T) {
	var hits int
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits++
		w.WriteHeader(http.StatusNoContent)
	}))
	defer api.Close()
	t.Setenv("CV_API_BASE_URL", api.URL)

	out, err := execute(t, "register", "--name", "Ana", "--email", "ana@example.com", "--password", "corta")
	require.Error(t, err)
	assert.Contains(t, out, "Hay campos con errores")
	assert.Zero(t, hits)
}

func TestResolveConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"template": "classic", "port": 9000, "log_level": "debug"}`), 0o644))
	t.Setenv("CV_DEFAULT_TEMPLATE", "creative")
	t.Setenv("PORT", "")

	cfg, err := resolveConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "creative", cfg.Template, "environment wins over the file")
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)

	_, err = resolveConfig(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}

func TestSetup_InvalidLogLevel(t *testing.T) {
	_, err := execute(t, "templates", "--log-level", "loud")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log_level")
}
