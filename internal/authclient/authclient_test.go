package authclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/cv-builder/internal/types"
)

// fakeAPI mimics the CSRF cookie handshake of the auth API.
type fakeAPI struct {
	csrfCalls  atomic.Int32
	loginCalls atomic.Int32

	// expired is the number of leading POSTs answered with 419.
	expired int32
	status  int
	body    string
}

func (f *fakeAPI) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(CSRFCookiePath, func(w http.ResponseWriter, r *http.Request) {
		n := f.csrfCalls.Add(1)
		http.SetCookie(w, &http.Cookie{Name: xsrfCookie, Value: fmt.Sprintf("tok%%3D%d", n), Path: "/"})
		w.WriteHeader(http.StatusNoContent)
	})
	post := func(w http.ResponseWriter, r *http.Request) {
		n := f.loginCalls.Add(1)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "XMLHttpRequest", r.Header.Get("X-Requested-With"))
		assert.Equal(t, fmt.Sprintf("tok=%d", f.csrfCalls.Load()), r.Header.Get(xsrfHeader))

		w.Header().Set("Content-Type", "application/json")
		if n <= f.expired {
			w.WriteHeader(StatusCSRFExpired)
			_, _ = w.Write([]byte(`{"message":"CSRF token mismatch."}`))
			return
		}
		if f.status != 0 {
			w.WriteHeader(f.status)
		}
		_, _ = w.Write([]byte(f.body))
	}
	mux.HandleFunc(LoginPath, post)
	mux.HandleFunc(RegisterPath, post)
	return mux
}

func newTestClient(t *testing.T, api *fakeAPI) *Client {
	t.Helper()
	srv := httptest.NewServer(api.handler(t))
	t.Cleanup(srv.Close)

	c, err := New(srv.URL, Options{Timeout: 2 * time.Second})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)
	return tok
}

func TestNew_InvalidURL(t *testing.T) {
	_, err := New("localhost:8000", Options{})
	assert.Error(t, err)

	_, err = New("", Options{})
	assert.Error(t, err)
}

func TestLogin_Success(t *testing.T) {
	exp := time.Now().Add(time.Hour)
	body, _ := json.Marshal(types.LoginResponse{
		User:  &types.User{ID: "7", Name: "Ana", Email: "ana@example.com"},
		Token: signedToken(t, exp),
	})
	api := &fakeAPI{body: string(body)}
	c := newTestClient(t, api)

	assert.Equal(t, StateUninitialized, c.Session().State())

	resp, err := c.Login(context.Background(), types.LoginRequest{Email: "ana@example.com", Password: "secreto"})
	require.NoError(t, err)
	assert.Equal(t, "Ana", resp.User.Name)

	assert.Equal(t, StateReady, c.Session().State())
	assert.EqualValues(t, 1, api.csrfCalls.Load())
	assert.Equal(t, "Ana", c.User().Name)
	assert.WithinDuration(t, exp, c.ExpiresAt(), time.Second)
	assert.True(t, c.Authenticated(time.Now()))
	assert.False(t, c.Authenticated(exp.Add(time.Minute)))

	_, err = c.Login(context.Background(), types.LoginRequest{Email: "ana@example.com", Password: "secreto"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, api.csrfCalls.Load(), "ready session is reused")
}

func TestLogin_RetriesOnceAfterCSRFExpired(t *testing.T) {
	api := &fakeAPI{expired: 1, body: `{"user":{"id":1,"name":"Ana","email":"ana@example.com"}}`}
	c := newTestClient(t, api)

	resp, err := c.Login(context.Background(), types.LoginRequest{Email: "ana@example.com", Password: "secreto"})
	require.NoError(t, err)
	assert.Equal(t, "Ana", resp.User.Name)
	assert.EqualValues(t, 2, api.csrfCalls.Load())
	assert.EqualValues(t, 2, api.loginCalls.Load())
	assert.True(t, c.Authenticated(time.Now()))
}

func TestLogin_CSRFExpiredTwiceSurfaces(t *testing.T) {
	api := &fakeAPI{expired: 5}
	c := newTestClient(t, api)

	_, err := c.Login(context.Background(), types.LoginRequest{Email: "ana@example.com", Password: "secreto"})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.CSRFExpired())
	assert.Equal(t, TypeCSRF, apiErr.Type)
	assert.Equal(t, MsgCSRF, apiErr.Error())
	assert.EqualValues(t, 2, api.loginCalls.Load(), "retried exactly once")
}

func TestRegister_ValidationErrors(t *testing.T) {
	api := &fakeAPI{
		status: http.StatusUnprocessableEntity,
		body: `{"message":"invalid","errors":{
			"email":["El email ya está registrado."],
			"password":["La contraseña es muy corta.","Debe incluir un número."]}}`,
	}
	c := newTestClient(t, api)

	_, err := c.Register(context.Background(), types.RegisterRequest{
		Name:                 "Ana",
		Email:                "ana@example.com",
		Password:             "secreto123",
		PasswordConfirmation: "secreto123",
	})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, TypeValidation, apiErr.Type)
	assert.Equal(t,
		"Errores de validación: El email ya está registrado., La contraseña es muy corta., Debe incluir un número.",
		apiErr.Message)
	require.Len(t, apiErr.Fields, 2)
	assert.Equal(t, "email", apiErr.Fields[0].Field)
	assert.Equal(t, "password", apiErr.Fields[1].Field)
}

func TestRegister_SuccessMessage(t *testing.T) {
	api := &fakeAPI{status: http.StatusCreated, body: `{"user":{"id":2,"name":"Ana","email":"ana@example.com"}}`}
	c := newTestClient(t, api)

	resp, err := c.Register(context.Background(), types.RegisterRequest{
		Name:                 "Ana",
		Email:                "ana@example.com",
		Password:             "secreto123",
		PasswordConfirmation: "secreto123",
	})
	require.NoError(t, err)
	assert.Equal(t, MsgRegistered, resp.Message)
	assert.Nil(t, c.User(), "registration does not sign in")
}

func TestLogin_InvalidRequestIsNotSent(t *testing.T) {
	api := &fakeAPI{}
	c := newTestClient(t, api)

	_, err := c.Login(context.Background(), types.LoginRequest{Email: "nope", Password: "x"})
	require.Error(t, err)
	assert.Zero(t, api.csrfCalls.Load())
	assert.Zero(t, api.loginCalls.Load())
}

func TestLogin_BadCredentials(t *testing.T) {
	api := &fakeAPI{status: http.StatusUnauthorized, body: `{"message":"Unauthenticated."}`}
	c := newTestClient(t, api)

	_, err := c.Login(context.Background(), types.LoginRequest{Email: "ana@example.com", Password: "mal"})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, TypeAuth, apiErr.Type)
	assert.Equal(t, MsgAuth, apiErr.Message)
	assert.False(t, apiErr.Retryable())
	assert.False(t, c.Authenticated(time.Now()))
}

func TestLogin_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := New(url, Options{Timeout: time.Second})
	require.NoError(t, err)
	defer c.Close()

	_, err = c.Login(context.Background(), types.LoginRequest{Email: "ana@example.com", Password: "secreto"})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, TypeConnection, apiErr.Type)
	assert.Equal(t, MsgConnection, apiErr.Message)
	assert.True(t, apiErr.Retryable())

	var cu *types.CollaboratorUnavailableError
	assert.ErrorAs(t, err, &cu)
	assert.Equal(t, StateFailed, c.Session().State())
}

func TestErrorFromResponse(t *testing.T) {
	tests := []struct {
		status int
		body   string
		typ    ErrorType
		msg    string
	}{
		{419, `{}`, TypeCSRF, MsgCSRF},
		{422, `{"message":"x"}`, TypeValidation, MsgValidation},
		{422, `{"errors":{"name":"El nombre es obligatorio."}}`, TypeValidation, "Errores de validación: El nombre es obligatorio."},
		{401, ``, TypeAuth, MsgAuth},
		{403, ``, TypePermission, MsgPermission},
		{404, ``, TypeNotFound, MsgNotFound},
		{500, `<html>`, TypeServer, MsgServer},
		{429, `{"message":"Demasiados intentos."}`, TypeUnknown, "Demasiados intentos."},
		{502, `bad gateway`, TypeUnknown, MsgUnknown},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d", tt.status), func(t *testing.T) {
			err := errorFromResponse(tt.status, []byte(tt.body))
			assert.Equal(t, tt.status, err.Status)
			assert.Equal(t, tt.typ, err.Type)
			assert.Equal(t, tt.msg, err.Message)
		})
	}
}

func TestSession_InitializesOnce(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	s := NewSession(func(ctx context.Context) error {
		calls.Add(1)
		<-release
		return nil
	})

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = s.EnsureReady(context.Background())
		}(i)
	}
	time.Sleep(10 * time.Millisecond)
	close(release)
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.EqualValues(t, 1, calls.Load())
	assert.Equal(t, StateReady, s.State())
}

func TestSession_FailureAndReset(t *testing.T) {
	boom := errors.New("boom")
	fail := true
	s := NewSession(func(context.Context) error {
		if fail {
			return boom
		}
		return nil
	})

	assert.ErrorIs(t, s.EnsureReady(context.Background()), boom)
	assert.Equal(t, StateFailed, s.State())

	fail = false
	require.NoError(t, s.EnsureReady(context.Background()))
	assert.Equal(t, StateReady, s.State())

	s.Reset()
	assert.Equal(t, StateUninitialized, s.State())
	assert.Equal(t, "uninitialized", s.State().String())
}

func TestSession_WaiterHonorsContext(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	s := NewSession(func(context.Context) error {
		<-release
		return nil
	})

	go func() { _ = s.EnsureReady(context.Background()) }()
	require.Eventually(t, func() bool { return s.State() == StateInitializing }, time.Second, time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, s.EnsureReady(ctx), context.DeadlineExceeded)
}

func TestTokenExpiry(t *testing.T) {
	exp := time.Now().Add(30 * time.Minute)
	got, ok := TokenExpiry(signedToken(t, exp))
	require.True(t, ok)
	assert.WithinDuration(t, exp, got, time.Second)

	_, ok = TokenExpiry("1|opaque-sanctum-token")
	assert.False(t, ok)

	_, ok = TokenExpiry("")
	assert.False(t, ok)

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "7"}).SignedString([]byte("k"))
	require.NoError(t, err)
	_, ok = TokenExpiry(noExp)
	assert.False(t, ok)
}
