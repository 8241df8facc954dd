package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct{}

func echoHandler(body string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(body))
	})
}

func (fakeProvider) AuthorizeHandler() http.Handler { return echoHandler("authorize") }
func (fakeProvider) TokenHandler() http.Handler     { return echoHandler("token") }
func (fakeProvider) RegisterHandler() http.Handler  { return echoHandler("register") }
func (fakeProvider) RevokeHandler() http.Handler    { return echoHandler("revoke") }

func TestNewAuthRoutes_TableShape(t *testing.T) {
	tests := []struct {
		name         string
		registration ClientRegistrationOptions
		revocation   RevocationOptions
		wantPaths    []string
	}{
		{
			name:      "both disabled",
			wantPaths: []string{MetadataPath, AuthorizationPath, TokenPath},
		},
		{
			name:         "registration only",
			registration: ClientRegistrationOptions{Enabled: true},
			wantPaths:    []string{MetadataPath, AuthorizationPath, TokenPath, RegistrationPath},
		},
		{
			name:       "revocation only",
			revocation: RevocationOptions{Enabled: true},
			wantPaths:  []string{MetadataPath, AuthorizationPath, TokenPath, RevocationPath},
		},
		{
			name:         "both enabled",
			registration: ClientRegistrationOptions{Enabled: true},
			revocation:   RevocationOptions{Enabled: true},
			wantPaths:    []string{MetadataPath, AuthorizationPath, TokenPath, RegistrationPath, RevocationPath},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := NewAuthRoutes(fakeProvider{}, "https://auth.example.com", "", tt.registration, tt.revocation)
			require.NoError(t, err)
			require.Len(t, table, len(tt.wantPaths))

			for i, route := range table {
				assert.Equal(t, tt.wantPaths[i], route.Path)
				// Every entry except the authorization endpoint carries
				// the cross-origin policy.
				assert.Equal(t, route.Path != AuthorizationPath, route.CORS, "CORS flag for %s", route.Path)
			}
		})
	}
}

func TestNewAuthRoutes_Methods(t *testing.T) {
	table, err := NewAuthRoutes(fakeProvider{}, "https://auth.example.com", "",
		ClientRegistrationOptions{Enabled: true}, RevocationOptions{Enabled: true})
	require.NoError(t, err)

	methodsByPath := map[string][]string{}
	for _, route := range table {
		methodsByPath[route.Path] = route.Methods
	}

	assert.Equal(t, []string{http.MethodGet, http.MethodOptions}, methodsByPath[MetadataPath])
	assert.Equal(t, []string{http.MethodGet, http.MethodPost}, methodsByPath[AuthorizationPath])
	assert.Equal(t, []string{http.MethodPost, http.MethodOptions}, methodsByPath[TokenPath])
	assert.Equal(t, []string{http.MethodPost, http.MethodOptions}, methodsByPath[RegistrationPath])
	assert.Equal(t, []string{http.MethodPost, http.MethodOptions}, methodsByPath[RevocationPath])
}

func TestNewAuthRoutes_InvalidIssuer(t *testing.T) {
	table, err := NewAuthRoutes(fakeProvider{}, "http://auth.example.com", "", ClientRegistrationOptions{}, RevocationOptions{})
	require.Error(t, err)
	assert.Nil(t, table)

	var invalidErr *InvalidIssuerError
	assert.ErrorAs(t, err, &invalidErr)
}

func TestNewProtectedResourceRoutes(t *testing.T) {
	table, err := NewProtectedResourceRoutes("https://res.example.com", []string{"https://auth.example.com"}, nil)
	require.NoError(t, err)
	require.Len(t, table, 1)

	route := table[0]
	assert.Equal(t, ProtectedResourceMetadataPath, route.Path)
	assert.Equal(t, []string{http.MethodGet, http.MethodOptions}, route.Methods)
	assert.True(t, route.CORS)
}

func TestNewProtectedResourceRoutes_NoAuthorizationServers(t *testing.T) {
	table, err := NewProtectedResourceRoutes("https://res.example.com", nil, nil)
	require.Error(t, err)
	assert.Nil(t, table)
	assert.Contains(t, err.Error(), "at least one authorization server")
}

func TestHandler_Dispatch(t *testing.T) {
	table, err := NewAuthRoutes(fakeProvider{}, "https://auth.example.com", "",
		ClientRegistrationOptions{Enabled: true, ValidScopes: []string{"read", "write"}},
		RevocationOptions{Enabled: true})
	require.NoError(t, err)

	handler := Handler(table)

	t.Run("metadata document", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, MetadataPath, nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
		assert.Contains(t, w.Body.String(), "authorization_endpoint")
		assert.Contains(t, w.Body.String(), "https://auth.example.com/token")
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("token endpoint preflight", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodOptions, TokenPath, nil)
		req.Header.Set("Origin", "https://inspector.example.com")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "POST, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), ProtocolVersionHeader)
		// Preflight never reaches the token handler
		assert.Empty(t, w.Body.String())
	})

	t.Run("registration preflight allows JSON content type", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodOptions, RegistrationPath, nil)
		req.Header.Set("Origin", "https://inspector.example.com")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		req.Header.Set("Access-Control-Request-Headers", "content-type")
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		// A browser posting application/json asks for Content-Type in the
		// preflight; without it in the allow list the registration POST
		// gets blocked.
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Content-Type")
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), ProtocolVersionHeader)
	})

	t.Run("token endpoint dispatch", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, TokenPath, nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "token", w.Body.String())
	})

	t.Run("authorization endpoint has no CORS", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, AuthorizationPath, nil)
		req.Header.Set("Origin", "https://inspector.example.com")
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "authorize", w.Body.String())
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("authorization endpoint rejects OPTIONS", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, AuthorizationPath, nil))

		assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	})

	t.Run("registration and revocation dispatch", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, RegistrationPath, nil))
		assert.Equal(t, "register", w.Body.String())

		w = httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, RevocationPath, nil))
		assert.Equal(t, "revoke", w.Body.String())
	})

	t.Run("method not allowed", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, TokenPath, nil))
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	})

	t.Run("unknown path", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestHandler_ProtectedResourceDispatch(t *testing.T) {
	table, err := NewProtectedResourceRoutes("https://res.example.com", []string{"https://auth.example.com"}, nil)
	require.NoError(t, err)

	handler := Handler(table)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, ProtectedResourceMetadataPath, nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"resource":"https://res.example.com"`)
	assert.Contains(t, w.Body.String(), `"authorization_servers":["https://auth.example.com"]`)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
