// Package routes assembles the discovery surface and endpoint table of an
// OAuth 2.0 authorization server for MCP: issuer validation, RFC 8414 and
// RFC 9728 metadata documents, and the routable endpoint table with
// per-endpoint cross-origin policy. The OAuth flows themselves are
// delegated to handlers supplied by a Provider.
package routes

import (
	"fmt"
	"net/http"
)

// Endpoint paths. Clients locate them through the well-known documents,
// so changing any of these breaks discovery.
const (
	AuthorizationPath = "/authorize"
	TokenPath         = "/token"
	RegistrationPath  = "/register"
	RevocationPath    = "/revoke"

	MetadataPath                  = "/.well-known/oauth-authorization-server"
	ProtectedResourceMetadataPath = "/.well-known/oauth-protected-resource"
)

// Provider supplies the handlers for the OAuth flows this package routes
// to. Implementations own flow semantics, client storage, and token
// handling; the router never inspects their request or response bodies.
type Provider interface {
	AuthorizeHandler() http.Handler
	TokenHandler() http.Handler
	RegisterHandler() http.Handler
	RevokeHandler() http.Handler
}

// Route is one entry of the assembled endpoint table.
type Route struct {
	Path    string
	Methods []string
	Handler http.Handler
	// CORS reports whether Handler is wrapped in the cross-origin policy.
	CORS bool
}

// NewAuthRoutes assembles the authorization server's endpoint table:
// metadata discovery, authorize, and token always; register and revoke
// when the respective option enables them. The issuer is validated first
// and an invalid one fails the whole assembly.
//
// Endpoints hit directly by browser-resident OAuth clients get the
// cross-origin policy. The authorization endpoint does not: clients reach
// it through a full-page redirect, never a scripted fetch, so CORS there
// is withheld on purpose.
func NewAuthRoutes(provider Provider, issuer, serviceDocumentationURL string, registration ClientRegistrationOptions, revocation RevocationOptions) ([]Route, error) {
	if err := ValidateIssuerURL(issuer); err != nil {
		return nil, err
	}

	metadata := BuildMetadata(issuer, serviceDocumentationURL, registration, revocation)

	table := []Route{
		{
			Path:    MetadataPath,
			Methods: []string{http.MethodGet, http.MethodOptions},
			Handler: CORSMiddleware(MetadataHandler(metadata), http.MethodGet, http.MethodOptions),
			CORS:    true,
		},
		{
			Path:    AuthorizationPath,
			Methods: []string{http.MethodGet, http.MethodPost},
			Handler: provider.AuthorizeHandler(),
		},
		{
			Path:    TokenPath,
			Methods: []string{http.MethodPost, http.MethodOptions},
			Handler: CORSMiddleware(provider.TokenHandler(), http.MethodPost, http.MethodOptions),
			CORS:    true,
		},
	}

	if registration.Enabled {
		table = append(table, Route{
			Path:    RegistrationPath,
			Methods: []string{http.MethodPost, http.MethodOptions},
			Handler: CORSMiddleware(provider.RegisterHandler(), http.MethodPost, http.MethodOptions),
			CORS:    true,
		})
	}

	if revocation.Enabled {
		table = append(table, Route{
			Path:    RevocationPath,
			Methods: []string{http.MethodPost, http.MethodOptions},
			Handler: CORSMiddleware(provider.RevokeHandler(), http.MethodPost, http.MethodOptions),
			CORS:    true,
		})
	}

	return table, nil
}

// NewProtectedResourceRoutes assembles the single-entry table a resource
// server mounts to advertise the authorization servers whose tokens it
// accepts. Usable on its own by resource servers that are not themselves
// authorization servers.
func NewProtectedResourceRoutes(resource string, authorizationServers, scopesSupported []string) ([]Route, error) {
	if len(authorizationServers) == 0 {
		return nil, fmt.Errorf("protected resource metadata requires at least one authorization server")
	}

	metadata := BuildProtectedResourceMetadata(resource, authorizationServers, scopesSupported)

	return []Route{
		{
			Path:    ProtectedResourceMetadataPath,
			Methods: []string{http.MethodGet, http.MethodOptions},
			Handler: CORSMiddleware(MetadataHandler(metadata), http.MethodGet, http.MethodOptions),
			CORS:    true,
		},
	}, nil
}

// AddRoutes registers every entry of table on mux, one method pattern per
// allowed verb, so the mux answers everything else with 405 and each
// request is dispatched to at most one entry.
func AddRoutes(mux *http.ServeMux, table []Route) {
	for _, route := range table {
		for _, method := range route.Methods {
			mux.Handle(method+" "+route.Path, route.Handler)
		}
	}
}

// Handler mounts a route table on a fresh ServeMux.
func Handler(table []Route) http.Handler {
	mux := http.NewServeMux()
	AddRoutes(mux, table)
	return mux
}
