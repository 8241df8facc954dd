package routes

import (
	"net/http"

	"github.com/obot-platform/mcp-auth-routes/pkg/handlerutils"
	"github.com/obot-platform/mcp-auth-routes/pkg/types"
)

// ClientRegistrationOptions controls whether dynamic client registration
// is advertised and routed, and which scopes registered clients may
// request.
type ClientRegistrationOptions struct {
	Enabled     bool
	ValidScopes []string
}

// RevocationOptions controls whether token revocation is advertised and
// routed.
type RevocationOptions struct {
	Enabled bool
}

// BuildMetadata assembles the RFC 8414 document for a validated issuer.
// The capability lists are fixed constants describing exactly what the
// delegated handlers implement; widening any of them without handler
// support would advertise capabilities the server does not have.
func BuildMetadata(issuer, serviceDocumentationURL string, registration ClientRegistrationOptions, revocation RevocationOptions) types.OAuthMetadata {
	metadata := types.OAuthMetadata{
		Issuer:                            issuer,
		AuthorizationEndpoint:             endpointURL(issuer, AuthorizationPath),
		TokenEndpoint:                     endpointURL(issuer, TokenPath),
		ScopesSupported:                   registration.ValidScopes,
		ResponseTypesSupported:            []string{"code"},
		GrantTypesSupported:               []string{"authorization_code", "refresh_token"},
		TokenEndpointAuthMethodsSupported: []string{"client_secret_post"},
		ServiceDocumentation:              serviceDocumentationURL,
		CodeChallengeMethodsSupported:     []string{"S256"},
	}

	if registration.Enabled {
		metadata.RegistrationEndpoint = endpointURL(issuer, RegistrationPath)
	}

	// Endpoint and auth methods travel together: both present or both
	// absent from the document.
	if revocation.Enabled {
		metadata.RevocationEndpoint = endpointURL(issuer, RevocationPath)
		metadata.RevocationEndpointAuthMethodsSupported = []string{"client_secret_post"}
	}

	return metadata
}

// BuildProtectedResourceMetadata assembles the RFC 9728 document for a
// resource server. The resource URL is deliberately not held to the
// issuer rules: it names a resource, not the authorization server.
func BuildProtectedResourceMetadata(resource string, authorizationServers, scopesSupported []string) types.ProtectedResourceMetadata {
	return types.ProtectedResourceMetadata{
		Resource:               resource,
		AuthorizationServers:   authorizationServers,
		ScopesSupported:        scopesSupported,
		BearerMethodsSupported: []string{"header"},
	}
}

// MetadataHandler serves a discovery document as JSON.
func MetadataHandler(document any) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerutils.JSON(w, http.StatusOK, document)
	})
}
