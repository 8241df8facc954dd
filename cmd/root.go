package cmd

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gptscript-ai/cmd"
	"github.com/obot-platform/mcp-auth-routes/pkg/handlerutils"
	"github.com/obot-platform/mcp-auth-routes/pkg/ratelimit"
	"github.com/obot-platform/mcp-auth-routes/pkg/routes"
	"github.com/obot-platform/mcp-auth-routes/pkg/types"
	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

// RootCmd represents the base command when called without any subcommands
type RootCmd struct {
	// Issuer configuration
	Issuer                  string `name:"issuer" env:"ISSUER" usage:"Issuer URL this server identifies as (e.g. https://auth.example.com)" required:"true"`
	ServiceDocumentationURL string `name:"service-documentation-url" env:"SERVICE_DOCUMENTATION_URL" usage:"Optional URL of human-readable documentation for this server"`

	// Feature toggles
	EnableRegistration bool   `name:"enable-registration" env:"ENABLE_REGISTRATION" usage:"Advertise and route the dynamic client registration endpoint"`
	EnableRevocation   bool   `name:"enable-revocation" env:"ENABLE_REVOCATION" usage:"Advertise and route the token revocation endpoint"`
	ScopesSupported    string `name:"scopes-supported" env:"SCOPES_SUPPORTED" usage:"Comma-separated list of scopes clients may request (e.g. 'openid,profile,email')"`

	// Protected resource metadata
	Resource             string `name:"resource" env:"RESOURCE" usage:"Resource URL to advertise protected resource metadata for (optional)"`
	AuthorizationServers string `name:"authorization-servers" env:"AUTHORIZATION_SERVERS" usage:"Comma-separated issuer URLs trusted by the resource (defaults to the issuer)"`

	// Server configuration
	Port string `name:"port" env:"PORT" usage:"Port to run the server on" default:"8080"`
	Host string `name:"host" env:"HOST" usage:"Host to bind the server to" default:"localhost"`

	// Logging
	Verbose bool `name:"verbose,v" usage:"Enable verbose logging"`
	Version bool `name:"version" usage:"Show version information"`
}

func (c *RootCmd) Run(cobraCmd *cobra.Command, args []string) error {
	if c.Version {
		fmt.Printf("MCP Auth Routes\n")
		fmt.Printf("Version: %s\n", version)
		fmt.Printf("Built: %s\n", buildTime)
		return nil
	}

	if c.Verbose {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
		log.Println("Verbose logging enabled")
	}

	registration := routes.ClientRegistrationOptions{
		Enabled:     c.EnableRegistration,
		ValidScopes: splitList(c.ScopesSupported),
	}
	revocation := routes.RevocationOptions{
		Enabled: c.EnableRevocation,
	}

	table, err := routes.NewAuthRoutes(&unwiredProvider{}, c.Issuer, c.ServiceDocumentationURL, registration, revocation)
	if err != nil {
		return fmt.Errorf("failed to assemble auth routes: %w", err)
	}

	mux := http.NewServeMux()
	routes.AddRoutes(mux, table)

	if c.Resource != "" {
		authorizationServers := splitList(c.AuthorizationServers)
		if len(authorizationServers) == 0 {
			authorizationServers = []string{c.Issuer}
		}
		resourceTable, err := routes.NewProtectedResourceRoutes(c.Resource, authorizationServers, registration.ValidScopes)
		if err != nil {
			return fmt.Errorf("failed to assemble protected resource routes: %w", err)
		}
		routes.AddRoutes(mux, resourceTable)
	}

	limiter := ratelimit.NewRateLimiter(15*time.Minute, 5000)
	handler := handlers.LoggingHandler(os.Stdout, handlers.RecoveryHandler()(limiter.Middleware(mux)))

	address := fmt.Sprintf("%s:%s", c.Host, c.Port)
	log.Printf("Starting auth discovery server on %s", address)
	log.Printf("Issuer: %s", c.Issuer)
	log.Printf("Registration enabled: %v, revocation enabled: %v", c.EnableRegistration, c.EnableRevocation)

	return http.ListenAndServe(address, handler)
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// unwiredProvider serves the delegated endpoints of the skeleton server.
// Every flow answers 501 until a real provider is wired in; the discovery
// surface is fully functional regardless.
type unwiredProvider struct{}

func (unwiredProvider) AuthorizeHandler() http.Handler { return notWired() }
func (unwiredProvider) TokenHandler() http.Handler     { return notWired() }
func (unwiredProvider) RegisterHandler() http.Handler  { return notWired() }
func (unwiredProvider) RevokeHandler() http.Handler    { return notWired() }

func notWired() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerutils.JSON(w, http.StatusNotImplemented, types.OAuthError{
			Error:            "server_error",
			ErrorDescription: "This endpoint is not wired to a provider",
		})
	})
}

// Customizer interface implementation for additional command customization
func (c *RootCmd) Customize(cobraCmd *cobra.Command) {
	cobraCmd.Use = "mcp-auth-routes"
	cobraCmd.Short = "OAuth 2.0 discovery and routing front-end for MCP servers"
	cobraCmd.Long = `mcp-auth-routes assembles the OAuth 2.0 discovery surface of an MCP
authorization server: RFC 8414 authorization server metadata, RFC 9728
protected resource metadata, and the endpoint table with per-endpoint
CORS policy.

Run as a binary it serves the discovery documents and answers the OAuth
flow endpoints with 501 until a provider is wired in; it doubles as a
skeleton for building a full server on the routes package.

Examples:
  # Serve discovery metadata for a local issuer
  mcp-auth-routes --issuer=http://localhost:8080 \
    --enable-registration --enable-revocation \
    --scopes-supported="openid,profile,email"

  # Also advertise protected resource metadata
  mcp-auth-routes --issuer=https://auth.example.com \
    --resource=https://mcp.example.com \
    --authorization-servers=https://auth.example.com

Configuration:
  Configuration values are loaded in this order (later values override
  earlier ones):
  1. Default values
  2. Environment variables
  3. Command line flags`

	cobraCmd.Version = version
}

// Execute is the main entry point for the CLI
func Execute() error {
	rootCmd := &RootCmd{}
	cobraCmd := cmd.Command(rootCmd)
	return cobraCmd.Execute()
}
