package routes

import (
	"fmt"
	"net/url"
	"strings"
)

// InvalidIssuerError reports an issuer URL that does not satisfy the
// RFC 8414 requirements for an authorization server identity. Route
// assembly refuses to proceed on it, so a misconfigured issuer is caught
// before the server takes traffic.
type InvalidIssuerError struct {
	URL    string
	Reason string
}

func (e *InvalidIssuerError) Error() string {
	return fmt.Sprintf("invalid issuer URL %q: %s", e.URL, e.Reason)
}

// ValidateIssuerURL checks the issuer against RFC 8414: HTTPS scheme, no
// fragment, no query string. Plain HTTP is tolerated only for localhost
// and 127.0.0.1 so local development and tests work; production issuers
// must be HTTPS.
func ValidateIssuerURL(issuer string) error {
	u, err := url.Parse(issuer)
	if err != nil {
		return &InvalidIssuerError{URL: issuer, Reason: "must be a valid URL"}
	}
	if !u.IsAbs() || u.Host == "" {
		return &InvalidIssuerError{URL: issuer, Reason: "must be an absolute URL"}
	}
	if u.Scheme != "https" && u.Hostname() != "localhost" && !strings.HasPrefix(u.Hostname(), "127.0.0.1") {
		return &InvalidIssuerError{URL: issuer, Reason: "must use HTTPS"}
	}
	if u.Fragment != "" {
		return &InvalidIssuerError{URL: issuer, Reason: "must not have a fragment"}
	}
	if u.RawQuery != "" {
		return &InvalidIssuerError{URL: issuer, Reason: "must not have a query string"}
	}
	return nil
}

// endpointURL joins a fixed endpoint path onto the issuer. All trailing
// slashes are stripped first so normalized and unnormalized issuers derive
// the same endpoint URLs.
func endpointURL(issuer, path string) string {
	return strings.TrimRight(issuer, "/") + path
}
