package routes

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

// ProtocolVersionHeader is the one non-safelisted header browser-resident
// MCP clients send on cross-origin requests.
const ProtocolVersionHeader = "Mcp-Protocol-Version"

// allowedHeaders is the CORS-safelisted request headers plus the MCP
// protocol version header. The safelist must be spelled out: browsers
// treat Content-Type as safelisted only for form media types, so a JSON
// POST preflight asks for it explicitly.
const allowedHeaders = "Accept, Accept-Language, Content-Language, Content-Type, " + ProtocolVersionHeader

const corsMaxAge = 12 * time.Hour

// CORSMiddleware wraps next with the cross-origin policy for endpoints
// that browser-resident OAuth clients call directly: any origin, exactly
// the given methods, and the safelisted headers plus the MCP protocol
// version header. Preflight
// OPTIONS requests are answered here and never reach next.
func CORSMiddleware(next http.Handler, allowMethods ...string) http.Handler {
	methods := strings.Join(allowMethods, ", ")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", methods)
		w.Header().Set("Access-Control-Allow-Headers", allowedHeaders)
		w.Header().Set("Access-Control-Max-Age", strconv.Itoa(int(corsMaxAge.Seconds())))

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
