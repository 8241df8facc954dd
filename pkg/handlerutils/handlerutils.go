package handlerutils

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
)

// JSON writes obj as a JSON response with the given status code.
func JSON(w http.ResponseWriter, statusCode int, obj any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if obj == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(obj); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
		errText, _ := json.Marshal(map[string]string{
			"error":             "internal_server_error",
			"error_description": "Failed to encode JSON response",
		})
		_, _ = w.Write(errText)
	}
}

// GetClientIP extracts the client IP from the request, preferring the
// X-Forwarded-For and X-Real-IP headers over RemoteAddr.
func GetClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// First entry is the originating client
		ips := strings.Split(xff, ",")
		return strings.TrimSpace(ips[0])
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	ip := r.RemoteAddr
	if colonIndex := strings.LastIndex(ip, ":"); colonIndex != -1 {
		ip = ip[:colonIndex]
	}
	return ip
}

// GetBaseURL returns the URL of the request without the path, inferring
// the scheme from TLS state and the X-Forwarded-Proto header.
func GetBaseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s", scheme, r.Host)
}
