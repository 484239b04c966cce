package relayhttp

import (
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

func applyHeaders(w http.ResponseWriter, headers http.Header) {
	for k, values := range headers {
		for _, v := range values {
			w.Header().Add(k, v)
		}
	}
}

func writeText(w http.ResponseWriter, headers http.Header, statusCode int, body string) {
	applyHeaders(w, headers)
	w.WriteHeader(statusCode)
	_, _ = io.WriteString(w, body)
}

func textPlainHeaders() http.Header {
	return http.Header{"Content-Type": []string{"text/plain; charset=utf-8"}}
}

// newRequestID generates a short id to correlate log lines for one relay
// request.
func newRequestID() string {
	return "req_" + uuid.New().String()[:8]
}

func normalizePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return "/chat"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	p = strings.TrimRight(p, "/")
	if p == "" {
		return "/"
	}
	return p
}
