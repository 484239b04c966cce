package relayhttp

import (
	"net/http"

	cat "github.com/Hessin20292929/Cat"
)

// corsHeaders computes the CORS header set for one inbound request as a pure
// function of the Origin value and the allow-list. An allowed origin is
// reflected verbatim, never wildcarded; a missing Origin header matches the
// "null" sentinel. When neither matches, Access-Control-Allow-Origin is
// omitted entirely and the browser rejects the response on its side.
func corsHeaders(origin string, allowed []string, extra http.Header) http.Header {
	h := http.Header{}
	h.Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	h.Set("Access-Control-Allow-Headers", "Content-Type")
	h.Set("Access-Control-Max-Age", "86400")
	for k, values := range extra {
		for _, v := range values {
			h.Add(k, v)
		}
	}

	switch {
	case origin != "" && containsOrigin(allowed, origin):
		h.Set("Access-Control-Allow-Origin", origin)
	case origin == "" && containsOrigin(allowed, cat.NoOriginSentinel):
		h.Set("Access-Control-Allow-Origin", cat.NoOriginSentinel)
	}
	return h
}

func containsOrigin(allowed []string, origin string) bool {
	for _, a := range allowed {
		if a == origin {
			return true
		}
	}
	return false
}
