package relayhttp_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	cat "github.com/Hessin20292929/Cat"
	"github.com/Hessin20292929/Cat/relayhttp"
	"github.com/stretchr/testify/require"
)

func staticKey(key string) relayhttp.KeyProvider {
	return func(ctx context.Context) (string, error) { return key, nil }
}

func newHandler(t *testing.T, upstream *httptest.Server, origins []string) http.HandlerFunc {
	t.Helper()
	cfg := relayhttp.Config{
		AllowedOrigins: origins,
		KeyProvider:    staticKey("test-key"),
	}
	if upstream != nil {
		cfg.UpstreamURL = upstream.URL
		cfg.HTTPClient = upstream.Client()
	}
	h, err := relayhttp.Handler(cfg)
	require.NoError(t, err)
	return h
}

func postJSON(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestPreflight_NoContent(t *testing.T) {
	var upstreamCalls int32
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&upstreamCalls, 1)
	}))
	t.Cleanup(upstream.Close)

	h := newHandler(t, upstream, []string{"https://app.example"})

	// Preflight ignores body and content type entirely.
	req := httptest.NewRequest(http.MethodOptions, "/chat", strings.NewReader("not json"))
	req.Header.Set("Content-Type", "text/plain")
	req.Header.Set("Origin", "https://app.example")
	w := httptest.NewRecorder()
	h(w, req)

	require.Equal(t, http.StatusNoContent, w.Code)
	require.Empty(t, w.Body.String())
	require.Equal(t, "POST, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
	require.Equal(t, "Content-Type", w.Header().Get("Access-Control-Allow-Headers"))
	require.Equal(t, "86400", w.Header().Get("Access-Control-Max-Age"))
	require.Equal(t, "https://app.example", w.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, int32(0), atomic.LoadInt32(&upstreamCalls))
}

func TestMethodNotAllowed(t *testing.T) {
	h := newHandler(t, nil, nil)

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		t.Run(method, func(t *testing.T) {
			req := httptest.NewRequest(method, "/chat", nil)
			w := httptest.NewRecorder()
			h(w, req)

			require.Equal(t, http.StatusMethodNotAllowed, w.Code)
			require.Equal(t, "Method Not Allowed", w.Body.String())
			require.Equal(t, "POST, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
		})
	}
}

func TestUnsupportedMediaType(t *testing.T) {
	h := newHandler(t, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"message":"hi"}`))
	req.Header.Set("Content-Type", "text/plain")
	w := httptest.NewRecorder()
	h(w, req)

	require.Equal(t, http.StatusUnsupportedMediaType, w.Code)
	require.Contains(t, w.Body.String(), "application/json")
}

func TestContentTypeWithCharsetAccepted(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"candidates":[{"content":{"parts":[{"text":"ok"}]}}]}`)
	}))
	t.Cleanup(upstream.Close)

	h := newHandler(t, upstream, nil)

	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"message":"hi"}`))
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	w := httptest.NewRecorder()
	h(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "ok", w.Body.String())
}

func TestMissingKey_ConfigurationError(t *testing.T) {
	h, err := relayhttp.Handler(relayhttp.Config{
		UpstreamURL: "http://127.0.0.1:1/v1beta/models/m:generateContent",
		KeyProvider: func(ctx context.Context) (string, error) {
			return "", fmt.Errorf("GEMINI_API_KEY is not set")
		},
	})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	h(w, postJSON(`{"message":"hi"}`))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.Equal(t, "Server configuration error.", w.Body.String())
}

func TestInvalidJSON(t *testing.T) {
	h := newHandler(t, nil, nil)

	w := httptest.NewRecorder()
	h(w, postJSON(`{"message":`))

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "Invalid JSON in request body", w.Body.String())
}

func TestMessageValidation(t *testing.T) {
	h := newHandler(t, nil, nil)

	cases := []struct {
		name string
		body string
	}{
		{name: "missing", body: `{}`},
		{name: "non-string", body: `{"message":42}`},
		{name: "empty", body: `{"message":""}`},
		{name: "whitespace", body: `{"message":"   \n\t"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			h(w, postJSON(tc.body))

			require.Equal(t, http.StatusBadRequest, w.Code)
			require.Contains(t, w.Body.String(), "message")
		})
	}
}

func TestCORS_NoOriginSentinel(t *testing.T) {
	h := newHandler(t, nil, []string{cat.NoOriginSentinel})

	req := httptest.NewRequest(http.MethodGet, "/chat", nil)
	w := httptest.NewRecorder()
	h(w, req)

	require.Equal(t, "null", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_DisallowedOriginOmitted(t *testing.T) {
	h := newHandler(t, nil, []string{cat.NoOriginSentinel})

	req := httptest.NewRequest(http.MethodGet, "/chat", nil)
	req.Header.Set("Origin", "https://evil.example")
	w := httptest.NewRecorder()
	h(w, req)

	_, present := w.Header()["Access-Control-Allow-Origin"]
	require.False(t, present)
	// The status itself is still computed; rejection is the browser's job.
	require.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestRelay_Success(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "test-key", r.URL.Query().Get("key"))

		var payload struct {
			Contents []struct {
				Role  string `json:"role"`
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"contents"`
			SystemInstruction struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"systemInstruction"`
		}
		require.NoError(t, decodeJSON(r, &payload))
		require.Len(t, payload.Contents, 1)
		require.Equal(t, "user", payload.Contents[0].Role)
		require.Equal(t, "hello there", payload.Contents[0].Parts[0].Text)
		require.Equal(t, cat.SystemInstruction, payload.SystemInstruction.Parts[0].Text)

		fmt.Fprint(w, `{"candidates":[{"content":{"parts":[{"text":"hi"}]}}]}`)
	}))
	t.Cleanup(upstream.Close)

	h := newHandler(t, upstream, []string{"https://app.example"})

	req := postJSON(`{"message":"  hello there  "}`)
	req.Header.Set("Origin", "https://app.example")
	w := httptest.NewRecorder()
	h(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "hi", w.Body.String())
	require.Equal(t, "text/plain; charset=utf-8", w.Header().Get("Content-Type"))
	require.Equal(t, "https://app.example", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRelay_Blocked(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"promptFeedback":{"blockReason":"SAFETY"}}`)
	}))
	t.Cleanup(upstream.Close)

	h := newHandler(t, upstream, nil)

	w := httptest.NewRecorder()
	h(w, postJSON(`{"message":"hi"}`))

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "My safety filters prevented a response to that.", w.Body.String())
}

func TestRelay_EmptyFallback(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"candidates":[]}`)
	}))
	t.Cleanup(upstream.Close)

	h := newHandler(t, upstream, nil)

	w := httptest.NewRecorder()
	h(w, postJSON(`{"message":"hi"}`))

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "Sorry, I couldn't generate a response.", w.Body.String())
}

func TestRelay_UpstreamErrorPassThrough(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprint(w, `{"error":{"message":"try later"}}`)
	}))
	t.Cleanup(upstream.Close)

	h := newHandler(t, upstream, nil)

	w := httptest.NewRecorder()
	h(w, postJSON(`{"message":"hi"}`))

	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	require.Equal(t, "Service Unavailable", w.Body.String())
	// The upstream body is logged, never echoed to the client.
	require.NotContains(t, w.Body.String(), "try later")
}

func TestRelay_UpstreamUnreachable(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	upstream.Close()

	h, err := relayhttp.Handler(relayhttp.Config{
		UpstreamURL: upstream.URL,
		KeyProvider: staticKey("test-key"),
	})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	h(w, postJSON(`{"message":"hi"}`))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.Equal(t, "Internal Server Error", w.Body.String())
}

func TestRelay_NoCachingBetweenRequests(t *testing.T) {
	var upstreamCalls int32
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&upstreamCalls, 1)
		fmt.Fprint(w, `{"candidates":[{"content":{"parts":[{"text":"hi"}]}}]}`)
	}))
	t.Cleanup(upstream.Close)

	h := newHandler(t, upstream, nil)

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		h(w, postJSON(`{"message":"same message"}`))
		require.Equal(t, http.StatusOK, w.Code)
	}

	require.Equal(t, int32(2), atomic.LoadInt32(&upstreamCalls))
}

func TestHandler_RequiresKeyProvider(t *testing.T) {
	_, err := relayhttp.Handler(relayhttp.Config{})
	require.Error(t, err)
}

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}
