package relayhttp

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	cat "github.com/Hessin20292929/Cat"
	"github.com/Hessin20292929/Cat/backend"
)

// Handler returns the relay handler. The handler dispatches on method itself
// (preflight vs data vs 405), so it can be mounted on any mux without
// per-method routes.
func Handler(cfg Config) (http.HandlerFunc, error) {
	resolved, err := resolveConfig(cfg)
	if err != nil {
		return nil, err
	}

	client, err := backend.NewClient(backend.ClientConfig{
		UpstreamURL: resolved.UpstreamURL,
		HTTPClient:  resolved.HTTPClient,
	})
	if err != nil {
		return nil, err
	}

	h := &relayHandler{
		client:         client,
		keyProvider:    resolved.KeyProvider,
		instruction:    resolved.Instruction,
		allowedOrigins: resolved.AllowedOrigins,
		newRequestID:   newRequestID,
	}
	return h.handleChat, nil
}

type relayHandler struct {
	client         *backend.Client
	keyProvider    KeyProvider
	instruction    string
	allowedOrigins []string
	newRequestID   func() string
}

func (h *relayHandler) handleChat(w http.ResponseWriter, r *http.Request) {
	origin := r.Header.Get("Origin")

	if r.Method == http.MethodOptions {
		applyHeaders(w, h.corsFor(origin, nil))
		w.WriteHeader(http.StatusNoContent)
		return
	}

	cors := h.corsFor(origin, textPlainHeaders())

	if r.Method != http.MethodPost {
		writeText(w, cors, http.StatusMethodNotAllowed, "Method Not Allowed")
		return
	}
	if !strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		writeText(w, cors, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return
	}

	reqID := h.newRequestID()

	apiKey, err := h.keyProvider(r.Context())
	apiKey = strings.TrimSpace(apiKey)
	if err != nil || apiKey == "" {
		// Operator-actionable: the process keeps serving, every request
		// fails the same way until the key is provisioned.
		log.Printf("[cat] %s api key unavailable: %v", reqID, err)
		writeText(w, cors, http.StatusInternalServerError, "Server configuration error.")
		return
	}

	// message is decoded as any so a present-but-non-string value is a
	// validation failure, not a JSON parse failure.
	var body struct {
		Message any `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeText(w, cors, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}

	message, ok := body.Message.(string)
	message = strings.TrimSpace(message)
	if !ok || message == "" {
		writeText(w, cors, http.StatusBadRequest, `Request body must include a non-empty "message" string`)
		return
	}

	result, err := h.client.Generate(r.Context(), apiKey, []backend.Content{backend.UserContent(message)}, h.instruction)
	if err != nil {
		var ue *backend.UpstreamError
		if errors.As(err, &ue) {
			log.Printf("[cat] %s upstream status %d: %s", reqID, ue.StatusCode, ue.Body)
			writeText(w, cors, ue.StatusCode, ue.StatusText())
			return
		}
		log.Printf("[cat] %s relay failed: %v", reqID, err)
		writeText(w, cors, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	switch {
	case result.Text != "":
		writeText(w, cors, http.StatusOK, result.Text)
	case result.BlockReason != "":
		log.Printf("[cat] %s generation blocked: %s", reqID, result.BlockReason)
		writeText(w, cors, http.StatusOK, "My safety filters prevented a response to that.")
	default:
		writeText(w, cors, http.StatusOK, "Sorry, I couldn't generate a response.")
	}
}

func (h *relayHandler) corsFor(origin string, extra http.Header) http.Header {
	headers := corsHeaders(origin, h.allowedOrigins, extra)
	if headers.Get("Access-Control-Allow-Origin") == "" {
		log.Printf("[cat] origin %q not in allow-list, omitting Access-Control-Allow-Origin", origin)
	}
	return headers
}

type resolvedConfig struct {
	Path           string
	UpstreamURL    string
	Instruction    string
	AllowedOrigins []string
	HTTPClient     *http.Client
	KeyProvider    KeyProvider
}

func resolveConfig(cfg Config) (resolvedConfig, error) {
	if cfg.KeyProvider == nil {
		return resolvedConfig{}, fmt.Errorf("KeyProvider is required")
	}

	upstreamURL := strings.TrimSpace(cfg.UpstreamURL)
	if upstreamURL == "" {
		upstreamURL = cat.GenerateContentURL(cat.DefaultUpstreamBaseURL, cfg.Model)
	}

	instruction := cfg.Instruction
	if strings.TrimSpace(instruction) == "" {
		instruction = cat.SystemInstruction
	}

	allowed := cfg.AllowedOrigins
	if len(allowed) == 0 {
		allowed = cat.DefaultAllowedOrigins()
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{}
	}

	return resolvedConfig{
		Path:           normalizePath(cfg.Path),
		UpstreamURL:    upstreamURL,
		Instruction:    instruction,
		AllowedOrigins: allowed,
		HTTPClient:     client,
		KeyProvider:    cfg.KeyProvider,
	}, nil
}
