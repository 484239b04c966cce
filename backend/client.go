package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// ClientConfig configures the generateContent client. UpstreamURL is the full
// model endpoint (cat.GenerateContentURL builds one); the API key is supplied
// per call so the client itself never holds the secret.
type ClientConfig struct {
	UpstreamURL string
	HTTPClient  *http.Client
}

// Client issues generateContent requests against the Gemini REST API.
// No timeout is configured on the call itself: a hung upstream blocks the
// calling request. Callers that need a bound should pass an HTTPClient with
// one.
type Client struct {
	config ClientConfig
}

func NewClient(config ClientConfig) (*Client, error) {
	if strings.TrimSpace(config.UpstreamURL) == "" {
		return nil, fmt.Errorf("upstream url is required")
	}
	if config.HTTPClient == nil {
		config.HTTPClient = &http.Client{}
	}
	return &Client{config: config}, nil
}

// Part is a single text fragment of a conversation turn.
type Part struct {
	Text string `json:"text"`
}

// Content is one conversation turn in generateContent wire format.
type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

// UserContent wraps text as a single user turn.
func UserContent(text string) Content {
	return Content{Role: "user", Parts: []Part{{Text: text}}}
}

// Result is the unwrapped upstream answer. Exactly one of the three states
// holds: Text is non-empty (success), BlockReason is non-empty (content was
// filtered), or both are empty (upstream produced nothing).
type Result struct {
	Text        string
	BlockReason string
}

// UpstreamError reports a non-success upstream status. Body carries the
// upstream response body for logging; it is never sent back to clients.
type UpstreamError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream request failed with status %d: %s", e.StatusCode, e.Body)
}

// StatusText returns the standard reason phrase for the upstream status,
// falling back to the raw status line for unknown codes.
func (e *UpstreamError) StatusText() string {
	if text := http.StatusText(e.StatusCode); text != "" {
		return text
	}
	return e.Status
}

type generateRequest struct {
	Contents          []Content `json:"contents"`
	SystemInstruction *Content  `json:"systemInstruction,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

// Generate posts the turns to the upstream with the key as a query parameter
// and unwraps the response. A non-success status yields *UpstreamError.
func (c *Client) Generate(ctx context.Context, apiKey string, contents []Content, instruction string) (*Result, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("api key is required")
	}
	if len(contents) == 0 {
		return nil, fmt.Errorf("no contents to send")
	}

	payload := generateRequest{Contents: contents}
	if strings.TrimSpace(instruction) != "" {
		payload.SystemInstruction = &Content{Parts: []Part{{Text: instruction}}}
	}

	bodyBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode upstream request: %w", err)
	}

	endpoint, err := urlWithKey(c.config.UpstreamURL, apiKey)
	if err != nil {
		return nil, fmt.Errorf("failed to build upstream url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to build upstream request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.config.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upstream request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 8<<10))
		return nil, &UpstreamError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       strings.TrimSpace(string(body)),
		}
	}

	var decoded generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode upstream response: %w", err)
	}

	result := &Result{Text: candidateText(&decoded)}
	if decoded.PromptFeedback != nil {
		result.BlockReason = strings.TrimSpace(decoded.PromptFeedback.BlockReason)
	}
	return result, nil
}

func urlWithKey(upstreamURL, apiKey string) (string, error) {
	u, err := url.Parse(upstreamURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("key", apiKey)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// candidateText extracts candidates[0].content.parts[0].text, returning ""
// when any step of the path is missing.
func candidateText(resp *generateResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	parts := resp.Candidates[0].Content.Parts
	if len(parts) == 0 {
		return ""
	}
	return parts[0].Text
}
