package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ai_messenger/pkg/ai"
)

const (
	geminiDefaultAPIURL = "https://generativelanguage.googleapis.com"
	geminiDefaultModel  = "gemini-1.5-flash"
	geminiMaxErrorBody  = 4096
)

func init() {
	ai.RegisterProvider(ai.ProviderInfo{
		Type:        ai.ProviderGemini,
		Name:        "Gemini",
		Description: "Gemini generateContent REST endpoint (key passed as query parameter)",
	}, NewGeminiProvider)
}

// GeminiProvider talks to the generateContent REST endpoint directly.
type GeminiProvider struct {
	httpClient         *http.Client
	baseURL            string
	apiKey             string
	defaultModel       string
	defaultTemperature float64
	defaultMaxTokens   int
}

// NewGeminiProvider creates a REST Gemini provider. An empty key is allowed;
// the endpoint rejects the call and the caller sees a StatusError.
func NewGeminiProvider(cfg ai.ProviderConfig) (ai.Provider, error) {
	settings := cfg.Settings

	baseURL := strings.TrimRight(strings.TrimSpace(settings.APIURL), "/")
	if baseURL == "" {
		baseURL = geminiDefaultAPIURL
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("gemini api_url is invalid: %w", err)
	}

	model := strings.TrimSpace(settings.Model)
	if model == "" {
		model = geminiDefaultModel
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		// Zero timeout leaves the call bounded by the transport only.
		httpClient = &http.Client{Timeout: time.Duration(settings.APITimeoutSeconds) * time.Second}
	}

	slog.Debug("gemini_provider_ready",
		"model", model,
		"base_url", baseURL,
		"timeout_seconds", settings.APITimeoutSeconds,
	)
	return &GeminiProvider{
		httpClient:         httpClient,
		baseURL:            baseURL,
		apiKey:             strings.TrimSpace(cfg.APIKey),
		defaultModel:       model,
		defaultTemperature: settings.Temperature,
		defaultMaxTokens:   settings.MaxTokens,
	}, nil
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	Temperature     *float64 `json:"temperature,omitempty"`
	MaxOutputTokens int      `json:"maxOutputTokens,omitempty"`
}

type geminiRequest struct {
	Contents          []geminiContent         `json:"contents"`
	SystemInstruction *geminiContent          `json:"systemInstruction,omitempty"`
	GenerationConfig  *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content *geminiContent `json:"content"`
	} `json:"candidates"`
	ModelVersion string `json:"modelVersion"`
}

// CreateChatCompletion posts the conversation to generateContent and returns
// the first candidate's first text part.
func (p *GeminiProvider) CreateChatCompletion(ctx context.Context, req ai.ChatRequest) (ai.ChatResponse, error) {
	model, payload, err := p.buildRequest(req)
	if err != nil {
		return ai.ChatResponse{}, err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return ai.ChatResponse{}, fmt.Errorf("encode gemini request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint(model), bytes.NewReader(body))
	if err != nil {
		return ai.ChatResponse{}, fmt.Errorf("build gemini request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return ai.ChatResponse{}, fmt.Errorf("gemini request: %w", redactKey(err, p.apiKey))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, geminiMaxErrorBody))
		return ai.ChatResponse{}, &ai.StatusError{StatusCode: resp.StatusCode, Body: string(errBody)}
	}

	var decoded geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return ai.ChatResponse{}, fmt.Errorf("%w: %v", ai.ErrMalformedResponse, err)
	}

	text, ok := firstCandidateText(decoded)
	if !ok {
		return ai.ChatResponse{}, ai.ErrMalformedResponse
	}

	respModel := decoded.ModelVersion
	if respModel == "" {
		respModel = model
	}
	return ai.ChatResponse{Content: text, Model: respModel}, nil
}

func (p *GeminiProvider) endpoint(model string) string {
	q := url.Values{}
	q.Set("key", p.apiKey)
	return fmt.Sprintf("%s/v1beta/models/%s:generateContent?%s", p.baseURL, url.PathEscape(model), q.Encode())
}

func (p *GeminiProvider) buildRequest(req ai.ChatRequest) (string, geminiRequest, error) {
	model := strings.TrimSpace(req.Model)
	if model == "" {
		model = p.defaultModel
	}
	if len(req.Messages) == 0 {
		return "", geminiRequest{}, fmt.Errorf("messages are required")
	}

	payload := geminiRequest{Contents: make([]geminiContent, 0, len(req.Messages))}
	var systemParts []string
	for _, msg := range req.Messages {
		switch strings.ToLower(strings.TrimSpace(msg.Role)) {
		case ai.RoleSystem:
			if content := strings.TrimSpace(msg.Content); content != "" {
				systemParts = append(systemParts, content)
			}
		case ai.RoleAssistant, "model":
			payload.Contents = append(payload.Contents, geminiContent{
				Role:  "model",
				Parts: []geminiPart{{Text: msg.Content}},
			})
		default:
			payload.Contents = append(payload.Contents, geminiContent{
				Role:  "user",
				Parts: []geminiPart{{Text: msg.Content}},
			})
		}
	}
	if len(payload.Contents) == 0 {
		return "", geminiRequest{}, fmt.Errorf("at least one user or assistant message is required")
	}
	if len(systemParts) > 0 {
		payload.SystemInstruction = &geminiContent{
			Parts: []geminiPart{{Text: strings.Join(systemParts, "\n\n")}},
		}
	}

	temperature := p.defaultTemperature
	if req.Temperature != nil {
		temperature = *req.Temperature
	}
	maxTokens := p.defaultMaxTokens
	if req.MaxTokens != nil {
		maxTokens = *req.MaxTokens
	}
	if temperature > 0 || maxTokens > 0 {
		gen := &geminiGenerationConfig{MaxOutputTokens: maxTokens}
		if temperature > 0 {
			gen.Temperature = &temperature
		}
		payload.GenerationConfig = gen
	}

	return model, payload, nil
}

func firstCandidateText(resp geminiResponse) (string, bool) {
	if len(resp.Candidates) == 0 {
		return "", false
	}
	content := resp.Candidates[0].Content
	if content == nil || len(content.Parts) == 0 {
		return "", false
	}
	text := content.Parts[0].Text
	if text == "" {
		return "", false
	}
	return text, true
}

// redactKey strips the credential out of url.Error messages.
func redactKey(err error, key string) error {
	if key == "" || !strings.Contains(err.Error(), key) {
		return err
	}
	return &redactedError{msg: strings.ReplaceAll(err.Error(), key, "REDACTED"), err: err}
}

type redactedError struct {
	msg string
	err error
}

func (e *redactedError) Error() string { return e.msg }
func (e *redactedError) Unwrap() error { return e.err }

// Ensure interface compliance
var _ ai.Provider = (*GeminiProvider)(nil)
