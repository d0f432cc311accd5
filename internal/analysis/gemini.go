package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/apex/log"

	"github.com/valpere/meditranslate/internal/ingest"
)

const (
	DefaultGeminiModel    = "gemini-2.5-flash"
	DefaultGeminiEndpoint = "https://generativelanguage.googleapis.com"

	// temperature is kept low for faithful extraction and translation.
	temperature = 0.2

	// maxErrorBody caps how much of a failed response is read for its message.
	maxErrorBody = 64 << 10
)

// GeminiConfig configures a GeminiClient.
type GeminiConfig struct {
	APIKey string
	Model  string
	// Endpoint overrides the service base URL (e.g. a test server).
	Endpoint string
	// Timeout bounds a single request. Zero means no client-side limit.
	Timeout time.Duration
}

// GeminiClient analyzes reports with the Gemini generateContent REST API.
type GeminiClient struct {
	apiKey  string
	model   string
	baseURL string
	timeout time.Duration
	client  *http.Client
	credErr error
}

// NewGeminiClient builds a client. A missing API key is not an error here:
// it is recorded once and reported by CheckCredential and by every Analyze
// call, before any network access.
func NewGeminiClient(cfg GeminiConfig) (*GeminiClient, error) {
	model := strings.TrimPrefix(cfg.Model, "models/")
	if model == "" {
		model = DefaultGeminiModel
	}

	baseURL := strings.TrimRight(cfg.Endpoint, "/")
	if baseURL == "" {
		baseURL = DefaultGeminiEndpoint
	}
	if u, err := url.Parse(baseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid gemini endpoint %q", cfg.Endpoint)
	}

	c := &GeminiClient{
		apiKey:  strings.TrimSpace(cfg.APIKey),
		model:   model,
		baseURL: baseURL,
		timeout: cfg.Timeout,
		client:  &http.Client{},
	}
	if c.apiKey == "" {
		c.credErr = ErrMissingCredential
	}
	return c, nil
}

func (c *GeminiClient) Name() string {
	return "gemini"
}

// Model returns the model name requests are sent to.
func (c *GeminiClient) Model() string {
	return c.model
}

// CheckCredential reports ErrMissingCredential when no API key was given.
func (c *GeminiClient) CheckCredential() error {
	return c.credErr
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	ResponseMimeType string  `json:"responseMimeType"`
	ResponseSchema   *schema `json:"responseSchema"`
	Temperature      float64 `json:"temperature"`
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content      *content `json:"content"`
		FinishReason string   `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

func (c *GeminiClient) Analyze(ctx context.Context, file ingest.EncodedFile, languageName string) (*Findings, error) {
	if c.credErr != nil {
		return nil, c.credErr
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	body, err := json.Marshal(generateRequest{
		Contents: []content{{
			Role: "user",
			Parts: []part{
				{InlineData: &inlineData{MimeType: file.MimeType, Data: file.Content}},
				{Text: buildPrompt(languageName)},
			},
		}},
		GenerationConfig: generationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   responseSchema(),
			Temperature:      temperature,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	start := time.Now()
	resp, err := c.generateContent(ctx, body)
	logger := log.WithFields(log.Fields{
		"model":    c.model,
		"language": languageName,
		"size":     file.Size,
		"duration": time.Since(start).Round(time.Millisecond).String(),
	})
	if err != nil {
		logger.WithError(err).Warn("gemini request failed")
		return nil, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}

	text, err := responseText(resp)
	if err != nil {
		logger.WithError(err).Warn("gemini returned no content")
		return nil, err
	}
	logger.Debug("gemini response received")

	return ParseFindings(text)
}

// generateContent posts body to the model's generateContent method. Transport
// failures, non-2xx statuses and undecodable envelopes are all returned as
// plain errors; the caller classifies them.
func (c *GeminiClient) generateContent(ctx context.Context, body []byte) (*generateResponse, error) {
	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, url.PathEscape(c.model))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError(resp)
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &out, nil
}

// statusError formats a non-2xx answer as "status N: message", using the
// message from the API's error envelope when there is one.
func statusError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var e apiError
	if json.Unmarshal(raw, &e) == nil && e.Error.Message != "" {
		return fmt.Errorf("status %d: %s", resp.StatusCode, e.Error.Message)
	}
	if msg := strings.TrimSpace(string(raw)); msg != "" {
		return fmt.Errorf("status %d: %s", resp.StatusCode, msg)
	}
	return fmt.Errorf("status %d", resp.StatusCode)
}

// responseText returns the concatenated text parts of the first candidate.
func responseText(resp *generateResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		if resp != nil && resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			return "", fmt.Errorf("%w: prompt blocked (%s)", ErrEmptyResponse, resp.PromptFeedback.BlockReason)
		}
		return "", ErrEmptyResponse
	}

	cand := resp.Candidates[0]
	if cand.Content == nil {
		if cand.FinishReason != "" {
			return "", fmt.Errorf("%w: finish reason %s", ErrEmptyResponse, cand.FinishReason)
		}
		return "", ErrEmptyResponse
	}

	var sb strings.Builder
	for _, p := range cand.Content.Parts {
		sb.WriteString(p.Text)
	}
	if strings.TrimSpace(sb.String()) == "" {
		return "", ErrEmptyResponse
	}
	return sb.String(), nil
}
