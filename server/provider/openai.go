package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/promptgate/promptgate/config"
	"go.uber.org/zap"
)

// OpenAIClient is a minimal client for the OpenAI Responses API. It submits
// the composite input as a single-turn message using a fixed model preset
// and extracts plain text from the response, tolerating both response
// shapes the API produces.
//
// Failure semantics are deliberate: no retries, no circuit breaking, and no
// timeout beyond the underlying transport default.
type OpenAIClient struct {
	apiKey     string
	baseURL    string
	preset     config.ModelPreset
	httpClient *http.Client
	logger     *zap.Logger
}

// NewOpenAIClient creates a client using the given preset for every call.
func NewOpenAIClient(cfg config.OpenAIConfig, preset config.ModelPreset, logger *zap.Logger) *OpenAIClient {
	return &OpenAIClient{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		preset:     preset,
		httpClient: http.DefaultClient,
		logger:     logger,
	}
}

type contentPart struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type inputMessage struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type responsesRequest struct {
	Model           string         `json:"model"`
	Temperature     float64        `json:"temperature"`
	MaxOutputTokens int            `json:"max_output_tokens"`
	Input           []inputMessage `json:"input"`
}

type outputContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type outputItem struct {
	Content []outputContent `json:"content"`
}

type responsesResponse struct {
	OutputText string       `json:"output_text"`
	Output     []outputItem `json:"output"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Complete submits the composite input as a single message with the
// caller's role and returns the extracted completion text.
func (c *OpenAIClient) Complete(ctx context.Context, role, input string) (string, error) {
	body := responsesRequest{
		Model:           c.preset.Model,
		Temperature:     c.preset.Temperature,
		MaxOutputTokens: c.preset.MaxOutputTokens,
		Input: []inputMessage{
			{
				Role:    role,
				Content: []contentPart{{Type: "text", Text: input}},
			},
		},
	}

	buf, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/responses", bytes.NewReader(buf))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(resp.Body)
		var apiErr apiError
		if jsonErr := json.Unmarshal(raw, &apiErr); jsonErr == nil && apiErr.Error.Message != "" {
			return "", fmt.Errorf("%s", apiErr.Error.Message)
		}
		return "", fmt.Errorf("unexpected status %s", resp.Status)
	}

	var out responsesResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	return extractText(out), nil
}

// extractText prefers the direct output_text field; otherwise it
// concatenates all text fragments across all output items, joining each
// item's fragments with nothing and items with a newline. If neither is
// present the result is the empty string.
func extractText(resp responsesResponse) string {
	if resp.OutputText != "" {
		return resp.OutputText
	}

	lines := make([]string, 0, len(resp.Output))
	for _, item := range resp.Output {
		var sb strings.Builder
		for _, part := range item.Content {
			sb.WriteString(part.Text)
		}
		lines = append(lines, sb.String())
	}
	return strings.Join(lines, "\n")
}
