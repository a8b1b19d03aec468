package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
)

const defaultDeepSeekURL = "https://api.deepseek.com/v1/chat/completions"

// LLMClient sends one chat completion and returns the message content.
type LLMClient interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// Message represents a message in the chat
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request represents a request to the DeepSeek API
type Request struct {
	Model          string            `json:"model"`
	Messages       []Message         `json:"messages"`
	ResponseFormat map[string]string `json:"response_format"`
	Temperature    float64           `json:"temperature,omitempty"`
}

// DeepSeekClient handles interactions with the DeepSeek API
type DeepSeekClient struct {
	apiKey     string
	apiURL     string
	model      string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewDeepSeekClient creates a new DeepSeekClient instance
func NewDeepSeekClient(apiKey, apiURL string, logger *zap.Logger) *DeepSeekClient {
	if apiURL == "" {
		apiURL = defaultDeepSeekURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DeepSeekClient{
		apiKey:     apiKey,
		apiURL:     apiURL,
		model:      "deepseek-chat",
		httpClient: &http.Client{Timeout: 60 * time.Second},
		logger:     logger,
	}
}

// ResolveAPIKey returns DEEPSEEK_API_KEY, or the contents of the file named by
// DEEPSEEK_API_KEY_FILE. An empty key with a nil error means the live model
// is not configured.
func ResolveAPIKey() (string, error) {
	if key := strings.TrimSpace(os.Getenv("DEEPSEEK_API_KEY")); key != "" {
		return key, nil
	}
	apiKeyFile := os.Getenv("DEEPSEEK_API_KEY_FILE")
	if apiKeyFile == "" {
		return "", nil
	}
	apiKeyBytes, err := os.ReadFile(apiKeyFile)
	if err != nil {
		return "", fmt.Errorf("failed to read API key file: %w", err)
	}
	apiKey := strings.TrimSpace(string(apiKeyBytes))
	if apiKey == "" {
		return "", fmt.Errorf("API key file is empty")
	}
	return apiKey, nil
}

// Complete posts a JSON-mode chat completion.
func (c *DeepSeekClient) Complete(ctx context.Context, system, prompt string) (string, error) {
	reqBody := Request{
		Model: c.model,
		Messages: []Message{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
		ResponseFormat: map[string]string{
			"type": "json_object",
		},
		Temperature: 0.7,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, readErr := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if readErr != nil {
			return "", fmt.Errorf("failed to read error response: %w", readErr)
		}
		c.logger.Warn("LLM request failed",
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(bodyBytes)))
		return "", fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("no response from API")
	}

	return result.Choices[0].Message.Content, nil
}

// Macros represents nutritional macros information
type Macros struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
	Fiber    float64 `json:"fiber"`
	Sugar    float64 `json:"sugar"`
}

// CalculateMacros estimates per-serving macronutrients for a set of ingredients.
func CalculateMacros(ctx context.Context, llm LLMClient, ingredients []string, servings int) (*Macros, error) {
	if servings <= 0 {
		servings = 1
	}
	prompt := fmt.Sprintf("Provide an approximate per-serving macronutrient breakdown for a recipe serving %d made from the following ingredients:\n%s",
		servings, strings.Join(ingredients, "\n"))
	system := "You are a nutrition expert. Respond only with JSON like {\"calories\":0,\"protein\":0,\"carbs\":0,\"fat\":0,\"fiber\":0,\"sugar\":0}"

	content, err := llm.Complete(ctx, system, prompt)
	if err != nil {
		return nil, err
	}

	var macros Macros
	if err := json.Unmarshal([]byte(content), &macros); err != nil {
		return nil, fmt.Errorf("failed to parse macros: %w", err)
	}
	return &macros, nil
}
