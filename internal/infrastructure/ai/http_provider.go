package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/doeshing/k8sllm/internal/domain"
	"github.com/doeshing/k8sllm/internal/ports"
)

const (
	anthropicVersion = "2023-06-01"
	maxErrorBody     = 512
)

type endpointSettings struct {
	baseURL string
	apiKey  string
}

type httpProvider struct {
	name       string
	settings   endpointSettings
	httpClient *http.Client
	log        ports.Logger
	adapter    providerAdapter
}

type providerAdapter struct {
	path          string
	buildRequest  func(ports.ProviderRequest) ([]byte, error)
	parseResponse func([]byte) (string, error)
	setHeaders    func(*http.Request, endpointSettings)
}

func newHTTPProvider(name string, settings endpointSettings, client *http.Client, log ports.Logger, adapter providerAdapter) ports.Provider {
	return &httpProvider{
		name:       name,
		settings:   settings,
		httpClient: client,
		log:        log,
		adapter:    adapter,
	}
}

func (p *httpProvider) Name() string {
	return p.name
}

// Complete sends one chat request and returns the first text choice.
func (p *httpProvider) Complete(ctx context.Context, req ports.ProviderRequest) (string, error) {
	body, err := p.adapter.buildRequest(req)
	if err != nil {
		return "", fmt.Errorf("%s: encode request: %w", p.name, err)
	}

	endpoint := p.settings.baseURL + p.adapter.path
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("content-type", "application/json")
	p.adapter.setHeaders(httpReq, p.settings)

	if p.log != nil {
		p.log.Debug("sending model request", map[string]interface{}{
			"provider": p.name,
			"endpoint": endpoint,
			"model":    req.Model,
			"messages": len(req.Messages),
		})
	}

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%s: %w", p.name, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%s: read response: %w", p.name, err)
	}
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("%s: %s: %s", p.name, resp.Status, truncate(strings.TrimSpace(string(payload)), maxErrorBody))
	}

	content, err := p.adapter.parseResponse(payload)
	if err != nil {
		return "", fmt.Errorf("%s: decode response: %w", p.name, err)
	}
	return content, nil
}

func anthropicAdapter() providerAdapter {
	return providerAdapter{
		path:          "/messages",
		buildRequest:  buildAnthropicRequest,
		parseResponse: parseAnthropicResponse,
		setHeaders:    setAnthropicHeaders,
	}
}

func openaiAdapter() providerAdapter {
	return providerAdapter{
		path:          "/chat/completions",
		buildRequest:  buildChatCompletionRequest,
		parseResponse: parseChatCompletionResponse,
		setHeaders:    setBearerHeaders,
	}
}

func ollamaAdapter() providerAdapter {
	return providerAdapter{
		path:          "/chat/completions",
		buildRequest:  buildChatCompletionRequest,
		parseResponse: parseChatCompletionResponse,
		setHeaders:    setOllamaHeaders,
	}
}

func buildAnthropicRequest(req ports.ProviderRequest) ([]byte, error) {
	systemPrompt, chatMessages := splitSystemMessages(req.Messages)

	request := map[string]interface{}{
		"model":       req.Model,
		"max_tokens":  defaultInt(req.MaxTokens, domain.DefaultMaxTokens),
		"temperature": req.Temperature,
		"messages":    chatMessages,
	}
	if systemPrompt != "" {
		request["system"] = systemPrompt
	}
	return json.Marshal(request)
}

func splitSystemMessages(messages []domain.PromptMessage) (string, []map[string]interface{}) {
	var systemLines []string
	chatMessages := make([]map[string]interface{}, 0, len(messages))

	for _, msg := range messages {
		if strings.EqualFold(msg.Role, domain.RoleSystem) {
			systemLines = append(systemLines, msg.Content)
			continue
		}
		chatMessages = append(chatMessages, map[string]interface{}{
			"role": strings.ToLower(msg.Role),
			"content": []map[string]string{
				{"type": "text", "text": msg.Content},
			},
		})
	}
	return strings.TrimSpace(strings.Join(systemLines, "\n")), chatMessages
}

func parseAnthropicResponse(body []byte) (string, error) {
	var response struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return "", err
	}
	for _, block := range response.Content {
		if block.Type == "" || block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", nil
}

func setAnthropicHeaders(req *http.Request, settings endpointSettings) {
	req.Header.Set("x-api-key", settings.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)
}

func buildChatCompletionRequest(req ports.ProviderRequest) ([]byte, error) {
	chatMessages := make([]map[string]string, 0, len(req.Messages))
	for _, msg := range req.Messages {
		chatMessages = append(chatMessages, map[string]string{
			"role":    strings.ToLower(msg.Role),
			"content": msg.Content,
		})
	}

	request := map[string]interface{}{
		"model":       req.Model,
		"messages":    chatMessages,
		"temperature": req.Temperature,
		"stream":      false,
	}
	if req.MaxTokens > 0 {
		request["max_tokens"] = req.MaxTokens
	}
	return json.Marshal(request)
}

func parseChatCompletionResponse(body []byte) (string, error) {
	var response struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return "", err
	}
	if len(response.Choices) == 0 {
		return "", nil
	}
	return response.Choices[0].Message.Content, nil
}

// The key is sent even when empty so the backend reports the auth failure.
func setBearerHeaders(req *http.Request, settings endpointSettings) {
	req.Header.Set("authorization", "Bearer "+settings.apiKey)
}

func setOllamaHeaders(req *http.Request, settings endpointSettings) {
	if settings.apiKey != "" {
		req.Header.Set("authorization", "Bearer "+settings.apiKey)
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

func defaultInt(value, fallback int) int {
	if value <= 0 {
		return fallback
	}
	return value
}
