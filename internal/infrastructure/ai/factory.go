// Package ai adapts chat-completion HTTP APIs to ports.Provider.
package ai

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/doeshing/k8sllm/internal/domain"
	"github.com/doeshing/k8sllm/internal/ports"
)

const ollamaCompatPrefix = "/v1"

// Factory builds providers from the llm section of the configuration.
type Factory struct {
	httpClient *http.Client
	log        ports.Logger
}

// NewFactory returns a factory sharing one HTTP client across providers.
func NewFactory(log ports.Logger) *Factory {
	return NewFactoryWithClient(&http.Client{Timeout: domain.DefaultHTTPClientTimeout}, log)
}

// NewFactoryWithClient is used by tests to point providers at an httptest server.
func NewFactoryWithClient(client *http.Client, log ports.Logger) *Factory {
	return &Factory{httpClient: client, log: log}
}

// ForConfig returns the provider selected by llm.provider or inferred from llm.base_url.
func (f *Factory) ForConfig(cfg domain.Config) (ports.Provider, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.LLM.BaseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("llm.base_url is empty")
	}
	settings := endpointSettings{
		baseURL: baseURL,
		apiKey:  cfg.ResolveAPIKey(),
	}

	switch kind := cfg.GetProvider(); kind {
	case domain.ProviderAnthropic:
		return newHTTPProvider(kind, settings, f.httpClient, f.log, anthropicAdapter()), nil
	case domain.ProviderOpenAI:
		return newHTTPProvider(kind, settings, f.httpClient, f.log, openaiAdapter()), nil
	case domain.ProviderOllama:
		settings.baseURL = ollamaBaseURL(baseURL)
		return newHTTPProvider(kind, settings, f.httpClient, f.log, ollamaAdapter()), nil
	default:
		return nil, fmt.Errorf("unsupported provider kind: %s", kind)
	}
}

// ollamaBaseURL points at ollama's OpenAI-compatible API under /v1.
func ollamaBaseURL(baseURL string) string {
	if strings.HasSuffix(baseURL, ollamaCompatPrefix) {
		return baseURL
	}
	return baseURL + ollamaCompatPrefix
}

var _ ports.ProviderFactory = (*Factory)(nil)
