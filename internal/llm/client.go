// Package llm builds the chat-completions client shared by the agent engine
// and the metric judge.
package llm

//go:generate go tool mockgen -source=client.go -destination=mock_client.go -package=llm -write_package_comment=false

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/azure"
	"github.com/openai/openai-go/option"
)

// Supported providers.
const (
	ProviderOpenAI = "openai"
	ProviderAzure  = "azure"

	DefaultAzureAPIVersion = "2024-10-21"
)

// ChatClient is just an interface over [openai.ChatCompletionService].
type ChatClient interface {
	// New maps to [openai.ChatCompletionService.New]
	New(ctx context.Context, body openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

// EndpointConfig selects and authenticates the chat-completions backend.
type EndpointConfig struct {
	Provider   string
	BaseURL    string
	APIKey     string
	APIVersion string
	// UseAzureCredential authenticates Azure OpenAI with the default Azure
	// credential chain instead of an API key.
	UseAzureCredential bool
	Timeout            time.Duration
}

// NewChatClient returns a client for cfg.
func NewChatClient(cfg EndpointConfig) (ChatClient, error) {
	httpClient := &http.Client{Timeout: cfg.Timeout}
	opts := []option.RequestOption{option.WithHTTPClient(httpClient)}

	switch strings.ToLower(cfg.Provider) {
	case "", ProviderOpenAI:
		if cfg.APIKey != "" {
			opts = append(opts, option.WithAPIKey(cfg.APIKey))
		}
		if cfg.BaseURL != "" {
			opts = append(opts, option.WithBaseURL(cfg.BaseURL))
		}
	case ProviderAzure:
		if cfg.BaseURL == "" {
			return nil, errors.New("azure endpoint is required for the azure provider")
		}
		version := cfg.APIVersion
		if version == "" {
			version = DefaultAzureAPIVersion
		}
		opts = append(opts, azure.WithEndpoint(cfg.BaseURL, version))
		if cfg.UseAzureCredential || cfg.APIKey == "" {
			cred, err := azidentity.NewDefaultAzureCredential(nil)
			if err != nil {
				return nil, fmt.Errorf("creating azure credential: %w", err)
			}
			opts = append(opts, azure.WithTokenCredential(cred))
		} else {
			opts = append(opts, azure.WithAPIKey(cfg.APIKey))
		}
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}

	client := openai.NewClient(opts...)
	return &client.Chat.Completions, nil
}

// FirstChoice returns the first choice of a completion.
func FirstChoice(completion *openai.ChatCompletion) (openai.ChatCompletionChoice, error) {
	if completion == nil || len(completion.Choices) == 0 {
		return openai.ChatCompletionChoice{}, errors.New("completion returned no choices")
	}
	return completion.Choices[0], nil
}
