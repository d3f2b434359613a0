package llmclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Backend names the two supported chat-completions servers.
type Backend string

const (
	BackendLlamaCpp Backend = "llamacpp"
	BackendProvider Backend = "provider"
)

// DefaultTimeout applies when a caller does not configure one.
const DefaultTimeout = 120 * time.Second

// ChatCompletionsClient talks to an OpenAI-compatible /chat/completions endpoint.
// The two backends differ only in URL shape and whether a bearer token is mandatory.
type ChatCompletionsClient struct {
	http    *http.Client
	backend Backend
	url     string
	apiKey  string
	model   string
}

// LlamaCppConfig is the local llama.cpp server section.
type LlamaCppConfig struct {
	BaseURL string
	Model   string
	APIKey  string
	Timeout time.Duration
}

// ProviderConfig is the hosted provider section. APIKey is required.
type ProviderConfig struct {
	BaseURL string
	ModelID string
	APIKey  string
	Timeout time.Duration
}

// NewLlamaCppClient posts to <base>/v1/chat/completions. The bearer header is
// only sent when an API key is configured.
func NewLlamaCppClient(cfg LlamaCppConfig) (*ChatCompletionsClient, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, errors.New("llamacpp: base url is required")
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, errors.New("llamacpp: model is required")
	}
	return &ChatCompletionsClient{
		http:    &http.Client{Timeout: timeoutOrDefault(cfg.Timeout)},
		backend: BackendLlamaCpp,
		url:     base + "/v1/chat/completions",
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
	}, nil
}

// NewProviderClient posts to <base>/chat/completions with a bearer token.
func NewProviderClient(cfg ProviderConfig) (*ChatCompletionsClient, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, errors.New("provider: base url is required")
	}
	if strings.TrimSpace(cfg.ModelID) == "" {
		return nil, errors.New("provider: model id is required")
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("provider: api key is required")
	}
	return &ChatCompletionsClient{
		http:    &http.Client{Timeout: timeoutOrDefault(cfg.Timeout)},
		backend: BackendProvider,
		url:     base + "/chat/completions",
		apiKey:  cfg.APIKey,
		model:   cfg.ModelID,
	}, nil
}

func timeoutOrDefault(d time.Duration) time.Duration {
	if d <= 0 {
		return DefaultTimeout
	}
	return d
}

func (c *ChatCompletionsClient) Name() string     { return string(c.backend) + ":" + c.model }
func (c *ChatCompletionsClient) Close() error     { return nil }
func (c *ChatCompletionsClient) Backend() Backend { return c.backend }
func (c *ChatCompletionsClient) URL() string      { return c.url }

type chatReq struct {
	Model       string    `json:"model"`
	Temperature float64   `json:"temperature"`
	Messages    []Message `json:"messages"`
}

type chatResp struct {
	Choices []struct {
		Message struct {
			Content *string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete sends one request. It never retries; every failure comes back as
// an *UpstreamError.
func (c *ChatCompletionsClient) Complete(ctx context.Context, messages []Message, temperature float64) (string, error) {
	b, err := json.Marshal(chatReq{Model: c.model, Temperature: temperature, Messages: messages})
	if err != nil {
		return "", fmt.Errorf("%s: encode request: %w", c.backend, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(b))
	if err != nil {
		return "", fmt.Errorf("%s: build request: %w", c.backend, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", c.fail(classifyTransport(err), 0, "", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", c.fail(classifyTransport(err), resp.StatusCode, "", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		text := truncateBody(body)
		if strings.TrimSpace(text) == "" {
			text = http.StatusText(resp.StatusCode)
		}
		return "", c.fail(KindBadStatus, resp.StatusCode, text, nil)
	}

	var out chatResp
	if err := json.Unmarshal(body, &out); err != nil {
		return "", c.fail(KindMalformedResponse, resp.StatusCode, truncateBody(body), err)
	}
	if len(out.Choices) == 0 || out.Choices[0].Message.Content == nil {
		return "", c.fail(KindEmptyContent, resp.StatusCode, "", nil)
	}
	content := *out.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return "", c.fail(KindEmptyContent, resp.StatusCode, "", nil)
	}
	return content, nil
}

func (c *ChatCompletionsClient) fail(kind ErrorKind, status int, body string, err error) error {
	return &UpstreamError{
		Backend:    string(c.backend),
		URL:        c.url,
		Kind:       kind,
		StatusCode: status,
		Body:       body,
		Err:        err,
	}
}

func classifyTransport(err error) ErrorKind {
	if errors.Is(err, context.Canceled) {
		return KindCanceled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return KindTimeout
	}
	return KindUnreachable
}
