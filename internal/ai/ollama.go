package ai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"studyai/internal/metrics"
)

var ErrEmptyCompletion = errors.New("llm returned no choices")

type OllamaConfig struct {
	// BaseURL is the Ollama host, e.g. http://127.0.0.1:11434. The
	// OpenAI-compatible API lives under /v1.
	BaseURL     string
	Model       string
	VisionModel string
	// Timeout of 0 leaves calls bounded only by the request context.
	Timeout time.Duration
}

// Media is an inline image/video payload for the vision model.
type Media struct {
	MimeType string
	Data     []byte
}

func (m Media) DataURL() string {
	mimeType := m.MimeType
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(m.Data)
}

type OllamaClient struct {
	client      *openai.Client
	model       string
	visionModel string
	metrics     *metrics.Metrics
}

func NewOllamaClient(cfg OllamaConfig) *OllamaClient {
	// Ollama ignores the token but the OpenAI client requires one.
	clientCfg := openai.DefaultConfig("ollama")
	clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/") + "/v1"
	clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	visionModel := cfg.VisionModel
	if visionModel == "" {
		visionModel = cfg.Model
	}
	return &OllamaClient{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		visionModel: visionModel,
		metrics:     metrics.Default(),
	}
}

func (c *OllamaClient) Model() string {
	return c.model
}

// Complete sends prompt as a single user message to the text model.
func (c *OllamaClient) Complete(ctx context.Context, prompt string) (string, error) {
	return c.complete(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
	})
}

// CompleteWithMedia sends prompt plus an inline base64 payload to the vision
// model.
func (c *OllamaClient) CompleteWithMedia(ctx context.Context, prompt string, media Media) (string, error) {
	if len(media.Data) == 0 {
		return "", fmt.Errorf("media payload is empty")
	}
	return c.complete(ctx, openai.ChatCompletionRequest{
		Model: c.visionModel,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: prompt,
					},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL: media.DataURL(),
						},
					},
				},
			},
		},
	})
}

func (c *OllamaClient) complete(ctx context.Context, req openai.ChatCompletionRequest) (string, error) {
	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err == nil && len(resp.Choices) == 0 {
		err = ErrEmptyCompletion
	}
	c.metrics.ObserveLLM(req.Model, time.Since(start), err)
	if err != nil {
		return "", fmt.Errorf("llm request to %s failed: %w", req.Model, err)
	}
	return resp.Choices[0].Message.Content, nil
}
