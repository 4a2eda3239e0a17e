package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/hyperifyio/devsearch/internal/browser"
	"github.com/hyperifyio/devsearch/internal/budget"
	"github.com/hyperifyio/devsearch/internal/cache"
)

// Client is the slice of the OpenAI API the summarizer needs, so tests and
// other OpenAI-compatible backends can stand in.
type Client interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// NewOpenAIClient builds a client for an OpenAI-compatible endpoint.
func NewOpenAIClient(baseURL, apiKey string, hc *http.Client) *openai.Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if hc != nil {
		cfg.HTTPClient = hc
	}
	return openai.NewClientWithConfig(cfg)
}

// DefaultMaxInputChars bounds how much page text is sent to the model.
const DefaultMaxInputChars = 12000

// replyTokens is reserved for the summary itself.
const replyTokens = 512

const systemPrompt = "You summarize web pages for a programmer who is deciding whether to read them. " +
	"Reply in Markdown with at most five short bullet points. Keep code identifiers verbatim."

// ErrEmptyPage is returned when a page has no text to summarize.
var ErrEmptyPage = errors.New("page has no readable text")

// Summarizer produces short summaries of rendered pages.
type Summarizer struct {
	Client        Client
	Model         string
	MaxInputChars int
	// Cache is optional.
	Cache *cache.SummaryCache
}

// Summarize returns a Markdown summary of p.
func (s *Summarizer) Summarize(ctx context.Context, p browser.Page) (string, error) {
	text := strings.TrimSpace(p.Markdown)
	if text == "" {
		return "", ErrEmptyPage
	}
	if cached, ok := s.Cache.Get(s.Model, p.URL); ok {
		return cached, nil
	}
	limit := s.MaxInputChars
	if limit <= 0 {
		limit = min(DefaultMaxInputChars, budget.InputChars(s.Model, replyTokens, systemPrompt))
	}
	if limit <= 0 {
		return "", fmt.Errorf("summarize %s: model %q has no room for page text", p.URL, s.Model)
	}
	if r := []rune(text); len(r) > limit {
		text = string(r[:limit])
	}
	resp, err := s.Client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf("Title: %s\nURL: %s\n\n%s", p.Title, p.URL, text)},
		},
		Temperature: 0.2,
		MaxTokens:   replyTokens,
	})
	if err != nil {
		return "", fmt.Errorf("summarize %s: %w", p.URL, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("summarize %s: model returned no choices", p.URL)
	}
	out := strings.TrimSpace(resp.Choices[0].Message.Content)
	if s.Cache != nil && out != "" {
		_ = s.Cache.Put(s.Model, p.URL, out)
	}
	return out, nil
}
