// Package llm writes articles from feed candidates with an OpenAI-compatible chat completion API
package llm

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/sashabaranov/go-openai"

	"github.com/umputun/newsmith/pkg/domain"
)

// ErrGeneration is returned when the model call fails or produces nothing usable
var ErrGeneration = errors.New("article generation failed")

const sourceExcerptLimit = 1500

const systemPrompt = "You are a careful writer. Write in English only. Do not fabricate facts. " +
	"If something is not stated in the source, say: 'Not stated in the source.'"

var (
	outputRe = regexp.MustCompile(`(?is)^\s*TITLE:\s*(.+?)\s*\n\s*\n(.*)$`)
	scriptRe = regexp.MustCompile(`(?is)<\s*script\b`)
)

// WriterParams configures Writer
type WriterParams struct {
	Endpoint    string
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// Writer turns a feed candidate into a titled HTML article
type Writer struct {
	client *openai.Client
	params WriterParams
}

// NewWriter creates a new article writer
func NewWriter(params WriterParams) *Writer {
	clientConfig := openai.DefaultConfig(params.APIKey)
	if params.Endpoint != "" {
		clientConfig.BaseURL = strings.TrimRight(params.Endpoint, "/")
	}
	clientConfig.HTTPClient = &http.Client{Timeout: params.Timeout}

	return &Writer{
		client: openai.NewClientWithConfig(clientConfig),
		params: params,
	}
}

// Write asks the model for an article about the candidate and returns its title and sanitized body
func (w *Writer) Write(ctx context.Context, candidate domain.FeedItem) (title, body string, err error) {
	temperature := float32(w.params.Temperature)
	if temperature == 0 {
		// omitempty drops zero from the request, the server default would apply
		temperature = math.SmallestNonzeroFloat32
	}
	req := openai.ChatCompletionRequest{
		Model:       w.params.Model,
		Temperature: temperature,
		MaxTokens:   w.params.MaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildPrompt(candidate)},
		},
	}

	lgr.Printf("[DEBUG] requesting article for %q from %s", candidate.Title, w.params.Model)
	resp, err := w.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", "", fmt.Errorf("%w: %w", ErrGeneration, err)
	}
	if len(resp.Choices) == 0 {
		return "", "", fmt.Errorf("%w: no response from llm", ErrGeneration)
	}

	out := strings.TrimSpace(resp.Choices[0].Message.Content)
	fallbackTitle := strings.TrimSpace(candidate.Title)
	if out == "" && fallbackTitle == "" {
		return "", "", fmt.Errorf("%w: empty completion and no candidate title", ErrGeneration)
	}

	title, body = ParseOutput(out, fallbackTitle)
	lgr.Printf("[DEBUG] generated %q, %d bytes of html, tokens used: %d", title, len(body), resp.Usage.TotalTokens)
	return title, body, nil
}

// ParseOutput splits model output into title and body. The expected shape is a "TITLE: ..." line,
// a blank line and the html body. Anything else is treated as body with fallbackTitle as the title.
// The body is always passed through SanitizeHTML.
func ParseOutput(out, fallbackTitle string) (title, body string) {
	out = strings.TrimSpace(out)
	if m := outputRe.FindStringSubmatch(out); m != nil {
		return strings.TrimSpace(m[1]), SanitizeHTML(strings.TrimSpace(m[2]))
	}
	return fallbackTitle, SanitizeHTML(out)
}

// SanitizeHTML neutralizes script tag openers and leaves everything else untouched
func SanitizeHTML(body string) string {
	return scriptRe.ReplaceAllString(body, "&lt;script")
}

// buildPrompt creates the user prompt with output rules, the candidate and the required article structure
func buildPrompt(c domain.FeedItem) string {
	var sb strings.Builder
	sb.WriteString("OUTPUT RULES:\n")
	sb.WriteString("- First line MUST be: TITLE: <your best SEO-friendly title>\n")
	sb.WriteString("- Second line MUST be empty.\n")
	sb.WriteString("- From the third line, output the HTML body only.\n")
	sb.WriteString("- Allowed tags: <p>, <h2>, <ul>, <li>, <strong>, <code>, <a>\n")
	sb.WriteString("- Do NOT output <h1>.\n\n")

	sb.WriteString("INPUT:\n")
	sb.WriteString(fmt.Sprintf("Post title: %s\n", strings.TrimSpace(c.Title)))
	sb.WriteString(fmt.Sprintf("Permalink: %s\n", strings.TrimSpace(c.Link)))
	sb.WriteString(fmt.Sprintf("RSS summary snippet: %s\n", strings.TrimSpace(c.Summary)))
	if text := strings.TrimSpace(c.SourceText); text != "" {
		if r := []rune(text); len(r) > sourceExcerptLimit {
			text = string(r[:sourceExcerptLimit]) + "..."
		}
		sb.WriteString(fmt.Sprintf("Source page excerpt: %s\n", text))
	}

	sb.WriteString("\nSTRUCTURE:\n")
	sb.WriteString("1) <p><strong>[SUMMARY]</strong>: 2 lines.</p>\n")
	sb.WriteString("2) <h2>What happened</h2> (2–4 short paragraphs)\n")
	sb.WriteString("3) <h2>Why people care</h2> (2–4 short paragraphs)\n")
	sb.WriteString("4) <h2>Practical takeaways</h2> (5 bullet points)\n")
	sb.WriteString("5) <h2>Source</h2> Link to the original post")
	return sb.String()
}
