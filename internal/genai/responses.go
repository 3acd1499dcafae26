package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"hearth/internal/observability"

	"github.com/cenkalti/backoff/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

const defaultMaxTries = 3

// Config configures a Responses API client.
type Config struct {
	// Endpoint is the API base URL, e.g. https://api.openai.com/v1.
	Endpoint   string
	APIKey     string
	Model      string
	HTTPClient *http.Client
	MaxTries   uint
	// InitialBackoff is the first retry delay; later delays grow exponentially.
	InitialBackoff time.Duration
}

// Client calls an OpenAI-compatible /responses endpoint.
type Client struct {
	url      string
	apiKey   string
	model    string
	http     *http.Client
	maxTries uint
	initial  time.Duration
}

// New returns a Client, or Disabled when no API key is configured.
func New(cfg Config) (Generator, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return Disabled{}, nil
	}
	return NewClient(cfg)
}

// NewClient validates cfg and builds a Client.
func NewClient(cfg Config) (*Client, error) {
	endpoint := strings.TrimRight(strings.TrimSpace(cfg.Endpoint), "/")
	if endpoint == "" {
		return nil, fmt.Errorf("genai endpoint is required")
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, fmt.Errorf("genai model is required")
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 60 * time.Second}
	}
	tries := cfg.MaxTries
	if tries == 0 {
		tries = defaultMaxTries
	}
	return &Client{
		url:      endpoint + "/responses",
		apiKey:   strings.TrimSpace(cfg.APIKey),
		model:    strings.TrimSpace(cfg.Model),
		http:     hc,
		maxTries: tries,
		initial:  cfg.InitialBackoff,
	}, nil
}

type responsesRequest struct {
	Model string         `json:"model"`
	Input string         `json:"input"`
	Text  *responsesText `json:"text,omitempty"`
}

type responsesText struct {
	Format responsesFormat `json:"format"`
}

type responsesFormat struct {
	Type string `json:"type"`
}

type responsesReply struct {
	OutputText string `json:"output_text"`
	Output     []struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	} `json:"output"`
}

// Generate sends prompt to the model, retrying throttled and server errors.
func (c *Client) Generate(ctx context.Context, prompt string, opts Options) (Result, error) {
	ctx, span := observability.StartServiceSpan(ctx, "genai", "Generate")
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		err := fmt.Errorf("genai prompt is required")
		observability.EndSpan(span, err)
		return Result{}, err
	}

	body := responsesRequest{Model: c.model, Input: prompt}
	if opts.StructuredOutput {
		body.Text = &responsesText{Format: responsesFormat{Type: "json_object"}}
	}
	payload, err := json.Marshal(body)
	if err != nil {
		observability.EndSpan(span, err)
		return Result{}, fmt.Errorf("marshal generate request: %w", err)
	}

	text, err := backoff.Retry(ctx, func() (string, error) {
		return c.invoke(ctx, payload)
	}, backoff.WithBackOff(c.backOff()), backoff.WithMaxTries(c.maxTries))
	if err != nil {
		observability.EndSpan(span, err)
		return Result{}, err
	}

	res := Result{Text: text}
	if opts.StructuredOutput {
		raw := []byte(stripCodeFence(text))
		if !json.Valid(raw) {
			err := fmt.Errorf("generate response is not valid JSON")
			observability.EndSpan(span, err)
			return Result{}, err
		}
		res.JSON = raw
	}
	observability.EndSpan(span, nil)
	return res, nil
}

func (c *Client) backOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	if c.initial > 0 {
		b.InitialInterval = c.initial
	}
	return b
}

func (c *Client) invoke(ctx context.Context, payload []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return "", backoff.Permanent(fmt.Errorf("build generate request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	res, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", backoff.Permanent(err)
		}
		return "", fmt.Errorf("generate request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		statusErr := fmt.Errorf("generate request status %d: %s", res.StatusCode, strings.TrimSpace(string(snippet)))
		if res.StatusCode == http.StatusTooManyRequests || res.StatusCode >= 500 {
			return "", statusErr
		}
		return "", backoff.Permanent(statusErr)
	}

	var reply responsesReply
	if err := json.NewDecoder(res.Body).Decode(&reply); err != nil {
		return "", backoff.Permanent(fmt.Errorf("decode generate response: %w", err))
	}
	text := strings.TrimSpace(reply.OutputText)
	for _, item := range reply.Output {
		if text != "" {
			break
		}
		for _, content := range item.Content {
			if t := strings.TrimSpace(content.Text); t != "" {
				text = t
				break
			}
		}
	}
	if text == "" {
		return "", backoff.Permanent(errors.New("generate response missing output text"))
	}
	return text, nil
}

// stripCodeFence removes a surrounding ```json fence some models add to JSON replies.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
}
