package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultEndpoint is the hosted text-generation model both generators call.
	DefaultEndpoint = "https://api-inference.huggingface.co/models/Qwen/Qwen2-7B-Instruct"

	// DefaultTimeout bounds the single remote attempt.
	DefaultTimeout = 30 * time.Second

	// Fixed sampling parameters.
	Temperature = 0.7
	TopP        = 0.9

	// maxErrorBody caps how much of a failed response body is kept for logs.
	maxErrorBody = 512
)

// Request is one generation request.
type Request struct {
	Prompt       string
	MaxNewTokens int
}

// Generator issues a single generation attempt and never returns an error:
// every failure is reported through the Outcome tag.
type Generator interface {
	Generate(ctx context.Context, req Request) Outcome
}

// Options configures a Client. The token is supplied by the caller at
// composition time; the client never reads ambient configuration.
type Options struct {
	Endpoint   string
	Token      string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client calls a hosted text-generation endpoint.
type Client struct {
	endpoint   string
	token      string
	httpClient *http.Client
}

// NewClient constructs a Client, applying defaults for empty options.
func NewClient(opts Options) *Client {
	endpoint := strings.TrimSpace(opts.Endpoint)
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		endpoint:   endpoint,
		token:      opts.Token,
		httpClient: httpClient,
	}
}

type generateParameters struct {
	MaxNewTokens   int     `json:"max_new_tokens"`
	Temperature    float64 `json:"temperature"`
	TopP           float64 `json:"top_p"`
	ReturnFullText bool    `json:"return_full_text"`
}

type generateRequest struct {
	Inputs     string             `json:"inputs"`
	Parameters generateParameters `json:"parameters"`
}

type generatedItem struct {
	GeneratedText *string `json:"generated_text"`
}

// Generate performs exactly one POST. There is no retry.
func (c *Client) Generate(ctx context.Context, req Request) Outcome {
	body, err := json.Marshal(generateRequest{
		Inputs: req.Prompt,
		Parameters: generateParameters{
			MaxNewTokens:   req.MaxNewTokens,
			Temperature:    Temperature,
			TopP:           TopP,
			ReturnFullText: false,
		},
	})
	if err != nil {
		return Failed(MalformedResponse, "marshal request: %v", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return Failed(TransportFailure, "build request: %v", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return Failed(TransportFailure, "%v", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Failed(TransportFailure, "read body: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		return Failed(MalformedResponse, "status %d: %s", resp.StatusCode, truncate(string(data), maxErrorBody))
	}

	return parseGenerated(data)
}

// parseGenerated extracts generated_text from a JSON array body.
// Any other shape is a malformed response.
func parseGenerated(data []byte) Outcome {
	var items []generatedItem
	if err := json.Unmarshal(data, &items); err != nil {
		return Failed(MalformedResponse, "decode body: %v", err)
	}
	if len(items) == 0 {
		return Failed(MalformedResponse, "empty result list")
	}
	if items[0].GeneratedText == nil {
		return Failed(MalformedResponse, "missing generated_text")
	}
	return Succeeded(strings.TrimSpace(*items[0].GeneratedText))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// String identifies the endpoint for logs.
func (c *Client) String() string {
	return fmt.Sprintf("inference(%s)", c.endpoint)
}
