// Package providers implements testgen.CompletionProvider backends: an HTTP
// client against an OpenAI-compatible completions endpoint, and a
// deterministic fixture-backed replay provider for tests.
package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

// HTTPProviderOption is a functional option for configuring an HTTPProvider.
type HTTPProviderOption func(*HTTPProvider)

// WithHTTPLogger sets the logger an HTTPProvider uses to record swallowed
// transport failures. Default: zap.NewNop().
func WithHTTPLogger(logger *zap.Logger) HTTPProviderOption {
	return func(p *HTTPProvider) { p.logger = logger }
}

// WithHTTPClient overrides the *http.Client used to issue requests. Default:
// http.DefaultClient.
func WithHTTPClient(client *http.Client) HTTPProviderOption {
	return func(p *HTTPProvider) { p.client = client }
}

// WithRateLimit bounds the number of requests per second issued to the
// completions endpoint, plus a burst allowance. Default: unlimited.
func WithRateLimit(ratePerSecond float64, burst int) HTTPProviderOption {
	return func(p *HTTPProvider) { p.limiter = rate.NewLimiter(rate.Limit(ratePerSecond), burst) }
}

// WithNumCompletions sets how many candidate completions are requested per
// call. Default: 1.
func WithNumCompletions(n int) HTTPProviderOption {
	return func(p *HTTPProvider) { p.numCompletions = n }
}

// HTTPProvider calls an OpenAI-compatible /completions endpoint. Identical
// concurrent calls (same prompt and temperature) are coalesced via
// singleflight so a burst of refiner-spawned prompts that happen to collide
// before dedup only costs one upstream request.
type HTTPProvider struct {
	endpoint       string
	apiKey         string
	model          string
	numCompletions int

	client  *http.Client
	limiter *rate.Limiter
	logger  *zap.Logger

	group singleflight.Group
}

// NewHTTPProvider builds an HTTPProvider targeting endpoint with the given
// model and API key.
func NewHTTPProvider(endpoint, apiKey, model string, opts ...HTTPProviderOption) *HTTPProvider {
	p := &HTTPProvider{
		endpoint:       endpoint,
		apiKey:         apiKey,
		model:          model,
		numCompletions: 1,
		client:         http.DefaultClient,
		logger:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type completionRequest struct {
	Model       string  `json:"model"`
	Prompt      string  `json:"prompt"`
	Temperature float64 `json:"temperature"`
	N           int     `json:"n"`
}

type completionResponse struct {
	Choices []struct {
		Text string `json:"text"`
	} `json:"choices"`
}

// Complete satisfies testgen.CompletionProvider. Every transport, status,
// and decode failure is logged and swallowed into an empty result — the
// generation loop is never interrupted by a provider outage.
func (p *HTTPProvider) Complete(ctx context.Context, prompt string, temperature float64) (map[string]struct{}, error) {
	key := fmt.Sprintf("%.4f|%s", temperature, prompt)
	result, err, _ := p.group.Do(key, func() (any, error) {
		return p.complete(ctx, prompt, temperature)
	})
	if err != nil {
		p.logger.Warn("completion request failed", zap.Error(err))
		return map[string]struct{}{}, nil
	}
	return result.(map[string]struct{}), nil
}

func (p *HTTPProvider) complete(ctx context.Context, prompt string, temperature float64) (map[string]struct{}, error) {
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	payload, err := json.Marshal(completionRequest{
		Model:       p.model,
		Prompt:      prompt,
		Temperature: temperature,
		N:           p.numCompletions,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("completion endpoint returned %d: %s", resp.StatusCode, body)
	}

	var decoded completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, err
	}

	out := make(map[string]struct{}, len(decoded.Choices))
	for _, choice := range decoded.Choices {
		out[choice.Text] = struct{}{}
	}
	return out, nil
}
