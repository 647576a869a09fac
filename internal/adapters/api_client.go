package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"appstore-submit/internal/ports"
	"appstore-submit/internal/shared"
	"appstore-submit/internal/types"
)

const DefaultBaseURL = "https://api.appstoreconnect.apple.com/v1"

const (
	defaultRequestTimeout = 30 * time.Second
	defaultRetries        = 3
	defaultRetryDelay     = 5 * time.Second
	defaultRateLimitWait  = 60 * time.Second
)

type APIClientConfig struct {
	BaseURL       string
	Tokens        ports.TokenIssuerPort
	TimeoutSec    int
	Retries       int
	RetryDelaySec int
}

// APIClientAdapter talks JSON:API to App Store Connect. Every request
// carries a freshly minted bearer token. Rate limiting (429) re-issues
// the same request after the server-advertised wait without spending a
// retry; other failures retry with linearly increasing backoff until
// the budget is exhausted.
type APIClientAdapter struct {
	baseURL    string
	tokens     ports.TokenIssuerPort
	httpClient *http.Client
	retries    int
	retryDelay time.Duration
	sleep      func(context.Context, time.Duration) error
}

func NewAPIClientAdapter(cfg APIClientConfig) *APIClientAdapter {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := time.Duration(cfg.TimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	retries := cfg.Retries
	if retries <= 0 {
		retries = defaultRetries
	}
	retryDelay := time.Duration(cfg.RetryDelaySec) * time.Second
	if retryDelay <= 0 {
		retryDelay = defaultRetryDelay
	}
	return &APIClientAdapter{
		baseURL:    baseURL,
		tokens:     cfg.Tokens,
		httpClient: &http.Client{Timeout: timeout},
		retries:    retries,
		retryDelay: retryDelay,
		sleep:      shared.Sleep,
	}
}

func (a *APIClientAdapter) Get(ctx context.Context, path string) (types.Payload, error) {
	return a.send(ctx, http.MethodGet, path, nil)
}

func (a *APIClientAdapter) Post(ctx context.Context, path string, body types.RequestBody) (types.Payload, error) {
	encoded, err := encodeBody(body)
	if err != nil {
		return types.Payload{}, err
	}
	return a.send(ctx, http.MethodPost, path, encoded)
}

func (a *APIClientAdapter) Patch(ctx context.Context, path string, body types.RequestBody) (types.Payload, error) {
	encoded, err := encodeBody(body)
	if err != nil {
		return types.Payload{}, err
	}
	return a.send(ctx, http.MethodPatch, path, encoded)
}

func (a *APIClientAdapter) send(ctx context.Context, method string, path string, body []byte) (types.Payload, error) {
	url := a.baseURL + path
	var lastErr error
	for attempt := 0; attempt < a.retries; {
		payload, res, err := a.sendOnce(ctx, method, url, body)
		if res.rateLimited {
			log.Ctx(ctx).Warn().
				Str("method", method).
				Str("url", url).
				Dur("wait", res.rateLimitWait).
				Msg("rate limited")
			if sleepErr := a.sleep(ctx, res.rateLimitWait); sleepErr != nil {
				return types.Payload{}, sleepErr
			}
			continue
		}
		if err == nil {
			return payload, nil
		}
		lastErr = err
		if !res.retryable {
			return types.Payload{}, err
		}
		attempt++
		if attempt == a.retries {
			break
		}
		delay := a.retryDelay * time.Duration(attempt)
		log.Ctx(ctx).Warn().
			Str("method", method).
			Str("url", url).
			Int("attempt", attempt+1).
			Int("retries", a.retries).
			Dur("delay", delay).
			Msg("retrying request")
		if sleepErr := a.sleep(ctx, delay); sleepErr != nil {
			return types.Payload{}, sleepErr
		}
	}
	return types.Payload{}, lastErr
}

type sendResult struct {
	retryable     bool
	rateLimited   bool
	rateLimitWait time.Duration
}

func (a *APIClientAdapter) sendOnce(ctx context.Context, method string, url string, body []byte) (types.Payload, sendResult, error) {
	token, err := a.tokens.Issue()
	if err != nil {
		return types.Payload{}, sendResult{}, err
	}
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return types.Payload{}, sendResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create api request").
			WithCause(err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return types.Payload{}, sendResult{}, ctx.Err()
		}
		return types.Payload{}, sendResult{retryable: true}, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("api request failed").
			WithCause(err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)

	if resp.StatusCode == http.StatusTooManyRequests {
		return types.Payload{}, sendResult{
			rateLimited:   true,
			rateLimitWait: retryAfterWait(resp.Header.Get("Retry-After")),
		}, nil
	}
	if resp.StatusCode >= 400 {
		var failure types.Payload
		_ = json.Unmarshal(raw, &failure)
		detail := types.ErrorDetail(failure.Errors)
		log.Ctx(ctx).Warn().
			Int("status", resp.StatusCode).
			Str("detail", detail).
			Msg("api error")
		return types.Payload{}, sendResult{retryable: true}, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("api request failed").
			WithCause(shared.HTTPStatusErrorWithBody(resp.StatusCode, url, detail))
	}

	var payload types.Payload
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, &payload); err != nil {
			return types.Payload{}, sendResult{}, errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to parse api response").
				WithCause(err)
		}
	}
	return payload, sendResult{}, nil
}

// retryAfterWait honors the server-advertised wait, defaulting to 60s
// when the header is absent or unparseable.
func retryAfterWait(header string) time.Duration {
	trimmed := strings.TrimSpace(header)
	if trimmed == "" {
		return defaultRateLimitWait
	}
	seconds, err := strconv.Atoi(trimmed)
	if err != nil || seconds < 0 {
		return defaultRateLimitWait
	}
	return time.Duration(seconds) * time.Second
}

func encodeBody(body types.RequestBody) ([]byte, error) {
	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to encode request body").
			WithCause(err)
	}
	return encoded, nil
}

var _ ports.ReleaseAPIPort = (*APIClientAdapter)(nil)
