package app

import (
	"context"
	"strings"
	"time"

	"appstore-submit/internal/adapters"
	"appstore-submit/internal/ports"
	"appstore-submit/internal/shared"
)

// DefaultReleaseNotes is applied when no whats-new text is configured.
const DefaultReleaseNotes = "Bug fixes and improvements."

type Service struct {
	NewClient func(SubmitRequest) (ports.ReleaseAPIPort, error)
	Bundle    ports.BundleIDPort
	Clock     func() time.Time
	Sleep     func(context.Context, time.Duration) error
}

func NewService() Service {
	return Service{
		NewClient: newReleaseClient,
		Bundle:    adapters.NewBundleIDAdapter(),
		Clock:     time.Now,
		Sleep:     shared.Sleep,
	}
}

func newReleaseClient(req SubmitRequest) (ports.ReleaseAPIPort, error) {
	keyPath := strings.TrimSpace(req.KeyPath)
	if keyPath == "" {
		keyPath = adapters.DefaultKeyPath(req.KeyID)
	}
	tokens, err := adapters.NewTokenIssuerAdapter(req.KeyID, req.IssuerID, keyPath)
	if err != nil {
		return nil, err
	}
	return adapters.NewAPIClientAdapter(adapters.APIClientConfig{
		BaseURL:       req.BaseURL,
		Tokens:        tokens,
		TimeoutSec:    req.TimeoutSec,
		Retries:       req.Retries,
		RetryDelaySec: req.RetryDelaySec,
	}), nil
}
