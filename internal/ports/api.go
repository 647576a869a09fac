package ports

import (
	"context"

	"appstore-submit/internal/types"
)

// ReleaseAPIPort issues authenticated requests against the App Store
// Connect API. Implementations absorb rate limiting and transient
// failures internally; a returned error is final for that call.
type ReleaseAPIPort interface {
	Get(ctx context.Context, path string) (types.Payload, error)
	Post(ctx context.Context, path string, body types.RequestBody) (types.Payload, error)
	Patch(ctx context.Context, path string, body types.RequestBody) (types.Payload, error)
}
