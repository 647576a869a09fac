package adapters

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"appstore-submit/internal/ports"
	"appstore-submit/internal/types"
)

const dryRunIDPrefix = "dry-run"

// DryRunClientAdapter previews a run without remote side effects. Reads
// pass through to the wrapped client; mutating calls are logged and
// answered with a placeholder resource. Reads that reference an
// identifier produced by a skipped mutation are synthesized as well,
// so the control flow of a real run still executes end to end.
type DryRunClientAdapter struct {
	next ports.ReleaseAPIPort
}

func NewDryRunClientAdapter(next ports.ReleaseAPIPort) DryRunClientAdapter {
	return DryRunClientAdapter{next: next}
}

func (a DryRunClientAdapter) Get(ctx context.Context, path string) (types.Payload, error) {
	if strings.Contains(path, dryRunIDPrefix) {
		log.Ctx(ctx).Info().Str("path", path).Msg("dry run: synthesizing read of placeholder resource")
		return types.Payload{Data: []types.Resource{{ID: dryRunIDPrefix}}}, nil
	}
	return a.next.Get(ctx, path)
}

func (a DryRunClientAdapter) Post(ctx context.Context, path string, body types.RequestBody) (types.Payload, error) {
	return a.skip(ctx, http.MethodPost, path, body)
}

func (a DryRunClientAdapter) Patch(ctx context.Context, path string, body types.RequestBody) (types.Payload, error) {
	return a.skip(ctx, http.MethodPatch, path, body)
}

func (a DryRunClientAdapter) skip(ctx context.Context, method string, path string, body types.RequestBody) (types.Payload, error) {
	log.Ctx(ctx).Info().
		Str("method", method).
		Str("path", path).
		Str("type", body.Data.Type).
		Msg("dry run: skipping mutating call")
	id := body.Data.ID
	if id == "" {
		id = dryRunIDPrefix + "-" + body.Data.Type
	}
	return types.Payload{Data: []types.Resource{{Type: body.Data.Type, ID: id}}}, nil
}

var _ ports.ReleaseAPIPort = DryRunClientAdapter{}
