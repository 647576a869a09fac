// Package core implements the release orchestration steps: locating the
// application, waiting out build processing, resolving the version
// record, assembling the release, and driving the review submission.
// All remote identifiers are opaque and flow forward from one step to
// the next; nothing here fabricates or re-derives an id.
package core

import (
	"context"
	"fmt"
	"net/url"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"appstore-submit/internal/ports"
)

type AppFinder struct {
	API ports.ReleaseAPIPort
}

type AppRecord struct {
	ID       string
	BundleID string
	Name     string
}

// FindByBundleID looks the application up once per run.
func (f AppFinder) FindByBundleID(ctx context.Context, bundleID string) (AppRecord, error) {
	payload, err := f.API.Get(ctx, "/apps?filter[bundleId]="+url.QueryEscape(bundleID))
	if err != nil {
		return AppRecord{}, err
	}
	resource, ok := payload.First()
	if !ok {
		return AppRecord{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg(fmt.Sprintf("app not found for bundle id %s: check that the app exists in App Store Connect", bundleID))
	}
	record := AppRecord{ID: resource.ID, BundleID: bundleID, Name: resource.StringAttr("name")}
	log.Ctx(ctx).Info().Str("app", record.Name).Str("app_id", record.ID).Msg("app found")
	return record, nil
}
