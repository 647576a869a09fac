package core

import (
	"context"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"appstore-submit/internal/ports"
	"appstore-submit/internal/types"
)

// ReleaseAssembler links the processed build to a version and fans the
// release notes out across every localization of that version.
type ReleaseAssembler struct {
	API ports.ReleaseAPIPort
}

// LinkBuild associates the build with the version. A version cannot be
// submitted without a linked, valid build, so failure here is fatal to
// the run.
func (r ReleaseAssembler) LinkBuild(ctx context.Context, versionID string, buildID string) error {
	body := types.RequestBody{Data: types.RequestResource{
		Type: types.ResourceAppStoreVersions,
		ID:   versionID,
		Relationships: map[string]types.Relationship{
			"build": {Data: types.ResourceRef{Type: types.ResourceBuilds, ID: buildID}},
		},
	}}
	if _, err := r.API.Patch(ctx, "/appStoreVersions/"+versionID, body); err != nil {
		return err
	}
	log.Ctx(ctx).Info().
		Str("version_id", versionID).
		Str("build_id", buildID).
		Msg("build linked to version")
	return nil
}

type NotesResult struct {
	Updated int
	Total   int
}

// ApplyReleaseNotes updates the whats-new text of every localization,
// sequentially. One successful locale is enough to continue the run;
// zero successes, or a version with no localizations, is a hard
// failure.
func (r ReleaseAssembler) ApplyReleaseNotes(ctx context.Context, versionID string, notes string) (NotesResult, error) {
	payload, err := r.API.Get(ctx, "/appStoreVersions/"+versionID+"/appStoreVersionLocalizations")
	if err != nil {
		return NotesResult{}, err
	}
	if len(payload.Data) == 0 {
		return NotesResult{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("version has no localizations")
	}

	result := NotesResult{Total: len(payload.Data)}
	for _, loc := range payload.Data {
		locale := loc.StringAttr("locale")
		if locale == "" {
			locale = loc.ID
		}
		body := types.RequestBody{Data: types.RequestResource{
			Type:       types.ResourceVersionLocalizations,
			ID:         loc.ID,
			Attributes: map[string]any{"whatsNew": notes},
		}}
		if _, err := r.API.Patch(ctx, "/appStoreVersionLocalizations/"+loc.ID, body); err != nil {
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			log.Ctx(ctx).Warn().Str("locale", locale).Err(err).Msg("failed to update release notes")
			continue
		}
		log.Ctx(ctx).Info().Str("locale", locale).Msg("release notes updated")
		result.Updated++
	}

	if result.Updated == 0 {
		return result, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("release notes were not applied to any localization")
	}
	if result.Updated < result.Total {
		log.Ctx(ctx).Warn().
			Int("updated", result.Updated).
			Int("total", result.Total).
			Msg("release notes applied to some localizations only")
	}
	return result, nil
}
