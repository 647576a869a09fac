package core

import (
	"context"
	"fmt"
	"net/url"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"appstore-submit/internal/ports"
	"appstore-submit/internal/types"
)

// VersionManager resolves the App Store version record for a version
// string. An editable record is reused, which lets a re-run fix release
// notes on a version that was prepared but never submitted.
type VersionManager struct {
	API ports.ReleaseAPIPort
}

// VersionResolution distinguishes the three outcomes of GetOrCreate:
// a reused editable version, a freshly created one, and a version that
// is already under or past review. The last case is not a failure.
type VersionResolution struct {
	ID               string
	State            types.AppStoreState
	Created          bool
	AlreadySubmitted bool
}

func (m VersionManager) GetOrCreate(ctx context.Context, appID string, versionString string) (VersionResolution, error) {
	path := fmt.Sprintf("/apps/%s/appStoreVersions?filter[platform]=%s&filter[versionString]=%s",
		appID, types.PlatformIOS, url.QueryEscape(versionString))
	payload, err := m.API.Get(ctx, path)
	if err != nil {
		return VersionResolution{}, err
	}
	if existing, ok := payload.First(); ok {
		state := types.AppStoreState(existing.StringAttr("appStoreState"))
		log.Ctx(ctx).Info().
			Str("version", versionString).
			Str("state", string(state)).
			Msg("found existing version")
		if state.Submitted() {
			return VersionResolution{ID: existing.ID, State: state, AlreadySubmitted: true}, nil
		}
		return VersionResolution{ID: existing.ID, State: state}, nil
	}

	log.Ctx(ctx).Info().Str("version", versionString).Msg("creating version")
	body := types.RequestBody{Data: types.RequestResource{
		Type: types.ResourceAppStoreVersions,
		Attributes: map[string]any{
			"platform":      string(types.PlatformIOS),
			"versionString": versionString,
		},
		Relationships: map[string]types.Relationship{
			"app": {Data: types.ResourceRef{Type: types.ResourceApps, ID: appID}},
		},
	}}
	created, err := m.API.Post(ctx, "/appStoreVersions", body)
	if err != nil {
		return VersionResolution{}, err
	}
	resource, ok := created.First()
	if !ok {
		return VersionResolution{}, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("version creation returned no resource")
	}
	return VersionResolution{ID: resource.ID, Created: true}, nil
}
