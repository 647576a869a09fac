package core

import (
	"context"
	"fmt"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"appstore-submit/internal/ports"
	"appstore-submit/internal/shared"
	"appstore-submit/internal/types"
)

const (
	defaultMaxBuildWait = 60 * time.Minute
	// Upload-to-visibility latency is short, so poll quickly until the
	// build shows up, then back off while it processes.
	searchPollInterval = 5 * time.Second
	trackPollInterval  = 30 * time.Second
	buildBatchSize     = 5
)

// BuildWaiter polls uploaded builds until the target build reaches a
// terminal processing state or the wall-clock budget runs out. State
// lives entirely on the remote side; a timed-out wait can simply be
// re-run later.
type BuildWaiter struct {
	API     ports.ReleaseAPIPort
	MaxWait time.Duration
	Clock   func() time.Time
	Sleep   func(context.Context, time.Duration) error
}

func NewBuildWaiter(api ports.ReleaseAPIPort, maxWait time.Duration) BuildWaiter {
	if maxWait <= 0 {
		maxWait = defaultMaxBuildWait
	}
	return BuildWaiter{API: api, MaxWait: maxWait, Clock: time.Now, Sleep: shared.Sleep}
}

// Wait returns the id of the processed build. With expectedBuild set it
// tracks that exact build number; otherwise it follows the newest
// upload.
func (w BuildWaiter) Wait(ctx context.Context, appID string, expectedBuild string) (string, error) {
	start := w.Clock()
	var lastState types.ProcessingState
	var lastBuild string
	for {
		payload, err := w.API.Get(ctx, fmt.Sprintf("/builds?filter[app]=%s&sort=-uploadedDate&limit=%d", appID, buildBatchSize))
		if err != nil {
			return "", err
		}
		if len(payload.Data) == 0 {
			return "", errbuilder.New().
				WithCode(errbuilder.CodeNotFound).
				WithMsg("no builds found: upload the build before submitting")
		}

		target, found := w.pickBuild(payload.Data, expectedBuild)
		if !found {
			if w.expired(start) {
				return "", timeoutError(fmt.Sprintf("build %s never appeared within %s: check that the upload succeeded", expectedBuild, w.MaxWait))
			}
			if err := w.Sleep(ctx, searchPollInterval); err != nil {
				return "", err
			}
			continue
		}

		state := types.ProcessingState(target.StringAttr("processingState"))
		if state == "" {
			state = types.ProcessingStateUnknown
		}
		build := target.StringAttr("version")
		// Report progress only on change to avoid log spam during long
		// processing windows.
		if state != lastState || build != lastBuild {
			log.Ctx(ctx).Info().Str("build", build).Str("state", string(state)).Msg("build processing")
			lastState, lastBuild = state, build
		}

		switch state {
		case types.ProcessingStateValid:
			return target.ID, nil
		case types.ProcessingStateInvalid:
			return "", errbuilder.New().
				WithCode(errbuilder.CodeFailedPrecondition).
				WithMsg(fmt.Sprintf("build %s failed processing: check App Store Connect for details", build))
		}

		if w.expired(start) {
			return "", timeoutError(fmt.Sprintf("build %s is still processing after %s: re-run once processing completes", build, w.MaxWait))
		}
		if err := w.Sleep(ctx, trackPollInterval); err != nil {
			return "", err
		}
	}
}

func (w BuildWaiter) pickBuild(builds []types.Resource, expectedBuild string) (types.Resource, bool) {
	if expectedBuild == "" {
		return builds[0], true
	}
	for _, build := range builds {
		if build.StringAttr("version") == expectedBuild {
			return build, true
		}
	}
	return types.Resource{}, false
}

func (w BuildWaiter) expired(start time.Time) bool {
	return w.Clock().Sub(start) > w.MaxWait
}

func timeoutError(msg string) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeFailedPrecondition).
		WithMsg(msg)
}
