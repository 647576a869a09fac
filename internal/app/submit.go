package app

import (
	"context"
	"strings"
	"time"

	assert "github.com/ZanzyTHEbar/assert-lib"
	"github.com/rs/zerolog/log"

	"appstore-submit/internal/adapters"
	"appstore-submit/internal/core"
)

// Submit runs the end-to-end release flow: parse the version argument,
// resolve the bundle id, find the app, wait for the build, resolve the
// version record, link the build, fan out release notes, and submit for
// review. Steps run strictly sequentially; each consumes identifiers
// discovered by the previous one.
func (s Service) Submit(ctx context.Context, req SubmitRequest) (SubmitResult, error) {
	target, err := core.ParseReleaseTarget(req.Version)
	if err != nil {
		return SubmitResult{}, err
	}
	notes := strings.TrimSpace(req.ReleaseNotes)
	if notes == "" {
		notes = DefaultReleaseNotes
	}

	client, err := s.NewClient(req)
	if err != nil {
		return SubmitResult{}, err
	}
	if req.DryRun {
		log.Ctx(ctx).Info().Msg("dry run: mutating calls will be skipped")
		client = adapters.NewDryRunClientAdapter(client)
	}

	result := SubmitResult{
		Version:     target.Version,
		BuildNumber: target.BuildNumber,
		DryRun:      req.DryRun,
	}

	bundleID := strings.TrimSpace(req.BundleID)
	if bundleID == "" {
		bundleID, err = s.Bundle.Detect(req.ProjectPath)
		if err != nil {
			return result, err
		}
		log.Ctx(ctx).Info().Str("bundle_id", bundleID).Msg("bundle id detected from project")
	}
	result.BundleID = bundleID

	app, err := core.AppFinder{API: client}.FindByBundleID(ctx, bundleID)
	if err != nil {
		return result, err
	}
	result.AppID = app.ID
	result.AppName = app.Name

	waiter := core.NewBuildWaiter(client, time.Duration(req.MaxWaitMinutes)*time.Minute)
	waiter.Clock = s.Clock
	waiter.Sleep = s.Sleep
	buildID, err := waiter.Wait(ctx, app.ID, target.BuildNumber)
	if err != nil {
		return result, err
	}
	result.BuildID = buildID

	resolution, err := core.VersionManager{API: client}.GetOrCreate(ctx, app.ID, target.Version)
	if err != nil {
		return result, err
	}
	assert.NotEmpty(ctx, resolution.ID, "version resolution must carry an id")
	result.VersionID = resolution.ID
	result.State = resolution.State
	if resolution.AlreadySubmitted {
		result.AlreadySubmitted = true
		log.Ctx(ctx).Info().
			Str("version", target.Version).
			Str("state", string(resolution.State)).
			Msg("version already submitted, nothing to do")
		return result, nil
	}

	assembler := core.ReleaseAssembler{API: client}
	if err := assembler.LinkBuild(ctx, resolution.ID, buildID); err != nil {
		return result, err
	}
	notesResult, err := assembler.ApplyReleaseNotes(ctx, resolution.ID, notes)
	if err != nil {
		return result, err
	}
	result.NotesUpdated = notesResult.Updated
	result.NotesTotal = notesResult.Total

	outcome, err := core.SubmissionCoordinator{API: client}.Submit(ctx, app.ID, resolution.ID)
	if err != nil {
		return result, err
	}
	result.SubmissionPath = outcome.Path
	result.Submitted = outcome.Submitted
	result.ManualAction = outcome.ManualAction
	return result, nil
}
