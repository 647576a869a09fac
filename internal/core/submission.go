package core

import (
	"context"

	"github.com/rs/zerolog/log"

	"appstore-submit/internal/ports"
	"appstore-submit/internal/types"
)

// SubmissionCoordinator drives the review submission protocol. The
// three-step reviewSubmissions flow is preferred; the single-call
// appStoreVersionSubmissions endpoint remains as a fallback for the
// older protocol. Once a submission object exists remotely, later
// failures degrade to a manual-action outcome instead of an error: the
// version is fully prepared and the operator can finish in the web UI.
type SubmissionCoordinator struct {
	API ports.ReleaseAPIPort
}

type SubmissionOutcome struct {
	Path         types.SubmissionPath
	SubmissionID string
	Submitted    bool
	ManualAction bool
}

func (c SubmissionCoordinator) Submit(ctx context.Context, appID string, versionID string) (SubmissionOutcome, error) {
	create := types.RequestBody{Data: types.RequestResource{
		Type: types.ResourceReviewSubmissions,
		Relationships: map[string]types.Relationship{
			"app": {Data: types.ResourceRef{Type: types.ResourceApps, ID: appID}},
		},
	}}
	created, err := c.API.Post(ctx, "/reviewSubmissions", create)
	if err != nil {
		if ctx.Err() != nil {
			return SubmissionOutcome{}, ctx.Err()
		}
		log.Ctx(ctx).Warn().Err(err).Msg("review submission creation failed, trying legacy endpoint")
		return c.submitLegacy(ctx, versionID)
	}
	resource, ok := created.First()
	if !ok {
		log.Ctx(ctx).Warn().Msg("review submission creation returned no resource, trying legacy endpoint")
		return c.submitLegacy(ctx, versionID)
	}
	submissionID := resource.ID
	log.Ctx(ctx).Info().Str("submission_id", submissionID).Msg("review submission created")

	item := types.RequestBody{Data: types.RequestResource{
		Type: types.ResourceReviewSubmissionItems,
		Relationships: map[string]types.Relationship{
			"reviewSubmission": {Data: types.ResourceRef{Type: types.ResourceReviewSubmissions, ID: submissionID}},
			"appStoreVersion":  {Data: types.ResourceRef{Type: types.ResourceAppStoreVersions, ID: versionID}},
		},
	}}
	if _, err := c.API.Post(ctx, "/reviewSubmissionItems", item); err != nil {
		if ctx.Err() != nil {
			return SubmissionOutcome{}, ctx.Err()
		}
		log.Ctx(ctx).Warn().Err(err).Msg("failed to attach version to submission: finish the submission in App Store Connect")
		return SubmissionOutcome{Path: types.SubmissionPathReview, SubmissionID: submissionID, ManualAction: true}, nil
	}

	confirm := types.RequestBody{Data: types.RequestResource{
		Type:       types.ResourceReviewSubmissions,
		ID:         submissionID,
		Attributes: map[string]any{"submitted": true},
	}}
	if _, err := c.API.Patch(ctx, "/reviewSubmissions/"+submissionID, confirm); err != nil {
		if ctx.Err() != nil {
			return SubmissionOutcome{}, ctx.Err()
		}
		log.Ctx(ctx).Warn().Err(err).Msg("failed to confirm submission: finish the submission in App Store Connect")
		return SubmissionOutcome{Path: types.SubmissionPathReview, SubmissionID: submissionID, ManualAction: true}, nil
	}

	log.Ctx(ctx).Info().Str("submission_id", submissionID).Msg("submitted for review")
	return SubmissionOutcome{Path: types.SubmissionPathReview, SubmissionID: submissionID, Submitted: true}, nil
}

func (c SubmissionCoordinator) submitLegacy(ctx context.Context, versionID string) (SubmissionOutcome, error) {
	body := types.RequestBody{Data: types.RequestResource{
		Type: types.ResourceVersionSubmissions,
		Relationships: map[string]types.Relationship{
			"appStoreVersion": {Data: types.ResourceRef{Type: types.ResourceAppStoreVersions, ID: versionID}},
		},
	}}
	if _, err := c.API.Post(ctx, "/appStoreVersionSubmissions", body); err != nil {
		if ctx.Err() != nil {
			return SubmissionOutcome{}, ctx.Err()
		}
		log.Ctx(ctx).Warn().Err(err).Msg("legacy submission failed: submit manually via App Store Connect")
		return SubmissionOutcome{Path: types.SubmissionPathLegacy, ManualAction: true}, nil
	}
	log.Ctx(ctx).Info().Msg("submitted for review via legacy endpoint")
	return SubmissionOutcome{Path: types.SubmissionPathLegacy, Submitted: true}, nil
}
