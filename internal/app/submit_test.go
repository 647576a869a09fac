package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"appstore-submit/internal/ports"
	"appstore-submit/internal/types"
)

// scriptedAPI maps "METHOD path" to a canned response and records the
// order of calls, so a test can assert the whole release flow.
type scriptedAPI struct {
	responses map[string]types.Payload
	errors    map[string]error
	calls     []string
}

func newScriptedAPI() *scriptedAPI {
	return &scriptedAPI{
		responses: map[string]types.Payload{},
		errors:    map[string]error{},
	}
}

func (s *scriptedAPI) respond(key string, resources ...types.Resource) {
	s.responses[key] = types.Payload{Data: resources}
}

func (s *scriptedAPI) answer(method string, path string) (types.Payload, error) {
	key := method + " " + path
	s.calls = append(s.calls, key)
	if err, ok := s.errors[key]; ok {
		return types.Payload{}, err
	}
	return s.responses[key], nil
}

func (s *scriptedAPI) Get(_ context.Context, path string) (types.Payload, error) {
	return s.answer("GET", path)
}

func (s *scriptedAPI) Post(_ context.Context, path string, _ types.RequestBody) (types.Payload, error) {
	return s.answer("POST", path)
}

func (s *scriptedAPI) Patch(_ context.Context, path string, _ types.RequestBody) (types.Payload, error) {
	return s.answer("PATCH", path)
}

var _ ports.ReleaseAPIPort = (*scriptedAPI)(nil)

type stubBundle struct {
	bundleID string
	err      error
	detects  int
}

func (b *stubBundle) Detect(string) (string, error) {
	b.detects++
	return b.bundleID, b.err
}

func newTestService(api *scriptedAPI) Service {
	return Service{
		NewClient: func(SubmitRequest) (ports.ReleaseAPIPort, error) { return api, nil },
		Bundle:    &stubBundle{bundleID: "com.example.app"},
		Clock:     time.Now,
		Sleep:     func(context.Context, time.Duration) error { return nil },
	}
}

func scriptHappyPath(api *scriptedAPI) {
	api.respond("GET /apps?filter[bundleId]=com.example.app",
		types.Resource{Type: types.ResourceApps, ID: "app-1", Attributes: map[string]any{"name": "Example"}})
	api.respond("GET /builds?filter[app]=app-1&sort=-uploadedDate&limit=5",
		types.Resource{Type: types.ResourceBuilds, ID: "build-1", Attributes: map[string]any{"version": "30", "processingState": "VALID"}})
	api.respond("GET /apps/app-1/appStoreVersions?filter[platform]=IOS&filter[versionString]=1.13.0",
		types.Resource{Type: types.ResourceAppStoreVersions, ID: "ver-1", Attributes: map[string]any{"appStoreState": "PREPARE_FOR_SUBMISSION"}})
	api.respond("GET /appStoreVersions/ver-1/appStoreVersionLocalizations",
		types.Resource{Type: types.ResourceVersionLocalizations, ID: "loc-en", Attributes: map[string]any{"locale": "en-US"}})
	api.respond("POST /reviewSubmissions",
		types.Resource{Type: types.ResourceReviewSubmissions, ID: "sub-1"})
}

func TestSubmitHappyPath(t *testing.T) {
	api := newScriptedAPI()
	scriptHappyPath(api)
	service := newTestService(api)

	result, err := service.Submit(context.Background(), SubmitRequest{
		Version:  "1.13.0+30",
		BundleID: "com.example.app",
	})
	require.NoError(t, err)

	expected := SubmitResult{
		BundleID:       "com.example.app",
		AppID:          "app-1",
		AppName:        "Example",
		Version:        "1.13.0",
		BuildNumber:    "30",
		BuildID:        "build-1",
		VersionID:      "ver-1",
		State:          "PREPARE_FOR_SUBMISSION",
		NotesUpdated:   1,
		NotesTotal:     1,
		SubmissionPath: types.SubmissionPathReview,
		Submitted:      true,
	}
	if diff := cmp.Diff(expected, result); diff != "" {
		t.Fatalf("unexpected result (-want +got):\n%s", diff)
	}

	expectedCalls := []string{
		"GET /apps?filter[bundleId]=com.example.app",
		"GET /builds?filter[app]=app-1&sort=-uploadedDate&limit=5",
		"GET /apps/app-1/appStoreVersions?filter[platform]=IOS&filter[versionString]=1.13.0",
		"PATCH /appStoreVersions/ver-1",
		"GET /appStoreVersions/ver-1/appStoreVersionLocalizations",
		"PATCH /appStoreVersionLocalizations/loc-en",
		"POST /reviewSubmissions",
		"POST /reviewSubmissionItems",
		"PATCH /reviewSubmissions/sub-1",
	}
	if diff := cmp.Diff(expectedCalls, api.calls); diff != "" {
		t.Fatalf("unexpected call sequence (-want +got):\n%s", diff)
	}
}

func TestSubmitDetectsBundleIDWhenUnset(t *testing.T) {
	api := newScriptedAPI()
	scriptHappyPath(api)
	bundle := &stubBundle{bundleID: "com.example.app"}
	service := newTestService(api)
	service.Bundle = bundle

	result, err := service.Submit(context.Background(), SubmitRequest{Version: "1.13.0+30"})
	require.NoError(t, err)
	assert.Equal(t, "com.example.app", result.BundleID)
	assert.Equal(t, 1, bundle.detects)
}

func TestSubmitAlreadySubmittedStopsEarly(t *testing.T) {
	api := newScriptedAPI()
	scriptHappyPath(api)
	api.respond("GET /apps/app-1/appStoreVersions?filter[platform]=IOS&filter[versionString]=1.13.0",
		types.Resource{Type: types.ResourceAppStoreVersions, ID: "ver-1", Attributes: map[string]any{"appStoreState": "WAITING_FOR_REVIEW"}})
	service := newTestService(api)

	result, err := service.Submit(context.Background(), SubmitRequest{
		Version:  "1.13.0+30",
		BundleID: "com.example.app",
	})
	require.NoError(t, err)
	assert.True(t, result.AlreadySubmitted)
	assert.Equal(t, types.AppStoreStateWaitingForReview, result.State)
	assert.False(t, result.Submitted)
	// The flow ends at version resolution; no link, notes, or submission.
	assert.Len(t, api.calls, 3)
}

func TestSubmitManualActionIsNotAnError(t *testing.T) {
	api := newScriptedAPI()
	scriptHappyPath(api)
	api.errors["POST /reviewSubmissionItems"] = errors.New("conflict")
	service := newTestService(api)

	result, err := service.Submit(context.Background(), SubmitRequest{
		Version:  "1.13.0+30",
		BundleID: "com.example.app",
	})
	require.NoError(t, err)
	assert.True(t, result.ManualAction)
	assert.False(t, result.Submitted)
	assert.Equal(t, types.SubmissionPathReview, result.SubmissionPath)
}

func TestSubmitFallsBackToLegacyPath(t *testing.T) {
	api := newScriptedAPI()
	scriptHappyPath(api)
	api.errors["POST /reviewSubmissions"] = errors.New("endpoint gone")
	service := newTestService(api)

	result, err := service.Submit(context.Background(), SubmitRequest{
		Version:  "1.13.0+30",
		BundleID: "com.example.app",
	})
	require.NoError(t, err)
	assert.Equal(t, types.SubmissionPathLegacy, result.SubmissionPath)
	assert.True(t, result.Submitted)
	assert.Contains(t, api.calls, "POST /appStoreVersionSubmissions")
}

func TestSubmitInvalidVersionArgument(t *testing.T) {
	service := newTestService(newScriptedAPI())

	_, err := service.Submit(context.Background(), SubmitRequest{Version: "not-a-version"})
	require.Error(t, err)
}

func TestSubmitInvalidBuildStopsRun(t *testing.T) {
	api := newScriptedAPI()
	scriptHappyPath(api)
	api.respond("GET /builds?filter[app]=app-1&sort=-uploadedDate&limit=5",
		types.Resource{Type: types.ResourceBuilds, ID: "build-1", Attributes: map[string]any{"version": "30", "processingState": "INVALID"}})
	service := newTestService(api)

	result, err := service.Submit(context.Background(), SubmitRequest{
		Version:  "1.13.0+30",
		BundleID: "com.example.app",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed processing")
	assert.Empty(t, result.BuildID)
	// Nothing past the build wait ran.
	assert.Len(t, api.calls, 2)
}

func TestSubmitDryRunSkipsMutations(t *testing.T) {
	api := newScriptedAPI()
	scriptHappyPath(api)
	service := newTestService(api)

	result, err := service.Submit(context.Background(), SubmitRequest{
		Version:  "1.13.0+30",
		BundleID: "com.example.app",
		DryRun:   true,
	})
	require.NoError(t, err)
	assert.True(t, result.DryRun)
	assert.True(t, result.Submitted)

	for _, call := range api.calls {
		assert.Regexp(t, "^GET ", call)
	}
}

func TestSubmitDefaultReleaseNotes(t *testing.T) {
	assert.Equal(t, "Bug fixes and improvements.", DefaultReleaseNotes)
}
