package core

import (
	"context"

	"appstore-submit/internal/types"
)

type apiCall struct {
	Method string
	Path   string
	Body   types.RequestBody
}

// stubAPI records every call and answers through a scripted handler.
type stubAPI struct {
	calls   []apiCall
	handler func(call apiCall) (types.Payload, error)
}

func (s *stubAPI) Get(_ context.Context, path string) (types.Payload, error) {
	return s.dispatch(apiCall{Method: "GET", Path: path})
}

func (s *stubAPI) Post(_ context.Context, path string, body types.RequestBody) (types.Payload, error) {
	return s.dispatch(apiCall{Method: "POST", Path: path, Body: body})
}

func (s *stubAPI) Patch(_ context.Context, path string, body types.RequestBody) (types.Payload, error) {
	return s.dispatch(apiCall{Method: "PATCH", Path: path, Body: body})
}

func (s *stubAPI) dispatch(call apiCall) (types.Payload, error) {
	s.calls = append(s.calls, call)
	if s.handler == nil {
		return types.Payload{}, nil
	}
	return s.handler(call)
}

func (s *stubAPI) methodPaths() []string {
	paths := make([]string, 0, len(s.calls))
	for _, call := range s.calls {
		paths = append(paths, call.Method+" "+call.Path)
	}
	return paths
}

func singlePayload(resource types.Resource) types.Payload {
	return types.Payload{Data: []types.Resource{resource}}
}

func buildResource(id string, buildNumber string, state string) types.Resource {
	return types.Resource{
		Type: types.ResourceBuilds,
		ID:   id,
		Attributes: map[string]any{
			"version":         buildNumber,
			"processingState": state,
		},
	}
}

func versionResource(id string, state string) types.Resource {
	return types.Resource{
		Type: types.ResourceAppStoreVersions,
		ID:   id,
		Attributes: map[string]any{
			"appStoreState": state,
		},
	}
}

func localizationResource(id string, locale string) types.Resource {
	return types.Resource{
		Type: types.ResourceVersionLocalizations,
		ID:   id,
		Attributes: map[string]any{
			"locale": locale,
		},
	}
}
