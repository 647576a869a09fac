// Package types defines the wire shapes exchanged with the App Store
// Connect API. Responses follow the JSON:API envelope; the data member
// may hold a single resource or a list depending on the endpoint.
package types

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Payload is a decoded response body. A single-resource response is
// normalized into a one-element Data slice so callers handle both
// shapes uniformly.
type Payload struct {
	Data   []Resource
	Errors []APIError
}

func (p *Payload) UnmarshalJSON(raw []byte) error {
	var envelope struct {
		Data   json.RawMessage `json:"data"`
		Errors []APIError      `json:"errors"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return err
	}
	p.Data = nil
	p.Errors = envelope.Errors
	data := bytes.TrimSpace(envelope.Data)
	switch {
	case len(data) == 0 || string(data) == "null":
		return nil
	case data[0] == '[':
		return json.Unmarshal(data, &p.Data)
	default:
		var single Resource
		if err := json.Unmarshal(data, &single); err != nil {
			return err
		}
		p.Data = []Resource{single}
		return nil
	}
}

// First returns the first resource of the payload, if any.
func (p Payload) First() (Resource, bool) {
	if len(p.Data) == 0 {
		return Resource{}, false
	}
	return p.Data[0], true
}

type Resource struct {
	Type       string         `json:"type"`
	ID         string         `json:"id"`
	Attributes map[string]any `json:"attributes"`
}

// StringAttr returns the named attribute when it is a string, trimmed.
func (r Resource) StringAttr(key string) string {
	if raw, ok := r.Attributes[key]; ok {
		if str, ok := raw.(string); ok {
			return strings.TrimSpace(str)
		}
	}
	return ""
}

type APIError struct {
	Status string `json:"status"`
	Code   string `json:"code"`
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

// ErrorDetail extracts the platform-supplied detail of the first error
// entry, matching what the API reports to operators.
func ErrorDetail(errs []APIError) string {
	if len(errs) == 0 || strings.TrimSpace(errs[0].Detail) == "" {
		return "Unknown error"
	}
	return strings.TrimSpace(errs[0].Detail)
}

// RequestBody is the {data: {...}} envelope sent on every mutating call.
type RequestBody struct {
	Data RequestResource `json:"data"`
}

type RequestResource struct {
	Type          string                  `json:"type"`
	ID            string                  `json:"id,omitempty"`
	Attributes    map[string]any          `json:"attributes,omitempty"`
	Relationships map[string]Relationship `json:"relationships,omitempty"`
}

type Relationship struct {
	Data ResourceRef `json:"data"`
}

type ResourceRef struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}
