// Package daemonproto implements the daemon's wire protocol: one JSON value
// per line over a Unix socket, request-response.
package daemonproto

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Kind discriminates the four request shapes the daemon accepts.
type Kind string

const (
	KindSearch     Kind = "search"
	KindHealth     Kind = "health"
	KindInvalidate Kind = "invalidate"
	KindStop       Kind = "stop"
)

// Request is implemented by each of the four concrete request types.
type Request interface {
	RequestID() string
	Kind() Kind
}

type envelope struct {
	ID   string `json:"id"`
	Type Kind   `json:"type"`
}

// SearchRequest is "search{ query, cwd?, limit? }".
type SearchRequest struct {
	ID    string `json:"id"`
	Query string `json:"query"`
	Cwd   string `json:"cwd,omitempty"`
	Limit int    `json:"limit,omitempty"`
}

func (r SearchRequest) RequestID() string { return r.ID }
func (r SearchRequest) Kind() Kind         { return KindSearch }

// HealthRequest is "health{}".
type HealthRequest struct {
	ID string `json:"id"`
}

func (r HealthRequest) RequestID() string { return r.ID }
func (r HealthRequest) Kind() Kind         { return KindHealth }

// InvalidateRequest is "invalidate{ root? }".
type InvalidateRequest struct {
	ID   string `json:"id"`
	Root string `json:"root,omitempty"`
}

func (r InvalidateRequest) RequestID() string { return r.ID }
func (r InvalidateRequest) Kind() Kind         { return KindInvalidate }

// StopRequest is "stop{}".
type StopRequest struct {
	ID string `json:"id"`
}

func (r StopRequest) RequestID() string { return r.ID }
func (r StopRequest) Kind() Kind         { return KindStop }

// DecodeRequest parses one NDJSON line into its concrete request type,
// dispatching on the "type" field and applying the per-field
// validation rules (query length 1..1000, limit 1..500 when present).
func DecodeRequest(line []byte) (Request, error) {
	var env envelope
	if err := json.Unmarshal(line, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedJSON, err)
	}
	if env.ID == "" {
		return nil, fmt.Errorf("request missing id")
	}

	switch env.Type {
	case KindSearch:
		var req SearchRequest
		if err := json.Unmarshal(line, &req); err != nil {
			return nil, fmt.Errorf("decode search request: %w", err)
		}
		if err := validateSearch(req); err != nil {
			return nil, err
		}
		return req, nil

	case KindHealth:
		var req HealthRequest
		if err := json.Unmarshal(line, &req); err != nil {
			return nil, fmt.Errorf("decode health request: %w", err)
		}
		return req, nil

	case KindInvalidate:
		var req InvalidateRequest
		if err := json.Unmarshal(line, &req); err != nil {
			return nil, fmt.Errorf("decode invalidate request: %w", err)
		}
		return req, nil

	case KindStop:
		var req StopRequest
		if err := json.Unmarshal(line, &req); err != nil {
			return nil, fmt.Errorf("decode stop request: %w", err)
		}
		return req, nil

	default:
		return nil, fmt.Errorf("unknown request type %q", env.Type)
	}
}

// ErrMalformedJSON marks a line that was not valid JSON at all, as opposed
// to valid JSON that fails structural validation. The server maps the
// former to an "invalid JSON" response with an empty id.
var ErrMalformedJSON = errors.New("malformed JSON")

// IsMalformedJSON reports whether err came from a line that could not be
// parsed as JSON.
func IsMalformedJSON(err error) bool {
	return errors.Is(err, ErrMalformedJSON)
}

// PeekID extracts the string "id" field from a request line whose full
// decode failed, so the error response can still echo it. Returns "" when
// the line is not valid JSON or carries no string id.
func PeekID(line []byte) string {
	var env envelope
	if err := json.Unmarshal(line, &env); err != nil {
		return ""
	}
	return env.ID
}

func validateSearch(req SearchRequest) error {
	if l := len(req.Query); l < 1 || l > 1000 {
		return fmt.Errorf("query length must be 1..1000, got %d", l)
	}
	if req.Limit != 0 && (req.Limit < 1 || req.Limit > 500) {
		return fmt.Errorf("limit must be 1..500, got %d", req.Limit)
	}
	return nil
}
