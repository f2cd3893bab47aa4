package daemonproto

import "encoding/json"

// ResultItem is one entry of a search response's "results" array.
type ResultItem struct {
	Path  string  `json:"path"`
	Score float64 `json:"score"`
	Root  string  `json:"root"`
}

// HealthInfo is the "health" object of a health response.
type HealthInfo struct {
	UptimeMs       int64    `json:"uptime"`
	RSSBytes       uint64   `json:"rss"`
	Generation     int64    `json:"generation"`
	CacheHitRate   float64  `json:"cacheHitRate"`
	ActiveWatchers int      `json:"activeWatchers"`
	RootsLoaded    []string `json:"rootsLoaded"`
}

// Response is the single envelope every request gets exactly one of: every response echoes "id", carries "ok", and on failure
// carries "error"; the remaining fields are populated per request kind.
type Response struct {
	ID         string       `json:"id"`
	OK         bool         `json:"ok"`
	Error      string       `json:"error,omitempty"`
	Results    []ResultItem `json:"results,omitempty"`
	Cached     *bool        `json:"cached,omitempty"`
	DurationMs float64      `json:"durationMs,omitempty"`
	Health     *HealthInfo  `json:"health,omitempty"`
}

func NewSearchResponse(id string, results []ResultItem, cached bool, durationMs float64) Response {
	return Response{
		ID:         id,
		OK:         true,
		Results:    results,
		Cached:     &cached,
		DurationMs: durationMs,
	}
}

func NewHealthResponse(id string, health HealthInfo) Response {
	return Response{ID: id, OK: true, Health: &health}
}

// NewAckResponse is the bare ok:true response for invalidate/stop.
func NewAckResponse(id string) Response {
	return Response{ID: id, OK: true}
}

func NewErrorResponse(id string, err error) Response {
	return Response{ID: id, OK: false, Error: err.Error()}
}

// Encode marshals the response to its single-line JSON form.
func (r Response) Encode() ([]byte, error) {
	return json.Marshal(r)
}
