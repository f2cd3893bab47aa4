package query

import "github.com/galligan/pickme/internal/storage"

// Result is one ranked search hit handed back to the daemon protocol layer.
type Result struct {
	Path  string
	Root  string
	Score float64
}

func toResults(candidates []storage.Candidate) []Result {
	out := make([]Result, len(candidates))
	for i, c := range candidates {
		out[i] = Result{Path: c.Path, Root: c.Root, Score: c.Score}
	}
	return out
}
