package query

// DefaultLimit is the engine's limit when the caller supplies none.
const DefaultLimit = 50

// EffectiveLimit caps result limits for short in-progress search strings: the daemon calls this before invoking the engine so that
// very short in-progress search strings (as typed live) don't force a full
// 50-row scan. queryLength is the length of the query string as received,
// prefix included (the daemon passes len of the raw query), requested is the caller's requested limit (0 meaning
// unspecified), and configMax is the config's upper bound for the "else"
// tier (0 meaning use DefaultLimit).
func EffectiveLimit(queryLength, requested, configMax int) int {
	var tier int
	switch {
	case queryLength <= 2:
		tier = 10
	case queryLength <= 4:
		tier = 25
	default:
		tier = configMax
		if tier <= 0 {
			tier = DefaultLimit
		}
	}

	if requested <= 0 {
		return tier
	}
	if requested < tier {
		return requested
	}
	return tier
}
