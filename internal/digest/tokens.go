package digest

// EstimateTokens approximates the token cost of a rendered document as
// ceil(len/4). The ratio tracks what byte-pair tokenizers produce on source
// text closely enough for threshold checks, is monotonic in document size,
// and never changes between runs.
func EstimateTokens(doc []byte) int {
	return (len(doc) + 3) / 4
}

// ClassifyTier buckets a token count against the configured thresholds.
func ClassifyTier(tokens int, t Thresholds) Tier {
	switch {
	case tokens <= t.Target:
		return TierSimple
	case tokens <= t.Warn:
		return TierStandard
	default:
		return TierComplex
	}
}
