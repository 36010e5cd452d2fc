package reconcile

// Policy holds the score thresholds used during matching.
type Policy struct {
	// MatchThreshold is the minimum TokenSortRatio (0-100) for a candidate to
	// bind to a registry record.
	MatchThreshold int
}

// DefaultPolicy returns the production thresholds.
func DefaultPolicy() Policy {
	return Policy{MatchThreshold: 90}
}

func (p Policy) normalized() Policy {
	if p.MatchThreshold <= 0 || p.MatchThreshold > 100 {
		p.MatchThreshold = DefaultPolicy().MatchThreshold
	}
	return p
}
