package dedupe

// Policy holds the duplicate and review thresholds.
type Policy struct {
	DuplicateThreshold int
	ReviewThreshold    int
}

// DefaultPolicy returns the production thresholds: 95 merges, 90-94 needs a human.
func DefaultPolicy() Policy {
	return Policy{DuplicateThreshold: 95, ReviewThreshold: 90}
}

func (p Policy) normalized() Policy {
	def := DefaultPolicy()
	if p.DuplicateThreshold <= 0 || p.DuplicateThreshold > 100 {
		p.DuplicateThreshold = def.DuplicateThreshold
	}
	if p.ReviewThreshold <= 0 || p.ReviewThreshold >= p.DuplicateThreshold {
		p.ReviewThreshold = min(def.ReviewThreshold, p.DuplicateThreshold-1)
	}
	return p
}
