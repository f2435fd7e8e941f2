package model

// VerdictStats holds the aggregate engine verdict counts returned by the
// reputation provider. Counts absent from the upstream payload decode to 0,
// so all five keys are always present on the way out.
type VerdictStats struct {
	Harmless   int `json:"harmless"`
	Undetected int `json:"undetected"`
	Malicious  int `json:"malicious"`
	Suspicious int `json:"suspicious"`
	Timeout    int `json:"timeout"`
}

// Total returns the verdict denominator, floored at 1 so percentage math
// never divides by zero.
func (s VerdictStats) Total() int {
	total := s.Harmless + s.Undetected + s.Malicious + s.Suspicious + s.Timeout
	if total < 1 {
		return 1
	}
	return total
}

// VerdictMeta is the auxiliary reputation detail attached to a verdict.
type VerdictMeta struct {
	// Reputation is the provider's community score; nil when the provider
	// has none for this input.
	Reputation *int `json:"reputation"`

	ThreatNames []string          `json:"threat_names"`
	Categories  map[string]string `json:"categories"`
}
