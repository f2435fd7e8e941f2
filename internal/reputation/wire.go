package reputation

import "github.com/raysh454/guardscan/internal/model"

// Provider envelope: every response wraps one object under "data".
type vtEnvelope struct {
	Data vtData `json:"data"`
}

type vtData struct {
	ID         string       `json:"id"`
	Attributes vtAttributes `json:"attributes"`
}

type vtAttributes struct {
	Status string `json:"status"`

	// LastAnalysisStats is filled on existing-record lookups; Stats is
	// filled on analysis objects. Exactly one is populated per response.
	LastAnalysisStats model.VerdictStats `json:"last_analysis_stats"`
	Stats             model.VerdictStats `json:"stats"`

	Reputation  *int              `json:"reputation"`
	ThreatNames []string          `json:"threat_names"`
	Categories  map[string]string `json:"categories"`
}

func (a vtAttributes) meta() model.VerdictMeta {
	meta := model.VerdictMeta{
		Reputation:  a.Reputation,
		ThreatNames: a.ThreatNames,
		Categories:  a.Categories,
	}
	if meta.ThreatNames == nil {
		meta.ThreatNames = []string{}
	}
	if meta.Categories == nil {
		meta.Categories = map[string]string{}
	}
	return meta
}
