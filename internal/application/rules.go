package application

import (
	"github.com/openkraft/codegate/internal/domain"
	"github.com/openkraft/codegate/internal/domain/analysis"
	"github.com/openkraft/codegate/internal/domain/scoring"
)

// RuleSet is the machine-readable description of the scoring rules.
type RuleSet struct {
	Version    string          `json:"rules_version"`
	BaseScore  int             `json:"base_score"`
	Bonuses    []scoring.Bonus `json:"bonuses"`
	Penalties  []scoring.Rule  `json:"penalties"`
	Categories []string        `json:"categories"`
}

// CurrentRules describes the active rule set.
func CurrentRules() RuleSet {
	rs := RuleSet{
		Version:   analysis.RulesVersion,
		BaseScore: scoring.BaseScore,
		Bonuses:   scoring.Bonuses(),
		Penalties: scoring.Rules(),
	}
	for _, c := range domain.AllCategories() {
		rs.Categories = append(rs.Categories, c.String())
	}
	return rs
}
