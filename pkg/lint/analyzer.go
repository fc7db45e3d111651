package lint

import (
	"github.com/leapstack-labs/leapquery/pkg/ast"
)

// Analyzer runs the registered rules against parsed queries.
type Analyzer struct {
	config *Config
}

// NewAnalyzer returns an analyzer. A nil config runs every rule.
func NewAnalyzer(config *Config) *Analyzer {
	return &Analyzer{config: config}
}

// Analyze checks q and returns the findings in rule ID order. Rules only
// read the tree.
func (a *Analyzer) Analyze(q ast.Query) []Diagnostic {
	if q == nil {
		return nil
	}

	var out []Diagnostic
	for _, rule := range GetAll() {
		if !a.config.Enabled(rule.ID) {
			continue
		}
		for _, d := range rule.Check(q) {
			d.RuleID = rule.ID
			d.Severity = a.config.Severity(rule.ID, d.Severity)
			out = append(out, d)
		}
	}
	return out
}
