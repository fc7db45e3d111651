// Package lint checks parsed queries for constructs that are legal but
// likely wrong or hard to read.
//
// Rules register themselves from init functions; import the rule set to
// make them available:
//
//	import _ "github.com/leapstack-labs/leapquery/pkg/lint/rules"
//
// Rule IDs are grouped by prefix:
//   - AL (aliasing): alias usage and naming
//   - AM (ambiguous): constructs whose result is easy to misread
//   - CV (convention): preferred spellings
//   - RF (references): column and table references
//   - ST (structure): query structure
//
// Use Config to disable rules or change their severity:
//
//	cfg := lint.NewConfig()
//	cfg.Disable("RF02")
//	cfg.SetSeverity("ST03", lint.SeverityError)
//	diags := lint.NewAnalyzer(cfg).Analyze(q)
package lint
