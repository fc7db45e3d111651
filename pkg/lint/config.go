package lint

import (
	"fmt"
	"strings"
)

// Config selects the rules an Analyzer runs and the severity they report
// with. Rule IDs are case-insensitive and must be registered. The zero
// value runs every rule at its default severity.
type Config struct {
	disabled map[string]bool
	severity map[string]Severity
}

// NewConfig returns a configuration with every rule enabled.
func NewConfig() *Config {
	return &Config{
		disabled: map[string]bool{},
		severity: map[string]Severity{},
	}
}

// Disable turns off the given rules.
func (c *Config) Disable(ruleIDs ...string) error {
	for _, id := range ruleIDs {
		rule, err := lookup(id)
		if err != nil {
			return err
		}
		if c.disabled == nil {
			c.disabled = map[string]bool{}
		}
		c.disabled[rule.ID] = true
	}
	return nil
}

// SetSeverity makes a rule report with sev instead of its default.
func (c *Config) SetSeverity(ruleID string, sev Severity) error {
	rule, err := lookup(ruleID)
	if err != nil {
		return err
	}
	if c.severity == nil {
		c.severity = map[string]Severity{}
	}
	c.severity[rule.ID] = sev
	return nil
}

// ParseOverride applies an override written as ID=level, e.g. "AM08=error".
func (c *Config) ParseOverride(s string) error {
	id, level, ok := strings.Cut(s, "=")
	if !ok {
		return fmt.Errorf("invalid severity override %q, expected ID=level", s)
	}
	sev, err := ParseSeverity(strings.TrimSpace(level))
	if err != nil {
		return err
	}
	return c.SetSeverity(strings.TrimSpace(id), sev)
}

// Enabled reports whether the rule runs.
func (c *Config) Enabled(ruleID string) bool {
	return c == nil || !c.disabled[strings.ToUpper(ruleID)]
}

// Severity returns the severity the rule reports with, given its default.
func (c *Config) Severity(ruleID string, def Severity) Severity {
	if c == nil {
		return def
	}
	if sev, ok := c.severity[strings.ToUpper(ruleID)]; ok {
		return sev
	}
	return def
}

func lookup(id string) (RuleDef, error) {
	rule, ok := GetByID(strings.TrimSpace(id))
	if !ok {
		return RuleDef{}, fmt.Errorf("unknown rule %q", id)
	}
	return rule, nil
}
