package lint

import (
	"fmt"
	"slices"
	"strings"
	"sync"
)

var registry = struct {
	sync.RWMutex
	rules map[string]RuleDef
}{rules: map[string]RuleDef{}}

// Register adds a rule. Rule packages call it from init, so an invalid or
// duplicate definition panics at program start.
func Register(rule RuleDef) {
	id := strings.ToUpper(rule.ID)
	if id == "" || rule.Check == nil {
		panic(fmt.Sprintf("lint: rule %q needs an ID and a check", rule.Name))
	}

	registry.Lock()
	defer registry.Unlock()
	if prev, ok := registry.rules[id]; ok {
		panic(fmt.Sprintf("lint: rule %s registered twice (%s, %s)", id, prev.Name, rule.Name))
	}
	rule.ID = id
	registry.rules[id] = rule
}

// GetAll returns the registered rules ordered by ID.
func GetAll() []RuleDef {
	registry.RLock()
	rules := make([]RuleDef, 0, len(registry.rules))
	for _, rule := range registry.rules {
		rules = append(rules, rule)
	}
	registry.RUnlock()

	slices.SortFunc(rules, func(a, b RuleDef) int { return strings.Compare(a.ID, b.ID) })
	return rules
}

// GetByID looks a rule up by its case-insensitive ID.
func GetByID(id string) (RuleDef, bool) {
	registry.RLock()
	defer registry.RUnlock()
	rule, ok := registry.rules[strings.ToUpper(id)]
	return rule, ok
}

// GetByGroup returns the rules of one group ordered by ID.
func GetByGroup(group string) []RuleDef {
	return slices.DeleteFunc(GetAll(), func(r RuleDef) bool { return r.Group != group })
}
