package ast

// Params is an ordered name to value map of bind parameters.
// The zero value is an empty map ready to use.
type Params struct {
	Entries []ParamValue
}

// ParamValue is one bound parameter.
type ParamValue struct {
	Name  string
	Value any
}

// Set binds name to value, replacing an existing binding in place.
func (p *Params) Set(name string, value any) {
	for i := range p.Entries {
		if p.Entries[i].Name == name {
			p.Entries[i].Value = value
			return
		}
	}
	p.Entries = append(p.Entries, ParamValue{Name: name, Value: value})
}

// Get returns the value bound to name.
func (p *Params) Get(name string) (any, bool) {
	for _, e := range p.Entries {
		if e.Name == name {
			return e.Value, true
		}
	}
	return nil, false
}

// Has reports whether name is bound.
func (p *Params) Has(name string) bool {
	_, ok := p.Get(name)
	return ok
}

// Len returns the number of bindings.
func (p *Params) Len() int { return len(p.Entries) }

// Names returns the bound names in insertion order.
func (p *Params) Names() []string {
	out := make([]string, len(p.Entries))
	for i, e := range p.Entries {
		out[i] = e.Name
	}
	return out
}

// Map returns the bindings as a plain map.
func (p *Params) Map() map[string]any {
	out := make(map[string]any, len(p.Entries))
	for _, e := range p.Entries {
		out[e.Name] = e.Value
	}
	return out
}

// Parameters returns the parameters of every query reachable from n,
// merged so that a query closer to the root shadows a deeper one binding
// the same name. Queries at the same depth are visited left to right.
func Parameters(n Node) *Params {
	out := &Params{}
	forEachQueryByDepth(n, func(q Query) bool {
		for _, e := range q.Base().Params.Entries {
			if !out.Has(e.Name) {
				out.Entries = append(out.Entries, e)
			}
		}
		return true
	})
	return out
}
