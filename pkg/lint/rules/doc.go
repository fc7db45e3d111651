// Package rules registers the built-in lint rules. Import it for its side
// effects.
package rules
