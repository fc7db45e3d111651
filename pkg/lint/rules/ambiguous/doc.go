// Package ambiguous contains AM rules about constructs whose result is easy
// to misread.
package ambiguous
