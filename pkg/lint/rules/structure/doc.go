// Package structure contains ST rules about query structure.
package structure
