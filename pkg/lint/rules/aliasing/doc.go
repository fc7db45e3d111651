// Package aliasing contains AL rules about alias usage and naming.
package aliasing
