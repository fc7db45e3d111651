// Package references contains RF rules about column and table references.
package references
