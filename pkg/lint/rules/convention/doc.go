// Package convention contains CV rules about preferred spellings.
package convention
