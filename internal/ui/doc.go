// Package ui renders interactive terminal progress for long runs.
package ui
