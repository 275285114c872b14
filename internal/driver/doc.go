// Package driver runs declaration processing over many manifests at once,
// with an optional on-disk cache of the results.
package driver
