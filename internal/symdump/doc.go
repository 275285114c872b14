// Package symdump flattens processed units into snapshots and renders them
// as tables or JSON. Snapshots also serve as the on-disk cache format.
package symdump
