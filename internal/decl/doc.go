// Package decl turns a declaration manifest into symbols.
//
// A manifest is a TOML file with a [unit] header and an ordered list of
// [[decl]] tables, each declaring a struct, a global variable or a function.
// Load walks the list once, building the global scope, the field scope of
// every struct and the parameter/local scope of every function, and assigns
// frame offsets through the layout package. Problems are reported as
// diagnostics; nothing in a manifest makes Load panic.
package decl
