// Package symbols holds what semantic analysis records for every declared
// name: plain variables, functions, struct-typed variables and struct type
// definitions, plus the single-level Scope tables they are entered into.
//
// A symbol is created once, when its declaration is accepted. Afterwards only
// two things change: a FunctionDecl receives its formals (producing the
// Function), and frame layout updates a Function's parameter and local space.
package symbols
