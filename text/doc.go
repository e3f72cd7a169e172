// Package text provides string utilities: roman numerals, shell-style
// variable substitution, word wrapping and simple justification.
//
// The variable substitution code is the only part with much going on.
// A Substituter scans a string for variable references and asks a
// Dereferencer for their values.  Two syntaxes are supported:
//
//    UnixShellSubstituter:  $var  ${var}  ${var?default}
//    WindowsCmdSubstituter: %var%
//
// Both can be told to protest (return an error) or to carry on when
// they see an undefined variable or a malformed reference.
package text
