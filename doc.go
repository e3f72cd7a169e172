// Package javautil is a collection of loosely related utilities.
//
// Packages:
//
//	text       Roman numerals, variable substitution, word wrapping
//	htmlutil   HTML entities and tag stripping
//	cmdline    a scaffold for command-line programs
//	mail       MIME messages and SMTP
//	logging    named loggers over github.com/charmbracelet/log
//	scripting  one facade over several script engines
//	varstore   a persistent variable store
//
// Small command-line programs that use these packages are in cmd.
package javautil
