// Package application wires CLI options into an ordered sequence of
// load operations against a configuration stash, keeping the main
// package focused on flag parsing and process orchestration.
package application
