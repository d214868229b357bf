// Package app wires the CLI configuration, the plan loader and the
// scheduling engine into a runnable application.
package app
