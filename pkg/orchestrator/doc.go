// Package orchestrator wires the load, normalize, resolve, build and render
// steps behind a single entry point. Every dependency can be injected; the
// ones left out are filled with the built-in implementations on first use.
package orchestrator
