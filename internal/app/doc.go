// Package app wires the loader harness to its inputs and outputs: the
// source directory, progress sinks, the artifact report and the status
// server. It is decoupled from any specific entrypoint like a CLI.
package app
