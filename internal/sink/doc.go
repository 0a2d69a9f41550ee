// Package sink provides progress.Sink implementations for the command line:
// a coloured console renderer and a socket.io publisher.
package sink
