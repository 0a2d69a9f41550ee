// Package progress converts accumulated work at each level of an executing
// operation tree into 0-1 fractions and gates how often those fractions are
// reported.
//
// The arithmetic is pure: callers hand over a root-to-current slice of
// frames and get back one fraction per frame. A frame's active child counts
// toward it as (child fraction × child contribution), so a parent reflects
// partial completion of a still-running child and not only whole children.
package progress
