// Package operation implements a tree of named, weighted units of work and
// the engine that executes it.
//
// Each Operation owns its children and a binding table that maps invocation
// names to either a single child or an ordered group of children. When an
// operation runs, its work function receives Callbacks to invoke those
// bindings and a ProgressFunc to report its own progress. Work functions may
// attach new operations anywhere in the tree while the run is in flight;
// groups are read through a live cursor, so members appended before the
// cursor passes them are still executed.
//
// Execution is strictly sequential. Progress is reported as index-aligned
// stage name and fraction stacks, root to current, throttled to one snapshot
// per progress.MinInterval except for the snapshot that follows every
// completed work function.
package operation
