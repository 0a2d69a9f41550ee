// Package loader is the mod-loading harness built on the operation engine.
//
// The default stage tree is declared in an embedded HCL plan and its work
// functions are registered by Module. The concrete loading algorithms are
// placeholders: each stage records what it saw as artifacts and reports
// progress, while the data flow (fetch target sources, plan per mod, apply,
// commit modified sources) is real.
package loader
