// Package registry maps the work identifiers used in plan files (for example
// "acquire_mods") to the compiled Go work functions that implement them.
//
// Work functions are always registered as an explicit (name, function) pair;
// nothing is inferred from the function value itself. During startup the
// registry is populated from modules and then validated against the plan so
// that every referenced identifier resolves before anything runs.
package registry
