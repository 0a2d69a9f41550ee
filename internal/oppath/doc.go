/*
Package oppath provides a structured representation of an operation's
position inside its tree, based on the canonical format `path`.

The format is a dot-separated sequence of operation names, root first,
e.g., `LoadMods.Source Modification.Injection Load`. Names may contain
spaces but never the separator itself.
*/
package oppath
