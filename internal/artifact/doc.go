// Package artifact defines the typed, named diagnostic payloads that
// operations collect while they run.
//
// Payloads are restricted to JSON-representable values. They are normalised
// into cty values on construction so that every artifact can be exported,
// merged, and encoded without further checks. A live in-process reference
// can ride along for debugging but is never exported.
package artifact
