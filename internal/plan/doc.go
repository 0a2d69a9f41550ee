// Package plan loads operation tree definitions from HCL files and builds
// executable operation trees from them.
//
// A plan is a single top-level `operation` block whose nested `operation`
// blocks become its children, in file order:
//
//	operation "LoadMods" {
//	  work = "load_mods"
//
//	  operation "Acquisition" {
//	    work         = "acquire_mods"
//	    own_estimate = 1
//	    contribution = 1
//	  }
//	}
//
// Loading is split from building: Load and Parse produce a format-agnostic
// Definition, and Build resolves its work identifiers against a registry.
package plan
