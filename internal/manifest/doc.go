// Package manifest loads and validates the comsniff launch manifest.
//
// The manifest (comsniff.json) describes everything the launcher and the
// build pipeline need: the runtime to probe for, the libraries to
// probe/install, the application to run, and the packaging configuration.
// The file format is JSONC (JSON with Comments) — manifests are hand
// edited and deserve inline commentary — so this package uses
// github.com/tidwall/jsonc to strip comments before parsing with the
// standard encoding/json library.
package manifest
