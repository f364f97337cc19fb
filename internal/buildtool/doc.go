// Package buildtool implements the packaging pipeline: activate the
// project's isolated environment, clear previous build artifacts, and
// invoke the packaging tool to produce a single-file executable.
//
// The pipeline mirrors the build script it replaces:
//
//   - environment activation is a PATH prepend and its failure is
//     deliberately unchecked (the tool may be globally installed)
//   - artifact cleanup (build/, dist/, *.spec) is best-effort and
//     idempotent; errors are suppressed
//   - success is reported only when the packaging tool exits 0; there is
//     no retry and no cleanup of partial artifacts on failure
package buildtool
