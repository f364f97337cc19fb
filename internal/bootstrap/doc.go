// Package bootstrap implements the launcher: verify the runtime, ensure
// the required libraries are importable (installing missing ones), then
// run the wrapped application.
//
// The behavior is deliberately simple, matching the operational wrapper
// it replaces:
//
//   - a missing runtime is fatal (exit 1) and short-circuits everything
//   - a failed library probe triggers exactly one install attempt whose
//     outcome is not verified — the application run is the real test
//   - an application failure is reported and its exit code propagated
//
// Child processes are executed through the CommandRunner interface so
// tests can substitute a fake and assert on the exact invocations.
package bootstrap
