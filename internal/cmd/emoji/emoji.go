// Package emoji provides the status symbols printed by the CLI.
package emoji

const (
	// Success marks a completed operation.
	Success = "✓"

	// Error marks a failed operation.
	Error = "✗"

	// Warning marks a non-fatal problem, such as a failed mirror push.
	Warning = "!"

	// Info marks neutral notices.
	Info = "i"
)
