// Package exitcode defines exit codes for the CLI.
package exitcode

const (
	// Success indicates successful completion.
	Success = 0

	// UserError indicates a user error (bad args, unknown task, bad format).
	UserError = 1

	// AuthError indicates the access gate stayed closed or config.toml is invalid.
	AuthError = 2

	// BackendError indicates the storage backend could not be opened.
	BackendError = 3
)
