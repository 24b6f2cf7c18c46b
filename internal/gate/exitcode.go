package gate

// Process exit codes. A failed gate and a failed run are separate signals.
const (
	ExitPassed = 0
	ExitFailed = 1
	ExitError  = 2
)

// ExitCode maps a verdict to the process exit status
func ExitCode(v Verdict) int {
	if v.Passed() {
		return ExitPassed
	}
	return ExitFailed
}
