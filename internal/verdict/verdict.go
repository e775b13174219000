// Package verdict maps the raw accounting a sandboxed run produces into the
// judge's outcome taxonomy. Classification is a pure function of a
// RawRunResult and the limits it was run under; it never touches the
// filesystem or blocks.
package verdict

import (
	"syscall"

	"github.com/judgecore/judgecore/internal/rlimit"
	"github.com/judgecore/judgecore/internal/sandbox"
)

// Verdict is the outcome category of a judging run.
type Verdict string

const (
	Accepted              Verdict = "accepted"
	WrongAnswer           Verdict = "wrong_answer"
	TimeLimitExceeded     Verdict = "time_limit_exceeded"
	MemoryLimitExceeded   Verdict = "memory_limit_exceeded"
	RuntimeError          Verdict = "runtime_error"
	IdlenessLimitExceeded Verdict = "idleness_limit_exceeded" // reserved, not yet produced by Classify
	SystemError           Verdict = "system_error"
)

// Classify maps a contestant's raw run result into a Verdict, per the
// decision table: CPU exhaustion beats any other signal or exit status, then
// the crash signals, then a bare non-zero exit. The bootstrap's reserved
// pre-exec status (sandbox.ChildFailedPreExecStatus) is SystemError. A zero
// exit status returns Accepted only as a placeholder: the final verdict is
// left to the checker (ClassifyChecker).
func Classify(result sandbox.RawRunResult, limits rlimit.Config) Verdict {
	if result.Signaled() {
		if result.Signal == syscall.SIGXCPU || cpuLimitExceeded(result, limits) {
			return TimeLimitExceeded
		}
		return RuntimeError
	}
	if cpuLimitExceeded(result, limits) {
		return TimeLimitExceeded
	}
	if result.ExitStatus == sandbox.ChildFailedPreExecStatus {
		return SystemError
	}
	if result.ExitStatus != 0 {
		return RuntimeError
	}
	return Accepted
}

func cpuLimitExceeded(result sandbox.RawRunResult, limits rlimit.Config) bool {
	if limits.CPUSeconds == nil {
		return false
	}
	return uint64(result.UserTime.Seconds()) >= limits.CPUSeconds.Soft
}

// ClassifyChecker maps a checker sub-run's raw result to Accepted (exit 0),
// WrongAnswer (non-zero exit), or SystemError (killed by signal, or exited
// with the bootstrap's reserved pre-exec status).
func ClassifyChecker(result sandbox.RawRunResult) Verdict {
	if result.Signaled() || result.ExitStatus == sandbox.ChildFailedPreExecStatus {
		return SystemError
	}
	if result.ExitStatus != 0 {
		return WrongAnswer
	}
	return Accepted
}
