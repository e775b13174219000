package verdict

import (
	"syscall"
	"testing"
	"time"

	"github.com/judgecore/judgecore/internal/rlimit"
	"github.com/judgecore/judgecore/internal/sandbox"
)

func TestClassifyCleanExitDefersToChecker(t *testing.T) {
	v := Classify(sandbox.RawRunResult{ExitStatus: 0}, rlimit.Config{})
	if v != Accepted {
		t.Fatalf("expected Accepted placeholder for exit 0, got %v", v)
	}
}

func TestClassifyNonZeroExitIsRuntimeError(t *testing.T) {
	v := Classify(sandbox.RawRunResult{ExitStatus: 1}, rlimit.Config{})
	if v != RuntimeError {
		t.Fatalf("expected RuntimeError, got %v", v)
	}
}

func TestClassifySIGXCPUIsTimeLimitExceeded(t *testing.T) {
	v := Classify(sandbox.RawRunResult{Signal: syscall.SIGXCPU}, rlimit.Config{})
	if v != TimeLimitExceeded {
		t.Fatalf("expected TimeLimitExceeded, got %v", v)
	}
}

func TestClassifyCrashSignalIsRuntimeError(t *testing.T) {
	for _, sig := range []syscall.Signal{syscall.SIGSEGV, syscall.SIGBUS, syscall.SIGABRT, syscall.SIGFPE, syscall.SIGILL, syscall.SIGKILL} {
		v := Classify(sandbox.RawRunResult{Signal: sig}, rlimit.Config{})
		if v != RuntimeError {
			t.Fatalf("signal %v: expected RuntimeError, got %v", sig, v)
		}
	}
}

func TestClassifyUserTimeAtSoftLimitIsTimeLimitExceeded(t *testing.T) {
	v := Classify(sandbox.RawRunResult{
		ExitStatus: 0,
		UserTime:   1 * time.Second,
	}, rlimit.Config{CPUSeconds: &rlimit.Pair{Soft: 1, Hard: 2}})
	if v != TimeLimitExceeded {
		t.Fatalf("expected TimeLimitExceeded when user time reaches soft limit, got %v", v)
	}
}

func TestClassifyCheckerVerdicts(t *testing.T) {
	if v := ClassifyChecker(sandbox.RawRunResult{ExitStatus: 0}); v != Accepted {
		t.Fatalf("expected Accepted, got %v", v)
	}
	if v := ClassifyChecker(sandbox.RawRunResult{ExitStatus: 1}); v != WrongAnswer {
		t.Fatalf("expected WrongAnswer, got %v", v)
	}
	if v := ClassifyChecker(sandbox.RawRunResult{Signal: syscall.SIGKILL}); v != SystemError {
		t.Fatalf("expected SystemError, got %v", v)
	}
}
