// Package rlimit installs POSIX resource limits on the calling process
// before it execs into a contestant, checker, or interactor binary.
package rlimit

import (
	"golang.org/x/sys/unix"

	"github.com/judgecore/judgecore/internal/jcerr"
)

// Pair is an optional (soft, hard) resource limit.
type Pair struct {
	Soft uint64
	Hard uint64
}

// Config is the set of resource axes a spawn may constrain. A nil Pair means
// the axis is left at its inherited default.
type Config struct {
	// AddressSpace bounds virtual memory (RLIMIT_AS), in bytes.
	AddressSpace *Pair
	// Stack bounds the stack segment (RLIMIT_STACK), in bytes.
	Stack *Pair
	// CPUSeconds bounds CPU time (RLIMIT_CPU), in whole seconds.
	CPUSeconds *Pair
	// FileSize bounds file sizes a write may grow to (RLIMIT_FSIZE), in bytes.
	FileSize *Pair
	// NProc bounds the per-user process count (RLIMIT_NPROC).
	NProc *Pair
}

// Apply sets each present axis of cfg on the calling process via setrlimit.
// Called by the re-exec bootstrap after fork and before exec. An absent axis
// is left untouched.
func Apply(cfg Config) error {
	for _, axis := range []struct {
		resource int
		pair     *Pair
	}{
		{unix.RLIMIT_AS, cfg.AddressSpace},
		{unix.RLIMIT_STACK, cfg.Stack},
		{unix.RLIMIT_CPU, cfg.CPUSeconds},
		{unix.RLIMIT_FSIZE, cfg.FileSize},
		{unix.RLIMIT_NPROC, cfg.NProc},
	} {
		if axis.pair == nil {
			continue
		}
		if axis.pair.Soft > axis.pair.Hard {
			return jcerr.Newf(jcerr.InvalidArgument, "rlimit %d: soft %d > hard %d", axis.resource, axis.pair.Soft, axis.pair.Hard)
		}
		rl := unix.Rlimit{Cur: axis.pair.Soft, Max: axis.pair.Hard}
		if err := unix.Setrlimit(axis.resource, &rl); err != nil {
			return jcerr.WrapSyscall("setrlimit", err)
		}
	}
	return nil
}
