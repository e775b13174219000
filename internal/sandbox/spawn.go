// Package sandbox implements the sandboxed child-process runner: it starts a
// program under POSIX resource limits with caller-supplied stdio, and
// collects the raw termination accounting (exit status, signal, CPU time,
// peak RSS) the verdict classifier needs.
//
// Go cannot safely run arbitrary code between fork and exec (only the
// runtime's own forkAndExecInChild is async-signal-safe), so rather than
// forking directly this package re-executes the current binary into a hidden
// bootstrap subcommand that applies rlimits and then true-execs the target.
// This mirrors how the teacher repo's limited runner re-execs itself to set
// up cgroups before the real exec.
package sandbox

import (
	"encoding/json"
	"os"
	"os/exec"
	"syscall"
	"time"

	"github.com/judgecore/judgecore/internal/jcerr"
	"github.com/judgecore/judgecore/internal/rlimit"
)

// BootstrapArg is the name of the hidden subcommand a re-exec'd process is
// started with. cmd/root.go intercepts os.Args[1] == BootstrapArg before
// handing control to cobra, exactly as the teacher's cmd/root.go intercepts
// "child-exec".
const BootstrapArg = "__rlimit-exec"

// ChildFailedPreExecStatus is the well-known exit status a bootstrap process
// uses when it fails before it can exec the target. The verdict classifier
// (and the batch/interactive drivers) treat this as SystemError, never as a
// contestant RuntimeError.
const ChildFailedPreExecStatus = 111

// SpawnRequest describes one process to start under the sandbox.
type SpawnRequest struct {
	// Program is the path to the executable.
	Program string
	// Args is the argument vector the target is exec'd with; Args[0] is its
	// argv[0], which every caller in this repository sets to the program
	// name or path. An empty Args execs the target with argv [Program].
	Args []string
	// Limits constrains the spawned process. Zero value applies no limits.
	Limits rlimit.Config
	// Stdin, Stdout, Stderr, if non-nil, are duplicated onto descriptors
	// 0/1/2 of the child. A nil stream is inherited from this process.
	Stdin, Stdout, Stderr *os.File
}

// RawRunResult is the raw accounting of a terminated child, produced exactly
// once per spawn by Wait.
type RawRunResult struct {
	// ExitStatus is the numeric code reported to the parent. Undefined
	// (zero) if the process was killed by a signal.
	ExitStatus int
	// Signal is the terminating signal, or 0 if the process exited normally.
	Signal syscall.Signal
	// UserTime is user CPU time consumed.
	UserTime time.Duration
	// SystemTime is system CPU time consumed.
	SystemTime time.Duration
	// MaxRSSKB is peak resident set size, in kilobytes.
	MaxRSSKB int64
}

// Signaled reports whether the child was terminated by a signal.
func (r RawRunResult) Signaled() bool { return r.Signal != 0 }

// ParentHandle represents a spawned child as seen from the parent process.
// The zero value is not usable; obtain one from Spawn.
type ParentHandle struct {
	cmd *exec.Cmd
	pid int
}

// PID returns the bootstrap process's PID (which, after the bootstrap's
// syscall.Exec, is also the target's PID — the OS-level process identity does
// not change across exec).
func (h *ParentHandle) PID() int { return h.pid }

// Process exposes the underlying *os.Process for signaling (SIGTERM/SIGKILL),
// as the interactive driver does to stop whichever side is still running.
func (h *ParentHandle) Process() *os.Process { return h.cmd.Process }

// bootstrapArgs is JSON-marshaled as the bootstrap subcommand's single
// argument.
type bootstrapArgs struct {
	Limits  rlimit.Config `json:"limits"`
	Program string        `json:"program"`
	Args    []string      `json:"args"`
}

// Spawn starts the process described by req and returns a handle to it. It is
// the sole entry point: there is no fork-returns-in-child branch to observe,
// since cmd.Start forks and execs in one step into the bootstrap, and it is
// the bootstrap, not a forked copy of this process, that applies the limits
// and execs the target.
func Spawn(req SpawnRequest) (*ParentHandle, error) {
	self, err := os.Executable()
	if err != nil {
		return nil, jcerr.WrapSyscall("executable", err)
	}
	payload, err := json.Marshal(bootstrapArgs{Limits: req.Limits, Program: req.Program, Args: req.Args})
	if err != nil {
		return nil, jcerr.New(jcerr.InvalidArgument, err)
	}
	cmd := exec.Command(self, BootstrapArg, string(payload))
	if req.Stdin != nil {
		cmd.Stdin = req.Stdin
	} else {
		cmd.Stdin = os.Stdin
	}
	if req.Stdout != nil {
		cmd.Stdout = req.Stdout
	} else {
		cmd.Stdout = os.Stdout
	}
	if req.Stderr != nil {
		cmd.Stderr = req.Stderr
	} else {
		cmd.Stderr = os.Stderr
	}
	if err := cmd.Start(); err != nil {
		return nil, jcerr.WrapSyscall("fork_exec", err)
	}
	return &ParentHandle{cmd: cmd, pid: cmd.Process.Pid}, nil
}

// Wait blocks until the child terminates and returns its raw accounting.
// Exactly one Wait completes per successful Spawn.
func (h *ParentHandle) Wait() (RawRunResult, error) {
	err := h.cmd.Wait()
	state := h.cmd.ProcessState
	if state == nil {
		return RawRunResult{}, jcerr.WrapSyscall("wait4", err)
	}
	result := RawRunResult{
		UserTime:   state.UserTime(),
		SystemTime: state.SystemTime(),
	}
	if ws, ok := state.Sys().(syscall.WaitStatus); ok {
		if ws.Signaled() {
			result.Signal = ws.Signal()
		} else {
			result.ExitStatus = ws.ExitStatus()
		}
	} else {
		result.ExitStatus = state.ExitCode()
	}
	if ru, ok := state.SysUsage().(*syscall.Rusage); ok {
		result.MaxRSSKB = ru.Maxrss
	}
	// exec.Cmd.Wait returns a non-nil *exec.ExitError for any non-zero exit or
	// signal death; that is expected and fully captured above, not a driver
	// error. Any other error (e.g. I/O error flushing stdio) is surfaced.
	if err != nil {
		if _, ok := err.(*exec.ExitError); !ok {
			return result, jcerr.WrapSyscall("wait4", err)
		}
	}
	return result, nil
}
