package sandbox

import (
	"encoding/json"
	"fmt"
	"os"
	"syscall"

	"github.com/judgecore/judgecore/internal/rlimit"
)

// RunBootstrap is the entry point for a re-exec'd bootstrap process. It is
// called by cmd's Execute before cobra parses arguments, mirroring the
// teacher's "child-exec" shortcut in cmd/root.go. payload is the single JSON
// argument spawn() encoded.
//
// RunBootstrap never returns on success: it replaces the process image via
// syscall.Exec. On any failure before that point it terminates the process
// with ChildFailedPreExecStatus, satisfying spec.md's invariant that a
// would-be "is child" path never returns to a caller that might mistake it
// for the parent.
func RunBootstrap(payload string) {
	var args bootstrapArgs
	if err := json.Unmarshal([]byte(payload), &args); err != nil {
		fmt.Fprintf(os.Stderr, "judgecore bootstrap: invalid args: %v\n", err)
		os.Exit(ChildFailedPreExecStatus)
	}
	if err := rlimit.Apply(args.Limits); err != nil {
		fmt.Fprintf(os.Stderr, "judgecore bootstrap: applying rlimits: %v\n", err)
		os.Exit(ChildFailedPreExecStatus)
	}
	execArgv := args.Args
	if len(execArgv) == 0 {
		execArgv = []string{args.Program}
	}
	if err := syscall.Exec(args.Program, execArgv, os.Environ()); err != nil {
		fmt.Fprintf(os.Stderr, "judgecore bootstrap: exec %s: %v\n", args.Program, err)
		os.Exit(ChildFailedPreExecStatus)
	}
	// unreachable: syscall.Exec only returns on error
}
