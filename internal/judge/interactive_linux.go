package judge

import (
	"os"

	"github.com/judgecore/judgecore/internal/epoll"
	"github.com/judgecore/judgecore/internal/jcerr"
	"github.com/judgecore/judgecore/internal/rlimit"
	"github.com/judgecore/judgecore/internal/sandbox"
	"github.com/judgecore/judgecore/internal/verdict"
)

const proxyChunkSize = 1024

// InteractiveTask describes one interactive judging run: a contestant and an
// interactor exchanging bytes through the proxy, with the interactor's own
// recorded output compared against AnswerPath by Checker.
type InteractiveTask struct {
	ContestantProgram string
	ContestantArgs    []string
	ContestantLimits  rlimit.Config

	InteractorProgram string

	InputPath      string
	AnswerPath     string
	CheckerProgram string
	WorkDir        string
}

// These tag values let pumpUntilExit's epoll loop switch on what a ready
// descriptor means instead of on its raw fd number. exitTagUser/
// exitTagInteractor double as the byte written down the exit-notifier pipes
// themselves (see sandbox.Listener.SetExitFD), since both uses only need a
// single distinguishing byte/tag per side.
const (
	exitTagUser              = 1
	exitTagInteractor        = 2
	dataTagUserToProxy       = 3
	dataTagInteractorToProxy = 4
)

// RunInteractive wires up the four-pipe proxy topology described by the
// interactive judging contract, pumps bytes between contestant and
// interactor via a level-triggered multiplexer until either side exits, then
// scores the interactor's recorded output against the answer file.
func RunInteractive(task InteractiveTask) (JudgeResultInfo, error) {
	// pipe1: contestant.stdout -> proxy
	userToProxyR, userToProxyW, err := epoll.Pipe()
	if err != nil {
		return JudgeResultInfo{}, err
	}
	// pipe2: proxy -> contestant.stdin
	proxyToUserR, proxyToUserW, err := epoll.Pipe()
	if err != nil {
		return JudgeResultInfo{}, err
	}
	// pipe3: interactor.stdout -> proxy
	interactorToProxyR, interactorToProxyW, err := epoll.Pipe()
	if err != nil {
		return JudgeResultInfo{}, err
	}
	// pipe4: proxy -> interactor.stdin
	proxyToInteractorR, proxyToInteractorW, err := epoll.Pipe()
	if err != nil {
		return JudgeResultInfo{}, err
	}

	for _, fd := range []int{userToProxyR, interactorToProxyR, proxyToUserW, proxyToInteractorW} {
		if err := epoll.SetNonblocking(fd); err != nil {
			return JudgeResultInfo{}, err
		}
	}

	contestantStdin := os.NewFile(uintptr(proxyToUserR), "contestant-stdin")
	contestantStdout := os.NewFile(uintptr(userToProxyW), "contestant-stdout")
	interactorStdin := os.NewFile(uintptr(proxyToInteractorR), "interactor-stdin")
	interactorStdout := os.NewFile(uintptr(interactorToProxyW), "interactor-stdout")

	contestantHandle, err := sandbox.Spawn(sandbox.SpawnRequest{
		Program: task.ContestantProgram,
		Args:    task.ContestantArgs,
		Limits:  task.ContestantLimits,
		Stdin:   contestantStdin,
		Stdout:  contestantStdout,
	})
	if err != nil {
		return JudgeResultInfo{}, err
	}

	interactorOutputPath := task.WorkDir + "/interactor_output"
	interactorHandle, err := sandbox.Spawn(sandbox.SpawnRequest{
		Program: task.InteractorProgram,
		Args:    []string{task.InteractorProgram, task.InputPath, interactorOutputPath, task.AnswerPath},
		Limits:  task.ContestantLimits,
		Stdin:   interactorStdin,
		Stdout:  interactorStdout,
	})
	if err != nil {
		return JudgeResultInfo{}, err
	}

	// The proxy's copies of the children's stdio ends were duplicated by
	// Spawn; close this process's copies so EOF propagates correctly when a
	// peer exits instead of being held open by the parent too.
	contestantStdin.Close()
	contestantStdout.Close()
	interactorStdin.Close()
	interactorStdout.Close()

	userExitR, userExitW, err := epoll.Pipe()
	if err != nil {
		return JudgeResultInfo{}, err
	}
	interactorExitR, interactorExitW, err := epoll.Pipe()
	if err != nil {
		return JudgeResultInfo{}, err
	}

	userListener := sandbox.NewListener(contestantHandle)
	userListener.SetExitFD(userExitW, exitTagUser)
	interactorListener := sandbox.NewListener(interactorHandle)
	interactorListener.SetExitFD(interactorExitW, exitTagInteractor)

	poller, err := epoll.New()
	if err != nil {
		return JudgeResultInfo{}, err
	}
	defer poller.Close()

	for _, reg := range []struct {
		fd  int
		tag uint64
	}{
		{userToProxyR, dataTagUserToProxy},
		{interactorToProxyR, dataTagInteractorToProxy},
		{userExitR, exitTagUser},
		{interactorExitR, exitTagInteractor},
	} {
		if err := poller.AddRead(reg.fd, reg.tag); err != nil {
			return JudgeResultInfo{}, err
		}
	}

	transcriptPath := task.WorkDir + "/transcript"
	transcript, err := os.OpenFile(transcriptPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return JudgeResultInfo{}, jcerr.New(jcerr.Io, err)
	}
	defer transcript.Close()

	if err := pumpUntilExit(poller, userToProxyR, interactorToProxyR, userExitR, interactorExitR, proxyToInteractorW, proxyToUserW, transcript); err != nil {
		return JudgeResultInfo{}, err
	}

	// One side exited; the other may still be running. There is no soft
	// wall-clock deadline above RLIMIT_CPU (see the interactive driver's
	// design notes), so the remaining side is force-killed rather than
	// waited on indefinitely.
	_ = contestantHandle.Process().Kill()
	_ = interactorHandle.Process().Kill()

	contestantResult, err := userListener.Wait()
	if err != nil {
		return JudgeResultInfo{}, err
	}
	if _, err := interactorListener.Wait(); err != nil {
		return JudgeResultInfo{}, err
	}

	diagnosticsPath := task.WorkDir + "/diagnostics"
	checkerResult, err := runChecker(task.CheckerProgram, task.ContestantLimits, task.InputPath, interactorOutputPath, task.AnswerPath, diagnosticsPath)
	if err != nil {
		return JudgeResultInfo{}, err
	}

	return JudgeResultInfo{
		Verdict:            verdict.ClassifyChecker(checkerResult),
		TimeMillis:         contestantResult.UserTime.Milliseconds(),
		MemoryKB:           contestantResult.MaxRSSKB,
		ContestantExitCode: contestantResult.ExitStatus,
		CheckerExitCode:    checkerResult.ExitStatus,
	}, nil
}

// pumpUntilExit drains ready data pipes into their peer and the transcript
// until either exit-notifier becomes ready, matching the proxy's level
// triggered, single batch-per-wake event loop.
func pumpUntilExit(poller *epoll.Poller, userToProxyR, interactorToProxyR, userExitR, interactorExitR, proxyToInteractorW, proxyToUserW int, transcript *os.File) error {
	for {
		ready, err := poller.Wait(-1)
		if err != nil {
			return err
		}
		exited := false
		for _, ev := range ready {
			switch ev.Tag {
			case exitTagUser, exitTagInteractor:
				exited = true
			case dataTagUserToProxy:
				drain(userToProxyR, proxyToInteractorW, transcript)
			case dataTagInteractorToProxy:
				drain(interactorToProxyR, proxyToUserW, transcript)
			}
		}
		if exited {
			return nil
		}
	}
}

// drain repeatedly reads from src into a fixed buffer until EAGAIN, writing
// each chunk to both dst and the transcript. Both writes are best-effort: a
// peer that stops reading is the peer's own resource-limit problem, not the
// proxy's.
func drain(src, dst int, transcript *os.File) {
	var buf [proxyChunkSize]byte
	for {
		n, err := epollRead(src, buf[:])
		if n > 0 {
			epollWrite(dst, buf[:n])
			_, _ = transcript.Write(buf[:n])
		}
		if err != nil || n <= 0 {
			return
		}
	}
}
