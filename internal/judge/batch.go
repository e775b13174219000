package judge

import (
	"os"

	"github.com/judgecore/judgecore/internal/jcerr"
	"github.com/judgecore/judgecore/internal/rlimit"
	"github.com/judgecore/judgecore/internal/sandbox"
	"github.com/judgecore/judgecore/internal/verdict"
)

// BatchTask describes one non-interactive judging run: a contestant binary
// read from InputPath and compared, via Checker, against AnswerPath.
type BatchTask struct {
	ContestantProgram string
	ContestantArgs    []string
	ContestantLimits  rlimit.Config

	InputPath  string
	AnswerPath string

	// CheckerProgram is invoked as
	// (program_name, input_path, contestant_output_path, answer_path, diagnostics_path)
	// on contestant exit status 0.
	CheckerProgram string
	WorkDir        string
}

// RunBatch executes a batch judging task: spawn the contestant with stdin
// bound to the input file and stdout to a freshly created output file in
// WorkDir, wait, classify, and — if the contestant exited cleanly — invoke
// the checker against the captured output.
func RunBatch(task BatchTask) (JudgeResultInfo, error) {
	input, err := os.Open(task.InputPath)
	if err != nil {
		return JudgeResultInfo{}, jcerr.New(jcerr.Io, err)
	}
	defer input.Close()

	outputPath := task.WorkDir + "/output"
	output, err := os.Create(outputPath)
	if err != nil {
		return JudgeResultInfo{}, jcerr.New(jcerr.Io, err)
	}

	handle, err := sandbox.Spawn(sandbox.SpawnRequest{
		Program: task.ContestantProgram,
		Args:    task.ContestantArgs,
		Limits:  task.ContestantLimits,
		Stdin:   input,
		Stdout:  output,
	})
	if err != nil {
		output.Close()
		return JudgeResultInfo{}, err
	}

	result, err := handle.Wait()
	output.Close()
	if err != nil {
		return JudgeResultInfo{}, err
	}

	contestantVerdict := verdict.Classify(result, task.ContestantLimits)
	info := JudgeResultInfo{
		Verdict:            contestantVerdict,
		TimeMillis:         result.UserTime.Milliseconds(),
		MemoryKB:           result.MaxRSSKB,
		ContestantExitCode: result.ExitStatus,
	}
	if contestantVerdict != verdict.Accepted {
		return info, nil
	}

	diagnosticsPath := task.WorkDir + "/diagnostics"
	checkerResult, err := runChecker(task.CheckerProgram, task.ContestantLimits, task.InputPath, outputPath, task.AnswerPath, diagnosticsPath)
	if err != nil {
		return JudgeResultInfo{}, err
	}
	info.Verdict = verdict.ClassifyChecker(checkerResult)
	info.CheckerExitCode = checkerResult.ExitStatus
	return info, nil
}

// runChecker spawns the checker with the positional argument contract:
// program name, input path, contestant output path, answer path, diagnostics
// output path. It runs under the same limits as the contestant, so a checker
// that trips fsize writing oversized diagnostics is reported as SystemError
// rather than silently succeeding unconstrained.
func runChecker(program string, limits rlimit.Config, inputPath, outputPath, answerPath, diagnosticsPath string) (sandbox.RawRunResult, error) {
	handle, err := sandbox.Spawn(sandbox.SpawnRequest{
		Program: program,
		Args:    []string{program, inputPath, outputPath, answerPath, diagnosticsPath},
		Limits:  limits,
	})
	if err != nil {
		return sandbox.RawRunResult{}, err
	}
	return handle.Wait()
}
