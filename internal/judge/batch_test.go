package judge

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/judgecore/judgecore/internal/rlimit"
	"github.com/judgecore/judgecore/internal/sandbox"
	"github.com/judgecore/judgecore/internal/verdict"
)

// TestMain lets this package's test binary re-exec itself into the rlimit
// bootstrap subcommand, the same way the real judgecore binary's cmd.Execute
// would before cobra parsing.
func TestMain(m *testing.M) {
	if len(os.Args) > 2 && os.Args[1] == sandbox.BootstrapArg {
		sandbox.RunBootstrap(os.Args[2])
		os.Exit(sandbox.ChildFailedPreExecStatus)
	}
	os.Exit(m.Run())
}

// writeComparingChecker writes a shell script implementing the checker
// contract: exit 0 when the contestant's output file byte-matches the answer
// file, non-zero otherwise, always leaving a diagnostics note behind.
func writeComparingChecker(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "checker.sh")
	// Invoked as (program_name, input_path, output_path, answer_path,
	// diagnostics_path); program_name is argv[0], so $1=input $2=output
	// $3=answer $4=diagnostics.
	script := "#!/bin/sh\n" +
		"if cmp -s \"$2\" \"$3\"; then\n" +
		"  echo ok > \"$4\"\n" +
		"  exit 0\n" +
		"else\n" +
		"  echo mismatch > \"$4\"\n" +
		"  exit 1\n" +
		"fi\n"
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write checker: %v", err)
	}
	return path
}

func TestRunBatchAccepted(t *testing.T) {
	dir := t.TempDir()
	inputPath := filepath.Join(dir, "input")
	answerPath := filepath.Join(dir, "answer")
	if err := os.WriteFile(inputPath, []byte("hello\n"), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	if err := os.WriteFile(answerPath, []byte("hello\n"), 0o644); err != nil {
		t.Fatalf("write answer: %v", err)
	}
	checker := writeComparingChecker(t, dir)

	result, err := RunBatch(BatchTask{
		ContestantProgram: "/bin/cat",
		ContestantArgs:    []string{"cat"},
		InputPath:         inputPath,
		AnswerPath:        answerPath,
		CheckerProgram:    checker,
		WorkDir:           dir,
	})
	if err != nil {
		t.Fatalf("run batch: %v", err)
	}
	if result.Verdict != verdict.Accepted {
		t.Fatalf("expected Accepted, got %v", result.Verdict)
	}
	if result.CheckerExitCode != 0 {
		t.Fatalf("expected checker exit 0, got %d", result.CheckerExitCode)
	}
}

func TestRunBatchWrongAnswer(t *testing.T) {
	dir := t.TempDir()
	inputPath := filepath.Join(dir, "input")
	answerPath := filepath.Join(dir, "answer")
	if err := os.WriteFile(inputPath, []byte("hello\n"), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	if err := os.WriteFile(answerPath, []byte("world\n"), 0o644); err != nil {
		t.Fatalf("write answer: %v", err)
	}
	checker := writeComparingChecker(t, dir)

	result, err := RunBatch(BatchTask{
		ContestantProgram: "/bin/cat",
		ContestantArgs:    []string{"cat"},
		InputPath:         inputPath,
		AnswerPath:        answerPath,
		CheckerProgram:    checker,
		WorkDir:           dir,
	})
	if err != nil {
		t.Fatalf("run batch: %v", err)
	}
	if result.Verdict != verdict.WrongAnswer {
		t.Fatalf("expected WrongAnswer, got %v", result.Verdict)
	}
}

func TestRunBatchRuntimeErrorSkipsChecker(t *testing.T) {
	dir := t.TempDir()
	inputPath := filepath.Join(dir, "input")
	answerPath := filepath.Join(dir, "answer")
	if err := os.WriteFile(inputPath, []byte("x"), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	if err := os.WriteFile(answerPath, []byte("x"), 0o644); err != nil {
		t.Fatalf("write answer: %v", err)
	}
	checker := writeComparingChecker(t, dir)

	result, err := RunBatch(BatchTask{
		ContestantProgram: "/bin/sh",
		ContestantArgs:    []string{"sh", "-c", "exit 7"},
		InputPath:         inputPath,
		AnswerPath:        answerPath,
		CheckerProgram:    checker,
		WorkDir:           dir,
	})
	if err != nil {
		t.Fatalf("run batch: %v", err)
	}
	if result.Verdict != verdict.RuntimeError {
		t.Fatalf("expected RuntimeError, got %v", result.Verdict)
	}
	if result.ContestantExitCode != 7 {
		t.Fatalf("expected contestant exit 7, got %d", result.ContestantExitCode)
	}
	if result.CheckerExitCode != 0 {
		t.Fatalf("checker should not have run, got exit %d", result.CheckerExitCode)
	}
}

func TestRunBatchCheckerTrippingFileSizeLimitIsSystemError(t *testing.T) {
	dir := t.TempDir()
	inputPath := filepath.Join(dir, "input")
	answerPath := filepath.Join(dir, "answer")
	if err := os.WriteFile(inputPath, []byte("hello\n"), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	if err := os.WriteFile(answerPath, []byte("hello\n"), 0o644); err != nil {
		t.Fatalf("write answer: %v", err)
	}
	// A checker that ignores the contract and just writes past a 1KB fsize
	// limit on its own diagnostics output. Run under the same limits as the
	// contestant, this is killed by SIGXFSZ before it can exit cleanly. The
	// shell execs head so the checker process itself is the one killed.
	path := filepath.Join(dir, "checker.sh")
	script := "#!/bin/sh\nexec head -c 4096 /dev/zero >> \"$4\"\nexit 0\n"
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write checker: %v", err)
	}

	result, err := RunBatch(BatchTask{
		ContestantProgram: "/bin/cat",
		ContestantArgs:    []string{"cat"},
		ContestantLimits:  rlimit.Config{FileSize: &rlimit.Pair{Soft: 1024, Hard: 1024}},
		InputPath:         inputPath,
		AnswerPath:        answerPath,
		CheckerProgram:    path,
		WorkDir:           dir,
	})
	if err != nil {
		t.Fatalf("run batch: %v", err)
	}
	if result.Verdict != verdict.SystemError {
		t.Fatalf("expected SystemError, got %v", result.Verdict)
	}
}

func TestRunBatchTimeLimitExceeded(t *testing.T) {
	dir := t.TempDir()
	inputPath := filepath.Join(dir, "input")
	answerPath := filepath.Join(dir, "answer")
	if err := os.WriteFile(inputPath, []byte("x"), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	if err := os.WriteFile(answerPath, []byte("x"), 0o644); err != nil {
		t.Fatalf("write answer: %v", err)
	}
	checker := writeComparingChecker(t, dir)

	result, err := RunBatch(BatchTask{
		ContestantProgram: "/bin/sh",
		ContestantArgs:    []string{"sh", "-c", "while true; do :; done"},
		ContestantLimits:  rlimit.Config{CPUSeconds: &rlimit.Pair{Soft: 1, Hard: 2}},
		InputPath:         inputPath,
		AnswerPath:        answerPath,
		CheckerProgram:    checker,
		WorkDir:           dir,
	})
	if err != nil {
		t.Fatalf("run batch: %v", err)
	}
	if result.Verdict != verdict.TimeLimitExceeded {
		t.Fatalf("expected TimeLimitExceeded, got %v", result.Verdict)
	}
}
