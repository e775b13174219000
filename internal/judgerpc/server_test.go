package judgerpc

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/judgecore/judgecore/internal/judge"
	"github.com/judgecore/judgecore/internal/sandbox"
)

// TestMain lets this package's test binary re-exec itself into the rlimit
// bootstrap subcommand, as RunJudge's underlying judge.Service spawns real
// sandboxed processes.
func TestMain(m *testing.M) {
	if len(os.Args) > 2 && os.Args[1] == sandbox.BootstrapArg {
		sandbox.RunBootstrap(os.Args[2])
		os.Exit(sandbox.ChildFailedPreExecStatus)
	}
	os.Exit(m.Run())
}

func writeChecker(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "checker.sh")
	script := "#!/bin/sh\nif cmp -s \"$2\" \"$3\"; then echo ok > \"$4\"; exit 0; else echo no > \"$4\"; exit 1; fi\n"
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write checker: %v", err)
	}
	return path
}

func TestRunJudgeBatchAccepted(t *testing.T) {
	dir := t.TempDir()
	inputPath := filepath.Join(dir, "input")
	answerPath := filepath.Join(dir, "answer")
	if err := os.WriteFile(inputPath, []byte("hi\n"), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	if err := os.WriteFile(answerPath, []byte("hi\n"), 0o644); err != nil {
		t.Fatalf("write answer: %v", err)
	}
	checker := writeChecker(t, dir)

	svc := NewJudgeServiceServer(judge.NewService())
	resp, err := svc.RunJudge(context.Background(), &JudgeRequest{
		SubmissionID:      "sub-1",
		ContestantProgram: "/bin/cat",
		ContestantArgs:    []string{"cat"},
		InputPath:         inputPath,
		AnswerPath:        answerPath,
		CheckerProgram:    checker,
		WorkDir:           dir,
	})
	if err != nil {
		t.Fatalf("run judge: %v", err)
	}
	if resp.Verdict != "accepted" {
		t.Fatalf("expected accepted, got %q", resp.Verdict)
	}
}

func TestRunJudgeRejectsEmptySubmissionID(t *testing.T) {
	svc := NewJudgeServiceServer(judge.NewService())
	_, err := svc.RunJudge(context.Background(), &JudgeRequest{})
	if err != errSubmissionIDRequired {
		t.Fatalf("expected errSubmissionIDRequired, got %v", err)
	}
}

func TestToRlimitConfigRequiresBothBounds(t *testing.T) {
	cfg := toRlimitConfig(&JudgeRequest{
		CPUSecondsSoft:     wrapperspb.UInt64(1),
		AddressSpaceSoftKB: wrapperspb.UInt64(1024),
	})
	if cfg.CPUSeconds != nil || cfg.AddressSpace != nil {
		t.Fatalf("expected no limits when only soft bounds are set, got %+v", cfg)
	}
}

