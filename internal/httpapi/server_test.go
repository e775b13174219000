package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/judgecore/judgecore/internal/judge"
	"github.com/judgecore/judgecore/internal/sandbox"
)

// TestMain lets this package's test binary re-exec itself into the rlimit
// bootstrap subcommand, as /api/submit runs real sandboxed processes.
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

func TestHealthz(t *testing.T) {
	log := zap.NewNop()
	router := NewRouter(judge.NewService(), log, false)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestSubmitBatchAccepted(t *testing.T) {
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

	log := zap.NewNop()
	router := NewRouter(judge.NewService(), log, false)

	body, _ := json.Marshal(submitRequest{
		SubmissionID:      "sub-1",
		ContestantProgram: "/bin/cat",
		ContestantArgs:    []string{"cat"},
		InputPath:         inputPath,
		AnswerPath:        answerPath,
		CheckerProgram:    checker,
		WorkDir:           dir,
	})
	req := httptest.NewRequest(http.MethodPost, "/api/submit", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var result judge.JudgeResultInfo
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if result.Verdict != "accepted" {
		t.Fatalf("expected accepted, got %q", result.Verdict)
	}
}

func TestSubmitRejectsMissingFields(t *testing.T) {
	log := zap.NewNop()
	router := NewRouter(judge.NewService(), log, false)

	body, _ := json.Marshal(submitRequest{SubmissionID: "sub-2"})
	req := httptest.NewRequest(http.MethodPost, "/api/submit", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestSubmitDuplicateSubmissionIDConflicts(t *testing.T) {
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

	svc := judge.NewService()
	log := zap.NewNop()
	router := NewRouter(svc, log, false)

	req := submitRequest{
		SubmissionID:      "sub-dup",
		ContestantProgram: "/bin/cat",
		ContestantArgs:    []string{"cat"},
		InputPath:         inputPath,
		AnswerPath:        answerPath,
		CheckerProgram:    checker,
		WorkDir:           dir,
	}
	// Pre-register the session directly so the HTTP call collides with it.
	if _, err := svc.SubmitBatch(req.SubmissionID, judge.BatchTask{
		ContestantProgram: req.ContestantProgram,
		ContestantArgs:    req.ContestantArgs,
		InputPath:         req.InputPath,
		AnswerPath:        req.AnswerPath,
		CheckerProgram:    req.CheckerProgram,
		WorkDir:           req.WorkDir,
	}); err != nil {
		t.Fatalf("pre-submit: %v", err)
	}

	body, _ := json.Marshal(req)
	httpReq := httptest.NewRequest(http.MethodPost, "/api/submit", bytes.NewReader(body))
	httpReq.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httpReq)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body.String())
	}
}
