// Package judge implements the batch and interactive judging drivers: given a
// materialized problem package and a contestant binary, run the contestant
// (and, for interactive problems, an interactor) under resource limits and
// produce a JudgeResultInfo.
package judge

import "github.com/judgecore/judgecore/internal/verdict"

// JudgeResultInfo is the public verdict record returned by RunBatch and
// RunInteractive.
type JudgeResultInfo struct {
	Verdict            verdict.Verdict
	TimeMillis         int64
	MemoryKB           int64
	ContestantExitCode int
	CheckerExitCode    int
}
