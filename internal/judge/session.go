package judge

import (
	"context"
	"sync"
)

// Session represents a submitted judging run, in flight or completed.
// Callers should never mutate any field.
type Session struct {
	// SubmissionID identifies the session, never empty.
	SubmissionID string
	// Interactive is true if this session runs RunInteractive rather than
	// RunBatch.
	Interactive bool

	doneCtx    context.Context
	doneCancel context.CancelFunc

	mu     sync.RWMutex
	result JudgeResultInfo
	err    error
}

func newSession(id string, interactive bool) *Session {
	s := &Session{SubmissionID: id, Interactive: interactive}
	s.doneCtx, s.doneCancel = context.WithCancel(context.Background())
	return s
}

func (s *Session) markDone(result JudgeResultInfo, err error) {
	s.mu.Lock()
	s.result = result
	s.err = err
	s.mu.Unlock()
	s.doneCancel()
}

// Result returns the session's outcome, or ok=false if still running.
func (s *Session) Result() (result JudgeResultInfo, err error, ok bool) {
	select {
	case <-s.doneCtx.Done():
	default:
		return JudgeResultInfo{}, nil, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.result, s.err, true
}

// Wait blocks until the session completes or ctx is done.
func (s *Session) Wait(ctx context.Context) (JudgeResultInfo, error) {
	select {
	case <-ctx.Done():
		return JudgeResultInfo{}, ctx.Err()
	case <-s.doneCtx.Done():
		s.mu.RLock()
		defer s.mu.RUnlock()
		return s.result, s.err
	}
}
