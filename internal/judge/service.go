package judge

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Service manages concurrently submitted judging sessions, keyed by
// submission ID. It is the object cmd/serve.go and internal/judgerpc expose
// over gRPC.
type Service struct {
	sessions     map[string]*Session
	sessionsLock sync.RWMutex

	shutdown     bool
	shutdownLock sync.RWMutex
}

// NewService returns an idle Service ready to accept submissions.
func NewService() *Service {
	return &Service{sessions: map[string]*Session{}}
}

// ErrShutdown is returned from Service calls once Shutdown has been called.
var ErrShutdown = fmt.Errorf("judge service shutdown")

// ErrSubmissionAlreadyExists is returned from Submit when submissionID is
// already tracked.
var ErrSubmissionAlreadyExists = fmt.Errorf("submission ID already exists")

// GetSession returns the session for submissionID, or nil if unknown.
func (s *Service) GetSession(submissionID string) (*Session, error) {
	s.shutdownLock.RLock()
	defer s.shutdownLock.RUnlock()
	if s.shutdown {
		return nil, ErrShutdown
	}
	s.sessionsLock.RLock()
	defer s.sessionsLock.RUnlock()
	return s.sessions[submissionID], nil
}

// SubmitBatch starts a batch judging run in the background and returns a
// Session tracking it. If submissionID is empty one is generated.
func (s *Service) SubmitBatch(submissionID string, task BatchTask) (*Session, error) {
	return s.submit(submissionID, false, func() (JudgeResultInfo, error) {
		return RunBatch(task)
	})
}

// SubmitInteractive starts an interactive judging run in the background and
// returns a Session tracking it.
func (s *Service) SubmitInteractive(submissionID string, task InteractiveTask) (*Session, error) {
	return s.submit(submissionID, true, func() (JudgeResultInfo, error) {
		return RunInteractive(task)
	})
}

func (s *Service) submit(submissionID string, interactive bool, run func() (JudgeResultInfo, error)) (*Session, error) {
	s.shutdownLock.RLock()
	defer s.shutdownLock.RUnlock()
	if s.shutdown {
		return nil, ErrShutdown
	}
	if submissionID == "" {
		submissionID = uuid.New().String()
	}

	s.sessionsLock.Lock()
	if _, exists := s.sessions[submissionID]; exists {
		s.sessionsLock.Unlock()
		return nil, ErrSubmissionAlreadyExists
	}
	session := newSession(submissionID, interactive)
	s.sessions[submissionID] = session
	s.sessionsLock.Unlock()

	go func() {
		result, err := run()
		session.markDone(result, err)
	}()

	return session, nil
}

// Shutdown waits for all in-flight sessions to complete or ctx to close.
// Once called, no further submissions are accepted.
func (s *Service) Shutdown(ctx context.Context) error {
	s.shutdownLock.Lock()
	alreadyShutdown := s.shutdown
	s.shutdown = true
	s.shutdownLock.Unlock()
	if alreadyShutdown {
		return ErrShutdown
	}

	s.sessionsLock.RLock()
	sessions := make([]*Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		sessions = append(sessions, session)
	}
	s.sessionsLock.RUnlock()
	if len(sessions) == 0 {
		return nil
	}

	var wg sync.WaitGroup
	for _, session := range sessions {
		session := session
		wg.Add(1)
		go func() {
			defer wg.Done()
			session.Wait(ctx)
		}()
	}
	wgDone := make(chan struct{})
	go func() {
		defer close(wgDone)
		wg.Wait()
	}()
	select {
	case <-ctx.Done():
	case <-wgDone:
	}
	select {
	case <-wgDone:
		return nil
	default:
		return ctx.Err()
	}
}
