package judgerpc

import (
	"context"
	"io"
	"os"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/judgecore/judgecore/internal/judge"
	"github.com/judgecore/judgecore/internal/rlimit"
)

type judgeService struct {
	service *judge.Service
}

// NewJudgeServiceServer returns a JudgeServiceServer backed by the given
// judging service.
func NewJudgeServiceServer(s *judge.Service) JudgeServiceServer {
	return &judgeService{service: s}
}

func (j *judgeService) RunJudge(ctx context.Context, req *JudgeRequest) (*JudgeResponse, error) {
	if req.SubmissionID == "" {
		return nil, errSubmissionIDRequired
	}

	var session *judge.Session
	var err error
	if req.Interactive {
		session, err = j.service.SubmitInteractive(req.SubmissionID, toInteractiveTask(req))
	} else {
		session, err = j.service.SubmitBatch(req.SubmissionID, toBatchTask(req))
	}
	switch err {
	case nil:
	case judge.ErrShutdown:
		return nil, status.Error(codes.FailedPrecondition, "judge service shutdown")
	case judge.ErrSubmissionAlreadyExists:
		return nil, status.Error(codes.AlreadyExists, "submission with ID already exists")
	default:
		return nil, err
	}

	result, err := session.Wait(ctx)
	if err != nil {
		return nil, err
	}
	return toJudgeResponse(result), nil
}

func (j *judgeService) StreamDiagnostics(req *JudgeRequest, srv JudgeService_StreamDiagnosticsServer) error {
	if req.SubmissionID == "" {
		return errSubmissionIDRequired
	}
	path := req.WorkDir + "/diagnostics"
	if req.Interactive {
		path = req.WorkDir + "/transcript"
	}

	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	var offset int64
	var seq int64
	for {
		n, err := sendNewBytes(srv, path, &offset, &seq)
		if err != nil {
			return err
		}
		session, err := j.service.GetSession(req.SubmissionID)
		if err != nil {
			return err
		}
		if session == nil {
			return status.Error(codes.NotFound, "submission not found")
		}
		if _, _, done := session.Result(); done && n == 0 {
			return nil
		}
		select {
		case <-srv.Context().Done():
			return srv.Context().Err()
		case <-ticker.C:
		}
	}
}

// sendNewBytes reads and sends whatever has been appended to path since
// offset, advancing offset and seq. It tolerates the file not existing yet.
func sendNewBytes(srv JudgeService_StreamDiagnosticsServer, path string, offset, seq *int64) (int, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	defer f.Close()

	if _, err := f.Seek(*offset, io.SeekStart); err != nil {
		return 0, err
	}
	buf := make([]byte, 4096)
	n, err := f.Read(buf)
	if err != nil && err != io.EOF {
		return 0, err
	}
	if n == 0 {
		return 0, nil
	}
	*seq++
	*offset += int64(n)
	chunk := make([]byte, n)
	copy(chunk, buf[:n])
	return n, srv.Send(&DiagnosticsChunk{Sequence: *seq, Data: chunk})
}

func toBatchTask(req *JudgeRequest) judge.BatchTask {
	return judge.BatchTask{
		ContestantProgram: req.ContestantProgram,
		ContestantArgs:    req.ContestantArgs,
		ContestantLimits:  toRlimitConfig(req),
		InputPath:         req.InputPath,
		AnswerPath:        req.AnswerPath,
		CheckerProgram:    req.CheckerProgram,
		WorkDir:           req.WorkDir,
	}
}

func toInteractiveTask(req *JudgeRequest) judge.InteractiveTask {
	return judge.InteractiveTask{
		ContestantProgram: req.ContestantProgram,
		ContestantArgs:    req.ContestantArgs,
		ContestantLimits:  toRlimitConfig(req),
		InteractorProgram: req.InteractorProgram,
		InputPath:         req.InputPath,
		AnswerPath:        req.AnswerPath,
		CheckerProgram:    req.CheckerProgram,
		WorkDir:           req.WorkDir,
	}
}

func toRlimitConfig(req *JudgeRequest) rlimit.Config {
	var cfg rlimit.Config
	if req.CPUSecondsSoft != nil && req.CPUSecondsHard != nil {
		cfg.CPUSeconds = &rlimit.Pair{Soft: req.CPUSecondsSoft.Value, Hard: req.CPUSecondsHard.Value}
	}
	if req.AddressSpaceSoftKB != nil && req.AddressSpaceHardKB != nil {
		cfg.AddressSpace = &rlimit.Pair{Soft: req.AddressSpaceSoftKB.Value * 1024, Hard: req.AddressSpaceHardKB.Value * 1024}
	}
	return cfg
}

func toJudgeResponse(result judge.JudgeResultInfo) *JudgeResponse {
	return &JudgeResponse{
		Verdict:            string(result.Verdict),
		TimeMillis:         result.TimeMillis,
		MemoryKB:           result.MemoryKB,
		ContestantExitCode: int32(result.ContestantExitCode),
		CheckerExitCode:    int32(result.CheckerExitCode),
		CompletedAt:        timestamppb.New(time.Now()),
	}
}
