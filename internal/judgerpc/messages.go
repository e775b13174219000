package judgerpc

import (
	"google.golang.org/protobuf/types/known/timestamppb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// JudgeRequest is the RunJudge/StreamDiagnostics request message. It carries
// ordinary Go struct fields rather than protoc-generated ones (see codec.go),
// but still uses the protobuf well-known wrapper/timestamp types for optional
// and temporal fields, matching the teacher's own request shape.
type JudgeRequest struct {
	SubmissionID string `json:"submission_id"`
	Interactive  bool   `json:"interactive"`

	ContestantProgram string   `json:"contestant_program"`
	ContestantArgs    []string `json:"contestant_args"`
	InteractorProgram string   `json:"interactor_program,omitempty"`
	CheckerProgram    string   `json:"checker_program"`

	InputPath  string `json:"input_path"`
	AnswerPath string `json:"answer_path"`
	WorkDir    string `json:"work_dir"`

	CPUSecondsSoft     *wrapperspb.UInt64Value `json:"cpu_seconds_soft,omitempty"`
	CPUSecondsHard     *wrapperspb.UInt64Value `json:"cpu_seconds_hard,omitempty"`
	AddressSpaceSoftKB *wrapperspb.UInt64Value `json:"address_space_soft_kb,omitempty"`
	AddressSpaceHardKB *wrapperspb.UInt64Value `json:"address_space_hard_kb,omitempty"`

	SubmittedAt *timestamppb.Timestamp `json:"submitted_at,omitempty"`
}

// JudgeResponse is the RunJudge response message.
type JudgeResponse struct {
	Verdict            string `json:"verdict"`
	TimeMillis         int64  `json:"time_millis"`
	MemoryKB           int64  `json:"memory_kb"`
	ContestantExitCode int32  `json:"contestant_exit_code"`
	CheckerExitCode    int32  `json:"checker_exit_code"`

	CompletedAt *timestamppb.Timestamp `json:"completed_at,omitempty"`
}

// DiagnosticsChunk is one message of the StreamDiagnostics response stream.
type DiagnosticsChunk struct {
	Sequence int64  `json:"sequence"`
	Data     []byte `json:"data"`
}
