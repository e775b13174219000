package judgerpc

import (
	"testing"

	"google.golang.org/protobuf/types/known/wrapperspb"
)

func TestJSONCodecRoundTripsJudgeRequest(t *testing.T) {
	codec := jsonCodec{}
	req := &JudgeRequest{
		SubmissionID:      "sub-1",
		ContestantProgram: "/usr/bin/a-plus-b",
		ContestantArgs:    []string{"a-plus-b"},
		CPUSecondsSoft:    wrapperspb.UInt64(1),
		CPUSecondsHard:    wrapperspb.UInt64(2),
	}

	data, err := codec.Marshal(req)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded JudgeRequest
	if err := codec.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.SubmissionID != req.SubmissionID {
		t.Fatalf("expected submission ID %q, got %q", req.SubmissionID, decoded.SubmissionID)
	}
	if decoded.CPUSecondsSoft == nil || decoded.CPUSecondsSoft.Value != 1 {
		t.Fatalf("expected CPUSecondsSoft=1, got %+v", decoded.CPUSecondsSoft)
	}
	if decoded.CPUSecondsHard == nil || decoded.CPUSecondsHard.Value != 2 {
		t.Fatalf("expected CPUSecondsHard=2, got %+v", decoded.CPUSecondsHard)
	}
}

func TestJSONCodecName(t *testing.T) {
	if (jsonCodec{}).Name() != "json" {
		t.Fatalf("expected codec name %q", "json")
	}
}
