package rlimit

import (
	"testing"

	"github.com/judgecore/judgecore/internal/jcerr"
)

func TestApplyRejectsSoftGreaterThanHard(t *testing.T) {
	err := Apply(Config{CPUSeconds: &Pair{Soft: 10, Hard: 5}})
	if err == nil {
		t.Fatal("expected error for soft > hard")
	}
	if !jcerr.Is(err, jcerr.InvalidArgument) {
		t.Fatalf("expected InvalidArgument, got %v", err)
	}
}

func TestApplyNoAxesIsNoop(t *testing.T) {
	if err := Apply(Config{}); err != nil {
		t.Fatalf("expected no error for empty config, got %v", err)
	}
}
