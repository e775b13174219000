// +build !linux

package judge

import "github.com/judgecore/judgecore/internal/jcerr"

// RunInteractive is only implemented on Linux, which is the only platform
// internal/epoll supports.
func RunInteractive(InteractiveTask) (JudgeResultInfo, error) {
	return JudgeResultInfo{}, jcerr.Newf(jcerr.SystemError, "interactive judging is only supported on linux")
}
