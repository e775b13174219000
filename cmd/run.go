package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/judgecore/judgecore/internal/judge"
	"github.com/judgecore/judgecore/internal/rlimit"
)

// limitFlags binds the rlimit axes RunBatch/RunInteractive accept as
// cobra flags shared between run and interact.
type limitFlags struct {
	cpuSoft, cpuHard                   uint64
	addressSpaceSoft, addressSpaceHard uint64
	fileSizeSoft, fileSizeHard         uint64
}

func (l *limitFlags) applyFlags(cmd *cobra.Command) {
	cmd.Flags().Uint64Var(&l.cpuSoft, "cpu-soft", 0, "CPU time soft limit, in seconds (0 disables)")
	cmd.Flags().Uint64Var(&l.cpuHard, "cpu-hard", 0, "CPU time hard limit, in seconds")
	cmd.Flags().Uint64Var(&l.addressSpaceSoft, "memory-soft-kb", 0, "Address space soft limit, in KB (0 disables)")
	cmd.Flags().Uint64Var(&l.addressSpaceHard, "memory-hard-kb", 0, "Address space hard limit, in KB")
	cmd.Flags().Uint64Var(&l.fileSizeSoft, "fsize-soft-kb", 0, "Output file size soft limit, in KB (0 disables)")
	cmd.Flags().Uint64Var(&l.fileSizeHard, "fsize-hard-kb", 0, "Output file size hard limit, in KB")
}

func (l *limitFlags) toConfig() rlimit.Config {
	var cfg rlimit.Config
	if l.cpuSoft > 0 {
		cfg.CPUSeconds = &rlimit.Pair{Soft: l.cpuSoft, Hard: l.cpuHard}
	}
	if l.addressSpaceSoft > 0 {
		cfg.AddressSpace = &rlimit.Pair{Soft: l.addressSpaceSoft * 1024, Hard: l.addressSpaceHard * 1024}
	}
	if l.fileSizeSoft > 0 {
		cfg.FileSize = &rlimit.Pair{Soft: l.fileSizeSoft * 1024, Hard: l.fileSizeHard * 1024}
	}
	return cfg
}

func runCmd() *cobra.Command {
	var program, checker, input, answer, workDir string
	var limits limitFlags
	cmd := &cobra.Command{
		Use:          "run -- PROGRAM [ARGS...]",
		Short:        "Judge a single batch submission directly, without the gRPC or HTTP surfaces",
		Args:         cobra.ArbitraryArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if program == "" {
				return fmt.Errorf("--program required")
			} else if checker == "" {
				return fmt.Errorf("--checker required")
			} else if input == "" {
				return fmt.Errorf("--input required")
			} else if answer == "" {
				return fmt.Errorf("--answer required")
			} else if workDir == "" {
				return fmt.Errorf("--diagnostics required")
			}
			task := judge.BatchTask{
				ContestantProgram: program,
				ContestantArgs:    append([]string{program}, args...),
				ContestantLimits:  limits.toConfig(),
				InputPath:         input,
				AnswerPath:        answer,
				CheckerProgram:    checker,
				WorkDir:           workDir,
			}
			result, err := judge.RunBatch(task)
			if err != nil {
				return fmt.Errorf("running batch judge: %w", err)
			}
			return printResult(result)
		},
	}
	cmd.Flags().StringVar(&program, "program", "", "Required contestant program path")
	cmd.Flags().StringVar(&checker, "checker", "", "Required checker program path")
	cmd.Flags().StringVar(&input, "input", "", "Required path to the test input")
	cmd.Flags().StringVar(&answer, "answer", "", "Required path to the reference answer")
	cmd.Flags().StringVar(&workDir, "diagnostics", "", "Required working directory for output/diagnostics files")
	limits.applyFlags(cmd)
	return cmd
}

func printResult(result judge.JudgeResultInfo) error {
	b, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}
